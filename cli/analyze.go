// Fabula
// Copyright (C) 2013-2020+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package cli

import (
	"context"

	cliUtil "github.com/fabula-lang/fabula/cli/util"
	"github.com/fabula-lang/fabula/lang"
	"github.com/fabula-lang/fabula/lang/ast"
	"github.com/fabula-lang/fabula/lang/interfaces"
	"github.com/fabula-lang/fabula/lang/storyyaml"
	"github.com/fabula-lang/fabula/util/errwrap"

	"github.com/spf13/afero"
)

// session is a loaded and analyzed story.
type session struct {
	story   *ast.Story
	symbols *interfaces.SymbolTable
	result  *lang.Result
}

// analyze loads the story from the fs and runs the whole flow analysis on it.
// Problems in the story are in the result, the error is for everything else.
func analyze(ctx context.Context, fs afero.Fs, data *cliUtil.Data, name string) (*session, error) {
	Logf := func(format string, v ...interface{}) {
		data.Flags.Logf("main: "+format, v...)
	}
	cliUtil.Hello(data.Program, data.Version, data.Flags)

	loader := &storyyaml.Loader{
		Fs:    fs,
		Debug: data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf("load: "+format, v...)
		},
	}
	if err := loader.Init(); err != nil {
		return nil, err
	}
	story, symbols, err := loader.Load(name)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errwrap.Wrapf(err, "cancelled")
	}

	obj := &lang.Lang{
		Story:   story,
		Symbols: symbols,
		Debug:   data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf("lang: "+format, v...)
		},
	}
	if err := obj.Init(); err != nil {
		return nil, errwrap.Wrapf(err, "could not init the lang")
	}
	result, err := obj.Analyze()
	if err != nil {
		return nil, err
	}
	Logf("found %d error(s)", len(result.Errors))

	return &session{
		story:   story,
		symbols: symbols,
		result:  result,
	}, nil
}
