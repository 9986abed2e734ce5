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

package storyyaml

import (
	"fmt"
	"path"

	"github.com/fabula-lang/fabula/lang/ast"
	"github.com/fabula-lang/fabula/lang/interfaces"
	"github.com/fabula-lang/fabula/util"
	"github.com/fabula-lang/fabula/util/errwrap"

	"github.com/spf13/afero"
)

// Loader reads story files from a filesystem.
type Loader struct {
	// Fs is the filesystem the stories are read from. It is usually an
	// afero.OsFs, but tests use a memory one.
	Fs afero.Fs

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Init validates the loader.
func (obj *Loader) Init() error {
	if obj.Fs == nil {
		return fmt.Errorf("the Fs is missing")
	}
	if obj.Logf == nil {
		return fmt.Errorf("the Logf function is missing")
	}
	return nil
}

// Load reads, parses and builds the story at the path.
func (obj *Loader) Load(name string) (*ast.Story, *interfaces.SymbolTable, error) {
	if obj.Debug {
		if tree, err := util.FsTree(obj.Fs, path.Dir(name)); err == nil {
			obj.Logf("tree:\n%s", tree)
		}
	}

	data, err := afero.ReadFile(obj.Fs, name)
	if err != nil {
		return nil, nil, errwrap.Wrapf(err, "can't read story")
	}
	config, err := Parse(data)
	if err != nil {
		return nil, nil, errwrap.Wrapf(err, "can't parse story %s", name)
	}
	story, symbols, err := config.Build(name)
	if err != nil {
		return nil, nil, errwrap.Wrapf(err, "can't build story %s", name)
	}
	obj.Logf("loaded %d scene(s) from %s", len(story.Scenes), name)
	return story, symbols, nil
}
