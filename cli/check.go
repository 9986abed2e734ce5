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
	"fmt"
	"io"
	"os"

	cliUtil "github.com/fabula-lang/fabula/cli/util"
	"github.com/fabula-lang/fabula/util/errwrap"

	"github.com/spf13/afero"
)

// CheckArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `check` subcommand.
type CheckArgs struct {
	cliUtil.InputArgs

	Quiet bool `arg:"--quiet" help:"don't print the errors, only set the exit status"`
}

// Run executes the check subcommand. It prints every error found in the story
// and errors if there was at least one.
func (obj *CheckArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	var w io.Writer = os.Stdout
	if obj.Quiet {
		w = io.Discard
	}
	return obj.check(ctx, afero.NewOsFs(), data, w)
}

func (obj *CheckArgs) check(ctx context.Context, fs afero.Fs, data *cliUtil.Data, w io.Writer) (bool, error) {
	s, err := analyze(ctx, fs, data, obj.Input)
	if err != nil {
		return false, err
	}
	errs := errwrap.Errors(s.result.Err())
	for _, e := range errs {
		fmt.Fprintf(w, "%s\n", e)
	}
	if !s.result.Valid() {
		return false, fmt.Errorf("%s: %d error(s) found", obj.Input, len(errs))
	}
	fmt.Fprintf(w, "%s: ok\n", obj.Input)
	return true, nil
}
