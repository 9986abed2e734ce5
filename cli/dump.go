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

	"github.com/sanity-io/litter"
	"github.com/spf13/afero"
)

// DumpArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `dump` subcommand.
type DumpArgs struct {
	cliUtil.InputArgs

	Stage string `arg:"--stage" default:"tree" help:"what to dump: tree, symbols, or graph"`
}

// Run executes the dump subcommand.
func (obj *DumpArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	return obj.dump(ctx, afero.NewOsFs(), data, os.Stdout)
}

func (obj *DumpArgs) dump(ctx context.Context, fs afero.Fs, data *cliUtil.Data, w io.Writer) (bool, error) {
	s, err := analyze(ctx, fs, data, obj.Input)
	if err != nil {
		return false, err
	}
	opts := litter.Options{
		HidePrivateFields: true,
		StripPackageNames: true,
	}

	switch obj.Stage {
	case "tree":
		fmt.Fprintln(w, opts.Sdump(s.story))
	case "symbols":
		fmt.Fprintln(w, opts.Sdump(s.symbols))
	case "graph":
		if s.result.Graph == nil {
			return false, fmt.Errorf("no program graph")
		}
		fmt.Fprint(w, s.result.Graph.Sprint())
	default:
		return false, fmt.Errorf("unknown stage: %s", obj.Stage)
	}
	return true, nil
}
