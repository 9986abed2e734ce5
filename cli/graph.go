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
	"github.com/fabula-lang/fabula/util"
	"github.com/fabula-lang/fabula/util/errwrap"

	"github.com/spf13/afero"
)

// GraphArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `graph` subcommand.
type GraphArgs struct {
	cliUtil.InputArgs

	Visible bool `arg:"--visible" help:"only show the visible vertices"`

	Output string `arg:"--output,-o" help:"write the graphviz to this file instead of stdout"`
}

// Run executes the graph subcommand.
func (obj *GraphArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	return obj.graph(ctx, afero.NewOsFs(), data, os.Stdout)
}

// graph prints the program graph even if the analysis found errors, as long as
// the graph could be built.
func (obj *GraphArgs) graph(ctx context.Context, fs afero.Fs, data *cliUtil.Data, w io.Writer) (bool, error) {
	s, err := analyze(ctx, fs, data, obj.Input)
	if err != nil {
		return false, err
	}
	g := s.result.Graph
	if obj.Visible {
		g = s.result.Visible()
	}
	if g == nil {
		if err := s.result.Err(); err != nil {
			return false, errwrap.Wrapf(err, "no program graph")
		}
		return false, fmt.Errorf("no program graph")
	}
	for _, e := range s.result.Errors {
		data.Flags.Logf("main: warning: %s", e)
	}

	out := g.Graphviz(s.story.EntryScene().Name)
	if obj.Output == "" {
		fmt.Fprint(w, out)
		return true, nil
	}
	if err := util.WriteFile(fs, obj.Output, []byte(out), 0660); err != nil {
		return false, errwrap.Wrapf(err, "could not write graph")
	}
	data.Flags.Logf("main: wrote %s", obj.Output)
	return true, nil
}
