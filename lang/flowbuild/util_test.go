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

package flowbuild

import (
	"testing"

	"github.com/fabula-lang/fabula/flow"
	"github.com/fabula-lang/fabula/lang/ast"
	"github.com/fabula-lang/fabula/lang/interfaces"
)

func out(text string) *ast.StmtOutput { return &ast.StmtOutput{Text: text} }

func assign(name, option string) *ast.StmtAssign {
	return &ast.StmtAssign{Name: name, Option: option}
}

func call(scene string) *ast.StmtCall { return &ast.StmtCall{Scene: scene} }

func body(stmts ...interfaces.Stmt) []interfaces.Stmt {
	if stmts == nil {
		return []interfaces.Stmt{}
	}
	return stmts
}

func menu(kind ast.MenuKind, opts ...*ast.MenuOption) *ast.StmtMenu {
	return &ast.StmtMenu{Kind: kind, Options: opts}
}

func opt(label string, stmts ...interfaces.Stmt) *ast.MenuOption {
	return &ast.MenuOption{Label: label, Body: body(stmts...)}
}

func loop(label string, stmts ...interfaces.Stmt) *ast.MenuOption {
	return &ast.MenuOption{Label: label, Loop: true, Body: body(stmts...)}
}

func branchon(name string, cases ...*ast.BranchCase) *ast.StmtBranchOn {
	return &ast.StmtBranchOn{Name: name, Cases: cases}
}

func when(options []string, stmts ...interfaces.Stmt) *ast.BranchCase {
	return &ast.BranchCase{Options: options, Body: body(stmts...)}
}

func other(stmts ...interfaces.Stmt) *ast.BranchCase {
	return &ast.BranchCase{Other: true, Body: body(stmts...)}
}

func scene(name string, stmts ...interfaces.Stmt) *ast.Scene {
	return &ast.Scene{Name: name, Body: body(stmts...)}
}

func symbols() *interfaces.SymbolTable {
	st := interfaces.NewSymbolTable()
	st.AddOutcome(&interfaces.Outcome{Name: "X", Options: []string{"A", "B", "C"}})
	st.AddSpectrum(&interfaces.Spectrum{
		Name: "trust",
		Options: []*interfaces.SpectrumOption{
			{Name: "low", Threshold: 0.5},
			{Name: "high"},
		},
	})
	return st
}

func newBuilder(t *testing.T) *Builder {
	b := &Builder{
		Symbols: symbols(),
		Alloc:   flow.NewAllocator(),
		Debug:   testing.Verbose(),
		Logf: func(format string, v ...interface{}) {
			t.Logf("flowbuild: "+format, v...)
		},
	}
	if err := b.Init(); err != nil {
		t.Fatalf("could not init builder: %+v", err)
	}
	return b
}

// vertexOf finds the vertex built for the statement.
func vertexOf(t *testing.T, g *flow.Graph, stmt interfaces.Stmt) flow.VertexID {
	for _, id := range g.IDs() {
		if v, _ := g.Vertex(id); v.Stmt == stmt {
			return id
		}
	}
	t.Fatalf("no vertex for %s", stmt)
	return flow.Unresolved
}

// targets returns the edge targets of the vertex.
func targets(g *flow.Graph, id flow.VertexID) []flow.VertexID {
	out := []flow.VertexID{}
	for _, e := range g.Edges(id) {
		out = append(out, e.To)
	}
	return out
}
