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

package lang

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fabula-lang/fabula/lang/ast"
	"github.com/fabula-lang/fabula/lang/interfaces"
	"github.com/fabula-lang/fabula/util"
	"github.com/fabula-lang/fabula/util/errwrap"

	"github.com/davecgh/go-spew/spew"
)

func out(text string) *ast.StmtOutput { return &ast.StmtOutput{Text: text} }

func set(name, option string) *ast.StmtAssign {
	return &ast.StmtAssign{Name: name, Option: option}
}

func read(name string, other ...interfaces.Stmt) *ast.StmtBranchOn {
	return &ast.StmtBranchOn{
		Name:  name,
		Cases: []*ast.BranchCase{{Other: true, Body: other}},
	}
}

func scene(name string, chapter bool, stmts ...interfaces.Stmt) *ast.Scene {
	return &ast.Scene{Name: name, Chapter: chapter, Body: stmts}
}

func symbols() *interfaces.SymbolTable {
	table := interfaces.NewSymbolTable()
	if err := table.AddOutcome(&interfaces.Outcome{Name: "x", Options: []string{"a", "b"}}); err != nil {
		panic(err)
	}
	return table
}

func analyze(t *testing.T, story *ast.Story) *Result {
	obj := &Lang{
		Story:   story,
		Symbols: symbols(),
		Debug:   testing.Verbose(),
		Logf: func(format string, v ...interface{}) {
			t.Logf("lang: "+format, v...)
		},
	}
	if err := obj.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	result, err := obj.Analyze()
	if err != nil {
		t.Fatalf("analyze failed: %+v", err)
	}
	return result
}

func TestInit0(t *testing.T) {
	type test struct { // an individual test
		name    string
		lang    *Lang
		fail    bool
		chapter bool // expected chapter flag of the `ch` symbol
	}
	testCases := []test{}

	logf := func(format string, v ...interface{}) {}
	{
		testCases = append(testCases, test{
			name: "no story",
			lang: &Lang{Symbols: symbols(), Logf: logf},
			fail: true,
		})
	}
	{
		story := &ast.Story{Scenes: []*ast.Scene{scene("main", false)}}
		testCases = append(testCases, test{
			name: "no symbols",
			lang: &Lang{Story: story, Logf: logf},
			fail: true,
		})
	}
	{
		story := &ast.Story{Scenes: []*ast.Scene{scene("main", false)}}
		testCases = append(testCases, test{
			name: "no logf",
			lang: &Lang{Story: story, Symbols: symbols()},
			fail: true,
		})
	}
	{
		story := &ast.Story{Scenes: []*ast.Scene{scene("main", false), scene("main", false)}}
		testCases = append(testCases, test{
			name: "duplicate scene",
			lang: &Lang{Story: story, Symbols: symbols(), Logf: logf},
			fail: true,
		})
	}
	{
		story := &ast.Story{Scenes: []*ast.Scene{scene("main", false), scene("ch", true)}}
		table := symbols()
		if err := table.AddScene(&interfaces.SceneSym{Name: "ch", Chapter: false}); err != nil {
			panic(err)
		}
		testCases = append(testCases, test{
			name: "chapter disagreement",
			lang: &Lang{Story: story, Symbols: table, Logf: logf},
			fail: true,
		})
	}
	{
		story := &ast.Story{Scenes: []*ast.Scene{scene("main", false), scene("ch", true)}}
		testCases = append(testCases, test{
			name:    "symbols filled in",
			lang:    &Lang{Story: story, Symbols: symbols(), Logf: logf},
			chapter: true,
		})
	}

	names := []string{}
	for index, tc := range testCases { // run all the tests
		if util.StrInList(tc.name, names) {
			t.Errorf("test #%d: duplicate sub test name of: %s", index, tc.name)
			continue
		}
		names = append(names, tc.name)

		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			err := tc.lang.Init()
			if tc.fail && err == nil {
				t.Errorf("test #%d: init passed, expected fail", index)
				return
			}
			if !tc.fail && err != nil {
				t.Errorf("test #%d: init failed with: %+v", index, err)
				return
			}
			if tc.fail {
				return
			}
			if _, exists := tc.lang.Symbols.Scenes["ch"]; exists {
				t.Errorf("test #%d: the table that was passed in was changed", index)
			}
			sym, exists := tc.lang.symbols.Scenes["ch"]
			if !exists {
				t.Errorf("test #%d: scene symbol was not added", index)
				return
			}
			if sym.Chapter != tc.chapter {
				t.Errorf("test #%d: unexpected chapter flag: %t", index, sym.Chapter)
			}
		})
	}
}

func TestAnalyzeUninitialized0(t *testing.T) {
	obj := &Lang{}
	if _, err := obj.Analyze(); err == nil {
		t.Errorf("analyze of an uninitialized object should error")
	}
}

func TestValid0(t *testing.T) {
	story := &ast.Story{
		Scenes: []*ast.Scene{
			scene("main", false,
				out("hello"),
				&ast.StmtCall{Scene: "ch"},
				read("x", out("read")),
			),
			scene("ch", true,
				out("chapter"),
				set("x", "a"),
				out("after"),
			),
		},
	}
	result := analyze(t, story)
	if !result.Valid() {
		t.Errorf("expected a valid result, got: %v", result.Err())
	}
	if err := result.Err(); err != nil {
		t.Errorf("unexpected error: %+v", err)
	}

	// hello, checkpoint, chapter, assign, after, branchon, read
	if n := result.Graph.Len(); n != 7 {
		t.Errorf("expected 7 vertices, got %d: %s", n, result.Graph.Sprint())
	}
	visible := result.Visible()
	if visible == nil {
		t.Fatalf("expected a visible graph")
	}
	if n := visible.Len(); n != 6 { // only the assign is invisible
		t.Errorf("expected 6 visible vertices, got %d: %s", n, visible.Sprint())
	}
	for _, id := range visible.IDs() {
		if v, _ := visible.Vertex(id); !v.Visible {
			t.Errorf("invisible vertex %s in the visible graph", id)
		}
	}
	if err := visible.Validate(); err != nil {
		t.Errorf("visible graph is invalid: %+v", err)
	}
}

func TestErrors0(t *testing.T) {
	story := &ast.Story{
		Scenes: []*ast.Scene{
			scene("main", false,
				out("hello"),
				read("x", out("read")),
			),
			scene("side", false,
				&ast.StmtMenu{Kind: ast.MenuSwitch, Options: []*ast.MenuOption{}},
			),
			scene("ch", true,
				out("never called"),
			),
		},
	}
	result := analyze(t, story)
	if result.Valid() {
		t.Errorf("expected an invalid result")
	}
	if result.Graph == nil {
		t.Fatalf("expected a graph, the entry is not affected")
	}
	exp := []util.Error{ // in stage order
		interfaces.ErrEmptyMenu,
		interfaces.ErrChapterCallCount,
		interfaces.ErrNotDefinitelyAssigned,
	}
	if len(result.Errors) != len(exp) {
		t.Fatalf("expected %d errors, got: %s", len(exp), spew.Sdump(result.Errors))
	}
	for i, kind := range exp {
		if !errors.Is(result.Errors[i], kind) {
			t.Errorf("error #%d: expected %s, got: %v", i, kind, result.Errors[i])
		}
	}
	err := result.Err()
	if err == nil {
		t.Fatalf("expected a joined error")
	}
	for _, kind := range exp {
		if !errors.Is(err, kind) {
			t.Errorf("the joined error lost %s: %v", kind, err)
		}
	}
	if errs := errwrap.Errors(err); len(errs) != len(exp) {
		t.Errorf("expected the joined error to unpack to %d errors, got: %d", len(exp), len(errs))
	}
}

func TestWithheld0(t *testing.T) {
	story := &ast.Story{
		Scenes: []*ast.Scene{
			scene("main", false,
				out("hello"),
				&ast.StmtCall{Scene: "nowhere"},
				read("x", out("read")), // the callee might assign it
			),
		},
	}
	result := analyze(t, story)
	if result.Graph != nil {
		t.Errorf("expected the graph to be withheld: %s", result.Graph.Sprint())
	}
	if result.Visible() != nil {
		t.Errorf("expected no visible graph")
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], interfaces.ErrUndeclaredScene) {
		t.Errorf("unexpected errors: %v", result.Err())
	}
}

func TestWithheldScenes0(t *testing.T) {
	story := &ast.Story{
		Scenes: []*ast.Scene{
			scene("main", false,
				out("hello"),
				&ast.StmtCall{Scene: "side"},
				&ast.StmtCall{Scene: "nowhere"},
			),
			scene("side", false,
				set("x", "a"),
				out("side"),
				set("x", "b"),
				read("y", out("y")),
			),
			scene("unused", false,
				set("x", "a"),
				set("x", "b"),
			),
		},
	}
	result := analyze(t, story)
	if result.Graph != nil {
		t.Fatalf("expected the graph to be withheld: %s", result.Graph.Sprint())
	}
	exp := []util.Error{
		interfaces.ErrUndeclaredScene,
		interfaces.ErrMaybeAssignedTwice, // in side, which is intact
		interfaces.ErrUndeclared,
	}
	if len(result.Errors) != len(exp) {
		t.Fatalf("expected %d errors, got: %s", len(exp), spew.Sdump(result.Errors))
	}
	for i, kind := range exp {
		if !errors.Is(result.Errors[i], kind) {
			t.Errorf("error #%d: expected %s, got: %v", i, kind, result.Errors[i])
		}
	}
	if chain := result.Errors[1].Chain; len(chain) != 1 || chain[0] != "side" {
		t.Errorf("unexpected chain: %v", chain)
	}
}
