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
	"fmt"
	"reflect"
	"testing"

	"github.com/fabula-lang/fabula/flow"
	"github.com/fabula-lang/fabula/lang/ast"
	"github.com/fabula-lang/fabula/lang/interfaces"
	"github.com/fabula-lang/fabula/util"
)

func TestStructural0(t *testing.T) {
	type test struct { // an individual test
		name  string
		scene *ast.Scene
		errs  []util.Error
	}
	testCases := []test{}

	testCases = append(testCases, test{
		name:  "linear",
		scene: scene("s", out("a"), assign("X", "A"), out("b")),
	})
	testCases = append(testCases, test{
		name:  "empty menu",
		scene: scene("s", menu(ast.MenuSwitch)),
		errs:  []util.Error{interfaces.ErrEmptyMenu},
	})
	testCases = append(testCases, test{
		name: "nested menu",
		scene: scene("s", menu(ast.MenuSwitch,
			opt("a", menu(ast.MenuChoose, opt("x", out("x")))),
		)),
		errs: []util.Error{interfaces.ErrNestedMenu},
	})
	testCases = append(testCases, test{
		name:  "nested call",
		scene: scene("s", menu(ast.MenuChoose, opt("a", call("t"), out("a")))),
		errs:  []util.Error{interfaces.ErrNestedCall},
	})
	testCases = append(testCases, test{
		name:  "menu after output",
		scene: scene("s", menu(ast.MenuChoose, opt("a", out("a"), menu(ast.MenuSwitch, opt("x", out("x")))))),
	})
	testCases = append(testCases, test{
		name:  "invisible end",
		scene: scene("s", menu(ast.MenuChoose, opt("a", out("a"), assign("X", "A")))),
		errs:  []util.Error{interfaces.ErrInvisibleEnd},
	})
	testCases = append(testCases, test{
		name:  "trailing call",
		scene: scene("s", menu(ast.MenuChoose, opt("a", out("a"), call("t")))),
	})
	testCases = append(testCases, test{
		name: "trailing if",
		scene: scene("s", menu(ast.MenuChoose, opt("a", out("a"), &ast.StmtIf{
			Branches: []*ast.IfBranch{
				{Cond: "c", Body: body(out("b"), assign("X", "A"))},
			},
		}))),
		errs: []util.Error{interfaces.ErrInvisibleEnd},
	})
	testCases = append(testCases, test{
		name: "trailing if without else after an assignment",
		scene: scene("s", menu(ast.MenuSwitch,
			opt("a", out("hi"), assign("X", "A"), &ast.StmtIf{
				Branches: []*ast.IfBranch{
					{Cond: "c", Body: body(out("shown"))},
				},
			}),
			opt("b", out("b")),
		)),
		errs: []util.Error{interfaces.ErrInvisibleEnd},
	})
	testCases = append(testCases, test{
		name: "trailing if with else after an assignment",
		scene: scene("s", menu(ast.MenuSwitch,
			opt("a", out("hi"), assign("X", "A"), &ast.StmtIf{
				Branches: []*ast.IfBranch{
					{Cond: "c", Body: body(out("shown"))},
				},
				Else: body(out("hidden")),
			}),
			opt("b", out("b")),
		)),
	})
	testCases = append(testCases, test{
		name: "nested trailing if",
		scene: scene("s", menu(ast.MenuChoose, opt("a", out("a"), assign("X", "A"), &ast.StmtIf{
			Branches: []*ast.IfBranch{
				{Cond: "c", Body: body(out("b"), &ast.StmtIf{
					Branches: []*ast.IfBranch{{Cond: "d", Body: body(assign("X", "B"))}},
				})},
			},
			Else: body(out("e")),
		}))),
		errs: []util.Error{interfaces.ErrInvisibleEnd},
	})
	testCases = append(testCases, test{
		name:  "empty option",
		scene: scene("s", menu(ast.MenuSwitch, opt("a", out("a")), opt("b"))),
	})
	testCases = append(testCases, test{
		name:  "loop outside loopswitch",
		scene: scene("s", menu(ast.MenuChoose, loop("a", out("a")), opt("b", out("b")))),
		errs:  []util.Error{interfaces.ErrLoopOutsideLoopSwitch},
	})
	testCases = append(testCases, test{
		name:  "no loop exit",
		scene: scene("s", menu(ast.MenuLoopSwitch, loop("a", out("a")), loop("b", out("b")))),
		errs:  []util.Error{interfaces.ErrNoLoopExit},
	})
	testCases = append(testCases, test{
		name:  "not exhaustive",
		scene: scene("s", branchon("X", when([]string{"A"}, out("a")), when([]string{"B"}, out("b")))),
		errs:  []util.Error{interfaces.ErrNotExhaustive},
	})
	testCases = append(testCases, test{
		name: "redundant other",
		scene: scene("s", branchon("X",
			when([]string{"A", "B"}, out("a")),
			when([]string{"C"}, out("c")),
			other(out("o")),
		)),
		errs: []util.Error{interfaces.ErrRedundantOther},
	})
	testCases = append(testCases, test{
		name:  "other not last",
		scene: scene("s", branchon("X", other(out("o")), when([]string{"A"}, out("a")))),
		errs:  []util.Error{interfaces.ErrOtherNotLast},
	})
	testCases = append(testCases, test{
		name:  "duplicate other",
		scene: scene("s", branchon("X", when([]string{"A"}, out("a")), other(out("o")), other(out("p")))),
		errs:  []util.Error{interfaces.ErrOtherNotLast, interfaces.ErrDuplicateOther},
	})
	testCases = append(testCases, test{
		name: "duplicate option",
		scene: scene("s", branchon("X",
			when([]string{"A"}, out("a")),
			when([]string{"A", "B"}, out("b")),
			when([]string{"C"}, out("c")),
		)),
		errs: []util.Error{interfaces.ErrDuplicateOption},
	})
	testCases = append(testCases, test{
		name: "unknown option",
		scene: scene("s", branchon("X",
			when([]string{"A", "B", "C"}, out("a")),
			when([]string{"D"}, out("d")),
		)),
		errs: []util.Error{interfaces.ErrUnknownOption},
	})
	testCases = append(testCases, test{
		name:  "unresolved name",
		scene: scene("s", branchon("Y", when([]string{"A"}, out("a")))),
	})
	testCases = append(testCases, test{
		name:  "case ends invisibly",
		scene: scene("s", branchon("X", when([]string{"A", "B", "C"}, out("a"), assign("X", "A")))),
		errs:  []util.Error{interfaces.ErrInvisibleEnd},
	})
	testCases = append(testCases, test{
		name:  "case opens with menu",
		scene: scene("s", branchon("X", other(menu(ast.MenuChoose, opt("x", out("x")))))),
	})
	testCases = append(testCases, test{
		name: "spectrum bands",
		scene: scene("s", branchon("trust",
			when([]string{"high"}, out("h")),
			when([]string{"low"}, out("l")),
		)),
	})
	testCases = append(testCases, test{
		name: "errors in several statements",
		scene: scene("s",
			menu(ast.MenuSwitch),
			menu(ast.MenuChoose, opt("a", call("t"))),
		),
		errs: []util.Error{interfaces.ErrEmptyMenu, interfaces.ErrNestedCall},
	})

	names := []string{}
	for index, tc := range testCases { // run all the tests
		if tc.name == "" {
			t.Errorf("test #%d: not named", index)
			continue
		}
		if util.StrInList(tc.name, names) {
			t.Errorf("test #%d: duplicate sub test name of: %s", index, tc.name)
			continue
		}
		names = append(names, tc.name)

		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			b := newBuilder(t)
			g, errs := b.Scene(tc.scene)

			kinds := []util.Error{}
			for _, err := range errs {
				kinds = append(kinds, err.Kind)
				if !reflect.DeepEqual(err.Chain, []string{"s"}) {
					t.Errorf("test #%d: unexpected chain: %v", index, err.Chain)
				}
			}
			if tc.errs == nil {
				tc.errs = []util.Error{}
			}
			if !reflect.DeepEqual(kinds, tc.errs) {
				t.Errorf("test #%d: expected errors: %v", index, tc.errs)
				t.Errorf("test #%d: got errors: %v", index, errs)
				return
			}
			if len(tc.errs) > 0 && g != nil {
				t.Errorf("test #%d: graph should be withheld", index)
			}
			if len(tc.errs) == 0 && g == nil {
				t.Errorf("test #%d: graph is missing", index)
			}
		})
	}
}

func TestLinear0(t *testing.T) {
	b := newBuilder(t)
	a, x, c := out("a"), assign("X", "A"), out("c")
	g, errs := b.Scene(scene("s", a, x, c))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	va, vx, vc := vertexOf(t, g, a), vertexOf(t, g, x), vertexOf(t, g, c)
	if s := g.Start(); !reflect.DeepEqual(s, []flow.Edge{flow.To(va)}) {
		t.Errorf("unexpected start: %v", s)
	}
	if tg := targets(g, va); !reflect.DeepEqual(tg, []flow.VertexID{vx}) {
		t.Errorf("unexpected targets: %v", tg)
	}
	if tg := targets(g, vc); !reflect.DeepEqual(tg, []flow.VertexID{flow.Sink}) {
		t.Errorf("unexpected targets: %v", tg)
	}
	if v, _ := g.Vertex(vx); v.Visible {
		t.Errorf("assignments are not visible")
	}
	if v, _ := g.Vertex(va); !v.Visible || v.Scene() != "s" {
		t.Errorf("unexpected vertex: %+v", v)
	}
}

func TestMenu0(t *testing.T) {
	b := newBuilder(t)
	a, bb, next := out("a"), out("b"), out("next")
	m := menu(ast.MenuChoose, opt("a", a), opt("empty"), opt("b", bb))
	g, errs := b.Scene(scene("s", m, next))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	vm, va, vb, vn := vertexOf(t, g, m), vertexOf(t, g, a), vertexOf(t, g, bb), vertexOf(t, g, next)
	if tg := targets(g, vm); !reflect.DeepEqual(tg, []flow.VertexID{va, vn, vb}) {
		t.Errorf("options should keep menu order, got: %v", tg)
	}
	for _, id := range []flow.VertexID{va, vb} {
		if tg := targets(g, id); !reflect.DeepEqual(tg, []flow.VertexID{vn}) {
			t.Errorf("option should fall through to next, got: %v", tg)
		}
	}
}

func TestLoopSwitch0(t *testing.T) {
	b := newBuilder(t)
	look, leave := out("look"), out("leave")
	m := menu(ast.MenuLoopSwitch, loop("look", look), opt("leave", leave))
	g, errs := b.Scene(scene("s", m))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	vm, vl := vertexOf(t, g, m), vertexOf(t, g, look)
	if e := g.Edges(vl); !reflect.DeepEqual(e, []flow.Edge{{To: vm, Loop: true}}) {
		t.Errorf("loop option should return to the prompt, got: %v", e)
	}
	if tg := targets(g, vertexOf(t, g, leave)); !reflect.DeepEqual(tg, []flow.VertexID{flow.Sink}) {
		t.Errorf("exit option should leave, got: %v", tg)
	}
	if _, err := g.TopologicalSort(); err != nil {
		t.Errorf("loop edges should not count as cycles: %+v", err)
	}
}

func TestBranchOnOrder0(t *testing.T) {
	b := newBuilder(t)
	oc, ob, oa := out("c"), out("b"), out("a")
	// written as C, B, A but declared as A, B, C
	br := branchon("X",
		when([]string{"C"}, oc),
		when([]string{"B"}, ob),
		when([]string{"A"}, oa),
	)
	g, errs := b.Scene(scene("s", br))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	exp := []flow.VertexID{vertexOf(t, g, oa), vertexOf(t, g, ob), vertexOf(t, g, oc)}
	if tg := targets(g, vertexOf(t, g, br)); !reflect.DeepEqual(tg, exp) {
		t.Errorf("edges should follow the declared order, expected %v, got: %v", exp, tg)
	}
}

func TestBranchOnShared0(t *testing.T) {
	b := newBuilder(t)
	ab, o := out("ab"), out("other")
	br := branchon("X", when([]string{"B", "A"}, ab), other(o))
	g, errs := b.Scene(scene("s", br))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	vab, vo := vertexOf(t, g, ab), vertexOf(t, g, o)
	if tg := targets(g, vertexOf(t, g, br)); !reflect.DeepEqual(tg, []flow.VertexID{vab, vab, vo}) {
		t.Errorf("unexpected targets: %v", tg)
	}
	if i := g.Len(); i != 3 {
		t.Errorf("shared body should be built once, got %d vertices", i)
	}
}

func TestBranchOnUnresolved0(t *testing.T) {
	b := newBuilder(t)
	o1, o2 := out("1"), out("2")
	br := branchon("nope", when([]string{"Q"}, o1), other(o2))
	g, errs := b.Scene(scene("s", br))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if tg := targets(g, vertexOf(t, g, br)); !reflect.DeepEqual(tg, []flow.VertexID{vertexOf(t, g, o1), vertexOf(t, g, o2)}) {
		t.Errorf("unresolved branchon should keep the written order, got: %v", tg)
	}
}

func TestIf0(t *testing.T) {
	b := newBuilder(t)
	a, c, next := out("a"), out("c"), out("next")
	stmt := &ast.StmtIf{
		Branches: []*ast.IfBranch{
			{Cond: "x", Body: body(a)},
			{Cond: "y", Body: body(c)},
		},
	}
	g, errs := b.Scene(scene("s", stmt, next))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	va, vc, vn := vertexOf(t, g, a), vertexOf(t, g, c), vertexOf(t, g, next)
	if s := g.Start(); !reflect.DeepEqual(s, []flow.Edge{flow.To(va), flow.To(vc), flow.To(vn)}) {
		t.Errorf("unexpected start: %v", s)
	}
	if i := g.Len(); i != 3 {
		t.Errorf("if has no vertex of its own, got %d vertices", i)
	}

	// with an else there is no fall through
	e := out("e")
	stmt2 := &ast.StmtIf{
		Branches: []*ast.IfBranch{{Cond: "x", Body: body(out("f"))}},
		Else:     body(e),
	}
	g2, _ := b.Scene(scene("s", out("first"), stmt2))
	first := g2.Start()[0].To
	if tg := targets(g2, first); len(tg) != 2 || tg[1] != vertexOf(t, g2, e) {
		t.Errorf("unexpected targets: %v", tg)
	}
}

func TestChapter0(t *testing.T) {
	b := newBuilder(t)
	a := out("a")
	sc := scene("ch", a)
	sc.Chapter = true
	g, errs := b.Scene(sc)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	first := g.Start()[0].To
	v, _ := g.Vertex(first)
	cp, ok := v.Stmt.(*ast.StmtCheckpoint)
	if !ok || !cp.Implicit || !v.Visible {
		t.Errorf("chapter should open with an implicit checkpoint, got: %v", v)
	}
	if tg := targets(g, first); !reflect.DeepEqual(tg, []flow.VertexID{vertexOf(t, g, a)}) {
		t.Errorf("unexpected targets: %v", tg)
	}
}

func TestStory0(t *testing.T) {
	b := newBuilder(t)
	story := &ast.Story{
		Scenes: []*ast.Scene{
			scene("good", out("a")),
			scene("bad", menu(ast.MenuSwitch)),
			scene("empty"),
		},
	}
	graphs, errs := b.Story(story)
	if len(graphs) != 3 {
		t.Errorf("every scene should have an entry, got: %v", graphs)
	}
	if graphs["good"] == nil || graphs["bad"] != nil {
		t.Errorf("unexpected graphs: %v", graphs)
	}
	if g := graphs["empty"]; g == nil || !g.IsEmpty() {
		t.Errorf("empty scene should have the empty graph")
	}
	if len(errs) != 1 || errs[0].Kind != interfaces.ErrEmptyMenu {
		t.Errorf("unexpected errors: %v", errs)
	}
	if c := b.Alloc.Count(); c != 2 {
		t.Errorf("should have allocated 2 identities instead of: %d", c)
	}
}
