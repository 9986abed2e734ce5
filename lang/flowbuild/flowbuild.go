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

// Package flowbuild translates the bound statement tree of a scene into a flow
// graph, and checks the structural rules of menus and branches on the way.
package flowbuild

import (
	"fmt"
	"strings"

	"github.com/fabula-lang/fabula/flow"
	"github.com/fabula-lang/fabula/lang/ast"
	"github.com/fabula-lang/fabula/lang/interfaces"
	"github.com/fabula-lang/fabula/util"
	"github.com/fabula-lang/fabula/util/errwrap"
)

// Builder holds all the data that is needed to build scene graphs.
type Builder struct {
	// Symbols is the table the binder resolved names into. It is used to
	// order the edges of a branchon by the declared options.
	Symbols *interfaces.SymbolTable

	// Alloc hands out the vertex identities. Use the same one for every
	// scene of a story so that identities are unique program-wide.
	Alloc *flow.Allocator

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Init checks that the builder has everything it needs.
func (obj *Builder) Init() error {
	if obj.Symbols == nil {
		return fmt.Errorf("the Symbols table is missing")
	}
	if obj.Alloc == nil {
		return fmt.Errorf("the Alloc is missing")
	}
	if obj.Logf == nil {
		return fmt.Errorf("the Logf function is missing")
	}
	return nil
}

// Story builds the graph of every scene in declaration order. The returned map
// has an entry for every scene, which is nil if a structural error withheld
// that graph. Errors from all scenes are collected.
func (obj *Builder) Story(story *ast.Story) (map[string]*flow.Graph, interfaces.Errors) {
	graphs := make(map[string]*flow.Graph)
	errs := interfaces.Errors{}
	for _, scene := range story.Scenes {
		g, e := obj.Scene(scene)
		graphs[scene.Name] = g
		errs = append(errs, e...)
	}
	return graphs, errs
}

// Scene builds the flow graph of a single scene. If any structural error was
// found, the graph is nil, and all the errors of this scene are returned.
func (obj *Builder) Scene(scene *ast.Scene) (*flow.Graph, interfaces.Errors) {
	s := &state{
		Builder: obj,
		scene:   scene.Name,
		errs:    interfaces.Errors{},
	}

	g := s.body(scene.Body)
	if scene.Chapter {
		cp := &ast.StmtCheckpoint{
			Textarea: scene.Textarea,
			Name:     scene.Name,
			Implicit: true,
		}
		g = flow.Append(s.leaf(cp), g)
	}

	if len(s.errs) > 0 {
		if obj.Debug {
			obj.Logf("scene(%s): withheld with %d error(s)", scene.Name, len(s.errs))
		}
		return nil, s.errs
	}
	if err := g.Validate(); err != nil {
		// programming error!
		panic(errwrap.Wrapf(err, "scene(%s): built an invalid graph", scene.Name).Error())
	}
	if obj.Debug {
		obj.Logf("scene(%s): %s", scene.Name, g)
	}
	return g, s.errs
}

// state is what is carried around while building one scene.
type state struct {
	*Builder

	scene string
	errs  interfaces.Errors
}

// report collects an error about the statement.
func (obj *state) report(kind util.Error, node interfaces.Stmt, names []string, format string, v ...interface{}) {
	var pos *interfaces.Textarea
	if node != nil {
		pos = node.Area()
	}
	err := interfaces.NewError(kind, pos, format, v...)
	err.Names = names
	err.Chain = []string{obj.scene}
	obj.errs = append(obj.errs, err)
}

// leaf is a single vertex with a single successor.
func (obj *state) leaf(x interfaces.Stmt) *flow.Graph {
	return flow.Single(flow.NewVertex(obj.Alloc, x, obj.scene), flow.ToSink())
}

// body builds a statement sequence.
func (obj *state) body(body []interfaces.Stmt) *flow.Graph {
	g := flow.Empty()
	for _, x := range body {
		g = flow.Append(g, obj.stmt(x))
	}
	return g
}

func (obj *state) stmt(x interfaces.Stmt) *flow.Graph {
	switch stmt := x.(type) {
	case *ast.StmtMenu:
		return obj.menu(stmt)
	case *ast.StmtBranchOn:
		return obj.branchOn(stmt)
	case *ast.StmtIf:
		return obj.ifElse(stmt)
	}
	// everything else is one vertex which falls through, including calls
	// which are only placeholders until they get inlined
	return obj.leaf(x)
}

func (obj *state) menu(stmt *ast.StmtMenu) *flow.Graph {
	prompt := flow.NewVertex(obj.Alloc, stmt, obj.scene)
	if len(stmt.Options) == 0 {
		obj.report(interfaces.ErrEmptyMenu, stmt, nil, "%s has no options", stmt.Kind)
		return flow.Single(prompt, flow.ToSink())
	}

	exit := false
	g := flow.Single(prompt)
	for _, opt := range stmt.Options {
		obj.checkOpening(stmt.Kind, opt)
		obj.checkEnding(opt.Body)

		h := obj.body(opt.Body)
		if !opt.Loop {
			exit = true
			g = flow.AppendToVertex(g, prompt.ID, h)
			continue
		}
		if stmt.Kind != ast.MenuLoopSwitch {
			obj.report(interfaces.ErrLoopOutsideLoopSwitch, stmt, []string{opt.Label}, "option %q loops in a %s", opt.Label, stmt.Kind)
			g = flow.AppendToVertex(g, prompt.ID, h)
			continue
		}
		g = flow.AppendToVertex(g, prompt.ID, flow.Loop(h, prompt.ID))
	}
	if stmt.Kind == ast.MenuLoopSwitch && !exit {
		obj.report(interfaces.ErrNoLoopExit, stmt, nil, "every option of this loopswitch loops")
	}
	return g
}

// checkOpening makes sure that the option has something to show of its own
// before any nested prompt or call.
func (obj *state) checkOpening(kind ast.MenuKind, opt *ast.MenuOption) {
	if len(opt.Body) == 0 {
		return
	}
	switch first := opt.Body[0].(type) {
	case *ast.StmtMenu:
		obj.report(interfaces.ErrNestedMenu, first, []string{opt.Label}, "option %q of a %s opens with a nested %s", opt.Label, kind, first.Kind)
	case *ast.StmtCall:
		obj.report(interfaces.ErrNestedCall, first, []string{opt.Label, first.Scene}, "option %q of a %s opens with a call to %s", opt.Label, kind, first.Scene)
	}
}

// checkEnding reports branch bodies that end on an invisible statement. A call
// is fine since the callee is checked on its own. A trailing if is checked in
// each of its branches, and when any of them can fall through, what comes
// before the if is checked too. It returns true if the body can end without
// a statement of its own.
func (obj *state) checkEnding(body []interfaces.Stmt) bool {
	if len(body) == 0 {
		return true
	}
	last := body[len(body)-1]
	switch stmt := last.(type) {
	case *ast.StmtCall:
		return false
	case *ast.StmtIf:
		open := false
		for _, x := range stmt.Branches {
			if obj.checkEnding(x.Body) {
				open = true
			}
		}
		if obj.checkEnding(stmt.Else) { // no else falls through
			open = true
		}
		if !open {
			return false
		}
		return obj.checkEnding(body[:len(body)-1])
	}
	if !last.Visible() {
		obj.report(interfaces.ErrInvisibleEnd, last, nil, "branch body ends on %s", last)
	}
	return false
}

// branchOn builds the vertex for a branchon, with one edge per declared option
// of the variable in declaration order. If the variable is not declared, the
// cases are used in the written order, and the analyzer reports the name.
func (obj *state) branchOn(stmt *ast.StmtBranchOn) *flow.Graph {
	v := flow.NewVertex(obj.Alloc, stmt, obj.scene)
	g := flow.Single(v)

	other := -1 // index of the catch-all case
	for i, c := range stmt.Cases {
		obj.checkEnding(c.Body)
		if !c.Other {
			continue
		}
		if other >= 0 {
			obj.report(interfaces.ErrDuplicateOther, stmt, []string{stmt.Name}, "branchon %s has more than one other branch", stmt.Name)
			continue
		}
		other = i
		if i != len(stmt.Cases)-1 {
			obj.report(interfaces.ErrOtherNotLast, stmt, []string{stmt.Name}, "the other branch of branchon %s is not last", stmt.Name)
		}
	}

	bodies := []*flow.Graph{}
	for _, c := range stmt.Cases {
		bodies = append(bodies, obj.body(c.Body))
	}

	variable, exists := obj.Symbols.Variable(stmt.Name)
	if !exists {
		for _, h := range bodies {
			g = flow.AppendToVertex(g, v.ID, h)
		}
		return g
	}

	declared := variable.OptionNames()
	owner := make(map[string]int) // option -> index of the case naming it
	for i, c := range stmt.Cases {
		if c.Other {
			continue
		}
		for _, name := range c.Options {
			if !util.StrInList(name, declared) {
				obj.report(interfaces.ErrUnknownOption, stmt, []string{stmt.Name, name}, "%s is not an option of %s", name, stmt.Name)
				continue
			}
			if _, exists := owner[name]; exists {
				obj.report(interfaces.ErrDuplicateOption, stmt, []string{stmt.Name, name}, "option %s of %s is named more than once", name, stmt.Name)
				continue
			}
			owner[name] = i
		}
	}

	covered := []string{}
	for name := range owner {
		covered = append(covered, name)
	}
	missing := util.StrFilterElementsInList(covered, declared) // declared order
	if other < 0 && len(missing) > 0 {
		obj.report(interfaces.ErrNotExhaustive, stmt, append([]string{stmt.Name}, missing...), "branchon %s does not handle: %s", stmt.Name, strings.Join(missing, ", "))
	}
	if other >= 0 && len(missing) == 0 {
		obj.report(interfaces.ErrRedundantOther, stmt, []string{stmt.Name}, "branchon %s names every option and has an other branch", stmt.Name)
	}

	for _, name := range declared {
		i, exists := owner[name]
		if !exists {
			i = other
		}
		if i < 0 {
			continue // not exhaustive, already reported
		}
		g = flow.AppendToVertex(g, v.ID, bodies[i])
	}
	return g
}

// ifElse has no vertex of its own. It starts at every branch, and falls through
// to whatever follows when there is no else.
func (obj *state) ifElse(stmt *ast.StmtIf) *flow.Graph {
	gs := []*flow.Graph{}
	for _, x := range stmt.Branches {
		gs = append(gs, obj.body(x.Body))
	}
	gs = append(gs, obj.body(stmt.Else)) // empty without an else
	return flow.Fork(gs...)
}
