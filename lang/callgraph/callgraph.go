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

// Package callgraph merges the graphs of every scene into one program graph.
// It detects recursive scene calls, checks that each chapter is called exactly
// once, and inlines every call site with flow.Replace.
package callgraph

import (
	"fmt"
	"strings"

	"github.com/fabula-lang/fabula/flow"
	"github.com/fabula-lang/fabula/lang/ast"
	"github.com/fabula-lang/fabula/lang/interfaces"
	"github.com/fabula-lang/fabula/util/errwrap"
)

// Assembler holds all the data that the Assemble function will need to run.
type Assembler struct {
	// Story is the bound tree. Calls are read from the scene bodies.
	Story *ast.Story

	// Graphs holds the flow graph of each scene by name. A nil graph means
	// the scene had structural errors.
	Graphs map[string]*flow.Graph

	// Alloc hands out identities for duplicated call sites. It must be the
	// allocator that built the scene graphs.
	Alloc *flow.Allocator

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Init checks that the assembler has everything it needs.
func (obj *Assembler) Init() error {
	if obj.Story == nil {
		return fmt.Errorf("the Story is missing")
	}
	if obj.Graphs == nil {
		return fmt.Errorf("the Graphs are missing")
	}
	if obj.Alloc == nil {
		return fmt.Errorf("the Alloc is missing")
	}
	if obj.Logf == nil {
		return fmt.Errorf("the Logf function is missing")
	}
	return nil
}

// Assemble builds the consolidated graph of the entry scene. Every call-graph
// error is collected. The graph is nil if the entry scene is affected by a
// cycle, a call to a missing scene, or a scene whose graph was withheld.
func (obj *Assembler) Assemble() (*flow.Graph, interfaces.Errors) {
	errs := interfaces.Errors{}
	entry := obj.Story.EntryScene()
	if entry == nil {
		err := interfaces.NewError(interfaces.ErrUndeclaredScene, nil, "entry scene %q does not exist", obj.Story.Entry)
		err.Names = []string{obj.Story.Entry}
		return nil, append(errs, err)
	}

	sg := &sceneGraph{
		order: []string{},
		calls: make(map[string][]site),
	}
	broken := make(map[string]bool)
	for _, scene := range obj.Story.Scenes {
		sg.order = append(sg.order, scene.Name)
		sites := []site{}
		for _, x := range scene.Calls() {
			if obj.Story.Scene(x.Scene) == nil {
				err := interfaces.NewError(interfaces.ErrUndeclaredScene, x.Area(), "scene %s calls undeclared scene %s", scene.Name, x.Scene)
				err.Names = []string{x.Scene}
				err.Chain = []string{scene.Name}
				errs = append(errs, err)
				broken[scene.Name] = true
				continue
			}
			sites = append(sites, site{caller: scene.Name, callee: x.Scene, stmt: x})
		}
		sg.calls[scene.Name] = sites
		if obj.Graphs[scene.Name] == nil {
			broken[scene.Name] = true
		}
	}

	post, cycles := sg.walk()
	for _, c := range cycles {
		err := interfaces.NewError(interfaces.ErrCyclicCall, c.at.stmt.Area(), "cyclic scene call: %s", strings.Join(c.names, " -> "))
		err.Names = c.names
		err.Chain = []string{c.at.caller}
		errs = append(errs, err)
		for _, name := range c.names {
			broken[name] = true
		}
	}

	errs = append(errs, obj.chapters(sg, post, entry.Name, len(cycles) > 0)...)

	for _, name := range post { // callees before callers
		for _, s := range sg.calls[name] {
			if broken[s.callee] {
				broken[name] = true
			}
		}
	}
	if broken[entry.Name] {
		if obj.Debug {
			obj.Logf("entry scene %s is broken, graph withheld", entry.Name)
		}
		return nil, errs
	}

	g := obj.inline(sg, post, entry.Name)
	if err := g.Validate(); err != nil {
		// programming error!
		panic(errwrap.Wrapf(err, "inlining built an invalid graph").Error())
	}
	if obj.Debug {
		obj.Logf("program graph: %s", g)
	}
	return g, errs
}

// chapters checks that every chapter occurs exactly once in the program. The
// entry scene occurs once, and a scene occurs once for every occurrence of
// each call site that calls it. This counts a chapter called once from a
// scene that is itself called twice as occurring twice. When there are cycles
// the occurrences can't be computed, and the call sites are counted instead.
func (obj *Assembler) chapters(sg *sceneGraph, post []string, entry string, cyclic bool) interfaces.Errors {
	count := make(map[string]int)
	count[entry] = 1 // the implicit call that starts the program

	if cyclic {
		for _, name := range sg.order {
			for _, s := range sg.calls[name] {
				count[s.callee]++
			}
		}
	} else {
		for i := len(post) - 1; i >= 0; i-- { // callers before callees
			name := post[i]
			for _, s := range sg.calls[name] {
				count[s.callee] += count[name]
			}
		}
	}

	errs := interfaces.Errors{}
	for _, scene := range obj.Story.Scenes {
		if !scene.Chapter {
			continue
		}
		c := count[scene.Name]
		if c == 1 {
			continue
		}
		err := interfaces.NewError(interfaces.ErrChapterCallCount, scene.Area(), "chapter %s must be called exactly once, but is called %d times", scene.Name, c)
		err.Names = []string{scene.Name}
		err.Chain = []string{scene.Name}
		errs = append(errs, err)
	}
	return errs
}

// inline expands every scene that is reachable from the entry, callees first,
// by replacing each call vertex with the expanded graph of the callee. The
// first site of a callee keeps its identities, every further site gets a
// relabelled copy. Every inlined vertex gets the caller added to its chain.
func (obj *Assembler) inline(sg *sceneGraph, post []string, entry string) *flow.Graph {
	reachable := sg.reachable(entry)
	expanded := make(map[string]*flow.Graph)
	used := make(map[string]bool)

	for _, name := range post {
		if !reachable[name] {
			continue
		}
		g := obj.Graphs[name]
		for _, id := range g.IDs() {
			v, _ := g.Vertex(id)
			x, ok := v.Stmt.(*ast.StmtCall)
			if !ok {
				continue
			}
			h, exists := expanded[x.Scene]
			if !exists {
				// programming error!
				panic(fmt.Sprintf("scene %s was not expanded before %s", x.Scene, name))
			}
			nested := func(v *flow.Vertex) *flow.Vertex { return v.Nested(name) }
			if used[x.Scene] {
				h = flow.Relabel(h, obj.Alloc, nested)
			} else {
				h = flow.Map(h, nested)
			}
			used[x.Scene] = true

			if obj.Debug {
				obj.Logf("inline: %s into %s at %s", x.Scene, name, id)
			}
			g = flow.Replace(g, id, h)
		}
		expanded[name] = g
	}
	return expanded[entry]
}
