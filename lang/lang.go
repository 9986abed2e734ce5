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

// Package lang is the entry point of the flow analysis. It builds the graph of
// every scene, inlines the calls into one program graph, and checks how the
// outcomes and spectrums are assigned, collecting every error on the way.
package lang

import (
	"fmt"

	"github.com/fabula-lang/fabula/flow"
	"github.com/fabula-lang/fabula/lang/assign"
	"github.com/fabula-lang/fabula/lang/ast"
	"github.com/fabula-lang/fabula/lang/callgraph"
	"github.com/fabula-lang/fabula/lang/flowbuild"
	"github.com/fabula-lang/fabula/lang/interfaces"
	"github.com/fabula-lang/fabula/util/errwrap"
)

// Lang is the main flow analysis object.
type Lang struct {
	// Story is the bound tree handed to us by the binder.
	Story *ast.Story

	// Symbols is the table of declarations for the Story. It is copied
	// during Init, and scenes missing from it are added to the copy, so the
	// table that was passed in is left as it was.
	Symbols *interfaces.SymbolTable

	Debug bool
	Logf  func(format string, v ...interface{})

	alloc   *flow.Allocator
	symbols *interfaces.SymbolTable
}

// Init validates the inputs and fills in the scene symbols of its own copy of
// the table.
func (obj *Lang) Init() error {
	if obj.Story == nil {
		return fmt.Errorf("the Story is missing")
	}
	if obj.Symbols == nil {
		return fmt.Errorf("the Symbols table is missing")
	}
	if obj.Logf == nil {
		return fmt.Errorf("the Logf function is missing")
	}
	symbols := obj.Symbols.Copy()

	seen := make(map[string]struct{})
	for _, scene := range obj.Story.Scenes {
		if _, exists := seen[scene.Name]; exists {
			return fmt.Errorf("scene `%s` is declared more than once", scene.Name)
		}
		seen[scene.Name] = struct{}{}

		sym, exists := symbols.Scenes[scene.Name]
		if !exists {
			symbols.Scenes[scene.Name] = &interfaces.SceneSym{
				Name:    scene.Name,
				Chapter: scene.Chapter,
			}
			continue
		}
		if sym.Chapter != scene.Chapter {
			return fmt.Errorf("scene `%s` disagrees with its symbol on being a chapter", scene.Name)
		}
	}

	obj.symbols = symbols
	obj.alloc = flow.NewAllocator()
	return nil
}

// Analyze runs every stage and returns the result. It only errors if the
// object was not initialized, all the problems found in the story itself are
// in the result.
func (obj *Lang) Analyze() (*Result, error) {
	if obj.alloc == nil {
		return nil, fmt.Errorf("the Lang was not initialized")
	}
	result := &Result{
		Errors: interfaces.Errors{},
	}

	obj.Logf("building scene graphs...")
	builder := &flowbuild.Builder{
		Symbols: obj.symbols,
		Alloc:   obj.alloc,
		Debug:   obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("flowbuild: "+format, v...)
		},
	}
	if err := builder.Init(); err != nil {
		return nil, errwrap.Wrapf(err, "could not init the builder")
	}
	graphs, errs := builder.Story(obj.Story)
	result.Errors = append(result.Errors, errs...)

	obj.Logf("assembling call graph...")
	assembler := &callgraph.Assembler{
		Story:  obj.Story,
		Graphs: graphs,
		Alloc:  obj.alloc,
		Debug:  obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("callgraph: "+format, v...)
		},
	}
	if err := assembler.Init(); err != nil {
		return nil, errwrap.Wrapf(err, "could not init the assembler")
	}
	graph, errs := assembler.Assemble()
	result.Errors = append(result.Errors, errs...)
	result.Graph = graph

	if graph == nil {
		obj.Logf("program graph withheld, analyzing the intact scenes on their own...")
		for _, name := range obj.reachable() {
			g := graphs[name]
			if g == nil {
				continue // structural errors
			}
			errs, err := obj.assign(g)
			if err != nil {
				return nil, err
			}
			result.Errors = append(result.Errors, standalone(errs)...)
		}
		return result, nil
	}

	obj.Logf("analyzing assignments...")
	errs, err := obj.assign(graph)
	if err != nil {
		return nil, err
	}
	result.Errors = append(result.Errors, errs...)

	if obj.Debug {
		obj.Logf("result: %s, %d error(s)", graph, len(result.Errors))
	}
	return result, nil
}

// assign runs the assignment analyzer on the graph.
func (obj *Lang) assign(g *flow.Graph) (interfaces.Errors, error) {
	analyzer := &assign.Analyzer{
		Graph:   g,
		Symbols: obj.symbols,
		Debug:   obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("assign: "+format, v...)
		},
	}
	if err := analyzer.Init(); err != nil {
		return nil, errwrap.Wrapf(err, "could not init the analyzer")
	}
	return analyzer.Analyze(), nil
}

// reachable returns the names of the scenes that the entry scene reaches
// through calls to declared scenes, in story order. Cycles are fine.
func (obj *Lang) reachable() []string {
	entry := obj.Story.EntryScene()
	if entry == nil {
		return []string{}
	}
	seen := map[string]bool{entry.Name: true}
	stack := []*ast.Scene{entry}
	for len(stack) > 0 {
		scene := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, x := range scene.Calls() {
			callee := obj.Story.Scene(x.Scene)
			if callee == nil || seen[callee.Name] {
				continue
			}
			seen[callee.Name] = true
			stack = append(stack, callee)
		}
	}
	names := []string{}
	for _, scene := range obj.Story.Scenes {
		if seen[scene.Name] {
			names = append(names, scene.Name)
		}
	}
	return names
}

// standalone keeps the errors of a scene analyzed without its callers and
// callees that hold in any context. Whether a variable is definitely assigned
// depends on what the rest of the program does before the read, so those are
// dropped.
func standalone(errs interfaces.Errors) interfaces.Errors {
	out := interfaces.Errors{}
	for _, err := range errs {
		if err.Kind == interfaces.ErrNotDefinitelyAssigned {
			continue
		}
		out = append(out, err)
	}
	return out
}

// Result is what the flow analysis hands to code generation.
type Result struct {
	// Graph is the consolidated program graph of the entry scene. It is nil
	// if it could not be built.
	Graph *flow.Graph

	// Errors is every error found, in the order the stages found them.
	Errors interfaces.Errors
}

// Valid returns true if there is a graph and no errors.
func (obj *Result) Valid() bool {
	return obj.Graph != nil && len(obj.Errors) == 0
}

// Err returns all the errors as one, or nil if there were none.
func (obj *Result) Err() error {
	errs := []error{}
	for _, x := range obj.Errors {
		errs = append(errs, x)
	}
	return errwrap.Join(errs...)
}

// Visible returns the presentation view of the graph with only the visible
// vertices, or nil if there is no graph.
func (obj *Result) Visible() *flow.Graph {
	if obj.Graph == nil {
		return nil
	}
	return flow.RemoveInvisible(obj.Graph)
}
