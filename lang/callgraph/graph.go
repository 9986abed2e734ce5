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

package callgraph

import (
	"strings"

	"github.com/fabula-lang/fabula/lang/ast"
)

// site is one call statement, from the scene that contains it.
type site struct {
	caller string
	callee string
	stmt   *ast.StmtCall
}

// sceneGraph is the directed graph over scenes, with one edge per call site.
type sceneGraph struct {
	order []string          // declaration order
	calls map[string][]site // caller -> sites in source order
}

// cycle is a list of scene names from a repeated scene back to itself, and the
// call site that closed it.
type cycle struct {
	names []string
	at    site
}

// key is used to report each distinct cycle once.
func (obj *cycle) key() string {
	return strings.Join(obj.names, "\x00")
}

// walk is an iterative depth first search with an explicit recursion stack. It
// visits scenes in declaration order and callees in call order. It returns the
// scenes in post-order, which puts callees before their callers, and one cycle
// per back edge found.
func (obj *sceneGraph) walk() ([]string, []*cycle) {
	const (
		white = iota // not yet seen
		grey         // on the stack
		black        // finished
	)
	type frame struct {
		name string
		next int // index of the next call site to follow
	}

	color := make(map[string]int)
	post := []string{}
	cycles := []*cycle{}
	seen := make(map[string]struct{})

	for _, root := range obj.order {
		if color[root] != white {
			continue
		}
		stack := []*frame{{name: root}}
		color[root] = grey
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			calls := obj.calls[top.name]
			if top.next >= len(calls) {
				color[top.name] = black
				post = append(post, top.name)
				stack = stack[:len(stack)-1] // pop
				continue
			}
			s := calls[top.next]
			top.next++

			switch color[s.callee] {
			case white:
				color[s.callee] = grey
				stack = append(stack, &frame{name: s.callee})

			case grey: // back edge
				names := []string{}
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i].name == s.callee {
						for _, f := range stack[i:] {
							names = append(names, f.name)
						}
						break
					}
				}
				names = append(names, s.callee)
				c := &cycle{names: names, at: s}
				if _, exists := seen[c.key()]; exists {
					continue
				}
				seen[c.key()] = struct{}{}
				cycles = append(cycles, c)
			}
		}
	}
	return post, cycles
}

// reachable returns the set of scenes that can be reached from the entry.
func (obj *sceneGraph) reachable(entry string) map[string]bool {
	r := map[string]bool{entry: true}
	queue := []string{entry}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, s := range obj.calls[name] {
			if r[s.callee] {
				continue
			}
			r[s.callee] = true
			queue = append(queue, s.callee)
		}
	}
	return r
}
