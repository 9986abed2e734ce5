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

package flow

import (
	"fmt"

	"github.com/fabula-lang/fabula/util/errwrap"
)

// Successors returns the distinct real targets of the vertex, in edge order.
func (g *Graph) Successors(id VertexID) []VertexID {
	n, exists := g.nodes.Get(id)
	if !exists {
		return nil
	}
	out := []VertexID{}
	seen := make(map[VertexID]struct{})
	for _, e := range n.edges {
		if !e.To.Real() {
			continue
		}
		if _, exists := seen[e.To]; exists {
			continue
		}
		seen[e.To] = struct{}{}
		out = append(out, e.To)
	}
	return out
}

// Predecessors returns a lookup from each vertex to the distinct vertices that
// have an edge to it, in ascending order. Vertices without any predecessor are
// not present.
func (g *Graph) Predecessors() map[VertexID][]VertexID {
	preds := make(map[VertexID][]VertexID)
	itr := g.nodes.Iterator()
	for !itr.Done() {
		id, n, _ := itr.Next()
		for _, e := range n.edges {
			if !e.To.Real() {
				continue
			}
			l := preds[e.To]
			if len(l) > 0 && l[len(l)-1] == id {
				continue // edges of one source are adjacent
			}
			preds[e.To] = append(l, id)
		}
	}
	return preds
}

// Reachable returns the set of vertices that can be reached from the start. It
// is a depth first search with an explicit stack.
func (g *Graph) Reachable() map[VertexID]bool {
	d := make(map[VertexID]bool) // discovered
	var s []VertexID             // stack
	for _, e := range g.start {
		if e.To.Real() {
			s = append(s, e.To)
		}
	}
	for len(s) > 0 {
		var v VertexID
		v, s = s[len(s)-1], s[:len(s)-1] // s.pop()
		if d[v] {
			continue
		}
		d[v] = true // label as discovered
		s = append(s, g.Successors(v)...)
	}
	return d
}

// TopologicalSort returns the vertices in topological order, ignoring loop
// edges. Since loop edges are the only back edges a well formed graph has, it
// errors if the remaining skeleton still has a cycle.
// based on descriptions and code from wikipedia and rosetta code
func (g *Graph) TopologicalSort() ([]VertexID, error) { // kahn's algorithm
	remaining := make(map[VertexID]int) // amount of edges remaining
	itr := g.nodes.Iterator()
	for !itr.Done() {
		_, n, _ := itr.Next()
		for _, e := range n.edges {
			if e.To.Real() && !e.Loop {
				remaining[e.To]++
			}
		}
	}

	var L []VertexID // empty list that will contain the sorted elements
	var S []VertexID // queue of all nodes with no incoming edges
	for _, id := range g.IDs() {
		if remaining[id] == 0 {
			S = append(S, id)
		}
	}
	for len(S) > 0 {
		v := S[0]
		S = S[1:]
		L = append(L, v)
		for _, e := range g.mustNode(v).edges {
			if !e.To.Real() || e.Loop {
				continue
			}
			remaining[e.To]-- // remove edge from the graph
			if remaining[e.To] == 0 {
				S = append(S, e.To)
			}
		}
	}

	if len(L) != g.Len() {
		return nil, fmt.Errorf("not a dag, %d of %d vertices are in a cycle", g.Len()-len(L), g.Len())
	}
	return L, nil
}

// Validate checks the structural invariants of the graph. Any error returned
// here is a bug in whatever built the graph, not a problem in the story.
func (g *Graph) Validate() error {
	var reterr error
	check := func(from string, edges []Edge) {
		for _, e := range edges {
			if e.To == Unresolved {
				reterr = errwrap.Append(reterr, fmt.Errorf("%s has an unresolved edge", from))
				continue
			}
			if !e.To.Real() {
				continue
			}
			if !g.Has(e.To) {
				reterr = errwrap.Append(reterr, fmt.Errorf("%s has a dangling edge to %s", from, e.To))
			}
		}
	}
	check("start", g.start)

	itr := g.nodes.Iterator()
	for !itr.Done() {
		id, n, _ := itr.Next()
		if n.vertex == nil || n.vertex.ID != id {
			reterr = errwrap.Append(reterr, fmt.Errorf("vertex %s is stored under the wrong identity", id))
			continue
		}
		check(id.String(), n.edges)
		_, indexed := g.exits.Get(id)
		if hasEdgeTo(n.edges, Sink) != indexed {
			reterr = errwrap.Append(reterr, fmt.Errorf("vertex %s has a stale exit index", id))
		}
	}
	exits := g.exits.Iterator()
	for !exits.Done() {
		id, _, _ := exits.Next()
		if !g.Has(id) {
			reterr = errwrap.Append(reterr, fmt.Errorf("exit index has missing vertex %s", id))
		}
	}
	return reterr
}
