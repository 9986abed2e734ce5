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

// RemoveInvisible returns a graph containing only the visible vertices. An
// edge that passed through one or more invisible vertices is redirected to the
// nearest visible vertices downstream (or Sink). When a run of invisible
// vertices fans out, every downstream target is kept once, no matter how many
// paths lead to it, and it is merged with a direct edge to the same target. A collapsed edge is a loop edge if any edge it replaced
// was one.
func RemoveInvisible(g *Graph) *Graph {
	memo := make(map[VertexID][]Edge)
	active := make(map[VertexID]bool) // cycle guard

	visible := func(id VertexID) bool {
		if !id.Real() {
			return true // sentinels stay
		}
		return g.mustNode(id).vertex.Visible
	}

	// resolve returns the nearest visible targets past invisible vertex id.
	var resolve func(id VertexID) []Edge
	resolve = func(id VertexID) []Edge {
		if out, exists := memo[id]; exists {
			return out
		}
		if active[id] {
			return nil // an invisible cycle leads to nothing visible
		}
		active[id] = true
		u := newUnion()
		for _, e := range g.mustNode(id).edges {
			if visible(e.To) {
				u.add(e)
				continue
			}
			for _, t := range resolve(e.To) {
				u.add(Edge{To: t.To, Loop: e.Loop || t.Loop})
			}
		}
		delete(active, id)
		memo[id] = u.edges
		return u.edges
	}

	// collapse keeps repeated direct edges as they are, since a menu can
	// list the same target twice. An expanded edge is merged with any edge
	// that already reaches its target, direct or not.
	collapse := func(edges []Edge) []Edge {
		out := []Edge{}
		seen := make(map[VertexID]int)      // target -> first index in out
		expanded := make(map[VertexID]bool) // target was reached by expansion
		for _, e := range edges {
			if visible(e.To) {
				if i, exists := seen[e.To]; exists && expanded[e.To] {
					out[i].Loop = out[i].Loop || e.Loop
					continue
				}
				if _, exists := seen[e.To]; !exists {
					seen[e.To] = len(out)
				}
				out = append(out, e)
				continue
			}
			for _, t := range resolve(e.To) {
				loop := e.Loop || t.Loop
				if i, exists := seen[t.To]; exists {
					out[i].Loop = out[i].Loop || loop
					expanded[t.To] = true
					continue
				}
				seen[t.To] = len(out)
				expanded[t.To] = true
				out = append(out, Edge{To: t.To, Loop: loop})
			}
		}
		return out
	}

	nodes := newNodeMap()
	exits := newIDSet()
	itr := g.nodes.Iterator()
	for !itr.Done() {
		id, n, _ := itr.Next()
		if !n.vertex.Visible {
			continue
		}
		edges := collapse(n.edges)
		nodes = nodes.Set(id, &node{vertex: n.vertex, edges: edges})
		if hasEdgeTo(edges, Sink) {
			exits = exits.Set(id, struct{}{})
		}
	}
	return &Graph{
		nodes: nodes,
		exits: exits,
		start: collapse(g.start),
	}
}

// union is an ordered set of edges keyed by target.
type union struct {
	edges []Edge
	index map[VertexID]int
}

func newUnion() *union {
	return &union{
		edges: []Edge{},
		index: make(map[VertexID]int),
	}
}

// add stores the edge, or merges its loop flag into the existing one.
func (obj *union) add(e Edge) {
	if i, exists := obj.index[e.To]; exists {
		obj.edges[i].Loop = obj.edges[i].Loop || e.Loop
		return
	}
	obj.index[e.To] = len(obj.edges)
	obj.edges = append(obj.edges, e)
}
