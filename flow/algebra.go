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
)

// Append is sequential composition. Every edge of a that targets Sink is
// rewritten to the start edges of b, and the result starts where a does. If a
// is empty the result is b, and if b is empty the result is a.
func Append(a, b *Graph) *Graph {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	r := rewire(a, b.start)
	return &Graph{
		nodes: mergeNodes(r.nodes, b.nodes),
		exits: mergeIDs(r.exits, b.exits),
		start: r.start,
	}
}

// Fork returns the union of the graphs, starting at the concatenation of all
// of their start edges. It is used for branches without a vertex of their own,
// such as an if statement. An empty input graph contributes an edge straight
// to Sink, which is the fall through of an if without an else. The start keeps
// a single such edge, no matter how many branches fall through directly.
func Fork(gs ...*Graph) *Graph {
	if len(gs) == 0 {
		return Empty()
	}
	nodes := newNodeMap()
	exits := newIDSet()
	start := []Edge{}
	for _, g := range gs {
		nodes = mergeNodes(nodes, g.nodes)
		exits = mergeIDs(exits, g.exits)
		for _, e := range g.start {
			if e == ToSink() && hasEdgeTo(start, Sink) {
				continue
			}
			start = append(start, e)
		}
	}
	return &Graph{
		nodes: nodes,
		exits: exits,
		start: start,
	}
}

// AppendToVertex attaches h as an additional branch from vertex v of g. The
// start edges of h are appended to the edges of v, and v is kept. The same h
// can be attached more than once, since its vertices are shared, not copied.
func AppendToVertex(g *Graph, v VertexID, h *Graph) *Graph {
	n := g.mustNode(v)
	if h.Has(v) {
		panic(fmt.Sprintf("flow: cannot attach a graph containing %s to itself", v))
	}
	edges := make([]Edge, 0, len(n.edges)+len(h.start))
	edges = append(edges, n.edges...)
	edges = append(edges, h.start...)

	nodes := mergeNodes(g.nodes, h.nodes)
	nodes = nodes.Set(v, &node{vertex: n.vertex, edges: edges})
	exits := mergeIDs(g.exits, h.exits)
	if hasEdgeTo(h.start, Sink) {
		exits = exits.Set(v, struct{}{})
	}
	return &Graph{
		nodes: nodes,
		exits: exits,
		start: g.start,
	}
}

// Replace substitutes h for vertex v in g. Every edge of g that targets v is
// redirected to the start of h, and every edge of h that targets Sink is
// redirected to each of the original outgoing edges of v. The vertex v is
// removed, so the result has g.Len() - 1 + h.Len() vertices.
func Replace(g *Graph, v VertexID, h *Graph) *Graph {
	n := g.mustNode(v)
	if hasEdgeTo(n.edges, v) {
		panic(fmt.Sprintf("flow: cannot replace %s which has an edge to itself", v))
	}
	if h.Has(v) {
		panic(fmt.Sprintf("flow: replacement graph already contains %s", v))
	}

	hr := rewire(h, n.edges) // splice point
	target := hr.start

	nodes := g.nodes.Delete(v)
	exits := g.exits.Delete(v)
	itr := nodes.Iterator()
	for !itr.Done() {
		id, m, _ := itr.Next()
		if !hasEdgeTo(m.edges, v) {
			continue
		}
		edges := redirect(m.edges, v, target)
		nodes = nodes.Set(id, &node{vertex: m.vertex, edges: edges})
		if hasEdgeTo(edges, Sink) {
			exits = exits.Set(id, struct{}{})
		}
	}

	return &Graph{
		nodes: mergeNodes(nodes, hr.nodes),
		exits: mergeIDs(exits, hr.exits),
		start: redirect(g.start, v, target),
	}
}

// Loop rewires every edge of h that targets Sink back to target, flagged as a
// loop edge. This is how the body of a loop option returns to its prompt.
func Loop(h *Graph, target VertexID) *Graph {
	return rewire(h, []Edge{{To: target, Loop: true}})
}

// Map returns a copy of g where every vertex is replaced by the result of fn.
// The function must keep the identity of the vertex.
func Map(g *Graph, fn func(*Vertex) *Vertex) *Graph {
	nodes := g.nodes
	itr := g.nodes.Iterator()
	for !itr.Done() {
		id, n, _ := itr.Next()
		v := fn(n.vertex)
		if v == nil || v.ID != id {
			panic(fmt.Sprintf("flow: map changed the identity of %s", id))
		}
		nodes = nodes.Set(id, &node{vertex: v, edges: n.edges})
	}
	return &Graph{
		nodes: nodes,
		exits: g.exits,
		start: g.start,
	}
}

// Relabel returns a copy of g with fresh identities from alloc. Each vertex is
// first passed through fn, which may be nil, and is then copied with its new
// identity. This is used to duplicate a graph that gets spliced in more than
// once.
func Relabel(g *Graph, alloc *Allocator, fn func(*Vertex) *Vertex) *Graph {
	mapping := make(map[VertexID]VertexID, g.Len())
	for _, id := range g.IDs() {
		mapping[id] = alloc.Next()
	}
	remap := func(edges []Edge) []Edge {
		out := make([]Edge, 0, len(edges))
		for _, e := range edges {
			if !e.To.Real() {
				out = append(out, e)
				continue
			}
			to, exists := mapping[e.To]
			if !exists {
				panic(fmt.Sprintf("flow: dangling edge to %s", e.To))
			}
			out = append(out, Edge{To: to, Loop: e.Loop})
		}
		return out
	}

	nodes := newNodeMap()
	exits := newIDSet()
	itr := g.nodes.Iterator()
	for !itr.Done() {
		id, n, _ := itr.Next()
		v := n.vertex
		if fn != nil {
			v = fn(v)
		}
		c := *v // copy
		c.ID = mapping[id]
		nodes = nodes.Set(c.ID, &node{vertex: &c, edges: remap(n.edges)})
		if _, exists := g.exits.Get(id); exists {
			exits = exits.Set(c.ID, struct{}{})
		}
	}
	return &Graph{
		nodes: nodes,
		exits: exits,
		start: remap(g.start),
	}
}

// mustNode returns the node for the identity, and panics if the caller passed
// one that doesn't exist, since that is a programming error.
func (g *Graph) mustNode(id VertexID) *node {
	n, exists := g.nodes.Get(id)
	if !exists {
		panic(fmt.Sprintf("flow: vertex %s does not exist", id))
	}
	return n
}

// rewire redirects every Sink edge of g, including the start edges, to repl.
func rewire(g *Graph, repl []Edge) *Graph {
	keep := hasEdgeTo(repl, Sink)
	nodes := g.nodes
	itr := g.exits.Iterator()
	for !itr.Done() {
		id, _, _ := itr.Next()
		n := g.mustNode(id)
		nodes = nodes.Set(id, &node{vertex: n.vertex, edges: redirect(n.edges, Sink, repl)})
	}
	exits := newIDSet()
	if keep { // they've still got sink edges
		exits = g.exits
	}
	return &Graph{
		nodes: nodes,
		exits: exits,
		start: redirect(g.start, Sink, repl),
	}
}

// redirect replaces each edge to target by the list repl, in place and in
// order. A replaced loop edge keeps its loop flag on every replacement edge.
func redirect(edges []Edge, target VertexID, repl []Edge) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if e.To != target {
			out = append(out, e)
			continue
		}
		for _, r := range repl {
			out = append(out, Edge{To: r.To, Loop: e.Loop || r.Loop})
		}
	}
	return out
}

// mergeNodes returns the union of the two maps. A vertex may be present in
// both only if it is the very same shared node.
func mergeNodes(a, b *nodeMap) *nodeMap {
	if a.Len() < b.Len() {
		a, b = b, a // insert the smaller one into the larger one
	}
	itr := b.Iterator()
	for !itr.Done() {
		id, n, _ := itr.Next()
		if m, exists := a.Get(id); exists {
			if m != n {
				panic(fmt.Sprintf("flow: vertex %s is in both graphs", id))
			}
			continue
		}
		a = a.Set(id, n)
	}
	return a
}

func mergeIDs(a, b *idSet) *idSet {
	if a.Len() < b.Len() {
		a, b = b, a
	}
	itr := b.Iterator()
	for !itr.Done() {
		id, _, _ := itr.Next()
		a = a.Set(id, struct{}{})
	}
	return a
}
