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

// Package flow represents the control flow graph of story statements. Graphs
// are persistent: every operation returns a new graph that shares untouched
// vertices with its inputs, so a built subgraph can be spliced in at several
// places without aliasing.
//
// The graph abstract data type (ADT) is defined as follows:
// * the directed graph arrows point from left to right ( -> )
// * an arrow means "runs before", so it is the direction control flows in
// * the order of the outgoing edges of a vertex is significant
// * an edge to Sink means control leaves this graph there
package flow

import (
	"fmt"
	"strings"

	"github.com/fabula-lang/fabula/lang/interfaces"

	"github.com/benbjohnson/immutable"
)

// VertexID is the identity of a vertex. Real identities are never negative.
type VertexID int

const (
	// Sink is the sentinel target meaning "control leaves this graph here".
	Sink VertexID = -1

	// Unresolved is the sentinel target for an edge that has not been
	// wired up yet. It must never survive construction.
	Unresolved VertexID = -2
)

// Real returns true if this is an actual vertex and not a sentinel.
func (obj VertexID) Real() bool {
	return obj >= 0
}

// String returns a printable form of the identity.
func (obj VertexID) String() string {
	switch obj {
	case Sink:
		return "sink"
	case Unresolved:
		return "unresolved"
	}
	return fmt.Sprintf("v%d", int(obj))
}

// Allocator hands out fresh vertex identities. A single allocator must be
// threaded through every builder call of one compilation so that identities
// are unique program-wide.
type Allocator struct {
	next VertexID
}

// NewAllocator returns a new allocator starting at zero.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns a fresh identity.
func (obj *Allocator) Next() VertexID {
	id := obj.next
	obj.next++
	return id
}

// Count returns how many identities were handed out so far.
func (obj *Allocator) Count() int {
	return int(obj.next)
}

// Vertex is a single statement in the graph. It must not be modified once it
// has been added to a graph. Use Nested or a copy to derive a new one.
type Vertex struct {
	ID VertexID

	// Stmt is the originating statement. It is owned by the bound tree and
	// is only borrowed here.
	Stmt interfaces.Stmt

	// Visible is true if the statement produces externally observable
	// output.
	Visible bool

	// Chain is the list of scene names from innermost to outermost that
	// this vertex was inlined through.
	Chain []string
}

// NewVertex builds a vertex with a fresh identity for the statement.
func NewVertex(alloc *Allocator, stmt interfaces.Stmt, scene string) *Vertex {
	visible := false
	if stmt != nil {
		visible = stmt.Visible()
	}
	return &Vertex{
		ID:      alloc.Next(),
		Stmt:    stmt,
		Visible: visible,
		Chain:   []string{scene},
	}
}

// Scene returns the innermost scene this vertex belongs to.
func (obj *Vertex) Scene() string {
	if len(obj.Chain) == 0 {
		return ""
	}
	return obj.Chain[0]
}

// Nested returns a copy of the vertex as seen after being inlined into the
// given caller scene.
func (obj *Vertex) Nested(caller string) *Vertex {
	chain := make([]string, 0, len(obj.Chain)+1)
	chain = append(chain, obj.Chain...)
	chain = append(chain, caller)
	return &Vertex{
		ID:      obj.ID,
		Stmt:    obj.Stmt,
		Visible: obj.Visible,
		Chain:   chain,
	}
}

// String returns the canonical form for a vertex.
func (obj *Vertex) String() string {
	if obj.Stmt == nil {
		return obj.ID.String()
	}
	return fmt.Sprintf("%s: %s", obj.ID, obj.Stmt)
}

// Edge is an outgoing edge of a vertex.
type Edge struct {
	To VertexID

	// Loop is true for the back edge introduced by a loop option.
	Loop bool
}

// ToSink returns an edge that leaves the graph.
func ToSink() Edge {
	return Edge{To: Sink}
}

// To returns a normal edge to the given vertex.
func To(id VertexID) Edge {
	return Edge{To: id}
}

// String returns a printable form of the edge.
func (obj Edge) String() string {
	if obj.Loop {
		return fmt.Sprintf("-> %s (loop)", obj.To)
	}
	return fmt.Sprintf("-> %s", obj.To)
}

// node is the value stored per vertex. Neither field is modified after the
// node is stored in a map.
type node struct {
	vertex *Vertex
	edges  []Edge
}

type idComparer struct{}

// Compare orders identities numerically.
func (idComparer) Compare(a, b VertexID) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

type nodeMap = immutable.SortedMap[VertexID, *node]

type idSet = immutable.SortedMap[VertexID, struct{}]

func newNodeMap() *nodeMap {
	return immutable.NewSortedMap[VertexID, *node](idComparer{})
}

func newIDSet() *idSet {
	return immutable.NewSortedMap[VertexID, struct{}](idComparer{})
}

// Graph is an immutable flow graph. The zero value is not usable, start from
// Empty or Single.
type Graph struct {
	nodes *nodeMap

	// exits indexes the vertices that have at least one edge to Sink, so
	// that sequential composition doesn't need a full scan.
	exits *idSet

	// start is the ordered list of entry edges. The empty graph starts with
	// a single edge to Sink.
	start []Edge
}

// Empty returns the graph with no vertices. It is the identity of Append.
func Empty() *Graph {
	return &Graph{
		nodes: newNodeMap(),
		exits: newIDSet(),
		start: []Edge{ToSink()},
	}
}

// Single returns a graph of one vertex with the given outgoing edges. Edges to
// real vertices are the caller's responsibility to fill in later, usually with
// Append or Replace, otherwise the graph won't Validate.
func Single(v *Vertex, edges ...Edge) *Graph {
	if v == nil || !v.ID.Real() {
		panic("flow: single vertex graph needs a real vertex")
	}
	es := copyEdges(edges)
	exits := newIDSet()
	if hasEdgeTo(es, Sink) {
		exits = exits.Set(v.ID, struct{}{})
	}
	return &Graph{
		nodes: newNodeMap().Set(v.ID, &node{vertex: v, edges: es}),
		exits: exits,
		start: []Edge{To(v.ID)},
	}
}

// IsEmpty returns true if this is structurally the empty graph.
func (g *Graph) IsEmpty() bool {
	return g.nodes.Len() == 0 && len(g.start) == 1 && g.start[0] == ToSink()
}

// Len returns the number of vertices in the graph.
func (g *Graph) Len() int {
	return g.nodes.Len()
}

// NumEdges returns the number of edges in the graph, not counting the start.
func (g *Graph) NumEdges() int {
	count := 0
	itr := g.nodes.Iterator()
	for !itr.Done() {
		_, n, _ := itr.Next()
		count += len(n.edges)
	}
	return count
}

// Has returns true if the vertex exists in the graph.
func (g *Graph) Has(id VertexID) bool {
	_, exists := g.nodes.Get(id)
	return exists
}

// Vertex returns the vertex with this identity.
func (g *Graph) Vertex(id VertexID) (*Vertex, bool) {
	n, exists := g.nodes.Get(id)
	if !exists {
		return nil, false
	}
	return n.vertex, true
}

// Edges returns a copy of the ordered outgoing edges of the vertex. It returns
// nil if the vertex does not exist.
func (g *Graph) Edges(id VertexID) []Edge {
	n, exists := g.nodes.Get(id)
	if !exists {
		return nil
	}
	return copyEdges(n.edges)
}

// Start returns a copy of the ordered entry edges of the graph.
func (g *Graph) Start() []Edge {
	return copyEdges(g.start)
}

// IDs returns every vertex identity in ascending order.
func (g *Graph) IDs() []VertexID {
	ids := make([]VertexID, 0, g.nodes.Len())
	itr := g.nodes.Iterator()
	for !itr.Done() {
		id, _, _ := itr.Next()
		ids = append(ids, id)
	}
	return ids
}

// Exits returns the identities of the vertices that have an edge to Sink, in
// ascending order.
func (g *Graph) Exits() []VertexID {
	ids := []VertexID{}
	itr := g.exits.Iterator()
	for !itr.Done() {
		id, _, _ := itr.Next()
		ids = append(ids, id)
	}
	return ids
}

// String makes the graph pretty print.
func (g *Graph) String() string {
	return fmt.Sprintf("Vertices(%d), Edges(%d)", g.Len(), g.NumEdges())
}

// Sprint returns a full listing of the graph, one vertex or edge per line. It
// is deterministic, which makes it useful in tests.
func (g *Graph) Sprint() string {
	if g == nil {
		return "<nil>"
	}
	var b strings.Builder
	for _, e := range g.start {
		fmt.Fprintf(&b, "* start %s\n", e)
	}
	itr := g.nodes.Iterator()
	for !itr.Done() {
		_, n, _ := itr.Next()
		fmt.Fprintf(&b, "* v: %s\n", n.vertex)
		for _, e := range n.edges {
			fmt.Fprintf(&b, "* e: %s %s\n", n.vertex.ID, e)
		}
	}
	return b.String()
}

func copyEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

func hasEdgeTo(edges []Edge, id VertexID) bool {
	for _, e := range edges {
		if e.To == id {
			return true
		}
	}
	return false
}
