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
	"testing"

	"github.com/fabula-lang/fabula/lang/interfaces"
)

// stmt is a minimal statement used to label test vertices.
type stmt struct {
	interfaces.Textarea

	name    string
	visible bool
}

func (obj *stmt) String() string                             { return obj.name }
func (obj *stmt) Apply(fn func(interfaces.Node) error) error { return fn(obj) }
func (obj *stmt) Visible() bool                              { return obj.visible }

// NV returns a new visible test vertex.
func NV(alloc *Allocator, name string) *Vertex {
	return NewVertex(alloc, &stmt{name: name, visible: true}, "test")
}

// NI returns a new invisible test vertex.
func NI(alloc *Allocator, name string) *Vertex {
	return NewVertex(alloc, &stmt{name: name, visible: false}, "test")
}

// leaf builds the one vertex graph that falls through to its successor.
func leaf(v *Vertex) *Graph {
	return Single(v, ToSink())
}

// chain appends the graphs in order.
func chain(gs ...*Graph) *Graph {
	g := Empty()
	for _, x := range gs {
		g = Append(g, x)
	}
	return g
}

func runGraphCmp(t *testing.T, g1, g2 *Graph) {
	if s1, s2 := g1.Sprint(), g2.Sprint(); s1 != s2 {
		t.Logf("  actual (g1): %v\n%s", g1, s1)
		t.Logf("expected (g2): %v\n%s", g2, s2)
		t.Errorf("graphs are not structurally equal")
	}
}

func mustValidate(t *testing.T, g *Graph) {
	if err := g.Validate(); err != nil {
		t.Errorf("graph did not validate: %+v", err)
		t.Logf("graph:\n%s", g.Sprint())
	}
}

func edgesString(edges []Edge) string {
	return fmt.Sprintf("%v", edges)
}
