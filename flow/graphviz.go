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
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

// Graphviz outputs the graph in graphviz format. Visible vertices are boxes,
// invisible ones are dashed ellipses, and loop edges are dashed.
// https://en.wikipedia.org/wiki/DOT_%28graph_description_language%29
func (g *Graph) Graphviz(name string) string {
	//digraph main_scene {
	//	label="main scene";
	//	start [shape=point];
	//	sink [shape=doublecircle,label="sink"];
	//	v0 [shape=box,label="output(\"hello\")"];
	//	start -> v0;
	//	v0 -> sink;
	//}
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", graphvizID(name))
	fmt.Fprintf(&b, "\tlabel=%s;\n", strconv.Quote(name))
	b.WriteString("\tstart [shape=point];\n")
	b.WriteString("\tsink [shape=doublecircle,label=\"sink\"];\n")

	str := "" // use str for clearer output ordering
	for _, e := range g.start {
		str += fmt.Sprintf("\tstart -> %s%s;\n", graphvizTarget(e.To), graphvizEdgeStyle(e))
	}
	itr := g.nodes.Iterator()
	for !itr.Done() {
		id, n, _ := itr.Next()
		label := id.String()
		if n.vertex.Stmt != nil {
			label = n.vertex.Stmt.String()
		}
		shape := "shape=box"
		if !n.vertex.Visible {
			shape = "shape=ellipse,style=dashed"
		}
		fmt.Fprintf(&b, "\t%s [%s,label=%s];\n", id, shape, strconv.Quote(label))
		for _, e := range n.edges {
			str += fmt.Sprintf("\t%s -> %s%s;\n", id, graphvizTarget(e.To), graphvizEdgeStyle(e))
		}
	}
	b.WriteString(str)
	b.WriteString("}\n")
	return b.String()
}

// graphvizID turns a free form name into a valid unquoted graphviz identifier.
func graphvizID(name string) string {
	id := strings.Map(func(r rune) rune {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, strcase.ToSnake(name))
	if id == "" {
		return "flow"
	}
	if c := id[0]; c >= '0' && c <= '9' {
		id = "g_" + id
	}
	return id
}

func graphvizTarget(id VertexID) string {
	if id == Sink {
		return "sink"
	}
	return id.String()
}

func graphvizEdgeStyle(e Edge) string {
	if e.Loop {
		return " [style=dashed,label=\"loop\"]"
	}
	return ""
}
