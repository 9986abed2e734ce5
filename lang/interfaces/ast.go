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

// Package interfaces contains the common interfaces used by the flow analysis
// stages. The bound story tree handed to us by the binder satisfies these.
package interfaces

import (
	"fmt"
)

// Node represents either a Stmt or a part of one such as a menu option or a
// branch case. All nodes can be walked with Apply.
type Node interface {
	fmt.Stringer

	// Apply is a general purpose iterator method that operates on any node.
	Apply(fn func(Node) error) error
}

// Stmt represents a single bound statement of a scene body.
type Stmt interface {
	Node

	// Visible returns true if this statement produces externally observable
	// output. Bookkeeping statements such as assignments are not visible.
	Visible() bool

	// Area returns the source location of this statement. It is never nil
	// for statements built by the binder, but it might not be set.
	Area() *Textarea
}

// TextDisplayer is a graph node that is aware of its position in the source
// code, and can emit a textual representation of that part of the source.
type TextDisplayer interface {
	// Byline returns a simple version of the location of the node.
	Byline() string
}
