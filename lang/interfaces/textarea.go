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

package interfaces

import (
	"fmt"
	"os"

	"github.com/fabula-lang/fabula/util"
)

// Textarea stores the coordinates of a statement using its position in the
// source. It is meant to be embedded in every statement struct. The zero value
// is a valid, unset area.
type Textarea struct {
	// path is the full path/filename where this text area exists.
	path string

	// This data is zero-based. (Eg: first line of file is 0)
	startLine   int // first
	startColumn int // left
	endLine     int // last
	endColumn   int // right

	isSet bool
}

// Setup sets the path of the file this area belongs to.
func (obj *Textarea) Setup(path string) {
	obj.path = path
}

// IsSet returns if the position was already set with Locate.
func (obj *Textarea) IsSet() bool {
	return obj.isSet
}

// Locate is used by the binder to store the coordinates of the statement.
func (obj *Textarea) Locate(line int, col int, endline int, endcol int) {
	obj.startLine = line
	obj.startColumn = col
	obj.endLine = endline
	obj.endColumn = endcol
	obj.isSet = true
}

// Pos returns the starting line/column of an AST node.
func (obj *Textarea) Pos() (int, int) {
	return obj.startLine, obj.startColumn
}

// End returns the end line/column of an AST node.
func (obj *Textarea) End() (int, int) {
	return obj.endLine, obj.endColumn
}

// Path returns the file path where this AST node can be found.
func (obj *Textarea) Path() string {
	return obj.path
}

// Area returns this text area. Embedding structs get this for free, which is
// what lets them satisfy the Stmt interface.
func (obj *Textarea) Area() *Textarea {
	return obj
}

// Filename returns the printable filename that we'd like to display. It tries
// to return a relative version if possible.
func (obj *Textarea) Filename() string {
	if obj.path == "" {
		return "<unknown>"
	}

	wd, _ := os.Getwd() // ignore error since "" would just pass through
	wd += "/"           // it's a dir
	if s, err := util.RemoveBasePath(obj.path, wd); err == nil {
		return s
	}

	return obj.path
}

// Byline gives a succinct representation of the Textarea. If the coordinates
// were never set, only the filename is returned.
func (obj *Textarea) Byline() string {
	if !obj.isSet {
		return obj.Filename()
	}
	// We convert to 1-based for user display.
	return fmt.Sprintf("%s @ %d:%d-%d:%d", obj.Filename(), obj.startLine+1, obj.startColumn+1, obj.endLine+1, obj.endColumn+1)
}
