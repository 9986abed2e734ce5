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
	"strings"

	"github.com/fabula-lang/fabula/util"
)

const (
	// ErrNestedMenu means an option body opens with another menu.
	ErrNestedMenu = util.Error("option body must not open with a nested switch")

	// ErrNestedCall means an option body opens with a scene call.
	ErrNestedCall = util.Error("option body must not open with a call")

	// ErrInvisibleEnd means a branch body ends on a statement with no
	// output, so there is nothing to show before the next prompt.
	ErrInvisibleEnd = util.Error("branch body must not end on an invisible statement")

	// ErrEmptyMenu means a menu was declared without options.
	ErrEmptyMenu = util.Error("menu has no options")

	// ErrLoopOutsideLoopSwitch means a loop option was used in a menu that
	// is not a loopswitch.
	ErrLoopOutsideLoopSwitch = util.Error("loop option outside of a loopswitch")

	// ErrNoLoopExit means every option of a loopswitch loops.
	ErrNoLoopExit = util.Error("loopswitch has no exit option")

	// ErrOtherNotLast means the catch-all branch is not the final one.
	ErrOtherNotLast = util.Error("other branch must be last")

	// ErrDuplicateOther means there is more than one catch-all branch.
	ErrDuplicateOther = util.Error("other branch must be the sole catch-all")

	// ErrNotExhaustive means a branchon without an other branch does not
	// name every declared option.
	ErrNotExhaustive = util.Error("branchon is not exhaustive")

	// ErrRedundantOther means a branchon names every declared option and
	// still has an other branch.
	ErrRedundantOther = util.Error("branchon is exhaustive and has an other branch")

	// ErrDuplicateOption means an option is named by more than one case.
	ErrDuplicateOption = util.Error("option is named more than once")

	// ErrUnknownOption means an option is not declared on the variable.
	ErrUnknownOption = util.Error("option is not declared")

	// ErrCyclicCall means scenes call each other recursively.
	ErrCyclicCall = util.Error("cyclic scene call")

	// ErrChapterCallCount means a chapter is not called exactly once.
	ErrChapterCallCount = util.Error("chapter must be called exactly once")

	// ErrUndeclaredScene means a call names a scene that does not exist.
	ErrUndeclaredScene = util.Error("call to undeclared scene")

	// ErrNotDefinitelyAssigned means a read can happen on a path where the
	// variable was never assigned.
	ErrNotDefinitelyAssigned = util.Error("not definitely assigned")

	// ErrMaybeAssignedTwice means an assignment can happen on a path where
	// the outcome was already assigned.
	ErrMaybeAssignedTwice = util.Error("might be assigned more than once")

	// ErrOutcomeLocked means the outcome was (possibly) assigned before a
	// checkpoint that has since been crossed.
	ErrOutcomeLocked = util.Error("outcome is locked")

	// ErrUndeclared means a name is not in the symbol table.
	ErrUndeclared = util.Error("undeclared name")

	// ErrWrongKind means an outcome was used as a spectrum or vice versa.
	ErrWrongKind = util.Error("wrong kind of variable")
)

// Error is the structured record used for every diagnostic. It is collected
// rather than returned early, so that every problem in a pass is reported.
type Error struct {
	// Kind is the sentinel that classifies this error. It is what errors.Is
	// matches against.
	Kind util.Error

	// Msg is the human readable message.
	Msg string

	// Pos is the source position of the offending statement. It can be nil.
	Pos *Textarea

	// Names holds structured context, such as the variable name or the
	// scenes that form a call cycle.
	Names []string

	// Chain is the list of scene names from innermost to outermost at the
	// point of the error.
	Chain []string
}

// NewError builds an error of the given kind at the given position.
func NewError(kind util.Error, pos *Textarea, format string, v ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, v...),
		Pos:  pos,
	}
}

// Error returns the printable form, prefixed with the position if we have one.
func (obj *Error) Error() string {
	s := obj.Msg
	if s == "" {
		s = obj.Kind.Error()
	}
	if len(obj.Chain) > 1 {
		s += fmt.Sprintf(" (in %s)", strings.Join(obj.Chain, " < "))
	}
	if obj.Pos == nil {
		return s
	}
	return fmt.Sprintf("%s: %s", obj.Pos.Byline(), s)
}

// Unwrap returns the kind, so that errors.Is works with the sentinels.
func (obj *Error) Unwrap() error {
	return obj.Kind
}

// Errors is a list of collected errors.
type Errors []*Error

// Count returns how many errors of the given kind are in the list.
func (obj Errors) Count(kind util.Error) int {
	count := 0
	for _, x := range obj {
		if x.Kind == kind {
			count++
		}
	}
	return count
}

// Filter returns the errors of the given kind.
func (obj Errors) Filter(kind util.Error) Errors {
	out := Errors{}
	for _, x := range obj {
		if x.Kind == kind {
			out = append(out, x)
		}
	}
	return out
}
