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

// Package ast contains the structs implementing and some utility functions for
// interacting with the bound story tree. This is what the binder hands us.
package ast

import (
	"fmt"
	"strings"

	"github.com/fabula-lang/fabula/lang/interfaces"
)

// MenuKind is the flavour of a menu statement.
type MenuKind int

const (
	// MenuSwitch is a fixed menu, indexed by the host.
	MenuSwitch MenuKind = iota

	// MenuChoose is a menu that the player picks from.
	MenuChoose

	// MenuLoopSwitch is a menu whose loop options return to the prompt.
	MenuLoopSwitch
)

// String returns the keyword for this kind of menu.
func (obj MenuKind) String() string {
	switch obj {
	case MenuSwitch:
		return "switch"
	case MenuChoose:
		return "choose"
	case MenuLoopSwitch:
		return "loopswitch"
	}
	return fmt.Sprintf("MenuKind(%d)", int(obj))
}

// Story is the root of the bound tree.
type Story struct {
	Scenes []*Scene

	// Entry is the name of the scene that the program starts in. If it is
	// empty, the first scene is used.
	Entry string
}

// EntryScene returns the scene that the program starts in, or nil.
func (obj *Story) EntryScene() *Scene {
	if obj.Entry == "" {
		if len(obj.Scenes) == 0 {
			return nil
		}
		return obj.Scenes[0]
	}
	return obj.Scene(obj.Entry)
}

// Scene looks up a scene by name, returning nil if it does not exist.
func (obj *Story) Scene(name string) *Scene {
	for _, x := range obj.Scenes {
		if x.Name == name {
			return x
		}
	}
	return nil
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *Story) Apply(fn func(interfaces.Node) error) error {
	for _, x := range obj.Scenes {
		if err := x.Apply(fn); err != nil {
			return err
		}
	}
	return fn(obj)
}

// String returns a short representation of this node.
func (obj *Story) String() string {
	return fmt.Sprintf("story(%d scenes)", len(obj.Scenes))
}

// Scene is a named statement sequence.
type Scene struct {
	interfaces.Textarea

	Name string

	// Chapter is true if this is a chapter-qualified scene.
	Chapter bool

	Body []interfaces.Stmt
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *Scene) Apply(fn func(interfaces.Node) error) error {
	if err := applyBody(obj.Body, fn); err != nil {
		return err
	}
	return fn(obj)
}

// String returns a short representation of this node.
func (obj *Scene) String() string {
	if obj.Chapter {
		return fmt.Sprintf("chapter(%s)", obj.Name)
	}
	return fmt.Sprintf("scene(%s)", obj.Name)
}

// Calls returns every call statement in this scene, in source order.
func (obj *Scene) Calls() []*StmtCall {
	calls := []*StmtCall{}
	fn := func(node interfaces.Node) error {
		if x, ok := node.(*StmtCall); ok {
			calls = append(calls, x)
		}
		return nil
	}
	_ = applyBody(obj.Body, fn) // post-order walk keeps source order
	return calls
}

// applyBody runs Apply on each statement of a body in order.
func applyBody(body []interfaces.Stmt, fn func(interfaces.Node) error) error {
	for _, x := range body {
		if err := x.Apply(fn); err != nil {
			return err
		}
	}
	return nil
}

// StmtOutput is a line of narration.
type StmtOutput struct {
	interfaces.Textarea

	Text string
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *StmtOutput) Apply(fn func(interfaces.Node) error) error { return fn(obj) }

// Visible returns true.
func (obj *StmtOutput) Visible() bool { return true }

// String returns a short representation of this statement.
func (obj *StmtOutput) String() string { return fmt.Sprintf("output(%q)", obj.Text) }

// StmtLine is a line of dialogue said by a speaker.
type StmtLine struct {
	interfaces.Textarea

	Speaker string
	Text    string
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *StmtLine) Apply(fn func(interfaces.Node) error) error { return fn(obj) }

// Visible returns true.
func (obj *StmtLine) Visible() bool { return true }

// String returns a short representation of this statement.
func (obj *StmtLine) String() string { return fmt.Sprintf("line(%s: %q)", obj.Speaker, obj.Text) }

// StmtRunMethod asks the host to run a method.
type StmtRunMethod struct {
	interfaces.Textarea

	Method string
	Args   []string
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *StmtRunMethod) Apply(fn func(interfaces.Node) error) error { return fn(obj) }

// Visible returns true.
func (obj *StmtRunMethod) Visible() bool { return true }

// String returns a short representation of this statement.
func (obj *StmtRunMethod) String() string {
	return fmt.Sprintf("run(%s(%s))", obj.Method, strings.Join(obj.Args, ", "))
}

// StmtMenu is a switch, choose, or loopswitch statement.
type StmtMenu struct {
	interfaces.Textarea

	Kind    MenuKind
	Prompt  string
	Options []*MenuOption
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *StmtMenu) Apply(fn func(interfaces.Node) error) error {
	for _, x := range obj.Options {
		if err := x.Apply(fn); err != nil {
			return err
		}
	}
	return fn(obj)
}

// Visible returns true. The prompt is shown to the player.
func (obj *StmtMenu) Visible() bool { return true }

// String returns a short representation of this statement.
func (obj *StmtMenu) String() string {
	return fmt.Sprintf("%s(%d options)", obj.Kind, len(obj.Options))
}

// MenuOption is one choice of a menu.
type MenuOption struct {
	interfaces.Textarea

	Label string

	// Loop is true if the body returns to the prompt when it finishes.
	Loop bool

	Body []interfaces.Stmt
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *MenuOption) Apply(fn func(interfaces.Node) error) error {
	if err := applyBody(obj.Body, fn); err != nil {
		return err
	}
	return fn(obj)
}

// String returns a short representation of this node.
func (obj *MenuOption) String() string {
	if obj.Loop {
		return fmt.Sprintf("option(%q, loop)", obj.Label)
	}
	return fmt.Sprintf("option(%q)", obj.Label)
}

// StmtBranchOn branches on the value of an outcome or spectrum.
type StmtBranchOn struct {
	interfaces.Textarea

	Name  string
	Cases []*BranchCase
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *StmtBranchOn) Apply(fn func(interfaces.Node) error) error {
	for _, x := range obj.Cases {
		if err := x.Apply(fn); err != nil {
			return err
		}
	}
	return fn(obj)
}

// Visible returns true. The generated machine needs this state to branch.
func (obj *StmtBranchOn) Visible() bool { return true }

// String returns a short representation of this statement.
func (obj *StmtBranchOn) String() string { return fmt.Sprintf("branchon(%s)", obj.Name) }

// BranchCase is one case of a branchon. It either names some options, or is
// the catch-all other case.
type BranchCase struct {
	interfaces.Textarea

	Options []string
	Other   bool
	Body    []interfaces.Stmt
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *BranchCase) Apply(fn func(interfaces.Node) error) error {
	if err := applyBody(obj.Body, fn); err != nil {
		return err
	}
	return fn(obj)
}

// String returns a short representation of this node.
func (obj *BranchCase) String() string {
	if obj.Other {
		return "case(other)"
	}
	return fmt.Sprintf("case(%s)", strings.Join(obj.Options, ", "))
}

// StmtIf is an if with any number of elif branches and an optional else.
type StmtIf struct {
	interfaces.Textarea

	Branches []*IfBranch

	// Else is the body of the else branch, or nil if there is none.
	Else []interfaces.Stmt
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *StmtIf) Apply(fn func(interfaces.Node) error) error {
	for _, x := range obj.Branches {
		if err := x.Apply(fn); err != nil {
			return err
		}
	}
	if err := applyBody(obj.Else, fn); err != nil {
		return err
	}
	return fn(obj)
}

// Visible returns false. An if has no vertex of its own.
func (obj *StmtIf) Visible() bool { return false }

// String returns a short representation of this statement.
func (obj *StmtIf) String() string {
	if obj.Else != nil {
		return fmt.Sprintf("if(%d branches, else)", len(obj.Branches))
	}
	return fmt.Sprintf("if(%d branches)", len(obj.Branches))
}

// IfBranch is a condition and the body it guards. The condition is opaque to
// flow analysis.
type IfBranch struct {
	interfaces.Textarea

	Cond string
	Body []interfaces.Stmt
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *IfBranch) Apply(fn func(interfaces.Node) error) error {
	if err := applyBody(obj.Body, fn); err != nil {
		return err
	}
	return fn(obj)
}

// String returns a short representation of this node.
func (obj *IfBranch) String() string { return fmt.Sprintf("when(%s)", obj.Cond) }

// StmtCall calls another scene.
type StmtCall struct {
	interfaces.Textarea

	Scene string
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *StmtCall) Apply(fn func(interfaces.Node) error) error { return fn(obj) }

// Visible returns false. The call vertex is only a placeholder that gets
// replaced by the callee.
func (obj *StmtCall) Visible() bool { return false }

// String returns a short representation of this statement.
func (obj *StmtCall) String() string { return fmt.Sprintf("call(%s)", obj.Scene) }

// StmtOutcomeDecl declares an outcome. The declaration itself lives in the
// symbol table.
type StmtOutcomeDecl struct {
	interfaces.Textarea

	Name string
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *StmtOutcomeDecl) Apply(fn func(interfaces.Node) error) error { return fn(obj) }

// Visible returns false.
func (obj *StmtOutcomeDecl) Visible() bool { return false }

// String returns a short representation of this statement.
func (obj *StmtOutcomeDecl) String() string { return fmt.Sprintf("outcome(%s)", obj.Name) }

// StmtSpectrumDecl declares a spectrum. The declaration itself lives in the
// symbol table.
type StmtSpectrumDecl struct {
	interfaces.Textarea

	Name string
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *StmtSpectrumDecl) Apply(fn func(interfaces.Node) error) error { return fn(obj) }

// Visible returns false.
func (obj *StmtSpectrumDecl) Visible() bool { return false }

// String returns a short representation of this statement.
func (obj *StmtSpectrumDecl) String() string { return fmt.Sprintf("spectrum(%s)", obj.Name) }

// StmtAssign assigns an option to an outcome.
type StmtAssign struct {
	interfaces.Textarea

	Name   string
	Option string
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *StmtAssign) Apply(fn func(interfaces.Node) error) error { return fn(obj) }

// Visible returns false.
func (obj *StmtAssign) Visible() bool { return false }

// String returns a short representation of this statement.
func (obj *StmtAssign) String() string { return fmt.Sprintf("%s = %s", obj.Name, obj.Option) }

// StmtAdjust strengthens or weakens a spectrum.
type StmtAdjust struct {
	interfaces.Textarea

	Name string

	// Positive is true for strengthen, and false for weaken.
	Positive bool
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *StmtAdjust) Apply(fn func(interfaces.Node) error) error { return fn(obj) }

// Visible returns false.
func (obj *StmtAdjust) Visible() bool { return false }

// String returns a short representation of this statement.
func (obj *StmtAdjust) String() string {
	if obj.Positive {
		return fmt.Sprintf("strengthen(%s)", obj.Name)
	}
	return fmt.Sprintf("weaken(%s)", obj.Name)
}

// StmtCheckpoint marks a resumable save point.
type StmtCheckpoint struct {
	interfaces.Textarea

	Name string

	// Implicit is true for the checkpoint that opens every chapter.
	Implicit bool
}

// Apply is a general purpose iterator method that operates on any AST node.
func (obj *StmtCheckpoint) Apply(fn func(interfaces.Node) error) error { return fn(obj) }

// Visible returns true. The generated machine emits a save state here.
func (obj *StmtCheckpoint) Visible() bool { return true }

// String returns a short representation of this statement.
func (obj *StmtCheckpoint) String() string {
	if obj.Name == "" {
		return "checkpoint"
	}
	return fmt.Sprintf("checkpoint(%s)", obj.Name)
}
