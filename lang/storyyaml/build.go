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

package storyyaml

import (
	"fmt"
	"strings"

	"github.com/fabula-lang/fabula/lang/ast"
	"github.com/fabula-lang/fabula/lang/interfaces"
	"github.com/fabula-lang/fabula/util"
	"github.com/fabula-lang/fabula/util/errwrap"
)

// Build transforms the config into a bound story tree and its symbol table.
// The path is stored in every source position.
func (obj *StoryConfig) Build(path string) (*ast.Story, *interfaces.SymbolTable, error) {
	b := &builder{path: path}
	symbols := interfaces.NewSymbolTable()

	for _, x := range obj.Outcomes {
		o, err := buildOutcome(x)
		if err != nil {
			return nil, nil, err
		}
		if err := symbols.AddOutcome(o); err != nil {
			return nil, nil, err
		}
	}
	for _, x := range obj.Spectrums {
		s, err := buildSpectrum(x)
		if err != nil {
			return nil, nil, err
		}
		if err := symbols.AddSpectrum(s); err != nil {
			return nil, nil, err
		}
	}

	story := &ast.Story{
		Entry:  obj.Entry,
		Scenes: []*ast.Scene{},
	}
	for i, x := range obj.Scenes {
		if x.Name == "" {
			return nil, nil, fmt.Errorf("scene #%d has no name", i)
		}
		if err := symbols.AddScene(&interfaces.SceneSym{Name: x.Name, Chapter: x.Chapter}); err != nil {
			return nil, nil, err
		}
		scene := &ast.Scene{
			Name:    x.Name,
			Chapter: x.Chapter,
		}
		if err := b.locate(&scene.Textarea, x.At); err != nil {
			return nil, nil, errwrap.Wrapf(err, "scene %s", x.Name)
		}
		body, err := b.body(x.Body)
		if err != nil {
			return nil, nil, errwrap.Wrapf(err, "scene %s", x.Name)
		}
		scene.Body = body
		story.Scenes = append(story.Scenes, scene)
	}
	if obj.Entry != "" && story.Scene(obj.Entry) == nil {
		return nil, nil, fmt.Errorf("entry scene %s does not exist", obj.Entry)
	}
	return story, symbols, nil
}

func buildOutcome(x *OutcomeConfig) (*interfaces.Outcome, error) {
	if x.Name == "" {
		return nil, fmt.Errorf("outcome has no name")
	}
	if len(x.Options) == 0 {
		return nil, fmt.Errorf("outcome %s has no options", x.Name)
	}
	if len(util.StrRemoveDuplicatesInList(x.Options)) != len(x.Options) {
		return nil, fmt.Errorf("outcome %s has duplicate options", x.Name)
	}
	if x.Default != "" && !util.StrInList(x.Default, x.Options) {
		return nil, fmt.Errorf("default %s is not an option of outcome %s", x.Default, x.Name)
	}
	return &interfaces.Outcome{
		Name:    x.Name,
		Options: util.CopyStrList(x.Options),
		Default: x.Default,
	}, nil
}

// buildSpectrum checks that the thresholds of every band but the last are
// strictly increasing within (0, 1].
func buildSpectrum(x *SpectrumConfig) (*interfaces.Spectrum, error) {
	if x.Name == "" {
		return nil, fmt.Errorf("spectrum has no name")
	}
	if len(x.Options) == 0 {
		return nil, fmt.Errorf("spectrum %s has no options", x.Name)
	}
	s := &interfaces.Spectrum{
		Name:    x.Name,
		Options: []*interfaces.SpectrumOption{},
		Default: x.Default,
	}
	names := []string{}
	prev := 0.0
	for i, band := range x.Options {
		if util.StrInList(band.Name, names) {
			return nil, fmt.Errorf("spectrum %s has duplicate option %s", x.Name, band.Name)
		}
		names = append(names, band.Name)
		if i < len(x.Options)-1 {
			if band.Threshold <= prev || band.Threshold > 1 {
				return nil, fmt.Errorf("spectrum %s has an invalid threshold for %s: %g", x.Name, band.Name, band.Threshold)
			}
			prev = band.Threshold
		}
		s.Options = append(s.Options, &interfaces.SpectrumOption{
			Name:      band.Name,
			Threshold: band.Threshold,
		})
	}
	if x.Default != "" && !util.StrInList(x.Default, names) {
		return nil, fmt.Errorf("default %s is not an option of spectrum %s", x.Default, x.Name)
	}
	return s, nil
}

type builder struct {
	path string
}

// locate parses a one-based `line:col` or `line:col-line:col` position.
func (obj *builder) locate(area *interfaces.Textarea, at string) error {
	area.Setup(obj.path)
	if at == "" {
		return nil
	}
	var l1, c1, l2, c2 int
	var n int
	if strings.Contains(at, "-") {
		n, _ = fmt.Sscanf(at, "%d:%d-%d:%d", &l1, &c1, &l2, &c2)
		if n != 4 {
			return fmt.Errorf("invalid position: %s", at)
		}
	} else {
		n, _ = fmt.Sscanf(at, "%d:%d", &l1, &c1)
		if n != 2 {
			return fmt.Errorf("invalid position: %s", at)
		}
		l2, c2 = l1, c1
	}
	if l1 < 1 || c1 < 1 || l2 < l1 || (l2 == l1 && c2 < c1) {
		return fmt.Errorf("invalid position: %s", at)
	}
	area.Locate(l1-1, c1-1, l2-1, c2-1) // zero-based
	return nil
}

func (obj *builder) body(list []*StmtConfig) ([]interfaces.Stmt, error) {
	body := []interfaces.Stmt{}
	for i, x := range list {
		stmt, err := obj.stmt(x)
		if err != nil {
			return nil, errwrap.Wrapf(err, "statement #%d", i)
		}
		body = append(body, stmt)
	}
	return body, nil
}

// value returns the string of a statement that takes one.
func value(kind string, p *string) (string, error) {
	if p == nil {
		return "", fmt.Errorf("%s needs a value", kind)
	}
	return *p, nil
}

func (obj *builder) stmt(x *StmtConfig) (interfaces.Stmt, error) {
	var stmt interfaces.Stmt
	var s string
	var err error

	switch x.Kind {
	case "output":
		if s, err = value(x.Kind, x.Output); err == nil {
			stmt = &ast.StmtOutput{Text: s}
		}
	case "line":
		if x.Line == nil {
			return nil, fmt.Errorf("line needs a speaker and text")
		}
		stmt = &ast.StmtLine{Speaker: x.Line.Speaker, Text: x.Line.Text}
	case "run":
		if x.Run == nil || x.Run.Method == "" {
			return nil, fmt.Errorf("run needs a method")
		}
		stmt = &ast.StmtRunMethod{Method: x.Run.Method, Args: util.CopyStrList(x.Run.Args)}
	case "switch":
		stmt, err = obj.menu(ast.MenuSwitch, x.Switch)
	case "choose":
		stmt, err = obj.menu(ast.MenuChoose, x.Choose)
	case "loopswitch":
		stmt, err = obj.menu(ast.MenuLoopSwitch, x.LoopSwitch)
	case "branchon":
		stmt, err = obj.branchOn(x.BranchOn)
	case "if":
		stmt, err = obj.ifElse(x.If)
	case "call":
		if s, err = value(x.Kind, x.Call); err == nil {
			stmt = &ast.StmtCall{Scene: s}
		}
	case "outcome":
		if s, err = value(x.Kind, x.Outcome); err == nil {
			stmt = &ast.StmtOutcomeDecl{Name: s}
		}
	case "spectrum":
		if s, err = value(x.Kind, x.Spectrum); err == nil {
			stmt = &ast.StmtSpectrumDecl{Name: s}
		}
	case "assign":
		if x.Assign == nil {
			return nil, fmt.Errorf("assign needs a name and an option")
		}
		stmt = &ast.StmtAssign{Name: x.Assign.Name, Option: x.Assign.Option}
	case "strengthen":
		if s, err = value(x.Kind, x.Strengthen); err == nil {
			stmt = &ast.StmtAdjust{Name: s, Positive: true}
		}
	case "weaken":
		if s, err = value(x.Kind, x.Weaken); err == nil {
			stmt = &ast.StmtAdjust{Name: s, Positive: false}
		}
	case "checkpoint":
		name := ""
		if x.Checkpoint != nil {
			name = *x.Checkpoint
		}
		stmt = &ast.StmtCheckpoint{Name: name}
	default:
		return nil, fmt.Errorf("unknown statement kind: %s", x.Kind)
	}
	if err != nil {
		return nil, errwrap.Wrapf(err, "%s", x.Kind)
	}
	if err := obj.locate(stmt.Area(), x.At); err != nil {
		return nil, errwrap.Wrapf(err, "%s", x.Kind)
	}
	return stmt, nil
}

func (obj *builder) menu(kind ast.MenuKind, x *MenuConfig) (*ast.StmtMenu, error) {
	if x == nil {
		x = &MenuConfig{} // empty menu, reported by the flow builder
	}
	menu := &ast.StmtMenu{
		Kind:    kind,
		Prompt:  x.Prompt,
		Options: []*ast.MenuOption{},
	}
	for i, o := range x.Options {
		body, err := obj.body(o.Body)
		if err != nil {
			return nil, errwrap.Wrapf(err, "option #%d", i)
		}
		opt := &ast.MenuOption{
			Label: o.Label,
			Loop:  o.Loop,
			Body:  body,
		}
		if err := obj.locate(&opt.Textarea, o.At); err != nil {
			return nil, err
		}
		menu.Options = append(menu.Options, opt)
	}
	return menu, nil
}

func (obj *builder) branchOn(x *BranchOnConfig) (*ast.StmtBranchOn, error) {
	if x == nil || x.Name == "" {
		return nil, fmt.Errorf("branchon needs a name")
	}
	stmt := &ast.StmtBranchOn{
		Name:  x.Name,
		Cases: []*ast.BranchCase{},
	}
	for i, c := range x.Cases {
		if c.Other && len(c.Options) > 0 {
			return nil, fmt.Errorf("case #%d is other and names options", i)
		}
		if !c.Other && len(c.Options) == 0 {
			return nil, fmt.Errorf("case #%d names no options", i)
		}
		body, err := obj.body(c.Body)
		if err != nil {
			return nil, errwrap.Wrapf(err, "case #%d", i)
		}
		bc := &ast.BranchCase{
			Options: util.CopyStrList(c.Options),
			Other:   c.Other,
			Body:    body,
		}
		if err := obj.locate(&bc.Textarea, c.At); err != nil {
			return nil, err
		}
		stmt.Cases = append(stmt.Cases, bc)
	}
	return stmt, nil
}

func (obj *builder) ifElse(x *IfConfig) (*ast.StmtIf, error) {
	if x == nil || len(x.Branches) == 0 {
		return nil, fmt.Errorf("if needs at least one branch")
	}
	stmt := &ast.StmtIf{
		Branches: []*ast.IfBranch{},
	}
	for i, w := range x.Branches {
		body, err := obj.body(w.Body)
		if err != nil {
			return nil, errwrap.Wrapf(err, "branch #%d", i)
		}
		stmt.Branches = append(stmt.Branches, &ast.IfBranch{Cond: w.When, Body: body})
	}
	if x.Else != nil {
		body, err := obj.body(x.Else)
		if err != nil {
			return nil, errwrap.Wrapf(err, "else")
		}
		stmt.Else = body
	}
	return stmt, nil
}
