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
	"sort"
	"strings"
)

// VarKind distinguishes the two kinds of narrative variables.
type VarKind int

const (
	// KindOutcome is a variable that is assigned one of its options
	// directly.
	KindOutcome VarKind = iota

	// KindSpectrum is a variable whose effective option is computed from
	// the ratio of positive adjustments to the total adjustment count.
	KindSpectrum
)

// String returns the keyword used for this kind in the language.
func (obj VarKind) String() string {
	switch obj {
	case KindOutcome:
		return "outcome"
	case KindSpectrum:
		return "spectrum"
	}
	return fmt.Sprintf("VarKind(%d)", int(obj))
}

// Variable is the common view of outcomes and spectrums. Both are read by the
// branchon construct, which needs the declared option order.
type Variable interface {
	fmt.Stringer

	// VarName returns the declared name.
	VarName() string

	// Kind returns which sort of variable this is.
	Kind() VarKind

	// OptionNames returns the declared options in declaration order.
	OptionNames() []string

	// HasDefault returns true if a default option was declared. A variable
	// with a default can be read without being assigned first.
	HasDefault() bool
}

// Outcome is a named variable with a finite, ordered set of options.
type Outcome struct {
	Name    string
	Options []string

	// Default is the declared default option, or empty if there is none.
	Default string
}

// VarName returns the declared name.
func (obj *Outcome) VarName() string { return obj.Name }

// Kind returns KindOutcome.
func (obj *Outcome) Kind() VarKind { return KindOutcome }

// OptionNames returns the declared options in declaration order.
func (obj *Outcome) OptionNames() []string { return obj.Options }

// HasDefault returns true if a default option was declared.
func (obj *Outcome) HasDefault() bool { return obj.Default != "" }

// String returns the declaration in the language syntax.
func (obj *Outcome) String() string {
	s := fmt.Sprintf("outcome %s(%s)", obj.Name, strings.Join(obj.Options, ", "))
	if obj.HasDefault() {
		s += " default " + obj.Default
	}
	return s
}

// SpectrumOption is one band of a spectrum. Threshold is the upper bound of
// the positive/total ratio that selects this band. It is ignored on the last
// band, which catches everything above the previous threshold.
type SpectrumOption struct {
	Name      string
	Threshold float64
}

// Spectrum is a graded outcome that is adjusted rather than assigned.
type Spectrum struct {
	Name    string
	Options []*SpectrumOption

	// Default is the declared default band, or empty if there is none.
	Default string
}

// VarName returns the declared name.
func (obj *Spectrum) VarName() string { return obj.Name }

// Kind returns KindSpectrum.
func (obj *Spectrum) Kind() VarKind { return KindSpectrum }

// OptionNames returns the band names in declaration order.
func (obj *Spectrum) OptionNames() []string {
	names := []string{}
	for _, x := range obj.Options {
		names = append(names, x.Name)
	}
	return names
}

// HasDefault returns true if a default band was declared.
func (obj *Spectrum) HasDefault() bool { return obj.Default != "" }

// Select returns the band chosen by the given adjustment counts. With no
// adjustments at all, the default band is returned, which may be empty.
func (obj *Spectrum) Select(positive, total int) string {
	if total <= 0 || len(obj.Options) == 0 {
		return obj.Default
	}
	ratio := float64(positive) / float64(total)
	last := len(obj.Options) - 1
	for _, x := range obj.Options[:last] {
		if ratio <= x.Threshold {
			return x.Name
		}
	}
	return obj.Options[last].Name
}

// String returns the declaration in the language syntax.
func (obj *Spectrum) String() string {
	bands := []string{}
	for i, x := range obj.Options {
		if i == len(obj.Options)-1 {
			bands = append(bands, x.Name)
			continue
		}
		bands = append(bands, fmt.Sprintf("%s %g", x.Name, x.Threshold))
	}
	s := fmt.Sprintf("spectrum %s(%s)", obj.Name, strings.Join(bands, ", "))
	if obj.HasDefault() {
		s += " default " + obj.Default
	}
	return s
}

// SceneSym is the symbol table entry for a scene.
type SceneSym struct {
	Name string

	// Chapter scenes must be called exactly once program-wide, and mark a
	// checkpoint boundary.
	Chapter bool
}

// SymbolTable maps names to the declarations the binder resolved.
type SymbolTable struct {
	Outcomes  map[string]*Outcome
	Spectrums map[string]*Spectrum
	Scenes    map[string]*SceneSym
}

// NewSymbolTable returns an empty, initialized symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Outcomes:  make(map[string]*Outcome),
		Spectrums: make(map[string]*Spectrum),
		Scenes:    make(map[string]*SceneSym),
	}
}

// InitTable makes sure all of the maps are usable, in case the struct was
// built by hand.
func (obj *SymbolTable) InitTable() {
	if obj.Outcomes == nil {
		obj.Outcomes = make(map[string]*Outcome)
	}
	if obj.Spectrums == nil {
		obj.Spectrums = make(map[string]*Spectrum)
	}
	if obj.Scenes == nil {
		obj.Scenes = make(map[string]*SceneSym)
	}
}

// Copy returns a new table with the same declarations. The maps are new, so
// adding to the copy does not change the original, but the declarations are
// shared.
func (obj *SymbolTable) Copy() *SymbolTable {
	table := NewSymbolTable()
	for k, v := range obj.Outcomes {
		table.Outcomes[k] = v
	}
	for k, v := range obj.Spectrums {
		table.Spectrums[k] = v
	}
	for k, v := range obj.Scenes {
		table.Scenes[k] = v
	}
	return table
}

// AddOutcome stores the outcome declaration. It errors on a duplicate name of
// either kind.
func (obj *SymbolTable) AddOutcome(x *Outcome) error {
	obj.InitTable()
	if _, exists := obj.Variable(x.Name); exists {
		return fmt.Errorf("variable `%s` is already declared", x.Name)
	}
	obj.Outcomes[x.Name] = x
	return nil
}

// AddSpectrum stores the spectrum declaration. It errors on a duplicate name of
// either kind.
func (obj *SymbolTable) AddSpectrum(x *Spectrum) error {
	obj.InitTable()
	if _, exists := obj.Variable(x.Name); exists {
		return fmt.Errorf("variable `%s` is already declared", x.Name)
	}
	obj.Spectrums[x.Name] = x
	return nil
}

// AddScene stores the scene declaration. It errors on a duplicate name.
func (obj *SymbolTable) AddScene(x *SceneSym) error {
	obj.InitTable()
	if _, exists := obj.Scenes[x.Name]; exists {
		return fmt.Errorf("scene `%s` is already declared", x.Name)
	}
	obj.Scenes[x.Name] = x
	return nil
}

// Variable looks up an outcome or spectrum by name.
func (obj *SymbolTable) Variable(name string) (Variable, bool) {
	if x, exists := obj.Outcomes[name]; exists {
		return x, true
	}
	if x, exists := obj.Spectrums[name]; exists {
		return x, true
	}
	return nil, false
}

// VariableNames returns the sorted names of every outcome and spectrum.
func (obj *SymbolTable) VariableNames() []string {
	names := []string{}
	for name := range obj.Outcomes {
		names = append(names, name)
	}
	for name := range obj.Spectrums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
