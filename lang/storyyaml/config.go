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

// Package storyyaml provides the facilities for loading a bound story tree and
// its symbol table from a yaml file.
package storyyaml

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// StoryConfig is the data structure that describes a whole story.
type StoryConfig struct {
	// Entry is the scene the program starts in. It defaults to the first.
	Entry     string            `yaml:"entry"`
	Outcomes  []*OutcomeConfig  `yaml:"outcomes"`
	Spectrums []*SpectrumConfig `yaml:"spectrums"`
	Scenes    []*SceneConfig    `yaml:"scenes"`
	Comment   string            `yaml:"comment"`
}

// OutcomeConfig declares an outcome.
type OutcomeConfig struct {
	Name    string   `yaml:"name"`
	Options []string `yaml:"options"`
	Default string   `yaml:"default"`
}

// BandConfig is one band of a spectrum. The last band has no threshold.
type BandConfig struct {
	Name      string  `yaml:"name"`
	Threshold float64 `yaml:"threshold"`
}

// SpectrumConfig declares a spectrum.
type SpectrumConfig struct {
	Name    string        `yaml:"name"`
	Options []*BandConfig `yaml:"options"`
	Default string        `yaml:"default"`
}

// SceneConfig is a scene or a chapter.
type SceneConfig struct {
	Name    string        `yaml:"name"`
	Chapter bool          `yaml:"chapter"`
	At      string        `yaml:"at"`
	Body    []*StmtConfig `yaml:"body"`
}

// LineConfig is a line of dialogue.
type LineConfig struct {
	Speaker string `yaml:"speaker"`
	Text    string `yaml:"text"`
}

// RunConfig asks the host to run a method.
type RunConfig struct {
	Method string   `yaml:"method"`
	Args   []string `yaml:"args"`
}

// OptionConfig is one option of a menu.
type OptionConfig struct {
	Label string        `yaml:"label"`
	Loop  bool          `yaml:"loop"`
	At    string        `yaml:"at"`
	Body  []*StmtConfig `yaml:"body"`
}

// MenuConfig is used for switch, choose, and loopswitch.
type MenuConfig struct {
	Prompt  string          `yaml:"prompt"`
	Options []*OptionConfig `yaml:"options"`
}

// CaseConfig is one case of a branchon.
type CaseConfig struct {
	Options []string      `yaml:"options"`
	Other   bool          `yaml:"other"`
	At      string        `yaml:"at"`
	Body    []*StmtConfig `yaml:"body"`
}

// BranchOnConfig branches on a variable.
type BranchOnConfig struct {
	Name  string        `yaml:"name"`
	Cases []*CaseConfig `yaml:"cases"`
}

// WhenConfig is one branch of an if.
type WhenConfig struct {
	When string        `yaml:"when"`
	Body []*StmtConfig `yaml:"body"`
}

// IfConfig is an if with optional elif branches and an optional else.
type IfConfig struct {
	Branches []*WhenConfig `yaml:"branches"`
	Else     []*StmtConfig `yaml:"else"`
}

// AssignConfig assigns an option to an outcome.
type AssignConfig struct {
	Name   string `yaml:"name"`
	Option string `yaml:"option"`
}

// StmtConfig is a single statement. Exactly one of the statement keys must be
// present, optionally along with the `at` position.
type StmtConfig struct {
	// Kind is the statement key that was found.
	Kind string `yaml:"-"`

	// At is the position in the source as `line:col` or
	// `line:col-line:col`, one-based.
	At string `yaml:"at"`

	Output     *string         `yaml:"output"`
	Line       *LineConfig     `yaml:"line"`
	Run        *RunConfig      `yaml:"run"`
	Switch     *MenuConfig     `yaml:"switch"`
	Choose     *MenuConfig     `yaml:"choose"`
	LoopSwitch *MenuConfig     `yaml:"loopswitch"`
	BranchOn   *BranchOnConfig `yaml:"branchon"`
	If         *IfConfig       `yaml:"if"`
	Call       *string         `yaml:"call"`
	Outcome    *string         `yaml:"outcome"`
	Spectrum   *string         `yaml:"spectrum"`
	Assign     *AssignConfig   `yaml:"assign"`
	Strengthen *string         `yaml:"strengthen"`
	Weaken     *string         `yaml:"weaken"`
	Checkpoint *string         `yaml:"checkpoint"`
}

// UnmarshalYAML finds the kind of the statement first, and then unmarshals the
// statement fields.
func (obj *StmtConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var keys yaml.MapSlice
	if err := unmarshal(&keys); err != nil {
		return err
	}
	kinds := []string{}
	for _, item := range keys {
		k, ok := item.Key.(string)
		if !ok {
			return fmt.Errorf("statement key `%v` is not a string", item.Key)
		}
		if k == "at" {
			continue
		}
		kinds = append(kinds, k)
	}
	if len(kinds) != 1 {
		return fmt.Errorf("statement must have exactly one kind, got: %v", kinds)
	}

	type plain StmtConfig // no methods, so this doesn't recurse
	if err := unmarshal((*plain)(obj)); err != nil {
		return err
	}
	obj.Kind = kinds[0]
	return nil
}

// Parse parses a data stream into the story structure. Unknown keys are an
// error.
func Parse(data []byte) (*StoryConfig, error) {
	config := &StoryConfig{}
	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return nil, err
	}
	if len(config.Scenes) == 0 {
		return nil, fmt.Errorf("story config: no scenes")
	}
	return config, nil
}
