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

// Package assign implements the definite assignment analysis of outcomes and
// spectrums over the consolidated program graph.
//
// Every vertex gets three sets of variables for the point just before it:
// * def: assigned on every path from the start (intersection)
// * poss: assigned on at least one path from the start (union)
// * locked: possibly assigned before a checkpoint that was crossed (union)
// * seg: assigned or read on every path since the last checkpoint (intersection)
//
// The sets are computed with a forward worklist fixpoint, and the rules are
// checked once it has converged.
package assign

import (
	"fmt"
	"sort"

	"github.com/fabula-lang/fabula/flow"
	"github.com/fabula-lang/fabula/lang/ast"
	"github.com/fabula-lang/fabula/lang/interfaces"
	"github.com/fabula-lang/fabula/util"
)

// Analyzer holds all the data that the Analyze function will need to run.
type Analyzer struct {
	// Graph is the unfiltered program graph. Invisible vertices carry the
	// assignments, so this must not be the RemoveInvisible view.
	Graph *flow.Graph

	// Symbols is where the variables are declared.
	Symbols *interfaces.SymbolTable

	Debug bool
	Logf  func(format string, v ...interface{})

	names []string       // tracked variables in index order
	index map[string]int // name -> index
	in    map[flow.VertexID]*facts
}

// facts are the sets of one program point.
type facts struct {
	def    *varSet
	poss   *varSet
	locked *varSet
	seg    *varSet
}

func (obj *facts) equals(other *facts) bool {
	return obj.def.Equals(other.def) && obj.poss.Equals(other.poss) && obj.locked.Equals(other.locked) && obj.seg.Equals(other.seg)
}

func (obj *facts) clone() *facts {
	return &facts{
		def:    obj.def.Clone(),
		poss:   obj.poss.Clone(),
		locked: obj.locked.Clone(),
		seg:    obj.seg.Clone(),
	}
}

// Init checks the inputs and indexes the variables.
func (obj *Analyzer) Init() error {
	if obj.Graph == nil {
		return fmt.Errorf("the Graph is missing")
	}
	if obj.Symbols == nil {
		return fmt.Errorf("the Symbols table is missing")
	}
	if obj.Logf == nil {
		return fmt.Errorf("the Logf function is missing")
	}
	obj.names = obj.Symbols.VariableNames()
	obj.index = make(map[string]int)
	for i, name := range obj.names {
		obj.index[name] = i
	}
	return nil
}

// Analyze runs the fixpoint and returns every violation found, in topological
// order of the offending vertices.
func (obj *Analyzer) Analyze() interfaces.Errors {
	order, err := obj.Graph.TopologicalSort()
	if err != nil {
		// the builder only makes cycles out of loop edges
		obj.Logf("analyze: %+v", err)
		order = obj.Graph.IDs()
	}
	obj.fixpoint(order)

	errs := interfaces.Errors{}
	for _, id := range order {
		errs = append(errs, obj.check(id)...)
	}
	if obj.Debug {
		obj.Logf("analyze: %d vertices, %d variables, %d error(s)", len(order), len(obj.names), len(errs))
	}
	return errs
}

// fixpoint computes the facts before every vertex. The worklist is seeded in
// topological order, so that vertices outside of loops settle on their first
// visit, and only the bodies of loops are visited again.
func (obj *Analyzer) fixpoint(order []flow.VertexID) {
	preds := obj.Graph.Predecessors()
	entry := make(map[flow.VertexID]bool) // targets of the start
	for _, e := range obj.Graph.Start() {
		if e.To.Real() {
			entry[e.To] = true
		}
	}

	obj.in = make(map[flow.VertexID]*facts)
	out := make(map[flow.VertexID]*facts)

	queue := append([]flow.VertexID{}, order...)
	queued := make(map[flow.VertexID]bool)
	for _, id := range queue {
		queued[id] = true
	}

	count := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		delete(queued, id)
		count++

		defs := []*varSet{}
		poss := []*varSet{}
		locked := []*varSet{}
		segs := []*varSet{}
		if entry[id] {
			defs = append(defs, newVarSet())
			segs = append(segs, newVarSet())
		}
		for _, p := range preds[id] {
			o, exists := out[p]
			if !exists {
				defs = append(defs, nil) // not visited yet, so it's the full set
				segs = append(segs, nil)
				continue
			}
			defs = append(defs, o.def)
			poss = append(poss, o.poss)
			locked = append(locked, o.locked)
			segs = append(segs, o.seg)
		}
		in := &facts{
			def:    intersect(defs...),
			poss:   union(poss...),
			locked: union(locked...),
			seg:    intersect(segs...),
		}
		if in.def == nil {
			in.def = newVarSet() // unreachable
		}
		if in.seg == nil {
			in.seg = newVarSet()
		}
		obj.in[id] = in

		result := obj.transfer(id, in)
		if prev, exists := out[id]; exists && prev.equals(result) {
			continue
		}
		out[id] = result
		for _, next := range obj.Graph.Successors(id) {
			if !queued[next] {
				queued[next] = true
				queue = append(queue, next)
			}
		}
	}
	if obj.Debug {
		obj.Logf("fixpoint: %d visits for %d vertices", count, len(order))
	}
}

// transfer returns the facts after the vertex.
func (obj *Analyzer) transfer(id flow.VertexID, in *facts) *facts {
	v, _ := obj.Graph.Vertex(id)
	out := in.clone()
	switch stmt := v.Stmt.(type) {
	case *ast.StmtAssign:
		if _, exists := obj.Symbols.Outcomes[stmt.Name]; exists {
			out.def.Add(obj.index[stmt.Name])
			out.poss.Add(obj.index[stmt.Name])
			out.seg.Add(obj.index[stmt.Name])
		}
	case *ast.StmtAdjust:
		if _, exists := obj.Symbols.Spectrums[stmt.Name]; exists {
			out.def.Add(obj.index[stmt.Name])
			out.poss.Add(obj.index[stmt.Name])
			out.seg.Add(obj.index[stmt.Name])
		}
	case *ast.StmtBranchOn:
		// only the first read of a segment is checked against the lock
		if i, exists := obj.index[stmt.Name]; exists {
			out.seg.Add(i)
		}
	case *ast.StmtCheckpoint:
		out.locked = union(out.locked, out.poss)
		out.seg = newVarSet()
	}
	return out
}

// check returns the violations at the vertex.
func (obj *Analyzer) check(id flow.VertexID) interfaces.Errors {
	v, _ := obj.Graph.Vertex(id)
	in := obj.in[id]
	errs := interfaces.Errors{}
	report := func(kind util.Error, name string, format string, a ...interface{}) {
		var pos *interfaces.Textarea
		if v.Stmt != nil {
			pos = v.Stmt.Area()
		}
		err := interfaces.NewError(kind, pos, format, a...)
		err.Names = []string{name}
		err.Chain = append([]string{}, v.Chain...)
		errs = append(errs, err)
	}

	switch stmt := v.Stmt.(type) {
	case *ast.StmtBranchOn:
		x, exists := obj.Symbols.Variable(stmt.Name)
		if !exists {
			report(interfaces.ErrUndeclared, stmt.Name, "`%s` is not declared", stmt.Name)
			break
		}
		i := obj.index[stmt.Name]
		if x.HasDefault() {
			break
		}
		if !in.def.Contains(i) {
			report(interfaces.ErrNotDefinitelyAssigned, stmt.Name, "`%s` is not definitely assigned", stmt.Name)
			break
		}
		// an outcome assigned before a checkpoint is locked for the
		// first read of every later segment
		if x.Kind() == interfaces.KindOutcome && !in.seg.Contains(i) {
			report(interfaces.ErrOutcomeLocked, stmt.Name, "`%s` is only assigned before a checkpoint", stmt.Name)
		}

	case *ast.StmtAssign:
		x, exists := obj.Symbols.Outcomes[stmt.Name]
		if !exists {
			obj.misuse(report, stmt.Name, interfaces.KindOutcome)
			break
		}
		if !util.StrInList(stmt.Option, x.Options) {
			report(interfaces.ErrUnknownOption, stmt.Name, "%s is not an option of `%s`", stmt.Option, stmt.Name)
		}
		i := obj.index[stmt.Name]
		if in.locked.Contains(i) {
			report(interfaces.ErrOutcomeLocked, stmt.Name, "`%s` is locked by a checkpoint", stmt.Name)
			break
		}
		if in.poss.Contains(i) {
			report(interfaces.ErrMaybeAssignedTwice, stmt.Name, "`%s` might be assigned more than once", stmt.Name)
		}

	case *ast.StmtAdjust:
		if _, exists := obj.Symbols.Spectrums[stmt.Name]; !exists {
			obj.misuse(report, stmt.Name, interfaces.KindSpectrum)
		}

	case *ast.StmtOutcomeDecl:
		if _, exists := obj.Symbols.Outcomes[stmt.Name]; !exists {
			obj.misuse(report, stmt.Name, interfaces.KindOutcome)
		}

	case *ast.StmtSpectrumDecl:
		if _, exists := obj.Symbols.Spectrums[stmt.Name]; !exists {
			obj.misuse(report, stmt.Name, interfaces.KindSpectrum)
		}
	}
	return errs
}

// misuse reports a name that is not a variable of the wanted kind.
func (obj *Analyzer) misuse(report func(util.Error, string, string, ...interface{}), name string, want interfaces.VarKind) {
	x, exists := obj.Symbols.Variable(name)
	if !exists {
		report(interfaces.ErrUndeclared, name, "`%s` is not declared", name)
		return
	}
	report(interfaces.ErrWrongKind, name, "`%s` is a %s, not a %s", name, x.Kind(), want)
}

// Facts returns the sorted names of the variables that are definitely,
// possibly, and locked assigned just before the vertex. It is only valid
// after Analyze ran.
func (obj *Analyzer) Facts(id flow.VertexID) (def, poss, locked []string) {
	in, exists := obj.in[id]
	if !exists {
		return nil, nil, nil
	}
	names := func(s *varSet) []string {
		out := []string{}
		s.ForEach(func(i int) { out = append(out, obj.names[i]) })
		sort.Strings(out)
		return out
	}
	return names(in.def), names(in.poss), names(in.locked)
}
