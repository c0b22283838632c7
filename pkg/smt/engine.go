// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package smt is the narrow interface between the back-end and the
// underlying SMT engine. Every Z3-specific call in this repository lives in
// this package; pkg/smtenc and pkg/classify speak only these types, so a
// future engine swap touches one package.
package smt

import (
	"context"
	"fmt"
	"strings"

	"github.com/aclements/go-z3/z3"
)

// Engine owns one Z3 context. The classifier creates one Engine per
// classified path and derives one Solver per staged query from it (spec ยง5:
// "SMT engine context is per-path").
type Engine struct {
	ctx *z3.Context
}

// NewEngine constructs an Engine with Z3's default configuration.
func NewEngine() *Engine {
	cfg := z3.NewContextConfig()
	return &Engine{ctx: z3.NewContext(cfg)}
}

// IntSort, RealSort, BoolSort and ArraySort name the four sorts this
// back-end encodes into (spec ยง4.3.2, ยง4.3.3).
func (e *Engine) IntSort() Sort  { return Sort{e.ctx.IntSort()} }
func (e *Engine) RealSort() Sort { return Sort{e.ctx.RealSort()} }
func (e *Engine) BoolSort() Sort { return Sort{e.ctx.BoolSort()} }

// ArraySort builds the `Array Int Int` sort used for shape vectors
// (spec ยง4.3.3).
func (e *Engine) ArraySort() Sort {
	return Sort{e.ctx.ArraySort(e.ctx.IntSort(), e.ctx.IntSort())}
}

// Sort wraps a z3.Sort.
type Sort struct{ raw z3.Sort }

// Int is a symbolic integer-sorted term.
type Int struct{ raw z3.Int }

// Real is a symbolic real-sorted term.
type Real struct{ raw z3.Real }

// Bool is a symbolic boolean-sorted term.
type Bool struct{ raw z3.Bool }

// Array is a symbolic `Array Int Int` term: the back-end's shape-vector
// encoding (spec ยง4.3.3).
type Array struct{ raw z3.Array }

// IntConst, RealConst, BoolConst and ArrayConst declare a fresh named
// constant of the given sort. Names must be unique within one Engine for the
// declarations to denote distinct symbols.
func (e *Engine) IntConst(name string) Int   { return Int{e.ctx.IntConst(name)} }
func (e *Engine) RealConst(name string) Real { return Real{e.ctx.RealConst(name)} }
func (e *Engine) BoolConst(name string) Bool { return Bool{e.ctx.BoolConst(name)} }
func (e *Engine) ArrayConst(name string) Array {
	return Array{e.ctx.Array(name, e.ctx.IntSort(), e.ctx.IntSort())}
}

// IntVal and RealVal lift Go literals into SMT terms.
func (e *Engine) IntVal(v int64) Int    { return Int{e.ctx.FromInt(v, e.ctx.IntSort()).(z3.Int)} }
func (e *Engine) RealVal(v float64) Real {
	return Real{e.ctx.FromFloat64(v, e.ctx.RealSort()).(z3.Real)}
}
func (e *Engine) BoolVal(v bool) Bool { return Bool{e.ctx.FromBool(v)} }

// RecFunc declares (but does not yet define) a recursive function of the
// given arity, used for Numel's running-product helper (spec ยง4.3.3,
// mirroring json2z3.py's RecFunction/RecAddDefinition).
func (e *Engine) RecFunc(name string, domain []Sort, rng Sort) RecFunc {
	dom := make([]z3.Sort, len(domain))
	for i, d := range domain {
		dom[i] = d.raw
	}
	return RecFunc{e.ctx.RecFuncDecl(name, dom, rng.raw)}
}

// RecFunc is a declared-but-possibly-not-yet-defined recursive function.
type RecFunc struct{ raw z3.FuncDecl }

// Apply applies the function to the given Int arguments, returning an Int.
func (f RecFunc) Apply(args ...Int) Int {
	as := make([]z3.Value, len(args))
	for i, a := range args {
		as[i] = a.raw
	}
	return Int{f.raw.Apply(as...).(z3.Int)}
}

// AddDefinition binds the recursive function's body in terms of its own
// formal Int arguments, completing the declaration from RecFunc.
func (f RecFunc) AddDefinition(args []Int, body Int) {
	as := make([]z3.Value, len(args))
	for i, a := range args {
		as[i] = a.raw
	}
	f.raw.AddDefinition(as, body.raw)
}

// --- Int arithmetic -------------------------------------------------------

func (a Int) Add(b Int) Int  { return Int{a.raw.Add(b.raw)} }
func (a Int) Sub(b Int) Int  { return Int{a.raw.Sub(b.raw)} }
func (a Int) Mul(b Int) Int  { return Int{a.raw.Mul(b.raw)} }
func (a Int) Div(b Int) Int  { return Int{a.raw.Div(b.raw)} }
func (a Int) Mod(b Int) Int  { return Int{a.raw.Mod(b.raw)} }
func (a Int) Neg() Int       { return Int{a.raw.Neg()} }
func (a Int) ToReal() Real   { return Real{a.raw.ToReal()} }
func (a Int) Eq(b Int) Bool  { return Bool{a.raw.Eq(b.raw)} }
func (a Int) Ne(b Int) Bool  { return Bool{a.raw.Eq(b.raw).Not()} }
func (a Int) Lt(b Int) Bool  { return Bool{a.raw.LT(b.raw)} }
func (a Int) Le(b Int) Bool  { return Bool{a.raw.LE(b.raw)} }
func (a Int) Gt(b Int) Bool  { return Bool{a.raw.GT(b.raw)} }
func (a Int) Ge(b Int) Bool  { return Bool{a.raw.GE(b.raw)} }

// --- Real arithmetic -------------------------------------------------------

func (a Real) Add(b Real) Real { return Real{a.raw.Add(b.raw)} }
func (a Real) Sub(b Real) Real { return Real{a.raw.Sub(b.raw)} }
func (a Real) Mul(b Real) Real { return Real{a.raw.Mul(b.raw)} }
func (a Real) Div(b Real) Real { return Real{a.raw.Div(b.raw)} }
func (a Real) Neg() Real       { return Real{a.raw.Neg()} }
func (a Real) ToInt() Int      { return Int{a.raw.ToInt()} }
func (a Real) Eq(b Real) Bool  { return Bool{a.raw.Eq(b.raw)} }
func (a Real) Ne(b Real) Bool  { return Bool{a.raw.Eq(b.raw).Not()} }
func (a Real) Lt(b Real) Bool  { return Bool{a.raw.LT(b.raw)} }
func (a Real) Le(b Real) Bool  { return Bool{a.raw.LE(b.raw)} }

// --- Bool connectives -------------------------------------------------------

func (a Bool) And(b Bool) Bool { return Bool{a.raw.And(b.raw)} }
func (a Bool) Or(b Bool) Bool  { return Bool{a.raw.Or(b.raw)} }
func (a Bool) Not() Bool       { return Bool{a.raw.Not()} }
func (a Bool) Implies(b Bool) Bool { return Bool{a.raw.Implies(b.raw)} }

// IteInt is an if-then-else over Int branches, guarded by a Bool condition;
// used for the division-by-zero guard (spec ยง4.3.2).
func (cond Bool) IteInt(t, f Int) Int { return Int{cond.raw.IfThenElse(t.raw, f.raw).(z3.Int)} }

// IteReal is IteInt's real-sorted counterpart.
func (cond Bool) IteReal(t, f Real) Real { return Real{cond.raw.IfThenElse(t.raw, f.raw).(z3.Real)} }

// --- Array ------------------------------------------------------------------

// Select reads the element at index idx (spec ยง4.3.3: out-of-range reads
// are the caller's responsibility to mask to -1, this call is the raw
// theory-of-arrays select).
func (a Array) Select(idx Int) Int { return Int{a.raw.Select(idx.raw).(z3.Int)} }

// Store returns a new array equal to a except index idx now holds val.
func (a Array) Store(idx Int, val Int) Array { return Array{a.raw.Store(idx.raw, val.raw).(z3.Array)} }

// --- Quantifiers -------------------------------------------------------------

// ForallInt builds a bounded universal quantifier over one Int-sorted bound
// variable (spec ยง4.3.5).
func (e *Engine) ForallInt(bound Int, body Bool) Bool {
	return Bool{e.ctx.ForAll([]z3.Value{bound.raw}, body.raw)}
}

// --- Solver -------------------------------------------------------------------

// Solver wraps one incremental z3.Solver instance, tracking the pool index
// each asserted formula corresponds to so unsat cores can be mapped back to
// sym.ConstraintSet indices (spec ยง4.4 stage 1).
type Solver struct {
	raw     *z3.Solver
	eng     *Engine
	byLabel map[string]uint
}

// NewSolver constructs a fresh incremental solver sharing this Engine's
// context.
func (e *Engine) NewSolver() *Solver {
	return &Solver{raw: e.ctx.NewSolver(), eng: e, byLabel: make(map[string]uint)}
}

// Assert unconditionally asserts a formula into the current scope.
func (s *Solver) Assert(b Bool) { s.raw.Assert(b.raw) }

// AssertTracked asserts a formula under a fresh boolean tracking literal
// labeled with the given pool index, so it can participate in an unsat
// core (spec ยง4.4 stage 1: "first offender" bookkeeping).
func (s *Solver) AssertTracked(b Bool, poolIndex uint) {
	label := fmt.Sprintf("ctr#%d", poolIndex)
	lit := s.eng.ctx.BoolConst(label)
	s.raw.AssertAndTrack(b.raw, lit)
	s.byLabel[label] = poolIndex
}

// Push opens a new incremental scope.
func (s *Solver) Push() { s.raw.Push() }

// Pop closes the most recently opened scope, discarding its assertions.
func (s *Solver) Pop() { s.raw.Pop(1) }

// CheckResult is the three-valued outcome of a solver call: Z3 itself can
// return `unknown` (e.g. on interruption), distinct from Sat/Unsat.
type CheckResult int

const (
	Unsat CheckResult = iota
	Sat
	Unknown
)

// Check runs satisfiability checking under ctx's deadline, interrupting the
// solver if ctx is cancelled before Z3 returns (spec ยง5 "Cancellation",
// ยง9 "Timeout implementation").
func (s *Solver) Check(ctx context.Context) CheckResult {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.raw.Interrupt()
		case <-done:
		}
	}()

	switch s.raw.Check() {
	case z3.Sat:
		return Sat
	case z3.Unsat:
		return Unsat
	default:
		return Unknown
	}
}

// UnsatCorePoolIndices returns the ctrPool indices of every tracked formula
// that participated in the most recent Unsat result.
func (s *Solver) UnsatCorePoolIndices() []uint {
	core := s.raw.UnsatCore()
	out := make([]uint, 0, len(core))
	for _, lit := range core {
		// Z3 prints a name containing '#' in |...| quotes.
		if idx, ok := s.byLabel[strings.Trim(lit.String(), "|")]; ok {
			out = append(out, idx)
		}
	}
	return out
}

// Close does nothing: it frees no native resources of the solver.
func (s *Solver) Close() {}
