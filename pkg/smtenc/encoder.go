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
package smtenc

import (
	"fmt"

	"github.com/shapecheck/backend/pkg/smt"
	"github.com/shapecheck/backend/pkg/sym"
)

// Encoder translates the closed sym IR into pkg/smt terms for one path. It
// holds per-path memoization caches (spec ยง3 "Lifecycle": the cache is
// discarded along with the ConstraintSet it was built for) and a counter
// for fresh symbol names, since the wire IR's own symbol names are not
// guaranteed unique across the auxiliary names this encoder introduces
// (Shape array constants, Numel's recursive helper).
//
// sym nodes are immutable value structs, not heap pointers, so unlike a
// pointer-identity cache this memoizes on each node's String() rendering:
// two structurally identical subexpressions always render identically and
// so share one translation.
type Encoder struct {
	eng *smt.Engine

	numCache   map[string]numVal
	boolCache  map[string]smt.Bool
	shapeCache map[string]shapeVal

	fresh int
}

// NewEncoder constructs an Encoder bound to one Engine. Callers create one
// Encoder per path.
func NewEncoder(eng *smt.Engine) *Encoder {
	return &Encoder{
		eng:        eng,
		numCache:   make(map[string]numVal),
		boolCache:  make(map[string]smt.Bool),
		shapeCache: make(map[string]shapeVal),
	}
}

// numVal is a Num translation: exactly one of Int/Real is meaningful,
// selected by IsReal (spec ยง4.3.2's structural int/real inference).
type numVal struct {
	IsReal bool
	I      smt.Int
	R      smt.Real
}

func intVal(i smt.Int) numVal  { return numVal{I: i} }
func realVal(r smt.Real) numVal { return numVal{IsReal: true, R: r} }

// toReal widens an Int-valued numVal to Real, leaving a Real-valued one
// unchanged; used wherever two numVal operands must share a sort before an
// SMT operator applies.
func (v numVal) toReal() smt.Real {
	if v.IsReal {
		return v.R
	}
	return v.I.ToReal()
}

// shapeVal is a Shape translation: a symbolic rank plus an indexing
// function into the shape's dims. Shapes are not always materialized as one
// concrete smt.Array (Slice/Concat/Broadcast reindex their base shape's
// indexing function instead, spec ยง4.3.3), but ShapeConst and ShapeSymRef
// always are, so every Select ultimately bottoms out in a real Array Int
// Int theory term.
type shapeVal struct {
	Rank   smt.Int
	Select func(idx smt.Int) smt.Int
}

// maskedSelect applies the out-of-range masking spec ยง4.3.3 requires of
// every Shape read: an index outside [0, rank) reads as -1.
func (e *Encoder) maskedSelect(s shapeVal, idx smt.Int) smt.Int {
	inRange := idx.Ge(e.eng.IntVal(0)).And(idx.Lt(s.Rank))
	return inRange.IteInt(s.Select(idx), e.eng.IntVal(-1))
}

func (e *Encoder) freshName(prefix string) string {
	e.fresh++
	return fmt.Sprintf("%s#%d", prefix, e.fresh)
}

// ---------------------------------------------------------------------------
// Num
// ---------------------------------------------------------------------------

// EncodeNum translates a Num expression (spec ยง4.3.1 enc_num).
func (e *Encoder) EncodeNum(n sym.Num) (numVal, error) {
	key := n.String()
	if v, ok := e.numCache[key]; ok {
		return v, nil
	}
	v, err := e.encodeNum(n)
	if err != nil {
		return numVal{}, err
	}
	e.numCache[key] = v
	return v, nil
}

func (e *Encoder) encodeNum(n sym.Num) (numVal, error) {
	switch t := n.(type) {
	case sym.NumConst:
		if t.IsFloat {
			return realVal(e.eng.RealVal(t.FltVal)), nil
		}
		return intVal(e.eng.IntVal(t.IntVal)), nil

	case sym.NumSymRef:
		if t.Sym.Kind == sym.KindFloat {
			return realVal(e.eng.RealConst(t.Sym.Name)), nil
		}
		return intVal(e.eng.IntConst(t.Sym.Name)), nil

	case sym.NumBinOp:
		return e.encodeNumBinOp(t)

	case sym.NumUnOp:
		return e.encodeNumUnOp(t)

	case sym.NumMin:
		return e.encodeNumExtremum(t.Args, false)

	case sym.NumMax:
		return e.encodeNumExtremum(t.Args, true)

	case sym.NumIndex:
		base, err := e.EncodeShape(t.Base)
		if err != nil {
			return numVal{}, err
		}
		idx, err := e.EncodeNum(t.Index)
		if err != nil {
			return numVal{}, err
		}
		if idx.IsReal {
			return numVal{}, errf(RealInIntOp, "shape index must be Int, got Real")
		}
		return intVal(e.maskedSelect(base, idx.I)), nil

	case sym.NumNumel:
		return e.encodeNumel(t.Base)

	default:
		return numVal{}, fmt.Errorf("smtenc: unreachable Num variant %T", n)
	}
}

func (e *Encoder) encodeNumBinOp(t sym.NumBinOp) (numVal, error) {
	l, err := e.EncodeNum(t.Left)
	if err != nil {
		return numVal{}, err
	}
	r, err := e.EncodeNum(t.Right)
	if err != nil {
		return numVal{}, err
	}

	switch t.Op {
	case sym.Add:
		return arith(l, r, func(a, b smt.Int) smt.Int { return a.Add(b) }, func(a, b smt.Real) smt.Real { return a.Add(b) }), nil
	case sym.Sub:
		return arith(l, r, func(a, b smt.Int) smt.Int { return a.Sub(b) }, func(a, b smt.Real) smt.Real { return a.Sub(b) }), nil
	case sym.Mul:
		return arith(l, r, func(a, b smt.Int) smt.Int { return a.Mul(b) }, func(a, b smt.Real) smt.Real { return a.Mul(b) }), nil
	case sym.TrueDiv:
		// TrueDiv always yields Real (spec ยง4.3.2), guarded against a zero
		// divisor.
		lr, rr := l.toReal(), r.toReal()
		nonzero := rr.Ne(e.eng.RealVal(0))
		return realVal(nonzero.IteReal(lr.Div(rr), e.eng.RealVal(-1))), nil
	case sym.FloorDiv:
		if l.IsReal || r.IsReal {
			return numVal{}, errf(RealInIntOp, "floor-div requires Int operands")
		}
		nonzero := r.I.Ne(e.eng.IntVal(0))
		return intVal(nonzero.IteInt(l.I.Div(r.I), e.eng.IntVal(-1))), nil
	case sym.Mod:
		if l.IsReal || r.IsReal {
			return numVal{}, errf(RealInIntOp, "mod requires Int operands")
		}
		nonzero := r.I.Ne(e.eng.IntVal(0))
		return intVal(nonzero.IteInt(l.I.Mod(r.I), e.eng.IntVal(-1))), nil
	default:
		return numVal{}, fmt.Errorf("smtenc: unreachable NumBop %v", t.Op)
	}
}

func arith(l, r numVal, fi func(a, b smt.Int) smt.Int, fr func(a, b smt.Real) smt.Real) numVal {
	if l.IsReal || r.IsReal {
		return realVal(fr(l.toReal(), r.toReal()))
	}
	return intVal(fi(l.I, r.I))
}

func (e *Encoder) encodeNumUnOp(t sym.NumUnOp) (numVal, error) {
	arg, err := e.EncodeNum(t.Arg)
	if err != nil {
		return numVal{}, err
	}

	switch t.Op {
	case sym.Neg:
		if arg.IsReal {
			return realVal(arg.R.Neg()), nil
		}
		return intVal(arg.I.Neg()), nil
	case sym.Floor:
		if !arg.IsReal {
			return arg, nil
		}
		return intVal(arg.R.ToInt()), nil
	case sym.Ceil:
		if !arg.IsReal {
			return arg, nil
		}
		// ceil(x) = -floor(-x); Real.ToInt truncates toward Z3's floor
		// convention for ToInt on Real (spec ยง4.3.2 "ceil via negated
		// floor").
		return intVal(arg.R.Neg().ToInt().Neg()), nil
	case sym.Abs:
		if arg.IsReal {
			neg := arg.R.Lt(e.eng.RealVal(0))
			return realVal(neg.IteReal(arg.R.Neg(), arg.R)), nil
		}
		neg := arg.I.Lt(e.eng.IntVal(0))
		return intVal(neg.IteInt(arg.I.Neg(), arg.I)), nil
	default:
		return numVal{}, fmt.Errorf("smtenc: unreachable NumUop %v", t.Op)
	}
}

func (e *Encoder) encodeNumExtremum(args []sym.Num, wantMax bool) (numVal, error) {
	vals := make([]numVal, len(args))
	anyReal := false
	for i, a := range args {
		v, err := e.EncodeNum(a)
		if err != nil {
			return numVal{}, err
		}
		vals[i] = v
		anyReal = anyReal || v.IsReal
	}

	if anyReal {
		acc := vals[0].toReal()
		for _, v := range vals[1:] {
			r := v.toReal()
			var cond smt.Bool
			if wantMax {
				cond = r.Lt(acc)
			} else {
				cond = acc.Lt(r)
			}
			acc = cond.IteReal(acc, r)
		}
		return realVal(acc), nil
	}

	acc := vals[0].I
	for _, v := range vals[1:] {
		var cond smt.Bool
		if wantMax {
			cond = v.I.Lt(acc)
		} else {
			cond = acc.Lt(v.I)
		}
		acc = cond.IteInt(acc, v.I)
	}
	return intVal(acc), nil
}

func (e *Encoder) encodeNumel(base sym.Shape) (numVal, error) {
	s, err := e.EncodeShape(base)
	if err != nil {
		return numVal{}, err
	}

	// Numel is the running product of every in-range dim, computed by a
	// Z3 recursive function so Numel's own rank may be symbolic (spec
	// ยง4.3.3, mirroring json2z3.py's RecFunction-based `prod` helper).
	name := e.freshName("numel")
	prod := e.eng.RecFunc(name, []smt.Sort{e.eng.IntSort()}, e.eng.IntSort())
	n := e.eng.IntConst(e.freshName(name + "_n"))
	base0 := n.Le(e.eng.IntVal(0)).IteInt(
		e.eng.IntVal(1),
		prod.Apply(n.Sub(e.eng.IntVal(1))).Mul(e.maskedSelect(s, n.Sub(e.eng.IntVal(1)))),
	)
	prod.AddDefinition([]smt.Int{n}, base0)

	return intVal(prod.Apply(s.Rank)), nil
}

// ---------------------------------------------------------------------------
// Bool
// ---------------------------------------------------------------------------

// EncodeBool translates a Bool expression (spec ยง4.3.1 enc_bool).
func (e *Encoder) EncodeBool(b sym.Bool) (smt.Bool, error) {
	key := b.String()
	if v, ok := e.boolCache[key]; ok {
		return v, nil
	}
	v, err := e.encodeBool(b)
	if err != nil {
		return smt.Bool{}, err
	}
	e.boolCache[key] = v
	return v, nil
}

func (e *Encoder) encodeBool(b sym.Bool) (smt.Bool, error) {
	switch t := b.(type) {
	case sym.BoolConst:
		return e.eng.BoolVal(t.Value), nil
	case sym.BoolSymRef:
		return e.eng.BoolConst(t.Sym.Name), nil
	case sym.BoolEq:
		return e.encodeOperandCmp(t.Left, t.Right, true)
	case sym.BoolNe:
		return e.encodeOperandCmp(t.Left, t.Right, false)
	case sym.BoolLt:
		return e.encodeNumCmp(t.Left, t.Right, func(a, b numVal) (smt.Bool, error) { return numLt(a, b) })
	case sym.BoolLe:
		return e.encodeNumCmp(t.Left, t.Right, func(a, b numVal) (smt.Bool, error) { return numLe(a, b) })
	case sym.BoolNot:
		arg, err := e.EncodeBool(t.Arg)
		if err != nil {
			return smt.Bool{}, err
		}
		return arg.Not(), nil
	case sym.BoolAnd:
		l, err := e.EncodeBool(t.Left)
		if err != nil {
			return smt.Bool{}, err
		}
		r, err := e.EncodeBool(t.Right)
		if err != nil {
			return smt.Bool{}, err
		}
		return l.And(r), nil
	case sym.BoolOr:
		l, err := e.EncodeBool(t.Left)
		if err != nil {
			return smt.Bool{}, err
		}
		r, err := e.EncodeBool(t.Right)
		if err != nil {
			return smt.Bool{}, err
		}
		return l.Or(r), nil
	default:
		return smt.Bool{}, fmt.Errorf("smtenc: unreachable Bool variant %T", b)
	}
}

func numLt(a, b numVal) (smt.Bool, error) {
	if a.IsReal || b.IsReal {
		return a.toReal().Lt(b.toReal()), nil
	}
	return a.I.Lt(b.I), nil
}

func numLe(a, b numVal) (smt.Bool, error) {
	if a.IsReal || b.IsReal {
		return a.toReal().Le(b.toReal()), nil
	}
	return a.I.Le(b.I), nil
}

func (e *Encoder) encodeNumCmp(l, r sym.Num, cmp func(a, b numVal) (smt.Bool, error)) (smt.Bool, error) {
	lv, err := e.EncodeNum(l)
	if err != nil {
		return smt.Bool{}, err
	}
	rv, err := e.EncodeNum(r)
	if err != nil {
		return smt.Bool{}, err
	}
	return cmp(lv, rv)
}

// encodeOperandCmp encodes Eq/Ne over a CmpOperand pair, which may hold
// either two Num or two Shape operands (spec ยง3 invariant: never mixed).
// Shape equality is encoded dim-wise plus rank equality (two shapes are
// equal exactly when their ranks agree and every in-range dim agrees).
func (e *Encoder) encodeOperandCmp(l, r sym.CmpOperand, wantEq bool) (smt.Bool, error) {
	if l.Sort() != r.Sort() {
		return smt.Bool{}, errf(SortMismatch, "Eq/Ne operands disagree in sort: %s vs %s", l.Sort(), r.Sort())
	}

	if l.Sort() == sym.SortNum {
		lv, err := e.EncodeNum(l.Num)
		if err != nil {
			return smt.Bool{}, err
		}
		rv, err := e.EncodeNum(r.Num)
		if err != nil {
			return smt.Bool{}, err
		}
		var eq smt.Bool
		if lv.IsReal || rv.IsReal {
			eq = lv.toReal().Eq(rv.toReal())
		} else {
			eq = lv.I.Eq(rv.I)
		}
		if wantEq {
			return eq, nil
		}
		return eq.Not(), nil
	}

	ls, err := e.EncodeShape(l.Shape)
	if err != nil {
		return smt.Bool{}, err
	}
	rs, err := e.EncodeShape(r.Shape)
	if err != nil {
		return smt.Bool{}, err
	}
	eq := e.shapesEqual(ls, rs)
	if wantEq {
		return eq, nil
	}
	return eq.Not(), nil
}

// shapesEqual asserts rank equality plus a bounded forall over every dim up
// to the shared rank (spec ยง4.3.4-adjacent: shape equality reuses the same
// bounded-quantifier idiom as Broadcastable).
func (e *Encoder) shapesEqual(a, b shapeVal) smt.Bool {
	rankEq := a.Rank.Eq(b.Rank)
	i := e.eng.IntConst(e.freshName("eq_i"))
	inRange := i.Ge(e.eng.IntVal(0)).And(i.Lt(a.Rank))
	dimsEq := inRange.Implies(a.Select(i).Eq(b.Select(i)))
	return rankEq.And(e.eng.ForallInt(i, dimsEq))
}

// ---------------------------------------------------------------------------
// Shape
// ---------------------------------------------------------------------------

// EncodeShape translates a Shape expression (spec ยง4.3.1/ยง4.3.3 enc_shape).
func (e *Encoder) EncodeShape(s sym.Shape) (shapeVal, error) {
	key := s.String()
	if v, ok := e.shapeCache[key]; ok {
		return v, nil
	}
	v, err := e.encodeShape(s)
	if err != nil {
		return shapeVal{}, err
	}
	e.shapeCache[key] = v
	return v, nil
}

func (e *Encoder) encodeShape(s sym.Shape) (shapeVal, error) {
	switch t := s.(type) {
	case sym.ShapeConst:
		arr := e.eng.ArrayConst(e.freshName("shape_const"))
		for i, d := range t.Dims {
			dv, err := e.EncodeNum(d)
			if err != nil {
				return shapeVal{}, err
			}
			if dv.IsReal {
				return shapeVal{}, errf(RealInIntOp, "shape dim %d must be Int", i)
			}
			arr = arr.Store(e.eng.IntVal(int64(i)), dv.I)
		}
		rank, err := e.EncodeNum(t.Rank)
		if err != nil {
			return shapeVal{}, err
		}
		if rank.IsReal {
			return shapeVal{}, errf(RealInIntOp, "shape rank must be Int")
		}
		return shapeVal{Rank: rank.I, Select: arr.Select}, nil

	case sym.ShapeSymRef:
		arr := e.eng.ArrayConst(t.Sym.Name)
		rank, err := e.EncodeNum(t.Sym.Rank)
		if err != nil {
			return shapeVal{}, err
		}
		if rank.IsReal {
			return shapeVal{}, errf(RealInIntOp, "shape rank must be Int")
		}
		return shapeVal{Rank: rank.I, Select: arr.Select}, nil

	case sym.ShapeSet:
		if IsRealValued(t.Axis) || IsRealValued(t.Dim) {
			return shapeVal{}, errf(RealInIntOp, "Shape.Set axis/dim must be Int")
		}

		base, err := e.EncodeShape(t.Base)
		if err != nil {
			return shapeVal{}, err
		}
		axis, err := e.EncodeNum(t.Axis)
		if err != nil {
			return shapeVal{}, err
		}
		dim, err := e.EncodeNum(t.Dim)
		if err != nil {
			return shapeVal{}, err
		}
		sel := func(idx smt.Int) smt.Int {
			return idx.Eq(axis.I).IteInt(dim.I, base.Select(idx))
		}
		return shapeVal{Rank: base.Rank, Select: sel}, nil

	case sym.ShapeSlice:
		base, err := e.EncodeShape(t.Base)
		if err != nil {
			return shapeVal{}, err
		}
		start := e.eng.IntVal(0)
		if t.Start != nil {
			sv, err := e.EncodeNum(t.Start)
			if err != nil {
				return shapeVal{}, err
			}
			if sv.IsReal {
				return shapeVal{}, errf(RealInIntOp, "Shape.Slice start must be Int")
			}
			start = sv.I
		}
		end := base.Rank
		if t.End != nil {
			ev, err := e.EncodeNum(t.End)
			if err != nil {
				return shapeVal{}, err
			}
			if ev.IsReal {
				return shapeVal{}, errf(RealInIntOp, "Shape.Slice end must be Int")
			}
			end = ev.I
		}
		sel := func(idx smt.Int) smt.Int { return base.Select(idx.Add(start)) }
		return shapeVal{Rank: end.Sub(start), Select: sel}, nil

	case sym.ShapeConcat:
		left, err := e.EncodeShape(t.Left)
		if err != nil {
			return shapeVal{}, err
		}
		right, err := e.EncodeShape(t.Right)
		if err != nil {
			return shapeVal{}, err
		}
		sel := func(idx smt.Int) smt.Int {
			fromLeft := idx.Lt(left.Rank)
			return fromLeft.IteInt(left.Select(idx), right.Select(idx.Sub(left.Rank)))
		}
		return shapeVal{Rank: left.Rank.Add(right.Rank), Select: sel}, nil

	case sym.ShapeBroadcast:
		left, err := e.EncodeShape(t.Left)
		if err != nil {
			return shapeVal{}, err
		}
		right, err := e.EncodeShape(t.Right)
		if err != nil {
			return shapeVal{}, err
		}
		rank := maxInt(e.eng, left.Rank, right.Rank)
		sel := func(idx smt.Int) smt.Int {
			// Right-aligned: dim i (0-based from the left of the result)
			// maps to left/right index i-(rank-operandRank), reading as 1
			// when that falls left of the operand's own start (spec
			// ยง4.3.4 broadcast semantics).
			lIdx := idx.Sub(rank.Sub(left.Rank))
			rIdx := idx.Sub(rank.Sub(right.Rank))
			one := e.eng.IntVal(1)
			lDim := lIdx.Ge(e.eng.IntVal(0)).IteInt(left.Select(lIdx), one)
			rDim := rIdx.Ge(e.eng.IntVal(0)).IteInt(right.Select(rIdx), one)
			return maxInt(e.eng, lDim, rDim)
		}
		return shapeVal{Rank: rank, Select: sel}, nil

	default:
		return shapeVal{}, fmt.Errorf("smtenc: unreachable Shape variant %T", s)
	}
}

func maxInt(eng *smt.Engine, a, b smt.Int) smt.Int {
	return a.Lt(b).IteInt(b, a)
}
