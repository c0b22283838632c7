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

// EncodeCtr translates a top-level constraint (spec ยง4.3.1 enc_ctr). Unlike
// Num/Bool/Shape, Ctr is not memoized: every call re-translates the
// constraint (the classifier encodes a pool entry once in each staged query
// that uses it), while the Num/Bool/Shape subterms inside it hit the
// per-path caches.
func (e *Encoder) EncodeCtr(c sym.Ctr) (smt.Bool, error) {
	switch t := c.(type) {
	case sym.CtrExpBool:
		return e.EncodeBool(t.Exp)

	case sym.CtrEq:
		return e.encodeOperandCmp(t.Left, t.Right, true)
	case sym.CtrNe:
		return e.encodeOperandCmp(t.Left, t.Right, false)

	case sym.CtrLt:
		return e.encodeNumCmp(t.Left, t.Right, func(a, b numVal) (smt.Bool, error) { return numLt(a, b) })
	case sym.CtrLe:
		return e.encodeNumCmp(t.Left, t.Right, func(a, b numVal) (smt.Bool, error) { return numLe(a, b) })

	case sym.CtrAnd:
		l, err := e.EncodeCtr(t.Left)
		if err != nil {
			return smt.Bool{}, err
		}
		r, err := e.EncodeCtr(t.Right)
		if err != nil {
			return smt.Bool{}, err
		}
		return l.And(r), nil

	case sym.CtrOr:
		l, err := e.EncodeCtr(t.Left)
		if err != nil {
			return smt.Bool{}, err
		}
		r, err := e.EncodeCtr(t.Right)
		if err != nil {
			return smt.Bool{}, err
		}
		return l.Or(r), nil

	case sym.CtrNot:
		arg, err := e.EncodeCtr(t.Arg)
		if err != nil {
			return smt.Bool{}, err
		}
		return arg.Not(), nil

	case sym.CtrForall:
		return e.encodeForall(t)

	case sym.CtrBroadcastable:
		return e.encodeBroadcastable(t)

	case sym.CtrFail:
		return e.eng.BoolVal(false), nil

	default:
		return smt.Bool{}, fmt.Errorf("smtenc: unreachable Ctr variant %T", c)
	}
}

// encodeForall binds Sym to a fresh Int constant and quantifies the
// translated body over [Lo, Hi] (spec ยง4.3.5).
func (e *Encoder) encodeForall(t sym.CtrForall) (smt.Bool, error) {
	if IsRealValued(t.Lo) || IsRealValued(t.Hi) {
		return smt.Bool{}, errf(NonIntRange, "Forall bounds must be Int")
	}

	lo, err := e.EncodeNum(t.Lo)
	if err != nil {
		return smt.Bool{}, err
	}
	hi, err := e.EncodeNum(t.Hi)
	if err != nil {
		return smt.Bool{}, err
	}

	bound := e.eng.IntConst(t.Sym.Name)
	e.numCache[sym.NumSymRef{Sym: t.Sym}.String()] = intVal(bound)

	body, err := e.EncodeCtr(t.Body)
	if err != nil {
		return smt.Bool{}, err
	}

	inRange := bound.Ge(lo.I).And(bound.Le(hi.I))
	return e.eng.ForallInt(bound, inRange.Implies(body)), nil
}

// encodeBroadcastable asserts the right-aligned pairwise-dims broadcast
// relation (spec ยง4.3.4): for every index within the shared rank, the two
// operands' dims (right-aligned, absent = 1) are either equal or one of
// them is 1.
func (e *Encoder) encodeBroadcastable(t sym.CtrBroadcastable) (smt.Bool, error) {
	left, err := e.EncodeShape(t.Left)
	if err != nil {
		return smt.Bool{}, err
	}
	right, err := e.EncodeShape(t.Right)
	if err != nil {
		return smt.Bool{}, err
	}

	rank := maxInt(e.eng, left.Rank, right.Rank)
	i := e.eng.IntConst(e.freshName("bc_i"))
	one := e.eng.IntVal(1)

	lIdx := i.Sub(rank.Sub(left.Rank))
	rIdx := i.Sub(rank.Sub(right.Rank))
	lDim := lIdx.Ge(e.eng.IntVal(0)).IteInt(left.Select(lIdx), one)
	rDim := rIdx.Ge(e.eng.IntVal(0)).IteInt(right.Select(rIdx), one)

	compatible := lDim.Eq(rDim).Or(lDim.Eq(one)).Or(rDim.Eq(one))
	inRange := i.Ge(e.eng.IntVal(0)).And(i.Lt(rank))

	return e.eng.ForallInt(i, inRange.Implies(compatible)), nil
}
