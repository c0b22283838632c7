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
package sym

import "fmt"

// Source is a byte range into the front-end's original source text.  A Ctr
// may carry one, with its short human-readable message held beside it (see
// Provenance).
type Source struct {
	Start  uint
	Length uint
}

// End returns the (exclusive) end offset of the span.
func (s Source) End() uint { return s.Start + s.Length }

// Ctr is a top-level constraint: a formula returning Bool, with optional
// source provenance.  Closed sum type, same discipline as Num/Bool/Shape.
type Ctr interface {
	ctrNode()
	fmt.Stringer
	// Provenance returns this constraint's source span and message, if any.
	// Non-top-level Ctr nodes (those nested inside And/Or/Not/Forall) need
	// not carry provenance and return (nil, "").
	Provenance() (*Source, string)
}

// prov is embedded by every Ctr variant to provide the optional Source span
// and message without repeating the bookkeeping in each variant.
type prov struct {
	Src *Source
	Msg string
}

func (p prov) Provenance() (*Source, string) { return p.Src, p.Msg }

// CtrExpBool lifts a Bool expression to a top-level constraint.
type CtrExpBool struct {
	prov
	Exp Bool
}

func (CtrExpBool) ctrNode() {}
func (c CtrExpBool) String() string { return withSpan(c.Exp.String(), c.prov) }

// CtrEq is equality between two like-sorted operands, as a top-level
// constraint (distinct from BoolEq so decode can attach provenance here).
type CtrEq struct {
	prov
	Left, Right CmpOperand
}

func (CtrEq) ctrNode() {}
func (c CtrEq) String() string {
	return withSpan(fmt.Sprintf("(%s == %s)", c.Left, c.Right), c.prov)
}

// CtrNe is disequality between two like-sorted operands.
type CtrNe struct {
	prov
	Left, Right CmpOperand
}

func (CtrNe) ctrNode() {}
func (c CtrNe) String() string {
	return withSpan(fmt.Sprintf("(%s != %s)", c.Left, c.Right), c.prov)
}

// CtrLt is strict less-than between two Num operands.
type CtrLt struct {
	prov
	Left, Right Num
}

func (CtrLt) ctrNode() {}
func (c CtrLt) String() string {
	return withSpan(fmt.Sprintf("(%s < %s)", c.Left, c.Right), c.prov)
}

// CtrLe is less-than-or-equal between two Num operands.
type CtrLe struct {
	prov
	Left, Right Num
}

func (CtrLe) ctrNode() {}
func (c CtrLe) String() string {
	return withSpan(fmt.Sprintf("(%s <= %s)", c.Left, c.Right), c.prov)
}

// CtrAnd conjoins two constraints.
type CtrAnd struct {
	prov
	Left, Right Ctr
}

func (CtrAnd) ctrNode() {}
func (c CtrAnd) String() string {
	return withSpan(fmt.Sprintf("(%s && %s)", c.Left, c.Right), c.prov)
}

// CtrOr disjoins two constraints.
type CtrOr struct {
	prov
	Left, Right Ctr
}

func (CtrOr) ctrNode() {}
func (c CtrOr) String() string {
	return withSpan(fmt.Sprintf("(%s || %s)", c.Left, c.Right), c.prov)
}

// CtrNot negates a constraint.
type CtrNot struct {
	prov
	Arg Ctr
}

func (CtrNot) ctrNode() {}
func (c CtrNot) String() string { return withSpan(fmt.Sprintf("!%s", c.Arg), c.prov) }

// CtrForall is a bounded universal: for all integer x in [Lo, Hi], Body
// holds.
type CtrForall struct {
	prov
	Sym      Symbol
	Lo, Hi   Num
	Body     Ctr
}

func (CtrForall) ctrNode() {}
func (c CtrForall) String() string {
	return withSpan(fmt.Sprintf("forall %s in [%s,%s]. %s", c.Sym.Name, c.Lo, c.Hi, c.Body), c.prov)
}

// CtrBroadcastable asserts the right-aligned pairwise-dims broadcast
// relation between two shapes.
type CtrBroadcastable struct {
	prov
	Left, Right Shape
}

func (CtrBroadcastable) ctrNode() {}
func (c CtrBroadcastable) String() string {
	return withSpan(fmt.Sprintf("broadcastable(%s,%s)", c.Left, c.Right), c.prov)
}

// CtrFail is an unconditional failure, always unsatisfiable.
type CtrFail struct{ prov }

func (CtrFail) ctrNode() {}
func (c CtrFail) String() string { return withSpan("fail", c.prov) }

func withSpan(base string, p prov) string {
	if p.Src == nil {
		return base
	}
	return fmt.Sprintf("%s - [%d:%d]", base, p.Src.Start, p.Src.End())
}

// EqualCtr performs structural equality over the Ctr sum type, ignoring
// provenance (two constraints with identical logical content but different
// source spans are still the same constraint).
func EqualCtr(a, b Ctr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case CtrExpBool:
		y, ok := b.(CtrExpBool)
		return ok && equalBool(x.Exp, y.Exp)
	case CtrEq:
		y, ok := b.(CtrEq)
		return ok && equalOperand(x.Left, y.Left) && equalOperand(x.Right, y.Right)
	case CtrNe:
		y, ok := b.(CtrNe)
		return ok && equalOperand(x.Left, y.Left) && equalOperand(x.Right, y.Right)
	case CtrLt:
		y, ok := b.(CtrLt)
		return ok && equalNum(x.Left, y.Left) && equalNum(x.Right, y.Right)
	case CtrLe:
		y, ok := b.(CtrLe)
		return ok && equalNum(x.Left, y.Left) && equalNum(x.Right, y.Right)
	case CtrAnd:
		y, ok := b.(CtrAnd)
		return ok && EqualCtr(x.Left, y.Left) && EqualCtr(x.Right, y.Right)
	case CtrOr:
		y, ok := b.(CtrOr)
		return ok && EqualCtr(x.Left, y.Left) && EqualCtr(x.Right, y.Right)
	case CtrNot:
		y, ok := b.(CtrNot)
		return ok && EqualCtr(x.Arg, y.Arg)
	case CtrForall:
		y, ok := b.(CtrForall)
		return ok && x.Sym.Equal(y.Sym) && equalNum(x.Lo, y.Lo) && equalNum(x.Hi, y.Hi) && EqualCtr(x.Body, y.Body)
	case CtrBroadcastable:
		y, ok := b.(CtrBroadcastable)
		return ok && equalShape(x.Left, y.Left) && equalShape(x.Right, y.Right)
	case CtrFail:
		_, ok := b.(CtrFail)
		return ok
	default:
		panic(fmt.Sprintf("sym: unreachable Ctr variant %T", a))
	}
}

// SortOf is total over every decoded expression (Num, Bool, Shape or Ctr),
// per spec ยง4.1.  It panics on an unrecognised Go type, which can only
// happen if a caller constructs an ad-hoc type outside this package --
// something the decoder never does.
func SortOf(x any) Sort {
	switch x.(type) {
	case Num:
		return SortNum
	case Bool:
		return SortBool
	case Shape:
		return SortShape
	case Ctr:
		return SortBool
	default:
		panic(fmt.Sprintf("sym: SortOf: unrecognised expression %T", x))
	}
}
