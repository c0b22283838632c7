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

// Bool is a symbolic predicate.  Closed sum type, same discipline as Num.
//
// Eq/Ne compare two Num operands or two Shape operands (never mixed, spec
// ยง3 invariant); this is represented with the CmpOperand wrapper so a single
// BoolEq/BoolNe struct can hold either case while keeping sort-checking at
// construction time (see pkg/decode) rather than deferring it to the
// encoder.
type Bool interface {
	boolNode()
	fmt.Stringer
}

// CmpOperand is either a Num or a Shape; exactly one of the two fields is
// non-nil.  It exists solely to let BoolEq/BoolNe/CtrEq/CtrNe hold either
// sort without resorting to `any`.
type CmpOperand struct {
	Num   Num
	Shape Shape
}

// Sort returns the sort of whichever operand is populated.
func (o CmpOperand) Sort() Sort {
	if o.Num != nil {
		return SortNum
	}
	return SortShape
}

func (o CmpOperand) String() string {
	if o.Num != nil {
		return o.Num.String()
	}
	return o.Shape.String()
}

func equalOperand(a, b CmpOperand) bool {
	if a.Sort() != b.Sort() {
		return false
	}
	if a.Sort() == SortNum {
		return equalNum(a.Num, b.Num)
	}
	return equalShape(a.Shape, b.Shape)
}

// NumOperand wraps a Num as a CmpOperand.
func NumOperand(n Num) CmpOperand { return CmpOperand{Num: n} }

// ShapeOperand wraps a Shape as a CmpOperand.
func ShapeOperand(s Shape) CmpOperand { return CmpOperand{Shape: s} }

// BoolConst is a boolean literal.
type BoolConst struct{ Value bool }

func (BoolConst) boolNode() {}
func (c BoolConst) String() string { return fmt.Sprintf("%v", c.Value) }

// BoolSymRef references a declared Symbol of kind KindBool.
type BoolSymRef struct{ Sym Symbol }

func (BoolSymRef) boolNode() {}
func (r BoolSymRef) String() string { return r.Sym.Name }

// BoolEq is equality between two like-sorted operands.
type BoolEq struct{ Left, Right CmpOperand }

func (BoolEq) boolNode() {}
func (e BoolEq) String() string { return fmt.Sprintf("(%s == %s)", e.Left, e.Right) }

// BoolNe is disequality between two like-sorted operands.
type BoolNe struct{ Left, Right CmpOperand }

func (BoolNe) boolNode() {}
func (e BoolNe) String() string { return fmt.Sprintf("(%s != %s)", e.Left, e.Right) }

// BoolLt is strict less-than between two Num operands.
type BoolLt struct{ Left, Right Num }

func (BoolLt) boolNode() {}
func (e BoolLt) String() string { return fmt.Sprintf("(%s < %s)", e.Left, e.Right) }

// BoolLe is less-than-or-equal between two Num operands.
type BoolLe struct{ Left, Right Num }

func (BoolLe) boolNode() {}
func (e BoolLe) String() string { return fmt.Sprintf("(%s <= %s)", e.Left, e.Right) }

// BoolNot negates a Bool.
type BoolNot struct{ Arg Bool }

func (BoolNot) boolNode() {}
func (n BoolNot) String() string { return fmt.Sprintf("!%s", n.Arg) }

// BoolAnd conjoins two Bool operands.
type BoolAnd struct{ Left, Right Bool }

func (BoolAnd) boolNode() {}
func (a BoolAnd) String() string { return fmt.Sprintf("(%s && %s)", a.Left, a.Right) }

// BoolOr disjoins two Bool operands.
type BoolOr struct{ Left, Right Bool }

func (BoolOr) boolNode() {}
func (o BoolOr) String() string { return fmt.Sprintf("(%s || %s)", o.Left, o.Right) }

func equalBool(a, b Bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case BoolConst:
		y, ok := b.(BoolConst)
		return ok && x.Value == y.Value
	case BoolSymRef:
		y, ok := b.(BoolSymRef)
		return ok && x.Sym.Equal(y.Sym)
	case BoolEq:
		y, ok := b.(BoolEq)
		return ok && equalOperand(x.Left, y.Left) && equalOperand(x.Right, y.Right)
	case BoolNe:
		y, ok := b.(BoolNe)
		return ok && equalOperand(x.Left, y.Left) && equalOperand(x.Right, y.Right)
	case BoolLt:
		y, ok := b.(BoolLt)
		return ok && equalNum(x.Left, y.Left) && equalNum(x.Right, y.Right)
	case BoolLe:
		y, ok := b.(BoolLe)
		return ok && equalNum(x.Left, y.Left) && equalNum(x.Right, y.Right)
	case BoolNot:
		y, ok := b.(BoolNot)
		return ok && equalBool(x.Arg, y.Arg)
	case BoolAnd:
		y, ok := b.(BoolAnd)
		return ok && equalBool(x.Left, y.Left) && equalBool(x.Right, y.Right)
	case BoolOr:
		y, ok := b.(BoolOr)
		return ok && equalBool(x.Left, y.Left) && equalBool(x.Right, y.Right)
	default:
		panic(fmt.Sprintf("sym: unreachable Bool variant %T", a))
	}
}
