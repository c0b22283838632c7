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

// NumBop identifies a binary arithmetic operator.
type NumBop uint8

// Binary arithmetic operators, per spec Num variant table.
const (
	Add NumBop = iota
	Sub
	Mul
	TrueDiv
	FloorDiv
	Mod
)

func (o NumBop) String() string {
	return [...]string{"+", "-", "*", "/", "//", "%"}[o]
}

// NumUop identifies a unary arithmetic operator.
type NumUop uint8

// Unary arithmetic operators, per spec Num variant table.
const (
	Neg NumUop = iota
	Floor
	Ceil
	Abs
)

func (o NumUop) String() string {
	return [...]string{"neg", "floor", "ceil", "abs"}[o]
}

// Num is a symbolic integer- or real-valued expression.  It is a closed sum
// type: the only implementations are the unexported variant structs defined
// in this file, so an exhaustive type switch over Num is total by
// construction (checked by the default panic in equalNum).
type Num interface {
	numNode()
	fmt.Stringer
}

// NumConst is a numeric literal, either an int64 or a float64.
type NumConst struct {
	// IsFloat distinguishes an integer literal from a real one: the two are
	// not just different Go types, they drive the encoder's structural
	// integer/real inference (spec ยง4.3.2).
	IsFloat bool
	IntVal  int64
	FltVal  float64
}

func (NumConst) numNode() {}

// String renders the literal.
func (c NumConst) String() string {
	if c.IsFloat {
		return fmt.Sprintf("%g", c.FltVal)
	}
	return fmt.Sprintf("%d", c.IntVal)
}

// ConstInt constructs an integer Num literal.
func ConstInt(v int64) Num { return NumConst{IntVal: v} }

// ConstFloat constructs a real Num literal.
func ConstFloat(v float64) Num { return NumConst{IsFloat: true, FltVal: v} }

// NumSymRef references a declared Symbol of kind KindInt or KindFloat.
type NumSymRef struct {
	Sym Symbol
}

func (NumSymRef) numNode() {}
func (r NumSymRef) String() string { return r.Sym.Name }

// NumBinOp applies a NumBop to two Num operands.
type NumBinOp struct {
	Op          NumBop
	Left, Right Num
}

func (NumBinOp) numNode() {}
func (b NumBinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// NumUnOp applies a NumUop to one Num operand.
type NumUnOp struct {
	Op  NumUop
	Arg Num
}

func (NumUnOp) numNode() {}
func (u NumUnOp) String() string { return fmt.Sprintf("(%s %s)", u.Op, u.Arg) }

// NumMin is the minimum of one or more Num operands.
type NumMin struct{ Args []Num }

func (NumMin) numNode() {}
func (m NumMin) String() string { return fmt.Sprintf("min%v", m.Args) }

// NumMax is the maximum of one or more Num operands.
type NumMax struct{ Args []Num }

func (NumMax) numNode() {}
func (m NumMax) String() string { return fmt.Sprintf("max%v", m.Args) }

// NumIndex reads a single dim out of a Shape at a (typically constant) Num
// index.
type NumIndex struct {
	Base  Shape
	Index Num
}

func (NumIndex) numNode() {}
func (x NumIndex) String() string { return fmt.Sprintf("%s[%s]", x.Base, x.Index) }

// NumNumel is the product of every dim of a Shape.
type NumNumel struct{ Base Shape }

func (NumNumel) numNode() {}
func (n NumNumel) String() string { return fmt.Sprintf("numel(%s)", n.Base) }

// equalNum performs structural equality over the Num sum type.  A nil
// operand (e.g. an un-ranked symbol) is equal only to another nil.
func equalNum(a, b Num) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case NumConst:
		y, ok := b.(NumConst)
		return ok && x.IsFloat == y.IsFloat && x.IntVal == y.IntVal && x.FltVal == y.FltVal
	case NumSymRef:
		y, ok := b.(NumSymRef)
		return ok && x.Sym.Equal(y.Sym)
	case NumBinOp:
		y, ok := b.(NumBinOp)
		return ok && x.Op == y.Op && equalNum(x.Left, y.Left) && equalNum(x.Right, y.Right)
	case NumUnOp:
		y, ok := b.(NumUnOp)
		return ok && x.Op == y.Op && equalNum(x.Arg, y.Arg)
	case NumMin:
		y, ok := b.(NumMin)
		return ok && equalNumSlice(x.Args, y.Args)
	case NumMax:
		y, ok := b.(NumMax)
		return ok && equalNumSlice(x.Args, y.Args)
	case NumIndex:
		y, ok := b.(NumIndex)
		return ok && equalShape(x.Base, y.Base) && equalNum(x.Index, y.Index)
	case NumNumel:
		y, ok := b.(NumNumel)
		return ok && equalShape(x.Base, y.Base)
	default:
		panic(fmt.Sprintf("sym: unreachable Num variant %T", a))
	}
}

func equalNumSlice(a, b []Num) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalNum(a[i], b[i]) {
			return false
		}
	}
	return true
}
