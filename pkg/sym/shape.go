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

import (
	"fmt"
	"strings"
)

// Shape is a symbolic finite ordered sequence of Num dims, carrying a
// (possibly symbolic) rank.  Closed sum type, same discipline as Num.
type Shape interface {
	shapeNode()
	fmt.Stringer
}

// ShapeConst is a shape with a fully concrete, statically-known dim list.
// Rank is stored redundantly (spec ยง3 invariant: "rank equals the length of
// dims") so that rank can be read without re-deriving it for every shape,
// and so SymRef shapes can carry a genuinely symbolic rank via the same
// field name.
type ShapeConst struct {
	Dims []Num
	Rank Num
}

func (ShapeConst) shapeNode() {}
func (c ShapeConst) String() string {
	parts := make([]string, len(c.Dims))
	for i, d := range c.Dims {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ShapeSymRef references a declared Symbol of kind KindShape.
type ShapeSymRef struct{ Sym Symbol }

func (ShapeSymRef) shapeNode() {}
func (r ShapeSymRef) String() string { return r.Sym.Name }

// ShapeSet overwrites a single axis of a base shape with a new dim.
type ShapeSet struct {
	Base Shape
	Axis Num
	Dim  Num
}

func (ShapeSet) shapeNode() {}
func (s ShapeSet) String() string { return fmt.Sprintf("set(%s,%s,%s)", s.Base, s.Axis, s.Dim) }

// ShapeSlice takes a sub-range [start, end) of a base shape's dims.  Start
// and End are optional (nil means "use the spec ยง4.3.3 default").
type ShapeSlice struct {
	Base       Shape
	Start, End Num
}

func (ShapeSlice) shapeNode() {}
func (s ShapeSlice) String() string { return fmt.Sprintf("slice(%s,%v,%v)", s.Base, s.Start, s.End) }

// ShapeConcat appends Right's dims after Left's.
type ShapeConcat struct{ Left, Right Shape }

func (ShapeConcat) shapeNode() {}
func (c ShapeConcat) String() string { return fmt.Sprintf("concat(%s,%s)", c.Left, c.Right) }

// ShapeBroadcast right-aligns Left and Right, producing the broadcast result
// shape (not a predicate -- see Broadcastable in ctr.go for the feasibility
// check).
type ShapeBroadcast struct{ Left, Right Shape }

func (ShapeBroadcast) shapeNode() {}
func (b ShapeBroadcast) String() string { return fmt.Sprintf("broadcast(%s,%s)", b.Left, b.Right) }

// RankOf returns the logical rank of a shape per spec ยง4.1.
func RankOf(s Shape) Num {
	switch t := s.(type) {
	case ShapeConst:
		return t.Rank
	case ShapeSymRef:
		return t.Sym.Rank
	case ShapeSet:
		return RankOf(t.Base)
	case ShapeSlice:
		end := t.End
		if end == nil {
			end = RankOf(t.Base)
		}
		start := t.Start
		if start == nil {
			start = ConstInt(0)
		}
		return NumBinOp{Op: Sub, Left: end, Right: start}
	case ShapeConcat:
		return NumBinOp{Op: Add, Left: RankOf(t.Left), Right: RankOf(t.Right)}
	case ShapeBroadcast:
		return NumMax{Args: []Num{RankOf(t.Left), RankOf(t.Right)}}
	default:
		panic(fmt.Sprintf("sym: unreachable Shape variant %T", s))
	}
}

func equalShape(a, b Shape) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case ShapeConst:
		y, ok := b.(ShapeConst)
		return ok && equalNumSlice(x.Dims, y.Dims) && equalNum(x.Rank, y.Rank)
	case ShapeSymRef:
		y, ok := b.(ShapeSymRef)
		return ok && x.Sym.Equal(y.Sym)
	case ShapeSet:
		y, ok := b.(ShapeSet)
		return ok && equalShape(x.Base, y.Base) && equalNum(x.Axis, y.Axis) && equalNum(x.Dim, y.Dim)
	case ShapeSlice:
		y, ok := b.(ShapeSlice)
		return ok && equalShape(x.Base, y.Base) && equalNum(x.Start, y.Start) && equalNum(x.End, y.End)
	case ShapeConcat:
		y, ok := b.(ShapeConcat)
		return ok && equalShape(x.Left, y.Left) && equalShape(x.Right, y.Right)
	case ShapeBroadcast:
		y, ok := b.(ShapeBroadcast)
		return ok && equalShape(x.Left, y.Left) && equalShape(x.Right, y.Right)
	default:
		panic(fmt.Sprintf("sym: unreachable Shape variant %T", a))
	}
}
