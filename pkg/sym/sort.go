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

// Package sym provides the symbolic expression IR shared by the decoder,
// encoder and classifier: a closed sum type per sort (Num, Bool, Shape)
// plus the top-level constraint sort (Ctr), with exhaustive
// pattern-matchable variants and no interior mutability.  String exists
// only as a Sort value; there is no String expression type.
package sym

// Sort identifies the logical type of an expression.
type Sort uint8

const (
	// SortNum identifies a symbolic integer or real valued expression.
	SortNum Sort = iota
	// SortBool identifies a symbolic predicate.
	SortBool
	// SortShape identifies a finite ordered sequence of Num dims.
	SortShape
	// SortString identifies an opaque, equality-only value.
	SortString
)

// String renders a sort for diagnostics.
func (s Sort) String() string {
	switch s {
	case SortNum:
		return "Num"
	case SortBool:
		return "Bool"
	case SortShape:
		return "Shape"
	case SortString:
		return "String"
	default:
		return "?"
	}
}

// SymbolKind classifies a Symbol, distinct from Sort because a Num symbol may
// be declared Int or Float, which matters to the encoder's integer/real
// inference (see pkg/smtenc) even though both are SortNum.
type SymbolKind uint8

const (
	// KindInt declares an integer-valued Num symbol.
	KindInt SymbolKind = iota
	// KindFloat declares a real-valued Num symbol.
	KindFloat
	// KindString declares a String symbol.
	KindString
	// KindBool declares a Bool symbol.
	KindBool
	// KindShape declares a Shape symbol.
	KindShape
)

// String renders a symbol kind for diagnostics.
func (k SymbolKind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	case KindShape:
		return "Shape"
	default:
		return "?"
	}
}

// Symbol is a stable, named reference shared across the pool of a constraint
// set.  Names are unique within a constraint set when they belong to
// distinct kinds; reuse with the same kind denotes the same logical symbol.
type Symbol struct {
	Name string
	Kind SymbolKind
	// Rank is only meaningful when Kind == KindShape; it gives the symbolic
	// length of the shape.  Nil for all other kinds.
	Rank Num
}

// Equal performs structural equality between two symbols.
func (s Symbol) Equal(o Symbol) bool {
	if s.Name != o.Name || s.Kind != o.Kind {
		return false
	}
	if s.Kind != KindShape {
		return true
	}
	return equalNum(s.Rank, o.Rank)
}
