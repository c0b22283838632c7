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
	"testing"

	"github.com/shapecheck/backend/pkg/sym"
)

func TestIsRealValued_IntLiteral(t *testing.T) {
	if IsRealValued(sym.ConstInt(3)) {
		t.Error("int literal should not be real-valued")
	}
}

func TestIsRealValued_FloatLiteral(t *testing.T) {
	if !IsRealValued(sym.ConstFloat(3.5)) {
		t.Error("float literal should be real-valued")
	}
}

func TestIsRealValued_FloatSymbol(t *testing.T) {
	ref := sym.NumSymRef{Sym: sym.Symbol{Name: "x", Kind: sym.KindFloat}}
	if !IsRealValued(ref) {
		t.Error("Float-kind symbol should be real-valued")
	}
}

func TestIsRealValued_IntSymbol(t *testing.T) {
	ref := sym.NumSymRef{Sym: sym.Symbol{Name: "x", Kind: sym.KindInt}}
	if IsRealValued(ref) {
		t.Error("Int-kind symbol should not be real-valued")
	}
}

func TestIsRealValued_BinOpPropagatesFromEitherSide(t *testing.T) {
	op := sym.NumBinOp{Op: sym.Add, Left: sym.ConstInt(1), Right: sym.ConstFloat(2.0)}
	if !IsRealValued(op) {
		t.Error("a binop with one real operand should be real-valued")
	}
}

func TestIsRealValued_BinOpAllInt(t *testing.T) {
	op := sym.NumBinOp{Op: sym.Add, Left: sym.ConstInt(1), Right: sym.ConstInt(2)}
	if IsRealValued(op) {
		t.Error("a binop with only int operands should not be real-valued")
	}
}

func TestIsRealValued_MinMaxPropagates(t *testing.T) {
	m := sym.NumMax{Args: []sym.Num{sym.ConstInt(1), sym.ConstFloat(2.0), sym.ConstInt(3)}}
	if !IsRealValued(m) {
		t.Error("NumMax with any real arg should be real-valued")
	}
}

func TestIsRealValued_IndexAndNumelAreAlwaysInt(t *testing.T) {
	base := sym.ShapeConst{Dims: []sym.Num{sym.ConstInt(2)}, Rank: sym.ConstInt(1)}
	idx := sym.NumIndex{Base: base, Index: sym.ConstInt(0)}
	if IsRealValued(idx) {
		t.Error("NumIndex reads an Int dim, never real-valued")
	}
	numel := sym.NumNumel{Base: base}
	if IsRealValued(numel) {
		t.Error("NumNumel is always Int-valued")
	}
}
