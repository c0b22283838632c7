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
	"context"
	"testing"

	"github.com/shapecheck/backend/pkg/smt"
	"github.com/shapecheck/backend/pkg/sym"
)

// zSym is a Float-kind Num symbol, used as a divisor across these tests.
var zSym = sym.Symbol{Name: "z", Kind: sym.KindFloat}

func TestEncodeNum_TrueDivByZeroGuardsToNegOne(t *testing.T) {
	eng := smt.NewEngine()
	enc := NewEncoder(eng)
	solver := eng.NewSolver()

	z := sym.NumSymRef{Sym: zSym}
	div := sym.NumBinOp{Op: sym.TrueDiv, Left: sym.ConstFloat(1), Right: z}

	f, err := enc.EncodeNum(div)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !f.IsReal {
		t.Fatal("TrueDiv must encode as Real")
	}

	zv, err := enc.EncodeNum(z)
	if err != nil {
		t.Fatalf("encode z: %v", err)
	}

	solver.Assert(zv.R.Eq(eng.RealVal(0)))
	solver.Assert(f.R.Eq(eng.RealVal(-1)).Not())

	if solver.Check(context.Background()) != smt.Unsat {
		t.Error("1/0 must guard to -1 when the divisor is 0")
	}
}

func TestEncodeNum_IndexOutOfRangeMasksToNegOne(t *testing.T) {
	eng := smt.NewEngine()
	enc := NewEncoder(eng)
	solver := eng.NewSolver()

	base := sym.ShapeConst{Dims: []sym.Num{sym.ConstInt(2), sym.ConstInt(3)}, Rank: sym.ConstInt(2)}
	idx := sym.NumIndex{Base: base, Index: sym.ConstInt(5)}

	f, err := enc.EncodeNum(idx)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if f.IsReal {
		t.Fatal("Shape index must encode as Int")
	}

	solver.Assert(f.I.Eq(eng.IntVal(-1)).Not())
	if solver.Check(context.Background()) != smt.Unsat {
		t.Error("reading index 5 of a rank-2 shape must mask to -1")
	}
}

func TestEncodeCtr_BroadcastableDetectsMismatch(t *testing.T) {
	eng := smt.NewEngine()
	enc := NewEncoder(eng)
	solver := eng.NewSolver()

	ctr := sym.CtrBroadcastable{
		Left:  sym.ShapeConst{Dims: []sym.Num{sym.ConstInt(2), sym.ConstInt(3)}, Rank: sym.ConstInt(2)},
		Right: sym.ShapeConst{Dims: []sym.Num{sym.ConstInt(4), sym.ConstInt(3)}, Rank: sym.ConstInt(2)},
	}

	f, err := enc.EncodeCtr(ctr)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	solver.Assert(f)

	if solver.Check(context.Background()) != smt.Unsat {
		t.Error("[2,3] and [4,3] are not broadcastable, leading dims disagree and neither is 1")
	}
}

func TestEncodeCtr_BroadcastableAcceptsCompatible(t *testing.T) {
	eng := smt.NewEngine()
	enc := NewEncoder(eng)
	solver := eng.NewSolver()

	ctr := sym.CtrBroadcastable{
		Left:  sym.ShapeConst{Dims: []sym.Num{sym.ConstInt(1), sym.ConstInt(3), sym.ConstInt(4)}, Rank: sym.ConstInt(3)},
		Right: sym.ShapeConst{Dims: []sym.Num{sym.ConstInt(2), sym.ConstInt(1), sym.ConstInt(4)}, Rank: sym.ConstInt(3)},
	}

	f, err := enc.EncodeCtr(ctr)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	solver.Assert(f)

	if solver.Check(context.Background()) != smt.Sat {
		t.Error("[1,3,4] and [2,1,4] are broadcastable")
	}
}

func TestEncodeCtr_ForallRejectsRealBounds(t *testing.T) {
	eng := smt.NewEngine()
	enc := NewEncoder(eng)

	ctr := sym.CtrForall{
		Sym:  sym.Symbol{Name: "i", Kind: sym.KindInt},
		Lo:   sym.ConstFloat(0),
		Hi:   sym.ConstInt(10),
		Body: sym.CtrExpBool{Exp: sym.BoolConst{Value: true}},
	}

	_, err := enc.EncodeCtr(ctr)
	if err == nil {
		t.Fatal("a real-valued Forall bound must be rejected before any Z3 term is built")
	}
}
