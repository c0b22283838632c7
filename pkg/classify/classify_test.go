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

// These tests exercise the classifier's three staged SMT queries end to end
// against a real smt.Engine, following spec ยง8's S1-S6 scenarios.
package classify

import (
	"context"
	"testing"
	"time"

	"github.com/shapecheck/backend/pkg/report"
	"github.com/shapecheck/backend/pkg/sym"
)

const testTimeout = 5 * time.Second

func classifyOneSet(t *testing.T, set sym.ConstraintSet) report.Report {
	t.Helper()
	reports := ClassifyAll(context.Background(), []sym.ConstraintSet{set}, testTimeout)
	if len(reports) != 1 {
		t.Fatalf("expected exactly one report, got %d", len(reports))
	}
	return reports[0]
}

// S1: trivial valid path, a single soft constraint that always holds.
func TestClassifyOne_TrivialValid(t *testing.T) {
	set := sym.ConstraintSet{
		Pool: []sym.Ctr{
			sym.CtrEq{Left: sym.NumOperand(sym.ConstInt(2)), Right: sym.NumOperand(sym.ConstInt(2))},
		},
		Soft: []sym.CtrIndex{0},
	}

	rep := classifyOneSet(t, set)
	if rep.Verdict != report.Valid {
		t.Fatalf("expected Valid, got %s (err=%v)", rep.Verdict, rep.Err)
	}
}

// S2: a hard shape-equality constraint pins X to [2], and a soft constraint
// asserts X's dim 0 equals 3 -- violable, first offender is pool index 1.
func TestClassifyOne_ShapeMismatchReportsFirstOffender(t *testing.T) {
	xSym := sym.Symbol{Name: "X", Kind: sym.KindShape, Rank: sym.ConstInt(1)}
	xRef := sym.ShapeSymRef{Sym: xSym}

	set := sym.ConstraintSet{
		Pool: []sym.Ctr{
			sym.CtrEq{
				Left:  sym.ShapeOperand(xRef),
				Right: sym.ShapeOperand(sym.ShapeConst{Dims: []sym.Num{sym.ConstInt(2)}, Rank: sym.ConstInt(1)}),
			},
			sym.CtrEq{
				Left:  sym.NumOperand(sym.NumIndex{Base: xRef, Index: sym.ConstInt(0)}),
				Right: sym.NumOperand(sym.ConstInt(3)),
			},
		},
		Hard: []sym.CtrIndex{0},
		Soft: []sym.CtrIndex{1},
	}

	rep := classifyOneSet(t, set)
	if rep.Verdict != report.Invalid {
		t.Fatalf("expected Invalid, got %s (err=%v)", rep.Verdict, rep.Err)
	}
	if rep.Conflict == nil || *rep.Conflict != 1 {
		t.Fatalf("expected first offender at pool index 1, got %v", rep.Conflict)
	}
}

// S3: the path's own conditions (n < 0 and 0 <= n) are mutually exclusive,
// so the path is Unreachable regardless of what the soft constraint says.
func TestClassifyOne_UnreachablePath(t *testing.T) {
	n := sym.NumSymRef{Sym: sym.Symbol{Name: "n", Kind: sym.KindInt}}

	set := sym.ConstraintSet{
		Pool: []sym.Ctr{
			sym.CtrLt{Left: n, Right: sym.ConstInt(0)},
			sym.CtrLe{Left: sym.ConstInt(0), Right: n},
			sym.CtrEq{Left: sym.NumOperand(n), Right: sym.NumOperand(n)},
		},
		Path: []sym.CtrIndex{0, 1},
		Soft: []sym.CtrIndex{2},
	}

	rep := classifyOneSet(t, set)
	if rep.Verdict != report.Unreachable {
		t.Fatalf("expected Unreachable, got %s (err=%v)", rep.Verdict, rep.Err)
	}
	if len(rep.UnreachableCore) == 0 {
		t.Error("expected a non-empty unsat core naming the conflicting path constraints")
	}
	for _, idx := range rep.UnreachableCore {
		if idx != 0 && idx != 1 {
			t.Errorf("unsat core index %d is outside the conflicting {0,1} path constraints", idx)
		}
	}
}

// S5: [2,3] and [4,3] are not broadcastable, so the lone soft constraint is
// violable and reported as the first (and only) offender.
func TestClassifyOne_BroadcastFailureReportsOffender(t *testing.T) {
	set := sym.ConstraintSet{
		Pool: []sym.Ctr{
			sym.CtrBroadcastable{
				Left:  sym.ShapeConst{Dims: []sym.Num{sym.ConstInt(2), sym.ConstInt(3)}, Rank: sym.ConstInt(2)},
				Right: sym.ShapeConst{Dims: []sym.Num{sym.ConstInt(4), sym.ConstInt(3)}, Rank: sym.ConstInt(2)},
			},
		},
		Soft: []sym.CtrIndex{0},
	}

	rep := classifyOneSet(t, set)
	if rep.Verdict != report.Invalid {
		t.Fatalf("expected Invalid, got %s (err=%v)", rep.Verdict, rep.Err)
	}
	if rep.Conflict == nil || *rep.Conflict != 0 {
		t.Fatalf("expected offender at pool index 0, got %v", rep.Conflict)
	}
}

// S6: the hard assertion 1 == 1/z only holds if the TrueDiv-by-zero guard is
// visible to the solver; forcing z == 0 on the path collapses it to 1 ==
// -1, so the path is Unreachable and the soft constraint is never reached.
func TestClassifyOne_DivisionByZeroGuardMakesPathUnreachable(t *testing.T) {
	z := sym.NumSymRef{Sym: sym.Symbol{Name: "z", Kind: sym.KindFloat}}

	set := sym.ConstraintSet{
		Pool: []sym.Ctr{
			sym.CtrEq{
				Left:  sym.NumOperand(sym.ConstInt(1)),
				Right: sym.NumOperand(sym.NumBinOp{Op: sym.TrueDiv, Left: sym.ConstInt(1), Right: z}),
			},
			sym.CtrEq{Left: sym.NumOperand(z), Right: sym.NumOperand(sym.ConstInt(0))},
			sym.CtrExpBool{Exp: sym.BoolConst{Value: true}},
		},
		Hard: []sym.CtrIndex{0},
		Path: []sym.CtrIndex{1},
		Soft: []sym.CtrIndex{2},
	}

	rep := classifyOneSet(t, set)
	if rep.Verdict != report.Unreachable {
		t.Fatalf("expected Unreachable, got %s (err=%v)", rep.Verdict, rep.Err)
	}
	if rep.UnreachableCore == nil {
		t.Error("expected an unsat core for the division-by-zero-guarded path")
	}
}

func TestClassifyOne_StampsDuration(t *testing.T) {
	set := sym.ConstraintSet{
		Pool: []sym.Ctr{
			sym.CtrEq{Left: sym.NumOperand(sym.ConstInt(1)), Right: sym.NumOperand(sym.ConstInt(1))},
		},
		Soft: []sym.CtrIndex{0},
	}

	rep := classifyOneSet(t, set)
	if rep.Duration <= 0 {
		t.Error("expected a positive classification Duration")
	}
}
