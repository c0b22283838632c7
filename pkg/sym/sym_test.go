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

import "testing"

func Test_SortOf_Total(t *testing.T) {
	cases := []struct {
		name string
		expr any
		want Sort
	}{
		{"num const", ConstInt(1), SortNum},
		{"bool const", BoolConst{true}, SortBool},
		{"shape const", ShapeConst{Dims: []Num{ConstInt(2)}, Rank: ConstInt(1)}, SortShape},
		{"ctr expbool", CtrExpBool{Exp: BoolConst{true}}, SortBool},
	}
	for _, c := range cases {
		if got := SortOf(c.expr); got != c.want {
			t.Errorf("%s: SortOf() = %s, want %s", c.name, got, c.want)
		}
	}
}

func Test_RankOf_Const(t *testing.T) {
	s := ShapeConst{Dims: []Num{ConstInt(2), ConstInt(3)}, Rank: ConstInt(2)}
	if !equalNum(RankOf(s), ConstInt(2)) {
		t.Errorf("RankOf(const) = %v, want 2", RankOf(s))
	}
}

func Test_RankOf_Concat(t *testing.T) {
	l := ShapeConst{Dims: []Num{ConstInt(1)}, Rank: ConstInt(1)}
	r := ShapeConst{Dims: []Num{ConstInt(2), ConstInt(3)}, Rank: ConstInt(2)}
	got := RankOf(ShapeConcat{Left: l, Right: r})

	want := NumBinOp{Op: Add, Left: ConstInt(1), Right: ConstInt(2)}
	if !equalNum(got, want) {
		t.Errorf("RankOf(concat) = %v, want %v", got, want)
	}
}

func Test_RankOf_Broadcast(t *testing.T) {
	l := ShapeConst{Dims: []Num{ConstInt(1)}, Rank: ConstInt(1)}
	r := ShapeConst{Dims: []Num{ConstInt(2), ConstInt(3)}, Rank: ConstInt(2)}
	got := RankOf(ShapeBroadcast{Left: l, Right: r})

	want := NumMax{Args: []Num{ConstInt(1), ConstInt(2)}}
	if !equalNum(got, want) {
		t.Errorf("RankOf(broadcast) = %v, want %v", got, want)
	}
}

func Test_RankOf_SliceDefaults(t *testing.T) {
	base := ShapeConst{Dims: []Num{ConstInt(1), ConstInt(2), ConstInt(3)}, Rank: ConstInt(3)}
	// No start/end: rank_of(slice) == rank_of(base) - 0
	got := RankOf(ShapeSlice{Base: base})
	want := NumBinOp{Op: Sub, Left: ConstInt(3), Right: ConstInt(0)}
	if !equalNum(got, want) {
		t.Errorf("RankOf(slice, no bounds) = %v, want %v", got, want)
	}
}

func Test_EqualCtr_IgnoresProvenance(t *testing.T) {
	a := CtrExpBool{prov: prov{Src: &Source{Start: 0, Length: 3}}, Exp: BoolConst{true}}
	b := CtrExpBool{Exp: BoolConst{true}}
	if !EqualCtr(a, b) {
		t.Errorf("EqualCtr should ignore provenance differences")
	}
}

func Test_EqualCtr_DistinguishesVariants(t *testing.T) {
	a := CtrExpBool{Exp: BoolConst{true}}
	b := CtrNot{Arg: CtrFail{}}
	if EqualCtr(a, b) {
		t.Errorf("EqualCtr should not equate distinct variants")
	}
}

func Test_Symbol_Equal_SameKindSameName(t *testing.T) {
	a := Symbol{Name: "x", Kind: KindInt}
	b := Symbol{Name: "x", Kind: KindInt}
	if !a.Equal(b) {
		t.Errorf("symbols with same name/kind should be equal")
	}
}

func Test_ConstraintSet_Validate_OutOfRange(t *testing.T) {
	cs := ConstraintSet{
		Pool: []Ctr{CtrExpBool{Exp: BoolConst{true}}},
		Soft: []CtrIndex{5},
	}
	if err := cs.Validate(); err == nil {
		t.Errorf("expected out-of-range index to fail validation")
	}
}

func Test_ConstraintSet_Validate_Duplicate(t *testing.T) {
	cs := ConstraintSet{
		Pool: []Ctr{CtrExpBool{Exp: BoolConst{true}}, CtrFail{}},
		Hard: []CtrIndex{0, 0},
	}
	if err := cs.Validate(); err == nil {
		t.Errorf("expected duplicate index to fail validation")
	}
}

func Test_ConstraintSet_SoftCtrs_PreservesOrder(t *testing.T) {
	cs := ConstraintSet{
		Pool: []Ctr{CtrFail{}, CtrExpBool{Exp: BoolConst{true}}, CtrNot{Arg: CtrFail{}}},
		Soft: []CtrIndex{2, 0},
	}
	got := cs.SoftCtrs()
	if len(got) != 2 || !EqualCtr(got[0], cs.Pool[2]) || !EqualCtr(got[1], cs.Pool[0]) {
		t.Errorf("SoftCtrs did not preserve recorded order: %v", got)
	}
}
