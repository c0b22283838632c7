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
package decode

import (
	"strings"
	"testing"

	"github.com/shapecheck/backend/pkg/sym"
)

// numConstDoc builds a raw Num-sort exprDoc literal for embedding into a
// larger JSON document under test.
func numConstDoc(v int64) string {
	return `{"expType":1,"opType":0,"value":` + itoa(v) + `}`
}

func itoa(v int64) string {
	if v < 0 {
		return "-" + itoa(-v)
	}
	if v == 0 {
		return "0"
	}
	var digits []byte
	for v > 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	return string(digits)
}

func TestDecode_SingleExpBoolPath(t *testing.T) {
	doc := `[{
		"ctrPool": [
			{"type": 0, "exp": {"expType": 2, "opType": 0, "value": true}}
		],
		"hardCtr": [0],
		"pathCtr": [],
		"softCtr": []
	}]`

	sets, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("expected 1 constraint set, got %d", len(sets))
	}
	set := sets[0]
	if len(set.Pool) != 1 {
		t.Fatalf("expected 1 pooled ctr, got %d", len(set.Pool))
	}
	want := sym.CtrExpBool{Exp: sym.BoolConst{Value: true}}
	if !sym.EqualCtr(set.Pool[0], want) {
		t.Errorf("decoded ctr = %v, want %v", set.Pool[0], want)
	}
	if len(set.Hard) != 1 || set.Hard[0] != 0 {
		t.Errorf("hard index list = %v, want [0]", set.Hard)
	}
}

func TestDecode_EqualityBetweenNums(t *testing.T) {
	doc := `[{
		"ctrPool": [
			{"type": 1, "left": ` + numConstDoc(3) + `, "right": ` + numConstDoc(3) + `}
		],
		"hardCtr": [0], "pathCtr": [], "softCtr": []
	}]`

	sets, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ctr := sets[0].Pool[0]
	eq, ok := ctr.(sym.CtrEq)
	if !ok {
		t.Fatalf("expected CtrEq, got %T", ctr)
	}
	if eq.Left.Sort() != sym.SortNum || eq.Right.Sort() != sym.SortNum {
		t.Errorf("expected Num operands, got %s/%s", eq.Left.Sort(), eq.Right.Sort())
	}
}

func TestDecode_AndRecursesIntoNestedCtr(t *testing.T) {
	doc := `[{
		"ctrPool": [
			{
				"type": 3,
				"left":  {"type": 0, "exp": {"expType": 2, "opType": 0, "value": true}},
				"right": {"type": 10}
			}
		],
		"hardCtr": [0], "pathCtr": [], "softCtr": []
	}]`

	sets, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ctr := sets[0].Pool[0]
	and, ok := ctr.(sym.CtrAnd)
	if !ok {
		t.Fatalf("expected CtrAnd, got %T", ctr)
	}
	if _, ok := and.Left.(sym.CtrExpBool); !ok {
		t.Errorf("expected left to decode as CtrExpBool, got %T", and.Left)
	}
	if _, ok := and.Right.(sym.CtrFail); !ok {
		t.Errorf("expected right to decode as CtrFail, got %T", and.Right)
	}
}

func TestDecode_NotRecursesIntoNestedCtr(t *testing.T) {
	doc := `[{
		"ctrPool": [
			{"type": 5, "constraint": {"type": 10}}
		],
		"hardCtr": [0], "pathCtr": [], "softCtr": []
	}]`

	sets, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	not, ok := sets[0].Pool[0].(sym.CtrNot)
	if !ok {
		t.Fatalf("expected CtrNot, got %T", sets[0].Pool[0])
	}
	if _, ok := not.Arg.(sym.CtrFail); !ok {
		t.Errorf("expected arg to decode as CtrFail, got %T", not.Arg)
	}
}

func TestDecode_ForallBindsSymbolAndBody(t *testing.T) {
	doc := `[{
		"ctrPool": [
			{
				"type": 8,
				"symbol": {"name": "i", "type": 0},
				"range": [` + numConstDoc(0) + `,` + numConstDoc(4) + `],
				"constraint": {"type": 10}
			}
		],
		"hardCtr": [0], "pathCtr": [], "softCtr": []
	}]`

	sets, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fa, ok := sets[0].Pool[0].(sym.CtrForall)
	if !ok {
		t.Fatalf("expected CtrForall, got %T", sets[0].Pool[0])
	}
	if fa.Sym.Name != "i" || fa.Sym.Kind != sym.KindInt {
		t.Errorf("unexpected bound symbol: %+v", fa.Sym)
	}
	if _, ok := fa.Body.(sym.CtrFail); !ok {
		t.Errorf("expected body to decode as CtrFail, got %T", fa.Body)
	}
}

func TestDecode_ProvenanceAttached(t *testing.T) {
	doc := `[{
		"ctrPool": [
			{
				"type": 10,
				"source": {"start": 4, "length": 6},
				"message": "rank mismatch"
			}
		],
		"hardCtr": [], "pathCtr": [], "softCtr": [0]
	}]`

	sets, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	src, msg := sets[0].Pool[0].Provenance()
	if src == nil || src.Start != 4 || src.Length != 6 {
		t.Errorf("unexpected provenance span: %+v", src)
	}
	if msg != "rank mismatch" {
		t.Errorf("message = %q, want %q", msg, "rank mismatch")
	}
}

func TestDecode_UnknownCtrTag(t *testing.T) {
	doc := `[{"ctrPool": [{"type": 99}], "hardCtr": [0], "pathCtr": [], "softCtr": []}]`

	_, err := Decode([]byte(doc))
	if err == nil {
		t.Fatal("expected error for unknown constraint tag")
	}
	de, ok := err.(*Error)
	if !ok || de.Kind != UnknownTag {
		t.Errorf("expected UnknownTag error, got %v", err)
	}
}

func TestDecode_SortMismatchOnEquality(t *testing.T) {
	doc := `[{
		"ctrPool": [
			{
				"type": 1,
				"left":  ` + numConstDoc(1) + `,
				"right": {"expType": 0, "opType": 0, "dims": []}
			}
		],
		"hardCtr": [0], "pathCtr": [], "softCtr": []
	}]`

	_, err := Decode([]byte(doc))
	if err == nil {
		t.Fatal("expected sort-mismatch error")
	}
	de, ok := err.(*Error)
	if !ok || de.Kind != SortMismatch {
		t.Errorf("expected SortMismatch error, got %v", err)
	}
}

func TestDecode_OutOfRangeIndex(t *testing.T) {
	doc := `[{
		"ctrPool": [{"type": 10}],
		"hardCtr": [5], "pathCtr": [], "softCtr": []
	}]`

	_, err := Decode([]byte(doc))
	if err == nil {
		t.Fatal("expected out-of-range error")
	}
	de, ok := err.(*Error)
	if !ok || de.Kind != IndexOutOfRange {
		t.Errorf("expected IndexOutOfRange error, got %v", err)
	}
}

func TestDecode_MissingLeftOperand(t *testing.T) {
	doc := `[{
		"ctrPool": [{"type": 1, "right": ` + numConstDoc(1) + `}],
		"hardCtr": [0], "pathCtr": [], "softCtr": []
	}]`

	_, err := Decode([]byte(doc))
	if err == nil {
		t.Fatal("expected missing-field error")
	}
	de, ok := err.(*Error)
	if !ok || de.Kind != WrongField {
		t.Errorf("expected WrongField error, got %v", err)
	}
	if !strings.Contains(de.Path, "ctrPool[0]") {
		t.Errorf("error path %q should locate the offending pool entry", de.Path)
	}
}

func TestDecode_FloatConstant(t *testing.T) {
	doc := `[{
		"ctrPool": [
			{"type": 1, "left": {"expType":1,"opType":0,"value":2.5}, "right": {"expType":1,"opType":0,"value":2.5}}
		],
		"hardCtr": [0], "pathCtr": [], "softCtr": []
	}]`

	sets, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	eq := sets[0].Pool[0].(sym.CtrEq)
	nc, ok := eq.Left.Num.(sym.NumConst)
	if !ok || !nc.IsFloat || nc.FltVal != 2.5 {
		t.Errorf("expected float constant 2.5, got %+v", eq.Left.Num)
	}
}

func TestDecode_ShapeSliceDefaultBounds(t *testing.T) {
	doc := `[{
		"ctrPool": [
			{
				"type": 9,
				"left": {
					"expType": 0, "opType": 3,
					"baseShape": {"expType":0,"opType":0,"dims":[` + numConstDoc(1) + `,` + numConstDoc(2) + `]}
				},
				"right": {"expType":0,"opType":0,"dims":[` + numConstDoc(1) + `]}
			}
		],
		"hardCtr": [0], "pathCtr": [], "softCtr": []
	}]`

	sets, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	bc := sets[0].Pool[0].(sym.CtrBroadcastable)
	slice, ok := bc.Left.(sym.ShapeSlice)
	if !ok {
		t.Fatalf("expected ShapeSlice, got %T", bc.Left)
	}
	if slice.Start != nil || slice.End != nil {
		t.Errorf("expected nil start/end for an unbounded slice, got start=%v end=%v", slice.Start, slice.End)
	}
}

func TestDecode_MultiplePaths(t *testing.T) {
	doc := `[
		{"ctrPool": [{"type": 10}], "hardCtr": [0], "pathCtr": [], "softCtr": []},
		{"ctrPool": [{"type": 0, "exp": {"expType":2,"opType":0,"value":false}}], "hardCtr": [], "pathCtr": [], "softCtr": [0]}
	]`

	sets, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(sets))
	}
	if _, ok := sets[0].Pool[0].(sym.CtrFail); !ok {
		t.Errorf("path 0 ctr = %T, want CtrFail", sets[0].Pool[0])
	}
	if len(sets[1].Soft) != 1 {
		t.Errorf("path 1 soft list = %v, want 1 entry", sets[1].Soft)
	}
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	if err == nil {
		t.Fatal("expected error decoding invalid JSON")
	}
}
