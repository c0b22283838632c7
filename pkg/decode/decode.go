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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shapecheck/backend/pkg/sym"
)

// Decode parses the front-end's serialized document (spec ยง6) into one
// ConstraintSet per explored path, validating tag/arity/sort invariants
// eagerly so downstream components (pkg/smtenc, pkg/classify) may assume
// IR well-formedness.
func Decode(data []byte) ([]sym.ConstraintSet, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errAt(WrongField, "$", "invalid JSON document: %v", err)
	}

	sets := make([]sym.ConstraintSet, len(doc))

	for i, pd := range doc {
		set, err := buildConstraintSet(pd, fmt.Sprintf("paths[%d]", i))
		if err != nil {
			return nil, err
		}
		sets[i] = set
	}

	return sets, nil
}

func buildConstraintSet(pd pathDoc, path string) (sym.ConstraintSet, error) {
	pool := make([]sym.Ctr, len(pd.CtrPool))

	for i, cd := range pd.CtrPool {
		ctr, err := buildCtr(&cd, fmt.Sprintf("%s.ctrPool[%d]", path, i))
		if err != nil {
			return sym.ConstraintSet{}, err
		}
		pool[i] = ctr
	}

	set := sym.ConstraintSet{
		Pool: pool,
		Hard: append([]uint(nil), pd.HardCtr...),
		Path: append([]uint(nil), pd.PathCtr...),
		Soft: append([]uint(nil), pd.SoftCtr...),
	}

	if err := set.Validate(); err != nil {
		return sym.ConstraintSet{}, errAt(IndexOutOfRange, path, "%v", err)
	}

	return set, nil
}

// ---------------------------------------------------------------------------
// Ctr
// ---------------------------------------------------------------------------

func buildCtr(d *ctrDoc, path string) (sym.Ctr, error) {
	p := sym.Source{}
	hasSrc := d.Source != nil
	if hasSrc {
		p = sym.Source{Start: d.Source.Start, Length: d.Source.Length}
	}

	switch d.Type {
	case ctrExpBool:
		exp, err := requireBool(d.Exp, path+".exp")
		if err != nil {
			return nil, err
		}
		return withProv(sym.CtrExpBool{Exp: exp}, hasSrc, p, d.Message), nil

	case ctrEqual, ctrNotEqual:
		l, err := parseExprDoc(d.Left, path+".left")
		if err != nil {
			return nil, err
		}
		r, err := parseExprDoc(d.Right, path+".right")
		if err != nil {
			return nil, err
		}
		left, right, err := buildOperandPair(l, r, path)
		if err != nil {
			return nil, err
		}
		if d.Type == ctrEqual {
			return withProv(sym.CtrEq{Left: left, Right: right}, hasSrc, p, d.Message), nil
		}
		return withProv(sym.CtrNe{Left: left, Right: right}, hasSrc, p, d.Message), nil

	case ctrLessThan, ctrLessThanOrEqual:
		l, err := parseExprDoc(d.Left, path+".left")
		if err != nil {
			return nil, err
		}
		r, err := parseExprDoc(d.Right, path+".right")
		if err != nil {
			return nil, err
		}
		left, err := requireNum(l, path+".left")
		if err != nil {
			return nil, err
		}
		right, err := requireNum(r, path+".right")
		if err != nil {
			return nil, err
		}
		if d.Type == ctrLessThan {
			return withProv(sym.CtrLt{Left: left, Right: right}, hasSrc, p, d.Message), nil
		}
		return withProv(sym.CtrLe{Left: left, Right: right}, hasSrc, p, d.Message), nil

	case ctrAnd, ctrOr:
		lcd, err := parseCtrDoc(d.Left, path+".left")
		if err != nil {
			return nil, err
		}
		rcd, err := parseCtrDoc(d.Right, path+".right")
		if err != nil {
			return nil, err
		}
		left, err := buildCtr(lcd, path+".left")
		if err != nil {
			return nil, err
		}
		right, err := buildCtr(rcd, path+".right")
		if err != nil {
			return nil, err
		}
		if d.Type == ctrAnd {
			return withProv(sym.CtrAnd{Left: left, Right: right}, hasSrc, p, d.Message), nil
		}
		return withProv(sym.CtrOr{Left: left, Right: right}, hasSrc, p, d.Message), nil

	case ctrNot:
		cd, err := parseCtrDoc(d.Constraint, path+".constraint")
		if err != nil {
			return nil, err
		}
		arg, err := buildCtr(cd, path+".constraint")
		if err != nil {
			return nil, err
		}
		return withProv(sym.CtrNot{Arg: arg}, hasSrc, p, d.Message), nil

	case ctrForall:
		if d.Symbol == nil {
			return nil, errAt(WrongField, path, "Forall requires a symbol field")
		}
		if len(d.Range) != 2 {
			return nil, errAt(WrongField, path, "Forall requires a 2-element range, got %d", len(d.Range))
		}
		s, err := buildSymbol(d.Symbol, path+".symbol")
		if err != nil {
			return nil, err
		}
		lo, err := buildNum(&d.Range[0], path+".range[0]")
		if err != nil {
			return nil, err
		}
		hi, err := buildNum(&d.Range[1], path+".range[1]")
		if err != nil {
			return nil, err
		}
		cd, err := parseCtrDoc(d.Constraint, path+".constraint")
		if err != nil {
			return nil, err
		}
		body, err := buildCtr(cd, path+".constraint")
		if err != nil {
			return nil, err
		}
		return withProv(sym.CtrForall{Sym: s, Lo: lo, Hi: hi, Body: body}, hasSrc, p, d.Message), nil

	case ctrBroadcastable:
		l, err := parseExprDoc(d.Left, path+".left")
		if err != nil {
			return nil, err
		}
		r, err := parseExprDoc(d.Right, path+".right")
		if err != nil {
			return nil, err
		}
		left, err := requireShape(l, path+".left")
		if err != nil {
			return nil, err
		}
		right, err := requireShape(r, path+".right")
		if err != nil {
			return nil, err
		}
		return withProv(sym.CtrBroadcastable{Left: left, Right: right}, hasSrc, p, d.Message), nil

	case ctrFail:
		return withProv(sym.CtrFail{}, hasSrc, p, d.Message), nil

	default:
		return nil, errAt(UnknownTag, path, "unknown constraint tag %d", d.Type)
	}
}

// parseExprDoc unmarshals a context-dependent raw field (ctrDoc.Left/Right)
// as an exprDoc, used where the spec's Ctr variant expects a Num or Shape
// operand (Eq/Ne/Lt/Le/Broadcastable).
func parseExprDoc(raw json.RawMessage, path string) (*exprDoc, error) {
	if raw == nil {
		return nil, errAt(WrongField, path, "missing expression")
	}
	var d exprDoc
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, errAt(WrongField, path, "invalid expression: %v", err)
	}
	return &d, nil
}

// parseCtrDoc unmarshals a context-dependent raw field (ctrDoc.Left/Right/
// Constraint) as a nested ctrDoc, used where the spec's Ctr variant
// recurses on Ctr itself (And/Or/Not/Forall).
func parseCtrDoc(raw json.RawMessage, path string) (*ctrDoc, error) {
	if raw == nil {
		return nil, errAt(WrongField, path, "missing constraint")
	}
	var d ctrDoc
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, errAt(WrongField, path, "invalid constraint: %v", err)
	}
	return &d, nil
}

func withProv(base sym.Ctr, hasSrc bool, src sym.Source, msg string) sym.Ctr {
	var srcPtr *sym.Source
	if hasSrc {
		s := src
		srcPtr = &s
	}

	switch t := base.(type) {
	case sym.CtrExpBool:
		t.Src, t.Msg = srcPtr, msg
		return t
	case sym.CtrEq:
		t.Src, t.Msg = srcPtr, msg
		return t
	case sym.CtrNe:
		t.Src, t.Msg = srcPtr, msg
		return t
	case sym.CtrLt:
		t.Src, t.Msg = srcPtr, msg
		return t
	case sym.CtrLe:
		t.Src, t.Msg = srcPtr, msg
		return t
	case sym.CtrAnd:
		t.Src, t.Msg = srcPtr, msg
		return t
	case sym.CtrOr:
		t.Src, t.Msg = srcPtr, msg
		return t
	case sym.CtrNot:
		t.Src, t.Msg = srcPtr, msg
		return t
	case sym.CtrForall:
		t.Src, t.Msg = srcPtr, msg
		return t
	case sym.CtrBroadcastable:
		t.Src, t.Msg = srcPtr, msg
		return t
	case sym.CtrFail:
		t.Src, t.Msg = srcPtr, msg
		return t
	default:
		return base
	}
}

func buildOperandPair(l, r *exprDoc, path string) (sym.CmpOperand, sym.CmpOperand, error) {
	if l == nil || r == nil {
		return sym.CmpOperand{}, sym.CmpOperand{}, errAt(WrongField, path, "missing left/right operand")
	}
	if l.ExpType != r.ExpType {
		return sym.CmpOperand{}, sym.CmpOperand{}, errAt(SortMismatch, path,
			"comparison mismatch: left is %s, right is %s", sortName(l.ExpType), sortName(r.ExpType))
	}

	switch l.ExpType {
	case sortNum:
		left, err := buildNum(l, path+".left")
		if err != nil {
			return sym.CmpOperand{}, sym.CmpOperand{}, err
		}
		right, err := buildNum(r, path+".right")
		if err != nil {
			return sym.CmpOperand{}, sym.CmpOperand{}, err
		}
		return sym.NumOperand(left), sym.NumOperand(right), nil
	case sortShape:
		left, err := buildShape(l, path+".left")
		if err != nil {
			return sym.CmpOperand{}, sym.CmpOperand{}, err
		}
		right, err := buildShape(r, path+".right")
		if err != nil {
			return sym.CmpOperand{}, sym.CmpOperand{}, err
		}
		return sym.ShapeOperand(left), sym.ShapeOperand(right), nil
	default:
		return sym.CmpOperand{}, sym.CmpOperand{}, errAt(SortMismatch, path,
			"Eq/Ne only support Num or Shape operands, got %s", sortName(l.ExpType))
	}
}

func sortName(tag int) string {
	switch tag {
	case sortShape:
		return "Shape"
	case sortNum:
		return "Num"
	case sortBool:
		return "Bool"
	case sortString:
		return "String"
	default:
		return fmt.Sprintf("tag(%d)", tag)
	}
}

// ---------------------------------------------------------------------------
// Bool
// ---------------------------------------------------------------------------

func requireBool(d *exprDoc, path string) (sym.Bool, error) {
	if d == nil {
		return nil, errAt(WrongField, path, "missing Bool expression")
	}
	if d.ExpType != sortBool {
		return nil, errAt(SortMismatch, path, "expected Bool, got %s", sortName(d.ExpType))
	}
	return buildBool(d, path)
}

func buildBool(d *exprDoc, path string) (sym.Bool, error) {
	switch d.OpType {
	case boolConst:
		v, err := requireJSONBool(d.Value, path+".value")
		if err != nil {
			return nil, err
		}
		return sym.BoolConst{Value: v}, nil

	case boolSymbol:
		if d.Symbol == nil {
			return nil, errAt(WrongField, path, "Bool Symbol requires a symbol field")
		}
		s, err := buildSymbol(d.Symbol, path+".symbol")
		if err != nil {
			return nil, err
		}
		return sym.BoolSymRef{Sym: s}, nil

	case boolEqual, boolNeq:
		left, right, err := buildOperandPair(d.Left, d.Right, path)
		if err != nil {
			return nil, err
		}
		if d.OpType == boolEqual {
			return sym.BoolEq{Left: left, Right: right}, nil
		}
		return sym.BoolNe{Left: left, Right: right}, nil

	case boolLt, boolLe:
		left, err := requireNum(d.Left, path+".left")
		if err != nil {
			return nil, err
		}
		right, err := requireNum(d.Right, path+".right")
		if err != nil {
			return nil, err
		}
		if d.OpType == boolLt {
			return sym.BoolLt{Left: left, Right: right}, nil
		}
		return sym.BoolLe{Left: left, Right: right}, nil

	case boolNot:
		arg, err := requireBool(d.BaseBool, path+".baseBool")
		if err != nil {
			return nil, err
		}
		return sym.BoolNot{Arg: arg}, nil

	case boolAnd, boolOr:
		left, err := requireBool(d.Left, path+".left")
		if err != nil {
			return nil, err
		}
		right, err := requireBool(d.Right, path+".right")
		if err != nil {
			return nil, err
		}
		if d.OpType == boolAnd {
			return sym.BoolAnd{Left: left, Right: right}, nil
		}
		return sym.BoolOr{Left: left, Right: right}, nil

	default:
		return nil, errAt(UnknownTag, path, "unknown Bool op tag %d", d.OpType)
	}
}

func requireJSONBool(raw json.RawMessage, path string) (bool, error) {
	if raw == nil {
		return false, errAt(WrongField, path, "missing boolean value")
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, errAt(WrongField, path, "expected a JSON boolean: %v", err)
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// Num
// ---------------------------------------------------------------------------

func requireNum(d *exprDoc, path string) (sym.Num, error) {
	if d == nil {
		return nil, errAt(WrongField, path, "missing Num expression")
	}
	if d.ExpType != sortNum {
		return nil, errAt(SortMismatch, path, "expected Num, got %s", sortName(d.ExpType))
	}
	return buildNum(d, path)
}

func buildNum(d *exprDoc, path string) (sym.Num, error) {
	switch d.OpType {
	case numConst:
		return buildNumConst(d.Value, path+".value")

	case numSymbol:
		if d.Symbol == nil {
			return nil, errAt(WrongField, path, "Num Symbol requires a symbol field")
		}
		s, err := buildSymbol(d.Symbol, path+".symbol")
		if err != nil {
			return nil, err
		}
		return sym.NumSymRef{Sym: s}, nil

	case numBop:
		left, err := requireNum(d.Left, path+".left")
		if err != nil {
			return nil, err
		}
		right, err := requireNum(d.Right, path+".right")
		if err != nil {
			return nil, err
		}
		op, err := numBopOf(d.BopType, path)
		if err != nil {
			return nil, err
		}
		return sym.NumBinOp{Op: op, Left: left, Right: right}, nil

	case numUop:
		arg, err := requireNum(d.BaseValue, path+".baseValue")
		if err != nil {
			return nil, err
		}
		op, err := numUopOf(d.UopType, path)
		if err != nil {
			return nil, err
		}
		return sym.NumUnOp{Op: op, Arg: arg}, nil

	case numIndex:
		base, err := requireShape(d.BaseShape, path+".baseShape")
		if err != nil {
			return nil, err
		}
		idx, err := requireNum(d.Index, path+".index")
		if err != nil {
			return nil, err
		}
		return sym.NumIndex{Base: base, Index: idx}, nil

	case numNumel:
		base, err := requireShape(d.BaseShape, path+".baseShape")
		if err != nil {
			return nil, err
		}
		return sym.NumNumel{Base: base}, nil

	case numMin, numMax:
		if len(d.Values) == 0 {
			return nil, errAt(WrongField, path, "Min/Max requires at least one value")
		}
		vals := make([]sym.Num, len(d.Values))
		for i := range d.Values {
			v, err := requireNum(&d.Values[i], fmt.Sprintf("%s.values[%d]", path, i))
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		if d.OpType == numMin {
			return sym.NumMin{Args: vals}, nil
		}
		return sym.NumMax{Args: vals}, nil

	default:
		return nil, errAt(UnknownTag, path, "unknown Num op tag %d", d.OpType)
	}
}

func buildNumConst(raw json.RawMessage, path string) (sym.Num, error) {
	if raw == nil {
		return nil, errAt(WrongField, path, "missing constant value")
	}

	text := strings.TrimSpace(string(raw))
	if !strings.ContainsAny(text, ".eE") {
		if iv, err := strconv.ParseInt(text, 10, 64); err == nil {
			return sym.ConstInt(iv), nil
		}
	}

	var fv float64
	if err := json.Unmarshal(raw, &fv); err != nil {
		return nil, errAt(WrongField, path, "expected an int or float constant: %v", err)
	}
	return sym.ConstFloat(fv), nil
}

func numBopOf(tag int, path string) (sym.NumBop, error) {
	switch tag {
	case bopAdd:
		return sym.Add, nil
	case bopSub:
		return sym.Sub, nil
	case bopMul:
		return sym.Mul, nil
	case bopTrueDiv:
		return sym.TrueDiv, nil
	case bopFloorDiv:
		return sym.FloorDiv, nil
	case bopMod:
		return sym.Mod, nil
	default:
		return 0, errAt(UnknownTag, path+".bopType", "unknown Num binary op tag %d", tag)
	}
}

func numUopOf(tag int, path string) (sym.NumUop, error) {
	switch tag {
	case uopNeg:
		return sym.Neg, nil
	case uopFloor:
		return sym.Floor, nil
	case uopCeil:
		return sym.Ceil, nil
	case uopAbs:
		return sym.Abs, nil
	default:
		return 0, errAt(UnknownTag, path+".uopType", "unknown Num unary op tag %d", tag)
	}
}

// ---------------------------------------------------------------------------
// Shape
// ---------------------------------------------------------------------------

func requireShape(d *exprDoc, path string) (sym.Shape, error) {
	if d == nil {
		return nil, errAt(WrongField, path, "missing Shape expression")
	}
	if d.ExpType != sortShape {
		return nil, errAt(SortMismatch, path, "expected Shape, got %s", sortName(d.ExpType))
	}
	return buildShape(d, path)
}

func buildShape(d *exprDoc, path string) (sym.Shape, error) {
	switch d.OpType {
	case shapeConst:
		dims := make([]sym.Num, len(d.Dims))
		for i := range d.Dims {
			n, err := requireNum(&d.Dims[i], fmt.Sprintf("%s.dims[%d]", path, i))
			if err != nil {
				return nil, err
			}
			dims[i] = n
		}
		return sym.ShapeConst{Dims: dims, Rank: sym.ConstInt(int64(len(dims)))}, nil

	case shapeSymbol:
		if d.Symbol == nil {
			return nil, errAt(WrongField, path, "Shape Symbol requires a symbol field")
		}
		s, err := buildSymbol(d.Symbol, path+".symbol")
		if err != nil {
			return nil, err
		}
		if s.Rank == nil {
			return nil, errAt(WrongField, path+".symbol", "Shape symbol requires a rank")
		}
		return sym.ShapeSymRef{Sym: s}, nil

	case shapeSet:
		base, err := requireShape(d.BaseShape, path+".baseShape")
		if err != nil {
			return nil, err
		}
		axis, err := requireNum(d.Axis, path+".axis")
		if err != nil {
			return nil, err
		}
		dim, err := requireNum(d.Dim, path+".dim")
		if err != nil {
			return nil, err
		}
		return sym.ShapeSet{Base: base, Axis: axis, Dim: dim}, nil

	case shapeSlice:
		base, err := requireShape(d.BaseShape, path+".baseShape")
		if err != nil {
			return nil, err
		}
		var start, end sym.Num
		if d.Start != nil {
			if start, err = requireNum(d.Start, path+".start"); err != nil {
				return nil, err
			}
		}
		if d.End != nil {
			if end, err = requireNum(d.End, path+".end"); err != nil {
				return nil, err
			}
		}
		return sym.ShapeSlice{Base: base, Start: start, End: end}, nil

	case shapeConcat:
		left, err := requireShape(d.Left, path+".left")
		if err != nil {
			return nil, err
		}
		right, err := requireShape(d.Right, path+".right")
		if err != nil {
			return nil, err
		}
		return sym.ShapeConcat{Left: left, Right: right}, nil

	case shapeBroadcast:
		left, err := requireShape(d.Left, path+".left")
		if err != nil {
			return nil, err
		}
		right, err := requireShape(d.Right, path+".right")
		if err != nil {
			return nil, err
		}
		return sym.ShapeBroadcast{Left: left, Right: right}, nil

	default:
		return nil, errAt(UnknownTag, path, "unknown Shape op tag %d", d.OpType)
	}
}

// ---------------------------------------------------------------------------
// Symbol
// ---------------------------------------------------------------------------

func buildSymbol(d *symbolDoc, path string) (sym.Symbol, error) {
	kind, err := symbolKindOf(d.Type, path)
	if err != nil {
		return sym.Symbol{}, err
	}

	s := sym.Symbol{Name: d.Name, Kind: kind}

	if kind == sym.KindShape {
		if d.Rank == nil {
			return sym.Symbol{}, errAt(WrongField, path, "Shape symbol requires a rank")
		}
		rank, err := requireNum(d.Rank, path+".rank")
		if err != nil {
			return sym.Symbol{}, err
		}
		s.Rank = rank
	}

	return s, nil
}

func symbolKindOf(tag int, path string) (sym.SymbolKind, error) {
	switch tag {
	case symInt:
		return sym.KindInt, nil
	case symFloat:
		return sym.KindFloat, nil
	case symString:
		return sym.KindString, nil
	case symBool:
		return sym.KindBool, nil
	case symShape:
		return sym.KindShape, nil
	default:
		return 0, errAt(UnknownTag, path+".type", "unknown symbol kind tag %d", tag)
	}
}
