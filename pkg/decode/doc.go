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

// Package decode reads the front-end's self-describing serialization (spec
// ยง6) into the strongly-typed pkg/sym IR, validating tag, arity and sort
// invariants as it goes (fail fast: downstream components may then assume
// IR well-formedness).  Decode is a pure function of its input; it performs
// no SMT calls, following the ยง4.2 "pure function" contract.
package decode

import "encoding/json"

// Tag values mirror spec ยง3/ยง6 exactly; they are the wire encoding the
// front-end emits and must not be renumbered.
const (
	sortShape  = 0
	sortNum    = 1
	sortBool   = 2
	sortString = 3
)

const (
	symInt    = 0
	symFloat  = 1
	symString = 2
	symBool   = 3
	symShape  = 4
)

const (
	numConst  = 0
	numSymbol = 1
	numBop    = 2
	numIndex  = 3
	numMax    = 4
	numNumel  = 5
	numUop    = 6
	numMin    = 7
)

const (
	bopAdd      = 0
	bopSub      = 1
	bopMul      = 2
	bopTrueDiv  = 3
	bopFloorDiv = 4
	bopMod      = 5
)

const (
	uopNeg   = 0
	uopFloor = 1
	uopCeil  = 2
	uopAbs   = 3
)

const (
	boolConst  = 0
	boolSymbol = 1
	boolEqual  = 2
	boolNeq    = 3
	boolLt     = 4
	boolLe     = 5
	boolNot    = 6
	boolAnd    = 7
	boolOr     = 8
)

const (
	shapeConst     = 0
	shapeSymbol    = 1
	shapeSet       = 2
	shapeSlice     = 3
	shapeConcat    = 4
	shapeBroadcast = 5
)

const (
	ctrExpBool        = 0
	ctrEqual          = 1
	ctrNotEqual       = 2
	ctrAnd            = 3
	ctrOr             = 4
	ctrNot            = 5
	ctrLessThan       = 6
	ctrLessThanOrEqual = 7
	ctrForall         = 8
	ctrBroadcastable  = 9
	ctrFail           = 10
)

// document is the top-level wire shape: a list of per-path constraint sets.
type document []pathDoc

type pathDoc struct {
	CtrPool []ctrDoc `json:"ctrPool"`
	HardCtr []uint   `json:"hardCtr"`
	SoftCtr []uint   `json:"softCtr"`
	PathCtr []uint   `json:"pathCtr"`
}

type sourceDoc struct {
	Start  uint `json:"start"`
	Length uint `json:"length"`
}

type symbolDoc struct {
	Name string   `json:"name"`
	Type int      `json:"type"`
	Rank *exprDoc `json:"rank,omitempty"`
}

// exprDoc is the union of Num/Bool/Shape/String expression documents.  Not
// every field is meaningful for every (ExpType, OpType) pair; buildX
// functions read only the fields their case needs.
type exprDoc struct {
	ExpType int             `json:"expType"`
	OpType  int             `json:"opType"`
	Value   json.RawMessage `json:"value,omitempty"`
	Symbol  *symbolDoc      `json:"symbol,omitempty"`

	Left  *exprDoc `json:"left,omitempty"`
	Right *exprDoc `json:"right,omitempty"`

	BopType int `json:"bopType,omitempty"`
	UopType int `json:"uopType,omitempty"`

	BaseValue *exprDoc `json:"baseValue,omitempty"`
	BaseShape *exprDoc `json:"baseShape,omitempty"`
	BaseBool  *exprDoc `json:"baseBool,omitempty"`

	Index  *exprDoc  `json:"index,omitempty"`
	Values []exprDoc `json:"values,omitempty"`
	Dims   []exprDoc `json:"dims,omitempty"`
	Rank   *exprDoc  `json:"rank,omitempty"`

	Axis *exprDoc `json:"axis,omitempty"`
	Dim  *exprDoc `json:"dim,omitempty"`

	Start *exprDoc `json:"start,omitempty"`
	End   *exprDoc `json:"end,omitempty"`
}

// ctrDoc is a top-level constraint document: a ConstraintType tag, its
// type-specific fields, and optional provenance.
//
// Left/Right/Constraint are raw JSON because their shape is context
// dependent: for Eq/Ne/LessThan/LessThanOrEqual they hold an exprDoc
// (Num or Shape), while for And/Or/Not/Forall they hold a nested ctrDoc
// (spec ยง3 Ctr variant table: And/Or/Not all recurse on Ctr, not Bool).
type ctrDoc struct {
	Type int `json:"type"`

	Exp        *exprDoc        `json:"exp,omitempty"`
	Left       json.RawMessage `json:"left,omitempty"`
	Right      json.RawMessage `json:"right,omitempty"`
	Constraint json.RawMessage `json:"constraint,omitempty"`
	Symbol     *symbolDoc      `json:"symbol,omitempty"`
	Range      []exprDoc       `json:"range,omitempty"`

	Source  *sourceDoc `json:"source,omitempty"`
	Message string     `json:"message,omitempty"`
}
