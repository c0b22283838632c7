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

// Package smtenc translates pkg/sym IR into pkg/smt terms against the
// theory of linear integer and real arithmetic plus Array Int Int (spec
// ยง4.3). Translation is a pure function of one sym.ConstraintSet given a
// pkg/smt.Engine: no IR is mutated and no solver calls are made here.
package smtenc

import "github.com/shapecheck/backend/pkg/sym"

// IsRealValued decides whether a Num expression must be encoded as an SMT
// Real rather than an Int (spec ยง4.3.2: real-ness is structural, a literal
// float, a symbol declared Float or a TrueDiv anywhere in the expression
// forces the whole expression real). encodeForall and the Shape.Set case
// call it ahead of encoding to reject a real-valued operand before any term
// is built; elsewhere the encoder tracks int/real on each encoded value.
func IsRealValued(n sym.Num) bool {
	switch t := n.(type) {
	case sym.NumConst:
		return t.IsFloat
	case sym.NumSymRef:
		return t.Sym.Kind == sym.KindFloat
	case sym.NumBinOp:
		return t.Op == sym.TrueDiv || IsRealValued(t.Left) || IsRealValued(t.Right)
	case sym.NumUnOp:
		return IsRealValued(t.Arg)
	case sym.NumMin:
		return anyReal(t.Args)
	case sym.NumMax:
		return anyReal(t.Args)
	case sym.NumIndex:
		// Shape dims are always integral (spec ยง4.3.3).
		return false
	case sym.NumNumel:
		return false
	default:
		panic("smtenc: unreachable Num variant in IsRealValued")
	}
}

func anyReal(ns []sym.Num) bool {
	for _, n := range ns {
		if IsRealValued(n) {
			return true
		}
	}
	return false
}
