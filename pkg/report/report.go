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

// Package report holds the classifier's per-path outcome and the textual
// rendering of a batch of them.
package report

import (
	"time"

	"github.com/shapecheck/backend/pkg/sym"
)

// Verdict classifies one explored path (spec ยง4.4).
type Verdict uint8

const (
	// Unreachable means the path's own conditions are already
	// unsatisfiable: it can never execute, so its assertions are moot.
	Unreachable Verdict = iota
	// Valid means the path is reachable and every hard/soft constraint
	// holds on it.
	Valid
	// Invalid means the path is reachable but some constraint can fail;
	// Conflict names the first offending pool index.
	Invalid
	// Undecidable means the solver could not settle the question within
	// budget (timeout) or raised an engine-level error.
	Undecidable
)

func (v Verdict) String() string {
	switch v {
	case Unreachable:
		return "Unreachable"
	case Valid:
		return "Valid"
	case Invalid:
		return "Invalid"
	case Undecidable:
		return "Undecidable"
	default:
		return "?"
	}
}

// Report is the classifier's verdict for one path, plus enough to localize
// and explain an Invalid or Undecidable outcome (spec ยง4.4, ยง6).
type Report struct {
	Verdict Verdict

	// Conflict is the pool index of the first constraint the localized
	// soft-constraint scan found violable, set only when Verdict ==
	// Invalid (spec ยง4.4 stage 3).
	Conflict *sym.CtrIndex

	// Source and Message carry the conflicting (or undecidable) Ctr's
	// provenance, when it has any.
	Source  *sym.Source
	Message string

	// Timeout records whether Undecidable was reached via the per-path
	// deadline rather than a genuine engine error.
	Timeout bool

	// Err carries the underlying encode/solver error for an Undecidable
	// verdict that was not a timeout.
	Err error

	// UnreachableCore holds the pool indices of the unsat core from the
	// stage-1 reachability query, set only when Verdict == Unreachable
	// (spec ยง4.4 stage 1: "the core indices point to the conflicting
	// subset, reported for diagnostics").
	UnreachableCore []sym.CtrIndex

	// Duration is the wall-clock time spent classifying this path, across
	// all three staged queries.
	Duration time.Duration
}

// Summary aggregates a batch of Reports by verdict (spec ยง6 "closing
// summary").
type Summary struct {
	Counts map[Verdict]int
	Total  int
}

// Summarize counts verdicts across a batch of per-path reports, in the
// order the classifier returned them.
func Summarize(reports []Report) Summary {
	s := Summary{Counts: make(map[Verdict]int, 4)}
	for _, r := range reports {
		s.Counts[r.Verdict]++
		s.Total++
	}
	return s
}
