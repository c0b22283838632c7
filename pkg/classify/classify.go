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

// Package classify runs the three staged SMT queries of spec ยง4.4 against
// each decoded path and produces a pkg/report.Report.
package classify

import (
	"context"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/shapecheck/backend/internal/telemetry"
	"github.com/shapecheck/backend/pkg/report"
	"github.com/shapecheck/backend/pkg/smt"
	"github.com/shapecheck/backend/pkg/smtenc"
	"github.com/shapecheck/backend/pkg/sym"
)

// ClassifyAll classifies every path in sets, one path per
// sym.ConstraintSet, in the order given. Paths are embarrassingly parallel
// (spec ยง5), so work is fanned out across a bounded pool of goroutines
// mirroring pkg/ir/builder.ParallelTraceValidation's channel-collection
// idiom, but into a pre-sized slice so output order matches input order
// regardless of completion order.
func ClassifyAll(ctx context.Context, sets []sym.ConstraintSet, timeout time.Duration) []report.Report {
	reports := make([]report.Report, len(sets))

	type job struct {
		index int
		set   sym.ConstraintSet
	}

	jobs := make(chan job, len(sets))
	for i, s := range sets {
		jobs <- job{i, s}
	}
	close(jobs)

	workers := runtime.GOMAXPROCS(0)
	if workers > len(sets) {
		workers = len(sets)
	}
	if workers < 1 {
		workers = 1
	}

	done := make(chan struct{}, workers)
	for w := 0; w < workers; w++ {
		go func() {
			for j := range jobs {
				reports[j.index] = classifyOne(ctx, j.set, timeout)
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}

	return reports
}

// classifyOne runs the three staged queries against one fresh smt.Engine
// (spec ยง5: "SMT engine context is per-path"), bounded by a single
// timeout budget shared across all three stages.
func classifyOne(parent context.Context, set sym.ConstraintSet, timeout time.Duration) report.Report {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	eng := smt.NewEngine()
	enc := smtenc.NewEncoder(eng)

	hardAndPath := append(append([]sym.Ctr{}, set.HardCtrs()...), set.PathCtrs()...)
	hardIdx := append(append([]sym.CtrIndex{}, set.Hard...), set.Path...)
	soft := set.SoftCtrs()
	softIdx := set.Soft

	overall := telemetry.NewStageTimer()
	finish := func(r report.Report) report.Report {
		r.Duration = overall.Elapsed()
		return r
	}

	reachable, core, rep, ok := checkReachability(ctx, eng, enc, hardAndPath, hardIdx)
	if !ok {
		return finish(rep)
	}
	if !reachable {
		log.Debugf("classify: path unreachable, unsat core pool indices %v", core)
		return finish(report.Report{Verdict: report.Unreachable, UnreachableCore: core})
	}

	valid, rep, ok := checkValidity(ctx, eng, enc, hardAndPath, soft)
	if !ok {
		return finish(rep)
	}
	if valid {
		return finish(report.Report{Verdict: report.Valid})
	}

	return finish(localizeConflict(ctx, eng, enc, hardAndPath, soft, softIdx, set))
}

// checkReachability is stage 1: is Hard ∧ Path satisfiable at all (spec
// ยง4.4 stage 1)? Each constraint is asserted under a tracking literal keyed
// by its pool index (spec ยง9: "mandates the unsat-core form so that
// Unreachable reports carry actionable indices"), so that on Unsat the
// returned core names exactly the conflicting subset. ok is false when the
// query itself could not be answered (encode error or timeout), in which
// case rep is the Undecidable report to return directly.
func checkReachability(ctx context.Context, eng *smt.Engine, enc *smtenc.Encoder, hardAndPath []sym.Ctr, poolIdx []sym.CtrIndex) (bool, []sym.CtrIndex, report.Report, bool) {
	timer := telemetry.NewStageTimer()
	defer timer.Log("reachability query")

	solver := eng.NewSolver()
	for i, c := range hardAndPath {
		f, err := enc.EncodeCtr(c)
		if err != nil {
			log.Warnf("classify: reachability encode failed at %d: %v", i, err)
			return false, nil, undecidable(err, false), false
		}
		solver.AssertTracked(f, uint(poolIdx[i]))
	}

	switch solver.Check(ctx) {
	case smt.Sat:
		return true, nil, report.Report{}, true
	case smt.Unsat:
		core := solver.UnsatCorePoolIndices()
		out := make([]sym.CtrIndex, len(core))
		for i, idx := range core {
			out[i] = sym.CtrIndex(idx)
		}
		return false, out, report.Report{}, true
	default:
		return false, nil, undecidable(nil, ctx.Err() != nil), false
	}
}

// checkValidity is stage 2: does Hard ∧ Path imply every soft constraint
// (spec ยง4.4 stage 2)? Framed as unsat(Hard ∧ Path ∧ ¬(AND soft)), the
// "validity shortcut" design note in spec ยง9 -- answering this with one
// query avoids the localized scan whenever nothing is actually violable.
func checkValidity(ctx context.Context, eng *smt.Engine, enc *smtenc.Encoder, hardAndPath, soft []sym.Ctr) (bool, report.Report, bool) {
	timer := telemetry.NewStageTimer()
	defer timer.Log("validity query")

	solver := eng.NewSolver()
	for i, c := range hardAndPath {
		f, err := enc.EncodeCtr(c)
		if err != nil {
			log.Warnf("classify: validity encode failed at %d: %v", i, err)
			return false, undecidable(err, false), false
		}
		solver.Assert(f)
	}

	if len(soft) == 0 {
		return true, report.Report{}, true
	}

	conj, err := enc.EncodeCtr(soft[0])
	if err != nil {
		return false, undecidable(err, false), false
	}
	for _, c := range soft[1:] {
		f, err := enc.EncodeCtr(c)
		if err != nil {
			return false, undecidable(err, false), false
		}
		conj = conj.And(f)
	}
	solver.Assert(conj.Not())

	switch solver.Check(ctx) {
	case smt.Unsat:
		return true, report.Report{}, true
	case smt.Sat:
		return false, report.Report{}, true
	default:
		return false, undecidable(nil, ctx.Err() != nil), false
	}
}

// localizeConflict is stage 3: scan soft constraints in recorded order,
// reporting the first one that can fail given Hard ∧ Path holds (spec
// ยง4.4 stage 3 "first offender"). Uses incremental push/pop so the shared
// Hard ∧ Path assertions are pushed exactly once.
func localizeConflict(ctx context.Context, eng *smt.Engine, enc *smtenc.Encoder, hardAndPath, soft []sym.Ctr, softIdx []sym.CtrIndex, set sym.ConstraintSet) report.Report {
	timer := telemetry.NewStageTimer()
	defer timer.Log("localized scan")

	solver := eng.NewSolver()
	for i, c := range hardAndPath {
		f, err := enc.EncodeCtr(c)
		if err != nil {
			log.Warnf("classify: localization encode failed at %d: %v", i, err)
			return undecidable(err, false)
		}
		solver.Assert(f)
	}

	for i, c := range soft {
		f, err := enc.EncodeCtr(c)
		if err != nil {
			return undecidable(err, false)
		}

		solver.Push()
		solver.Assert(f.Not())
		result := solver.Check(ctx)
		solver.Pop()

		switch result {
		case smt.Sat:
			idx := softIdx[i]
			src, msg := c.Provenance()
			return report.Report{
				Verdict:  report.Invalid,
				Conflict: &idx,
				Source:   src,
				Message:  msg,
			}
		case smt.Unsat:
			continue
		default:
			rep := undecidable(nil, ctx.Err() != nil)
			rep.Source, rep.Message = c.Provenance()
			return rep
		}
	}

	// Every soft constraint individually held under negation-unsat: the
	// earlier validity shortcut said otherwise, which can only happen if
	// soft constraints interact (their conjunction is violable even
	// though no single one is, in isolation, violable alongside
	// Hard ∧ Path). Report the last constraint in soft-list order as a
	// conservative fallback rather than silently claiming Valid.
	if len(set.Soft) > 0 {
		idx := set.Soft[len(set.Soft)-1]
		src, msg := set.Pool[idx].Provenance()
		return report.Report{Verdict: report.Invalid, Conflict: &idx, Source: src, Message: msg}
	}
	return report.Report{Verdict: report.Valid}
}

func undecidable(err error, timeout bool) report.Report {
	return report.Report{Verdict: report.Undecidable, Err: err, Timeout: timeout}
}
