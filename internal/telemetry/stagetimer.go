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

// Package telemetry provides lightweight, logrus-backed instrumentation for
// the classifier's staged queries.
package telemetry

import (
	"fmt"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// StageTimer snapshots wall-clock and allocation state at the start of one
// solver stage (reachability / validity / localized, spec ยง4.4) and logs
// the delta when the stage completes.
type StageTimer struct {
	startTime time.Time
	startMem  uint64
	startGc   uint32
}

// NewStageTimer creates a new snapshot of the current amount of memory
// allocated.
func NewStageTimer() *StageTimer {
	var m runtime.MemStats

	startTime := time.Now()

	runtime.ReadMemStats(&m)

	return &StageTimer{startTime, m.TotalAlloc, m.NumGC}
}

// Log logs the difference between the state now and as it was when the
// StageTimer was created, at Debug level.
func (s *StageTimer) Log(prefix string) {
	log.Debugf("%s took %s", prefix, s.String())
}

// Elapsed returns the wall-clock duration since the timer was created, for
// callers that need the raw value rather than a logged summary (e.g.
// attaching it to a pkg/report.Report).
func (s *StageTimer) Elapsed() time.Duration {
	return time.Since(s.startTime)
}

// String provides a string representation of the usage thus far.
func (s *StageTimer) String() string {
	var m runtime.MemStats

	runtime.ReadMemStats(&m)
	allocMB := (m.TotalAlloc - s.startMem) / 1024 / 1024
	gcs := m.NumGC - s.startGc
	exectime := time.Since(s.startTime).Seconds()

	return fmt.Sprintf("%0.3fs using %v Mb (%v GC events)", exectime, allocMB, gcs)
}
