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

import "fmt"

// CtrIndex is a 0-based index into a ConstraintSet's pool.
type CtrIndex = uint

// ConstraintSet bundles a flat pool of constraints with three index lists
// into that pool, for a single explored execution path.  Once constructed
// by the decoder it is immutable (spec ยง3 "Lifecycle"); neither list
// ordering nor pool ordering may be permuted downstream since order is
// semantically significant for localized failure reporting.
type ConstraintSet struct {
	Pool []Ctr
	Hard []CtrIndex
	Path []CtrIndex
	Soft []CtrIndex
}

// Validate checks the structural invariants spec ยง3 requires of a decoded
// constraint set that are not already enforced by construction (i.e.
// everything except per-node sort agreement, which the decoder itself
// must enforce while building each Ctr).
func (cs ConstraintSet) Validate() error {
	n := uint(len(cs.Pool))

	check := func(label string, idxs []CtrIndex) error {
		seen := make(map[CtrIndex]bool, len(idxs))
		for _, i := range idxs {
			if i >= n {
				return fmt.Errorf("%s: index %d out of range [0,%d)", label, i, n)
			}
			if seen[i] {
				return fmt.Errorf("%s: duplicate index %d", label, i)
			}
			seen[i] = true
		}
		return nil
	}

	if err := check("hard", cs.Hard); err != nil {
		return err
	}
	if err := check("path", cs.Path); err != nil {
		return err
	}
	if err := check("soft", cs.Soft); err != nil {
		return err
	}

	return nil
}

// HardCtrs resolves the Hard index list against the pool, in list order.
func (cs ConstraintSet) HardCtrs() []Ctr { return cs.resolve(cs.Hard) }

// PathCtrs resolves the Path index list against the pool, in list order.
func (cs ConstraintSet) PathCtrs() []Ctr { return cs.resolve(cs.Path) }

// SoftCtrs resolves the Soft index list against the pool, in list order.
// This order is a design decision, not an accident (spec ยง4.4): it fixes
// which user-visible constraint the classifier reports first.
func (cs ConstraintSet) SoftCtrs() []Ctr { return cs.resolve(cs.Soft) }

func (cs ConstraintSet) resolve(idxs []CtrIndex) []Ctr {
	out := make([]Ctr, len(idxs))
	for i, idx := range idxs {
		out[i] = cs.Pool[idx]
	}
	return out
}
