/*
 * Copyright 2022 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package subgroup

import (
	"github.com/oleiade/lane"

	"github.com/codeplaysoftware/degenerate-subgroups/internal/builtin"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/ir"
)

// propagateUsage is the Usage & Poison Propagator of spec.md §4.3,
// implemented as a single worklist carrying both flags per entry
// (spec.md §9's explicit recommendation), grounded on the teacher's
// own use of a lane.Queue-driven worklist for caller-edge propagation
// (internal/atm/ssa/pass_branchelim.go's BranchElim.dfs, there BFS'ing
// unreachable-edge removal over a queue of *_Edge* values).
//
// poisonReason records, for every seed function that directly calls a
// poisoned collective, the name of that collective's builtin — used
// only to make diagnostics concrete (spec.md §12); it is not itself
// propagated.
func propagateUsage(m *ir.Module, cg *ir.CallGraph, bi *builtin.Catalogue) (usesSubgroups, poison map[*ir.Function]bool, poisonReason map[*ir.Function]string) {
	usesSubgroups = make(map[*ir.Function]bool)
	poison = make(map[*ir.Function]bool)
	poisonReason = make(map[*ir.Function]string)

	queue := lane.NewQueue()

	for _, f := range m.Functions {
		isUser := false
		for _, c := range f.Calls() {
			kind, b, poisoned := classifyCall(c, bi)
			if kind == kindNone {
				continue
			}
			isUser = true
			if poisoned {
				poison[f] = true
				poisonReason[f] = poisonedBuiltinName(b, bi)
			}
		}
		if isUser {
			usesSubgroups[f] = true
			queue.Enqueue(f)
		}
	}

	for !queue.Empty() {
		f := queue.Pop().(*ir.Function)
		isPoisoned := poison[f]

		for _, p := range cg.Callers(f) {
			changed := false

			if !usesSubgroups[p] {
				usesSubgroups[p] = true
				changed = true
			}
			// Poison re-fires on every visited caller edge, not only
			// when the caller is newly added to usesSubgroups: a
			// caller already discovered via a non-poisoned callee can
			// still be poisoned later via a different, poisoned one.
			if isPoisoned && !poison[p] {
				poison[p] = true
				changed = true
			}

			if changed {
				queue.Enqueue(p)
			}
		}
	}

	return usesSubgroups, poison, poisonReason
}

// poisonedBuiltinName recovers the human-readable name a diagnostic
// should name for a poisoned builtin: the named enumerant's own name
// for the fixed set, or the collective operation's name for a
// dynamically declared collective (spec.md §12's "mentions the kernel
// name"; the collective's own name is what makes that mention
// concrete).
func poisonedBuiltinName(b builtin.Builtin, bi *builtin.Catalogue) string {
	if gc, ok := bi.IsMuxGroupCollective(b.ID); ok {
		return gc.Op
	}
	return b.ID.String()
}
