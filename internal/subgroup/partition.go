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
	"sort"

	"github.com/oleiade/lane"
	"golang.org/x/exp/maps"

	"github.com/codeplaysoftware/degenerate-subgroups/internal/diag"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/ir"
)

// reclassifyPoisoned is the poison-reclassification half of the
// Reachability Partitioner (spec.md §4.4): a poisoned kernel is
// always native, and removing it from alwaysDegenerate/kernelsToClone
// happens here, before the forward closures below are computed, so
// that poisoned kernels never seed usedByDegenerate.
func reclassifyPoisoned(alwaysDegenerate, kernelsToClone, poison map[*ir.Function]bool, poisonReason map[*ir.Function]string) []diag.Diagnostic {
	var diagnostics []diag.Diagnostic

	for _, set := range []map[*ir.Function]bool{alwaysDegenerate, kernelsToClone} {
		keys := maps.Keys(set)
		sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
		for _, k := range keys {
			if poison[k] {
				delete(set, k)
				diagnostics = append(diagnostics, diag.Poisoned(k.Name, poisonReason[k]))
			}
		}
	}

	return diagnostics
}

// closures computes usedByDegenerate and usedByNonDegenerate (spec.md
// §4.4): forward closures over direct calls, restricted to callees
// that themselves lie in usesSubgroups, seeded from the degenerate and
// native kernel roots respectively.
func closures(m *ir.Module, alwaysDegenerate, kernelsToClone, usesSubgroups map[*ir.Function]bool) (usedByDegenerate, usedByNonDegenerate map[*ir.Function]bool) {
	var degenerateRoots, nativeRoots []*ir.Function

	for _, k := range m.Kernels() {
		if alwaysDegenerate[k] || kernelsToClone[k] {
			degenerateRoots = append(degenerateRoots, k)
		}
		if !alwaysDegenerate[k] {
			// Native contributor: plain native kernels, and kernels
			// in kernelsToClone also act as degenerate via cloning
			// but still need a native-side closure (spec.md §4.4).
			nativeRoots = append(nativeRoots, k)
		}
	}

	usedByDegenerate = restrictedClosure(degenerateRoots, usesSubgroups)
	usedByNonDegenerate = restrictedClosure(nativeRoots, usesSubgroups)
	return usedByDegenerate, usedByNonDegenerate
}

// restrictedClosure is a forward BFS over the call graph, grounded on
// the teacher pack's own CFG-reachability BFS
// (mpyw-gormreuse/internal/ssa/pollution.go's CanReach), adapted here
// from basic-block successors to call-graph callees, and from
// unrestricted reachability to reachability restricted to the
// usesSubgroups set. The worklist reuses github.com/oleiade/lane for
// the same reason propagate.go does.
func restrictedClosure(roots []*ir.Function, usesSubgroups map[*ir.Function]bool) map[*ir.Function]bool {
	visited := make(map[*ir.Function]bool)
	queue := lane.NewQueue()

	for _, r := range roots {
		if !visited[r] {
			visited[r] = true
			queue.Enqueue(r)
		}
	}

	for !queue.Empty() {
		f := queue.Pop().(*ir.Function)
		for _, callee := range f.Callees() {
			if !usesSubgroups[callee] || visited[callee] {
				continue
			}
			visited[callee] = true
			queue.Enqueue(callee)
		}
	}

	// The data model requires usedByDegenerate/usedByNonDegenerate be
	// subsets of usesSubgroups (spec.md §3); roots that don't
	// themselves use sub-groups contribute nothing further and are
	// dropped here rather than left in as spurious members.
	for f := range visited {
		if !usesSubgroups[f] {
			delete(visited, f)
		}
	}

	return visited
}
