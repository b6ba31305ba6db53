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
	"github.com/codeplaysoftware/degenerate-subgroups/internal/builtin"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/ir"
)

// builtinKind tags the shape of lowering a sub-group call needs
// (spec.md §9's "tagged enumeration... dispatch on the tag").
type builtinKind int

const (
	kindNone builtinKind = iota
	kindBarrierOrCollective
	kindBroadcast
	kindWorkItemQuery
)

// classifyCall is the Sub-group Call Classifier of spec.md §4.2. It
// reports whether c calls a sub-group function (barrier, collective,
// or work-item query), and, if it calls a collective, whether that
// collective is poisoned (no registered work-group analogue).
func classifyCall(c *ir.CallInst, bi *builtin.Catalogue) (kind builtinKind, b builtin.Builtin, poisoned bool) {
	if c.Callee == nil {
		// Every call site is assumed to name its callee directly
		// (spec.md §1's non-goal on indirect/virtual calls); a nil
		// Callee here means the IR handed to the pass violated that
		// precondition.
		panicInternal("virtual calls are not supported")
	}

	b, ok := bi.AnalyzeBuiltin(c.Callee)
	if !ok {
		return kindNone, builtin.Builtin{}, false
	}

	switch b.ID {
	case builtin.SubGroupBarrier:
		return kindBarrierOrCollective, b, false

	case builtin.GetSubGroupSize, builtin.GetMaxSubGroupSize, builtin.GetNumSubGroups,
		builtin.GetSubGroupId, builtin.GetSubGroupLocalId:
		return kindWorkItemQuery, b, false

	case builtin.SubgroupBroadcast:
		return kindBroadcast, b, false
	}

	if gc, ok := bi.IsMuxGroupCollective(b.ID); ok && gc.Scope == builtin.ScopeSubGroup {
		analogue := bi.GetMuxGroupCollective(gc)
		return kindBarrierOrCollective, b, analogue == builtin.Invalid
	}

	return kindNone, builtin.Builtin{}, false
}
