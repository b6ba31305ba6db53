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

// Package builtin implements the Builtin Information Service of
// spec.md §6: it classifies functions as sub-group barriers, sub-group
// collectives, or sub-group work-item queries, maps collectives to
// their work-group analogue, and synthesizes (with caching) the
// declarations of builtins the lowerer calls into.
package builtin

import (
	"fmt"

	"github.com/codeplaysoftware/degenerate-subgroups/internal/ir"
)

// ID is a tagged enumeration of every builtin the pass cares about.
// spec.md §9 recommends dispatching on a tag rather than demangled
// names wherever possible; ID is that tag.
type ID int

const (
	Invalid ID = iota

	SubGroupBarrier
	WorkGroupBarrier

	GetLocalSize
	GetLocalLinearId

	SubgroupBroadcast
	WorkGroupBroadcast

	GetSubGroupSize
	GetMaxSubGroupSize
	GetNumSubGroups
	GetSubGroupId
	GetSubGroupLocalId
)

func (id ID) String() string {
	switch id {
	case SubGroupBarrier:
		return "sub_group_barrier"
	case WorkGroupBarrier:
		return "work_group_barrier"
	case GetLocalSize:
		return "get_local_size"
	case GetLocalLinearId:
		return "get_local_linear_id"
	case SubgroupBroadcast:
		return "sub_group_broadcast"
	case WorkGroupBroadcast:
		return "work_group_broadcast"
	case GetSubGroupSize:
		return "get_sub_group_size"
	case GetMaxSubGroupSize:
		return "get_max_sub_group_size"
	case GetNumSubGroups:
		return "get_num_sub_groups"
	case GetSubGroupId:
		return "get_sub_group_id"
	case GetSubGroupLocalId:
		return "get_sub_group_local_id"
	default:
		return "invalid"
	}
}

// Scope is the group a collective operates over.
type Scope int

const (
	ScopeSubGroup Scope = iota
	ScopeWorkGroup
)

// GroupCollective names a collective operation (e.g. "reduce_add",
// "broadcast", "shuffle") and the scope it is registered at. Two
// GroupCollective values with the same Op but different Scope are the
// sub-group/work-group pair the lowerer rebinds between.
type GroupCollective struct {
	Op    string
	Scope Scope
}

// Builtin is what AnalyzeBuiltin returns for a known function.
type Builtin struct {
	ID       ID
	Overload OverloadInfo
}

// OverloadInfo captures the piece of a builtin's signature that
// participates in declaration caching: its return type. Real
// toolchains additionally encode argument types into a mangled name;
// this pass only ever needs the return type to pick or synthesize a
// work-group analogue.
type OverloadInfo struct {
	ReturnType ir.Type
}

type declKey struct {
	id ID
	rt string
}

// Catalogue is a concrete Builtin Info Service. It is populated by the
// code that builds a Module (the equivalent of a real toolchain's
// builtin demangler having already run) and by the lowerer itself as
// it synthesizes new declarations.
type Catalogue struct {
	idOf         map[*ir.Function]ID
	collectiveOf map[ID]GroupCollective
	analogueOf   map[GroupCollective]ID
	decls        map[declKey]*ir.Function
	nextID       ID
}

// firstDynamicID is the base above which per-collective IDs are
// allocated (the first one handed out is firstDynamicID+1), well clear
// of the fixed enumerants above.
const firstDynamicID ID = 1000

// New returns an empty catalogue.
func New() *Catalogue {
	return &Catalogue{
		idOf:         make(map[*ir.Function]ID),
		collectiveOf: make(map[ID]GroupCollective),
		analogueOf:   make(map[GroupCollective]ID),
		decls:        make(map[declKey]*ir.Function),
		nextID:       firstDynamicID,
	}
}

// DeclareCollectivePair allocates and registers a fresh sub-group ID
// and its work-group analogue for the named collective operation
// (e.g. "reduce_add", "scan_inclusive_add"). Real builtin catalogues
// carry an open-ended set of collective operations rather than a
// fixed enum; this is how this Catalogue models that without needing
// a case arm per operation name.
func (c *Catalogue) DeclareCollectivePair(op string) (subID, workGroupID ID) {
	c.nextID++
	workGroupID = c.nextID
	c.nextID++
	subID = c.nextID
	c.collectiveOf[workGroupID] = GroupCollective{Op: op, Scope: ScopeWorkGroup}
	c.RegisterCollective(subID, GroupCollective{Op: op, Scope: ScopeSubGroup}, workGroupID)
	return subID, workGroupID
}

// DeclarePoisonedCollective allocates and registers a sub-group-scoped
// collective with no work-group analogue (e.g. "shuffle"): any
// function calling it becomes poisoned (spec.md §4.2).
func (c *Catalogue) DeclarePoisonedCollective(op string) ID {
	c.nextID++
	subID := c.nextID
	c.RegisterCollective(subID, GroupCollective{Op: op, Scope: ScopeSubGroup}, Invalid)
	return subID
}

// Register associates f with the builtin identity id, as if f were
// the demangled result of analyzing a builtin call's callee name.
func (c *Catalogue) Register(f *ir.Function, id ID) {
	c.idOf[f] = id
}

// RegisterCollective records that id denotes the named collective
// operation at the given scope, and that its analogue at the other
// named (op, scope) pair is reachable via GetMuxGroupCollective. Pass
// an empty analogueID for collectives with no work-group equivalent
// (e.g. shuffle): GetMuxGroupCollective then returns Invalid, which is
// exactly the poison trigger of spec.md §4.2.
func (c *Catalogue) RegisterCollective(id ID, gc GroupCollective, analogueID ID) {
	c.collectiveOf[id] = gc
	if analogueID != Invalid {
		workGroupGC := GroupCollective{Op: gc.Op, Scope: ScopeWorkGroup}
		c.analogueOf[workGroupGC] = analogueID
	}
}

// AnalyzeBuiltin returns the builtin identity of f, if any (spec.md
// §6's analyzeBuiltin).
func (c *Catalogue) AnalyzeBuiltin(f *ir.Function) (Builtin, bool) {
	id, ok := c.idOf[f]
	if !ok {
		return Builtin{}, false
	}
	return Builtin{ID: id, Overload: OverloadInfo{ReturnType: f.ResultType}}, true
}

// IsMuxGroupCollective reports whether id denotes a registered group
// collective, and if so, which one (spec.md §6's isMuxGroupCollective).
func (c *Catalogue) IsMuxGroupCollective(id ID) (GroupCollective, bool) {
	gc, ok := c.collectiveOf[id]
	return gc, ok
}

// GetMuxGroupCollective rebinds gc's scope to work-group and returns
// the ID registered for that (op, work-group) pair, or Invalid if no
// work-group analogue was ever registered (spec.md §6's
// getMuxGroupCollective; this is the poison trigger for constructs
// like shuffle that have no work-group equivalent).
func (c *Catalogue) GetMuxGroupCollective(gc GroupCollective) ID {
	workGroupGC := GroupCollective{Op: gc.Op, Scope: ScopeWorkGroup}
	if id, ok := c.analogueOf[workGroupGC]; ok {
		return id
	}
	return Invalid
}

// GetOrDeclareMuxBuiltin returns the declaration this catalogue already
// synthesized for (id, overload), or synthesizes, adds to m and caches a
// new one; functions already in m that were only Registered are not
// reused (spec.md §6's getOrDeclareMuxBuiltin). The dedup-by-key
// cache mirrors the teacher pack's TypeRegistry.GetOrCreate pattern
// (gogpu-naga's ir/registry.go), adapted from deduplicating structural
// types to deduplicating synthesized builtin declarations.
func (c *Catalogue) GetOrDeclareMuxBuiltin(id ID, m *ir.Module, overload OverloadInfo) *ir.Function {
	key := declKey{id: id, rt: fmt.Sprint(overload.ReturnType)}
	if f, ok := c.decls[key]; ok {
		return f
	}
	f := &ir.Function{
		Name:       id.String(),
		ResultType: overload.ReturnType,
		CC:         ir.CCSPIR,
	}
	m.AddFunction(f)
	c.idOf[f] = id
	c.decls[key] = f
	return f
}
