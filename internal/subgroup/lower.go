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
	"github.com/codeplaysoftware/degenerate-subgroups/internal/platform"
)

// lowerFunction is the per-function body of the Builtin Lowerer
// (spec.md §4.6). It follows the "enumerate, then replace, then
// erase" discipline of §4.6.3: pendingErase is built up across every
// call site this function contains before anything is erased from the
// block, the same collect-first-mutate-second shape the teacher uses
// for dead-code elimination (internal/atm/ssa/pass_deadcode.go's
// mark/find/replace/compact phases).
func lowerFunction(m *ir.Module, f *ir.Function, bi *builtin.Catalogue, plat platform.Platform) {
	type site struct {
		call *ir.CallInst
		kind builtinKind
		b    builtin.Builtin
	}

	var sites []site
	for _, c := range f.Calls() {
		kind, b, poisoned := classifyCall(c, bi)
		if kind == kindNone {
			continue
		}
		if poisoned {
			// A poisoned call reaching the lowerer means a degenerate-side
			// function escaped poison reclassification; that is a bug in
			// the earlier stages, not a condition this stage can recover
			// from.
			panicInternal("Missing work-group builtin")
		}
		sites = append(sites, site{call: c, kind: kind, b: b})
	}

	var pendingErase []ir.Instruction

	for _, s := range sites {
		bb := s.call.Parent()
		var replacement ir.Value

		switch s.kind {
		case kindBarrierOrCollective:
			replacement = lowerBarrierOrCollective(m, bb, s.call, s.b, bi)
		case kindBroadcast:
			replacement = lowerBroadcast(m, bb, s.call, bi, plat)
		case kindWorkItemQuery:
			replacement = lowerWorkItemQuery(m, bb, s.call, s.b, bi)
		}

		ir.ReplaceAllUsesWith(f, s.call, replacement)
		pendingErase = append(pendingErase, s.call)
	}

	for _, in := range pendingErase {
		in.Parent().Erase(in)
	}
}

// lowerBarrierOrCollective handles spec.md §4.6.1's non-broadcast case:
// the sub-group barrier, and every sub-group collective with a
// registered work-group analogue.
func lowerBarrierOrCollective(m *ir.Module, bb *ir.BasicBlock, c *ir.CallInst, b builtin.Builtin, bi *builtin.Catalogue) ir.Value {
	var analogueID builtin.ID

	if b.ID == builtin.SubGroupBarrier {
		analogueID = builtin.WorkGroupBarrier
	} else {
		gc, ok := bi.IsMuxGroupCollective(b.ID)
		if !ok {
			panicInternal("Missing work-group builtin")
		}
		analogueID = bi.GetMuxGroupCollective(gc)
		if analogueID == builtin.Invalid {
			panicInternal("Missing work-group builtin")
		}
	}

	wg := bi.GetOrDeclareMuxBuiltin(analogueID, m, builtin.OverloadInfo{ReturnType: c.Callee.ResultType})

	args := make([]ir.Value, 0, len(c.Args)+1)
	if b.ID != builtin.SubGroupBarrier {
		args = append(args, ir.ConstI32(0))
	}
	args = append(args, c.Args...)

	repl := &ir.CallInst{Callee: wg, Args: args, CC: c.CC}
	bb.InsertBefore(c, repl)
	return repl
}

// lowerBroadcast implements spec.md §4.6.1's broadcast index-basis
// transform: the sub-group's linear element index is converted into
// the (x, y, z) work-group coordinate the work-group broadcast expects.
func lowerBroadcast(m *ir.Module, bb *ir.BasicBlock, c *ir.CallInst, bi *builtin.Catalogue, plat platform.Platform) ir.Value {
	value, idx := c.Args[0], c.Args[1]
	idxType := idx.Type()

	glSize := bi.GetOrDeclareMuxBuiltin(builtin.GetLocalSize, m, builtin.OverloadInfo{ReturnType: ir.U32})

	lxCall := &ir.CallInst{Callee: glSize, Args: []ir.Value{ir.ConstU32(0)}, CC: ir.CCSPIR}
	bb.InsertBefore(c, lxCall)
	lyCall := &ir.CallInst{Callee: glSize, Args: []ir.Value{ir.ConstU32(1)}, CC: ir.CCSPIR}
	bb.InsertBefore(c, lyCall)

	// get_local_size always returns u32; widen/narrow to elementIndex's
	// own type before mixing them into the intermediate arithmetic below.
	lx := &ir.Cast{Val: lxCall, ResultTy: idxType}
	bb.InsertBefore(c, lx)
	ly := &ir.Cast{Val: lyCall, ResultTy: idxType}
	bb.InsertBefore(c, ly)

	emit := func(op ir.BinOpKind, x, y ir.Value) ir.Value {
		bo := &ir.BinOp{Op: op, X: x, Y: y, ResultTy: idxType}
		bb.InsertBefore(c, bo)
		return bo
	}

	// x = idx mod lx
	x := emit(ir.OpURem, idx, lx)
	// y = ((idx - x) / lx) mod ly
	idxMinusX := emit(ir.OpUSub, idx, x)
	yDiv := emit(ir.OpUDiv, idxMinusX, lx)
	y := emit(ir.OpURem, yDiv, ly)
	// z = (idx - x - y*lx) / (lx*ly)
	yTimesLx := emit(ir.OpUMul, y, lx)
	num := emit(ir.OpUSub, emit(ir.OpUSub, idx, x), yTimesLx)
	denom := emit(ir.OpUMul, lx, ly)
	z := emit(ir.OpUDiv, num, denom)

	sizeTy := plat.SizeType()

	xCast := &ir.Cast{Val: x, ResultTy: sizeTy}
	bb.InsertBefore(c, xCast)
	yCast := &ir.Cast{Val: y, ResultTy: sizeTy}
	bb.InsertBefore(c, yCast)
	zCast := &ir.Cast{Val: z, ResultTy: sizeTy}
	bb.InsertBefore(c, zCast)

	wg := bi.GetOrDeclareMuxBuiltin(builtin.WorkGroupBroadcast, m, builtin.OverloadInfo{ReturnType: c.Callee.ResultType})
	repl := &ir.CallInst{
		Callee: wg,
		Args:   []ir.Value{ir.ConstI32(0), value, xCast, yCast, zCast},
		CC:     c.CC,
	}
	bb.InsertBefore(c, repl)
	return repl
}

// lowerWorkItemQuery implements the substitution table of spec.md
// §4.6.2. Dispatch is on the builtin's tag, per spec.md §9's preference
// for a tagged enumeration over name-substring matching once the ID is
// already known; name matching only decides formula selection when an
// ID can denote more than one demangled variant, which none of the
// fixed work-item query IDs here do.
func lowerWorkItemQuery(m *ir.Module, bb *ir.BasicBlock, c *ir.CallInst, b builtin.Builtin, bi *builtin.Catalogue) ir.Value {
	rt := c.Callee.ResultType

	switch b.ID {
	case builtin.GetSubGroupSize, builtin.GetMaxSubGroupSize:
		glSize := bi.GetOrDeclareMuxBuiltin(builtin.GetLocalSize, m, builtin.OverloadInfo{ReturnType: ir.U32})
		dims := make([]ir.Value, 3)
		for d := 0; d < 3; d++ {
			call := &ir.CallInst{Callee: glSize, Args: []ir.Value{ir.ConstU32(int64(d))}, CC: ir.CCSPIR}
			bb.InsertBefore(c, call)
			dims[d] = call
		}
		mul1 := &ir.BinOp{Op: ir.OpUMul, X: dims[0], Y: dims[1], ResultTy: ir.U32}
		bb.InsertBefore(c, mul1)
		mul2 := &ir.BinOp{Op: ir.OpUMul, X: mul1, Y: dims[2], ResultTy: ir.U32}
		bb.InsertBefore(c, mul2)
		cast := &ir.Cast{Val: mul2, ResultTy: rt}
		bb.InsertBefore(c, cast)
		return cast

	case builtin.GetNumSubGroups:
		return &ir.ConstInt{Typ: rt, Val: 1}

	case builtin.GetSubGroupId:
		return &ir.ConstInt{Typ: rt, Val: 0}

	case builtin.GetSubGroupLocalId:
		glid := bi.GetOrDeclareMuxBuiltin(builtin.GetLocalLinearId, m, builtin.OverloadInfo{ReturnType: ir.U32})
		call := &ir.CallInst{Callee: glid, CC: ir.CCSPIR}
		bb.InsertBefore(c, call)
		// Cast to i32 specifically, not to the query's own return type:
		// this is the one replacement that does not follow the
		// "cast unsigned to the query's return type" rule above it.
		cast := &ir.Cast{Val: call, ResultTy: ir.I32}
		bb.InsertBefore(c, cast)
		return cast

	default:
		panicInternal("unknown work-item query name: " + b.ID.String())
		return nil
	}
}
