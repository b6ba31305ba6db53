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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeplaysoftware/degenerate-subgroups/internal/builtin"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/ir"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/platform"
)

// TestLowerFunction_S1_BarrierRewrite exercises scenario S1: a
// function calling only the sub-group barrier ends up calling the
// work-group barrier instead, with no sub-group builtin left.
func TestLowerFunction_S1_BarrierRewrite(t *testing.T) {
	bi := builtin.New()
	barrier := &ir.Function{Name: "sub_group_barrier"}
	bi.Register(barrier, builtin.SubGroupBarrier)

	m := &ir.Module{}
	m.AddFunction(barrier)

	f := &ir.Function{Name: "k.degenerate-subgroups"}
	bb := f.NewBlock()
	bb.Append(&ir.CallInst{Callee: barrier, Args: []ir.Value{ir.ConstU32(0)}})
	bb.Append(&ir.Return{})
	m.AddFunction(f)

	lowerFunction(m, f, bi, platform.SizeType64)

	for _, c := range f.Calls() {
		assert.NotEqual(t, barrier, c.Callee, "no call should still target the sub-group barrier")
	}
	require.Len(t, f.Calls(), 1)
	assert.Equal(t, "work_group_barrier", f.Calls()[0].Callee.Name)
}

// TestLowerFunction_S2_BroadcastIndexArithmetic exercises scenario S2.
func TestLowerFunction_S2_BroadcastIndexArithmetic(t *testing.T) {
	bi := builtin.New()
	broadcast := &ir.Function{Name: "sub_group_broadcast", ResultType: ir.U32}
	bi.Register(broadcast, builtin.SubgroupBroadcast)

	m := &ir.Module{}
	m.AddFunction(broadcast)

	f := &ir.Function{Name: "k.degenerate-subgroups"}
	bb := f.NewBlock()
	idx := &ir.Param{Name: "idx", Typ: ir.U32}
	value := &ir.Param{Name: "value", Typ: ir.U32}
	bcast := &ir.CallInst{Callee: broadcast, Args: []ir.Value{value, idx}}
	bb.Append(bcast)
	bb.Append(&ir.Return{})
	m.AddFunction(f)

	lowerFunction(m, f, bi, platform.SizeType64)

	calls := f.Calls()
	require.NotEmpty(t, calls)

	last := calls[len(calls)-1]
	assert.Equal(t, "work_group_broadcast", last.Callee.Name)
	require.Len(t, last.Args, 5)

	zero, ok := last.Args[0].(*ir.ConstInt)
	require.True(t, ok)
	assert.EqualValues(t, 0, zero.Val)
	assert.Equal(t, value, last.Args[1])

	for _, coord := range last.Args[2:] {
		cast, ok := coord.(*ir.Cast)
		require.True(t, ok, "each coordinate must be cast to the platform size type")
		assert.Equal(t, platform.SizeType64.SizeType(), cast.ResultTy)
	}

	for _, c := range calls {
		assert.NotEqual(t, broadcast, c.Callee)
	}
}

// TestLowerFunction_S2_BroadcastWidensLocalSizeToElementIndexType
// pins down that get_local_size's u32 result is cast to elementIndex's
// own type before it is mixed into the index-basis arithmetic, for an
// elementIndex type other than u32.
func TestLowerFunction_S2_BroadcastWidensLocalSizeToElementIndexType(t *testing.T) {
	bi := builtin.New()
	broadcast := &ir.Function{Name: "sub_group_broadcast", ResultType: ir.U64}
	bi.Register(broadcast, builtin.SubgroupBroadcast)

	m := &ir.Module{}
	m.AddFunction(broadcast)

	f := &ir.Function{Name: "k.degenerate-subgroups"}
	bb := f.NewBlock()
	idx := &ir.Param{Name: "idx", Typ: ir.U64}
	value := &ir.Param{Name: "value", Typ: ir.U64}
	bcast := &ir.CallInst{Callee: broadcast, Args: []ir.Value{value, idx}}
	bb.Append(bcast)
	bb.Append(&ir.Return{})
	m.AddFunction(f)

	lowerFunction(m, f, bi, platform.SizeType64)

	var localSizeCalls []*ir.CallInst
	for _, c := range f.Calls() {
		if c.Callee.Name == "get_local_size" {
			localSizeCalls = append(localSizeCalls, c)
		}
	}
	require.Len(t, localSizeCalls, 2, "lx and ly each need one get_local_size call")

	for _, call := range localSizeCalls {
		assert.Equal(t, ir.U32, call.Callee.ResultType, "get_local_size itself still returns u32")
	}

	var widened int
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs {
			cast, ok := in.(*ir.Cast)
			if !ok {
				continue
			}
			for _, call := range localSizeCalls {
				if cast.Val == call {
					assert.Equal(t, ir.U64, cast.ResultTy, "get_local_size's result must be cast to elementIndex's own type")
					widened++
				}
			}
		}
	}
	assert.Equal(t, 2, widened, "both lx and ly must be widened before use")

	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs {
			bo, ok := in.(*ir.BinOp)
			if !ok {
				continue
			}
			for _, operand := range []ir.Value{bo.X, bo.Y} {
				if call, ok := operand.(*ir.CallInst); ok {
					assert.NotEqual(t, "get_local_size", call.Callee.Name, "the raw u32 get_local_size call must never feed the index-basis arithmetic directly")
				}
			}
		}
	}
}

// TestLowerFunction_S5_SubGroupSizeQuery exercises scenario S5.
func TestLowerFunction_S5_SubGroupSizeQuery(t *testing.T) {
	bi := builtin.New()
	sizeQuery := &ir.Function{Name: "get_sub_group_size", ResultType: ir.U32}
	bi.Register(sizeQuery, builtin.GetSubGroupSize)

	m := &ir.Module{}
	m.AddFunction(sizeQuery)

	f := &ir.Function{Name: "k.degenerate-subgroups"}
	bb := f.NewBlock()
	call := &ir.CallInst{Callee: sizeQuery}
	bb.Append(call)
	ret := &ir.Return{Val: call}
	bb.Append(ret)
	m.AddFunction(f)

	lowerFunction(m, f, bi, platform.SizeType64)

	cast, ok := ret.Val.(*ir.Cast)
	require.True(t, ok, "the query must be replaced by a value cast to its own return type")
	assert.Equal(t, ir.U32, cast.ResultTy)

	mul, ok := cast.Val.(*ir.BinOp)
	require.True(t, ok)
	assert.Equal(t, ir.OpUMul, mul.Op)
}

// TestLowerFunction_GetSubGroupLocalId_CastsToI32 pins down the one
// query replacement that does not cast to its own return type.
func TestLowerFunction_GetSubGroupLocalId_CastsToI32(t *testing.T) {
	bi := builtin.New()
	localID := &ir.Function{Name: "get_sub_group_local_id", ResultType: ir.U64}
	bi.Register(localID, builtin.GetSubGroupLocalId)

	m := &ir.Module{}
	m.AddFunction(localID)

	f := &ir.Function{Name: "k.degenerate-subgroups"}
	bb := f.NewBlock()
	call := &ir.CallInst{Callee: localID}
	bb.Append(call)
	ret := &ir.Return{Val: call}
	bb.Append(ret)
	m.AddFunction(f)

	lowerFunction(m, f, bi, platform.SizeType64)

	cast, ok := ret.Val.(*ir.Cast)
	require.True(t, ok)
	assert.Equal(t, ir.I32, cast.ResultTy, "get_sub_group_local_id must cast to i32, not to its own u64 return type")
}
