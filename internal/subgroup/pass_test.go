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
	"github.com/codeplaysoftware/degenerate-subgroups/internal/device"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/ir"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/kernelmeta"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/platform"
)

// TestPass_S6_NoSubgroupUsage exercises scenario S6 and invariant 7:
// with no sub-group calls anywhere, every kernel gains
// HasDegenerateSubgroups, the pass reports Preserved, and no bodies
// change.
func TestPass_S6_NoSubgroupUsage(t *testing.T) {
	m := &ir.Module{}
	bi := builtin.New()
	k := &ir.Function{Name: "k", IsKernelEntry: true}
	kb := k.NewBlock()
	kb.Append(&ir.Return{})
	m.AddFunction(k)

	p := New(device.StaticDeviceInfo{Width: 8}, bi, kernelmeta.FunctionMetadata{}, platform.SizeType64)
	result, err := p.Apply(m)

	require.NoError(t, err)
	assert.True(t, result.Preserved)
	assert.True(t, k.HasDegenerateSubgroups)
	assert.Len(t, m.Functions, 1, "no function should be cloned")
}

// TestPass_S1_SimpleBarrierRewrite exercises scenario S1 end to end
// through Apply.
func TestPass_S1_SimpleBarrierRewrite(t *testing.T) {
	m := &ir.Module{}
	bi := builtin.New()

	barrier := &ir.Function{Name: "sub_group_barrier"}
	bi.Register(barrier, builtin.SubGroupBarrier)
	m.AddFunction(barrier)

	k := &ir.Function{Name: "k", IsKernelEntry: true} // no local size: kernelsToClone
	kb := k.NewBlock()
	kb.Append(&ir.CallInst{Callee: barrier, Args: []ir.Value{ir.ConstU32(0)}})
	kb.Append(&ir.Return{})
	m.AddFunction(k)

	p := New(device.StaticDeviceInfo{Width: 8}, bi, kernelmeta.FunctionMetadata{}, platform.SizeType64)
	result, err := p.Apply(m)
	require.NoError(t, err)
	assert.False(t, result.Preserved)

	var native, degenerate *ir.Function
	for _, f := range m.Functions {
		if !f.IsKernelEntry {
			continue
		}
		if f.HasDegenerateSubgroups {
			degenerate = f
		} else {
			native = f
		}
	}

	require.NotNil(t, native, "a native copy of k must survive")
	require.NotNil(t, degenerate, "a degenerate copy of k must exist")
	assert.Equal(t, "k", native.Name)
	assert.Equal(t, "k.degenerate-subgroups", degenerate.Name)

	for _, c := range native.Calls() {
		assert.Equal(t, barrier, c.Callee, "the native copy must be byte-for-byte unchanged")
	}
	for _, c := range degenerate.Calls() {
		assert.NotEqual(t, barrier, c.Callee, "the degenerate copy must contain no sub-group builtin call")
	}
}

// TestPass_S3_PoisonedShuffle exercises scenario S3: a kernel
// transitively calling a collective with no work-group analogue is
// left untouched and native, with a diagnostic naming it.
func TestPass_S3_PoisonedShuffle(t *testing.T) {
	m := &ir.Module{}
	bi := builtin.New()

	shuffleID := bi.DeclarePoisonedCollective("shuffle")
	shuffle := &ir.Function{Name: "sub_group_shuffle"}
	bi.Register(shuffle, shuffleID)
	m.AddFunction(shuffle)

	k := &ir.Function{Name: "k", LocalSize: &[3]uint32{9, 1, 1}, IsKernelEntry: true} // not power of two, not a multiple of 8: alwaysDegenerate
	kb := k.NewBlock()
	kb.Append(&ir.CallInst{Callee: shuffle})
	kb.Append(&ir.Return{})
	m.AddFunction(k)

	p := New(device.StaticDeviceInfo{Width: 8}, bi, kernelmeta.FunctionMetadata{}, platform.SizeType64)
	result, err := p.Apply(m)
	require.NoError(t, err)

	assert.False(t, k.HasDegenerateSubgroups, "a poisoned kernel must not be annotated degenerate")
	assert.Len(t, m.Functions, 2, "a poisoned kernel must not be cloned")

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "k", result.Diagnostics[0].Kernel)
	assert.Equal(t, "shuffle", result.Diagnostics[0].Builtin)

	for _, c := range k.Calls() {
		assert.Equal(t, shuffle, c.Callee, "a poisoned kernel's body must be left alone")
	}
}

// TestPass_KernelsToCloneWithNoOwnSubgroupUsage pins down invariant 5
// over invariant 1's literal reading: a kernel with no local-size
// metadata is cloned unconditionally, even when it never itself calls
// a sub-group builtin, and only the clone gets HasDegenerateSubgroups.
func TestPass_KernelsToCloneWithNoOwnSubgroupUsage(t *testing.T) {
	m := &ir.Module{}
	bi := builtin.New()

	barrier := &ir.Function{Name: "sub_group_barrier"}
	bi.Register(barrier, builtin.SubGroupBarrier)
	m.AddFunction(barrier)

	// other uses sub-groups directly, so seed is non-empty module-wide.
	other := &ir.Function{Name: "other", LocalSize: &[3]uint32{8, 1, 1}, IsKernelEntry: true}
	ob := other.NewBlock()
	ob.Append(&ir.CallInst{Callee: barrier, Args: []ir.Value{ir.ConstU32(0)}})
	ob.Append(&ir.Return{})
	m.AddFunction(other)

	// k has no local-size metadata (kernelsToClone) but calls nothing
	// sub-group related at all.
	k := &ir.Function{Name: "k", IsKernelEntry: true}
	kb := k.NewBlock()
	kb.Append(&ir.Return{})
	m.AddFunction(k)

	p := New(device.StaticDeviceInfo{Width: 8}, bi, kernelmeta.FunctionMetadata{}, platform.SizeType64)
	_, err := p.Apply(m)
	require.NoError(t, err)

	var native, degenerate *ir.Function
	for _, f := range m.Functions {
		if f.Name == "k" {
			native = f
		}
		if f.Name == "k.degenerate-subgroups" {
			degenerate = f
		}
	}
	require.NotNil(t, native)
	require.NotNil(t, degenerate)
	assert.False(t, native.HasDegenerateSubgroups, "the native copy must go without the attribute even though it never uses sub-groups")
	assert.True(t, degenerate.HasDegenerateSubgroups)
}

func TestVerifyIdempotent(t *testing.T) {
	m := &ir.Module{}
	bi := builtin.New()

	barrier := &ir.Function{Name: "sub_group_barrier"}
	bi.Register(barrier, builtin.SubGroupBarrier)
	m.AddFunction(barrier)

	k := &ir.Function{Name: "k", LocalSize: &[3]uint32{9, 1, 1}, IsKernelEntry: true}
	kb := k.NewBlock()
	kb.Append(&ir.CallInst{Callee: barrier})
	kb.Append(&ir.Return{})
	m.AddFunction(k)

	p := New(device.StaticDeviceInfo{Width: 8}, bi, kernelmeta.FunctionMetadata{}, platform.SizeType64)

	ok, err := VerifyIdempotent(p, m)
	require.NoError(t, err)
	assert.True(t, ok)
}
