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

// Package device implements the Device Information Service of
// spec.md §6: it yields max_work_width, the vectorisation width
// ceiling the kernel classifier divides local_size[0] against.
package device

import "github.com/klauspost/cpuid/v2"

// Info is the Device Information Service interface the classifier
// depends on.
type Info interface {
	MaxWorkWidth() uint32
}

// StaticDeviceInfo reports a fixed max_work_width, for tests and for
// targets whose vectorisation ceiling is known ahead of time rather
// than probed from the host.
type StaticDeviceInfo struct {
	Width uint32
}

func (s StaticDeviceInfo) MaxWorkWidth() uint32 { return s.Width }

// HostDeviceInfo derives a plausible max_work_width from the host
// CPU's own SIMD capability, using github.com/klauspost/cpuid/v2 —
// the same dependency the teacher reaches for to gate AMD64 code-gen
// strategy by host feature (internal/atm/ssa/pass_lowering_amd64.go).
// It is a stand-in for a real device query when this pass is driven
// from the command line against "whatever hardware happens to be
// running it" rather than a cross-compiled target description.
type HostDeviceInfo struct{}

func (HostDeviceInfo) MaxWorkWidth() uint32 {
	switch {
	case cpuid.CPU.Has(cpuid.AVX512F):
		return 16
	case cpuid.CPU.Has(cpuid.AVX2):
		return 8
	case cpuid.CPU.Has(cpuid.AVX):
		return 4
	default:
		return 1
	}
}
