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

// Package platform implements the Platform collaborator of spec.md
// §6: it answers getSizeType(M), the platform-dependent integer width
// used to cast the broadcast index basis before the work-group
// broadcast call (spec.md §4.6.1).
package platform

import "github.com/codeplaysoftware/degenerate-subgroups/internal/ir"

// Platform yields the platform's size type.
type Platform interface {
	SizeType() ir.Type
}

// Fixed is a Platform with a statically configured pointer width,
// grounded on the teacher's own per-architecture pointer-size constant
// (internal/atm/abi_amd64.go's PtrSize) — here exposed as a value
// instead of an arch-specific build-tagged constant, since this pass
// targets a device's reported width, not the host's.
type Fixed struct {
	Bits uint8
}

func (f Fixed) SizeType() ir.Type {
	return ir.IntType{Width: f.Bits, Signed: false}
}

// SizeType32 and SizeType64 are the two widths spec.md §6 calls out
// ("e.g., 32 or 64 bits").
var (
	SizeType32 = Fixed{Bits: 32}
	SizeType64 = Fixed{Bits: 64}
)
