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
	"github.com/codeplaysoftware/degenerate-subgroups/internal/device"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/ir"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/kernelmeta"
)

// classifyKernels is the Kernel Classifier of spec.md §4.1. It never
// sets HasDegenerateSubgroups itself: that attribute is only safe to
// commit once poison-reclassification (partition.go) has run, so
// pass.go defers it until the degenerate-side kernel set is final.
func classifyKernels(m *ir.Module, dev device.Info, meta kernelmeta.Service) (alwaysDegenerate, kernelsToClone map[*ir.Function]bool) {
	alwaysDegenerate = make(map[*ir.Function]bool)
	kernelsToClone = make(map[*ir.Function]bool)

	maxWorkWidth := dev.MaxWorkWidth()

	for _, k := range m.Kernels() {
		size, ok := meta.LocalSizeMetadata(k)
		if !ok {
			kernelsToClone[k] = true
			continue
		}

		// TODO(DDK-75): only the X dimension participates in this
		// check even though all three are known here; whether Y and Z
		// should too is unclear from the source this was derived from.
		w := size[0]

		if isPowerOfTwo(w) {
			continue // native
		}
		if maxWorkWidth != 0 && w%maxWorkWidth == 0 {
			continue // native
		}

		alwaysDegenerate[k] = true
	}

	return alwaysDegenerate, kernelsToClone
}

func isPowerOfTwo(w uint32) bool {
	return w != 0 && w&(w-1) == 0
}
