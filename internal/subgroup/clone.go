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
	"github.com/codeplaysoftware/degenerate-subgroups/internal/ir"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/kernelmeta"
)

const cloneSuffix = ".degenerate-subgroups"

// cloneResult is everything the lowerer and pass.go need once cloning
// has finished.
type cloneResult struct {
	// origToClone maps every F in toClone to its new degenerate-suffixed copy.
	origToClone map[*ir.Function]*ir.Function
	// degenerateSide is every function that must be lowered (spec.md §4.6):
	// the fresh clones, plus every surviving alwaysDegenerate kernel (never
	// cloned, since it is never also native), plus every usedByDegenerate
	// member that was not itself cloned because it is not also native.
	degenerateSide map[*ir.Function]bool
}

// cloneFunctions is the Function Cloner of spec.md §4.5. alwaysDegenerate
// and kernelsToClone are expected already poison-filtered (partition.go).
func cloneFunctions(m *ir.Module, alwaysDegenerate, kernelsToClone, usedByDegenerate, usedByNonDegenerate map[*ir.Function]bool, meta kernelmeta.Service) *cloneResult {
	toClone := make(map[*ir.Function]bool)
	for f := range kernelsToClone {
		toClone[f] = true
	}
	for f := range usedByDegenerate {
		if usedByNonDegenerate[f] {
			toClone[f] = true
		}
	}

	origToClone := make(map[*ir.Function]*ir.Function, len(toClone))

	// Declaration phase: every clone declaration exists before any body
	// is cloned, so the orig->clone mapping is complete when bodies are
	// walked (spec.md §4.5 "Ordering").
	for f := range toClone {
		origToClone[f] = declareClone(m, f, meta)
	}

	// Population phase.
	for f, clone := range origToClone {
		vmap := make(map[ir.Value]ir.Value, len(f.Params))
		for i, p := range f.Params {
			vmap[p] = clone.Params[i]
		}
		ir.CloneFunctionInto(clone, f, vmap)
	}

	degenerateSide := make(map[*ir.Function]bool)
	for f := range alwaysDegenerate {
		degenerateSide[f] = true
	}
	for _, clone := range origToClone {
		degenerateSide[clone] = true
	}
	for f := range usedByDegenerate {
		if !toClone[f] {
			degenerateSide[f] = true
		}
	}

	// Call-site remapping (spec.md §4.5 "Call-site remapping"). The
	// original keeps its name, so native-side call sites already name
	// it and need no rewrite; only degenerate-side functions - which
	// includes the freshly populated clone bodies themselves, since
	// shallow-cloning a CallInst preserves its original Callee - are
	// retargeted onto the cloned callee.
	for f := range degenerateSide {
		for orig, clone := range origToClone {
			ir.RemapCallees(f, orig, clone)
		}
	}

	return &cloneResult{origToClone: origToClone, degenerateSide: degenerateSide}
}

func declareClone(m *ir.Module, f *ir.Function, meta kernelmeta.Service) *ir.Function {
	clone := &ir.Function{
		Name:          f.Name + cloneSuffix,
		ResultType:    f.ResultType,
		CC:            f.CC,
		IsKernelEntry: f.IsKernelEntry,
	}
	if f.LocalSize != nil {
		ls := *f.LocalSize
		clone.LocalSize = &ls
	}
	clone.Params = make([]*ir.Param, len(f.Params))
	for i, p := range f.Params {
		clone.Params[i] = &ir.Param{Name: p.Name, Typ: p.Typ}
	}

	meta.GetOrSetBaseFnName(clone, f)
	m.AddFunction(clone)
	return clone
}
