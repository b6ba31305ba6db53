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

// Package subgroup implements the Degenerate Sub-Group Pass: a
// five-stage call-graph rewrite that folds sub-group abstractions into
// the surrounding work-group for kernels whose execution geometry is
// incompatible with the target device's sub-group width.
package subgroup

import (
	"io"

	"github.com/codeplaysoftware/degenerate-subgroups/internal/builtin"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/device"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/diag"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/ir"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/kernelmeta"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/platform"
)

// Pass is satisfied by DegenerateSubGroupPass, modeled directly on the
// teacher's own ssa.Pass interface (internal/atm/ssa/optimize.go).
type Pass interface {
	Apply(m *ir.Module) (*Result, error)
}

// Result reports whether Apply changed the module (spec.md §7's
// analysis-preservation contract) and carries the non-fatal
// diagnostics accumulated along the way.
type Result struct {
	Preserved   bool
	Diagnostics []diag.Diagnostic
}

// DegenerateSubGroupPass wires the external collaborators spec.md §6
// names into one runnable pass.
type DegenerateSubGroupPass struct {
	dev  device.Info
	bi   *builtin.Catalogue
	meta kernelmeta.Service
	plat platform.Platform

	diagWriter io.Writer
}

// Option configures a DegenerateSubGroupPass, following the teacher's
// own functional-option convention (options.go's Option/WithXxx
// pattern).
type Option func(*DegenerateSubGroupPass)

// WithDiagnosticsWriter makes Apply echo its diagnostics to w as it
// returns them, for CLI use.
func WithDiagnosticsWriter(w io.Writer) Option {
	return func(p *DegenerateSubGroupPass) { p.diagWriter = w }
}

// New constructs a pass over the given collaborators.
func New(dev device.Info, bi *builtin.Catalogue, meta kernelmeta.Service, plat platform.Platform, opts ...Option) *DegenerateSubGroupPass {
	p := &DegenerateSubGroupPass{dev: dev, bi: bi, meta: meta, plat: plat}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply runs the five-stage pipeline of spec.md §2 once over m.
func (p *DegenerateSubGroupPass) Apply(m *ir.Module) (*Result, error) {
	alwaysDegenerate, kernelsToClone := classifyKernels(m, p.dev, p.meta)

	cg := ir.BuildCallGraph(m)
	usesSubgroups, poison, poisonReason := propagateUsage(m, cg, p.bi)

	if len(usesSubgroups) == 0 {
		// Early exit (spec.md §4.3): no sub-group call anywhere in the
		// module. Every kernel is free to let the vectorizer pick any
		// width, so every kernel is annotated and nothing is rewritten.
		for _, k := range m.Kernels() {
			p.meta.SetHasDegenerateSubgroups(k)
		}
		return &Result{Preserved: true}, nil
	}

	diagnostics := reclassifyPoisoned(alwaysDegenerate, kernelsToClone, poison, poisonReason)

	usedByDegenerate, usedByNonDegenerate := closures(m, alwaysDegenerate, kernelsToClone, usesSubgroups)

	cr := cloneFunctions(m, alwaysDegenerate, kernelsToClone, usedByDegenerate, usedByNonDegenerate, p.meta)

	// HasDegenerateSubgroups (spec.md §8 invariants 1, 2, 5, 6): every
	// kernel that never uses sub-groups at all; every surviving
	// alwaysDegenerate kernel; and the clone (never the original) of
	// every surviving kernelsToClone kernel. kernelsToClone originals
	// are excluded from the first rule even when they themselves carry
	// no sub-group call, since invariant 5 requires exactly one of
	// their two copies to go without the attribute, and that copy is
	// always the original.
	for _, k := range m.Kernels() {
		if !usesSubgroups[k] && !kernelsToClone[k] {
			p.meta.SetHasDegenerateSubgroups(k)
		}
	}
	for k := range alwaysDegenerate {
		p.meta.SetHasDegenerateSubgroups(k)
	}
	for k := range kernelsToClone {
		p.meta.SetHasDegenerateSubgroups(cr.origToClone[k])
	}

	for f := range cr.degenerateSide {
		lowerFunction(m, f, p.bi, p.plat)
	}

	if p.diagWriter != nil {
		diag.Fprint(p.diagWriter, diagnostics)
	}

	return &Result{Preserved: false, Diagnostics: diagnostics}, nil
}
