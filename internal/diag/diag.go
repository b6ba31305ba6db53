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

// Package diag carries the pass's non-fatal diagnostics (spec.md §7's
// "semantic limitations" category: logged, not erroring). The teacher
// has no logging framework in its core library packages, only
// fmt-based panics and writer-based debug dumps
// (internal/atm/ssa/debug_draw_liverange.go); this follows the same
// register rather than importing a structured logger the teacher
// never reaches for.
package diag

import (
	"fmt"
	"io"
)

// Diagnostic is a single non-fatal finding, e.g. a kernel reclassified
// native because it is poisoned.
type Diagnostic struct {
	Kernel  string
	Builtin string
	Message string
}

func (d Diagnostic) String() string {
	if d.Builtin != "" {
		return fmt.Sprintf("Kernel %s uses sub-group builtin %s with no work-group equivalent - %s", d.Kernel, d.Builtin, d.Message)
	}
	return fmt.Sprintf("kernel %s: %s", d.Kernel, d.Message)
}

// Poisoned builds the diagnostic spec.md §12 asks for, in the shape
// the original implementation emits it.
func Poisoned(kernel, builtin string) Diagnostic {
	return Diagnostic{Kernel: kernel, Builtin: builtin, Message: "skipping"}
}

// Fprint writes every diagnostic to w, one per line.
func Fprint(w io.Writer, ds []Diagnostic) {
	for _, d := range ds {
		fmt.Fprintln(w, d.String())
	}
}
