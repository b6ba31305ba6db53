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

package ir

// Module is a container of functions connected by a call graph
// (spec.md §3). The pass reads and mutates it in place.
type Module struct {
	Functions []*Function
}

// AddFunction appends f to the module's function list, the only
// module-wide mutation the pass performs beyond per-function rewrites
// (spec.md §9, "the only module-wide state mutated is the function
// list").
func (m *Module) AddFunction(f *Function) {
	m.Functions = append(m.Functions, f)
}

// Kernels returns every function flagged as a kernel entry point, in
// module order.
func (m *Module) Kernels() []*Function {
	var ks []*Function
	for _, f := range m.Functions {
		if f.IsKernelEntry {
			ks = append(ks, f)
		}
	}
	return ks
}

// CallGraph builds the reverse call-site index ("obtain users of a
// function", spec.md §6) once per pass invocation; it is never
// persisted on the Module itself (spec.md §3, "computed, not
// persisted").
type CallGraph struct {
	callers map[*Function][]*Function
}

// BuildCallGraph indexes every direct call edge currently in m.
func BuildCallGraph(m *Module) *CallGraph {
	cg := &CallGraph{callers: make(map[*Function][]*Function)}
	seen := make(map[[2]*Function]bool)
	for _, caller := range m.Functions {
		for _, callee := range caller.Callees() {
			key := [2]*Function{caller, callee}
			if !seen[key] {
				seen[key] = true
				cg.callers[callee] = append(cg.callers[callee], caller)
			}
		}
	}
	return cg
}

// Callers returns the distinct functions with a direct call site
// naming f as callee, in first-seen order.
func (cg *CallGraph) Callers(f *Function) []*Function {
	return cg.callers[f]
}
