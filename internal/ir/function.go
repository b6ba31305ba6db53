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

// Function is a declaration (Blocks == nil) or a definition. Kernel
// metadata that spec.md §6 asks an external "Kernel Metadata Service"
// to provide is carried directly on the Function here, since this IR
// is our own and there is nowhere else for it to live.
type Function struct {
	Name       string
	Params     []*Param
	ResultType Type
	CC         CallingConv
	Blocks     []*BasicBlock

	IsKernelEntry          bool
	LocalSize              *[3]uint32 // nil: unknown at compile time
	HasDegenerateSubgroups bool
	BaseFnName             string // lineage metadata; empty if unset
}

// NewBlock creates and appends a new basic block to the function.
func (f *Function) NewBlock() *BasicBlock {
	bb := &BasicBlock{Parent: f}
	f.Blocks = append(f.Blocks, bb)
	return bb
}

// Calls returns every CallInst in the function, in block-then-instruction
// order. The builtin lowerer relies on this order being stable so that
// "enumerate before replace" (spec.md §4.6.3) is well defined.
func (f *Function) Calls() []*CallInst {
	var calls []*CallInst
	for _, bb := range f.Blocks {
		calls = append(calls, bb.CallsIn()...)
	}
	return calls
}

// Callees returns the set of distinct functions directly called from
// f, in first-seen order.
func (f *Function) Callees() []*Function {
	seen := make(map[*Function]bool)
	var out []*Function
	for _, c := range f.Calls() {
		if c.Callee != nil && !seen[c.Callee] {
			seen[c.Callee] = true
			out = append(out, c.Callee)
		}
	}
	return out
}

// Returns collects every Return instruction in the function, the
// "list of return instructions" the clone-into primitive of spec.md
// §6 is required to produce.
func (f *Function) Returns() []*Return {
	var rs []*Return
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs {
			if r, ok := in.(*Return); ok {
				rs = append(rs, r)
			}
		}
	}
	return rs
}

// BaseFnNameOrFnName implements the Kernel Metadata Service accessor
// of the same name (spec.md §6): lineage name if set, else the
// function's own name.
func (f *Function) BaseFnNameOrFnName() string {
	if f.BaseFnName != "" {
		return f.BaseFnName
	}
	return f.Name
}
