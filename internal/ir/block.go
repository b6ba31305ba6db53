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

// BasicBlock is an ordered list of instructions. There is no explicit
// terminator type here (the pass never needs to rewrite control flow,
// only call instructions within a block), unlike the teacher's own
// BasicBlock which tracks Term separately (internal/atm/ssa/block.go).
type BasicBlock struct {
	Parent *Function
	Instrs []Instruction
}

// Append adds an instruction to the end of the block and takes
// ownership of it.
func (b *BasicBlock) Append(instr Instruction) {
	instr.setParent(b)
	b.Instrs = append(b.Instrs, instr)
}

// InsertBefore inserts instr immediately before anchor, part of the
// IR Service's "insert call instructions at a given anchor"
// requirement (spec.md §6).
func (b *BasicBlock) InsertBefore(anchor, instr Instruction) {
	instr.setParent(b)
	for i, in := range b.Instrs {
		if in == anchor {
			b.Instrs = append(b.Instrs[:i], append([]Instruction{instr}, b.Instrs[i:]...)...)
			return
		}
	}
	panic("ir: InsertBefore: anchor not found in block")
}

// Erase removes instr from the block ("erase from parent", spec.md
// §6). It does not check for remaining uses: callers must have
// already replaced them (spec.md §4.6.3's pending-erase state).
func (b *BasicBlock) Erase(instr Instruction) {
	for i, in := range b.Instrs {
		if in == instr {
			b.Instrs = append(b.Instrs[:i], b.Instrs[i+1:]...)
			instr.setParent(nil)
			return
		}
	}
}

// CallsIn returns every CallInst directly contained in the block, in
// order. Used by the propagator and lowerer to scan a function for
// sub-group builtin calls without needing a separate instruction
// visitor type.
func (b *BasicBlock) CallsIn() []*CallInst {
	var calls []*CallInst
	for _, in := range b.Instrs {
		if c, ok := in.(*CallInst); ok {
			calls = append(calls, c)
		}
	}
	return calls
}
