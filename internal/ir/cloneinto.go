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

// CloneFunctionInto clones src's body into dst with "local changes
// only" semantics (spec.md §6): every value referenced by a cloned
// instruction is rewritten through vmap when present, and through the
// old-instruction→new-instruction mapping built during the clone
// otherwise, so instructions within the cloned body that reference
// each other still do after cloning. It returns dst's return
// instructions, as the clone-into primitive of spec.md §6 requires.
//
// Callers are expected to have already bound each of src's parameters
// to the corresponding parameter of dst in vmap (spec.md §4.5 step 2);
// CloneFunctionInto does not do this itself because parameter binding
// is a property of how dst was declared, not of the clone operation.
func CloneFunctionInto(dst, src *Function, vmap map[Value]Value) []*Return {
	instrMap := make(map[Instruction]Instruction, len(src.Blocks))

	// Pass 1: create every block and a shallow clone of every
	// instruction, so the old->new instruction mapping is complete
	// before any operand is rewritten (mirrors the teacher's own
	// build-then-rewrite discipline, internal/atm/ssa/compile.go).
	for _, bb := range src.Blocks {
		nbb := dst.NewBlock()
		for _, in := range bb.Instrs {
			nin := shallowCloneInstr(in)
			instrMap[in] = nin
			nbb.Append(nin)
		}
	}

	resolve := func(v Value) Value {
		if v == nil {
			return nil
		}
		if in, ok := v.(Instruction); ok {
			if nin, ok := instrMap[in]; ok {
				return nin.(Value)
			}
		}
		if nv, ok := vmap[v]; ok {
			return nv
		}
		return v
	}

	// Pass 2: rewrite every operand of every cloned instruction
	// through resolve.
	for old, nin := range instrMap {
		oldOps := old.Operands()
		newOps := nin.Operands()
		for i := range oldOps {
			*newOps[i] = resolve(*oldOps[i])
		}
	}

	return dst.Returns()
}

func shallowCloneInstr(in Instruction) Instruction {
	switch v := in.(type) {
	case *CallInst:
		nc := *v
		nc.parent = nil
		nc.Args = append([]Value(nil), v.Args...)
		return &nc
	case *BinOp:
		nc := *v
		nc.parent = nil
		return &nc
	case *Cast:
		nc := *v
		nc.parent = nil
		return &nc
	case *Return:
		nc := *v
		nc.parent = nil
		return &nc
	default:
		panic("ir: CloneFunctionInto: unhandled instruction kind")
	}
}
