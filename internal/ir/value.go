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

// Value is anything that can be used as an instruction operand:
// a function parameter, a constant, or the result of an instruction
// that produces one (the instruction pointer itself is its own value,
// as in a conventional SSA IR).
type Value interface {
	Type() Type
}

// Param is a formal parameter of a Function.
type Param struct {
	Name string
	Typ  Type
}

func (p *Param) Type() Type { return p.Typ }

// ConstInt is an integer constant value, not an instruction: it does
// not live in any BasicBlock's instruction list.
type ConstInt struct {
	Typ Type
	Val int64
}

func (c *ConstInt) Type() Type { return c.Typ }

func ConstI32(v int64) *ConstInt { return &ConstInt{Typ: I32, Val: v} }
func ConstU32(v int64) *ConstInt { return &ConstInt{Typ: U32, Val: v} }
