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

// CallingConv identifies the ABI a call instruction and its callee
// must agree on. Builtins and kernels can disagree; the lowerer gives
// each replacement call the convention of the call it replaces
// (spec.md §4.6.1), while the auxiliary work-group query calls it
// emits use CCSPIR.
type CallingConv uint8

const (
	CCDefault CallingConv = iota
	CCSPIR
	CCKernel
)

// Instruction is any node that lives in a BasicBlock's instruction
// list. It tracks its own parent block so erase/insert operations
// don't need an external index, mirroring the teacher's own
// *BasicBlock-owns-its-Ins convention (internal/atm/ssa/block.go).
type Instruction interface {
	Value
	Parent() *BasicBlock
	setParent(*BasicBlock)
	Operands() []*Value
}

type instrBase struct {
	parent *BasicBlock
}

func (b *instrBase) Parent() *BasicBlock     { return b.parent }
func (b *instrBase) setParent(bb *BasicBlock) { b.parent = bb }

// CallInst is a direct call to a known callee (spec.md §1 assumes
// every call site names its callee; indirect calls are a Non-goal).
type CallInst struct {
	instrBase
	Callee *Function
	Args   []Value
	CC     CallingConv
}

func (c *CallInst) Type() Type {
	if c.Callee == nil {
		return nil
	}
	return c.Callee.ResultType
}

func (c *CallInst) Operands() []*Value {
	ops := make([]*Value, len(c.Args))
	for i := range c.Args {
		ops[i] = &c.Args[i]
	}
	return ops
}

// BinOp is a binary integer arithmetic instruction. Only the
// unsigned operations the lowerer needs are modeled (spec.md §4.6.1's
// broadcast index-basis transform, §6's "build arithmetic" service).
type BinOp struct {
	instrBase
	Op       BinOpKind
	X, Y     Value
	ResultTy Type
}

type BinOpKind uint8

const (
	OpUAdd BinOpKind = iota
	OpUSub
	OpUMul
	OpUDiv
	OpURem
)

func (b *BinOp) Type() Type           { return b.ResultTy }
func (b *BinOp) Operands() []*Value   { return []*Value{&b.X, &b.Y} }

// Cast is an unsigned integer width cast (zext/trunc depending on
// relative widths), used for the "cast unsigned to the query's return
// type" rule of spec.md §4.6.2 and the size-type cast of §4.6.1.
type Cast struct {
	instrBase
	Val      Value
	ResultTy Type
}

func (c *Cast) Type() Type         { return c.ResultTy }
func (c *Cast) Operands() []*Value { return []*Value{&c.Val} }

// Return is a function terminator. The cloner collects these per
// spec.md §6's "produce the list of return instructions."
type Return struct {
	instrBase
	Val Value // nil for a void return
}

func (r *Return) Type() Type         { return nil }
func (r *Return) Operands() []*Value {
	if r.Val == nil {
		return nil
	}
	return []*Value{&r.Val}
}
