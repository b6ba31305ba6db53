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

// ReplaceAllUsesWith rewrites every operand in f equal to old so that
// it reads new instead ("replace-all-uses-with", spec.md §6). It does
// not erase old; callers erase separately once every replacement
// across the function has been installed (spec.md §4.6.3).
func ReplaceAllUsesWith(f *Function, old, new Value) {
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs {
			for _, op := range in.Operands() {
				if *op == old {
					*op = new
				}
			}
		}
	}
}

// RemapCallees rewrites every CallInst in f whose Callee is old so
// that it calls new instead. Used by the function cloner's call-site
// remapping phase (spec.md §4.5).
func RemapCallees(f *Function, old, new *Function) {
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs {
			if c, ok := in.(*CallInst); ok && c.Callee == old {
				c.Callee = new
			}
		}
	}
}
