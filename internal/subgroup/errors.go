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

// InternalError signals a structural precondition violation or an
// internal invariant failure (spec.md §7.1, §7.3): conditions that
// indicate a bug in the caller's IR or in the pass itself, never a
// condition a well-formed module can trigger in normal use. Mirrors
// errors.go's plain exported struct convention.
type InternalError struct {
	Reason string
}

func (e InternalError) Error() string {
	return "subgroup: " + e.Reason
}

func panicInternal(reason string) {
	panic(InternalError{Reason: reason})
}
