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

import "github.com/codeplaysoftware/degenerate-subgroups/internal/ir"

// VerifyIdempotent runs p over m, then runs p again over the result,
// and reports true only when the second run takes the early-exit path
// (Preserved: no sub-group call left anywhere in m) and adds no
// function. It does not compare function bodies. Native-side functions
// keep their sub-group calls after the first run, so a module with any
// such function reports false even when the second run changes
// nothing.
func VerifyIdempotent(p *DegenerateSubGroupPass, m *ir.Module) (bool, error) {
	if _, err := p.Apply(m); err != nil {
		return false, err
	}

	countAfterFirst := len(m.Functions)

	second, err := p.Apply(m)
	if err != nil {
		return false, err
	}

	return second.Preserved && len(m.Functions) == countAfterFirst, nil
}
