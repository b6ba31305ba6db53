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

import (
	"testing"

	"github.com/codeplaysoftware/degenerate-subgroups/internal/builtin"
	"github.com/codeplaysoftware/degenerate-subgroups/internal/ir"
)

func TestClassifyCall(t *testing.T) {
	bi := builtin.New()

	barrier := &ir.Function{Name: "sub_group_barrier"}
	bi.Register(barrier, builtin.SubGroupBarrier)

	query := &ir.Function{Name: "get_sub_group_id"}
	bi.Register(query, builtin.GetSubGroupId)

	reduceSub, _ := bi.DeclareCollectivePair("reduce_add")
	reduceAdd := &ir.Function{Name: "sub_group_reduce_add"}
	bi.Register(reduceAdd, reduceSub)

	shuffleSub := bi.DeclarePoisonedCollective("shuffle")
	shuffle := &ir.Function{Name: "sub_group_shuffle"}
	bi.Register(shuffle, shuffleSub)

	plain := &ir.Function{Name: "memcpy"}

	cases := []struct {
		name         string
		callee       *ir.Function
		wantKind     builtinKind
		wantPoisoned bool
	}{
		{"barrier", barrier, kindBarrierOrCollective, false},
		{"work-item query", query, kindWorkItemQuery, false},
		{"collective with analogue", reduceAdd, kindBarrierOrCollective, false},
		{"collective with no analogue", shuffle, kindBarrierOrCollective, true},
		{"not a builtin", plain, kindNone, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &ir.CallInst{Callee: tc.callee}
			kind, _, poisoned := classifyCall(c, bi)
			if kind != tc.wantKind {
				t.Errorf("kind = %v, want %v", kind, tc.wantKind)
			}
			if poisoned != tc.wantPoisoned {
				t.Errorf("poisoned = %v, want %v", poisoned, tc.wantPoisoned)
			}
		})
	}
}

func TestClassifyCall_NilCalleePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected classifyCall to panic on a nil callee")
		}
	}()
	classifyCall(&ir.CallInst{}, builtin.New())
}
