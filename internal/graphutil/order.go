// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package graphutil

import (
	"sort"

	"gonum.org/v1/gonum/graph/topo"
)

// BottomUpOrder returns the strongly connected components of g in reverse
// topological order: with edges pointing from caller to callee, callees come
// before their callers. For summary-based bottom-up algorithms this is the
// order that minimizes recomputation. Node ids within one component are
// sorted for determinism.
func BottomUpOrder(g RGraph) [][]int64 {
	sccs := topo.TarjanSCC(g)
	out := make([][]int64, 0, len(sccs))
	for _, scc := range sccs {
		ids := make([]int64, 0, len(scc))
		for _, n := range scc {
			ids = append(ids, n.ID())
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out = append(out, ids)
	}
	return out
}
