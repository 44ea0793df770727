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

package escape

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-escape/analysis/config"
	"github.com/awslabs/ar-escape/analysis/ir"
	"github.com/awslabs/ar-escape/internal/funcutil"
	"github.com/awslabs/ar-escape/internal/graphutil"
)

// AnalyzeProgram computes the escape results of every routine in the table
// matching the config's routine filter. Routines are analyzed bottom-up over
// the strongly connected components of the call graph, so summaries are in
// the cache before the callers that need them; recursive groups fall back on
// the cache's placeholder seeding.
func AnalyzeProgram(table *ir.RoutineTable, cfg *config.Config) (map[ir.RoutineID]*Result, error) {
	state := NewProgramState(table, table, cfg)
	ids := table.IDs()
	g := routineGraph(table, ids)

	if cfg.ReportRecursiveCycles {
		reportCycles(state.logger, g)
	}

	results := make(map[ir.RoutineID]*Result, len(ids))
	for _, scc := range graphutil.BottomUpOrder(g) {
		for _, nid := range scc {
			id := ids[nid]
			if !cfg.MatchRoutineFilter(string(id)) {
				state.logger.Debugf("skipping %s: filtered out", id)
				continue
			}
			res, err := state.AnalyzeRoutine(table.Routine(id))
			if err != nil {
				return nil, fmt.Errorf("escape analysis of %s failed: %w", id, err)
			}
			results[id] = res
		}
	}
	state.logger.Infof("escape analysis done: %d routines, %d cached summaries",
		len(results), state.cache.Len())
	return results, nil
}

// routineGraph builds the directed call graph over the table's routines:
// an edge from caller to callee for every call site the oracle can resolve.
// Unresolvable sites contribute no edges; they degrade at the call site
// instead.
func routineGraph(table *ir.RoutineTable, ids []ir.RoutineID) graphutil.RGraph {
	index := make(map[ir.RoutineID]int64, len(ids))
	labels := make(map[int64]string, len(ids))
	for i, id := range ids {
		index[id] = int64(i)
		labels[int64(i)] = string(id)
	}
	adjacency := make(map[int64][]int64, len(ids))
	for i, id := range ids {
		r := table.Routine(id)
		for ii := range r.Instrs {
			instr := &r.Instrs[ii]
			if instr.Op != ir.OpCall {
				continue
			}
			candidates, ok := table.ResolveCandidates(instr.Site)
			if !ok {
				continue
			}
			for _, callee := range candidates {
				if ci, known := index[callee]; known {
					adjacency[int64(i)] = append(adjacency[int64(i)], ci)
				}
			}
		}
	}
	return graphutil.NewRGraph(len(ids), adjacency, labels)
}

func reportCycles(logger *config.LogGroup, g graphutil.RGraph) {
	cycles := graphutil.FindAllElementaryCycles(g)
	if len(cycles) == 0 {
		logger.Infof("call graph has no recursive cycles")
		return
	}
	logger.Infof("call graph has %d recursive cycles", len(cycles))
	if logger.LogsDebug() {
		for _, cycle := range cycles {
			names := funcutil.Map(cycle, g.Label)
			logger.Debugf("recursive cycle: %s", strings.Join(names, " -> "))
		}
	}
}
