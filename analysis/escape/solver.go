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

	"github.com/awslabs/ar-escape/analysis/config"
	"github.com/awslabs/ar-escape/analysis/ir"
)

// ProgramState ties together the collaborators of the analysis: the
// resolution oracle, the routine bodies, the shared summary cache and the
// configuration. One ProgramState can serve many analysis runs; the summary
// cache is the only state they share.
type ProgramState struct {
	resolver ir.Resolver
	source   ir.RoutineSource
	cache    *SummaryCache
	config   *config.Config
	logger   *config.LogGroup
}

// NewProgramState returns a program state with a fresh summary cache.
func NewProgramState(resolver ir.Resolver, source ir.RoutineSource, cfg *config.Config) *ProgramState {
	return &ProgramState{
		resolver: resolver,
		source:   source,
		cache:    NewSummaryCache(),
		config:   cfg,
		logger:   config.NewLogGroup(cfg),
	}
}

// Logger returns the log group of the program state.
func (p *ProgramState) Logger() *config.LogGroup {
	return p.logger
}

// Cache returns the shared summary cache.
func (p *ProgramState) Cache() *SummaryCache {
	return p.cache
}

// AnalyzeRoutine runs the escape analysis on one routine and returns its
// finished result. The routine's summary is published to the shared cache
// for reuse by later runs.
func (p *ProgramState) AnalyzeRoutine(r *ir.Routine) (*Result, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("rejecting malformed routine: %w", err)
	}
	a := newAnalysis(r, p, 0)
	if err := a.runForwardIterative(); err != nil {
		return nil, fmt.Errorf("analysis of %s did not converge: %w", r.Name, err)
	}
	summary := p.cache.publish(r.Signature(), a.summary())
	return newResult(r, a.state, summary), nil
}

// analysis is the per-routine solver state. The escape state store is
// flow-insensitive: one element per value for the whole routine, shared by
// every block. Control-flow merges need no separate treatment under this
// store; joining into the one element per value is exactly the merge of
// "escapes on at least one path".
type analysis struct {
	routine *ir.Routine
	state   *state
	prog    *ProgramState

	// depth is the recursion depth of the callee summarization that spawned
	// this run; 0 for a top-level run.
	depth int
}

func newAnalysis(r *ir.Routine, prog *ProgramState, depth int) *analysis {
	return &analysis{
		routine: r,
		state:   newState(r),
		prog:    prog,
		depth:   depth,
	}
}

// processBlock applies the transfer function of every instruction in the
// block, in program order, and reports whether any value's element changed.
func (a *analysis) processBlock(b *ir.Block) (changed bool) {
	for _, idx := range b.Instrs {
		if a.transferInstruction(idx) {
			changed = true
		}
	}
	return changed
}

// runForwardIterative is the convergence loop of the monotone framework: the
// blocks are swept in program order, and the sweep repeats while any value's
// element changes, which re-runs loop bodies and re-applies call and select
// effects whose inputs rose. Termination is guaranteed by the finite lattice
// height and the monotone transfer functions; the pass bound is a safety net
// against a misbehaving transfer function.
func (a *analysis) runForwardIterative() error {
	if len(a.routine.Blocks) == 0 {
		return nil
	}
	for pass := 0; ; pass++ {
		if pass >= a.prog.config.MaxSolverPasses {
			return fmt.Errorf("no fixpoint after %d passes over %s", pass, a.routine.Name)
		}
		changed := false
		for bi := range a.routine.Blocks {
			if a.processBlock(&a.routine.Blocks[bi]) {
				changed = true
			}
		}
		if !changed {
			if a.prog.logger.LogsTrace() {
				a.prog.logger.Tracef("%s converged after %d passes", a.routine.Name, pass+1)
			}
			return nil
		}
	}
}

// summary folds the final escape state into the routine's call summary: the
// element of each argument slot, and the join of the elements of every
// returned value.
func (a *analysis) summary() *Summary {
	args := make([]Escape, len(a.routine.Params))
	for i := range args {
		args[i] = a.state.get(ir.Arg(i))
	}
	ret := NoEscape()
	for idx := range a.routine.Instrs {
		instr := &a.routine.Instrs[idx]
		if instr.Op == ir.OpReturn && len(instr.Operands) == 1 {
			ret = ret.Join(a.state.get(instr.Operands[0]))
		}
	}
	return &Summary{Args: args, Ret: ret}
}
