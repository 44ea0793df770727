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
	"sync"

	"github.com/awslabs/ar-escape/analysis/ir"
)

// Summary is the cached inter-procedural result for one callee signature: one
// lattice element per argument slot and one for the return value.
type Summary struct {
	Args []Escape
	Ret  Escape
}

func newBottomSummary(arity int) *Summary {
	return &Summary{Args: make([]Escape, arity)}
}

// join returns the pointwise join of s and o. Both summaries must have the
// same arity.
func (s *Summary) join(o *Summary) *Summary {
	args := make([]Escape, len(s.Args))
	for i := range args {
		args[i] = s.Args[i].Join(o.Args[i])
	}
	return &Summary{Args: args, Ret: s.Ret.Join(o.Ret)}
}

// SummaryCache holds computed call summaries keyed by normalized signature.
// It is the only state shared across analysis runs. Published entries only
// move up the lattice; the pending map holds the bottom-seeded placeholders
// that break recursive cycles. Access is serialized so that concurrent hosts
// always read a valid, fully-joined summary, never a partial one.
type SummaryCache struct {
	mu        sync.Mutex
	summaries map[ir.Signature]*Summary
	pending   map[ir.Signature]*Summary
}

// NewSummaryCache returns an empty summary cache.
func NewSummaryCache() *SummaryCache {
	return &SummaryCache{
		summaries: make(map[ir.Signature]*Summary),
		pending:   make(map[ir.Signature]*Summary),
	}
}

// Lookup returns the published summary for sig, or nil.
func (c *SummaryCache) Lookup(sig ir.Signature) *Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summaries[sig]
}

// Len returns the number of published summaries.
func (c *SummaryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.summaries)
}

func (c *SummaryCache) lookupOrPending(sig ir.Signature) *Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.summaries[sig]; s != nil {
		return s
	}
	return c.pending[sig]
}

func (c *SummaryCache) markPending(sig ir.Signature, placeholder *Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[sig] = placeholder
}

// publish installs a computed summary. An already published summary is joined
// with the new one instead of being replaced or kept: a summary computed
// mid-cycle against a placeholder under-approximates, and the refined summary
// of the same routine arriving later must supersede it. The join keeps the
// entry monotone, so whichever result a reader sees is a valid, fully-joined
// summary.
func (c *SummaryCache) publish(sig ir.Signature, s *Summary) *Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, sig)
	if prev := c.summaries[sig]; prev != nil && len(prev.Args) == len(s.Args) {
		s = prev.join(s)
	}
	c.summaries[sig] = s
	return s
}

func (c *SummaryCache) abandon(sig ir.Signature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, sig)
}

// transferCall resolves a call instruction through the oracle and maps the
// callee summary (or the pointwise join of the candidate summaries) back
// across the call boundary. Any form of uncertainty, including unresolvable
// dispatch, a missing body, an arity mismatch or a failed recursive analysis,
// degrades to the arbitrary-callee assumption.
func (a *analysis) transferCall(idx int, instr *ir.Instruction) bool {
	res := ir.Res(idx)
	ops := instr.Operands
	candidates, ok := a.prog.resolver.ResolveCandidates(instr.Site)
	if !ok || len(candidates) == 0 {
		a.prog.logger.Debugf("%s: call to %s is not statically resolvable, treating as unknown call",
			a.routine.Name, instr.Site.Callee)
		return a.callUnknown(ops, res)
	}
	var combined *Summary
	for _, id := range candidates {
		callee := a.prog.source.Routine(id)
		if callee == nil {
			a.prog.logger.Debugf("%s: no body available for %s, treating as unknown call", a.routine.Name, id)
			return a.callUnknown(ops, res)
		}
		if len(callee.Params) != len(ops) {
			a.prog.logger.Warnf("%s: call to %s passes %d operands for %d slots, treating as unknown call",
				a.routine.Name, callee.Name, len(ops), len(callee.Params))
			return a.callUnknown(ops, res)
		}
		summary, err := a.prog.summarize(callee, a.depth)
		if err != nil {
			a.prog.logger.Warnf("%s: could not summarize %s (%v), treating as unknown call",
				a.routine.Name, callee.Name, err)
			return a.callUnknown(ops, res)
		}
		if combined == nil {
			combined = summary
		} else {
			combined = combined.join(summary)
		}
	}
	return a.applySummary(combined, ops, res)
}

// applySummary maps a callee summary across the call boundary. For each
// argument slot the callee-side element is joined onto the caller operand
// with its return component stripped: being returned from the callee is only
// an escape for the caller if the call's result itself escapes, so a
// pass-through argument instead receives the current element of the result.
// This is the simple aliasing refinement; no attempt is made to prove or
// disprove aliasing for transformed results, so a callee that returns a fresh
// value is indistinguishable from one that returns its argument.
func (a *analysis) applySummary(summary *Summary, ops []ir.Value, res ir.Value) (changed bool) {
	for i, op := range ops {
		argEsc := summary.Args[i]
		mapped := argEsc.withoutReturn()
		if argEsc.IsReturnEscape() {
			mapped = mapped.Join(a.state.get(res))
		}
		if a.state.join(op, mapped) {
			changed = true
		}
	}
	return a.state.join(res, summary.Ret.withoutReturn()) || changed
}

// summarize returns the summary for callee, computing and caching it on
// first use. A routine already being summarized deeper in the call stack is
// answered with its bottom-seeded placeholder, which breaks recursive cycles.
func (p *ProgramState) summarize(callee *ir.Routine, depth int) (*Summary, error) {
	sig := callee.Signature()
	if s := p.cache.lookupOrPending(sig); s != nil {
		return s, nil
	}
	if p.config.MaxSummaryDepth >= 0 && depth >= p.config.MaxSummaryDepth {
		return nil, fmt.Errorf("summary depth limit %d reached at %s", p.config.MaxSummaryDepth, callee.Name)
	}
	p.cache.markPending(sig, newBottomSummary(len(callee.Params)))
	a := newAnalysis(callee, p, depth+1)
	if err := a.runForwardIterative(); err != nil {
		p.cache.abandon(sig)
		return nil, err
	}
	s := p.cache.publish(sig, a.summary())
	p.logger.Debugf("summarized %s: args=%v ret=%v", sig, s.Args, s.Ret)
	return s, nil
}
