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

	"github.com/awslabs/ar-escape/analysis/ir"
)

// Result is the finished, read-only analysis result for one routine. It is
// detached from the solver: the classifications it holds never change after
// construction.
type Result struct {
	routine *ir.Routine
	elems   map[ir.Value]Escape
	summary *Summary
}

func newResult(r *ir.Routine, st *state, summary *Summary) *Result {
	elems := make(map[ir.Value]Escape, len(st.elems))
	for v, e := range st.elems {
		elems[v] = e
	}
	return &Result{routine: r, elems: elems, summary: summary}
}

// Routine returns the analyzed routine.
func (r *Result) Routine() *ir.Routine {
	return r.routine
}

// ClassificationOf returns the lattice element of v, bottom when v never
// received escape information.
func (r *Result) ClassificationOf(v ir.Value) Escape {
	return r.elems[v]
}

// ArgEscape returns the element of argument slot i.
func (r *Result) ArgEscape(i int) Escape {
	return r.elems[ir.Arg(i)]
}

// Summary returns the routine's call summary, usable by other analyses and
// cached for reuse across runs.
func (r *Result) Summary() *Summary {
	return r.summary
}

// IsNoEscape reports whether v stayed at the lattice bottom.
func (r *Result) IsNoEscape(v ir.Value) bool {
	return r.elems[v].IsNoEscape()
}

// IsReturnEscape reports whether v may flow out of an exit point.
func (r *Result) IsReturnEscape(v ir.Value) bool {
	return r.elems[v].IsReturnEscape()
}

// IsThrownEscape reports whether v may propagate via an exception.
func (r *Result) IsThrownEscape(v ir.Value) bool {
	return r.elems[v].IsThrownEscape()
}

// IsGlobalEscape reports whether v may be retained in process-wide state.
func (r *Result) IsGlobalEscape(v ir.Value) bool {
	return r.elems[v].IsGlobalEscape()
}

// IsAllEscape reports whether v reached the lattice top.
func (r *Result) IsAllEscape(v ir.Value) bool {
	return r.elems[v].IsAllEscape()
}

// Classifications returns a stable rendering of every value's element, keyed
// by the value's string form. Useful for reporting and for comparing runs.
func (r *Result) Classifications() map[string]string {
	out := make(map[string]string, r.routine.NumValues())
	for i := range r.routine.Params {
		out[ir.Arg(i).String()] = r.ClassificationOf(ir.Arg(i)).String()
	}
	for i := range r.routine.Instrs {
		out[ir.Res(i).String()] = r.ClassificationOf(ir.Res(i)).String()
	}
	return out
}

func (r *Result) String() string {
	return fmt.Sprintf("escape result for %s (%d values)", r.routine.Name, r.routine.NumValues())
}
