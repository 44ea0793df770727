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

import "github.com/awslabs/ar-escape/analysis/ir"

// state is the escape state store of one analysis run: one lattice element
// per value of the routine, flow-insensitive. Elements only move up the
// lattice; join reports whether the stored element changed, which is what
// drives the solver to a fixpoint.
//
// Values of bits type are exempt: they cannot carry a heap reference, so they
// are pinned at bottom and never receive propagated escape information. The
// exemption is decided once per value from its static type and cached.
type state struct {
	routine *ir.Routine
	elems   map[ir.Value]Escape
	exempt  map[ir.Value]bool
}

func newState(r *ir.Routine) *state {
	return &state{
		routine: r,
		elems:   make(map[ir.Value]Escape, r.NumValues()),
		exempt:  make(map[ir.Value]bool, r.NumValues()),
	}
}

// get returns the element of v, bottom for values never joined.
func (s *state) get(v ir.Value) Escape {
	return s.elems[v]
}

// join merges e into the element of v and reports whether the stored element
// changed. Exempt values and the absent value are left untouched.
func (s *state) join(v ir.Value, e Escape) (changed bool) {
	if v.IsNone() || s.isExempt(v) {
		return false
	}
	old := s.elems[v]
	merged := old.Join(e)
	if merged.Equal(old) {
		return false
	}
	s.elems[v] = merged
	return true
}

// isExempt reports whether v is pinned at bottom because its static type
// admits no heap reference.
func (s *state) isExempt(v ir.Value) bool {
	if ex, ok := s.exempt[v]; ok {
		return ex
	}
	ex := s.routine.TypeOf(v).IsBitsType()
	s.exempt[v] = ex
	return ex
}
