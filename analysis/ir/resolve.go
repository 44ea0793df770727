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

package ir

// RoutineID identifies a routine known to the resolution oracle.
type RoutineID string

// Resolver is the method-resolution oracle. ResolveCandidates returns the
// statically narrowed set of candidate routines for a call site. ok is false
// when the dispatch cannot be narrowed to a finite set at all; the analysis
// must then fall back to its conservative assumption.
type Resolver interface {
	ResolveCandidates(site *CallSite) (candidates []RoutineID, ok bool)
}

// RoutineSource provides routine bodies for resolved candidates. A nil result
// means no body is available and the caller must degrade conservatively.
type RoutineSource interface {
	Routine(id RoutineID) *Routine
}

// RoutineTable is a map-backed Resolver and RoutineSource. By default a call
// site resolves to the single routine registered under its callee name;
// AddDispatch overrides that with an explicit candidate set for union-typed
// dispatch. Unregistered callees are unresolvable.
type RoutineTable struct {
	routines map[RoutineID]*Routine
	dispatch map[string][]RoutineID
	order    []RoutineID
}

// NewRoutineTable returns an empty routine table.
func NewRoutineTable() *RoutineTable {
	return &RoutineTable{
		routines: make(map[RoutineID]*Routine),
		dispatch: make(map[string][]RoutineID),
	}
}

// Add registers a routine body under its name and returns its id.
func (t *RoutineTable) Add(r *Routine) RoutineID {
	id := RoutineID(r.Name)
	if _, seen := t.routines[id]; !seen {
		t.order = append(t.order, id)
	}
	t.routines[id] = r
	return id
}

// AddDispatch registers an explicit candidate set for the given callee name.
func (t *RoutineTable) AddDispatch(callee string, candidates ...RoutineID) {
	t.dispatch[callee] = candidates
}

// IDs returns the registered routine ids in insertion order.
func (t *RoutineTable) IDs() []RoutineID {
	ids := make([]RoutineID, len(t.order))
	copy(ids, t.order)
	return ids
}

// Routine implements RoutineSource.
func (t *RoutineTable) Routine(id RoutineID) *Routine {
	return t.routines[id]
}

// ResolveCandidates implements Resolver.
func (t *RoutineTable) ResolveCandidates(site *CallSite) ([]RoutineID, bool) {
	if site == nil {
		return nil, false
	}
	if set, ok := t.dispatch[site.Callee]; ok {
		return set, true
	}
	id := RoutineID(site.Callee)
	if _, ok := t.routines[id]; ok {
		return []RoutineID{id}, true
	}
	return nil, false
}
