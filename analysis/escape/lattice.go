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
	"strconv"
	"strings"

	"github.com/awslabs/ar-escape/internal/funcutil"
	"golang.org/x/tools/container/intsets"
)

// Escape is one element of the escape lattice:
//
//	NoEscape  ⊑  ThrownEscape, ReturnEscape  ⊑  GlobalEscape  ⊑  AllEscape
//
// The element is represented as independent components (a return-site set, a
// thrown flag and a global flag) so that the join is component-wise (boolean
// or plus set union) and monotone by construction. AllEscape is the absorbing
// top; once a component reaches it, joins are no-ops.
//
// Escape values are immutable: the return-site set is never mutated after an
// element is built, and Join allocates a fresh set when it must grow one.
type Escape struct {
	// returns holds the exit points of the current routine the value may flow
	// out of. nil when the value is not returned. Never mutated once stored.
	returns *intsets.Sparse

	thrown bool
	global bool
	all    bool
}

// NoEscape returns the lattice bottom.
func NoEscape() Escape {
	return Escape{}
}

// ThrownEscape returns the element of a value that may reach a handler or the
// caller via an exception.
func ThrownEscape() Escape {
	return Escape{thrown: true}
}

// ReturnEscape returns the element of a value that may flow out of the
// routine at the given exit point.
func ReturnEscape(site int) Escape {
	s := new(intsets.Sparse)
	s.Insert(site)
	return Escape{returns: s}
}

// GlobalEscape returns the element of a value that may be retained in
// process-wide state.
func GlobalEscape() Escape {
	return Escape{global: true}
}

// AllEscape returns the lattice top: the value may propagate anywhere. The
// return-site set is dropped since it carries no information at top.
func AllEscape() Escape {
	return Escape{thrown: true, global: true, all: true}
}

// Join returns the least upper bound of e and o. Join is total, commutative,
// associative, idempotent and monotone, and never mutates its receiver or
// argument.
func (e Escape) Join(o Escape) Escape {
	if e.all || o.all {
		return AllEscape()
	}
	var r *intsets.Sparse
	switch {
	case o.returns == nil:
		r = e.returns
	case e.returns == nil:
		r = o.returns
	case o.returns.SubsetOf(e.returns):
		r = e.returns
	default:
		r = new(intsets.Sparse)
		r.Copy(e.returns)
		r.UnionWith(o.returns)
	}
	return Escape{
		returns: r,
		thrown:  e.thrown || o.thrown,
		global:  e.global || o.global,
	}
}

// Equal reports whether e and o are the same lattice element. Used for
// fixpoint detection.
func (e Escape) Equal(o Escape) bool {
	if e.all != o.all || e.thrown != o.thrown || e.global != o.global {
		return false
	}
	return returnsEqual(e.returns, o.returns)
}

func returnsEqual(a, b *intsets.Sparse) bool {
	switch {
	case a == b:
		return true
	case a == nil:
		return b.IsEmpty()
	case b == nil:
		return a.IsEmpty()
	default:
		return a.Equals(b)
	}
}

// IsNoEscape reports whether e is the lattice bottom.
func (e Escape) IsNoEscape() bool {
	return !e.all && !e.thrown && !e.global && !e.hasReturns()
}

// IsReturnEscape reports whether the value may flow out of the routine
// through a return.
func (e Escape) IsReturnEscape() bool {
	return e.all || e.hasReturns()
}

// IsThrownEscape reports whether the value may propagate via an exception.
func (e Escape) IsThrownEscape() bool {
	return e.all || e.thrown
}

// IsGlobalEscape reports whether the value may be retained in process-wide
// state.
func (e Escape) IsGlobalEscape() bool {
	return e.all || e.global
}

// IsAllEscape reports whether e is the lattice top.
func (e Escape) IsAllEscape() bool {
	return e.all
}

// ReturnSites returns the sorted exit points recorded on e. Empty for
// AllEscape, whose return-site set is unconstrained.
func (e Escape) ReturnSites() []int {
	if e.returns == nil {
		return nil
	}
	return e.returns.AppendTo(nil)
}

func (e Escape) hasReturns() bool {
	return e.returns != nil && !e.returns.IsEmpty()
}

// withoutReturn strips the return component of e. Used when a callee summary
// element crosses the call boundary: being returned from the callee is not by
// itself an escape in the caller.
func (e Escape) withoutReturn() Escape {
	if e.all {
		return e
	}
	return Escape{thrown: e.thrown, global: e.global}
}

func (e Escape) String() string {
	if e.all {
		return "AllEscape"
	}
	var parts []string
	if e.hasReturns() {
		sites := funcutil.Map(e.returns.AppendTo(nil), strconv.Itoa)
		parts = append(parts, "ReturnEscape{"+strings.Join(sites, ",")+"}")
	}
	if e.thrown {
		parts = append(parts, "ThrownEscape")
	}
	if e.global {
		parts = append(parts, "GlobalEscape")
	}
	if len(parts) == 0 {
		return "NoEscape"
	}
	return strings.Join(parts, "|")
}
