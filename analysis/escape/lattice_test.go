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

import "testing"

// sampleElements covers every tag and a few mixed elements.
func sampleElements() []Escape {
	return []Escape{
		NoEscape(),
		ThrownEscape(),
		ReturnEscape(0),
		ReturnEscape(3),
		ReturnEscape(0).Join(ReturnEscape(3)),
		GlobalEscape(),
		ThrownEscape().Join(ReturnEscape(1)),
		GlobalEscape().Join(ThrownEscape()),
		AllEscape(),
	}
}

func TestJoinCommutative(t *testing.T) {
	for _, a := range sampleElements() {
		for _, b := range sampleElements() {
			if !a.Join(b).Equal(b.Join(a)) {
				t.Errorf("join not commutative for %v and %v", a, b)
			}
		}
	}
}

func TestJoinAssociative(t *testing.T) {
	elems := sampleElements()
	for _, a := range elems {
		for _, b := range elems {
			for _, c := range elems {
				left := a.Join(b).Join(c)
				right := a.Join(b.Join(c))
				if !left.Equal(right) {
					t.Errorf("join not associative for %v, %v, %v: %v != %v", a, b, c, left, right)
				}
			}
		}
	}
}

func TestJoinIdempotent(t *testing.T) {
	for _, a := range sampleElements() {
		if !a.Join(a).Equal(a) {
			t.Errorf("join not idempotent for %v", a)
		}
	}
}

func TestJoinBottomIsIdentity(t *testing.T) {
	for _, a := range sampleElements() {
		if !a.Join(NoEscape()).Equal(a) {
			t.Errorf("joining bottom changed %v", a)
		}
	}
}

func TestJoinTopIsAbsorbing(t *testing.T) {
	for _, a := range sampleElements() {
		if !a.Join(AllEscape()).IsAllEscape() {
			t.Errorf("top not absorbing for %v", a)
		}
		if !AllEscape().Join(a).Equal(AllEscape()) {
			t.Errorf("joining %v onto top changed it", a)
		}
	}
}

func TestJoinDoesNotMutate(t *testing.T) {
	a := ReturnEscape(1)
	b := ReturnEscape(2)
	_ = a.Join(b)
	if got := a.ReturnSites(); len(got) != 1 || got[0] != 1 {
		t.Errorf("join mutated its receiver: sites %v", got)
	}
	if got := b.ReturnSites(); len(got) != 1 || got[0] != 2 {
		t.Errorf("join mutated its argument: sites %v", got)
	}
}

func TestReturnSiteUnion(t *testing.T) {
	a := ReturnEscape(0).Join(ReturnEscape(2)).Join(ReturnEscape(2))
	sites := a.ReturnSites()
	if len(sites) != 2 || sites[0] != 0 || sites[1] != 2 {
		t.Errorf("expected return sites [0 2], got %v", sites)
	}
}

func TestPredicates(t *testing.T) {
	if !NoEscape().IsNoEscape() {
		t.Errorf("bottom is not NoEscape")
	}
	r := ReturnEscape(1)
	if !r.IsReturnEscape() || r.IsThrownEscape() || r.IsGlobalEscape() || r.IsAllEscape() || r.IsNoEscape() {
		t.Errorf("wrong predicates for %v", r)
	}
	th := ThrownEscape()
	if !th.IsThrownEscape() || th.IsReturnEscape() || th.IsGlobalEscape() {
		t.Errorf("wrong predicates for %v", th)
	}
	g := GlobalEscape()
	if !g.IsGlobalEscape() || g.IsAllEscape() || g.IsNoEscape() {
		t.Errorf("wrong predicates for %v", g)
	}
	// Top subsumes every category.
	top := AllEscape()
	if !top.IsAllEscape() || !top.IsGlobalEscape() || !top.IsThrownEscape() || !top.IsReturnEscape() || top.IsNoEscape() {
		t.Errorf("wrong predicates for %v", top)
	}
}

func TestWithoutReturn(t *testing.T) {
	e := ReturnEscape(2).Join(GlobalEscape())
	stripped := e.withoutReturn()
	if stripped.IsReturnEscape() || !stripped.IsGlobalEscape() {
		t.Errorf("withoutReturn gave %v", stripped)
	}
	if !AllEscape().withoutReturn().IsAllEscape() {
		t.Errorf("withoutReturn weakened top")
	}
}

func TestString(t *testing.T) {
	cases := map[string]Escape{
		"NoEscape":                     NoEscape(),
		"AllEscape":                    AllEscape(),
		"GlobalEscape":                 GlobalEscape(),
		"ThrownEscape":                 ThrownEscape(),
		"ReturnEscape{0,2}":            ReturnEscape(0).Join(ReturnEscape(2)),
		"ReturnEscape{1,257}":          ReturnEscape(257).Join(ReturnEscape(1)),
		"ReturnEscape{1}|GlobalEscape": ReturnEscape(1).Join(GlobalEscape()),
	}
	for want, e := range cases {
		if got := e.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
