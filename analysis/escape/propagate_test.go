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
	"testing"

	"github.com/awslabs/ar-escape/analysis/ir"
)

// sinkRoutine builds sink(env, a) { globalstore a; return nothing }.
func sinkRoutine(t *testing.T) *ir.Routine {
	b := ir.NewRoutineBuilder("sink", ir.Any, ir.Any)
	b.GlobalStore("registry", ir.Arg(1))
	b.ReturnNothing()
	return mustFinish(t, b)
}

// identRoutine builds ident(env, a) { return a }.
func identRoutine(t *testing.T) *ir.Routine {
	b := ir.NewRoutineBuilder("ident", ir.Any, ir.Any)
	b.Return(ir.Arg(1))
	return mustFinish(t, b)
}

func TestUnresolvedCall(t *testing.T) {
	b := ir.NewRoutineBuilder("f", ir.Any, ir.Ref("S"))
	v := b.Call("missing", ir.Any, ir.None, ir.Arg(1))
	b.ReturnNothing()
	res := analyze(t, nil, mustFinish(t, b))

	assertClass(t, res, ir.Arg(1), "AllEscape")
	assertClass(t, res, v, "AllEscape")
}

func TestArityMismatchDegrades(t *testing.T) {
	table := ir.NewRoutineTable()
	table.Add(sinkRoutine(t))

	b := ir.NewRoutineBuilder("f", ir.Any, ir.Ref("S"))
	b.Call("sink", ir.Bool, ir.None, ir.Arg(1), ir.Arg(1))
	b.ReturnNothing()
	res := analyze(t, table, mustFinish(t, b))

	assertClass(t, res, ir.Arg(1), "AllEscape")
}

// A callee that stores its argument globally taints the caller's operand with
// GlobalEscape, nothing more.
func TestSummaryPropagatesGlobal(t *testing.T) {
	table := ir.NewRoutineTable()
	table.Add(sinkRoutine(t))

	b := ir.NewRoutineBuilder("f", ir.Any, ir.Ref("S"))
	b.Call("sink", ir.Bool, ir.None, ir.Arg(1))
	b.ReturnNothing()
	res := analyze(t, table, mustFinish(t, b))

	assertClass(t, res, ir.Arg(1), "GlobalEscape")
}

// A pass-through callee makes the call's result an alias of the operand, so
// whatever happens to the result flows back onto the operand.
func TestPassThroughAliasing(t *testing.T) {
	table := ir.NewRoutineTable()
	table.Add(identRoutine(t))

	t.Run("result stored globally", func(t *testing.T) {
		b := ir.NewRoutineBuilder("f", ir.Any, ir.Ref("S"))
		v := b.Call("ident", ir.Any, ir.None, ir.Arg(1))
		b.GlobalStore("registry", v)
		b.ReturnNothing()
		res := analyze(t, table, mustFinish(t, b))

		assertClass(t, res, ir.Arg(1), "GlobalEscape")
	})

	t.Run("result stays local", func(t *testing.T) {
		b := ir.NewRoutineBuilder("f", ir.Any, ir.Ref("S"))
		v := b.Call("ident", ir.Any, ir.None, ir.Arg(1))
		b.Compare(v, ir.Arg(1))
		b.ReturnNothing()
		res := analyze(t, table, mustFinish(t, b))

		// Being returned from the callee is not by itself an escape here.
		assertClass(t, res, ir.Arg(1), "NoEscape")
	})
}

// With several candidate callees the caller sees their pointwise join.
func TestMultiCandidateDispatch(t *testing.T) {
	table := ir.NewRoutineTable()
	sinkID := table.Add(sinkRoutine(t))
	identID := table.Add(identRoutine(t))
	table.AddDispatch("process", sinkID, identID)

	b := ir.NewRoutineBuilder("f", ir.Any, ir.Ref("S"))
	v := b.Call("process", ir.Any, ir.None, ir.Arg(1))
	b.Return(v)
	res := analyze(t, table, mustFinish(t, b))

	a := ir.Arg(1)
	if !res.IsGlobalEscape(a) {
		t.Errorf("sink candidate's effect missing: %v", res.ClassificationOf(a))
	}
	if !res.IsReturnEscape(a) {
		t.Errorf("ident candidate's aliasing missing: %v", res.ClassificationOf(a))
	}
	if res.IsAllEscape(a) {
		t.Errorf("resolved dispatch should not degrade to top")
	}
}

// self(env, a) { globalstore a; call self(env, a); return nothing } must
// terminate and still report the direct effect.
func TestRecursiveRoutine(t *testing.T) {
	table := ir.NewRoutineTable()
	b := ir.NewRoutineBuilder("self", ir.Any, ir.Ref("S"))
	b.GlobalStore("registry", ir.Arg(1))
	b.Call("self", ir.Bool, ir.Arg(0), ir.Arg(1))
	b.ReturnNothing()
	r := mustFinish(t, b)
	table.Add(r)

	res := analyze(t, table, r)
	assertClass(t, res, ir.Arg(1), "GlobalEscape")
}

func TestMutualRecursionTerminates(t *testing.T) {
	table := ir.NewRoutineTable()

	even := ir.NewRoutineBuilder("even", ir.Any, ir.Ref("S"))
	even.Call("odd", ir.Bool, ir.Arg(0), ir.Arg(1))
	even.ReturnNothing()
	e := mustFinish(t, even)
	table.Add(e)

	odd := ir.NewRoutineBuilder("odd", ir.Any, ir.Ref("S"))
	odd.GlobalStore("registry", ir.Arg(1))
	odd.Call("even", ir.Bool, ir.Arg(0), ir.Arg(1))
	odd.ReturnNothing()
	table.Add(mustFinish(t, odd))

	res := analyze(t, table, e)
	if !res.IsGlobalEscape(ir.Arg(1)) {
		t.Errorf("effect through the cycle missing: %v", res.ClassificationOf(ir.Arg(1)))
	}
}

// A summary computed mid-cycle against a recursion placeholder must be
// superseded by the refined one, so a later caller of a cycle member sees the
// effects flowing through the whole cycle, not the placeholder-derived bottom.
func TestCycleSummaryRefinedForLaterCallers(t *testing.T) {
	table := ir.NewRoutineTable()

	even := ir.NewRoutineBuilder("even", ir.Any, ir.Ref("S"))
	even.Call("odd", ir.Bool, ir.Arg(0), ir.Arg(1))
	even.ReturnNothing()
	e := mustFinish(t, even)
	table.Add(e)

	odd := ir.NewRoutineBuilder("odd", ir.Any, ir.Ref("S"))
	odd.GlobalStore("registry", ir.Arg(1))
	odd.Call("even", ir.Bool, ir.Arg(0), ir.Arg(1))
	odd.ReturnNothing()
	table.Add(mustFinish(t, odd))

	state := NewProgramState(table, table, quietConfig())
	if _, err := state.AnalyzeRoutine(e); err != nil {
		t.Fatalf("analyzing cycle entry: %v", err)
	}
	cached := state.Cache().Lookup(e.Signature())
	if cached == nil {
		t.Fatalf("cycle entry summary was not published")
	}
	if !cached.Args[1].IsGlobalEscape() {
		t.Fatalf("cached summary for even misses the store through odd: %v", cached.Args[1])
	}

	h := ir.NewRoutineBuilder("h", ir.Any, ir.Ref("S"))
	h.Call("even", ir.Bool, ir.None, ir.Arg(1))
	h.ReturnNothing()
	res, err := state.AnalyzeRoutine(mustFinish(t, h))
	if err != nil {
		t.Fatalf("analyzing caller of cycle member: %v", err)
	}
	assertClass(t, res, ir.Arg(1), "GlobalEscape")
}

// When the summarization depth limit is hit the call degrades to the
// arbitrary-callee assumption instead of failing the whole analysis.
func TestDepthGuard(t *testing.T) {
	table := ir.NewRoutineTable()
	table.Add(sinkRoutine(t))

	b := ir.NewRoutineBuilder("f", ir.Any, ir.Ref("S"))
	b.Call("sink", ir.Bool, ir.None, ir.Arg(1))
	b.ReturnNothing()
	f := mustFinish(t, b)
	table.Add(f)

	cfg := quietConfig()
	cfg.MaxSummaryDepth = 0
	res, err := NewProgramState(table, table, cfg).AnalyzeRoutine(f)
	if err != nil {
		t.Fatalf("analysis should degrade, not fail: %v", err)
	}
	assertClass(t, res, ir.Arg(1), "AllEscape")
}

func TestSummaryCached(t *testing.T) {
	table := ir.NewRoutineTable()
	sink := sinkRoutine(t)
	table.Add(sink)

	b := ir.NewRoutineBuilder("f", ir.Any, ir.Ref("S"))
	b.Call("sink", ir.Bool, ir.None, ir.Arg(1))
	b.Call("sink", ir.Bool, ir.None, ir.Arg(1))
	b.ReturnNothing()
	f := mustFinish(t, b)

	state := NewProgramState(table, table, quietConfig())
	if _, err := state.AnalyzeRoutine(f); err != nil {
		t.Fatalf("analyzing caller: %v", err)
	}

	s := state.Cache().Lookup(sink.Signature())
	if s == nil {
		t.Fatalf("callee summary was not published")
	}
	if !s.Args[1].IsGlobalEscape() {
		t.Errorf("cached summary misses the global store: %v", s.Args[1])
	}
	// The caller itself is published too.
	if got := state.Cache().Len(); got != 2 {
		t.Errorf("expected 2 published summaries, got %d", got)
	}
}

func TestSummaryReusedAcrossRuns(t *testing.T) {
	table := ir.NewRoutineTable()
	table.Add(sinkRoutine(t))

	state := NewProgramState(table, table, quietConfig())
	for i := 0; i < 2; i++ {
		b := ir.NewRoutineBuilder("f", ir.Any, ir.Ref("S"))
		b.Call("sink", ir.Bool, ir.None, ir.Arg(1))
		b.ReturnNothing()
		res, err := state.AnalyzeRoutine(mustFinish(t, b))
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		assertClass(t, res, ir.Arg(1), "GlobalEscape")
	}
}
