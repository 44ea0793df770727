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

// transferInstruction computes one instruction's effect on the escape state.
// "Transfer function" is interpreted as in the monotone framework: the state
// only moves up the lattice and the returned flag reports whether it moved.
//
// Escape information flows from a result to its operands (a value is at least
// as escaped as anything built from it or selected through it), so the effect
// of an instruction can change when a later instruction raises its result;
// the solver re-runs transfer functions until nothing changes.
//
//gocyclo:ignore
func (a *analysis) transferInstruction(idx int) (changed bool) {
	instr := &a.routine.Instrs[idx]
	res := ir.Res(idx)
	switch instr.Op {
	case ir.OpReturn:
		// The returned value may flow out of this exit point. Back-propagation
		// onto a call argument aliased by the returned value happens when the
		// call instruction maps its callee summary, using the state of res.
		if len(instr.Operands) == 1 {
			return a.state.join(instr.Operands[0], ReturnEscape(idx))
		}
		return false

	case ir.OpThrow:
		return a.state.join(instr.Operands[0], ThrownEscape())

	case ir.OpGlobalStore:
		// Exempt values are skipped inside join: a bits value stored globally
		// still cannot carry a reference.
		return a.state.join(instr.Operands[0], GlobalEscape())

	case ir.OpFieldLoad:
		obj := instr.Operands[0]
		if !a.routine.TypeOf(obj).ShapeGuaranteed() {
			// The access has an implicit failure path; the failure paths are
			// not modeled separately.
			changed = a.state.join(obj, ThrownEscape())
		}
		if instr.Type.IsBitsType() {
			// A bits-typed field view stays at bottom; escape of the loaded
			// view cannot taint the container through it.
			return changed
		}
		// The loaded view aliases part of the object's referent, so the
		// object is at least as escaped as the view.
		return a.state.join(obj, a.state.get(res)) || changed

	case ir.OpNew:
		// The aggregate starts at bottom; whatever later happens to it is
		// pushed down onto its non-exempt components here, on re-visits.
		resEsc := a.state.get(res)
		for _, op := range instr.Operands {
			if a.state.join(op, resEsc) {
				changed = true
			}
		}
		return changed

	case ir.OpCompare, ir.OpIsDefined:
		// Observations with no aliasing of the inputs.
		return false

	case ir.OpSizeOf:
		if !a.routine.TypeOf(instr.Operands[0]).ShapeGuaranteed() {
			return a.state.join(instr.Operands[0], ThrownEscape())
		}
		return false

	case ir.OpSelect:
		resEsc := a.state.get(res)
		x, y := instr.Operands[1], instr.Operands[2]
		switch instr.Cond {
		case ir.CondTrue:
			return a.state.join(x, resEsc)
		case ir.CondFalse:
			return a.state.join(y, resEsc)
		default:
			changed = a.state.join(x, resEsc)
			return a.state.join(y, resEsc) || changed
		}

	case ir.OpCall:
		return a.transferCall(idx, instr)

	default:
		// Opaque or unmodeled instruction. Everything involved may propagate
		// anywhere.
		return a.callUnknown(instr.Operands, res)
	}
}

// callUnknown applies the arbitrary-callee assumption: every operand and the
// result may escape anywhere.
func (a *analysis) callUnknown(operands []ir.Value, result ir.Value) (changed bool) {
	for _, op := range operands {
		if a.state.join(op, AllEscape()) {
			changed = true
		}
	}
	return a.state.join(result, AllEscape()) || changed
}
