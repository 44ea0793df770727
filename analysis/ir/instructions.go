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

// Op is the closed set of instruction kinds the escape analysis models. Any
// kind outside this set must be lowered to OpOpaque by the producer; the
// analysis treats opaque instructions with its conservative fallback.
type Op uint8

const (
	// OpOpaque is a foreign or otherwise unmodeled instruction. The zero Op is
	// deliberately opaque so that a partially constructed instruction is
	// handled conservatively rather than silently ignored.
	OpOpaque Op = iota

	// OpCall calls the routine designated by the instruction's CallSite.
	// Operand i corresponds to callee argument slot i; operand 0 is the
	// callee's closure environment (None for constant callees).
	OpCall

	// OpReturn exits the routine, with the single operand as return value.
	// A return with no operands returns a constant.
	OpReturn

	// OpThrow raises its operand as an exception.
	OpThrow

	// OpGlobalStore stores its operand into the process-wide location named
	// by Global.
	OpGlobalStore

	// OpFieldLoad reads a field of its operand; the instruction type is the
	// static type of the field view.
	OpFieldLoad

	// OpNew builds an aggregate from its operands.
	OpNew

	// OpCompare is a reference-equality test between its two operands.
	OpCompare

	// OpSizeOf is a size/introspection query on its operand.
	OpSizeOf

	// OpSelect picks one of operands 1 and 2 depending on the condition
	// operand 0. Cond records whether the condition folded to a constant.
	OpSelect

	// OpIsDefined observes whether its operand was assigned along the current
	// path; it does not observe the contents.
	OpIsDefined
)

var opNames = map[Op]string{
	OpOpaque:      "opaque",
	OpCall:        "call",
	OpReturn:      "return",
	OpThrow:       "throw",
	OpGlobalStore: "globalstore",
	OpFieldLoad:   "fieldload",
	OpNew:         "new",
	OpCompare:     "compare",
	OpSizeOf:      "sizeof",
	OpSelect:      "select",
	OpIsDefined:   "isdefined",
}

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return "opaque"
}

// CondKind records what the upstream compiler knows about a select condition.
type CondKind uint8

const (
	// CondUnknown means the condition is not statically resolvable; either
	// operand may be selected.
	CondUnknown CondKind = iota

	// CondTrue means the condition folded to true; operand 1 is selected.
	CondTrue

	// CondFalse means the condition folded to false; operand 2 is selected.
	CondFalse
)

// CallSite carries what the instruction stream knows about a call target.
// Resolution to candidate routines is the Resolver's job.
type CallSite struct {
	// Callee is the textual call target as written at the call site.
	Callee string
}

// Instruction is one typed instruction of the input stream. The instruction's
// result value is identified by its position in the routine's program order.
type Instruction struct {
	Op       Op
	Operands []Value

	// Type is the static type of the instruction result, nil when the
	// instruction produces no meaningful value.
	Type *Type

	// Site is set on OpCall instructions only.
	Site *CallSite

	// Cond is meaningful on OpSelect instructions only.
	Cond CondKind

	// Global names the target location of an OpGlobalStore.
	Global string
}
