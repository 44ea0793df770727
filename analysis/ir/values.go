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

import "fmt"

// ValueKind distinguishes the two disjoint kinds of value identifiers.
type ValueKind uint8

const (
	// ValueNone is the zero Value. It is only legal as slot 0 of a call whose
	// callee is a compile-time constant with no closure environment.
	ValueNone ValueKind = iota

	// ValueArg identifies a formal argument slot. Slot 0 is the callee's own
	// closure/self environment.
	ValueArg

	// ValueInstr identifies the result of the instruction at the given
	// position in program order.
	ValueInstr
)

// Value identifies one value of the routine under analysis. Values are
// immutable and stable for the lifetime of one analysis run, and usable as
// map keys.
type Value struct {
	Kind  ValueKind
	Index int
}

// None is the absent value, used for the slot-0 operand of direct calls to
// constant callees.
var None = Value{}

// Arg returns the identifier of formal argument slot i.
func Arg(i int) Value {
	return Value{Kind: ValueArg, Index: i}
}

// Res returns the identifier of the result of instruction i.
func Res(i int) Value {
	return Value{Kind: ValueInstr, Index: i}
}

// IsNone reports whether v is the absent value.
func (v Value) IsNone() bool {
	return v.Kind == ValueNone
}

func (v Value) String() string {
	switch v.Kind {
	case ValueArg:
		return fmt.Sprintf("arg%d", v.Index)
	case ValueInstr:
		return fmt.Sprintf("%%%d", v.Index)
	default:
		return "none"
	}
}
