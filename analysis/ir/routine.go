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

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-escape/internal/funcutil"
)

// Signature is the normalized key identifying a routine for summary caching:
// routine identity plus bit-erased argument shapes.
type Signature string

// Block is one basic block of a routine: a list of instruction indexes in
// program order plus the block indexes of its control-flow neighbors.
type Block struct {
	Index  int
	Instrs []int
	Succs  []int
	Preds  []int
}

// Routine is one analyzable routine body: formal argument slot types
// (slot 0 included), the instruction slice in program order, and the basic
// blocks partitioning it.
type Routine struct {
	Name   string
	Params []*Type
	Instrs []Instruction
	Blocks []Block
}

// Signature returns the summary-cache key for r.
func (r *Routine) Signature() Signature {
	shapes := funcutil.Map(r.Params, func(t *Type) string { return t.shapeKey() })
	return Signature(r.Name + "(" + strings.Join(shapes, ",") + ")")
}

// NumValues returns the number of value identifiers in r: one per argument
// slot and one per instruction result.
func (r *Routine) NumValues() int {
	return len(r.Params) + len(r.Instrs)
}

// TypeOf returns the static type of v, nil for None or for instructions
// without a meaningful result.
func (r *Routine) TypeOf(v Value) *Type {
	switch v.Kind {
	case ValueArg:
		if v.Index < len(r.Params) {
			return r.Params[v.Index]
		}
	case ValueInstr:
		if v.Index < len(r.Instrs) {
			return r.Instrs[v.Index].Type
		}
	}
	return nil
}

// Validate checks the producer contract: operand references must resolve to
// argument slots or earlier instruction results, block structure must be
// consistent, and instruction arities must match their kinds. A routine that
// fails validation must be rejected before analysis.
//
//gocyclo:ignore
func (r *Routine) Validate() error {
	if len(r.Params) == 0 {
		return fmt.Errorf("routine %s has no argument slots; slot 0 is required", r.Name)
	}
	inBlock := make([]bool, len(r.Instrs))
	for bi := range r.Blocks {
		b := &r.Blocks[bi]
		if b.Index != bi {
			return fmt.Errorf("routine %s: block %d recorded as index %d", r.Name, bi, b.Index)
		}
		for _, i := range b.Instrs {
			if i < 0 || i >= len(r.Instrs) {
				return fmt.Errorf("routine %s: block %d references instruction %d out of range", r.Name, bi, i)
			}
			if inBlock[i] {
				return fmt.Errorf("routine %s: instruction %d appears in more than one block", r.Name, i)
			}
			inBlock[i] = true
		}
		for _, s := range b.Succs {
			if s < 0 || s >= len(r.Blocks) {
				return fmt.Errorf("routine %s: block %d has successor %d out of range", r.Name, bi, s)
			}
		}
		for _, p := range b.Preds {
			if p < 0 || p >= len(r.Blocks) {
				return fmt.Errorf("routine %s: block %d has predecessor %d out of range", r.Name, bi, p)
			}
		}
	}
	for i := range inBlock {
		if !inBlock[i] {
			return fmt.Errorf("routine %s: instruction %d belongs to no block", r.Name, i)
		}
	}
	for i := range r.Instrs {
		if err := r.validateInstr(i); err != nil {
			return err
		}
	}
	return nil
}

func (r *Routine) validateInstr(i int) error {
	instr := &r.Instrs[i]
	for oi, op := range instr.Operands {
		switch op.Kind {
		case ValueNone:
			if instr.Op != OpCall || oi != 0 {
				return fmt.Errorf("routine %s: instruction %d operand %d is none outside a call slot 0", r.Name, i, oi)
			}
		case ValueArg:
			if op.Index < 0 || op.Index >= len(r.Params) {
				return fmt.Errorf("routine %s: instruction %d references argument slot %d out of range", r.Name, i, op.Index)
			}
		case ValueInstr:
			if op.Index < 0 || op.Index >= i {
				return fmt.Errorf("routine %s: instruction %d references result %%%d which is not an earlier instruction", r.Name, i, op.Index)
			}
		}
	}
	arityErr := func(want string) error {
		return fmt.Errorf("routine %s: %s instruction %d has %d operands, want %s",
			r.Name, instr.Op, i, len(instr.Operands), want)
	}
	switch instr.Op {
	case OpCall:
		if instr.Site == nil {
			return fmt.Errorf("routine %s: call instruction %d has no call site", r.Name, i)
		}
		if len(instr.Operands) == 0 {
			return arityErr("at least 1")
		}
	case OpReturn:
		if len(instr.Operands) > 1 {
			return arityErr("at most 1")
		}
	case OpThrow, OpGlobalStore, OpFieldLoad, OpSizeOf, OpIsDefined:
		if len(instr.Operands) != 1 {
			return arityErr("1")
		}
	case OpCompare:
		if len(instr.Operands) != 2 {
			return arityErr("2")
		}
	case OpSelect:
		if len(instr.Operands) != 3 {
			return arityErr("3 (condition, consequent, alternative)")
		}
	}
	return nil
}

// RoutineBuilder incrementally constructs a Routine, maintaining the
// instruction/block bookkeeping that the flat representation requires.
type RoutineBuilder struct {
	r   *Routine
	cur int
}

// NewRoutineBuilder starts a routine with the given argument slot types.
// Slot 0 (the closure environment) must be included by the caller.
func NewRoutineBuilder(name string, params ...*Type) *RoutineBuilder {
	b := &RoutineBuilder{
		r:   &Routine{Name: name, Params: params},
		cur: -1,
	}
	b.Block()
	return b
}

// Block starts a new basic block and makes it current. Returns its index.
func (b *RoutineBuilder) Block() int {
	idx := len(b.r.Blocks)
	b.r.Blocks = append(b.r.Blocks, Block{Index: idx})
	b.cur = idx
	return idx
}

// Edge records a control-flow edge between two blocks.
func (b *RoutineBuilder) Edge(from, to int) {
	b.r.Blocks[from].Succs = append(b.r.Blocks[from].Succs, to)
	b.r.Blocks[to].Preds = append(b.r.Blocks[to].Preds, from)
}

// Emit appends instr to the current block and returns its result value.
func (b *RoutineBuilder) Emit(instr Instruction) Value {
	idx := len(b.r.Instrs)
	b.r.Instrs = append(b.r.Instrs, instr)
	b.r.Blocks[b.cur].Instrs = append(b.r.Blocks[b.cur].Instrs, idx)
	return Res(idx)
}

// Call emits a call to the named target. Operand 0 is the callee environment
// (use None for constant callees); the remaining operands fill the callee's
// argument slots in order.
func (b *RoutineBuilder) Call(callee string, typ *Type, operands ...Value) Value {
	return b.Emit(Instruction{
		Op:       OpCall,
		Operands: operands,
		Type:     typ,
		Site:     &CallSite{Callee: callee},
	})
}

// Return emits a return of v.
func (b *RoutineBuilder) Return(v Value) Value {
	return b.Emit(Instruction{Op: OpReturn, Operands: []Value{v}})
}

// ReturnNothing emits a return of a constant.
func (b *RoutineBuilder) ReturnNothing() Value {
	return b.Emit(Instruction{Op: OpReturn})
}

// Throw emits a throw of v.
func (b *RoutineBuilder) Throw(v Value) Value {
	return b.Emit(Instruction{Op: OpThrow, Operands: []Value{v}})
}

// GlobalStore emits a store of v into the named process-wide location.
func (b *RoutineBuilder) GlobalStore(global string, v Value) Value {
	return b.Emit(Instruction{Op: OpGlobalStore, Operands: []Value{v}, Global: global})
}

// FieldLoad emits a field read on obj producing a view of the given type.
func (b *RoutineBuilder) FieldLoad(obj Value, typ *Type) Value {
	return b.Emit(Instruction{Op: OpFieldLoad, Operands: []Value{obj}, Type: typ})
}

// New emits an aggregate construction from the given operands.
func (b *RoutineBuilder) New(typ *Type, operands ...Value) Value {
	return b.Emit(Instruction{Op: OpNew, Operands: operands, Type: typ})
}

// Compare emits a reference-equality test.
func (b *RoutineBuilder) Compare(x, y Value) Value {
	return b.Emit(Instruction{Op: OpCompare, Operands: []Value{x, y}, Type: Bool})
}

// SizeOf emits a size query on v.
func (b *RoutineBuilder) SizeOf(v Value) Value {
	return b.Emit(Instruction{Op: OpSizeOf, Operands: []Value{v}, Type: Int64})
}

// Select emits a binary conditional select between x and y on cond.
func (b *RoutineBuilder) Select(kind CondKind, cond, x, y Value, typ *Type) Value {
	return b.Emit(Instruction{Op: OpSelect, Operands: []Value{cond, x, y}, Type: typ, Cond: kind})
}

// IsDefined emits a definedness check on v.
func (b *RoutineBuilder) IsDefined(v Value) Value {
	return b.Emit(Instruction{Op: OpIsDefined, Operands: []Value{v}, Type: Bool})
}

// Opaque emits an unmodeled instruction over the given operands.
func (b *RoutineBuilder) Opaque(typ *Type, operands ...Value) Value {
	return b.Emit(Instruction{Op: OpOpaque, Operands: operands, Type: typ})
}

// Finish validates the routine under construction and returns it.
func (b *RoutineBuilder) Finish() (*Routine, error) {
	if err := b.r.Validate(); err != nil {
		return nil, err
	}
	return b.r, nil
}
