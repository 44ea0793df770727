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
	"strings"

	"github.com/awslabs/ar-escape/internal/funcutil"
)

// TypeKind discriminates the small closed set of type shapes the analysis
// needs to distinguish. Anything finer-grained stays in the upstream compiler.
type TypeKind uint8

const (
	// KindBits is a plain scalar type that cannot hold a heap reference
	// (numbers, booleans, immutable by-value data).
	KindBits TypeKind = iota

	// KindRef is a concrete heap-referencing type.
	KindRef

	// KindAny is the unconstrained top type; its values may reference anything
	// and their shape is not statically guaranteed.
	KindAny

	// KindTuple is an immutable aggregate of element types.
	KindTuple

	// KindUnion is a statically narrowed union of element types.
	KindUnion
)

// Type is the static type attached to argument slots and instruction results.
// Types are immutable after construction and compared by pointer identity
// except where shape keys are involved.
type Type struct {
	Name  string
	Kind  TypeKind
	Elems []*Type
}

// Predeclared types shared by producers and tests.
var (
	Bool    = &Type{Name: "Bool", Kind: KindBits}
	Int64   = &Type{Name: "Int64", Kind: KindBits}
	Float64 = &Type{Name: "Float64", Kind: KindBits}
	String  = &Type{Name: "String", Kind: KindRef}
	Any     = &Type{Name: "Any", Kind: KindAny}
)

// Bits returns a new scalar type that cannot carry a heap reference.
func Bits(name string) *Type {
	return &Type{Name: name, Kind: KindBits}
}

// Ref returns a new concrete heap-referencing type.
func Ref(name string) *Type {
	return &Type{Name: name, Kind: KindRef}
}

// TupleOf returns the tuple of the given element types.
func TupleOf(elems ...*Type) *Type {
	names := funcutil.Map(elems, func(t *Type) string { return t.Name })
	return &Type{
		Name:  "Tuple{" + strings.Join(names, ",") + "}",
		Kind:  KindTuple,
		Elems: elems,
	}
}

// UnionOf returns the union of the given element types.
func UnionOf(elems ...*Type) *Type {
	names := funcutil.Map(elems, func(t *Type) string { return t.Name })
	return &Type{
		Name:  "Union{" + strings.Join(names, ",") + "}",
		Kind:  KindUnion,
		Elems: elems,
	}
}

// IsBitsType reports whether a value of type t can never hold a heap
// reference. Such values are exempt from escape propagation: a bits value is
// pinned at the lattice bottom even when an aggregate containing it escapes.
// A nil type is treated as possibly-referencing.
func (t *Type) IsBitsType() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindBits:
		return true
	case KindTuple, KindUnion:
		for _, e := range t.Elems {
			if !e.IsBitsType() {
				return false
			}
		}
		return len(t.Elems) > 0
	default:
		return false
	}
}

// ShapeGuaranteed reports whether the memory layout of values of type t is
// statically known. Field and size accesses on values without a guaranteed
// shape have an implicit failure path.
func (t *Type) ShapeGuaranteed() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindAny, KindUnion:
		return false
	default:
		return true
	}
}

// shapeKey is the normalized form of t used in summary signatures. All bits
// types are erased to a single token since they are interchangeable for the
// escape analysis.
func (t *Type) shapeKey() string {
	if t.IsBitsType() {
		return "bits"
	}
	return t.Name
}

func (t *Type) String() string {
	if t == nil {
		return "<none>"
	}
	return t.Name
}
