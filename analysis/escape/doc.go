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

// Package escape classifies every value produced while compiling a routine
// according to how far a heap object referenced by that value may propagate
// beyond the current call. The classifications form a small lattice,
//
//	NoEscape  ⊑  ThrownEscape, ReturnEscape  ⊑  GlobalEscape  ⊑  AllEscape
//
// computed by a monotone fixed-point solver over the routine's control-flow
// graph, with cached per-callee summaries propagated across call boundaries.
// The analysis is always sound (it never under-approximates escape) and
// absorbs every form of uncertainty (unresolvable dispatch, opaque calls,
// unanalyzable callees) into the AllEscape top element rather than failing.
//
// The per-value state is flow-insensitive: one element per value for the
// whole routine, which over-approximates a path-sensitive result. The design
// follows the compositional escape analysis tradition of:
//
// John Whaley and Martin Rinard. 1999. [Compositional Pointer And Escape Analysis For Java Programs.]
// SIGPLAN Not. 34, 10 (Oct. 1999), 187–206.
//
// [Compositional Pointer And Escape Analysis For Java Programs.]: https://doi.org/10.1145/320385.320400
package escape
