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

// Package ir defines the instruction stream consumed by the escape analysis.
//
// The upstream compiler stage lowers each routine into a control-flow graph of
// typed instructions in program order. This package only describes that input;
// it performs no analysis itself. A routine has one value per formal argument
// slot (slot 0 is reserved for the callee's own closure environment) and one
// value per instruction result, and every operand of every instruction refers
// to one of those values.
//
// Callee resolution is deliberately kept outside the instruction stream: call
// instructions carry a CallSite, and the Resolver interface is the oracle that
// maps a call site to the set of candidate routines, if it can be statically
// narrowed at all.
package ir
