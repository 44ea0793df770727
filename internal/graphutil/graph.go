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

// Package graphutil provides the call-graph utilities used by the bottom-up
// drivers: a small directed graph representation that adapts to the existing
// graph libraries, the bottom-up SCC ordering, and elementary-cycle search.
package graphutil

import (
	"strconv"

	"github.com/awslabs/ar-escape/internal/funcutil"
	"gonum.org/v1/gonum/graph"
)

// RGraph is a directed graph over dense int64 node ids, carrying an optional
// label per node. It implements gonum's graph.Directed and yourbasic's
// graph.Iterator so that both libraries can operate on the same call graph.
type RGraph struct {
	// The order of the graph. Node ids are in [0, order).
	order int

	// Keys are all the node ids, sorted increasing.
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge
	// from x to y.
	Edges map[int64]map[int64]bool

	// Labels optionally names nodes for reporting.
	Labels map[int64]string
}

// NewRGraph builds a graph of the given order from an adjacency list. Edges
// referring to ids outside [0, order) are dropped.
func NewRGraph(order int, adjacency map[int64][]int64, labels map[int64]string) RGraph {
	keys := make([]int64, order)
	edges := make(map[int64]map[int64]bool, order)
	for i := 0; i < order; i++ {
		keys[i] = int64(i)
		edges[int64(i)] = map[int64]bool{}
	}
	for from, tos := range adjacency {
		if from < 0 || from >= int64(order) {
			continue
		}
		for _, to := range tos {
			if to >= 0 && to < int64(order) {
				edges[from][to] = true
			}
		}
	}
	return RGraph{order: order, Keys: keys, Edges: edges, Labels: labels}
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only the
// edges that have both the origin and destination nodes in the include nodes are kept. The
// subgraph's order and Labels are the same as in the original, so node ids stay consistent
// across subgraphs.
func Subgraph(original RGraph, include []int64) RGraph {
	edges := make(map[int64]map[int64]bool, len(include))
	keys := make([]int64, len(include))
	copy(keys, include)

	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if funcutil.Contains(include, e) {
				edges[i][e] = true
			}
		}
	}

	return RGraph{
		order:  original.order,
		Keys:   keys,
		Edges:  edges,
		Labels: original.Labels,
	}
}

// Label returns the label of the node, or its numeric form.
func (g RGraph) Label(id int64) string {
	if l, ok := g.Labels[id]; ok {
		return l
	}
	return RNode{id: id}.String()
}

// Order implements the graph.Iterator interface of yourbasic/graph.
func (g RGraph) Order() int {
	return g.order
}

// Visit implements the graph.Iterator interface of yourbasic/graph.
func (g RGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	for w := range g.Edges[int64(v)] {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// *************** gonum graph.Directed implementation **********************

// Node implements the gonum Graph interface.
func (g RGraph) Node(id int64) graph.Node {
	if _, ok := g.Edges[id]; !ok {
		return nil
	}
	return RNode{id: id, label: g.Labels[id]}
}

// Nodes returns an iterator over the nodes of the graph.
func (g RGraph) Nodes() graph.Nodes {
	return &nodeIter{g: g, ids: g.Keys, cur: -1}
}

// From returns an iterator over the successors of id.
func (g RGraph) From(id int64) graph.Nodes {
	ids := funcutil.SortedKeys(g.Edges[id])
	return &nodeIter{g: g, ids: ids, cur: -1}
}

// To returns an iterator over the predecessors of id.
func (g RGraph) To(id int64) graph.Nodes {
	var ids []int64
	for _, from := range g.Keys {
		if g.Edges[from][id] {
			ids = append(ids, from)
		}
	}
	return &nodeIter{g: g, ids: ids, cur: -1}
}

// HasEdgeBetween reports whether an edge exists between x and y in either
// direction.
func (g RGraph) HasEdgeBetween(xid, yid int64) bool {
	return g.Edges[xid][yid] || g.Edges[yid][xid]
}

// HasEdgeFromTo reports whether a directed edge exists from u to v.
func (g RGraph) HasEdgeFromTo(uid, vid int64) bool {
	return g.Edges[uid][vid]
}

// Edge returns the edge from u to v (nil if none exists).
func (g RGraph) Edge(uid, vid int64) graph.Edge {
	if g.Edges[uid][vid] {
		return REdge{from: RNode{id: uid}, to: RNode{id: vid}}
	}
	return nil
}

// RNode wraps a node id and its label, implementing the gonum graph.Node
// interface.
type RNode struct {
	id    int64
	label string
}

// ID returns the id of the node.
func (n RNode) ID() int64 {
	return n.id
}

func (n RNode) String() string {
	if n.label != "" {
		return n.label
	}
	return "#" + strconv.FormatInt(n.id, 10)
}

// nodeIter implements the gonum graph.Nodes iterator over a fixed id slice.
type nodeIter struct {
	g   RGraph
	ids []int64
	cur int
}

// Next moves to the next node and returns whether one exists.
func (it *nodeIter) Next() bool {
	if it.cur < len(it.ids)-1 {
		it.cur++
		return true
	}
	return false
}

// Len returns the number of nodes remaining in the iterator.
func (it *nodeIter) Len() int {
	return len(it.ids) - it.cur - 1
}

// Reset rewinds the iterator.
func (it *nodeIter) Reset() {
	it.cur = -1
}

// Node returns the current node.
func (it *nodeIter) Node() graph.Node {
	id := it.ids[it.cur]
	return RNode{id: id, label: it.g.Labels[id]}
}

// REdge implements the gonum graph.Edge interface.
type REdge struct {
	from RNode
	to   RNode
}

// From returns the origin of the edge.
func (e REdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge.
func (e REdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge.
func (e REdge) ReversedEdge() graph.Edge {
	return REdge{from: e.to, to: e.from}
}
