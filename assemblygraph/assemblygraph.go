// elmarker: a high-performance tool for building and simplifying marker graphs.
// Copyright (c) 2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elprep/blob/master/LICENSE.txt>.

/*
Package assemblygraph projects a simplified marker graph onto its
assembly graph.

Every maximal chain of strong marker graph edges through vertices with
exactly one strong in-edge and one strong out-edge becomes a single
assembly graph edge. The assembly graph vertices are the marker graph
vertices where such chains begin or end.
*/
package assemblygraph

import (
	"math"

	"github.com/exascience/pargo/parallel"

	"github.com/exascience/elmarker/markergraph"
)

// A VertexId identifies an assembly graph vertex.
type VertexId uint64

// An EdgeId identifies an assembly graph edge.
type EdgeId uint64

// An Edge is a chain of marker graph edges.
type Edge struct {
	Source, Target VertexId

	// AverageCoverage is the mean coverage of the marker graph edges
	// of the chain.
	AverageCoverage float64

	// Length estimates the number of bases of the chain.
	Length uint64

	// Circular is true for chains that return to their start without
	// passing a branch vertex.
	Circular bool
}

// A Graph is an assembly graph. It is read-only once projected.
type Graph struct {
	// K is the marker length of the underlying marker graph.
	K int

	// MarkerVertices maps assembly graph vertices to marker graph
	// vertices.
	MarkerVertices []markergraph.VertexId

	Edges []Edge

	chainOffsets []int
	chains       []markergraph.EdgeId

	edgesBySource [][]EdgeId
	edgesByTarget [][]EdgeId

	index map[markergraph.VertexId]VertexId
}

// VertexCount returns the number of assembly graph vertices.
func (g *Graph) VertexCount() int { return len(g.MarkerVertices) }

// EdgeCount returns the number of assembly graph edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Segment returns the marker graph edges of an assembly graph edge, in
// chain order. The result shares memory with the graph and must not be
// modified.
func (g *Graph) Segment(e EdgeId) []markergraph.EdgeId {
	low, high := g.chainOffsets[e], g.chainOffsets[e+1]
	return g.chains[low:high:high]
}

// EdgesBySource returns the edges that leave an assembly graph vertex.
func (g *Graph) EdgesBySource(v VertexId) []EdgeId { return g.edgesBySource[v] }

// EdgesByTarget returns the edges that enter an assembly graph vertex.
func (g *Graph) EdgesByTarget(v VertexId) []EdgeId { return g.edgesByTarget[v] }

func isLinear(mg *markergraph.Graph, v markergraph.VertexId) bool {
	in, out := mg.StrongDegrees(v)
	return in == 1 && out == 1
}

// follow extends a chain that starts with e through linear vertices.
func follow(mg *markergraph.Graph, e markergraph.EdgeId, chain []markergraph.EdgeId) []markergraph.EdgeId {
	start := mg.Edge(e).Source
	var buf []markergraph.EdgeId
	for {
		chain = append(chain, e)
		v := mg.Edge(e).Target
		if v == start || !isLinear(mg, v) {
			return chain
		}
		buf = mg.StrongOutEdges(v, buf[:0])
		e = buf[0]
	}
}

// Project builds the assembly graph of the strong subgraph of mg.
func Project(mg *markergraph.Graph) *Graph {
	g := &Graph{
		chainOffsets: []int{0},
		index:        make(map[markergraph.VertexId]VertexId),
	}
	if mg.Markers != nil {
		g.K = mg.Markers.K
	}

	var linear [][]markergraph.EdgeId
	if n := mg.VertexCount(); n > 0 {
		linear = parallel.RangeReduce(0, n, 0, func(low, high int) interface{} {
			var chains [][]markergraph.EdgeId
			var buf []markergraph.EdgeId
			for v := markergraph.VertexId(low); v < markergraph.VertexId(high); v++ {
				if !mg.IsVertexLive(v) || isLinear(mg, v) {
					continue
				}
				buf = mg.StrongOutEdges(v, buf[:0])
				for _, e := range buf {
					chains = append(chains, follow(mg, e, nil))
				}
			}
			return chains
		}, func(x, y interface{}) interface{} {
			return append(x.([][]markergraph.EdgeId), y.([][]markergraph.EdgeId)...)
		}).([][]markergraph.EdgeId)
	}

	used := make([]bool, mg.EdgeCount())
	for _, chain := range linear {
		g.addChain(mg, chain, false)
		for _, e := range chain {
			used[e] = true
		}
	}

	// What is left are cycles of linear vertices. Scanning in order of
	// identifiers starts each one at its lowest edge.
	for e := markergraph.EdgeId(0); int(e) < mg.EdgeCount(); e++ {
		if used[e] || !mg.IsStrong(e) {
			continue
		}
		chain := follow(mg, e, nil)
		for _, f := range chain {
			used[f] = true
		}
		g.addChain(mg, chain, true)
	}
	return g
}

func (g *Graph) vertex(v markergraph.VertexId) VertexId {
	if id, ok := g.index[v]; ok {
		return id
	}
	id := VertexId(len(g.MarkerVertices))
	g.MarkerVertices = append(g.MarkerVertices, v)
	g.edgesBySource = append(g.edgesBySource, nil)
	g.edgesByTarget = append(g.edgesByTarget, nil)
	g.index[v] = id
	return id
}

func (g *Graph) addChain(mg *markergraph.Graph, chain []markergraph.EdgeId, circular bool) {
	source := g.vertex(mg.Edge(chain[0]).Source)
	target := g.vertex(mg.Edge(chain[len(chain)-1]).Target)

	var coverage int
	var length float64
	for _, e := range chain {
		edge := mg.Edge(e)
		coverage += edge.Coverage()
		length += edge.Length()
	}
	id := EdgeId(len(g.Edges))
	g.Edges = append(g.Edges, Edge{
		Source:          source,
		Target:          target,
		AverageCoverage: float64(coverage) / float64(len(chain)),
		Length:          uint64(math.Round(length)) + uint64(g.K),
		Circular:        circular,
	})
	g.chains = append(g.chains, chain...)
	g.chainOffsets = append(g.chainOffsets, len(g.chains))
	g.edgesBySource[source] = append(g.edgesBySource[source], id)
	g.edgesByTarget[target] = append(g.edgesByTarget[target], id)
}
