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
Package markergraph builds and simplifies the marker graph.

Vertices of the marker graph are equivalence classes of marker
occurrences that are believed to represent the same genomic locus.
Edges connect vertices that are visited consecutively by reads, and
record which reads support them.

A Graph is built once by BuildVertices and CreateEdges, and is then
cleaned up in place by FlagWeakEdges, PruneStrongSubgraph and
Simplify. Vertex and edge identifiers are never reused: removed
vertices and edges stay in the graph as tombstones.
*/
package markergraph

import (
	"math"

	"github.com/bits-and-blooms/bitset"

	"github.com/exascience/elmarker/markers"
)

// A VertexId identifies a marker graph vertex.
type VertexId uint64

// InvalidVertexId is the vertex of marker occurrences whose vertex
// has been removed.
const InvalidVertexId = VertexId(math.MaxUint64)

// An EdgeId identifies a marker graph edge.
type EdgeId uint64

// A MarkerInterval is a pair of marker ordinals on an oriented read
// that supports an edge.
type MarkerInterval struct {
	OrientedReadId markers.OrientedReadId
	Ordinals       [2]uint32
}

// An Edge connects two vertices.
type Edge struct {
	Source, Target VertexId
	Intervals      []MarkerInterval

	// sum of the base distances between the two markers of each interval
	distance uint64
}

// Coverage returns the number of intervals that support the edge.
func (e *Edge) Coverage() int { return len(e.Intervals) }

// Length returns the average base distance between the start of the
// source markers and the start of the target markers.
func (e *Edge) Length() float64 {
	if len(e.Intervals) == 0 {
		return 0
	}
	return float64(e.distance) / float64(len(e.Intervals))
}

// A Removal records which operation removed an edge.
type Removal uint8

// Reasons for edge removal.
const (
	NotRemoved Removal = iota
	RemovedWithVertex
	Pruned
	ShortCycle
	Bubble
	SuperBubble
)

func (r Removal) String() string {
	switch r {
	case NotRemoved:
		return "live"
	case RemovedWithVertex:
		return "vertex removed"
	case Pruned:
		return "pruned"
	case ShortCycle:
		return "short cycle"
	case Bubble:
		return "bubble"
	case SuperBubble:
		return "superbubble"
	default:
		return "unknown"
	}
}

type vertexPair struct {
	source, target VertexId
}

// A Graph is a marker graph.
type Graph struct {
	Markers *markers.Store

	// vertexOf maps each MarkerId to its vertex
	vertexOf      []VertexId
	memberOffsets []uint64
	members       []markers.MarkerId
	liveVertices  *bitset.BitSet

	edges      []Edge
	liveEdges  *bitset.BitSet
	weakEdges  *bitset.BitSet
	removedBy  []Removal
	outEdges   [][]EdgeId
	inEdges    [][]EdgeId
	edgesByEnd map[vertexPair][]EdgeId

	// Bubbles records the paths discarded by bubble and superbubble
	// removal.
	Bubbles []BubbleRecord
}

func newGraph(store *markers.Store, vertexCount int) *Graph {
	live := bitset.New(uint(vertexCount))
	for v := 0; v < vertexCount; v++ {
		live.Set(uint(v))
	}
	return &Graph{
		Markers:       store,
		memberOffsets: make([]uint64, vertexCount+1),
		liveVertices:  live,
		liveEdges:     bitset.New(0),
		weakEdges:     bitset.New(0),
		outEdges:      make([][]EdgeId, vertexCount),
		inEdges:       make([][]EdgeId, vertexCount),
		edgesByEnd:    make(map[vertexPair][]EdgeId),
	}
}

// NewGraph returns a graph with vertexCount live vertices, and without
// edges or marker occurrences.
func NewGraph(vertexCount int) *Graph {
	return newGraph(nil, vertexCount)
}

// VertexCount returns the number of vertex identifiers, including
// those of removed vertices.
func (g *Graph) VertexCount() int { return len(g.outEdges) }

// LiveVertexCount returns the number of vertices that have not been
// removed.
func (g *Graph) LiveVertexCount() int { return int(g.liveVertices.Count()) }

// IsVertexLive reports whether a vertex has not been removed.
func (g *Graph) IsVertexLive(v VertexId) bool { return g.liveVertices.Test(uint(v)) }

// Members returns the marker occurrences of a vertex, sorted by
// MarkerId. Removed vertices keep their member list.
func (g *Graph) Members(v VertexId) []markers.MarkerId {
	return g.members[g.memberOffsets[v]:g.memberOffsets[v+1]]
}

// Coverage returns the number of marker occurrences of a vertex.
func (g *Graph) Coverage(v VertexId) int {
	return int(g.memberOffsets[v+1] - g.memberOffsets[v])
}

// VertexOf returns the vertex of a marker occurrence, or
// InvalidVertexId when that vertex has been removed.
func (g *Graph) VertexOf(m markers.MarkerId) VertexId { return g.vertexOf[m] }

// EdgeCount returns the number of edge identifiers, including those
// of removed edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// LiveEdgeCount returns the number of edges that have not been removed.
func (g *Graph) LiveEdgeCount() int { return int(g.liveEdges.Count()) }

// Edge returns an edge by identifier.
func (g *Graph) Edge(e EdgeId) *Edge { return &g.edges[e] }

// IsEdgeLive reports whether an edge has not been removed.
func (g *Graph) IsEdgeLive(e EdgeId) bool { return g.liveEdges.Test(uint(e)) }

// IsWeak reports whether an edge has been flagged weak.
func (g *Graph) IsWeak(e EdgeId) bool { return g.weakEdges.Test(uint(e)) }

// IsStrong reports whether an edge is live and not weak.
func (g *Graph) IsStrong(e EdgeId) bool {
	return g.liveEdges.Test(uint(e)) && !g.weakEdges.Test(uint(e))
}

// RemovedBy returns the operation that removed an edge.
func (g *Graph) RemovedBy(e EdgeId) Removal { return g.removedBy[e] }

// OutEdges returns all edges that ever left a vertex, including
// removed ones, in order of creation.
func (g *Graph) OutEdges(v VertexId) []EdgeId { return g.outEdges[v] }

// InEdges returns all edges that ever entered a vertex, including
// removed ones, in order of creation.
func (g *Graph) InEdges(v VertexId) []EdgeId { return g.inEdges[v] }

// EdgesBetween returns the live edges from source to target.
func (g *Graph) EdgesBetween(source, target VertexId) (result []EdgeId) {
	for _, e := range g.edgesByEnd[vertexPair{source, target}] {
		if g.IsEdgeLive(e) {
			result = append(result, e)
		}
	}
	return result
}

// StrongOutEdges appends the strong out-edges of v to buf.
func (g *Graph) StrongOutEdges(v VertexId, buf []EdgeId) []EdgeId {
	for _, e := range g.outEdges[v] {
		if g.IsStrong(e) {
			buf = append(buf, e)
		}
	}
	return buf
}

// StrongInEdges appends the strong in-edges of v to buf.
func (g *Graph) StrongInEdges(v VertexId, buf []EdgeId) []EdgeId {
	for _, e := range g.inEdges[v] {
		if g.IsStrong(e) {
			buf = append(buf, e)
		}
	}
	return buf
}

// StrongDegrees returns the number of strong in- and out-edges of v.
func (g *Graph) StrongDegrees(v VertexId) (in, out int) {
	for _, e := range g.inEdges[v] {
		if g.IsStrong(e) {
			in++
		}
	}
	for _, e := range g.outEdges[v] {
		if g.IsStrong(e) {
			out++
		}
	}
	return
}

func (g *Graph) intervalDistance(interval MarkerInterval) uint64 {
	if g.Markers == nil {
		return 0
	}
	p0 := g.Markers.Position(interval.OrientedReadId, interval.Ordinals[0])
	p1 := g.Markers.Position(interval.OrientedReadId, interval.Ordinals[1])
	return uint64(p1 - p0)
}

// AddEdge adds a new edge, even if there already is an edge between
// the same vertices.
func (g *Graph) AddEdge(source, target VertexId, intervals []MarkerInterval) EdgeId {
	e := EdgeId(len(g.edges))
	edge := Edge{Source: source, Target: target, Intervals: intervals}
	for _, interval := range intervals {
		edge.distance += g.intervalDistance(interval)
	}
	g.edges = append(g.edges, edge)
	g.removedBy = append(g.removedBy, NotRemoved)
	g.liveEdges.Set(uint(e))
	g.outEdges[source] = append(g.outEdges[source], e)
	g.inEdges[target] = append(g.inEdges[target], e)
	pair := vertexPair{source, target}
	g.edgesByEnd[pair] = append(g.edgesByEnd[pair], e)
	return e
}

// InsertOrMerge adds an interval to the first live edge from source
// to target, or creates such an edge if there is none. An interval
// that the edge already records is not added again.
func (g *Graph) InsertOrMerge(source, target VertexId, interval MarkerInterval) EdgeId {
	for _, e := range g.edgesByEnd[vertexPair{source, target}] {
		if !g.IsEdgeLive(e) {
			continue
		}
		edge := &g.edges[e]
		for _, existing := range edge.Intervals {
			if existing == interval {
				return e
			}
		}
		edge.Intervals = append(edge.Intervals, interval)
		edge.distance += g.intervalDistance(interval)
		return e
	}
	return g.AddEdge(source, target, []MarkerInterval{interval})
}

// RemoveEdge removes an edge and records the reason.
func (g *Graph) RemoveEdge(e EdgeId, reason Removal) {
	if !g.IsEdgeLive(e) {
		return
	}
	g.liveEdges.Clear(uint(e))
	g.removedBy[e] = reason
}

// RemoveVertex removes a vertex together with all its incident edges,
// and detaches its marker occurrences.
func (g *Graph) RemoveVertex(v VertexId) {
	if !g.IsVertexLive(v) {
		return
	}
	for _, e := range g.outEdges[v] {
		g.RemoveEdge(e, RemovedWithVertex)
	}
	for _, e := range g.inEdges[v] {
		g.RemoveEdge(e, RemovedWithVertex)
	}
	for _, m := range g.Members(v) {
		g.vertexOf[m] = InvalidVertexId
	}
	g.liveVertices.Clear(uint(v))
}
