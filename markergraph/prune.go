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

package markergraph

// isLinear reports whether v has exactly one strong in-edge and one
// strong out-edge.
func (g *Graph) isLinear(v VertexId) bool {
	in, out := g.StrongDegrees(v)
	return in == 1 && out == 1
}

func singleStrong(g *Graph, edges []EdgeId) EdgeId {
	for _, e := range edges {
		if g.IsStrong(e) {
			return e
		}
	}
	panic("no strong edge")
}

// dominated reports whether one of the given strong edges other than
// e has a higher coverage than e, or the same coverage and a lower
// identifier.
func (g *Graph) dominated(e EdgeId, edges []EdgeId) bool {
	coverage := g.edges[e].Coverage()
	for _, f := range edges {
		if f == e || !g.IsStrong(f) {
			continue
		}
		if c := g.edges[f].Coverage(); c > coverage || (c == coverage && f < e) {
			return true
		}
	}
	return false
}

// isForwardTip reports whether v, which has no strong out-edges, only
// hangs off branch vertices with a better supported alternative.
// Every strong in-edge is followed backwards through linear vertices
// until a vertex with several strong out-edges is found.
func (g *Graph) isForwardTip(v VertexId) bool {
	for _, e := range g.inEdges[v] {
		if !g.IsStrong(e) {
			continue
		}
		for steps := 0; ; steps++ {
			u := g.edges[e].Source
			if u == v || steps > len(g.edges) {
				return false
			}
			in, out := g.StrongDegrees(u)
			if out >= 2 {
				if !g.dominated(e, g.outEdges[u]) {
					return false
				}
				break
			}
			if in != 1 {
				return false
			}
			e = singleStrong(g, g.inEdges[u])
		}
	}
	return true
}

// isBackwardTip is the mirror image of isForwardTip for a vertex
// without strong in-edges.
func (g *Graph) isBackwardTip(v VertexId) bool {
	for _, e := range g.outEdges[v] {
		if !g.IsStrong(e) {
			continue
		}
		for steps := 0; ; steps++ {
			w := g.edges[e].Target
			if w == v || steps > len(g.edges) {
				return false
			}
			in, out := g.StrongDegrees(w)
			if in >= 2 {
				if !g.dominated(e, g.inEdges[w]) {
					return false
				}
				break
			}
			if out != 1 {
				return false
			}
			e = singleStrong(g, g.outEdges[w])
		}
	}
	return true
}

// isDeadEnd reports whether v is a leaf of the strong subgraph that
// is not needed to keep a path connected.
func (g *Graph) isDeadEnd(v VertexId) bool {
	in, out := g.StrongDegrees(v)
	switch {
	case in == 0 && out == 0:
		return true
	case out == 0:
		return g.isForwardTip(v)
	case in == 0:
		return g.isBackwardTip(v)
	default:
		return false
	}
}

// PruneOnce removes all current dead ends of the strong subgraph,
// together with all their edges, and returns the number of vertices
// removed.
func (g *Graph) PruneOnce() int {
	deadEnds := collectVertices(g.VertexCount(), func(low, high int) (deadEnds []VertexId) {
		for v := VertexId(low); v < VertexId(high); v++ {
			if g.IsVertexLive(v) && g.isDeadEnd(v) {
				deadEnds = append(deadEnds, v)
			}
		}
		return deadEnds
	})
	for _, v := range deadEnds {
		for _, e := range g.outEdges[v] {
			g.RemoveEdge(e, Pruned)
		}
		for _, e := range g.inEdges[v] {
			g.RemoveEdge(e, Pruned)
		}
		g.RemoveVertex(v)
	}
	return len(deadEnds)
}

// PruneStrongSubgraph runs up to iterationCount rounds of PruneOnce,
// and stops early after a round that removes nothing. It returns the
// number of vertices removed in each round that was run.
func (g *Graph) PruneStrongSubgraph(iterationCount int) (removed []int) {
	for i := 0; i < iterationCount; i++ {
		n := g.PruneOnce()
		removed = append(removed, n)
		if n == 0 {
			break
		}
	}
	return removed
}
