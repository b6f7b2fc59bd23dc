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

import "github.com/exascience/pargo/parallel"

// shortestCycle returns the edges of a shortest cycle of strong edges
// through s with at most maxLength edges, on which s is the smallest
// vertex. It returns nil if there is no such cycle.
func (g *Graph) shortestCycle(s VertexId, maxLength int) []EdgeId {
	parentEdge := map[VertexId]EdgeId{}
	depth := map[VertexId]int{s: 0}
	frontier := []VertexId{s}
	for d := 0; d < maxLength && len(frontier) > 0; d++ {
		var next []VertexId
		for _, v := range frontier {
			for _, e := range g.outEdges[v] {
				if !g.IsStrong(e) {
					continue
				}
				w := g.edges[e].Target
				if w == s {
					cycle := []EdgeId{e}
					for v != s {
						f := parentEdge[v]
						cycle = append(cycle, f)
						v = g.edges[f].Source
					}
					for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
						cycle[i], cycle[j] = cycle[j], cycle[i]
					}
					return cycle
				}
				if w < s {
					continue
				}
				if _, ok := depth[w]; !ok {
					depth[w] = d + 1
					parentEdge[w] = e
					next = append(next, w)
				}
			}
		}
		frontier = next
	}
	return nil
}

// weakestEdge returns the edge with the lowest coverage, or the lowest
// identifier among those.
func (g *Graph) weakestEdge(edges []EdgeId) EdgeId {
	result := edges[0]
	for _, e := range edges[1:] {
		c, rc := g.edges[e].Coverage(), g.edges[result].Coverage()
		if c < rc || (c == rc && e < result) {
			result = e
		}
	}
	return result
}

// RemoveShortCycles breaks all cycles of strong edges with at most
// maxLength edges, each time by removing the edge with the lowest
// coverage on the cycle. It returns the number of edges removed.
func (g *Graph) RemoveShortCycles(maxLength int) (removed int) {
	if maxLength <= 0 || g.VertexCount() == 0 {
		return 0
	}
	for {
		cycles := make([][]EdgeId, g.VertexCount())
		parallel.Range(0, g.VertexCount(), 0, func(low, high int) {
			for s := VertexId(low); s < VertexId(high); s++ {
				if g.IsVertexLive(s) {
					cycles[s] = g.shortestCycle(s, maxLength)
				}
			}
		})
		var round int
	nextCycle:
		for _, cycle := range cycles {
			if cycle == nil {
				continue
			}
			for _, e := range cycle {
				if !g.IsStrong(e) {
					continue nextCycle
				}
			}
			g.RemoveEdge(g.weakestEdge(cycle), ShortCycle)
			round++
		}
		if round == 0 {
			return removed
		}
		removed += round
	}
}
