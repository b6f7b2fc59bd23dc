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

import "fmt"

// reachable returns the vertices that can be reached from start in at
// most maxDistance steps over live edges with at least minCoverage
// coverage.
func (g *Graph) reachable(start VertexId, minCoverage, maxDistance int) map[VertexId]struct{} {
	reached := map[VertexId]struct{}{start: {}}
	frontier := []VertexId{start}
	var next []VertexId
	for distance := 0; distance < maxDistance && len(frontier) > 0; distance++ {
		next = next[:0]
		for _, v := range frontier {
			for _, e := range g.outEdges[v] {
				if !g.IsEdgeLive(e) {
					continue
				}
				edge := &g.edges[e]
				if edge.Coverage() < minCoverage {
					continue
				}
				if _, ok := reached[edge.Target]; !ok {
					reached[edge.Target] = struct{}{}
					next = append(next, edge.Target)
				}
			}
		}
		frontier, next = next, frontier
	}
	return reached
}

// FlagWeakEdges classifies all edges as weak or strong. An edge with
// coverage at most lowCoverageThreshold is weak when its target can
// also be reached from its source in at most maxDistance steps over
// edges with coverage at least highCoverageThreshold. All other edges
// are strong. Weak flags from earlier calls are discarded first.
//
// FlagWeakEdges returns the number of weak edges.
func (g *Graph) FlagWeakEdges(lowCoverageThreshold, highCoverageThreshold, maxDistance int) (int, error) {
	if lowCoverageThreshold >= highCoverageThreshold {
		return 0, fmt.Errorf("low coverage threshold %v must be smaller than high coverage threshold %v", lowCoverageThreshold, highCoverageThreshold)
	}
	g.weakEdges.ClearAll()
	weak := collectEdges(g.VertexCount(), func(low, high int) (weak []EdgeId) {
		var candidates []EdgeId
		for v := VertexId(low); v < VertexId(high); v++ {
			if !g.IsVertexLive(v) {
				continue
			}
			candidates = candidates[:0]
			for _, e := range g.outEdges[v] {
				if g.IsEdgeLive(e) && g.edges[e].Coverage() <= lowCoverageThreshold {
					candidates = append(candidates, e)
				}
			}
			if len(candidates) == 0 {
				continue
			}
			reached := g.reachable(v, highCoverageThreshold, maxDistance)
			for _, e := range candidates {
				if _, ok := reached[g.edges[e].Target]; ok {
					weak = append(weak, e)
				}
			}
		}
		return weak
	})
	for _, e := range weak {
		g.weakEdges.Set(uint(e))
	}
	return len(weak), nil
}

// WeakEdgeCount returns the number of live weak edges.
func (g *Graph) WeakEdgeCount() int {
	return int(g.weakEdges.IntersectionCardinality(g.liveEdges))
}
