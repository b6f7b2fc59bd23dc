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

// A BubbleRecord describes alternative paths between Source and Sink
// that were collapsed into the single path Kept. For a simple bubble,
// Discarded holds one entry per removed path. The paths of a
// superbubble can share edges, so for a superbubble Discarded holds a
// single entry with the set of all removed edges. Removed edges remain
// available in the graph.
type BubbleRecord struct {
	Source, Sink VertexId
	Super        bool
	Kept         []EdgeId
	Discarded    [][]EdgeId
}

type branch struct {
	edges    []EdgeId
	end      VertexId
	coverage int
}

// followBranch follows e through linear vertices for at most maxLength
// edges. It reports false if the branch does not end in a non-linear
// vertex within that length, or if it returns to its start.
func (g *Graph) followBranch(e EdgeId, maxLength int) (b branch, ok bool) {
	start := g.edges[e].Source
	for {
		b.edges = append(b.edges, e)
		b.coverage += g.edges[e].Coverage()
		b.end = g.edges[e].Target
		if b.end == start {
			return b, false
		}
		if !g.isLinear(b.end) {
			return b, true
		}
		if len(b.edges) >= maxLength {
			return b, false
		}
		e = singleStrong(g, g.outEdges[b.end])
	}
}

// better reports whether branch a is preferred over branch b. Coverage
// is summed over the edges of a branch, so a long branch of moderate
// coverage can win over a short branch of higher coverage.
func (a *branch) better(b *branch) bool {
	return a.coverage > b.coverage || (a.coverage == b.coverage && a.edges[0] < b.edges[0])
}

// findBubbles returns the simple bubbles that start at u.
func (g *Graph) findBubbles(u VertexId, maxLength int) (bubbles []BubbleRecord) {
	out := g.StrongOutEdges(u, nil)
	if len(out) < 2 {
		return nil
	}
	var ends []VertexId
	branches := map[VertexId][]branch{}
	for _, e := range out {
		b, ok := g.followBranch(e, maxLength)
		if !ok {
			continue
		}
		if _, seen := branches[b.end]; !seen {
			ends = append(ends, b.end)
		}
		branches[b.end] = append(branches[b.end], b)
	}
	for _, end := range ends {
		candidates := branches[end]
		if len(candidates) < 2 {
			continue
		}
		best := 0
		for i := 1; i < len(candidates); i++ {
			if candidates[i].better(&candidates[best]) {
				best = i
			}
		}
		bubble := BubbleRecord{Source: u, Sink: end, Kept: candidates[best].edges}
		for i := range candidates {
			if i != best {
				bubble.Discarded = append(bubble.Discarded, candidates[i].edges)
			}
		}
		bubbles = append(bubbles, bubble)
	}
	return bubbles
}

func (g *Graph) allStrong(edges []EdgeId) bool {
	for _, e := range edges {
		if !g.IsStrong(e) {
			return false
		}
	}
	return true
}

// commitBubble removes the discarded paths of a bubble, unless an
// earlier commit in the same round already changed it.
func (g *Graph) commitBubble(bubble BubbleRecord, reason Removal) bool {
	if !g.allStrong(bubble.Kept) {
		return false
	}
	for _, path := range bubble.Discarded {
		if !g.allStrong(path) {
			return false
		}
	}
	for _, path := range bubble.Discarded {
		for i, e := range path {
			g.RemoveEdge(e, reason)
			if i > 0 {
				g.RemoveVertex(g.edges[e].Source)
			}
		}
	}
	g.Bubbles = append(g.Bubbles, bubble)
	return true
}

// RemoveBubbles collapses all bubbles whose branches have at most
// maxLength edges, keeping the branch with the highest total coverage.
// It returns the number of bubbles removed.
func (g *Graph) RemoveBubbles(maxLength int) (removed int) {
	if maxLength <= 0 || g.VertexCount() == 0 {
		return 0
	}
	for {
		found := make([][]BubbleRecord, g.VertexCount())
		parallel.Range(0, g.VertexCount(), 0, func(low, high int) {
			for u := VertexId(low); u < VertexId(high); u++ {
				if g.IsVertexLive(u) {
					found[u] = g.findBubbles(u, maxLength)
				}
			}
		})
		var round int
		for _, bubbles := range found {
			for _, bubble := range bubbles {
				if g.commitBubble(bubble, Bubble) {
					round++
				}
			}
		}
		if round == 0 {
			return removed
		}
		removed += round
	}
}
