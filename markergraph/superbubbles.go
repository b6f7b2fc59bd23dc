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

// maxSuperBubbleVertices bounds the number of vertices explored from a
// single entrance.
const maxSuperBubbleVertices = 1024

type superBubble struct {
	entrance, exit VertexId
	// interior vertices in topological order
	interior []VertexId
	edges    []EdgeId
}

// findSuperBubble looks for a superbubble with entrance s: an exit t
// such that every path from s leads to t, the part in between is
// acyclic, has no tips, and has no path longer than maxLength edges.
func (g *Graph) findSuperBubble(s VertexId, maxLength int) (sb superBubble, ok bool) {
	var outBuf, inBuf []EdgeId
	visited := map[VertexId]bool{}
	seen := map[VertexId]bool{}
	pushed := map[VertexId]bool{s: true}
	depth := map[VertexId]int{s: 0}
	stack := []VertexId{s}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited[v] = true
		delete(seen, v)
		if v != s {
			sb.interior = append(sb.interior, v)
		}
		if len(visited) > maxSuperBubbleVertices {
			return sb, false
		}
		outBuf = g.StrongOutEdges(v, outBuf[:0])
		if len(outBuf) == 0 {
			return sb, false
		}
		for _, e := range outBuf {
			u := g.edges[e].Target
			if u == s {
				return sb, false
			}
			if d := depth[v] + 1; d > depth[u] {
				if d > maxLength {
					return sb, false
				}
				depth[u] = d
			}
			seen[u] = true
			inBuf = g.StrongInEdges(u, inBuf[:0])
			allVisited := true
			for _, f := range inBuf {
				if !visited[g.edges[f].Source] {
					allVisited = false
					break
				}
			}
			if allVisited && !pushed[u] {
				pushed[u] = true
				stack = append(stack, u)
			}
		}
		if len(stack) == 1 && len(seen) == 1 {
			t := stack[0]
			if len(g.EdgesBetween(t, s)) > 0 {
				return sb, false
			}
			sb.entrance, sb.exit = s, t
			inside := map[VertexId]bool{s: true, t: true}
			for _, w := range sb.interior {
				inside[w] = true
			}
			for _, w := range append([]VertexId{s}, sb.interior...) {
				for _, e := range g.outEdges[w] {
					if g.IsStrong(e) && inside[g.edges[e].Target] {
						sb.edges = append(sb.edges, e)
					}
				}
			}
			return sb, true
		}
	}
	return sb, false
}

// bestPath returns the path from entrance to exit with the highest
// total coverage, ties broken towards lower edge identifiers.
func (g *Graph) bestPath(sb *superBubble) []EdgeId {
	score := map[VertexId]int{sb.entrance: 0}
	via := map[VertexId]EdgeId{}
	order := append([]VertexId{sb.entrance}, sb.interior...)
	inSuperBubble := map[EdgeId]bool{}
	for _, e := range sb.edges {
		inSuperBubble[e] = true
	}
	for _, v := range order {
		for _, e := range g.outEdges[v] {
			if !inSuperBubble[e] {
				continue
			}
			w := g.edges[e].Target
			total := score[v] + g.edges[e].Coverage()
			best, reached := score[w]
			if !reached || total > best || (total == best && e < via[w]) {
				score[w] = total
				via[w] = e
			}
		}
	}
	var path []EdgeId
	for v := sb.exit; v != sb.entrance; {
		e := via[v]
		path = append(path, e)
		v = g.edges[e].Source
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func (g *Graph) commitSuperBubble(sb *superBubble) bool {
	if !g.allStrong(sb.edges) {
		return false
	}
	for _, v := range sb.interior {
		if !g.IsVertexLive(v) {
			return false
		}
	}
	kept := g.bestPath(sb)
	keptEdges := map[EdgeId]bool{}
	keptVertices := map[VertexId]bool{}
	for _, e := range kept {
		keptEdges[e] = true
		keptVertices[g.edges[e].Target] = true
	}
	var discarded []EdgeId
	for _, e := range sb.edges {
		if !keptEdges[e] {
			discarded = append(discarded, e)
			g.RemoveEdge(e, SuperBubble)
		}
	}
	for _, v := range sb.interior {
		if !keptVertices[v] {
			g.RemoveVertex(v)
		}
	}
	g.Bubbles = append(g.Bubbles, BubbleRecord{
		Source:    sb.entrance,
		Sink:      sb.exit,
		Super:     true,
		Kept:      kept,
		Discarded: [][]EdgeId{discarded},
	})
	return true
}

// RemoveSuperBubbles collapses all superbubbles with no path longer
// than maxLength edges to their path with the highest total coverage.
// It returns the number of superbubbles removed.
func (g *Graph) RemoveSuperBubbles(maxLength int) (removed int) {
	if maxLength <= 0 || g.VertexCount() == 0 {
		return 0
	}
	for {
		found := make([]*superBubble, g.VertexCount())
		parallel.Range(0, g.VertexCount(), 0, func(low, high int) {
			var buf []EdgeId
			for s := VertexId(low); s < VertexId(high); s++ {
				if !g.IsVertexLive(s) {
					continue
				}
				if buf = g.StrongOutEdges(s, buf[:0]); len(buf) < 2 {
					continue
				}
				if sb, ok := g.findSuperBubble(s, maxLength); ok {
					found[s] = &sb
				}
			}
		})
		var round int
		for _, sb := range found {
			if sb != nil && g.commitSuperBubble(sb) {
				round++
			}
		}
		if round == 0 {
			return removed
		}
		removed += round
	}
}
