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

import (
	"encoding/binary"

	"github.com/cespare/xxhash"
	"github.com/exascience/pargo/parallel"

	"github.com/exascience/elmarker/alignments"
	"github.com/exascience/elmarker/markers"
)

// Evidence is a read-only sequence of alignments.
type Evidence interface {
	Len() int
	At(i int) *alignments.Alignment
}

func validateEvidence(store *markers.Store, evidence Evidence) error {
	return firstError(evidence.Len(), func(low, high int) error {
		for i := low; i < high; i++ {
			if err := evidence.At(i).Validate(store); err != nil {
				return err
			}
		}
		return nil
	})
}

// BuildVertices merges aligned marker occurrences into vertices. Every
// aligned pair of markers is united, and when the store holds both
// strands, so is the corresponding pair on the opposite strands.
//
// The resulting vertex partition and numbering only depend on the set
// of aligned pairs, not on the order of the alignments.
func BuildVertices(store *markers.Store, evidence Evidence) (*Graph, error) {
	if err := validateEvidence(store, evidence); err != nil {
		return nil, err
	}

	markerCount := store.TotalMarkerCount()
	sets := NewDisjointSets(markerCount)
	if evidence.Len() > 0 {
		parallel.Range(0, evidence.Len(), 0, func(low, high int) {
			for i := low; i < high; i++ {
				a := evidence.At(i)
				o := a.OrientedReadIds()
				for _, pair := range a.Ordinals {
					sets.Union(uint64(store.Id(o[0], pair[0])), uint64(store.Id(o[1], pair[1])))
					if store.BothStrands {
						r0, r1 := o[0].Reverse(), o[1].Reverse()
						sets.Union(
							uint64(store.Id(r0, store.ReverseOrdinal(r0, pair[0]))),
							uint64(store.Id(r1, store.ReverseOrdinal(r1, pair[1]))))
					}
				}
			}
		})
	}

	roots := make([]uint64, markerCount)
	if markerCount > 0 {
		parallel.Range(0, len(roots), 0, func(low, high int) {
			for m := low; m < high; m++ {
				roots[m] = sets.Find(uint64(m))
			}
		})
	}

	// A root is the smallest member of its set, so it is numbered
	// before any of its other members is visited.
	vertexOf := make([]VertexId, markerCount)
	var vertexCount int
	for m, root := range roots {
		if root == uint64(m) {
			vertexOf[m] = VertexId(vertexCount)
			vertexCount++
		} else {
			vertexOf[m] = vertexOf[root]
		}
	}

	g := newGraph(store, vertexCount)
	g.vertexOf = vertexOf
	for _, v := range vertexOf {
		g.memberOffsets[v+1]++
	}
	for v := 1; v <= vertexCount; v++ {
		g.memberOffsets[v] += g.memberOffsets[v-1]
	}
	g.members = make([]markers.MarkerId, markerCount)
	next := make([]uint64, vertexCount)
	copy(next, g.memberOffsets[:vertexCount])
	for m, v := range vertexOf {
		g.members[next[v]] = markers.MarkerId(m)
		next[v]++
	}
	return g, nil
}

// Fingerprint returns a hash of the vertex partition, for comparing
// the results of different runs.
func (g *Graph) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, v := range g.vertexOf {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// isBad reports whether a vertex contains more than one marker of the
// same oriented read. Members are sorted, so such markers are adjacent.
func (g *Graph) isBad(v VertexId) bool {
	members := g.Members(v)
	for i := 1; i < len(members); i++ {
		if g.Markers.Find(members[i-1]).OrientedReadId == g.Markers.Find(members[i]).OrientedReadId {
			return true
		}
	}
	return false
}

// FilterVertices removes the vertices with a coverage outside
// [minCoverage, maxCoverage], and the vertices that contain more than
// one marker of the same oriented read. It returns the number of
// vertices removed.
func (g *Graph) FilterVertices(minCoverage, maxCoverage int) int {
	remove := collectVertices(g.VertexCount(), func(low, high int) (remove []VertexId) {
		for v := VertexId(low); v < VertexId(high); v++ {
			if !g.IsVertexLive(v) {
				continue
			}
			if c := g.Coverage(v); c < minCoverage || c > maxCoverage || g.isBad(v) {
				remove = append(remove, v)
			}
		}
		return remove
	})
	for _, v := range remove {
		g.RemoveVertex(v)
	}
	return len(remove)
}
