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
	"fmt"

	"github.com/exascience/elmarker/internal"
)

// Invariant kinds reported by Check.
const (
	MembershipInvariant = "vertex membership"
	LivenessInvariant   = "edge liveness"
	SupportInvariant    = "edge support"
)

func violation(stage, kind string, reason string, ids ...uint64) error {
	return &internal.InvariantViolation{Stage: stage, Kind: kind, Ids: ids, Reason: reason}
}

// Check verifies that every marker occurrence belongs to exactly its
// live vertex or is detached, and that every live edge connects live
// vertices and is supported by markers of those vertices. Violations
// are reported as *internal.InvariantViolation for the given stage.
func (g *Graph) Check(stage string) error {
	if err := firstError(g.VertexCount(), func(low, high int) error {
		for v := VertexId(low); v < VertexId(high); v++ {
			live := g.IsVertexLive(v)
			for _, m := range g.Members(v) {
				switch w := g.vertexOf[m]; {
				case live && w != v:
					return violation(stage, MembershipInvariant, fmt.Sprintf("marker %v of live vertex %v maps to %v", m, v, w), uint64(v), uint64(m))
				case !live && w != InvalidVertexId:
					return violation(stage, MembershipInvariant, fmt.Sprintf("marker %v of removed vertex %v maps to %v", m, v, w), uint64(v), uint64(m))
				}
			}
		}
		return nil
	}); err != nil {
		return err
	}
	return firstError(g.EdgeCount(), func(low, high int) error {
		for e := EdgeId(low); e < EdgeId(high); e++ {
			if !g.IsEdgeLive(e) {
				continue
			}
			edge := &g.edges[e]
			if !g.IsVertexLive(edge.Source) || !g.IsVertexLive(edge.Target) {
				return violation(stage, LivenessInvariant, fmt.Sprintf("live edge %v connects %v and %v", e, edge.Source, edge.Target), uint64(e), uint64(edge.Source), uint64(edge.Target))
			}
			if g.vertexOf == nil {
				continue
			}
			for _, interval := range edge.Intervals {
				m0 := g.Markers.Id(interval.OrientedReadId, interval.Ordinals[0])
				m1 := g.Markers.Id(interval.OrientedReadId, interval.Ordinals[1])
				if g.vertexOf[m0] != edge.Source || g.vertexOf[m1] != edge.Target {
					return violation(stage, SupportInvariant, fmt.Sprintf("edge %v supported by markers %v and %v outside its vertices", e, m0, m1), uint64(e), uint64(m0), uint64(m1))
				}
			}
		}
		return nil
	})
}
