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

import "log"

// SimplifyParams bound the structures removed by Simplify, in
// marker graph edges.
type SimplifyParams struct {
	ShortCycleLengthThreshold  int
	BubbleLengthThreshold      int
	SuperBubbleLengthThreshold int

	// CheckInvariants runs Check after every pass.
	CheckInvariants bool
}

// SimplifyResult counts what Simplify removed.
type SimplifyResult struct {
	ShortCycleEdges int
	Bubbles         int
	SuperBubbles    int
}

// Simplify removes short cycles, then bubbles, then superbubbles from
// the strong subgraph.
func (g *Graph) Simplify(params SimplifyParams) (result SimplifyResult, err error) {
	result.ShortCycleEdges = g.RemoveShortCycles(params.ShortCycleLengthThreshold)
	log.Printf("Removed %v edges to break short cycles.\n", result.ShortCycleEdges)
	if params.CheckInvariants {
		if err = g.Check("short cycle removal"); err != nil {
			return
		}
	}
	result.Bubbles = g.RemoveBubbles(params.BubbleLengthThreshold)
	log.Printf("Removed %v bubbles.\n", result.Bubbles)
	if params.CheckInvariants {
		if err = g.Check("bubble removal"); err != nil {
			return
		}
	}
	result.SuperBubbles = g.RemoveSuperBubbles(params.SuperBubbleLengthThreshold)
	log.Printf("Removed %v superbubbles.\n", result.SuperBubbles)
	if params.CheckInvariants {
		err = g.Check("superbubble removal")
	}
	return
}
