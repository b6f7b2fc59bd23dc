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
	"sort"

	"github.com/exascience/pargo/parallel"
	psort "github.com/exascience/pargo/sort"

	"github.com/exascience/elmarker/markers"
)

type edgeRecord struct {
	source, target VertexId
	interval       MarkerInterval
}

func (r *edgeRecord) less(s *edgeRecord) bool {
	switch {
	case r.source != s.source:
		return r.source < s.source
	case r.target != s.target:
		return r.target < s.target
	case r.interval.OrientedReadId != s.interval.OrientedReadId:
		return r.interval.OrientedReadId < s.interval.OrientedReadId
	default:
		return r.interval.Ordinals[0] < s.interval.Ordinals[0]
	}
}

type edgeRecords []edgeRecord

func (r edgeRecords) SequentialSort(i, j int) {
	records := r[i:j]
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].less(&records[j])
	})
}

func (r edgeRecords) NewTemp() psort.StableSorter {
	return make(edgeRecords, len(r))
}

func (r edgeRecords) Len() int {
	return len(r)
}

func (r edgeRecords) Less(i, j int) bool {
	return r[i].less(&r[j])
}

func (r edgeRecords) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := r, source.(edgeRecords)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// walkOrientedRead emits a record for each pair of consecutive
// markers of an oriented read that belong to two different live
// vertices. Markers without a live vertex are skipped.
func (g *Graph) walkOrientedRead(o markers.OrientedReadId, records edgeRecords) edgeRecords {
	first, last := g.Markers.Range(o)
	previous := InvalidVertexId
	var previousOrdinal uint32
	for m := first; m < last; m++ {
		v := g.vertexOf[m]
		if v == InvalidVertexId {
			continue
		}
		ordinal := uint32(m - first)
		if previous != InvalidVertexId && v != previous {
			records = append(records, edgeRecord{
				source:   previous,
				target:   v,
				interval: MarkerInterval{OrientedReadId: o, Ordinals: [2]uint32{previousOrdinal, ordinal}},
			})
		}
		previous, previousOrdinal = v, ordinal
	}
	return records
}

// CreateEdges walks all oriented reads and merges their consecutive
// live vertices into edges. It returns the number of edges in the
// graph afterwards.
func (g *Graph) CreateEdges() int {
	n := g.Markers.OrientedReadCount()
	if n == 0 {
		return g.EdgeCount()
	}
	records := parallel.RangeReduce(0, n, 0, func(low, high int) interface{} {
		var records edgeRecords
		for o := low; o < high; o++ {
			records = g.walkOrientedRead(markers.OrientedReadId(o), records)
		}
		return records
	}, func(x, y interface{}) interface{} {
		return append(x.(edgeRecords), y.(edgeRecords)...)
	}).(edgeRecords)

	psort.StableSort(records)

	for i := 0; i < len(records); {
		source, target := records[i].source, records[i].target
		j := i + 1
		intervals := []MarkerInterval{records[i].interval}
		for ; j < len(records) && records[j].source == source && records[j].target == target; j++ {
			if records[j].interval != records[j-1].interval {
				intervals = append(intervals, records[j].interval)
			}
		}
		if len(g.edgesByEnd[vertexPair{source, target}]) == 0 {
			g.AddEdge(source, target, intervals)
		} else {
			for _, interval := range intervals {
				g.InsertOrMerge(source, target, interval)
			}
		}
		i = j
	}
	return g.EdgeCount()
}
