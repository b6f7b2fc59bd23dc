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
Package markers stores the marker occurrences of a closed set of reads.

Every read is normally present on both strands; a store can also be
restricted to strand 0 only. Markers of an oriented read are
numbered by ordinal, in the order in which they occur on that strand.
All marker occurrences of all oriented reads share a single dense
MarkerId space, which makes them usable as indices into flat arrays.
*/
package markers

import (
	"fmt"
	"sort"

	"github.com/exascience/elmarker/internal"
)

// An OrientedReadId is a read id combined with a strand (0 or 1).
type OrientedReadId uint32

// NewOrientedReadId combines a read id and a strand.
func NewOrientedReadId(readId, strand uint32) OrientedReadId {
	return OrientedReadId(readId<<1 | strand&1)
}

// ReadId returns the read id of an oriented read.
func (o OrientedReadId) ReadId() uint32 { return uint32(o) >> 1 }

// Strand returns the strand of an oriented read.
func (o OrientedReadId) Strand() uint32 { return uint32(o) & 1 }

// Reverse returns the same read on the opposite strand.
func (o OrientedReadId) Reverse() OrientedReadId { return o ^ 1 }

func (o OrientedReadId) String() string {
	return fmt.Sprintf("%v-%v", o.ReadId(), o.Strand())
}

// A MarkerId identifies a single marker occurrence on an oriented read.
type MarkerId uint64

// An Occurrence is the (oriented read, ordinal) form of a MarkerId.
type Occurrence struct {
	OrientedReadId OrientedReadId
	Ordinal        uint32
}

// A Store holds the marker positions of all reads. It is filled with
// AddRead and is read-only afterwards.
type Store struct {
	// K is the marker length in bases.
	K int

	// BothStrands is false when strand 1 carries no markers.
	BothStrands bool

	names     []string
	byName    map[string]uint32
	lengths   []uint32
	positions [][]uint32
	offsets   []MarkerId
}

// NewStore returns an empty store for markers of length k.
func NewStore(k int, bothStrands bool) *Store {
	return &Store{
		K:           k,
		BothStrands: bothStrands,
		byName:      make(map[string]uint32),
		offsets:     []MarkerId{0},
	}
}

const storeStage = "markers"

// AddRead adds a read with the given length and strand-0 marker
// positions, and returns its read id. Positions must be strictly
// increasing and every marker must fit in the read.
func (s *Store) AddRead(name string, length uint32, positions []uint32) (uint32, error) {
	readId := uint32(len(s.names))
	if _, ok := s.byName[name]; ok {
		return 0, &internal.InputContractViolation{Stage: storeStage, ReadId: readId, Ordinal: internal.NoOrdinal, Reason: fmt.Sprintf("duplicate read name %v", name)}
	}
	for i, pos := range positions {
		if uint64(pos)+uint64(s.K) > uint64(length) {
			return 0, &internal.InputContractViolation{Stage: storeStage, ReadId: readId, Ordinal: uint32(i), Reason: fmt.Sprintf("marker at position %v exceeds read length %v", pos, length)}
		}
		if i > 0 && pos <= positions[i-1] {
			return 0, &internal.InputContractViolation{Stage: storeStage, ReadId: readId, Ordinal: uint32(i), Reason: "marker positions not strictly increasing"}
		}
	}
	s.names = append(s.names, name)
	s.byName[name] = readId
	s.lengths = append(s.lengths, length)
	s.positions = append(s.positions, positions)
	last := s.offsets[len(s.offsets)-1]
	n := MarkerId(len(positions))
	if s.BothStrands {
		s.offsets = append(s.offsets, last+n, last+2*n)
	} else {
		s.offsets = append(s.offsets, last+n, last+n)
	}
	return readId, nil
}

// ReadCount returns the number of reads.
func (s *Store) ReadCount() int { return len(s.names) }

// OrientedReadCount returns twice the number of reads.
func (s *Store) OrientedReadCount() int { return 2 * len(s.names) }

// Name returns the name of a read.
func (s *Store) Name(readId uint32) string { return s.names[readId] }

// Lookup returns the read id for a read name.
func (s *Store) Lookup(name string) (readId uint32, ok bool) {
	readId, ok = s.byName[name]
	return
}

// ReadLength returns the length of a read in bases.
func (s *Store) ReadLength(readId uint32) uint32 { return s.lengths[readId] }

// MarkerCount returns the number of markers on an oriented read.
func (s *Store) MarkerCount(o OrientedReadId) uint32 {
	return uint32(s.offsets[o+1] - s.offsets[o])
}

// TotalMarkerCount returns the number of marker occurrences over all
// oriented reads.
func (s *Store) TotalMarkerCount() uint64 {
	return uint64(s.offsets[len(s.offsets)-1])
}

// Id returns the MarkerId of an occurrence without bounds checking.
func (s *Store) Id(o OrientedReadId, ordinal uint32) MarkerId {
	return s.offsets[o] + MarkerId(ordinal)
}

// MarkerId returns the MarkerId of an occurrence.
func (s *Store) MarkerId(o OrientedReadId, ordinal uint32) (MarkerId, error) {
	if int(o.ReadId()) >= len(s.names) {
		return 0, &internal.InputContractViolation{Stage: storeStage, ReadId: o.ReadId(), Ordinal: ordinal, Reason: "unknown read"}
	}
	if ordinal >= s.MarkerCount(o) {
		return 0, &internal.InputContractViolation{Stage: storeStage, ReadId: o.ReadId(), Ordinal: ordinal, Reason: fmt.Sprintf("ordinal out of range, read has %v markers", s.MarkerCount(o))}
	}
	return s.Id(o, ordinal), nil
}

// Find returns the occurrence that corresponds to a MarkerId.
func (s *Store) Find(id MarkerId) Occurrence {
	i := sort.Search(len(s.offsets), func(i int) bool { return s.offsets[i] > id }) - 1
	return Occurrence{OrientedReadId: OrientedReadId(i), Ordinal: uint32(id - s.offsets[i])}
}

// Range returns the half-open MarkerId interval of an oriented read.
func (s *Store) Range(o OrientedReadId) (first, last MarkerId) {
	return s.offsets[o], s.offsets[o+1]
}

// Position returns the position of a marker on its oriented read.
// On strand 1, positions are measured on the reverse complement.
func (s *Store) Position(o OrientedReadId, ordinal uint32) uint32 {
	positions := s.positions[o.ReadId()]
	if o.Strand() == 0 || !s.BothStrands {
		return positions[ordinal]
	}
	return s.lengths[o.ReadId()] - uint32(s.K) - positions[len(positions)-1-int(ordinal)]
}

// ReverseOrdinal returns the ordinal of the same marker seen from the
// opposite strand.
func (s *Store) ReverseOrdinal(o OrientedReadId, ordinal uint32) uint32 {
	return s.MarkerCount(o) - 1 - ordinal
}
