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

// Package alignments stores marker-level alignments between pairs of
// reads, as produced by an external overlap and alignment stage.
package alignments

import (
	"fmt"

	"github.com/exascience/elmarker/internal"
	"github.com/exascience/elmarker/markers"
)

// An Alignment is a list of aligned marker ordinal pairs between two
// reads. Ordinals of the first read always refer to strand 0. Ordinals
// of the second read refer to strand 0 when IsSameStrand holds, and
// to strand 1 otherwise.
type Alignment struct {
	ReadIds      [2]uint32
	IsSameStrand bool
	Ordinals     [][2]uint32
}

// OrientedReadIds returns the oriented reads the ordinals refer to.
func (a *Alignment) OrientedReadIds() (o [2]markers.OrientedReadId) {
	o[0] = markers.NewOrientedReadId(a.ReadIds[0], 0)
	if a.IsSameStrand {
		o[1] = markers.NewOrientedReadId(a.ReadIds[1], 0)
	} else {
		o[1] = markers.NewOrientedReadId(a.ReadIds[1], 1)
	}
	return
}

// QualityParams are the pass/fail criteria alignments were computed
// with.
type QualityParams struct {
	MaxMarkerFrequency    int `mapstructure:"maxMarkerFrequency"`
	MaxSkip               int `mapstructure:"maxSkip"`
	MinAlignedMarkerCount int `mapstructure:"minAlignedMarkerCount"`
	MaxTrim               int `mapstructure:"maxTrim"`
}

const validateStage = "alignments"

func violation(readId, ordinal uint32, format string, v ...interface{}) error {
	return &internal.InputContractViolation{Stage: validateStage, ReadId: readId, Ordinal: ordinal, Reason: fmt.Sprintf(format, v...)}
}

// Validate checks that an alignment refers to existing reads and
// markers, and that its ordinals are strictly increasing on both
// reads.
func (a *Alignment) Validate(store *markers.Store) error {
	for _, readId := range a.ReadIds {
		if int(readId) >= store.ReadCount() {
			return violation(readId, internal.NoOrdinal, "unknown read")
		}
	}
	if a.ReadIds[0] == a.ReadIds[1] {
		return violation(a.ReadIds[0], internal.NoOrdinal, "read aligned with itself")
	}
	o := a.OrientedReadIds()
	counts := [2]uint32{store.MarkerCount(o[0]), store.MarkerCount(o[1])}
	for i, pair := range a.Ordinals {
		for side := 0; side < 2; side++ {
			if pair[side] >= counts[side] {
				return violation(a.ReadIds[side], pair[side], "ordinal out of range, read has %v markers", counts[side])
			}
			if i > 0 && pair[side] <= a.Ordinals[i-1][side] {
				return violation(a.ReadIds[side], pair[side], "aligned ordinals not strictly increasing")
			}
		}
	}
	return nil
}

// Trim returns the number of markers left unaligned at the start and
// at the end of the alignment, taking the smaller of both reads on
// each side.
func (a *Alignment) Trim(store *markers.Store) (left, right uint32) {
	if len(a.Ordinals) == 0 {
		return 0, 0
	}
	o := a.OrientedReadIds()
	first, last := a.Ordinals[0], a.Ordinals[len(a.Ordinals)-1]
	left = min32(first[0], first[1])
	right = min32(store.MarkerCount(o[0])-1-last[0], store.MarkerCount(o[1])-1-last[1])
	return
}

// MaxSkip returns the largest ordinal gap between consecutive aligned
// markers on either read.
func (a *Alignment) MaxSkip() (skip uint32) {
	for i := 1; i < len(a.Ordinals); i++ {
		for side := 0; side < 2; side++ {
			if d := a.Ordinals[i][side] - a.Ordinals[i-1][side]; d > skip {
				skip = d
			}
		}
	}
	return
}

// Accept reports whether an alignment passes the quality criteria.
// MaxMarkerFrequency needs k-mer identities and is not checked here.
func (params QualityParams) Accept(a *Alignment, store *markers.Store) bool {
	if len(a.Ordinals) < params.MinAlignedMarkerCount {
		return false
	}
	if params.MaxSkip > 0 && int(a.MaxSkip()) > params.MaxSkip {
		return false
	}
	if params.MaxTrim > 0 {
		left, right := a.Trim(store)
		if int(left) > params.MaxTrim || int(right) > params.MaxTrim {
			return false
		}
	}
	return true
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// A Store is an append-only collection of validated alignments.
type Store struct {
	alignments []Alignment

	// Rejected counts alignments that failed the quality criteria.
	Rejected int
}

// Append adds an alignment to the store.
func (s *Store) Append(a Alignment) {
	s.alignments = append(s.alignments, a)
}

// Len returns the number of stored alignments.
func (s *Store) Len() int { return len(s.alignments) }

// At returns the i-th alignment.
func (s *Store) At(i int) *Alignment { return &s.alignments[i] }

// AlignedPairCount returns the total number of aligned marker pairs.
func (s *Store) AlignedPairCount() (n int) {
	for i := range s.alignments {
		n += len(s.alignments[i].Ordinals)
	}
	return
}
