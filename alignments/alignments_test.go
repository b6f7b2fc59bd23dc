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

package alignments

import (
	"errors"
	"strings"
	"testing"

	"github.com/exascience/elmarker/internal"
	"github.com/exascience/elmarker/markers"
)

func makeStore(t *testing.T) *markers.Store {
	s := markers.NewStore(2, true)
	for _, name := range []string{"r0", "r1", "r2"} {
		if _, err := s.AddRead(name, 100, []uint32{0, 10, 20, 30, 40, 50}); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestValidate(t *testing.T) {
	s := makeStore(t)
	good := Alignment{ReadIds: [2]uint32{0, 1}, IsSameStrand: true, Ordinals: [][2]uint32{{0, 1}, {2, 3}}}
	if err := good.Validate(s); err != nil {
		t.Error(err)
	}
	var violation *internal.InputContractViolation
	outOfRange := Alignment{ReadIds: [2]uint32{0, 1}, Ordinals: [][2]uint32{{0, 6}}}
	if err := outOfRange.Validate(s); !errors.As(err, &violation) || violation.ReadId != 1 || violation.Ordinal != 6 {
		t.Errorf("out of range ordinal not reported properly: %v", err)
	}
	unordered := Alignment{ReadIds: [2]uint32{0, 2}, Ordinals: [][2]uint32{{3, 1}, {2, 2}}}
	if err := unordered.Validate(s); !errors.As(err, &violation) || violation.ReadId != 0 {
		t.Errorf("decreasing ordinals not reported properly: %v", err)
	}
	unknown := Alignment{ReadIds: [2]uint32{0, 9}}
	if err := unknown.Validate(s); !errors.As(err, &violation) || violation.ReadId != 9 {
		t.Errorf("unknown read not reported properly: %v", err)
	}
	self := Alignment{ReadIds: [2]uint32{1, 1}}
	if err := self.Validate(s); err == nil {
		t.Error("self alignment accepted")
	}
}

func TestOrientedReadIds(t *testing.T) {
	a := Alignment{ReadIds: [2]uint32{3, 5}}
	o := a.OrientedReadIds()
	if o[0] != markers.NewOrientedReadId(3, 0) || o[1] != markers.NewOrientedReadId(5, 1) {
		t.Errorf("unexpected oriented reads %v", o)
	}
}

func TestAccept(t *testing.T) {
	s := makeStore(t)
	a := Alignment{ReadIds: [2]uint32{0, 1}, IsSameStrand: true, Ordinals: [][2]uint32{{1, 0}, {2, 1}, {5, 3}}}
	if a.MaxSkip() != 3 {
		t.Errorf("MaxSkip %v, expected 3", a.MaxSkip())
	}
	if left, right := a.Trim(s); left != 0 || right != 0 {
		t.Errorf("Trim %v %v, expected 0 0", left, right)
	}
	if !(QualityParams{MinAlignedMarkerCount: 3, MaxSkip: 3}).Accept(&a, s) {
		t.Error("alignment rejected")
	}
	if (QualityParams{MinAlignedMarkerCount: 4}).Accept(&a, s) {
		t.Error("too short alignment accepted")
	}
	if (QualityParams{MaxSkip: 2}).Accept(&a, s) {
		t.Error("alignment with too large skip accepted")
	}
	trimmed := Alignment{ReadIds: [2]uint32{0, 1}, IsSameStrand: true, Ordinals: [][2]uint32{{2, 3}}}
	if (QualityParams{MaxTrim: 1}).Accept(&trimmed, s) {
		t.Error("alignment with too large trim accepted")
	}
}

func TestParseStore(t *testing.T) {
	s := makeStore(t)
	input := "r0\tr1\t1\t0:0,1:1,2:2\nr1\tr2\t0\t0:1\nr0\tr2\t1\t\n"
	store, err := ParseStore(strings.NewReader(input), s, QualityParams{MinAlignedMarkerCount: 1})
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 2 || store.Rejected != 1 {
		t.Fatalf("%v alignments and %v rejected, expected 2 and 1", store.Len(), store.Rejected)
	}
	if a := store.At(1); a.IsSameStrand || a.ReadIds != [2]uint32{1, 2} {
		t.Errorf("unexpected alignment %v", a)
	}
	if store.AlignedPairCount() != 4 {
		t.Errorf("aligned pair count %v, expected 4", store.AlignedPairCount())
	}
	if _, err := ParseStore(strings.NewReader("r0\tr1\t1\t0:7\n"), s, QualityParams{}); err == nil {
		t.Error("out of range ordinal accepted")
	}
	if _, err := ParseStore(strings.NewReader("r0\tr1\t2\t0:1\n"), s, QualityParams{}); err == nil {
		t.Error("invalid strand flag accepted")
	}
}

func TestParseStoreViolations(t *testing.T) {
	s := makeStore(t)
	tests := []struct {
		name    string
		line    string
		readId  uint32
		ordinal uint32
	}{
		{"bad ordinal", "r0\tr1\t1\t0:x", 1, internal.NoOrdinal},
		{"unknown read", "r0\tnosuch\t1\t0:0", internal.NoReadId, internal.NoOrdinal},
		{"bad pair", "r0\tr1\t1\t0-0", 0, internal.NoOrdinal},
		{"bad strand flag", "r0\tr1\t2\t0:1", 0, internal.NoOrdinal},
		{"missing fields", "r0\tr1", internal.NoReadId, internal.NoOrdinal},
		{"ordinal out of range", "r0\tr1\t1\t0:7", 1, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStore(strings.NewReader(tt.line+"\n"), s, QualityParams{})
			var violation *internal.InputContractViolation
			if !errors.As(err, &violation) {
				t.Fatalf("got %v, expected an input contract violation", err)
			}
			if violation.Stage != "alignments" || violation.ReadId != tt.readId || violation.Ordinal != tt.ordinal {
				t.Errorf("got %+v", violation)
			}
		})
	}
	var violation *internal.InputContractViolation
	if _, err := ParseStore(strings.NewReader("r0\tnosuch\t1\t0:0\n"), s, QualityParams{}); errors.As(err, &violation) && !strings.Contains(violation.Reason, "nosuch") {
		t.Errorf("unknown read name missing from %q", violation.Reason)
	}
}
