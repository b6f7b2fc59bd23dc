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

package markers

import (
	"errors"
	"strings"
	"testing"

	"github.com/exascience/elmarker/internal"
)

func TestOrientedReadId(t *testing.T) {
	o := NewOrientedReadId(7, 1)
	if o.ReadId() != 7 || o.Strand() != 1 {
		t.Errorf("NewOrientedReadId(7, 1) decodes to %v", o)
	}
	if r := o.Reverse(); r.ReadId() != 7 || r.Strand() != 0 {
		t.Errorf("Reverse of %v is %v", o, r)
	}
	if o.String() != "7-1" {
		t.Errorf("unexpected string %v", o.String())
	}
}

func TestStoreIds(t *testing.T) {
	s := NewStore(3, true)
	if _, err := s.AddRead("a", 20, []uint32{0, 4, 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddRead("empty", 2, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddRead("b", 10, []uint32{1, 6}); err != nil {
		t.Fatal(err)
	}
	if s.TotalMarkerCount() != 10 {
		t.Errorf("total marker count %v, expected 10", s.TotalMarkerCount())
	}
	for o := OrientedReadId(0); int(o) < s.OrientedReadCount(); o++ {
		for ordinal := uint32(0); ordinal < s.MarkerCount(o); ordinal++ {
			id, err := s.MarkerId(o, ordinal)
			if err != nil {
				t.Fatal(err)
			}
			if occ := s.Find(id); occ.OrientedReadId != o || occ.Ordinal != ordinal {
				t.Errorf("Find(%v) = %v, expected %v/%v", id, occ, o, ordinal)
			}
		}
	}
	if _, err := s.MarkerId(NewOrientedReadId(0, 0), 3); err == nil {
		t.Error("out of range ordinal accepted")
	}
	var violation *internal.InputContractViolation
	if _, err := s.MarkerId(NewOrientedReadId(5, 0), 0); !errors.As(err, &violation) || violation.ReadId != 5 {
		t.Errorf("unknown read not reported properly: %v", err)
	}
}

func TestStorePositions(t *testing.T) {
	s := NewStore(3, true)
	if _, err := s.AddRead("a", 20, []uint32{0, 4, 10}); err != nil {
		t.Fatal(err)
	}
	o := NewOrientedReadId(0, 1)
	expected := []uint32{7, 13, 17}
	for ordinal, pos := range expected {
		if got := s.Position(o, uint32(ordinal)); got != pos {
			t.Errorf("strand 1 position of ordinal %v is %v, expected %v", ordinal, got, pos)
		}
	}
	if s.ReverseOrdinal(o, 0) != 2 {
		t.Error("ReverseOrdinal failed")
	}
}

func TestAddReadViolations(t *testing.T) {
	s := NewStore(5, true)
	if _, err := s.AddRead("a", 10, []uint32{3, 3}); err == nil {
		t.Error("non-increasing positions accepted")
	}
	if _, err := s.AddRead("a", 10, []uint32{6}); err == nil {
		t.Error("marker beyond read end accepted")
	}
	if _, err := s.AddRead("a", 10, []uint32{0}); err != nil {
		t.Error(err)
	}
	if _, err := s.AddRead("a", 10, []uint32{0}); err == nil {
		t.Error("duplicate read name accepted")
	}
}

func TestParseStore(t *testing.T) {
	input := "# reads\nr0\t100\t0,10,20\nr1\t50\t\nr2\t30\t5,15\n"
	s, err := ParseStore(strings.NewReader(input), 4, true)
	if err != nil {
		t.Fatal(err)
	}
	if s.ReadCount() != 3 {
		t.Fatalf("read count %v, expected 3", s.ReadCount())
	}
	if id, ok := s.Lookup("r2"); !ok || id != 2 || s.Name(2) != "r2" {
		t.Error("read names not assigned in file order")
	}
	if s.MarkerCount(NewOrientedReadId(0, 1)) != 3 || s.MarkerCount(NewOrientedReadId(1, 0)) != 0 {
		t.Error("unexpected marker counts")
	}
	if s.ReadLength(2) != 30 {
		t.Error("unexpected read length")
	}
	if _, err := ParseStore(strings.NewReader("r0\tx\t1,2\n"), 4, true); err == nil {
		t.Error("invalid length accepted")
	}
}

func TestSingleStrandStore(t *testing.T) {
	s := NewStore(2, false)
	if _, err := s.AddRead("a", 10, []uint32{0, 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddRead("b", 10, []uint32{1}); err != nil {
		t.Fatal(err)
	}
	if s.TotalMarkerCount() != 3 {
		t.Errorf("total marker count %v, expected 3", s.TotalMarkerCount())
	}
	if s.MarkerCount(NewOrientedReadId(0, 1)) != 0 {
		t.Error("strand 1 has markers in a single strand store")
	}
	if occ := s.Find(2); occ.OrientedReadId != NewOrientedReadId(1, 0) || occ.Ordinal != 0 {
		t.Errorf("Find(2) = %v", occ)
	}
}

func TestParseStoreViolations(t *testing.T) {
	tests := []struct {
		name, line, reason string
	}{
		{"bad length", "r0\tx\t1,2", "read length"},
		{"bad position", "r0\t10\t1,y", "marker position"},
		{"missing name", "\t10", "invalid markers line"},
		{"missing length", "r0", "invalid markers line"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStore(strings.NewReader(tt.line+"\n"), 4, true)
			var violation *internal.InputContractViolation
			if !errors.As(err, &violation) {
				t.Fatalf("got %v, expected an input contract violation", err)
			}
			if violation.Stage != "markers" || violation.ReadId != internal.NoReadId || !strings.Contains(violation.Reason, tt.reason) {
				t.Errorf("got %+v", violation)
			}
		})
	}
}
