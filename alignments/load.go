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
	"io"
	"strconv"
	"strings"

	"github.com/exascience/elmarker/internal"
	"github.com/exascience/elmarker/markers"
	"github.com/exascience/pargo/pipeline"
)

func parseOrdinal(s string, readId uint32, str string) (uint32, error) {
	value, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, violation(readId, internal.NoOrdinal, "%v, while parsing ordinal in alignments line %v", err, str)
	}
	return uint32(value), nil
}

func parseAlignmentLine(str string, store *markers.Store) (a Alignment, err error) {
	fields := strings.Split(str, "\t")
	if len(fields) != 4 {
		return a, violation(internal.NoReadId, internal.NoOrdinal, "invalid alignments line %v", str)
	}
	for side := 0; side < 2; side++ {
		readId, ok := store.Lookup(fields[side])
		if !ok {
			return a, violation(internal.NoReadId, internal.NoOrdinal, "unknown read %v in alignments line %v", fields[side], str)
		}
		a.ReadIds[side] = readId
	}
	switch fields[2] {
	case "0":
		a.IsSameStrand = false
	case "1":
		a.IsSameStrand = true
	default:
		return a, violation(a.ReadIds[0], internal.NoOrdinal, "invalid strand flag %v in alignments line %v", fields[2], str)
	}
	if fields[3] == "" {
		return a, nil
	}
	pairs := strings.Split(fields[3], ",")
	a.Ordinals = make([][2]uint32, len(pairs))
	for i, pair := range pairs {
		colon := strings.IndexByte(pair, ':')
		if colon < 0 {
			return a, violation(a.ReadIds[0], internal.NoOrdinal, "invalid ordinal pair %v in alignments line %v", pair, str)
		}
		if a.Ordinals[i][0], err = parseOrdinal(pair[:colon], a.ReadIds[0], str); err != nil {
			return a, err
		}
		if a.Ordinals[i][1], err = parseOrdinal(pair[colon+1:], a.ReadIds[1], str); err != nil {
			return a, err
		}
	}
	return a, nil
}

type parsedAlignment struct {
	alignment Alignment
	accepted  bool
}

// ParseStore reads alignments, one per line, in the form
// "read0<TAB>read1<TAB>sameStrand<TAB>o0:o1,o0:o1,...". Every alignment
// is validated against the marker store. Alignments that fail the
// quality criteria are counted and dropped.
func ParseStore(reader io.Reader, store *markers.Store, params QualityParams) (*Store, error) {
	result := &Store{}
	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(reader))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		strs := data.([]string)
		parsed := make([]parsedAlignment, 0, len(strs))
		for _, str := range strs {
			if str == "" || str[0] == '#' {
				continue
			}
			a, err := parseAlignmentLine(str, store)
			if err != nil {
				p.SetErr(err)
				return parsed
			}
			if err := a.Validate(store); err != nil {
				p.SetErr(err)
				return parsed
			}
			parsed = append(parsed, parsedAlignment{a, params.Accept(&a, store)})
		}
		return parsed
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		for _, entry := range data.([]parsedAlignment) {
			if entry.accepted {
				result.Append(entry.alignment)
			} else {
				result.Rejected++
			}
		}
		return data
	})))
	if err := internal.RunPipeline(&p); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadStore parses an alignments file, which may be zstd-compressed.
func LoadStore(filename string, store *markers.Store, params QualityParams) (result *Store, err error) {
	file, err := internal.Open(filename)
	if err != nil {
		return nil, err
	}
	defer internal.Close(file, &err)
	return ParseStore(file, store, params)
}
