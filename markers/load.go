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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/exascience/elmarker/internal"
	"github.com/exascience/pargo/pipeline"
)

type markerLine struct {
	name      string
	length    uint32
	positions []uint32
}

func parseError(format string, v ...interface{}) error {
	return &internal.InputContractViolation{Stage: storeStage, ReadId: internal.NoReadId, Ordinal: internal.NoOrdinal, Reason: fmt.Sprintf(format, v...)}
}

func parseMarkerLine(str string) (line markerLine, err error) {
	fields := strings.Split(str, "\t")
	if len(fields) < 2 || len(fields) > 3 || fields[0] == "" {
		return line, parseError("invalid markers line %v", str)
	}
	line.name = fields[0]
	length, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return line, parseError("%v, while parsing read length in markers line %v", err, str)
	}
	line.length = uint32(length)
	if len(fields) == 2 || fields[2] == "" {
		return line, nil
	}
	positions := strings.Split(fields[2], ",")
	line.positions = make([]uint32, len(positions))
	for i, p := range positions {
		value, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return line, parseError("%v, while parsing marker position in markers line %v", err, str)
		}
		line.positions[i] = uint32(value)
	}
	return line, nil
}

// ParseStore reads marker positions, one read per line, in the
// form "name<TAB>length<TAB>p0,p1,...". Read ids are assigned in
// file order.
func ParseStore(reader io.Reader, k int, bothStrands bool) (*Store, error) {
	store := NewStore(k, bothStrands)
	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(reader))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		strs := data.([]string)
		lines := make([]markerLine, 0, len(strs))
		for _, str := range strs {
			if str == "" || str[0] == '#' {
				continue
			}
			line, err := parseMarkerLine(str)
			if err != nil {
				p.SetErr(err)
				return lines
			}
			lines = append(lines, line)
		}
		return lines
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		for _, line := range data.([]markerLine) {
			if _, err := store.AddRead(line.name, line.length, line.positions); err != nil {
				p.SetErr(err)
				return data
			}
		}
		return data
	})))
	if err := internal.RunPipeline(&p); err != nil {
		return nil, err
	}
	return store, nil
}

// LoadStore parses a markers file, which may be zstd-compressed.
func LoadStore(filename string, k int, bothStrands bool) (store *Store, err error) {
	file, err := internal.Open(filename)
	if err != nil {
		return nil, err
	}
	defer internal.Close(file, &err)
	return ParseStore(file, k, bothStrands)
}
