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

package cmd

import (
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/exascience/elmarker/config"
	"github.com/exascience/elmarker/internal"
)

const testMarkers = `# three reads with six markers each
read0	70	0,10,20,30,40,50
read1	70	0,10,20,30,40,50
read2	70	0,10,20,30,40,50
`

func writeTestInputs(t *testing.T, alignmentLines string) (dir string, run *assembleRun) {
	dir = t.TempDir()
	run = &assembleRun{
		markers:    filepath.Join(dir, "markers.tsv"),
		alignments: filepath.Join(dir, "alignments.tsv"),
		output:     filepath.Join(dir, "out"),
		runId:      "test-run",
	}
	if err := ioutil.WriteFile(run.markers, []byte(testMarkers), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(run.alignments, []byte(alignmentLines), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, run
}

func testOptions(t *testing.T) *config.Options {
	opts, err := config.Load(viper.New(), "")
	if err != nil {
		t.Fatal(err)
	}
	opts.MarkerGraph.MinCoverage = 1
	opts.Align.MinAlignedMarkerCount = 1
	opts.Debug.CheckInvariants = true
	opts.Debug.WriteMarkerGraphDot = true
	return &opts
}

func TestAssemble(t *testing.T) {
	_, run := writeTestInputs(t, "read0\tread1\t1\t0:0,1:1,2:2,3:3,4:4,5:5\nread0\tread2\t1\t0:0,1:1,2:2,3:3,4:4,5:5\n")
	if err := assemble(testOptions(t), run); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{AssemblyGraphGFA, AssemblyGraphDot, AssemblySummary, ChainLengthHistogram, BubbleReport, SimplifiedMarkerGraphDot} {
		if _, err := ioutil.ReadFile(filepath.Join(run.output, name)); err != nil {
			t.Errorf("output %v missing: %v", name, err)
		}
	}
	gfa, err := ioutil.ReadFile(filepath.Join(run.output, AssemblyGraphGFA))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(gfa)), "\n")
	if len(lines) != 3 || lines[0] != "H\tVN:Z:1.0\tRI:Z:test-run" {
		t.Fatalf("unexpected GFA %q", gfa)
	}
	for _, line := range lines[1:] {
		if !strings.HasPrefix(line, "S\t") || !strings.Contains(line, "\tLN:i:60\t") {
			t.Errorf("unexpected segment %q", line)
		}
	}
	histogram, err := ioutil.ReadFile(filepath.Join(run.output, ChainLengthHistogram))
	if err != nil {
		t.Fatal(err)
	}
	if string(histogram) != "ChainLength, Frequency\n5,2\n" {
		t.Errorf("unexpected histogram %q", histogram)
	}
}

func TestAssembleRejectsBadAlignment(t *testing.T) {
	_, run := writeTestInputs(t, "read0\tread1\t1\t0:0,6:1\n")
	err := assemble(testOptions(t), run)
	var violation *internal.InputContractViolation
	if !errors.As(err, &violation) || violation.ReadId != 0 || violation.Ordinal != 6 {
		t.Errorf("expected an input contract violation for read 0, got %v", err)
	}
}

func TestAssembleMemoryBudget(t *testing.T) {
	_, run := writeTestInputs(t, "read0\tread1\t1\t0:0,1:1\n")
	opts := testOptions(t)
	opts.Memory.MaxBytes = 1
	err := assemble(opts, run)
	var exhausted *internal.ResourceExhaustion
	if !errors.As(err, &exhausted) || exhausted.Stage != "markers" {
		t.Errorf("expected the memory budget to be exceeded after loading markers, got %v", err)
	}
}
