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

package internal

import (
	"runtime"

	"github.com/exascience/pargo/pipeline"
	"golang.org/x/sys/unix"
)

// RunPipeline is p.Run() followed by p.Err().
func RunPipeline(p *pipeline.Pipeline) error {
	p.Run()
	return p.Err()
}

// MaxResidentBytes returns the peak resident set size of the process.
func MaxResidentBytes() (uint64, error) {
	var usage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &usage); err != nil {
		return 0, err
	}
	if runtime.GOOS == "darwin" {
		return uint64(usage.Maxrss), nil
	}
	return uint64(usage.Maxrss) * 1024, nil
}

// CheckMemory returns a ResourceExhaustion error when the peak
// resident set size exceeds budget. A zero budget disables the check.
func CheckMemory(stage string, budget uint64) error {
	if budget == 0 {
		return nil
	}
	used, err := MaxResidentBytes()
	if err != nil {
		return err
	}
	if used > budget {
		return &ResourceExhaustion{Stage: stage, Resource: "memory", Used: used, Budget: budget}
	}
	return nil
}
