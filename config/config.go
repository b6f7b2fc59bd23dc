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

// Package config holds the run-wide settings of elmarker. They are
// read with viper from an optional configuration file, with defaults
// for every setting and command line flags taking precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/exascience/elmarker/alignments"
	"github.com/exascience/elmarker/markergraph"
)

// KmersOptions describe the markers.
type KmersOptions struct {
	// marker length in bases
	K int `mapstructure:"k"`
}

// ReadsOptions describe how reads are represented.
type ReadsOptions struct {
	// whether markers on the reverse complement of each read are used
	BothStrands bool `mapstructure:"bothStrands"`
}

// MarkerGraphOptions control the construction and simplification of
// the marker graph.
type MarkerGraphOptions struct {
	MinCoverage                int `mapstructure:"minCoverage"`
	MaxCoverage                int `mapstructure:"maxCoverage"`
	LowCoverageThreshold       int `mapstructure:"lowCoverageThreshold"`
	HighCoverageThreshold      int `mapstructure:"highCoverageThreshold"`
	MaxDistance                int `mapstructure:"maxDistance"`
	PruneIterationCount        int `mapstructure:"pruneIterationCount"`
	ShortCycleLengthThreshold  int `mapstructure:"shortCycleLengthThreshold"`
	BubbleLengthThreshold      int `mapstructure:"bubbleLengthThreshold"`
	SuperBubbleLengthThreshold int `mapstructure:"superBubbleLengthThreshold"`
}

// MemoryOptions bound the resources of a run.
type MemoryOptions struct {
	// maximum resident memory in bytes, 0 for no limit
	MaxBytes uint64 `mapstructure:"maxBytes"`
}

// DebugOptions enable additional checks and output.
type DebugOptions struct {
	// run the graph invariant checker after every stage
	CheckInvariants bool `mapstructure:"checkInvariants"`

	// write the simplified marker graph in Graphviz format
	WriteMarkerGraphDot bool `mapstructure:"writeMarkerGraphDot"`
}

// Options are all settings of a run.
type Options struct {
	Kmers       KmersOptions             `mapstructure:"kmers"`
	Reads       ReadsOptions             `mapstructure:"reads"`
	Align       alignments.QualityParams `mapstructure:"align"`
	MarkerGraph MarkerGraphOptions       `mapstructure:"markerGraph"`
	Memory      MemoryOptions            `mapstructure:"memory"`
	Debug       DebugOptions             `mapstructure:"debug"`
}

// SetDefaults registers the default value of every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("kmers.k", 10)
	v.SetDefault("reads.bothStrands", true)

	v.SetDefault("align.maxMarkerFrequency", 10)
	v.SetDefault("align.maxSkip", 30)
	v.SetDefault("align.minAlignedMarkerCount", 100)
	v.SetDefault("align.maxTrim", 30)

	v.SetDefault("markerGraph.minCoverage", 10)
	v.SetDefault("markerGraph.maxCoverage", 100)
	v.SetDefault("markerGraph.lowCoverageThreshold", 1)
	v.SetDefault("markerGraph.highCoverageThreshold", 256)
	v.SetDefault("markerGraph.maxDistance", 30)
	v.SetDefault("markerGraph.pruneIterationCount", 6)
	v.SetDefault("markerGraph.shortCycleLengthThreshold", 10)
	v.SetDefault("markerGraph.bubbleLengthThreshold", 10)
	v.SetDefault("markerGraph.superBubbleLengthThreshold", 30)

	v.SetDefault("memory.maxBytes", 0)

	v.SetDefault("debug.checkInvariants", false)
	v.SetDefault("debug.writeMarkerGraphDot", false)
}

// Load reads the configuration file, if any, and returns the validated
// options. Files with a .conf extension are read as INI files.
func Load(v *viper.Viper, filename string) (opts Options, err error) {
	SetDefaults(v)
	if filename != "" {
		v.SetConfigFile(filename)
		if strings.EqualFold(filepath.Ext(filename), ".conf") {
			v.SetConfigType("ini")
		}
		if err = v.ReadInConfig(); err != nil {
			return opts, fmt.Errorf("reading configuration file %v: %w", filename, err)
		}
	}
	if err = v.Unmarshal(&opts); err != nil {
		return opts, fmt.Errorf("decoding configuration: %w", err)
	}
	return opts, opts.Validate()
}

// Validate checks the consistency of the options.
func (opts *Options) Validate() error {
	mg := &opts.MarkerGraph
	switch {
	case opts.Kmers.K <= 0:
		return fmt.Errorf("invalid marker length %v", opts.Kmers.K)
	case mg.MinCoverage < 0:
		return fmt.Errorf("invalid minimum vertex coverage %v", mg.MinCoverage)
	case mg.MinCoverage > mg.MaxCoverage:
		return fmt.Errorf("minimum vertex coverage %v exceeds maximum vertex coverage %v", mg.MinCoverage, mg.MaxCoverage)
	case mg.LowCoverageThreshold >= mg.HighCoverageThreshold:
		return fmt.Errorf("low coverage threshold %v must be smaller than high coverage threshold %v", mg.LowCoverageThreshold, mg.HighCoverageThreshold)
	case mg.MaxDistance <= 0:
		return fmt.Errorf("invalid maximum distance %v", mg.MaxDistance)
	case mg.PruneIterationCount < 0:
		return fmt.Errorf("invalid prune iteration count %v", mg.PruneIterationCount)
	case mg.ShortCycleLengthThreshold < 0, mg.BubbleLengthThreshold < 0, mg.SuperBubbleLengthThreshold < 0:
		return errors.New("simplification length thresholds must not be negative")
	case opts.Align.MinAlignedMarkerCount < 0, opts.Align.MaxSkip < 0, opts.Align.MaxTrim < 0:
		return errors.New("alignment quality parameters must not be negative")
	}
	return nil
}

// SimplifyParams returns the parameters for markergraph.Simplify.
func (opts *Options) SimplifyParams() markergraph.SimplifyParams {
	return markergraph.SimplifyParams{
		ShortCycleLengthThreshold:  opts.MarkerGraph.ShortCycleLengthThreshold,
		BubbleLengthThreshold:      opts.MarkerGraph.BubbleLengthThreshold,
		SuperBubbleLengthThreshold: opts.MarkerGraph.SuperBubbleLengthThreshold,
		CheckInvariants:            opts.Debug.CheckInvariants,
	}
}
