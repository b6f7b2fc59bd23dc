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
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/exascience/elmarker/alignments"
	"github.com/exascience/elmarker/markers"
)

// validateCmd checks the configuration and the input files without
// building the marker graph.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the input files",
	Long: `Load the configuration, the marker positions and the marker alignments,
and report the first input that violates their contracts. The effective
configuration is printed in JSON format.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions()
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(viper.AllSettings(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))

		markersFile, err := cmd.Flags().GetString("markers")
		if err != nil {
			return err
		}
		if markersFile == "" {
			return nil
		}
		store, err := markers.LoadStore(markersFile, opts.Kmers.K, opts.Reads.BothStrands)
		if err != nil {
			return err
		}
		log.Printf("%v: %v reads, %v marker occurrences.\n", markersFile, store.ReadCount(), store.TotalMarkerCount())

		alignmentsFile, err := cmd.Flags().GetString("alignments")
		if err != nil {
			return err
		}
		if alignmentsFile == "" {
			return nil
		}
		evidence, err := alignments.LoadStore(alignmentsFile, store, opts.Align)
		if err != nil {
			return err
		}
		log.Printf("%v: %v alignments accepted, %v rejected.\n", alignmentsFile, evidence.Len(), evidence.Rejected)
		return nil
	},
}

func init() {
	validateCmd.Flags().StringP("markers", "m", "", "marker positions file")
	validateCmd.Flags().StringP("alignments", "a", "", "marker alignments file, requires --markers")
	rootCmd.AddCommand(validateCmd)
}
