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

// Package cmd implements the elmarker command line.
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/exascience/elmarker/config"
	"github.com/exascience/elmarker/utils"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   utils.ProgramName,
	Short: "Build and simplify marker graphs for long-read assembly",
	Long: `elmarker merges aligned marker occurrences of long reads into a marker graph,
removes weakly supported edges, side branches, short cycles, bubbles and
superbubbles, and writes the resulting assembly graph.`,
	Version:      utils.ProgramVersion,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		fmt.Fprintln(os.Stderr, ProgramMessage)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

// loadOptions reads the configuration file named by --config, with
// command line flags taking precedence.
func loadOptions() (config.Options, error) {
	return config.Load(viper.GetViper(), viper.GetString("config"))
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "configuration file, read as INI if its extension is .conf")
	flags.IntP("k", "k", 10, "marker length in bases")
	flags.Bool("both-strands", true, "also use the markers on the reverse complement of each read")
	flags.Uint64("max-memory", 0, "maximum resident memory in bytes, 0 for no limit")
	flags.Bool("check-invariants", false, "check the marker graph invariants after every stage")

	viper.BindPFlag("config", flags.Lookup("config"))
	viper.BindPFlag("kmers.k", flags.Lookup("k"))
	viper.BindPFlag("reads.bothStrands", flags.Lookup("both-strands"))
	viper.BindPFlag("memory.maxBytes", flags.Lookup("max-memory"))
	viper.BindPFlag("debug.checkInvariants", flags.Lookup("check-invariants"))
}
