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
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/exascience/elmarker/alignments"
	"github.com/exascience/elmarker/assemblygraph"
	"github.com/exascience/elmarker/config"
	"github.com/exascience/elmarker/internal"
	"github.com/exascience/elmarker/markergraph"
	"github.com/exascience/elmarker/markers"
)

// Names of the files written by assemble.
const (
	AssemblyGraphGFA         = "AssemblyGraph.gfa"
	AssemblyGraphDot         = "AssemblyGraph.dot"
	AssemblySummary          = "AssemblySummary.csv"
	ChainLengthHistogram     = "AssemblyGraphChainLengthHistogram.csv"
	BubbleReport             = "Bubbles.tsv"
	SimplifiedMarkerGraphDot = "MarkerGraph.dot"
)

// assembleCmd runs all stages from the input files to the assembly graph.
var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Build and simplify the marker graph, and write the assembly graph",
	Long: `Read marker positions and marker alignments, build the marker graph,
filter its vertices, create and classify its edges, prune and simplify
it, and write the assembly graph in GFA and Graphviz format together
with assembly statistics and a report of the removed bubbles.

Input files may be zstd-compressed, which is recognized by the .zst
extension.`,
	Args: cobra.NoArgs,
	RunE: runAssemble,
}

type assembleRun struct {
	markers, alignments string
	output              string
	runId               string
	timed               bool
	profile             string
}

func runAssemble(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	var run assembleRun
	var err error
	if run.markers, err = flags.GetString("markers"); err != nil {
		return err
	}
	if run.alignments, err = flags.GetString("alignments"); err != nil {
		return err
	}
	if run.output, err = flags.GetString("output"); err != nil {
		return err
	}
	if run.timed, err = flags.GetBool("timed"); err != nil {
		return err
	}
	if run.profile, err = flags.GetString("profile"); err != nil {
		return err
	}
	logPath, err := flags.GetString("log-path")
	if err != nil {
		return err
	}
	if err = setLogOutput(logPath); err != nil {
		return err
	}
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	run.runId = uuid.New().String()
	return assemble(&opts, &run)
}

func writeOutput(dir, name string, write func(io.Writer) error) (err error) {
	filename := filepath.Join(dir, name)
	file, err := internal.Create(filename)
	if err != nil {
		return err
	}
	defer internal.Close(file, &err)
	if err = write(file); err != nil {
		return fmt.Errorf("%v, while writing %v", err, filename)
	}
	if fullPath, err := internal.FullPathname(filename); err == nil {
		log.Println("Wrote", fullPath)
	}
	return nil
}

func assemble(opts *config.Options, run *assembleRun) error {
	log.Println("Run id:", run.runId)
	checkInvariants := opts.Debug.CheckInvariants || internal.PedanticMode

	var phase int64
	stage := func(msg, name string, f func() error) error {
		phase++
		if err := timedRun(run.timed, run.profile, msg, phase, f); err != nil {
			return err
		}
		return internal.CheckMemory(name, opts.Memory.MaxBytes)
	}

	var (
		store    *markers.Store
		evidence *alignments.Store
		g        *markergraph.Graph
		ag       *assemblygraph.Graph
	)
	check := func(name string) error {
		if !checkInvariants {
			return nil
		}
		return g.Check(name)
	}

	if err := stage("Loading markers.", "markers", func() (err error) {
		if store, err = markers.LoadStore(run.markers, opts.Kmers.K, opts.Reads.BothStrands); err != nil {
			return err
		}
		log.Printf("Loaded %v marker occurrences on %v reads.\n", store.TotalMarkerCount(), store.ReadCount())
		return nil
	}); err != nil {
		return err
	}

	if err := stage("Loading alignments.", "alignments", func() (err error) {
		if evidence, err = alignments.LoadStore(run.alignments, store, opts.Align); err != nil {
			return err
		}
		log.Printf("Kept %v alignments with %v aligned marker pairs, rejected %v.\n", evidence.Len(), evidence.AlignedPairCount(), evidence.Rejected)
		return nil
	}); err != nil {
		return err
	}

	if err := stage("Building marker graph vertices.", "vertices", func() (err error) {
		if g, err = markergraph.BuildVertices(store, evidence); err != nil {
			return err
		}
		log.Printf("The marker graph has %v vertices, fingerprint %016x.\n", g.VertexCount(), g.Fingerprint())
		if removed := g.FilterVertices(opts.MarkerGraph.MinCoverage, opts.MarkerGraph.MaxCoverage); removed > 0 {
			log.Printf("Removed %v vertices with coverage outside [%v, %v] or with repeated reads.\n", removed, opts.MarkerGraph.MinCoverage, opts.MarkerGraph.MaxCoverage)
		}
		return check("vertices")
	}); err != nil {
		return err
	}

	if err := stage("Creating marker graph edges.", "edges", func() error {
		log.Printf("Created %v edges.\n", g.CreateEdges())
		return check("edges")
	}); err != nil {
		return err
	}

	if err := stage("Flagging weak edges.", "classifier", func() error {
		mg := &opts.MarkerGraph
		weak, err := g.FlagWeakEdges(mg.LowCoverageThreshold, mg.HighCoverageThreshold, mg.MaxDistance)
		if err != nil {
			return err
		}
		log.Printf("Flagged %v of %v edges as weak.\n", weak, g.LiveEdgeCount())
		return check("classifier")
	}); err != nil {
		return err
	}

	if err := stage("Pruning the strong subgraph.", "pruner", func() error {
		for i, n := range g.PruneStrongSubgraph(opts.MarkerGraph.PruneIterationCount) {
			log.Printf("Pruning round %v removed %v vertices.\n", i, n)
		}
		return check("pruner")
	}); err != nil {
		return err
	}

	if err := stage("Simplifying the marker graph.", "simplifier", func() error {
		params := opts.SimplifyParams()
		params.CheckInvariants = checkInvariants
		_, err := g.Simplify(params)
		if err == nil {
			log.Printf("The simplified marker graph has %v live vertices and %v live edges.\n", g.LiveVertexCount(), g.LiveEdgeCount())
		}
		return err
	}); err != nil {
		return err
	}

	if err := stage("Projecting the assembly graph.", "projector", func() error {
		ag = assemblygraph.Project(g)
		log.Printf("The assembly graph has %v vertices and %v edges.\n", ag.VertexCount(), ag.EdgeCount())
		return nil
	}); err != nil {
		return err
	}

	return stage("Writing output files.", "output", func() error {
		if err := writeOutput(run.output, AssemblyGraphGFA, func(w io.Writer) error { return ag.WriteGFA(w, run.runId) }); err != nil {
			return err
		}
		if err := writeOutput(run.output, AssemblyGraphDot, ag.WriteDot); err != nil {
			return err
		}
		if err := writeOutput(run.output, AssemblySummary, ag.WriteSummaryCSV); err != nil {
			return err
		}
		if err := writeOutput(run.output, ChainLengthHistogram, ag.WriteChainLengthHistogram); err != nil {
			return err
		}
		if err := writeOutput(run.output, BubbleReport, g.WriteBubbles); err != nil {
			return err
		}
		if opts.Debug.WriteMarkerGraphDot {
			return writeOutput(run.output, SimplifiedMarkerGraphDot, g.WriteDot)
		}
		return nil
	})
}

func init() {
	flags := assembleCmd.Flags()
	flags.StringP("markers", "m", "", "marker positions file")
	flags.StringP("alignments", "a", "", "marker alignments file")
	flags.StringP("output", "o", ".", "output directory")
	flags.String("log-path", "", "directory for the log file, $HOME if empty")
	flags.Bool("timed", false, "log the elapsed time of every stage")
	flags.String("profile", "", "write a CPU profile of every stage to files with this prefix")
	flags.Int("min-coverage", 10, "minimum vertex coverage")
	flags.Int("max-coverage", 100, "maximum vertex coverage")
	flags.Bool("write-marker-graph-dot", false, "write the simplified marker graph in Graphviz format")
	_ = assembleCmd.MarkFlagRequired("markers")
	_ = assembleCmd.MarkFlagRequired("alignments")

	viper.BindPFlag("markerGraph.minCoverage", flags.Lookup("min-coverage"))
	viper.BindPFlag("markerGraph.maxCoverage", flags.Lookup("max-coverage"))
	viper.BindPFlag("debug.writeMarkerGraphDot", flags.Lookup("write-marker-graph-dot"))

	rootCmd.AddCommand(assembleCmd)
}
