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

package assemblygraph

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"sort"
	"strconv"

	"github.com/awalterschulze/gographviz"
)

// WriteGFA writes the assembly graph in GFA 1 format. Segments carry no
// sequence, only their estimated length and their total coverage.
// Consecutive segments overlap by one marker.
func (g *Graph) WriteGFA(w io.Writer, runId string) error {
	out := bufio.NewWriter(w)
	fmt.Fprint(out, "H\tVN:Z:1.0")
	if runId != "" {
		fmt.Fprint(out, "\tRI:Z:", runId)
	}
	fmt.Fprintln(out)
	for e, edge := range g.Edges {
		coverage := uint64(math.Round(edge.AverageCoverage * float64(len(g.Segment(EdgeId(e))))))
		fmt.Fprintf(out, "S\t%v\t*\tLN:i:%v\tRC:i:%v\n", e, edge.Length, coverage)
	}
	for v := VertexId(0); int(v) < g.VertexCount(); v++ {
		for _, e0 := range g.edgesByTarget[v] {
			for _, e1 := range g.edgesBySource[v] {
				fmt.Fprintf(out, "L\t%v\t+\t%v\t+\t%vM\n", e0, e1, g.K)
			}
		}
	}
	return out.Flush()
}

// WriteDot writes the assembly graph in Graphviz format.
func (g *Graph) WriteDot(w io.Writer) error {
	dot := gographviz.NewGraph()
	if err := dot.SetName("AssemblyGraph"); err != nil {
		return err
	}
	if err := dot.SetDir(true); err != nil {
		return err
	}
	for v, mv := range g.MarkerVertices {
		attrs := map[string]string{"label": fmt.Sprintf("\"%v\"", mv)}
		if err := dot.AddNode("AssemblyGraph", strconv.Itoa(v), attrs); err != nil {
			return err
		}
	}
	for e, edge := range g.Edges {
		attrs := map[string]string{
			"label": fmt.Sprintf("\"%v %vbp %.1fx\"", e, edge.Length, edge.AverageCoverage),
		}
		if edge.Circular {
			attrs["color"] = "Green"
		}
		if err := dot.AddEdge(strconv.FormatUint(uint64(edge.Source), 10), strconv.FormatUint(uint64(edge.Target), 10), true, attrs); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, dot.String())
	return err
}

// Statistics summarize the lengths of the assembly graph edges.
type Statistics struct {
	VertexCount, EdgeCount int
	TotalLength            uint64
	N50                    uint64
}

type rankedEdge struct {
	id     EdgeId
	length uint64
}

// byLength returns the edges sorted by decreasing length, ties by
// increasing identifier.
func (g *Graph) byLength() []rankedEdge {
	ranked := make([]rankedEdge, len(g.Edges))
	for e, edge := range g.Edges {
		ranked[e] = rankedEdge{EdgeId(e), edge.Length}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].length > ranked[j].length
	})
	return ranked
}

// Statistics computes the total length and the N50 of the assembly
// graph edges.
func (g *Graph) Statistics() (stats Statistics) {
	stats.VertexCount, stats.EdgeCount = g.VertexCount(), g.EdgeCount()
	for _, edge := range g.Edges {
		stats.TotalLength += edge.Length
	}
	var cumulative uint64
	for _, r := range g.byLength() {
		cumulative += r.length
		if cumulative >= stats.TotalLength/2 {
			stats.N50 = r.length
			break
		}
	}
	return stats
}

// WriteSummaryCSV writes all edges ranked by decreasing length, with
// cumulative lengths and fractions of the total length.
func (g *Graph) WriteSummaryCSV(w io.Writer) error {
	stats := g.Statistics()
	log.Printf("The assembly graph has %v vertices and %v edges.\n", stats.VertexCount, stats.EdgeCount)
	log.Printf("Total length of assembled segments is %v.\n", stats.TotalLength)
	log.Printf("N50 for assembly segments is %v.\n", stats.N50)

	out := bufio.NewWriter(w)
	fmt.Fprintln(out, "Rank,EdgeId,Length,CumulativeLength,LengthFraction,CumulativeFraction")
	total := float64(stats.TotalLength)
	var cumulative uint64
	for rank, r := range g.byLength() {
		cumulative += r.length
		fmt.Fprintf(out, "%v,%v,%v,%v,%v,%v\n", rank, r.id, r.length, cumulative,
			float64(r.length)/total, float64(cumulative)/total)
	}
	return out.Flush()
}

// WriteChainLengthHistogram writes how many edges consist of a given
// number of marker graph edges. Empty bins are omitted.
func (g *Graph) WriteChainLengthHistogram(w io.Writer) error {
	var histogram []int
	for e := range g.Edges {
		size := len(g.Segment(EdgeId(e)))
		for len(histogram) <= size {
			histogram = append(histogram, 0)
		}
		histogram[size]++
	}
	out := bufio.NewWriter(w)
	fmt.Fprintln(out, "ChainLength, Frequency")
	for size, frequency := range histogram {
		if frequency > 0 {
			fmt.Fprintf(out, "%v,%v\n", size, frequency)
		}
	}
	return out.Flush()
}
