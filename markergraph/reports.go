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

package markergraph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"
)

// RemovalCounts returns the number of removed edges per reason.
func (g *Graph) RemovalCounts() map[Removal]int {
	counts := make(map[Removal]int)
	for _, reason := range g.removedBy {
		if reason != NotRemoved {
			counts[reason]++
		}
	}
	return counts
}

// WriteDot writes the live part of the graph in Graphviz format.
// Weak edges are drawn dashed.
func (g *Graph) WriteDot(w io.Writer) error {
	dot := gographviz.NewGraph()
	if err := dot.SetName("MarkerGraph"); err != nil {
		return err
	}
	if err := dot.SetDir(true); err != nil {
		return err
	}
	for v := VertexId(0); int(v) < g.VertexCount(); v++ {
		if !g.IsVertexLive(v) {
			continue
		}
		attrs := map[string]string{
			"label": fmt.Sprintf("\"%v/%v\"", v, g.Coverage(v)),
		}
		if err := dot.AddNode("MarkerGraph", strconv.FormatUint(uint64(v), 10), attrs); err != nil {
			return err
		}
	}
	for e := EdgeId(0); int(e) < g.EdgeCount(); e++ {
		if !g.IsEdgeLive(e) {
			continue
		}
		edge := &g.edges[e]
		attrs := map[string]string{
			"label": fmt.Sprintf("\"%v/%v\"", e, edge.Coverage()),
		}
		if g.IsWeak(e) {
			attrs["style"] = "dashed"
		}
		if err := dot.AddEdge(strconv.FormatUint(uint64(edge.Source), 10), strconv.FormatUint(uint64(edge.Target), 10), true, attrs); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, dot.String())
	return err
}

func joinEdges(edges []EdgeId) string {
	var b strings.Builder
	for i, e := range edges {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(e), 10))
	}
	return b.String()
}

// WriteBubbles writes one line per discarded path of each collapsed
// bubble and superbubble, as tab-separated values.
func (g *Graph) WriteBubbles(w io.Writer) error {
	out := bufio.NewWriter(w)
	fmt.Fprintln(out, "Kind\tSource\tSink\tKeptEdges\tKeptCoverage\tDiscardedEdges\tDiscardedCoverage")
	for _, bubble := range g.Bubbles {
		kind := "bubble"
		if bubble.Super {
			kind = "superbubble"
		}
		for _, path := range bubble.Discarded {
			fmt.Fprintf(out, "%v\t%v\t%v\t%v\t%v\t%v\t%v\n",
				kind, bubble.Source, bubble.Sink,
				joinEdges(bubble.Kept), g.totalCoverage(bubble.Kept),
				joinEdges(path), g.totalCoverage(path))
		}
	}
	return out.Flush()
}

func (g *Graph) totalCoverage(edges []EdgeId) (total int) {
	for _, e := range edges {
		total += g.edges[e].Coverage()
	}
	return
}
