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
	"bytes"
	"strings"
	"testing"

	"github.com/exascience/elmarker/markers"
)

// intervals returns n distinct synthetic intervals.
func intervals(n int) []MarkerInterval {
	result := make([]MarkerInterval, n)
	for i := range result {
		result[i] = MarkerInterval{OrientedReadId: markers.OrientedReadId(i), Ordinals: [2]uint32{0, 1}}
	}
	return result
}

func TestFlagWeakEdges(t *testing.T) {
	g := newGraph(nil, 3)
	g.AddEdge(0, 1, intervals(5))
	g.AddEdge(1, 2, intervals(5))
	shortcut := g.AddEdge(0, 2, intervals(1))

	if _, err := g.FlagWeakEdges(5, 5, 2); err == nil {
		t.Error("low threshold equal to high threshold accepted")
	}
	weak, err := g.FlagWeakEdges(1, 5, 2)
	if err != nil {
		t.Fatal(err)
	}
	if weak != 1 || !g.IsWeak(shortcut) || g.IsStrong(shortcut) || g.WeakEdgeCount() != 1 {
		t.Error("shortcut not flagged weak")
	}
	if !g.IsStrong(0) || !g.IsStrong(1) {
		t.Error("well covered edges flagged weak")
	}
	if weak, _ = g.FlagWeakEdges(1, 5, 1); weak != 0 || g.IsWeak(shortcut) {
		t.Error("shortcut flagged weak without an alternative path in range")
	}
	if weak, _ = g.FlagWeakEdges(1, 6, 2); weak != 0 {
		t.Error("shortcut flagged weak without a high coverage path")
	}
}

func TestPruneSideBranches(t *testing.T) {
	store := newTestStore(t, false, 3, 3, 3)
	g := buildGraph(t, store, evidenceOf(fullAlignment(0, 1, 3), alignment(0, 2, [2]uint32{1, 1})))
	if g.VertexCount() != 5 || g.EdgeCount() != 4 {
		t.Fatalf("unexpected graph with %v vertices and %v edges", g.VertexCount(), g.EdgeCount())
	}
	if _, err := g.FlagWeakEdges(1, 2, 30); err != nil {
		t.Fatal(err)
	}
	removed := g.PruneStrongSubgraph(1)
	if len(removed) != 1 || removed[0] != 2 {
		t.Errorf("pruning removed %v vertices, expected [2]", removed)
	}
	for _, v := range []VertexId{0, 1, 2} {
		if !g.IsVertexLive(v) {
			t.Errorf("vertex %v on the main path was pruned", v)
		}
	}
	for _, v := range []VertexId{3, 4} {
		if g.IsVertexLive(v) {
			t.Errorf("side vertex %v survived pruning", v)
		}
	}
	if len(g.EdgesBetween(0, 1)) != 1 || len(g.EdgesBetween(1, 2)) != 1 || g.LiveEdgeCount() != 2 {
		t.Error("main path damaged by pruning")
	}
	if err := g.Check("prune"); err != nil {
		t.Error(err)
	}
	if n := g.PruneOnce(); n != 0 {
		t.Errorf("second pruning round removed %v vertices", n)
	}
	if removed := g.PruneStrongSubgraph(6); len(removed) != 1 || removed[0] != 0 {
		t.Errorf("pruning a pruned graph reports %v", removed)
	}
}

func TestPruneKeepsIsolatedPath(t *testing.T) {
	g := newGraph(nil, 4)
	g.AddEdge(0, 1, intervals(3))
	g.AddEdge(1, 2, intervals(3))
	if removed := g.PruneStrongSubgraph(3); len(removed) != 2 || removed[0] != 1 || removed[1] != 0 {
		t.Errorf("pruning reports %v, expected only the isolated vertex", removed)
	}
	if g.LiveVertexCount() != 3 || g.LiveEdgeCount() != 2 {
		t.Error("linear path pruned")
	}
}

func TestRemoveBubble(t *testing.T) {
	g := newGraph(nil, 4)
	g.AddEdge(0, 1, intervals(10))
	g.AddEdge(1, 3, intervals(10))
	g.AddEdge(0, 2, intervals(2))
	g.AddEdge(2, 3, intervals(2))
	if n := g.RemoveBubbles(10); n != 1 {
		t.Fatalf("removed %v bubbles, expected 1", n)
	}
	if !g.IsEdgeLive(0) || !g.IsEdgeLive(1) {
		t.Error("best supported branch removed")
	}
	if g.RemovedBy(2) != Bubble || g.RemovedBy(3) != Bubble || g.IsVertexLive(2) {
		t.Error("weak branch not removed")
	}
	if len(g.Bubbles) != 1 {
		t.Fatalf("%v bubble records, expected 1", len(g.Bubbles))
	}
	record := g.Bubbles[0]
	if record.Source != 0 || record.Sink != 3 || record.Super || !edgesEqual(record.Kept, []EdgeId{0, 1}) ||
		len(record.Discarded) != 1 || !edgesEqual(record.Discarded[0], []EdgeId{2, 3}) {
		t.Errorf("unexpected bubble record %+v", record)
	}
	if err := g.Check("bubbles"); err != nil {
		t.Error(err)
	}

	var out bytes.Buffer
	if err := g.WriteBubbles(&out); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || lines[1] != "bubble\t0\t3\t0,1\t20\t2,3\t4" {
		t.Errorf("unexpected bubble report %q", out.String())
	}
}

func TestRemoveBubbleSummedCoverage(t *testing.T) {
	g := newGraph(nil, 4)
	short := g.AddEdge(0, 3, intervals(8))
	g.AddEdge(0, 1, intervals(3))
	g.AddEdge(1, 2, intervals(3))
	g.AddEdge(2, 3, intervals(3))
	if n := g.RemoveBubbles(10); n != 1 {
		t.Fatalf("removed %v bubbles, expected 1", n)
	}
	if g.RemovedBy(short) != Bubble {
		t.Error("short branch with lower total coverage kept")
	}
	for e := EdgeId(1); e <= 3; e++ {
		if !g.IsEdgeLive(e) {
			t.Errorf("edge %v of the branch with higher total coverage removed", e)
		}
	}
	if record := g.Bubbles[0]; !edgesEqual(record.Kept, []EdgeId{1, 2, 3}) || !edgesEqual(record.Discarded[0], []EdgeId{short}) {
		t.Errorf("unexpected bubble record %+v", record)
	}
}

func TestRemoveBubbleTooLong(t *testing.T) {
	g := newGraph(nil, 5)
	g.AddEdge(0, 1, intervals(10))
	g.AddEdge(1, 2, intervals(10))
	g.AddEdge(2, 4, intervals(10))
	g.AddEdge(0, 3, intervals(2))
	g.AddEdge(3, 4, intervals(2))
	if n := g.RemoveBubbles(2); n != 0 {
		t.Errorf("removed %v bubbles with a branch longer than the threshold", n)
	}
	if n := g.RemoveBubbles(3); n != 1 {
		t.Errorf("removed %v bubbles, expected 1", n)
	}
}

func TestRemoveShortCycles(t *testing.T) {
	g := newGraph(nil, 3)
	g.AddEdge(0, 1, intervals(1))
	g.AddEdge(1, 2, intervals(1))
	g.AddEdge(2, 0, intervals(1))
	if n := g.RemoveShortCycles(10); n != 1 {
		t.Fatalf("removed %v edges, expected 1", n)
	}
	if g.RemovedBy(0) != ShortCycle || !g.IsEdgeLive(1) || !g.IsEdgeLive(2) {
		t.Error("cycle not broken at its lowest identifier edge")
	}

	g = newGraph(nil, 3)
	g.AddEdge(0, 1, intervals(3))
	g.AddEdge(1, 2, intervals(1))
	g.AddEdge(2, 0, intervals(3))
	if n := g.RemoveShortCycles(2); n != 0 {
		t.Errorf("removed %v edges from a cycle longer than the threshold", n)
	}
	if n := g.RemoveShortCycles(3); n != 1 || g.RemovedBy(1) != ShortCycle {
		t.Error("cycle not broken at its least covered edge")
	}
}

func TestRemoveSuperBubbles(t *testing.T) {
	g := newGraph(nil, 5)
	g.AddEdge(0, 1, intervals(5))
	g.AddEdge(0, 2, intervals(2))
	g.AddEdge(1, 3, intervals(5))
	g.AddEdge(2, 3, intervals(2))
	g.AddEdge(2, 4, intervals(1))
	g.AddEdge(3, 4, intervals(5))
	if n := g.RemoveSuperBubbles(10); n != 1 {
		t.Fatalf("removed %v superbubbles, expected 1", n)
	}
	for _, e := range []EdgeId{0, 2, 5} {
		if !g.IsEdgeLive(e) {
			t.Errorf("edge %v of the best path removed", e)
		}
	}
	for _, e := range []EdgeId{1, 3, 4} {
		if g.RemovedBy(e) != SuperBubble {
			t.Errorf("edge %v removed by %v", e, g.RemovedBy(e))
		}
	}
	if g.IsVertexLive(2) {
		t.Error("vertex off the best path survived")
	}
	if len(g.Bubbles) != 1 || !g.Bubbles[0].Super || g.Bubbles[0].Source != 0 || g.Bubbles[0].Sink != 4 {
		t.Fatalf("unexpected bubble records %+v", g.Bubbles)
	}
	if discarded := g.Bubbles[0].Discarded; len(discarded) != 1 || len(discarded[0]) != 3 {
		t.Errorf("superbubble discarded edges not recorded as one set: %v", discarded)
	} else {
		for _, e := range discarded[0] {
			if g.RemovedBy(e) != SuperBubble {
				t.Errorf("discarded edge %v removed by %v", e, g.RemovedBy(e))
			}
		}
	}
	if err := g.Check("superbubbles"); err != nil {
		t.Error(err)
	}
	if n := g.RemoveSuperBubbles(2); n != 0 {
		t.Errorf("removed %v superbubbles from a collapsed graph", n)
	}
}

func TestSimplify(t *testing.T) {
	g := newGraph(nil, 8)
	// a bubble 0 -> {1, 2} -> 3, then a cycle 3 -> 4 -> 5 -> 3, leaving to 6
	g.AddEdge(0, 1, intervals(8))
	g.AddEdge(0, 2, intervals(3))
	g.AddEdge(1, 3, intervals(8))
	g.AddEdge(2, 3, intervals(3))
	g.AddEdge(3, 4, intervals(6))
	g.AddEdge(4, 5, intervals(6))
	g.AddEdge(5, 3, intervals(2))
	g.AddEdge(5, 6, intervals(6))
	result, err := g.Simplify(SimplifyParams{
		ShortCycleLengthThreshold:  10,
		BubbleLengthThreshold:      10,
		SuperBubbleLengthThreshold: 30,
		CheckInvariants:            true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.ShortCycleEdges != 1 || result.Bubbles != 1 || result.SuperBubbles != 0 {
		t.Errorf("unexpected result %+v", result)
	}
	if g.RemovedBy(6) != ShortCycle {
		t.Errorf("cycle edge removed by %v", g.RemovedBy(6))
	}
	counts := g.RemovalCounts()
	if counts[ShortCycle] != 1 || counts[Bubble] != 2 {
		t.Errorf("unexpected removal counts %v", counts)
	}
	for v := VertexId(0); v < 8; v++ {
		if in, out := g.StrongDegrees(v); in > 1 || out > 1 {
			t.Errorf("vertex %v still branches after simplification", v)
		}
	}
}

func TestWriteDot(t *testing.T) {
	g := newGraph(nil, 3)
	g.AddEdge(0, 1, intervals(5))
	g.AddEdge(1, 2, intervals(5))
	g.AddEdge(0, 2, intervals(1))
	if _, err := g.FlagWeakEdges(1, 5, 2); err != nil {
		t.Fatal(err)
	}
	g.RemoveVertex(2)
	var out bytes.Buffer
	if err := g.WriteDot(&out); err != nil {
		t.Fatal(err)
	}
	dot := out.String()
	if !strings.Contains(dot, "digraph MarkerGraph") {
		t.Errorf("not a directed graph: %q", dot)
	}
	if strings.Contains(dot, "dashed") || strings.Contains(dot, "2/") {
		t.Errorf("removed vertex or edges written: %q", dot)
	}
	if !strings.Contains(dot, "0/5") {
		t.Errorf("edge label missing: %q", dot)
	}
}

func edgesEqual(a, b []EdgeId) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
