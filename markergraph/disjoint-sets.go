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
	"sync/atomic"

	"github.com/exascience/pargo/parallel"
)

// DisjointSets is a union-find structure over the integers
// 0..n-1 that supports concurrent Union and Find.
//
// A parent is never larger than its child, so the representative of
// a set is always its smallest element, independent of the order in
// which unions are performed.
type DisjointSets struct {
	parent []uint64
}

// NewDisjointSets returns n singleton sets.
func NewDisjointSets(n uint64) *DisjointSets {
	parent := make([]uint64, n)
	if n == 0 {
		return &DisjointSets{parent: parent}
	}
	parallel.Range(0, len(parent), 0, func(low, high int) {
		for i := low; i < high; i++ {
			parent[i] = uint64(i)
		}
	})
	return &DisjointSets{parent: parent}
}

// Len returns the number of elements.
func (d *DisjointSets) Len() int { return len(d.parent) }

// Find returns the representative of the set that contains x,
// halving the path on the way.
func (d *DisjointSets) Find(x uint64) uint64 {
	for {
		p := atomic.LoadUint64(&d.parent[x])
		if p == x {
			return x
		}
		gp := atomic.LoadUint64(&d.parent[p])
		if gp != p {
			atomic.CompareAndSwapUint64(&d.parent[x], p, gp)
		}
		x = gp
	}
}

// Union merges the sets that contain x and y.
func (d *DisjointSets) Union(x, y uint64) {
	for {
		x, y = d.Find(x), d.Find(y)
		if x == y {
			return
		}
		if x < y {
			x, y = y, x
		}
		if atomic.CompareAndSwapUint64(&d.parent[x], x, y) {
			return
		}
	}
}
