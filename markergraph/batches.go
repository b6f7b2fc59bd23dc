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

import "github.com/exascience/pargo/parallel"

// collectVertices runs f on batches of [0, n) in parallel, and
// concatenates the results in batch order.
func collectVertices(n int, f func(low, high int) []VertexId) []VertexId {
	if n == 0 {
		return nil
	}
	return parallel.RangeReduce(0, n, 0, func(low, high int) interface{} {
		return f(low, high)
	}, func(x, y interface{}) interface{} {
		return append(x.([]VertexId), y.([]VertexId)...)
	}).([]VertexId)
}

// collectEdges runs f on batches of [0, n) in parallel, and
// concatenates the results in batch order.
func collectEdges(n int, f func(low, high int) []EdgeId) []EdgeId {
	if n == 0 {
		return nil
	}
	return parallel.RangeReduce(0, n, 0, func(low, high int) interface{} {
		return f(low, high)
	}, func(x, y interface{}) interface{} {
		return append(x.([]EdgeId), y.([]EdgeId)...)
	}).([]EdgeId)
}

// firstError runs f on batches of [0, n) in parallel, and returns the
// error of the lowest batch that failed.
func firstError(n int, f func(low, high int) error) error {
	if n == 0 {
		return nil
	}
	result := parallel.RangeReduce(0, n, 0, func(low, high int) interface{} {
		if err := f(low, high); err != nil {
			return err
		}
		return nil
	}, func(x, y interface{}) interface{} {
		if x != nil {
			return x
		}
		return y
	})
	if result == nil {
		return nil
	}
	return result.(error)
}
