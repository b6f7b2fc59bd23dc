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

import "fmt"

// NoOrdinal is used in an InputContractViolation when the offending
// input is not tied to a specific marker ordinal.
const NoOrdinal = ^uint32(0)

// NoReadId is used in an InputContractViolation when the offending
// input does not name a known read.
const NoReadId = ^uint32(0)

// An InputContractViolation reports malformed input, such as an
// alignment that refers to a nonexistent read or marker.
type InputContractViolation struct {
	Stage   string
	ReadId  uint32
	Ordinal uint32
	Reason  string
}

func (err *InputContractViolation) Error() string {
	if err.ReadId == NoReadId {
		return fmt.Sprintf("%v: invalid input: %v", err.Stage, err.Reason)
	}
	if err.Ordinal == NoOrdinal {
		return fmt.Sprintf("%v: invalid input for read %v: %v", err.Stage, err.ReadId, err.Reason)
	}
	return fmt.Sprintf("%v: invalid input for read %v, marker ordinal %v: %v", err.Stage, err.ReadId, err.Ordinal, err.Reason)
}

// A ResourceExhaustion reports that a stage ran over its configured
// resource budget.
type ResourceExhaustion struct {
	Stage    string
	Resource string
	Used     uint64
	Budget   uint64
}

func (err *ResourceExhaustion) Error() string {
	return fmt.Sprintf("%v: %v exhausted (%v used, budget %v)", err.Stage, err.Resource, err.Used, err.Budget)
}

// An InvariantViolation reports an internal inconsistency in the
// graph. It always indicates a bug.
type InvariantViolation struct {
	Stage  string
	Kind   string
	Ids    []uint64
	Reason string
}

func (err *InvariantViolation) Error() string {
	return fmt.Sprintf("%v: %v violated at %v: %v", err.Stage, err.Kind, err.Ids, err.Reason)
}
