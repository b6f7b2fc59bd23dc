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

import (
	"bytes"
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"
)

func roundTrip(t *testing.T, filename string) {
	const content = "read0\t70\t0,10,20\nread1\t70\t5,15\n"
	w, err := Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	r, err := Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	b, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != content {
		t.Errorf("%v: read back %q", filename, b)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	roundTrip(t, filepath.Join(dir, "plain", "markers.tsv"))
	zstdFile := filepath.Join(dir, "compressed", "markers.tsv.zst")
	roundTrip(t, zstdFile)
	raw, err := ioutil.ReadFile(zstdFile)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte{0x28, 0xb5, 0x2f, 0xfd}) {
		t.Error(".zst file does not start with a zstd frame")
	}
	if _, err := Open(filepath.Join(dir, "missing.tsv")); err == nil {
		t.Error("missing file opened")
	}
}

func TestCheckMemory(t *testing.T) {
	if err := CheckMemory("test", 0); err != nil {
		t.Errorf("disabled budget reported %v", err)
	}
	if err := CheckMemory("test", 1<<62); err != nil {
		t.Errorf("huge budget reported %v", err)
	}
	var exhausted *ResourceExhaustion
	if err := CheckMemory("test", 1); !errors.As(err, &exhausted) || exhausted.Used <= 1 || exhausted.Stage != "test" {
		t.Errorf("exceeded budget reported %v", err)
	}
}
