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
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ZstdExtension marks files that are transparently (de)compressed.
const ZstdExtension = ".zst"

// IsZstd reports whether the filename carries the zstd extension.
func IsZstd(filename string) bool {
	return strings.HasSuffix(filename, ZstdExtension)
}

type zstdReader struct {
	*zstd.Decoder
	file *os.File
}

func (r zstdReader) Close() error {
	r.Decoder.Close()
	return r.file.Close()
}

// Open opens a file for reading, decompressing it on the fly when
// its name ends in .zst.
func Open(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	if !IsZstd(filename) {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return zstdReader{Decoder: dec, file: f}, nil
}

type bufferedWriter struct {
	*bufio.Writer
	file *os.File
}

func (w bufferedWriter) Close() error {
	err := w.Flush()
	if nerr := w.file.Close(); err == nil {
		err = nerr
	}
	return err
}

type zstdWriter struct {
	*zstd.Encoder
	file *os.File
}

func (w zstdWriter) Close() error {
	err := w.Encoder.Close()
	if nerr := w.file.Close(); err == nil {
		err = nerr
	}
	return err
}

// Create creates a file for writing, including missing parent
// directories. Output is zstd-compressed when the name ends in .zst.
func Create(filename string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return nil, err
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	if !IsZstd(filename) {
		return bufferedWriter{Writer: bufio.NewWriter(f), file: f}, nil
	}
	enc, err := zstd.NewWriter(f,
		zstd.WithEncoderCRC(false),
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return zstdWriter{Encoder: enc, file: f}, nil
}

// Close closes c and stores the resulting error in *err
// unless *err already holds an earlier error.
func Close(c io.Closer, err *error) {
	if nerr := c.Close(); *err == nil {
		*err = nerr
	}
}

// FullPathname returns an absolute path for filename.
func FullPathname(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		return filename, nil
	}
	wd, err := os.Getwd()
	return filepath.Join(wd, filename), err
}
