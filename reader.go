// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package mdtoken

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MaxLineSize is the length in bytes at which [LineReader] rejects a line.
const MaxLineSize = 1024 * 1024

// readChunkSize is the number of bytes a [LineReader] requests per read.
const readChunkSize = 8 * 1024

// ErrLineTooLong is returned (wrapped) by [LineReader]
// for a line of [MaxLineSize] bytes or more.
var ErrLineTooLong = errors.New("line too long")

// A LineReader splits a Markdown document into lines.
//
// Input is decoded as UTF-8 unless it starts with a UTF-16 byte order mark.
// A leading byte order mark is removed,
// and invalid byte sequences and NUL characters
// are replaced with the Unicode replacement character.
// Lines end at "\n", "\r\n", or "\r".
type LineReader struct {
	r      io.Reader
	buf    []byte
	pos    int   // start of the next line within buf
	lineno int   // number of lines returned so far
	err    error // non-nil indicates there is no more data after end of buf
}

// NewLineReader returns a new [LineReader] that reads from r.
func NewLineReader(r io.Reader) *LineReader {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return &LineReader{r: transform.NewReader(r, dec)}
}

// ReadLines reads all of r and returns its lines.
func ReadLines(r io.Reader) ([]string, error) {
	lr := NewLineReader(r)
	var lines []string
	for {
		line, err := lr.ReadLine()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}

// Line returns the line number of the line last returned by ReadLine.
func (lr *LineReader) Line() int {
	return lr.lineno
}

// ReadLine returns the next line without its terminator.
// It returns [io.EOF] after the last line.
// An error from the underlying reader is returned
// once all the lines read before it have been returned.
func (lr *LineReader) ReadLine() (string, error) {
	for {
		rest := lr.buf[lr.pos:]
		if i := bytes.IndexAny(rest, "\r\n"); i >= 0 {
			eol := lr.pos + i
			switch {
			case lr.buf[eol] == '\n':
				return lr.consume(eol, eol+1), nil
			case eol+1 < len(lr.buf):
				// Carriage return with enough buffer for 1 byte lookahead.
				end := eol + 1
				if lr.buf[end] == '\n' {
					end++
				}
				return lr.consume(eol, end), nil
			case lr.err != nil:
				// Carriage return right before EOF.
				return lr.consume(eol, eol+1), nil
			}
		} else if lr.err != nil {
			if len(rest) == 0 {
				return "", lr.err
			}
			return lr.consume(len(lr.buf), len(lr.buf)), nil
		}

		if len(rest) >= MaxLineSize {
			// Drop the rest of the input.
			lr.buf = lr.buf[:lr.pos]
			lr.err = fmt.Errorf("line %d: %w", lr.lineno+1, ErrLineTooLong)
			return "", lr.err
		}
		lr.fill()
	}
}

// consume returns the line ending at eolStart
// and advances past its terminator, which ends at eolEnd.
func (lr *LineReader) consume(eolStart, eolEnd int) string {
	line := string(lr.buf[lr.pos:eolStart])
	lr.pos = eolEnd
	lr.lineno++
	if strings.IndexByte(line, 0) >= 0 {
		line = strings.ReplaceAll(line, "\x00", "\ufffd")
	}
	return line
}

// fill reads more data into buf, discarding consumed lines.
func (lr *LineReader) fill() {
	if lr.pos > 0 {
		n := copy(lr.buf, lr.buf[lr.pos:])
		lr.buf = lr.buf[:n]
		lr.pos = 0
	}
	if cap(lr.buf)-len(lr.buf) < readChunkSize {
		newbuf := make([]byte, len(lr.buf), len(lr.buf)+readChunkSize)
		copy(newbuf, lr.buf)
		lr.buf = newbuf
	}
	var n int
	n, lr.err = lr.r.Read(lr.buf[len(lr.buf):cap(lr.buf)])
	lr.buf = lr.buf[:len(lr.buf)+n]
}
