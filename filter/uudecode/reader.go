/*
 *  MIT License
 *
 *  Copyright (c) 2025 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

// Package uudecode strips a uuencode or base64 envelope from a stream,
// delivering the raw payload bytes to the next filter or format.
package uudecode

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"io"
)

var (
	ErrNoBegin   = errors.New("uudecode: no begin line found")
	ErrCorrupted = errors.New("uudecode: malformed encoded line")
)

type mode uint8

const (
	modeUU mode = iota
	modeBase64
)

type reader struct {
	src *bufio.Reader
	m   mode
	out []byte
	eof bool
}

// NewReader scans for the begin marker and returns a decoding reader
// over the payload.
func NewReader(src io.Reader) (io.Reader, error) {
	r := &reader{src: bufio.NewReader(src)}

	for {
		line, e := r.src.ReadBytes('\n')
		if e != nil && len(line) == 0 {
			return nil, ErrNoBegin
		}

		line = bytes.TrimRight(line, "\r\n")

		if bytes.HasPrefix(line, []byte("begin ")) && len(line) >= 11 {
			r.m = modeUU
			return r, nil
		}

		if bytes.HasPrefix(line, []byte("begin-base64 ")) {
			r.m = modeBase64
			return r, nil
		}

		if e != nil {
			return nil, ErrNoBegin
		}
	}
}

func uuChar(c byte) (byte, bool) {
	if c < 0x20 || c > 0x60 {
		return 0, false
	}

	return (c - 0x20) & 0x3F, true
}

func (r *reader) fillUU(line []byte) error {
	if len(line) == 0 {
		return nil
	}

	if bytes.Equal(line, []byte("end")) {
		r.eof = true
		return nil
	}

	n, ok := uuChar(line[0])
	if !ok {
		return ErrCorrupted
	}

	if n == 0 {
		// '`' length line, payload follows with "end"
		return nil
	}

	data := line[1:]
	out := make([]byte, 0, n)

	for len(out) < int(n) {
		if len(data) < 4 {
			return ErrCorrupted
		}

		var v [4]byte
		for i := 0; i < 4; i++ {
			c, k := uuChar(data[i])
			if !k {
				return ErrCorrupted
			}
			v[i] = c
		}

		out = append(out, v[0]<<2|v[1]>>4)
		if len(out) < int(n) {
			out = append(out, v[1]<<4|v[2]>>2)
		}
		if len(out) < int(n) {
			out = append(out, v[2]<<6|v[3])
		}

		data = data[4:]
	}

	r.out = append(r.out, out...)
	return nil
}

func (r *reader) fillBase64(line []byte) error {
	if len(line) == 0 {
		return nil
	}

	if bytes.Equal(line, []byte("====")) {
		r.eof = true
		return nil
	}

	dst := make([]byte, base64.StdEncoding.DecodedLen(len(line)))

	n, e := base64.StdEncoding.Decode(dst, line)
	if e != nil {
		return ErrCorrupted
	}

	r.out = append(r.out, dst[:n]...)
	return nil
}

func (r *reader) Read(p []byte) (int, error) {
	for len(r.out) == 0 {
		if r.eof {
			return 0, io.EOF
		}

		line, e := r.src.ReadBytes('\n')
		line = bytes.TrimRight(line, "\r\n")

		if len(line) == 0 && e != nil {
			r.eof = true
			continue
		}

		var fe error
		if r.m == modeUU {
			fe = r.fillUU(line)
		} else {
			fe = r.fillBase64(line)
		}

		if fe != nil {
			return 0, fe
		}

		if e != nil {
			r.eof = true
		}
	}

	n := copy(p, r.out)
	r.out = r.out[n:]

	return n, nil
}
