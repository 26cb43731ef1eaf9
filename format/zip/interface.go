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

// Package zip implements the zip container codec: a streamable reader
// driven by local headers, a seekable reader driven by the central
// directory, and a writer assembling a central directory with per
// entry data descriptors.
//
// Both readers share one codec body; the seekable variant bids
// slightly higher so it wins the contest whenever seeking is
// available, because only the central directory carries authoritative
// sizes for length-at-end archives.
package zip

import (
	"github.com/nabbar/arcengine/charset"
	liberr "github.com/nabbar/arcengine/errors"
	libfmt "github.com/nabbar/arcengine/format"
	libios "github.com/nabbar/arcengine/iostream"
)

const (
	bidStream = 30
	bidSeek   = 32
)

// CapabilityStream returns the streamable zip registration.
func CapabilityStream() libfmt.Capability {
	return libfmt.Capability{
		Algo:   libfmt.Zip,
		Bid:    bidStreamFct,
		Init:   newStream,
		Writer: newWriterCap,
	}
}

// CapabilitySeek returns the seekable zip registration.
func CapabilitySeek() libfmt.Capability {
	return libfmt.Capability{
		Algo: libfmt.Zip,
		Bid:  bidSeekFct,
		Init: newSeek,
	}
}

func bidStreamFct(s libios.Stream, best int) int {
	if best >= bidStream {
		return -1
	}

	h, _ := s.Peek(4)
	if len(h) < 4 || h[0] != 'P' || h[1] != 'K' {
		return -1
	}

	switch {
	case h[2] == 0x01 && h[3] == 0x02,
		h[2] == 0x03 && h[3] == 0x04,
		h[2] == 0x05 && h[3] == 0x06,
		h[2] == 0x07 && h[3] == 0x08,
		h[2] == '0' && h[3] == '0':
		return bidStream
	}

	return -1
}

func bidSeekFct(s libios.Stream, best int) int {
	if best >= bidSeek {
		return -1
	}

	if !s.IsSeekable() {
		return -1
	}

	if _, ok := findEOCD(s); !ok {
		_ = s.SeekAbs(0)
		return -1
	}

	_ = s.SeekAbs(0)
	return bidSeek
}

func newStream(s libios.Stream, cc *charset.Cache, _ map[string]string) (libfmt.Reader, liberr.Error) {
	return &rdr{s: s, cc: cc}, nil
}

func newSeek(s libios.Stream, cc *charset.Cache, _ map[string]string) (libfmt.Reader, liberr.Error) {
	o := &rdr{s: s, cc: cc, seekMode: true}

	e, ok := findEOCD(s)
	if !ok {
		return nil, ErrorCentralDirectory.Error(nil)
	}

	if err := o.readCentralDirectory(e); err != nil {
		return nil, err
	}

	return o, nil
}
