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

// Package rpm strips the rpm package envelope (lead and header
// sections) from a stream, delivering the compressed payload to the
// next filter bidding round.
package rpm

import (
	"encoding/binary"
	"errors"
	"io"
)

const leadSize = 96

var (
	ErrLead   = errors.New("rpm: invalid lead magic")
	ErrHeader = errors.New("rpm: invalid header structure")
)

var headerMagic = [3]byte{0x8E, 0xAD, 0xE8}

// NewReader consumes the rpm lead, signature and header sections and
// returns a reader positioned at the payload.
func NewReader(src io.Reader) (io.Reader, error) {
	var lead [leadSize]byte

	if _, e := io.ReadFull(src, lead[:]); e != nil {
		return nil, ErrLead
	}

	if lead[0] != 0xED || lead[1] != 0xAB || lead[2] != 0xEE || lead[3] != 0xDB {
		return nil, ErrLead
	}

	// signature section is padded to 8 bytes, the header section is not
	if e := skipSection(src, true); e != nil {
		return nil, e
	}

	if e := skipSection(src, false); e != nil {
		return nil, e
	}

	return src, nil
}

func skipSection(src io.Reader, pad bool) error {
	var h [16]byte

	if _, e := io.ReadFull(src, h[:]); e != nil {
		return ErrHeader
	}

	if h[0] != headerMagic[0] || h[1] != headerMagic[1] || h[2] != headerMagic[2] {
		return ErrHeader
	}

	var (
		il = binary.BigEndian.Uint32(h[8:12])
		dl = binary.BigEndian.Uint32(h[12:16])
	)

	size := int64(il)*16 + int64(dl)
	if pad && size%8 != 0 {
		size += 8 - size%8
	}

	if _, e := io.CopyN(io.Discard, src, size); e != nil {
		return ErrHeader
	}

	return nil
}
