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

// Package zcompress decodes the classic compress(1) LZW stream (.Z).
//
// The format has no ecosystem decoder usable here: the standard library
// LZW reader does not implement the block-clear code or the 8-code
// group padding of compress(1), so the decoder is written out in full.
package zcompress

import (
	"errors"
	"io"
)

const (
	maxBits   = 16
	initBits  = 9
	clearCode = 256
)

var (
	ErrHeader    = errors.New("zcompress: invalid header")
	ErrCorrupted = errors.New("zcompress: corrupted stream")
)

type reader struct {
	src io.Reader

	bitBuf  uint32
	bitCnt  uint
	bits    uint
	maxbits uint
	block   bool

	free   int
	prefix [1 << maxBits]uint16
	suffix [1 << maxBits]byte

	group int

	oldCode  int
	finChar  byte
	started  bool
	eof      bool
	out      []byte
	outStack []byte
}

// NewReader returns a decoder over a raw .Z stream including its
// three byte header.
func NewReader(src io.Reader) (io.Reader, error) {
	var h [3]byte

	if _, e := io.ReadFull(src, h[:]); e != nil {
		return nil, ErrHeader
	}

	if h[0] != 0x1F || h[1] != 0x9D {
		return nil, ErrHeader
	}

	r := &reader{
		src:     src,
		bits:    initBits,
		maxbits: uint(h[2] & 0x1F),
		block:   h[2]&0x80 != 0,
	}

	if r.maxbits < initBits || r.maxbits > maxBits {
		return nil, ErrHeader
	}

	r.clear()

	return r, nil
}

func (r *reader) clear() {
	r.free = 256
	if r.block {
		r.free = 257
	}

	for i := 0; i < 256; i++ {
		r.prefix[i] = 0
		r.suffix[i] = byte(i)
	}

	r.bits = initBits
	r.group = 0
	r.started = false
}

// discardGroup drops the rest of the current 8-code group, matching the
// chunked output of the reference compressor.
func (r *reader) discardGroup() error {
	rem := r.group % 8
	if rem != 0 {
		for i := rem; i < 8; i++ {
			if _, e := r.readCode(); e != nil {
				if e == io.EOF {
					return nil
				}
				return e
			}
		}
	}

	r.group = 0
	return nil
}

func (r *reader) readCode() (int, error) {
	for r.bitCnt < r.bits {
		var b [1]byte

		if _, e := io.ReadFull(r.src, b[:]); e != nil {
			if e == io.EOF || e == io.ErrUnexpectedEOF {
				return -1, io.EOF
			}
			return -1, e
		}

		r.bitBuf |= uint32(b[0]) << r.bitCnt
		r.bitCnt += 8
	}

	code := int(r.bitBuf & ((1 << r.bits) - 1))
	r.bitBuf >>= r.bits
	r.bitCnt -= r.bits
	r.group++

	return code, nil
}

func (r *reader) fill() error {
	code, e := r.readCode()
	if e != nil {
		r.eof = true
		return e
	}

	if r.block && code == clearCode {
		if e = r.discardGroup(); e != nil {
			r.eof = true
			return e
		}

		r.clear()
		return nil
	}

	if !r.started {
		if code > 255 {
			return ErrCorrupted
		}

		r.finChar = byte(code)
		r.oldCode = code
		r.started = true
		r.out = append(r.out, r.finChar)
		return nil
	}

	in := code
	r.outStack = r.outStack[:0]

	if code >= r.free {
		// KwKwK case
		if code != r.free {
			return ErrCorrupted
		}

		r.outStack = append(r.outStack, r.finChar)
		code = r.oldCode
	}

	for code > 255 {
		r.outStack = append(r.outStack, r.suffix[code])
		code = int(r.prefix[code])
	}

	r.finChar = r.suffix[code]
	r.outStack = append(r.outStack, r.finChar)

	for i := len(r.outStack) - 1; i >= 0; i-- {
		r.out = append(r.out, r.outStack[i])
	}

	if r.free < 1<<r.maxbits {
		r.prefix[r.free] = uint16(r.oldCode)
		r.suffix[r.free] = r.finChar
		r.free++

		if r.free >= 1<<r.bits && r.bits < r.maxbits {
			if e = r.discardGroup(); e != nil && e != io.EOF {
				return e
			}
			r.bits++
		}
	}

	r.oldCode = in

	return nil
}

func (r *reader) Read(p []byte) (int, error) {
	for len(r.out) == 0 {
		if r.eof {
			return 0, io.EOF
		}

		if e := r.fill(); e == io.EOF {
			if len(r.out) == 0 {
				return 0, io.EOF
			}
			break
		} else if e != nil {
			return 0, e
		}
	}

	n := copy(p, r.out)
	r.out = r.out[n:]

	return n, nil
}
