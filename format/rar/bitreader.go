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

package rar

import (
	libios "github.com/nabbar/arcengine/iostream"
)

// bitReader delivers MSB-first bits from the packed data region of the
// current file. It never reads past its byte budget, so the stream
// stays positioned for the next block header.
type bitReader struct {
	s      libios.Stream
	budget int64

	cur  uint32
	have uint
	eof  bool
}

func newBitReader(s libios.Stream, budget int64) *bitReader {
	return &bitReader{s: s, budget: budget}
}

// fillByte pulls one budget byte from the stream into the bit buffer.
func (b *bitReader) fillByte() bool {
	if b.budget <= 0 {
		b.eof = true
		return false
	}

	c, e := b.s.ReadByte()
	if e != nil {
		b.eof = true
		return false
	}

	b.budget--
	b.cur = b.cur<<8 | uint32(c)
	b.have += 8

	return true
}

// bits reads up to 16 bits MSB first. Past the budget it delivers zero
// bits and raises the eof flag, matching the tolerant original.
func (b *bitReader) bits(n uint) uint32 {
	for b.have < n {
		if !b.fillByte() {
			b.cur <<= (n - b.have)
			b.have = n
			break
		}
	}

	v := (b.cur >> (b.have - n)) & ((1 << n) - 1)
	b.have -= n
	b.cur &= (1 << b.have) - 1

	return v
}

func (b *bitReader) bit() uint32 {
	return b.bits(1)
}

// alignByte drops the partial byte so the next read starts on a byte
// boundary.
func (b *bitReader) alignByte() {
	b.have -= b.have % 8
	b.cur &= (1 << b.have) - 1
}

// drain discards the remaining budget bytes.
func (b *bitReader) drain() error {
	b.cur = 0
	b.have = 0

	if b.budget > 0 {
		if _, e := b.s.Skip(b.budget); e != nil {
			return e
		}
		b.budget = 0
	}

	return nil
}
