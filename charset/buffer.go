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

package charset

const (
	growDoubleLimit = 8 * 1024
	minBufferSize   = 32
)

// Buffer is a growable byte buffer carrying its length apart from its
// capacity. Growth doubles the capacity up to 8 KiB then adds 25% per
// step, matching the allocation pattern of the archive string core.
type Buffer struct {
	b []byte
}

// nextCap computes the capacity reached from c to hold at least n.
func nextCap(c, n int) int {
	if c < minBufferSize {
		c = minBufferSize
	}

	for c < n {
		if c < growDoubleLimit {
			c *= 2
		} else {
			c += c / 4
		}
	}

	return c
}

// EnsureSize grows the buffer capacity to hold at least n bytes without
// changing the length.
func (s *Buffer) EnsureSize(n int) {
	if n <= cap(s.b) {
		return
	}

	nb := make([]byte, len(s.b), nextCap(cap(s.b), n))
	copy(nb, s.b)
	s.b = nb
}

// AppendBytes appends the given raw byte range.
func (s *Buffer) AppendBytes(p []byte) {
	s.EnsureSize(len(s.b) + len(p))
	s.b = append(s.b, p...)
}

// AppendString appends the given string bytes.
func (s *Buffer) AppendString(p string) {
	s.EnsureSize(len(s.b) + len(p))
	s.b = append(s.b, p...)
}

// AppendByte appends a single byte.
func (s *Buffer) AppendByte(c byte) {
	s.EnsureSize(len(s.b) + 1)
	s.b = append(s.b, c)
}

// SetBytes replaces the content with the given byte range.
func (s *Buffer) SetBytes(p []byte) {
	s.b = s.b[:0]
	s.AppendBytes(p)
}

// SetString replaces the content with the given string.
func (s *Buffer) SetString(p string) {
	s.b = s.b[:0]
	s.AppendString(p)
}

// Truncate sets the length to n, keeping the capacity.
func (s *Buffer) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(s.b) {
		s.b = s.b[:n]
	}
}

// Reset empties the buffer, keeping the capacity.
func (s *Buffer) Reset() {
	s.b = s.b[:0]
}

// Release drops the storage entirely.
func (s *Buffer) Release() {
	s.b = nil
}

func (s *Buffer) Len() int {
	return len(s.b)
}

func (s *Buffer) Cap() int {
	return cap(s.b)
}

// Bytes returns the current content. The slice is only valid until the
// next mutating call.
func (s *Buffer) Bytes() []byte {
	return s.b
}

func (s *Buffer) String() string {
	return string(s.b)
}

// WideBuffer is the wide form of Buffer holding decoded code points.
type WideBuffer struct {
	r []rune
}

func (s *WideBuffer) AppendRunes(p []rune) {
	s.r = append(s.r, p...)
}

func (s *WideBuffer) AppendRune(r rune) {
	s.r = append(s.r, r)
}

func (s *WideBuffer) SetRunes(p []rune) {
	s.r = append(s.r[:0], p...)
}

func (s *WideBuffer) Reset() {
	s.r = s.r[:0]
}

func (s *WideBuffer) Len() int {
	return len(s.r)
}

func (s *WideBuffer) Runes() []rune {
	return s.r
}

func (s *WideBuffer) String() string {
	return string(s.r)
}
