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

package iostream_test

import (
	"bytes"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libios "github.com/nabbar/arcengine/iostream"
)

var _ = Describe("Stream", func() {
	Context("peeking and consuming", func() {
		It("should peek without consuming", func() {
			s := libios.NewReader(strings.NewReader("hello world"))

			h, err := s.Peek(5)
			Expect(err).To(BeNil())
			Expect(string(h)).To(Equal("hello"))
			Expect(s.Tell()).To(Equal(int64(0)))

			// the read-ahead is preserved across peeks
			h, err = s.Peek(11)
			Expect(err).To(BeNil())
			Expect(string(h)).To(Equal("hello world"))

			p := make([]byte, 5)
			Expect(s.ReadFull(p)).To(Succeed())
			Expect(string(p)).To(Equal("hello"))
			Expect(s.Tell()).To(Equal(int64(5)))
		})

		It("should return a short peek at end of stream", func() {
			s := libios.NewReader(strings.NewReader("abc"))

			h, err := s.Peek(10)
			Expect(err).To(Equal(io.EOF))
			Expect(string(h)).To(Equal("abc"))
		})

		It("should consume previously peeked bytes", func() {
			s := libios.NewReader(strings.NewReader("abcdef"))

			_, _ = s.Peek(4)
			Expect(s.Consume(2)).To(Succeed())

			h, err := s.Peek(2)
			Expect(err).To(BeNil())
			Expect(string(h)).To(Equal("cd"))
			Expect(s.Tell()).To(Equal(int64(2)))
		})
	})

	Context("skipping", func() {
		It("should skip through the read-ahead and beyond", func() {
			s := libios.NewReader(strings.NewReader("0123456789"))

			_, _ = s.Peek(4)

			n, err := s.Skip(6)
			Expect(err).To(BeNil())
			Expect(n).To(Equal(int64(6)))

			var b [4]byte
			Expect(s.ReadFull(b[:])).To(Succeed())
			Expect(string(b[:])).To(Equal("6789"))
		})

		It("should report a short skip at end of stream", func() {
			s := libios.NewReader(strings.NewReader("abc"))

			n, err := s.Skip(10)
			Expect(err).To(BeNil())
			Expect(n).To(Equal(int64(3)))
		})
	})

	Context("seekable sources", func() {
		It("should expose size and absolute seeking", func() {
			s := libios.NewMemory([]byte("0123456789"))
			Expect(s.IsSeekable()).To(BeTrue())

			sz, err := s.Size()
			Expect(err).To(BeNil())
			Expect(sz).To(Equal(int64(10)))

			Expect(s.SeekAbs(7)).To(Succeed())

			h, err := s.Peek(3)
			Expect(err).To(BeNil())
			Expect(string(h)).To(Equal("789"))
			Expect(s.Tell()).To(Equal(int64(7)))
		})

		It("should stay non seekable over a plain reader", func() {
			s := libios.NewReader(iotest{strings.NewReader("x")})
			Expect(s.IsSeekable()).To(BeFalse())
			Expect(s.SeekAbs(0)).ToNot(Succeed())
		})
	})

	Context("byte reading", func() {
		It("should deliver single bytes in order", func() {
			s := libios.NewReader(strings.NewReader("ab"))

			b, err := s.ReadByte()
			Expect(err).To(BeNil())
			Expect(b).To(Equal(byte('a')))

			b, err = s.ReadByte()
			Expect(err).To(BeNil())
			Expect(b).To(Equal(byte('b')))

			_, err = s.ReadByte()
			Expect(err).To(Equal(io.EOF))
		})
	})
})

// iotest hides the Seeker of the wrapped reader
type iotest struct {
	r io.Reader
}

func (i iotest) Read(p []byte) (int, error) {
	return i.r.Read(p)
}

var _ = Describe("Callback source", func() {
	It("should follow the chunk callback contract", func() {
		var (
			chunks = [][]byte{[]byte("hel"), {}, []byte("lo")}
			idx    = 0
			closed = false
		)

		rd := func() ([]byte, error) {
			if idx >= len(chunks) {
				return nil, nil
			}
			c := chunks[idx]
			idx++
			return c, nil
		}

		s := libios.NewCallback(rd, nil, func() error {
			closed = true
			return nil
		})

		b, e := io.ReadAll(s)
		Expect(e).To(BeNil())
		Expect(string(b)).To(Equal("hello"))

		Expect(s.Close()).To(Succeed())
		Expect(closed).To(BeTrue())
	})

	It("should use the skipper callback when skipping", func() {
		var (
			src     = bytes.NewReader([]byte("0123456789"))
			skipped int64
		)

		rd := func() ([]byte, error) {
			b := make([]byte, 3)
			n, e := src.Read(b)
			if e == io.EOF {
				return nil, nil
			} else if e != nil {
				return nil, e
			}
			return b[:n], nil
		}

		sk := func(n int64) (int64, error) {
			r, e := src.Seek(n, io.SeekCurrent)
			_ = r
			skipped += n
			return n, e
		}

		s := libios.NewCallback(rd, sk, nil)

		n, e := s.Skip(4)
		Expect(e).To(BeNil())
		Expect(n).To(Equal(int64(4)))
		Expect(skipped).To(Equal(int64(4)))

		var b [3]byte
		Expect(s.ReadFull(b[:])).To(Succeed())
		Expect(string(b[:])).To(Equal("456"))
	})
})

var _ = Describe("Counter", func() {
	It("should count delivered bytes", func() {
		c := libios.NewCounter(strings.NewReader("abcdef"))

		b, e := io.ReadAll(c)
		Expect(e).To(BeNil())
		Expect(len(b)).To(Equal(6))
		Expect(c.Count()).To(Equal(int64(6)))
	})
})
