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

package charset_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/arcengine/charset"
)

var _ = Describe("Buffer", func() {
	Context("growing an empty buffer", func() {
		It("should keep length and content through growth", func() {
			var b charset.Buffer

			b.AppendString("hello")
			Expect(b.Len()).To(Equal(5))
			Expect(b.String()).To(Equal("hello"))

			b.EnsureSize(100)
			Expect(b.Len()).To(Equal(5))
			Expect(b.String()).To(Equal("hello"))
			Expect(b.Cap()).To(BeNumerically(">=", 100))
		})

		It("should double capacity below the threshold", func() {
			var b charset.Buffer

			b.EnsureSize(33)
			c1 := b.Cap()
			Expect(c1).To(BeNumerically(">=", 33))

			b.EnsureSize(c1 + 1)
			Expect(b.Cap()).To(Equal(c1 * 2))
		})

		It("should grow by a quarter above the threshold", func() {
			var b charset.Buffer

			b.EnsureSize(16 * 1024)
			c1 := b.Cap()

			b.EnsureSize(c1 + 1)
			Expect(b.Cap()).To(Equal(c1 + c1/4))
		})
	})

	Context("mutating content", func() {
		It("should truncate and reset without losing capacity", func() {
			var b charset.Buffer

			b.SetString("abcdef")
			c := b.Cap()

			b.Truncate(3)
			Expect(b.String()).To(Equal("abc"))

			b.Reset()
			Expect(b.Len()).To(Equal(0))
			Expect(b.Cap()).To(Equal(c))

			b.Release()
			Expect(b.Cap()).To(Equal(0))
		})
	})
})

var _ = Describe("WideBuffer", func() {
	It("should hold code points and render them back", func() {
		var w charset.WideBuffer

		w.SetRunes([]rune("héllo"))
		w.AppendRune('!')

		Expect(w.Len()).To(Equal(6))
		Expect(w.String()).To(Equal("héllo!"))
	})
})
