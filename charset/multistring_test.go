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

var _ = Describe("MultiString", func() {
	var cc *charset.Cache

	BeforeEach(func() {
		cc = &charset.Cache{}
	})

	AfterEach(func() {
		cc.Close()
	})

	Context("conversions between forms", func() {
		It("should memoize the wide form of a utf-8 value", func() {
			m := charset.NewMultiString(cc)
			m.SetString("héllo wörld")

			w, err := m.Wcs()
			Expect(err).To(BeNil())
			Expect(string(w)).To(Equal("héllo wörld"))

			u, err := m.Utf8()
			Expect(err).To(BeNil())
			Expect(string(u)).To(Equal("héllo wörld"))
		})

		It("should convert tagged bytes through the converter cache", func() {
			m := charset.NewMultiString(cc)

			// "café" in latin-1
			m.SetMbs([]byte{'c', 'a', 'f', 0xE9}, "ISO-8859-1")

			u, err := m.Utf8()
			Expect(err).To(BeNil())
			Expect(string(u)).To(Equal("café"))
		})

		It("should encode back into a tagged charset", func() {
			m := charset.NewMultiString(cc)
			m.SetString("café")

			b, err := m.Mbs("ISO-8859-1")
			Expect(err).To(BeNil())
			Expect(b).To(Equal([]byte{'c', 'a', 'f', 0xE9}))
		})

		It("should reset all forms", func() {
			m := charset.NewMultiString(cc)
			m.SetString("data")
			Expect(m.IsSet()).To(BeTrue())

			m.Reset()
			Expect(m.IsSet()).To(BeFalse())
			Expect(m.String()).To(Equal(""))
		})
	})

	Context("converter cache of size two", func() {
		It("should reuse cached descriptors and evict the oldest", func() {
			c1, err := cc.Get("ISO-8859-1")
			Expect(err).To(BeNil())

			c2, err := cc.Get("ISO-8859-2")
			Expect(err).To(BeNil())
			Expect(c2).ToNot(BeIdenticalTo(c1))

			// both still cached
			r1, err := cc.Get("ISO-8859-1")
			Expect(err).To(BeNil())
			Expect(r1).To(BeIdenticalTo(c1))

			// a third name evicts the least recently used
			_, err = cc.Get("ISO-8859-15")
			Expect(err).To(BeNil())

			r2, err := cc.Get("ISO-8859-2")
			Expect(err).To(BeNil())
			Expect(r2).ToNot(BeIdenticalTo(c2))
		})

		It("should reject an unknown charset name", func() {
			_, err := cc.Get("NOT-A-CHARSET")
			Expect(err).ToNot(BeNil())
		})
	})
})
