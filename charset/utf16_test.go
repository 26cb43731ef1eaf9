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

var _ = Describe("UTF-16BE interop", func() {
	It("should encode bmp code points as two big endian bytes", func() {
		b := charset.EncodeUTF16BE([]rune("AB"))
		Expect(b).To(Equal([]byte{0x00, 'A', 0x00, 'B'}))
	})

	It("should encode supplementary code points as surrogate pairs", func() {
		b := charset.EncodeUTF16BE([]rune{0x1F600})
		Expect(b).To(Equal([]byte{0xD8, 0x3D, 0xDE, 0x00}))
	})

	It("should decode a surrogate pair back to one code point", func() {
		r, err := charset.DecodeUTF16BE([]byte{0xD8, 0x3D, 0xDE, 0x00})
		Expect(err).To(BeNil())
		Expect(r).To(Equal([]rune{0x1F600}))
	})

	It("should replace an unpaired surrogate and flag a warning", func() {
		r, err := charset.DecodeUTF16BE([]byte{0xD8, 0x3D, 0x00, 'A'})
		Expect(err).ToNot(BeNil())
		Expect(r).To(Equal([]rune{'?', 'A'}))
	})

	It("should round-trip text through both directions", func() {
		in := "päth/to/ﬁle 😀"
		r, err := charset.DecodeUTF16BE(charset.EncodeUTF16BE([]rune(in)))
		Expect(err).To(BeNil())
		Expect(string(r)).To(Equal(in))
	})
})

var _ = Describe("Normalization", func() {
	It("should compose combining sequences to nfc", func() {
		in := []byte("e\u0301")
		Expect(string(charset.NormalizeNFC(in))).To(Equal("\u00e9"))
	})

	It("should decompose to nfd outside the excluded ranges", func() {
		out := charset.NormalizeNFDExcluded([]byte("\u00e9"))
		Expect(string(out)).To(Equal("e\u0301"))
	})

	It("should keep excluded compatibility forms precomposed", func() {
		// U+F900 canonically decomposes to U+8C48 but sits in an
		// excluded range, so it must not round-trip through nfd
		kept := charset.NormalizeNFDExcluded([]byte("\uF900"))
		Expect(string(kept)).To(Equal("\uF900"))
	})

	It("should handle mixed excluded and convertible text", func() {
		in := []byte("\u00e9\u2025\u00e9")
		out := charset.NormalizeNFDExcluded(in)
		Expect(string(out)).To(Equal("e\u0301\u2025e\u0301"))
	})
})
