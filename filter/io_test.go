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

package filter_test

import (
	"bytes"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libflt "github.com/nabbar/arcengine/filter"
	libios "github.com/nabbar/arcengine/iostream"
)

var roundtripData = bytes.Repeat([]byte("some compressible archive payload "), 512)

var _ = Describe("Filter codecs", func() {
	Context("library backed algorithms", func() {
		for _, algo := range []libflt.Algorithm{
			libflt.Gzip,
			libflt.Bzip2,
			libflt.XZ,
			libflt.LZMA,
			libflt.LZ4,
		} {
			a := algo

			It("should round-trip through "+a.String(), func() {
				var buf bytes.Buffer

				w, e := a.Writer(&buf)
				Expect(e).To(BeNil())

				_, e = w.Write(roundtripData)
				Expect(e).To(BeNil())
				Expect(w.Close()).To(Succeed())

				r, e := a.Reader(bytes.NewReader(buf.Bytes()))
				Expect(e).To(BeNil())

				out, e := io.ReadAll(r)
				Expect(e).To(BeNil())
				Expect(out).To(Equal(roundtripData))
			})
		}
	})

	Context("detection over a filtered stream", func() {
		It("should stack the winning filter and decode through it", func() {
			var buf bytes.Buffer

			w, e := libflt.Gzip.Writer(&buf)
			Expect(e).To(BeNil())
			_, _ = w.Write(roundtripData)
			Expect(w.Close()).To(Succeed())

			s, chain, err := libflt.Detect(libios.NewReader(bytes.NewReader(buf.Bytes())))
			Expect(err).To(BeNil())
			Expect(chain).To(HaveLen(1))
			Expect(chain[0].Name()).To(Equal("gzip"))

			out, e := io.ReadAll(s)
			Expect(e).To(BeNil())
			Expect(out).To(Equal(roundtripData))
			Expect(chain[0].Count()).To(Equal(int64(len(roundtripData))))
		})

		It("should stack two filters for a doubly wrapped stream", func() {
			var inner bytes.Buffer

			gw, _ := libflt.Gzip.Writer(&inner)
			_, _ = gw.Write(roundtripData)
			Expect(gw.Close()).To(Succeed())

			var outer bytes.Buffer

			bw, _ := libflt.Bzip2.Writer(&outer)
			_, _ = bw.Write(inner.Bytes())
			Expect(bw.Close()).To(Succeed())

			s, chain, err := libflt.Detect(libios.NewReader(bytes.NewReader(outer.Bytes())))
			Expect(err).To(BeNil())
			Expect(chain).To(HaveLen(2))
			Expect(chain[0].Name()).To(Equal("gzip"))
			Expect(chain[1].Name()).To(Equal("bzip2"))

			out, e := io.ReadAll(s)
			Expect(e).To(BeNil())
			Expect(out).To(Equal(roundtripData))
		})

		It("should leave an unfiltered stream alone", func() {
			s, chain, err := libflt.Detect(libios.NewReader(bytes.NewReader([]byte("plain old bytes here"))))
			Expect(err).To(BeNil())
			Expect(chain).To(BeEmpty())

			out, e := io.ReadAll(s)
			Expect(e).To(BeNil())
			Expect(string(out)).To(Equal("plain old bytes here"))
		})
	})

	Context("android backup envelope", func() {
		It("should round-trip the header and compressed payload", func() {
			var buf bytes.Buffer

			w, e := libflt.AndroidBackup.Writer(&buf)
			Expect(e).To(BeNil())
			_, _ = w.Write(roundtripData)
			Expect(w.Close()).To(Succeed())

			Expect(bytes.HasPrefix(buf.Bytes(), []byte("ANDROID BACKUP\n5\n1\nnone\n"))).To(BeTrue())

			r, e := libflt.AndroidBackup.Reader(bytes.NewReader(buf.Bytes()))
			Expect(e).To(BeNil())

			out, e := io.ReadAll(r)
			Expect(e).To(BeNil())
			Expect(out).To(Equal(roundtripData))
		})
	})

	Context("uuencode envelope", func() {
		It("should decode a classic uuencoded body", func() {
			in := "begin 644 test.txt\n#0V%T\n`\nend\n"

			r, e := libflt.UUdecode.Reader(bytes.NewReader([]byte(in)))
			Expect(e).To(BeNil())

			out, err := io.ReadAll(r)
			Expect(err).To(BeNil())
			Expect(string(out)).To(Equal("Cat"))
		})

		It("should decode a base64 body", func() {
			in := "begin-base64 644 test.txt\nQ2F0\n====\n"

			r, e := libflt.UUdecode.Reader(bytes.NewReader([]byte(in)))
			Expect(e).To(BeNil())

			out, err := io.ReadAll(r)
			Expect(err).To(BeNil())
			Expect(string(out)).To(Equal("Cat"))
		})
	})

	Context("compress envelope", func() {
		It("should decode a minimal .Z stream", func() {
			// 9 bit codes for 'a' then 'b', block mode, max 16 bits
			in := []byte{0x1F, 0x9D, 0x90, 0x61, 0xC4, 0x00}

			r, e := libflt.Compress.Reader(bytes.NewReader(in))
			Expect(e).To(BeNil())

			out, err := io.ReadAll(r)
			Expect(err).To(BeNil())
			Expect(string(out)).To(Equal("ab"))
		})

		It("should reject a broken header", func() {
			_, e := libflt.Compress.Reader(bytes.NewReader([]byte{0x1F, 0x00, 0x00}))
			Expect(e).ToNot(BeNil())
		})
	})

	Context("rpm envelope", func() {
		It("should strip lead and header sections", func() {
			var buf bytes.Buffer

			lead := make([]byte, 96)
			copy(lead, []byte{0xED, 0xAB, 0xEE, 0xDB, 3, 0})
			buf.Write(lead)

			empty := []byte{0x8E, 0xAD, 0xE8, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
			buf.Write(empty) // signature section
			buf.Write(empty) // header section
			buf.WriteString("PAYLOAD")

			r, e := libflt.Rpm.Reader(bytes.NewReader(buf.Bytes()))
			Expect(e).To(BeNil())

			out, err := io.ReadAll(r)
			Expect(err).To(BeNil())
			Expect(string(out)).To(Equal("PAYLOAD"))
		})
	})
})
