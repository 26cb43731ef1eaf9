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

package zip_test

import (
	"bytes"
	"hash/crc32"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	"github.com/nabbar/arcengine/charset"
	libent "github.com/nabbar/arcengine/entry"
	libfmt "github.com/nabbar/arcengine/format"
	arczip "github.com/nabbar/arcengine/format/zip"
	libios "github.com/nabbar/arcengine/iostream"
)

const helloBody = "hello libarchive test suite!\n"

func writeOne(opt map[string]string, name, body string, mode uint16, mtime time.Time) []byte {
	var buf bytes.Buffer

	w, err := arczip.NewWriter(&buf, opt)
	Expect(err).To(BeNil())

	e := libent.New(&charset.Cache{})
	e.SetPathname(name)
	e.SetFileType(libent.TypeRegular)
	e.SetMode(mode)
	e.SetSize(uint64(len(body)))
	e.SetMTime(libent.NewTimeSec(mtime.Unix()))

	sts, err := w.WriteHeader(e)
	Expect(sts).To(Equal(arcsts.Ok))
	Expect(err).To(BeNil())

	n, werr := w.Write([]byte(body))
	Expect(werr).To(BeNil())
	Expect(n).To(Equal(len(body)))

	sts, err = w.Close()
	Expect(sts).To(Equal(arcsts.Ok))
	Expect(err).To(BeNil())

	return buf.Bytes()
}

func readAllEntries(cap libfmt.Capability, raw []byte) (names []string, bodies [][]byte) {
	s := libios.NewMemory(raw)

	reg := libfmt.NewRegistry()
	reg.Register(cap)

	_, rd, err := reg.Open(s, &charset.Cache{}, nil)
	Expect(err).To(BeNil())

	e := libent.New(&charset.Cache{})

	for {
		sts, nerr := rd.Next(e)
		if sts == arcsts.Eof {
			break
		}

		Expect(sts).To(BeElementOf(arcsts.Ok, arcsts.Warn))
		Expect(nerr).To(BeNil())

		names = append(names, e.Pathname())

		var body []byte
		for {
			b, _, bsts, berr := rd.ReadBlock()
			if bsts == arcsts.Eof {
				Expect(berr).To(BeNil())
				break
			}
			Expect(bsts).To(BeElementOf(arcsts.Ok, arcsts.Warn))
			body = append(body, b...)
		}

		bodies = append(bodies, body)
	}

	return names, bodies
}

var _ = Describe("Zip writer", func() {
	Context("stored compression", func() {
		It("should emit the canonical local header prefix", func() {
			raw := writeOne(
				map[string]string{"compression": "store"},
				"helloworld.txt", helloBody, 0o644,
				time.Now().Truncate(time.Second),
			)

			Expect(len(raw)).To(BeNumerically(">", 10))
			Expect(raw[:10]).To(Equal([]byte{
				0x50, 0x4B, 0x03, 0x04, 0x14, 0x00, 0x08, 0x00, 0x00, 0x00,
			}))
		})

		It("should read back a single stored entry with identical bytes", func() {
			raw := writeOne(
				map[string]string{"compression": "store"},
				"helloworld.txt", helloBody, 0o644,
				time.Now().Truncate(time.Second),
			)

			for _, cap := range []libfmt.Capability{
				arczip.CapabilityStream(),
				arczip.CapabilitySeek(),
			} {
				names, bodies := readAllEntries(cap, raw)
				Expect(names).To(Equal([]string{"helloworld.txt"}))
				Expect(bodies).To(HaveLen(1))
				Expect(string(bodies[0])).To(Equal(helloBody))
				Expect(len(bodies[0])).To(Equal(29))
			}
		})
	})

	Context("deflate compression", func() {
		It("should round-trip a large entry through both readers", func() {
			body := bytes.Repeat([]byte("archive payload with plenty of repetition "), 4096)

			raw := writeOne(nil, "big.bin", string(body), 0o600, time.Now())

			for _, cap := range []libfmt.Capability{
				arczip.CapabilityStream(),
				arczip.CapabilitySeek(),
			} {
				names, bodies := readAllEntries(cap, raw)
				Expect(names).To(Equal([]string{"big.bin"}))
				Expect(bodies[0]).To(Equal(body))
			}
		})
	})

	Context("directories", func() {
		It("should force a trailing slash and zero size", func() {
			var buf bytes.Buffer

			w, err := arczip.NewWriter(&buf, nil)
			Expect(err).To(BeNil())

			d := libent.New(&charset.Cache{})
			d.SetPathname("sub/dir")
			d.SetFileType(libent.TypeDirectory)
			d.SetMode(0o755)
			d.SetMTime(libent.NewTimeSec(time.Now().Unix()))

			sts, werr := w.WriteHeader(d)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(werr).To(BeNil())

			sts, werr = w.Close()
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(werr).To(BeNil())

			names, _ := readAllEntries(arczip.CapabilityStream(), buf.Bytes())
			Expect(names).To(Equal([]string{"sub/dir/"}))
		})
	})

	Context("multiple entries", func() {
		It("should keep entries ordered and sized", func() {
			var buf bytes.Buffer

			w, err := arczip.NewWriter(&buf, map[string]string{"compression": "store"})
			Expect(err).To(BeNil())

			for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
				e := libent.New(&charset.Cache{})
				e.SetPathname(name)
				e.SetFileType(libent.TypeRegular)
				e.SetMode(0o644)
				body := bytes.Repeat([]byte{byte('a' + i)}, 10+i)
				e.SetSize(uint64(len(body)))
				e.SetMTime(libent.NewTimeSec(time.Now().Unix()))

				sts, herr := w.WriteHeader(e)
				Expect(sts).To(Equal(arcsts.Ok))
				Expect(herr).To(BeNil())

				_, werr := w.Write(body)
				Expect(werr).To(BeNil())
			}

			sts, cerr := w.Close()
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(cerr).To(BeNil())

			names, bodies := readAllEntries(arczip.CapabilitySeek(), buf.Bytes())
			Expect(names).To(Equal([]string{"a.txt", "b.txt", "c.txt"}))
			Expect(bodies[2]).To(Equal(bytes.Repeat([]byte{'c'}, 12)))
		})
	})

	Context("zip64 mode", func() {
		It("should emit sentinels and the zip64 end records for stored entries", func() {
			raw := writeOne(
				map[string]string{"compression": "store", "zip64": ""},
				"big64.bin", helloBody, 0o644, time.Now(),
			)

			// version needed 4.5, sentinel size fields in the local header
			Expect(raw[4]).To(Equal(byte(45)))
			Expect(raw[18:26]).To(Equal([]byte{
				0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
			}))

			// zip64 end of central directory record plus locator
			Expect(bytes.Contains(raw, []byte{0x50, 0x4B, 0x06, 0x06})).To(BeTrue())
			Expect(bytes.Contains(raw, []byte{0x50, 0x4B, 0x06, 0x07})).To(BeTrue())

			for _, cap := range []libfmt.Capability{
				arczip.CapabilityStream(),
				arczip.CapabilitySeek(),
			} {
				names, bodies := readAllEntries(cap, raw)
				Expect(names).To(Equal([]string{"big64.bin"}))
				Expect(string(bodies[0])).To(Equal(helloBody))
			}
		})

		It("should round-trip deflate entries through the wide descriptor", func() {
			body := bytes.Repeat([]byte("zip64 deflate payload with repetition "), 2048)

			raw := writeOne(map[string]string{"zip64": ""}, "wide.bin", string(body), 0o600, time.Now())

			for _, cap := range []libfmt.Capability{
				arczip.CapabilityStream(),
				arczip.CapabilitySeek(),
			} {
				names, bodies := readAllEntries(cap, raw)
				Expect(names).To(Equal([]string{"wide.bin"}))
				Expect(bodies[0]).To(Equal(body))
			}
		})
	})

	Context("crc accounting", func() {
		It("should emit the crc of the payload in the data descriptor", func() {
			raw := writeOne(
				map[string]string{"compression": "store"},
				"x", "check me", 0o644, time.Now(),
			)

			want := crc32.ChecksumIEEE([]byte("check me"))

			// the descriptor trails the payload: signature then crc
			idx := bytes.Index(raw, []byte{0x50, 0x4B, 0x07, 0x08})
			Expect(idx).To(BeNumerically(">", 0))

			got := uint32(raw[idx+4]) | uint32(raw[idx+5])<<8 |
				uint32(raw[idx+6])<<16 | uint32(raw[idx+7])<<24
			Expect(got).To(Equal(want))
		})
	})
})

var _ = Describe("Zip reader", func() {
	Context("bidding", func() {
		It("should favor the seekable variant on seekable input", func() {
			raw := writeOne(nil, "f", "data", 0o644, time.Now())

			var (
				s    = libios.NewMemory(raw)
				seek = arczip.CapabilitySeek()
				strm = arczip.CapabilityStream()
			)

			bSeek := seek.Bid(s, 0)
			bStrm := strm.Bid(s, 0)

			Expect(bSeek).To(BeNumerically(">", bStrm))
		})

		It("should not bid on foreign data", func() {
			s := libios.NewMemory([]byte("definitely not a zip file"))
			Expect(arczip.CapabilityStream().Bid(s, 0)).To(BeNumerically("<", 0))
		})
	})

	Context("damaged input", func() {
		It("should reject an encrypted entry with a distinct error", func() {
			raw := writeOne(map[string]string{"compression": "store"}, "f", "data", 0o644, time.Now())

			// set the encryption bit of the local header flags
			raw[6] |= 0x01

			s := libios.NewMemory(raw)
			reg := libfmt.NewRegistry()
			reg.Register(arczip.CapabilityStream())

			_, rd, err := reg.Open(s, &charset.Cache{}, nil)
			Expect(err).To(BeNil())

			e := libent.New(&charset.Cache{})
			sts, nerr := rd.Next(e)

			Expect(sts).To(Equal(arcsts.Fatal))
			Expect(nerr).ToNot(BeNil())
			Expect(nerr.HasCode(arczip.ErrorEncrypted)).To(BeTrue())
		})
	})
})
