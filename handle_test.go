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

package arcengine_test

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	arceng "github.com/nabbar/arcengine"
	arcsts "github.com/nabbar/arcengine/arcstatus"
	"github.com/nabbar/arcengine/charset"
	libent "github.com/nabbar/arcengine/entry"
	libflt "github.com/nabbar/arcengine/filter"
)

func writeArchive(format string, filters []libflt.Algorithm, files map[string]string) []byte {
	var buf bytes.Buffer

	w := arceng.NewWriter()

	switch format {
	case "zip":
		Expect(w.SetFormat(arceng.FormatZipStream())).To(Succeed())
		Expect(w.SetOptions("zip:compression=store")).To(Succeed())
	case "tar":
		Expect(w.SetFormat(arceng.FormatTar())).To(Succeed())
	case "cpio":
		Expect(w.SetFormat(arceng.FormatCpio())).To(Succeed())
	}

	for _, f := range filters {
		Expect(w.AddFilter(f)).To(Succeed())
	}

	Expect(w.OpenWriter(&buf)).To(Succeed())

	for name, body := range files {
		e := libent.New(&charset.Cache{})
		e.SetPathname(name)
		e.SetFileType(libent.TypeRegular)
		e.SetMode(0o644)
		e.SetSize(uint64(len(body)))
		e.SetMTime(libent.NewTimeSec(time.Now().Unix()))

		sts, err := w.WriteHeader(e)
		Expect(sts).To(Equal(arcsts.Ok))
		Expect(err).To(BeNil())

		_, werr := w.Write([]byte(body))
		Expect(werr).To(BeNil())
	}

	Expect(w.Close()).To(Succeed())

	return buf.Bytes()
}

func readArchive(raw []byte) (names []string, bodies map[string]string, format string, filters []string) {
	r := arceng.NewReader()
	arceng.SupportFormatAll(r)

	Expect(r.OpenMemory(raw)).To(Succeed())

	bodies = make(map[string]string)

	for {
		e, sts, err := r.NextHeader()
		if sts == arcsts.Eof {
			break
		}

		Expect(sts).To(BeElementOf(arcsts.Ok, arcsts.Warn))
		_ = err

		name := e.Pathname()
		names = append(names, name)

		var body []byte
		for {
			b, _, bsts, _ := r.ReadDataBlock()
			if bsts == arcsts.Eof {
				break
			}
			Expect(bsts).To(BeElementOf(arcsts.Ok, arcsts.Warn))
			body = append(body, b...)
		}

		bodies[name] = string(body)
	}

	format = r.FormatName()
	filters = r.FilterNames()

	Expect(r.Close()).To(Succeed())

	return names, bodies, format, filters
}

var _ = Describe("Archive handles end to end", func() {
	Context("zip stored round-trip", func() {
		It("should write and read back a single entry byte for byte", func() {
			raw := writeArchive("zip", nil, map[string]string{
				"helloworld.txt": "hello libarchive test suite!\n",
			})

			Expect(raw[:10]).To(Equal([]byte{
				0x50, 0x4B, 0x03, 0x04, 0x14, 0x00, 0x08, 0x00, 0x00, 0x00,
			}))

			names, bodies, format, filters := readArchive(raw)

			Expect(names).To(Equal([]string{"helloworld.txt"}))
			Expect(bodies["helloworld.txt"]).To(Equal("hello libarchive test suite!\n"))
			Expect(format).To(Equal("zip"))
			Expect(filters).To(BeEmpty())
		})
	})

	Context("filtered containers", func() {
		It("should stack gzip under tar and detect both on read", func() {
			files := map[string]string{
				"a/one.txt": "first body",
				"a/two.txt": "second body with more text",
			}

			raw := writeArchive("tar", []libflt.Algorithm{libflt.Gzip}, files)

			names, bodies, format, filters := readArchive(raw)

			Expect(names).To(ConsistOf("a/one.txt", "a/two.txt"))
			Expect(bodies["a/two.txt"]).To(Equal("second body with more text"))
			Expect(format).To(Equal("tar"))
			Expect(filters).To(Equal([]string{"gzip"}))
		})

		It("should stack xz under cpio", func() {
			files := map[string]string{"payload.bin": "cpio under xz"}

			raw := writeArchive("cpio", []libflt.Algorithm{libflt.XZ}, files)

			names, bodies, format, filters := readArchive(raw)

			Expect(names).To(Equal([]string{"payload.bin"}))
			Expect(bodies["payload.bin"]).To(Equal("cpio under xz"))
			Expect(format).To(Equal("cpio"))
			Expect(filters).To(Equal([]string{"xz"}))
		})
	})

	Context("bid determinism", func() {
		It("should pick the same format for the same prefix every time", func() {
			raw := writeArchive("tar", nil, map[string]string{"x": "y"})

			for i := 0; i < 5; i++ {
				_, _, format, _ := readArchive(raw)
				Expect(format).To(Equal("tar"))
			}
		})

		It("should fail with unrecognized format on junk", func() {
			r := arceng.NewReader()
			arceng.SupportFormatAll(r)

			Expect(r.OpenMemory(bytes.Repeat([]byte("junk data "), 100))).To(Succeed())

			_, sts, err := r.NextHeader()
			Expect(sts).To(Equal(arcsts.Fatal))
			Expect(err).ToNot(BeNil())
			Expect(err.ContainsString("Unrecognized archive format")).To(BeTrue())

			// the handle is wedged: every further call fails the same way
			_, sts, _ = r.NextHeader()
			Expect(sts).To(Equal(arcsts.Fatal))

			Expect(r.Close()).To(Succeed())
		})
	})

	Context("matcher integration", func() {
		It("should hide excluded entries from the header loop", func() {
			files := map[string]string{
				"keep.txt": "keep",
				"drop.tmp": "drop",
			}

			raw := writeArchive("tar", nil, files)

			r := arceng.NewReader()
			arceng.SupportFormatAll(r)

			m := arceng.NewMatcher()
			Expect(m.ExcludePattern("*.tmp")).To(Succeed())
			Expect(r.SetMatcher(m)).To(Succeed())

			Expect(r.OpenMemory(raw)).To(Succeed())

			var names []string

			for {
				e, sts, _ := r.NextHeader()
				if sts == arcsts.Eof {
					break
				}
				names = append(names, e.Pathname())
				_, _ = r.ReadDataSkip()
			}

			Expect(names).To(Equal([]string{"keep.txt"}))
			Expect(r.Close()).To(Succeed())
		})
	})

	Context("handle state machine", func() {
		It("should refuse registration after open", func() {
			r := arceng.NewReader()
			arceng.SupportFormatAll(r)

			Expect(r.OpenMemory([]byte("x"))).To(Succeed())
			Expect(r.SupportFormat(arceng.FormatTar())).ToNot(BeNil())
		})

		It("should copy payload through ReadData too", func() {
			raw := writeArchive("zip", nil, map[string]string{"f": "0123456789"})

			r := arceng.NewReader()
			arceng.SupportFormatAll(r)
			Expect(r.OpenMemory(raw)).To(Succeed())

			_, sts, _ := r.NextHeader()
			Expect(sts).To(Equal(arcsts.Ok))

			var (
				got []byte
				p   = make([]byte, 4)
			)

			for {
				n, rsts, _ := r.ReadData(p)
				if rsts == arcsts.Eof {
					break
				}
				Expect(rsts).To(Equal(arcsts.Ok))
				got = append(got, p[:n]...)
			}

			Expect(string(got)).To(Equal("0123456789"))
			Expect(r.Close()).To(Succeed())
		})
	})
})
