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

package cab_test

import (
	"bytes"
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	"github.com/nabbar/arcengine/charset"
	libent "github.com/nabbar/arcengine/entry"
	libfmt "github.com/nabbar/arcengine/format"
	arccab "github.com/nabbar/arcengine/format/cab"
	libios "github.com/nabbar/arcengine/iostream"
)

func openCab(raw []byte) libfmt.Reader {
	s := libios.NewMemory(raw)

	reg := libfmt.NewRegistry()
	reg.Register(arccab.Capability())

	_, rd, err := reg.Open(s, &charset.Cache{}, nil)
	Expect(err).To(BeNil())

	return rd
}

func drain(rd libfmt.Reader) []byte {
	var body []byte

	for {
		b, _, sts, err := rd.ReadBlock()
		if sts == arcsts.Eof {
			return body
		}

		Expect(sts).To(BeElementOf(arcsts.Ok, arcsts.Warn))
		if sts == arcsts.Ok {
			Expect(err).To(BeNil())
		}

		body = append(body, b...)
	}
}

var _ = Describe("Cab reader", func() {
	Context("uncompressed folders", func() {
		It("should list and deliver every file", func() {
			raw := buildCabinet(cabCompNone, []cabFile{
				{name: "a.txt", data: []byte("hello cabinet")},
				{name: `dir\b.bin`, data: bytes.Repeat([]byte{0xAB}, 100)},
			}, false)

			rd := openCab(raw)
			e := libent.New(&charset.Cache{})

			sts, err := rd.Next(e)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(err).To(BeNil())
			Expect(e.Pathname()).To(Equal("a.txt"))
			Expect(e.Size()).To(Equal(uint64(13)))
			Expect(string(drain(rd))).To(Equal("hello cabinet"))

			sts, err = rd.Next(e)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(err).To(BeNil())
			// backslashes are translated to forward slashes
			Expect(e.Pathname()).To(Equal("dir/b.bin"))
			Expect(drain(rd)).To(Equal(bytes.Repeat([]byte{0xAB}, 100)))

			sts, _ = rd.Next(e)
			Expect(sts).To(Equal(arcsts.Eof))
		})

		It("should skip a file without breaking the next one", func() {
			raw := buildCabinet(cabCompNone, []cabFile{
				{name: "first", data: bytes.Repeat([]byte{1}, 50)},
				{name: "second", data: bytes.Repeat([]byte{2}, 60)},
			}, false)

			rd := openCab(raw)
			e := libent.New(&charset.Cache{})

			_, _ = rd.Next(e)
			sts, err := rd.SkipData()
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(err).To(BeNil())

			sts, err = rd.Next(e)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(err).To(BeNil())
			Expect(drain(rd)).To(Equal(bytes.Repeat([]byte{2}, 60)))
		})
	})

	Context("mszip folders", func() {
		It("should deliver four pattern files word for word", func() {
			files := make([]cabFile, 4)
			for magic := 1; magic <= 4; magic++ {
				files[magic-1] = cabFile{
					name: "data" + string(rune('0'+magic)) + ".bin",
					data: quadPattern(4096, magic),
				}
			}

			rd := openCab(buildCabinet(cabCompMSZip, files, false))
			e := libent.New(&charset.Cache{})

			for magic := 1; magic <= 4; magic++ {
				sts, err := rd.Next(e)
				Expect(sts).To(Equal(arcsts.Ok))
				Expect(err).To(BeNil())

				got := drain(rd)
				want := quadPattern(4096, magic)

				Expect(len(got)).To(Equal(4096))

				for i := 0; i+4 <= 4096; i += 4 {
					Expect(binary.LittleEndian.Uint32(got[i:])).
						To(Equal(binary.LittleEndian.Uint32(want[i:])))
				}
			}

			sts, _ := rd.Next(e)
			Expect(sts).To(Equal(arcsts.Eof))
		})

		It("should carry the dictionary across blocks", func() {
			body := bytes.Repeat([]byte("dictionary crossing payload "), 2048)
			Expect(len(body)).To(BeNumerically(">", 32768))

			rd := openCab(buildCabinet(cabCompMSZip, []cabFile{
				{name: "big.bin", data: body},
			}, false))

			e := libent.New(&charset.Cache{})
			sts, err := rd.Next(e)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(err).To(BeNil())

			Expect(drain(rd)).To(Equal(body))
		})

		It("should accept a zeroed checksum silently", func() {
			body := bytes.Repeat([]byte{0x5A}, 1000)

			rd := openCab(buildCabinet(cabCompMSZip, []cabFile{
				{name: "f", data: body},
			}, true))

			e := libent.New(&charset.Cache{})
			sts, err := rd.Next(e)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(err).To(BeNil())

			Expect(drain(rd)).To(Equal(body))
		})
	})

	Context("damaged input", func() {
		It("should warn on a checksum mismatch but still deliver", func() {
			raw := buildCabinet(cabCompNone, []cabFile{
				{name: "f", data: []byte("payload under bad checksum")},
			}, false)

			// corrupt the stored sum of the single data block
			idx := len(raw) - len("payload under bad checksum") - 8
			raw[idx] ^= 0xFF

			rd := openCab(raw)
			e := libent.New(&charset.Cache{})

			sts, err := rd.Next(e)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(err).To(BeNil())

			var (
				warned bool
				body   []byte
			)

			for {
				b, _, bsts, berr := rd.ReadBlock()
				if bsts == arcsts.Eof {
					break
				}

				if bsts == arcsts.Warn {
					warned = true
					Expect(berr).ToNot(BeNil())
				}

				body = append(body, b...)
			}

			Expect(warned).To(BeTrue())
			Expect(string(body)).To(Equal("payload under bad checksum"))
		})

		It("should reject a continuation folder entry cleanly", func() {
			raw := buildCabinet(cabCompNone, []cabFile{
				{name: "f", data: []byte("x")},
			}, false)

			// rewrite the file's folder index to the continuation
			// sentinel: the file table starts right after the folder
			coff := binary.LittleEndian.Uint32(raw[16:20])
			binary.LittleEndian.PutUint16(raw[coff+8:coff+10], 0xFFFD)

			rd := openCab(raw)
			e := libent.New(&charset.Cache{})

			sts, err := rd.Next(e)
			Expect(sts).To(Equal(arcsts.Failed))
			Expect(err).ToNot(BeNil())
			Expect(err.HasCode(arccab.ErrorMultiVolume)).To(BeTrue())
		})

		It("should not bid on a foreign stream", func() {
			s := libios.NewMemory([]byte("MZ not really a cabinet"))
			Expect(arccab.Capability().Bid(s, 0)).To(BeNumerically("<", 0))
		})
	})
})
