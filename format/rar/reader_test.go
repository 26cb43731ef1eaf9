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

package rar_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	"github.com/nabbar/arcengine/charset"
	libent "github.com/nabbar/arcengine/entry"
	libfmt "github.com/nabbar/arcengine/format"
	arcrar "github.com/nabbar/arcengine/format/rar"
	libios "github.com/nabbar/arcengine/iostream"
)

var rarSig = []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}

type rarEntry struct {
	name   string
	data   []byte
	method byte
	attr   uint32
	flags  uint16
}

// buildArchive assembles a v2 style archive: mark block, main block,
// file blocks with stored payloads, end block.
func buildArchive(mainFlags uint16, entries []rarEntry) []byte {
	var out bytes.Buffer

	out.Write(rarSig)

	// main head is 13 bytes: 7 common plus 6 reserved
	main := make([]byte, 13)
	main[2] = 0x73
	binary.LittleEndian.PutUint16(main[3:5], mainFlags)
	binary.LittleEndian.PutUint16(main[5:7], 13)
	out.Write(main)

	for _, f := range entries {
		var (
			name = []byte(f.name)
			size = 7 + 25 + len(name)
			h    = make([]byte, size)
		)

		h[2] = 0x74
		binary.LittleEndian.PutUint16(h[3:5], f.flags)
		binary.LittleEndian.PutUint16(h[5:7], uint16(size))

		binary.LittleEndian.PutUint32(h[7:11], uint32(len(f.data)))
		binary.LittleEndian.PutUint32(h[11:15], uint32(len(f.data)))
		h[15] = 3 // unix host
		binary.LittleEndian.PutUint32(h[16:20], crc32.ChecksumIEEE(f.data))
		binary.LittleEndian.PutUint32(h[20:24], 0x58D5_6A31) // dos stamp
		h[24] = 20
		h[25] = f.method
		binary.LittleEndian.PutUint16(h[26:28], uint16(len(name)))
		binary.LittleEndian.PutUint32(h[28:32], f.attr)
		copy(h[32:], name)

		out.Write(h)
		out.Write(f.data)
	}

	end := make([]byte, 7)
	end[2] = 0x7b
	binary.LittleEndian.PutUint16(end[5:7], 7)
	out.Write(end)

	return out.Bytes()
}

func openRar(raw []byte) libfmt.Reader {
	s := libios.NewMemory(raw)

	reg := libfmt.NewRegistry()
	reg.Register(arcrar.Capability())

	_, rd, err := reg.Open(s, &charset.Cache{}, nil)
	Expect(err).To(BeNil())

	return rd
}

func drain(rd libfmt.Reader) ([]byte, bool) {
	var (
		body   []byte
		warned bool
	)

	for {
		b, _, sts, _ := rd.ReadBlock()
		if sts == arcsts.Eof {
			return body, warned
		}

		Expect(sts).To(BeElementOf(arcsts.Ok, arcsts.Warn))
		if sts == arcsts.Warn {
			warned = true
		}

		body = append(body, b...)
	}
}

var _ = Describe("Rar reader", func() {
	Context("signature bidding", func() {
		It("should bid on the seven byte signature only", func() {
			Expect(arcrar.Capability().Bid(libios.NewMemory(rarSig), 0)).To(BeNumerically(">=", 32))
			Expect(arcrar.Capability().Bid(libios.NewMemory([]byte("Rar!xxx")), 0)).To(BeNumerically("<", 0))
		})
	})

	Context("stored entries", func() {
		It("should walk all blocks and deliver stored payloads", func() {
			raw := buildArchive(0, []rarEntry{
				{name: "hello.txt", data: []byte("stored rar payload\n"), method: 0x30, attr: 0o100644},
				{name: `dir\nested.bin`, data: bytes.Repeat([]byte{0xC3}, 512), method: 0x30, attr: 0o100600},
			})

			rd := openRar(raw)
			e := libent.New(&charset.Cache{})

			sts, err := rd.Next(e)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(err).To(BeNil())
			Expect(e.Pathname()).To(Equal("hello.txt"))
			Expect(e.Mode()).To(Equal(uint16(0o644)))
			Expect(e.Size()).To(Equal(uint64(19)))

			body, warned := drain(rd)
			Expect(warned).To(BeFalse())
			Expect(string(body)).To(Equal("stored rar payload\n"))

			sts, err = rd.Next(e)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(err).To(BeNil())
			Expect(e.Pathname()).To(Equal("dir/nested.bin"))

			body, _ = drain(rd)
			Expect(body).To(Equal(bytes.Repeat([]byte{0xC3}, 512)))

			sts, _ = rd.Next(e)
			Expect(sts).To(Equal(arcsts.Eof))
		})

		It("should skip an unread payload on the next header call", func() {
			raw := buildArchive(0, []rarEntry{
				{name: "one", data: bytes.Repeat([]byte{1}, 100), method: 0x30, attr: 0o100644},
				{name: "two", data: []byte("after skip"), method: 0x30, attr: 0o100644},
			})

			rd := openRar(raw)
			e := libent.New(&charset.Cache{})

			_, _ = rd.Next(e)

			sts, err := rd.Next(e)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(err).To(BeNil())
			Expect(e.Pathname()).To(Equal("two"))

			body, _ := drain(rd)
			Expect(string(body)).To(Equal("after skip"))
		})

		It("should warn on a crc mismatch at end of payload", func() {
			raw := buildArchive(0, []rarEntry{
				{name: "f", data: []byte("soon to be damaged"), method: 0x30, attr: 0o100644},
			})

			// flip one payload byte, leaving the declared crc stale
			raw[len(raw)-7-5] ^= 0x80

			rd := openRar(raw)
			e := libent.New(&charset.Cache{})

			sts, err := rd.Next(e)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(err).To(BeNil())

			var last arcsts.Status
			for {
				_, _, bsts, berr := rd.ReadBlock()
				last = bsts
				if bsts == arcsts.Eof {
					Expect(berr).ToNot(BeNil())
					break
				}
			}
			Expect(last).To(Equal(arcsts.Eof))
		})
	})

	Context("first class rejections", func() {
		It("should reject a volume archive fatally", func() {
			raw := buildArchive(0x0001, nil)

			rd := openRar(raw)
			e := libent.New(&charset.Cache{})

			sts, err := rd.Next(e)
			Expect(sts).To(Equal(arcsts.Fatal))
			Expect(err).ToNot(BeNil())
			Expect(err.HasCode(arcrar.ErrorVolume)).To(BeTrue())
		})

		It("should reject an encrypted archive fatally", func() {
			raw := buildArchive(0x0080, nil)

			rd := openRar(raw)
			e := libent.New(&charset.Cache{})

			sts, err := rd.Next(e)
			Expect(sts).To(Equal(arcsts.Fatal))
			Expect(err.HasCode(arcrar.ErrorEncrypted)).To(BeTrue())
		})

		It("should reject a solid entry fatally", func() {
			raw := buildArchive(0, []rarEntry{
				{name: "s", data: []byte("x"), method: 0x30, attr: 0o100644, flags: 0x0010},
			})

			rd := openRar(raw)
			e := libent.New(&charset.Cache{})

			sts, err := rd.Next(e)
			Expect(sts).To(Equal(arcsts.Fatal))
			Expect(err.HasCode(arcrar.ErrorSolid)).To(BeTrue())
		})

		It("should report ppmd methods unsupported but keep walking", func() {
			raw := buildArchive(0, []rarEntry{
				{name: "p", data: []byte("opaque"), method: 0x35, attr: 0o100644},
				{name: "ok", data: []byte("fine"), method: 0x30, attr: 0o100644},
			})

			rd := openRar(raw)
			e := libent.New(&charset.Cache{})

			sts, err := rd.Next(e)
			Expect(sts).To(Equal(arcsts.Warn))
			Expect(err.HasCode(arcrar.ErrorMethodUnsupported)).To(BeTrue())

			sts, err = rd.Next(e)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(err).To(BeNil())
			Expect(e.Pathname()).To(Equal("ok"))

			body, _ := drain(rd)
			Expect(string(body)).To(Equal("fine"))
		})
	})
})
