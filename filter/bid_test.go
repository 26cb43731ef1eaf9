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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libflt "github.com/nabbar/arcengine/filter"
)

var _ = Describe("Filter bidding", func() {
	It("should award the gzip signature", func() {
		a, bid := libflt.BestBid([]byte{0x1F, 0x8B, 0x08, 0x00})
		Expect(a).To(Equal(libflt.Gzip))
		Expect(bid).To(BeNumerically(">=", libflt.BidSignature))
	})

	It("should award the bzip2 signature with its stream magic", func() {
		a, _ := libflt.BestBid([]byte{'B', 'Z', 'h', '9', 0x31, 0x41, 0x59, 0x26, 0x53, 0x59})
		Expect(a).To(Equal(libflt.Bzip2))
	})

	It("should award the xz signature", func() {
		a, _ := libflt.BestBid([]byte{0xFD, '7', 'z', 'X', 'Z', 0x00})
		Expect(a).To(Equal(libflt.XZ))
	})

	It("should award the lz4 frame magic", func() {
		a, _ := libflt.BestBid([]byte{0x04, 0x22, 0x4D, 0x18})
		Expect(a).To(Equal(libflt.LZ4))
	})

	It("should award the compress magic weakly", func() {
		a, bid := libflt.BestBid([]byte{0x1F, 0x9D, 0x90, 0x00, 0x00, 0x00})
		Expect(a).To(Equal(libflt.Compress))
		Expect(bid).To(BeNumerically("<=", libflt.BidWeak))
	})

	It("should award the rpm lead magic", func() {
		a, _ := libflt.BestBid([]byte{0xED, 0xAB, 0xEE, 0xDB})
		Expect(a).To(Equal(libflt.Rpm))
	})

	It("should award the android backup banner", func() {
		a, _ := libflt.BestBid([]byte("ANDROID BACKUP\n5\n1\nnone\n"))
		Expect(a).To(Equal(libflt.AndroidBackup))
	})

	It("should award a uuencode begin line", func() {
		a, _ := libflt.BestBid([]byte("begin 644 file.bin\n#0V%T\n"))
		Expect(a).To(Equal(libflt.UUdecode))
	})

	It("should stay silent on plain data", func() {
		a, bid := libflt.BestBid([]byte("just some plain text, nothing else"))
		Expect(a).To(Equal(libflt.None))
		Expect(bid).To(Equal(0))
	})

	It("should parse algorithm names back", func() {
		for _, a := range libflt.List() {
			var p libflt.Algorithm
			Expect(p.UnmarshalText([]byte(a.String()))).To(Succeed())
			if a == libflt.None {
				Expect(p).To(Equal(libflt.None))
			} else {
				Expect(p).To(Equal(a))
			}
		}
	})
})
