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

	"github.com/klauspost/compress/flate"
)

// cabFile describes one file placed in the built cabinet.
type cabFile struct {
	name string
	data []byte
}

const (
	cabCompNone  = 0
	cabCompMSZip = 1
)

// buildCabinet assembles a single folder cabinet holding the given
// files back to back. Blocks carry a valid checksum unless zeroSum.
func buildCabinet(method uint16, files []cabFile, zeroSum bool) []byte {
	var folderData []byte
	for _, f := range files {
		folderData = append(folderData, f.data...)
	}

	// split the folder into blocks of at most 32768 output bytes
	var blocks [][]byte
	for off := 0; off < len(folderData); off += 32768 {
		end := off + 32768
		if end > len(folderData) {
			end = len(folderData)
		}
		blocks = append(blocks, folderData[off:end])
	}

	var (
		fileTable bytes.Buffer
		uoff      uint32
	)

	for _, f := range files {
		var rec [16]byte
		binary.LittleEndian.PutUint32(rec[0:4], uint32(len(f.data)))
		binary.LittleEndian.PutUint32(rec[4:8], uoff)
		binary.LittleEndian.PutUint16(rec[8:10], 0) // folder index
		binary.LittleEndian.PutUint16(rec[10:12], dosDate(2024, 6, 1))
		binary.LittleEndian.PutUint16(rec[12:14], dosClock(10, 30, 0))
		binary.LittleEndian.PutUint16(rec[14:16], 0x20)

		fileTable.Write(rec[:])
		fileTable.WriteString(f.name)
		fileTable.WriteByte(0)

		uoff += uint32(len(f.data))
	}

	var dataArea bytes.Buffer
	var dict []byte

	for _, b := range blocks {
		var payload []byte

		switch method {
		case cabCompNone:
			payload = b

		case cabCompMSZip:
			var cw bytes.Buffer
			cw.Write([]byte{0x43, 0x4B})

			var (
				fw  *flate.Writer
				err error
			)

			if dict == nil {
				fw, err = flate.NewWriter(&cw, flate.DefaultCompression)
			} else {
				fw, err = flate.NewWriterDict(&cw, flate.DefaultCompression, dict)
			}
			if err != nil {
				panic(err)
			}

			if _, err = fw.Write(b); err != nil {
				panic(err)
			}
			if err = fw.Close(); err != nil {
				panic(err)
			}

			payload = cw.Bytes()
			dict = b
		}

		var hdr [8]byte
		binary.LittleEndian.PutUint16(hdr[4:6], uint16(len(payload)))
		binary.LittleEndian.PutUint16(hdr[6:8], uint16(len(b)))

		if !zeroSum {
			sum := cabChecksum(payload, 0)
			sum ^= binary.LittleEndian.Uint32(hdr[4:8])
			binary.LittleEndian.PutUint32(hdr[0:4], sum)
		}

		dataArea.Write(hdr[:])
		dataArea.Write(payload)
	}

	var (
		hdrSize   = 36
		foldSize  = 8
		coffFiles = hdrSize + foldSize
		coffData  = coffFiles + fileTable.Len()
		total     = coffData + dataArea.Len()
	)

	out := make([]byte, 0, total)

	var h [36]byte
	copy(h[0:4], "MSCF")
	binary.LittleEndian.PutUint32(h[8:12], uint32(total))
	binary.LittleEndian.PutUint32(h[16:20], uint32(coffFiles))
	h[24] = 3
	h[25] = 1
	binary.LittleEndian.PutUint16(h[26:28], 1)
	binary.LittleEndian.PutUint16(h[28:30], uint16(len(files)))
	binary.LittleEndian.PutUint16(h[32:34], 0x1234)

	out = append(out, h[:]...)

	var fr [8]byte
	binary.LittleEndian.PutUint32(fr[0:4], uint32(coffData))
	binary.LittleEndian.PutUint16(fr[4:6], uint16(len(blocks)))
	binary.LittleEndian.PutUint16(fr[6:8], method)

	out = append(out, fr[:]...)
	out = append(out, fileTable.Bytes()...)
	out = append(out, dataArea.Bytes()...)

	return out
}

// cabChecksum mirrors the on-wire folding so built blocks verify.
func cabChecksum(p []byte, seed uint32) uint32 {
	sum := seed

	n := len(p) &^ 3
	for i := 0; i < n; i += 4 {
		sum ^= binary.LittleEndian.Uint32(p[i : i+4])
	}

	var t uint32

	switch len(p) & 3 {
	case 3:
		t |= uint32(p[n]) << 16
		t |= uint32(p[n+1]) << 8
		t |= uint32(p[n+2])
	case 2:
		t |= uint32(p[n]) << 8
		t |= uint32(p[n+1])
	case 1:
		t |= uint32(p[n])
	}

	return sum ^ t
}

func dosDate(y, m, d int) uint16 {
	return uint16((y-1980)<<9 | m<<5 | d)
}

func dosClock(h, m, s int) uint16 {
	return uint16(h<<11 | m<<5 | s/2)
}

// quadPattern fills a buffer with the reference quadratic byte series.
func quadPattern(size, magic int) []byte {
	out := make([]byte, size)

	for i := 0; i < size/4; i++ {
		v := i*i - 3*i + 1 + magic
		if v < 0 {
			v = 0
		}

		binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
	}

	return out
}
