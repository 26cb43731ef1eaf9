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

package zip

import (
	"encoding/binary"

	liberr "github.com/nabbar/arcengine/errors"
	libios "github.com/nabbar/arcengine/iostream"
)

const (
	eocdSize   = 22
	cdHdrSize  = 46
	z64EocdLen = 56
	z64LocLen  = 20
	maxEntries = 1 << 20
)

type eocd struct {
	count  int
	cdSize int64
	cdOff  int64
}

// findEOCD looks for the end-of-central-directory record 22 bytes
// before end of file. Only the comment-less single volume layout is
// recognized, which is what the seekable bidder requires anyway.
func findEOCD(s libios.Stream) (eocd, bool) {
	var r eocd

	size, err := s.Size()
	if err != nil || size < eocdSize {
		return r, false
	}

	if e := s.SeekAbs(size - eocdSize); e != nil {
		return r, false
	}

	var h [eocdSize]byte
	if e := s.ReadFull(h[:]); e != nil {
		return r, false
	}

	if binary.LittleEndian.Uint32(h[0:4]) != sigEndOfCD {
		return r, false
	}

	// four zero bytes: this-disk and cd-disk numbers, single volume
	if h[4] != 0 || h[5] != 0 || h[6] != 0 || h[7] != 0 {
		return r, false
	}

	r.count = int(binary.LittleEndian.Uint16(h[10:12]))
	r.cdSize = int64(binary.LittleEndian.Uint32(h[12:16]))
	r.cdOff = int64(binary.LittleEndian.Uint32(h[16:20]))

	// 0xFFFF / 0xFFFFFFFF sentinels point at the zip64 end record
	if r.count == 0xFFFF || uint32(r.cdSize) == 0xFFFFFFFF || uint32(r.cdOff) == 0xFFFFFFFF {
		if z, ok := findZip64EOCD(s, size); ok {
			r = z
		}
	}

	return r, true
}

// findZip64EOCD resolves the zip64 end of central directory through
// its locator, placed right before the classic end record.
func findZip64EOCD(s libios.Stream, size int64) (eocd, bool) {
	var r eocd

	if size < eocdSize+z64LocLen+z64EocdLen {
		return r, false
	}

	if e := s.SeekAbs(size - eocdSize - z64LocLen); e != nil {
		return r, false
	}

	var l [z64LocLen]byte
	if e := s.ReadFull(l[:]); e != nil {
		return r, false
	}

	if binary.LittleEndian.Uint32(l[0:4]) != sigZip64Locator {
		return r, false
	}

	off := int64(binary.LittleEndian.Uint64(l[8:16]))
	if off < 0 || off+z64EocdLen > size {
		return r, false
	}

	if e := s.SeekAbs(off); e != nil {
		return r, false
	}

	var z [z64EocdLen]byte
	if e := s.ReadFull(z[:]); e != nil {
		return r, false
	}

	if binary.LittleEndian.Uint32(z[0:4]) != sigZip64EOCD {
		return r, false
	}

	r.count = int(binary.LittleEndian.Uint64(z[32:40]))
	r.cdSize = int64(binary.LittleEndian.Uint64(z[40:48]))
	r.cdOff = int64(binary.LittleEndian.Uint64(z[48:56]))

	return r, true
}

// readCentralDirectory pre-reads all central directory records into an
// in-memory array ordered by archive layout.
func (o *rdr) readCentralDirectory(e eocd) liberr.Error {
	if e.count < 0 || e.count > maxEntries {
		return ErrorCentralDirectory.Error(nil)
	}

	if err := o.s.SeekAbs(e.cdOff); err != nil {
		return ErrorCentralDirectory.ErrorParent(err)
	}

	o.cd = make([]cdEntry, 0, e.count)

	for i := 0; i < e.count; i++ {
		var h [cdHdrSize]byte

		if err := o.s.ReadFull(h[:]); err != nil {
			return ErrorCentralDirectory.ErrorParent(err)
		}

		if binary.LittleEndian.Uint32(h[0:4]) != sigCentralDir {
			return ErrorCentralDirectory.Error(nil)
		}

		var (
			nameLen = int(binary.LittleEndian.Uint16(h[28:30]))
			xtraLen = int(binary.LittleEndian.Uint16(h[30:32]))
			cmtLen  = int(binary.LittleEndian.Uint16(h[32:34]))
		)

		c := cdEntry{
			flags:   binary.LittleEndian.Uint16(h[8:10]),
			method:  binary.LittleEndian.Uint16(h[10:12]),
			dostime: binary.LittleEndian.Uint32(h[12:16]),
			crc:     binary.LittleEndian.Uint32(h[16:20]),
			csize:   uint64(binary.LittleEndian.Uint32(h[20:24])),
			usize:   uint64(binary.LittleEndian.Uint32(h[24:28])),
			off:     int64(binary.LittleEndian.Uint32(h[42:46])),
		}

		// unix mode travels in the upper half of external attributes
		// when version-made-by says unix
		if host := h[5]; host == 3 {
			c.mode = uint16(binary.LittleEndian.Uint32(h[38:42]) >> 16)
			c.hasMode = c.mode != 0
		}

		c.utf8 = c.flags&flagUtf8Name != 0

		c.name = make([]byte, nameLen)
		if err := o.s.ReadFull(c.name); err != nil {
			return ErrorCentralDirectory.ErrorParent(err)
		}

		xtra := make([]byte, xtraLen)
		if err := o.s.ReadFull(xtra); err != nil {
			return ErrorCentralDirectory.ErrorParent(err)
		}

		parseZip64CD(xtra, &c)

		if _, err := o.s.Skip(int64(cmtLen)); err != nil {
			return ErrorCentralDirectory.ErrorParent(err)
		}

		o.cd = append(o.cd, c)
	}

	return nil
}

// parseZip64CD replaces the 0xFFFFFFFF sentinels of a central
// directory record from its 0x0001 extra block. Fields are present
// only for the values that carry the sentinel, in usize, csize,
// offset order.
func parseZip64CD(p []byte, c *cdEntry) {
	for len(p) >= 4 {
		var (
			id = binary.LittleEndian.Uint16(p[0:2])
			sz = int(binary.LittleEndian.Uint16(p[2:4]))
		)

		p = p[4:]
		if sz > len(p) {
			return
		}

		d := p[:sz]
		p = p[sz:]

		if id != extraZip64 {
			continue
		}

		if uint32(c.usize) == 0xFFFFFFFF && len(d) >= 8 {
			c.usize = binary.LittleEndian.Uint64(d[0:8])
			d = d[8:]
		}
		if uint32(c.csize) == 0xFFFFFFFF && len(d) >= 8 {
			c.csize = binary.LittleEndian.Uint64(d[0:8])
			d = d[8:]
		}
		if uint32(c.off) == 0xFFFFFFFF && len(d) >= 8 {
			c.off = int64(binary.LittleEndian.Uint64(d[0:8]))
		}

		return
	}
}
