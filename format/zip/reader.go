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
	"hash/crc32"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	"github.com/nabbar/arcengine/charset"
	libent "github.com/nabbar/arcengine/entry"
	liberr "github.com/nabbar/arcengine/errors"
	libios "github.com/nabbar/arcengine/iostream"
	liblog "github.com/nabbar/arcengine/logger"
)

const (
	sigLocal      = 0x04034b50
	sigCentralDir = 0x02014b50
	sigEndOfCD    = 0x06054b50
	sigDescriptor = 0x08074b50

	methodStore   = 0
	methodDeflate = 8

	flagEncrypted   = 1 << 0
	flagLengthAtEnd = 1 << 3
	flagUtf8Name    = 1 << 11

	blockSize = 32 * 1024
)

type cdEntry struct {
	off     int64
	flags   uint16
	method  uint16
	dostime uint32
	crc     uint32
	csize   uint64
	usize   uint64
	mode    uint16
	hasMode bool
	name    []byte
	utf8    bool
}

type rdr struct {
	s  libios.Stream
	cc *charset.Cache

	seekMode bool
	cd       []cdEntry
	cdIdx    int

	cur struct {
		valid  bool
		open   bool
		done   bool
		method uint16
		flags  uint16
		crc    uint32
		csize  uint64
		usize  uint64
		sized  bool
		atEnd  bool
		z64    bool
		start  int64
		remain int64
		uoff   int64
		fr     io.Reader
		sum    uint32
		unsupp bool
	}

	out [blockSize]byte
}

// Next implements the header state machine shared by both variants.
func (o *rdr) Next(e *libent.Entry) (arcsts.Status, liberr.Error) {
	if o.cur.valid && !o.cur.done {
		if sts, err := o.SkipData(); sts == arcsts.Fatal {
			return sts, err
		}
	}

	o.resetCur()

	if o.seekMode {
		return o.nextSeek(e)
	}

	return o.nextStream(e)
}

func (o *rdr) resetCur() {
	o.cur.valid = false
	o.cur.open = false
	o.cur.done = false
	o.cur.method = 0
	o.cur.flags = 0
	o.cur.crc = 0
	o.cur.csize = 0
	o.cur.usize = 0
	o.cur.sized = false
	o.cur.atEnd = false
	o.cur.z64 = false
	o.cur.start = 0
	o.cur.remain = 0
	o.cur.uoff = 0
	o.cur.fr = nil
	o.cur.sum = 0
	o.cur.unsupp = false
}

// nextStream scans forward for the next marker on a non seekable input.
func (o *rdr) nextStream(e *libent.Entry) (arcsts.Status, liberr.Error) {
	for {
		h, pe := o.s.Peek(4)
		if len(h) < 4 {
			if pe != nil {
				return arcsts.Eof, nil
			}
			return arcsts.Eof, nil
		}

		if h[0] != 'P' || h[1] != 'K' {
			// resynchronize on the next possible marker
			if e := o.s.Consume(1); e != nil {
				return arcsts.Eof, nil
			}
			continue
		}

		switch {
		case h[2] == 0x00 && h[3] == 0x00:
			// split-archive sentinel
			if e := o.s.Consume(4); e != nil {
				return arcsts.Fatal, ErrorTruncated.Error(e)
			}

		case h[2] == 0x01 && h[3] == 0x02, h[2] == 0x05 && h[3] == 0x06:
			// central directory reached: no more entries
			return arcsts.Eof, nil

		case h[2] == 0x03 && h[3] == 0x04:
			return o.parseLocal(e, nil)

		default:
			if e := o.s.Consume(1); e != nil {
				return arcsts.Eof, nil
			}
		}
	}
}

// nextSeek walks the pre-read central directory and positions the
// stream on each local header in turn.
func (o *rdr) nextSeek(e *libent.Entry) (arcsts.Status, liberr.Error) {
	if o.cdIdx >= len(o.cd) {
		return arcsts.Eof, nil
	}

	c := &o.cd[o.cdIdx]
	o.cdIdx++

	if err := o.s.SeekAbs(c.off); err != nil {
		return arcsts.Fatal, ErrorCentralDirectory.ErrorParent(err)
	}

	h, pe := o.s.Peek(4)
	if len(h) < 4 || binary.LittleEndian.Uint32(h) != sigLocal {
		return arcsts.Fatal, ErrorHeaderInvalid.ErrorParent(pe)
	}

	return o.parseLocal(e, c)
}

// parseLocal consumes a 30 byte local header plus name and extras. The
// central directory record, when available, supplies authoritative
// size and crc values even when the local values are zeroed by a
// length-at-end writer.
func (o *rdr) parseLocal(e *libent.Entry, c *cdEntry) (arcsts.Status, liberr.Error) {
	var h [30]byte

	if err := o.s.ReadFull(h[:]); err != nil {
		return arcsts.Fatal, ErrorTruncated.ErrorParent(err)
	}

	if binary.LittleEndian.Uint32(h[0:4]) != sigLocal {
		return arcsts.Fatal, ErrorHeaderInvalid.Error(nil)
	}

	var (
		flags   = binary.LittleEndian.Uint16(h[6:8])
		method  = binary.LittleEndian.Uint16(h[8:10])
		dostm   = binary.LittleEndian.Uint32(h[10:14])
		crc     = binary.LittleEndian.Uint32(h[14:18])
		csize   = uint64(binary.LittleEndian.Uint32(h[18:22]))
		usize   = uint64(binary.LittleEndian.Uint32(h[22:26]))
		nameLen = int(binary.LittleEndian.Uint16(h[26:28]))
		xtraLen = int(binary.LittleEndian.Uint16(h[28:30]))
	)

	if flags&flagEncrypted != 0 {
		e.SetEncrypted(true)
		return arcsts.Fatal, ErrorEncrypted.Error(nil)
	}

	name := make([]byte, nameLen)
	if err := o.s.ReadFull(name); err != nil {
		return arcsts.Fatal, ErrorTruncated.ErrorParent(err)
	}

	xtra := make([]byte, xtraLen)
	if err := o.s.ReadFull(xtra); err != nil {
		return arcsts.Fatal, ErrorTruncated.ErrorParent(err)
	}

	var x extraInfo
	parseExtra(xtra, &x)

	if x.zip64 {
		usize = x.usize
		if x.csize != 0 {
			csize = x.csize
		}
	}

	// the central directory is authoritative when present
	if c != nil {
		crc = c.crc
		csize = c.csize
		usize = c.usize
	}

	e.Reset()

	if flags&flagUtf8Name != 0 {
		e.SetPathnameBytes(name, charset.Utf8)
	} else {
		e.SetPathnameBytes(name, charset.CurrentLocaleCharset())
	}

	var (
		isDir = strings.HasSuffix(string(name), "/")
		mode  uint16
	)

	switch {
	case c != nil && c.hasMode:
		e.SetFullMode(c.mode)
		if e.FileType() == libent.TypeDirectory {
			isDir = true
		}
	case isDir:
		e.SetFileType(libent.TypeDirectory)
		mode = 0o777
		e.SetMode(mode)
	default:
		e.SetFileType(libent.TypeRegular)
		mode = 0o777
		e.SetMode(mode)
	}

	if x.mtime.IsSet() {
		e.SetMTime(x.mtime)
	} else {
		e.SetMTime(dosTime(dostm))
	}

	if x.atime.IsSet() {
		e.SetATime(x.atime)
	}
	if x.ctime.IsSet() {
		e.SetCTime(x.ctime)
	}
	if x.uidSet {
		e.SetUid(x.uid)
	}
	if x.gidSet {
		e.SetGid(x.gid)
	}

	o.cur.valid = true
	o.cur.flags = flags
	o.cur.method = method
	o.cur.crc = crc
	o.cur.csize = csize
	o.cur.usize = usize
	o.cur.atEnd = flags&flagLengthAtEnd != 0 && c == nil && csize == 0
	o.cur.sized = !o.cur.atEnd
	o.cur.z64 = x.zip64
	o.cur.start = o.s.Tell()
	o.cur.remain = int64(csize)

	if isDir {
		e.UnsetSize()
		o.cur.done = true
	} else if o.cur.sized {
		e.SetSize(usize)
	}

	switch method {
	case methodStore, methodDeflate:

	default:
		o.cur.unsupp = true

		if o.cur.atEnd {
			// no way to find the entry end without decoding
			return arcsts.Fatal, ErrorMethodUnsupported.Error(nil)
		}

		return arcsts.Warn, ErrorMethodUnsupported.Error(nil)
	}

	return arcsts.Ok, nil
}

// ReadBlock delivers the next borrowed payload block of the current
// entry. It returns Eof once the payload is exhausted and validated;
// validation anomalies come back attached to the Eof as warnings.
func (o *rdr) ReadBlock() ([]byte, int64, arcsts.Status, liberr.Error) {
	if !o.cur.valid {
		return nil, 0, arcsts.Failed, ErrorHeaderInvalid.Error(nil)
	}

	if o.cur.done {
		return nil, o.cur.uoff, arcsts.Eof, nil
	}

	if o.cur.unsupp {
		// payload cannot be decoded, only skipped
		return nil, 0, arcsts.Failed, ErrorMethodUnsupported.Error(nil)
	}

	switch o.cur.method {
	case methodStore:
		return o.readStored()
	default:
		return o.readDeflate()
	}
}

func (o *rdr) readStored() ([]byte, int64, arcsts.Status, liberr.Error) {
	if o.cur.remain <= 0 {
		st, er := o.finish()
		return nil, o.cur.uoff, st, er
	}

	n := int64(blockSize)
	if n > o.cur.remain {
		n = o.cur.remain
	}

	if err := o.s.ReadFull(o.out[:n]); err != nil {
		o.cur.done = true
		return nil, o.cur.uoff, arcsts.Fatal, ErrorTruncated.ErrorParent(err)
	}

	o.cur.sum = crc32.Update(o.cur.sum, crc32.IEEETable, o.out[:n])

	off := o.cur.uoff
	o.cur.uoff += n
	o.cur.remain -= n

	return o.out[:n], off, arcsts.Ok, nil
}

func (o *rdr) readDeflate() ([]byte, int64, arcsts.Status, liberr.Error) {
	if o.cur.fr == nil {
		if o.cur.sized {
			o.cur.fr = flate.NewReader(io.LimitReader(o.s, o.cur.remain))
		} else {
			o.cur.fr = flate.NewReader(o.s)
		}
	}

	n, e := o.cur.fr.Read(o.out[:])

	if n > 0 {
		o.cur.sum = crc32.Update(o.cur.sum, crc32.IEEETable, o.out[:n])
		off := o.cur.uoff
		o.cur.uoff += int64(n)
		return o.out[:n], off, arcsts.Ok, nil
	}

	if e == io.EOF {
		st, er := o.finish()
		return nil, o.cur.uoff, st, er
	} else if e != nil {
		o.cur.done = true
		return nil, o.cur.uoff, arcsts.Fatal, ErrorTruncated.ErrorParent(e)
	}

	return o.out[:0], o.cur.uoff, arcsts.Ok, nil
}

// finish validates crc and sizes at end of payload, consuming the
// trailing data descriptor in length-at-end mode.
func (o *rdr) finish() (arcsts.Status, liberr.Error) {
	o.cur.done = true

	var warns []error

	crc := o.cur.crc
	csize := int64(o.cur.csize)
	usize := o.cur.usize

	consumed := o.s.Tell() - o.cur.start

	if o.cur.sized {
		// drop any unconsumed remainder of the declared compressed run
		if left := o.cur.start + csize - o.s.Tell(); left > 0 {
			_, _ = o.s.Skip(left)
		}
	}

	if o.cur.atEnd {
		d, err := o.readDescriptor()
		if err != nil {
			return arcsts.Fatal, err
		}

		crc = d.crc
		csize = int64(d.csize)
		usize = d.usize
	} else if o.cur.flags&flagLengthAtEnd != 0 {
		// sizes were declared up front but the crc still travels in
		// the descriptor; consume it only when its signature is there,
		// a bare record is indistinguishable from the next header
		if p, _ := o.s.Peek(4); len(p) >= 4 && binary.LittleEndian.Uint32(p) == sigDescriptor {
			if d, err := o.readDescriptor(); err == nil {
				crc = d.crc
				csize = int64(d.csize)
				usize = d.usize
			}
		}
	}

	if o.cur.sum != crc {
		liblog.WarnLevel.Logf("zip entry crc mismatch: computed %08x, declared %08x", o.cur.sum, crc)
		warns = append(warns, ErrorCrcMismatch.Error(nil))
	}

	// for a sized deflate run the limit reader bounds consumption; the
	// exact count check only holds for stored and length-at-end runs
	if o.cur.method == methodStore || o.cur.atEnd {
		if consumed != csize {
			warns = append(warns, ErrorSizeMismatch.Error(nil))
		}
	}

	if uint32(o.cur.uoff) != uint32(usize) {
		warns = append(warns, ErrorSizeMismatch.Error(nil))
	}

	if len(warns) > 0 {
		return arcsts.Eof, liberr.MakeIfError(warns...)
	}

	return arcsts.Eof, nil
}

type descriptor struct {
	crc   uint32
	csize uint64
	usize uint64
}

// readDescriptor consumes the trailing data descriptor, tolerating the
// signature-less form. A local zip64 extra announces 64 bit size
// fields (24 bytes with signature instead of 16).
func (o *rdr) readDescriptor() (descriptor, liberr.Error) {
	var (
		d descriptor
		h [24]byte
		n = 12
	)

	if o.cur.z64 {
		n = 20
	}

	p, _ := o.s.Peek(4)

	if len(p) >= 4 && binary.LittleEndian.Uint32(p) == sigDescriptor {
		if err := o.s.ReadFull(h[:4]); err != nil {
			return d, ErrorDescriptorInvalid.ErrorParent(err)
		}
	}

	if err := o.s.ReadFull(h[:n]); err != nil {
		return d, ErrorDescriptorInvalid.ErrorParent(err)
	}

	d.crc = binary.LittleEndian.Uint32(h[0:4])

	if o.cur.z64 {
		d.csize = binary.LittleEndian.Uint64(h[4:12])
		d.usize = binary.LittleEndian.Uint64(h[12:20])
	} else {
		d.csize = uint64(binary.LittleEndian.Uint32(h[4:8]))
		d.usize = uint64(binary.LittleEndian.Uint32(h[8:12]))
	}

	return d, nil
}

// SkipData drops the rest of the current entry payload. When the
// compressed size is known the run is skipped without decoding;
// length-at-end entries are decoded to find their end.
func (o *rdr) SkipData() (arcsts.Status, liberr.Error) {
	if !o.cur.valid || o.cur.done {
		return arcsts.Ok, nil
	}

	if o.cur.sized && o.cur.fr == nil {
		// nothing decoded yet: skip the raw compressed run
		left := o.cur.start + int64(o.cur.csize) - o.s.Tell()

		if left > 0 {
			if _, err := o.s.Skip(left); err != nil {
				o.cur.done = true
				return arcsts.Fatal, ErrorTruncated.ErrorParent(err)
			}
		}

		o.cur.done = true
		return arcsts.Ok, nil
	}

	for {
		_, _, sts, err := o.ReadBlock()

		switch sts {
		case arcsts.Eof:
			return arcsts.Ok, nil
		case arcsts.Fatal, arcsts.Failed:
			o.cur.done = true
			return sts, err
		}
	}
}

func (o *rdr) Close() error {
	return nil
}
