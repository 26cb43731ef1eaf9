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

// Package rar implements the rar v1-v4 reader: block header walking,
// stored and LZSS compressed entries with dynamic huffman tables.
// Solid archives, encrypted entries, PPMd blocks and stream filters
// are first class errors with their own codes, so callers can
// discriminate them from plain corruption.
package rar

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	"github.com/nabbar/arcengine/charset"
	libent "github.com/nabbar/arcengine/entry"
	liberr "github.com/nabbar/arcengine/errors"
	libfmt "github.com/nabbar/arcengine/format"
	libios "github.com/nabbar/arcengine/iostream"
	liblog "github.com/nabbar/arcengine/logger"
)

var signature = []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}

const (
	headMark    = 0x72
	headMain    = 0x73
	headFile    = 0x74
	headComment = 0x75
	headAv      = 0x76
	headSub     = 0x77
	headProtect = 0x78
	headSign    = 0x79
	headNewSub  = 0x7a
	headEndArc  = 0x7b

	mhdVolume      = 0x0001
	mhdPassword    = 0x0080
	mhdFirstVolume = 0x0100

	fhdSplitBefore = 0x0001
	fhdSplitAfter  = 0x0002
	fhdPassword    = 0x0004
	fhdSolid       = 0x0010
	fhdLarge       = 0x0100
	fhdUnicode     = 0x0200
	fhdSalt        = 0x0400
	fhdExtTime     = 0x1000

	hdAddSizePresent = 0x8000

	methodStore   = 0x30
	methodFastest = 0x31
	methodFast    = 0x32
	methodNormal  = 0x33
	methodGood    = 0x34
	methodBest    = 0x35

	osWin32 = 2
	osUnix  = 3

	winAttrDirectory = 0x10

	blockSize = 32 * 1024
)

type rdr struct {
	s  libios.Stream
	cc *charset.Cache

	cur struct {
		valid  bool
		done   bool
		method byte
		packed int64
		unp    int64
		crc    uint32
		sum    uint32

		// stored state
		remain int64

		// lzss state
		dec      *decode
		offset   int64
		ready    int64
		lzssInit bool
	}

	out [blockSize]byte
}

// Capability returns the rar format registration.
func Capability() libfmt.Capability {
	return libfmt.Capability{
		Algo: libfmt.Rar,
		Bid:  bid,
		Init: newReader,
	}
}

func bid(s libios.Stream, best int) int {
	if best >= 64 {
		return -1
	}

	h, _ := s.Peek(len(signature))
	if len(h) >= len(signature) && bytes.Equal(h[:len(signature)], signature) {
		return 64
	}

	return -1
}

func newReader(s libios.Stream, cc *charset.Cache, _ map[string]string) (libfmt.Reader, liberr.Error) {
	return &rdr{s: s, cc: cc}, nil
}

// Next walks 7 byte block headers until a file header surfaces.
func (o *rdr) Next(e *libent.Entry) (arcsts.Status, liberr.Error) {
	if o.cur.valid && !o.cur.done {
		if sts, err := o.SkipData(); sts == arcsts.Fatal {
			return sts, err
		}
	}

	o.cur.valid = false

	for {
		h, _ := o.s.Peek(7)
		if len(h) < 7 {
			// archives may end without an explicit end block
			return arcsts.Eof, nil
		}

		var (
			htype = h[2]
			flags = binary.LittleEndian.Uint16(h[3:5])
			size  = int64(binary.LittleEndian.Uint16(h[5:7]))
		)

		switch htype {
		case headMark:
			if err := o.s.Consume(7); err != nil {
				return arcsts.Fatal, ErrorTruncated.ErrorParent(err)
			}

		case headMain:
			if flags&(mhdVolume|mhdFirstVolume) != 0 {
				return arcsts.Fatal, ErrorVolume.Error(nil)
			}

			if flags&mhdPassword != 0 {
				return arcsts.Fatal, ErrorEncrypted.Error(nil)
			}

			if size < 7 {
				return arcsts.Fatal, ErrorHeaderInvalid.Error(nil)
			}

			if _, err := o.s.Skip(size); err != nil {
				return arcsts.Fatal, ErrorTruncated.ErrorParent(err)
			}

		case headFile:
			return o.readFileHeader(e, false)

		case headComment, headAv, headSub, headProtect, headSign:
			skip := size

			if flags&hdAddSizePresent != 0 {
				a, _ := o.s.Peek(11)
				if len(a) < 11 {
					return arcsts.Fatal, ErrorTruncated.Error(nil)
				}
				skip += int64(binary.LittleEndian.Uint32(a[7:11]))
			}

			if skip < 7 {
				return arcsts.Fatal, ErrorHeaderInvalid.Error(nil)
			}

			if _, err := o.s.Skip(skip); err != nil {
				return arcsts.Fatal, ErrorTruncated.ErrorParent(err)
			}

		case headNewSub:
			// parsed like a file block but never surfaced
			if sts, err := o.readFileHeader(e, true); sts == arcsts.Fatal {
				return sts, err
			}

		case headEndArc:
			return arcsts.Eof, nil

		default:
			return arcsts.Fatal, ErrorHeaderInvalid.Error(nil)
		}
	}
}

// readFileHeader parses a file or new-sub block past the common 7
// bytes. New-sub payloads are consumed with their header.
func (o *rdr) readFileHeader(e *libent.Entry, sub bool) (arcsts.Status, liberr.Error) {
	h, _ := o.s.Peek(7)
	if len(h) < 7 {
		return arcsts.Fatal, ErrorTruncated.Error(nil)
	}

	var (
		flags   = binary.LittleEndian.Uint16(h[3:5])
		hdrSize = int64(binary.LittleEndian.Uint16(h[5:7]))
	)

	if hdrSize < 7+25 {
		return arcsts.Fatal, ErrorHeaderInvalid.Error(nil)
	}

	if err := o.s.Consume(7); err != nil {
		return arcsts.Fatal, ErrorTruncated.ErrorParent(err)
	}

	if flags&fhdSolid != 0 {
		return arcsts.Fatal, ErrorSolid.Error(nil)
	}

	if flags&fhdPassword != 0 {
		return arcsts.Fatal, ErrorEncrypted.Error(nil)
	}

	body := make([]byte, hdrSize-7)
	if err := o.s.ReadFull(body); err != nil {
		return arcsts.Fatal, ErrorTruncated.ErrorParent(err)
	}

	var (
		packed  = int64(binary.LittleEndian.Uint32(body[0:4]))
		unp     = int64(binary.LittleEndian.Uint32(body[4:8]))
		hostOs  = body[8]
		fileCrc = binary.LittleEndian.Uint32(body[9:13])
		dostm   = binary.LittleEndian.Uint32(body[13:17])
		method  = body[18]
		nameSz  = int(binary.LittleEndian.Uint16(body[19:21]))
		attr    = binary.LittleEndian.Uint32(body[21:25])
		p       = 25
	)

	if flags&fhdLarge != 0 {
		if len(body) < p+8 {
			return arcsts.Fatal, ErrorHeaderInvalid.Error(nil)
		}

		packed |= int64(binary.LittleEndian.Uint32(body[p:p+4])) << 32
		unp |= int64(binary.LittleEndian.Uint32(body[p+4:p+8])) << 32
		p += 8
	}

	if len(body) < p+nameSz {
		return arcsts.Fatal, ErrorHeaderInvalid.Error(nil)
	}

	rawName := body[p : p+nameSz]
	p += nameSz

	if flags&fhdSalt != 0 {
		p += 8
	}

	mtime := dosTime(dostm)
	times := extTimes{mtime: mtime}

	if flags&fhdExtTime != 0 && p < len(body) {
		times, _ = parseExtTime(body[p:], mtime)
	}

	if sub {
		// the sub block payload is part of the block
		if packed > 0 {
			if _, err := o.s.Skip(packed); err != nil {
				return arcsts.Fatal, ErrorTruncated.ErrorParent(err)
			}
		}

		return arcsts.Ok, nil
	}

	e.Reset()

	if flags&fhdUnicode != 0 {
		e.SetPathname(decodeUnicodeName(rawName))
	} else {
		e.SetPathnameBytes(bytes.ReplaceAll(rawName, []byte{'\\'}, []byte{'/'}), charset.CurrentLocaleCharset())
	}

	switch hostOs {
	case osWin32:
		if attr&winAttrDirectory != 0 {
			e.SetFileType(libent.TypeDirectory)
			e.SetMode(0o755)
		} else {
			e.SetFileType(libent.TypeRegular)
			e.SetMode(0o644)
		}

	case osUnix:
		e.SetFullMode(uint16(attr))

	default:
		return arcsts.Fatal, ErrorHostUnsupported.Error(nil)
	}

	e.SetMTime(times.mtime)
	if times.ctime.IsSet() {
		e.SetCTime(times.ctime)
	}
	if times.atime.IsSet() {
		e.SetATime(times.atime)
	}

	if e.FileType() == libent.TypeRegular {
		e.SetSize(uint64(unp))
	}

	o.cur.valid = true
	o.cur.done = false
	o.cur.method = method
	o.cur.packed = packed
	o.cur.unp = unp
	o.cur.crc = fileCrc
	o.cur.sum = 0
	o.cur.remain = packed
	o.cur.dec = nil
	o.cur.offset = 0
	o.cur.ready = 0
	o.cur.lzssInit = false

	if e.FileType() == libent.TypeSymlink {
		return o.readSymlinkStored(e)
	}

	if e.FileType() != libent.TypeRegular || unp == 0 {
		if sts, err := o.SkipData(); sts == arcsts.Fatal {
			return sts, err
		}
		o.cur.done = true
	}

	switch method {
	case methodStore, methodFastest, methodFast, methodNormal:
		return arcsts.Ok, nil

	case methodGood, methodBest:
		return arcsts.Warn, ErrorMethodUnsupported.Error(nil)

	default:
		return arcsts.Warn, ErrorMethodUnsupported.Error(nil)
	}
}

// readSymlinkStored captures the packed bytes as the link target.
func (o *rdr) readSymlinkStored(e *libent.Entry) (arcsts.Status, liberr.Error) {
	t := make([]byte, o.cur.packed)

	if err := o.s.ReadFull(t); err != nil {
		return arcsts.Fatal, ErrorTruncated.ErrorParent(err)
	}

	if i := bytes.IndexByte(t, 0); i >= 0 {
		t = t[:i]
	}

	e.SetSymlink(string(t))
	o.cur.done = true

	return arcsts.Ok, nil
}

func (o *rdr) ReadBlock() ([]byte, int64, arcsts.Status, liberr.Error) {
	if !o.cur.valid {
		return nil, 0, arcsts.Failed, ErrorHeaderInvalid.Error(nil)
	}

	if o.cur.done {
		return nil, o.cur.offset, arcsts.Eof, nil
	}

	switch o.cur.method {
	case methodStore:
		return o.readStored()

	case methodFastest, methodFast, methodNormal:
		return o.readLzss()

	default:
		return nil, 0, arcsts.Failed, ErrorMethodUnsupported.Error(nil)
	}
}

func (o *rdr) readStored() ([]byte, int64, arcsts.Status, liberr.Error) {
	if o.cur.remain <= 0 {
		st, er := o.finish()
		return nil, o.cur.offset, st, er
	}

	n := int64(blockSize)
	if n > o.cur.remain {
		n = o.cur.remain
	}

	if err := o.s.ReadFull(o.out[:n]); err != nil {
		o.cur.done = true
		return nil, o.cur.offset, arcsts.Fatal, ErrorTruncated.ErrorParent(err)
	}

	o.cur.sum = crc32.Update(o.cur.sum, crc32.IEEETable, o.out[:n])

	off := o.cur.offset
	o.cur.offset += n
	o.cur.remain -= n

	return o.out[:n], off, arcsts.Ok, nil
}

// readLzss delivers decompressed bytes out of the sliding window,
// expanding more of the stream whenever the window runs dry.
func (o *rdr) readLzss() ([]byte, int64, arcsts.Status, liberr.Error) {
	if o.cur.offset >= o.cur.unp {
		st, er := o.finish()
		return nil, o.cur.offset, st, er
	}

	if o.cur.dec == nil {
		o.cur.dec = &decode{
			br: newBitReader(o.s, o.cur.packed),
		}
		o.cur.dec.startNewTable = true
	}

	d := o.cur.dec

	if o.cur.ready <= 0 {
		if d.startNewTable {
			if e := d.parseCodes(o.cur.unp); e != nil {
				o.cur.done = true
				return nil, o.cur.offset, arcsts.Fatal, liberr.Make(e)
			}
		}

		var (
			start = d.win.pos
			end   = start + d.win.size()
		)

		actual, e := d.expand(end)
		if e != nil {
			o.cur.done = true
			return nil, o.cur.offset, arcsts.Fatal, liberr.Make(e)
		}

		o.cur.ready = actual - start
	}

	if o.cur.ready <= 0 {
		if o.cur.dec.br.eof {
			o.cur.done = true
			return nil, o.cur.offset, arcsts.Fatal, ErrorTruncated.Error(nil)
		}

		return o.out[:0], o.cur.offset, arcsts.Ok, nil
	}

	// serve the contiguous window piece at the delivery position
	var (
		woff  = d.win.offsetFor(o.cur.offset)
		avail = d.win.size() - woff
		n     = o.cur.ready
	)

	if n > avail {
		n = avail
	}
	if max := o.cur.unp - o.cur.offset; n > max {
		n = max
	}
	if n > blockSize {
		n = blockSize
	}

	p := d.win.window[woff : woff+n]

	o.cur.sum = crc32.Update(o.cur.sum, crc32.IEEETable, p)

	off := o.cur.offset
	o.cur.offset += n
	o.cur.ready -= n

	if o.cur.offset >= o.cur.unp {
		// surplus window content past the declared size is dropped
		o.cur.ready = 0
	}

	return p, off, arcsts.Ok, nil
}

// finish validates the file crc against the decoded stream.
func (o *rdr) finish() (arcsts.Status, liberr.Error) {
	o.cur.done = true

	if o.cur.dec != nil {
		if e := o.cur.dec.br.drain(); e != nil {
			return arcsts.Fatal, ErrorTruncated.ErrorParent(e)
		}
	}

	if o.cur.sum != o.cur.crc {
		liblog.WarnLevel.Logf("rar entry crc mismatch: computed %08x, declared %08x", o.cur.sum, o.cur.crc)
		return arcsts.Eof, ErrorDataInvalid.Error(nil)
	}

	return arcsts.Eof, nil
}

func (o *rdr) SkipData() (arcsts.Status, liberr.Error) {
	if !o.cur.valid || o.cur.done {
		return arcsts.Ok, nil
	}

	o.cur.done = true

	if o.cur.dec != nil {
		if e := o.cur.dec.br.drain(); e != nil {
			return arcsts.Fatal, ErrorTruncated.ErrorParent(e)
		}

		return arcsts.Ok, nil
	}

	if o.cur.remain > 0 {
		if _, e := o.s.Skip(o.cur.remain); e != nil {
			return arcsts.Fatal, ErrorTruncated.ErrorParent(e)
		}
		o.cur.remain = 0
	}

	return arcsts.Ok, nil
}

func (o *rdr) Close() error {
	return nil
}
