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

// Package cab implements the cabinet reader: CFHEADER and CFFOLDER
// parsing, CFFILE enumeration, and windowed CFDATA decompression with
// the MSZIP cross block dictionary. Quantum and LZX folders are
// detected and reported unsupported; their entries stay listable.
package cab

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	"github.com/nabbar/arcengine/charset"
	libent "github.com/nabbar/arcengine/entry"
	liberr "github.com/nabbar/arcengine/errors"
	libfmt "github.com/nabbar/arcengine/format"
	libios "github.com/nabbar/arcengine/iostream"
	liblog "github.com/nabbar/arcengine/logger"
)

const (
	hdrSize    = 36
	folderSize = 8
	dataHdr    = 8

	flagPrevCabinet = 0x0001
	flagNextCabinet = 0x0002
	flagReserve     = 0x0004

	compNone    = 0
	compMSZip   = 1
	compQuantum = 2
	compLZX     = 3

	attrNameIsUtf = 0x80

	// continuation sentinels of iFolder
	foldFromPrev      = 0xFFFD
	foldToNext        = 0xFFFE
	foldFromPrevToNext = 0xFFFF

	blockMax = 32768

	// how far a PE prefixed cabinet may push the MSCF signature
	mzScanLimit = 128 * 1024
)

type folder struct {
	off    int64
	ndata  int
	method uint16

	// decode state
	used   int
	uoff   int64
	window []byte
	synced bool
}

type file struct {
	size  uint64
	foff  int64
	fidx  int
	mtime libent.TimeSpec
	attr  uint16
	name  []byte
}

type rdr struct {
	s  libios.Stream
	cc *charset.Cache

	base    int64
	folders []folder
	files   []file
	reserve int

	idx   int
	multi bool
	warn1 bool

	cur struct {
		valid  bool
		done   bool
		f      *file
		fld    *folder
		remain int64
		uoff   int64
		unsup  bool
	}

	block struct {
		buf []byte
	}
}

// findSignature locates the MSCF magic, scanning past a PE prefix.
func findSignature(s libios.Stream) int {
	h, _ := s.Peek(8)
	if len(h) >= 8 && string(h[0:4]) == "MSCF" &&
		h[4] == 0 && h[5] == 0 && h[6] == 0 && h[7] == 0 {
		return 0
	}

	if len(h) >= 2 && h[0] == 'M' && h[1] == 'Z' {
		w, _ := s.Peek(mzScanLimit)
		if i := bytes.Index(w, []byte("MSCF\x00\x00\x00\x00")); i > 0 {
			return i
		}
	}

	return -1
}

// Capability returns the cab format registration.
func Capability() libfmt.Capability {
	return libfmt.Capability{
		Algo: libfmt.Cab,
		Bid:  bid,
		Init: newReader,
	}
}

func bid(s libios.Stream, best int) int {
	if best >= 64 {
		return -1
	}

	if findSignature(s) >= 0 {
		return 64
	}

	return -1
}

func newReader(s libios.Stream, cc *charset.Cache, _ map[string]string) (libfmt.Reader, liberr.Error) {
	o := &rdr{s: s, cc: cc, idx: -1}

	if err := o.parseHeader(); err != nil {
		return nil, err
	}

	return o, nil
}

// parseHeader consumes the CFHEADER, the folder table and the file
// table, leaving the stream before the first CFDATA.
func (o *rdr) parseHeader() liberr.Error {
	if skip := findSignature(o.s); skip < 0 {
		return ErrorHeaderInvalid.Error(nil)
	} else if skip > 0 {
		if _, e := o.s.Skip(int64(skip)); e != nil {
			return ErrorTruncated.ErrorParent(e)
		}
	}

	o.base = o.s.Tell()

	var h [hdrSize]byte
	if e := o.s.ReadFull(h[:]); e != nil {
		return ErrorTruncated.ErrorParent(e)
	}

	var (
		coffFiles = int64(binary.LittleEndian.Uint32(h[16:20]))
		nFolders  = int(binary.LittleEndian.Uint16(h[26:28]))
		nFiles    = int(binary.LittleEndian.Uint16(h[28:30]))
		flags     = binary.LittleEndian.Uint16(h[30:32])
		iCabinet  = binary.LittleEndian.Uint16(h[34:36])
	)

	if nFolders < 1 || nFiles < 1 {
		return ErrorHeaderInvalid.Error(nil)
	}

	if flags&(flagPrevCabinet|flagNextCabinet) != 0 || iCabinet != 0 {
		// rejected per-entry later, surfaced once as a warning
		o.multi = true
	}

	var folderReserve int

	if flags&flagReserve != 0 {
		var r [4]byte
		if e := o.s.ReadFull(r[:]); e != nil {
			return ErrorTruncated.ErrorParent(e)
		}

		var (
			cbHeader = int(binary.LittleEndian.Uint16(r[0:2]))
		)

		folderReserve = int(r[2])
		o.reserve = int(r[3])

		if cbHeader > 0 {
			if _, e := o.s.Skip(int64(cbHeader)); e != nil {
				return ErrorTruncated.ErrorParent(e)
			}
		}
	}

	o.folders = make([]folder, nFolders)

	for i := 0; i < nFolders; i++ {
		var f [folderSize]byte
		if e := o.s.ReadFull(f[:]); e != nil {
			return ErrorTruncated.ErrorParent(e)
		}

		o.folders[i] = folder{
			off:    int64(binary.LittleEndian.Uint32(f[0:4])),
			ndata:  int(binary.LittleEndian.Uint16(f[4:6])),
			method: binary.LittleEndian.Uint16(f[6:8]),
		}

		if folderReserve > 0 {
			if _, e := o.s.Skip(int64(folderReserve)); e != nil {
				return ErrorTruncated.ErrorParent(e)
			}
		}
	}

	// the file table sits at coffFiles from the cabinet start
	if gap := o.base + coffFiles - o.s.Tell(); gap > 0 {
		if _, e := o.s.Skip(gap); e != nil {
			return ErrorTruncated.ErrorParent(e)
		}
	} else if gap < 0 {
		return ErrorHeaderInvalid.Error(nil)
	}

	o.files = make([]file, 0, nFiles)

	lastOff := make(map[int]int64, len(o.folders))

	for i := 0; i < nFiles; i++ {
		var f [16]byte
		if e := o.s.ReadFull(f[:]); e != nil {
			return ErrorTruncated.ErrorParent(e)
		}

		ent := file{
			size:  uint64(binary.LittleEndian.Uint32(f[0:4])),
			foff:  int64(binary.LittleEndian.Uint32(f[4:8])),
			fidx:  int(binary.LittleEndian.Uint16(f[8:10])),
			mtime: dosDateTime(binary.LittleEndian.Uint16(f[10:12]), binary.LittleEndian.Uint16(f[12:14])),
			attr:  binary.LittleEndian.Uint16(f[14:16]),
		}

		name, e := o.readName()
		if e != nil {
			return e
		}
		ent.name = name

		// file offsets must not go backward within a folder
		if ent.fidx < len(o.folders) {
			if prev, ok := lastOff[ent.fidx]; ok && ent.foff < prev {
				return ErrorFileInvalid.Error(nil)
			}
			lastOff[ent.fidx] = ent.foff
		}

		o.files = append(o.files, ent)
	}

	return nil
}

func (o *rdr) readName() ([]byte, liberr.Error) {
	var name []byte

	for {
		b, e := o.s.ReadByte()
		if e != nil {
			return nil, ErrorTruncated.ErrorParent(e)
		}

		if b == 0 {
			return name, nil
		}

		name = append(name, b)

		if len(name) > 4096 {
			return nil, ErrorFileInvalid.Error(nil)
		}
	}
}

// Next surfaces the file table in order. Entries referencing a
// continuation folder are rejected cleanly on single volume input.
func (o *rdr) Next(e *libent.Entry) (arcsts.Status, liberr.Error) {
	if o.multi && !o.warn1 {
		o.warn1 = true
		liblog.WarnLevel.Log("multi-volume cabinet: continuation entries will be rejected")
		return arcsts.Warn, ErrorMultiVolume.Error(nil)
	}

	o.cur.valid = false

	o.idx++
	if o.idx >= len(o.files) {
		return arcsts.Eof, nil
	}

	f := &o.files[o.idx]

	e.Reset()

	name := f.name
	if f.attr&attrNameIsUtf != 0 {
		e.SetPathnameBytes(slashed(name), charset.Utf8)
	} else {
		e.SetPathnameBytes(slashed(name), charset.CurrentLocaleCharset())
	}

	e.SetFileType(libent.TypeRegular)
	e.SetMode(0o644)
	e.SetSize(f.size)
	e.SetMTime(f.mtime)

	switch f.fidx {
	case foldFromPrev, foldToNext, foldFromPrevToNext:
		return arcsts.Failed, ErrorMultiVolume.Error(nil)
	}

	if f.fidx >= len(o.folders) {
		return arcsts.Failed, ErrorFolderInvalid.Error(nil)
	}

	fld := &o.folders[f.fidx]

	o.cur.valid = true
	o.cur.done = f.size == 0
	o.cur.f = f
	o.cur.fld = fld
	o.cur.remain = int64(f.size)
	o.cur.uoff = 0

	switch fld.method & 0x0F {
	case compNone, compMSZip:
		o.cur.unsup = false
	default:
		o.cur.unsup = true
		return arcsts.Warn, ErrorMethodUnsupported.Error(nil)
	}

	return arcsts.Ok, nil
}

func slashed(name []byte) []byte {
	return []byte(strings.ReplaceAll(string(name), "\\", "/"))
}

// ReadBlock delivers payload slices for the current file, driving the
// folder decode state as needed. CFDATA blocks are always decompressed
// in order: later outputs depend on earlier dictionary state.
func (o *rdr) ReadBlock() ([]byte, int64, arcsts.Status, liberr.Error) {
	if !o.cur.valid {
		return nil, 0, arcsts.Failed, ErrorFileInvalid.Error(nil)
	}

	if o.cur.done || o.cur.remain <= 0 {
		o.cur.done = true
		return nil, o.cur.uoff, arcsts.Eof, nil
	}

	if o.cur.unsup {
		return nil, 0, arcsts.Failed, ErrorMethodUnsupported.Error(nil)
	}

	var (
		fld  = o.cur.fld
		want = o.cur.f.foff + o.cur.uoff
		warn liberr.Error
	)

	// walk the folder forward until its position covers the wanted byte
	for fld.uoff <= want {
		if fld.used >= fld.ndata {
			o.cur.done = true
			return nil, o.cur.uoff, arcsts.Fatal, ErrorTruncated.Error(nil)
		}

		w, err := o.nextData(fld)
		if err != nil {
			if liberr.IsCode(err, ErrorChecksum) {
				warn = err
			} else {
				o.cur.done = true
				return nil, o.cur.uoff, arcsts.Fatal, err
			}
		}

		o.block.buf = w
		fld.uoff += int64(len(w))
	}

	// serve from the decoded block
	var (
		blockStart = fld.uoff - int64(len(o.block.buf))
		from       = want - blockStart
	)

	if from < 0 || from >= int64(len(o.block.buf)) {
		o.cur.done = true
		return nil, o.cur.uoff, arcsts.Fatal, ErrorDataInvalid.Error(nil)
	}

	n := int64(len(o.block.buf)) - from
	if n > o.cur.remain {
		n = o.cur.remain
	}

	p := o.block.buf[from : from+n]

	off := o.cur.uoff
	o.cur.uoff += n
	o.cur.remain -= n

	if o.cur.remain == 0 {
		o.cur.done = true
	}

	if warn != nil {
		return p, off, arcsts.Warn, warn
	}

	return p, off, arcsts.Ok, nil
}

// nextData reads and decodes one CFDATA of the folder, syncing the
// stream to the folder's first block when entering it.
func (o *rdr) nextData(fld *folder) ([]byte, liberr.Error) {
	if !fld.synced {
		if gap := o.base + fld.off - o.s.Tell(); gap > 0 {
			if _, e := o.s.Skip(gap); e != nil {
				return nil, ErrorTruncated.ErrorParent(e)
			}
		} else if gap < 0 {
			return nil, ErrorFolderInvalid.Error(nil)
		}

		fld.synced = true
	}

	var h [dataHdr]byte
	if e := o.s.ReadFull(h[:]); e != nil {
		return nil, ErrorTruncated.ErrorParent(e)
	}

	var (
		csum    = binary.LittleEndian.Uint32(h[0:4])
		cbData  = int(binary.LittleEndian.Uint16(h[4:6]))
		cbUncmp = int(binary.LittleEndian.Uint16(h[6:8]))
	)

	if cbUncmp > blockMax {
		return nil, ErrorDataInvalid.Error(nil)
	}

	// every CFDATA but the folder's last must decode to a full window
	if fld.used+1 < fld.ndata && cbUncmp != blockMax {
		return nil, ErrorDataInvalid.Error(nil)
	}

	// reserve bytes are skipped and, unlike the reference reader, not
	// folded into the checksum; cbCFData is almost never nonzero
	if o.reserve > 0 {
		if _, e := o.s.Skip(int64(o.reserve)); e != nil {
			return nil, ErrorTruncated.ErrorParent(e)
		}
	}

	raw := make([]byte, cbData)
	if e := o.s.ReadFull(raw); e != nil {
		return nil, ErrorTruncated.ErrorParent(e)
	}

	fld.used++

	var sumErr liberr.Error

	if csum != 0 {
		sum := checksum(raw, 0)
		sum = sum ^ (uint32(h[4]) | uint32(h[5])<<8 | uint32(h[6])<<16 | uint32(h[7])<<24)

		if sum != csum {
			liblog.WarnLevel.Logf("cab cfdata checksum mismatch: computed %08x, stored %08x", sum, csum)
			sumErr = ErrorChecksum.Error(nil)
		}
	}

	var out []byte

	switch fld.method & 0x0F {
	case compNone:
		if cbData != cbUncmp {
			return nil, ErrorDataInvalid.Error(nil)
		}
		out = raw

	case compMSZip:
		if len(raw) < 2 || raw[0] != 0x43 || raw[1] != 0x4B {
			return nil, ErrorDataInvalid.Error(nil)
		}

		var fr io.ReadCloser
		if fld.window == nil {
			fr = flate.NewReader(bytes.NewReader(raw[2:]))
		} else {
			fr = flate.NewReaderDict(bytes.NewReader(raw[2:]), fld.window)
		}

		out = make([]byte, cbUncmp)
		if _, e := io.ReadFull(fr, out); e != nil {
			return nil, ErrorDataInvalid.ErrorParent(e)
		}
		_ = fr.Close()

		// this block's output is the next block's dictionary
		fld.window = out

	default:
		return nil, ErrorMethodUnsupported.Error(nil)
	}

	return out, sumErr
}

// checksum XORs little endian words, folding a 1..3 byte tail in big
// endian order.
func checksum(p []byte, seed uint32) uint32 {
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

// SkipData advances past the current file, decoding only what later
// files of the same folder will depend on.
func (o *rdr) SkipData() (arcsts.Status, liberr.Error) {
	if !o.cur.valid || o.cur.done {
		return arcsts.Ok, nil
	}

	if o.cur.unsup {
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

func dosDateTime(d, t uint16) libent.TimeSpec {
	return dosStamp(uint32(d)<<16 | uint32(t))
}
