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
	libent "github.com/nabbar/arcengine/entry"
	liberr "github.com/nabbar/arcengine/errors"
	libfmt "github.com/nabbar/arcengine/format"
)

const (
	versionNeeded      = 20     // 2.0
	versionNeededZip64 = 45     // 4.5
	versionMadeBy      = 0x0314 // unix, 2.0

	optCompression = "compression"
	optZip64       = "zip64"

	max32 = 0xFFFFFFFF

	sigZip64EOCD    = 0x06064b50
	sigZip64Locator = 0x07064b50
)

type wrtEntry struct {
	off   int64
	name  []byte
	mode  uint16
	ftype libent.FileType
	dostm uint32
	crc   uint32
	csize uint64
	usize uint64
	meth  uint16
	flags uint16
	z64   bool
}

type wrt struct {
	w   io.Writer
	off int64

	deflate bool
	zip64   bool
	list    []wrtEntry

	cur struct {
		open  bool
		meth  uint16
		fw    *flate.Writer
		sum   uint32
		csize uint64
		usize uint64
		cw    countWriter
	}
}

type countWriter struct {
	w io.Writer
	n *uint64
}

func (c countWriter) Write(p []byte) (int, error) {
	n, e := c.w.Write(p)
	*c.n += uint64(n)
	return n, e
}

func newWriterCap(w io.Writer, opt map[string]string) (libfmt.Writer, liberr.Error) {
	o := &wrt{w: w, deflate: true}

	if v, k := opt[optCompression]; k {
		switch strings.ToLower(v) {
		case "store", "stored", "none":
			o.deflate = false
		case "deflate":
			o.deflate = true
		}
	}

	if v, k := opt[optZip64]; k {
		switch strings.ToLower(v) {
		case "false", "no", "0", "off":
			o.zip64 = false
		default:
			// a bare "zip64" flag enables it
			o.zip64 = true
		}
	}

	return o, nil
}

// NewWriter returns a zip format writer over the destination.
func NewWriter(w io.Writer, opt map[string]string) (libfmt.Writer, liberr.Error) {
	return newWriterCap(w, opt)
}

func (o *wrt) emit(p []byte) liberr.Error {
	n, e := o.w.Write(p)
	o.off += int64(n)

	if e != nil {
		return ErrorWrite.ErrorParent(e)
	} else if n < len(p) {
		return ErrorWrite.Error(nil)
	}

	return nil
}

func (o *wrt) version() uint16 {
	if o.zip64 {
		return versionNeededZip64
	}

	return versionNeeded
}

// WriteHeader completes any open entry, then emits the local header of
// the next one. Every entry carries the data descriptor flag plus the
// extended timestamp and unix id extras; stored entries still declare
// their sizes up front so naive scanners can find the next header. In
// zip64 mode stored entries hold 0xFFFFFFFF sentinels in the 32 bit
// size fields with the real values in a 0x0001 extra block; deflate
// entries carry a zeroed 0x0001 block and their sizes travel in the
// trailing descriptor.
func (o *wrt) WriteHeader(e *libent.Entry) (arcsts.Status, liberr.Error) {
	if o.cur.open {
		if sts, err := o.finishEntry(); sts != arcsts.Ok {
			return sts, err
		}
	}

	var (
		name  = []byte(e.Pathname())
		isDir = e.FileType() == libent.TypeDirectory
		meth  = uint16(methodStore)
		size  = e.Size()
	)

	if isDir {
		size = 0
		if !strings.HasSuffix(string(name), "/") {
			name = append(name, '/')
		}
	} else if e.FileType() == libent.TypeRegular && o.deflate {
		meth = methodDeflate
	}

	if !o.zip64 && size > max32 {
		return arcsts.Fatal, ErrorSizeOverflow.Error(nil)
	}

	var (
		mtime = e.MTime()
		rec   = wrtEntry{
			off:   o.off,
			name:  name,
			mode:  e.FullMode(),
			ftype: e.FileType(),
			dostm: toDosTime(mtime),
			meth:  meth,
			flags: flagLengthAtEnd,
			z64:   o.zip64,
		}
	)

	x1 := buildExtraTimestamp(mtime, e.ATime(), e.CTime())
	x2 := buildExtraUnixType3(e.Uid(), e.Gid())

	var (
		x3        []byte
		declCSize uint32
		declUSize uint32
	)

	if meth == methodStore {
		// sizes are known in advance for stored payload
		declCSize = uint32(size)
		declUSize = uint32(size)
	}

	if rec.z64 {
		if meth == methodStore {
			declCSize = max32
			declUSize = max32
			x3 = buildExtraZip64Local(size, size)
		} else {
			// length-at-end: the zeroed block still tells readers the
			// trailing descriptor carries 64 bit sizes
			x3 = buildExtraZip64Local(0, 0)
		}
	}

	xl := len(x1) + len(x2) + len(x3)

	h := make([]byte, 0, 30+len(name)+xl)
	h = binary.LittleEndian.AppendUint32(h, sigLocal)
	h = binary.LittleEndian.AppendUint16(h, o.version())
	h = binary.LittleEndian.AppendUint16(h, rec.flags)
	h = binary.LittleEndian.AppendUint16(h, meth)
	h = binary.LittleEndian.AppendUint32(h, rec.dostm)
	h = binary.LittleEndian.AppendUint32(h, 0) // crc via descriptor
	h = binary.LittleEndian.AppendUint32(h, declCSize)
	h = binary.LittleEndian.AppendUint32(h, declUSize)
	h = binary.LittleEndian.AppendUint16(h, uint16(len(name)))
	h = binary.LittleEndian.AppendUint16(h, uint16(xl))
	h = append(h, name...)
	h = append(h, x1...)
	h = append(h, x2...)
	h = append(h, x3...)

	if err := o.emit(h); err != nil {
		return arcsts.Fatal, err
	}

	o.list = append(o.list, rec)

	o.cur.open = true
	o.cur.meth = meth
	o.cur.sum = 0
	o.cur.csize = 0
	o.cur.usize = 0
	o.cur.fw = nil
	o.cur.cw = countWriter{w: o.w, n: &o.cur.csize}

	if meth == methodDeflate {
		fw, e := flate.NewWriter(o.cur.cw, flate.DefaultCompression)
		if e != nil {
			return arcsts.Fatal, ErrorWrite.ErrorParent(e)
		}
		o.cur.fw = fw
	}

	if isDir {
		// no payload follows for directories
		return arcsts.Ok, nil
	}

	return arcsts.Ok, nil
}

func (o *wrt) Write(p []byte) (int, error) {
	if !o.cur.open {
		return 0, ErrorWrite.Error(nil)
	}

	o.cur.sum = crc32.Update(o.cur.sum, crc32.IEEETable, p)
	o.cur.usize += uint64(len(p))

	if o.cur.fw != nil {
		return o.cur.fw.Write(p)
	}

	n, e := o.cur.cw.Write(p)
	return n, e
}

// finishEntry flushes the payload and emits the data descriptor (16
// bytes, or 24 with 64 bit sizes in zip64 mode), then patches the
// record kept for the central directory. Without zip64 an oversized
// payload fails instead of silently truncating.
func (o *wrt) finishEntry() (arcsts.Status, liberr.Error) {
	if !o.cur.open {
		return arcsts.Ok, nil
	}

	if o.cur.fw != nil {
		if e := o.cur.fw.Close(); e != nil {
			return arcsts.Fatal, ErrorWrite.ErrorParent(e)
		}
	}

	o.off += int64(o.cur.csize)

	rec := &o.list[len(o.list)-1]
	rec.crc = o.cur.sum
	rec.csize = o.cur.csize
	rec.usize = o.cur.usize

	if !rec.z64 && (rec.csize > max32 || rec.usize > max32) {
		o.cur.open = false
		return arcsts.Fatal, ErrorSizeOverflow.Error(nil)
	}

	d := make([]byte, 0, 24)
	d = binary.LittleEndian.AppendUint32(d, sigDescriptor)
	d = binary.LittleEndian.AppendUint32(d, rec.crc)

	if rec.z64 {
		d = binary.LittleEndian.AppendUint64(d, rec.csize)
		d = binary.LittleEndian.AppendUint64(d, rec.usize)
	} else {
		d = binary.LittleEndian.AppendUint32(d, uint32(rec.csize))
		d = binary.LittleEndian.AppendUint32(d, uint32(rec.usize))
	}

	if err := o.emit(d); err != nil {
		return arcsts.Fatal, err
	}

	o.cur.open = false

	return arcsts.Ok, nil
}

// Close finishes the last entry, walks the entry list in insertion
// order emitting the central directory, and terminates with the end of
// central directory record, preceded by its zip64 variant and locator
// when zip64 is on.
func (o *wrt) Close() (arcsts.Status, liberr.Error) {
	if sts, err := o.finishEntry(); sts != arcsts.Ok {
		return sts, err
	}

	cdOff := o.off

	for i := range o.list {
		r := &o.list[i]

		if !r.z64 && r.off > max32 {
			return arcsts.Fatal, ErrorSizeOverflow.Error(nil)
		}

		var (
			x3    []byte
			csize = uint32(r.csize)
			usize = uint32(r.usize)
			off   = uint32(r.off)
		)

		if r.z64 {
			csize = max32
			usize = max32
			off = max32
			x3 = buildExtraZip64CD(r.usize, r.csize, r.off)
		}

		h := make([]byte, 0, cdHdrSize+len(r.name)+len(x3))
		h = binary.LittleEndian.AppendUint32(h, sigCentralDir)
		h = binary.LittleEndian.AppendUint16(h, versionMadeBy)
		h = binary.LittleEndian.AppendUint16(h, o.version())
		h = binary.LittleEndian.AppendUint16(h, r.flags)
		h = binary.LittleEndian.AppendUint16(h, r.meth)
		h = binary.LittleEndian.AppendUint32(h, r.dostm)
		h = binary.LittleEndian.AppendUint32(h, r.crc)
		h = binary.LittleEndian.AppendUint32(h, csize)
		h = binary.LittleEndian.AppendUint32(h, usize)
		h = binary.LittleEndian.AppendUint16(h, uint16(len(r.name)))
		h = binary.LittleEndian.AppendUint16(h, uint16(len(x3)))
		h = binary.LittleEndian.AppendUint16(h, 0) // comment
		h = binary.LittleEndian.AppendUint16(h, 0) // disk number
		h = binary.LittleEndian.AppendUint16(h, 0) // internal attrs
		h = binary.LittleEndian.AppendUint32(h, uint32(r.mode)<<16)
		h = binary.LittleEndian.AppendUint32(h, off)
		h = append(h, r.name...)
		h = append(h, x3...)

		if err := o.emit(h); err != nil {
			return arcsts.Fatal, err
		}
	}

	cdSize := o.off - cdOff

	if !o.zip64 && (cdSize > max32 || cdOff > max32) {
		return arcsts.Fatal, ErrorSizeOverflow.Error(nil)
	}

	if o.zip64 {
		if err := o.emitZip64End(cdOff, cdSize); err != nil {
			return arcsts.Fatal, err
		}
	}

	var (
		declSize  = uint32(cdSize)
		declOff   = uint32(cdOff)
		declCount = uint16(len(o.list))
	)

	if o.zip64 {
		declSize = max32
		declOff = max32
	}
	if len(o.list) > 0xFFFF {
		declCount = 0xFFFF
	}

	t := make([]byte, 0, eocdSize)
	t = binary.LittleEndian.AppendUint32(t, sigEndOfCD)
	t = binary.LittleEndian.AppendUint16(t, 0) // this disk
	t = binary.LittleEndian.AppendUint16(t, 0) // cd disk
	t = binary.LittleEndian.AppendUint16(t, declCount)
	t = binary.LittleEndian.AppendUint16(t, declCount)
	t = binary.LittleEndian.AppendUint32(t, declSize)
	t = binary.LittleEndian.AppendUint32(t, declOff)
	t = binary.LittleEndian.AppendUint16(t, 0) // comment length

	if err := o.emit(t); err != nil {
		return arcsts.Fatal, err
	}

	return arcsts.Ok, nil
}

// emitZip64End writes the zip64 end of central directory record and
// its locator, right before the classic end record.
func (o *wrt) emitZip64End(cdOff, cdSize int64) liberr.Error {
	z64Off := o.off

	z := make([]byte, 0, 56)
	z = binary.LittleEndian.AppendUint32(z, sigZip64EOCD)
	z = binary.LittleEndian.AppendUint64(z, 44) // record size past this field
	z = binary.LittleEndian.AppendUint16(z, versionMadeBy)
	z = binary.LittleEndian.AppendUint16(z, versionNeededZip64)
	z = binary.LittleEndian.AppendUint32(z, 0) // this disk
	z = binary.LittleEndian.AppendUint32(z, 0) // cd disk
	z = binary.LittleEndian.AppendUint64(z, uint64(len(o.list)))
	z = binary.LittleEndian.AppendUint64(z, uint64(len(o.list)))
	z = binary.LittleEndian.AppendUint64(z, uint64(cdSize))
	z = binary.LittleEndian.AppendUint64(z, uint64(cdOff))

	if err := o.emit(z); err != nil {
		return err
	}

	l := make([]byte, 0, 20)
	l = binary.LittleEndian.AppendUint32(l, sigZip64Locator)
	l = binary.LittleEndian.AppendUint32(l, 0) // zip64 eocd disk
	l = binary.LittleEndian.AppendUint64(l, uint64(z64Off))
	l = binary.LittleEndian.AppendUint32(l, 1) // total disks

	return o.emit(l)
}
