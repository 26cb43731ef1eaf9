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

// Package tar adapts the ustar/pax codec onto the engine's registered
// format contract.
package tar

import (
	"archive/tar"
	"io"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	"github.com/nabbar/arcengine/charset"
	libent "github.com/nabbar/arcengine/entry"
	liberr "github.com/nabbar/arcengine/errors"
	libfmt "github.com/nabbar/arcengine/format"
	libios "github.com/nabbar/arcengine/iostream"
)

const blockSize = 32 * 1024

// Capability returns the tar format registration.
func Capability() libfmt.Capability {
	return libfmt.Capability{
		Algo:   libfmt.Tar,
		Bid:    bid,
		Init:   newReader,
		Writer: newWriter,
	}
}

func bid(s libios.Stream, best int) int {
	if best >= 64 {
		return -1
	}

	h, _ := s.Peek(265)
	if len(h) < 263 {
		return -1
	}

	if string(h[257:262]) == "ustar" && (h[262] == 0 || h[262] == ' ') {
		return 64
	}

	return -1
}

type rdr struct {
	z   *tar.Reader
	off int64
	eof bool
	out [blockSize]byte
}

func newReader(s libios.Stream, _ *charset.Cache, _ map[string]string) (libfmt.Reader, liberr.Error) {
	return &rdr{z: tar.NewReader(s)}, nil
}

func (o *rdr) Next(e *libent.Entry) (arcsts.Status, liberr.Error) {
	h, err := o.z.Next()

	if err == io.EOF {
		return arcsts.Eof, nil
	} else if err != nil {
		return arcsts.Fatal, libfmt.ErrorCorrupted.ErrorParent(err)
	}

	e.Reset()
	e.SetPathname(h.Name)
	e.SetMode(uint16(h.Mode) & 0o7777)
	e.SetUid(int64(h.Uid))
	e.SetGid(int64(h.Gid))
	e.SetUname(h.Uname)
	e.SetGname(h.Gname)
	e.SetMTime(libent.NewTime(h.ModTime))

	if !h.AccessTime.IsZero() {
		e.SetATime(libent.NewTime(h.AccessTime))
	}
	if !h.ChangeTime.IsZero() {
		e.SetCTime(libent.NewTime(h.ChangeTime))
	}

	switch h.Typeflag {
	case tar.TypeDir:
		e.SetFileType(libent.TypeDirectory)
	case tar.TypeSymlink:
		e.SetFileType(libent.TypeSymlink)
		e.SetSymlink(h.Linkname)
	case tar.TypeLink:
		e.SetFileType(libent.TypeRegular)
		e.SetHardlink(h.Linkname)
	case tar.TypeChar:
		e.SetFileType(libent.TypeCharDev)
		e.SetRdev(uint64(h.Devmajor)<<8 | uint64(h.Devminor))
	case tar.TypeBlock:
		e.SetFileType(libent.TypeBlockDev)
		e.SetRdev(uint64(h.Devmajor)<<8 | uint64(h.Devminor))
	case tar.TypeFifo:
		e.SetFileType(libent.TypeFifo)
	default:
		e.SetFileType(libent.TypeRegular)
		e.SetSize(uint64(h.Size))
	}

	o.off = 0
	o.eof = false

	return arcsts.Ok, nil
}

func (o *rdr) ReadBlock() ([]byte, int64, arcsts.Status, liberr.Error) {
	if o.eof {
		return nil, o.off, arcsts.Eof, nil
	}

	n, e := o.z.Read(o.out[:])

	if n > 0 {
		off := o.off
		o.off += int64(n)
		return o.out[:n], off, arcsts.Ok, nil
	}

	if e == io.EOF || e == nil {
		o.eof = true
		return nil, o.off, arcsts.Eof, nil
	}

	return nil, o.off, arcsts.Fatal, libfmt.ErrorCorrupted.ErrorParent(e)
}

func (o *rdr) SkipData() (arcsts.Status, liberr.Error) {
	if _, e := io.Copy(io.Discard, o.z); e != nil {
		return arcsts.Fatal, libfmt.ErrorCorrupted.ErrorParent(e)
	}

	o.eof = true

	return arcsts.Ok, nil
}

func (o *rdr) Close() error {
	return nil
}

type wrt struct {
	z *tar.Writer
}

func newWriter(w io.Writer, _ map[string]string) (libfmt.Writer, liberr.Error) {
	return &wrt{z: tar.NewWriter(w)}, nil
}

func (o *wrt) WriteHeader(e *libent.Entry) (arcsts.Status, liberr.Error) {
	h := &tar.Header{
		Name:    e.Pathname(),
		Mode:    int64(e.Mode()),
		Uid:     int(e.Uid()),
		Gid:     int(e.Gid()),
		Uname:   e.Uname(),
		Gname:   e.Gname(),
		ModTime: e.MTime().Time(),
	}

	switch e.FileType() {
	case libent.TypeDirectory:
		h.Typeflag = tar.TypeDir
	case libent.TypeSymlink:
		h.Typeflag = tar.TypeSymlink
		h.Linkname = e.Symlink()
	case libent.TypeCharDev:
		h.Typeflag = tar.TypeChar
	case libent.TypeBlockDev:
		h.Typeflag = tar.TypeBlock
	case libent.TypeFifo:
		h.Typeflag = tar.TypeFifo
	default:
		if e.IsHardlink() {
			h.Typeflag = tar.TypeLink
			h.Linkname = e.Hardlink()
		} else {
			h.Typeflag = tar.TypeReg
			h.Size = int64(e.Size())
		}
	}

	if err := o.z.WriteHeader(h); err != nil {
		return arcsts.Fatal, libfmt.ErrorWrite.ErrorParent(err)
	}

	return arcsts.Ok, nil
}

func (o *wrt) Write(p []byte) (int, error) {
	return o.z.Write(p)
}

func (o *wrt) Close() (arcsts.Status, liberr.Error) {
	if e := o.z.Flush(); e != nil {
		return arcsts.Fatal, libfmt.ErrorWrite.ErrorParent(e)
	} else if e = o.z.Close(); e != nil {
		return arcsts.Fatal, libfmt.ErrorWrite.ErrorParent(e)
	}

	return arcsts.Ok, nil
}
