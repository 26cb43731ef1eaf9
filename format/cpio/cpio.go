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

// Package cpio adapts the newc cpio codec onto the engine's
// registered format contract.
package cpio

import (
	"fmt"
	"io"
	"os"

	cpio "github.com/cavaliercoder/go-cpio"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	"github.com/nabbar/arcengine/charset"
	libent "github.com/nabbar/arcengine/entry"
	liberr "github.com/nabbar/arcengine/errors"
	libfmt "github.com/nabbar/arcengine/format"
	libios "github.com/nabbar/arcengine/iostream"
)

const blockSize = 32 * 1024

// Capability returns the cpio format registration.
func Capability() libfmt.Capability {
	return libfmt.Capability{
		Algo:   libfmt.Cpio,
		Bid:    bid,
		Init:   newReader,
		Writer: newWriter,
	}
}

func bid(s libios.Stream, best int) int {
	if best >= 64 {
		return -1
	}

	h, _ := s.Peek(6)
	if len(h) < 6 {
		return -1
	}

	// newc and crc magic
	if string(h[:6]) == "070701" || string(h[:6]) == "070702" {
		return 64
	}

	return -1
}

type rdr struct {
	z   *cpio.Reader
	off int64
	eof bool
	out [blockSize]byte
}

func newReader(s libios.Stream, _ *charset.Cache, _ map[string]string) (libfmt.Reader, liberr.Error) {
	return &rdr{z: cpio.NewReader(s)}, nil
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
	e.SetFileType(libent.FromFsMode(h.FileInfo().Mode()))
	e.SetMode(uint16(h.Mode) & 0o7777)
	e.SetUid(int64(h.UID))
	e.SetGid(int64(h.GID))
	e.SetMTime(libent.NewTime(h.ModTime))

	if h.Mode&cpio.ModeSymlink != 0 {
		// the link target travels as the entry payload
		t := make([]byte, h.Size)
		if _, err = io.ReadFull(o.z, t); err != nil {
			return arcsts.Fatal, libfmt.ErrorCorrupted.ErrorParent(err)
		}
		e.SetSymlink(string(t))
	}

	if e.FileType() == libent.TypeRegular {
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
	if os.Getenv("DBG") != "" { fmt.Fprintf(os.Stderr, "DEBUG ReadBlock n=%d err=%v eof=%v\n", n, e, e == io.EOF) }

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
	z *cpio.Writer
}

func newWriter(w io.Writer, _ map[string]string) (libfmt.Writer, liberr.Error) {
	return &wrt{z: cpio.NewWriter(w)}, nil
}

func (o *wrt) WriteHeader(e *libent.Entry) (arcsts.Status, liberr.Error) {
	h := &cpio.Header{
		Name:    e.Pathname(),
		Mode:    cpioMode(e),
		UID:     int(e.Uid()),
		GID:     int(e.Gid()),
		ModTime: e.MTime().Time(),
	}

	if e.FileType() == libent.TypeRegular {
		h.Size = int64(e.Size())
	}

	var target []byte

	if e.FileType() == libent.TypeSymlink {
		// the link target travels as the entry payload
		target = []byte(e.Symlink())
		h.Size = int64(len(target))
	}

	if err := o.z.WriteHeader(h); err != nil {
		return arcsts.Fatal, libfmt.ErrorWrite.ErrorParent(err)
	}

	if len(target) > 0 {
		if _, err := o.z.Write(target); err != nil {
			return arcsts.Fatal, libfmt.ErrorWrite.ErrorParent(err)
		}
	}

	return arcsts.Ok, nil
}

func (o *wrt) Write(p []byte) (int, error) {
	return o.z.Write(p)
}

func (o *wrt) Close() (arcsts.Status, liberr.Error) {
	if e := o.z.Close(); e != nil {
		return arcsts.Fatal, libfmt.ErrorWrite.ErrorParent(e)
	}

	return arcsts.Ok, nil
}

func cpioMode(e *libent.Entry) cpio.FileMode {
	m := cpio.FileMode(e.Mode())

	switch e.FileType() {
	case libent.TypeDirectory:
		m |= cpio.ModeDir
	case libent.TypeSymlink:
		m |= cpio.ModeSymlink
	case libent.TypeCharDev:
		m |= cpio.ModeDevice | cpio.ModeCharDevice
	case libent.TypeBlockDev:
		m |= cpio.ModeDevice
	case libent.TypeFifo:
		m |= cpio.ModeNamedPipe
	case libent.TypeSocket:
		m |= cpio.ModeSocket
	}

	return m
}
