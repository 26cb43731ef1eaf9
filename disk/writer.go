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

package disk

import (
	"os"
	gopath "path"
	"path/filepath"
	"strings"
	"time"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	libent "github.com/nabbar/arcengine/entry"
	liberr "github.com/nabbar/arcengine/errors"
)

// Writer is the restore-to-disk sink: entries written to it become
// filesystem objects under the destination root.
type Writer interface {
	// WriteHeader creates the object for the entry. For regular files
	// the payload follows through Write.
	WriteHeader(e *libent.Entry) (arcsts.Status, liberr.Error)

	// Write appends payload bytes to the created regular file.
	Write(p []byte) (int, error)

	// Close completes the last entry and applies deferred directory
	// times.
	Close() (arcsts.Status, liberr.Error)
}

// WriterOptions tunes the sink behaviors.
type WriterOptions struct {
	// DefaultDirPerm is used for intermediate directories.
	DefaultDirPerm os.FileMode
	// RestoreTimes applies entry mtimes to created objects.
	RestoreTimes bool
	// RestoreOwner applies uid/gid when running privileged.
	RestoreOwner bool
}

type deferredDir struct {
	path string
	e    dirMeta
}

type dirMeta struct {
	mtime int64
	nsec  int64
	set   bool
}

type writer struct {
	root string
	opt  WriterOptions

	f       *os.File
	cur     string
	pending dirMeta

	dirs []deferredDir
}

func timeOf(m dirMeta) time.Time {
	return time.Unix(m.mtime, m.nsec)
}

// NewWriter opens a disk sink under the destination root.
func NewWriter(root string, opt WriterOptions) (Writer, liberr.Error) {
	if root == "" {
		return nil, ErrorParamEmpty.Error(nil)
	}

	if opt.DefaultDirPerm == 0 {
		opt.DefaultDirPerm = 0o755
	}

	if i, e := os.Stat(root); e != nil && os.IsNotExist(e) {
		// #nosec
		if e = os.MkdirAll(root, opt.DefaultDirPerm); e != nil {
			return nil, ErrorCreate.ErrorParent(e)
		}
	} else if e != nil {
		return nil, ErrorRootStat.ErrorParent(e)
	} else if !i.IsDir() {
		return nil, ErrorNotDirectory.Error(nil)
	}

	return &writer{root: root, opt: opt}, nil
}

// securePath keeps the restored object inside the destination root.
func (o *writer) securePath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = gopath.Clean("/" + name)

	return filepath.Join(o.root, filepath.FromSlash(name))
}

func (o *writer) WriteHeader(e *libent.Entry) (arcsts.Status, liberr.Error) {
	if sts, err := o.finish(); sts != arcsts.Ok {
		return sts, err
	}

	var (
		dst  = o.securePath(e.Pathname())
		perm = os.FileMode(e.Mode())
	)

	// #nosec
	if err := os.MkdirAll(filepath.Dir(dst), o.opt.DefaultDirPerm); err != nil {
		return arcsts.Failed, ErrorCreate.ErrorParent(err)
	}

	switch e.FileType() {
	case libent.TypeDirectory:
		// #nosec
		if err := os.MkdirAll(dst, perm|0o700); err != nil {
			return arcsts.Failed, ErrorCreate.ErrorParent(err)
		}

		if o.opt.RestoreTimes && e.MTime().IsSet() {
			// applied last so content writes do not disturb it
			o.dirs = append(o.dirs, deferredDir{
				path: dst,
				e: dirMeta{
					mtime: e.MTime().Unix(),
					nsec:  e.MTime().Nanos(),
					set:   true,
				},
			})
		}

	case libent.TypeSymlink:
		_ = os.Remove(dst)

		if err := os.Symlink(e.Symlink(), dst); err != nil {
			return arcsts.Failed, ErrorCreate.ErrorParent(err)
		}

	case libent.TypeRegular:
		if e.IsHardlink() {
			_ = os.Remove(dst)

			if err := os.Link(o.securePath(e.Hardlink()), dst); err != nil {
				return arcsts.Failed, ErrorCreate.ErrorParent(err)
			}

			return arcsts.Ok, nil
		}

		// #nosec
		f, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
		if err != nil {
			return arcsts.Failed, ErrorCreate.ErrorParent(err)
		}

		o.f = f
		o.cur = dst

	default:
		// devices, fifos and sockets need privileged syscalls and are
		// restored as nothing rather than wrong objects
		return arcsts.Failed, ErrorCreate.Error(nil)
	}

	o.applyMeta(dst, e)

	return arcsts.Ok, nil
}

func (o *writer) applyMeta(dst string, e *libent.Entry) {
	if o.opt.RestoreOwner {
		_ = os.Lchown(dst, int(e.Uid()), int(e.Gid()))
	}

	if o.opt.RestoreTimes && e.MTime().IsSet() && e.FileType() != libent.TypeDirectory &&
		e.FileType() != libent.TypeRegular {
		if e.FileType() != libent.TypeSymlink {
			_ = os.Chtimes(dst, e.ATime().Time(), e.MTime().Time())
		}
	}

	// regular file times are applied when the payload completes
	if o.opt.RestoreTimes && o.f != nil && e.MTime().IsSet() {
		o.pending = dirMeta{
			mtime: e.MTime().Unix(),
			nsec:  e.MTime().Nanos(),
			set:   true,
		}
	} else {
		o.pending = dirMeta{}
	}
}

func (o *writer) Write(p []byte) (int, error) {
	if o.f == nil {
		return 0, ErrorWrite.Error(nil)
	}

	return o.f.Write(p)
}

func (o *writer) finish() (arcsts.Status, liberr.Error) {
	if o.f == nil {
		return arcsts.Ok, nil
	}

	if e := o.f.Close(); e != nil {
		o.f = nil
		return arcsts.Failed, ErrorWrite.ErrorParent(e)
	}

	o.f = nil

	if o.pending.set {
		t := timeOf(o.pending)
		_ = os.Chtimes(o.cur, t, t)
		o.pending = dirMeta{}
	}

	return arcsts.Ok, nil
}

func (o *writer) Close() (arcsts.Status, liberr.Error) {
	if sts, err := o.finish(); sts != arcsts.Ok {
		return sts, err
	}

	// in reverse order of creation, so a directory listed after its
	// parent gets its time applied before the parent's
	for i := len(o.dirs) - 1; i >= 0; i-- {
		d := o.dirs[i]
		t := timeOf(d.e)
		_ = os.Chtimes(d.path, t, t)
	}

	o.dirs = nil

	return arcsts.Ok, nil
}
