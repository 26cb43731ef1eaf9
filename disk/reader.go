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

// Package disk implements the read-from-disk source and the
// restore-to-disk sink. The source walks a directory hierarchy with
// three visit ordering, opt-in descent, symlink modes, filesystem
// boundary detection and optional access time restoration.
package disk

import (
	"io"
	"io/fs"
	"os"
	"time"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	libent "github.com/nabbar/arcengine/entry"
	liberr "github.com/nabbar/arcengine/errors"
	libmtc "github.com/nabbar/arcengine/matcher"
)

const blockSize = 64 * 1024

// SymlinkMode selects how the traversal treats symbolic links.
type SymlinkMode uint8

const (
	// SymlinkPhysical never follows; links are reported as links.
	SymlinkPhysical SymlinkMode = iota
	// SymlinkLogical follows every link, recursing into link targets.
	SymlinkLogical
	// SymlinkHybrid follows the explicit root only, physical after.
	SymlinkHybrid
)

// FuncMetadata is the metadata filter consulted at every regular
// visit. Returning false excludes the entry; descent into an excluded
// directory is still allowed unless the filter also opts out of it.
type FuncMetadata func(e *libent.Entry) (include bool, descend bool)

// Options tunes the disk source behaviors.
type Options struct {
	Symlink       SymlinkMode
	RestoreAtime  bool
	SkipNodump    bool
	AllVisitTypes bool
	CrossDevice   bool

	Matcher  libmtc.Matcher
	Metadata FuncMetadata
}

// Reader is the disk source handle.
type Reader interface {
	io.Closer

	// Next advances the traversal and fills the entry for the next
	// surfaced visit. The visit kind is VisitRegular unless the
	// AllVisitTypes behavior is set.
	Next(e *libent.Entry) (Visit, arcsts.Status, liberr.Error)

	// ReadBlock delivers payload blocks of the current regular file.
	ReadBlock() ([]byte, int64, arcsts.Status, liberr.Error)

	// Descend marks the directory of the last regular visit for
	// recursion before the next call to Next.
	Descend()

	// FilesystemSynthetic reports the classification of the current
	// entry's filesystem: -1 unknown, 0 no, 1 yes.
	FilesystemSynthetic() int8
	// FilesystemRemote reports the remote classification.
	FilesystemRemote() int8
}

type reader struct {
	t   *tree
	opt Options

	initialDir string
	rootDev    uint64
	rootSeen   bool
	hybridDone bool

	fss     *fsSet
	curFs   int
	lastDev uint64

	cur struct {
		valid bool
		path  string
		size  int64
		off   int64
		f     *os.File
		at    time.Time
		mt    time.Time
		rest  bool
	}

	out [blockSize]byte
}

// New opens a disk source rooted at the given path. The current
// working directory is captured so the close guarantee can be checked
// even though the traversal never changes it.
func New(root string, opt Options) (Reader, liberr.Error) {
	if root == "" {
		return nil, ErrorParamEmpty.Error(nil)
	}

	wd, _ := os.Getwd()

	if _, e := os.Lstat(root); e != nil {
		return nil, ErrorRootStat.ErrorParent(e)
	}

	return &reader{
		t:          newTree(root),
		opt:        opt,
		initialDir: wd,
		fss:        newFsSet(),
		curFs:      -1,
	}, nil
}

// statFor picks lstat or stat according to the symlink mode.
func (o *reader) statFor(path string, isRoot bool) (fs.FileInfo, bool, error) {
	follow := false

	switch o.opt.Symlink {
	case SymlinkLogical:
		follow = true
	case SymlinkHybrid:
		follow = isRoot && !o.hybridDone
	}

	li, e := os.Lstat(path)
	if e != nil {
		return nil, false, e
	}

	if li.Mode()&fs.ModeSymlink == 0 {
		return li, false, nil
	}

	if !follow {
		return li, false, nil
	}

	si, e := os.Stat(path)
	if e != nil {
		// dangling link: report the link itself
		return li, false, nil
	}

	return si, true, nil
}

func (o *reader) Next(e *libent.Entry) (Visit, arcsts.Status, liberr.Error) {
	if sts, err := o.closeCurrent(); sts != arcsts.Ok {
		return VisitRegular, sts, err
	}

	for {
		s := o.t.next()

		switch s.visit {
		case VisitDone:
			return VisitDone, arcsts.Eof, nil

		case VisitError:
			if o.opt.AllVisitTypes {
				e.Reset()
				e.SetPathname(s.path)
				return VisitError, arcsts.Failed, ErrorDirOpen.Error(nil)
			}
			continue

		case VisitPostDescent, VisitPostAscent:
			if !o.opt.AllVisitTypes {
				continue
			}

			if sts, err := o.fill(e, s); sts != arcsts.Ok {
				return s.visit, sts, err
			}

			return s.visit, arcsts.Ok, nil

		case VisitRegular:
			include, sts, err := o.regular(e, s)

			if sts == arcsts.Eof || sts == arcsts.Fatal {
				return VisitRegular, sts, err
			}

			if !include {
				continue
			}

			return VisitRegular, sts, err
		}
	}
}

// regular handles one regular visit: stat, symlink mode, filesystem
// accounting, nodump and filter checks.
func (o *reader) regular(e *libent.Entry, s step) (bool, arcsts.Status, liberr.Error) {
	isRoot := !o.rootSeen

	info, followed, err := o.statFor(s.path, isRoot)
	if err != nil {
		// the object vanished between listing and stat
		return false, arcsts.Ok, nil
	}

	if o.opt.Symlink == SymlinkHybrid && isRoot {
		// hybrid switches to physical after the first regular visit
		o.hybridDone = true
	}

	if sts, e2 := o.fillInfo(e, s, info, followed); sts != arcsts.Ok {
		return false, sts, e2
	}

	if isRoot {
		o.rootDev = e.Dev()
	}
	o.rootSeen = true
	o.lastDev = e.Dev()

	if o.opt.SkipNodump && hasNodump(s.path) {
		// skipped entries keep their atime restoration behavior
		if o.opt.RestoreAtime && e.FileType() == libent.TypeRegular && e.Size() > 0 {
			o.restoreTimes(s.path, e)
		}

		return false, arcsts.Ok, nil
	}

	include := true

	if o.opt.Matcher != nil && o.opt.Matcher.Excluded(e) {
		include = false
	}

	if include && o.opt.Metadata != nil {
		var descend bool

		include, descend = o.opt.Metadata(e)

		if !include && descend && isDirEntry(e, info) {
			// excluded directory still traversable on request
			o.t.markDescend()
		}
	}

	if !include {
		return false, arcsts.Ok, nil
	}

	// payload state for regular files
	if e.FileType() == libent.TypeRegular && e.Size() > 0 {
		o.cur.valid = true
		o.cur.path = s.path
		o.cur.size = int64(e.Size())
		o.cur.off = 0
		o.cur.f = nil
		o.cur.rest = o.opt.RestoreAtime
	}

	return true, arcsts.Ok, nil
}

func isDirEntry(e *libent.Entry, info fs.FileInfo) bool {
	return e.FileType() == libent.TypeDirectory || info.IsDir()
}

func (o *reader) fill(e *libent.Entry, s step) (arcsts.Status, liberr.Error) {
	info, e2 := os.Lstat(s.path)
	if e2 != nil {
		return arcsts.Failed, ErrorRootStat.ErrorParent(e2)
	}

	return o.fillInfo(e, s, info, false)
}

// fillInfo populates the entry from the stat result, including the
// filesystem identity of the containing device.
func (o *reader) fillInfo(e *libent.Entry, s step, info fs.FileInfo, followed bool) (arcsts.Status, liberr.Error) {
	e.Reset()
	e.SetPathname(s.path)
	e.SetSourcePath(s.path)
	e.SetFileType(libent.FromFsMode(info.Mode()))
	e.SetMode(uint16(info.Mode().Perm()))
	e.SetMTime(libent.NewTime(info.ModTime()))

	if followed && info.IsDir() {
		// a followed directory link is surfaced as a directory
		e.SetFileType(libent.TypeDirectory)
	}

	if e.FileType() == libent.TypeRegular {
		e.SetSize(uint64(info.Size()))
	}

	if e.FileType() == libent.TypeSymlink {
		if t, e3 := os.Readlink(s.path); e3 == nil {
			e.SetSymlink(t)
		}
	}

	if dev, at, ok := statSys(e, info); ok {
		o.cur.at = at
		o.cur.mt = info.ModTime()

		o.curFs = o.fss.index(dev, s.path)
	}

	return arcsts.Ok, nil
}

func (o *reader) Descend() {
	if !o.opt.CrossDevice && o.rootSeen && o.lastDev != o.rootDev {
		// filesystem boundary: the subtree stays unvisited
		return
	}

	o.t.markDescend()
}

func (o *reader) ReadBlock() ([]byte, int64, arcsts.Status, liberr.Error) {
	if !o.cur.valid {
		return nil, 0, arcsts.Eof, nil
	}

	if o.cur.f == nil {
		// #nosec
		f, e := os.Open(o.cur.path)
		if e != nil {
			o.cur.valid = false
			return nil, 0, arcsts.Failed, ErrorFileOpen.ErrorParent(e)
		}
		o.cur.f = f
	}

	if o.cur.off >= o.cur.size {
		sts, err := o.closeCurrent()
		return nil, o.cur.off, statusOrEof(sts), err
	}

	n, e := o.cur.f.Read(o.out[:])

	if n > 0 {
		off := o.cur.off
		o.cur.off += int64(n)
		return o.out[:n], off, arcsts.Ok, nil
	}

	if e == io.EOF {
		sts, err := o.closeCurrent()
		return nil, o.cur.off, statusOrEof(sts), err
	}

	o.cur.valid = false
	_ = o.cur.f.Close()
	o.cur.f = nil

	return nil, o.cur.off, arcsts.Failed, ErrorFileRead.ErrorParent(e)
}

func statusOrEof(sts arcsts.Status) arcsts.Status {
	if sts == arcsts.Ok {
		return arcsts.Eof
	}

	return sts
}

// closeCurrent releases the open payload file, restoring its access
// time when the behavior is on. Empty files are never restored since
// no read disturbed them.
func (o *reader) closeCurrent() (arcsts.Status, liberr.Error) {
	if !o.cur.valid {
		return arcsts.Ok, nil
	}

	o.cur.valid = false

	if o.cur.f != nil {
		_ = o.cur.f.Close()
		o.cur.f = nil

		if o.cur.rest && o.cur.size > 0 {
			if e := os.Chtimes(o.cur.path, o.cur.at, o.cur.mt); e != nil {
				return arcsts.Warn, ErrorRestoreTime.ErrorParent(e)
			}
		}
	}

	return arcsts.Ok, nil
}

func (o *reader) restoreTimes(path string, e *libent.Entry) {
	_ = os.Chtimes(path, e.ATime().Time(), e.MTime().Time())
}

func (o *reader) FilesystemSynthetic() int8 {
	if r := o.fss.record(o.curFs); r != nil {
		return r.synthetic
	}

	return -1
}

func (o *reader) FilesystemRemote() int8 {
	if r := o.fss.record(o.curFs); r != nil {
		return r.remote
	}

	return -1
}

// Close abandons any traversal in progress. The initial working
// directory is still the process working directory: the walker
// resolves paths itself instead of chdir'ing through the tree.
func (o *reader) Close() error {
	_, _ = o.closeCurrent()

	if o.initialDir != "" {
		if wd, e := os.Getwd(); e == nil && wd != o.initialDir {
			return os.Chdir(o.initialDir)
		}
	}

	return nil
}
