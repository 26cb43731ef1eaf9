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

// Package entry models a single archived object: its path, type, mode,
// ownership, sizes, timestamps and link targets. An Entry is allocated
// by a reader before each header; the reference handed to the caller is
// borrowed and may be recycled by the next header call.
package entry

import (
	"io/fs"
	"time"

	"github.com/nabbar/arcengine/charset"
)

type Entry struct {
	path   *charset.MultiString
	spath  string
	link   *charset.MultiString
	hlink  *charset.MultiString
	uname  *charset.MultiString
	gname  *charset.MultiString
	ftype  FileType
	mode   uint16
	uid    int64
	gid    int64
	size   uint64
	szSet  bool
	mtime  TimeSpec
	atime  TimeSpec
	ctime  TimeSpec
	btime  TimeSpec
	nlink  uint32
	dev    uint64
	ino    uint64
	rdev   uint64
	crypt  bool
}

// New returns an empty Entry sharing the given converter cache for all
// its string fields. A nil cache restricts names to UTF-8.
func New(cc *charset.Cache) *Entry {
	return &Entry{
		path:  charset.NewMultiString(cc),
		link:  charset.NewMultiString(cc),
		hlink: charset.NewMultiString(cc),
		uname: charset.NewMultiString(cc),
		gname: charset.NewMultiString(cc),
		ftype: TypeRegular,
	}
}

// Reset clears the entry for reuse by the next header, keeping the
// allocated string storage.
func (e *Entry) Reset() {
	e.path.Reset()
	e.link.Reset()
	e.hlink.Reset()
	e.uname.Reset()
	e.gname.Reset()
	e.spath = ""
	e.ftype = TypeRegular
	e.mode = 0
	e.uid = 0
	e.gid = 0
	e.size = 0
	e.szSet = false
	e.mtime = TimeSpec{}
	e.atime = TimeSpec{}
	e.ctime = TimeSpec{}
	e.btime = TimeSpec{}
	e.nlink = 0
	e.dev = 0
	e.ino = 0
	e.rdev = 0
	e.crypt = false
}

func (e *Entry) Pathname() string {
	return e.path.String()
}

func (e *Entry) PathnameMulti() *charset.MultiString {
	return e.path
}

func (e *Entry) SetPathname(s string) {
	e.path.SetString(s)
}

// SetPathnameBytes stores a raw path tagged with its source charset.
// Conversion to UTF-8 happens lazily on first read.
func (e *Entry) SetPathnameBytes(p []byte, cs string) {
	e.path.SetMbs(p, cs)
}

func (e *Entry) SourcePath() string {
	return e.spath
}

func (e *Entry) SetSourcePath(s string) {
	e.spath = s
}

func (e *Entry) Symlink() string {
	return e.link.String()
}

func (e *Entry) SetSymlink(s string) {
	e.link.SetString(s)
}

// Hardlink returns the reference path of a hardlink entry.
func (e *Entry) Hardlink() string {
	return e.hlink.String()
}

func (e *Entry) SetHardlink(s string) {
	e.hlink.SetString(s)
}

func (e *Entry) IsHardlink() bool {
	return e.hlink.IsSet()
}

func (e *Entry) Uname() string {
	return e.uname.String()
}

func (e *Entry) SetUname(s string) {
	e.uname.SetString(s)
}

func (e *Entry) Gname() string {
	return e.gname.String()
}

func (e *Entry) SetGname(s string) {
	e.gname.SetString(s)
}

func (e *Entry) FileType() FileType {
	return e.ftype
}

func (e *Entry) SetFileType(t FileType) {
	e.ftype = t
}

// Mode returns the POSIX permission bits (without the type bits).
func (e *Entry) Mode() uint16 {
	return e.mode & 0o7777
}

func (e *Entry) SetMode(m uint16) {
	e.mode = m & 0o7777
}

// FullMode returns the combined type and permission bits.
func (e *Entry) FullMode() uint16 {
	return uint16(e.ftype) | e.Mode()
}

// SetFullMode splits combined st_mode bits into type and permission.
func (e *Entry) SetFullMode(m uint16) {
	e.mode = m & 0o7777

	if t := FileType(m & 0xF000); t != 0 {
		e.ftype = t
	}
}

// FsMode returns the entry mode as an fs.FileMode.
func (e *Entry) FsMode() fs.FileMode {
	return e.ftype.FsMode() | fs.FileMode(e.Mode())
}

func (e *Entry) Uid() int64 {
	return e.uid
}

func (e *Entry) SetUid(v int64) {
	e.uid = v
}

func (e *Entry) Gid() int64 {
	return e.gid
}

func (e *Entry) SetGid(v int64) {
	e.gid = v
}

// Size returns the payload size. It is meaningful for regular files
// and zero for directories.
func (e *Entry) Size() uint64 {
	if !e.szSet {
		return 0
	}

	return e.size
}

func (e *Entry) SizeIsSet() bool {
	return e.szSet
}

func (e *Entry) SetSize(v uint64) {
	e.size = v
	e.szSet = true
}

func (e *Entry) UnsetSize() {
	e.size = 0
	e.szSet = false
}

func (e *Entry) MTime() TimeSpec {
	return e.mtime
}

func (e *Entry) SetMTime(t TimeSpec) {
	e.mtime = t
}

func (e *Entry) ATime() TimeSpec {
	return e.atime
}

func (e *Entry) SetATime(t TimeSpec) {
	e.atime = t
}

func (e *Entry) CTime() TimeSpec {
	return e.ctime
}

func (e *Entry) SetCTime(t TimeSpec) {
	e.ctime = t
}

func (e *Entry) BirthTime() TimeSpec {
	return e.btime
}

func (e *Entry) SetBirthTime(t TimeSpec) {
	e.btime = t
}

func (e *Entry) Nlink() uint32 {
	return e.nlink
}

func (e *Entry) SetNlink(v uint32) {
	e.nlink = v
}

func (e *Entry) Dev() uint64 {
	return e.dev
}

func (e *Entry) SetDev(v uint64) {
	e.dev = v
}

func (e *Entry) Ino() uint64 {
	return e.ino
}

func (e *Entry) SetIno(v uint64) {
	e.ino = v
}

func (e *Entry) Rdev() uint64 {
	return e.rdev
}

func (e *Entry) SetRdev(v uint64) {
	e.rdev = v
}

// IsEncrypted reports the input-only encryption flag.
func (e *Entry) IsEncrypted() bool {
	return e.crypt
}

func (e *Entry) SetEncrypted(v bool) {
	e.crypt = v
}

// FromFileInfo fills the entry from an fs.FileInfo, as captured by the
// disk source or supplied by a caller-built header.
func (e *Entry) FromFileInfo(i fs.FileInfo) {
	e.SetPathname(i.Name())
	e.ftype = FromFsMode(i.Mode())
	e.mode = uint16(i.Mode().Perm())

	if e.ftype == TypeRegular {
		e.SetSize(uint64(i.Size()))
	} else {
		e.UnsetSize()
	}

	e.mtime = NewTime(i.ModTime())
}

// FileInfo returns an fs.FileInfo view over the entry.
func (e *Entry) FileInfo() fs.FileInfo {
	return &info{e: e}
}

type info struct {
	e *Entry
}

func (i *info) Name() string {
	return i.e.Pathname()
}

func (i *info) Size() int64 {
	return int64(i.e.Size())
}

func (i *info) Mode() fs.FileMode {
	return i.e.FsMode()
}

func (i *info) ModTime() time.Time {
	return i.e.MTime().Time()
}

func (i *info) IsDir() bool {
	return i.e.FileType() == TypeDirectory
}

func (i *info) Sys() interface{} {
	return i.e
}
