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
	"io/fs"
	"syscall"
	"time"

	libent "github.com/nabbar/arcengine/entry"
)

// statSys copies the raw stat fields into the entry and returns the
// containing device plus the times needed for atime restoration.
func statSys(e *libent.Entry, info fs.FileInfo) (dev uint64, at time.Time, ok bool) {
	st, k := info.Sys().(*syscall.Stat_t)
	if !k {
		return 0, time.Time{}, false
	}

	e.SetUid(int64(st.Uid))
	e.SetGid(int64(st.Gid))
	e.SetDev(uint64(st.Dev))
	e.SetIno(uint64(st.Ino))
	e.SetNlink(uint32(st.Nlink))
	e.SetRdev(uint64(st.Rdev))
	e.SetATime(libent.NewTimeSpec(st.Atim.Sec, st.Atim.Nsec))
	e.SetCTime(libent.NewTimeSpec(st.Ctim.Sec, st.Ctim.Nsec))

	return uint64(st.Dev), time.Unix(st.Atim.Sec, st.Atim.Nsec), true
}
