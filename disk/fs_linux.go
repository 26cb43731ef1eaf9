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
	"golang.org/x/sys/unix"
)

// magic numbers of interest from statfs f_type
const (
	fsMagicProc     = 0x9fa0
	fsMagicSysfs    = 0x62656572
	fsMagicDevfs    = 0x1373
	fsMagicDevpts   = 0x1cd1
	fsMagicTmpfs    = 0x01021994
	fsMagicCgroup   = 0x27e0eb
	fsMagicCgroup2  = 0x63677270
	fsMagicSecurity = 0x73636673

	fsMagicNfs  = 0x6969
	fsMagicSmb  = 0x517B
	fsMagicCifs = 0xFF534D42
	fsMagicCoda = 0x73757245
	fsMagicAfs  = 0x5346414F
)

// inspectFilesystem classifies the filesystem holding path and reports
// its maximum name length. Unknown stays -1 on failure.
func inspectFilesystem(path string, r *fsRecord) {
	var st unix.Statfs_t

	if e := unix.Statfs(path, &st); e != nil {
		return
	}

	r.maxNameLen = int(st.Namelen)

	switch uint32(st.Type) {
	case fsMagicProc, fsMagicSysfs, fsMagicDevfs, fsMagicDevpts,
		fsMagicTmpfs, fsMagicCgroup, fsMagicCgroup2, fsMagicSecurity:
		r.synthetic = 1
		r.remote = 0

	case fsMagicNfs, fsMagicSmb, fsMagicCifs, fsMagicCoda, fsMagicAfs:
		r.synthetic = 0
		r.remote = 1

	default:
		r.synthetic = 0
		r.remote = 0
	}
}
