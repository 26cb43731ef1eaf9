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

	"golang.org/x/sys/unix"
)

// fsNodumpFl is the Linux FS_NODUMP_FL inode flag (linux/fs.h), not
// exported by this version of golang.org/x/sys/unix.
const fsNodumpFl = 0x40

// hasNodump reports the per file nodump attribute when the platform
// supports it.
func hasNodump(path string) bool {
	// #nosec
	f, e := os.Open(path)
	if e != nil {
		return false
	}

	defer func() {
		_ = f.Close()
	}()

	attr, e := unix.IoctlGetInt(int(f.Fd()), unix.FS_IOC_GETFLAGS)
	if e != nil {
		return false
	}

	return attr&fsNodumpFl != 0
}
