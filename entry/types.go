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

package entry

import (
	"io/fs"
	"strings"
)

// FileType is the archived object kind, mirroring the POSIX file type
// bits carried in the entry mode.
type FileType uint16

const (
	TypeRegular   FileType = 0x8000
	TypeDirectory FileType = 0x4000
	TypeSymlink   FileType = 0xA000
	TypeCharDev   FileType = 0x2000
	TypeBlockDev  FileType = 0x6000
	TypeFifo      FileType = 0x1000
	TypeSocket    FileType = 0xC000
)

func (t FileType) String() string {
	switch t {
	case TypeDirectory:
		return "dir"
	case TypeSymlink:
		return "symlink"
	case TypeCharDev:
		return "char-device"
	case TypeBlockDev:
		return "block-device"
	case TypeFifo:
		return "fifo"
	case TypeSocket:
		return "socket"
	default:
		return "file"
	}
}

// Parse returns the FileType matching the given string, or TypeRegular.
func Parse(s string) FileType {
	for _, t := range []FileType{
		TypeDirectory, TypeSymlink, TypeCharDev,
		TypeBlockDev, TypeFifo, TypeSocket, TypeRegular,
	} {
		if strings.EqualFold(s, t.String()) {
			return t
		}
	}

	return TypeRegular
}

// FromFsMode maps an fs.FileMode onto a FileType.
func FromFsMode(m fs.FileMode) FileType {
	switch {
	case m.IsDir():
		return TypeDirectory
	case m&fs.ModeSymlink != 0:
		return TypeSymlink
	case m&fs.ModeCharDevice != 0:
		return TypeCharDev
	case m&fs.ModeDevice != 0:
		return TypeBlockDev
	case m&fs.ModeNamedPipe != 0:
		return TypeFifo
	case m&fs.ModeSocket != 0:
		return TypeSocket
	default:
		return TypeRegular
	}
}

// FsMode returns the fs.FileMode type bits for the FileType.
func (t FileType) FsMode() fs.FileMode {
	switch t {
	case TypeDirectory:
		return fs.ModeDir
	case TypeSymlink:
		return fs.ModeSymlink
	case TypeCharDev:
		return fs.ModeDevice | fs.ModeCharDevice
	case TypeBlockDev:
		return fs.ModeDevice
	case TypeFifo:
		return fs.ModeNamedPipe
	case TypeSocket:
		return fs.ModeSocket
	default:
		return 0
	}
}
