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

package cab

import (
	"fmt"

	liberr "github.com/nabbar/arcengine/errors"
)

const (
	ErrorHeaderInvalid liberr.CodeError = iota + liberr.MinPkgFormatCab
	ErrorMultiVolume
	ErrorFolderInvalid
	ErrorFileInvalid
	ErrorDataInvalid
	ErrorChecksum
	ErrorMethodUnsupported
	ErrorTruncated
)

func init() {
	if liberr.ExistInMapMessage(ErrorHeaderInvalid) {
		panic(fmt.Errorf("error code collision arcengine/format/cab"))
	}
	liberr.RegisterIdFctMessage(ErrorHeaderInvalid, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorHeaderInvalid:
		return "cab header is damaged"
	case ErrorMultiVolume:
		return "multi-volume cabinet is not supported"
	case ErrorFolderInvalid:
		return "cab folder table is damaged"
	case ErrorFileInvalid:
		return "cab file entry is damaged"
	case ErrorDataInvalid:
		return "cab data block is damaged"
	case ErrorChecksum:
		return "cab data block checksum mismatch"
	case ErrorMethodUnsupported:
		return "cab compression method is not supported"
	case ErrorTruncated:
		return "cab stream ends inside a structure"
	}

	return liberr.NullMessage
}
