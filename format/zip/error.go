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

package zip

import (
	"fmt"

	liberr "github.com/nabbar/arcengine/errors"
)

const (
	ErrorHeaderInvalid liberr.CodeError = iota + liberr.MinPkgFormatZip
	ErrorCentralDirectory
	ErrorCrcMismatch
	ErrorSizeMismatch
	ErrorMethodUnsupported
	ErrorDescriptorInvalid
	ErrorEncrypted
	ErrorTruncated
	ErrorWrite
	ErrorSizeOverflow
)

func init() {
	if liberr.ExistInMapMessage(ErrorHeaderInvalid) {
		panic(fmt.Errorf("error code collision arcengine/format/zip"))
	}
	liberr.RegisterIdFctMessage(ErrorHeaderInvalid, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorHeaderInvalid:
		return "zip local header is damaged"
	case ErrorCentralDirectory:
		return "zip central directory is damaged"
	case ErrorCrcMismatch:
		return "zip entry crc does not match data"
	case ErrorSizeMismatch:
		return "zip entry size does not match data"
	case ErrorMethodUnsupported:
		return "zip compression method is not supported"
	case ErrorDescriptorInvalid:
		return "zip data descriptor is damaged"
	case ErrorEncrypted:
		return "zip entry is encrypted and not supported"
	case ErrorTruncated:
		return "zip stream ends inside an entry"
	case ErrorWrite:
		return "error occurs while writing zip stream"
	case ErrorSizeOverflow:
		return "entry or archive exceeds 4GiB without zip64 enabled"
	}

	return liberr.NullMessage
}
