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

package format

import (
	"fmt"

	liberr "github.com/nabbar/arcengine/errors"
)

const (
	ErrorParamEmpty liberr.CodeError = iota + liberr.MinPkgFormat
	ErrorNotRecognized
	ErrorFormatInit
	ErrorEncrypted
	ErrorMultiVolume
	ErrorSolid
	ErrorMethodUnsupported
	ErrorCorrupted
	ErrorChecksum
	ErrorTruncated
	ErrorEntryInvalid
	ErrorWrite
)

func init() {
	if liberr.ExistInMapMessage(ErrorParamEmpty) {
		panic(fmt.Errorf("error code collision arcengine/format"))
	}
	liberr.RegisterIdFctMessage(ErrorParamEmpty, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorParamEmpty:
		return "given parameters is empty"
	case ErrorNotRecognized:
		return "Unrecognized archive format"
	case ErrorFormatInit:
		return "cannot initialize format reader"
	case ErrorEncrypted:
		return "encryption is not supported"
	case ErrorMultiVolume:
		return "multi-volume archive is not supported"
	case ErrorSolid:
		return "solid archive is not supported"
	case ErrorMethodUnsupported:
		return "compression method is not supported"
	case ErrorCorrupted:
		return "archive structure is corrupted"
	case ErrorChecksum:
		return "stored checksum does not match data"
	case ErrorTruncated:
		return "archive ends inside an entry"
	case ErrorEntryInvalid:
		return "entry metadata is invalid for this format"
	case ErrorWrite:
		return "error occurs while writing archive"
	}

	return liberr.NullMessage
}
