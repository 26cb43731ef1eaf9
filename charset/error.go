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

package charset

import (
	"fmt"

	liberr "github.com/nabbar/arcengine/errors"
)

const (
	ErrorParamEmpty liberr.CodeError = iota + liberr.MinPkgCharset
	ErrorCharsetUnknown
	ErrorConvertFailed
	ErrorConvertPartial
	ErrorUnicodeSurrogate
	ErrorBufferOverflow
)

func init() {
	if liberr.ExistInMapMessage(ErrorParamEmpty) {
		panic(fmt.Errorf("error code collision arcengine/charset"))
	}
	liberr.RegisterIdFctMessage(ErrorParamEmpty, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorParamEmpty:
		return "given parameters is empty"
	case ErrorCharsetUnknown:
		return "charset name cannot be resolved to a converter"
	case ErrorConvertFailed:
		return "string cannot be converted to target charset"
	case ErrorConvertPartial:
		return "string converted with replacement characters"
	case ErrorUnicodeSurrogate:
		return "unpaired utf-16 surrogate replaced"
	case ErrorBufferOverflow:
		return "string buffer cannot grow to requested size"
	}

	return liberr.NullMessage
}
