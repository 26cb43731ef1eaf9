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
	"unicode/utf16"

	liberr "github.com/nabbar/arcengine/errors"
)

// EncodeUTF16BE encodes the given code points as big endian UTF-16.
// BMP code points take two bytes; supplementary code points are written
// as a surrogate pair, both halves big endian.
func EncodeUTF16BE(p []rune) []byte {
	u := utf16.Encode(p)
	b := make([]byte, 0, len(u)*2)

	for _, v := range u {
		b = append(b, byte(v>>8), byte(v))
	}

	return b
}

// DecodeUTF16BE decodes big endian UTF-16 bytes into code points.
// Surrogates are paired; an unpaired surrogate is replaced by '?' and
// reported as a conversion warning. An odd trailing byte is dropped
// with the same warning.
func DecodeUTF16BE(p []byte) ([]rune, liberr.Error) {
	var (
		err liberr.Error
		out = make([]rune, 0, len(p)/2)
	)

	if len(p)%2 != 0 {
		err = ErrorUnicodeSurrogate.Error(nil)
		p = p[:len(p)-1]
	}

	for i := 0; i+1 < len(p); i += 2 {
		u := uint16(p[i])<<8 | uint16(p[i+1])

		switch {
		case u >= 0xD800 && u <= 0xDBFF:
			if i+3 < len(p) {
				l := uint16(p[i+2])<<8 | uint16(p[i+3])
				if l >= 0xDC00 && l <= 0xDFFF {
					out = append(out, utf16.DecodeRune(rune(u), rune(l)))
					i += 2
					continue
				}
			}
			out = append(out, '?')
			err = ErrorUnicodeSurrogate.Error(nil)

		case u >= 0xDC00 && u <= 0xDFFF:
			out = append(out, '?')
			err = ErrorUnicodeSurrogate.Error(nil)

		default:
			out = append(out, rune(u))
		}
	}

	return out, err
}
