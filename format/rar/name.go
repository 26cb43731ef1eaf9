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

package rar

import (
	"bytes"

	"github.com/nabbar/arcengine/charset"
)

// decodeUnicodeName expands the compact unicode name encoding: an
// ascii subset terminated by NUL, followed by a bit packed opcode
// stream producing big endian UTF-16 pairs.
func decodeUnicodeName(raw []byte) string {
	nul := bytes.IndexByte(raw, 0)

	if nul < 0 {
		// the whole field already holds UTF-16BE
		return utf16beString(raw)
	}

	var (
		end      = len(raw)
		offset   = nul + 1
		out      = make([]byte, 0, len(raw)*2)
		highbyte byte
		flagbyte byte
		flagbits uint
	)

	if offset < end {
		highbyte = raw[offset]
		offset++
	}

	for offset < end {
		if flagbits == 0 {
			flagbyte = raw[offset]
			offset++
			flagbits = 8

			if offset >= end {
				break
			}
		}

		flagbits -= 2

		switch (flagbyte >> flagbits) & 3 {
		case 0:
			out = append(out, 0, raw[offset])
			offset++

		case 1:
			out = append(out, highbyte, raw[offset])
			offset++

		case 2:
			if offset+1 < end {
				out = append(out, raw[offset+1], raw[offset])
			}
			offset += 2

		case 3:
			length := raw[offset]
			offset++

			var extra, high byte
			if length&0x80 != 0 {
				if offset >= end {
					break
				}
				extra = raw[offset]
				offset++
				high = highbyte
			}

			// copy from the ascii subset at the current character index
			for n := int(length&0x7f) + 2; n > 0 && len(out)/2 < nul; n-- {
				out = append(out, high, raw[len(out)/2]+extra)
			}
		}
	}

	return utf16beString(out)
}

func utf16beString(p []byte) string {
	r, _ := charset.DecodeUTF16BE(p)
	return slashedRunes(r)
}

func slashedRunes(r []rune) string {
	for i := range r {
		if r[i] == '\\' {
			r[i] = '/'
		}
	}

	return string(r)
}
