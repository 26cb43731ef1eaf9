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
	"time"

	libent "github.com/nabbar/arcengine/entry"
)

// dosTime decodes the packed MSDOS date and time words.
func dosTime(d uint32) libent.TimeSpec {
	var (
		t = time.Date(
			int(d>>25)+1980,
			time.Month(d>>21&0x0F),
			int(d>>16&0x1F),
			int(d>>11&0x1F),
			int(d>>5&0x3F),
			int(d&0x1F)*2,
			0,
			time.Local,
		)
	)

	return libent.NewTimeSec(t.Unix())
}

// toDosTime packs a timestamp into the MSDOS date and time words,
// clamped to the representable 1980..2107 range with 2 second
// granularity.
func toDosTime(ts libent.TimeSpec) uint32 {
	t := ts.Time()

	if t.IsZero() {
		t = time.Unix(0, 0)
	}

	t = t.Local()

	y := t.Year()
	if y < 1980 {
		return 0x21 // 1980-01-01 00:00:00
	} else if y > 2107 {
		y = 2107
	}

	return uint32(y-1980)<<25 |
		uint32(t.Month())<<21 |
		uint32(t.Day())<<16 |
		uint32(t.Hour())<<11 |
		uint32(t.Minute())<<5 |
		uint32(t.Second()/2)
}
