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
	"encoding/binary"
	"time"

	libent "github.com/nabbar/arcengine/entry"
)

// hundred nanosecond units per second in the extended time fields
const nsUnit = 10000000

// dosTime decodes the packed MSDOS stamp of the base file header.
func dosTime(d uint32) libent.TimeSpec {
	t := time.Date(
		int(d>>25)+1980,
		time.Month(d>>21&0x0F),
		int(d>>16&0x1F),
		int(d>>11&0x1F),
		int(d>>5&0x3F),
		int(d&0x1F)*2,
		0,
		time.Local,
	)

	return libent.NewTimeSec(t.Unix())
}

type extTimes struct {
	mtime libent.TimeSpec
	ctime libent.TimeSpec
	atime libent.TimeSpec
	arct  libent.TimeSpec
}

// parseExtTime decodes the variable length extended time block: a
// flags word, then per clock an optional dos stamp plus up to three
// bytes of 100ns remainder and a one second rounding bit.
func parseExtTime(p []byte, mtime libent.TimeSpec) (extTimes, int) {
	var (
		x    = extTimes{mtime: mtime}
		used = 0
	)

	if len(p) < 2 {
		return x, used
	}

	flags := binary.LittleEndian.Uint16(p[0:2])
	used = 2

	for i := 3; i >= 0; i-- {
		rmode := flags >> (uint(i) * 4)

		if rmode&8 == 0 {
			continue
		}

		var sec int64

		if i == 3 {
			sec = x.mtime.Unix()
		} else {
			if len(p) < used+4 {
				return x, used
			}

			sec = dosTime(binary.LittleEndian.Uint32(p[used : used+4])).Unix()
			used += 4
		}

		var rem uint32

		count := int(rmode & 3)
		for j := 0; j < count; j++ {
			if len(p) <= used {
				return x, used
			}

			rem = uint32(p[used])<<16 | rem>>8
			used++
		}

		if rmode&4 != 0 {
			sec++
		}

		ts := libent.NewTimeSpec(sec, int64(rem)*100)

		switch i {
		case 3:
			x.mtime = ts
		case 2:
			x.ctime = ts
		case 1:
			x.atime = ts
		case 0:
			x.arct = ts
		}
	}

	return x, used
}
