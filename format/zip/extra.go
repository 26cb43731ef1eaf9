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
	"encoding/binary"

	libent "github.com/nabbar/arcengine/entry"
)

// recognized extra field ids
const (
	extraZip64      = 0x0001
	extraTimestamp  = 0x5455
	extraUnixOld    = 0x5855
	extraUnixType2  = 0x7855
	extraUnixType3  = 0x7875
)

type extraInfo struct {
	csize uint64
	usize uint64
	zip64 bool

	mtime libent.TimeSpec
	atime libent.TimeSpec
	ctime libent.TimeSpec

	uid    int64
	gid    int64
	uidSet bool
	gidSet bool
}

// parseExtra walks the (id16, size16, data) triples of an extra field
// block. Unknown ids are ignored.
func parseExtra(p []byte, x *extraInfo) {
	for len(p) >= 4 {
		var (
			id = binary.LittleEndian.Uint16(p[0:2])
			sz = int(binary.LittleEndian.Uint16(p[2:4]))
		)

		p = p[4:]
		if sz > len(p) {
			return
		}

		d := p[:sz]
		p = p[sz:]

		switch id {
		case extraZip64:
			if len(d) >= 8 {
				x.usize = binary.LittleEndian.Uint64(d[0:8])
				x.zip64 = true
			}
			if len(d) >= 16 {
				x.csize = binary.LittleEndian.Uint64(d[8:16])
			}

		case extraTimestamp:
			if len(d) < 1 {
				break
			}

			var (
				f = d[0]
				o = 1
			)

			if f&0x01 != 0 && len(d) >= o+4 {
				x.mtime = libent.NewTimeSec(int64(int32(binary.LittleEndian.Uint32(d[o:]))))
				o += 4
			}
			if f&0x02 != 0 && len(d) >= o+4 {
				x.atime = libent.NewTimeSec(int64(int32(binary.LittleEndian.Uint32(d[o:]))))
				o += 4
			}
			if f&0x04 != 0 && len(d) >= o+4 {
				x.ctime = libent.NewTimeSec(int64(int32(binary.LittleEndian.Uint32(d[o:]))))
			}

		case extraUnixOld:
			if len(d) >= 4 {
				x.atime = libent.NewTimeSec(int64(int32(binary.LittleEndian.Uint32(d[0:4]))))
			}
			if len(d) >= 8 {
				x.mtime = libent.NewTimeSec(int64(int32(binary.LittleEndian.Uint32(d[4:8]))))
			}
			if len(d) >= 10 {
				x.uid = int64(binary.LittleEndian.Uint16(d[8:10]))
				x.uidSet = true
			}
			if len(d) >= 12 {
				x.gid = int64(binary.LittleEndian.Uint16(d[10:12]))
				x.gidSet = true
			}

		case extraUnixType2:
			if len(d) >= 2 {
				x.uid = int64(binary.LittleEndian.Uint16(d[0:2]))
				x.uidSet = true
			}
			if len(d) >= 4 {
				x.gid = int64(binary.LittleEndian.Uint16(d[2:4]))
				x.gidSet = true
			}

		case extraUnixType3:
			// version byte, then sized uid and gid little endian
			if len(d) < 2 || d[0] != 1 {
				break
			}

			o := 1
			us := int(d[o])
			o++

			if len(d) >= o+us {
				x.uid = leVarInt(d[o : o+us])
				x.uidSet = true
				o += us
			} else {
				break
			}

			if len(d) >= o+1 {
				gs := int(d[o])
				o++
				if len(d) >= o+gs {
					x.gid = leVarInt(d[o : o+gs])
					x.gidSet = true
				}
			}
		}
	}
}

func leVarInt(p []byte) int64 {
	var v uint64

	for i := len(p) - 1; i >= 0; i-- {
		v = v<<8 | uint64(p[i])
	}

	return int64(v)
}

// buildExtraTimestamp emits the 0x5455 extended timestamp block.
func buildExtraTimestamp(mtime, atime, ctime libent.TimeSpec) []byte {
	var (
		f byte
		d = make([]byte, 0, 17)
	)

	d = append(d, 0, 0, 0, 0, 0) // id, size, flags placeholder

	if mtime.IsSet() {
		f |= 0x01
		d = binary.LittleEndian.AppendUint32(d, uint32(mtime.Unix()))
	}
	if atime.IsSet() {
		f |= 0x02
		d = binary.LittleEndian.AppendUint32(d, uint32(atime.Unix()))
	}
	if ctime.IsSet() {
		f |= 0x04
		d = binary.LittleEndian.AppendUint32(d, uint32(ctime.Unix()))
	}

	binary.LittleEndian.PutUint16(d[0:2], extraTimestamp)
	binary.LittleEndian.PutUint16(d[2:4], uint16(len(d)-4))
	d[4] = f

	return d
}

// buildExtraZip64Local emits the 0x0001 block of a local header: the
// full size pair, zeroed for length-at-end entries.
func buildExtraZip64Local(usize, csize uint64) []byte {
	d := make([]byte, 0, 20)

	d = append(d, 0, 0, 0, 0)
	d = binary.LittleEndian.AppendUint64(d, usize)
	d = binary.LittleEndian.AppendUint64(d, csize)

	binary.LittleEndian.PutUint16(d[0:2], extraZip64)
	binary.LittleEndian.PutUint16(d[2:4], uint16(len(d)-4))

	return d
}

// buildExtraZip64CD emits the 0x0001 block of a central directory
// record carrying size pair and local header offset; the 32 bit fields
// of the record itself hold 0xFFFFFFFF sentinels.
func buildExtraZip64CD(usize, csize uint64, off int64) []byte {
	d := make([]byte, 0, 28)

	d = append(d, 0, 0, 0, 0)
	d = binary.LittleEndian.AppendUint64(d, usize)
	d = binary.LittleEndian.AppendUint64(d, csize)
	d = binary.LittleEndian.AppendUint64(d, uint64(off))

	binary.LittleEndian.PutUint16(d[0:2], extraZip64)
	binary.LittleEndian.PutUint16(d[2:4], uint16(len(d)-4))

	return d
}

// buildExtraUnixType3 emits the 0x7875 uid/gid block with 4 byte ids.
func buildExtraUnixType3(uid, gid int64) []byte {
	d := make([]byte, 0, 15)

	d = append(d, 0, 0, 0, 0) // id, size placeholder
	d = append(d, 1, 4)
	d = binary.LittleEndian.AppendUint32(d, uint32(uid))
	d = append(d, 4)
	d = binary.LittleEndian.AppendUint32(d, uint32(gid))

	binary.LittleEndian.PutUint16(d[0:2], extraUnixType3)
	binary.LittleEndian.PutUint16(d[2:4], uint16(len(d)-4))

	return d
}
