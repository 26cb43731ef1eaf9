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

const (
	mainCodeSize      = 299
	offsetCodeSize    = 60
	lowOffsetCodeSize = 17
	lengthCodeSize    = 28
	tableSize         = mainCodeSize + offsetCodeSize + lowOffsetCodeSize + lengthCodeSize

	preCodeSize = 20

	dictionaryMax = 0x400000
)

var lengthBases = [lengthCodeSize]int{
	0, 1, 2, 3, 4, 5, 6,
	7, 8, 10, 12, 14, 16, 20,
	24, 28, 32, 40, 48, 56, 64,
	80, 96, 112, 128, 160, 192, 224,
}

var lengthBits = [lengthCodeSize]uint{
	0, 0, 0, 0, 0, 0, 0,
	0, 1, 1, 1, 1, 2, 2,
	2, 2, 3, 3, 3, 3, 4,
	4, 4, 4, 5, 5, 5, 5,
}

var offsetBases = [offsetCodeSize]int{
	0, 1, 2, 3, 4, 6,
	8, 12, 16, 24, 32, 48,
	64, 96, 128, 192, 256, 384,
	512, 768, 1024, 1536, 2048, 3072,
	4096, 6144, 8192, 12288, 16384, 24576,
	32768, 49152, 65536, 98304, 131072, 196608,
	262144, 327680, 393216, 458752, 524288, 589824,
	655360, 720896, 786432, 851968, 917504, 983040,
	1048576, 1310720, 1572864, 1835008, 2097152, 2359296,
	2621440, 2883584, 3145728, 3407872, 3670016, 3932160,
}

var offsetBits = [offsetCodeSize]uint{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4,
	5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10,
	11, 11, 12, 12, 13, 13, 14, 14, 15, 15, 16, 16,
	16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16,
	18, 18, 18, 18, 18, 18, 18, 18, 18, 18, 18, 18,
}

var shortBases = [8]int{0, 4, 8, 16, 32, 64, 128, 192}

var shortBits = [8]uint{2, 2, 3, 4, 5, 6, 6, 6}

// fls isolates the highest set bit of the word.
func fls(v uint) uint {
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	return v - v>>1
}

// lzss is the sliding window. The mask is one less than the power of
// two window size; position grows monotonically over the whole file.
type lzss struct {
	window []byte
	mask   int64
	pos    int64
}

func (l *lzss) size() int64 {
	return l.mask + 1
}

func (l *lzss) offsetFor(pos int64) int64 {
	return pos & l.mask
}

func (l *lzss) emitLiteral(c byte) {
	l.window[l.offsetFor(l.pos)] = c
	l.pos++
}

// emitMatch copies length bytes from pos-offset, byte by byte so
// overlapping matches replicate correctly.
func (l *lzss) emitMatch(offset, length int) {
	var (
		src = l.pos - int64(offset)
		i   int
	)

	for i = 0; i < length; i++ {
		l.window[l.offsetFor(l.pos)] = l.window[l.offsetFor(src+int64(i))]
		l.pos++
	}
}

// decode holds the per file decompression state of methods 0x31..0x33.
type decode struct {
	br  *bitReader
	win lzss

	lengthTable [tableSize]byte

	mainCode      huffmanCode
	offsetCode    huffmanCode
	lowOffsetCode huffmanCode
	lengthCode    huffmanCode

	lastOffset int
	lastLength int
	oldOffset  [4]int

	lastLowOffset  int
	lowOffsetReps  int
	pendingMatch   bool
	startNewTable  bool
	startNewBlock  bool
}

// parseCodes reads the pre-code, rebuilds the four block codes and
// sizes the window on first use.
func (d *decode) parseCodes(unpSize int64) error {
	d.br.alignByte()

	// PPMd block flag
	if d.br.bit() != 0 {
		return ErrorMethodUnsupported.Error(nil)
	}

	// keep existing table flag
	if d.br.bit() == 0 {
		for i := range d.lengthTable {
			d.lengthTable[i] = 0
		}
	}

	var bitLengths [preCodeSize]byte

	for i := 0; i < preCodeSize; {
		bitLengths[i] = byte(d.br.bits(4))
		i++

		if bitLengths[i-1] == 0xF {
			z := int(d.br.bits(4))
			if z > 0 {
				i--
				for j := 0; j < z+2 && i < preCodeSize; j++ {
					bitLengths[i] = 0
					i++
				}
			}
		}
	}

	var pre huffmanCode
	if !pre.build(bitLengths[:]) {
		return ErrorHuffmanInvalid.Error(nil)
	}

	for i := 0; i < tableSize; {
		val := pre.decode(d.br)

		switch {
		case val < 0:
			return ErrorHuffmanInvalid.Error(nil)

		case val < 16:
			d.lengthTable[i] = (d.lengthTable[i] + byte(val)) & 0xF
			i++

		case val < 18:
			if i == 0 {
				return ErrorHuffmanInvalid.Error(nil)
			}

			var n int
			if val == 16 {
				n = int(d.br.bits(3)) + 3
			} else {
				n = int(d.br.bits(7)) + 11
			}

			for j := 0; j < n && i < tableSize; j++ {
				d.lengthTable[i] = d.lengthTable[i-1]
				i++
			}

		default:
			var n int
			if val == 18 {
				n = int(d.br.bits(3)) + 3
			} else {
				n = int(d.br.bits(7)) + 11
			}

			for j := 0; j < n && i < tableSize; j++ {
				d.lengthTable[i] = 0
				i++
			}
		}
	}

	ok := d.mainCode.build(d.lengthTable[0:mainCodeSize])
	ok = ok && d.offsetCode.build(d.lengthTable[mainCodeSize:mainCodeSize+offsetCodeSize])
	ok = ok && d.lowOffsetCode.build(d.lengthTable[mainCodeSize+offsetCodeSize:mainCodeSize+offsetCodeSize+lowOffsetCodeSize])
	ok = ok && d.lengthCode.build(d.lengthTable[mainCodeSize+offsetCodeSize+lowOffsetCodeSize:])

	if !ok {
		return ErrorHuffmanInvalid.Error(nil)
	}

	if d.win.window == nil {
		var size int64

		if unpSize >= dictionaryMax {
			size = dictionaryMax
		} else {
			size = int64(fls(uint(unpSize)) << 1)
			// floor beyond the reference sizing: a near zero unpacked
			// size must still leave room for match offsets
			if size < 0x1000 {
				size = 0x1000
			}
		}

		d.win.window = make([]byte, size)
		d.win.mask = size - 1
	}

	d.startNewTable = false

	return nil
}

// expand drives the LZSS state machine until the window position
// reaches end or a block boundary asks for new tables.
func (d *decode) expand(end int64) (int64, error) {
	for {
		if d.pendingMatch && d.win.pos+int64(d.lastLength) <= end {
			d.win.emitMatch(d.lastOffset, d.lastLength)
			d.pendingMatch = false
		}

		if d.pendingMatch || d.win.pos >= end {
			return d.win.pos, nil
		}

		if d.br.eof {
			return d.win.pos, ErrorTruncated.Error(nil)
		}

		symbol := d.mainCode.decode(d.br)
		if symbol < 0 {
			return d.win.pos, ErrorHuffmanInvalid.Error(nil)
		}

		var (
			offs int
			ln   int
		)

		switch {
		case symbol < 256:
			d.win.emitLiteral(byte(symbol))
			continue

		case symbol == 256:
			if d.br.bit() == 0 {
				// block ends here; the next bit says whether fresh
				// tables precede the next block
				d.startNewBlock = true
				d.startNewTable = d.br.bit() != 0
				return d.win.pos, nil
			}

			if e := d.parseCodes(0); e != nil {
				return d.win.pos, e
			}
			continue

		case symbol == 257:
			return d.win.pos, ErrorFilterUnsupported.Error(nil)

		case symbol == 258:
			if d.lastLength == 0 {
				continue
			}

			offs = d.lastOffset
			ln = d.lastLength

		case symbol <= 262:
			idx := symbol - 259
			offs = d.oldOffset[idx]

			lensym := d.lengthCode.decode(d.br)
			if lensym < 0 || lensym >= lengthCodeSize {
				return d.win.pos, ErrorHuffmanInvalid.Error(nil)
			}

			ln = lengthBases[lensym] + 2
			if lengthBits[lensym] > 0 {
				ln += int(d.br.bits(lengthBits[lensym]))
			}

			for i := idx; i > 0; i-- {
				d.oldOffset[i] = d.oldOffset[i-1]
			}
			d.oldOffset[0] = offs

		case symbol <= 270:
			idx := symbol - 263
			offs = shortBases[idx] + 1

			if shortBits[idx] > 0 {
				offs += int(d.br.bits(shortBits[idx]))
			}

			ln = 2

			for i := 3; i > 0; i-- {
				d.oldOffset[i] = d.oldOffset[i-1]
			}
			d.oldOffset[0] = offs

		default:
			idx := symbol - 271
			if idx >= lengthCodeSize {
				return d.win.pos, ErrorHuffmanInvalid.Error(nil)
			}

			ln = lengthBases[idx] + 3
			if lengthBits[idx] > 0 {
				ln += int(d.br.bits(lengthBits[idx]))
			}

			offsym := d.offsetCode.decode(d.br)
			if offsym < 0 || offsym >= offsetCodeSize {
				return d.win.pos, ErrorHuffmanInvalid.Error(nil)
			}

			offs = offsetBases[offsym] + 1

			if offsetBits[offsym] > 0 {
				if offsym > 9 {
					if offsetBits[offsym] > 4 {
						offs += int(d.br.bits(offsetBits[offsym]-4)) << 4
					}

					if d.lowOffsetReps > 0 {
						d.lowOffsetReps--
						offs += d.lastLowOffset
					} else {
						low := d.lowOffsetCode.decode(d.br)
						if low < 0 {
							return d.win.pos, ErrorHuffmanInvalid.Error(nil)
						}

						if low == 16 {
							d.lowOffsetReps = 15
							offs += d.lastLowOffset
						} else {
							offs += low
							d.lastLowOffset = low
						}
					}
				} else {
					offs += int(d.br.bits(offsetBits[offsym]))
				}
			}

			if offs >= 0x40000 {
				ln++
			}
			if offs >= 0x2000 {
				ln++
			}

			for i := 3; i > 0; i-- {
				d.oldOffset[i] = d.oldOffset[i-1]
			}
			d.oldOffset[0] = offs
		}

		d.lastOffset = offs
		d.lastLength = ln
		d.pendingMatch = true
	}
}
