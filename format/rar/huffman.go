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
	maxCodeLength = 15
	tableDepth    = 10
)

// huffmanCode is a canonical code built once per block: a lookup table
// of depth ten for the common case, with a count/bound walk for deeper
// codes. Codes are assigned in increasing symbol order per length.
type huffmanCode struct {
	// fast path: packed (length<<16 | symbol), zero when unmapped
	table []uint32

	// slow path: canonical bounds per length
	count  [maxCodeLength + 1]int
	first  [maxCodeLength + 1]uint32
	offset [maxCodeLength + 1]int
	sorted []int
	empty  bool
}

// build constructs the code from the given per symbol lengths.
func (h *huffmanCode) build(lengths []byte) bool {
	for i := range h.count {
		h.count[i] = 0
	}

	total := 0
	for _, l := range lengths {
		if l > maxCodeLength {
			return false
		}
		if l > 0 {
			h.count[l]++
			total++
		}
	}

	h.empty = total == 0
	if h.empty {
		return true
	}

	// canonical first codes and symbol offsets per length
	var code uint32
	idx := 0

	for l := 1; l <= maxCodeLength; l++ {
		h.first[l] = code
		h.offset[l] = idx
		code = (code + uint32(h.count[l])) << 1
		idx += h.count[l]
	}

	// over-subscribed code set
	if h.first[maxCodeLength]+uint32(h.count[maxCodeLength]) > 1<<maxCodeLength {
		return false
	}

	h.sorted = make([]int, total)
	pos := make([]int, maxCodeLength+1)
	copy(pos, h.offset[:])

	for sym, l := range lengths {
		if l > 0 {
			h.sorted[pos[l]] = sym
			pos[l]++
		}
	}

	h.makeTable()

	return true
}

// makeTable fills the depth limited fast lookup table.
func (h *huffmanCode) makeTable() {
	h.table = make([]uint32, 1<<tableDepth)

	for l := 1; l <= tableDepth; l++ {
		c := h.first[l]

		for i := 0; i < h.count[l]; i++ {
			var (
				sym   = h.sorted[h.offset[l]+i]
				base  = c << (tableDepth - uint(l))
				reps  = uint32(1) << (tableDepth - uint(l))
				entry = uint32(l)<<16 | uint32(sym)
			)

			for r := uint32(0); r < reps; r++ {
				h.table[base+r] = entry
			}

			c++
		}
	}
}

// decode reads one symbol from the bit reader. It peeks up to ten bits
// through the fast table and falls back to the canonical walk for
// longer codes. Returns a negative value on a damaged code.
func (h *huffmanCode) decode(br *bitReader) int {
	if h.empty {
		return -1
	}

	// fast path needs a full lookahead window
	for br.have < tableDepth && !br.eof {
		if !br.fillByte() {
			break
		}
	}

	if br.have >= tableDepth {
		w := (br.cur >> (br.have - tableDepth)) & (1<<tableDepth - 1)

		if e := h.table[w]; e != 0 {
			l := uint(e >> 16)
			br.have -= l
			br.cur &= (1 << br.have) - 1
			return int(e & 0xFFFF)
		}

		// deep code: the ten window bits are part of it, consume them
		// and keep walking bit by bit
		br.have -= tableDepth
		br.cur &= (1 << br.have) - 1

		code := w
		for l := uint(tableDepth + 1); l <= maxCodeLength; l++ {
			code = code<<1 | br.bit()

			if cnt := h.count[l]; cnt > 0 {
				if d := code - h.first[l]; d < uint32(cnt) {
					return h.sorted[h.offset[l]+int(d)]
				}
			}
		}

		return -1
	}

	// near end of stream: bit by bit walk from scratch
	var code uint32

	for l := uint(1); l <= maxCodeLength; l++ {
		code = code<<1 | br.bit()

		if cnt := h.count[l]; cnt > 0 {
			if d := code - h.first[l]; d < uint32(cnt) {
				return h.sorted[h.offset[l]+int(d)]
			}
		}
	}

	return -1
}
