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

package filter

import "bytes"

type Algorithm uint8

const (
	None Algorithm = iota
	Gzip
	Bzip2
	XZ
	LZMA
	LZ4
	Compress
	UUdecode
	Rpm
	AndroidBackup
	Program
)

func List() []Algorithm {
	return []Algorithm{
		None,
		Gzip,
		Bzip2,
		XZ,
		LZMA,
		LZ4,
		Compress,
		UUdecode,
		Rpm,
		AndroidBackup,
		Program,
	}
}

func (a Algorithm) IsNone() bool {
	return a == None
}

func (a Algorithm) String() string {
	switch a {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case XZ:
		return "xz"
	case LZMA:
		return "lzma"
	case LZ4:
		return "lz4"
	case Compress:
		return "compress"
	case UUdecode:
		return "uu"
	case Rpm:
		return "rpm"
	case AndroidBackup:
		return "ab"
	case Program:
		return "program"
	default:
		return "none"
	}
}

func (a Algorithm) Extension() string {
	switch a {
	case Gzip:
		return ".gz"
	case Bzip2:
		return ".bz2"
	case XZ:
		return ".xz"
	case LZMA:
		return ".lzma"
	case LZ4:
		return ".lz4"
	case Compress:
		return ".Z"
	case Rpm:
		return ".rpm"
	case AndroidBackup:
		return ".ab"
	default:
		return ""
	}
}

const (
	// BidSignature is the floor for a unique signature match.
	BidSignature = 32
	// BidWeak is the ceiling for weak inference bids.
	BidWeak = 30
)

// Bid returns the confidence that the given header bytes open a stream
// of this algorithm, or a negative value when the algorithm cannot bid.
// A full signature match bids at least BidSignature; heuristics stay at
// or under BidWeak. The Program filter never bids: it is only attached
// explicitly by the caller.
func (a Algorithm) Bid(h []byte) int {
	switch a {
	case Gzip:
		if len(h) >= 3 && h[0] == 0x1F && h[1] == 0x8B && h[2] == 0x08 {
			return 48
		}

	case Bzip2:
		if len(h) >= 10 && h[0] == 'B' && h[1] == 'Z' && h[2] == 'h' &&
			h[3] >= '1' && h[3] <= '9' &&
			bytes.Equal(h[4:10], []byte{0x31, 0x41, 0x59, 0x26, 0x53, 0x59}) {
			return 80
		}

	case XZ:
		if len(h) >= 6 && bytes.Equal(h[0:6], []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}) {
			return 48
		}

	case LZMA:
		// legacy lzma has no magic: first byte encodes lc/lp/pb and
		// must stay under 9*5*5, followed by a plausible dict size
		if len(h) >= 5 && h[0] < 225 && h[0] != 0 {
			d := uint32(h[1]) | uint32(h[2])<<8 | uint32(h[3])<<16 | uint32(h[4])<<24
			if d != 0 && d&(d-1) == 0 && d <= 1<<27 {
				return 8
			}
		}

	case LZ4:
		if len(h) >= 4 && bytes.Equal(h[0:4], []byte{0x04, 0x22, 0x4D, 0x18}) {
			return 48
		}

	case Compress:
		if len(h) >= 2 && h[0] == 0x1F && h[1] == 0x9D {
			return 16
		}

	case UUdecode:
		if b := uuBid(h); b > 0 {
			return b
		}

	case Rpm:
		if len(h) >= 4 && bytes.Equal(h[0:4], []byte{0xED, 0xAB, 0xEE, 0xDB}) {
			return 64
		}

	case AndroidBackup:
		if len(h) >= 15 && bytes.Equal(h[0:15], []byte("ANDROID BACKUP\n")) {
			return 64
		}
	}

	return -1
}

// DetectHeader reports whether the header bytes match the algorithm.
func (a Algorithm) DetectHeader(h []byte) bool {
	return a.Bid(h) >= BidSignature
}

// uuBid scans the first lines for a uuencode or base64 begin marker.
func uuBid(h []byte) int {
	var (
		off   int
		limit = len(h)
	)

	for off < limit {
		end := bytes.IndexByte(h[off:], '\n')
		if end < 0 {
			break
		}

		line := h[off : off+end]
		off += end + 1

		if len(line) >= 11 && bytes.HasPrefix(line, []byte("begin ")) {
			if line[6] >= '0' && line[6] <= '7' &&
				line[7] >= '0' && line[7] <= '7' &&
				line[8] >= '0' && line[8] <= '7' && line[9] == ' ' {
				return 40
			}
		}

		if bytes.HasPrefix(line, []byte("begin-base64 ")) {
			return 40
		}
	}

	return -1
}
