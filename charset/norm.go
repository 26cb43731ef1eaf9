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
	"runtime"

	"golang.org/x/text/unicode/norm"
)

// Ranges excluded from NFD conversion: precomposed compatibility forms
// that would not round trip through the filesystem layer.
func isNfdExcluded(r rune) bool {
	switch {
	case r >= 0x2000 && r <= 0x2FFF:
		return true
	case r >= 0xF900 && r <= 0xFAFF:
		return true
	case r >= 0x2F800 && r <= 0x2FAFF:
		return true
	}

	return false
}

// useNfd reports whether the running platform canonically stores NFD
// filenames at the filesystem layer.
func useNfd() bool {
	return runtime.GOOS == "darwin" || runtime.GOOS == "ios"
}

// NormalizeFileName converts an incoming UTF-8 filename to the
// normalization form expected by the platform filesystem: NFD on Apple
// platforms (with the excluded ranges left precomposed), NFC elsewhere.
func NormalizeFileName(p []byte) []byte {
	if useNfd() {
		return normalizeNfdExcluded(p)
	}

	return norm.NFC.Bytes(p)
}

// NormalizeNFC always returns the NFC form.
func NormalizeNFC(p []byte) []byte {
	return norm.NFC.Bytes(p)
}

// NormalizeNFDExcluded always returns the NFD form with the excluded
// ranges left precomposed. Exported for roundtrip testing.
func NormalizeNFDExcluded(p []byte) []byte {
	return normalizeNfdExcluded(p)
}

// normalizeNfdExcluded decomposes run by run: maximal segments of
// non-excluded runes go through NFD, excluded runes are copied verbatim
// so they keep their precomposed form.
func normalizeNfdExcluded(p []byte) []byte {
	var (
		out = make([]byte, 0, len(p)+len(p)/4)
		seg = make([]byte, 0, len(p))
	)

	flush := func() {
		if len(seg) > 0 {
			out = append(out, norm.NFD.Bytes(seg)...)
			seg = seg[:0]
		}
	}

	for _, r := range string(p) {
		if isNfdExcluded(r) {
			flush()
			out = append(out, string(r)...)
		} else {
			seg = append(seg, string(r)...)
		}
	}

	flush()

	return out
}
