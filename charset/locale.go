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
	"os"
	"strings"
)

const (
	// Utf8 is the canonical name of the UTF-8 charset.
	Utf8 = "UTF-8"
)

// CurrentLocaleCharset returns the charset name of the current process
// locale, resolved from LC_ALL then LC_CTYPE then LANG. An unset or "C"
// locale resolves to UTF-8.
func CurrentLocaleCharset() string {
	for _, k := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		v := os.Getenv(k)

		if v == "" {
			continue
		} else if v == "C" || v == "POSIX" {
			return Utf8
		}

		if i := strings.IndexByte(v, '.'); i >= 0 {
			v = v[i+1:]
			if j := strings.IndexByte(v, '@'); j >= 0 {
				v = v[:j]
			}
			return v
		}

		return Utf8
	}

	return Utf8
}

// IsUtf8Name reports whether the given charset name means UTF-8.
func IsUtf8Name(name string) bool {
	n := strings.ReplaceAll(strings.ToUpper(name), "-", "")
	n = strings.ReplaceAll(n, "_", "")
	return n == "UTF8" || n == "CSUTF8"
}
