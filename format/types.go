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

package format

import (
	"strings"
)

// Algorithm identifies a container format of the registry.
type Algorithm uint8

const (
	None Algorithm = iota
	Zip
	Cab
	Rar
	Tar
	Cpio
)

func List() []Algorithm {
	return []Algorithm{
		None,
		Zip,
		Cab,
		Rar,
		Tar,
		Cpio,
	}
}

func (a Algorithm) IsNone() bool {
	return a == None
}

func (a Algorithm) String() string {
	switch a {
	case Zip:
		return "zip"
	case Cab:
		return "cab"
	case Rar:
		return "rar"
	case Tar:
		return "tar"
	case Cpio:
		return "cpio"
	default:
		return "none"
	}
}

func (a Algorithm) Extension() string {
	switch a {
	case Zip:
		return ".zip"
	case Cab:
		return ".cab"
	case Rar:
		return ".rar"
	case Tar:
		return ".tar"
	case Cpio:
		return ".cpio"
	default:
		return ""
	}
}

// Parse returns the Algorithm matching the given string, or None.
func Parse(s string) Algorithm {
	v := strings.TrimSpace(strings.ToLower(s))

	for _, k := range List() {
		if k == None {
			continue
		} else if strings.EqualFold(v, k.String()) {
			return k
		}
	}

	return None
}
