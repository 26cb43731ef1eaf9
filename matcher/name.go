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

package matcher

import (
	"github.com/bmatcuk/doublestar/v4"
	libent "github.com/nabbar/arcengine/entry"
)

type match struct {
	newerM ref
	newerC ref
	olderM ref
	olderC ref

	pathMTime map[string]ref

	include []string
	exclude []string
}

func (m *match) IncludePattern(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return doublestar.ErrBadPattern
	}

	m.include = append(m.include, pattern)
	return nil
}

func (m *match) ExcludePattern(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return doublestar.ErrBadPattern
	}

	m.exclude = append(m.exclude, pattern)
	return nil
}

func (m *match) ExcludedName(path string) bool {
	for _, p := range m.exclude {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}

	if len(m.include) == 0 {
		return false
	}

	for _, p := range m.include {
		if ok, _ := doublestar.Match(p, path); ok {
			return false
		}
	}

	return true
}

func (m *match) Excluded(e *libent.Entry) bool {
	if e == nil {
		return false
	}

	return m.ExcludedName(e.Pathname()) || m.ExcludedTime(e)
}

func (m *match) IsEmpty() bool {
	return !m.newerM.set && !m.newerC.set && !m.olderM.set && !m.olderC.set &&
		len(m.pathMTime) == 0 && len(m.include) == 0 && len(m.exclude) == 0
}
