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
	libent "github.com/nabbar/arcengine/entry"
)

type ref struct {
	sec  int64
	nsec int64
	set  bool
}

func (m *match) NewerMTime(sec, nsec int64) {
	m.newerM = ref{sec: sec, nsec: nsec, set: true}
}

func (m *match) NewerCTime(sec, nsec int64) {
	m.newerC = ref{sec: sec, nsec: nsec, set: true}
}

func (m *match) OlderMTime(sec, nsec int64) {
	m.olderM = ref{sec: sec, nsec: nsec, set: true}
}

func (m *match) OlderCTime(sec, nsec int64) {
	m.olderC = ref{sec: sec, nsec: nsec, set: true}
}

func (m *match) PathNewerMTime(path string, sec, nsec int64) {
	m.pathMTime[path] = ref{sec: sec, nsec: nsec, set: true}
}

// ExcludedTime applies the comparison rules at nanosecond granularity:
// a newer predicate excludes entries at or before its reference, an
// older predicate excludes entries at or after its reference.
func (m *match) ExcludedTime(e *libent.Entry) bool {
	if e == nil {
		return false
	}

	newerM := m.newerM

	if r, ok := m.pathMTime[e.Pathname()]; ok {
		newerM = r
	}

	if newerM.set && e.MTime().IsSet() {
		if !e.MTime().After(newerM.sec, newerM.nsec) {
			return true
		}
	}

	if m.newerC.set && e.CTime().IsSet() {
		if !e.CTime().After(m.newerC.sec, m.newerC.nsec) {
			return true
		}
	}

	if m.olderM.set && e.MTime().IsSet() {
		if !e.MTime().Before(m.olderM.sec, m.olderM.nsec) {
			return true
		}
	}

	if m.olderC.set && e.CTime().IsSet() {
		if !e.CTime().Before(m.olderC.sec, m.olderC.nsec) {
			return true
		}
	}

	return false
}
