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

// Package matcher implements predicate combinators applied to entries
// during read: reference time comparisons (newer / older than a given
// mtime or ctime), glob based name inclusion and exclusion, and a
// pathname specific mtime table overriding the global newer reference.
package matcher

import (
	libent "github.com/nabbar/arcengine/entry"
)

type Matcher interface {
	// NewerMTime keeps only entries whose mtime is strictly newer than
	// the reference. An entry equal to the reference is excluded.
	NewerMTime(sec, nsec int64)
	// NewerCTime keeps only entries whose ctime is strictly newer.
	NewerCTime(sec, nsec int64)
	// OlderMTime keeps only entries whose mtime is strictly older than
	// the reference. An entry equal to the reference is excluded.
	OlderMTime(sec, nsec int64)
	// OlderCTime keeps only entries whose ctime is strictly older.
	OlderCTime(sec, nsec int64)

	// PathNewerMTime records a per-pathname newer-mtime reference which
	// overrides the global newer-mtime for that pathname.
	PathNewerMTime(path string, sec, nsec int64)

	// IncludePattern restricts matching names to the given glob set.
	IncludePattern(pattern string) error
	// ExcludePattern rejects names matching the given glob.
	ExcludePattern(pattern string) error

	// ExcludedTime reports whether the time predicates reject the entry.
	ExcludedTime(e *libent.Entry) bool
	// ExcludedName reports whether the name predicates reject the path.
	ExcludedName(path string) bool
	// Excluded combines all predicates.
	Excluded(e *libent.Entry) bool

	// IsEmpty reports whether no predicate is installed.
	IsEmpty() bool
}

func New() Matcher {
	return &match{
		pathMTime: make(map[string]ref),
	}
}
