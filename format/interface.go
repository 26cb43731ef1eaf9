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

// Package format holds the codec registry and the bid contest by which
// a stream self identifies. Each registered format supplies a
// capability set: bidder, reader constructor, and optionally a writer
// constructor. There is no separate option handler: options reach the
// constructors as a key/value map. Variant enums are deliberately
// not used for dispatch: the format set is extensible at library user
// time, the caller registers what it wants to support.
package format

import (
	"io"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	"github.com/nabbar/arcengine/charset"
	libent "github.com/nabbar/arcengine/entry"
	liberr "github.com/nabbar/arcengine/errors"
	libios "github.com/nabbar/arcengine/iostream"
)

// Reader is the per stream codec state machine of one format. After
// Next returns Ok, ReadBlock delivers that entry's payload
// until Eof; a new Next call implicitly skips any unread payload.
type Reader interface {
	io.Closer

	// Next parses the next header into the given entry. It returns Eof
	// past the last entry, Failed when the current entry cannot proceed
	// but the next may, and Fatal when the stream is wedged.
	Next(e *libent.Entry) (arcsts.Status, liberr.Error)

	// ReadBlock returns the next borrowed block of the current entry
	// payload and its offset within the entry. The slice is invalidated
	// by any subsequent call on the reader.
	ReadBlock() ([]byte, int64, arcsts.Status, liberr.Error)

	// SkipData drops the remainder of the current entry payload.
	SkipData() (arcsts.Status, liberr.Error)
}

// Writer is the per stream encoder of one format.
type Writer interface {
	// WriteHeader starts a new entry. Any unfinished previous entry is
	// completed first.
	WriteHeader(e *libent.Entry) (arcsts.Status, liberr.Error)

	// Write appends payload bytes to the started entry.
	Write(p []byte) (int, error)

	// Close completes the last entry, writes the format trailer and
	// flushes everything to the destination.
	Close() (arcsts.Status, liberr.Error)
}

// FuncBid evaluates a non consuming bid over the stream. The current
// best bid is passed as a hint so a bidder can return early when it
// cannot beat it. A negative return means "cannot bid".
type FuncBid func(s libios.Stream, best int) int

// FuncReaderInit builds the reader once the format has won the contest.
type FuncReaderInit func(s libios.Stream, cc *charset.Cache, opt map[string]string) (Reader, liberr.Error)

// FuncWriterInit builds a writer over the destination.
type FuncWriterInit func(w io.Writer, opt map[string]string) (Writer, liberr.Error)

// Capability is the registered codec entry of one format.
type Capability struct {
	Algo   Algorithm
	Bid    FuncBid
	Init   FuncReaderInit
	Writer FuncWriterInit
}
