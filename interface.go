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

// Package arcengine exposes the public archive handles: streaming
// readers and writers over a family of container formats and byte
// level filters, a read-from-disk source and a restore-to-disk sink.
//
// A handle is a lifecycle state machine. Registration calls are legal
// in state New only; opening moves to Header; NextHeader alternates
// Header and Data until Eof. A fatal error latches the handle: only
// Close and Free stay legal. Handles are single threaded; distinct
// handles are independent.
package arcengine

import (
	libdsk "github.com/nabbar/arcengine/disk"
	liberr "github.com/nabbar/arcengine/errors"
	libfmt "github.com/nabbar/arcengine/format"
	arccab "github.com/nabbar/arcengine/format/cab"
	arccpo "github.com/nabbar/arcengine/format/cpio"
	arcrar "github.com/nabbar/arcengine/format/rar"
	arctar "github.com/nabbar/arcengine/format/tar"
	arczip "github.com/nabbar/arcengine/format/zip"
	libmtc "github.com/nabbar/arcengine/matcher"
)

type state uint8

const (
	stateNew state = iota
	stateHeader
	stateData
	stateEof
	stateFatal
	stateClosed
)

// NewReader constructs a reader handle in state New. Formats must be
// registered before opening; filters always take part in bidding.
func NewReader() Reader {
	return &reader{
		reg: libfmt.NewRegistry(),
	}
}

// NewWriter constructs a writer handle in state New.
func NewWriter() Writer {
	return &writer{}
}

// NewDiskSource opens the tree walker source rooted at the path.
func NewDiskSource(root string, opt libdsk.Options) (libdsk.Reader, liberr.Error) {
	return libdsk.New(root, opt)
}

// NewDiskSink opens the restore-to-disk sink under the path.
func NewDiskSink(root string, opt libdsk.WriterOptions) (libdsk.Writer, liberr.Error) {
	return libdsk.NewWriter(root, opt)
}

// NewMatcher returns an empty entry matcher usable on a reader handle.
func NewMatcher() libmtc.Matcher {
	return libmtc.New()
}

// SupportFormatAll registers every built-in format on the reader, in
// the canonical contest order. The seekable zip variant is registered
// before its streamable peer so it wins ties when seeking works.
func SupportFormatAll(r Reader) {
	r.SupportFormat(arczip.CapabilitySeek())
	r.SupportFormat(arczip.CapabilityStream())
	r.SupportFormat(arccab.Capability())
	r.SupportFormat(arcrar.Capability())
	r.SupportFormat(arctar.Capability())
	r.SupportFormat(arccpo.Capability())
}

// FormatZipSeek and friends re-export the built-in capabilities so a
// caller can register a subset.
func FormatZipSeek() libfmt.Capability   { return arczip.CapabilitySeek() }
func FormatZipStream() libfmt.Capability { return arczip.CapabilityStream() }
func FormatCab() libfmt.Capability       { return arccab.Capability() }
func FormatRar() libfmt.Capability       { return arcrar.Capability() }
func FormatTar() libfmt.Capability       { return arctar.Capability() }
func FormatCpio() libfmt.Capability      { return arccpo.Capability() }
