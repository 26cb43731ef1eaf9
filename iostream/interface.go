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

// Package iostream implements the block I/O layer under the codecs: a
// read-ahead stream over any byte source, the caller supplied callback
// contract, and the per-link byte counters of the filter chain.
//
// Codecs peek without consuming while bidding, then consume as they
// parse. Pointers returned by Peek borrow the internal buffer and are
// invalidated by any call that can advance the stream.
package iostream

import (
	"bytes"
	"io"
	"os"
)

// FuncRead is the caller supplied reader callback. It returns the next
// contiguous chunk, nil at EOF, or an error. The returned buffer must
// remain valid until the next call or close.
type FuncRead func() ([]byte, error)

// FuncSkip is the caller supplied skipper callback. It returns the
// count actually skipped, which may be less than requested; zero means
// skipping is unsupported.
type FuncSkip func(n int64) (int64, error)

// FuncClose is the caller supplied closer callback.
type FuncClose func() error

// Stream is the read side block interface handed to bidders and codecs.
// It implements io.ByteReader so a decompressor layered on top reads
// exactly the bytes it needs, leaving the stream positioned on the
// first byte after the compressed run.
type Stream interface {
	io.Reader
	io.ByteReader
	io.Closer

	// Peek returns up to n bytes without consuming them. At EOF fewer
	// bytes are returned. The slice borrows the internal buffer.
	Peek(n int) ([]byte, error)
	// Consume drops n previously peeked bytes.
	Consume(n int) error
	// ReadFull fills p entirely or returns ErrorTruncated.
	ReadFull(p []byte) error
	// Skip discards n bytes, using the source skipper when available.
	Skip(n int64) (int64, error)

	// IsSeekable reports whether SeekAbs and Size are usable.
	IsSeekable() bool
	// Size returns the total source size for seekable sources.
	Size() (int64, error)
	// SeekAbs repositions a seekable source, dropping the read-ahead.
	SeekAbs(off int64) error

	// Tell returns the position consumed so far from the source.
	Tell() int64
}

// NewReader wraps any io.Reader as a Stream. The stream is seekable
// when the reader also implements io.Seeker.
func NewReader(r io.Reader) Stream {
	s := &stream{src: r}

	if sk, k := r.(io.Seeker); k {
		s.sek = sk
	}

	return s
}

// NewFile opens the given path as a seekable Stream.
func NewFile(path string) (Stream, error) {
	// #nosec
	h, e := os.Open(path)
	if e != nil {
		return nil, ErrorFileOpen.ErrorParent(e)
	}

	return NewReader(h), nil
}

// NewFd wraps an already open file descriptor.
func NewFd(fd uintptr, name string) Stream {
	return NewReader(os.NewFile(fd, name))
}

// NewMemory wraps an in-memory buffer as a seekable Stream.
func NewMemory(p []byte) Stream {
	return NewReader(bytes.NewReader(p))
}

// NewCallback builds a Stream over the caller supplied callback set.
// Skipper and closer may be nil.
func NewCallback(rd FuncRead, sk FuncSkip, cl FuncClose) Stream {
	return &stream{src: &callbackReader{rd: rd}, skp: sk, cls: cl}
}
