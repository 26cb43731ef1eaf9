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

// Package ab reads and writes the Android backup envelope: a four line
// text header followed by the payload, zlib compressed when the header
// compression flag is set. Encrypted backups are rejected.
package ab

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/zlib"
)

const Magic = "ANDROID BACKUP"

var (
	ErrMagic     = errors.New("ab: invalid android backup magic")
	ErrEncrypted = errors.New("ab: encrypted backup is not supported")
	ErrHeader    = errors.New("ab: malformed header line")
)

// NewReader parses the envelope header and returns a reader over the
// decompressed payload.
func NewReader(src io.Reader) (io.Reader, error) {
	br := bufio.NewReader(src)

	line := func() ([]byte, error) {
		l, e := br.ReadBytes('\n')
		if e != nil {
			return nil, ErrHeader
		}
		return bytes.TrimRight(l, "\n"), nil
	}

	m, e := line()
	if e != nil {
		return nil, e
	} else if !bytes.Equal(m, []byte(Magic)) {
		return nil, ErrMagic
	}

	if _, e = line(); e != nil { // version
		return nil, e
	}

	cmp, e := line()
	if e != nil {
		return nil, e
	}

	enc, e := line()
	if e != nil {
		return nil, e
	} else if !bytes.Equal(enc, []byte("none")) {
		return nil, ErrEncrypted
	}

	if v, _ := strconv.Atoi(string(cmp)); v != 0 {
		return zlib.NewReader(br)
	}

	return br, nil
}

type writer struct {
	dst     io.Writer
	zw      *zlib.Writer
	version int
	level   int
	started bool
}

// NewWriter returns a writer emitting the envelope header on first
// write, compressing the payload when level is non zero.
func NewWriter(dst io.Writer, version, level int) io.WriteCloser {
	return &writer{dst: dst, version: version, level: level}
}

func (w *writer) Write(p []byte) (int, error) {
	if !w.started {
		c := 0
		if w.level != 0 {
			c = 1
		}

		h := fmt.Sprintf("%s\n%d\n%d\n%s\n", Magic, w.version, c, "none")
		if _, e := io.WriteString(w.dst, h); e != nil {
			return 0, e
		}

		if w.level != 0 {
			zw, e := zlib.NewWriterLevel(w.dst, w.level)
			if e != nil {
				return 0, e
			}
			w.zw = zw
		}

		w.started = true
	}

	if w.zw != nil {
		return w.zw.Write(p)
	}

	return w.dst.Write(p)
}

func (w *writer) Close() error {
	if w.zw != nil {
		return w.zw.Close()
	}

	return nil
}
