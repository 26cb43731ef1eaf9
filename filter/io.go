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

package filter

import (
	"io"

	bz2 "github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"

	arcab "github.com/nabbar/arcengine/filter/ab"
	arcrpm "github.com/nabbar/arcengine/filter/rpm"
	arcuud "github.com/nabbar/arcengine/filter/uudecode"
	arczcp "github.com/nabbar/arcengine/filter/zcompress"
)

func (a Algorithm) Reader(r io.Reader) (io.Reader, error) {
	switch a {
	case Gzip:
		return gzip.NewReader(r)
	case Bzip2:
		return bz2.NewReader(r, nil)
	case XZ:
		return xz.NewReader(r)
	case LZMA:
		return lzma.NewReader(r)
	case LZ4:
		return lz4.NewReader(r), nil
	case Compress:
		return arczcp.NewReader(r)
	case UUdecode:
		return arcuud.NewReader(r)
	case Rpm:
		return arcrpm.NewReader(r)
	case AndroidBackup:
		return arcab.NewReader(r)
	case None:
		return r, nil
	default:
		return nil, ErrorInvalidAlgorithm.Error(nil)
	}
}

func (a Algorithm) Writer(w io.Writer) (io.WriteCloser, error) {
	switch a {
	case Gzip:
		return gzip.NewWriter(w), nil
	case Bzip2:
		return bz2.NewWriter(w, nil)
	case XZ:
		return xz.NewWriter(w)
	case LZMA:
		return lzma.NewWriter(w)
	case LZ4:
		return lz4.NewWriter(w), nil
	case AndroidBackup:
		return arcab.NewWriter(w, 5, 6), nil
	case None:
		return newWCloser(w), nil
	default:
		return nil, ErrorInvalidAlgorithm.Error(nil)
	}
}

type writeCloser struct {
	io.Writer
}

func (w *writeCloser) Close() error {
	return nil
}

func newWCloser(w io.Writer) io.WriteCloser {
	return &writeCloser{Writer: w}
}
