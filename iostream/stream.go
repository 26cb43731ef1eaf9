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

package iostream

import (
	"io"
)

const skipChunk = 64 * 1024

type stream struct {
	src io.Reader
	sek io.Seeker
	skp FuncSkip
	cls FuncClose

	buf []byte
	pos int64
	eof bool
}

func (s *stream) fill(n int) error {
	for len(s.buf) < n && !s.eof {
		var (
			tmp = make([]byte, n-len(s.buf))
			r   int
			e   error
		)

		r, e = s.src.Read(tmp)
		if r > 0 {
			s.buf = append(s.buf, tmp[:r]...)
		}

		if e == io.EOF {
			s.eof = true
		} else if e != nil {
			return ErrorRead.ErrorParent(e)
		}
	}

	return nil
}

func (s *stream) Peek(n int) ([]byte, error) {
	if e := s.fill(n); e != nil {
		return nil, e
	}

	if len(s.buf) < n {
		return s.buf, io.EOF
	}

	return s.buf[:n], nil
}

func (s *stream) Consume(n int) error {
	if e := s.fill(n); e != nil {
		return e
	}

	if len(s.buf) < n {
		return ErrorTruncated.Error(nil)
	}

	s.buf = s.buf[n:]
	s.pos += int64(n)

	return nil
}

func (s *stream) Read(p []byte) (int, error) {
	if len(s.buf) > 0 {
		n := copy(p, s.buf)
		s.buf = s.buf[n:]
		s.pos += int64(n)
		return n, nil
	}

	if s.eof {
		return 0, io.EOF
	}

	n, e := s.src.Read(p)
	s.pos += int64(n)

	if e == io.EOF {
		s.eof = true
		if n > 0 {
			return n, nil
		}
		return 0, io.EOF
	}

	return n, e
}

func (s *stream) ReadByte() (byte, error) {
	if len(s.buf) > 0 {
		c := s.buf[0]
		s.buf = s.buf[1:]
		s.pos++
		return c, nil
	}

	var b [1]byte

	for {
		n, e := s.src.Read(b[:])

		if n > 0 {
			s.pos++
			return b[0], nil
		}

		if e == io.EOF {
			s.eof = true
			return 0, io.EOF
		} else if e != nil {
			return 0, e
		}
	}
}

func (s *stream) ReadFull(p []byte) error {
	if _, e := io.ReadFull(s, p); e == io.ErrUnexpectedEOF || e == io.EOF {
		return ErrorTruncated.ErrorParent(e)
	} else if e != nil {
		return ErrorRead.ErrorParent(e)
	}

	return nil
}

func (s *stream) Skip(n int64) (int64, error) {
	var done int64

	// drain the read-ahead first
	if l := int64(len(s.buf)); l > 0 {
		if l >= n {
			s.buf = s.buf[n:]
			s.pos += n
			return n, nil
		}

		s.buf = s.buf[:0]
		s.pos += l
		done = l
		n -= l
	}

	if s.skp != nil && !s.eof {
		r, e := s.skp(n)
		if e != nil {
			return done, ErrorSkip.ErrorParent(e)
		}

		s.pos += r
		done += r
		n -= r

		if n == 0 {
			return done, nil
		}
		// zero means the callback cannot skip, fall back to reading
	}

	if s.sek != nil && !s.eof {
		// clamp to the source end so a short skip reports its real count
		if cur, e := s.sek.Seek(0, io.SeekCurrent); e == nil {
			if end, e := s.sek.Seek(0, io.SeekEnd); e == nil {
				if end-cur < n {
					n = end - cur
				}
				if _, e = s.sek.Seek(cur+n, io.SeekStart); e == nil {
					s.pos += n
					return done + n, nil
				}
			}
		}
	}

	tmp := make([]byte, skipChunk)

	for n > 0 {
		c := n
		if c > skipChunk {
			c = skipChunk
		}

		r, e := s.Read(tmp[:c])
		done += int64(r)
		n -= int64(r)

		if e == io.EOF {
			return done, nil
		} else if e != nil {
			return done, ErrorSkip.ErrorParent(e)
		}
	}

	return done, nil
}

func (s *stream) IsSeekable() bool {
	return s.sek != nil
}

func (s *stream) Size() (int64, error) {
	if s.sek == nil {
		return 0, ErrorSeekUnsupported.Error(nil)
	}

	cur, e := s.sek.Seek(0, io.SeekCurrent)
	if e != nil {
		return 0, ErrorSeekUnsupported.ErrorParent(e)
	}

	end, e := s.sek.Seek(0, io.SeekEnd)
	if e != nil {
		return 0, ErrorSeekUnsupported.ErrorParent(e)
	}

	if _, e = s.sek.Seek(cur, io.SeekStart); e != nil {
		return 0, ErrorSeekUnsupported.ErrorParent(e)
	}

	return end, nil
}

func (s *stream) SeekAbs(off int64) error {
	if s.sek == nil {
		return ErrorSeekUnsupported.Error(nil)
	}

	if _, e := s.sek.Seek(off, io.SeekStart); e != nil {
		return ErrorSeekUnsupported.ErrorParent(e)
	}

	s.buf = s.buf[:0]
	s.eof = false
	s.pos = off

	return nil
}

func (s *stream) Tell() int64 {
	return s.pos
}

func (s *stream) Close() error {
	if s.cls != nil {
		return s.cls()
	}

	if c, k := s.src.(io.Closer); k {
		return c.Close()
	}

	return nil
}
