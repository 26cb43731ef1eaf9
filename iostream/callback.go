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

import "io"

// callbackReader adapts the caller supplied chunk callback onto
// io.Reader. The chunk returned by the callback stays valid until the
// next call, so unread remainder is carried over between reads.
type callbackReader struct {
	rd   FuncRead
	keep []byte
	done bool
}

func (c *callbackReader) Read(p []byte) (int, error) {
	if len(c.keep) > 0 {
		n := copy(p, c.keep)
		c.keep = c.keep[n:]
		return n, nil
	}

	if c.done {
		return 0, io.EOF
	}

	for {
		b, e := c.rd()

		if e != nil {
			c.done = true
			return 0, ErrorCallback.ErrorParent(e)
		}

		if b == nil {
			c.done = true
			return 0, io.EOF
		}

		if len(b) == 0 {
			continue
		}

		n := copy(p, b)
		c.keep = b[n:]
		return n, nil
	}
}

// Counter counts the bytes flowing through one filter link.
type Counter struct {
	r io.Reader
	n int64
}

func NewCounter(r io.Reader) *Counter {
	return &Counter{r: r}
}

func (c *Counter) Read(p []byte) (int, error) {
	n, e := c.r.Read(p)
	c.n += int64(n)
	return n, e
}

// Count returns the bytes delivered so far.
func (c *Counter) Count() int64 {
	return c.n
}
