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

package charset

import (
	"sync"

	liberr "github.com/nabbar/arcengine/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Converter holds both direction descriptors between one charset and
// UTF-8. Descriptors are resolved once and reused.
type Converter struct {
	name string
	enc  encoding.Encoding
}

// Name returns the charset name this converter was resolved for.
func (c *Converter) Name() string {
	return c.name
}

// Decode converts bytes in the converter charset into UTF-8 bytes.
// Invalid sequences are substituted and reported as a partial result.
func (c *Converter) Decode(p []byte) ([]byte, liberr.Error) {
	if c.enc == nil {
		return append([]byte(nil), p...), nil
	}

	if b, e := c.enc.NewDecoder().Bytes(p); e != nil {
		d := c.enc.NewDecoder()
		out := make([]byte, 0, len(p))

		for i := 0; i < len(p); i++ {
			if w, e1 := d.Bytes(p[i : i+1]); e1 == nil {
				out = append(out, w...)
			} else {
				out = append(out, '?')
			}
		}

		return out, ErrorConvertPartial.Error(e)
	} else {
		return b, nil
	}
}

// Encode converts UTF-8 bytes into the converter charset.
func (c *Converter) Encode(p []byte) ([]byte, liberr.Error) {
	if c.enc == nil {
		return append([]byte(nil), p...), nil
	}

	if b, e := encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes(p); e != nil {
		return nil, ErrorConvertFailed.ErrorParent(e)
	} else {
		return b, nil
	}
}

// lruSize is the number of resolved converters kept per cache.
// A miss evicts the slot not most recently used.
const lruSize = 2

// Cache is the per-handle converter cache of size two. It is safe for
// use from the single goroutine driving its archive handle; the mutex
// only guards against accidental cross handle sharing.
type Cache struct {
	m sync.Mutex
	s [lruSize]*Converter
}

// Get resolves the converter for the given charset name, reusing a
// cached descriptor when present.
func (o *Cache) Get(name string) (*Converter, liberr.Error) {
	o.m.Lock()
	defer o.m.Unlock()

	if o.s[0] != nil && o.s[0].name == name {
		return o.s[0], nil
	}

	if o.s[1] != nil && o.s[1].name == name {
		// promote to most recently used
		o.s[0], o.s[1] = o.s[1], o.s[0]
		return o.s[0], nil
	}

	c, err := resolve(name)
	if err != nil {
		return nil, err
	}

	// evict the slot not most recently used
	o.s[1] = o.s[0]
	o.s[0] = c

	return c, nil
}

// Close releases all cached descriptors.
func (o *Cache) Close() {
	o.m.Lock()
	defer o.m.Unlock()

	o.s[0] = nil
	o.s[1] = nil
}

func resolve(name string) (*Converter, liberr.Error) {
	if name == "" || IsUtf8Name(name) {
		return &Converter{name: name, enc: nil}, nil
	}

	switch name {
	case "UTF-16BE":
		return &Converter{
			name: name,
			enc:  unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
		}, nil
	case "UTF-16LE":
		return &Converter{
			name: name,
			enc:  unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
		}, nil
	}

	if e, err := ianaindex.IANA.Encoding(name); err != nil || e == nil {
		return nil, ErrorCharsetUnknown.ErrorParent(err)
	} else {
		return &Converter{name: name, enc: e}, nil
	}
}
