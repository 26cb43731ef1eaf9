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
	liberr "github.com/nabbar/arcengine/errors"
)

// population bitmask of a MultiString
const (
	hasMbs uint8 = 1 << iota
	hasUtf8
	hasWcs
)

// MultiString bundles the same textual value in up to three encodings:
// the bytes in a tagged charset (mbs), UTF-8 bytes, and decoded code
// points (wcs). Conversions between the forms are lazy and memoized;
// requesting an already populated form is O(1).
type MultiString struct {
	mbs  Buffer
	utf  Buffer
	wcs  WideBuffer
	have uint8
	cs   string
	cc   *Cache
}

// NewMultiString returns an empty MultiString using the given converter
// cache. A nil cache restricts the value to UTF-8 content only.
func NewMultiString(cc *Cache) *MultiString {
	return &MultiString{cc: cc}
}

// Reset empties all populated forms, keeping the storage.
func (m *MultiString) Reset() {
	m.mbs.Reset()
	m.utf.Reset()
	m.wcs.Reset()
	m.have = 0
	m.cs = ""
}

// IsSet reports whether any form is populated.
func (m *MultiString) IsSet() bool {
	return m.have != 0
}

// Charset returns the charset tag of the mbs form.
func (m *MultiString) Charset() string {
	return m.cs
}

// SetMbs stores raw bytes tagged with the given charset name and
// invalidates the other forms.
func (m *MultiString) SetMbs(p []byte, charset string) {
	m.Reset()
	m.mbs.SetBytes(p)
	m.cs = charset
	m.have = hasMbs
}

// SetUtf8 stores UTF-8 bytes and invalidates the other forms.
func (m *MultiString) SetUtf8(p []byte) {
	m.Reset()
	m.utf.SetBytes(p)
	m.have = hasUtf8
}

// SetString stores a native string and invalidates the other forms.
func (m *MultiString) SetString(s string) {
	m.Reset()
	m.utf.SetString(s)
	m.have = hasUtf8
}

// SetWcs stores decoded code points and invalidates the other forms.
func (m *MultiString) SetWcs(p []rune) {
	m.Reset()
	m.wcs.SetRunes(p)
	m.have = hasWcs
}

// Utf8 returns the UTF-8 form, converting and memoizing it if needed.
func (m *MultiString) Utf8() ([]byte, liberr.Error) {
	if m.have&hasUtf8 != 0 {
		return m.utf.Bytes(), nil
	}

	if m.have&hasWcs != 0 {
		m.utf.SetString(m.wcs.String())
		m.have |= hasUtf8
		return m.utf.Bytes(), nil
	}

	if m.have&hasMbs != 0 {
		if m.cs == "" || IsUtf8Name(m.cs) {
			m.utf.SetBytes(m.mbs.Bytes())
			m.have |= hasUtf8
			return m.utf.Bytes(), nil
		}

		if m.cc == nil {
			return nil, ErrorCharsetUnknown.Error(nil)
		}

		c, err := m.cc.Get(m.cs)
		if err != nil {
			return nil, err
		}

		b, err := c.Decode(m.mbs.Bytes())
		if b == nil {
			return nil, err
		}

		m.utf.SetBytes(b)
		m.have |= hasUtf8

		// err may carry a partial-conversion warning
		return m.utf.Bytes(), err
	}

	return nil, nil
}

// Wcs returns the wide form, converting and memoizing it if needed.
func (m *MultiString) Wcs() ([]rune, liberr.Error) {
	if m.have&hasWcs != 0 {
		return m.wcs.Runes(), nil
	}

	b, err := m.Utf8()
	if b == nil {
		return nil, err
	}

	m.wcs.SetRunes([]rune(string(b)))
	m.have |= hasWcs

	return m.wcs.Runes(), err
}

// Mbs returns the bytes in the given charset, converting through the
// canonical path (utf8 -> target) and memoizing the result.
func (m *MultiString) Mbs(charset string) ([]byte, liberr.Error) {
	if m.have&hasMbs != 0 && m.cs == charset {
		return m.mbs.Bytes(), nil
	}

	b, err := m.Utf8()
	if b == nil {
		return nil, err
	}

	if charset == "" || IsUtf8Name(charset) {
		m.mbs.SetBytes(b)
		m.cs = charset
		m.have |= hasMbs
		return m.mbs.Bytes(), err
	}

	if m.cc == nil {
		return nil, ErrorCharsetUnknown.Error(nil)
	}

	c, e := m.cc.Get(charset)
	if e != nil {
		return nil, e
	}

	r, e := c.Encode(b)
	if r == nil {
		return nil, e
	}

	m.mbs.SetBytes(r)
	m.cs = charset
	m.have |= hasMbs

	return m.mbs.Bytes(), liberr.MakeIfError(err, e)
}

// String returns the UTF-8 form as a native string, or empty.
func (m *MultiString) String() string {
	if b, _ := m.Utf8(); b != nil {
		return string(b)
	}

	return ""
}
