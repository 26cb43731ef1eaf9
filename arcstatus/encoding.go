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

package arcstatus

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Parse returns the Status matching the given string, or Ok.
func Parse(s string) Status {
	var sts = Ok
	if e := sts.UnmarshalText([]byte(s)); e != nil {
		return Ok
	} else {
		return sts
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// The parsing is case-insensitive and trims whitespace and quotes.
func (s *Status) UnmarshalText(b []byte) error {
	*s = Ok

	v := strings.TrimSpace(string(b))
	v = strings.Trim(v, "\"")
	v = strings.Trim(v, "'")
	v = strings.TrimSpace(v)

	for _, k := range List() {
		if strings.EqualFold(v, k.String()) {
			*s = k
			return nil
		}
	}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return append(append([]byte{'"'}, []byte(s.String())...), '"'), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Status) UnmarshalJSON(b []byte) error {
	var v string

	if n := []byte("null"); bytes.Equal(b, n) {
		*s = Ok
		return nil
	} else if err := json.Unmarshal(b, &v); err != nil {
		return err
	} else {
		return s.UnmarshalText([]byte(v))
	}
}
