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

package format

import (
	arcsts "github.com/nabbar/arcengine/arcstatus"
	"github.com/nabbar/arcengine/charset"
	liberr "github.com/nabbar/arcengine/errors"
	libios "github.com/nabbar/arcengine/iostream"
)

// Registry is the ordered set of formats a handle supports. Ties in
// the bid contest break by registration order: first registered wins.
type Registry struct {
	caps []Capability
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a capability set. Legal only before the first bid.
func (r *Registry) Register(c Capability) {
	r.caps = append(r.caps, c)
}

// Len returns the number of registered formats.
func (r *Registry) Len() int {
	return len(r.caps)
}

// Has reports whether the given format is registered.
func (r *Registry) Has(a Algorithm) bool {
	for _, c := range r.caps {
		if c.Algo == a {
			return true
		}
	}

	return false
}

// Bid runs the format contest over the stream. Bidders only peek; the
// read-ahead buffer is preserved across all of them. When no format
// bids positively the contest fails with ErrorNotRecognized, which the
// handle latches as fatal.
func (r *Registry) Bid(s libios.Stream) (Capability, liberr.Error) {
	var (
		win  Capability
		best = 0
	)

	for _, c := range r.caps {
		if c.Bid == nil {
			continue
		}

		if b := c.Bid(s, best); b > best {
			win = c
			best = b
		}
	}

	if best <= 0 {
		return Capability{}, ErrorNotRecognized.Error(nil)
	}

	return win, nil
}

// Open runs the contest and initializes the winning reader.
func (r *Registry) Open(s libios.Stream, cc *charset.Cache, opt map[string]string) (Algorithm, Reader, liberr.Error) {
	c, err := r.Bid(s)
	if err != nil {
		return None, nil, err
	}

	rd, err := c.Init(s, cc, opt)
	if err != nil {
		return None, nil, err
	}

	return c.Algo, rd, nil
}

// DiscardData drains the current entry payload for readers that
// implement SkipData over ReadBlock.
func DiscardData(rd Reader) (arcsts.Status, liberr.Error) {
	for {
		b, _, sts, err := rd.ReadBlock()

		switch {
		case sts == arcsts.Eof:
			return arcsts.Ok, nil
		case sts == arcsts.Fatal:
			return sts, err
		case sts == arcsts.Warn || sts == arcsts.Ok:
			_ = b
		default:
			return sts, err
		}
	}
}
