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

// Package filter implements the byte level stream filters of the
// engine and their bid contest. Filter bidders run before any format
// bid: when a filter wins it is pushed onto the chain and bidding
// restarts on the now decoded stream, until a full round produces no
// new filter.
package filter

import (
	liberr "github.com/nabbar/arcengine/errors"
	arcprg "github.com/nabbar/arcengine/filter/program"
	libios "github.com/nabbar/arcengine/iostream"
)

// peekWindow is how far a filter bidder may look into the stream. The
// uu bidder scans for a begin line, everything else needs a handful of
// bytes.
const peekWindow = 8 * 1024

// maxRounds caps chain growth so a pathological input cannot stack
// filters forever.
const maxRounds = 25

// Link is one applied filter of a chain: the outermost link is nearest
// to the caller, the innermost nearest to the raw source.
type Link struct {
	Algo    Algorithm
	counter *libios.Counter
}

// Name returns the filter name of the link.
func (l Link) Name() string {
	return l.Algo.String()
}

// Count returns the bytes this link has delivered so far.
func (l Link) Count() int64 {
	if l.counter == nil {
		return 0
	}

	return l.counter.Count()
}

// Bidders returns the algorithms taking part in the read side contest,
// in registration order. Program never bids.
func Bidders() []Algorithm {
	return []Algorithm{
		Gzip,
		Bzip2,
		XZ,
		LZMA,
		LZ4,
		Compress,
		UUdecode,
		Rpm,
		AndroidBackup,
	}
}

// BestBid runs one bidding round over the peeked header and returns
// the winning algorithm, or None. Ties break by registration order:
// the first registered bidder keeps the crown.
func BestBid(h []byte) (Algorithm, int) {
	var (
		win  = None
		best = 0
	)

	for _, a := range Bidders() {
		if b := a.Bid(h); b > best {
			win = a
			best = b
		}
	}

	return win, best
}

// Detect runs the filter contest over the given stream, pushing links
// until a round produces no bid, and returns the fully decoded stream
// plus the applied chain. The outermost filter is first in the chain.
func Detect(s libios.Stream) (libios.Stream, []Link, liberr.Error) {
	var chain []Link

	for round := 0; round < maxRounds; round++ {
		h, e := s.Peek(peekWindow)
		if len(h) == 0 && e != nil {
			// empty source: no filter can bid
			return s, chain, nil
		}

		a, bid := BestBid(h)
		if a == None || bid <= 0 {
			return s, chain, nil
		}

		r, err := a.Reader(s)
		if err != nil {
			return s, chain, ErrorFilterOpen.ErrorParent(err)
		}

		c := libios.NewCounter(r)
		chain = append([]Link{{Algo: a, counter: c}}, chain...)
		s = libios.NewReader(c)
	}

	return s, chain, nil
}

// ApplyProgram pushes an explicit external program link onto the read
// chain. It takes part in no bidding.
func ApplyProgram(s libios.Stream, name string, args ...string) (libios.Stream, Link, liberr.Error) {
	r, e := arcprg.NewReader(s, name, args...)
	if e != nil {
		return s, Link{}, ErrorProgramRun.ErrorParent(e)
	}

	c := libios.NewCounter(r)

	return libios.NewReader(c), Link{Algo: Program, counter: c}, nil
}
