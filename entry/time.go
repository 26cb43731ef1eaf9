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

package entry

import "time"

// TimeSpec is a tri-state timestamp: unset, seconds only, or seconds
// plus nanoseconds. Readers preserve the fidelity present in the source
// format; writers emit only what the target format can represent.
type TimeSpec struct {
	sec  int64
	nsec int64
	set  bool
	nset bool
}

func (t TimeSpec) IsSet() bool {
	return t.set
}

func (t TimeSpec) HasNanos() bool {
	return t.set && t.nset
}

func (t TimeSpec) Unix() int64 {
	return t.sec
}

func (t TimeSpec) Nanos() int64 {
	if t.nset {
		return t.nsec
	}

	return 0
}

// Time returns the value as a time.Time; the zero time when unset.
func (t TimeSpec) Time() time.Time {
	if !t.set {
		return time.Time{}
	}

	return time.Unix(t.sec, t.Nanos())
}

// Before reports strict less-than at nanosecond granularity.
func (t TimeSpec) Before(sec, nsec int64) bool {
	return t.sec < sec || (t.sec == sec && t.Nanos() < nsec)
}

// After reports strict greater-than at nanosecond granularity.
func (t TimeSpec) After(sec, nsec int64) bool {
	return t.sec > sec || (t.sec == sec && t.Nanos() > nsec)
}

// NewTimeSec returns a seconds-only TimeSpec.
func NewTimeSec(sec int64) TimeSpec {
	return TimeSpec{sec: sec, set: true}
}

// NewTimeSpec returns a full resolution TimeSpec.
func NewTimeSpec(sec, nsec int64) TimeSpec {
	return TimeSpec{sec: sec, nsec: nsec, set: true, nset: true}
}

// NewTime returns a full resolution TimeSpec from a time.Time.
func NewTime(t time.Time) TimeSpec {
	if t.IsZero() {
		return TimeSpec{}
	}

	return NewTimeSpec(t.Unix(), int64(t.Nanosecond()))
}
