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

// Status is the severity of a completed handle operation.
//
// Ok means success. Warn means the data was recovered but with lost
// fidelity; the handle state is unchanged. Retry flags a transient
// filter condition and the same call may be retried. Failed means the
// current entry cannot proceed but the next header call may succeed.
// Eof is the natural end for the direction. Fatal wedges the handle:
// only Close or Free remain legal.
type Status int8

const (
	Fatal  Status = -30
	Failed Status = -25
	Warn   Status = -20
	Retry  Status = -10
	Ok     Status = 0
	Eof    Status = 1
)

func List() []Status {
	return []Status{
		Ok,
		Eof,
		Retry,
		Warn,
		Failed,
		Fatal,
	}
}

func (s Status) IsOk() bool {
	return s == Ok
}

// IsBlocking reports whether the handle cannot deliver more data in the
// current direction.
func (s Status) IsBlocking() bool {
	return s == Fatal || s == Eof
}

// Latches reports whether the status wedges the handle permanently.
func (s Status) Latches() bool {
	return s == Fatal
}

func (s Status) String() string {
	switch s {
	case Eof:
		return "eof"
	case Retry:
		return "retry"
	case Warn:
		return "warn"
	case Failed:
		return "failed"
	case Fatal:
		return "fatal"
	default:
		return "ok"
	}
}

// Worst returns the most severe of the two statuses.
func (s Status) Worst(o Status) Status {
	if o < s {
		return o
	}

	return s
}
