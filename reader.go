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

package arcengine

import (
	"io"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	"github.com/nabbar/arcengine/charset"
	libent "github.com/nabbar/arcengine/entry"
	liberr "github.com/nabbar/arcengine/errors"
	libflt "github.com/nabbar/arcengine/filter"
	libfmt "github.com/nabbar/arcengine/format"
	libios "github.com/nabbar/arcengine/iostream"
	libmtc "github.com/nabbar/arcengine/matcher"
	libopt "github.com/nabbar/arcengine/option"
)

// Reader is the public streaming read handle.
type Reader interface {
	// SupportFormat registers a format capability. Legal in New only.
	SupportFormat(c libfmt.Capability) liberr.Error
	// AddFilterProgram attaches an explicit external decoder program
	// in front of filter bidding. Legal in New only.
	AddFilterProgram(name string, args ...string) liberr.Error
	// SetOptions installs a "module:key=value,..." option string.
	SetOptions(s string) liberr.Error
	// SetMatcher installs an entry matcher; excluded entries are
	// silently skipped by NextHeader.
	SetMatcher(m libmtc.Matcher) liberr.Error

	// OpenFilename, OpenMemory, OpenReader and OpenCallback move the
	// handle from New to Header.
	OpenFilename(path string) liberr.Error
	OpenMemory(p []byte) liberr.Error
	OpenReader(r io.Reader) liberr.Error
	OpenCallback(rd libios.FuncRead, sk libios.FuncSkip, cl libios.FuncClose) liberr.Error

	// NextHeader returns the next entry. The returned entry is
	// borrowed: the next call recycles it.
	NextHeader() (*libent.Entry, arcsts.Status, liberr.Error)

	// ReadData copies payload bytes of the current entry into p.
	ReadData(p []byte) (int, arcsts.Status, liberr.Error)
	// ReadDataBlock returns a borrowed payload block and its offset.
	ReadDataBlock() ([]byte, int64, arcsts.Status, liberr.Error)
	// ReadDataSkip drops the rest of the current entry payload.
	ReadDataSkip() (arcsts.Status, liberr.Error)

	// FormatName returns the name of the format that won the bid.
	FormatName() string
	// FilterNames returns the applied filter chain, outermost first.
	FilterNames() []string
	// LastError returns the sticky handle error.
	LastError() liberr.Error

	// Close drains and closes the source. Free is implicit in Go; a
	// closed handle only accepts Close again.
	Close() error
}

type reader struct {
	st  state
	reg *libfmt.Registry
	cc  *charset.Cache
	mtc libmtc.Matcher
	opt libopt.Options

	program struct {
		name string
		args []string
	}

	s     libios.Stream
	chain []libflt.Link
	fmt   libfmt.Algorithm
	rd    libfmt.Reader
	ent   *libent.Entry

	bidDone bool
	lastErr liberr.Error

	pend struct {
		buf []byte
		off int64
	}
}

func (o *reader) fatal(err liberr.Error) (arcsts.Status, liberr.Error) {
	o.st = stateFatal
	o.lastErr = err
	return arcsts.Fatal, err
}

func (o *reader) SupportFormat(c libfmt.Capability) liberr.Error {
	if o.st != stateNew {
		return ErrorHandleState.Error(nil)
	}

	o.reg.Register(c)
	return nil
}

func (o *reader) AddFilterProgram(name string, args ...string) liberr.Error {
	if o.st != stateNew {
		return ErrorHandleState.Error(nil)
	}

	o.program.name = name
	o.program.args = args
	return nil
}

func (o *reader) SetOptions(s string) liberr.Error {
	if o.st != stateNew {
		return ErrorHandleState.Error(nil)
	}

	o.opt = libopt.Parse(s)
	return nil
}

func (o *reader) SetMatcher(m libmtc.Matcher) liberr.Error {
	if o.st != stateNew {
		return ErrorHandleState.Error(nil)
	}

	o.mtc = m
	return nil
}

func (o *reader) open(s libios.Stream) liberr.Error {
	if o.st != stateNew {
		return ErrorHandleState.Error(nil)
	}

	o.s = s
	o.cc = &charset.Cache{}
	o.ent = libent.New(o.cc)
	o.st = stateHeader

	return nil
}

func (o *reader) OpenFilename(path string) liberr.Error {
	s, e := libios.NewFile(path)
	if e != nil {
		return ErrorFileOpen.ErrorParent(e)
	}

	return o.open(s)
}

func (o *reader) OpenMemory(p []byte) liberr.Error {
	return o.open(libios.NewMemory(p))
}

func (o *reader) OpenReader(r io.Reader) liberr.Error {
	if r == nil {
		return ErrorParamEmpty.Error(nil)
	}

	return o.open(libios.NewReader(r))
}

func (o *reader) OpenCallback(rd libios.FuncRead, sk libios.FuncSkip, cl libios.FuncClose) liberr.Error {
	if rd == nil {
		return ErrorParamEmpty.Error(nil)
	}

	return o.open(libios.NewCallback(rd, sk, cl))
}

// bid runs the filter contest then the format contest, once, on the
// first header request.
func (o *reader) bid() (arcsts.Status, liberr.Error) {
	if o.reg.Len() == 0 {
		return o.fatal(ErrorNoFormat.Error(nil))
	}

	if o.program.name != "" {
		s, l, err := libflt.ApplyProgram(o.s, o.program.name, o.program.args...)
		if err != nil {
			return o.fatal(err)
		}

		o.s = s
		o.chain = append(o.chain, l)
	}

	s, chain, err := libflt.Detect(o.s)
	if err != nil {
		return o.fatal(err)
	}

	o.s = s
	o.chain = append(chain, o.chain...)

	algo, rd, err := o.reg.Open(o.s, o.cc, o.opt.For("format"))
	if err != nil {
		return o.fatal(err)
	}

	o.fmt = algo
	o.rd = rd
	o.bidDone = true

	return arcsts.Ok, nil
}

func (o *reader) NextHeader() (*libent.Entry, arcsts.Status, liberr.Error) {
	switch o.st {
	case stateHeader, stateData:
	case stateEof:
		return nil, arcsts.Eof, nil
	case stateFatal:
		return nil, arcsts.Fatal, o.lastErr
	default:
		return nil, arcsts.Fatal, ErrorHandleState.Error(nil)
	}

	if !o.bidDone {
		if sts, err := o.bid(); sts != arcsts.Ok {
			return nil, sts, err
		}
	}

	o.pend.buf = nil

	for {
		sts, err := o.rd.Next(o.ent)

		switch sts {
		case arcsts.Eof:
			o.st = stateEof
			return nil, arcsts.Eof, nil

		case arcsts.Fatal:
			s2, e2 := o.fatal(err)
			return nil, s2, e2

		case arcsts.Failed:
			// this entry is unusable, surface it so the caller can
			// decide to continue
			o.st = stateHeader
			return o.ent, sts, err

		case arcsts.Ok, arcsts.Warn:
			if o.mtc != nil && o.mtc.Excluded(o.ent) {
				if s2, e2 := o.rd.SkipData(); s2 == arcsts.Fatal {
					s3, e3 := o.fatal(e2)
					return nil, s3, e3
				}
				continue
			}

			o.st = stateData
			return o.ent, sts, err

		default:
			o.st = stateHeader
			return o.ent, sts, err
		}
	}
}

func (o *reader) ReadDataBlock() ([]byte, int64, arcsts.Status, liberr.Error) {
	if o.st != stateData {
		if o.st == stateFatal {
			return nil, 0, arcsts.Fatal, o.lastErr
		}
		return nil, 0, arcsts.Failed, ErrorHandleState.Error(nil)
	}

	b, off, sts, err := o.rd.ReadBlock()

	if sts == arcsts.Fatal {
		o.st = stateFatal
		o.lastErr = err
	}

	if sts == arcsts.Eof {
		o.st = stateHeader
	}

	return b, off, sts, err
}

// ReadData copies out of the block interface, buffering remainders
// between calls.
func (o *reader) ReadData(p []byte) (int, arcsts.Status, liberr.Error) {
	if len(o.pend.buf) == 0 {
		if o.st != stateData {
			if o.st == stateFatal {
				return 0, arcsts.Fatal, o.lastErr
			}
			return 0, arcsts.Eof, nil
		}

		b, _, sts, err := o.ReadDataBlock()

		if sts != arcsts.Ok && sts != arcsts.Warn {
			return 0, sts, err
		}

		o.pend.buf = b
	}

	n := copy(p, o.pend.buf)
	o.pend.buf = o.pend.buf[n:]

	return n, arcsts.Ok, nil
}

func (o *reader) ReadDataSkip() (arcsts.Status, liberr.Error) {
	if o.st != stateData {
		return arcsts.Ok, nil
	}

	o.pend.buf = nil

	sts, err := o.rd.SkipData()

	if sts == arcsts.Fatal {
		o.st = stateFatal
		o.lastErr = err
		return sts, err
	}

	o.st = stateHeader

	return sts, err
}

func (o *reader) FormatName() string {
	return o.fmt.String()
}

func (o *reader) FilterNames() []string {
	r := make([]string, 0, len(o.chain))

	for _, l := range o.chain {
		r = append(r, l.Name())
	}

	return r
}

func (o *reader) LastError() liberr.Error {
	return o.lastErr
}

func (o *reader) Close() error {
	if o.st == stateClosed {
		return nil
	}

	o.st = stateClosed

	var errs []error

	if o.rd != nil {
		if e := o.rd.Close(); e != nil {
			errs = append(errs, e)
		}
	}

	if o.s != nil {
		if e := o.s.Close(); e != nil {
			errs = append(errs, e)
		}
	}

	if o.cc != nil {
		o.cc.Close()
	}

	return liberrOrNil(errs)
}

func liberrOrNil(errs []error) error {
	if e := liberr.MakeIfError(errs...); e != nil {
		return e
	}

	return nil
}
