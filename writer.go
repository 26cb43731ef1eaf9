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
	"os"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	libent "github.com/nabbar/arcengine/entry"
	liberr "github.com/nabbar/arcengine/errors"
	libflt "github.com/nabbar/arcengine/filter"
	arcprg "github.com/nabbar/arcengine/filter/program"
	libfmt "github.com/nabbar/arcengine/format"
	libopt "github.com/nabbar/arcengine/option"
)

// Writer is the public streaming write handle. The destination chain
// is format writer, then filters innermost last, then the raw sink.
type Writer interface {
	// SetFormat selects the output format. Legal in New only.
	SetFormat(c libfmt.Capability) liberr.Error
	// AddFilter pushes a write side filter; the first added is
	// outermost, nearest the format.
	AddFilter(a libflt.Algorithm) liberr.Error
	// AddFilterProgram pushes an external compressor program.
	AddFilterProgram(name string, args ...string) liberr.Error
	// SetOptions installs a "module:key=value,..." option string.
	SetOptions(s string) liberr.Error

	// OpenFilename and OpenWriter move the handle from New to Header.
	OpenFilename(path string) liberr.Error
	OpenWriter(w io.Writer) liberr.Error

	// WriteHeader starts the next entry.
	WriteHeader(e *libent.Entry) (arcsts.Status, liberr.Error)
	// Write appends payload bytes of the started entry.
	Write(p []byte) (int, error)

	// ScratchDir lazily allocates the writer temp directory, resolved
	// from TMPDIR, TMP, TEMP, TEMPDIR then /tmp. It is removed on
	// Close.
	ScratchDir() (string, liberr.Error)

	// Close finishes the archive, flushes and closes every filter and
	// the destination, and reports the aggregate status.
	Close() error
}

type filterSpec struct {
	algo libflt.Algorithm
	prog struct {
		name string
		args []string
	}
}

type writer struct {
	st  state
	cap libfmt.Capability
	opt libopt.Options

	specs []filterSpec

	dst     io.Writer
	dstC    io.Closer
	filters []io.WriteCloser
	w       libfmt.Writer

	scratch string
	lastErr liberr.Error
}

func (o *writer) SetFormat(c libfmt.Capability) liberr.Error {
	if o.st != stateNew {
		return ErrorHandleState.Error(nil)
	}

	if c.Writer == nil {
		return ErrorNoWriter.Error(nil)
	}

	o.cap = c
	return nil
}

func (o *writer) AddFilter(a libflt.Algorithm) liberr.Error {
	if o.st != stateNew {
		return ErrorHandleState.Error(nil)
	}

	o.specs = append(o.specs, filterSpec{algo: a})
	return nil
}

func (o *writer) AddFilterProgram(name string, args ...string) liberr.Error {
	if o.st != stateNew {
		return ErrorHandleState.Error(nil)
	}

	s := filterSpec{algo: libflt.Program}
	s.prog.name = name
	s.prog.args = args

	o.specs = append(o.specs, s)
	return nil
}

func (o *writer) SetOptions(s string) liberr.Error {
	if o.st != stateNew {
		return ErrorHandleState.Error(nil)
	}

	o.opt = libopt.Parse(s)
	return nil
}

func (o *writer) OpenFilename(path string) liberr.Error {
	if o.st != stateNew {
		return ErrorHandleState.Error(nil)
	}

	// #nosec
	f, e := os.Create(path)
	if e != nil {
		return ErrorFileOpen.ErrorParent(e)
	}

	o.dstC = f

	return o.openOn(f)
}

func (o *writer) OpenWriter(w io.Writer) liberr.Error {
	if w == nil {
		return ErrorParamEmpty.Error(nil)
	}

	if o.st != stateNew {
		return ErrorHandleState.Error(nil)
	}

	return o.openOn(w)
}

// openOn stacks the filter writers innermost first, then the format
// writer on top.
func (o *writer) openOn(w io.Writer) liberr.Error {
	if o.cap.Writer == nil {
		return ErrorNoFormat.Error(nil)
	}

	cur := w

	// the last added filter is innermost, nearest the raw bytes
	for i := len(o.specs) - 1; i >= 0; i-- {
		var (
			fw io.WriteCloser
			e  error
		)

		if o.specs[i].algo == libflt.Program {
			fw, e = arcprg.NewWriter(cur, o.specs[i].prog.name, o.specs[i].prog.args...)
		} else {
			fw, e = o.specs[i].algo.Writer(cur)
		}

		if e != nil {
			return libflt.ErrorFilterOpen.ErrorParent(e)
		}

		o.filters = append(o.filters, fw)
		cur = fw
	}

	fw, err := o.cap.Writer(cur, o.opt.For(o.cap.Algo.String()))
	if err != nil {
		return err
	}

	o.dst = w
	o.w = fw
	o.st = stateHeader

	return nil
}

func (o *writer) WriteHeader(e *libent.Entry) (arcsts.Status, liberr.Error) {
	switch o.st {
	case stateHeader, stateData:
	case stateFatal:
		return arcsts.Fatal, o.lastErr
	default:
		return arcsts.Fatal, ErrorHandleState.Error(nil)
	}

	sts, err := o.w.WriteHeader(e)

	if sts == arcsts.Fatal {
		o.st = stateFatal
		o.lastErr = err
		return sts, err
	}

	o.st = stateData

	return sts, err
}

func (o *writer) Write(p []byte) (int, error) {
	if o.st != stateData {
		return 0, ErrorHandleState.Error(nil)
	}

	return o.w.Write(p)
}

func (o *writer) ScratchDir() (string, liberr.Error) {
	if o.scratch != "" {
		return o.scratch, nil
	}

	base := ""

	for _, k := range []string{"TMPDIR", "TMP", "TEMP", "TEMPDIR"} {
		if v := os.Getenv(k); v != "" {
			base = v
			break
		}
	}

	if base == "" {
		base = "/tmp"
	}

	d, e := os.MkdirTemp(base, "arcengine-")
	if e != nil {
		return "", ErrorScratchDir.ErrorParent(e)
	}

	o.scratch = d

	return d, nil
}

func (o *writer) Close() error {
	if o.st == stateClosed {
		return nil
	}

	o.st = stateClosed

	var errs []error

	if o.w != nil {
		if _, err := o.w.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	// filters close outermost first so each one can flush into the
	// next before it closes
	for i := len(o.filters) - 1; i >= 0; i-- {
		if e := o.filters[i].Close(); e != nil {
			errs = append(errs, e)
		}
	}

	if o.dstC != nil {
		if e := o.dstC.Close(); e != nil {
			errs = append(errs, e)
		}
	}

	if o.scratch != "" {
		if e := os.RemoveAll(o.scratch); e != nil {
			errs = append(errs, e)
		}
		o.scratch = ""
	}

	return liberrOrNil(errs)
}
