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

package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

type ers struct {
	c uint16
	e string
	p []Error
	t runtime.Frame
}

func newError(code uint16, msg string, frame runtime.Frame, parent ...error) *ers {
	e := &ers{
		c: code,
		e: msg,
		p: make([]Error, 0),
		t: frame,
	}

	e.Add(parent...)

	return e
}

func (e *ers) setArgs(args ...interface{}) {
	if len(args) > 0 {
		e.e = fmt.Sprintf(e.e, args...)
	}
}

func (e *ers) Is(err error) bool {
	var r *ers
	if errors.As(err, &r) {
		return r.c == e.c && strings.EqualFold(r.e, e.e)
	}

	return false
}

func (e *ers) Add(parent ...error) {
	for _, v := range parent {
		if v == nil {
			continue
		}

		var r Error
		if errors.As(v, &r) {
			e.p = append(e.p, r)
		} else {
			e.p = append(e.p, newError(0, v.Error(), getNilFrame()))
		}
	}
}

func (e *ers) SetParent(parent ...error) {
	e.p = make([]Error, 0)
	e.Add(parent...)
}

func (e *ers) IsCode(code CodeError) bool {
	return e.c == code.Uint16()
}

func (e *ers) IsError(err error) bool {
	return err != nil
}

func (e *ers) HasCode(code CodeError) bool {
	if e.IsCode(code) {
		return true
	}

	for _, p := range e.p {
		if p.HasCode(code) {
			return true
		}
	}

	return false
}

func (e *ers) GetCode() CodeError {
	return CodeError(e.c)
}

func (e *ers) GetParentCode() []CodeError {
	res := []CodeError{e.GetCode()}

	for _, p := range e.p {
		res = append(res, p.GetParentCode()...)
	}

	return res
}

func (e *ers) HasError(err error) bool {
	for _, p := range e.p {
		if p.Is(err) || p.HasError(err) {
			return true
		}
	}

	return false
}

func (e *ers) HasParent() bool {
	return len(e.p) > 0
}

func (e *ers) GetParent(withMainError bool) []error {
	res := make([]error, 0)

	if withMainError {
		res = append(res, e.GetError())
	}

	for _, p := range e.p {
		res = append(res, p.GetParent(true)...)
	}

	return res
}

func (e *ers) Map(fct FuncMap) bool {
	if !fct(e.GetError()) {
		return false
	}

	for _, p := range e.p {
		if !p.Map(fct) {
			return false
		}
	}

	return true
}

func (e *ers) ContainsString(s string) bool {
	if strings.Contains(e.e, s) {
		return true
	}

	for _, p := range e.p {
		if p.ContainsString(s) {
			return true
		}
	}

	return false
}

func (e *ers) Code() uint16 {
	return e.c
}

func (e *ers) CodeSlice() []uint16 {
	res := []uint16{e.Code()}

	for _, p := range e.p {
		res = append(res, p.CodeSlice()...)
	}

	return res
}

func (e *ers) Error() string {
	return modeError.error(e)
}

func (e *ers) StringError() string {
	return e.e
}

func (e *ers) StringErrorSlice() []string {
	res := []string{e.StringError()}

	for _, p := range e.p {
		res = append(res, p.StringErrorSlice()...)
	}

	return res
}

func (e *ers) GetError() error {
	return errors.New(e.e)
}

func (e *ers) GetErrorSlice() []error {
	res := []error{e.GetError()}

	for _, p := range e.p {
		res = append(res, p.GetErrorSlice()...)
	}

	return res
}

func (e *ers) Unwrap() []error {
	res := make([]error, 0, len(e.p))

	for _, p := range e.p {
		res = append(res, p)
	}

	return res
}

func (e *ers) GetTrace() string {
	if e.t.File != "" {
		return fmt.Sprintf("%s#%d", e.t.File, e.t.Line)
	} else if e.t.Function != "" {
		return fmt.Sprintf("%s#%d", e.t.Function, e.t.Line)
	}

	return ""
}

func (e *ers) GetTraceSlice() []string {
	res := make([]string, 0)

	if t := e.GetTrace(); t != "" {
		res = append(res, t)
	}

	for _, p := range e.p {
		res = append(res, p.GetTraceSlice()...)
	}

	return res
}

func (e *ers) CodeError(pattern string) string {
	if pattern == "" {
		pattern = defaultPattern
	}

	return fmt.Sprintf(pattern, e.Code(), e.StringError())
}

func (e *ers) CodeErrorSlice(pattern string) []string {
	res := []string{e.CodeError(pattern)}

	for _, p := range e.p {
		res = append(res, p.CodeErrorSlice(pattern)...)
	}

	return res
}

func (e *ers) CodeErrorTrace(pattern string) string {
	if pattern == "" {
		pattern = defaultPatternTrace
	}

	return fmt.Sprintf(pattern, e.Code(), e.StringError(), e.GetTrace())
}

func (e *ers) CodeErrorTraceSlice(pattern string) []string {
	res := []string{e.CodeErrorTrace(pattern)}

	for _, p := range e.p {
		res = append(res, p.CodeErrorTraceSlice(pattern)...)
	}

	return res
}
