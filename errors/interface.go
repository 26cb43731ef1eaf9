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

// Package errors provides coded error handling with stack tracing and
// parent chains, compatible with the standard errors.Is / errors.As.
//
// Each package of this module reserves a code range (see modules.go) and
// registers a message function in its init. Codes are stable across a
// process: a collision in ranges panics at init time.
package errors

import (
	"errors"
	"strings"
)

const (
	defaultPattern      = "[Error #%d] %s"
	defaultPatternTrace = "[Error #%d] %s (%s)"
)

// FuncMap is a callback used for iterating over error hierarchies.
// It receives each error in the chain and returns true to continue.
type FuncMap func(e error) bool

// Error is the main interface extending the standard error with code,
// parent hierarchy and trace capabilities.
type Error interface {
	error

	// IsCode checks if the error's own code matches the given code.
	IsCode(code CodeError) bool
	// HasCode checks if the current error or any parent has the given code.
	HasCode(code CodeError) bool
	// GetCode returns the CodeError value of the current error.
	GetCode() CodeError
	// GetParentCode returns the codes of the current error and all parents.
	GetParentCode() []CodeError

	// Is implements compatibility with the root errors package.
	Is(e error) bool
	// IsError checks the given error is valid and not a nil pointer.
	IsError(e error) bool
	// HasError checks if the given error is found in the parent chain.
	HasError(err error) bool
	// HasParent checks if the current error has any parent.
	HasParent() bool
	// GetParent returns each parent error, optionally with the main error.
	GetParent(withMainError bool) []error
	// Map runs fct on the error and each parent until fct returns false.
	Map(fct FuncMap) bool
	// ContainsString reports whether any message in the chain contains s.
	ContainsString(s string) bool

	// Add appends all non nil given errors to the parents.
	Add(parent ...error)
	// SetParent replaces all parents with the given error list.
	SetParent(parent ...error)

	// Code returns the code of the current error.
	Code() uint16
	// CodeSlice returns the codes of the current error and all parents.
	CodeSlice() []uint16

	// CodeError formats code + message for the current error.
	CodeError(pattern string) string
	// CodeErrorSlice formats code + message for the whole chain.
	CodeErrorSlice(pattern string) []string
	// CodeErrorTrace formats code + message + trace for the current error.
	CodeErrorTrace(pattern string) string
	// CodeErrorTraceSlice formats code + message + trace for the chain.
	CodeErrorTraceSlice(pattern string) []string

	// StringError returns the message of the current error alone.
	StringError() string
	// StringErrorSlice returns the messages of the whole chain.
	StringErrorSlice() []string

	// GetError returns a plain error based on the current error alone.
	GetError() error
	// GetErrorSlice returns plain errors for the whole chain.
	GetErrorSlice() []error
	// Unwrap implements the errors As/Is multi unwrap contract.
	Unwrap() []error

	// GetTrace returns the file#line capture of the error creation.
	GetTrace() string
	// GetTraceSlice returns the traces of the whole chain.
	GetTraceSlice() []string
}

// Is checks if the given error is of type Error.
func Is(e error) bool {
	var err Error
	return errors.As(e, &err)
}

// Get returns the given error as an Error interface, or nil.
func Get(e error) Error {
	var err Error
	if errors.As(e, &err) {
		return err
	}

	return nil
}

// Has checks if the given error or its parents carry the given code.
func Has(e error, code CodeError) bool {
	if err := Get(e); err == nil {
		return false
	} else {
		return err.HasCode(code)
	}
}

// IsCode checks if the given error's own code is the given code.
func IsCode(e error, code CodeError) bool {
	if err := Get(e); err == nil {
		return false
	} else {
		return err.IsCode(code)
	}
}

// ContainsString checks if the given error message contains the string.
func ContainsString(e error, s string) bool {
	if e == nil {
		return false
	} else if err := Get(e); err == nil {
		return strings.Contains(e.Error(), s)
	} else {
		return err.ContainsString(s)
	}
}

// Make wraps the given error into an Error with code 0 if needed.
func Make(e error) Error {
	var err Error

	if e == nil {
		return nil
	} else if errors.As(e, &err) {
		return err
	} else {
		return newError(0, e.Error(), getNilFrame())
	}
}

// MakeIfError folds a list of errors into a single Error, or nil if all
// the given errors are nil.
func MakeIfError(err ...error) Error {
	var e Error

	for _, p := range err {
		if p == nil {
			continue
		} else if e == nil {
			e = Make(p)
		} else {
			e.Add(p)
		}
	}

	return e
}
