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
	"math"
	"strconv"
)

// idMsgFct stores the mapping between error codes and their message functions.
var idMsgFct = make(map[CodeError]Message)

// Message is a function type that generates error messages based on error codes.
type Message func(code CodeError) (message string)

// CodeError represents a numeric error code.
// It is a uint16 allowing codes from 0 to 65535.
type CodeError uint16

const (
	// UnknownError represents an error with no specific code (0).
	UnknownError CodeError = 0

	// UnknownMessage is the default message for UnknownError.
	UnknownMessage = "unknown error"

	// NullMessage represents an empty error message.
	NullMessage = ""
)

// ParseCodeError returns a CodeError value based on the input int64 value.
// Negative values map to UnknownError; values over uint16 saturate.
func ParseCodeError(i int64) CodeError {
	if i < 0 {
		return UnknownError
	} else if i >= int64(math.MaxUint16) {
		return math.MaxUint16
	} else {
		return CodeError(i)
	}
}

func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

func (c CodeError) Int() int {
	return int(c)
}

func (c CodeError) String() string {
	return strconv.Itoa(c.Int())
}

// Message returns the registered message for the code, or UnknownMessage.
func (c CodeError) Message() string {
	for _, f := range idMsgFct {
		if f == nil {
			continue
		} else if m := f(c); m != NullMessage {
			return m
		}
	}

	return UnknownMessage
}

// Error returns a new Error instance based on the current code with the
// given parent errors.
func (c CodeError) Error(parent ...error) Error {
	return newError(c.Uint16(), c.Message(), getFrame(), parent...)
}

// ErrorParent returns a new Error instance based on the current code,
// attaching the given raw errors as parents.
func (c CodeError) ErrorParent(parent ...error) Error {
	return c.Error(parent...)
}

// Errorf returns a new Error instance based on the current code, with a
// message completed by the given arguments.
func (c CodeError) Errorf(args ...interface{}) Error {
	e := newError(c.Uint16(), c.Message(), getFrame())
	e.setArgs(args...)
	return e
}

// IfError returns a new Error only if at least one given error is not nil.
func (c CodeError) IfError(parent ...error) Error {
	for _, e := range parent {
		if e != nil {
			return c.Error(parent...)
		}
	}

	return nil
}

// RegisterIdFctMessage registers a message function for all codes at or
// above the given minimal code, up to the next registered range.
func RegisterIdFctMessage(minCode CodeError, fct Message) {
	if fct == nil {
		return
	}

	idMsgFct[minCode] = fct
}

// ExistInMapMessage checks if a non empty message is registered for the
// given code.
func ExistInMapMessage(code CodeError) bool {
	for _, f := range idMsgFct {
		if f == nil {
			continue
		} else if f(code) != NullMessage {
			return true
		}
	}

	return false
}
