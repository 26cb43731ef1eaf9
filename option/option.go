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

// Package option parses per-handle option strings of the form
// "module:key=value,key2=value2,flag". Keys without a module prefix
// apply to every module; For returns the merged subset seen by one module.
package option

import (
	"strings"
)

// Options maps a module name to its key/value set. The empty module
// name holds unprefixed options.
type Options map[string]map[string]string

// Parse splits a comma separated option string. Empty elements are
// ignored; a bare key maps to an empty value.
func Parse(s string) Options {
	o := make(Options)

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var module string

		if i := strings.IndexByte(part, ':'); i >= 0 {
			module = part[:i]
			part = part[i+1:]
		}

		var (
			key = part
			val = ""
		)

		if i := strings.IndexByte(part, '='); i >= 0 {
			key = part[:i]
			val = part[i+1:]
		}

		if key == "" {
			continue
		}

		if o[module] == nil {
			o[module] = make(map[string]string)
		}

		o[module][key] = val
	}

	return o
}

// For returns the merged option set seen by one module: unprefixed
// options first, overridden by the module's own.
func (o Options) For(module string) map[string]string {
	r := make(map[string]string)

	for k, v := range o[""] {
		r[k] = v
	}

	for k, v := range o[module] {
		r[k] = v
	}

	return r
}
