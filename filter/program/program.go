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

// Package program pipes archive bytes through an external command, as
// a read side decompressor or a write side compressor. The command is
// only attached explicitly by the caller; it never takes part in
// filter bidding.
package program

import (
	"errors"
	"io"
	"os/exec"
)

var ErrExited = errors.New("program: filter command exited with error")

type reader struct {
	cmd *exec.Cmd
	out io.ReadCloser
}

// NewReader starts the command with the source as stdin and returns
// its stdout as the decoded stream.
func NewReader(src io.Reader, name string, args ...string) (io.ReadCloser, error) {
	// #nosec
	cmd := exec.Command(name, args...)
	cmd.Stdin = src

	out, e := cmd.StdoutPipe()
	if e != nil {
		return nil, e
	}

	if e = cmd.Start(); e != nil {
		return nil, e
	}

	return &reader{cmd: cmd, out: out}, nil
}

func (r *reader) Read(p []byte) (int, error) {
	return r.out.Read(p)
}

func (r *reader) Close() error {
	_, _ = io.Copy(io.Discard, r.out)
	_ = r.out.Close()

	if e := r.cmd.Wait(); e != nil {
		return ErrExited
	}

	return nil
}

type writer struct {
	cmd *exec.Cmd
	in  io.WriteCloser
}

// NewWriter starts the command with the destination as stdout and
// returns its stdin as the encoding sink.
func NewWriter(dst io.Writer, name string, args ...string) (io.WriteCloser, error) {
	// #nosec
	cmd := exec.Command(name, args...)
	cmd.Stdout = dst

	in, e := cmd.StdinPipe()
	if e != nil {
		return nil, e
	}

	if e = cmd.Start(); e != nil {
		return nil, e
	}

	return &writer{cmd: cmd, in: in}, nil
}

func (w *writer) Write(p []byte) (int, error) {
	return w.in.Write(p)
}

func (w *writer) Close() error {
	_ = w.in.Close()

	if e := w.cmd.Wait(); e != nil {
		return ErrExited
	}

	return nil
}
