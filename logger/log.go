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

// Package logger exposes a thin leveled logging surface over logrus.
//
// The codec packages of this module log recoverable anomalies (checksum
// mismatch, charset fallback, skipped entries) at Warn or Debug level.
// The default logger writes to stderr at Info level; callers embedding
// the library can raise or silence it with SetLevel.
package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

var defaultLogger *logrus.Logger

func init() {
	defaultLogger = logrus.New()
	defaultLogger.SetLevel(InfoLevel.Logrus())
}

// SetLevel changes the level of the default logger. All log entries
// matching this level or below will be logged.
func SetLevel(level Level) {
	defaultLogger.SetLevel(level.Logrus())
}

// GetCurrentLevel returns the current log level of the default logger.
func GetCurrentLevel() Level {
	switch defaultLogger.GetLevel() {
	case logrus.PanicLevel:
		return PanicLevel
	case logrus.FatalLevel:
		return FatalLevel
	case logrus.ErrorLevel:
		return ErrorLevel
	case logrus.WarnLevel:
		return WarnLevel
	case logrus.DebugLevel, logrus.TraceLevel:
		return DebugLevel
	}

	return InfoLevel
}

// SetOutput redirects the default logger to the given writer.
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// Log logs the given message with the current level.
func (l Level) Log(message string) {
	if l == NilLevel {
		return
	}

	defaultLogger.Log(l.Logrus(), message)
}

// Logf logs the given format and args with the current level.
func (l Level) Logf(format string, args ...interface{}) {
	if l == NilLevel {
		return
	}

	defaultLogger.Logf(l.Logrus(), format, args...)
}

// LogError logs the given error if not nil and returns true when an
// error has been logged.
func (l Level) LogError(err error) bool {
	if err == nil {
		return false
	}

	l.Log(err.Error())
	return true
}

// LogErrorCtxf logs the error with a formatted context message when err
// is not nil, or logs the context alone at levelElse otherwise.
func (l Level) LogErrorCtxf(levelElse Level, contextPattern string, err error, args ...interface{}) bool {
	if err != nil {
		l.Logf(contextPattern+": %v", append(args, err)...)
		return true
	}

	levelElse.Logf(contextPattern, args...)
	return false
}
