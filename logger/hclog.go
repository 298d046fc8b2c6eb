/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package logger

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
)

// hclogLogger adapts hclog.Logger to the Logger interface. The control
// daemon uses this backend: process supervisors that spawn chordd expect
// hclog's leveled-logging line format.
type hclogLogger struct {
	l hclog.Logger
}

// NewHCLog builds a Logger backed by hashicorp/go-hclog, named name, at the
// given level ("debug", "info", "warn", "error").
func NewHCLog(name string, level string) Logger {
	return &hclogLogger{
		l: hclog.New(&hclog.LoggerOptions{
			Name:   name,
			Level:  hclog.LevelFromString(level),
			Output: os.Stderr,
		}),
	}
}

func (h *hclogLogger) WithField(key string, val interface{}) Logger {
	return &hclogLogger{l: h.l.With(key, val)}
}

func (h *hclogLogger) WithFields(f Fields) Logger {
	args := make([]interface{}, 0, len(f)*2)
	for k, v := range f {
		args = append(args, k, v)
	}
	return &hclogLogger{l: h.l.With(args...)}
}

func (h *hclogLogger) Debug(args ...interface{}) { h.l.Debug(joinMsg(args)) }
func (h *hclogLogger) Info(args ...interface{})  { h.l.Info(joinMsg(args)) }
func (h *hclogLogger) Warn(args ...interface{})  { h.l.Warn(joinMsg(args)) }
func (h *hclogLogger) Error(args ...interface{}) { h.l.Error(joinMsg(args)) }

func joinMsg(args []interface{}) string {
	if len(args) == 1 {
		if s, ok := args[0].(string); ok {
			return s
		}
	}
	msg := ""
	for i, a := range args {
		if i > 0 {
			msg += " "
		}
		if s, ok := a.(string); ok {
			msg += s
		} else {
			msg += fmt.Sprintf("%v", a)
		}
	}
	return msg
}
