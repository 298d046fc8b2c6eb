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

package errors

import (
	"fmt"
	"strings"
)

// Error is the hierarchical error type returned by chordring packages.
// It satisfies the standard error interface and errors.Is/errors.As via Is.
type Error interface {
	error
	Code() Code
	IsCode(c Code) bool
	AddParent(parent ...error)
	HasParent() bool
	Parents() []error
	Is(target error) bool
}

type wrapped struct {
	code   Code
	file   string
	line   int
	parent []error
}

func (e *wrapped) Code() Code {
	if e == nil {
		return UnknownError
	}
	return e.code
}

func (e *wrapped) IsCode(c Code) bool {
	return e != nil && e.code == c
}

func (e *wrapped) AddParent(parent ...error) {
	for _, p := range parent {
		if p != nil {
			e.parent = append(e.parent, p)
		}
	}
}

func (e *wrapped) HasParent() bool {
	return e != nil && len(e.parent) > 0
}

func (e *wrapped) Parents() []error {
	if e == nil {
		return nil
	}
	return e.parent
}

func (e *wrapped) Error() string {
	if e == nil {
		return ""
	}

	parts := []string{fmt.Sprintf("[%d] %s", uint16(e.code), e.code.String())}
	for _, p := range e.parent {
		parts = append(parts, p.Error())
	}
	return strings.Join(parts, ": ")
}

// Is reports whether target is (or wraps, via the same Code) this error.
// It lets chordring errors participate in standard errors.Is chains.
func (e *wrapped) Is(target error) bool {
	if target == nil {
		return e == nil
	}
	if o, ok := target.(*wrapped); ok {
		return o.code == e.code
	}
	return false
}

// location returns the file:line captured when the error was created, or
// "" if none was captured. It is unexported and not part of Error().
func (e *wrapped) location() string {
	if e.file == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", e.file, e.line)
}
