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

// Package errors provides the error codes and hierarchical error type used
// across chordring. It mirrors the shape of a larger library's error
// package (numeric codes, parent chaining, stack capture) scoped down to
// this repository's actual error surface.
package errors

import (
	"runtime"
)

// Code classifies an error the way an HTTP status code classifies a
// response: a small, stable, documented vocabulary instead of ad-hoc
// string matching on error messages.
type Code uint16

const (
	UnknownError Code = iota

	// transport
	ErrListenFailed
	ErrDialFailed
	ErrSocketClosed
	ErrFrameTooLarge

	// transaction / routing
	ErrTransactionUnknown
	ErrTransactionExpired

	// ring state
	ErrSuccessorLost
	ErrFingerTableEmpty

	// item store / wire protocol
	ErrItemNotFound
	ErrMalformedMessage
	ErrUnknownVerb

	// configuration
	ErrConfigInvalid
	ErrBootInterfaceInvalid
)

// messages holds the human-readable description for each Code. Unregistered
// codes fall back to "unknown error".
var messages = map[Code]string{
	ErrListenFailed:         "listen failed",
	ErrDialFailed:           "dial failed",
	ErrSocketClosed:         "socket closed",
	ErrFrameTooLarge:        "frame exceeds maximum line length",
	ErrTransactionUnknown:   "unknown transaction",
	ErrTransactionExpired:   "transaction expired",
	ErrSuccessorLost:        "successor and successor's successor both lost",
	ErrFingerTableEmpty:     "finger table has no usable entry",
	ErrItemNotFound:         "data.not.found",
	ErrMalformedMessage:     "malformed.message",
	ErrUnknownVerb:          "unknown.message.verb",
	ErrConfigInvalid:        "invalid configuration",
	ErrBootInterfaceInvalid: "invalid boot interface",
}

func (c Code) String() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return "unknown error"
}

// Error builds a new Error of this code, optionally chaining parent errors.
// The call site's file:line is captured for later diagnostics, matching
// the teacher's stack-capture idiom without pulling in a full trace
// formatter.
func (c Code) Error(parent ...error) Error {
	e := &wrapped{code: c}
	if _, file, line, ok := runtime.Caller(1); ok {
		e.file, e.line = file, line
	}
	for _, p := range parent {
		if p != nil {
			e.parent = append(e.parent, p)
		}
	}
	return e
}
