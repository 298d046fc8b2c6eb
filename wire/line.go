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

// Package wire implements chordring's line protocol: ASCII lines of
// space-separated tokens terminated by '\n', the same framing spec.md §6
// describes for both the TCP and UDP legs. It provides the incremental
// "bytes consumed" parser the stream transport needs and the base64
// helpers item payloads travel as.
package wire

import (
	"bytes"
	"encoding/base64"
	"strings"
)

// MaxLineLength bounds a single frame. Lines beyond this are almost
// certainly a malformed or hostile peer; the connection is dropped rather
// than letting the read buffer grow without limit.
const MaxLineLength = 1 << 20 // 1 MiB, generous for a base64 item payload

// Encode joins tokens with a single space and terminates the line with
// '\n', matching peer.py's `' '.join(data) + '\n'`.
func Encode(tokens ...string) []byte {
	return append([]byte(strings.Join(tokens, " ")), '\n')
}

// Tokens splits a decoded line into space-separated tokens.
func Tokens(line string) []string {
	if line == "" {
		return nil
	}
	return strings.Split(line, " ")
}

// Consume scans buf for one framed line. It returns the number of bytes
// that make up the frame (including the terminating '\n') and the line's
// content without the terminator.
//
//   - n == 0: no full line is buffered yet; caller must wait for more data.
//   - n == 1, line == "": an empty line — a keepalive. Exactly one byte is
//     consumed and no further action is needed (P6).
//   - n > 1: a real line; line holds its content.
//
// This mirrors peer.py's data_cb contract of returning "bytes consumed".
func Consume(buf []byte) (n int, line string, isKeepalive bool) {
	idx := bytes.IndexByte(buf, '\n')
	if idx < 0 {
		return 0, "", false
	}
	if idx == 0 {
		return 1, "", true
	}
	return idx + 1, string(buf[:idx]), false
}

// B64Encode/B64Decode wrap standard base64 the way peer.py's data payloads
// travel on the wire (`base64.b64encode`/`b64decode`).
func B64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func B64Decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
