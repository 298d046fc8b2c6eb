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

package wire

import "github.com/pseudonym/chordring/errors"

// Verbs spoken on the ctrl/daemon <-> ctrl/manager control connection
// (SPEC_FULL.md §4, grounded on daemon.py/manage.py's HELLO/STARTED/
// STOPPED/START/STOP/KILL/STATE vocabulary). Distinct from the peer/
// operator verbs in message.go: these never appear on a peer's own boot-provided
// listen socket.
const (
	VerbHello   Verb = "HELLO"
	VerbStarted Verb = "STARTED"
	VerbStopped Verb = "STOPPED"
	VerbStart   Verb = "START"
	VerbStop    Verb = "STOP"
	VerbKill    Verb = "KILL"
	VerbState   Verb = "STATE"

	VerbCHello Verb = "CHELLO"
	VerbCStart Verb = "CSTART"
	VerbCStop  Verb = "CSTOP"
	VerbCKill  Verb = "CKILL"
)

// Hello is a peer manager announcing its host is up and ready to be
// started (daemon.py: "HELLO host").
type Hello struct{ Host string }

func EncodeHello(host string) []byte { return Encode(string(VerbHello), host) }

func ParseHello(args []string) (Hello, error) {
	if len(args) != 1 {
		return Hello{}, errors.ErrMalformedMessage.Error()
	}
	return Hello{Host: args[0]}, nil
}

// Started reports a peer process is listening on host:port.
type Started struct {
	Host string
	Port string
}

func EncodeStarted(host, port string) []byte {
	return Encode(string(VerbStarted), host, port)
}

func ParseStarted(args []string) (Started, error) {
	if len(args) != 2 {
		return Started{}, errors.ErrMalformedMessage.Error()
	}
	return Started{Host: args[0], Port: args[1]}, nil
}

// Stopped reports a peer process has shut down but its manager is still
// reachable (daemon.py: "STOPPED host").
type Stopped struct{ Host string }

func EncodeStopped(host string) []byte { return Encode(string(VerbStopped), host) }

func ParseStopped(args []string) (Stopped, error) {
	if len(args) != 1 {
		return Stopped{}, errors.ErrMalformedMessage.Error()
	}
	return Stopped{Host: args[0]}, nil
}

// Start instructs a manager to spawn its peer, bootstrapping against the
// given address ("none" if this is the first node in the ring).
type Start struct{ Bootstrap string }

func EncodeStart(bootstrap string) []byte { return Encode(string(VerbStart), bootstrap) }

func ParseStart(args []string) (Start, error) {
	if len(args) != 1 {
		return Start{}, errors.ErrMalformedMessage.Error()
	}
	return Start{Bootstrap: args[0]}, nil
}

// Stop and Kill take no arguments (manage.py's STOP / KILL).
func EncodeStop() []byte { return Encode(string(VerbStop)) }
func EncodeKill() []byte { return Encode(string(VerbKill)) }

// State is the daemon's broadcast of one peer's current status, sent to
// every connected operator client on any transition (daemon.py's
// Peer.get_state / Daemon.broadcast).
type State struct {
	Host   string
	Status string // "DEAD" | "STOPPED" | "STARTED"
}

func EncodeState(host, status string) []byte {
	return Encode(string(VerbState), host, status)
}

func ParseState(args []string) (State, error) {
	if len(args) != 2 {
		return State{}, errors.ErrMalformedMessage.Error()
	}
	return State{Host: args[0], Status: args[1]}, nil
}

// CHello, CStart, CStop, CKill are the operator-side requests daemon.py's
// on_data dispatches under "possible messages (client)".
type CStart struct{ Host string }
type CStop struct{ Host string }
type CKill struct{ Host string }

func EncodeCHello() []byte             { return Encode(string(VerbCHello)) }
func EncodeCStart(host string) []byte  { return Encode(string(VerbCStart), host) }
func EncodeCStop(host string) []byte   { return Encode(string(VerbCStop), host) }
func EncodeCKill(host string) []byte   { return Encode(string(VerbCKill), host) }

func ParseCStart(args []string) (CStart, error) {
	if len(args) != 1 {
		return CStart{}, errors.ErrMalformedMessage.Error()
	}
	return CStart{Host: args[0]}, nil
}

func ParseCStop(args []string) (CStop, error) {
	if len(args) != 1 {
		return CStop{}, errors.ErrMalformedMessage.Error()
	}
	return CStop{Host: args[0]}, nil
}

func ParseCKill(args []string) (CKill, error) {
	if len(args) != 1 {
		return CKill{}, errors.ErrMalformedMessage.Error()
	}
	return CKill{Host: args[0]}, nil
}
