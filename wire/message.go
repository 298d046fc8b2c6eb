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

// Verb identifies a message's first token.
type Verb string

// UDP peer-to-peer verbs (spec.md §6).
const (
	VerbFind   Verb = "FIND"
	VerbFound  Verb = "FOUND"
	VerbGetP   Verb = "GETP"
	VerbPred   Verb = "PRED"
	VerbNotify Verb = "NOTIFY"
	VerbShow   Verb = "SHOW"
	VerbPeer   Verb = "PEER"
	VerbPing   Verb = "PING"
	VerbPong   Verb = "PONG"
)

// TCP peer-to-peer verbs.
const (
	VerbGet   Verb = "GET"
	VerbData  Verb = "DATA"
	VerbError Verb = "ERROR"
	VerbPut   Verb = "PUT"
	VerbOK    Verb = "OK"
	VerbRetr  Verb = "RETR"
	VerbXfer  Verb = "XFER"
)

// TCP operator<->peer verbs.
const (
	VerbCGet   Verb = "CGET"
	VerbCPut   Verb = "CPUT"
	VerbCShow  Verb = "CSHOW"
	VerbCData  Verb = "CDATA"
	VerbCError Verb = "CERROR"
	VerbCOK    Verb = "COK"
	VerbCPeer  Verb = "CPEER"
)

// --- UDP messages -----------------------------------------------------

// Find is `FIND hash origin transid`.
type Find struct {
	Hash   string
	Origin string
	TransID string
}

func EncodeFind(m Find) []byte { return Encode(string(VerbFind), m.Hash, m.Origin, m.TransID) }

func ParseFind(args []string) (Find, error) {
	if len(args) != 3 {
		return Find{}, errors.ErrMalformedMessage.Error()
	}
	return Find{Hash: args[0], Origin: args[1], TransID: args[2]}, nil
}

// Found is `FOUND hash owner transid`.
type Found struct {
	Hash    string
	Owner   string
	TransID string
}

func EncodeFound(m Found) []byte { return Encode(string(VerbFound), m.Hash, m.Owner, m.TransID) }

func ParseFound(args []string) (Found, error) {
	if len(args) != 3 {
		return Found{}, errors.ErrMalformedMessage.Error()
	}
	return Found{Hash: args[0], Owner: args[1], TransID: args[2]}, nil
}

// GetP is `GETP addr`.
type GetP struct{ Addr string }

func EncodeGetP(m GetP) []byte { return Encode(string(VerbGetP), m.Addr) }

func ParseGetP(args []string) (GetP, error) {
	if len(args) != 1 {
		return GetP{}, errors.ErrMalformedMessage.Error()
	}
	return GetP{Addr: args[0]}, nil
}

// Pred is `PRED addr`.
type Pred struct{ Addr string }

func EncodePred(m Pred) []byte { return Encode(string(VerbPred), m.Addr) }

func ParsePred(args []string) (Pred, error) {
	if len(args) != 1 {
		return Pred{}, errors.ErrMalformedMessage.Error()
	}
	return Pred{Addr: args[0]}, nil
}

// Notify is `NOTIFY addr`.
type Notify struct{ Addr string }

func EncodeNotify(m Notify) []byte { return Encode(string(VerbNotify), m.Addr) }

func ParseNotify(args []string) (Notify, error) {
	if len(args) != 1 {
		return Notify{}, errors.ErrMalformedMessage.Error()
	}
	return Notify{Addr: args[0]}, nil
}

// Show is `SHOW addr transid`.
type Show struct {
	Addr    string
	TransID string
}

func EncodeShow(m Show) []byte { return Encode(string(VerbShow), m.Addr, m.TransID) }

func ParseShow(args []string) (Show, error) {
	if len(args) != 2 {
		return Show{}, errors.ErrMalformedMessage.Error()
	}
	return Show{Addr: args[0], TransID: args[1]}, nil
}

// Peer is `PEER addr transid`.
type Peer struct {
	Addr    string
	TransID string
}

func EncodePeer(m Peer) []byte { return Encode(string(VerbPeer), m.Addr, m.TransID) }

func ParsePeer(args []string) (Peer, error) {
	if len(args) != 2 {
		return Peer{}, errors.ErrMalformedMessage.Error()
	}
	return Peer{Addr: args[0], TransID: args[1]}, nil
}

// Ping is `PING addr`.
type Ping struct{ Addr string }

func EncodePing(m Ping) []byte { return Encode(string(VerbPing), m.Addr) }

func ParsePing(args []string) (Ping, error) {
	if len(args) != 1 {
		return Ping{}, errors.ErrMalformedMessage.Error()
	}
	return Ping{Addr: args[0]}, nil
}

// Pong is `PONG addr`.
type Pong struct{ Addr string }

func EncodePong(m Pong) []byte { return Encode(string(VerbPong), m.Addr) }

func ParsePong(args []string) (Pong, error) {
	if len(args) != 1 {
		return Pong{}, errors.ErrMalformedMessage.Error()
	}
	return Pong{Addr: args[0]}, nil
}
