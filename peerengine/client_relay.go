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

package peerengine

import (
	"github.com/pseudonym/chordring/idspace"
	"github.com/pseudonym/chordring/socket/server/tcp"
	"github.com/pseudonym/chordring/transaction"
	"github.com/pseudonym/chordring/wire"
)

// resolveClientGet implements the CGET branch of spec.md §4.E: once FOUND
// names the owner, open TCP to it, send GET, and relay the reply back to
// the operator as CDATA/CERROR.
func (n *Node) resolveClientGet(t transaction.Transaction, hash idspace.ID, owner string) {
	n.dialPeer(owner, &getRelayHandler{n: n, transID: t.ID}, func(c *tcp.Conn, err error) {
		if err != nil {
			n.log.Warn("GET dial failed", "peer", owner, "err", err)
			n.failClient(t, "peer.unreachable")
			return
		}
		_ = c.WriteLine(string(wire.VerbGet), hash.String(), t.ID)
	})
}

type getRelayHandler struct {
	n       *Node
	transID string
}

func (h *getRelayHandler) OnLine(c *tcp.Conn, line string) {
	verb, args, err := wire.Decode(line)
	if err != nil {
		return
	}
	t, ok := h.n.txns.Remove(h.transID)
	if !ok {
		return
	}
	switch verb {
	case wire.VerbData:
		d, err := wire.ParseData(args)
		if err != nil {
			return
		}
		_ = t.Client.WriteLine(string(wire.VerbCData), d.Payload)
	case wire.VerbError:
		e, err := wire.ParseError(args)
		if err != nil {
			return
		}
		_ = t.Client.WriteLine(string(wire.VerbCError), e.Msg)
	}
	t.Client.CloseWhenDone()
}

func (h *getRelayHandler) OnKeepalive(c *tcp.Conn) {}

func (h *getRelayHandler) OnClose(c *tcp.Conn, err error) {
	if t, ok := h.n.txns.Remove(h.transID); ok {
		h.n.failClient(t, "peer.disconnected")
	}
}

// resolveClientPut implements the CPUT branch of spec.md §4.E.
func (n *Node) resolveClientPut(t transaction.Transaction, owner string) {
	payload := wire.B64Encode(t.Payload)
	n.dialPeer(owner, &putRelayHandler{n: n, transID: t.ID}, func(c *tcp.Conn, err error) {
		if err != nil {
			n.log.Warn("PUT dial failed", "peer", owner, "err", err)
			n.failClient(t, "peer.unreachable")
			return
		}
		_ = c.WriteLine(string(wire.VerbPut), payload, t.ID)
	})
}

type putRelayHandler struct {
	n       *Node
	transID string
}

func (h *putRelayHandler) OnLine(c *tcp.Conn, line string) {
	verb, args, err := wire.Decode(line)
	if err != nil || verb != wire.VerbOK {
		return
	}
	ok, err := wire.ParseOK(args)
	if err != nil {
		return
	}
	t, found := h.n.txns.Remove(h.transID)
	if !found {
		return
	}
	_ = t.Client.WriteLine(string(wire.VerbCOK), ok.Hash)
	t.Client.CloseWhenDone()
}

func (h *putRelayHandler) OnKeepalive(c *tcp.Conn) {}

func (h *putRelayHandler) OnClose(c *tcp.Conn, err error) {
	if t, ok := h.n.txns.Remove(h.transID); ok {
		h.n.failClient(t, "peer.disconnected")
	}
}

// failClient replies CERROR to a client-kind transaction's socket and
// closes it, used when the remote peer never answers.
func (n *Node) failClient(t transaction.Transaction, msg string) {
	if t.Client == nil {
		return
	}
	_ = t.Client.WriteLine(string(wire.VerbCError), msg)
	t.Client.CloseWhenDone()
}
