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
	"github.com/pseudonym/chordring/errors"
	"github.com/pseudonym/chordring/idspace"
	"github.com/pseudonym/chordring/socket/server/tcp"
	"github.com/pseudonym/chordring/wire"
)

// ListenHandler returns the single tcp.Handler every accepted connection
// on the boot-provided listening socket is registered with. A connection
// may carry either peer-to-peer verbs (GET/PUT/RETR) or operator verbs
// (CGET/CPUT/CSHOW); spec.md §6 distinguishes them by verb, not by port,
// since the boot interface hands the peer exactly one listen_sock.
func (n *Node) ListenHandler() tcp.Handler {
	return &inboundHandler{n: n}
}

type inboundHandler struct{ n *Node }

func (h *inboundHandler) OnKeepalive(c *tcp.Conn) {}

func (h *inboundHandler) OnClose(c *tcp.Conn, err error) {
	// spec.md §4.E "On-error for owned sockets" / §9's corrected on_error:
	// any client-kind transaction referencing this socket is purged.
	h.n.txns.RemoveByClient(c)
}

func (h *inboundHandler) OnLine(c *tcp.Conn, line string) {
	verb, args, err := wire.Decode(line)
	if err != nil {
		h.n.log.Warn("malformed tcp line", "line", line)
		return
	}

	switch verb {
	case wire.VerbGet:
		h.n.handleGet(c, args)
	case wire.VerbPut:
		h.n.handlePut(c, args)
	case wire.VerbRetr:
		h.n.handleRetr(c, args)
	case wire.VerbCGet:
		h.n.handleCGet(c, args)
	case wire.VerbCPut:
		h.n.handleCPut(c, args)
	case wire.VerbCShow:
		h.n.handleCShow(c, args)
	default:
		h.n.log.Warn("unknown tcp verb", "verb", string(verb))
		_ = c.WriteLine(string(wire.VerbError), errors.ErrUnknownVerb.String(), "")
		c.CloseWhenDone()
	}
}

// handleGet implements the TCP peer GET: fetch item, reply DATA or the
// data.not.found ERROR (spec.md §6, §7).
func (n *Node) handleGet(c *tcp.Conn, args []string) {
	g, err := wire.ParseGet(args)
	if err != nil {
		n.log.Warn("malformed GET")
		c.CloseWhenDone()
		return
	}
	id, ok := idspace.Parse(g.Hash)
	if !ok {
		_ = c.WriteLine(string(wire.VerbError), errors.ErrMalformedMessage.String(), g.TransID)
		c.CloseWhenDone()
		return
	}
	payload, ok := n.store.Get(id)
	if !ok {
		_ = c.WriteLine(string(wire.VerbError), errors.ErrItemNotFound.String(), g.TransID)
		c.CloseWhenDone()
		return
	}
	_ = c.WriteLine(string(wire.VerbData), wire.B64Encode(payload), g.TransID)
	c.CloseWhenDone()
}

// handlePut implements the TCP peer PUT: the hash isn't on the wire, it's
// re-derived from the payload so every node agrees on it (spec.md §4.E:
// CPUT computes h = make_file_id(payload) before the FOUND lookup even
// happens; the eventual owner recomputes the same hash deterministically).
func (n *Node) handlePut(c *tcp.Conn, args []string) {
	p, err := wire.ParsePut(args)
	if err != nil {
		n.log.Warn("malformed PUT")
		c.CloseWhenDone()
		return
	}
	payload, err := wire.B64Decode(p.Payload)
	if err != nil {
		_ = c.WriteLine(string(wire.VerbError), errors.ErrMalformedMessage.String(), p.TransID)
		c.CloseWhenDone()
		return
	}
	id := n.store.Put(payload)
	_ = c.WriteLine(string(wire.VerbOK), id.String(), p.TransID)
	c.CloseWhenDone()
}

// handleRetr implements spec.md §4.E's join transfer: send XFER for every
// item strictly between low and high by ring distance (see
// items.Store.RangeTransfer), then close-when-done. Items are not deleted
// locally (intentional redundancy; spec.md §4.E, §1 non-goals).
func (n *Node) handleRetr(c *tcp.Conn, args []string) {
	r, err := wire.ParseRetr(args)
	if err != nil {
		n.log.Warn("malformed RETR")
		c.CloseWhenDone()
		return
	}
	low, ok1 := idspace.Parse(r.Low)
	high, ok2 := idspace.Parse(r.High)
	if !ok1 || !ok2 {
		c.CloseWhenDone()
		return
	}
	for _, e := range n.store.RangeTransfer(low, high) {
		_ = c.WriteLine(string(wire.VerbXfer), e.ID.String(), wire.B64Encode(e.Payload))
	}
	c.CloseWhenDone()
}
