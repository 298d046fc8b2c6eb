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

// udpHandler adapts Node to socket/server/udp.Handler. All methods run on
// the loop goroutine (posted there by the udp package).
type udpHandler struct{ n *Node }

// UDPHandler returns the socket/server/udp.Handler to register the node's
// datagram socket with.
func (n *Node) UDPHandler() interface {
	OnPacket(from, line string)
	OnError(err error)
} {
	return &udpHandler{n: n}
}

func (h *udpHandler) OnError(err error) {
	h.n.log.Warn("udp socket error", "err", err)
}

func (h *udpHandler) OnPacket(from, line string) {
	verb, args, err := wire.Decode(line)
	if err != nil {
		h.n.log.Warn("malformed udp datagram", "from", from)
		return
	}

	switch verb {
	case wire.VerbFind:
		h.n.onFind(args)
	case wire.VerbFound:
		h.n.onFound(args)
	case wire.VerbGetP:
		h.n.onGetP(args)
	case wire.VerbPred:
		h.n.onPred(args)
	case wire.VerbNotify:
		h.n.onNotify(args)
	case wire.VerbShow:
		h.n.onShow(args)
	case wire.VerbPeer:
		h.n.onPeer(args)
	case wire.VerbPing:
		h.n.onPing(args)
	case wire.VerbPong:
		h.n.onPong(args)
	default:
		h.n.log.Warn("unknown udp verb", "verb", string(verb))
	}
}

func (n *Node) onFind(args []string) {
	f, err := wire.ParseFind(args)
	if err != nil {
		n.log.Warn("malformed FIND")
		return
	}
	hash, ok := idspace.Parse(f.Hash)
	if !ok {
		n.log.Warn("malformed FIND hash", "hash", f.Hash)
		return
	}
	n.findForward(hash, f.Origin, f.TransID)
}

func (n *Node) onFound(args []string) {
	f, err := wire.ParseFound(args)
	if err != nil {
		n.log.Warn("malformed FOUND")
		return
	}
	hash, ok := idspace.Parse(f.Hash)
	if !ok {
		n.log.Warn("malformed FOUND hash", "hash", f.Hash)
		return
	}
	n.handleFoundOwner(hash, f.Owner, f.TransID)
}

// handleFoundOwner is the common resolution path for a FOUND reply,
// whether it arrived over the wire or was short-circuited locally by
// findForward when this node is both origin and owner.
func (n *Node) handleFoundOwner(hash idspace.ID, owner string, transID string) {
	t, ok := n.txns.Get(transID)
	if !ok {
		// spec.md §7 "Stale transaction": log and discard.
		n.log.Debug("stale transaction on FOUND", "transid", transID)
		return
	}

	switch t.Kind {
	case transaction.KindFinger:
		n.resolveFinger(t, owner)
		n.txns.Remove(transID)
	case transaction.KindBackup:
		n.ring.OnBackupResolved(owner)
		n.txns.Remove(transID)
	case transaction.KindPrune:
		// disabled; arithmetic only, never reached in practice (spec.md §9).
		n.txns.Remove(transID)
	case transaction.KindGet:
		n.resolveClientGet(t, hash, owner)
	case transaction.KindPut:
		n.resolveClientPut(t, owner)
	}
}

// resolveFinger implements spec.md §4.D's "Finger-table update (FINGER
// transaction resolved)": update finger[i], and if it's a new successor,
// pull items that now belong to us via RETR.
func (n *Node) resolveFinger(t transaction.Transaction, owner string) {
	isNewSuccessor := n.ring.OnFingerResolved(t.Index, owner)
	if t.Index != 0 || !isNewSuccessor {
		return
	}

	selfID := n.ring.Self.ID
	peerID := idspace.NodeID(owner)
	n.dialPeer(owner, &xferReceiveHandler{n: n}, func(c *tcp.Conn, err error) {
		if err != nil {
			n.log.Warn("RETR dial failed", "peer", owner, "err", err)
			return
		}
		_ = c.WriteLine(string(wire.VerbRetr), peerID.String(), selfID.String())
	})
}

func (n *Node) onGetP(args []string) {
	g, err := wire.ParseGetP(args)
	if err != nil {
		n.log.Warn("malformed GETP")
		return
	}
	pred := n.ring.Predecessor()
	if pred == nil {
		return
	}
	n.udp.Send(g.Addr, string(wire.VerbPred), pred.Addr)
}

func (n *Node) onPred(args []string) {
	p, err := wire.ParsePred(args)
	if err != nil {
		n.log.Warn("malformed PRED")
		return
	}
	n.ring.OnPred(p.Addr)
}

func (n *Node) onNotify(args []string) {
	nt, err := wire.ParseNotify(args)
	if err != nil {
		n.log.Warn("malformed NOTIFY")
		return
	}
	n.ring.OnNotify(nt.Addr)
}

// onShow implements spec.md §4.E's roll-call gossip: forward SHOW to our
// successor and reply PEER directly to the originator, unless the
// roll-call has looped back to its own origin.
func (n *Node) onShow(args []string) {
	s, err := wire.ParseShow(args)
	if err != nil {
		n.log.Warn("malformed SHOW")
		return
	}
	if s.Addr == n.Self {
		return
	}
	if succ := n.ring.Successor(); succ != nil && succ.Addr != n.Self {
		n.udp.Send(succ.Addr, string(wire.VerbShow), s.Addr, s.TransID)
	}
	n.udp.Send(s.Addr, string(wire.VerbPeer), n.Self, s.TransID)
}

// onPeer delivers a roll-call reply to the originating CSHOW transaction's
// client as CPEER (spec.md §4.E). The transaction is left open: more PEER
// replies may still arrive before its 10-second timer fires.
func (n *Node) onPeer(args []string) {
	p, err := wire.ParsePeer(args)
	if err != nil {
		n.log.Warn("malformed PEER")
		return
	}
	t, ok := n.txns.Get(p.TransID)
	if !ok || t.Kind != transaction.KindShow {
		n.log.Debug("stale transaction on PEER", "transid", p.TransID)
		return
	}
	_ = t.Client.WriteLine(string(wire.VerbCPeer), idspace.NodeID(p.Addr).String(), p.Addr)
}

func (n *Node) onPing(args []string) {
	p, err := wire.ParsePing(args)
	if err != nil {
		n.log.Warn("malformed PING")
		return
	}
	n.udp.Send(p.Addr, string(wire.VerbPong), n.Self)
}

func (n *Node) onPong(args []string) {
	p, err := wire.ParsePong(args)
	if err != nil {
		n.log.Warn("malformed PONG")
		return
	}
	n.ring.ResetPingFail(p.Addr)
}
