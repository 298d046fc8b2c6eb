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

// Package peerengine wires together idspace, ring, items, transaction,
// wire and the socket transports into the Node described by spec.md §3:
// the single owner value threaded through every callback (spec.md §9
// "Global mutable state" redesign note). Every exported method that
// mutates Node state is only ever safe to call from the reactor loop
// goroutine — enforced by construction, since the only callers are
// handlers registered on that loop.
package peerengine

import (
	"math/rand"
	"time"

	"github.com/pseudonym/chordring/idspace"
	"github.com/pseudonym/chordring/items"
	"github.com/pseudonym/chordring/logger"
	"github.com/pseudonym/chordring/ring"
	"github.com/pseudonym/chordring/socket/reactor"
	"github.com/pseudonym/chordring/socket/server/tcp"
	"github.com/pseudonym/chordring/socket/server/udp"
	"github.com/pseudonym/chordring/transaction"
	"github.com/pseudonym/chordring/wire"
)

// Default timer intervals from spec.md §4.D.
const (
	stabilizeInterval = 10 * time.Second
	fixFingerInterval = 15 * time.Second
	backupInterval    = 10 * time.Second
	pingInterval      = 10 * time.Second
)

// Intervals overrides the default periodic timers. A zero field keeps
// the package default for that timer; config.Peer's *_interval_ms
// fields exist so integration tests (and operators who know their
// network better than spec.md's defaults) don't have to wait out the
// full 10-15s real-time cadence.
type Intervals struct {
	Stabilize time.Duration
	FixFinger time.Duration
	Backup    time.Duration
	Ping      time.Duration
}

// Node is one Chord peer: its ring state, item store, transaction
// registry and the two transports it listens on.
type Node struct {
	Self string // "HOST:PORT"

	loop  *reactor.Loop
	ring  *ring.State
	store *items.Store
	txns  *transaction.Registry
	log   logger.Logger

	ln  *tcp.Listener
	udp *udp.Conn

	intervals Intervals
	periodics []*reactor.PeriodicHandle
}

// New builds a Node with no transports yet; the already-open listening
// and datagram sockets (spec.md §6 boot interface: sockets are opened by
// the external manager, not the peer itself) are wired in afterwards with
// Attach. The caller starts the reactor loop separately and calls
// Bootstrap once both transports are wired to this Node.
func New(self string, loop *reactor.Loop, log logger.Logger) *Node {
	n := &Node{
		Self:  self,
		loop:  loop,
		ring:  ring.New(self),
		store: items.NewStore(),
		txns:  transaction.NewRegistry(self),
		log:   log,
	}
	return n
}

// SetIntervals overrides the periodic timer cadence. Must be called
// before Bootstrap; a zero-valued field leaves that timer at its
// spec.md §4.D default.
func (n *Node) SetIntervals(iv Intervals) {
	n.intervals = iv
}

// Attach wires the listening and datagram sockets the boot interface
// handed the process. Must be called once, before Bootstrap.
func (n *Node) Attach(ln *tcp.Listener, dgram *udp.Conn) {
	n.ln = ln
	n.udp = dgram
}

// Bootstrap implements spec.md §4.D: with a bootstrap peer, resolve our
// own ID against it via a FINGER{0} lookup; without one, form a
// self-referential singleton ring (I2).
func (n *Node) Bootstrap(bootPeer string) {
	if bootPeer == "" {
		n.ring.InitSingleton()
		n.startTimers()
		return
	}

	id := n.txns.NextID()
	n.txns.Add(transaction.Finger(id, 0))
	n.udp.Send(bootPeer, string(wire.VerbFind), n.ring.Self.ID.String(), n.Self, id)
	n.startTimers()
}

// startTimers schedules the four active periodic ring timers with a staggered
// initial delay (spec.md §4.D: "Staggering the initial delays reduces
// bootstrap thundering"). Every timer's first fire is drawn from
// [s/2, s), where s is the stabilize interval, so with the default
// intervals all four start within [5,10)s, and an override
// (SetIntervals, used by tests) scales the stagger the same way.
func (n *Node) startTimers() {
	stagger := func(interval time.Duration) time.Duration {
		half := interval / 2
		if half <= 0 {
			return 0
		}
		return half + time.Duration(rand.Int63n(int64(half)))
	}

	stabilize := orDefault(n.intervals.Stabilize, stabilizeInterval)
	fixFinger := orDefault(n.intervals.FixFinger, fixFingerInterval)
	backup := orDefault(n.intervals.Backup, backupInterval)
	ping := orDefault(n.intervals.Ping, pingInterval)

	n.periodics = append(n.periodics,
		n.loop.SchedulePeriodic(stagger(stabilize), stabilize, n.onStabilizeTimer),
		n.loop.SchedulePeriodic(stagger(stabilize), fixFinger, n.onFixFingerTimer),
		n.loop.SchedulePeriodic(stagger(stabilize), backup, n.onBackupTimer),
		n.loop.SchedulePeriodic(stagger(stabilize), ping, n.onPingTimer),
	)
	// prune intentionally never scheduled (spec.md §9).
}

func orDefault(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

// Successor returns the node's current finger[0], or nil before the
// first Bootstrap resolves it.
func (n *Node) Successor() *ring.Peer { return n.ring.Successor() }

// Predecessor returns the node's current predecessor, or nil.
func (n *Node) Predecessor() *ring.Peer { return n.ring.Predecessor() }

// Stop implements spec.md §5's cancellation contract: close the listening
// socket, the UDP socket, every owned stream socket, and remove all
// timers. In-flight transactions are not acknowledged.
func (n *Node) Stop() {
	for _, p := range n.periodics {
		p.Stop()
	}
	if n.ln != nil {
		_ = n.ln.Close()
	}
	if n.udp != nil {
		_ = n.udp.Close()
	}
}

// find is the origin-side entry point of spec.md §4.E: "find(hash,
// transid) := find_forward(hash, self, transid)".
func (n *Node) find(hash idspace.ID, transID string) {
	n.findForward(hash, n.Self, transID)
}

// findForward implements spec.md §4.E's Chord closest-preceding-finger
// rule. When this node turns out to be the owner and it is itself the
// origin, the FOUND is delivered in-process instead of round-tripping
// through UDP to itself.
func (n *Node) findForward(hash idspace.ID, origin string, transID string) {
	if fwd, ok := n.ring.FindForward(hash); ok {
		n.udp.Send(fwd.Addr, string(wire.VerbFind), hash.String(), origin, transID)
		return
	}

	owner := n.ring.Owner()
	if origin == n.Self {
		n.handleFoundOwner(hash, owner.Addr, transID)
		return
	}
	n.udp.Send(origin, string(wire.VerbFound), hash.String(), owner.Addr, transID)
}
