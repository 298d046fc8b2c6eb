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

// Package ring holds a node's Chord ring state — predecessor, finger
// table, succ_succ, ping-failure counters (spec.md §3) — and the
// stabilization rules driven by the five periodic timers of spec.md §4.D.
// State here is mutated only from the reactor loop goroutine (spec.md
// §5); it carries no lock of its own.
package ring

import (
	"github.com/pseudonym/chordring/idspace"
)

// Peer is an optional "HOST:PORT" address together with its derived
// node-ID, so ring code never has to re-hash an address to compare it.
type Peer struct {
	Addr string
	ID   idspace.ID
}

func peerOf(addr string) Peer {
	return Peer{Addr: addr, ID: idspace.NodeID(addr)}
}

// NumFingers is the width of the finger table: one entry per bit of the
// identifier space (spec.md §3 `finger[0..160)`).
const NumFingers = idspace.Bits

// MaxPingFail is the consecutive missed-ping threshold at which a peer is
// considered dead (spec.md §3: "A peer is considered dead at >= 2").
const MaxPingFail = 2

// State is a node's mutable ring state.
type State struct {
	Self Peer

	predecessor *Peer
	finger      [NumFingers]*Peer
	succSucc    *Peer

	pingFail map[string]int
}

// New builds ring state for a node identified by selfAddr ("HOST:PORT").
func New(selfAddr string) *State {
	return &State{
		Self:     peerOf(selfAddr),
		pingFail: make(map[string]int),
	}
}

// InitSingleton sets up the self-referential ring of size 1 (spec.md
// invariant I2): finger[0] = self, predecessor = self. Used when a node
// starts without a bootstrap peer.
func (s *State) InitSingleton() {
	self := s.Self
	s.finger[0] = &self
	pred := s.Self
	s.predecessor = &pred
}

// Predecessor returns the current predecessor, or nil if none is known.
func (s *State) Predecessor() *Peer { return s.predecessor }

// SetPredecessor overwrites the predecessor directly, bypassing the
// OnNotify comparison.
func (s *State) SetPredecessor(p *Peer) { s.predecessor = p }

// Successor returns finger[0], the immediate successor, or nil.
func (s *State) Successor() *Peer { return s.finger[0] }

// SetSuccessor overwrites finger[0] directly.
func (s *State) SetSuccessor(p *Peer) { s.finger[0] = p }

// SuccSucc returns the successor's successor, kept for failover, or nil.
func (s *State) SuccSucc() *Peer { return s.succSucc }

// SetSuccSucc overwrites succ_succ directly.
func (s *State) SetSuccSucc(p *Peer) { s.succSucc = p }

// Finger returns finger[i], or nil if unset.
func (s *State) Finger(i int) *Peer { return s.finger[i] }

// SetFinger overwrites finger[i].
func (s *State) SetFinger(i int, p *Peer) { s.finger[i] = p }

// TargetFor returns the ID a FINGER{i} lookup should resolve: self_id +
// 2^i (mod 2^160) (spec.md §3: "finger[i] is the known closest peer to
// self_id + 2^i").
func (s *State) TargetFor(i int) idspace.ID {
	return idspace.Add(s.Self.ID, idspace.Pow2(i))
}
