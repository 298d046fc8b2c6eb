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

package ring

import (
	"github.com/pseudonym/chordring/idspace"
)

// OnPred implements the stabilize-reply rule of spec.md §4.D: "On PRED p:
// if distance(self, p) < distance(self, successor) then finger[0] := p."
// Returns whether the successor changed.
func (s *State) OnPred(addr string) bool {
	if addr == "" {
		return false
	}
	p := peerOf(addr)
	succ := s.finger[0]
	if succ == nil {
		s.finger[0] = &p
		return true
	}
	if idspace.Distance(s.Self.ID, p.ID).Cmp(idspace.Distance(s.Self.ID, succ.ID)) < 0 {
		s.finger[0] = &p
		return true
	}
	return false
}

// OnNotify implements spec.md §4.D's predecessor-update rule: "On NOTIFY
// p: if predecessor is null OR distance(p, self) < distance(predecessor,
// self), set predecessor := p." Returns whether the predecessor changed.
func (s *State) OnNotify(addr string) bool {
	p := peerOf(addr)
	if s.predecessor == nil {
		s.predecessor = &p
		return true
	}
	if idspace.Distance(p.ID, s.Self.ID).Cmp(idspace.Distance(s.predecessor.ID, s.Self.ID)) < 0 {
		s.predecessor = &p
		return true
	}
	return false
}

// OnFingerResolved implements spec.md §4.D's FINGER-transaction-resolved
// rule. peer == self is ignored (self is the implicit fallback). The
// caller is responsible for opening the RETR connection; this method only
// updates state and reports whether that RETR should happen, which is
// true for every non-self resolution of index 0, whether or not the peer
// differs from the previous finger[0].
func (s *State) OnFingerResolved(index int, peerAddr string) (isNewSuccessor bool) {
	if peerAddr == s.Self.Addr {
		return false
	}
	p := peerOf(peerAddr)
	if index == 0 {
		isNewSuccessor = true
	}
	s.finger[index] = &p
	return isNewSuccessor
}

// OnBackupResolved implements spec.md §4.D: "Backup transaction resolved.
// Record succ_succ := peer."
func (s *State) OnBackupResolved(peerAddr string) {
	p := peerOf(peerAddr)
	s.succSucc = &p
}

// FindForward implements spec.md §4.E's closest-preceding-finger routing
// rule. It returns the peer to forward FIND to, or nil plus ok=false if
// this node itself is the owner of hash (the caller then replies FOUND).
func (s *State) FindForward(hash idspace.ID) (forwardTo *Peer, ok bool) {
	for i := NumFingers - 1; i >= 0; i-- {
		f := s.finger[i]
		if f == nil {
			continue
		}
		if idspace.Distance(s.Self.ID, hash).Cmp(idspace.Distance(s.Self.ID, f.ID)) > 0 {
			return f, true
		}
	}
	return nil, false
}

// Owner returns who this node currently believes owns hash when no finger
// qualifies to forward to: the successor, or self if there is no
// successor (spec.md §4.E: "If no such finger exists, the successor (or
// self if no successor) is the owner").
func (s *State) Owner() Peer {
	if s.finger[0] != nil {
		return *s.finger[0]
	}
	return s.Self
}

// PingFail returns the current consecutive-miss count for addr.
func (s *State) PingFail(addr string) int {
	return s.pingFail[addr]
}

// ResetPingFail implements the PONG handler (spec.md §6: "resets
// ping_fail[addr] to 0").
func (s *State) ResetPingFail(addr string) {
	s.pingFail[addr] = 0
}

// PingTargets returns the unique set of peers to ping this round: fingers
// union predecessor (spec.md §4.D ping timer), excluding self. It does not
// touch ping_fail; BeginPingRound builds the fresh map for exactly these
// peers with their incremented counters, matching I5 ("a new map is built
// each round; peers not pinged this round are forgotten").
func (s *State) PingTargets() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(p *Peer) {
		if p == nil || p.Addr == s.Self.Addr || seen[p.Addr] {
			return
		}
		seen[p.Addr] = true
		out = append(out, p.Addr)
	}
	for _, f := range s.finger {
		add(f)
	}
	add(s.predecessor)
	return out
}

// BeginPingRound increments every target's miss count in a fresh map,
// discarding counts for peers no longer being pinged (I5), then returns
// the targets (so the caller can send PING to each).
func (s *State) BeginPingRound() []string {
	targets := s.PingTargets()
	fresh := make(map[string]int, len(targets))
	for _, addr := range targets {
		fresh[addr] = s.pingFail[addr] + 1
	}
	s.pingFail = fresh
	return targets
}

// EvictDead removes every peer at or above MaxPingFail from predecessor
// and the finger table (spec.md §4.D ping timer: "Evict any peer with
// ping_fail >= 2 from predecessor/fingers, promoting succ_succ if
// finger[0] dies"). Returns whether finger[0] specifically was evicted,
// so the caller knows to promote succ_succ (and to check for total
// successor loss per spec.md §7).
func (s *State) EvictDead() (successorDied bool) {
	dead := func(p *Peer) bool {
		return p != nil && s.pingFail[p.Addr] >= MaxPingFail
	}

	if dead(s.predecessor) {
		s.predecessor = nil
	}
	for i := range s.finger {
		if dead(s.finger[i]) {
			if i == 0 {
				successorDied = true
			}
			s.finger[i] = nil
		}
	}
	if successorDied {
		s.finger[0] = s.succSucc
		s.succSucc = nil
	}
	return successorDied
}

// SuccessorLost reports the fatal condition of spec.md §7: both finger[0]
// and succ_succ are gone.
func (s *State) SuccessorLost() bool {
	return s.finger[0] == nil && s.succSucc == nil
}
