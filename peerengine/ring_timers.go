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
	"math/rand"
	"os"

	"github.com/pseudonym/chordring/idspace"
	"github.com/pseudonym/chordring/transaction"
	"github.com/pseudonym/chordring/wire"
)

// onStabilizeTimer implements spec.md §4.D's stabilize timer: ask the
// successor for its predecessor, and unconditionally notify it of us.
func (n *Node) onStabilizeTimer() {
	succ := n.ring.Successor()
	if succ == nil {
		return
	}
	n.udp.Send(succ.Addr, string(wire.VerbGetP), n.Self)
	n.udp.Send(succ.Addr, string(wire.VerbNotify), n.Self)
}

// onFixFingerTimer implements spec.md §4.D's fix-finger timer: probe a
// random high finger index to keep long-range routing fresh.
func (n *Node) onFixFingerTimer() {
	index := 152 + rand.Intn(idspace.Bits-152)
	target := n.ring.TargetFor(index)

	id := n.txns.NextID()
	n.txns.Add(transaction.Finger(id, index))
	n.find(target, id)
}

// onBackupTimer implements spec.md §4.D's backup timer: keep succ_succ
// fresh, promoting it into finger[0] if the successor has gone missing,
// and enforcing the fatal total-successor-loss condition of spec.md §7.
func (n *Node) onBackupTimer() {
	succ := n.ring.Successor()
	if succ == nil {
		if n.ring.SuccSucc() == nil {
			n.fatal("successor and successor's successor both lost")
			return
		}
		n.ring.SetSuccessor(n.ring.SuccSucc())
		n.ring.SetSuccSucc(nil)
		succ = n.ring.Successor()
	}

	target := idspace.AddUint(succ.ID, 1)
	id := n.txns.NextID()
	n.txns.Add(transaction.Backup(id))
	n.find(target, id)
}

// onPingTimer implements spec.md §4.D's ping timer: evict peers that
// missed two consecutive rounds (promoting succ_succ if the successor
// died), then ping everyone still in fingers ∪ {predecessor}.
func (n *Node) onPingTimer() {
	successorDied := n.ring.EvictDead()
	if successorDied && n.ring.Successor() == nil {
		n.fatal("successor and successor's successor both lost")
		return
	}

	for _, addr := range n.ring.BeginPingRound() {
		n.udp.Send(addr, string(wire.VerbPing), n.Self)
	}
}

// fatal implements spec.md §7's "Total successor loss" condition: an
// intentional crash-stop rather than silent wedging.
func (n *Node) fatal(reason string) {
	n.log.Error("fatal: " + reason)
	os.Exit(1)
}
