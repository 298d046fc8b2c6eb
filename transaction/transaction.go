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

// Package transaction implements the per-request correlation objects a
// Chord node keeps while a lookup or client request is in flight
// (spec.md §3, §9). The mixed-field record of the source is replaced with
// a tagged-union Kind, discriminated by KindTag. All fields live on one
// struct; only those relevant to Kind are set, and client-only fields
// (the owning socket, a payload, a timer) are zero for the other kinds.
package transaction

import (
	"fmt"
	"sync"
)

// KindTag discriminates the payload a Transaction carries.
type KindTag int

const (
	// KindFinger resolves finger[Index] during fix-finger or bootstrap.
	KindFinger KindTag = iota
	// KindBackup resolves succ_succ.
	KindBackup
	// KindPrune is the disabled range-repair lookup (spec.md §9); the
	// arithmetic exists elsewhere but this kind's timer is never scheduled.
	KindPrune
	// KindGet services a client CGET.
	KindGet
	// KindPut services a client CPUT.
	KindPut
	// KindShow services a client CSHOW roll-call.
	KindShow
)

func (k KindTag) String() string {
	switch k {
	case KindFinger:
		return "FINGER"
	case KindBackup:
		return "BACKUP"
	case KindPrune:
		return "PRUNE"
	case KindGet:
		return "GET"
	case KindPut:
		return "PUT"
	case KindShow:
		return "SHOW"
	default:
		return "UNKNOWN"
	}
}

// ClientConn is the minimal surface a transaction needs from the
// operator-facing stream socket it owns: enough to reply and to close
// once the exchange resolves. The concrete type lives in socket/server/tcp;
// this package only ever holds the interface to avoid an import cycle.
type ClientConn interface {
	WriteLine(tokens ...string) error
	CloseWhenDone()
}

// Timer is the minimal surface a transaction needs from a scheduled,
// cancellable callback (socket/reactor.Timer satisfies this).
type Timer interface {
	Cancel()
}

// Transaction is the tagged union described by spec.md §3/§9. Exactly the
// fields relevant to Kind are meaningful; others are zero.
type Transaction struct {
	ID   string
	Kind KindTag

	// KindFinger
	Index int

	// KindGet, KindPut, KindShow
	Client ClientConn

	// KindPut
	Payload []byte

	// KindShow
	Timer Timer
}

// Finger builds a FINGER{index} transaction.
func Finger(id string, index int) Transaction {
	return Transaction{ID: id, Kind: KindFinger, Index: index}
}

// Backup builds a BACKUP transaction.
func Backup(id string) Transaction {
	return Transaction{ID: id, Kind: KindBackup}
}

// Prune builds a PRUNE transaction. Its arithmetic is implemented
// elsewhere (ring package); nothing ever schedules the timer that would
// create one of these in production use (spec.md §9).
func Prune(id string) Transaction {
	return Transaction{ID: id, Kind: KindPrune}
}

// Get builds a GET{client} transaction for a CGET request.
func Get(id string, client ClientConn) Transaction {
	return Transaction{ID: id, Kind: KindGet, Client: client}
}

// Put builds a PUT{client,payload} transaction for a CPUT request.
func Put(id string, client ClientConn, payload []byte) Transaction {
	return Transaction{ID: id, Kind: KindPut, Client: client, Payload: payload}
}

// Show builds a SHOW{client,timer} transaction for a CSHOW roll-call.
func Show(id string, client ClientConn, timer Timer) Transaction {
	return Transaction{ID: id, Kind: KindShow, Client: client, Timer: timer}
}

// Registry is the per-node map from transaction ID to Transaction,
// keyed "<self-name>-<counter>" (spec.md §3). It also owns the monotonic
// counter that makes IDs unique without a coordinator.
//
// The registry guards its counter and map with its own mutex, so its
// methods may be called from any goroutine.
type Registry struct {
	mu      sync.Mutex
	self    string
	counter uint64
	byID    map[string]Transaction
}

// NewRegistry builds an empty registry for a node named self ("HOST:PORT").
func NewRegistry(self string) *Registry {
	return &Registry{self: self, byID: make(map[string]Transaction)}
}

// NextID allocates a fresh, globally-unique transaction ID.
func (r *Registry) NextID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter++
	return fmt.Sprintf("%s-%d", r.self, r.counter)
}

// Add registers t under t.ID, overwriting any previous entry of the same
// ID (IDs are monotonic per node so this should never collide in practice).
func (r *Registry) Add(t Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[t.ID] = t
}

// Get looks up a transaction by ID.
func (r *Registry) Get(id string) (Transaction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	return t, ok
}

// Remove deletes a transaction by ID, returning it and whether it existed.
func (r *Registry) Remove(id string) (Transaction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if ok {
		delete(r.byID, id)
	}
	return t, ok
}

// RemoveByClient purges every client-kind transaction (GET/PUT/SHOW)
// referencing conn, used when that operator socket disconnects
// (spec.md §4.E "On-error for owned sockets"). This is the corrected
// behavior for the source's on_error typo (spec.md §9): the source names
// the outer loop variable i but calls t.remove() on an unrelated unbound
// t, which in a dynamically-typed source either no-ops or panics; the
// intent — removing the transaction matching the dead socket — is what
// this implements.
func (r *Registry) RemoveByClient(conn ClientConn) []Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()

	var purged []Transaction
	for id, t := range r.byID {
		switch t.Kind {
		case KindGet, KindPut, KindShow:
			if t.Client == conn {
				purged = append(purged, t)
				delete(r.byID, id)
			}
		}
	}
	return purged
}

// Len reports the number of live transactions, used by tests and status
// reporting.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
