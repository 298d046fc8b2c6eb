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

// Package items implements a node's local opaque byte-string store
// (spec.md §3 `items`) and the RETR range-transfer scan used on join
// (spec.md §4.E "Data transfer on join"). Non-goals per spec.md §1 apply
// directly: no persistence across restarts, no integrity checking, no
// replication beyond what RETR/XFER already performs.
package items

import (
	"github.com/pseudonym/chordring/idspace"
)

// Store is a node's private item map, touched only from the loop goroutine
// (spec.md §5) — it carries no lock of its own.
type Store struct {
	byID map[idspace.ID][]byte
}

// NewStore builds an empty item store.
func NewStore() *Store {
	return &Store{byID: make(map[idspace.ID][]byte)}
}

// Put stores payload under its own content hash and returns the hash
// (spec.md CPUT handling: "compute h = make_file_id(payload)").
func (s *Store) Put(payload []byte) idspace.ID {
	id := idspace.FileID(payload)
	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.byID[id] = cp
	return id
}

// PutAt inserts payload under an explicit id, unconditionally overwriting
// any existing value. This is XFER's insertion rule (spec.md §4.E:
// "Receivers of XFER hash data insert into local items unconditionally").
func (s *Store) PutAt(id idspace.ID, payload []byte) {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.byID[id] = cp
}

// Get returns the payload for id and whether it was present.
func (s *Store) Get(id idspace.ID) ([]byte, bool) {
	v, ok := s.byID[id]
	return v, ok
}

// Len reports how many items are held.
func (s *Store) Len() int {
	return len(s.byID)
}

// RangeTransfer returns every (id, payload) pair with
// distance(low, id) < distance(low, high), the rule RETR uses to pick
// what to XFER. The comparison is strict, so the selected range is the
// open interval (low, high): neither low nor high itself is included.
// Iteration order is unspecified, matching the source's map scan.
func (s *Store) RangeTransfer(low, high idspace.ID) []Entry {
	highDist := idspace.Distance(low, high)

	var out []Entry
	for id, payload := range s.byID {
		if idspace.Distance(low, id).Cmp(highDist) < 0 {
			out = append(out, Entry{ID: id, Payload: payload})
		}
	}
	return out
}

// Entry pairs an item's ID with its payload, used by RangeTransfer.
type Entry struct {
	ID      idspace.ID
	Payload []byte
}
