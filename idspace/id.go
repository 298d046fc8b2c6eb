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

// Package idspace implements the 160-bit identifier arithmetic the ring is
// built on: node/file hashing with domain separation, circular distance,
// and modular addition. Every ID is a fixed-width [20]byte value so
// comparisons and map keys behave exactly like the wire's 40-hex-digit
// representation.
package idspace

import (
	"crypto/sha1" //nolint:gosec // used as a uniform address function, not for integrity (spec §4.C)
	"encoding/hex"
	"math/big"
)

// Size is the width of the identifier space in bytes (160 bits).
const Size = 20

// Bits is the width of the identifier space in bits.
const Bits = Size * 8

// domain separator bytes, prepended to the hash input so a node address and
// a file payload can never collide even if byte-identical (spec §3, P4).
const (
	domainNode byte = 0x00
	domainFile byte = 0x01
)

// ID is a 160-bit identifier rendered, on the wire, as 40 lowercase hex
// digits.
type ID [Size]byte

// NodeID computes the node identifier for addr ("HOST:PORT").
func NodeID(addr string) ID {
	return hashWithDomain(domainNode, []byte(addr))
}

// FileID computes the file identifier for an item's payload.
func FileID(payload []byte) ID {
	return hashWithDomain(domainFile, payload)
}

func hashWithDomain(domain byte, data []byte) ID {
	h := sha1.New() //nolint:gosec
	h.Write([]byte{domain})
	h.Write(data)

	var id ID
	copy(id[:], h.Sum(nil))
	return id
}

// String renders the ID as 40 lowercase hex digits.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Parse reads an ID back from its 40-hex-digit wire representation.
func Parse(s string) (ID, bool) {
	var id ID
	if len(s) != Size*2 {
		return id, false
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, false
	}
	copy(id[:], b)
	return id, true
}

// Equal reports whether two IDs are identical.
func (id ID) Equal(other ID) bool {
	return id == other
}

func (id ID) big() *big.Int {
	return new(big.Int).SetBytes(id[:])
}

// modulus is 2^160, the size of the identifier space.
func modulus() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), Bits)
}

// Distance returns the forward (clockwise) distance from a to b on the
// ring. If a == b the distance is defined as 2^160 rather than 0 so a
// single-node ring still routes forward to itself (spec §3).
func Distance(a, b ID) *big.Int {
	if a == b {
		return modulus()
	}
	d := new(big.Int).Sub(b.big(), a.big())
	if d.Sign() < 0 {
		d.Add(d, modulus())
	}
	return d
}

// Less reports whether the forward distance from self to a is strictly
// less than the forward distance from self to b — i.e. whether a is
// closer to self, walking the ring clockwise, than b is.
func Less(self, a, b ID) bool {
	return Distance(self, a).Cmp(Distance(self, b)) < 0
}

// Add returns (id + n) mod 2^160, rendered from the masked sum (the
// unmasked sum must never leak into the result — see spec.md §9 on the
// source's add_to_id rendering bug).
func Add(id ID, n *big.Int) ID {
	sum := new(big.Int).Add(id.big(), n)
	sum.Mod(sum, modulus())

	var out ID
	b := sum.Bytes()
	copy(out[Size-len(b):], b)
	return out
}

// AddUint adds a non-negative integer n to id modulo 2^160. It's the
// common case (n = 2^i for finger index i, or n = 1 for the backup probe)
// and avoids a big.Int literal at call sites.
func AddUint(id ID, n uint64) ID {
	return Add(id, new(big.Int).SetUint64(n))
}

// Pow2 returns 2^exp as a *big.Int, for building finger-table offsets.
func Pow2(exp int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(exp))
}
