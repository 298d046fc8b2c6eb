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

package peerengine_test

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/pseudonym/chordring/logger"
	"github.com/pseudonym/chordring/peerengine"
	"github.com/pseudonym/chordring/socket/reactor"
	"github.com/pseudonym/chordring/socket/server/tcp"
	"github.com/pseudonym/chordring/socket/server/udp"
)

// testIntervals shrinks the four active periodic ring timers to millisecond
// scale so integration tests don't wait out spec.md §4.D's 10-15s
// real-time cadence.
var testIntervals = peerengine.Intervals{
	Stabilize: 20 * time.Millisecond,
	FixFinger: 25 * time.Millisecond,
	Backup:    20 * time.Millisecond,
	Ping:      20 * time.Millisecond,
}

// spawnNode binds real loopback sockets, starts its own reactor loop,
// and returns a running Node bootstrapped against bootPeer (empty for a
// singleton). The loop and sockets are torn down via t.Cleanup.
func spawnNode(t *testing.T, bootPeer string) *peerengine.Node {
	t.Helper()

	loop := reactor.New(64)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	rawLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := rawLn.Addr().String()

	n := peerengine.New(addr, loop, logger.Default())
	n.SetIntervals(testIntervals)

	ln := tcp.NewListener(rawLn, loop, n.ListenHandler(), func(*tcp.Conn) {})
	dgram, err := udp.Listen(addr, loop, n.UDPHandler())
	if err != nil {
		t.Fatalf("udp listen: %v", err)
	}

	n.Attach(ln, dgram)
	n.Bootstrap(bootPeer)

	t.Cleanup(func() {
		n.Stop()
		cancel()
	})
	return n
}

// cput sends "CPUT <base64>" over a fresh connection to addr and returns
// the hash from the CDATA/COK reply line.
func cput(t *testing.T, addr, b64Payload string) string {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("CPUT " + b64Payload + "\n")); err != nil {
		t.Fatalf("write CPUT: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read CPUT reply: %v", err)
	}
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != "COK" {
		t.Fatalf("unexpected CPUT reply: %q", line)
	}
	return fields[1]
}

// cget sends "CGET <hash>" over a fresh connection to addr and returns
// the full reply line.
func cget(t *testing.T, addr, hash string) string {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("CGET " + hash + "\n")); err != nil {
		t.Fatalf("write CGET: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read CGET reply: %v", err)
	}
	return strings.TrimSuffix(line, "\n")
}

// TestSingletonRingClosesOnItself is P1/P2 for the one-node case: a
// node started without a bootstrap peer is its own successor and its
// own predecessor (spec.md invariant I2), so following finger[0] once
// already returns to start.
func TestSingletonRingClosesOnItself(t *testing.T) {
	n := spawnNode(t, "")

	succ := n.Successor()
	if succ == nil || succ.Addr != n.Self {
		t.Fatalf("expected finger[0] = self, got %+v", succ)
	}
	pred := n.Predecessor()
	if pred == nil || pred.Addr != n.Self {
		t.Fatalf("expected predecessor = self, got %+v", pred)
	}
}

// TestTwoNodeJoinClosesRingAndConverges is P1/P2 for a two-node ring:
// spec.md §8 scenario 2. After stabilization, each node's successor and
// predecessor is the other, so finger[0] visits both nodes and returns.
func TestTwoNodeJoinClosesRingAndConverges(t *testing.T) {
	a := spawnNode(t, "")
	b := spawnNode(t, a.Self)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		as, bs := a.Successor(), b.Successor()
		ap, bp := a.Predecessor(), b.Predecessor()
		if as != nil && bs != nil && ap != nil && bp != nil &&
			as.Addr == b.Self && bs.Addr == a.Self &&
			ap.Addr == b.Self && bp.Addr == a.Self {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("ring did not converge: a.succ=%+v a.pred=%+v b.succ=%+v b.pred=%+v",
		a.Successor(), a.Predecessor(), b.Successor(), b.Predecessor())
}

// TestCPutCGetRoundTrip is P7: a value stored via CPUT on a singleton
// ring comes back unchanged via CGET on the same node.
func TestCPutCGetRoundTrip(t *testing.T) {
	n := spawnNode(t, "")

	hash := cput(t, n.Self, "aGVsbG8=") // "hello"
	reply := cget(t, n.Self, hash)

	if reply != "CDATA aGVsbG8=" {
		t.Fatalf("unexpected CGET reply: %q", reply)
	}
}

// TestCGetUnknownHashReturnsCError is spec.md §4.E's CGET-miss branch:
// a hash nothing was ever PUT under resolves to a CERROR, not a hang.
func TestCGetUnknownHashReturnsCError(t *testing.T) {
	n := spawnNode(t, "")

	reply := cget(t, n.Self, "0000000000000000000000000000000000000000")
	if !strings.HasPrefix(reply, "CERROR ") {
		t.Fatalf("expected a CERROR reply for an unknown hash, got %q", reply)
	}
}

// TestTwoNodeLookupResolvesOnEitherNode is P3 for a converged two-node
// ring: a value put on A is retrievable through B once stabilization
// has run, since ownership — not which socket received the CGET — is
// what the spec's closest-preceding-finger rule decides.
func TestTwoNodeLookupResolvesOnEitherNode(t *testing.T) {
	a := spawnNode(t, "")
	b := spawnNode(t, a.Self)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if as, bs := a.Successor(), b.Successor(); as != nil && bs != nil &&
			as.Addr == b.Self && bs.Addr == a.Self {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	hash := cput(t, a.Self, "d29ybGQ=") // "world"
	reply := cget(t, b.Self, hash)
	if reply != "CDATA d29ybGQ=" {
		t.Fatalf("unexpected cross-node CGET reply: %q", reply)
	}
}
