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

// Package udp implements the datagram socket of spec.md §4.B: peer-to-peer
// FIND/FOUND/GETP/PRED/NOTIFY/SHOW/PEER/PING/PONG traffic. As in socket/
// server/tcp, Go's blocking ReadFrom runs on its own goroutine and posts
// decoded packets onto the owning reactor.Loop so all state mutation still
// happens on the single loop goroutine.
package udp

import (
	"context"
	"net"
	"sync"
	"syscall"

	"github.com/pseudonym/chordring/errors"
	"github.com/pseudonym/chordring/socket/reactor"
	"github.com/pseudonym/chordring/wire"
	"golang.org/x/sys/unix"
)

// Handler receives decoded datagrams. OnPacket runs as a Job on the owning
// reactor.Loop, never concurrently with other node-state mutation.
type Handler interface {
	OnPacket(from string, line string)
	OnError(err error)
}

// Conn wraps a UDP socket opened with SO_REUSEADDR (spec.md §4.B), either
// freshly bound or inherited via FromFD from the boot interface.
type Conn struct {
	pc   net.PacketConn
	loop *reactor.Loop
	h    Handler

	mu   sync.Mutex
	outq []outPacket
}

type outPacket struct {
	addr *net.UDPAddr
	data []byte
}

// Listen opens a new UDP socket on addr with SO_REUSEADDR set, for
// standalone use outside the boot-interface flow (tests, standalone
// cmd/chordpeer, peerengine.ManagedNode).
func Listen(addr string, loop *reactor.Loop, h Handler) (*Conn, error) {
	pc, err := listenReuseAddr(addr)
	if err != nil {
		return nil, errors.ErrListenFailed.Error(err)
	}
	return newConn(pc, loop, h), nil
}

func listenReuseAddr(addr string) (net.PacketConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, rc syscall.RawConn) error {
			var sockErr error
			err := rc.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	return lc.ListenPacket(context.Background(), "udp", addr)
}

func newConn(pc net.PacketConn, loop *reactor.Loop, h Handler) *Conn {
	c := &Conn{pc: pc, loop: loop, h: h}
	go c.readLoop()
	return c
}

func (c *Conn) readLoop() {
	buf := make([]byte, 64*1024)
	for {
		n, addr, err := c.pc.ReadFrom(buf)
		if err != nil {
			c.loop.Post(func() { c.h.OnError(err) })
			return
		}
		_, line, keepalive := wire.Consume(append(buf[:n:n], '\n'))
		if keepalive {
			continue
		}
		from := addr.String()
		ln := line
		c.loop.Post(func() { c.h.OnPacket(from, ln) })
	}
}

// Send enqueues a datagram to addr ("HOST:PORT") and flushes it. UDP
// writes in Go don't block the way spec.md's WRITE-readiness model
// assumes, so the outbound queue here is a formality kept for symmetry
// with the stream socket and as a natural point to apply backpressure if
// a future caller needs it.
func (c *Conn) Send(addr string, tokens ...string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return errors.ErrMalformedMessage.Error(err)
	}
	data := wire.Encode(tokens...)

	c.mu.Lock()
	c.outq = append(c.outq, outPacket{addr: udpAddr, data: data})
	c.mu.Unlock()

	return c.flush()
}

func (c *Conn) flush() error {
	for {
		c.mu.Lock()
		if len(c.outq) == 0 {
			c.mu.Unlock()
			return nil
		}
		next := c.outq[0]
		c.outq = c.outq[1:]
		c.mu.Unlock()

		if _, err := c.pc.WriteTo(next.data, next.addr); err != nil {
			return errors.ErrSocketClosed.Error(err)
		}
	}
}

// Close shuts down the socket.
func (c *Conn) Close() error {
	return c.pc.Close()
}

// LocalAddr returns the bound local address.
func (c *Conn) LocalAddr() net.Addr {
	return c.pc.LocalAddr()
}
