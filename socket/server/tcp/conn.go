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

// Package tcp implements the line-framed stream socket of spec.md §4.B.
// Go gives every connection its own blocking reader, so the non-blocking,
// readiness-driven socket the spec describes is realized here as one
// goroutine per connection that blocks in Read and posts decoded frames
// onto the owning reactor.Loop — the loop goroutine is the only place
// that ever touches node state, satisfying spec.md §5's single-executor
// requirement even though the I/O itself is not single-threaded.
package tcp

import (
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/pseudonym/chordring/errors"
	"github.com/pseudonym/chordring/socket/reactor"
	"github.com/pseudonym/chordring/wire"
)

// Handler receives line-framed events for one connection. Every method is
// invoked as a Job on the owning reactor.Loop — never concurrently, never
// from the connection's own reader goroutine.
type Handler interface {
	// OnLine is called once per fully framed, non-empty line.
	OnLine(c *Conn, line string)
	// OnKeepalive is called for an empty-line frame (spec.md P6): it must
	// leave node state unchanged.
	OnKeepalive(c *Conn)
	// OnClose is called at most once: when the peer hangs up, a read or
	// write fails, a frame exceeds wire.MaxLineLength, or CloseWhenDone
	// closes the socket. An explicit Close does not call it.
	OnClose(c *Conn, err error)
}

// Conn is one stream socket, peer-to-peer or operator-facing. It satisfies
// transaction.ClientConn so a Transaction can hold a reference to it
// without this package importing transaction (avoiding a cycle).
type Conn struct {
	nc   net.Conn
	loop *reactor.Loop
	h    Handler

	mu         sync.Mutex
	closeWhen  bool // close-when-done requested; close once outq drains
	outq       [][]byte
	writing    bool
	closed     bool
}

// newConn wires a raw net.Conn into the reactor, starting its dedicated
// reader goroutine.
func newConn(nc net.Conn, loop *reactor.Loop, h Handler) *Conn {
	c := &Conn{nc: nc, loop: loop, h: h}
	go c.readLoop()
	return c
}

// Dial opens an outbound stream connection (used for peer-to-peer GET/PUT/
// RETR and operator roll-call forwarding) and hands it to h on loop.
func Dial(addr string, loop *reactor.Loop, h Handler) (*Conn, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.ErrDialFailed.Error(err)
	}
	return newConn(nc, loop, h), nil
}

// RemoteAddr returns the remote HOST:PORT string.
func (c *Conn) RemoteAddr() string {
	return c.nc.RemoteAddr().String()
}

func (c *Conn) readLoop() {
	r := bufio.NewReaderSize(c.nc, 4096)
	var buf []byte
	tmp := make([]byte, 4096)

	for {
		n, err := r.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			for {
				consumed, line, keepalive := wire.Consume(buf)
				if consumed == 0 {
					if len(buf) > wire.MaxLineLength {
						c.postClose(errors.ErrFrameTooLarge.Error())
						return
					}
					break
				}
				buf = buf[consumed:]
				if keepalive {
					c.loop.Post(func() { c.h.OnKeepalive(c) })
					continue
				}
				ln := line
				c.loop.Post(func() { c.h.OnLine(c, ln) })
			}
		}
		if err != nil {
			if err == io.EOF {
				c.postClose(nil)
			} else {
				c.postClose(err)
			}
			return
		}
	}
}

func (c *Conn) postClose(err error) {
	c.loop.Post(func() {
		c.mu.Lock()
		already := c.closed
		c.closed = true
		c.mu.Unlock()
		if already {
			return
		}
		_ = c.nc.Close()
		c.h.OnClose(c, err)
	})
}

// WriteLine frames tokens and queues them for write. Safe to call from the
// loop goroutine only (matches every other node-state mutation).
func (c *Conn) WriteLine(tokens ...string) error {
	return c.writeRaw(wire.Encode(tokens...))
}

func (c *Conn) writeRaw(b []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.ErrSocketClosed.Error()
	}
	c.outq = append(c.outq, b)
	already := c.writing
	c.writing = true
	c.mu.Unlock()

	if !already {
		go c.drain()
	}
	return nil
}

func (c *Conn) drain() {
	for {
		c.mu.Lock()
		if len(c.outq) == 0 {
			c.writing = false
			shouldClose := c.closeWhen
			c.mu.Unlock()
			if shouldClose {
				_ = c.nc.Close()
			}
			return
		}
		next := c.outq[0]
		c.outq = c.outq[1:]
		c.mu.Unlock()

		if _, err := c.nc.Write(next); err != nil {
			c.postClose(err)
			return
		}
	}
}

// CloseWhenDone drains any queued output, then closes. Matches the
// TCP peer protocol's "responder closes after replying" convention
// (spec.md §6) and the operator-connection lifecycle (GET/PUT close
// after one reply; SHOW closes on its 10s timeout).
func (c *Conn) CloseWhenDone() {
	c.mu.Lock()
	c.closeWhen = true
	idle := !c.writing
	c.mu.Unlock()
	if idle {
		_ = c.nc.Close()
	}
}

// Close closes the connection immediately, discarding any queued output.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.nc.Close()
}
