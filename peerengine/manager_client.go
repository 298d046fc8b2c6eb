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
	"net"

	"github.com/pseudonym/chordring/errors"
	"github.com/pseudonym/chordring/logger"
	"github.com/pseudonym/chordring/socket/reactor"
	"github.com/pseudonym/chordring/socket/server/tcp"
	"github.com/pseudonym/chordring/socket/server/udp"
)

// ManagedNode adapts Node's standalone-mode lifecycle (open its own
// sockets with net.Listen rather than inheriting boot-interface fds) to
// ctrl/manager.Client's Start/Stop contract — this is the "opts['listen_sock']
// = ListenSocket(port, ...)" half of manage.py's do_start, realized without
// fd inheritance since a manager-spawned process, unlike a daemon-inherited
// one, is free to bind its own sockets.
type ManagedNode struct {
	loop      *reactor.Loop
	log       logger.Logger
	intervals Intervals
	node      *Node
}

// NewManaged builds a ManagedNode sharing the given reactor loop. The loop
// must already be running (loop.Run(ctx) in its own goroutine) before
// Start is called.
func NewManaged(loop *reactor.Loop, log logger.Logger) *ManagedNode {
	return &ManagedNode{loop: loop, log: log}
}

// SetIntervals overrides the periodic timer cadence every Node this
// ManagedNode starts will use. Must be called before Start.
func (c *ManagedNode) SetIntervals(iv Intervals) {
	c.intervals = iv
}

// Start implements ctrl/manager.Client: bind listenAddr for both the
// stream and datagram sockets, wire a fresh Node to them, and bootstrap.
func (c *ManagedNode) Start(listenAddr, bootPeer string) error {
	rawLn, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return errors.ErrListenFailed.Error(err)
	}

	n := New(listenAddr, c.loop, c.log)
	n.SetIntervals(c.intervals)
	ln := tcp.NewListener(rawLn, c.loop, n.ListenHandler(), func(*tcp.Conn) {})

	dgram, err := udp.Listen(listenAddr, c.loop, n.UDPHandler())
	if err != nil {
		_ = ln.Close()
		return err
	}

	n.Attach(ln, dgram)
	n.Bootstrap(bootPeer)
	c.node = n
	return nil
}

// Stop tears down the currently running Node, if any.
func (c *ManagedNode) Stop() {
	if c.node != nil {
		c.node.Stop()
		c.node = nil
	}
}
