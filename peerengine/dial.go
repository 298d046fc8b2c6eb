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
	"github.com/pseudonym/chordring/idspace"
	"github.com/pseudonym/chordring/socket/server/tcp"
	"github.com/pseudonym/chordring/wire"
)

// dialPeer opens an outbound TCP connection on its own goroutine (so a
// slow or unreachable peer never blocks the loop) and delivers the result
// back onto the loop via onConnected. handler receives subsequent line
// events for the connection, same as any accepted connection.
func (n *Node) dialPeer(addr string, handler tcp.Handler, onConnected func(c *tcp.Conn, err error)) {
	go func() {
		c, err := tcp.Dial(addr, n.loop, handler)
		n.loop.Post(func() { onConnected(c, err) })
	}()
}

// xferReceiveHandler is the dedicated handler for the connection a node
// opens to RETR items from its new successor on join (spec.md §4.E "Data
// transfer on join"). Every XFER line is stored unconditionally; the
// connection is expected to close once the sender has drained its queue.
type xferReceiveHandler struct{ n *Node }

func (h *xferReceiveHandler) OnLine(c *tcp.Conn, line string) {
	verb, args, err := wire.Decode(line)
	if err != nil || verb != wire.VerbXfer {
		h.n.log.Warn("unexpected line on RETR connection", "line", line)
		return
	}
	x, err := wire.ParseXfer(args)
	if err != nil {
		h.n.log.Warn("malformed XFER")
		return
	}
	id, ok := idspace.Parse(x.Hash)
	if !ok {
		h.n.log.Warn("malformed XFER hash", "hash", x.Hash)
		return
	}
	payload, err := wire.B64Decode(x.Payload)
	if err != nil {
		h.n.log.Warn("malformed XFER payload")
		return
	}
	h.n.store.PutAt(id, payload)
}

func (h *xferReceiveHandler) OnKeepalive(c *tcp.Conn) {}

func (h *xferReceiveHandler) OnClose(c *tcp.Conn, err error) {}
