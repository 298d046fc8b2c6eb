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

package daemon

import (
	"github.com/pseudonym/chordring/socket/server/tcp"
	"github.com/pseudonym/chordring/wire"
)

// connHandler dispatches daemon.py's on_data cases. One instance is
// shared across every accepted connection (the Listener hands every
// connection the same Handler); which peer a connection speaks for, if
// any, is looked up in Daemon.connPeer rather than held in the handler.
type connHandler struct{ d *Daemon }

func (h *connHandler) OnKeepalive(c *tcp.Conn) {}

func (h *connHandler) OnClose(c *tcp.Conn, err error) {
	// daemon.py's on_error: a disconnected peer goes DEAD; a client is
	// just dropped from the broadcast set.
	if p, ok := h.d.connPeer[c]; ok {
		p.status = StatusDead
		p.port = ""
		p.conn = nil
		delete(h.d.connPeer, c)
		h.d.broadcast(p.host, StatusDead)
		return
	}
	delete(h.d.clients, c)
}

func (h *connHandler) OnLine(c *tcp.Conn, line string) {
	verb, args, err := wire.Decode(line)
	if err != nil {
		h.d.log.Warn("malformed daemon line", "line", line)
		return
	}

	switch verb {
	case wire.VerbHello:
		h.onHello(c, args)
	case wire.VerbStarted:
		h.onStarted(args)
	case wire.VerbStopped:
		h.onStopped(args)
	case wire.VerbCHello:
		h.onCHello(c)
	case wire.VerbCStart:
		h.onCStart(args)
	case wire.VerbCStop:
		h.onCStop(args)
	case wire.VerbCKill:
		h.onCKill(args)
	default:
		h.d.log.Warn("unknown daemon verb", "verb", string(verb))
	}
}

func (h *connHandler) onHello(c *tcp.Conn, args []string) {
	m, err := wire.ParseHello(args)
	if err != nil {
		return
	}
	p, ok := h.d.peers[m.Host]
	if !ok {
		h.d.log.Warn("HELLO from unknown host", "host", m.Host)
		return
	}
	p.status = StatusStopped
	p.conn = c
	h.d.connPeer[c] = p
	h.d.broadcast(p.host, p.status)
}

func (h *connHandler) onStarted(args []string) {
	m, err := wire.ParseStarted(args)
	if err != nil {
		return
	}
	p, ok := h.d.peers[m.Host]
	if !ok {
		return
	}
	p.status = StatusStarted
	p.port = m.Port
	h.d.broadcast(p.host, p.status)
}

func (h *connHandler) onStopped(args []string) {
	m, err := wire.ParseStopped(args)
	if err != nil {
		return
	}
	p, ok := h.d.peers[m.Host]
	if !ok {
		return
	}
	p.status = StatusStopped
	p.port = ""
	h.d.broadcast(p.host, p.status)
}

// onCHello replies with every peer's current state, then subscribes the
// connection to future broadcasts (daemon.py's CHELLO branch).
func (h *connHandler) onCHello(c *tcp.Conn) {
	for _, p := range h.d.peers {
		_ = c.WriteLine(string(wire.VerbState), p.host, p.status.String())
	}
	h.d.clients[c] = struct{}{}
}

func (h *connHandler) onCStart(args []string) {
	m, err := wire.ParseCStart(args)
	if err != nil {
		return
	}
	p, ok := h.d.peers[m.Host]
	if !ok || p.status != StatusStopped || p.conn == nil {
		return
	}
	_ = p.conn.WriteLine(string(wire.VerbStart), h.d.pickBootstrap())
}

func (h *connHandler) onCStop(args []string) {
	m, err := wire.ParseCStop(args)
	if err != nil {
		return
	}
	p, ok := h.d.peers[m.Host]
	if !ok || p.status != StatusStarted || p.conn == nil {
		return
	}
	_ = p.conn.WriteLine(string(wire.VerbStop))
}

func (h *connHandler) onCKill(args []string) {
	m, err := wire.ParseCKill(args)
	if err != nil {
		return
	}
	p, ok := h.d.peers[m.Host]
	if !ok || p.conn == nil || (p.status != StatusStarted && p.status != StatusStopped) {
		return
	}
	_ = p.conn.WriteLine(string(wire.VerbKill))
}
