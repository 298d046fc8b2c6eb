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

package tcp

import (
	"net"

	"github.com/pseudonym/chordring/socket/reactor"
)

// AcceptHandler is notified on the loop goroutine of each freshly
// accepted connection, one call per accept. The connection is already
// wired to the single Handler given to NewListener, which serves both
// peer-protocol and operator-protocol verbs, since both arrive on the
// same boot-provided fd (spec.md §6 distinguishes verbs, not ports).
type AcceptHandler func(c *Conn)

// Listener wraps a pre-opened TCP listening socket. The boot interface
// (spec.md §6) hands the peer an already-bound fd rather than letting it
// call net.Listen itself; ListenFromFD (bootlisten.go) is how that fd becomes a
// net.Listener (grounded on the os.NewFile/net.FileListener handoff
// pattern for inherited descriptors).
type Listener struct {
	ln   net.Listener
	loop *reactor.Loop
	stop chan struct{}
}

// NewListener starts accepting on an already-open net.Listener. New
// connections are wired to h and delivered to onAccept on the loop
// goroutine.
func NewListener(ln net.Listener, loop *reactor.Loop, h Handler, onAccept AcceptHandler) *Listener {
	l := &Listener{ln: ln, loop: loop, stop: make(chan struct{})}
	go l.acceptLoop(h, onAccept)
	return l
}

func (l *Listener) acceptLoop(h Handler, onAccept AcceptHandler) {
	for {
		nc, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.stop:
				return
			default:
			}
			return
		}
		c := newConn(nc, l.loop, h)
		l.loop.Post(func() { onAccept(c) })
	}
}

// Close stops accepting and closes the underlying listening socket.
func (l *Listener) Close() error {
	close(l.stop)
	return l.ln.Close()
}

// Addr returns the bound local address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}
