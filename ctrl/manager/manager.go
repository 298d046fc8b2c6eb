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

// Package manager is the per-host shim SPEC_FULL.md §4 restores from
// manage.py: it dials ctrl/daemon, announces itself with HELLO, and turns
// the daemon's START/STOP/KILL requests into the lifecycle of one
// peerengine.Node — the thing spec.md §6's Boot Interface actually
// describes starting.
package manager

import (
	"math/rand"
	"net"
	"os"
	"strconv"

	"github.com/pseudonym/chordring/logger"
	"github.com/pseudonym/chordring/socket/reactor"
	"github.com/pseudonym/chordring/socket/server/tcp"
	"github.com/pseudonym/chordring/wire"
)

// Client is the interface a managed peer process exposes to Manager,
// matching manage.py's client.options()/client.start(opts)/client.stop().
// peerengine.ManagedNode implements it (see peerengine/manager_client.go).
type Client interface {
	// Start launches the Node listening at listenAddr, bootstrapping
	// against bootPeer ("" for a fresh singleton ring).
	Start(listenAddr, bootPeer string) error
	// Stop tears the Node down but leaves the manager's control
	// connection to the daemon open.
	Stop()
}

// Manager owns the control connection to ctrl/daemon and the one Client
// lifecycle it drives.
type Manager struct {
	client Client
	host   string
	loop   *reactor.Loop
	log    logger.Logger

	conn *tcp.Conn
}

// Dial connects to the daemon at serverAddr and announces HELLO host,
// matching manage.py's Manager.__init__.
func Dial(client Client, host, serverAddr string, loop *reactor.Loop, log logger.Logger) (*Manager, error) {
	m := &Manager{client: client, host: host, loop: loop, log: log}
	c, err := tcp.Dial(serverAddr, loop, &managerHandler{m: m})
	if err != nil {
		return nil, err
	}
	m.conn = c
	_ = c.WriteLine(string(wire.VerbHello), host)
	return m, nil
}

type managerHandler struct{ m *Manager }

func (h *managerHandler) OnKeepalive(c *tcp.Conn) {}

// OnClose implements manage.py's on_error: losing the daemon connection
// is fatal for a managed peer, there is nothing left to manage it.
func (h *managerHandler) OnClose(c *tcp.Conn, err error) {
	h.m.log.Error("lost connection to daemon")
	os.Exit(1)
}

func (h *managerHandler) OnLine(c *tcp.Conn, line string) {
	verb, args, err := wire.Decode(line)
	if err != nil {
		h.m.log.Warn("malformed manager line", "line", line)
		return
	}

	switch verb {
	case wire.VerbKill:
		h.m.log.Info("killed by daemon")
		os.Exit(0)
	case wire.VerbStart:
		s, err := wire.ParseStart(args)
		if err != nil {
			return
		}
		h.m.doStart(s.Bootstrap)
	case wire.VerbStop:
		h.m.doStop()
	default:
		h.m.log.Warn("unknown manager verb", "verb", string(verb))
	}
}

// doStart picks a random high port (manage.py: random.randrange(10000,
// 65536)) and starts the Node, reporting STARTED back to the daemon.
func (m *Manager) doStart(bootstrap string) {
	port := 10000 + rand.Intn(65536-10000)
	listenAddr := net.JoinHostPort(m.host, strconv.Itoa(port))

	bootPeer := ""
	if bootstrap != "none" {
		bootPeer = bootstrap
	}

	if err := m.client.Start(listenAddr, bootPeer); err != nil {
		m.log.Error("start failed", "err", err)
		return
	}
	_ = m.conn.WriteLine(string(wire.VerbStarted), m.host, strconv.Itoa(port))
}

// doStop implements manage.py's do_stop: tear the Node down, report
// STOPPED, keep the control connection to the daemon open.
func (m *Manager) doStop() {
	m.client.Stop()
	_ = m.conn.WriteLine(string(wire.VerbStopped), m.host)
}
