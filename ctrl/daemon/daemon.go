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

// Package daemon is the central registry SPEC_FULL.md §4 restores from
// daemon.py: it tracks every known peer host's DEAD/STOPPED/STARTED state,
// accepts peer HELLO/STARTED/STOPPED reports and operator CHELLO/CSTART/
// CSTOP/CKILL requests on one TCP listener, and keeps dead hosts alive with
// a periodic revive command. It is built the same way peerengine.Node is:
// one reactor.Loop owns all mutable state, fed by per-connection Jobs.
package daemon

import (
	"math/rand"
	"os/exec"
	"time"

	"github.com/pseudonym/chordring/logger"
	"github.com/pseudonym/chordring/socket/reactor"
	"github.com/pseudonym/chordring/socket/server/tcp"
	"github.com/pseudonym/chordring/wire"
)

// Status mirrors daemon.py's Peer status flags.
type Status int

const (
	StatusDead Status = iota
	StatusStopped
	StatusStarted
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "STOPPED"
	case StatusStarted:
		return "STARTED"
	default:
		return "DEAD"
	}
}

const (
	keepaliveInterval = 15 * time.Second // spec.md §4.B's shared keepalive cadence
	reviveInterval    = 60 * time.Second
)

type peerRecord struct {
	host   string
	status Status
	port   string
	conn   *tcp.Conn
}

// Daemon is the registry plus its listener and timers.
type Daemon struct {
	loop *reactor.Loop
	log  logger.Logger

	selfAddr      string
	reviveCommand []string

	peers   map[string]*peerRecord
	clients map[*tcp.Conn]struct{}

	// connPeer identifies which peerRecord a given connection has said
	// HELLO for, since Listener shares one Handler across every accepted
	// connection (mirrors peerengine's transaction-registry-keyed-by-Conn
	// idiom rather than a per-connection Handler instance).
	connPeer map[*tcp.Conn]*peerRecord

	ln        *tcp.Listener
	periodics []*reactor.PeriodicHandle
}

// New builds a Daemon tracking the given peer hosts, all initially DEAD
// (daemon.py's Daemon.__init__).
func New(selfAddr string, hosts []string, reviveCommand []string, loop *reactor.Loop, log logger.Logger) *Daemon {
	d := &Daemon{
		loop:          loop,
		log:           log,
		selfAddr:      selfAddr,
		reviveCommand: reviveCommand,
		peers:         make(map[string]*peerRecord, len(hosts)),
		clients:       make(map[*tcp.Conn]struct{}),
		connPeer:      make(map[*tcp.Conn]*peerRecord),
	}
	for _, h := range hosts {
		d.peers[h] = &peerRecord{host: h, status: StatusDead}
	}
	return d
}

// Attach wires the already-open listener this daemon accepts peer and
// operator connections on, and starts the keepalive/revive timers.
func (d *Daemon) Attach(ln *tcp.Listener) {
	d.ln = ln
	d.startTimers()
}

func (d *Daemon) startTimers() {
	d.periodics = append(d.periodics,
		d.loop.SchedulePeriodic(keepaliveInterval, keepaliveInterval, d.onKeepaliveTimer),
		d.loop.SchedulePeriodic(reviveInterval, reviveInterval, d.onReviveTimer),
	)
}

// Stop cancels timers and closes the listener; connected sockets are left
// to close on their own OnClose callbacks.
func (d *Daemon) Stop() {
	for _, p := range d.periodics {
		p.Stop()
	}
	if d.ln != nil {
		_ = d.ln.Close()
	}
}

// Handler returns the tcp.Handler every accepted connection — peer or
// operator, daemon.py does not distinguish at accept time either — is
// registered with.
func (d *Daemon) Handler() tcp.Handler {
	return &connHandler{d: d}
}

// onKeepaliveTimer sends an empty-line keepalive to every peer with an
// open control socket (daemon.py's keepalive_timer_cb).
func (d *Daemon) onKeepaliveTimer() {
	for _, p := range d.peers {
		if p.conn != nil {
			_ = p.conn.WriteLine()
		}
	}
}

// onReviveTimer re-spawns every DEAD host via the configured revive
// command (daemon.py: Popen(['./deliver.sh', host, daemon_addr])).
func (d *Daemon) onReviveTimer() {
	for _, p := range d.peers {
		if p.status == StatusDead {
			d.spawn(p.host)
		}
	}
}

func (d *Daemon) spawn(host string) {
	if len(d.reviveCommand) == 0 {
		return
	}
	args := append(append([]string{}, d.reviveCommand[1:]...), host, d.selfAddr)
	cmd := exec.Command(d.reviveCommand[0], args...)
	if err := cmd.Start(); err != nil {
		d.log.Warn("revive spawn failed", "host", host, "err", err)
		return
	}
	go func() { _ = cmd.Wait() }()
}

// broadcast sends a STATE line to every connected operator client
// (daemon.py's Daemon.broadcast).
func (d *Daemon) broadcast(host string, status Status) {
	for c := range d.clients {
		_ = c.WriteLine(string(wire.VerbState), host, status.String())
	}
}

// pickBootstrap chooses a random already-started peer for a new peer to
// bootstrap against, or "none" if the ring is currently empty
// (daemon.py's do_start random.choice).
func (d *Daemon) pickBootstrap() string {
	var started []string
	for _, p := range d.peers {
		if p.status == StatusStarted {
			started = append(started, p.host+":"+p.port)
		}
	}
	if len(started) == 0 {
		return "none"
	}
	return started[rand.Intn(len(started))]
}
