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

// Command chordpeer runs a single Chord DHT peer. Run standalone it binds
// its own sockets from --listen; run with --daemon it instead dials a
// ctrl/daemon and waits to be told to start (manage.py's managed mode).
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pseudonym/chordring/config"
	"github.com/pseudonym/chordring/ctrl/manager"
	"github.com/pseudonym/chordring/logger"
	"github.com/pseudonym/chordring/peerengine"
	"github.com/pseudonym/chordring/socket/reactor"
	"github.com/pseudonym/chordring/socket/server/tcp"
	"github.com/pseudonym/chordring/socket/server/udp"
)

var (
	flagConfig string
	flagListen string
	flagBoot   string
	flagDaemon string
	flagHost   string
)

func main() {
	root := &cobra.Command{
		Use:   "chordpeer",
		Short: "Run one Chord DHT peer",
		RunE:  run,
	}
	root.Flags().StringVar(&flagConfig, "config", "", "path to a peer config file (yaml/json/toml)")
	root.Flags().StringVar(&flagListen, "listen", "", "HOST:PORT to listen on (standalone mode)")
	root.Flags().StringVar(&flagBoot, "bootstrap", "", "HOST:PORT of an existing peer to join (standalone mode)")
	root.Flags().StringVar(&flagDaemon, "daemon", "", "ctrl/daemon HOST:PORT (managed mode)")
	root.Flags().StringVar(&flagHost, "host", "", "this host's name as known to --daemon")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("chordpeer: %v", err))
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, cerr := config.LoadPeer(flagConfig)
	if cerr != nil {
		return cerr
	}
	if flagListen != "" {
		cfg.ListenAddr = flagListen
	}
	if flagBoot != "" {
		cfg.BootPeer = flagBoot
	}
	if flagDaemon != "" {
		cfg.DaemonAddr = flagDaemon
	}

	// Managed mode doesn't fill in listen_addr up front (the manager
	// assigns a random port once the daemon tells it to start), so only
	// standalone mode runs the full struct validation.
	if cfg.DaemonAddr == "" {
		if verr := config.Validate(cfg); verr != nil {
			return verr
		}
	}

	log := logger.New(os.Stdout, cfg.LogLevel)
	color.New(color.FgCyan, color.Bold).Println("chordpeer starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		cancel()
	}()

	loop := reactor.New(256)
	go loop.Run(ctx)

	if cfg.DaemonAddr != "" {
		return runManaged(ctx, loop, log, cfg)
	}
	return runStandalone(ctx, loop, log, cfg)
}

// runStandalone implements spec.md §8's common case: bind our own
// sockets (or adopt boot-interface fds, if the process was spawned with
// them) and bootstrap directly, no daemon involved.
func runStandalone(ctx context.Context, loop *reactor.Loop, log logger.Logger, cfg *config.Peer) error {
	if cfg.ListenAddr == "" {
		return fmt.Errorf("chordpeer: --listen is required in standalone mode")
	}

	n := peerengine.New(cfg.ListenAddr, loop, log)
	n.SetIntervals(intervalsFromConfig(cfg))

	var (
		ln    *tcp.Listener
		dgram *udp.Conn
		err   error
	)
	if cfg.HasInheritedSockets() {
		ln, err = tcp.ListenFromFD(uintptr(cfg.ListenSockFD), loop, n.ListenHandler(), func(*tcp.Conn) {})
		if err != nil {
			return err
		}
		dgram, err = udp.FromFD(uintptr(cfg.DgramSockFD), loop, n.UDPHandler())
		if err != nil {
			return err
		}
	} else {
		rawLn, lerr := net.Listen("tcp", cfg.ListenAddr)
		if lerr != nil {
			return lerr
		}
		ln = tcp.NewListener(rawLn, loop, n.ListenHandler(), func(*tcp.Conn) {})
		dgram, err = udp.Listen(cfg.ListenAddr, loop, n.UDPHandler())
		if err != nil {
			return err
		}
	}

	n.Attach(ln, dgram)
	n.Bootstrap(cfg.BootPeer)

	log.Info("listening", "addr", cfg.ListenAddr, "bootstrap", cfg.BootPeer)
	<-ctx.Done()
	n.Stop()
	return nil
}

// runManaged speaks manage.py's protocol: HELLO, then wait for the
// daemon's START/STOP/KILL.
func runManaged(ctx context.Context, loop *reactor.Loop, log logger.Logger, cfg *config.Peer) error {
	if flagHost == "" {
		return fmt.Errorf("chordpeer: --host is required in managed mode")
	}

	client := peerengine.NewManaged(loop, log)
	client.SetIntervals(intervalsFromConfig(cfg))
	if _, err := manager.Dial(client, flagHost, cfg.DaemonAddr, loop, log); err != nil {
		return err
	}

	log.Info("registered with daemon", "daemon", cfg.DaemonAddr, "host", flagHost)
	<-ctx.Done()
	client.Stop()
	return nil
}

// intervalsFromConfig translates config.Peer's millisecond overrides
// into peerengine.Intervals. A zero field leaves the package default in
// place; these exist so operators (and tests) aren't stuck with
// spec.md §4.D's 10-15s real-time cadence.
func intervalsFromConfig(cfg *config.Peer) peerengine.Intervals {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return peerengine.Intervals{
		Stabilize: ms(cfg.StabilizeIntervalMS),
		FixFinger: ms(cfg.FixFingerIntervalMS),
		Backup:    ms(cfg.BackupIntervalMS),
		Ping:      ms(cfg.PingIntervalMS),
	}
}
