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

// Command chordd is the central registry from daemon.py: it tracks every
// known peer host, answers operator CHELLO/CSTART/CSTOP/CKILL requests,
// and revives dead hosts on a timer.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pseudonym/chordring/config"
	"github.com/pseudonym/chordring/ctrl/daemon"
	"github.com/pseudonym/chordring/logger"
	"github.com/pseudonym/chordring/socket/reactor"
	"github.com/pseudonym/chordring/socket/server/tcp"
)

var (
	flagConfig string
	flagListen string
	flagHosts  []string
)

func main() {
	root := &cobra.Command{
		Use:   "chordd",
		Short: "Run the Chord ring's control daemon",
		RunE:  run,
	}
	root.Flags().StringVar(&flagConfig, "config", "", "path to a daemon config file (yaml/json/toml)")
	root.Flags().StringVar(&flagListen, "listen", "", "HOST:PORT to listen on")
	root.Flags().StringSliceVar(&flagHosts, "hosts", nil, "known peer hostnames, comma-separated")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("chordd: %v", err))
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, cerr := config.LoadDaemon(flagConfig)
	if cerr != nil {
		return cerr
	}
	if flagListen != "" {
		cfg.ListenAddr = flagListen
	}
	if len(flagHosts) == 0 {
		flagHosts = args
	}
	if len(flagHosts) == 0 {
		return fmt.Errorf("chordd: at least one peer host is required (--hosts or positional args)")
	}
	if verr := config.Validate(cfg); verr != nil {
		return verr
	}

	var log logger.Logger
	if cfg.LogFormat == "hclog" {
		log = logger.NewHCLog("chordd", cfg.LogLevel)
	} else {
		log = logger.New(os.Stdout, cfg.LogLevel)
	}
	color.New(color.FgGreen, color.Bold).Println("chordd starting")

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

	rawLn, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}

	d := daemon.New(cfg.ListenAddr, flagHosts, cfg.ReviveCommand, loop, log)
	ln := tcp.NewListener(rawLn, loop, d.Handler(), func(*tcp.Conn) {})
	d.Attach(ln)

	log.Info("listening", "addr", cfg.ListenAddr, "hosts", flagHosts)
	<-ctx.Done()
	d.Stop()
	return nil
}
