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

package manager_test

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pseudonym/chordring/ctrl/manager"
	"github.com/pseudonym/chordring/logger"
	"github.com/pseudonym/chordring/socket/reactor"
)

type fakeClient struct {
	mu       sync.Mutex
	started  []string
	bootPeer []string
	stopped  int
}

func (c *fakeClient) Start(listenAddr, bootPeer string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = append(c.started, listenAddr)
	c.bootPeer = append(c.bootPeer, bootPeer)
	return nil
}

func (c *fakeClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped++
}

func TestDialSendsHello(t *testing.T) {
	rawLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer rawLn.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := rawLn.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	loop := reactor.New(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	client := &fakeClient{}
	if _, err := manager.Dial(client, "host-a", rawLn.Addr().String(), loop, logger.Default()); err != nil {
		t.Fatalf("Dial: %v", err)
	}

	var daemonSide net.Conn
	select {
	case daemonSide = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("daemon never accepted connection")
	}
	defer daemonSide.Close()

	_ = daemonSide.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(daemonSide).ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.TrimSuffix(line, "\n") != "HELLO host-a" {
		t.Fatalf("unexpected hello line: %q", line)
	}
}

func TestStartMessageInvokesClientStart(t *testing.T) {
	rawLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer rawLn.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := rawLn.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	loop := reactor.New(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	client := &fakeClient{}
	if _, err := manager.Dial(client, "host-a", rawLn.Addr().String(), loop, logger.Default()); err != nil {
		t.Fatalf("Dial: %v", err)
	}

	var daemonSide net.Conn
	select {
	case daemonSide = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("daemon never accepted connection")
	}
	defer daemonSide.Close()

	r := bufio.NewReader(daemonSide)
	_ = daemonSide.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := r.ReadString('\n'); err != nil { // drain HELLO
		t.Fatalf("read hello: %v", err)
	}

	if _, err := daemonSide.Write([]byte("START 127.0.0.1:9000\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	_ = daemonSide.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(reply, "STARTED host-a ") {
		t.Fatalf("unexpected reply: %q", reply)
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.started) != 1 {
		t.Fatalf("expected Start to be called once, got %d", len(client.started))
	}
	if client.bootPeer[0] != "127.0.0.1:9000" {
		t.Fatalf("unexpected boot peer: %q", client.bootPeer[0])
	}
}
