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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPeerFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peer.yaml")
	body := "listen_addr: \"127.0.0.1:9001\"\nboot_peer: \"127.0.0.1:9000\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPeer(path)
	if err != nil {
		t.Fatalf("LoadPeer: %v", err)
	}
	if p.ListenAddr != "127.0.0.1:9001" {
		t.Fatalf("listen addr = %q", p.ListenAddr)
	}
	if p.BootPeer != "127.0.0.1:9000" {
		t.Fatalf("boot peer = %q", p.BootPeer)
	}
	if p.LogLevel != "info" {
		t.Fatalf("expected default log_level info, got %q", p.LogLevel)
	}
	if p.HasInheritedSockets() {
		t.Fatalf("expected no inherited sockets")
	}
}

func TestLoadPeerMissingListenAddrFailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peer.yaml")
	if err := os.WriteFile(path, []byte("boot_peer: \"127.0.0.1:9000\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPeer(path)
	if err != nil {
		t.Fatalf("LoadPeer: %v", err)
	}
	if verr := Validate(p); verr == nil {
		t.Fatalf("expected validation error for missing listen_addr")
	}
}

func TestLoadPeerInvalidLogLevelFailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peer.yaml")
	body := "listen_addr: \"127.0.0.1:9001\"\nlog_level: \"verbose\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPeer(path)
	if err != nil {
		t.Fatalf("LoadPeer: %v", err)
	}
	if verr := Validate(p); verr == nil {
		t.Fatalf("expected validation error for bad log_level")
	}
}

func TestHasInheritedSockets(t *testing.T) {
	p := &Peer{ListenSockFD: 3, DgramSockFD: 4}
	if !p.HasInheritedSockets() {
		t.Fatalf("expected inherited sockets to be detected")
	}
}

func TestLoadDaemonDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daemon.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: \"127.0.0.1:9500\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	d, err := LoadDaemon(path)
	if err != nil {
		t.Fatalf("LoadDaemon: %v", err)
	}
	if len(d.ReviveCommand) != 1 || d.ReviveCommand[0] != "./deliver.sh" {
		t.Fatalf("unexpected default revive command: %v", d.ReviveCommand)
	}
	if d.LogFormat != "text" {
		t.Fatalf("expected default log_format text, got %q", d.LogFormat)
	}
}
