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

// Package bootfd turns an inherited file descriptor number into a usable
// net.Listener or net.PacketConn. This is the Go realization of spec.md
// §6's boot interface: "The peer does not open its own sockets; the
// manager does, so it can bind ports with the exact number it reports
// upstream." cmd/chordpeer takes this path when its configuration names
// both inherited descriptors (listen_sock, dgram_socket): a supervisor
// execs the peer with the listening and datagram sockets already open
// past fd 2, the os.NewFile/net.FileListener handoff used to pass a bound
// port on without a connection drop. ctrl/manager does not use it; its
// peerengine.ManagedNode binds its own sockets.
package bootfd

import (
	"net"
	"os"

	"github.com/pseudonym/chordring/errors"
)

// Listener reconstructs a net.Listener from an inherited, already-bound
// and already-listening TCP file descriptor.
func Listener(fd uintptr, name string) (net.Listener, error) {
	f := os.NewFile(fd, name)
	if f == nil {
		return nil, errors.ErrBootInterfaceInvalid.Error()
	}
	ln, err := net.FileListener(f)
	if err != nil {
		return nil, errors.ErrBootInterfaceInvalid.Error(err)
	}
	// FileListener dup()s the fd; the original can be closed once control
	// returns to the caller without affecting the new net.Listener.
	_ = f.Close()
	return ln, nil
}

// PacketConn reconstructs a net.PacketConn from an inherited, already-bound
// UDP file descriptor.
func PacketConn(fd uintptr, name string) (net.PacketConn, error) {
	f := os.NewFile(fd, name)
	if f == nil {
		return nil, errors.ErrBootInterfaceInvalid.Error()
	}
	pc, err := net.FilePacketConn(f)
	if err != nil {
		return nil, errors.ErrBootInterfaceInvalid.Error(err)
	}
	_ = f.Close()
	return pc, nil
}
