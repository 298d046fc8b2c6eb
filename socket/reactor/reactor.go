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

// Package reactor implements the single-threaded event loop spec.md §4.A
// and §5 describe: one executor that serializes every socket-readiness and
// timer callback so core state never needs a lock.
//
// Go has no native single-threaded readiness multiplexer exposed at this
// level the way select()/epoll is in the source; per spec.md §5 ("languages
// without a natural single-threaded loop ... must explicitly serialize all
// callbacks onto one executor"), this is built as one dedicated goroutine
// (Loop.Run) that owns all mutable node state, fed by a channel of pending
// work. Socket goroutines (socket/server/tcp, socket/server/udp) do the
// actual blocking syscalls and post decoded events onto that channel;
// they never touch node state directly.
package reactor

import (
	"context"
	"sync"
	"time"
)

// Job is a unit of work run exclusively on the loop goroutine: a decoded
// socket event, or a fired timer. Posting a Job is the only way any other
// goroutine may touch state owned by the loop.
type Job func()

// Loop is the single executor. Zero value is not usable; build with New.
type Loop struct {
	jobs chan Job

	mu      sync.Mutex
	timers  timerHeap
	nextSeq uint64

	closed chan struct{}
	once   sync.Once
}

// New builds a Loop with the given job-queue depth. A depth of a few
// hundred is generous headroom for a single peer process; Post blocks
// once the queue is full, applying backpressure to socket goroutines
// rather than growing without bound.
func New(queueDepth int) *Loop {
	return &Loop{
		jobs:   make(chan Job, queueDepth),
		closed: make(chan struct{}),
	}
}

// Post enqueues a job to run on the loop goroutine. Safe to call from any
// goroutine. Posting after Stop is a no-op.
func (l *Loop) Post(j Job) {
	select {
	case l.jobs <- j:
	case <-l.closed:
	}
}

// Run is the loop itself: it drains posted jobs and fires due timers until
// ctx is cancelled or Stop is called. It must be invoked from exactly one
// goroutine, which becomes "the loop" for the lifetime of the node
// (spec.md §5 — all core state is touched only from this loop).
func (l *Loop) Run(ctx context.Context) {
	for {
		wait := l.nextTimerWait()

		var timerC <-chan time.Time
		if wait != nil {
			timerC = time.After(*wait)
		}

		select {
		case <-ctx.Done():
			return
		case <-l.closed:
			return
		case j, ok := <-l.jobs:
			if !ok {
				return
			}
			j()
		case <-timerC:
			l.fireDueTimers()
		}
	}
}

// Stop halts Run and makes further Post calls no-ops. It does not cancel
// already-queued jobs that are about to run.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.closed) })
}
