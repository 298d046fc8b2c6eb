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

package reactor

import (
	"container/heap"
	"time"
)

// Timer is a handle to a scheduled, cancellable one-shot callback
// (spec.md §4.A: "Timers are one-shot — periodic behavior is achieved by
// callbacks scheduling their own successor.").
type Timer interface {
	// Cancel prevents a pending timer from firing. It is a no-op if the
	// timer already fired or was already cancelled. Safe to call from any
	// goroutine.
	Cancel()
}

type timerEntry struct {
	seq      uint64
	fireAt   time.Time
	cb       Job
	index    int // position in the heap, maintained by container/heap
	canceled bool
}

func (t *timerEntry) Cancel() {
	t.canceled = true
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].fireAt.Equal(h[j].fireAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].fireAt.Before(h[j].fireAt)
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *timerHeap) Push(x interface{}) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// ScheduleAfter arranges for cb to run on the loop goroutine after d. It
// must only be called from the loop goroutine itself (timer callbacks and
// job callbacks both qualify); external goroutines should Post a job that
// calls ScheduleAfter instead.
func (l *Loop) ScheduleAfter(d time.Duration, cb Job) Timer {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextSeq++
	e := &timerEntry{seq: l.nextSeq, fireAt: time.Now().Add(d), cb: cb}
	heap.Push(&l.timers, e)
	return e
}

// nextTimerWait returns the duration until the earliest live timer, or nil
// if no timers are pending. Canceled timers at the head are discarded
// eagerly so Run doesn't wake up early for dead entries.
func (l *Loop) nextTimerWait() *time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.timers.Len() > 0 && l.timers[0].canceled {
		heap.Pop(&l.timers)
	}
	if l.timers.Len() == 0 {
		return nil
	}
	d := time.Until(l.timers[0].fireAt)
	if d < 0 {
		d = 0
	}
	return &d
}

// fireDueTimers pops and runs every timer whose deadline has passed, in
// earliest-deadline-first order (spec.md §5 ordering guarantee), then
// returns. Each callback runs on the loop goroutine, synchronously, before
// the next one — callbacks may schedule further timers or jobs without
// racing this pass.
func (l *Loop) fireDueTimers() {
	now := time.Now()
	for {
		l.mu.Lock()
		if l.timers.Len() == 0 || l.timers[0].fireAt.After(now) {
			l.mu.Unlock()
			return
		}
		e := heap.Pop(&l.timers).(*timerEntry)
		l.mu.Unlock()

		if e.canceled {
			continue
		}
		e.cb()
	}
}

// Empty reports whether the loop has neither pending timers nor, per
// spec.md §4.A's exit condition ("the loop exits when both registrations
// and timers are empty"), is used alongside the caller's own socket
// registry to decide whether Run should be allowed to return.
func (l *Loop) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.timers.Len() == 0
}
