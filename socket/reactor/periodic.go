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

import "time"

// PeriodicHandle lets a caller cancel a self-rescheduling timer family
// started with SchedulePeriodic.
type PeriodicHandle struct {
	stopped bool
	current Timer
}

// Stop prevents any further firing of the periodic timer. A tick that has
// not started yet returns without calling cb; a tick whose cb is already
// running finishes but does not reschedule.
func (h *PeriodicHandle) Stop() {
	h.stopped = true
	if h.current != nil {
		h.current.Cancel()
	}
}

// SchedulePeriodic starts a timer family matching spec.md §9's model:
// "on_fire consults a callback table keyed by name, executes, and
// re-inserts with a fixed interval." first is the initial delay (ring
// timers stagger their first fire in [5,10)s per spec.md §4.D); every
// subsequent fire is spaced interval apart. cb is invoked on the loop
// goroutine.
func (l *Loop) SchedulePeriodic(first, interval time.Duration, cb Job) *PeriodicHandle {
	h := &PeriodicHandle{}
	var tick func()
	tick = func() {
		if h.stopped {
			return
		}
		cb()
		if h.stopped {
			return
		}
		h.current = l.ScheduleAfter(interval, tick)
	}
	h.current = l.ScheduleAfter(first, tick)
	return h
}
