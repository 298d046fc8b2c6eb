package reactor_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pseudonym/chordring/socket/reactor"
)

var _ = Describe("Loop", func() {
	var (
		l      *reactor.Loop
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		l = reactor.New(8)
		ctx, cancel = context.WithCancel(context.Background())
		go l.Run(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	It("runs posted jobs on the loop goroutine", func() {
		done := make(chan struct{})
		l.Post(func() { close(done) })

		Eventually(done, 2*time.Second).Should(BeClosed())
	})

	It("fires timers in deadline order, not post order", func() {
		var mu sync.Mutex
		var order []int
		recordDone := make(chan struct{})

		l.Post(func() {
			l.ScheduleAfter(30*time.Millisecond, func() {
				mu.Lock()
				order = append(order, 2)
				mu.Unlock()
				close(recordDone)
			})
			l.ScheduleAfter(10*time.Millisecond, func() {
				mu.Lock()
				order = append(order, 1)
				mu.Unlock()
			})
		})

		Eventually(recordDone, 2*time.Second).Should(BeClosed())

		mu.Lock()
		defer mu.Unlock()
		Expect(order).To(Equal([]int{1, 2}))
	})

	It("never fires a canceled timer", func() {
		fired := make(chan struct{}, 1)
		ready := make(chan struct{})

		l.Post(func() {
			timer := l.ScheduleAfter(20*time.Millisecond, func() {
				fired <- struct{}{}
			})
			timer.Cancel()
			close(ready)
		})

		Eventually(ready, 2*time.Second).Should(BeClosed())
		Consistently(fired, 100*time.Millisecond).ShouldNot(Receive())
	})

	It("reschedules a periodic timer on every fire", func() {
		var count int
		var mu sync.Mutex
		third := make(chan struct{})

		l.Post(func() {
			l.SchedulePeriodic(5*time.Millisecond, 5*time.Millisecond, func() {
				mu.Lock()
				count++
				n := count
				mu.Unlock()
				if n == 3 {
					close(third)
				}
			})
		})

		Eventually(third, 2*time.Second).Should(BeClosed())
	})

	It("stops Run when Stop is called", func() {
		// Uses its own loop: the shared one from BeforeEach is already
		// running under ctx, and Run isn't meant to be called twice
		// concurrently on the same Loop.
		cancel()
		fresh := reactor.New(8)
		stopped := make(chan struct{})
		go func() {
			fresh.Run(context.Background())
			close(stopped)
		}()

		fresh.Stop()
		Eventually(stopped, 2*time.Second).Should(BeClosed())
	})
})
