package udp_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pseudonym/chordring/socket/reactor"
	"github.com/pseudonym/chordring/socket/server/udp"
)

type recordingHandler struct {
	mu      sync.Mutex
	packets []string
	froms   []string
}

func (h *recordingHandler) OnPacket(from, line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.froms = append(h.froms, from)
	h.packets = append(h.packets, line)
}

func (h *recordingHandler) OnError(err error) {}

func (h *recordingHandler) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.packets...)
}

var _ = Describe("Conn", func() {
	var (
		loop   *reactor.Loop
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		loop = reactor.New(16)
		ctx, cancel = context.WithCancel(context.Background())
		go loop.Run(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	It("round-trips a packet between two datagram sockets", func() {
		hA := &recordingHandler{}
		a, err := udp.Listen("127.0.0.1:0", loop, hA)
		Expect(err).NotTo(HaveOccurred())
		defer a.Close()

		hB := &recordingHandler{}
		b, err := udp.Listen("127.0.0.1:0", loop, hB)
		Expect(err).NotTo(HaveOccurred())
		defer b.Close()

		Expect(b.Send(a.LocalAddr().String(), "PING", b.LocalAddr().String())).To(Succeed())

		Eventually(hA.snapshot, 2*time.Second, 10*time.Millisecond).Should(HaveLen(1))
		Expect(hA.snapshot()[0]).To(Equal("PING " + b.LocalAddr().String()))
	})
})
