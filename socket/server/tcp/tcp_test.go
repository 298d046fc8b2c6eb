package tcp_test

import (
	"context"
	"net"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pseudonym/chordring/socket/reactor"
	"github.com/pseudonym/chordring/socket/server/tcp"
)

type recordingHandler struct {
	mu        sync.Mutex
	lines     []string
	keepalive int
	closedErr error
	closed    bool
	closedCh  chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{closedCh: make(chan struct{})}
}

func (h *recordingHandler) OnLine(c *tcp.Conn, line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = append(h.lines, line)
}

func (h *recordingHandler) OnKeepalive(c *tcp.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keepalive++
}

func (h *recordingHandler) OnClose(c *tcp.Conn, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.closedErr = err
	close(h.closedCh)
}

func (h *recordingHandler) snapshot() (lines []string, keepalive int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.lines...), h.keepalive
}

var _ = Describe("Listener", func() {
	var (
		loop   *reactor.Loop
		ctx    context.Context
		cancel context.CancelFunc
		rawLn  net.Listener
		h      *recordingHandler
		ln     *tcp.Listener
	)

	BeforeEach(func() {
		loop = reactor.New(16)
		ctx, cancel = context.WithCancel(context.Background())
		go loop.Run(ctx)

		var err error
		rawLn, err = net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		h = newRecordingHandler()
	})

	AfterEach(func() {
		if ln != nil {
			_ = ln.Close()
		}
		cancel()
	})

	It("accepts a connection and frames lines, treating a blank line as a keepalive", func() {
		accepted := make(chan *tcp.Conn, 1)
		ln = tcp.NewListener(rawLn, loop, h, func(c *tcp.Conn) { accepted <- c })

		conn, err := net.Dial("tcp", ln.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		Eventually(accepted, 2*time.Second).Should(Receive())

		_, err = conn.Write([]byte("NOTIFY 127.0.0.1:1\n"))
		Expect(err).NotTo(HaveOccurred())
		_, err = conn.Write([]byte("\n"))
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() int {
			lines, _ := h.snapshot()
			return len(lines)
		}, 2*time.Second, 10*time.Millisecond).Should(Equal(1))

		lines, keepalive := h.snapshot()
		Expect(lines).To(Equal([]string{"NOTIFY 127.0.0.1:1"}))
		Expect(keepalive).To(Equal(1))
	})

	It("writes a framed reply and closes once it's flushed", func() {
		accepted := make(chan *tcp.Conn, 1)
		ln = tcp.NewListener(rawLn, loop, h, func(c *tcp.Conn) { accepted <- c })

		clientDone := make(chan string, 1)
		go func() {
			conn, err := net.Dial("tcp", ln.Addr().String())
			if err != nil {
				clientDone <- ""
				return
			}
			defer conn.Close()
			buf := make([]byte, 256)
			n, _ := conn.Read(buf)
			clientDone <- string(buf[:n])
		}()

		var serverConn *tcp.Conn
		Eventually(accepted, 2*time.Second).Should(Receive(&serverConn))

		loop.Post(func() {
			_ = serverConn.WriteLine("OK", "deadbeef", "n-1")
			serverConn.CloseWhenDone()
		})

		Eventually(clientDone, 2*time.Second).Should(Receive(Equal("OK deadbeef n-1\n")))
	})

	It("notifies the handler's OnClose when the client hangs up", func() {
		accepted := make(chan *tcp.Conn, 1)
		ln = tcp.NewListener(rawLn, loop, h, func(c *tcp.Conn) { accepted <- c })

		conn, err := net.Dial("tcp", ln.Addr().String())
		Expect(err).NotTo(HaveOccurred())

		Eventually(accepted, 2*time.Second).Should(Receive())

		Expect(conn.Close()).To(Succeed())

		Eventually(h.closedCh, 2*time.Second).Should(BeClosed())
	})
})
