// Package ingest adapts the two reception transports into the uniform chunk
// stream the frame assembler consumes. The radar simulator exposes a TCP
// endpoint we connect to and emits datagrams to a UDP port we bind; both
// paths run as independent goroutines and never block each other.
package ingest

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"

	"example.com/radgate/internal/capture"
	"example.com/radgate/internal/common"
	"example.com/radgate/internal/frame"
	"example.com/radgate/internal/icd"
)

const (
	readBufferSize = 4096
	pollInterval   = time.Second
	dialTimeout    = 5 * time.Second
)

// Options carries the pipeline hookups shared by both receivers.
type Options struct {
	Registry *icd.Registry
	Sink     frame.Sink
	MaxFrame int

	// Capture, when non-nil, records every received chunk before framing.
	Capture *capture.Writer
}

func (o Options) record(transport icd.Transport, data []byte, arrival time.Time, addr string) {
	if o.Capture == nil {
		return
	}
	if err := o.Capture.Append(transport, data, arrival, addr); err != nil {
		common.Logf("capture append: %v", err)
	}
}

// StreamReceiver maintains a passive TCP connection to the simulator,
// reconnecting with a fixed backoff when the remote side closes it. Nothing
// is ever written to the connection.
type StreamReceiver struct {
	addr      string
	reconnect time.Duration
	opts      Options
}

// NewStreamReceiver prepares a receiver for the given remote address.
func NewStreamReceiver(addr string, reconnect time.Duration, opts Options) *StreamReceiver {
	if reconnect <= 0 {
		reconnect = 5 * time.Second
	}
	return &StreamReceiver{addr: addr, reconnect: reconnect, opts: opts}
}

// Run drives the connect/read/reconnect loop until ctx is cancelled.
func (r *StreamReceiver) Run(ctx context.Context) {
	for ctx.Err() == nil {
		conn, err := net.DialTimeout("tcp", r.addr, dialTimeout)
		if err != nil {
			common.Logf("TCP connect %s: %v", r.addr, err)
			if !sleepCtx(ctx, r.reconnect) {
				return
			}
			continue
		}
		common.Logf("TCP connected to %s, passive listening", r.addr)
		r.readLoop(ctx, conn)
		conn.Close()
		if !sleepCtx(ctx, r.reconnect) {
			return
		}
	}
}

func (r *StreamReceiver) readLoop(ctx context.Context, conn net.Conn) {
	asm := frame.NewAssembler(icd.TransportStream, r.opts.Registry, r.opts.MaxFrame, r.opts.Sink)
	defer asm.Flush()
	buf := make([]byte, readBufferSize)
	remote := conn.RemoteAddr().String()
	for ctx.Err() == nil {
		conn.SetReadDeadline(time.Now().Add(pollInterval))
		n, err := conn.Read(buf)
		if n > 0 {
			arrival := time.Now()
			chunk := append([]byte(nil), buf[:n]...)
			r.opts.record(icd.TransportStream, chunk, arrival, remote)
			asm.Deliver(chunk, arrival, remote)
		}
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}
			if !errors.Is(err, io.EOF) {
				common.Logf("TCP read %s: %v", remote, err)
			} else {
				common.Logf("TCP connection closed by %s", remote)
			}
			return
		}
	}
}

// DatagramReceiver binds a UDP port and treats every datagram as one frame.
// When remotePort is non-zero, traffic from any other source port is logged
// and dropped: the simulator emits status traffic from a fixed port and
// anything else on the wire is worth flagging rather than decoding.
type DatagramReceiver struct {
	bind       string
	remotePort int
	opts       Options
}

// NewDatagramReceiver prepares a listener on bind (e.g. ":32004").
func NewDatagramReceiver(bind string, remotePort int, opts Options) *DatagramReceiver {
	return &DatagramReceiver{bind: bind, remotePort: remotePort, opts: opts}
}

// Run listens until ctx is cancelled. The socket is re-opened after transient
// errors so one bad read never ends reception.
func (r *DatagramReceiver) Run(ctx context.Context) {
	for ctx.Err() == nil {
		if !r.listenOnce(ctx) {
			return
		}
		if !sleepCtx(ctx, pollInterval) {
			return
		}
	}
}

func (r *DatagramReceiver) listenOnce(ctx context.Context) bool {
	pc, err := net.ListenPacket("udp", r.bind)
	if err != nil {
		common.Logf("UDP listen %s: %v", r.bind, err)
		return true
	}
	defer pc.Close()
	common.Logf("UDP listening on %s", r.bind)

	asm := frame.NewAssembler(icd.TransportDatagram, r.opts.Registry, r.opts.MaxFrame, r.opts.Sink)
	buf := make([]byte, readBufferSize)
	for ctx.Err() == nil {
		pc.SetReadDeadline(time.Now().Add(pollInterval))
		n, addr, err := pc.ReadFrom(buf)
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}
			common.Logf("UDP read %s: %v", r.bind, err)
			return true
		}
		if n == 0 {
			continue
		}
		if r.remotePort != 0 && portOf(addr) != r.remotePort {
			common.Logf("UDP datagram from unexpected source %s dropped (%d bytes)", addr, n)
			continue
		}
		arrival := time.Now()
		chunk := append([]byte(nil), buf[:n]...)
		r.opts.record(icd.TransportDatagram, chunk, arrival, addr.String())
		asm.Deliver(chunk, arrival, addr.String())
	}
	return false
}

func portOf(addr net.Addr) int {
	udp, ok := addr.(*net.UDPAddr)
	if ok {
		return udp.Port
	}
	_, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return 0
	}
	port, _ := strconv.Atoi(portStr)
	return port
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
