package ingest

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"example.com/radgate/internal/capture"
	"example.com/radgate/internal/icd"
)

func keepAliveMessage(seq uint32) []byte {
	hdr := icd.MessageHeader{
		SourceID:       0xCEF00414,
		MessageID:      icd.MsgKeepAlive,
		DeclaredLength: icd.HeaderSize,
		TimeTagMs:      34013250,
		SequenceNum:    seq,
	}
	return hdr.Encode()
}

func TestStreamReceiverReassemblesAcrossReads(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	capPath := filepath.Join(t.TempDir(), "stream.cap")
	cw, err := capture.NewWriter(capPath)
	if err != nil {
		t.Fatalf("capture writer: %v", err)
	}
	defer cw.Close()

	outcomes := make(chan icd.DecodeOutcome, 16)
	opts := Options{
		Registry: icd.NewRegistry(),
		Sink:     func(o icd.DecodeOutcome) { outcomes <- o },
		Capture:  cw,
	}

	msg := keepAliveMessage(41)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		// Split mid-header to force reassembly on the receive side.
		conn.Write(msg[:7])
		time.Sleep(20 * time.Millisecond)
		conn.Write(msg[7:])
		time.Sleep(20 * time.Millisecond)
		conn.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r := NewStreamReceiver(ln.Addr().String(), 50*time.Millisecond, opts)
	go func() {
		r.Run(ctx)
		close(done)
	}()

	var o icd.DecodeOutcome
	select {
	case o = <-outcomes:
	case <-time.After(5 * time.Second):
		t.Fatal("no outcome within 5s")
	}
	cancel()
	ln.Close()
	<-done

	if !o.OK() {
		t.Fatalf("outcome failed: %+v", o.Failure)
	}
	if o.Frame.Transport != icd.TransportStream {
		t.Fatalf("transport = %v", o.Frame.Transport)
	}
	if o.Msg.Header.MessageID != icd.MsgKeepAlive || o.Msg.Header.SequenceNum != 41 {
		t.Fatalf("header = %+v", o.Msg.Header)
	}
	if cw.Count() < 2 {
		t.Fatalf("capture records = %d, want at least 2", cw.Count())
	}
}

func TestDatagramReceiverDecodesEachDatagram(t *testing.T) {
	// Reserve a local port, then hand it to the receiver.
	probe, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	bind := probe.LocalAddr().String()
	probe.Close()

	outcomes := make(chan icd.DecodeOutcome, 16)
	opts := Options{
		Registry: icd.NewRegistry(),
		Sink:     func(o icd.DecodeOutcome) { outcomes <- o },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r := NewDatagramReceiver(bind, 0, opts)
	go func() {
		r.Run(ctx)
		close(done)
	}()

	conn, err := net.Dial("udp", bind)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	msg := keepAliveMessage(7)
	deadline := time.After(5 * time.Second)
	var o icd.DecodeOutcome
recv:
	for {
		conn.Write(msg)
		select {
		case o = <-outcomes:
			break recv
		case <-deadline:
			t.Fatal("no outcome within 5s")
		case <-time.After(50 * time.Millisecond):
		}
	}
	cancel()
	<-done

	if !o.OK() {
		t.Fatalf("outcome failed: %+v", o.Failure)
	}
	if o.Frame.Transport != icd.TransportDatagram {
		t.Fatalf("transport = %v", o.Frame.Transport)
	}
	if o.Msg.Header.MessageID != icd.MsgKeepAlive {
		t.Fatalf("message id = 0x%08X", o.Msg.Header.MessageID)
	}
}

func TestPortOf(t *testing.T) {
	udp := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 5), Port: 32004}
	if got := portOf(udp); got != 32004 {
		t.Fatalf("portOf(udp) = %d", got)
	}
	tcp := &net.TCPAddr{IP: net.IPv4(10, 0, 0, 5), Port: 23004}
	if got := portOf(tcp); got != 23004 {
		t.Fatalf("portOf(tcp) = %d", got)
	}
}

func TestSleepCtxHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if sleepCtx(ctx, time.Minute) {
		t.Fatal("sleepCtx returned true for a cancelled context")
	}
	if time.Since(start) > time.Second {
		t.Fatal("sleepCtx did not return promptly")
	}
}
