package stats

import (
	"sync"
	"testing"
	"time"

	"example.com/radgate/internal/icd"
)

var base = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func okOutcome(messageID, seq uint32, size int, arrival time.Time, transport icd.Transport) icd.DecodeOutcome {
	hdr := icd.MessageHeader{SourceID: 0xCEF00414, MessageID: messageID, SequenceNum: seq}
	return icd.DecodeOutcome{
		Frame: icd.RawFrame{Transport: transport, Arrival: arrival, Bytes: make([]byte, size)},
		Msg:   &icd.DecodedMessage{Header: hdr, Body: icd.KeepAlive{}},
	}
}

func failOutcome(kind icd.FailureKind, size int, arrival time.Time) icd.DecodeOutcome {
	return icd.DecodeOutcome{
		Frame:   icd.RawFrame{Transport: icd.TransportDatagram, Arrival: arrival, Bytes: make([]byte, size)},
		Failure: &icd.DecodeFailure{Kind: kind},
	}
}

func TestRecordCountsPerType(t *testing.T) {
	agg := New()
	const n = 7
	for i := 0; i < n; i++ {
		agg.Record(okOutcome(icd.MsgRadarDataStream, uint32(i+1), 528,
			base.Add(time.Duration(i)*100*time.Millisecond), icd.TransportStream))
	}
	agg.Record(failOutcome(icd.FailHeaderTooShort, 10, base.Add(time.Second)))
	agg.Record(failOutcome(icd.FailPayloadTruncated, 24, base.Add(2*time.Second)))

	snap := agg.Snapshot()
	if snap.Frames != n+2 {
		t.Fatalf("frames = %d, want %d", snap.Frames, n+2)
	}
	if snap.Errors != 2 {
		t.Fatalf("errors = %d, want 2", snap.Errors)
	}
	ts := snap.ByType[icd.MsgRadarDataStream]
	if ts.Count != n {
		t.Fatalf("count = %d, want %d", ts.Count, n)
	}
	if ts.Bytes != n*528 {
		t.Fatalf("bytes = %d, want %d", ts.Bytes, n*528)
	}
	if ts.FirstSeen != base {
		t.Fatalf("first seen = %v, want %v", ts.FirstSeen, base)
	}
	if ts.LastSeen != base.Add(600*time.Millisecond) {
		t.Fatalf("last seen = %v", ts.LastSeen)
	}
	if ts.AvgIntervalMs != 100 {
		t.Fatalf("avg interval = %.2f ms, want 100", ts.AvgIntervalMs)
	}
	if ts.SeqGaps != 0 {
		t.Fatalf("seq gaps = %d, want 0", ts.SeqGaps)
	}
	if snap.ByFailure[icd.FailHeaderTooShort] != 1 || snap.ByFailure[icd.FailPayloadTruncated] != 1 {
		t.Fatalf("failure breakdown = %v", snap.ByFailure)
	}
}

func TestSequenceGapDetection(t *testing.T) {
	agg := New()
	seqs := []uint32{10, 11, 15, 16, 2} // one forward jump, one restart
	for i, seq := range seqs {
		agg.Record(okOutcome(icd.MsgSystemStatus, seq, 44,
			base.Add(time.Duration(i)*time.Second), icd.TransportDatagram))
	}
	snap := agg.Snapshot()
	if got := snap.ByType[icd.MsgSystemStatus].SeqGaps; got != 1 {
		t.Fatalf("seq gaps = %d, want 1", got)
	}
}

func TestTrailingCounter(t *testing.T) {
	agg := New()
	o := okOutcome(icd.MsgRadarDataStream, 1, 528, base, icd.TransportStream)
	o.Trailing = make([]byte, 28)
	agg.Record(o)
	agg.Record(okOutcome(icd.MsgRadarDataStream, 2, 116, base.Add(time.Second), icd.TransportStream))

	snap := agg.Snapshot()
	if snap.Trailing != 1 {
		t.Fatalf("trailing frames = %d, want 1", snap.Trailing)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	agg := New()
	agg.Record(okOutcome(icd.MsgKeepAlive, 1, 20, base, icd.TransportDatagram))
	snap := agg.Snapshot()
	snap.ByType[icd.MsgKeepAlive] = TypeStats{Count: 999}

	if got := agg.Snapshot().ByType[icd.MsgKeepAlive].Count; got != 1 {
		t.Fatalf("count = %d after mutating a snapshot, want 1", got)
	}
}

func TestConcurrentRecordLosesNoUpdates(t *testing.T) {
	agg := New()
	const perPath = 500

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < perPath; i++ {
			agg.Record(okOutcome(icd.MsgRadarDataStream, uint32(i), 528,
				base.Add(time.Duration(i)*time.Millisecond), icd.TransportStream))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < perPath; i++ {
			agg.Record(okOutcome(icd.MsgSystemStatus, uint32(i), 44,
				base.Add(time.Duration(i)*time.Millisecond), icd.TransportDatagram))
		}
	}()
	wg.Wait()

	snap := agg.Snapshot()
	if snap.Frames != 2*perPath {
		t.Fatalf("frames = %d, want %d", snap.Frames, 2*perPath)
	}
	if snap.ByType[icd.MsgRadarDataStream].Count != perPath {
		t.Fatalf("stream count = %d, want %d", snap.ByType[icd.MsgRadarDataStream].Count, perPath)
	}
	if snap.ByType[icd.MsgSystemStatus].Count != perPath {
		t.Fatalf("status count = %d, want %d", snap.ByType[icd.MsgSystemStatus].Count, perPath)
	}
	if snap.Stream != perPath || snap.Datagram != perPath {
		t.Fatalf("transport split = %d/%d, want %d/%d", snap.Stream, snap.Datagram, perPath, perPath)
	}
}
