// Package stats maintains running counters over every decode outcome. One
// Aggregator instance is shared by both reception paths; a single mutex
// bounds the counter update and nothing else happens while it is held.
package stats

import (
	"sync"
	"time"

	"example.com/radgate/internal/icd"
)

// TypeStats accumulates per-message-identifier counters. Inter-arrival
// timing derives from frame arrival timestamps carried in from the byte
// source, not wall clock at aggregation time, so replayed captures produce
// identical numbers.
type TypeStats struct {
	Count     uint64
	Bytes     uint64
	FirstSeen time.Time
	LastSeen  time.Time

	// AvgIntervalMs is the running mean of inter-arrival gaps.
	AvgIntervalMs float64

	// SeqGaps counts forward jumps in the per-type sequence number.
	LastSeq uint32
	SeqGaps uint64
}

// Snapshot is an immutable copy of the aggregator state.
type Snapshot struct {
	Started time.Time

	Frames   uint64
	Bytes    uint64
	Errors   uint64
	Trailing uint64

	Stream   uint64
	Datagram uint64

	ByType    map[uint32]TypeStats
	ByFailure map[icd.FailureKind]uint64
}

// Aggregator is the only shared mutable state in the pipeline.
type Aggregator struct {
	mu sync.Mutex

	started time.Time

	frames   uint64
	bytes    uint64
	errors   uint64
	trailing uint64

	stream   uint64
	datagram uint64

	byType    map[uint32]*TypeStats
	byFailure map[icd.FailureKind]uint64
}

// New returns an aggregator scoped to one process lifetime. Counters reset
// only at restart.
func New() *Aggregator {
	return &Aggregator{
		started:   time.Now(),
		byType:    make(map[uint32]*TypeStats),
		byFailure: make(map[icd.FailureKind]uint64),
	}
}

// Record updates counters from one outcome, success or failure, exactly once.
func (a *Aggregator) Record(o icd.DecodeOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.frames++
	a.bytes += uint64(len(o.Frame.Bytes))
	switch o.Frame.Transport {
	case icd.TransportStream:
		a.stream++
	case icd.TransportDatagram:
		a.datagram++
	}
	if len(o.Trailing) > 0 {
		a.trailing++
	}

	if o.Failure != nil {
		a.errors++
		a.byFailure[o.Failure.Kind]++
		return
	}

	hdr := o.Msg.Header
	ts := a.byType[hdr.MessageID]
	if ts == nil {
		ts = &TypeStats{FirstSeen: o.Frame.Arrival}
		a.byType[hdr.MessageID] = ts
	}
	if ts.Count > 0 {
		gap := o.Frame.Arrival.Sub(ts.LastSeen)
		if gap > 0 {
			gapMs := float64(gap) / float64(time.Millisecond)
			ts.AvgIntervalMs += (gapMs - ts.AvgIntervalMs) / float64(ts.Count)
		}
		// Count only forward jumps; a lower value is taken as the
		// counter wrapping or the source restarting, not a loss.
		if hdr.SequenceNum > ts.LastSeq+1 {
			ts.SeqGaps++
		}
	}
	ts.Count++
	ts.Bytes += uint64(len(o.Frame.Bytes))
	ts.LastSeen = o.Frame.Arrival
	ts.LastSeq = hdr.SequenceNum
}

// Snapshot copies the current counters without blocking the recording path
// beyond the same mutex Record takes.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{
		Started:   a.started,
		Frames:    a.frames,
		Bytes:     a.bytes,
		Errors:    a.errors,
		Trailing:  a.trailing,
		Stream:    a.stream,
		Datagram:  a.datagram,
		ByType:    make(map[uint32]TypeStats, len(a.byType)),
		ByFailure: make(map[icd.FailureKind]uint64, len(a.byFailure)),
	}
	for id, ts := range a.byType {
		snap.ByType[id] = *ts
	}
	for kind, n := range a.byFailure {
		snap.ByFailure[kind] = n
	}
	return snap
}
