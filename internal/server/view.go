package server

import (
	"fmt"
	"sort"
	"time"

	"example.com/radgate/internal/icd"
	"example.com/radgate/internal/stats"
)

// OutcomeView is the public JSON representation of one decode outcome.
type OutcomeView struct {
	Ts        time.Time `json:"ts"`
	Transport string    `json:"transport"`
	Addr      string    `json:"addr,omitempty"`
	Size      int       `json:"size"`
	OK        bool      `json:"ok"`

	MessageID      string `json:"messageId,omitempty"`
	MessageName    string `json:"messageName,omitempty"`
	DeclaredLength uint32 `json:"declaredLength,omitempty"`
	TimeTag        string `json:"timeTag,omitempty"`
	Sequence       uint32 `json:"sequence,omitempty"`
	Records        int    `json:"records,omitempty"`
	TrailingBytes  int    `json:"trailingBytes,omitempty"`

	FailureKind string `json:"failureKind,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// NewOutcomeView flattens an outcome for API responses.
func NewOutcomeView(o *icd.DecodeOutcome) OutcomeView {
	v := OutcomeView{
		Ts:        o.Frame.Arrival,
		Transport: o.Frame.Transport.String(),
		Addr:      o.Frame.Addr,
		Size:      len(o.Frame.Bytes),
		OK:        o.OK(),
	}
	if o.Failure != nil {
		v.FailureKind = string(o.Failure.Kind)
		v.Reason = o.Failure.Reason
		return v
	}
	hdr := o.Msg.Header
	v.MessageID = fmt.Sprintf("0x%08X", hdr.MessageID)
	v.MessageName = hdr.Name()
	v.DeclaredLength = hdr.DeclaredLength
	v.TimeTag = hdr.TimeOfDay()
	v.Sequence = hdr.SequenceNum
	v.TrailingBytes = len(o.Trailing)
	switch body := o.Msg.Body.(type) {
	case icd.RadarDataStream:
		v.Records = len(body.Records)
	case icd.TargetReport:
		v.Records = len(body.Records)
	case icd.SingleTargetReport:
		v.Records = 1
	}
	return v
}

// TypeView is the JSON representation of per-message-type counters.
type TypeView struct {
	MessageID     string    `json:"messageId"`
	MessageName   string    `json:"messageName"`
	Count         uint64    `json:"count"`
	Bytes         uint64    `json:"bytes"`
	FirstSeen     time.Time `json:"firstSeen"`
	LastSeen      time.Time `json:"lastSeen"`
	AvgIntervalMs float64   `json:"avgIntervalMs"`
	SeqGaps       uint64    `json:"seqGaps"`
}

// StatsView is the JSON representation of a statistics snapshot.
type StatsView struct {
	Started       time.Time         `json:"started"`
	UptimeSeconds float64           `json:"uptimeSeconds"`
	Frames        uint64            `json:"frames"`
	Bytes         uint64            `json:"bytes"`
	Errors        uint64            `json:"errors"`
	Trailing      uint64            `json:"framesWithTrailing"`
	Stream        uint64            `json:"streamFrames"`
	Datagram      uint64            `json:"datagramFrames"`
	Types         []TypeView        `json:"types"`
	Failures      map[string]uint64 `json:"failures,omitempty"`
}

// NewStatsView flattens a snapshot for API responses. Types are sorted by
// identifier so responses are deterministic.
func NewStatsView(s stats.Snapshot, now time.Time) StatsView {
	v := StatsView{
		Started:       s.Started,
		UptimeSeconds: now.Sub(s.Started).Seconds(),
		Frames:        s.Frames,
		Bytes:         s.Bytes,
		Errors:        s.Errors,
		Trailing:      s.Trailing,
		Stream:        s.Stream,
		Datagram:      s.Datagram,
	}
	ids := make([]uint32, 0, len(s.ByType))
	for id := range s.ByType {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	v.Types = make([]TypeView, 0, len(ids))
	for _, id := range ids {
		ts := s.ByType[id]
		name, ok := icd.MessageName(id)
		if !ok {
			name = fmt.Sprintf("Unknown (0x%08X)", id)
		}
		v.Types = append(v.Types, TypeView{
			MessageID:     fmt.Sprintf("0x%08X", id),
			MessageName:   name,
			Count:         ts.Count,
			Bytes:         ts.Bytes,
			FirstSeen:     ts.FirstSeen,
			LastSeen:      ts.LastSeen,
			AvgIntervalMs: ts.AvgIntervalMs,
			SeqGaps:       ts.SeqGaps,
		})
	}
	if len(s.ByFailure) > 0 {
		v.Failures = make(map[string]uint64, len(s.ByFailure))
		for kind, n := range s.ByFailure {
			v.Failures[string(kind)] = n
		}
	}
	return v
}
