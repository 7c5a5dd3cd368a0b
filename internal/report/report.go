// Package report builds verification session reports from a statistics
// snapshot: a JSON artifact for tooling and a PDF for sign-off, with the
// capture digest embedded so findings trace back to exact bytes.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"example.com/radgate/internal/icd"
	"example.com/radgate/internal/stats"
)

// TypeRow summarizes one message type for the session matrix.
type TypeRow struct {
	MessageID     string  `json:"messageId"`
	MessageName   string  `json:"messageName"`
	Count         uint64  `json:"count"`
	Bytes         uint64  `json:"bytes"`
	AvgIntervalMs float64 `json:"avgIntervalMs"`
	SeqGaps       uint64  `json:"seqGaps"`
}

// Finding records one rejected frame.
type Finding struct {
	Ts        time.Time `json:"ts"`
	Transport string    `json:"transport"`
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason"`
	SizeBytes int       `json:"sizeBytes"`
}

// Session is the complete verification session report.
type Session struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Source      string    `json:"source"`
	Digest      string    `json:"digest,omitempty"`
	SourceBytes int64     `json:"sourceBytes,omitempty"`

	Frames   uint64 `json:"frames"`
	Bytes    uint64 `json:"bytes"`
	Errors   uint64 `json:"errors"`
	Trailing uint64 `json:"framesWithTrailing"`
	Stream   uint64 `json:"streamFrames"`
	Datagram uint64 `json:"datagramFrames"`

	Types    []TypeRow         `json:"types"`
	Failures map[string]uint64 `json:"failures,omitempty"`
	Findings []Finding         `json:"findings,omitempty"`
}

// NewFinding flattens a failed outcome.
func NewFinding(o icd.DecodeOutcome) Finding {
	f := Finding{
		Ts:        o.Frame.Arrival,
		Transport: o.Frame.Transport.String(),
		SizeBytes: len(o.Frame.Bytes),
	}
	if o.Failure != nil {
		f.Kind = string(o.Failure.Kind)
		f.Reason = o.Failure.Reason
	}
	return f
}

// Build assembles a session report from a snapshot. findings may be nil.
func Build(source, digest string, sourceBytes int64, snap stats.Snapshot, findings []Finding) Session {
	sess := Session{
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Digest:      digest,
		SourceBytes: sourceBytes,
		Frames:      snap.Frames,
		Bytes:       snap.Bytes,
		Errors:      snap.Errors,
		Trailing:    snap.Trailing,
		Stream:      snap.Stream,
		Datagram:    snap.Datagram,
		Findings:    findings,
	}
	ids := make([]uint32, 0, len(snap.ByType))
	for id := range snap.ByType {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		ts := snap.ByType[id]
		name, ok := icd.MessageName(id)
		if !ok {
			name = fmt.Sprintf("Unknown (0x%08X)", id)
		}
		sess.Types = append(sess.Types, TypeRow{
			MessageID:     fmt.Sprintf("0x%08X", id),
			MessageName:   name,
			Count:         ts.Count,
			Bytes:         ts.Bytes,
			AvgIntervalMs: ts.AvgIntervalMs,
			SeqGaps:       ts.SeqGaps,
		})
	}
	if len(snap.ByFailure) > 0 {
		sess.Failures = make(map[string]uint64, len(snap.ByFailure))
		for kind, n := range snap.ByFailure {
			sess.Failures[string(kind)] = n
		}
	}
	return sess
}

// SaveJSON writes the session report as indented JSON.
func SaveJSON(sess Session, out string) error {
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}
