package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"example.com/radgate/internal/icd"
	"example.com/radgate/internal/stats"
)

func sampleSnapshot() stats.Snapshot {
	return stats.Snapshot{
		Started:  time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		Frames:   5,
		Bytes:    1248,
		Errors:   1,
		Trailing: 1,
		Stream:   3,
		Datagram: 2,
		ByType: map[uint32]stats.TypeStats{
			icd.MsgKeepAlive:       {Count: 1, Bytes: 20},
			icd.MsgRadarDataStream: {Count: 2, Bytes: 1056, AvgIntervalMs: 250, SeqGaps: 1},
		},
		ByFailure: map[icd.FailureKind]uint64{icd.FailHeaderTooShort: 1},
	}
}

func TestBuildSession(t *testing.T) {
	finding := NewFinding(icd.DecodeOutcome{
		Frame: icd.RawFrame{
			Transport: icd.TransportDatagram,
			Arrival:   time.Date(2025, 3, 14, 9, 26, 55, 0, time.UTC),
			Bytes:     make([]byte, 10),
		},
		Failure: &icd.DecodeFailure{Kind: icd.FailHeaderTooShort, Reason: "10 bytes received, 20 required"},
	})

	sess := Build("sample.cap", "DEADBEEF", 1248, sampleSnapshot(), []Finding{finding})
	if sess.Source != "sample.cap" || sess.Digest != "DEADBEEF" || sess.SourceBytes != 1248 {
		t.Fatalf("provenance = %q %q %d", sess.Source, sess.Digest, sess.SourceBytes)
	}
	if sess.Frames != 5 || sess.Errors != 1 {
		t.Fatalf("totals = %d/%d", sess.Frames, sess.Errors)
	}
	if len(sess.Types) != 2 {
		t.Fatalf("types = %d, want 2", len(sess.Types))
	}
	if sess.Types[0].MessageID != "0x00000210" || sess.Types[1].MessageID != "0xCEF00400" {
		t.Fatalf("type order: %q then %q", sess.Types[0].MessageID, sess.Types[1].MessageID)
	}
	if sess.Types[0].SeqGaps != 1 {
		t.Fatalf("seq gaps = %d", sess.Types[0].SeqGaps)
	}
	if sess.Failures["HEADER_TOO_SHORT"] != 1 {
		t.Fatalf("failures = %v", sess.Failures)
	}
	if len(sess.Findings) != 1 || sess.Findings[0].Kind != "HEADER_TOO_SHORT" {
		t.Fatalf("findings = %+v", sess.Findings)
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	sess := Build("sample.cap", "ABCD", 100, sampleSnapshot(), nil)
	if err := SaveJSON(sess, path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Session
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Source != sess.Source || got.Frames != sess.Frames || len(got.Types) != len(sess.Types) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestSavePDFWritesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.pdf")
	sess := Build("sample.cap",
		"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		1248, sampleSnapshot(), []Finding{{
			Ts:        time.Date(2025, 3, 14, 9, 26, 55, 0, time.UTC),
			Transport: "UDP",
			Kind:      "HEADER_TOO_SHORT",
			Reason:    "10 bytes received, 20 required",
			SizeBytes: 10,
		}})
	if err := SavePDF(sess, path); err != nil {
		t.Fatalf("SavePDF: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF")) {
		t.Fatalf("output does not start with %%PDF: % X", raw[:8])
	}
	if len(raw) < 1024 {
		t.Fatalf("suspiciously small PDF: %d bytes", len(raw))
	}
}

func TestDigestQR(t *testing.T) {
	png, err := DigestQR("9f86d081884c7d65", 128)
	if err != nil {
		t.Fatalf("DigestQR: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("not a PNG: % X", png[:4])
	}
}

func TestDigestQRRejectsEmpty(t *testing.T) {
	if _, err := DigestQR("  zz--  ", 128); err == nil {
		t.Fatal("non-hex digest accepted")
	}
}

func TestSanitizeDigest(t *testing.T) {
	cases := []struct{ in, want string }{
		{"deadbeef", "DEADBEEF"},
		{"  9f:86:d0  ", "9F86D0"},
		{"0xAB12", "0AB12"},
		{"", ""},
	}
	for _, c := range cases {
		if got := sanitizeDigest(c.in); got != c.want {
			t.Errorf("sanitizeDigest(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
