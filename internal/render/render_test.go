package render

import (
	"strings"
	"testing"
	"time"

	"example.com/radgate/internal/icd"
	"example.com/radgate/internal/stats"
)

func streamOutcome(body icd.MessageBody, trailing []byte) icd.DecodeOutcome {
	return icd.DecodeOutcome{
		Frame: icd.RawFrame{
			Transport: icd.TransportStream,
			Addr:      "127.0.0.1:23004",
			Arrival:   time.Date(2025, 3, 14, 9, 26, 53, 250e6, time.UTC),
			Bytes:     make([]byte, 528),
		},
		Msg: &icd.DecodedMessage{
			Header: icd.MessageHeader{
				SourceID:       0xCEF00414,
				MessageID:      icd.MsgRadarDataStream,
				DeclaredLength: 477954,
				TimeTagMs:      34013250,
				SequenceNum:    41,
			},
			Body: body,
		},
		Trailing: trailing,
	}
}

func TestOutcomeIsDeterministic(t *testing.T) {
	o := streamOutcome(icd.RadarDataStream{Records: []icd.TargetRecord{{
		TargetID: 7, RangeM: 12500, AzimuthMdeg: 45250, VelocityCmS: -1530,
		RCSCdBsm: 850, Class: 2, Confidence: 95,
	}}}, nil)

	first := Outcome(o, true)
	second := Outcome(o, true)
	if first != second {
		t.Fatal("identical outcomes rendered differently")
	}
}

func TestOutcomeShowsHeaderAndScaledFields(t *testing.T) {
	o := streamOutcome(icd.RadarDataStream{Records: []icd.TargetRecord{{
		TargetID: 7, RangeM: 12500, AzimuthMdeg: 45250, VelocityCmS: -1530,
		RCSCdBsm: 850, Class: 2, Confidence: 95,
	}}}, make([]byte, 28))

	out := Outcome(o, false)
	for _, want := range []string{
		"TCP 127.0.0.1:23004  528 bytes",
		"Message ID:        0x00000210",
		"Radar Data Stream",
		"Declared Length:   477954 bytes (diagnostic only, not used for framing)",
		"Time (HH:MM:SS.mmm): 09:26:53.250",
		"Sequence Number:   41",
		"Range:             12.500 km",
		"Azimuth:           45.250 deg",
		"Velocity:          -15.30 m/s",
		"RCS:               8.50 dBsm",
		"Confidence:        95%",
		"TRAILING BYTES: 28 after last complete record",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestOutcomeRendersFailure(t *testing.T) {
	o := icd.DecodeOutcome{
		Frame: icd.RawFrame{
			Transport: icd.TransportDatagram,
			Addr:      "10.0.0.5:32004",
			Arrival:   time.Date(2025, 3, 14, 9, 26, 54, 0, time.UTC),
			Bytes:     make([]byte, 10),
		},
		Failure: &icd.DecodeFailure{
			Kind:   icd.FailHeaderTooShort,
			Reason: "10 bytes received, 20 required",
			Bytes:  make([]byte, 10),
		},
	}
	out := Outcome(o, false)
	if !strings.Contains(out, "DECODE FAILURE: HEADER_TOO_SHORT") {
		t.Fatalf("missing failure banner:\n%s", out)
	}
	if !strings.Contains(out, "10 bytes received, 20 required") {
		t.Fatalf("missing failure reason:\n%s", out)
	}
	if strings.Contains(out, "MESSAGE HEADER") {
		t.Fatalf("failure output should not contain a header table:\n%s", out)
	}
}

func TestHexDumpFormat(t *testing.T) {
	data := append([]byte("RadarGate OK"), 0x00, 0xFF, 0x7F, 0x1F, 0x41)
	out := HexDump(data)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "0000: ") {
		t.Errorf("first line offset: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0010: ") {
		t.Errorf("second line offset: %q", lines[1])
	}
	if !strings.Contains(lines[0], "|RadarGate OK....|") {
		t.Errorf("ascii gutter: %q", lines[0])
	}
	if !strings.Contains(lines[1], "|A|") {
		t.Errorf("short final line gutter: %q", lines[1])
	}
}

func TestHexDumpEmpty(t *testing.T) {
	if out := HexDump(nil); out != "" {
		t.Fatalf("empty dump = %q", out)
	}
}

func TestStatisticsListsTypesInOrder(t *testing.T) {
	snap := stats.Snapshot{
		Frames:   3,
		Bytes:    1100,
		Errors:   1,
		Stream:   2,
		Datagram: 1,
		ByType: map[uint32]stats.TypeStats{
			icd.MsgKeepAlive:       {Count: 1, Bytes: 20},
			icd.MsgRadarDataStream: {Count: 1, Bytes: 528, AvgIntervalMs: 100},
			0xDEADBEEF:             {Count: 1, Bytes: 552},
		},
		ByFailure: map[icd.FailureKind]uint64{icd.FailTruncated: 1},
	}
	out := Statistics(snap)

	stream := strings.Index(out, "0x00000210")
	keep := strings.Index(out, "0xCEF00400")
	unknown := strings.Index(out, "0xDEADBEEF")
	if stream < 0 || keep < 0 || unknown < 0 {
		t.Fatalf("missing type rows:\n%s", out)
	}
	if !(stream < keep && keep < unknown) {
		t.Fatalf("type rows not in identifier order:\n%s", out)
	}
	if !strings.Contains(out, "Unknown (0xDEADBEEF)") {
		t.Errorf("unknown type not labelled:\n%s", out)
	}
	if !strings.Contains(out, "TRUNCATED") {
		t.Errorf("failure breakdown missing:\n%s", out)
	}
}
