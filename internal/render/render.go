// Package render formats decode outcomes and statistics snapshots for human
// verification against the ICD. Rendering is pure: it never influences
// decoding or statistics and identical inputs yield identical text.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"example.com/radgate/internal/icd"
	"example.com/radgate/internal/stats"
)

const rule = "============================================================"

// Outcome renders one decode outcome as a structured report: header field
// table, type-specific body table and, when requested, a hex dump of the raw
// frame.
func Outcome(o icd.DecodeOutcome, hexDump bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %d bytes  %s\n",
		o.Frame.Transport, o.Frame.Addr, len(o.Frame.Bytes),
		o.Frame.Arrival.Format("15:04:05.000"))

	if o.Failure != nil {
		writeFailure(&b, o.Failure)
		b.WriteString(HexDump(o.Failure.Bytes))
		return b.String()
	}

	writeHeader(&b, o.Msg.Header)
	writeBody(&b, o.Msg)
	if len(o.Trailing) > 0 {
		fmt.Fprintf(&b, "\nTRAILING BYTES: %d after last complete record (framing or length mismatch)\n", len(o.Trailing))
		b.WriteString(HexDump(o.Trailing))
	}
	if hexDump {
		b.WriteString("\nHex Dump:\n")
		b.WriteString(HexDump(o.Frame.Bytes))
	}
	return b.String()
}

func writeFailure(b *strings.Builder, f *icd.DecodeFailure) {
	fmt.Fprintf(b, "%s\nDECODE FAILURE: %s\n%s\n", rule, f.Kind, rule)
	fmt.Fprintf(b, "Reason:            %s\n", f.Reason)
	fmt.Fprintf(b, "Data Length:       %d bytes\n", len(f.Bytes))
}

func writeHeader(b *strings.Builder, h icd.MessageHeader) {
	fmt.Fprintf(b, "%s\nMESSAGE HEADER\n%s\n", rule, rule)
	fmt.Fprintf(b, "Source ID:         0x%08X\n", h.SourceID)
	fmt.Fprintf(b, "Message ID:        0x%08X\n", h.MessageID)
	fmt.Fprintf(b, "Message Name:      %s\n", h.Name())
	fmt.Fprintf(b, "Declared Length:   %d bytes (diagnostic only, not used for framing)\n", h.DeclaredLength)
	fmt.Fprintf(b, "Time Tag:          %d ms (from midnight)\n", h.TimeTagMs)
	fmt.Fprintf(b, "Time (HH:MM:SS.mmm): %s\n", h.TimeOfDay())
	fmt.Fprintf(b, "Sequence Number:   %d\n", h.SequenceNum)
}

func writeBody(b *strings.Builder, msg *icd.DecodedMessage) {
	fmt.Fprintf(b, "%s\nMESSAGE TYPE: %s\n%s\n", rule, msg.Header.Name(), rule)

	switch body := msg.Body.(type) {
	case icd.RadarDataStream:
		fmt.Fprintf(b, "Target Records:    %d\n", len(body.Records))
		for i, rec := range body.Records {
			writeTargetRecord(b, rec, i+1)
		}
	case icd.KeepAlive:
		b.WriteString("Description: Heartbeat message to maintain connection\n")
		fmt.Fprintf(b, "Payload Size: %d bytes\n", len(body.Extra))
		if len(body.Extra) > 0 {
			fmt.Fprintf(b, "Additional Data: %X\n", body.Extra)
		}
	case icd.SystemStatus:
		fmt.Fprintf(b, "System State:      %s\n", icd.SystemStateName(body.State))
		fmt.Fprintf(b, "Operational Mode:  %s\n", icd.OperationalModeName(body.Mode))
		fmt.Fprintf(b, "Error Code:        %s\n", icd.ErrorCodeText(body.ErrorCode))
		if body.HasTemperature {
			fmt.Fprintf(b, "System Temperature: %.1f degC\n", float64(body.TemperatureDeciC)/10)
		}
		if body.HasPower {
			fmt.Fprintf(b, "Power Status:      %s\n", icd.PowerStatusText(body.PowerMask))
		}
		if body.HasAntenna {
			fmt.Fprintf(b, "Antenna Position:  %.2f deg\n", float64(body.AntennaCdeg)/100)
		}
	case icd.TargetReport:
		fmt.Fprintf(b, "Number of Targets: %d (declared %d)\n", len(body.Records), body.DeclaredCount)
		for i, rec := range body.Records {
			writeTargetRecord(b, rec, i+1)
		}
	case icd.SingleTargetReport:
		writeTargetRecord(b, body.Record, 1)
	case icd.SensorPosition:
		fmt.Fprintf(b, "Latitude:          %.7f deg\n", float64(body.LatE7)/1e7)
		fmt.Fprintf(b, "Longitude:         %.7f deg\n", float64(body.LonE7)/1e7)
		fmt.Fprintf(b, "Altitude:          %.3f m\n", float64(body.AltitudeMm)/1000)
		fmt.Fprintf(b, "Heading:           %.3f deg\n", float64(body.HeadingMdeg)/1000)
		fmt.Fprintf(b, "Pitch:             %.3f deg\n", float64(body.PitchMdeg)/1000)
		fmt.Fprintf(b, "Roll:              %.3f deg\n", float64(body.RollMdeg)/1000)
	case icd.SystemControl:
		fmt.Fprintf(b, "Control Command:   %s\n", icd.ControlCommandName(body.Command))
		fmt.Fprintf(b, "Parameter:         %d\n", body.Parameter)
	case icd.Unknown:
		fmt.Fprintf(b, "Payload Size: %d bytes\n", len(body.Payload))
		if len(body.Payload) > 0 {
			b.WriteString(HexDump(body.Payload))
		}
	default:
		fmt.Fprintf(b, "Body Kind: %s\n", msg.Body.Kind())
	}
}

func writeTargetRecord(b *strings.Builder, rec icd.TargetRecord, n int) {
	fmt.Fprintf(b, "--- TARGET %d ---\n", n)
	fmt.Fprintf(b, "Target ID:         %d\n", rec.TargetID)
	fmt.Fprintf(b, "Range:             %.3f km\n", float64(rec.RangeM)/1000)
	fmt.Fprintf(b, "Azimuth:           %.3f deg\n", float64(rec.AzimuthMdeg)/1000)
	fmt.Fprintf(b, "Elevation:         %.3f deg\n", float64(rec.ElevationMdeg)/1000)
	fmt.Fprintf(b, "Velocity:          %.2f m/s\n", float64(rec.VelocityCmS)/100)
	fmt.Fprintf(b, "RCS:               %.2f dBsm\n", float64(rec.RCSCdBsm)/100)
	fmt.Fprintf(b, "Target Class:      %s\n", icd.TargetClassName(rec.Class))
	fmt.Fprintf(b, "Confidence:        %d%%\n", rec.Confidence)
}

// HexDump formats data as a 16-byte-per-line dump with offsets and an ASCII
// gutter.
func HexDump(data []byte) string {
	var b strings.Builder
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		chunk := data[i:end]
		hexPart := make([]string, len(chunk))
		asciiPart := make([]byte, len(chunk))
		for j, c := range chunk {
			hexPart[j] = fmt.Sprintf("%02X", c)
			if c >= 32 && c <= 126 {
				asciiPart[j] = c
			} else {
				asciiPart[j] = '.'
			}
		}
		fmt.Fprintf(&b, "%04X: %-48s |%s|\n", i, strings.Join(hexPart, " "), asciiPart)
	}
	return b.String()
}

// Statistics renders a snapshot as a per-type table with totals.
func Statistics(s stats.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nRECEPTION STATISTICS\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Frames:            %s (%s TCP, %s UDP)\n",
		humanize.Comma(int64(s.Frames)), humanize.Comma(int64(s.Stream)), humanize.Comma(int64(s.Datagram)))
	fmt.Fprintf(&b, "Bytes:             %s\n", humanize.IBytes(s.Bytes))
	fmt.Fprintf(&b, "Errors:            %s\n", humanize.Comma(int64(s.Errors)))
	fmt.Fprintf(&b, "Frames w/ Trailing: %s\n", humanize.Comma(int64(s.Trailing)))

	ids := make([]uint32, 0, len(s.ByType))
	for id := range s.ByType {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		ts := s.ByType[id]
		name, _ := icd.MessageName(id)
		if name == "" {
			name = fmt.Sprintf("Unknown (0x%08X)", id)
		}
		fmt.Fprintf(&b, "  0x%08X %-28s count=%d bytes=%s avg-interval=%.1fms seq-gaps=%d\n",
			id, name, ts.Count, humanize.IBytes(ts.Bytes), ts.AvgIntervalMs, ts.SeqGaps)
	}

	if len(s.ByFailure) > 0 {
		kinds := make([]string, 0, len(s.ByFailure))
		for kind := range s.ByFailure {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		b.WriteString("Failures:\n")
		for _, kind := range kinds {
			fmt.Fprintf(&b, "  %-20s %d\n", kind, s.ByFailure[icd.FailureKind(kind)])
		}
	}
	return b.String()
}
