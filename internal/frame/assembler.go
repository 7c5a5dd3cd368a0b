// Package frame turns possibly fragmented or over-declared byte chunks into
// discrete message frames. Each transport path owns one Assembler; buffers
// are never shared across transports.
package frame

import (
	"encoding/binary"
	"fmt"
	"time"

	"example.com/radgate/internal/common"
	"example.com/radgate/internal/icd"
)

// DefaultMaxFrame bounds how many stream bytes a single frame may claim when
// the declared length cannot be trusted. The live stream has never been seen
// to exceed a few hundred bytes per message; 64 KiB leaves generous headroom.
const DefaultMaxFrame = 64 * 1024

// Sink receives one outcome per resolved frame, in arrival order for the
// owning transport.
type Sink func(icd.DecodeOutcome)

// Assembler accumulates chunks from one transport and emits decode outcomes.
// Datagram chunks are atomic frames. Stream chunks are buffered and framed by
// the declared length only when it is plausible; otherwise the assembler
// rescans for the next recognizable header and, failing that, treats all
// currently available bytes as the frame. The declared length is never
// awaited: a header claiming 477954 bytes must not stall a 528-byte message.
type Assembler struct {
	transport icd.Transport
	registry  *icd.Registry
	sink      Sink
	maxFrame  int

	buf     []byte
	addr    string
	arrival time.Time
	resyncs uint64
}

// NewAssembler builds an assembler for one transport path. maxFrame <= 0
// selects DefaultMaxFrame.
func NewAssembler(transport icd.Transport, registry *icd.Registry, maxFrame int, sink Sink) *Assembler {
	if maxFrame < icd.HeaderSize {
		maxFrame = DefaultMaxFrame
	}
	return &Assembler{
		transport: transport,
		registry:  registry,
		sink:      sink,
		maxFrame:  maxFrame,
	}
}

// Resyncs returns how many times the assembler had to abandon the declared
// length and rescan for a header.
func (a *Assembler) Resyncs() uint64 { return a.resyncs }

// Deliver feeds one received chunk into the assembler. For the datagram
// transport every chunk is a complete frame; for the stream transport the
// chunk joins the connection buffer and as many frames as are resolvable are
// emitted immediately.
func (a *Assembler) Deliver(chunk []byte, arrival time.Time, addr string) {
	if a.transport == icd.TransportDatagram {
		frame := icd.RawFrame{
			Transport: a.transport,
			Addr:      addr,
			Arrival:   arrival,
			Bytes:     append([]byte(nil), chunk...),
		}
		a.sink(a.registry.Decode(frame))
		return
	}
	a.buf = append(a.buf, chunk...)
	a.addr = addr
	a.arrival = arrival
	a.drain()
}

// Flush resolves whatever remains in the stream buffer after the connection
// closed. A remainder shorter than one header is emitted as a Truncated
// failure; anything longer becomes a final frame.
func (a *Assembler) Flush() {
	if len(a.buf) == 0 {
		return
	}
	remainder := a.buf
	a.buf = nil
	if len(remainder) < icd.HeaderSize {
		a.sink(icd.DecodeOutcome{
			Frame: icd.RawFrame{Transport: a.transport, Addr: a.addr, Arrival: a.arrival, Bytes: remainder},
			Failure: &icd.DecodeFailure{
				Kind:   icd.FailTruncated,
				Reason: fmt.Sprintf("stream closed with %d bytes pending, mid-header", len(remainder)),
				Bytes:  remainder,
			},
		})
		return
	}
	a.emit(remainder)
}

func (a *Assembler) drain() {
	for len(a.buf) >= icd.HeaderSize {
		declared := int(binary.LittleEndian.Uint32(a.buf[8:12]))
		if declared >= icd.HeaderSize && declared <= a.maxFrame {
			// Plausible length: frame ends there once the bytes arrive.
			if len(a.buf) < declared {
				return
			}
			a.emit(a.buf[:declared])
			a.buf = append([]byte(nil), a.buf[declared:]...)
			continue
		}

		// Untrustworthy length. End the frame at the next recognizable
		// header if one is already in the buffer, otherwise take
		// everything available up to the ceiling.
		a.resyncs++
		end := a.nextHeader()
		if end < 0 {
			end = len(a.buf)
			if end > a.maxFrame {
				end = a.maxFrame
			}
			common.Logf("%s framing: declared length %d implausible, taking %d available bytes", a.transport, declared, end)
		} else {
			common.Logf("%s framing: declared length %d implausible, next header found at offset %d", a.transport, declared, end)
		}
		a.emit(a.buf[:end])
		a.buf = append([]byte(nil), a.buf[end:]...)
	}
}

// nextHeader scans forward for a plausible header start: a documented message
// identifier at a header-aligned offset. Returns -1 when none is in the
// buffer yet.
func (a *Assembler) nextHeader() int {
	for off := icd.HeaderSize; off+8 <= len(a.buf); off += 4 {
		id := binary.LittleEndian.Uint32(a.buf[off+4 : off+8])
		if icd.KnownMessageID(id) {
			return off
		}
	}
	return -1
}

func (a *Assembler) emit(frame []byte) {
	raw := icd.RawFrame{
		Transport: a.transport,
		Addr:      a.addr,
		Arrival:   a.arrival,
		Bytes:     append([]byte(nil), frame...),
	}
	a.sink(a.registry.Decode(raw))
}
