package icd

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the fixed size of the message header: five 32-bit
// little-endian words.
const HeaderSize = 20

var ErrHeaderTooShort = errors.New("buffer shorter than 20-byte message header")

// ParseHeader extracts the fixed header from the start of buf. It never reads
// past HeaderSize and fails rather than returning a partial header.
func ParseHeader(buf []byte) (MessageHeader, error) {
	var hdr MessageHeader
	if len(buf) < HeaderSize {
		return hdr, fmt.Errorf("%w: have %d bytes", ErrHeaderTooShort, len(buf))
	}
	hdr.SourceID = binary.LittleEndian.Uint32(buf[0:4])
	hdr.MessageID = binary.LittleEndian.Uint32(buf[4:8])
	hdr.DeclaredLength = binary.LittleEndian.Uint32(buf[8:12])
	hdr.TimeTagMs = binary.LittleEndian.Uint32(buf[12:16])
	hdr.SequenceNum = binary.LittleEndian.Uint32(buf[16:20])
	return hdr, nil
}

// Encode serializes the header into its 20-byte wire form.
func (h MessageHeader) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.SourceID)
	binary.LittleEndian.PutUint32(buf[4:8], h.MessageID)
	binary.LittleEndian.PutUint32(buf[8:12], h.DeclaredLength)
	binary.LittleEndian.PutUint32(buf[12:16], h.TimeTagMs)
	binary.LittleEndian.PutUint32(buf[16:20], h.SequenceNum)
	return buf
}

// TimeOfDay renders the time tag (milliseconds since midnight, wraps daily)
// as HH:MM:SS.mmm.
func (h MessageHeader) TimeOfDay() string {
	ms := h.TimeTagMs
	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	seconds := (ms % 60_000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

// Name returns the ICD message name, or a formatted unknown tag.
func (h MessageHeader) Name() string {
	if name, ok := MessageName(h.MessageID); ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%08X)", h.MessageID)
}
