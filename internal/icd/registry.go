package icd

import "fmt"

// Registry maps message identifiers to body decoders. It is the single
// extension point for new message types: framing, statistics and rendering
// never switch on identifiers themselves. A Registry is immutable after
// construction and safe for concurrent use from both reception paths.
type Registry struct {
	decoders map[uint32]BodyDecoder
}

// NewRegistry returns a registry populated with the built-in ICD decoders.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[uint32]BodyDecoder)}
	r.Register(MsgRadarDataStream, decodeRadarDataStream)
	r.Register(MsgKeepAlive, decodeKeepAlive)
	r.Register(MsgSystemStatus, decodeSystemStatus)
	r.Register(MsgTargetReport, decodeTargetReport)
	r.Register(MsgSingleTargetReport, decodeSingleTargetReport)
	r.Register(MsgSensorPosition, decodeSensorPosition)
	r.Register(MsgSystemControl, decodeSystemControl)
	return r
}

// Register binds a decoder to a message identifier, replacing any previous
// binding. Call before the registry is shared between goroutines.
func (r *Registry) Register(id uint32, dec BodyDecoder) {
	r.decoders[id] = dec
}

// Decode turns one raw frame into its outcome. Dispatch is total: an
// unrecognized identifier yields the Unknown variant, never an error. The
// only failures are a frame too short for a header or a payload too short
// for its decoder.
func (r *Registry) Decode(frame RawFrame) DecodeOutcome {
	out := DecodeOutcome{Frame: frame}
	hdr, err := ParseHeader(frame.Bytes)
	if err != nil {
		out.Failure = &DecodeFailure{
			Kind:   FailHeaderTooShort,
			Reason: fmt.Sprintf("frame of %d bytes cannot hold a %d-byte header", len(frame.Bytes), HeaderSize),
			Bytes:  frame.Bytes,
		}
		return out
	}
	payload := frame.Bytes[HeaderSize:]

	dec, ok := r.decoders[hdr.MessageID]
	if !ok {
		out.Msg = &DecodedMessage{Header: hdr, Body: Unknown{MessageID: hdr.MessageID, Payload: payload}}
		return out
	}
	body, trailing, failure := dec(hdr, payload)
	if failure != nil {
		out.Failure = failure
		return out
	}
	out.Msg = &DecodedMessage{Header: hdr, Body: body}
	out.Trailing = trailing
	return out
}
