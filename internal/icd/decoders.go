package icd

import (
	"encoding/binary"
	"fmt"
)

// BodyDecoder turns the payload following a parsed header into a typed body.
// Decoders are pure: identical bytes always produce identical results. The
// second return value holds trailing bytes that did not fit the decoded
// structure; a non-nil failure means the payload was too short for the
// decoder's minimum layout.
type BodyDecoder func(hdr MessageHeader, payload []byte) (MessageBody, []byte, *DecodeFailure)

func payloadTruncated(payload []byte, need int, what string) *DecodeFailure {
	return &DecodeFailure{
		Kind:   FailPayloadTruncated,
		Reason: fmt.Sprintf("%s requires %d bytes, have %d", what, need, len(payload)),
		Bytes:  payload,
	}
}

func decodeTargetRecord(buf []byte) TargetRecord {
	return TargetRecord{
		TargetID:      binary.LittleEndian.Uint32(buf[0:4]),
		RangeM:        binary.LittleEndian.Uint32(buf[4:8]),
		AzimuthMdeg:   binary.LittleEndian.Uint32(buf[8:12]),
		ElevationMdeg: binary.LittleEndian.Uint32(buf[12:16]),
		VelocityCmS:   int32(binary.LittleEndian.Uint32(buf[16:20])),
		RCSCdBsm:      int32(binary.LittleEndian.Uint32(buf[20:24])),
		Class:         int32(binary.LittleEndian.Uint32(buf[24:28])),
		Confidence:    int32(binary.LittleEndian.Uint32(buf[28:32])),
	}
}

// decodeRadarDataStream decodes the live stream body: back-to-back target
// records with no count word. The record count is floor(len/32); a remainder
// narrower than one record is returned as trailing bytes, never dropped.
func decodeRadarDataStream(hdr MessageHeader, payload []byte) (MessageBody, []byte, *DecodeFailure) {
	count := len(payload) / TargetRecordSize
	body := RadarDataStream{Records: make([]TargetRecord, 0, count)}
	for i := 0; i < count; i++ {
		off := i * TargetRecordSize
		body.Records = append(body.Records, decodeTargetRecord(payload[off:off+TargetRecordSize]))
	}
	return body, payload[count*TargetRecordSize:], nil
}

func decodeKeepAlive(hdr MessageHeader, payload []byte) (MessageBody, []byte, *DecodeFailure) {
	return KeepAlive{Extra: payload}, nil, nil
}

func decodeSystemStatus(hdr MessageHeader, payload []byte) (MessageBody, []byte, *DecodeFailure) {
	if len(payload) < 12 {
		return nil, nil, payloadTruncated(payload, 12, "system status")
	}
	body := SystemStatus{
		State:     binary.LittleEndian.Uint32(payload[0:4]),
		Mode:      binary.LittleEndian.Uint32(payload[4:8]),
		ErrorCode: binary.LittleEndian.Uint32(payload[8:12]),
	}
	consumed := 12
	if len(payload) >= 16 {
		body.TemperatureDeciC = binary.LittleEndian.Uint32(payload[12:16])
		body.HasTemperature = true
		consumed = 16
	}
	if len(payload) >= 20 {
		body.PowerMask = binary.LittleEndian.Uint32(payload[16:20])
		body.HasPower = true
		consumed = 20
	}
	if len(payload) >= 24 {
		body.AntennaCdeg = binary.LittleEndian.Uint32(payload[20:24])
		body.HasAntenna = true
		consumed = 24
	}
	return body, payload[consumed:], nil
}

func decodeTargetReport(hdr MessageHeader, payload []byte) (MessageBody, []byte, *DecodeFailure) {
	if len(payload) < 4 {
		return nil, nil, payloadTruncated(payload, 4, "target report count")
	}
	body := TargetReport{DeclaredCount: binary.LittleEndian.Uint32(payload[0:4])}
	rest := payload[4:]
	// Decode only records actually present: the declared count, like the
	// header length field, is not trusted past the bytes on the wire.
	avail := len(rest) / TargetRecordSize
	count := avail
	if body.DeclaredCount < uint32(count) {
		count = int(body.DeclaredCount)
	}
	body.Records = make([]TargetRecord, 0, count)
	for i := 0; i < count; i++ {
		off := i * TargetRecordSize
		body.Records = append(body.Records, decodeTargetRecord(rest[off:off+TargetRecordSize]))
	}
	return body, rest[count*TargetRecordSize:], nil
}

func decodeSingleTargetReport(hdr MessageHeader, payload []byte) (MessageBody, []byte, *DecodeFailure) {
	if len(payload) < TargetRecordSize {
		return nil, nil, payloadTruncated(payload, TargetRecordSize, "single target record")
	}
	body := SingleTargetReport{Record: decodeTargetRecord(payload[:TargetRecordSize])}
	return body, payload[TargetRecordSize:], nil
}

func decodeSensorPosition(hdr MessageHeader, payload []byte) (MessageBody, []byte, *DecodeFailure) {
	if len(payload) < 24 {
		return nil, nil, payloadTruncated(payload, 24, "sensor position")
	}
	body := SensorPosition{
		LatE7:       int32(binary.LittleEndian.Uint32(payload[0:4])),
		LonE7:       int32(binary.LittleEndian.Uint32(payload[4:8])),
		AltitudeMm:  int32(binary.LittleEndian.Uint32(payload[8:12])),
		HeadingMdeg: int32(binary.LittleEndian.Uint32(payload[12:16])),
		PitchMdeg:   int32(binary.LittleEndian.Uint32(payload[16:20])),
		RollMdeg:    int32(binary.LittleEndian.Uint32(payload[20:24])),
	}
	return body, payload[24:], nil
}

func decodeSystemControl(hdr MessageHeader, payload []byte) (MessageBody, []byte, *DecodeFailure) {
	if len(payload) < 8 {
		return nil, nil, payloadTruncated(payload, 8, "system control")
	}
	body := SystemControl{
		Command:   binary.LittleEndian.Uint32(payload[0:4]),
		Parameter: binary.LittleEndian.Uint32(payload[4:8]),
	}
	return body, payload[8:], nil
}
