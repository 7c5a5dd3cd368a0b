package icd

import "time"

// Message identifiers from ICD_2135M-004 plus the live stream identifier
// observed on the wire from the TDP simulator.
const (
	MsgKeepAlive            uint32 = 0xCEF00400
	MsgSystemControl        uint32 = 0xCEF00401
	MsgSystemMotion         uint32 = 0xCEF00402
	MsgSystemStatus         uint32 = 0xCEF00403
	MsgTargetReport         uint32 = 0xCEF00404
	MsgAcknowledge          uint32 = 0xCEF00405
	MsgSingleTargetReport   uint32 = 0xCEF00406
	MsgMaintenanceData      uint32 = 0xCEF00407
	MsgSingleTargetExtended uint32 = 0xCEF00408
	MsgBITStatusData        uint32 = 0xCEF00409
	MsgBITRequest           uint32 = 0xCEF0040A
	MsgResourceRequest      uint32 = 0xCEF0040B
	MsgMaintenanceRequest   uint32 = 0xCEF0040C
	MsgSetSensorPosition    uint32 = 0xCEF00418
	MsgGetSensorPosition    uint32 = 0xCEF00419
	MsgSensorPosition       uint32 = 0xCEF0041A

	MsgRadarDataStream uint32 = 0x00000210
)

var messageNames = map[uint32]string{
	MsgKeepAlive:            "Keep Alive",
	MsgSystemControl:        "System Control",
	MsgSystemMotion:         "System Motion",
	MsgSystemStatus:         "System Status",
	MsgTargetReport:         "Target Report",
	MsgAcknowledge:          "Acknowledge",
	MsgSingleTargetReport:   "Single Target Report",
	MsgMaintenanceData:      "Maintenance Data",
	MsgSingleTargetExtended: "Single Target Extended Data",
	MsgBITStatusData:        "BIT Status Data",
	MsgBITRequest:           "BIT Request",
	MsgResourceRequest:      "Resource Request",
	MsgMaintenanceRequest:   "Maintenance Request",
	MsgSetSensorPosition:    "Set Sensor Position",
	MsgGetSensorPosition:    "Get Sensor Position",
	MsgSensorPosition:       "Sensor Position",
	MsgRadarDataStream:      "Radar Data Stream",
}

// MessageName returns the ICD name for an identifier and whether the
// identifier is documented.
func MessageName(id uint32) (string, bool) {
	name, ok := messageNames[id]
	return name, ok
}

// KnownMessageID reports whether id appears in the ICD message table. The
// frame assembler uses this as the header signature when rescanning a stream
// buffer with an untrustworthy declared length.
func KnownMessageID(id uint32) bool {
	_, ok := messageNames[id]
	return ok
}

// Transport identifies which reception path a frame arrived on.
type Transport uint8

const (
	TransportStream Transport = iota
	TransportDatagram
)

func (t Transport) String() string {
	switch t {
	case TransportStream:
		return "TCP"
	case TransportDatagram:
		return "UDP"
	default:
		return "?"
	}
}

// RawFrame is one delimited unit of bytes believed to contain exactly one
// header plus body, tagged with its reception metadata.
type RawFrame struct {
	Transport Transport
	Addr      string
	Arrival   time.Time
	Bytes     []byte
}

// MessageHeader is the fixed 20-byte header that starts every message.
// DeclaredLength is carried for diagnostics only; it has been observed to
// wildly exceed the bytes actually transmitted (477954 declared against a
// 528-byte frame) and must never drive framing.
type MessageHeader struct {
	SourceID       uint32
	MessageID      uint32
	DeclaredLength uint32
	TimeTagMs      uint32
	SequenceNum    uint32
}

// TargetRecord is one fixed-size track element inside a Target Report or the
// Radar Data Stream. Field units follow the ICD scalings: range in meters,
// angles in millidegrees, velocity in cm/s, RCS in centi-dBsm.
type TargetRecord struct {
	TargetID      uint32
	RangeM        uint32
	AzimuthMdeg   uint32
	ElevationMdeg uint32
	VelocityCmS   int32
	RCSCdBsm      int32
	Class         int32
	Confidence    int32
}

// TargetRecordSize is the encoded size of one TargetRecord.
const TargetRecordSize = 32

// MessageBody is implemented by every decoded body variant.
type MessageBody interface {
	// Kind returns a short stable tag used by renderers and reports.
	Kind() string
}

// RadarDataStream is the live track stream: back-to-back target records with
// no leading count word.
type RadarDataStream struct {
	Records []TargetRecord
}

func (RadarDataStream) Kind() string { return "RADAR_DATA_STREAM" }

// KeepAlive carries no mandatory payload; some simulators append extra bytes.
type KeepAlive struct {
	Extra []byte
}

func (KeepAlive) Kind() string { return "KEEP_ALIVE" }

// SystemStatus reports radar state. The first three words are mandatory; the
// trailing words are present only in extended variants.
type SystemStatus struct {
	State     uint32
	Mode      uint32
	ErrorCode uint32

	TemperatureDeciC uint32
	HasTemperature   bool
	PowerMask        uint32
	HasPower         bool
	AntennaCdeg      uint32
	HasAntenna       bool
}

func (SystemStatus) Kind() string { return "SYSTEM_STATUS" }

// TargetReport carries a declared record count followed by that many target
// records.
type TargetReport struct {
	DeclaredCount uint32
	Records       []TargetRecord
}

func (TargetReport) Kind() string { return "TARGET_REPORT" }

// SingleTargetReport carries exactly one target record.
type SingleTargetReport struct {
	Record TargetRecord
}

func (SingleTargetReport) Kind() string { return "SINGLE_TARGET_REPORT" }

// SensorPosition reports the mounting geometry of the sensor head.
// Latitude and longitude are in 1e-7 degrees, altitude in millimeters,
// attitude angles in millidegrees.
type SensorPosition struct {
	LatE7       int32
	LonE7       int32
	AltitudeMm  int32
	HeadingMdeg int32
	PitchMdeg   int32
	RollMdeg    int32
}

func (SensorPosition) Kind() string { return "SENSOR_POSITION" }

// SystemControl is a command/parameter pair.
type SystemControl struct {
	Command   uint32
	Parameter uint32
}

func (SystemControl) Kind() string { return "SYSTEM_CONTROL" }

// Unknown wraps traffic with an identifier outside the ICD table. It is
// informational, not a failure.
type Unknown struct {
	MessageID uint32
	Payload   []byte
}

func (Unknown) Kind() string { return "UNKNOWN" }

// FailureKind classifies a decode failure.
type FailureKind string

const (
	FailHeaderTooShort   FailureKind = "HEADER_TOO_SHORT"
	FailTruncated        FailureKind = "TRUNCATED"
	FailPayloadTruncated FailureKind = "PAYLOAD_TRUNCATED"
)

// DecodeFailure captures a rejected frame as a value so one malformed frame
// never interrupts the receive loop.
type DecodeFailure struct {
	Kind   FailureKind
	Reason string
	Bytes  []byte
}

// DecodedMessage is a parsed header plus its body variant.
type DecodedMessage struct {
	Header MessageHeader
	Body   MessageBody
}

// DecodeOutcome is the single result produced for every frame. Exactly one of
// Msg and Failure is set. Trailing holds payload bytes left over after the
// last complete record; they indicate a length or framing mismatch worth
// surfacing but do not fail the decoded portion.
type DecodeOutcome struct {
	Frame    RawFrame
	Msg      *DecodedMessage
	Failure  *DecodeFailure
	Trailing []byte
}

// OK reports whether the frame decoded successfully.
func (o DecodeOutcome) OK() bool { return o.Failure == nil }
