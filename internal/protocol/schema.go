package protocol

import "fmt"

// Message types.
const (
	MsgPatch    uint32 = 1
	MsgNavigate uint32 = 2
	MsgRedirect uint32 = 3
	MsgAck      uint32 = 4
)

// Field ids. Request fields stay below 100; ack fields start at 100.
const (
	FieldSessionID uint16 = 1
	FieldTarget    uint16 = 2
	FieldReplace   uint16 = 3
	FieldExternal  uint16 = 4

	FieldStatus  uint16 = 100
	FieldCode    uint16 = 101
	FieldMessage uint16 = 102
)

// Ack statuses.
const (
	StatusOK    uint8 = 0
	StatusError uint8 = 1
)

// requirements lists the fields each message type must carry.
var requirements = map[uint32][]uint16{
	MsgPatch:    {FieldSessionID, FieldTarget, FieldReplace},
	MsgNavigate: {FieldSessionID, FieldTarget, FieldReplace},
	MsgRedirect: {FieldSessionID, FieldTarget, FieldExternal},
	MsgAck:      {FieldSessionID, FieldStatus},
}

// ValidateFields checks that every required field for the message type
// is present. Unknown extra fields are tolerated.
func ValidateFields(msgType uint32, fields []Field) error {
	required, ok := requirements[msgType]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMessageType, msgType)
	}
	for _, id := range required {
		if _, ok := GetField(fields, id); !ok {
			return fmt.Errorf("%w: message type %d missing field %d", ErrInvalidRequest, msgType, id)
		}
	}
	return nil
}

func MessageTypeString(t uint32) string {
	switch t {
	case MsgPatch:
		return "patch"
	case MsgNavigate:
		return "navigate"
	case MsgRedirect:
		return "redirect"
	case MsgAck:
		return "ack"
	default:
		return "unknown"
	}
}
