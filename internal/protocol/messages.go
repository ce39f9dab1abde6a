package protocol

import "fmt"

// Request is a resolved navigation request on the wire. Build functions
// cannot cross a process boundary, so remote peers send the resolved
// target instead: the relative target for patch and navigate, a
// relative target or an external literal for redirect.
type Request struct {
	SessionID string
	// Kind is one of MsgPatch, MsgNavigate, MsgRedirect.
	Kind     uint32
	Target   string
	Replace  bool
	External bool
}

func (r Request) Validate() error {
	switch r.Kind {
	case MsgPatch, MsgNavigate:
		if r.External {
			return fmt.Errorf("%w: %s cannot be external", ErrInvalidRequest, MessageTypeString(r.Kind))
		}
	case MsgRedirect:
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMessageType, r.Kind)
	}
	if r.SessionID == "" {
		return fmt.Errorf("%w: empty session id", ErrInvalidRequest)
	}
	if r.Target == "" {
		return fmt.Errorf("%w: empty target", ErrInvalidRequest)
	}
	return nil
}

// Ack reports the outcome of a request. Code and Message are set only
// on error.
type Ack struct {
	SessionID string
	Status    uint8
	Code      uint32
	Message   string
}

func (a Ack) Validate() error {
	if a.SessionID == "" {
		return fmt.Errorf("%w: empty session id", ErrInvalidAck)
	}
	if a.Status != StatusOK && a.Status != StatusError {
		return fmt.Errorf("%w: status %d", ErrInvalidAck, a.Status)
	}
	return nil
}

func EncodeRequest(messageID uint64, r Request) (Frame, error) {
	if err := r.Validate(); err != nil {
		return Frame{}, err
	}
	fields := []Field{
		NewFieldString(FieldSessionID, r.SessionID),
		NewFieldString(FieldTarget, r.Target),
	}
	switch r.Kind {
	case MsgPatch, MsgNavigate:
		fields = append(fields, NewFieldBool(FieldReplace, r.Replace))
	case MsgRedirect:
		fields = append(fields, NewFieldBool(FieldExternal, r.External))
	}
	return Frame{
		Header:  Header{MessageID: messageID, MessageType: r.Kind},
		Payload: EncodeFields(fields),
	}, nil
}

func DecodeRequest(f Frame) (Request, error) {
	switch f.Header.MessageType {
	case MsgPatch, MsgNavigate, MsgRedirect:
	default:
		return Request{}, fmt.Errorf("%w: %d", ErrUnknownMessageType, f.Header.MessageType)
	}

	fields, err := DecodeFields(f.Payload)
	if err != nil {
		return Request{}, err
	}
	if err := ValidateFields(f.Header.MessageType, fields); err != nil {
		return Request{}, err
	}

	r := Request{Kind: f.Header.MessageType}
	sid, _ := GetField(fields, FieldSessionID)
	if r.SessionID, err = sid.String(); err != nil {
		return Request{}, err
	}
	target, _ := GetField(fields, FieldTarget)
	if r.Target, err = target.String(); err != nil {
		return Request{}, err
	}
	switch r.Kind {
	case MsgPatch, MsgNavigate:
		replace, _ := GetField(fields, FieldReplace)
		if r.Replace, err = replace.Bool(); err != nil {
			return Request{}, err
		}
	case MsgRedirect:
		external, _ := GetField(fields, FieldExternal)
		if r.External, err = external.Bool(); err != nil {
			return Request{}, err
		}
	}

	if err := r.Validate(); err != nil {
		return Request{}, err
	}
	return r, nil
}

func EncodeAck(messageID uint64, a Ack) (Frame, error) {
	if err := a.Validate(); err != nil {
		return Frame{}, err
	}
	fields := []Field{
		NewFieldString(FieldSessionID, a.SessionID),
		NewFieldUint8(FieldStatus, a.Status),
	}
	if a.Status == StatusError {
		fields = append(fields,
			NewFieldUint32(FieldCode, a.Code),
			NewFieldString(FieldMessage, a.Message),
		)
	}
	return Frame{
		Header:  Header{MessageID: messageID, MessageType: MsgAck},
		Payload: EncodeFields(fields),
	}, nil
}

func DecodeAck(f Frame) (Ack, error) {
	if f.Header.MessageType != MsgAck {
		return Ack{}, fmt.Errorf("%w: %d is not an ack", ErrUnknownMessageType, f.Header.MessageType)
	}
	fields, err := DecodeFields(f.Payload)
	if err != nil {
		return Ack{}, err
	}
	if err := ValidateFields(MsgAck, fields); err != nil {
		return Ack{}, err
	}

	var a Ack
	sid, _ := GetField(fields, FieldSessionID)
	if a.SessionID, err = sid.String(); err != nil {
		return Ack{}, err
	}
	status, _ := GetField(fields, FieldStatus)
	if a.Status, err = status.Uint8(); err != nil {
		return Ack{}, err
	}
	if code, ok := GetField(fields, FieldCode); ok {
		if a.Code, err = code.Uint32(); err != nil {
			return Ack{}, err
		}
	}
	if msg, ok := GetField(fields, FieldMessage); ok {
		if a.Message, err = msg.String(); err != nil {
			return Ack{}, err
		}
	}

	if err := a.Validate(); err != nil {
		return Ack{}, err
	}
	return a, nil
}
