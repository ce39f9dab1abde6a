package protocol

import "errors"

var (
	ErrInvalidMagic       = errors.New("protocol: invalid magic")
	ErrUnsupportedVersion = errors.New("protocol: unsupported version")
	ErrInvalidHeaderLen   = errors.New("protocol: invalid header length")
	ErrShortHeader        = errors.New("protocol: short fixed header")
	ErrPayloadTooLarge    = errors.New("protocol: payload too large")
	ErrShortFieldHeader   = errors.New("protocol: short field header")
	ErrShortFieldValue    = errors.New("protocol: short field value")
	ErrFieldTypeMismatch  = errors.New("protocol: field type mismatch")
	ErrInvalidLength      = errors.New("protocol: invalid length")
	ErrUnknownMessageType = errors.New("protocol: unknown message type")
	ErrInvalidRequest     = errors.New("protocol: invalid navigation request")
	ErrInvalidAck         = errors.New("protocol: invalid ack")
)
