package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/liveurl/internal/testutil/testlog"
)

func TestFrameRoundTrip(t *testing.T) {
	testlog.Start(t)
	in := Frame{
		Header:  Header{MessageID: 42, MessageType: MsgPatch},
		Payload: []byte("payload bytes"),
	}

	var buf bytes.Buffer
	if err := WriteFrame(&buf, in, DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	out, err := ReadFrame(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if out.Header.MessageID != 42 || out.Header.MessageType != MsgPatch {
		t.Fatalf("header mismatch: %+v", out.Header)
	}
	if !bytes.Equal(out.Payload, in.Payload) {
		t.Fatalf("payload mismatch: %q", out.Payload)
	}
}

func TestReadFrameRejectsBadMagic(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := WriteFrame(&buf, Frame{Header: Header{MessageType: MsgAck}}, DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	raw := buf.Bytes()
	raw[0] ^= 0xFF

	if _, err := ReadFrame(bytes.NewReader(raw), DefaultLimits()); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestReadFrameRejectsBadVersion(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := WriteFrame(&buf, Frame{Header: Header{MessageType: MsgAck}}, DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	raw := buf.Bytes()
	raw[5] = 99

	if _, err := ReadFrame(bytes.NewReader(raw), DefaultLimits()); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestReadFrameEnforcesPayloadLimit(t *testing.T) {
	testlog.Start(t)
	limits := Limits{MaxPayloadBytes: 8}

	var buf bytes.Buffer
	if err := WriteFrame(&buf, Frame{Payload: make([]byte, 16), Header: Header{MessageType: MsgPatch}}, DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if _, err := ReadFrame(&buf, limits); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}

	if err := WriteFrame(&bytes.Buffer{}, Frame{Payload: make([]byte, 16)}, limits); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("write should enforce the same limit, got %v", err)
	}
}

func TestReadFrameShortHeader(t *testing.T) {
	testlog.Start(t)
	if _, err := ReadFrame(bytes.NewReader([]byte{0x4E, 0x41}), DefaultLimits()); !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestFieldRoundTrip(t *testing.T) {
	testlog.Start(t)
	in := []Field{
		NewFieldString(FieldSessionID, "abc-123"),
		NewFieldBool(FieldReplace, true),
		NewFieldUint8(FieldStatus, StatusError),
		NewFieldUint32(FieldCode, 404),
		NewFieldUint64(9, 1<<40),
		NewFieldBytes(10, []byte{0, 1, 2}),
	}

	out, err := DecodeFields(EncodeFields(in))
	if err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("field count: got %d want %d", len(out), len(in))
	}

	sid, ok := GetField(out, FieldSessionID)
	if !ok {
		t.Fatalf("session id field missing")
	}
	if s, err := sid.String(); err != nil || s != "abc-123" {
		t.Fatalf("session id: %q %v", s, err)
	}
	replace, _ := GetField(out, FieldReplace)
	if v, err := replace.Bool(); err != nil || !v {
		t.Fatalf("replace: %v %v", v, err)
	}
	f, _ := GetField(out, FieldCode)
	if code, err := f.Uint32(); err != nil || code != 404 {
		t.Fatalf("code: %d %v", code, err)
	}
}

func TestFieldTypeMismatch(t *testing.T) {
	testlog.Start(t)
	f := NewFieldString(FieldTarget, "/home?")
	if _, err := f.Bool(); !errors.Is(err, ErrFieldTypeMismatch) {
		t.Fatalf("expected ErrFieldTypeMismatch, got %v", err)
	}
}

func TestDecodeFieldsTruncated(t *testing.T) {
	testlog.Start(t)
	raw := EncodeFields([]Field{NewFieldString(FieldTarget, "/home?")})
	if _, err := DecodeFields(raw[:5]); !errors.Is(err, ErrShortFieldHeader) {
		t.Fatalf("expected ErrShortFieldHeader, got %v", err)
	}
	if _, err := DecodeFields(raw[:len(raw)-2]); !errors.Is(err, ErrShortFieldValue) {
		t.Fatalf("expected ErrShortFieldValue, got %v", err)
	}
}
