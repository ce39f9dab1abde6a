package protocol

import (
	"encoding/binary"
	"fmt"
)

// Field value types.
const (
	TypeUint8  uint8 = 1
	TypeUint16 uint8 = 2
	TypeUint32 uint8 = 3
	TypeUint64 uint8 = 4
	TypeBool   uint8 = 5
	TypeString uint8 = 6
	TypeBytes  uint8 = 7
)

// Field is one TLV entry in a frame payload.
type Field struct {
	ID    uint16
	Type  uint8
	Value []byte
}

func NewFieldUint8(id uint16, v uint8) Field {
	return Field{ID: id, Type: TypeUint8, Value: []byte{v}}
}

func NewFieldUint16(id uint16, v uint16) Field {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, v)
	return Field{ID: id, Type: TypeUint16, Value: buf}
}

func NewFieldUint32(id uint16, v uint32) Field {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return Field{ID: id, Type: TypeUint32, Value: buf}
}

func NewFieldUint64(id uint16, v uint64) Field {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return Field{ID: id, Type: TypeUint64, Value: buf}
}

func NewFieldBool(id uint16, v bool) Field {
	b := byte(0)
	if v {
		b = 1
	}
	return Field{ID: id, Type: TypeBool, Value: []byte{b}}
}

func NewFieldString(id uint16, v string) Field {
	return Field{ID: id, Type: TypeString, Value: []byte(v)}
}

func NewFieldBytes(id uint16, v []byte) Field {
	return Field{ID: id, Type: TypeBytes, Value: v}
}

func (f Field) mustType(expected uint8, size int) error {
	if f.Type != expected {
		return fmt.Errorf("%w: field %d is type %d, want %d", ErrFieldTypeMismatch, f.ID, f.Type, expected)
	}
	if size > 0 && len(f.Value) != size {
		return fmt.Errorf("%w: field %d has %d bytes, want %d", ErrInvalidLength, f.ID, len(f.Value), size)
	}
	return nil
}

func (f Field) Uint8() (uint8, error) {
	if err := f.mustType(TypeUint8, 1); err != nil {
		return 0, err
	}
	return f.Value[0], nil
}

func (f Field) Uint16() (uint16, error) {
	if err := f.mustType(TypeUint16, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(f.Value), nil
}

func (f Field) Uint32() (uint32, error) {
	if err := f.mustType(TypeUint32, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(f.Value), nil
}

func (f Field) Uint64() (uint64, error) {
	if err := f.mustType(TypeUint64, 8); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(f.Value), nil
}

func (f Field) Bool() (bool, error) {
	if err := f.mustType(TypeBool, 1); err != nil {
		return false, err
	}
	return f.Value[0] != 0, nil
}

func (f Field) String() (string, error) {
	if err := f.mustType(TypeString, 0); err != nil {
		return "", err
	}
	return string(f.Value), nil
}

// EncodeFields serializes fields in order: id(2) type(1) len(4) value.
func EncodeFields(fields []Field) []byte {
	size := 0
	for _, f := range fields {
		size += 7 + len(f.Value)
	}
	buf := make([]byte, 0, size)
	for _, f := range fields {
		var hdr [7]byte
		binary.BigEndian.PutUint16(hdr[0:2], f.ID)
		hdr[2] = f.Type
		binary.BigEndian.PutUint32(hdr[3:7], uint32(len(f.Value)))
		buf = append(buf, hdr[:]...)
		buf = append(buf, f.Value...)
	}
	return buf
}

func DecodeFields(b []byte) ([]Field, error) {
	var fields []Field
	for len(b) > 0 {
		if len(b) < 7 {
			return nil, ErrShortFieldHeader
		}
		f := Field{
			ID:   binary.BigEndian.Uint16(b[0:2]),
			Type: b[2],
		}
		vlen := binary.BigEndian.Uint32(b[3:7])
		b = b[7:]
		if uint32(len(b)) < vlen {
			return nil, fmt.Errorf("%w: field %d wants %d bytes, %d remain", ErrShortFieldValue, f.ID, vlen, len(b))
		}
		f.Value = append([]byte(nil), b[:vlen]...)
		b = b[vlen:]
		fields = append(fields, f)
	}
	return fields, nil
}

// GetField returns the first field with the given id.
func GetField(fields []Field, id uint16) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}
