package protocol

import "errors"

// ControlType identifies a heartbeat control message.
type ControlType uint8

const (
	ControlPing ControlType = 0x01
	ControlPong ControlType = 0x02
)

// ErrInvalidControlType is returned when decoding an unknown control type.
var ErrInvalidControlType = errors.New("protocol: invalid control type")

// EncodeControl encodes a ping/pong payload carrying the sender's
// millisecond timestamp.
func EncodeControl(ct ControlType, timestamp uint64) []byte {
	e := NewEncoder()
	e.WriteByte(byte(ct))
	e.WriteUvarint(timestamp)
	return e.Bytes()
}

// DecodeControl decodes a ping/pong payload.
func DecodeControl(data []byte) (ControlType, uint64, error) {
	d := NewDecoder(data)

	t, err := d.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	ct := ControlType(t)
	if ct != ControlPing && ct != ControlPong {
		return 0, 0, ErrInvalidControlType
	}

	ts, err := d.ReadUvarint()
	if err != nil {
		return 0, 0, err
	}
	return ct, ts, nil
}
