package protocol

import "errors"

// EventType identifies a client → server location event.
type EventType uint8

const (
	EventHello    EventType = 0x01 // Initial location on connect
	EventPopState EventType = 0x02 // Back/forward navigation
	EventScroll   EventType = 0x03 // Scroll offset report
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	switch et {
	case EventHello:
		return "Hello"
	case EventPopState:
		return "PopState"
	case EventScroll:
		return "Scroll"
	default:
		return "Unknown"
	}
}

// Event encoding errors.
var ErrInvalidEventType = errors.New("protocol: invalid event type")

// Event is a decoded location event from the client.
//
// Hello and PopState carry the full decomposed location plus the current
// scroll offset; Scroll carries only the offset.
type Event struct {
	Seq      uint64
	Type     EventType
	Path     string
	RawQuery string
	Fragment string
	Scroll   int
}

// EncodeEvent encodes an event payload.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	e.WriteUvarint(ev.Seq)
	e.WriteByte(byte(ev.Type))

	switch ev.Type {
	case EventHello, EventPopState:
		e.WriteString(ev.Path)
		e.WriteString(ev.RawQuery)
		e.WriteString(ev.Fragment)
		e.WriteUvarint(uint64(ev.Scroll))
	case EventScroll:
		e.WriteUvarint(uint64(ev.Scroll))
	}
	return e.Bytes()
}

// DecodeEvent decodes an event payload.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	t, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	ev := &Event{Seq: seq, Type: EventType(t)}
	switch ev.Type {
	case EventHello, EventPopState:
		if ev.Path, err = d.ReadString(); err != nil {
			return nil, err
		}
		if ev.RawQuery, err = d.ReadString(); err != nil {
			return nil, err
		}
		if ev.Fragment, err = d.ReadString(); err != nil {
			return nil, err
		}
		scroll, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		ev.Scroll = int(scroll)
	case EventScroll:
		scroll, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		ev.Scroll = int(scroll)
	default:
		return nil, ErrInvalidEventType
	}
	return ev, nil
}
