package midifile

import "fmt"

type Kind uint8

const (
	KindKeyRelease Kind = iota + 1
	KindKeyPress
	KindKeyPressure
	KindControllerChange
	KindProgramChange
	KindChannelPressure
	KindPitchBend
	KindMeta
	KindSystemExclusive
)

var kindNames = map[Kind]string{
	KindKeyRelease:       "KeyRelease",
	KindKeyPress:         "KeyPress",
	KindKeyPressure:      "KeyPressure",
	KindControllerChange: "ControllerChange",
	KindProgramChange:    "ProgramChange",
	KindChannelPressure:  "ChannelPressure",
	KindPitchBend:        "PitchBend",
	KindMeta:             "Meta",
	KindSystemExclusive:  "SystemExclusive",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Event is one decoded track event. The set of implementations is closed:
// KeyRelease, KeyPress, KeyPressure, ControllerChange, ProgramChange,
// ChannelPressure, PitchBend, Meta and SystemExclusive, all used as pointers.
type Event interface {
	// DeltaTicks is the number of ticks since the previous event of the same track.
	DeltaTicks() uint32
	Kind() Kind
	String() string
	event()
}

type KeyRelease struct {
	Delta    uint32
	Channel  uint8
	Key      uint8
	Velocity uint8
}

type KeyPress struct {
	Delta    uint32
	Channel  uint8
	Key      uint8
	Velocity uint8
}

type KeyPressure struct {
	Delta    uint32
	Channel  uint8
	Key      uint8
	Pressure uint8
}

type ControllerChange struct {
	Delta      uint32
	Channel    uint8
	Controller uint8
	Value      uint8
}

type ProgramChange struct {
	Delta   uint32
	Channel uint8
	Program uint8
}

type ChannelPressure struct {
	Delta    uint32
	Channel  uint8
	Pressure uint8
}

// PitchBend keeps the two raw 7-bit data bytes, least significant first.
type PitchBend struct {
	Delta   uint32
	Channel uint8
	LSB     uint8
	MSB     uint8
}

// Value is the signed bend amount, -8192..8191, 0 being centered.
func (e *PitchBend) Value() int16 {
	return int16(uint16(e.MSB&0x7F)<<7|uint16(e.LSB&0x7F)) - 8192
}

type Meta struct {
	Delta uint32
	Type  MetaType
	Data  []byte
}

// SystemExclusive payloads are kept opaque.
type SystemExclusive struct {
	Delta  uint32
	Status byte
	Data   []byte
}

func (e *KeyRelease) DeltaTicks() uint32       { return e.Delta }
func (e *KeyPress) DeltaTicks() uint32         { return e.Delta }
func (e *KeyPressure) DeltaTicks() uint32      { return e.Delta }
func (e *ControllerChange) DeltaTicks() uint32 { return e.Delta }
func (e *ProgramChange) DeltaTicks() uint32    { return e.Delta }
func (e *ChannelPressure) DeltaTicks() uint32  { return e.Delta }
func (e *PitchBend) DeltaTicks() uint32        { return e.Delta }
func (e *Meta) DeltaTicks() uint32             { return e.Delta }
func (e *SystemExclusive) DeltaTicks() uint32  { return e.Delta }

func (*KeyRelease) Kind() Kind       { return KindKeyRelease }
func (*KeyPress) Kind() Kind         { return KindKeyPress }
func (*KeyPressure) Kind() Kind      { return KindKeyPressure }
func (*ControllerChange) Kind() Kind { return KindControllerChange }
func (*ProgramChange) Kind() Kind    { return KindProgramChange }
func (*ChannelPressure) Kind() Kind  { return KindChannelPressure }
func (*PitchBend) Kind() Kind        { return KindPitchBend }
func (*Meta) Kind() Kind             { return KindMeta }
func (*SystemExclusive) Kind() Kind  { return KindSystemExclusive }

func (*KeyRelease) event()       {}
func (*KeyPress) event()         {}
func (*KeyPressure) event()      {}
func (*ControllerChange) event() {}
func (*ProgramChange) event()    {}
func (*ChannelPressure) event()  {}
func (*PitchBend) event()        {}
func (*Meta) event()             {}
func (*SystemExclusive) event()  {}

func noteLabel(key uint8) string {
	if name := NoteName(key); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", key)
}

func (e *KeyRelease) String() string {
	return fmt.Sprintf("key release %s velocity=%d channel=%d", noteLabel(e.Key), e.Velocity, e.Channel)
}

func (e *KeyPress) String() string {
	return fmt.Sprintf("key press %s velocity=%d channel=%d", noteLabel(e.Key), e.Velocity, e.Channel)
}

func (e *KeyPressure) String() string {
	return fmt.Sprintf("key pressure %s pressure=%d channel=%d", noteLabel(e.Key), e.Pressure, e.Channel)
}

func (e *ControllerChange) String() string {
	return fmt.Sprintf("controller change %d value=%d channel=%d", e.Controller, e.Value, e.Channel)
}

func (e *ProgramChange) String() string {
	return fmt.Sprintf("program change %d channel=%d", e.Program, e.Channel)
}

func (e *ChannelPressure) String() string {
	return fmt.Sprintf("channel pressure %d channel=%d", e.Pressure, e.Channel)
}

func (e *PitchBend) String() string {
	return fmt.Sprintf("pitch bend %d channel=%d", e.Value(), e.Channel)
}

func (e *SystemExclusive) String() string {
	return fmt.Sprintf("sysex 0x%02X, %d bytes", e.Status, len(e.Data))
}

// decodeEvent parses the payload following status. PitchBend is read from
// 0xE0 and ChannelPressure from 0xD0.
func decodeEvent(r *reader, delta uint32, status byte) (Event, error) {
	switch status {
	case 0xFF:
		typ, err := r.next()
		if err != nil {
			return nil, err
		}
		data, err := readPayload(r)
		if err != nil {
			return nil, err
		}
		return &Meta{Delta: delta, Type: MetaType(typ), Data: data}, nil
	case 0xF0, 0xF7:
		data, err := readPayload(r)
		if err != nil {
			return nil, err
		}
		return &SystemExclusive{Delta: delta, Status: status, Data: data}, nil
	}

	ch := status & 0x0F
	switch status & 0xF0 {
	case 0x80:
		b, err := r.take(2)
		if err != nil {
			return nil, err
		}
		return &KeyRelease{Delta: delta, Channel: ch, Key: b[0], Velocity: b[1]}, nil
	case 0x90:
		b, err := r.take(2)
		if err != nil {
			return nil, err
		}
		return &KeyPress{Delta: delta, Channel: ch, Key: b[0], Velocity: b[1]}, nil
	case 0xA0:
		b, err := r.take(2)
		if err != nil {
			return nil, err
		}
		return &KeyPressure{Delta: delta, Channel: ch, Key: b[0], Pressure: b[1]}, nil
	case 0xB0:
		b, err := r.take(2)
		if err != nil {
			return nil, err
		}
		return &ControllerChange{Delta: delta, Channel: ch, Controller: b[0], Value: b[1]}, nil
	case 0xC0:
		b, err := r.next()
		if err != nil {
			return nil, err
		}
		return &ProgramChange{Delta: delta, Channel: ch, Program: b}, nil
	case 0xD0:
		b, err := r.next()
		if err != nil {
			return nil, err
		}
		return &ChannelPressure{Delta: delta, Channel: ch, Pressure: b}, nil
	case 0xE0:
		b, err := r.take(2)
		if err != nil {
			return nil, err
		}
		return &PitchBend{Delta: delta, Channel: ch, LSB: b[0], MSB: b[1]}, nil
	}
	return nil, &UnsupportedEventError{Status: status}
}

func readPayload(r *reader) ([]byte, error) {
	n, err := r.varInt()
	if err != nil {
		return nil, err
	}
	if int64(n) > int64(r.remaining()) {
		return nil, ErrUnexpectedEnd
	}
	return r.take(int(n))
}

// isChannelStatus reports whether status may be reused by running status.
func isChannelStatus(status byte) bool {
	return status >= 0x80 && status < 0xF0
}
