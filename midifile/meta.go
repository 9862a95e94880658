package midifile

import (
	"fmt"
	"strings"
)

type MetaType uint8

const (
	MetaSequenceNumber    MetaType = 0x00
	MetaText              MetaType = 0x01
	MetaCopyright         MetaType = 0x02
	MetaSequenceName      MetaType = 0x03
	MetaInstrumentName    MetaType = 0x04
	MetaLyric             MetaType = 0x05
	MetaMarker            MetaType = 0x06
	MetaCuePoint          MetaType = 0x07
	MetaChannelPrefix     MetaType = 0x20
	MetaEndOfTrack        MetaType = 0x2F
	MetaSetTempo          MetaType = 0x51
	MetaSMPTEOffset       MetaType = 0x54
	MetaTimeSignature     MetaType = 0x58
	MetaKeySignature      MetaType = 0x59
	MetaSequencerSpecific MetaType = 0x7F
)

// Tempo returns the microseconds per quarter note of a SetTempo event.
// ok is false for other meta types and for a short or zero payload.
func (e *Meta) Tempo() (usPerQuarter uint32, ok bool) {
	if e.Type != MetaSetTempo || len(e.Data) < 3 {
		return 0, false
	}
	us := uint32(e.Data[0])<<16 | uint32(e.Data[1])<<8 | uint32(e.Data[2])
	return us, us != 0
}

func (e *Meta) IsEndOfTrack() bool { return e.Type == MetaEndOfTrack }

// Text returns the payload of the text-like meta events as a string.
func (e *Meta) Text() string {
	var sb strings.Builder
	for _, b := range e.Data {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

var keySignatures = map[int8]string{
	-7: "Cb", -6: "Gb", -5: "Db", -4: "Ab", -3: "Eb", -2: "Bb", -1: "F",
	0: "C", 1: "G", 2: "D", 3: "A", 4: "E", 5: "B", 6: "F#", 7: "C#",
}

func (e *Meta) String() string {
	d := e.Data
	need := func(n int) bool { return len(d) >= n }
	switch e.Type {
	case MetaSequenceNumber:
		if need(2) {
			return fmt.Sprintf("sequence number %d", uint16(d[0])<<8|uint16(d[1]))
		}
	case MetaText:
		return "text: " + e.Text()
	case MetaCopyright:
		return "copyright: " + e.Text()
	case MetaSequenceName:
		return "sequence name: " + e.Text()
	case MetaInstrumentName:
		return "instrument name: " + e.Text()
	case MetaLyric:
		return "lyric: " + e.Text()
	case MetaMarker:
		return "marker: " + e.Text()
	case MetaCuePoint:
		return "cue: " + e.Text()
	case MetaChannelPrefix:
		if need(1) {
			return fmt.Sprintf("channel prefix %d", d[0])
		}
	case MetaEndOfTrack:
		return "end of track"
	case MetaSetTempo:
		if us, ok := e.Tempo(); ok {
			return fmt.Sprintf("set tempo %dus per quarter note (%d bpm)", us, 60000000/us)
		}
	case MetaSMPTEOffset:
		if need(5) {
			return fmt.Sprintf("SMPTE offset %d:%d:%d.%d/%d", d[0], d[1], d[2], d[3], d[4])
		}
	case MetaTimeSignature:
		if need(4) {
			return fmt.Sprintf("time signature %d/%d, %d clocks per metronome tick, %d 32nd notes per quarter",
				d[0], 1<<d[1], d[2], d[3])
		}
	case MetaKeySignature:
		if need(2) {
			mode := "major"
			if d[1] != 0 {
				mode = "minor"
			}
			return fmt.Sprintf("key signature %s %s", keySignatures[int8(d[0])], mode)
		}
	case MetaSequencerSpecific:
		return fmt.Sprintf("sequencer specific, %d bytes", len(d))
	}
	return fmt.Sprintf("meta 0x%02X, %d bytes", uint8(e.Type), len(d))
}
