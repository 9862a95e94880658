package midifile

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func chunk(id string, body []byte) []byte {
	n := len(body)
	b := append([]byte(id), byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	return append(b, body...)
}

func header(format Format, tracks, tpqn uint16) []byte {
	return chunk(HeaderID, []byte{
		byte(format >> 8), byte(format),
		byte(tracks >> 8), byte(tracks),
		byte(tpqn >> 8), byte(tpqn),
	})
}

func file(format Format, tpqn uint16, tracks ...[]byte) []byte {
	b := header(format, uint16(len(tracks)), tpqn)
	for _, tr := range tracks {
		b = append(b, chunk(TrackID, tr)...)
	}
	return b
}

var endOfTrack = []byte{0x00, 0xFF, 0x2F, 0x00}

func join(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func TestDecodeSingleTrack(t *testing.T) {
	data := file(SingleMultiChannelTrack, 480, join(
		[]byte{0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20},
		[]byte{0x83, 0x60, 0x90, 60, 100},
		[]byte{0x83, 0x60, 0x80, 60, 0},
		endOfTrack,
	))
	f, err := Decode(context.Background(), data, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !f.Valid() {
		t.Errorf("file with standard chunk ids reported invalid")
	}
	if f.Header.Format != SingleMultiChannelTrack || f.Header.TrackCount != 1 || f.Header.TicksPerQuarterNote != 480 {
		t.Errorf("header = %+v", f.Header)
	}
	if len(f.Tracks) != 1 || len(f.Tracks[0].Events) != 4 {
		t.Fatalf("decoded %d tracks, %d events", len(f.Tracks), f.EventCount())
	}
	evs := f.Tracks[0].Events

	m, ok := evs[0].(*Meta)
	if !ok {
		t.Fatalf("event 0 is %T, want *Meta", evs[0])
	}
	if us, ok := m.Tempo(); !ok || us != 500000 {
		t.Errorf("tempo = %d, %v; want 500000", us, ok)
	}
	press, ok := evs[1].(*KeyPress)
	if !ok || press.Key != 60 || press.Velocity != 100 || press.Delta != 480 {
		t.Errorf("event 1 = %v", evs[1])
	}
	release, ok := evs[2].(*KeyRelease)
	if !ok || release.Key != 60 || release.Delta != 480 {
		t.Errorf("event 2 = %v", evs[2])
	}
	if m, ok := evs[3].(*Meta); !ok || !m.IsEndOfTrack() {
		t.Errorf("event 3 = %v, want end of track", evs[3])
	}
	if len(f.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", f.Warnings)
	}
}

func TestDecodeAllVariants(t *testing.T) {
	data := file(SingleMultiChannelTrack, 96, join(
		[]byte{0x00, 0x83, 0x40, 0x10},
		[]byte{0x00, 0x94, 0x41, 0x20},
		[]byte{0x00, 0xA5, 0x42, 0x30},
		[]byte{0x00, 0xB6, 0x07, 0x64},
		[]byte{0x00, 0xC7, 0x05},
		[]byte{0x00, 0xD8, 0x33},
		[]byte{0x00, 0xE9, 0x00, 0x40},
		[]byte{0x00, 0xF0, 0x03, 0x7E, 0x7F, 0xF7},
		[]byte{0x00, 0xF7, 0x01, 0xF7},
		[]byte{0x00, 0xFF, 0x03, 0x04, 'l', 'e', 'a', 'd'},
		endOfTrack,
	))
	f, err := Decode(context.Background(), data, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []Event{
		&KeyRelease{Channel: 3, Key: 0x40, Velocity: 0x10},
		&KeyPress{Channel: 4, Key: 0x41, Velocity: 0x20},
		&KeyPressure{Channel: 5, Key: 0x42, Pressure: 0x30},
		&ControllerChange{Channel: 6, Controller: 7, Value: 100},
		&ProgramChange{Channel: 7, Program: 5},
		&ChannelPressure{Channel: 8, Pressure: 0x33},
		&PitchBend{Channel: 9, LSB: 0x00, MSB: 0x40},
		&SystemExclusive{Status: 0xF0, Data: []byte{0x7E, 0x7F, 0xF7}},
		&SystemExclusive{Status: 0xF7, Data: []byte{0xF7}},
		&Meta{Type: MetaSequenceName, Data: []byte("lead")},
		&Meta{Type: MetaEndOfTrack, Data: []byte{}},
	}
	got := f.Tracks[0].Events
	if len(got) != len(want) {
		t.Fatalf("decoded %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Kind() != want[i].Kind() || got[i].String() != want[i].String() {
			t.Errorf("event %d = %s %q, want %s %q", i, got[i].Kind(), got[i], want[i].Kind(), want[i])
		}
	}
	if pb := got[6].(*PitchBend); pb.Value() != 0 {
		t.Errorf("centered pitch bend value = %d", pb.Value())
	}
	if m := got[9].(*Meta); m.Text() != "lead" {
		t.Errorf("sequence name = %q", m.Text())
	}
}

func TestRunningStatus(t *testing.T) {
	data := file(SingleMultiChannelTrack, 96, join(
		[]byte{0x00, 0x91, 60, 100},
		[]byte{0x10, 64, 90},
		[]byte{0x10, 60, 0},
		[]byte{0x00, 0xFF, 0x01, 0x00},
		endOfTrack,
	))
	f, err := Decode(context.Background(), data, Options{})
	if err != nil {
		t.Fatal(err)
	}
	evs := f.Tracks[0].Events
	if len(evs) != 5 {
		t.Fatalf("decoded %d events, want 5", len(evs))
	}
	for i, key := range []uint8{60, 64, 60} {
		p, ok := evs[i].(*KeyPress)
		if !ok || p.Key != key || p.Channel != 1 {
			t.Errorf("event %d = %v, want key press %d on channel 1", i, evs[i], key)
		}
	}

	// a meta event cancels running status
	data = file(SingleMultiChannelTrack, 96, join(
		[]byte{0x00, 0x91, 60, 100},
		[]byte{0x00, 0xFF, 0x01, 0x00},
		[]byte{0x10, 60, 0},
	))
	_, err = Decode(context.Background(), data, Options{})
	var unsupported *UnsupportedEventError
	if !errors.As(err, &unsupported) || unsupported.Status != 60 {
		t.Errorf("err = %v, want unsupported status 0x3C", err)
	}
}

func TestTrackCursorEndsAtChunkBoundary(t *testing.T) {
	body := join(
		[]byte{0x00, 0xC0, 0x05},
		[]byte{0x81, 0x00, 0xB0, 0x40, 0x7F},
		[]byte{0x00, 0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08},
		endOfTrack,
	)
	prefix := []byte{0xDE, 0xAD}
	data := join(prefix, chunk(TrackID, body), chunk(TrackID, endOfTrack))
	r := newReader(data)
	r.pos = len(prefix)

	tr, err := readTrack(r, 0, Options{}, func(w Warning) { t.Errorf("warning %v", w) })
	if err != nil {
		t.Fatal(err)
	}
	if want := len(prefix) + 8 + len(body); r.pos != want || tr.End() != want {
		t.Errorf("cursor = %d, End() = %d; want %d", r.pos, tr.End(), want)
	}
	if len(tr.Events) != 4 {
		t.Errorf("decoded %d events, want 4", len(tr.Events))
	}
}

func TestTruncatedTrack(t *testing.T) {
	// the key press lacks its velocity byte inside the chunk even though
	// the next chunk provides more bytes
	data := file(MultipleSimultaneousTracks, 96,
		join([]byte{0x00, 0xC0, 0x01}, []byte{0x00, 0x90, 60}),
		endOfTrack,
	)
	_, err := Decode(context.Background(), data, Options{})
	if !errors.Is(err, ErrTruncatedTrack) {
		t.Fatalf("err = %v, want ErrTruncatedTrack", err)
	}
	if !errors.Is(err, ErrUnexpectedEnd) {
		t.Errorf("err = %v does not wrap ErrUnexpectedEnd", err)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %T, want *ParseError", err)
	}
	if want := 14 + 8 + 3; perr.Track != 0 || perr.Offset != want {
		t.Errorf("error located at track %d offset %d, want track 0 offset %d", perr.Track, perr.Offset, want)
	}
}

func TestTruncatedPayload(t *testing.T) {
	data := file(SingleMultiChannelTrack, 96, []byte{0x00, 0xFF, 0x01, 0x05, 'a', 'b'})
	if _, err := Decode(context.Background(), data, Options{}); !errors.Is(err, ErrTruncatedTrack) {
		t.Errorf("err = %v, want ErrTruncatedTrack", err)
	}
}

func TestChunkLongerThanInput(t *testing.T) {
	data := file(SingleMultiChannelTrack, 96, endOfTrack)
	data = data[:len(data)-2]
	_, err := Decode(context.Background(), data, Options{})
	if !errors.Is(err, ErrUnexpectedEnd) {
		t.Fatalf("err = %v, want ErrUnexpectedEnd", err)
	}
	if errors.Is(err, ErrTruncatedTrack) {
		t.Errorf("missing chunk body reported as truncated event")
	}

	data = header(MultipleSimultaneousTracks, 2, 96)
	data = append(data, chunk(TrackID, endOfTrack)...)
	var perr *ParseError
	if _, err := Decode(context.Background(), data, Options{}); !errors.As(err, &perr) || perr.Track != 1 {
		t.Errorf("err = %v, want failure on track 1", err)
	}
}

func TestMalformedHeader(t *testing.T) {
	full := header(SingleMultiChannelTrack, 1, 96)
	for _, n := range []int{0, 3, 7, 9, 11, 13} {
		_, err := Decode(context.Background(), full[:n], Options{})
		if !errors.Is(err, ErrMalformedHeader) || !errors.Is(err, ErrUnexpectedEnd) {
			t.Errorf("header cut at %d: err = %v, want ErrMalformedHeader", n, err)
		}
		var perr *ParseError
		if errors.As(err, &perr) && perr.Track != -1 {
			t.Errorf("header cut at %d: located on track %d", n, perr.Track)
		}
	}
}

func TestHeaderIdentifierIsNotEnforced(t *testing.T) {
	data := file(SingleMultiChannelTrack, 96, endOfTrack)
	copy(data, "RIFF")
	f, err := Decode(context.Background(), data, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if f.Header.Valid() || f.Valid() {
		t.Errorf("header with id %q reported valid", f.Header.ID)
	}
}

func TestHeaderExtraBytesSkipped(t *testing.T) {
	hdr := chunk(HeaderID, []byte{0, 1, 0, 1, 0x01, 0xE0, 0xAA, 0xBB})
	data := append(hdr, chunk(TrackID, endOfTrack)...)
	f, err := Decode(context.Background(), data, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if f.Header.Length != 8 || f.Header.TicksPerQuarterNote != 480 || len(f.Tracks) != 1 {
		t.Errorf("header = %+v, %d tracks", f.Header, len(f.Tracks))
	}
	if f.Header.IsSMPTE() {
		t.Errorf("metric division reported as SMPTE")
	}
}

func TestUnsupportedEvent(t *testing.T) {
	data := file(MultipleSimultaneousTracks, 96,
		join([]byte{0x00, 0x90, 60, 100}, []byte{0x00, 0xF1, 0x00}, endOfTrack),
		join([]byte{0x00, 0x90, 62, 100}, endOfTrack),
	)
	_, err := Decode(context.Background(), data, Options{})
	if !errors.Is(err, ErrUnsupportedEvent) {
		t.Fatalf("err = %v, want ErrUnsupportedEvent", err)
	}
	var unsupported *UnsupportedEventError
	if !errors.As(err, &unsupported) || unsupported.Status != 0xF1 {
		t.Errorf("err = %v, want status 0xF1", err)
	}

	f, err := Decode(context.Background(), data, Options{Lenient: true})
	if err != nil {
		t.Fatalf("lenient decode: %v", err)
	}
	if len(f.Tracks) != 2 || len(f.Tracks[0].Events) != 1 || len(f.Tracks[1].Events) != 2 {
		t.Errorf("lenient decode kept %d tracks, %d events", len(f.Tracks), f.EventCount())
	}
	if len(f.Warnings) != 1 || !errors.Is(f.Warnings[0].Err, ErrUnsupportedEvent) || f.Warnings[0].Offset != 14+8+4 {
		t.Errorf("warnings = %v", f.Warnings)
	}
}

func TestTrailingBytesAfterEndOfTrack(t *testing.T) {
	data := file(MultipleSimultaneousTracks, 96,
		join([]byte{0x00, 0x90, 60, 100}, endOfTrack, []byte{0x00, 0x80, 60, 0}),
		join([]byte{0x00, 0x90, 62, 100}, endOfTrack),
	)
	f, err := Decode(context.Background(), data, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Tracks[0].Events) != 2 || len(f.Tracks[1].Events) != 2 {
		t.Errorf("decoded %d and %d events", len(f.Tracks[0].Events), len(f.Tracks[1].Events))
	}
	if len(f.Warnings) != 1 || !errors.Is(f.Warnings[0].Err, ErrTrailingBytes) || f.Warnings[0].Track != 0 {
		t.Errorf("warnings = %v", f.Warnings)
	}
}

func TestDecodeAgreesWithSMFWriter(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTempo(120))
	conductor.Add(0, smf.MetaMeter(3, 4))
	conductor.Close(1920)

	var melody smf.Track
	melody.Add(0, smf.MetaTrackSequenceName("melody"))
	melody.Add(0, midi.ProgramChange(0, 12))
	for i, key := range []uint8{60, 62, 64, 65, 67} {
		melody.Add(uint32(i%2)*120, midi.NoteOn(0, key, 100))
		melody.Add(240, midi.NoteOff(0, key))
	}
	melody.Add(0, midi.Pitchbend(0, 100))
	melody.Add(10, midi.ControlChange(0, 64, 127))
	melody.Close(0)

	var bass smf.Track
	bass.Add(0, midi.NoteOn(1, 36, 90))
	bass.Add(960, midi.NoteOn(1, 43, 90))
	bass.Add(0, midi.NoteOff(1, 36))
	bass.Add(960, midi.NoteOff(1, 43))
	bass.Close(0)

	for _, tr := range []smf.Track{conductor, melody, bass} {
		if err := s.Add(tr); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	f, err := Decode(context.Background(), data, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !f.Valid() || f.Header.TicksPerQuarterNote != 480 || len(f.Tracks) != 3 {
		t.Fatalf("header = %+v, %d tracks", f.Header, len(f.Tracks))
	}
	if len(f.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", f.Warnings)
	}

	ref, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	for i, tr := range ref.Tracks {
		var ch, key, vel uint8
		var refNotes, notes []uint64
		var refTicks, ticks uint64
		for _, ev := range tr {
			refTicks += uint64(ev.Delta)
			if ev.Message.GetNoteOn(&ch, &key, &vel) || ev.Message.GetNoteOff(&ch, &key, &vel) {
				refNotes = append(refNotes, refTicks)
			}
		}
		for _, ev := range f.Tracks[i].Events {
			ticks += uint64(ev.DeltaTicks())
			switch ev.(type) {
			case *KeyPress, *KeyRelease:
				notes = append(notes, ticks)
			}
		}
		if !slices.Equal(notes, refNotes) {
			t.Errorf("track %d: notes at ticks %v, reference reads %v", i, notes, refNotes)
		}
	}

	if us, ok := f.Tracks[0].Events[0].(*Meta).Tempo(); !ok || us != 500000 {
		t.Errorf("conductor tempo = %d", us)
	}
}
