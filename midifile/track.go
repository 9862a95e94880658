package midifile

import (
	"errors"
	"fmt"
)

type Track struct {
	ID     [4]byte
	Length uint32
	// Offset is the position of the chunk identifier in the file.
	Offset int
	Events []Event
}

func (t *Track) Valid() bool {
	return string(t.ID[:]) == TrackID
}

// End is the offset right after the chunk's declared body.
func (t *Track) End() int {
	return t.Offset + 8 + int(t.Length)
}

type Options struct {
	// Lenient skips the rest of a track on an unsupported status byte
	// instead of failing.
	Lenient bool
}

func readTrack(r *reader, index int, opts Options, warn func(Warning)) (*Track, error) {
	t := &Track{Offset: r.pos}
	id, err := r.take(4)
	if err != nil {
		return nil, &ParseError{Track: index, Offset: r.pos, Err: err}
	}
	copy(t.ID[:], id)
	if t.Length, err = r.u32(); err != nil {
		return nil, &ParseError{Track: index, Offset: r.pos, Err: err}
	}
	if int64(r.remaining()) < int64(t.Length) {
		return nil, &ParseError{Track: index, Offset: r.pos, Err: fmt.Errorf("chunk declares %d bytes, %d left: %w", t.Length, r.remaining(), ErrUnexpectedEnd)}
	}

	body := r.sub(int(t.Length))
	r.pos = body.end

	var running byte
	for body.remaining() > 0 {
		start := body.pos
		ev, status, err := readEvent(body, running)
		if err != nil {
			var unsupported *UnsupportedEventError
			switch {
			case errors.As(err, &unsupported) && opts.Lenient:
				warn(Warning{Track: index, Offset: start, Err: err})
				return t, nil
			case errors.Is(err, ErrUnexpectedEnd):
				err = fmt.Errorf("%w: %w", ErrTruncatedTrack, err)
			}
			return nil, &ParseError{Track: index, Offset: start, Err: err}
		}
		t.Events = append(t.Events, ev)

		if isChannelStatus(status) {
			running = status
		} else {
			running = 0
		}
		if m, ok := ev.(*Meta); ok && m.IsEndOfTrack() && body.remaining() > 0 {
			warn(Warning{Track: index, Offset: body.pos, Err: fmt.Errorf("%w: %d bytes", ErrTrailingBytes, body.remaining())})
			break
		}
	}
	return t, nil
}

// readEvent decodes one delta-time and event pair. A data byte in status
// position reuses the running status.
func readEvent(r *reader, running byte) (Event, byte, error) {
	delta, err := r.varInt()
	if err != nil {
		return nil, 0, err
	}
	status, err := r.next()
	if err != nil {
		return nil, 0, err
	}
	if status < 0x80 {
		if running == 0 {
			return nil, 0, &UnsupportedEventError{Status: status}
		}
		r.pos--
		status = running
	}
	ev, err := decodeEvent(r, delta, status)
	return ev, status, err
}
