package midifile

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedEnd    = errors.New("unexpected end of input")
	ErrUnsupportedEvent = errors.New("unsupported event")
	ErrTruncatedTrack   = errors.New("truncated track")
	ErrMalformedHeader  = errors.New("malformed header")
	// ErrTrailingBytes is only ever reported as a Warning.
	ErrTrailingBytes = errors.New("trailing bytes after end of track")
)

// ParseError locates a decoding failure. Track is -1 for the header chunk.
type ParseError struct {
	Track  int
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Track < 0 {
		return fmt.Sprintf("header at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("track %d at offset %d: %v", e.Track, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type UnsupportedEventError struct {
	Status byte
}

func (e *UnsupportedEventError) Error() string {
	return fmt.Sprintf("unsupported event: status byte 0x%02X", e.Status)
}

func (e *UnsupportedEventError) Is(target error) bool { return target == ErrUnsupportedEvent }

// Warning is a recoverable condition met while decoding.
type Warning struct {
	Track  int
	Offset int
	Err    error
}

func (w Warning) String() string {
	return (&ParseError{Track: w.Track, Offset: w.Offset, Err: w.Err}).Error()
}
