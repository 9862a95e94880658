package midifile

import "fmt"

type Format uint16

const (
	SingleMultiChannelTrack    Format = 0
	MultipleSimultaneousTracks Format = 1
	MultipleSequentialTracks   Format = 2
)

func (f Format) String() string {
	switch f {
	case SingleMultiChannelTrack:
		return "SingleMultiChannelTrack"
	case MultipleSimultaneousTracks:
		return "MultipleSimultaneousTracks"
	case MultipleSequentialTracks:
		return "MultipleSequentialTracks"
	}
	return fmt.Sprintf("Format(%d)", uint16(f))
}

const (
	HeaderID     = "MThd"
	TrackID      = "MTrk"
	headerFields = 6
)

type Header struct {
	ID     [4]byte
	Length uint32
	Format Format
	// TrackCount is the number of track chunks that follow the header.
	TrackCount          uint16
	TicksPerQuarterNote uint16
}

// Valid reports whether the identifier and declared length are the ones of
// a standard header chunk. The parser does not enforce it.
func (h Header) Valid() bool {
	return string(h.ID[:]) == HeaderID && h.Length >= headerFields
}

// IsSMPTE reports whether the division field uses SMPTE frames rather than
// ticks per quarter note.
func (h Header) IsSMPTE() bool {
	return h.TicksPerQuarterNote&0x8000 != 0
}

func readHeader(r *reader) (Header, error) {
	var h Header
	fail := func(err error) (Header, error) {
		return Header{}, &ParseError{Track: -1, Offset: r.pos, Err: fmt.Errorf("%w: %w", ErrMalformedHeader, err)}
	}

	id, err := r.take(4)
	if err != nil {
		return fail(err)
	}
	copy(h.ID[:], id)
	if h.Length, err = r.u32(); err != nil {
		return fail(err)
	}
	format, err := r.u16()
	if err != nil {
		return fail(err)
	}
	h.Format = Format(format)
	if h.TrackCount, err = r.u16(); err != nil {
		return fail(err)
	}
	if h.TicksPerQuarterNote, err = r.u16(); err != nil {
		return fail(err)
	}
	if extra := int64(h.Length) - headerFields; extra > 0 {
		if int64(r.remaining()) < extra {
			return fail(ErrUnexpectedEnd)
		}
		r.pos += int(extra)
	}
	return h, nil
}
