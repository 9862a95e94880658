package music

import (
	"errors"
	"fmt"

	"github.com/JeanRibes/buzzer/midifile"
)

var (
	ErrTempoUndefined          = errors.New("tempo undefined before a timed event")
	ErrUnsupportedFormat       = errors.New("format has no shared timeline")
	ErrUnsupportedTimeDivision = errors.New("time division is not ticks per quarter note")
)

// DefaultTempo is the conventional 120 BPM, in microseconds per quarter note.
const DefaultTempo = 500000

// PlayError locates a failure on the Index-th event of Track.
type PlayError struct {
	Track int
	Index int
	Err   error
}

func (e *PlayError) Error() string {
	return fmt.Sprintf("track %d event %d: %v", e.Track, e.Index, e.Err)
}

func (e *PlayError) Unwrap() error { return e.Err }

type PlayOptions struct {
	// DefaultTempo applies until the first SetTempo event, in microseconds
	// per quarter note. Zero leaves the tempo undefined.
	DefaultTempo uint32
}

type tempo struct {
	us    float64
	known bool
}

func (t tempo) bpm() float64 { return 6e7 / t.us }

// Player merges the tracks of a file into a single stream ordered by
// absolute time. The tempo it tracks is shared by all tracks.
type Player struct {
	file  *midifile.File
	tpqn  float64
	clock []float64 // seconds reached by each track
	next  []int     // index of the next event of each track
	tempo tempo
	opts  PlayOptions
}

func NewPlayer(f *midifile.File, opts PlayOptions) (*Player, error) {
	switch f.Header.Format {
	case midifile.SingleMultiChannelTrack, midifile.MultipleSimultaneousTracks:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.Header.Format)
	}
	if f.Header.IsSMPTE() || f.Header.TicksPerQuarterNote == 0 {
		return nil, fmt.Errorf("%w: 0x%04X", ErrUnsupportedTimeDivision, f.Header.TicksPerQuarterNote)
	}
	p := &Player{
		file: f,
		tpqn: float64(f.Header.TicksPerQuarterNote),
		opts: opts,
	}
	p.Reset()
	return p, nil
}

// Reset rewinds the player to the start of the file.
func (p *Player) Reset() {
	p.clock = make([]float64, len(p.file.Tracks))
	p.next = make([]int, len(p.file.Tracks))
	p.tempo = tempo{}
	if p.opts.DefaultTempo != 0 {
		p.tempo = tempo{us: float64(p.opts.DefaultTempo), known: true}
	}
}

// Tempo returns the current tempo in microseconds per quarter note.
func (p *Player) Tempo() (float64, bool) {
	return p.tempo.us, p.tempo.known
}

// seconds converts a tick count at the current tempo. A zero count needs
// no tempo.
func (p *Player) seconds(ticks uint32) (float64, bool) {
	if ticks == 0 {
		return 0, true
	}
	if !p.tempo.known {
		return 0, false
	}
	return 60 * float64(ticks) / (p.tempo.bpm() * p.tpqn), true
}
