package music

import (
	"context"
	"fmt"

	"github.com/JeanRibes/buzzer/midifile"
	charmlog "github.com/charmbracelet/log"
)

// NoteInterval is one sounding note. End is meaningful once Closed.
type NoteInterval struct {
	Pitch  uint8
	Start  float64
	End    float64
	Closed bool
}

func (n NoteInterval) Duration() float64 {
	if !n.Closed {
		return 0
	}
	return n.End - n.Start
}

// Lane is a monophonic sequence of notes: each note starts no earlier than
// the end of the previous one.
type Lane []NoteInterval

type Lanes []Lane

type LaneOptions struct {
	// ReleaseOnZeroVelocity treats a key press of velocity 0 as a release.
	ReleaseOnZeroVelocity bool
}

// LaneBuilder spreads overlapping notes over as few lanes as the greedy
// first-free-lane rule gives. Lanes are scanned in creation order, which is
// linear in the number of concurrent voices.
type LaneBuilder struct {
	lanes   Lanes
	dropped int
	opts    LaneOptions
	logger  *charmlog.Logger
}

func NewLaneBuilder(ctx context.Context, opts LaneOptions) *LaneBuilder {
	return &LaneBuilder{opts: opts, logger: charmlog.FromContext(ctx)}
}

// StartNote puts the note on the first lane that is silent at the given time,
// or on a new lane.
func (b *LaneBuilder) StartNote(pitch uint8, at float64) {
	note := NoteInterval{Pitch: pitch, Start: at}
	for i, lane := range b.lanes {
		last := lane[len(lane)-1]
		if last.Closed && last.End <= at {
			b.lanes[i] = append(lane, note)
			return
		}
	}
	b.lanes = append(b.lanes, Lane{note})
}

// EndNote closes the first open note of that pitch, channels aside. It
// reports false when no such note is sounding.
func (b *LaneBuilder) EndNote(pitch uint8, at float64) bool {
	for _, lane := range b.lanes {
		last := &lane[len(lane)-1]
		if !last.Closed && last.Pitch == pitch {
			last.End = at
			last.Closed = true
			return true
		}
	}
	b.dropped++
	b.logger.Warn("release without a sounding note", "pitch", pitch, "note", midifile.NoteName(pitch), "at", at)
	return false
}

func (b *LaneBuilder) Add(te TimedEvent) {
	switch ev := te.Event.(type) {
	case *midifile.KeyPress:
		if b.opts.ReleaseOnZeroVelocity && ev.Velocity == 0 {
			b.EndNote(ev.Key, te.Time)
			return
		}
		b.StartNote(ev.Key, te.Time)
	case *midifile.KeyRelease:
		b.EndNote(ev.Key, te.Time)
	case *midifile.KeyPressure, *midifile.ControllerChange, *midifile.ProgramChange,
		*midifile.ChannelPressure, *midifile.PitchBend, *midifile.Meta, *midifile.SystemExclusive:
	}
}

func (b *LaneBuilder) Lanes() Lanes { return b.lanes }

// Dropped counts the releases that matched no sounding note.
func (b *LaneBuilder) Dropped() int { return b.dropped }

// BuildLanes runs a LaneBuilder over a merged stream.
func BuildLanes(ctx context.Context, events []TimedEvent, opts LaneOptions) Lanes {
	b := NewLaneBuilder(ctx, opts)
	for _, te := range events {
		b.Add(te)
	}
	b.logger.Debug("lanes", "count", len(b.lanes), "dropped", b.dropped)
	return b.Lanes()
}

// CloseOpen ends every note still sounding at the given time and returns how
// many were closed.
func (ls Lanes) CloseOpen(at float64) (n int) {
	for _, lane := range ls {
		last := &lane[len(lane)-1]
		if !last.Closed {
			last.End = at
			if at < last.Start {
				last.End = last.Start
			}
			last.Closed = true
			n++
		}
	}
	return n
}

// Check verifies that no two consecutive closed notes of a lane overlap.
func (ls Lanes) Check() error {
	for i, lane := range ls {
		for j := 1; j < len(lane); j++ {
			prev, cur := lane[j-1], lane[j]
			if !prev.Closed || cur.Start < prev.End {
				return fmt.Errorf("lane %d: note %d starts at %g before note %d ends", i, j, cur.Start, j-1)
			}
		}
	}
	return nil
}

func (ls Lanes) NoteCount() (n int) {
	for _, lane := range ls {
		n += len(lane)
	}
	return
}
