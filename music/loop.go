package music

import (
	"context"

	"github.com/JeanRibes/buzzer/midifile"
	charmlog "github.com/charmbracelet/log"
)

// TimedEvent places an event of the file at an absolute time in seconds.
// Event points into the file and must not be modified.
type TimedEvent struct {
	Time  float64
	Track int
	Event midifile.Event
}

// Next returns the earliest pending event over all tracks, ties going to the
// lowest track index. ok is false once every track is exhausted.
func (p *Player) Next() (ev TimedEvent, ok bool, err error) {
	best, stalled := -1, -1
	var at float64
	for t, tr := range p.file.Tracks {
		if p.next[t] >= len(tr.Events) {
			continue
		}
		d, known := p.seconds(tr.Events[p.next[t]].DeltaTicks())
		if !known {
			// every clock is still at zero, so this event cannot come first
			if stalled < 0 {
				stalled = t
			}
			continue
		}
		if c := p.clock[t] + d; best < 0 || c < at {
			best, at = t, c
		}
	}
	if best < 0 {
		if stalled >= 0 {
			return TimedEvent{}, false, &PlayError{Track: stalled, Index: p.next[stalled], Err: ErrTempoUndefined}
		}
		return TimedEvent{}, false, nil
	}

	e := p.file.Tracks[best].Events[p.next[best]]
	p.clock[best] = at
	p.next[best]++
	if m, isMeta := e.(*midifile.Meta); isMeta {
		if us, isTempo := m.Tempo(); isTempo {
			p.tempo = tempo{us: float64(us), known: true}
		}
	}
	return TimedEvent{Time: at, Track: best, Event: e}, true, nil
}

// Play returns the whole merged stream of f.
func Play(ctx context.Context, f *midifile.File, opts PlayOptions) ([]TimedEvent, error) {
	logger := charmlog.FromContext(ctx)
	p, err := NewPlayer(f, opts)
	if err != nil {
		return nil, err
	}
	events := make([]TimedEvent, 0, f.EventCount())
	for {
		ev, ok, err := p.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if m, isMeta := ev.Event.(*midifile.Meta); isMeta {
			if us, isTempo := m.Tempo(); isTempo {
				logger.Debug("tempo", "us", us, "bpm", 6e7/float64(us), "at", ev.Time, "track", ev.Track)
			}
		}
		events = append(events, ev)
	}
	if len(events) > 0 {
		logger.Debug("merged", "events", len(events), "duration", events[len(events)-1].Time)
	}
	return events, nil
}

// Duration is the time of the last event of a merged stream.
func Duration(events []TimedEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	return events[len(events)-1].Time
}
