package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/JeanRibes/buzzer/midifile"
	"github.com/JeanRibes/buzzer/music"
	"github.com/JeanRibes/buzzer/shared"
	charmlog "github.com/charmbracelet/log"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func main() {
	lenient := flag.Bool("lenient", false, "skip the rest of a track on an unsupported event")
	timeline := flag.Bool("timeline", false, "print the merged timeline")
	lanes := flag.Bool("lanes", false, "print the monophonic lanes")
	debug := flag.Bool("debug", false, "debug logs")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] input.mid\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := "info"
	if *debug {
		level = "debug"
	}
	logger := shared.NewLogger("dump", level)
	ctx := shared.WithLogger(context.Background(), logger)

	f, err := midifile.ReadFile(ctx, flag.Arg(0), midifile.Options{Lenient: *lenient})
	if err != nil {
		logger.Fatal(err)
	}
	dumpFile(logger, f)

	if !*timeline && !*lanes {
		return
	}
	events, err := music.Play(ctx, f, music.PlayOptions{})
	if err != nil {
		logger.Fatal(err)
	}
	if *timeline {
		for _, ev := range events {
			logger.Info(ev.Event, "time", fmt.Sprintf("%.3f", ev.Time), "track", ev.Track)
		}
	}
	if *lanes {
		for i, lane := range music.BuildLanes(ctx, events, music.LaneOptions{ReleaseOnZeroVelocity: true}) {
			logger.Info("lane", "index", i, "notes", len(lane))
			for _, n := range lane {
				logger.Info("  note", "key", midifile.NoteName(n.Pitch), "hz", midifile.NoteFrequency(n.Pitch), "start", n.Start, "end", n.End, "closed", n.Closed)
			}
		}
	}
}

func dumpFile(logger *charmlog.Logger, f *midifile.File) {
	h := f.Header
	logger.Info("header", "id", string(h.ID[:]), "length", h.Length, "format", h.Format, "tracks", h.TrackCount, "division", h.TicksPerQuarterNote)
	if h.IsSMPTE() {
		logger.Warn("SMPTE time division, durations are not meaningful")
	}
	ticks := smf.MetricTicks(h.TicksPerQuarterNote)

	for i, t := range f.Tracks {
		logger.Info("track", "index", i, "id", string(t.ID[:]), "length", t.Length, "events", len(t.Events))
		bpm := 120.0
		var abs uint64
		for _, ev := range t.Events {
			abs += uint64(ev.DeltaTicks())
			kv := []interface{}{"delta", ev.DeltaTicks(), "tick", abs}
			if !h.IsSMPTE() && h.TicksPerQuarterNote > 0 {
				kv = append(kv, "after", ticks.Duration(bpm, ev.DeltaTicks()))
			}
			switch e := ev.(type) {
			case *midifile.KeyPress:
				kv = append(kv, "note", midi.Note(e.Key))
			case *midifile.KeyRelease:
				kv = append(kv, "note", midi.Note(e.Key))
			case *midifile.Meta:
				if us, ok := e.Tempo(); ok {
					bpm = 6e7 / float64(us)
				}
			}
			logger.Info("  "+ev.String(), kv...)
		}
	}
	for _, w := range f.Warnings {
		logger.Warn(w.String())
	}
}
