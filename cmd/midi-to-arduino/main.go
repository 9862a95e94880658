package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/JeanRibes/buzzer/midifile"
	"github.com/JeanRibes/buzzer/music"
	"github.com/JeanRibes/buzzer/shared"
	charmlog "github.com/charmbracelet/log"
)

func main() {
	configFile := flag.String("config", "config.yaml", "config file")
	output := flag.String("output", "", "output directory, one sketch directory per lane is created in it")
	button := flag.Int("button", 0, "start button pin")
	buzzer := flag.Int("buzzer", 0, "buzzer pin")
	tail := flag.Int("tail", 0, "pause after the last note, in milliseconds")
	lenient := flag.Bool("lenient", false, "skip the rest of a track on an unsupported event")
	quantize := flag.Bool("quantize", false, "quantize note timing before converting")
	tempo := flag.Uint("default-tempo", 0, "tempo before the first tempo event, in microseconds per quarter note")
	debug := flag.Bool("debug", false, "debug logs")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] input.mid [output/directory/] [startButtonPin] [buzzerPin]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	config, err := shared.LoadConfig(*configFile)
	if err != nil {
		charmlog.Fatal("loading config", "file", *configFile, "err", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			config.Output = *output
		case "button":
			config.ButtonPin = *button
		case "buzzer":
			config.BuzzerPin = *buzzer
		case "tail":
			config.TailDelayMs = *tail
		case "lenient":
			config.Lenient = *lenient
		case "quantize":
			config.Quantize = *quantize
		case "default-tempo":
			config.DefaultTempo = uint32(*tempo)
		case "debug":
			if *debug {
				config.LogLevel = "debug"
			}
		}
	})

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}
	if len(args) > 1 {
		config.Output = args[1]
	}
	for i, pin := range []*int{&config.ButtonPin, &config.BuzzerPin} {
		if len(args) > i+2 {
			n, err := strconv.Atoi(args[i+2])
			if err != nil {
				charmlog.Fatal("invalid pin", "value", args[i+2])
			}
			*pin = n
		}
	}

	logger := shared.NewLogger("midi-to-arduino", config.LogLevel)
	ctx := shared.WithLogger(context.Background(), logger)
	n, err := convert(ctx, args[0], config)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Info("done", "sketches", n, "output", config.Output)
}

// convert writes one sketch per lane of the input file and returns how many
// were written.
func convert(ctx context.Context, input string, config shared.Config) (int, error) {
	logger := charmlog.FromContext(ctx)
	data, err := os.ReadFile(input)
	if err != nil {
		return 0, err
	}
	if config.Quantize {
		if data, err = music.Quantize(data); err != nil {
			return 0, fmt.Errorf("quantize: %w", err)
		}
	}

	f, err := midifile.Decode(ctx, data, midifile.Options{Lenient: config.Lenient})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", input, err)
	}
	if !f.Valid() {
		return 0, fmt.Errorf("%s: not a standard MIDI file (header %q)", input, f.Header.ID[:])
	}

	events, err := music.Play(ctx, f, music.PlayOptions{DefaultTempo: config.DefaultTempo})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", input, err)
	}
	lanes := music.BuildLanes(ctx, events, music.LaneOptions{ReleaseOnZeroVelocity: config.ReleaseOnZeroVelocity})
	if n := lanes.CloseOpen(music.Duration(events)); n > 0 {
		logger.Warn("notes never released, closed at the end", "count", n)
	}
	if err := lanes.Check(); err != nil {
		return 0, err
	}

	for i, lane := range lanes {
		// the Arduino IDE wants a sketch in a directory of the same name
		name := strconv.Itoa(i)
		dir := filepath.Join(config.Output, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return i, err
		}
		path := filepath.Join(dir, name+".ino")
		out, err := os.Create(path)
		if err != nil {
			return i, err
		}
		err = renderSketch(ctx, out, lane, config)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return i, fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("sketch", "path", path, "notes", len(lane))
	}
	return len(lanes), nil
}
