package main

import (
	"context"
	"io"
	"math"
	"text/template"

	"github.com/JeanRibes/buzzer/midifile"
	"github.com/JeanRibes/buzzer/music"
	"github.com/JeanRibes/buzzer/shared"
	charmlog "github.com/charmbracelet/log"
)

// the button is wired to ground, the loop waits for a press before playing
var sketch = template.Must(template.New("sketch").Parse(`int button = {{.ButtonPin}};
int buzzer = {{.BuzzerPin}};

void setup()
{
    pinMode(button, INPUT_PULLUP);
    pinMode(buzzer, OUTPUT);
}

void loop()
{
    while(digitalRead(button));
{{- range .Steps}}
{{- if gt .Delay 0}}
    delay({{.Delay}});
{{- end}}
    tone(buzzer, {{.Frequency}}, {{.Duration}});
{{- end}}
    delay({{.TailDelay}});
}
`))

type step struct {
	Delay     int
	Frequency int
	Duration  int
}

type sketchData struct {
	ButtonPin int
	BuzzerPin int
	TailDelay int
	Steps     []step
}

func millis(seconds float64) int {
	return int(math.Round(seconds * 1000))
}

// steps schedules each note of the lane relative to the previous note start.
// Delays are taken between rounded absolute times so they do not drift.
func steps(ctx context.Context, lane music.Lane) []step {
	logger := charmlog.FromContext(ctx)
	res := make([]step, 0, len(lane))
	prev := 0
	for _, note := range lane {
		freq := midifile.NoteFrequency(note.Pitch)
		if freq == 0 {
			logger.Debug("skipping note out of the buzzer range", "pitch", note.Pitch, "at", note.Start)
			continue
		}
		start := millis(note.Start)
		res = append(res, step{
			Delay:     max(0, start-prev),
			Frequency: freq,
			Duration:  millis(note.End) - start,
		})
		prev = max(prev, start)
	}
	return res
}

func renderSketch(ctx context.Context, w io.Writer, lane music.Lane, config shared.Config) error {
	return sketch.Execute(w, sketchData{
		ButtonPin: config.ButtonPin,
		BuzzerPin: config.BuzzerPin,
		TailDelay: config.TailDelayMs,
		Steps:     steps(ctx, lane),
	})
}
