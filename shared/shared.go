package shared

import (
	"context"
	"errors"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Output    string `yaml:"output"`
	ButtonPin int    `yaml:"button_pin"`
	BuzzerPin int    `yaml:"buzzer_pin"`
	// TailDelayMs is the pause after the last note, before the sketch loops.
	TailDelayMs int `yaml:"tail_delay_ms"`

	Lenient               bool   `yaml:"lenient"`
	Quantize              bool   `yaml:"quantize"`
	ReleaseOnZeroVelocity bool   `yaml:"release_on_zero_velocity"`
	DefaultTempo          uint32 `yaml:"default_tempo"`

	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Output:                "out",
		ButtonPin:             2,
		BuzzerPin:             3,
		TailDelayMs:           10000,
		ReleaseOnZeroVelocity: true,
		LogLevel:              "info",
	}
}

// LoadConfig reads a YAML config over the defaults. A missing file is not an
// error.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()
	file, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer file.Close()
	return ParseConfig(file)
}

func ParseConfig(r io.Reader) (Config, error) {
	config := DefaultConfig()
	err := yaml.NewDecoder(r).Decode(&config)
	if errors.Is(err, io.EOF) {
		return config, nil
	}
	return config, err
}

func NewLogger(prefix string, level string) *charmlog.Logger {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		lvl = charmlog.InfoLevel
	}
	return charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           lvl,
		ReportCaller:    lvl == charmlog.DebugLevel,
		ReportTimestamp: false,
		Prefix:          prefix,
	})
}

// WithLogger attaches logger to ctx, where the library packages look for it.
func WithLogger(ctx context.Context, logger *charmlog.Logger) context.Context {
	return context.WithValue(ctx, charmlog.ContextKey, logger)
}
