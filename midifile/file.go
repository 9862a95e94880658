package midifile

import (
	"context"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// File is a decoded sequence file. It is not modified after decoding.
type File struct {
	Header Header
	Tracks []*Track
	// Warnings lists the recoverable conditions met while decoding.
	Warnings []Warning
}

// Decode parses a whole file held in data.
func Decode(ctx context.Context, data []byte, opts Options) (*File, error) {
	logger := charmlog.FromContext(ctx)
	r := newReader(data)

	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	logger.Debug("header", "id", string(header.ID[:]), "format", header.Format, "tracks", header.TrackCount, "tpqn", header.TicksPerQuarterNote)

	f := &File{Header: header, Tracks: make([]*Track, 0, header.TrackCount)}
	warn := func(w Warning) {
		logger.Warn(w.Err, "track", w.Track, "offset", w.Offset)
		f.Warnings = append(f.Warnings, w)
	}
	for i := 0; i < int(header.TrackCount); i++ {
		t, err := readTrack(r, i, opts, warn)
		if err != nil {
			return nil, err
		}
		logger.Debug("track", "index", i, "id", string(t.ID[:]), "length", t.Length, "events", len(t.Events))
		f.Tracks = append(f.Tracks, t)
	}
	if r.remaining() > 0 {
		logger.Debug("ignoring data after the last track", "bytes", r.remaining())
	}
	return f, nil
}

func Read(ctx context.Context, rd io.Reader, opts Options) (*File, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return Decode(ctx, data, opts)
}

func ReadFile(ctx context.Context, path string, opts Options) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(ctx, data, opts)
}

// Valid reports whether the header and every track carry standard identifiers.
func (f *File) Valid() bool {
	if !f.Header.Valid() {
		return false
	}
	for _, t := range f.Tracks {
		if !t.Valid() {
			return false
		}
	}
	return true
}

func (f *File) EventCount() (n int) {
	for _, t := range f.Tracks {
		n += len(t.Events)
	}
	return
}
