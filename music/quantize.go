package music

import (
	"bytes"

	"gitlab.com/gomidi/quantizer/lib/quantizer"
)

// Quantize snaps the note timing of an encoded file to the beat grid and
// returns the re-encoded file.
func Quantize(data []byte) ([]byte, error) {
	in := bytes.NewBuffer(data)
	var out bytes.Buffer
	if err := quantizer.Quantize(in, &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
