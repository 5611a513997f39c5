// ABOUTME: Ogg Vorbis audio decoder
// ABOUTME: Decodes Ogg Vorbis audio to float32 samples
package decode

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/Resonate-Protocol/volumekit/pkg/audio"
)

// Vorbis decodes Ogg Vorbis streams
type Vorbis struct{}

// Decode creates an Ogg Vorbis source
func (Vorbis) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create vorbis decoder: %w", err)
	}

	return &vorbisSource{
		decoder: dec,
		format: audio.Format{
			Codec:      "vorbis",
			SampleRate: dec.SampleRate(),
			Channels:   dec.Channels(),
			BitDepth:   32,
		},
	}, nil
}

type vorbisSource struct {
	decoder *oggvorbis.Reader
	format  audio.Format
}

func (s *vorbisSource) Format() audio.Format { return s.format }
func (s *vorbisSource) Close() error         { return nil }

func (s *vorbisSource) ReadSamples(dst []float32) (int, error) {
	// Keep reads frame-aligned
	n := len(dst) - len(dst)%s.format.Channels
	if n == 0 {
		return 0, nil
	}

	read, err := s.decoder.Read(dst[:n])
	if err != nil && err != io.EOF {
		return read, fmt.Errorf("vorbis decode error: %w", err)
	}
	if read == 0 && err == io.EOF {
		return 0, io.EOF
	}
	return read, nil
}
