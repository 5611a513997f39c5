// ABOUTME: Ogg Opus audio decoder
// ABOUTME: Decodes Ogg Opus files to float32 samples via libopusfile
package decode

import (
	"fmt"
	"io"

	"gopkg.in/hraban/opus.v2"

	"github.com/Resonate-Protocol/volumekit/pkg/audio"
)

// opusSampleRate is the fixed output rate of libopusfile
const opusSampleRate = 48000

// Opus decodes Ogg Opus files. The stream does not report its channel
// count, so Channels must match the file (default: 2).
type Opus struct {
	Channels int
}

// Decode creates an Ogg Opus source
func (o Opus) Decode(r io.Reader) (audio.Source, error) {
	channels := o.Channels
	if channels == 0 {
		channels = 2
	}
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("unsupported opus channel count: %d", channels)
	}

	stream, err := opus.NewStream(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus stream: %w", err)
	}

	return &opusSource{
		stream: stream,
		format: audio.Format{
			Codec:      "opus",
			SampleRate: opusSampleRate,
			Channels:   channels,
			BitDepth:   16,
		},
	}, nil
}

type opusSource struct {
	stream *opus.Stream
	format audio.Format
	pcm    []int16
}

func (s *opusSource) Format() audio.Format { return s.format }

func (s *opusSource) Close() error {
	return s.stream.Close()
}

func (s *opusSource) ReadSamples(dst []float32) (int, error) {
	if cap(s.pcm) < len(dst) {
		s.pcm = make([]int16, len(dst))
	}
	s.pcm = s.pcm[:len(dst)-len(dst)%s.format.Channels]
	if len(s.pcm) == 0 {
		return 0, nil
	}

	// Read returns samples per channel
	n, err := s.stream.Read(s.pcm)
	if err == io.EOF {
		return 0, io.EOF
	}
	if err != nil {
		return 0, fmt.Errorf("opus decode error: %w", err)
	}

	samples := n * s.format.Channels
	for i := 0; i < samples; i++ {
		dst[i] = audio.SampleFromInt16(s.pcm[i])
	}
	return samples, nil
}
