// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC audio frame by frame to float32 samples
package decode

import (
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/Resonate-Protocol/volumekit/pkg/audio"
)

// FLAC decodes native FLAC streams
type FLAC struct{}

// Decode creates a FLAC source
func (FLAC) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create flac decoder: %w", err)
	}

	return &flacSource{
		stream: stream,
		format: audio.Format{
			Codec:      "flac",
			SampleRate: int(stream.Info.SampleRate),
			Channels:   int(stream.Info.NChannels),
			BitDepth:   int(stream.Info.BitsPerSample),
		},
	}, nil
}

type flacSource struct {
	stream  *flac.Stream
	format  audio.Format
	pending []float32 // decoded samples not yet returned
}

func (s *flacSource) Format() audio.Format { return s.format }

func (s *flacSource) Close() error {
	return s.stream.Close()
}

func (s *flacSource) ReadSamples(dst []float32) (int, error) {
	if len(s.pending) == 0 {
		frame, err := s.stream.ParseNext()
		if err == io.EOF {
			return 0, io.EOF
		}
		if err != nil {
			return 0, fmt.Errorf("flac decode error: %w", err)
		}

		// Interleave subframes
		channels := len(frame.Subframes)
		blockSize := int(frame.BlockSize)
		for i := 0; i < blockSize; i++ {
			for ch := 0; ch < channels; ch++ {
				s.pending = append(s.pending, audio.SampleFromInt(frame.Subframes[ch].Samples[i], s.format.BitDepth))
			}
		}
	}

	n := copy(dst, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}
