// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 audio to float32 samples
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/volumekit/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// MP3 decodes MPEG-1/2 Layer III audio
type MP3 struct{}

// Decode creates an MP3 source. go-mp3 always produces 16-bit stereo.
func (MP3) Decode(r io.Reader) (audio.Source, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	return &mp3Source{
		decoder: dec,
		format: audio.Format{
			Codec:      "mp3",
			SampleRate: dec.SampleRate(),
			Channels:   2,
			BitDepth:   16,
		},
	}, nil
}

type mp3Source struct {
	decoder *mp3.Decoder
	format  audio.Format
	buf     []byte
}

func (s *mp3Source) Format() audio.Format { return s.format }
func (s *mp3Source) Close() error         { return nil }

func (s *mp3Source) ReadSamples(dst []float32) (int, error) {
	// 2 bytes per int16 sample
	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := s.decoder.Read(s.buf)
	samples := n / 2
	for i := 0; i < samples; i++ {
		dst[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(s.buf[i*2:])))
	}

	if err != nil && err != io.EOF {
		return samples, fmt.Errorf("mp3 decode error: %w", err)
	}
	if samples == 0 && err == io.EOF {
		return 0, io.EOF
	}
	return samples, nil
}
