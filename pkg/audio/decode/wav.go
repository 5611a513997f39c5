// ABOUTME: WAV audio decoder
// ABOUTME: Decodes RIFF/WAVE PCM audio to float32 samples
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Resonate-Protocol/volumekit/pkg/audio"
)

// ErrNotWAV is returned for input that is not a RIFF/WAVE file
var ErrNotWAV = errors.New("not a valid WAV file")

// WAV decodes uncompressed PCM WAV files
type WAV struct{}

// Decode creates a WAV source. Input that cannot seek is buffered in memory.
func (WAV) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWAV
	}
	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("unsupported wav audio format: %d (PCM only)", dec.WavAudioFormat)
	}

	format := audio.Format{
		Codec:      "wav",
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}

	return &wavSource{
		decoder: dec,
		format:  format,
	}, nil
}

type wavSource struct {
	decoder *wav.Decoder
	format  audio.Format
	buf     *goaudio.IntBuffer
}

func (s *wavSource) Format() audio.Format { return s.format }
func (s *wavSource) Close() error         { return nil }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if s.buf == nil || len(s.buf.Data) < len(dst) {
		s.buf = &goaudio.IntBuffer{
			Data: make([]int, len(dst)),
			Format: &goaudio.Format{
				NumChannels: s.format.Channels,
				SampleRate:  s.format.SampleRate,
			},
			SourceBitDepth: s.format.BitDepth,
		}
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.decoder.PCMBuffer(s.buf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("wav decode error: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i := 0; i < n; i++ {
		dst[i] = wavSample(s.buf.Data[i], s.format.BitDepth)
	}
	return n, nil
}

// wavSample converts a PCM integer; 8-bit WAV is unsigned
func wavSample(v int, bitDepth int) float32 {
	if bitDepth == 8 {
		return audio.SampleFromInt(int32(v-128), 8)
	}
	return audio.SampleFromInt(int32(v), bitDepth)
}
