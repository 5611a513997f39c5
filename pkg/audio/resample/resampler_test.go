// ABOUTME: Tests for the streaming resampler
// ABOUTME: Verifies passthrough, output length, and interpolation
package resample

import (
	"io"
	"math"
	"testing"

	"github.com/Resonate-Protocol/volumekit/pkg/audio"
)

// sliceSource serves samples from memory in small chunks
type sliceSource struct {
	format  audio.Format
	samples []float32
	chunk   int
}

func (s *sliceSource) Format() audio.Format { return s.format }
func (s *sliceSource) Close() error         { return nil }

func (s *sliceSource) ReadSamples(dst []float32) (int, error) {
	if len(s.samples) == 0 {
		return 0, io.EOF
	}
	n := len(dst)
	if s.chunk > 0 && n > s.chunk {
		n = s.chunk
	}
	n = copy(dst[:n], s.samples)
	s.samples = s.samples[n:]
	return n, nil
}

func readAll(t *testing.T, src audio.Source) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, 256)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
	}
}

func TestNewPassthrough(t *testing.T) {
	src := &sliceSource{format: audio.Format{SampleRate: 48000, Channels: 2}}

	if got := New(src, 48000); got != audio.Source(src) {
		t.Error("expected matching rates to return the source unchanged")
	}
}

func TestUpsampleLength(t *testing.T) {
	frames := 1000
	samples := make([]float32, frames*2)
	src := &sliceSource{
		format:  audio.Format{SampleRate: 24000, Channels: 2},
		samples: samples,
		chunk:   70,
	}

	r := New(src, 48000)
	if r.Format().SampleRate != 48000 {
		t.Errorf("expected output rate 48000, got %d", r.Format().SampleRate)
	}

	out := readAll(t, r)
	outFrames := len(out) / 2

	// Last input frame has no successor to interpolate against
	expected := (frames - 1) * 2
	if math.Abs(float64(outFrames-expected)) > 2 {
		t.Errorf("expected about %d frames, got %d", expected, outFrames)
	}
}

func TestInterpolatesRamp(t *testing.T) {
	samples := make([]float32, 100)
	for i := range samples {
		samples[i] = float32(i) / 100
	}
	src := &sliceSource{
		format:  audio.Format{SampleRate: 10000, Channels: 1},
		samples: samples,
		chunk:   7,
	}

	out := readAll(t, New(src, 20000))

	for i := 1; i < len(out); i++ {
		step := out[i] - out[i-1]
		if math.Abs(float64(step)-0.005) > 1e-5 {
			t.Fatalf("sample %d: expected step 0.005, got %v", i, step)
		}
	}
}

func TestDownsampleConstant(t *testing.T) {
	samples := make([]float32, 4410*2)
	for i := range samples {
		samples[i] = 0.25
	}
	src := &sliceSource{
		format:  audio.Format{SampleRate: 44100, Channels: 2},
		samples: samples,
	}

	out := readAll(t, New(src, 22050))
	if len(out) == 0 {
		t.Fatal("expected output samples")
	}
	for i, s := range out {
		if math.Abs(float64(s)-0.25) > 1e-6 {
			t.Fatalf("sample %d: expected 0.25, got %v", i, s)
		}
	}
}
