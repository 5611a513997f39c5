// ABOUTME: Audio type definitions
// ABOUTME: Defines formats, decoded sources, and sample conversions
package audio

// Format describes a decoded audio stream
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// Source is a stream of decoded PCM audio
type Source interface {
	// Format of the decoded stream
	Format() Format

	// ReadSamples fills dst with interleaved float32 samples in [-1, 1].
	// Returns the number of values written (not frames). The stream is
	// finished when n == 0 and err == io.EOF.
	ReadSamples(dst []float32) (n int, err error)

	// Close releases decoder resources
	Close() error
}

// SampleFromInt16 converts an int16 sample to float32 in [-1, 1)
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768.0
}

// SampleToInt16 converts a float32 sample to int16, clamping out-of-range input
func SampleToInt16(sample float32) int16 {
	s := Clamp(sample) * 32767.0
	return int16(s)
}

// SampleFromInt converts a signed integer sample of the given bit depth to float32
func SampleFromInt(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	scale := float64(int64(1) << (bitDepth - 1))
	return Clamp(float32(float64(sample) / scale))
}

// Clamp limits a sample to [-1, 1]
func Clamp(sample float32) float32 {
	if sample > 1 {
		return 1
	}
	if sample < -1 {
		return -1
	}
	return sample
}

// ApplyGain scales samples in place with clipping protection
func ApplyGain(samples []float32, gain float64) {
	if gain == 1 {
		return
	}
	for i, s := range samples {
		samples[i] = Clamp(float32(float64(s) * gain))
	}
}
