// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Source, and float32 sample conversions
// Package audio provides the PCM types shared by decoders and playback backends.
//
// Decoded audio is carried as interleaved float32 samples in [-1, 1]:
//   - Format: codec, sample rate, channel count, and source bit depth
//   - Source: a pull-based stream of decoded samples
//
// It also provides conversions to and from integer samples and a software
// gain stage with clipping protection.
//
// Example:
//
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//	audio.ApplyGain(buf[:n], 0.5)
package audio
