// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts decoded sources between sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling of streaming sources.
//
// Example:
//
//	src = resample.New(src, 48000)
//	n, err := src.ReadSamples(buf)
package resample
