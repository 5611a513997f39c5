// ABOUTME: Audio decoder package for file playback
// ABOUTME: Provides Decoder interface and implementations for MP3, WAV, Vorbis, FLAC, Opus
// Package decode turns encoded audio files into PCM sources.
//
// Supports: MP3, WAV (PCM 8/16/24/32-bit), Ogg Vorbis, FLAC, Ogg Opus
//
// All decoders implement the Decoder interface and produce an audio.Source
// of interleaved float32 samples in [-1, 1].
//
// Example:
//
//	src, err := decode.Open("track.mp3")
//	n, err := src.ReadSamples(buf)
package decode
