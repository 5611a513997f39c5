// ABOUTME: Tests for audio types
// ABOUTME: Tests sample conversion and gain functions
package audio

import "testing"

func TestSampleFromInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected float32
	}{
		{"zero", 0, 0},
		{"half", 16384, 0.5},
		{"negative half", -16384, -0.5},
		{"min", -32768, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFromInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestSampleToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected int16
	}{
		{"zero", 0, 0},
		{"full scale", 1, 32767},
		{"negative full scale", -1, -32767},
		{"clipped high", 1.5, 32767},
		{"clipped low", -2, -32767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleToInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestSampleFromInt(t *testing.T) {
	tests := []struct {
		name     string
		input    int32
		bitDepth int
		expected float32
	}{
		{"16-bit half", 16384, 16, 0.5},
		{"24-bit half", 4194304, 24, 0.5},
		{"24-bit min", -8388608, 24, -1},
		{"8-bit quarter", 32, 8, 0.25},
		{"invalid depth", 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFromInt(tt.input, tt.bitDepth)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestApplyGain(t *testing.T) {
	samples := []float32{0.5, -0.5, 0.8, -0.8}

	ApplyGain(samples, 0.5)

	expected := []float32{0.25, -0.25, 0.4, -0.4}
	for i := range expected {
		if samples[i] != expected[i] {
			t.Errorf("sample %d: expected %v, got %v", i, expected[i], samples[i])
		}
	}
}

func TestApplyGainClips(t *testing.T) {
	samples := []float32{0.8, -0.8}

	ApplyGain(samples, 2)

	if samples[0] != 1 || samples[1] != -1 {
		t.Errorf("expected clipping to [-1, 1], got %v", samples)
	}
}

func TestApplyGainZero(t *testing.T) {
	samples := []float32{0.3, -0.7}

	ApplyGain(samples, 0)

	for i, s := range samples {
		if s != 0 {
			t.Errorf("sample %d: expected silence, got %v", i, s)
		}
	}
}
