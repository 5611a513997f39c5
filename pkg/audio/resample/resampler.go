// ABOUTME: Streaming linear resampler for decoded sources
// ABOUTME: Converts a Source to the playback sample rate using linear interpolation
package resample

import (
	"io"

	"github.com/Resonate-Protocol/volumekit/pkg/audio"
)

const readChunk = 4096

// Resampler wraps a Source and converts it to outputRate
type Resampler struct {
	src      audio.Source
	format   audio.Format
	channels int
	ratio    float64
	position float64   // fractional frame index into buf
	buf      []float32 // pending input frames, interleaved
	tmp      []float32
	eof      bool
}

// New creates a resampler reading from src. If the rates already match the
// source is passed through unchanged.
func New(src audio.Source, outputRate int) audio.Source {
	in := src.Format()
	if in.SampleRate == outputRate || in.SampleRate <= 0 || outputRate <= 0 {
		return src
	}

	format := in
	format.SampleRate = outputRate

	return &Resampler{
		src:      src,
		format:   format,
		channels: in.Channels,
		ratio:    float64(in.SampleRate) / float64(outputRate),
		tmp:      make([]float32, readChunk*in.Channels),
	}
}

// Format returns the output format
func (r *Resampler) Format() audio.Format {
	return r.format
}

// ReadSamples fills dst with resampled interleaved samples
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	ch := r.channels
	out := 0

	for out+ch <= len(dst) {
		idx := int(r.position)

		// Need frames idx and idx+1 to interpolate
		if len(r.buf) < (idx+2)*ch {
			if r.eof {
				break
			}
			if err := r.fill(); err != nil {
				if out > 0 {
					return out, nil
				}
				return 0, err
			}
			continue
		}

		frac := float32(r.position - float64(idx))
		for c := 0; c < ch; c++ {
			s1 := r.buf[idx*ch+c]
			s2 := r.buf[(idx+1)*ch+c]
			dst[out+c] = s1*(1-frac) + s2*frac
		}

		out += ch
		r.position += r.ratio
	}

	r.compact()

	if out == 0 && r.eof {
		return 0, io.EOF
	}
	return out, nil
}

// fill appends the next chunk of input to buf
func (r *Resampler) fill() error {
	r.compact()

	n, err := r.src.ReadSamples(r.tmp)
	r.buf = append(r.buf, r.tmp[:n]...)

	if err == io.EOF {
		r.eof = true
		return nil
	}
	return err
}

// compact drops input frames that are behind the read position
func (r *Resampler) compact() {
	drop := int(r.position)
	if drop == 0 {
		return
	}
	if drop*r.channels > len(r.buf) {
		drop = len(r.buf) / r.channels
	}

	n := copy(r.buf, r.buf[drop*r.channels:])
	r.buf = r.buf[:n]
	r.position -= float64(drop)
}

// Close closes the wrapped source
func (r *Resampler) Close() error {
	return r.src.Close()
}
