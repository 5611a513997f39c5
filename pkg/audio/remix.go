// ABOUTME: Channel count conversion
// ABOUTME: Upmixes mono to stereo and downmixes stereo to mono
package audio

// Remix returns src converted to channels. Sources that already match, and
// conversions other than mono/stereo, are returned unchanged.
func Remix(src Source, channels int) Source {
	in := src.Format().Channels
	if in == channels {
		return src
	}
	if !(in == 1 && channels == 2) && !(in == 2 && channels == 1) {
		return src
	}
	return &remixer{src: src, in: in, out: channels}
}

type remixer struct {
	src Source
	in  int
	out int
	buf []float32
}

func (r *remixer) Format() Format {
	f := r.src.Format()
	f.Channels = r.out
	return f
}

func (r *remixer) Close() error {
	return r.src.Close()
}

func (r *remixer) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / r.out
	if frames == 0 {
		return 0, nil
	}

	need := frames * r.in
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	buf := r.buf[:need]

	n, err := r.src.ReadSamples(buf)
	got := n / r.in

	for i := 0; i < got; i++ {
		if r.in == 1 {
			dst[2*i] = buf[i]
			dst[2*i+1] = buf[i]
		} else {
			dst[i] = (buf[2*i] + buf[2*i+1]) / 2
		}
	}

	return got * r.out, err
}
