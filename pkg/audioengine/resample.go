package audioengine

import (
	"fmt"

	"github.com/faiface/beep"
)

// ResampleQuality is the beep resampler quality used for rate conversion.
const ResampleQuality = 4

// bufferStreamer exposes a Buffer as a beep.Streamer. Mono is duplicated to
// both sides.
type bufferStreamer struct {
	buf Buffer
	pos int
}

func (s *bufferStreamer) Stream(samples [][2]float64) (int, bool) {
	frames := s.buf.Frames()
	if s.pos >= frames {
		return 0, false
	}
	ch := s.buf.Channels
	n := 0
	for n < len(samples) && s.pos < frames {
		base := s.pos * ch
		l := float64(s.buf.Samples[base]) / fullScale
		r := l
		if ch > 1 {
			r = float64(s.buf.Samples[base+1]) / fullScale
		}
		samples[n] = [2]float64{l, r}
		n++
		s.pos++
	}
	return n, true
}

func (s *bufferStreamer) Err() error { return nil }

// Conform converts buf to the given rate and channel layout. Channel counts
// of 1 and 2 are supported on both sides. A buffer already in the target
// format is returned unchanged.
func Conform(buf Buffer, to Format) (Buffer, error) {
	if buf.Format() == to {
		return buf, nil
	}
	if buf.Channels < 1 || buf.Channels > 2 || to.Channels < 1 || to.Channels > 2 {
		return Buffer{}, fmt.Errorf("audioengine: cannot convert %d channels to %d", buf.Channels, to.Channels)
	}
	if buf.SampleRate <= 0 || to.SampleRate <= 0 {
		return Buffer{}, fmt.Errorf("audioengine: invalid sample rate %d -> %d", buf.SampleRate, to.SampleRate)
	}

	var src beep.Streamer = &bufferStreamer{buf: buf}
	frames := buf.Frames()
	if buf.SampleRate != to.SampleRate {
		src = beep.Resample(ResampleQuality, beep.SampleRate(buf.SampleRate), beep.SampleRate(to.SampleRate), src)
		frames = int(int64(frames) * int64(to.SampleRate) / int64(buf.SampleRate))
	}

	out := Buffer{
		Samples:    make([]int16, 0, (frames+1)*to.Channels),
		SampleRate: to.SampleRate,
		Channels:   to.Channels,
	}
	chunk := make([][2]float64, 512)
	for {
		n, ok := src.Stream(chunk)
		for _, fr := range chunk[:n] {
			if to.Channels == 1 {
				out.Samples = append(out.Samples, Saturate((fr[0]+fr[1])/2*fullScale))
			} else {
				out.Samples = append(out.Samples, Saturate(fr[0]*fullScale), Saturate(fr[1]*fullScale))
			}
		}
		if !ok || n == 0 {
			break
		}
	}
	if err := src.Err(); err != nil {
		return Buffer{}, fmt.Errorf("audioengine: resample: %w", err)
	}
	return out, nil
}
