package audioengine

import (
	"fmt"
	"time"
)

// Crossfade blends the tail of an outgoing signal with the head of an
// incoming one over len(outgoing)/channels frames. The outgoing gain falls
// linearly from 1 to 0 while the incoming gain rises from 0 to 1; the sum is
// saturated. Both slices must have the same length.
func Crossfade(outgoing, incoming []int16, channels int) []int16 {
	result := make([]int16, len(outgoing))
	frames := len(outgoing) / channels
	for f := 0; f < frames; f++ {
		gain := float64(f) / float64(frames)
		for c := 0; c < channels; c++ {
			i := f*channels + c
			result[i] = Saturate(float64(outgoing[i])*(1-gain) + float64(incoming[i])*gain)
		}
	}
	return result
}

// Mixer folds buffers into one growing mix, joining consecutive buffers with
// a crossfade. A Mixer belongs to a single run and is not safe for
// concurrent use.
type Mixer struct {
	crossfade time.Duration
	mix       Buffer
	playhead  int64 // ms
	tracks    int
}

// NewMixer creates a mixer joining tracks with the given crossfade length.
func NewMixer(crossfade time.Duration) *Mixer {
	if crossfade < 0 {
		crossfade = 0
	}
	return &Mixer{crossfade: crossfade}
}

// Append folds buf into the mix and returns the playhead as it stood before
// the blend, in milliseconds. The first buffer becomes the mix verbatim.
// Later buffers overlap the end of the mix by the crossfade length, clamped
// to whichever of the two operands is shorter.
func (m *Mixer) Append(buf Buffer) (int64, error) {
	if buf.Frames() == 0 {
		return m.playhead, ErrEmptyBuffer
	}
	start := m.playhead

	if m.tracks == 0 {
		m.mix = buf.Clone()
		m.playhead = buf.DurationMs()
		m.tracks = 1
		return start, nil
	}
	if buf.Format() != m.mix.Format() {
		return start, fmt.Errorf("%w: mix %+v, track %+v", ErrFormatMismatch, m.mix.Format(), buf.Format())
	}

	overlap := min(buf.FramesFor(m.crossfade), buf.Frames(), m.mix.Frames())
	ch := m.mix.Channels
	tailStart := (m.mix.Frames() - overlap) * ch

	blended := Crossfade(m.mix.Samples[tailStart:], buf.Samples[:overlap*ch], ch)
	copy(m.mix.Samples[tailStart:], blended)
	m.mix.Samples = append(m.mix.Samples, buf.Samples[overlap*ch:]...)

	m.playhead += buf.DurationMs() - framesToMs(overlap, buf.SampleRate)
	m.tracks++
	return start, nil
}

// Playhead returns the current playhead in milliseconds.
func (m *Mixer) Playhead() int64 { return m.playhead }

// Tracks returns how many buffers have been folded in.
func (m *Mixer) Tracks() int { return m.tracks }

// Crossfade returns the configured crossfade length.
func (m *Mixer) Crossfade() time.Duration { return m.crossfade }

// Buffer returns the mix. The caller must not modify it while the mixer is
// still in use.
func (m *Mixer) Buffer() Buffer { return m.mix }
