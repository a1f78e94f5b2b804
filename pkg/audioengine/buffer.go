package audioengine

import (
	"encoding/binary"
	"errors"
	"time"
)

var (
	ErrFormatMismatch = errors.New("audioengine: sample rate or channel count mismatch")
	ErrEmptyBuffer    = errors.New("audioengine: empty buffer")
)

// Format describes the layout of interleaved 16-bit PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// Buffer is a block of interleaved signed 16-bit PCM.
type Buffer struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Range is a frame span [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of frames covered by the range.
func (r Range) Len() int { return r.End - r.Start }

func (b Buffer) Format() Format {
	return Format{SampleRate: b.SampleRate, Channels: b.Channels}
}

// Frames returns the number of sample frames (samples per channel).
func (b Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// DurationMs is the buffer length in whole milliseconds, truncated.
func (b Buffer) DurationMs() int64 {
	return framesToMs(b.Frames(), b.SampleRate)
}

// FramesFor converts a duration to a frame count at the buffer's rate.
func (b Buffer) FramesFor(d time.Duration) int {
	return int(int64(d) * int64(b.SampleRate) / int64(time.Second))
}

// Slice returns frames [start, end) as a new buffer. Bounds are clamped.
// The returned samples alias b.Samples.
func (b Buffer) Slice(start, end int) Buffer {
	n := b.Frames()
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	return Buffer{
		Samples:    b.Samples[start*b.Channels : end*b.Channels],
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
	}
}

// Clone returns a deep copy.
func (b Buffer) Clone() Buffer {
	out := b
	out.Samples = append([]int16(nil), b.Samples...)
	return out
}

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// BytesToSamples decodes little-endian 16-bit PCM. A trailing odd byte is dropped.
func BytesToSamples(buf []byte) []int16 {
	samples := make([]int16, len(buf)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
	}
	return samples
}

func framesToMs(frames, rate int) int64 {
	if rate <= 0 {
		return 0
	}
	return int64(frames) * 1000 / int64(rate)
}
