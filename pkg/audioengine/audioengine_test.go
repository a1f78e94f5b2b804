package audioengine

import (
	"errors"
	"math"
	"testing"
	"time"
)

const testRate = 1000 // 1 frame per ms keeps the arithmetic readable

// tone builds a stereo buffer of ms milliseconds at the given amplitude.
func tone(ms int, amp int16) Buffer {
	b := Buffer{SampleRate: testRate, Channels: 2, Samples: make([]int16, ms*2)}
	for i := range b.Samples {
		if (i/2)%2 == 0 {
			b.Samples[i] = amp
		} else {
			b.Samples[i] = -amp
		}
	}
	return b
}

func concat(parts ...Buffer) Buffer {
	out := Buffer{SampleRate: parts[0].SampleRate, Channels: parts[0].Channels}
	for _, p := range parts {
		out.Samples = append(out.Samples, p.Samples...)
	}
	return out
}

// --- Buffer ---

func TestBufferDurations(t *testing.T) {
	b := Buffer{SampleRate: 44100, Channels: 2, Samples: make([]int16, 44100*2*3)}
	if b.Frames() != 44100*3 {
		t.Errorf("Frames = %d, want %d", b.Frames(), 44100*3)
	}
	if b.DurationMs() != 3000 {
		t.Errorf("DurationMs = %d, want 3000", b.DurationMs())
	}
	if b.Duration() != 3*time.Second {
		t.Errorf("Duration = %v, want 3s", b.Duration())
	}
	if got := b.FramesFor(time.Second); got != 44100 {
		t.Errorf("FramesFor(1s) = %d, want 44100", got)
	}
}

func TestBufferSliceClamps(t *testing.T) {
	b := tone(10, 100)
	if got := b.Slice(-5, 4).Frames(); got != 4 {
		t.Errorf("Slice(-5,4) frames = %d, want 4", got)
	}
	if got := b.Slice(8, 50).Frames(); got != 2 {
		t.Errorf("Slice(8,50) frames = %d, want 2", got)
	}
	if got := b.Slice(7, 3).Frames(); got != 0 {
		t.Errorf("Slice(7,3) frames = %d, want 0", got)
	}
}

func TestSamplesBytesRoundTrip(t *testing.T) {
	original := []int16{0, 1, -1, 32767, -32768, 256}
	buf := SamplesToBytes(original)
	if buf[10] != 0x00 || buf[11] != 0x01 {
		t.Errorf("Sample 256 encoded as [%02x, %02x], want [00, 01]", buf[10], buf[11])
	}
	got := BytesToSamples(append(buf, 0x7f))
	if len(got) != len(original) {
		t.Fatalf("BytesToSamples len = %d, want %d", len(got), len(original))
	}
	for i := range original {
		if got[i] != original[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got[i], original[i])
		}
	}
}

// --- Saturate / analysis ---

func TestSaturate(t *testing.T) {
	tests := []struct {
		in   float64
		want int16
	}{
		{0, 0},
		{1.4, 1},
		{-1.6, -2},
		{40000, 32767},
		{-40000, -32768},
		{32767.4, 32767},
	}
	for _, tt := range tests {
		if got := Saturate(tt.in); got != tt.want {
			t.Errorf("Saturate(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWindowDBFS(t *testing.T) {
	if got := WindowDBFS(nil); !math.IsInf(got, -1) {
		t.Errorf("empty window = %v, want -Inf", got)
	}
	if got := WindowDBFS([]int16{0, 0, 0}); !math.IsInf(got, -1) {
		t.Errorf("zero window = %v, want -Inf", got)
	}
	// Square wave at half scale: 20*log10(0.5) = -6.02 dB.
	got := WindowDBFS([]int16{16384, -16384, 16384, -16384})
	if math.Abs(got-(-6.0206)) > 0.01 {
		t.Errorf("half-scale window = %v dB, want about -6.02", got)
	}
	if got := Peak([]int16{3, -900, 12}); got != 900 {
		t.Errorf("Peak = %d, want 900", got)
	}
}

// --- Silence trimmer ---

func TestDetectAudibleTrimsEdges(t *testing.T) {
	buf := concat(tone(200, 0), tone(500, 10000), tone(300, 0))
	r := DetectAudible(buf, DefaultTrimOptions())
	if r.Start != 200 || r.End != 700 {
		t.Errorf("range = %+v, want {200 700}", r)
	}
}

func TestDetectAudibleAllSilentReturnsFullRange(t *testing.T) {
	for _, amp := range []int16{0, 50, 300} { // 300 ≈ -40.8 dBFS, still under -40
		buf := tone(750, amp)
		r := DetectAudible(buf, DefaultTrimOptions())
		if r.Start != 0 || r.End != buf.Frames() {
			t.Errorf("amp %d: range = %+v, want full {0 %d}", amp, r, buf.Frames())
		}
		trimmed, _ := Trim(buf, DefaultTrimOptions())
		if trimmed.Frames() != buf.Frames() {
			t.Errorf("amp %d: trimmed frames = %d, want %d", amp, trimmed.Frames(), buf.Frames())
		}
	}
}

func TestDetectAudibleShortSilenceIsNoise(t *testing.T) {
	// 50 ms of silence at the head is shorter than the 100 ms minimum and is kept.
	buf := concat(tone(50, 0), tone(400, 10000), tone(60, 0), tone(400, 10000))
	r := DetectAudible(buf, DefaultTrimOptions())
	if r.Start != 0 || r.End != buf.Frames() {
		t.Errorf("range = %+v, want full {0 %d}", r, buf.Frames())
	}
}

func TestDetectAudibleInteriorSilenceKept(t *testing.T) {
	buf := concat(tone(150, 0), tone(300, 10000), tone(500, 0), tone(300, 10000), tone(150, 0))
	r := DetectAudible(buf, DefaultTrimOptions())
	if r.Start != 150 || r.End != 1250 {
		t.Errorf("range = %+v, want {150 1250}", r)
	}
}

func TestDetectAudibleThresholdIsInclusive(t *testing.T) {
	// A window exactly at the threshold counts as silent.
	opts := DefaultTrimOptions()
	opts.ThresholdDB = WindowDBFS([]int16{1000, -1000})
	buf := concat(tone(200, 1000), tone(300, 20000))
	r := DetectAudible(buf, opts)
	if r.Start != 200 {
		t.Errorf("Start = %d, want 200", r.Start)
	}
}

func TestTrimIdempotent(t *testing.T) {
	buf := concat(tone(230, 0), tone(600, 12000), tone(20, 0), tone(100, 9000), tone(410, 0))
	opts := DefaultTrimOptions()
	once, r1 := Trim(buf, opts)
	twice, r2 := Trim(once, opts)
	if r2.Start != 0 || r2.End != once.Frames() {
		t.Errorf("second trim range = %+v, want {0 %d}", r2, once.Frames())
	}
	if twice.Frames() != once.Frames() || r1.Len() != once.Frames() {
		t.Errorf("trim not idempotent: %d then %d frames", once.Frames(), twice.Frames())
	}
}

func TestTrimDeterministicAndPure(t *testing.T) {
	buf := concat(tone(120, 0), tone(300, 8000), tone(120, 0))
	before := buf.Clone()
	a, ra := Trim(buf, DefaultTrimOptions())
	b, rb := Trim(buf, DefaultTrimOptions())
	if ra != rb || a.Frames() != b.Frames() {
		t.Errorf("Trim not deterministic: %+v vs %+v", ra, rb)
	}
	for i := range buf.Samples {
		if buf.Samples[i] != before.Samples[i] {
			t.Fatalf("Trim mutated input at %d", i)
		}
	}
	a.Samples[0] = 1
	if buf.Samples[ra.Start*2] == 1 && before.Samples[ra.Start*2] != 1 {
		t.Error("trimmed buffer aliases the input")
	}
}

// --- Crossfade ---

func TestCrossfadeLinearRamp(t *testing.T) {
	out := []int16{1000, 1000, 1000, 1000}
	in := []int16{3000, 3000, 3000, 3000}
	got := Crossfade(out, in, 1)
	want := []int16{1000, 1500, 2000, 2500}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestCrossfadeSaturates(t *testing.T) {
	out := []int16{32767, -32768, 32767, -32768}
	in := []int16{32767, -32768, 32767, -32768}
	got := Crossfade(out, in, 2)
	for i, v := range got {
		if v != out[i] {
			t.Errorf("sample[%d] = %d, want %d", i, v, out[i])
		}
	}
}

func TestMixerDurations(t *testing.T) {
	tests := []struct {
		name       string
		d1, d2     int
		wantMix    int64
		wantPlayhd int64
	}{
		{"both longer than crossfade", 3000, 5000, 7000, 7000},
		{"incoming equals crossfade", 3000, 1000, 3000, 3000},
		{"incoming shorter than crossfade", 3000, 400, 3000, 3000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMixer(time.Second)
			if _, err := m.Append(tone(tt.d1, 1000)); err != nil {
				t.Fatal(err)
			}
			start, err := m.Append(tone(tt.d2, 1000))
			if err != nil {
				t.Fatal(err)
			}
			if start != int64(tt.d1) {
				t.Errorf("second start = %d, want %d", start, tt.d1)
			}
			if got := m.Buffer().DurationMs(); got != tt.wantMix {
				t.Errorf("mix duration = %d, want %d", got, tt.wantMix)
			}
			if m.Playhead() != tt.wantPlayhd {
				t.Errorf("playhead = %d, want %d", m.Playhead(), tt.wantPlayhd)
			}
		})
	}
}

func TestMixerShortMixClampsOverlap(t *testing.T) {
	m := NewMixer(time.Second)
	m.Append(tone(300, 1000))
	if _, err := m.Append(tone(2000, 1000)); err != nil {
		t.Fatal(err)
	}
	if got := m.Buffer().DurationMs(); got != 2000 {
		t.Errorf("mix duration = %d, want 2000", got)
	}
}

func TestMixerPlayheadNonDecreasing(t *testing.T) {
	m := NewMixer(time.Second)
	prev := int64(-1)
	for _, d := range []int{2500, 300, 1000, 4000, 50, 1200} {
		start, err := m.Append(tone(d, 2000))
		if err != nil {
			t.Fatal(err)
		}
		if start < prev {
			t.Errorf("start %d < previous %d", start, prev)
		}
		if m.Playhead() < start {
			t.Errorf("playhead %d < start %d", m.Playhead(), start)
		}
		prev = start
	}
	if m.Tracks() != 6 {
		t.Errorf("Tracks = %d, want 6", m.Tracks())
	}
}

func TestMixerBlendsOverlap(t *testing.T) {
	m := NewMixer(4 * time.Millisecond)
	a := Buffer{SampleRate: testRate, Channels: 1, Samples: []int16{1000, 1000, 1000, 1000, 1000, 1000}}
	b := Buffer{SampleRate: testRate, Channels: 1, Samples: []int16{3000, 3000, 3000, 3000, 3000}}
	m.Append(a)
	m.Append(b)
	want := []int16{1000, 1000, 1000, 1500, 2000, 2500, 3000}
	got := m.Buffer().Samples
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMixerDoesNotAliasFirstBuffer(t *testing.T) {
	m := NewMixer(time.Millisecond)
	a := tone(5, 1000)
	before := a.Clone()
	m.Append(a)
	m.Append(tone(5, 3000))
	if a.Samples[len(a.Samples)-1] != before.Samples[len(before.Samples)-1] {
		t.Error("Append modified the caller's buffer")
	}
}

func TestMixerRejectsMismatchAndEmpty(t *testing.T) {
	m := NewMixer(time.Second)
	if _, err := m.Append(Buffer{SampleRate: testRate, Channels: 2}); !errors.Is(err, ErrEmptyBuffer) {
		t.Errorf("empty append err = %v, want ErrEmptyBuffer", err)
	}
	m.Append(tone(100, 1))
	mono := Buffer{SampleRate: testRate, Channels: 1, Samples: make([]int16, 100)}
	if _, err := m.Append(mono); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("mismatch err = %v, want ErrFormatMismatch", err)
	}
}

// --- Conform ---

func TestConformIdentity(t *testing.T) {
	b := tone(10, 100)
	got, err := Conform(b, b.Format())
	if err != nil {
		t.Fatal(err)
	}
	if &got.Samples[0] != &b.Samples[0] {
		t.Error("Conform copied a buffer already in the target format")
	}
}

func TestConformChannels(t *testing.T) {
	mono := Buffer{SampleRate: testRate, Channels: 1, Samples: []int16{100, -200, 300}}
	st, err := Conform(mono, Format{SampleRate: testRate, Channels: 2})
	if err != nil {
		t.Fatal(err)
	}
	want := []int16{100, 100, -200, -200, 300, 300}
	if len(st.Samples) != len(want) {
		t.Fatalf("len = %d, want %d", len(st.Samples), len(want))
	}
	for i := range want {
		if st.Samples[i] != want[i] {
			t.Errorf("stereo[%d] = %d, want %d", i, st.Samples[i], want[i])
		}
	}

	back, err := Conform(Buffer{SampleRate: testRate, Channels: 2, Samples: []int16{100, 300}}, Format{SampleRate: testRate, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Samples) != 1 || back.Samples[0] != 200 {
		t.Errorf("downmix = %v, want [200]", back.Samples)
	}
}

func TestConformResampleLength(t *testing.T) {
	src := Buffer{SampleRate: 48000, Channels: 2, Samples: make([]int16, 48000*2)}
	for i := range src.Samples {
		src.Samples[i] = int16(8000 * math.Sin(float64(i/2)*2*math.Pi*440/48000))
	}
	got, err := Conform(src, Format{SampleRate: 44100, Channels: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got.SampleRate != 44100 || got.Channels != 2 {
		t.Fatalf("format = %+v", got.Format())
	}
	if d := got.Frames() - 44100; d < -64 || d > 64 {
		t.Errorf("resampled frames = %d, want about 44100", got.Frames())
	}
}

func TestConformRejectsLayouts(t *testing.T) {
	b := Buffer{SampleRate: testRate, Channels: 6, Samples: make([]int16, 12)}
	if _, err := Conform(b, Format{SampleRate: testRate, Channels: 2}); err == nil {
		t.Error("expected error for 6-channel input")
	}
}
