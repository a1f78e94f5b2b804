package audioengine

import (
	"time"

	"hdxmix/pkg/spec"
)

// TrimOptions controls silence detection.
type TrimOptions struct {
	ThresholdDB float64       // windows at or below this level are silent
	MinSilence  time.Duration // shorter silent runs count as audible
	Window      time.Duration // analysis window length
}

// DefaultTrimOptions returns -40 dBFS, 100 ms minimum silence, 10 ms windows.
func DefaultTrimOptions() TrimOptions {
	return TrimOptions{
		ThresholdDB: spec.DefaultSilenceThresholdDB,
		MinSilence:  spec.DefaultMinSilence,
		Window:      spec.DefaultAnalysisWindow,
	}
}

// DetectAudible returns the frame range of buf between the first and the last
// window that is not absorbed into a qualifying silent run. When nothing in
// buf is audible the full range is returned, so a trim never empties a track.
func DetectAudible(buf Buffer, opts TrimOptions) Range {
	total := buf.Frames()
	full := Range{Start: 0, End: total}
	if total == 0 {
		return full
	}

	win := buf.FramesFor(opts.Window)
	if win < 1 {
		win = 1
	}
	minRun := buf.FramesFor(opts.MinSilence)

	n := (total + win - 1) / win
	silent := make([]bool, n)
	for i := range silent {
		w := buf.Slice(i*win, (i+1)*win)
		silent[i] = WindowDBFS(w.Samples) <= opts.ThresholdDB
	}

	// Silent runs of qualifying length are absorbed; everything else is audible.
	audible := make([]bool, n)
	for i := 0; i < n; {
		if !silent[i] {
			audible[i] = true
			i++
			continue
		}
		j := i
		for j < n && silent[j] {
			j++
		}
		runFrames := min(j*win, total) - i*win
		if runFrames < minRun {
			for k := i; k < j; k++ {
				audible[k] = true
			}
		}
		i = j
	}

	first, last := -1, -1
	for i, a := range audible {
		if a {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return full
	}
	return Range{Start: first * win, End: min((last+1)*win, total)}
}

// Trim cuts leading and trailing silence from buf. The returned buffer owns
// its samples.
func Trim(buf Buffer, opts TrimOptions) (Buffer, Range) {
	r := DetectAudible(buf, opts)
	return buf.Slice(r.Start, r.End).Clone(), r
}
