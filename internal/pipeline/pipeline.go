// Package pipeline drives one mix assembly: selection, decode, trim,
// crossfade, encode and the export counter.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"hdxmix/internal/codec"
	"hdxmix/internal/counter"
	"hdxmix/internal/mixerr"
	"hdxmix/internal/pool"
	"hdxmix/internal/tracklist"
	"hdxmix/pkg/audioengine"
	"hdxmix/pkg/spec"
)

// Options are the assembly parameters shared by every run of a Runner.
type Options struct {
	Crossfade   time.Duration
	Trim        audioengine.TrimOptions
	SuffixTag   string
	Spectrogram bool       // also write a PNG spectrogram of the mix
	Rand        *rand.Rand // used by random selection; nil uses the global source
}

// DefaultOptions mirrors the fixed defaults in pkg/spec.
func DefaultOptions() Options {
	return Options{
		Crossfade: spec.DefaultCrossfade,
		Trim:      audioengine.DefaultTrimOptions(),
		SuffixTag: spec.DefaultSuffixTag,
	}
}

// Progress is sent after each track has been folded into the mix.
type Progress struct {
	Index int // 1-based
	Total int
	Name  string
}

// Request describes one run.
type Request struct {
	Pool           *pool.Pool
	Policy         pool.Policy
	DestDir        string
	BuildTracklist bool
	// Progress receives advisory updates. Sends never block; updates are
	// dropped when the channel is full or nil.
	Progress chan<- Progress
}

// Result describes a successful run.
type Result struct {
	OutputPath      string
	TracklistPath   string // empty unless a tracklist was requested
	SpectrogramPath string
	TracksUsed      []string
	Tracklist       []string
	Counter         uint64 // export number used for this run's file names
	DurationMs      int64
	Warnings        []mixerr.Warning
}

// Runner executes runs one at a time. The export counter is loaded once,
// when the Runner is created.
type Runner struct {
	opts  Options
	store counter.Store
	dec   codec.Decoder
	enc   codec.Encoder
	log   *slog.Logger

	mu      sync.Mutex
	counter uint64
	startup []mixerr.Warning
}

// NewRunner loads the export counter from store. A degraded load is logged
// and kept as a startup warning; it never fails.
func NewRunner(opts Options, store counter.Store, dec codec.Decoder, enc codec.Encoder, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	r := &Runner{opts: opts, store: store, dec: dec, enc: enc, log: log}

	v, err := store.Load()
	if err != nil {
		w := mixerr.Warnf(mixerr.Persistence, "export counter unavailable, starting at %d: %v", v, err)
		r.startup = append(r.startup, w)
		log.Warn("export counter load degraded", "value", v, "error", err)
	}
	r.counter = v
	return r
}

// Counter returns the export number the next successful run will use.
func (r *Runner) Counter() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counter
}

// StartupWarnings returns warnings raised while loading the counter.
func (r *Runner) StartupWarnings() []mixerr.Warning {
	return append([]mixerr.Warning(nil), r.startup...)
}

// Run assembles one mix. On any error nothing is left in DestDir and the
// export counter is not advanced. Cancellation is honoured between tracks.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan, err := r.plan(req)
	if err != nil {
		return Result{}, err
	}
	for _, w := range plan.Warnings {
		r.log.Warn("selection", "kind", w.Kind.String(), "message", w.Message)
	}

	n := r.counter
	log := r.log.With("export", n)
	log.Info("mix started", "tracks", len(plan.Tracks), "crossfade", r.opts.Crossfade)

	mix, list, err := r.assemble(ctx, log, req, plan)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		TracksUsed: plan.Tracks,
		Tracklist:  list.Lines(),
		Counter:    n,
		DurationMs: mix.DurationMs(),
		Warnings:   plan.Warnings,
	}
	if err := r.export(ctx, log, req, mix, list, n, &res); err != nil {
		return Result{}, err
	}

	r.counter = n + 1
	if err := r.store.Commit(r.counter); err != nil {
		w := mixerr.Warnf(mixerr.Persistence, "export counter not saved: %v", err)
		res.Warnings = append(res.Warnings, w)
		log.Warn("export counter save failed", "next", r.counter, "error", err)
	}

	log.Info("mix complete", "output", res.OutputPath, "duration_ms", res.DurationMs)
	return res, nil
}

// plan validates the request and resolves the selection. Nothing is
// decoded until it succeeds.
func (r *Runner) plan(req Request) (pool.Plan, error) {
	if req.Pool == nil || req.Pool.Len() == 0 {
		return pool.Plan{}, mixerr.ErrEmptyPool
	}
	if req.Policy == nil {
		return pool.Plan{}, fmt.Errorf("%w: no selection policy", mixerr.ErrEmptySelection)
	}
	plan, err := req.Policy.Resolve(req.Pool, r.opts.Rand)
	if err != nil {
		return pool.Plan{}, err
	}
	if len(plan.Tracks) == 0 {
		return pool.Plan{}, mixerr.ErrEmptySelection
	}
	return plan, nil
}

var mixFormat = audioengine.Format{SampleRate: spec.TargetSampleRate, Channels: spec.TargetChannels}

// assemble folds every planned track into one mix, in plan order.
func (r *Runner) assemble(ctx context.Context, log *slog.Logger, req Request, plan pool.Plan) (audioengine.Buffer, *tracklist.Builder, error) {
	mixer := audioengine.NewMixer(r.opts.Crossfade)
	list := tracklist.NewBuilder(r.opts.SuffixTag)
	total := len(plan.Tracks)

	for i, name := range plan.Tracks {
		if err := ctx.Err(); err != nil {
			log.Info("mix cancelled", "after", i, "of", total)
			return audioengine.Buffer{}, nil, fmt.Errorf("mix cancelled: %w", err)
		}

		raw, err := r.dec.Decode(req.Pool.Path(name))
		if err != nil {
			return audioengine.Buffer{}, nil, fmt.Errorf("track %d/%d: %w", i+1, total, err)
		}
		pcm, err := audioengine.Conform(raw, mixFormat)
		if err != nil {
			return audioengine.Buffer{}, nil, fmt.Errorf("track %d/%d: %w: %s: %w", i+1, total, mixerr.ErrDecode, name, err)
		}
		trimmed, span := audioengine.Trim(pcm, r.opts.Trim)

		start, err := mixer.Append(trimmed)
		if err != nil {
			return audioengine.Buffer{}, nil, fmt.Errorf("track %d/%d: %s: %w", i+1, total, name, err)
		}
		entry := list.Add(start, name)

		log.Debug("track folded",
			"index", i+1,
			"name", name,
			"source_rate", raw.SampleRate,
			"trim_start_ms", span.Start*1000/pcm.SampleRate,
			"trim_end_ms", span.End*1000/pcm.SampleRate,
			"peak", audioengine.Peak(trimmed.Samples),
			"at", entry.Timestamp(),
			"playhead_ms", mixer.Playhead())

		notify(req.Progress, Progress{Index: i + 1, Total: total, Name: entry.Name})
	}
	return mixer.Buffer(), list, nil
}

// export writes the mix and its companions. A failure removes whatever was
// written.
func (r *Runner) export(ctx context.Context, log *slog.Logger, req Request, mix audioengine.Buffer, list *tracklist.Builder, n uint64, res *Result) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mix cancelled: %w", err)
	}
	if err := os.MkdirAll(req.DestDir, 0o755); err != nil {
		return fmt.Errorf("%w: destination: %w", mixerr.ErrEncode, err)
	}

	base := fmt.Sprintf(spec.MixNamePattern, n)
	out := filepath.Join(req.DestDir, base+"."+r.enc.Ext())
	part := out + spec.PartialSuffix

	if err := r.enc.Encode(ctx, part, mix); err != nil {
		os.Remove(part)
		if !errors.Is(err, mixerr.ErrEncode) {
			err = fmt.Errorf("%w: %w", mixerr.ErrEncode, err)
		}
		return err
	}
	if err := os.Rename(part, out); err != nil {
		os.Remove(part)
		return fmt.Errorf("%w: %w", mixerr.ErrEncode, err)
	}
	res.OutputPath = out

	if req.BuildTracklist {
		path := filepath.Join(req.DestDir, fmt.Sprintf(spec.TracklistNamePattern, n))
		if err := list.WriteFile(path); err != nil {
			os.Remove(path)
			os.Remove(out)
			return fmt.Errorf("write tracklist: %w", err)
		}
		res.TracklistPath = path
	}

	if r.opts.Spectrogram {
		path := filepath.Join(req.DestDir, fmt.Sprintf(spec.SpectrogramNamePattern, n))
		img, err := codec.Spectrogram(mix)
		if err == nil {
			err = os.WriteFile(path, img, 0o644)
		}
		if err != nil {
			log.Warn("spectrogram skipped", "error", err)
		} else {
			res.SpectrogramPath = path
		}
	}
	return nil
}

func notify(ch chan<- Progress, p Progress) {
	if ch == nil {
		return
	}
	select {
	case ch <- p:
	default:
	}
}
