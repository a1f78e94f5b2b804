/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"hdxmix/internal/codec"
	"hdxmix/internal/config"
	"hdxmix/internal/counter"
	"hdxmix/internal/mixerr"
	"hdxmix/internal/pipeline"
	"hdxmix/internal/pool"
	"hdxmix/pkg/audioengine"
	"hdxmix/pkg/spec"
)

const (
	developer_title    = "Developer Hardiyanto"
	developer_subtitle = "Build 27/12/2025 Ebiet Version"
	usage_text         = "Usage: hdx-mixer -source (pool dir) -dest (output dir) [-count N | -tracks a.mp3,b.mp3] [-tracklist]"
	app_name           = "HDX-Mixer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "[FAIL] %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	flag.StringVar(&cfg.SourceDir, "source", cfg.SourceDir, "Folder holding the track pool")
	flag.StringVar(&cfg.DestDir, "dest", cfg.DestDir, "Folder receiving the mix")
	flag.IntVar(&cfg.Count, "count", cfg.Count, "Number of tracks to pick at random")
	tracks := flag.String("tracks", strings.Join(cfg.Tracks, ","), "Comma-separated pool files, mixed in this order")
	add := flag.String("add", "", "Comma-separated files to copy into the pool first")
	exts := flag.String("ext", strings.Join(cfg.Extensions, ","), "Comma-separated pool extensions")
	flag.BoolVar(&cfg.BuildTracklist, "tracklist", cfg.BuildTracklist, "Write the timestamp tracklist")
	flag.StringVar(&cfg.OutputProfile, "format", cfg.OutputProfile, "Output format: mp3 or wav")
	flag.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "ffmpeg binary used for mp3 output")
	flag.DurationVar(&cfg.Crossfade, "crossfade", cfg.Crossfade, "Crossfade length")
	flag.Float64Var(&cfg.SilenceThresholdDB, "threshold", cfg.SilenceThresholdDB, "Silence threshold in dBFS")
	flag.DurationVar(&cfg.MinSilence, "min-silence", cfg.MinSilence, "Shortest silence that gets trimmed")
	flag.StringVar(&cfg.CounterFile, "counter", cfg.CounterFile, "Export counter file")
	flag.StringVar(&cfg.SuffixTag, "tag", cfg.SuffixTag, "Tag appended to every tracklist line")
	flag.BoolVar(&cfg.Spectrogram, "spectrogram", cfg.Spectrogram, "Also write a spectrogram PNG")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed for track picking (0 = random)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), usage_text)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		printBanner()
		return nil
	}

	cfg.Tracks = config.SplitList(*tracks)
	cfg.Extensions = config.SplitList(*exts)
	setupLogger(cfg.LogLevel)

	if cfg.SourceDir == "" || cfg.DestDir == "" {
		if err := runMixerInterview(&cfg); err != nil {
			return err
		}
	}

	dec := codec.NewFileDecoder()
	for _, ext := range cfg.Extensions {
		if !dec.Supports(ext) {
			return fmt.Errorf("%w: pool extension %s (supported: %s)",
				mixerr.ErrUnsupportedFormat, ext, strings.Join(spec.SupportedExtensions, ", "))
		}
	}
	enc, err := codec.NewEncoder(cfg.OutputProfile, cfg.FFmpegPath)
	if err != nil {
		return err
	}

	p, err := pool.Scan(cfg.SourceDir, cfg.Extensions)
	if err != nil && !errors.Is(err, mixerr.ErrEmptyPool) {
		return err
	}
	for _, path := range config.SplitList(*add) {
		w, err := p.AddExternal(path)
		if err != nil {
			return err
		}
		if w != nil {
			fmt.Printf(" [!] %s\n", w)
		} else {
			fmt.Printf(" >> Added to pool: %s\n", path)
		}
	}

	var policy pool.Policy = pool.RandomSample{N: cfg.Count}
	if len(cfg.Tracks) > 0 {
		policy = pool.ExplicitOrder{Names: cfg.Tracks}
	}

	opts := pipeline.Options{
		Crossfade: cfg.Crossfade,
		Trim: audioengine.TrimOptions{
			ThresholdDB: cfg.SilenceThresholdDB,
			MinSilence:  cfg.MinSilence,
			Window:      cfg.AnalysisWindow,
		},
		SuffixTag:   cfg.SuffixTag,
		Spectrogram: cfg.Spectrogram,
	}
	if cfg.Seed != 0 {
		opts.Rand = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	}

	runner := pipeline.NewRunner(opts, counter.NewFileStore(cfg.CounterFile), dec, enc, slog.Default())
	for _, w := range runner.StartupWarnings() {
		fmt.Printf(" [!] %s\n", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n[START] MIXING: %d pool tracks from %s\n", p.Len(), cfg.SourceDir)

	updates := make(chan pipeline.Progress, p.Len()+1)
	bar := NewProgress()
	done := make(chan struct{})
	go func() {
		defer close(done)
		bar.Follow(updates)
	}()

	res, err := runner.Run(ctx, pipeline.Request{
		Pool:           p,
		Policy:         policy,
		DestDir:        cfg.DestDir,
		BuildTracklist: cfg.BuildTracklist,
		Progress:       updates,
	})
	close(updates)
	<-done
	bar.Stop()
	if err != nil {
		return err
	}

	printResult(res, opts)
	return nil
}

func printResult(res pipeline.Result, opts pipeline.Options) {
	for _, w := range res.Warnings {
		fmt.Printf(" [!] %s\n", w)
	}
	fmt.Printf("\n[SUCCESS] Mix #%d: %d tracks, %s crossfade, %s\n",
		res.Counter, len(res.TracksUsed), opts.Crossfade, formatLength(res.DurationMs))
	fmt.Printf(" >> Output: %s\n", res.OutputPath)
	if res.TracklistPath != "" {
		fmt.Printf(" >> Tracklist: %s\n", res.TracklistPath)
	}
	if res.SpectrogramPath != "" {
		fmt.Printf(" >> Spectrogram: %s\n", res.SpectrogramPath)
	}
	for _, line := range res.Tracklist {
		fmt.Printf("    %s\n", line)
	}
}

func formatLength(ms int64) string {
	s := ms / 1000
	return fmt.Sprintf("%d:%02d:%02d", s/3600, s/60%60, s%60)
}

func printBanner() {
	fmt.Printf("\n%s version %s\n", app_name, spec.MixerVersion)
	fmt.Printf("%s\n", developer_title)
	fmt.Printf("%s\n", developer_subtitle)
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
