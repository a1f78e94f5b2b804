package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"hdxmix/pkg/spec"
)

// Config holds runtime configuration, loaded from environment variables.
// Command-line flags override it.
type Config struct {
	// Paths
	SourceDir   string
	DestDir     string
	CounterFile string

	// Selection
	Count      int      // tracks to sample; 0 means ask
	Tracks     []string // explicit order; overrides Count when set
	Extensions []string // pool filter
	Seed       uint64   // 0 = random

	// Assembly
	Crossfade          time.Duration
	SilenceThresholdDB float64
	MinSilence         time.Duration
	AnalysisWindow     time.Duration

	// Output
	OutputProfile  string // mp3 or wav
	FFmpegPath     string
	BuildTracklist bool
	SuffixTag      string
	Spectrogram    bool

	LogLevel string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		SourceDir:   envStr("HDXMIX_SOURCE_DIR", ""),
		DestDir:     envStr("HDXMIX_DEST_DIR", ""),
		CounterFile: envStr("HDXMIX_COUNTER_FILE", spec.CounterFile),

		Count:      envInt("HDXMIX_COUNT", 0),
		Tracks:     envList("HDXMIX_TRACKS", nil),
		Extensions: envList("HDXMIX_EXTENSIONS", spec.DefaultPoolExtensions),
		Seed:       uint64(envInt("HDXMIX_SEED", 0)),

		Crossfade:          envMillis("HDXMIX_CROSSFADE_MS", spec.DefaultCrossfade),
		SilenceThresholdDB: envFloat("HDXMIX_SILENCE_THRESHOLD_DB", spec.DefaultSilenceThresholdDB),
		MinSilence:         envMillis("HDXMIX_MIN_SILENCE_MS", spec.DefaultMinSilence),
		AnalysisWindow:     envMillis("HDXMIX_ANALYSIS_WINDOW_MS", spec.DefaultAnalysisWindow),

		OutputProfile:  envStr("HDXMIX_FORMAT", spec.DefaultOutputProfile),
		FFmpegPath:     envStr("HDXMIX_FFMPEG", "ffmpeg"),
		BuildTracklist: envBool("HDXMIX_TRACKLIST", true),
		SuffixTag:      envStr("HDXMIX_SUFFIX_TAG", spec.DefaultSuffixTag),
		Spectrogram:    envBool("HDXMIX_SPECTROGRAM", false),

		LogLevel: envStr("HDXMIX_LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envMillis(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		return SplitList(v)
	}
	return fallback
}

// SplitList splits a comma-separated value, dropping empty items.
func SplitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
