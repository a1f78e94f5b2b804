/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package spec

import "time"

const (
	// === IDENTITY & VERSIONING ===
	MixerVersion = "1.0.0"

	// === MIX FORMAT ===
	TargetSampleRate  = 44100
	TargetChannels    = 2
	TargetBitDepth    = 16
	TargetBitrateKbps = 320

	// === ASSEMBLY DEFAULTS ===
	DefaultCrossfade          = 1000 * time.Millisecond
	DefaultSilenceThresholdDB = -40.0
	DefaultMinSilence         = 100 * time.Millisecond
	DefaultAnalysisWindow     = 10 * time.Millisecond
	DefaultSuffixTag          = "Hyper Demon Remix"
	DefaultOutputProfile      = "mp3"

	// === OUTPUT NAMING ===
	MixNamePattern         = "Exported_Mix_%d"
	TracklistNamePattern   = "TimeStamps_Exported_Mix_%d.txt"
	SpectrogramNamePattern = "Spectrogram_Exported_Mix_%d.png"
	PartialSuffix          = ".part"

	// === PERSISTED STATE ===
	CounterFile    = "export_counter.txt"
	DefaultCounter = 1
)

// DefaultPoolExtensions is the pool filter used when none is configured.
var DefaultPoolExtensions = []string{".mp3"}

// SupportedExtensions lists every extension the decoders understand.
var SupportedExtensions = []string{".mp3", ".wav", ".flac", ".opus", ".ogg"}
