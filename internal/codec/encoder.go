package codec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"hdxmix/internal/mixerr"
	"hdxmix/pkg/audioengine"
	"hdxmix/pkg/spec"
)

// Encoder writes a finished mix to disk.
type Encoder interface {
	Encode(ctx context.Context, path string, buf audioengine.Buffer) error
	// Ext is the output file extension, without the dot.
	Ext() string
}

// NewEncoder returns the encoder for an output profile: "mp3" or "wav".
func NewEncoder(profile, ffmpegPath string) (Encoder, error) {
	switch strings.ToLower(profile) {
	case "mp3":
		if ffmpegPath == "" {
			ffmpegPath = "ffmpeg"
		}
		return &MP3Encoder{FFmpeg: ffmpegPath, BitrateKbps: spec.TargetBitrateKbps}, nil
	case "wav":
		return &WAVEncoder{}, nil
	}
	return nil, fmt.Errorf("%w: output profile %q", mixerr.ErrUnsupportedFormat, profile)
}

var mixFormat = audioengine.Format{SampleRate: spec.TargetSampleRate, Channels: spec.TargetChannels}

// prepare resamples to the target format when needed.
func prepare(buf audioengine.Buffer) (audioengine.Buffer, error) {
	if buf.Frames() == 0 {
		return audioengine.Buffer{}, fmt.Errorf("%w: empty mix", mixerr.ErrEncode)
	}
	out, err := audioengine.Conform(buf, mixFormat)
	if err != nil {
		return audioengine.Buffer{}, fmt.Errorf("%w: %w", mixerr.ErrEncode, err)
	}
	return out, nil
}

// MP3Encoder pipes PCM through ffmpeg's libmp3lame.
type MP3Encoder struct {
	FFmpeg      string
	BitrateKbps int
}

func (e *MP3Encoder) Ext() string { return "mp3" }

func (e *MP3Encoder) Encode(ctx context.Context, path string, buf audioengine.Buffer) error {
	buf, err := prepare(buf)
	if err != nil {
		return err
	}

	rate := strconv.Itoa(buf.SampleRate)
	cmd := exec.CommandContext(ctx, e.FFmpeg,
		"-y",
		"-f", "s16le",
		"-ar", rate,
		"-ac", strconv.Itoa(buf.Channels),
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", fmt.Sprintf("%dk", e.BitrateKbps),
		"-ar", rate,
		"-f", "mp3",
		"-loglevel", "error",
		path,
	)
	cmd.Stdin = bytes.NewReader(audioengine.SamplesToBytes(buf.Samples))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%w: ffmpeg: %w: %s", mixerr.ErrEncode, err, msg)
		}
		return fmt.Errorf("%w: ffmpeg: %w", mixerr.ErrEncode, err)
	}
	return nil
}

// WAVEncoder writes 16-bit PCM WAV.
type WAVEncoder struct{}

func (e *WAVEncoder) Ext() string { return "wav" }

func (e *WAVEncoder) Encode(ctx context.Context, path string, buf audioengine.Buffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf, err := prepare(buf)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", mixerr.ErrEncode, err)
	}
	if err := writeWAV(f, buf); err != nil {
		f.Close()
		return fmt.Errorf("%w: wav: %w", mixerr.ErrEncode, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", mixerr.ErrEncode, err)
	}
	return nil
}
