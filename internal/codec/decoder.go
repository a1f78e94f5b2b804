// Package codec adapts codec libraries to the PCM buffers used by the mixer.
package codec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hdxmix/internal/mixerr"
	"hdxmix/pkg/audioengine"
)

// Decoder turns a track file into PCM.
type Decoder interface {
	Decode(path string) (audioengine.Buffer, error)
}

type decodeFunc func(f *os.File) (audioengine.Buffer, error)

// FileDecoder picks a decoder by file extension.
type FileDecoder struct {
	byExt map[string]decodeFunc
}

// NewFileDecoder returns a decoder for wav, mp3, flac and Ogg Opus files.
func NewFileDecoder() *FileDecoder {
	return &FileDecoder{byExt: map[string]decodeFunc{
		".wav":  decodeWAV,
		".mp3":  decodeMP3,
		".flac": decodeFLAC,
		".opus": decodeOpus,
		".ogg":  decodeOpus,
	}}
}

// Supports reports whether files with extension ext can be decoded.
func (d *FileDecoder) Supports(ext string) bool {
	_, ok := d.byExt[strings.ToLower(ext)]
	return ok
}

// Decode reads the whole file. Every failure wraps mixerr.ErrDecode.
func (d *FileDecoder) Decode(path string) (audioengine.Buffer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fn, ok := d.byExt[ext]
	if !ok {
		return audioengine.Buffer{}, fmt.Errorf("%w: %s: %w %q", mixerr.ErrDecode, filepath.Base(path), mixerr.ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return audioengine.Buffer{}, fmt.Errorf("%w: %w", mixerr.ErrDecode, err)
	}
	defer f.Close()

	buf, err := fn(f)
	if err != nil {
		return audioengine.Buffer{}, fmt.Errorf("%w: %s: %w", mixerr.ErrDecode, filepath.Base(path), err)
	}
	if buf.Frames() == 0 {
		return audioengine.Buffer{}, fmt.Errorf("%w: %s: no audio frames", mixerr.ErrDecode, filepath.Base(path))
	}
	return buf, nil
}
