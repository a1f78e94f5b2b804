package codec

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"hdxmix/pkg/audioengine"
)

func decodeWAV(f *os.File) (audioengine.Buffer, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return audioengine.Buffer{}, errors.New("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return audioengine.Buffer{}, err
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return audioengine.Buffer{}, errors.New("wav: missing format chunk")
	}

	depth := int(dec.BitDepth)
	pcm := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		switch depth {
		case 8:
			pcm[i] = int16((v - 128) << 8)
		case 16:
			pcm[i] = int16(v)
		case 24:
			pcm[i] = int16(v >> 8)
		case 32:
			pcm[i] = int16(v >> 16)
		default:
			return audioengine.Buffer{}, fmt.Errorf("wav: unsupported bit depth %d", depth)
		}
	}
	// Drop the raw decoder buffer early; full tracks can be large.
	buf.Data = nil

	return audioengine.Buffer{
		Samples:    pcm,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}, nil
}

// writeWAV stores buf as 16-bit integer PCM.
func writeWAV(w io.WriteSeeker, buf audioengine.Buffer) error {
	enc := wav.NewEncoder(w, buf.SampleRate, 16, buf.Channels, 1)

	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		data[i] = int(s)
	}
	ib := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: buf.Channels, SampleRate: buf.SampleRate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(ib); err != nil {
		return err
	}
	return enc.Close()
}
