package codec

import (
	"os"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"

	"hdxmix/pkg/audioengine"
)

func decodeMP3(f *os.File) (audioengine.Buffer, error) {
	s, format, err := mp3.Decode(f)
	if err != nil {
		return audioengine.Buffer{}, err
	}
	defer s.Close()
	return drainStreamer(s, format)
}

func decodeFLAC(f *os.File) (audioengine.Buffer, error) {
	s, format, err := flac.Decode(f)
	if err != nil {
		return audioengine.Buffer{}, err
	}
	defer s.Close()
	return drainStreamer(s, format)
}

// drainStreamer reads a beep stream to the end. Mono streams keep one channel.
func drainStreamer(s beep.Streamer, format beep.Format) (audioengine.Buffer, error) {
	channels := format.NumChannels
	if channels != 1 {
		channels = 2
	}
	out := audioengine.Buffer{SampleRate: int(format.SampleRate), Channels: channels}

	chunk := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(chunk)
		for _, fr := range chunk[:n] {
			out.Samples = append(out.Samples, audioengine.Saturate(fr[0]*32768))
			if channels == 2 {
				out.Samples = append(out.Samples, audioengine.Saturate(fr[1]*32768))
			}
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return audioengine.Buffer{}, err
	}
	return out, nil
}
