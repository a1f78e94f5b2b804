package codec

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/hraban/opus"

	"hdxmix/pkg/audioengine"
)

// Ogg Opus always decodes at 48 kHz.
const opusRate = 48000

// opusChannels reads the channel count from the OpusHead packet at the
// start of an Ogg Opus file. The stream reader does not expose it.
func opusChannels(r io.ReadSeeker) (int, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	idx := bytes.Index(head[:n], []byte("OpusHead"))
	if idx < 0 || idx+10 > n {
		return 0, errors.New("opus: missing OpusHead")
	}
	ch := int(head[idx+9])
	if ch < 1 || ch > 2 {
		return 0, errors.New("opus: only mono and stereo streams are supported")
	}
	return ch, nil
}

func decodeOpus(f *os.File) (audioengine.Buffer, error) {
	channels, err := opusChannels(f)
	if err != nil {
		return audioengine.Buffer{}, err
	}

	s, err := opus.NewStream(f)
	if err != nil {
		return audioengine.Buffer{}, err
	}
	defer s.Close()

	out := audioengine.Buffer{SampleRate: opusRate, Channels: channels}
	// 120 ms is the largest Opus frame.
	pcm := make([]int16, opusRate/1000*120*channels)
	for {
		n, err := s.Read(pcm)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return audioengine.Buffer{}, err
		}
		out.Samples = append(out.Samples, pcm[:n*channels]...)
	}
	return out, nil
}
