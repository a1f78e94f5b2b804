package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/mjibson/go-dsp/fft"

	"hdxmix/pkg/audioengine"
)

// Spectrogram renders the magnitude spectrum of buf over time as a PNG.
// Only the first channel is analysed.
func Spectrogram(buf audioengine.Buffer) ([]byte, error) {
	const width = 800
	const height = 200
	const fftSize = 1024

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	frames := buf.Frames()
	step := frames / width
	if step < fftSize {
		step = fftSize
	}

	window := make([]float64, fftSize)
	for x := 0; x < width; x++ {
		start := x * step
		if start+fftSize > frames {
			break
		}
		for i := 0; i < fftSize; i++ {
			window[i] = float64(buf.Samples[(start+i)*buf.Channels])
		}

		coeffs := fft.FFTReal(window)

		// Linear frequency axis, low frequencies at the bottom.
		for y := 0; y < height; y++ {
			idx := (height - 1 - y) * (fftSize / 2) / height
			mag := math.Hypot(real(coeffs[idx]), imag(coeffs[idx]))
			intensity := uint8(math.Min(mag/500, 255))
			img.Set(x, y, color.RGBA{R: intensity / 2, G: intensity, B: intensity / 2, A: 255})
		}
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
