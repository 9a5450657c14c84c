package spectral

import (
	"math/cmplx"

	"github.com/fsoeltoni/vocal-remover/errors"
	"github.com/mjibson/go-dsp/fft"
	"github.com/r9y9/gossp/stft"
)

// Params bundles the analysis settings shared by every spectrogram in a
// run. Spectrograms computed with different Params are not interchangeable.
type Params struct {
	SampleRate int
	HopLength  int
	FFTSize    int
}

// Bins returns the number of frequency bins kept per frame.
func (p Params) Bins() int {
	return p.FFTSize/2 + 1
}

// ToSpectrogram runs a short-time Fourier transform over each channel of
// the waveform and keeps the non-redundant half of the spectrum.
func ToSpectrogram(wave [][]float64, hopLength, fftSize int) (*Spectrogram, error) {
	if len(wave) == 0 {
		return nil, errors.Errorf("no channels in waveform")
	}
	s := stft.New(hopLength, fftSize)
	bins := fftSize/2 + 1

	var out *Spectrogram
	for c, channel := range wave {
		spectrum := s.STFT(channel)
		if out == nil {
			out = NewSpectrogram(len(wave), bins, len(spectrum))
		}
		if len(spectrum) != out.Frames {
			return nil, errors.Errorf(
				"channel %d produced %d frames, want %d", c, len(spectrum), out.Frames)
		}
		for t, frame := range spectrum {
			for b := 0; b < bins; b++ {
				out.Set(c, b, t, complex64(frame[b]))
			}
		}
	}
	return out, nil
}

// ToWaveform inverts the spectrogram back to one waveform per channel by
// inverse FFT and windowed overlap-add.
func ToWaveform(spec *Spectrogram, hopLength int) [][]float64 {
	fftSize := (spec.Bins - 1) * 2
	s := stft.New(hopLength, fftSize)

	out := make([][]float64, spec.Channels)
	for c := 0; c < spec.Channels; c++ {
		signal := make([]float64, fftSize+(spec.Frames-1)*hopLength)
		windowSum := make([]float64, len(signal))

		frame := make([]complex128, fftSize)
		for t := 0; t < spec.Frames; t++ {
			for b := 0; b < spec.Bins; b++ {
				frame[b] = complex128(spec.At(c, b, t))
			}
			// mirror the kept half to restore a real signal
			for b := spec.Bins; b < fftSize; b++ {
				frame[b] = cmplx.Conj(complex128(spec.At(c, fftSize-b, t)))
			}

			// IFFT restores the analysis-windowed segment; weight by the
			// synthesis window and normalize by the accumulated square.
			buf := fft.IFFT(frame)
			for i := 0; i < fftSize; i++ {
				signal[t*hopLength+i] += real(buf[i]) * s.Window[i]
				windowSum[t*hopLength+i] += s.Window[i] * s.Window[i]
			}
		}

		for i := range signal {
			if windowSum[i] != 0 {
				signal[i] /= windowSum[i]
			}
		}
		out[c] = signal
	}
	return out
}
