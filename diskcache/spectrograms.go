package diskcache

import (
	"fmt"

	"github.com/fsoeltoni/vocal-remover/errors"
	"github.com/fsoeltoni/vocal-remover/serialization"
	"github.com/fsoeltoni/vocal-remover/spectral"
)

// SpectrogramPair is the cached payload for one (mixture, instrumental)
// audio pair.
type SpectrogramPair struct {
	X *spectral.Spectrogram
	Y *spectral.Spectrogram
}

// LoadOrCompute returns the complex spectrograms for the audio pair,
// computing and caching them on first use. The two waveforms are truncated
// to equal length before analysis so both spectrograms share a frame count.
func LoadOrCompute(c *Cache, mixPath, instPath string, p spectral.Params) (*spectral.Spectrogram, *spectral.Spectrogram, error) {
	key := pairKey(mixPath, instPath, p)

	if data, err := c.Get(key); err == nil {
		var pair SpectrogramPair
		if err := serialization.DecodeBytes(".gob.gz", data, &pair); err == nil {
			return pair.X, pair.Y, nil
		}
		// corrupt entry, fall through and recompute
	}

	mix, err := spectral.LoadAudio(mixPath, p.SampleRate)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error loading mixture %s", mixPath)
	}
	inst, err := spectral.LoadAudio(instPath, p.SampleRate)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error loading instrumental %s", instPath)
	}

	n := len(mix[0])
	if len(inst[0]) < n {
		n = len(inst[0])
	}
	for i := range mix {
		mix[i] = mix[i][:n]
	}
	for i := range inst {
		inst[i] = inst[i][:n]
	}

	x, err := spectral.ToSpectrogram(mix, p.HopLength, p.FFTSize)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error transforming %s", mixPath)
	}
	y, err := spectral.ToSpectrogram(inst, p.HopLength, p.FFTSize)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error transforming %s", instPath)
	}

	data, err := serialization.EncodeBytes(".gob.gz", SpectrogramPair{X: x, Y: y})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error encoding spectrogram pair")
	}
	if err := c.Put(key, data); err != nil {
		return nil, nil, errors.Wrapf(err, "error caching spectrogram pair")
	}

	return x, y, nil
}

func pairKey(mixPath, instPath string, p spectral.Params) []byte {
	return []byte(fmt.Sprintf("%s|%s|sr%d_hl%d_nf%d", mixPath, instPath, p.SampleRate, p.HopLength, p.FFTSize))
}
