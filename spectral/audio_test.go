package spectral

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "audio")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	const sr = 44100
	n := sr / 10
	wave := make([][]float64, 2)
	for c := range wave {
		wave[c] = make([]float64, n)
		for i := range wave[c] {
			wave[c][i] = 0.4 * math.Sin(2*math.Pi*float64(220+110*c)*float64(i)/sr)
		}
	}

	path := filepath.Join(dir, "tone.wav")
	require.NoError(t, WriteWAV(path, wave, sr))

	back, err := LoadAudio(path, sr)
	require.NoError(t, err)
	require.Len(t, back, 2)
	require.Equal(t, n, len(back[0]))

	// 16-bit quantization bounds the error
	for c := 0; c < 2; c++ {
		for i := 0; i < n; i++ {
			require.InDelta(t, wave[c][i], back[c][i], 1e-3,
				"channel %d sample %d", c, i)
		}
	}
}

func TestLoadAudioUnsupported(t *testing.T) {
	_, err := LoadAudio("song.ogg", 44100)
	assert.Error(t, err)
}
