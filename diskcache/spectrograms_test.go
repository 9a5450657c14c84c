package diskcache

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsoeltoni/vocal-remover/spectral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTone(t *testing.T, path string, sr, n int, freq float64) {
	wave := make([][]float64, 2)
	for c := range wave {
		wave[c] = make([]float64, n)
		for i := range wave[c] {
			wave[c][i] = 0.4 * math.Sin(2*math.Pi*freq*float64(i)/float64(sr))
		}
	}
	require.NoError(t, spectral.WriteWAV(path, wave, sr))
}

func TestLoadOrCompute(t *testing.T) {
	dir, err := ioutil.TempDir("", "speccache")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	p := spectral.Params{SampleRate: 8000, HopLength: 128, FFTSize: 512}
	mixPath := filepath.Join(dir, "song.wav")
	instPath := filepath.Join(dir, "song_inst.wav")
	writeTone(t, mixPath, p.SampleRate, 4096, 440)
	writeTone(t, instPath, p.SampleRate, 4096, 220)

	c, err := Open(filepath.Join(dir, "cache"), Options{MaxSize: 1 << 30, BytesUntilFlush: 1 << 30})
	require.NoError(t, err)

	x, y, err := LoadOrCompute(c, mixPath, instPath, p)
	require.NoError(t, err)
	require.Equal(t, 2, x.Channels)
	require.Equal(t, p.Bins(), x.Bins)
	require.Equal(t, x.Frames, y.Frames, "pair must share a frame count")

	// remove the sources: a second call must be served from the cache
	require.NoError(t, os.Remove(mixPath))
	require.NoError(t, os.Remove(instPath))

	x2, y2, err := LoadOrCompute(c, mixPath, instPath, p)
	require.NoError(t, err)
	assert.Equal(t, x.Data, x2.Data)
	assert.Equal(t, y.Data, y2.Data)
}

func TestLoadOrComputeMissingAudio(t *testing.T) {
	dir, err := ioutil.TempDir("", "speccache")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	c, err := Open(filepath.Join(dir, "cache"), Options{MaxSize: 1 << 30, BytesUntilFlush: 1 << 30})
	require.NoError(t, err)

	p := spectral.Params{SampleRate: 8000, HopLength: 128, FFTSize: 512}
	_, _, err = LoadOrCompute(c, filepath.Join(dir, "missing.wav"), filepath.Join(dir, "missing.wav"), p)
	assert.Error(t, err)
}
