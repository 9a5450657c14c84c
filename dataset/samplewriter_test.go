package dataset

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsoeltoni/vocal-remover/spectral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleWriter(t *testing.T) {
	dir, err := ioutil.TempDir("", "samples")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "train")
	w := NewSampleWriter(out, "", 2, 2)

	for i := 0; i < 5; i++ {
		s := Sample{
			X: spectral.NewSpectrogram(2, 3, 4),
			Y: spectral.NewSpectrogram(2, 3, 4),
		}
		s.X.Data[0] = complex(float32(i), 0)
		require.NoError(t, w.WriteSample(s))
	}
	require.NoError(t, w.Flush())

	// 4 samples per part plus a short trailing part
	parts, err := filepath.Glob(filepath.Join(out, "part-*.gob.gz"))
	require.NoError(t, err)
	require.Len(t, parts, 2)

	var read []Sample
	for _, part := range parts {
		require.NoError(t, ReadSamples(part, func(s Sample) error {
			read = append(read, s)
			return nil
		}))
	}
	require.Len(t, read, 5)
	for _, s := range read {
		assert.Equal(t, 3, s.X.Bins)
		assert.Equal(t, 4, s.X.Frames)
	}

	assert.Equal(t, 4, w.StepsWritten())
}
