package serialization

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type thing struct {
	Name   string
	Values []float64
}

func TestEncodeDecodeFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "ser")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	in := thing{Name: "x", Values: []float64{1, 2.5, -3}}

	for _, name := range []string{"t.json", "t.gob", "t.json.gz", "t.gob.gz"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Encode(path, in), name)

		var out thing
		require.NoError(t, Decode(path, &out), name)
		assert.Equal(t, in, out, name)
	}
}

func TestEncodeDecodeBytes(t *testing.T) {
	in := thing{Name: "y", Values: []float64{9}}

	for _, ext := range []string{".json", ".gob", ".gob.gz"} {
		data, err := EncodeBytes(ext, in)
		require.NoError(t, err, ext)

		var out thing
		require.NoError(t, DecodeBytes(ext, data, &out), ext)
		assert.Equal(t, in, out, ext)
	}
}

func TestUnknownExtension(t *testing.T) {
	dir, err := ioutil.TempDir("", "ser")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	_, err = EncodeBytes(".csv", thing{})
	assert.Error(t, err)

	err = Encode(filepath.Join(dir, "out.csv"), thing{})
	assert.Error(t, err)
}
