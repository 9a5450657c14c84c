package dataset

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func touch(t *testing.T, dir, name string) {
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte("x"), 0666))
}

func TestMakePairs(t *testing.T) {
	mixDir, err := ioutil.TempDir("", "mix")
	require.NoError(t, err)
	defer os.RemoveAll(mixDir)
	instDir, err := ioutil.TempDir("", "inst")
	require.NoError(t, err)
	defer os.RemoveAll(instDir)

	touch(t, mixDir, "b.wav")
	touch(t, mixDir, "a.flac")
	touch(t, mixDir, "notes.txt") // not audio, ignored
	touch(t, instDir, "a.flac")
	touch(t, instDir, "b.wav")

	pairs, err := MakePairs(mixDir, instDir)
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	// name-sorted positional matching
	assert.Equal(t, filepath.Join(mixDir, "a.flac"), pairs[0].Mixture)
	assert.Equal(t, filepath.Join(instDir, "a.flac"), pairs[0].Instrumental)
	assert.Equal(t, filepath.Join(mixDir, "b.wav"), pairs[1].Mixture)
}

func TestMakePairsMismatch(t *testing.T) {
	mixDir, err := ioutil.TempDir("", "mix")
	require.NoError(t, err)
	defer os.RemoveAll(mixDir)
	instDir, err := ioutil.TempDir("", "inst")
	require.NoError(t, err)
	defer os.RemoveAll(instDir)

	touch(t, mixDir, "a.wav")
	touch(t, mixDir, "b.wav")
	touch(t, instDir, "a.wav")

	_, err = MakePairs(mixDir, instDir)
	assert.Error(t, err, "unequal listings must be fatal")
}

func TestMakePairsEmpty(t *testing.T) {
	mixDir, err := ioutil.TempDir("", "mix")
	require.NoError(t, err)
	defer os.RemoveAll(mixDir)
	instDir, err := ioutil.TempDir("", "inst")
	require.NoError(t, err)
	defer os.RemoveAll(instDir)

	_, err = MakePairs(mixDir, instDir)
	assert.Error(t, err, "an empty pair list must be fatal")
}

func TestTrainValSplit(t *testing.T) {
	var pairs []Pair
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		pairs = append(pairs, Pair{Mixture: n + ".wav", Instrumental: n + ".wav"})
	}

	rng := rand.New(rand.NewSource(7))
	train, val := TrainValSplit(rng, pairs, 0.2, nil)
	assert.Len(t, val, 2)
	assert.Len(t, train, 8)

	seen := make(map[Pair]bool)
	for _, p := range append(train, val...) {
		assert.False(t, seen[p], "pair %v appears twice", p)
		seen[p] = true
	}
	assert.Len(t, seen, len(pairs))
}

func TestTrainValSplitPinned(t *testing.T) {
	pairs := []Pair{
		{Mixture: "a.wav", Instrumental: "a.wav"},
		{Mixture: "b.wav", Instrumental: "b.wav"},
		{Mixture: "c.wav", Instrumental: "c.wav"},
	}
	held := []Pair{pairs[1]}

	rng := rand.New(rand.NewSource(7))
	train, val := TrainValSplit(rng, pairs, 0.5, held)
	assert.Equal(t, held, val)
	assert.Len(t, train, 2)
	assert.NotContains(t, train, pairs[1])
}
