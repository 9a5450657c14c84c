// Package dataset turns (mixture, instrumental) audio pairs into the
// fixed-size patch datasets the training loop consumes: randomly cropped
// and augmented patches for training, deterministic disk-backed tiles for
// validation, plus the mixup and hard-example re-sampling utilities.
package dataset

import (
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsoeltoni/vocal-remover/errors"
	"github.com/fsoeltoni/vocal-remover/spectral"
	"golang.org/x/exp/rand"
)

var inputExts = map[string]bool{
	".wav":  true,
	".m4a":  true,
	".mp3":  true,
	".mp4":  true,
	".flac": true,
}

// Pair is one (mixture, instrumental) training example on disk.
type Pair struct {
	Mixture      string `json:"mixture"`
	Instrumental string `json:"instrumental"`
}

// Loader produces the complex spectrogram pair for one Pair; see
// diskcache.LoadOrCompute for the disk-memoized implementation.
type Loader func(mixPath, instPath string) (*spectral.Spectrogram, *spectral.Spectrogram, error)

// MakePairs lists the two directories, keeps recognized audio files, and
// pairs them up by sorted filename order. Pairing is positional: the two
// directories are assumed to contain matching filenames, and only the
// resulting list lengths are checked.
func MakePairs(mixDir, instDir string) ([]Pair, error) {
	xs, err := listAudio(mixDir)
	if err != nil {
		return nil, err
	}
	ys, err := listAudio(instDir)
	if err != nil {
		return nil, err
	}
	if len(xs) != len(ys) {
		return nil, errors.Errorf(
			"mixture and instrumental listings differ: %d files in %s vs %d in %s",
			len(xs), mixDir, len(ys), instDir)
	}
	if len(xs) == 0 {
		return nil, errors.Errorf("no audio pairs found in %s and %s", mixDir, instDir)
	}

	pairs := make([]Pair, 0, len(xs))
	for i := range xs {
		pairs = append(pairs, Pair{Mixture: xs[i], Instrumental: ys[i]})
	}
	return pairs, nil
}

func listAudio(dir string) ([]string, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "error listing %s", dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if inputExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// TrainValSplit shuffles the pairs and splits off a validation fraction.
// If held is non-empty the split is pinned instead: held becomes the
// validation list and the remaining pairs become the training list.
func TrainValSplit(rng *rand.Rand, pairs []Pair, valRate float64, held []Pair) (train, val []Pair) {
	shuffled := make([]Pair, len(pairs))
	copy(shuffled, pairs)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if len(held) == 0 {
		valSize := int(float64(len(shuffled)) * valRate)
		return shuffled[:len(shuffled)-valSize], shuffled[len(shuffled)-valSize:]
	}

	heldSet := make(map[Pair]bool, len(held))
	for _, p := range held {
		heldSet[p] = true
	}
	for _, p := range shuffled {
		if !heldSet[p] {
			train = append(train, p)
		}
	}
	return train, held
}
