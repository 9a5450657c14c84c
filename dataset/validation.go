package dataset

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsoeltoni/vocal-remover/errors"
	"github.com/fsoeltoni/vocal-remover/serialization"
	"github.com/fsoeltoni/vocal-remover/spectral"
	"github.com/fsoeltoni/vocal-remover/tiling"
)

// patchFile is the on-disk payload for one validation patch.
type patchFile struct {
	X *spectral.Spectrogram
	Y *spectral.Spectrogram
}

// ValidationSet is an index-addressable sequence of validation patches
// backed by one file per patch. Patches are read from disk on demand so
// an arbitrarily large corpus never has to fit in memory.
type ValidationSet struct {
	files []string
}

// Len returns the number of patches.
func (v *ValidationSet) Len() int {
	return len(v.files)
}

// Get loads patch i and returns the magnitude views of mixture and
// instrumental; phase is discarded.
func (v *ValidationSet) Get(i int) (*spectral.Magnitude, *spectral.Magnitude, error) {
	var patch patchFile
	if err := serialization.Decode(v.files[i], &patch); err != nil {
		return nil, nil, errors.Wrapf(err, "error loading patch %d", i)
	}
	return patch.X.Magnitude(), patch.Y.Magnitude(), nil
}

// CacheDirName encodes the patch-shaping settings into a directory name,
// so patches built with different settings never collide.
func CacheDirName(sp spectral.Params, cropsize, offset int) string {
	return fmt.Sprintf("cs%d_sr%d_hl%d_nf%d_of%d",
		cropsize, sp.SampleRate, sp.HopLength, sp.FFTSize, offset)
}

// BuildValidationSet tiles every pair into non-overlapping Cropsize-wide
// patches and persists each to dir, skipping files that already exist, so
// re-running after adding pairs only writes the new patches. The returned
// set reads patches lazily.
func BuildValidationSet(pairs []Pair, load Loader, p Params, dir string) (*ValidationSet, error) {
	if len(pairs) == 0 {
		return nil, errors.Errorf("empty pair list")
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "error creating patch dir %s", dir)
	}

	var files []string
	for i, pair := range pairs {
		base := strings.TrimSuffix(filepath.Base(pair.Mixture), filepath.Ext(pair.Mixture))

		x, y, err := load(pair.Mixture, pair.Instrumental)
		if err != nil {
			return nil, errors.Wrapf(err, "error loading pair %s", pair.Mixture)
		}

		coef := x.Max()
		if c := y.Max(); c > coef {
			coef = c
		}
		if coef == 0 {
			coef = 1
		}
		x, y = x.Clone(), y.Clone()
		x.Scale(1 / coef)
		y.Scale(1 / coef)

		left, right, roiSize := tiling.ComputePadding(x.Frames, p.Cropsize, p.Offset)
		xPad := x.PadTime(left, right)
		yPad := y.PadTime(left, right)

		nPatches := (x.Frames + roiSize - 1) / roiSize
		for j := 0; j < nPatches; j++ {
			outPath := filepath.Join(dir, fmt.Sprintf("%s_p%d.gob.gz", base, j))
			if _, err := os.Stat(outPath); os.IsNotExist(err) {
				start := j * roiSize
				patch := patchFile{
					X: xPad.CropTime(start, p.Cropsize),
					Y: yPad.CropTime(start, p.Cropsize),
				}
				if err := serialization.Encode(outPath, patch); err != nil {
					return nil, errors.Wrapf(err, "error writing patch %s", outPath)
				}
			}
			files = append(files, outPath)
		}

		if (i+1)%10 == 0 {
			log.Printf("completed %d/%d", i+1, len(pairs))
		}
	}

	return &ValidationSet{files: files}, nil
}
