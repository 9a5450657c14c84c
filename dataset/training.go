package dataset

import (
	"log"

	"github.com/fsoeltoni/vocal-remover/errors"
	"github.com/fsoeltoni/vocal-remover/spectral"
	"github.com/fsoeltoni/vocal-remover/tiling"
	"golang.org/x/exp/rand"
)

// AugmentParams are the probability bands for the per-crop augmentations.
// Exactly one branch fires per crop, chosen by a single uniform draw; the
// rates must sum to at most 1, with the remainder being the pass-through
// probability.
type AugmentParams struct {
	// SwapRate is the probability of reversing the channel order of both
	// crops.
	SwapRate float64
	// MonoRate is the probability of overwriting both channels of both
	// crops with their cross-channel mean.
	MonoRate float64
	// TargetOnlyRate is the probability of overwriting the mixture crop
	// with the instrumental crop, simulating an input with no vocals.
	TargetOnlyRate float64
}

// DefaultAugment returns the stock augmentation bands.
func DefaultAugment() AugmentParams {
	return AugmentParams{
		SwapRate:       0.50,
		MonoRate:       0.02,
		TargetOnlyRate: 0.02,
	}
}

// Params configures patch construction for both builders.
type Params struct {
	// Cropsize is the time-axis width of every produced patch.
	Cropsize int
	// PatchesPerFile is the number of random crops drawn per pair
	// (training builder only).
	PatchesPerFile int
	// Offset is the model's context margin, fed into the shared padding
	// calculator.
	Offset int
	// Augment holds the training augmentation bands.
	Augment AugmentParams
}

// BuildTrainingSet loads every pair, normalizes mixture and instrumental
// by their joint peak, pads both with the shared padding math, draws
// PatchesPerFile random crops per pair, and applies at most one stochastic
// augmentation to each crop. The returned slices hold
// len(pairs)*PatchesPerFile complex patches each, owned by the caller.
func BuildTrainingSet(rng *rand.Rand, pairs []Pair, load Loader, p Params) (X, y []*spectral.Spectrogram, err error) {
	if len(pairs) == 0 {
		return nil, nil, errors.Errorf("empty pair list")
	}

	X = make([]*spectral.Spectrogram, 0, len(pairs)*p.PatchesPerFile)
	y = make([]*spectral.Spectrogram, 0, len(pairs)*p.PatchesPerFile)

	for i, pair := range pairs {
		xs, ys, err := load(pair.Mixture, pair.Instrumental)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "error loading pair %s", pair.Mixture)
		}

		coef := xs.Max()
		if c := ys.Max(); c > coef {
			coef = c
		}
		if coef == 0 {
			coef = 1
		}
		xs, ys = xs.Clone(), ys.Clone()
		xs.Scale(1 / coef)
		ys.Scale(1 / coef)

		left, right, _ := tiling.ComputePadding(xs.Frames, p.Cropsize, p.Offset)
		xPad := xs.PadTime(left, right)
		yPad := ys.PadTime(left, right)

		for j := 0; j < p.PatchesPerFile; j++ {
			var start int
			// short files can pad to exactly one crop
			if span := xPad.Frames - p.Cropsize; span > 0 {
				start = rng.Intn(span)
			}
			xCrop := xPad.CropTime(start, p.Cropsize)
			yCrop := yPad.CropTime(start, p.Cropsize)
			xCrop, yCrop = augment(rng, xCrop, yCrop, p.Augment)
			X = append(X, xCrop)
			y = append(y, yCrop)
		}

		if (i+1)%10 == 0 {
			log.Printf("completed %d/%d", i+1, len(pairs))
		}
	}
	return X, y, nil
}

// augment applies exactly one of the configured transforms, chosen by a
// single uniform draw. The branch order matters: first match wins.
func augment(rng *rand.Rand, x, y *spectral.Spectrogram, a AugmentParams) (*spectral.Spectrogram, *spectral.Spectrogram) {
	p := rng.Float64()
	switch {
	case p < a.SwapRate:
		x.SwapChannels()
		y.SwapChannels()
	case p < a.SwapRate+a.MonoRate:
		x.Downmix()
		y.Downmix()
	case p < a.SwapRate+a.MonoRate+a.TargetOnlyRate:
		x = y.Clone()
	}
	return x, y
}
