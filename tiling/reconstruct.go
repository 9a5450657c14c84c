package tiling

import (
	"github.com/fsoeltoni/vocal-remover/errors"
	"github.com/fsoeltoni/vocal-remover/spectral"
)

// Predictor is the separation model as seen by the reconstruction engine.
// Predict maps a tileSize-wide magnitude window to its separated
// counterpart; implementations trim their own unreliable context margin,
// which they declare via Offset.
type Predictor interface {
	Predict(window *spectral.Magnitude) (*spectral.Magnitude, error)
	Offset() int
}

// Reconstruct runs the model tile by tile over the magnitude spectrogram
// and concatenates the per-tile outputs into a prediction with the same
// shape as the input.
//
// With shifted set, the tile grid is displaced by half an ROI so boundary
// artifacts land at different positions; averaging a plain and a shifted
// pass suppresses audible seams.
func Reconstruct(x *spectral.Magnitude, tileSize int, model Predictor, shifted bool) (*spectral.Magnitude, error) {
	coef := x.Max()
	if coef == 0 {
		// silent input, nothing to normalize
		coef = 1
	}
	norm := x.Clone()
	norm.Scale(1 / coef)

	left, right, roiSize := ComputePadding(x.Frames, tileSize, model.Offset())
	nWindow := (x.Frames + roiSize - 1) / roiSize
	if shifted {
		left += roiSize / 2
		right += roiSize / 2
		nWindow++
	}

	padded := norm.PadTime(left, right)

	preds := make([]*spectral.Magnitude, 0, nWindow)
	for i := 0; i < nWindow; i++ {
		start := i * roiSize
		window := padded.CropTime(start, tileSize)
		pred, err := model.Predict(window)
		if err != nil {
			return nil, errors.Wrapf(err, "error predicting tile %d/%d", i, nWindow)
		}
		preds = append(preds, pred)
	}

	out, err := spectral.ConcatTime(preds)
	if err != nil {
		return nil, errors.Wrapf(err, "error concatenating %d tiles", nWindow)
	}

	lead := 0
	if shifted {
		lead = roiSize / 2
	}
	if out.Frames < lead+x.Frames {
		return nil, errors.Errorf(
			"model produced %d frames, need at least %d", out.Frames, lead+x.Frames)
	}
	out = out.CropTime(lead, x.Frames)
	out.Scale(coef)
	return out, nil
}
