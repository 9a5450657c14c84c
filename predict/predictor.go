// Package predict implements the separation model behind the engine's
// Predictor interface, backed by a frozen Tensorflow graph.
package predict

import (
	"github.com/fsoeltoni/vocal-remover/errors"
	"github.com/fsoeltoni/vocal-remover/spectral"
)

const (
	defaultInputOp  = "input:0"
	defaultOutputOp = "output:0"
)

// TFPredictor separates magnitude windows with a frozen Tensorflow model.
// The model consumes a [1, channels, bins, tileSize] float32 tensor and
// produces a mask of the same shape; the declared offset frames on each
// side of the output are unreliable context and are trimmed here before
// the window is handed back to the reconstruction engine.
type TFPredictor struct {
	model  *Model
	offset int

	inputOp  string
	outputOp string
}

// NewTFPredictor loads the frozen graph at path. offset is the context
// margin the model requires on each side of a window.
func NewTFPredictor(path string, offset int) (*TFPredictor, error) {
	model, err := NewModel(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load model")
	}
	return &TFPredictor{
		model:    model,
		offset:   offset,
		inputOp:  defaultInputOp,
		outputOp: defaultOutputOp,
	}, nil
}

// Offset returns the model's required context margin in frames.
func (p *TFPredictor) Offset() int {
	return p.offset
}

// Unload releases the underlying model.
func (p *TFPredictor) Unload() {
	p.model.Unload()
}

// Predict runs one magnitude window through the model and returns the
// masked window with the context margins trimmed.
func (p *TFPredictor) Predict(window *spectral.Magnitude) (*spectral.Magnitude, error) {
	feed := make([][][][]float32, 1)
	feed[0] = make([][][]float32, window.Channels)
	for c := 0; c < window.Channels; c++ {
		feed[0][c] = make([][]float32, window.Bins)
		for b := 0; b < window.Bins; b++ {
			row := make([]float32, window.Frames)
			for t := 0; t < window.Frames; t++ {
				row[t] = window.At(c, b, t)
			}
			feed[0][c][b] = row
		}
	}

	res, err := p.model.Run(map[string]interface{}{p.inputOp: feed}, []string{p.outputOp})
	if err != nil {
		return nil, err
	}

	batch, ok := res[p.outputOp].([][][][]float32)
	if !ok || len(batch) != 1 {
		return nil, errors.Errorf("unexpected model output for '%s'", p.outputOp)
	}
	pred := batch[0]
	if len(pred) != window.Channels || len(pred[0]) != window.Bins || len(pred[0][0]) != window.Frames {
		return nil, errors.Errorf(
			"model output shape [%d %d %d] does not match window [%d %d %d]",
			len(pred), len(pred[0]), len(pred[0][0]),
			window.Channels, window.Bins, window.Frames)
	}

	roi := window.Frames - 2*p.offset
	if roi <= 0 {
		roi = window.Frames
	}
	start := 0
	if roi != window.Frames {
		start = p.offset
	}

	out := spectral.NewMagnitude(window.Channels, window.Bins, roi)
	for c := 0; c < out.Channels; c++ {
		for b := 0; b < out.Bins; b++ {
			for t := 0; t < roi; t++ {
				out.Set(c, b, t, pred[c][b][start+t])
			}
		}
	}
	return out, nil
}
