package main

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/fsoeltoni/vocal-remover/predict"
	"github.com/fsoeltoni/vocal-remover/spectral"
	"github.com/fsoeltoni/vocal-remover/tiling"
)

func fail(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	args := struct {
		Input      string `arg:"-i,required" help:"audio file to separate (wav or flac)"`
		Model      string `arg:"-P" help:"frozen model graph"`
		SampleRate int    `arg:"-r"`
		FFTSize    int    `arg:"-f"`
		HopLength  int    `arg:"-l"`
		WindowSize int    `arg:"-w" help:"tile width in frames"`
		Offset     int    `help:"model context margin in frames"`
		OutDir     string `arg:"-o"`
	}{
		Model:      "models/baseline.pb",
		SampleRate: 44100,
		FFTSize:    2048,
		HopLength:  1024,
		WindowSize: 512,
		Offset:     128,
		OutDir:     ".",
	}
	arg.MustParse(&args)

	log.Println("loading model...")
	model, err := predict.NewTFPredictor(args.Model, args.Offset)
	fail(err)
	defer model.Unload()

	log.Println("loading wave source...")
	wave, err := spectral.LoadAudio(args.Input, args.SampleRate)
	fail(err)
	basename := strings.TrimSuffix(filepath.Base(args.Input), filepath.Ext(args.Input))

	log.Println("stft of wave source...")
	spec, err := spectral.ToSpectrogram(wave, args.HopLength, args.FFTSize)
	fail(err)
	mag, phase := spec.Magnitude(), spec.Phase()

	// Two passes with displaced tile grids; averaging them suppresses
	// seams at tile boundaries.
	pred, err := tiling.Reconstruct(mag, args.WindowSize, model, false)
	fail(err)
	predShifted, err := tiling.Reconstruct(mag, args.WindowSize, model, true)
	fail(err)
	fail(pred.Add(predShifted))
	pred.Scale(0.5)

	log.Println("inverse stft of instruments...")
	instSpec, err := phase.MulMagnitude(pred)
	fail(err)
	instWave := spectral.ToWaveform(instSpec, args.HopLength)
	instPath := filepath.Join(args.OutDir, basename+"_Instruments.wav")
	fail(spectral.WriteWAV(instPath, instWave, args.SampleRate))
	log.Printf("wrote %s", instPath)

	log.Println("inverse stft of vocals...")
	vocalMag, err := mag.ClippedResidual(pred)
	fail(err)
	vocalSpec, err := phase.MulMagnitude(vocalMag)
	fail(err)
	vocalWave := spectral.ToWaveform(vocalSpec, args.HopLength)
	vocalPath := filepath.Join(args.OutDir, basename+"_Vocals.wav")
	fail(spectral.WriteWAV(vocalPath, vocalWave, args.SampleRate))
	log.Printf("wrote %s", vocalPath)
}
