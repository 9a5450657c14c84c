package main

import (
	"log"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/alexflint/go-arg"
	"github.com/fsoeltoni/vocal-remover/dataset"
	"github.com/fsoeltoni/vocal-remover/diskcache"
	"github.com/fsoeltoni/vocal-remover/serialization"
	"github.com/fsoeltoni/vocal-remover/spectral"
	"github.com/fsoeltoni/vocal-remover/workerpool"
	"golang.org/x/exp/rand"
)

func fail(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	args := struct {
		MixDir  string `arg:"required" help:"directory of mixture audio files"`
		InstDir string `arg:"required" help:"directory of instrumental audio files"`

		ValRate     float64 `help:"fraction of pairs held out for validation"`
		ValFilelist string  `help:"json file pinning the validation pairs"`

		SampleRate int
		FFTSize    int
		HopLength  int
		Cropsize   int
		Patches    int `help:"random crops per training pair"`
		Offset     int `help:"model context margin in frames"`

		MixupRate  float64
		MixupAlpha float64

		Seed  int64
		NumGo int

		CacheDir     string `help:"spectrogram cache directory"`
		OutDir       string `help:"output root for patch datasets"`
		BatchSize    int
		StepsPerFile int
	}{
		ValRate:      0.2,
		SampleRate:   44100,
		FFTSize:      2048,
		HopLength:    1024,
		Cropsize:     256,
		Patches:      16,
		Offset:       0,
		MixupRate:    0,
		MixupAlpha:   1,
		Seed:         42,
		NumGo:        runtime.NumCPU(),
		CacheDir:     "sr44100_hl1024_nf2048",
		OutDir:       "patches",
		BatchSize:    4,
		StepsPerFile: 64,
	}
	arg.MustParse(&args)

	sp := spectral.Params{
		SampleRate: args.SampleRate,
		HopLength:  args.HopLength,
		FFTSize:    args.FFTSize,
	}
	params := dataset.Params{
		Cropsize:       args.Cropsize,
		PatchesPerFile: args.Patches,
		Offset:         args.Offset,
		Augment:        dataset.DefaultAugment(),
	}

	pairs, err := dataset.MakePairs(args.MixDir, args.InstDir)
	fail(err)
	log.Printf("found %d pairs", len(pairs))

	var held []dataset.Pair
	if args.ValFilelist != "" {
		fail(serialization.Decode(args.ValFilelist, &held))
	}

	rng := rand.New(rand.NewSource(uint64(args.Seed)))
	train, val := dataset.TrainValSplit(rng, pairs, args.ValRate, held)
	log.Printf("training pairs: %d, validation pairs: %d", len(train), len(val))

	cache, err := diskcache.Open(args.CacheDir, diskcache.Options{
		MaxSize:         1 << 40,
		BytesUntilFlush: 1 << 32,
	})
	fail(err)

	// Warm the spectrogram cache in parallel; the builders below then run
	// sequentially against warm entries.
	var completed int64
	var jobs []workerpool.Job
	for _, p := range pairs {
		pair := p
		jobs = append(jobs, workerpool.Job(func() error {
			_, _, err := diskcache.LoadOrCompute(cache, pair.Mixture, pair.Instrumental, sp)
			if v := atomic.AddInt64(&completed, 1); v%10 == 0 {
				log.Printf("cached %d/%d", v, len(pairs))
			}
			return err
		}))
	}
	pool := workerpool.New(args.NumGo)
	pool.AddBlocking(jobs)
	fail(pool.Wait())

	loader := dataset.Loader(func(mixPath, instPath string) (*spectral.Spectrogram, *spectral.Spectrogram, error) {
		return diskcache.LoadOrCompute(cache, mixPath, instPath, sp)
	})

	log.Println("building training set...")
	X, y, err := dataset.BuildTrainingSet(rng, train, loader, params)
	fail(err)

	if args.MixupRate > 0 {
		fail(dataset.Mixup(rng, X, y, args.MixupRate, args.MixupAlpha))
	}

	writer := dataset.NewSampleWriter(
		filepath.Join(args.OutDir, "train"), "", args.BatchSize, args.StepsPerFile)
	for i := range X {
		fail(writer.WriteSample(dataset.Sample{X: X[i], Y: y[i]}))
	}
	fail(writer.Flush())
	log.Printf("wrote %d training patches", len(X))

	log.Println("building validation set...")
	valDir := filepath.Join(args.OutDir, dataset.CacheDirName(sp, args.Cropsize, args.Offset))
	valSet, err := dataset.BuildValidationSet(val, loader, params, valDir)
	fail(err)
	log.Printf("wrote %d validation patches to %s", valSet.Len(), valDir)
}
