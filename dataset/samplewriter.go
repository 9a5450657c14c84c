package dataset

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/fsoeltoni/vocal-remover/errors"
	"github.com/fsoeltoni/vocal-remover/spectral"
)

// Sample is one training example as persisted for the training loop.
type Sample struct {
	X *spectral.Spectrogram
	Y *spectral.Spectrogram
}

// SampleWriter batches samples into gzipped gob part files of
// batchSize*stepsPerFile samples each, flushing completed parts in the
// background. Files appear atomically via rename.
type SampleWriter struct {
	dir    string
	tmpdir string
	n      int64

	batchSize      int
	stepsPerFile   int
	samplesPerFile int

	steps int32

	samples []Sample
	m       sync.Mutex
	wg      sync.WaitGroup
}

// NewSampleWriter ...
func NewSampleWriter(dir, tmpdir string, batchSize, stepsPerFile int) *SampleWriter {
	err := os.MkdirAll(dir, os.ModePerm)
	if err != nil {
		log.Fatalln(err)
	}
	return &SampleWriter{
		dir:            dir,
		tmpdir:         tmpdir,
		batchSize:      batchSize,
		stepsPerFile:   stepsPerFile,
		samplesPerFile: batchSize * stepsPerFile,
	}
}

// Flush writes any buffered samples as a final (possibly short) part file.
func (s *SampleWriter) Flush() error {
	s.m.Lock()
	defer s.m.Unlock()
	if len(s.samples) > 0 {
		s.wg.Wait()
		err := s.flushInternal(s.samples, s.n)
		if err != nil {
			return err
		}
		s.samples = nil
	}
	return nil
}

// WriteSample buffers one sample, flushing a part file once enough have
// accumulated.
func (s *SampleWriter) WriteSample(sample Sample) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.samples = append(s.samples, sample)
	if len(s.samples) >= s.samplesPerFile {
		s.wg.Wait()
		s.wg.Add(1)
		go func(samples []Sample, n int64) {
			defer s.wg.Done()
			err := s.flushInternal(samples, n)
			if err != nil {
				log.Println("error flushing:", err)
			}
		}(s.samples, s.n)

		s.samples = nil
		s.n++
	}
	return nil
}

// StepsWritten ...
func (s *SampleWriter) StepsWritten() int {
	return int(atomic.LoadInt32(&s.steps))
}

func (s *SampleWriter) flushInternal(samples []Sample, n int64) error {
	for i, sm := range samples {
		if sm.X.Frames != samples[0].X.Frames || sm.X.Bins != samples[0].X.Bins {
			return errors.Errorf(
				"expected all samples shaped [%d %d] but got [%d %d] for sample %d",
				samples[0].X.Bins, samples[0].X.Frames, sm.X.Bins, sm.X.Frames, i)
		}
	}

	tmpfile, err := ioutil.TempFile(s.tmpdir, "samplewriter")
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(tmpfile)
	enc := gob.NewEncoder(gz)
	for _, sm := range samples {
		if err := enc.Encode(sm); err != nil {
			return err
		}
	}

	if err := gz.Close(); err != nil {
		return err
	}
	if err := tmpfile.Close(); err != nil {
		return err
	}

	fn := filepath.Join(s.dir, fmt.Sprintf("part-%05d.gob.gz", n))
	err = os.Rename(tmpfile.Name(), fn)
	if err != nil {
		// You need to copy if source and destination are not in the same partition
		if terr, ok := err.(*os.LinkError); ok && terr.Err == syscall.EXDEV {
			err = copyFile(tmpfile.Name(), fn)
		}
		if err != nil {
			return err
		}
	}

	log.Printf("%s is ready", fn)
	atomic.AddInt32(&s.steps, int32(s.stepsPerFile))
	return nil
}

// ReadSamples streams every sample in a part file to the handler.
func ReadSamples(path string, handler func(Sample) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "error opening gzip stream for %s", path)
	}
	defer gz.Close()

	dec := gob.NewDecoder(gz)
	for {
		var sm Sample
		err := dec.Decode(&sm)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "error decoding sample from %s", path)
		}
		if err := handler(sm); err != nil {
			return err
		}
	}
}

func copyFile(source, target string) error {
	sourceFileStat, err := os.Stat(source)
	if err != nil {
		return err
	}

	if !sourceFileStat.Mode().IsRegular() {
		return errors.Errorf("%s is not a regular file", source)
	}

	src, err := os.Open(source)
	if err != nil {
		return err
	}
	defer src.Close()

	destination, err := os.Create(target)
	if err != nil {
		return err
	}
	defer destination.Close()
	_, err = io.Copy(destination, src)
	return err
}
