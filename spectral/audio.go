package spectral

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/fsoeltoni/vocal-remover/errors"
	"github.com/mewkiz/flac"
)

// resampleQuality trades speed for interpolation accuracy; beep documents
// 1..64 with 4 as a reasonable default.
const resampleQuality = 4

// LoadAudio decodes the file at path (wav or flac), resamples it to
// sampleRate if needed, and returns one sample slice per channel. Mono
// sources come back duplicated to stereo.
func LoadAudio(path string, sampleRate int) ([][]float64, error) {
	var samples [][2]float64
	var native int
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		samples, native, err = decodeWAV(path)
	case ".flac":
		samples, native, err = decodeFLAC(path)
	default:
		err = errors.Errorf("unsupported audio format: %s", path)
	}
	if err != nil {
		return nil, err
	}

	if native != sampleRate {
		samples = resample(samples, native, sampleRate)
	}

	left := make([]float64, len(samples))
	right := make([]float64, len(samples))
	for i, s := range samples {
		left[i], right[i] = s[0], s[1]
	}
	return [][]float64{left, right}, nil
}

func decodeWAV(path string) ([][2]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	stream, format, err := wav.Decode(f)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "error decoding %s", path)
	}
	defer stream.Close()

	return drain(stream), int(format.SampleRate), nil
}

func decodeFLAC(path string) ([][2]float64, int, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "error decoding %s", path)
	}
	defer stream.Close()

	div := float64(int64(1) << (stream.Info.BitsPerSample - 1))
	var samples [][2]float64
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, errors.Wrapf(err, "error reading frame from %s", path)
		}
		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			var s [2]float64
			s[0] = float64(frame.Subframes[0].Samples[i]) / div
			if len(frame.Subframes) > 1 {
				s[1] = float64(frame.Subframes[1].Samples[i]) / div
			} else {
				s[1] = s[0]
			}
			samples = append(samples, s)
		}
	}
	return samples, int(stream.Info.SampleRate), nil
}

func resample(samples [][2]float64, from, to int) [][2]float64 {
	r := beep.Resample(resampleQuality, beep.SampleRate(from), beep.SampleRate(to), &sliceStreamer{samples: samples})
	return drain(r)
}

func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

// WriteWAV writes the waveform (one slice per channel, all equal length)
// as a 16-bit stereo wav file.
func WriteWAV(path string, wave [][]float64, sampleRate int) error {
	if len(wave) == 0 || len(wave[0]) == 0 {
		return errors.Errorf("empty waveform")
	}
	left := wave[0]
	right := left
	if len(wave) > 1 {
		right = wave[1]
	}
	if len(left) != len(right) {
		return errors.Errorf("channel lengths differ: %d vs %d", len(left), len(right))
	}

	samples := make([][2]float64, len(left))
	for i := range samples {
		samples[i] = [2]float64{left[i], right[i]}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(f, &sliceStreamer{samples: samples}, format); err != nil {
		return errors.Wrapf(err, "error encoding %s", path)
	}
	return nil
}

// sliceStreamer adapts an in-memory sample buffer to beep.Streamer.
type sliceStreamer struct {
	samples [][2]float64
	pos     int
}

func (s *sliceStreamer) Stream(out [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := copy(out, s.samples[s.pos:])
	s.pos += n
	return n, true
}

func (s *sliceStreamer) Err() error { return nil }
