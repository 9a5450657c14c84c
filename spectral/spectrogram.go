// Package spectral holds the time-frequency representations the separation
// pipeline operates on: complex spectrograms as produced by the STFT, and
// their magnitude view consumed by the model.
package spectral

import (
	"math"
	"math/cmplx"

	"github.com/fsoeltoni/vocal-remover/errors"
)

// Spectrogram is a complex-valued time-frequency tensor laid out
// channel-major as [channels][bins][frames].
type Spectrogram struct {
	Channels int
	Bins     int
	Frames   int
	Data     []complex64
}

// NewSpectrogram allocates a zeroed spectrogram with the given shape.
func NewSpectrogram(channels, bins, frames int) *Spectrogram {
	return &Spectrogram{
		Channels: channels,
		Bins:     bins,
		Frames:   frames,
		Data:     make([]complex64, channels*bins*frames),
	}
}

// At returns the value at (channel, bin, frame).
func (s *Spectrogram) At(c, b, t int) complex64 {
	return s.Data[(c*s.Bins+b)*s.Frames+t]
}

// Set stores the value at (channel, bin, frame).
func (s *Spectrogram) Set(c, b, t int, v complex64) {
	s.Data[(c*s.Bins+b)*s.Frames+t] = v
}

// Clone returns a deep copy.
func (s *Spectrogram) Clone() *Spectrogram {
	out := NewSpectrogram(s.Channels, s.Bins, s.Frames)
	copy(out.Data, s.Data)
	return out
}

// Max returns the largest magnitude over all entries.
func (s *Spectrogram) Max() float64 {
	var max float64
	for _, v := range s.Data {
		if a := cmplx.Abs(complex128(v)); a > max {
			max = a
		}
	}
	return max
}

// Scale multiplies every entry by the real coefficient, in place.
func (s *Spectrogram) Scale(coef float64) {
	k := complex64(complex(coef, 0))
	for i := range s.Data {
		s.Data[i] *= k
	}
}

// PadTime returns a copy zero-padded on the time axis by (left, right).
func (s *Spectrogram) PadTime(left, right int) *Spectrogram {
	out := NewSpectrogram(s.Channels, s.Bins, s.Frames+left+right)
	for c := 0; c < s.Channels; c++ {
		for b := 0; b < s.Bins; b++ {
			src := s.Data[(c*s.Bins+b)*s.Frames : (c*s.Bins+b)*s.Frames+s.Frames]
			dst := out.Data[(c*out.Bins+b)*out.Frames+left:]
			copy(dst, src)
		}
	}
	return out
}

// CropTime returns a copy of the window [start, start+width) on the time
// axis. Frames past the end of s read as zero.
func (s *Spectrogram) CropTime(start, width int) *Spectrogram {
	out := NewSpectrogram(s.Channels, s.Bins, width)
	for c := 0; c < s.Channels; c++ {
		for b := 0; b < s.Bins; b++ {
			row := (c*s.Bins + b) * s.Frames
			src := s.Data[row+start : row+s.Frames]
			dst := out.Data[(c*out.Bins+b)*width : (c*out.Bins+b)*width+width]
			copy(dst, src)
		}
	}
	return out
}

// SwapChannels reverses the channel order in place.
func (s *Spectrogram) SwapChannels() {
	for c := 0; c < s.Channels/2; c++ {
		c2 := s.Channels - 1 - c
		for i := 0; i < s.Bins*s.Frames; i++ {
			a, b := c*s.Bins*s.Frames+i, c2*s.Bins*s.Frames+i
			s.Data[a], s.Data[b] = s.Data[b], s.Data[a]
		}
	}
}

// Downmix overwrites every channel with the mean across channels, in place.
// The channel count is unchanged.
func (s *Spectrogram) Downmix() {
	if s.Channels < 2 {
		return
	}
	size := s.Bins * s.Frames
	inv := complex64(complex(1/float64(s.Channels), 0))
	for i := 0; i < size; i++ {
		var sum complex64
		for c := 0; c < s.Channels; c++ {
			sum += s.Data[c*size+i]
		}
		mean := sum * inv
		for c := 0; c < s.Channels; c++ {
			s.Data[c*size+i] = mean
		}
	}
}

// Lerp overwrites s with lam*s + (1-lam)*other, in place. Shapes must match.
func (s *Spectrogram) Lerp(other *Spectrogram, lam float64) error {
	if len(s.Data) != len(other.Data) {
		return errors.Errorf("shape mismatch: %d vs %d entries", len(s.Data), len(other.Data))
	}
	a := complex64(complex(lam, 0))
	b := complex64(complex(1-lam, 0))
	for i := range s.Data {
		s.Data[i] = a*s.Data[i] + b*other.Data[i]
	}
	return nil
}

// Magnitude returns the magnitude view, discarding phase.
func (s *Spectrogram) Magnitude() *Magnitude {
	out := NewMagnitude(s.Channels, s.Bins, s.Frames)
	for i, v := range s.Data {
		out.Data[i] = float32(cmplx.Abs(complex128(v)))
	}
	return out
}

// Phase returns a unit-magnitude spectrogram carrying only the phase of s.
func (s *Spectrogram) Phase() *Spectrogram {
	out := NewSpectrogram(s.Channels, s.Bins, s.Frames)
	for i, v := range s.Data {
		a := cmplx.Abs(complex128(v))
		if a == 0 {
			out.Data[i] = 1
			continue
		}
		out.Data[i] = complex64(complex128(v) / complex(a, 0))
	}
	return out
}

// MulMagnitude returns the complex spectrogram mag * phase, where s carries
// the phase. Shapes must match.
func (s *Spectrogram) MulMagnitude(mag *Magnitude) (*Spectrogram, error) {
	if len(s.Data) != len(mag.Data) {
		return nil, errors.Errorf("shape mismatch: %d vs %d entries", len(s.Data), len(mag.Data))
	}
	out := NewSpectrogram(s.Channels, s.Bins, s.Frames)
	for i, v := range s.Data {
		out.Data[i] = v * complex(mag.Data[i], 0)
	}
	return out, nil
}

// Magnitude is a real-valued time-frequency tensor laid out channel-major
// as [channels][bins][frames].
type Magnitude struct {
	Channels int
	Bins     int
	Frames   int
	Data     []float32
}

// NewMagnitude allocates a zeroed magnitude tensor with the given shape.
func NewMagnitude(channels, bins, frames int) *Magnitude {
	return &Magnitude{
		Channels: channels,
		Bins:     bins,
		Frames:   frames,
		Data:     make([]float32, channels*bins*frames),
	}
}

// At returns the value at (channel, bin, frame).
func (m *Magnitude) At(c, b, t int) float32 {
	return m.Data[(c*m.Bins+b)*m.Frames+t]
}

// Set stores the value at (channel, bin, frame).
func (m *Magnitude) Set(c, b, t int, v float32) {
	m.Data[(c*m.Bins+b)*m.Frames+t] = v
}

// Clone returns a deep copy.
func (m *Magnitude) Clone() *Magnitude {
	out := NewMagnitude(m.Channels, m.Bins, m.Frames)
	copy(out.Data, m.Data)
	return out
}

// Max returns the largest entry.
func (m *Magnitude) Max() float64 {
	var max float64
	for _, v := range m.Data {
		if f := float64(v); f > max {
			max = f
		}
	}
	return max
}

// Scale multiplies every entry by coef, in place.
func (m *Magnitude) Scale(coef float64) {
	k := float32(coef)
	for i := range m.Data {
		m.Data[i] *= k
	}
}

// PadTime returns a copy zero-padded on the time axis by (left, right).
func (m *Magnitude) PadTime(left, right int) *Magnitude {
	out := NewMagnitude(m.Channels, m.Bins, m.Frames+left+right)
	for c := 0; c < m.Channels; c++ {
		for b := 0; b < m.Bins; b++ {
			src := m.Data[(c*m.Bins+b)*m.Frames : (c*m.Bins+b)*m.Frames+m.Frames]
			dst := out.Data[(c*out.Bins+b)*out.Frames+left:]
			copy(dst, src)
		}
	}
	return out
}

// CropTime returns a copy of the window [start, start+width) on the time
// axis. Frames past the end of m read as zero.
func (m *Magnitude) CropTime(start, width int) *Magnitude {
	out := NewMagnitude(m.Channels, m.Bins, width)
	for c := 0; c < m.Channels; c++ {
		for b := 0; b < m.Bins; b++ {
			row := (c*m.Bins + b) * m.Frames
			src := m.Data[row+start : row+m.Frames]
			dst := out.Data[(c*out.Bins+b)*width : (c*out.Bins+b)*width+width]
			copy(dst, src)
		}
	}
	return out
}

// ConcatTime concatenates the given tensors along the time axis. All inputs
// must agree on channels and bins.
func ConcatTime(parts []*Magnitude) (*Magnitude, error) {
	if len(parts) == 0 {
		return nil, errors.Errorf("nothing to concatenate")
	}
	channels, bins := parts[0].Channels, parts[0].Bins
	var frames int
	for _, p := range parts {
		if p.Channels != channels || p.Bins != bins {
			return nil, errors.Errorf(
				"cannot concatenate [%d %d %d] onto [%d %d ...]",
				p.Channels, p.Bins, p.Frames, channels, bins)
		}
		frames += p.Frames
	}
	out := NewMagnitude(channels, bins, frames)
	var off int
	for _, p := range parts {
		for c := 0; c < channels; c++ {
			for b := 0; b < bins; b++ {
				src := p.Data[(c*bins+b)*p.Frames : (c*bins+b)*p.Frames+p.Frames]
				dst := out.Data[(c*bins+b)*frames+off:]
				copy(dst, src)
			}
		}
		off += p.Frames
	}
	return out, nil
}

// Add accumulates other into m, in place. Shapes must match.
func (m *Magnitude) Add(other *Magnitude) error {
	if len(m.Data) != len(other.Data) {
		return errors.Errorf("shape mismatch: %d vs %d entries", len(m.Data), len(other.Data))
	}
	for i, v := range other.Data {
		m.Data[i] += v
	}
	return nil
}

// ClippedResidual returns max(m - other, 0) elementwise. Shapes must match.
func (m *Magnitude) ClippedResidual(other *Magnitude) (*Magnitude, error) {
	if len(m.Data) != len(other.Data) {
		return nil, errors.Errorf("shape mismatch: %d vs %d entries", len(m.Data), len(other.Data))
	}
	out := NewMagnitude(m.Channels, m.Bins, m.Frames)
	for i, v := range m.Data {
		if d := v - other.Data[i]; d > 0 {
			out.Data[i] = d
		}
	}
	return out, nil
}

// Equal reports whether the two tensors have identical shape and entries
// within the given absolute tolerance.
func (m *Magnitude) Equal(other *Magnitude, tol float64) bool {
	if m.Channels != other.Channels || m.Bins != other.Bins || m.Frames != other.Frames {
		return false
	}
	for i, v := range m.Data {
		if math.Abs(float64(v)-float64(other.Data[i])) > tol {
			return false
		}
	}
	return true
}
