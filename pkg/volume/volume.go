// Package volume builds the normalized space-time volume from a sequence
// of decoded media frames. The volume is a 4D array indexed (t, y, x, c)
// stored flat in row-major order, with every channel independently
// rescaled to the [0, 1] range.
package volume

import (
	"errors"
	"fmt"
	"image"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"spacetimeview/internal/models"
)

// Channels is the number of color channels in every volume.
// Frames are decoded to RGB before stacking.
const Channels = 3

// ErrNoFrames is returned when a volume is built from an empty sequence.
var ErrNoFrames = errors.New("no frames to build volume from")

// Volume is an immutable 4D space-time volume of shape (T, H, W, C).
// All values lie in [0, 1] after per-channel normalization.
type Volume struct {
	// data holds the voxel values flat in (t, y, x, c) row-major order
	data []float64

	// dimensions of the volume
	t int
	h int
	w int
	c int
}

// ChannelStats summarizes one channel of the source data before
// normalization. It is reported at load time.
type ChannelStats struct {
	// Min and Max are the raw extrema across all (t, y, x)
	Min float64
	Max float64

	// Mean and StdDev describe the raw value distribution
	Mean   float64
	StdDev float64

	// Constant reports a degenerate channel (Min == Max); such a
	// channel is left unscaled and holds all zeros after building
	Constant bool
}

// Build stacks the given frames along a new leading time axis and
// normalizes each channel independently to [0, 1].
//
// All frames must share the dimensions of the first frame; a mismatch is
// an error rather than a silent truncation. An empty sequence is an error.
// The returned stats describe the raw (pre-normalization) channel data.
func Build(frames []models.Frame) (*Volume, []ChannelStats, error) {
	if len(frames) == 0 {
		return nil, nil, ErrNoFrames
	}

	bounds := frames[0].Image.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w == 0 || h == 0 {
		return nil, nil, fmt.Errorf("frame 0 has empty bounds %v", bounds)
	}

	v := &Volume{
		data: make([]float64, len(frames)*h*w*Channels),
		t:    len(frames),
		h:    h,
		w:    w,
		c:    Channels,
	}

	for t, frame := range frames {
		fb := frame.Image.Bounds()
		if fb.Dx() != w || fb.Dy() != h {
			return nil, nil, fmt.Errorf("frame %d has dimensions %dx%d, expected %dx%d",
				t, fb.Dx(), fb.Dy(), w, h)
		}
		v.stackFrame(t, frame.Image)
	}

	stats := v.normalize()
	return v, stats, nil
}

// stackFrame copies one frame into the volume at time index t.
// Color values are reduced from 16-bit to the 0-255 range so the raw
// volume matches the 8-bit source data.
func (v *Volume) stackFrame(t int, img image.Image) {
	bounds := img.Bounds()
	for y := 0; y < v.h; y++ {
		for x := 0; x < v.w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := v.index(t, y, x, 0)
			v.data[idx] = float64(r >> 8)
			v.data[idx+1] = float64(g >> 8)
			v.data[idx+2] = float64(b >> 8)
		}
	}
}

// normalize rescales each channel independently so its minimum maps to 0
// and its maximum to 1. A constant channel is only shifted to zero.
func (v *Volume) normalize() []ChannelStats {
	stats := make([]ChannelStats, v.c)
	scratch := make([]float64, v.t*v.h*v.w)

	for c := 0; c < v.c; c++ {
		for i := range scratch {
			scratch[i] = v.data[i*v.c+c]
		}

		min := floats.Min(scratch)
		max := floats.Max(scratch)
		stats[c] = ChannelStats{
			Min:      min,
			Max:      max,
			Mean:     stat.Mean(scratch, nil),
			StdDev:   stat.StdDev(scratch, nil),
			Constant: max <= min,
		}

		if max > min {
			scale := 1 / (max - min)
			for i := range scratch {
				v.data[i*v.c+c] = (scratch[i] - min) * scale
			}
		} else {
			for i := range scratch {
				v.data[i*v.c+c] = scratch[i] - min
			}
		}
	}

	return stats
}

// At returns the voxel value at (t, y, x, c). Indices must be in range.
func (v *Volume) At(t, y, x, c int) float64 {
	return v.data[v.index(t, y, x, c)]
}

func (v *Volume) index(t, y, x, c int) int {
	return ((t*v.h+y)*v.w+x)*v.c + c
}

// Dims returns the volume dimensions as (T, H, W, C).
func (v *Volume) Dims() (t, h, w, c int) {
	return v.t, v.h, v.w, v.c
}

// T returns the number of frames along the time axis.
func (v *Volume) T() int { return v.t }

// H returns the frame height in pixels.
func (v *Volume) H() int { return v.h }

// W returns the frame width in pixels.
func (v *Volume) W() int { return v.w }

// C returns the number of channels.
func (v *Volume) C() int { return v.c }
