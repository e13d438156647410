// Package visualization projects the space-time volume onto 2D planes
// for display and export, and defines the display surface abstraction
// the playback session renders to.
package visualization

import (
	"fmt"
	"image"
	"image/color"

	"spacetimeview/internal/models"
	"spacetimeview/pkg/volume"
)

// Plane is a 2D-plus-channel projection of the volume, indexed
// (row, col, channel) with values in [0, 1].
type Plane struct {
	// Data holds the plane values flat in row-major order
	Data []float64

	// Rows and Cols are the plane dimensions
	Rows int
	Cols int

	// Channels is the number of color channels per cell
	Channels int
}

// At returns the plane value at (row, col, channel)
func (p *Plane) At(row, col, c int) float64 {
	return p.Data[(row*p.Cols+col)*p.Channels+c]
}

// Image converts the plane to an 8-bit RGBA image, mapping [0, 1]
// values to the 0-255 range with clamping
func (p *Plane) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.Cols, p.Rows))
	for row := 0; row < p.Rows; row++ {
		for col := 0; col < p.Cols; col++ {
			base := (row*p.Cols + col) * p.Channels
			img.SetRGBA(col, row, color.RGBA{
				R: to8bit(p.Data[base]),
				G: to8bit(p.Data[base+1]),
				B: to8bit(p.Data[base+2]),
				A: 255,
			})
		}
	}
	return img
}

func to8bit(v float64) uint8 {
	scaled := v * 255
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled + 0.5)
}

// Slicer extracts axis-aligned 2D slices from an immutable volume.
// Every slice is a pure projection recomputed on demand; the slicer
// holds no state beyond the volume reference.
type Slicer struct {
	vol *volume.Volume
}

// NewSlicer creates a slicer over the given volume
func NewSlicer(vol *volume.Volume) *Slicer {
	return &Slicer{vol: vol}
}

// Volume returns the underlying volume
func (s *Slicer) Volume() *volume.Volume {
	return s.vol
}

// DepthRange returns the number of valid depth indices for the view:
// T frames for X-Y-T, W columns for Y-T-X, H rows for T-X-Y
func (s *Slicer) DepthRange(view models.View) int {
	switch view {
	case models.ViewYTX:
		return s.vol.W()
	case models.ViewTXY:
		return s.vol.H()
	default:
		return s.vol.T()
	}
}

// Slice extracts the 2D plane at the given depth index along the
// view's depth axis:
//
//	X-Y-T: the original frame at time t, shape (H, W)
//	Y-T-X: column x held fixed, shape (T, H)
//	T-X-Y: row y held fixed, shape (T, W)
func (s *Slicer) Slice(view models.View, depth int) (*Plane, error) {
	if depth < 0 || depth >= s.DepthRange(view) {
		return nil, fmt.Errorf("depth index %d out of range [0, %d) for view %s",
			depth, s.DepthRange(view), view)
	}

	_, h, w, c := s.vol.Dims()

	switch view {
	case models.ViewYTX:
		// Y-T plane at fixed column x = depth
		p := newPlane(s.vol.T(), h, c)
		for t := 0; t < s.vol.T(); t++ {
			for y := 0; y < h; y++ {
				for ch := 0; ch < c; ch++ {
					p.set(t, y, ch, s.vol.At(t, y, depth, ch))
				}
			}
		}
		return p, nil

	case models.ViewTXY:
		// T-X plane at fixed row y = depth
		p := newPlane(s.vol.T(), w, c)
		for t := 0; t < s.vol.T(); t++ {
			for x := 0; x < w; x++ {
				for ch := 0; ch < c; ch++ {
					p.set(t, x, ch, s.vol.At(t, depth, x, ch))
				}
			}
		}
		return p, nil

	default:
		// The original frame at time t = depth
		p := newPlane(h, w, c)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				for ch := 0; ch < c; ch++ {
					p.set(y, x, ch, s.vol.At(depth, y, x, ch))
				}
			}
		}
		return p, nil
	}
}

// PlanePosition returns the depth index normalized to [0, 1], used to
// position the sweep marker. A single-step view reports 0.
func (s *Slicer) PlanePosition(view models.View, depth int) float64 {
	n := s.DepthRange(view)
	if n <= 1 {
		return 0
	}
	return float64(depth) / float64(n-1)
}

func newPlane(rows, cols, channels int) *Plane {
	return &Plane{
		Data:     make([]float64, rows*cols*channels),
		Rows:     rows,
		Cols:     cols,
		Channels: channels,
	}
}

func (p *Plane) set(row, col, c int, v float64) {
	p.Data[(row*p.Cols+col)*p.Channels+c] = v
}
