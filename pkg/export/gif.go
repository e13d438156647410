// Package export writes the slice sequence of a view out as a single
// animated GIF at a caller-chosen frame rate.
package export

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"spacetimeview/internal/models"
	"spacetimeview/pkg/visualization"
)

// DefaultDir is the export directory relative to the working directory
const DefaultDir = "exports"

// Exporter encodes slice sequences as animated GIFs
type Exporter struct {
	// Dir is the directory exported files are written to.
	// It is created on demand.
	Dir string

	Logger *slog.Logger
}

// NewExporter creates an exporter writing into dir (DefaultDir if empty)
func NewExporter(dir string, logger *slog.Logger) *Exporter {
	if dir == "" {
		dir = DefaultDir
	}
	return &Exporter{Dir: dir, Logger: logger}
}

// Filename returns the export file name for a view and rate:
// <base>_<view-lowercased>_<rounded-rate>fps.gif
func (e *Exporter) Filename(base string, view models.View, rate float64) string {
	return fmt.Sprintf("%s_%s_%dfps.gif",
		base, strings.ToLower(view.Name()), int(math.Round(rate)))
}

// ExportView sweeps the full depth range of the view, encodes every
// slice as one GIF frame and writes the result under the export
// directory. It returns the written file path.
func (e *Exporter) ExportView(s *visualization.Slicer, view models.View, base string, rate float64) (string, error) {
	if rate <= 0 {
		return "", fmt.Errorf("export rate must be positive, got %v", rate)
	}

	depthRange := s.DepthRange(view)
	e.Logger.Info("exporting view",
		"view", view.Name(),
		"frames", depthRange,
		"rate", rate,
	)

	// Per-frame duration in milliseconds, then GIF ticks (10ms units)
	durationMS := int(math.Round(1000 / rate))
	ticks := durationMS / 10
	if ticks < 1 {
		ticks = 1
	}

	out := &gif.GIF{
		Image: make([]*image.Paletted, 0, depthRange),
		Delay: make([]int, 0, depthRange),
	}

	for depth := 0; depth < depthRange; depth++ {
		plane, err := s.Slice(view, depth)
		if err != nil {
			return "", fmt.Errorf("slicing frame %d: %w", depth, err)
		}
		out.Image = append(out.Image, quantize(plane.Image()))
		out.Delay = append(out.Delay, ticks)
	}

	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(e.Dir, e.Filename(base, view, rate))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}

	if err := gif.EncodeAll(f, out); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encoding GIF: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	e.Logger.Info("export complete", "path", path)
	return path, nil
}

// quantize reduces an RGBA frame to the 256-color Plan9 palette with
// Floyd-Steinberg dithering, as required by the GIF format
func quantize(src *image.RGBA) *image.Paletted {
	dst := image.NewPaletted(src.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(dst, src.Bounds(), src, image.Point{})
	return dst
}
