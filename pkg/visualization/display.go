package visualization

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"spacetimeview/internal/models"
)

// Status carries the auxiliary indicators shown alongside the rendered
// plane: the active view, the sweep position and the playback rate.
type Status struct {
	View       models.View
	Depth      int
	DepthRange int

	// PlanePosition is the depth normalized to [0, 1]
	PlanePosition float64

	// Rate is the current playback rate in frames per second
	Rate float64
}

// Display is a surface the session renders the current slice to
type Display interface {
	Render(img image.Image, st Status) error
}

// PreviewDisplay renders each slice as a PNG file at a fixed path,
// replacing it atomically so an external viewer can follow playback.
type PreviewDisplay struct {
	path     string
	maxWidth int
	logger   *slog.Logger
}

// NewPreviewDisplay creates a preview display writing to path.
// Images wider than maxWidth are downscaled; maxWidth <= 0 disables
// scaling.
func NewPreviewDisplay(path string, maxWidth int, logger *slog.Logger) *PreviewDisplay {
	return &PreviewDisplay{path: path, maxWidth: maxWidth, logger: logger}
}

// Render writes the image to the preview path
func (d *PreviewDisplay) Render(img image.Image, st Status) error {
	if d.maxWidth > 0 && img.Bounds().Dx() > d.maxWidth {
		img = scaleToWidth(img, d.maxWidth)
	}

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating preview directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".preview-*.png")
	if err != nil {
		return fmt.Errorf("creating preview temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding preview: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("replacing preview: %w", err)
	}

	xl, yl := st.View.AxisLabels()
	d.logger.Debug("rendered slice",
		"view", st.View.Name(),
		"axes", xl+"/"+yl,
		"depth", st.Depth,
		"range", st.DepthRange,
		"position", st.PlanePosition,
	)
	return nil
}

// scaleToWidth downscales img to the given width, preserving aspect
func scaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// LogDisplay discards the image and only logs playback progress.
// Used when no preview path is configured.
type LogDisplay struct {
	logger *slog.Logger
}

// NewLogDisplay creates a log-only display
func NewLogDisplay(logger *slog.Logger) *LogDisplay {
	return &LogDisplay{logger: logger}
}

func (d *LogDisplay) Render(img image.Image, st Status) error {
	d.logger.Debug("frame",
		"view", st.View.Name(),
		"depth", st.Depth,
		"range", st.DepthRange,
		"rate", st.Rate,
	)
	return nil
}
