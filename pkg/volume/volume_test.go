package volume

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"spacetimeview/internal/models"
)

// makeFrame creates an RGBA test frame with the given dimensions,
// filling each pixel from the pattern function
func makeFrame(t *testing.T, index, width, height int, pattern func(x, y int) color.RGBA) models.Frame {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, pattern(x, y))
		}
	}
	return models.Frame{Image: img, Index: index}
}

// uniformFrame creates a frame where every pixel has the same color
func uniformFrame(t *testing.T, index, width, height int, c color.RGBA) models.Frame {
	return makeFrame(t, index, width, height, func(x, y int) color.RGBA { return c })
}

func TestBuildShape(t *testing.T) {
	frames := []models.Frame{
		uniformFrame(t, 0, 4, 3, color.RGBA{R: 0, G: 0, B: 0, A: 255}),
		uniformFrame(t, 1, 4, 3, color.RGBA{R: 255, G: 255, B: 255, A: 255}),
	}

	vol, _, err := Build(frames)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	tt, h, w, c := vol.Dims()
	if tt != 2 || h != 3 || w != 4 || c != Channels {
		t.Errorf("Expected dims (2, 3, 4, %d), got (%d, %d, %d, %d)", Channels, tt, h, w, c)
	}
}

func TestBuildEmpty(t *testing.T) {
	_, _, err := Build(nil)
	if !errors.Is(err, ErrNoFrames) {
		t.Errorf("Expected ErrNoFrames for empty input, got %v", err)
	}
}

func TestBuildMismatchedFrames(t *testing.T) {
	frames := []models.Frame{
		uniformFrame(t, 0, 4, 4, color.RGBA{A: 255}),
		uniformFrame(t, 1, 4, 5, color.RGBA{A: 255}),
	}

	_, _, err := Build(frames)
	if err == nil {
		t.Fatal("Expected error for mismatched frame dimensions, got nil")
	}
}

// TestNormalization verifies that each channel is independently rescaled
// so its minimum maps to 0.0 and its maximum to 1.0
func TestNormalization(t *testing.T) {
	// Red spans [10, 210], green [0, 100], blue is constant 40
	frames := []models.Frame{
		makeFrame(t, 0, 2, 1, func(x, y int) color.RGBA {
			if x == 0 {
				return color.RGBA{R: 10, G: 0, B: 40, A: 255}
			}
			return color.RGBA{R: 60, G: 25, B: 40, A: 255}
		}),
		makeFrame(t, 1, 2, 1, func(x, y int) color.RGBA {
			if x == 0 {
				return color.RGBA{R: 110, G: 50, B: 40, A: 255}
			}
			return color.RGBA{R: 210, G: 100, B: 40, A: 255}
		}),
	}

	vol, stats, err := Build(frames)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	expected := [][]float64{
		// t=0: (x=0) r=10 g=0 b=40, (x=1) r=60 g=25 b=40
		{0.0, 0.0, 0.0},
		{0.25, 0.25, 0.0},
		// t=1: (x=0) r=110 g=50 b=40, (x=1) r=210 g=100 b=40
		{0.5, 0.5, 0.0},
		{1.0, 1.0, 0.0},
	}

	i := 0
	for tt := 0; tt < 2; tt++ {
		for x := 0; x < 2; x++ {
			for c := 0; c < 3; c++ {
				got := vol.At(tt, 0, x, c)
				want := expected[i][c]
				if math.Abs(got-want) > 1e-12 {
					t.Errorf("At(%d, 0, %d, %d) = %v, want %v", tt, x, c, got, want)
				}
			}
			i++
		}
	}

	// Channel extrema after normalization
	for c := 0; c < 2; c++ {
		min, max := math.Inf(1), math.Inf(-1)
		for tt := 0; tt < 2; tt++ {
			for x := 0; x < 2; x++ {
				v := vol.At(tt, 0, x, c)
				min = math.Min(min, v)
				max = math.Max(max, v)
			}
		}
		if min != 0.0 || max != 1.0 {
			t.Errorf("Channel %d normalized range [%v, %v], want [0, 1]", c, min, max)
		}
	}

	if stats[2].Constant != true {
		t.Error("Expected blue channel to be reported constant")
	}
	if stats[0].Min != 10 || stats[0].Max != 210 {
		t.Errorf("Expected red raw range [10, 210], got [%v, %v]", stats[0].Min, stats[0].Max)
	}
}

// TestConstantChannel verifies that a degenerate channel (min == max)
// ends up all zeros instead of being scaled
func TestConstantChannel(t *testing.T) {
	frames := []models.Frame{
		uniformFrame(t, 0, 3, 3, color.RGBA{R: 128, G: 128, B: 128, A: 255}),
		uniformFrame(t, 1, 3, 3, color.RGBA{R: 128, G: 128, B: 128, A: 255}),
	}

	vol, stats, err := Build(frames)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for c := 0; c < 3; c++ {
		if !stats[c].Constant {
			t.Errorf("Expected channel %d to be constant", c)
		}
		for tt := 0; tt < 2; tt++ {
			for y := 0; y < 3; y++ {
				for x := 0; x < 3; x++ {
					if v := vol.At(tt, y, x, c); v != 0.0 {
						t.Fatalf("Constant channel %d has value %v at (%d,%d,%d), want 0",
							c, v, tt, y, x)
					}
				}
			}
		}
	}
}

func TestChannelStats(t *testing.T) {
	// Red alternates 0 and 200 over four pixels: mean 100
	frames := []models.Frame{
		makeFrame(t, 0, 2, 2, func(x, y int) color.RGBA {
			if (x+y)%2 == 0 {
				return color.RGBA{R: 0, A: 255}
			}
			return color.RGBA{R: 200, A: 255}
		}),
	}

	_, stats, err := Build(frames)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if stats[0].Mean != 100 {
		t.Errorf("Expected red mean 100, got %v", stats[0].Mean)
	}
	if stats[0].Min != 0 || stats[0].Max != 200 {
		t.Errorf("Expected red range [0, 200], got [%v, %v]", stats[0].Min, stats[0].Max)
	}
	if stats[0].StdDev == 0 {
		t.Error("Expected nonzero stddev for alternating channel")
	}
}
