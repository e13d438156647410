// Package media decodes video files, animated GIFs and still images
// into ordered RGB frame sequences for volume construction.
//
// GIFs and stills are decoded in-process with the standard image codecs.
// Everything else is piped through ffmpeg as raw rgb24 frames, with
// ffprobe supplying the stream geometry and source frame rate.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"spacetimeview/internal/models"
)

// DefaultFPS is used when the container carries no usable frame rate
const DefaultFPS = 20

// Decoder loads media files into frame sequences
type Decoder struct {
	// DefaultFPS is the fallback playback rate when none can be
	// derived from the source
	DefaultFPS float64

	// MaxFPS bounds the detected source rate; rates outside
	// (0, MaxFPS] are replaced by DefaultFPS
	MaxFPS float64

	Logger *slog.Logger
}

// NewDecoder creates a decoder with the given fallback and ceiling rates
func NewDecoder(defaultFPS, maxFPS float64, logger *slog.Logger) *Decoder {
	if defaultFPS <= 0 {
		defaultFPS = DefaultFPS
	}
	return &Decoder{DefaultFPS: defaultFPS, MaxFPS: maxFPS, Logger: logger}
}

// Load decodes the file at path into an ordered frame sequence.
// It fails if the file cannot be decoded or yields zero frames.
func (d *Decoder) Load(ctx context.Context, path string) ([]models.Frame, models.SourceInfo, error) {
	info := models.SourceInfo{
		Path:     path,
		BaseName: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FPS:      d.DefaultFPS,
	}

	if _, err := os.Stat(path); err != nil {
		return nil, info, fmt.Errorf("media file %q: %w", path, err)
	}

	var (
		frames []models.Frame
		fps    float64
		err    error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gif":
		frames, fps, err = d.decodeGIF(path)
	case ".png", ".jpg", ".jpeg":
		frames, err = d.decodeStill(path)
	default:
		frames, fps, err = d.decodeVideo(ctx, path)
	}
	if err != nil {
		return nil, info, err
	}
	if len(frames) == 0 {
		return nil, info, fmt.Errorf("no frames decoded from %q", path)
	}

	if fps > 0 && (d.MaxFPS <= 0 || fps <= d.MaxFPS) {
		info.FPS = fps
		info.FPSDetected = true
	}

	bounds := frames[0].Image.Bounds()
	info.FrameCount = len(frames)
	info.Width = bounds.Dx()
	info.Height = bounds.Dy()

	d.Logger.Info("media loaded",
		"path", path,
		"frames", info.FrameCount,
		"width", info.Width,
		"height", info.Height,
		"fps", info.FPS,
		"fpsDetected", info.FPSDetected,
	)
	return frames, info, nil
}

// decodeGIF decodes all frames of an animated GIF, compositing each
// frame onto the logical screen so partial-rect frames come out whole.
// The reported rate comes from the first frame delay.
func (d *Decoder) decodeGIF(path string) ([]models.Frame, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding GIF %q: %w", path, err)
	}
	if len(g.Image) == 0 {
		return nil, 0, fmt.Errorf("GIF %q contains no frames", path)
	}

	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		screen = g.Image[0].Bounds()
	}

	canvas := image.NewRGBA(screen)
	var previous *image.RGBA

	frames := make([]models.Frame, 0, len(g.Image))
	for i, fr := range g.Image {
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			previous = cloneRGBA(canvas)
		}

		draw.Draw(canvas, fr.Bounds(), fr, fr.Bounds().Min, draw.Over)
		frames = append(frames, models.Frame{Image: cloneRGBA(canvas), Index: i})

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, fr.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			if previous != nil {
				canvas = previous
			}
		}
	}

	// GIF delays are in hundredths of a second
	var fps float64
	if len(g.Delay) > 0 && g.Delay[0] > 0 {
		fps = 100 / float64(g.Delay[0])
	}
	return frames, fps, nil
}

// decodeStill loads a single-frame source
func (d *Decoder) decodeStill(path string) ([]models.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %q: %w", path, err)
	}
	return []models.Frame{{Image: img, Index: 0}}, nil
}

// decodeVideo reads raw rgb24 frames from an ffmpeg pipe. The stream
// geometry and rate come from a prior ffprobe call.
func (d *Decoder) decodeVideo(ctx context.Context, path string) ([]models.Frame, float64, error) {
	width, height, fps, err := probeVideo(ctx, path)
	if err != nil {
		return nil, 0, err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, 0, err
	}
	if err := cmd.Start(); err != nil {
		return nil, 0, fmt.Errorf("starting ffmpeg: %w", err)
	}

	frameSize := width * height * 3
	buf := make([]byte, frameSize)

	var frames []models.Frame
	for {
		if _, err := io.ReadFull(stdout, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, 0, fmt.Errorf("reading ffmpeg output: %w", err)
		}
		frames = append(frames, models.Frame{
			Image: rgb24ToImage(buf, width, height),
			Index: len(frames),
		})
	}

	if err := cmd.Wait(); err != nil {
		return nil, 0, fmt.Errorf("ffmpeg failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return frames, fps, nil
}

// probeVideo asks ffprobe for the geometry and average frame rate of
// the first video stream
func probeVideo(ctx context.Context, path string) (width, height int, fps float64, err error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,avg_frame_rate",
		"-of", "csv=p=0",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	fields := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(fields) < 3 {
		return 0, 0, 0, fmt.Errorf("unexpected ffprobe output %q", strings.TrimSpace(string(out)))
	}

	width, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parsing width: %w", err)
	}
	height, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parsing height: %w", err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, 0, fmt.Errorf("invalid stream dimensions %dx%d", width, height)
	}

	fps = parseRate(fields[2])
	return width, height, fps, nil
}

// parseRate parses an ffprobe rational rate such as "30000/1001".
// Returns 0 when the rate is absent or degenerate.
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// rgb24ToImage converts one packed rgb24 frame to an RGBA image
func rgb24ToImage(data []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := y * width * 3
		dst := y * img.Stride
		for x := 0; x < width; x++ {
			img.Pix[dst] = data[src]
			img.Pix[dst+1] = data[src+1]
			img.Pix[dst+2] = data[src+2]
			img.Pix[dst+3] = 255
			src += 3
			dst += 4
		}
	}
	return img
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}
