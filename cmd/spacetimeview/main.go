package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"

	"spacetimeview/internal/models"
	"spacetimeview/pkg/config"
	"spacetimeview/pkg/export"
	"spacetimeview/pkg/media"
	"spacetimeview/pkg/session"
	"spacetimeview/pkg/visualization"
	"spacetimeview/pkg/volume"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Video, GIF or still image to load")
	configPath := flag.String("config", "spacetimeview.yaml", "Optional YAML configuration file")
	viewName := flag.String("view", "X-Y-T", "Initial view: X-Y-T, Y-T-X or T-X-Y")
	fpsOverride := flag.Float64("fps", 0, "Playback rate override (0 = use source rate)")
	exportOnly := flag.Bool("export", false, "Export the selected view and exit")
	previewPath := flag.String("preview", "", "Preview PNG path (overrides config)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose || cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	)

	initialView, err := models.ParseView(*viewName)
	if err != nil {
		logger.Error("invalid view", "error", err)
		os.Exit(1)
	}

	// Load media and build the space-time volume
	decoder := media.NewDecoder(cfg.Playback.DefaultFPS, cfg.Playback.MaxFPS, logger)
	frames, info, err := decoder.Load(ctx, *inputPath)
	if err != nil {
		logger.Error("failed to load media", "error", err)
		os.Exit(1)
	}

	vol, stats, err := volume.Build(frames)
	if err != nil {
		logger.Error("failed to build volume", "error", err)
		os.Exit(1)
	}

	t, h, w, c := vol.Dims()
	fmt.Printf("Media dimensions: Time=%d, Height=%d, Width=%d, Channels=%d\n", t, h, w, c)
	for i, st := range stats {
		logger.Debug("channel statistics",
			"channel", i,
			"min", st.Min,
			"max", st.Max,
			"mean", st.Mean,
			"stddev", st.StdDev,
			"constant", st.Constant,
		)
	}

	rate := info.FPS
	if *fpsOverride > 0 {
		rate = *fpsOverride
		if rate > cfg.Playback.MaxFPS {
			rate = cfg.Playback.MaxFPS
		}
	}
	fmt.Printf("Playback rate: %.1f FPS\n", rate)

	slicer := visualization.NewSlicer(vol)
	exporter := export.NewExporter(cfg.Export.Dir, logger)

	// One-shot export mode
	if *exportOnly {
		path, err := exporter.ExportView(slicer, initialView, info.BaseName, rate)
		if err != nil {
			logger.Error("export failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Export complete! Saved to %s at %.1f FPS\n", path, rate)
		return
	}

	// Interactive session
	preview := cfg.Preview.Path
	if *previewPath != "" {
		preview = *previewPath
	}
	var display visualization.Display
	if preview != "" {
		display = visualization.NewPreviewDisplay(preview, cfg.Preview.MaxWidth, logger)
		fmt.Printf("Rendering playback to %s\n", preview)
	} else {
		display = visualization.NewLogDisplay(logger)
	}

	sess := session.New(slicer, display, exporter, info, session.Options{
		InitialView: initialView,
		InitialRate: rate,
		MinRate:     cfg.Playback.MinFPS,
		MaxRate:     cfg.Playback.MaxFPS,
	}, logger)

	fmt.Println("Commands: view <X-Y-T|Y-T-X|T-X-Y>, rate <fps>, export, quit")

	cmds := make(chan session.Command)
	go readCommands(ctx, logger, cmds)

	if err := sess.Run(ctx, cmds); err != nil {
		logger.Error("session ended with error", "error", err)
		os.Exit(1)
	}
}

// readCommands parses stdin lines into session commands until EOF or
// the context ends. Parse errors are reported and skipped.
func readCommands(ctx context.Context, logger *slog.Logger, cmds chan<- session.Command) {
	defer close(cmds)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cmd, err := session.ParseCommand(line)
		if err != nil {
			logger.Warn("ignoring command", "error", err)
			continue
		}
		select {
		case cmds <- cmd:
		case <-ctx.Done():
			return
		}
	}
}
