// Package session owns the interactive playback state: the active view,
// the advancing depth index and the playback rate. State changes only
// through the transition methods here, and the Run loop applies them
// from a single goroutine, so a view switch and its index reset are
// always observed together.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"spacetimeview/internal/models"
	"spacetimeview/pkg/export"
	"spacetimeview/pkg/visualization"
)

// Options configures the initial playback state and the rate bounds
type Options struct {
	// InitialView is the view active when the session starts
	InitialView models.View

	// InitialRate is the starting playback rate in frames per second
	InitialRate float64

	// MinRate and MaxRate bound user-entered rates; inputs at or below
	// zero clamp to MinRate, inputs above MaxRate clamp to MaxRate
	MinRate float64
	MaxRate float64
}

// Session drives slice playback over a loaded volume
type Session struct {
	slicer   *visualization.Slicer
	display  visualization.Display
	exporter *export.Exporter
	source   models.SourceInfo
	logger   *slog.Logger

	view  models.View
	depth int
	rate  float64

	minRate float64
	maxRate float64
}

// New creates a session in the initial state given by opts
func New(slicer *visualization.Slicer, display visualization.Display, exporter *export.Exporter,
	source models.SourceInfo, opts Options, logger *slog.Logger) *Session {

	minRate := opts.MinRate
	if minRate <= 0 {
		minRate = 1
	}
	maxRate := opts.MaxRate
	if maxRate < minRate {
		maxRate = 1000
	}
	rate := opts.InitialRate
	if rate <= 0 {
		rate = minRate
	}
	if rate > maxRate {
		rate = maxRate
	}

	return &Session{
		slicer:   slicer,
		display:  display,
		exporter: exporter,
		source:   source,
		logger:   logger,
		view:     opts.InitialView,
		rate:     rate,
		minRate:  minRate,
		maxRate:  maxRate,
	}
}

// View returns the active view
func (s *Session) View() models.View { return s.view }

// Depth returns the current depth index along the active view
func (s *Session) Depth() int { return s.depth }

// Rate returns the playback rate in frames per second
func (s *Session) Rate() float64 { return s.rate }

// Interval returns the playback tick interval for the current rate
func (s *Session) Interval() time.Duration {
	return time.Duration(float64(time.Second) / s.rate)
}

// SelectView switches the active view and resets the depth index to
// the start of its range
func (s *Session) SelectView(v models.View) {
	s.view = v
	s.depth = 0
}

// Advance steps the depth index one position, wrapping at the end of
// the active view's range. It returns the new index.
func (s *Session) Advance() int {
	s.depth = (s.depth + 1) % s.slicer.DepthRange(s.view)
	return s.depth
}

// RateUpdate reports the outcome of a rate change request
type RateUpdate struct {
	// Rate is the effective rate after the update
	Rate float64

	// Clamped reports that the input was numeric but out of bounds
	Clamped bool

	// Rejected reports that the input was not a usable number and the
	// previous rate was kept
	Rejected bool

	// Note is a human-readable description of what happened
	Note string
}

// SetRate applies a rate entered as text. Non-numeric input is rejected
// and the previous rate kept; values at or below zero clamp to the
// minimum, values above the ceiling clamp to the ceiling.
func (s *Session) SetRate(input string) RateUpdate {
	v, err := strconv.ParseFloat(input, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return RateUpdate{
			Rate:     s.rate,
			Rejected: true,
			Note:     fmt.Sprintf("invalid rate %q, keeping %.1f", input, s.rate),
		}
	}

	switch {
	case v <= 0:
		s.rate = s.minRate
		return RateUpdate{
			Rate:    s.rate,
			Clamped: true,
			Note:    fmt.Sprintf("rate must be positive, using %.0f", s.minRate),
		}
	case v > s.maxRate:
		s.rate = s.maxRate
		return RateUpdate{
			Rate:    s.rate,
			Clamped: true,
			Note:    fmt.Sprintf("rate capped at %.0f", s.maxRate),
		}
	default:
		s.rate = v
		return RateUpdate{
			Rate: s.rate,
			Note: fmt.Sprintf("rate set to %.1f", s.rate),
		}
	}
}

// Status returns the indicator state for the current slice
func (s *Session) Status() visualization.Status {
	return visualization.Status{
		View:          s.view,
		Depth:         s.depth,
		DepthRange:    s.slicer.DepthRange(s.view),
		PlanePosition: s.slicer.PlanePosition(s.view, s.depth),
		Rate:          s.rate,
	}
}

// Render projects the current slice and hands it to the display
func (s *Session) Render() error {
	plane, err := s.slicer.Slice(s.view, s.depth)
	if err != nil {
		return err
	}
	return s.display.Render(plane.Image(), s.Status())
}

// Export writes the active view's full slice sequence as an animated
// GIF at the current rate and returns the written path
func (s *Session) Export() (string, error) {
	return s.exporter.ExportView(s.slicer, s.view, s.source.BaseName, s.rate)
}

// Run drives playback until the context is canceled, the command
// channel closes or a quit command arrives. Commands and ticks are
// handled on this goroutine only.
func (s *Session) Run(ctx context.Context, cmds <-chan Command) error {
	ticker := time.NewTicker(s.Interval())
	defer ticker.Stop()

	if err := s.Render(); err != nil {
		s.logger.Warn("render failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			s.Advance()
			if err := s.Render(); err != nil {
				s.logger.Warn("render failed", "error", err)
			}

		case cmd, ok := <-cmds:
			if !ok {
				return nil
			}
			if quit := s.apply(cmd, ticker); quit {
				return nil
			}
		}
	}
}

// apply executes one command against the session state
func (s *Session) apply(cmd Command, ticker *time.Ticker) (quit bool) {
	switch cmd.Kind {
	case CmdSelectView:
		s.SelectView(cmd.View)
		s.logger.Info("view selected",
			"view", s.view.Name(),
			"depthRange", s.slicer.DepthRange(s.view),
		)
		if err := s.Render(); err != nil {
			s.logger.Warn("render failed", "error", err)
		}

	case CmdSetRate:
		res := s.SetRate(cmd.Rate)
		ticker.Reset(s.Interval())
		if res.Rejected {
			s.logger.Warn(res.Note)
		} else {
			s.logger.Info(res.Note)
		}

	case CmdExport:
		path, err := s.Export()
		if err != nil {
			// Export failure never ends the session
			s.logger.Error("export failed", "error", err)
			return false
		}
		s.logger.Info("export complete", "path", path, "rate", s.rate)

	case CmdQuit:
		return true
	}
	return false
}
