package models

import (
	"image"
)

// Frame represents a single decoded frame of the source media
type Frame struct {
	// Image is the decoded frame pixel data in RGB order
	Image image.Image

	// Index is the position of this frame in the source sequence
	Index int
}

// SourceInfo describes the media a space-time volume was built from
type SourceInfo struct {
	// Path is the original media file path
	Path string

	// BaseName is the file name without directory or extension,
	// used to derive export file names
	BaseName string

	// FPS is the playback rate of the source in frames per second
	FPS float64

	// FPSDetected reports whether FPS came from the container
	// or is a fallback default
	FPSDetected bool

	// FrameCount is the number of frames decoded from the source
	FrameCount int

	// Width and Height are the frame dimensions in pixels
	Width  int
	Height int
}
