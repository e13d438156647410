package models

import (
	"fmt"
	"strings"
)

// View is one of the three fixed axis orderings of the space-time volume.
// The last axis in the name is the depth axis swept during playback; the
// first two form the displayed 2D image at each step.
type View int

const (
	// ViewXYT is ordinary video playback: the X-Y plane swept over time
	ViewXYT View = iota

	// ViewYTX holds a column fixed and sweeps it across the width,
	// showing a Y-T plane at each step
	ViewYTX

	// ViewTXY holds a row fixed and sweeps it down the height,
	// showing a T-X plane at each step
	ViewTXY
)

// Views lists all selectable views in presentation order
var Views = []View{ViewXYT, ViewYTX, ViewTXY}

// Name returns the canonical axis-ordering name, e.g. "X-Y-T"
func (v View) Name() string {
	switch v {
	case ViewXYT:
		return "X-Y-T"
	case ViewYTX:
		return "Y-T-X"
	case ViewTXY:
		return "T-X-Y"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

func (v View) String() string {
	return v.Name()
}

// AxisLabels returns the labels of the displayed horizontal and vertical
// axes for this view, as shown next to the rendered plane
func (v View) AxisLabels() (x, y string) {
	switch v {
	case ViewYTX:
		return "T", "Y"
	case ViewTXY:
		return "X", "T"
	default:
		return "X", "Y"
	}
}

// DepthAxis returns the name of the axis swept during playback
func (v View) DepthAxis() string {
	switch v {
	case ViewYTX:
		return "X"
	case ViewTXY:
		return "Y"
	default:
		return "T"
	}
}

// ParseView resolves a view from its axis-ordering name.
// Matching is case-insensitive and accepts "xyt" as well as "X-Y-T".
func ParseView(s string) (View, error) {
	key := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "")
	switch key {
	case "XYT":
		return ViewXYT, nil
	case "YTX":
		return ViewYTX, nil
	case "TXY":
		return ViewTXY, nil
	default:
		return ViewXYT, fmt.Errorf("unknown view %q (must be X-Y-T, Y-T-X or T-X-Y)", s)
	}
}
