package models

import (
	"testing"
)

func TestViewNames(t *testing.T) {
	cases := []struct {
		view  View
		name  string
		depth string
	}{
		{ViewXYT, "X-Y-T", "T"},
		{ViewYTX, "Y-T-X", "X"},
		{ViewTXY, "T-X-Y", "Y"},
	}

	for _, c := range cases {
		if c.view.Name() != c.name {
			t.Errorf("Expected name %q, got %q", c.name, c.view.Name())
		}
		if c.view.DepthAxis() != c.depth {
			t.Errorf("View %s: expected depth axis %q, got %q", c.name, c.depth, c.view.DepthAxis())
		}
	}
}

func TestParseView(t *testing.T) {
	for _, input := range []string{"X-Y-T", "x-y-t", "xyt", " XYT "} {
		v, err := ParseView(input)
		if err != nil {
			t.Errorf("ParseView(%q) failed: %v", input, err)
		}
		if v != ViewXYT {
			t.Errorf("ParseView(%q) = %v, want X-Y-T", input, v)
		}
	}

	if v, err := ParseView("ytx"); err != nil || v != ViewYTX {
		t.Errorf("ParseView(ytx) = %v, %v", v, err)
	}
	if v, err := ParseView("T-X-Y"); err != nil || v != ViewTXY {
		t.Errorf("ParseView(T-X-Y) = %v, %v", v, err)
	}

	if _, err := ParseView("X-T-Y"); err == nil {
		t.Error("Expected error for unknown axis ordering, got nil")
	}
}

func TestAxisLabels(t *testing.T) {
	cases := []struct {
		view View
		x, y string
	}{
		{ViewXYT, "X", "Y"},
		{ViewYTX, "T", "Y"},
		{ViewTXY, "X", "T"},
	}

	for _, c := range cases {
		x, y := c.view.AxisLabels()
		if x != c.x || y != c.y {
			t.Errorf("View %s: expected labels (%s, %s), got (%s, %s)", c.view, c.x, c.y, x, y)
		}
	}
}
