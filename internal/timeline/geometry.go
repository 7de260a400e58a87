package timeline

// BarRect is the horizontal extent of a rendered progress bar, in
// whatever pixel-like unit the front end uses.
type BarRect struct {
	Left  float64
	Width float64
}

// Fraction maps a pointer x coordinate to a position fraction within the
// bar, clamped to [0, 1]. A degenerate bar maps everything to 0.
func (b BarRect) Fraction(x float64) float64 {
	if b.Width <= 0 {
		return 0
	}
	f := (x - b.Left) / b.Width
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// TimeAt maps a pointer x coordinate to a millisecond offset on a tape
// of the given length.
func TimeAt(x float64, bar BarRect, totalMs int) int {
	return int(bar.Fraction(x) * float64(totalMs))
}

// OffsetAt is the inverse mapping: the x coordinate within the bar for a
// millisecond offset. Out-of-range offsets clamp to the bar edges.
func OffsetAt(timeMs int, bar BarRect, totalMs int) float64 {
	if totalMs <= 0 {
		return bar.Left
	}
	f := float64(timeMs) / float64(totalMs)
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return bar.Left + f*bar.Width
}

// HoverPreview is the tooltip state while the pointer is over the bar.
// It is display-only and never triggers a seek.
type HoverPreview struct {
	TimeMs      int
	PixelOffset float64
}

// PreviewAt computes the hover tooltip for a pointer position.
func PreviewAt(x float64, bar BarRect, totalMs int) HoverPreview {
	return HoverPreview{
		TimeMs:      TimeAt(x, bar, totalMs),
		PixelOffset: bar.Fraction(x) * bar.Width,
	}
}
