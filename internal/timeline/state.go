package timeline

import "github.com/reelroom/reelroom/internal/playback"

// State is the renderable view of a room's playback, recomputed from the
// latest feed frame. It carries no history beyond the caption, which may
// lag the raw status while a linger is in effect.
type State struct {
	Title         string
	CurrentTimeMs int
	TotalTimeMs   int
	Playing       bool
	RawStatus     string

	// Caption is the on-screen status text. It tracks RawStatus except
	// during a linger, when the previous caption is held for a grace
	// period to avoid flicker on the transition back into playback.
	Caption string
}

// Renderable reports whether there is a timeline to draw at all. A zero
// total length means nothing is loaded and the timeline stays hidden.
func (s State) Renderable() bool {
	return s.TotalTimeMs > 0
}

// Progress is the played fraction of the tape, clamped to [0, 1].
func (s State) Progress() float64 {
	if s.TotalTimeMs <= 0 {
		return 0
	}
	p := float64(s.CurrentTimeMs) / float64(s.TotalTimeMs)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// CurrentTimecode renders the playback position for display.
func (s State) CurrentTimecode() string {
	return playback.FormatTimecode(s.CurrentTimeMs)
}

// TotalTimecode renders the tape length for display.
func (s State) TotalTimecode() string {
	return playback.FormatTimecode(s.TotalTimeMs)
}
