package playback

// Frame is one message on a room's state feed. The caster publishes a
// full frame on every state change; viewers treat each frame as a
// complete replacement, never a delta.
type Frame struct {
	Title      string
	PositionMs int
	LengthMs   int
	Status     Status
}

// Playing reports whether the transport is actively rolling. An empty
// status is the "nothing special to report" case while the tape plays.
func (f Frame) Playing() bool {
	return f.Status == StatusPlaying
}

// HasTape reports whether a tape with a known length is loaded. A zero
// length is the sentinel for "nothing loaded" and suppresses timeline
// rendering downstream.
func (f Frame) HasTape() bool {
	return f.LengthMs > 0
}

// Status is the transport status label shown verbatim on the room OSD.
type Status string

const (
	StatusPlaying  Status = ""
	StatusInit     Status = "█ NO TAPE"
	StatusStarting Status = "⏵ PLAY"
	StatusPaused   Status = "▊ PAUSE"
	StatusReady    Status = "⏯ TAPE READY"
	StatusSeeking  Status = "⏩ SEEK"
	StatusFwd      Status = "⏭ FWD"
	StatusBack     Status = "⏮ BACK"
	StatusFinished Status = "⏏ EJECT"
	StatusLive     Status = "⏺ LIVE FEED"
	StatusDownload Status = "⏬ DOWNLOADING"
	StatusError    Status = "! ERROR"
)
