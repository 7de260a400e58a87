package roster

import "github.com/reelroom/reelroom/internal/playback"

// transportStatuses are the upstream status labels during which
// push-to-talk stays disabled so the tape audio is not talked over.
var transportStatuses = map[string]bool{
	"Play":      true,
	"Playing":   true,
	"Forward":   true,
	"Back":      true,
	"Live feed": true,
}

// TalkBlocked reports whether push-to-talk should be disabled for the
// given raw status and on-screen caption. An empty status means the
// tape is actively playing unless the caption says no tape is loaded.
func TalkBlocked(rawStatus, caption string) bool {
	if transportStatuses[rawStatus] {
		return true
	}
	return rawStatus == "" && caption != string(playback.StatusInit)
}
