package timeline

import (
	"github.com/rs/zerolog/log"

	"github.com/reelroom/reelroom/internal/playback"
)

// SendFunc delivers a chat-channel message. The transport behind it is
// the room's ordinary chat; seek requests are plain slash commands.
type SendFunc func(text string) error

// SeekEncoder turns a click on the progress bar into a /seek command and
// hands it to the injected send function.
type SeekEncoder struct {
	Send SendFunc
}

// EncodeSeek formats the command for a click at x on a bar representing
// a tape of totalMs.
func EncodeSeek(x float64, bar BarRect, totalMs int) string {
	return "/seek " + playback.FormatTimecode(TimeAt(x, bar, totalMs))
}

// Seek encodes and sends the command. It is a silent no-op when there is
// no tape to seek within or no send function is wired.
func (e SeekEncoder) Seek(x float64, bar BarRect, totalMs int) error {
	if totalMs <= 0 || e.Send == nil {
		return nil
	}
	cmd := EncodeSeek(x, bar, totalMs)
	log.Debug().Str("command", cmd).Msg("sending seek")
	return e.Send(cmd)
}
