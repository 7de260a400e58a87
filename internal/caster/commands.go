package caster

import (
	"strings"

	"github.com/reelroom/reelroom/internal/playback"
)

// defaultSkipTimecode is how far /back and /fwd move without an argument.
const defaultSkipTimecode = "00:10"

// commands returns the slash commands available over chat. A session
// with no tape loaded accepts none of them.
func (s *Session) commands() map[string]func([]string) error {
	if s.deck.LengthMs() <= 0 {
		return map[string]func([]string) error{}
	}

	playSeek := func(args []string) error {
		targetMs := s.deck.Position()
		if len(args) > 0 {
			ms, err := playback.ParseTimecode(args[0])
			if err != nil {
				return err
			}
			targetMs = ms
		}
		s.deck.Start(targetMs)
		s.setPosition(s.deck.Position(), playback.StatusStarting)
		return nil
	}

	pause := func(args []string) error {
		s.deck.Stop()
		s.setPosition(s.deck.Position(), playback.StatusPaused)
		return nil
	}

	skip := func(args []string, back bool) error {
		tc := defaultSkipTimecode
		if len(args) > 0 {
			if strings.Contains(args[0], ":") {
				tc = args[0]
			} else {
				// Bare number shorthand for seconds.
				tc = "00:" + args[0]
			}
		}
		deltaMs, err := playback.ParseTimecode(tc)
		if err != nil {
			return err
		}

		status := playback.StatusFwd
		if back {
			deltaMs = -deltaMs
			status = playback.StatusBack
		}
		target := s.deck.Position() + deltaMs
		if target < 0 {
			target = 0
		}
		if target > s.deck.LengthMs() {
			target = s.deck.LengthMs()
		}

		if s.deck.Rolling() {
			s.deck.Start(target)
		} else {
			s.deck.SetPosition(target)
		}
		s.setPosition(target, status)
		return nil
	}

	return map[string]func([]string) error{
		"/play":    playSeek,
		"/seek":    playSeek,
		"/pause":   pause,
		"/back":    func(args []string) error { return skip(args, true) },
		"/fwd":     func(args []string) error { return skip(args, false) },
		"/forward": func(args []string) error { return skip(args, false) },
	}
}
