package caster

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/reelroom/reelroom/internal/playback"
)

// Bus is what the session needs from the room bus: publishing state
// frames and receiving the room's chat text.
type Bus interface {
	PublishState(roomID string, frame []byte) error
	SubscribeChat(roomID string, handler func(text string)) (unsubscribe func() error, err error)
}

// Session owns the authoritative playback state of one room. Every
// mutation publishes a full state frame; chat text arriving on the room
// bus is scanned for slash commands that drive the deck.
type Session struct {
	roomID string
	bus    Bus
	deck   *Deck

	mu    sync.Mutex
	state playback.Frame
}

// NewSession creates a session for a room. lengthMs of zero means no
// tape is loaded and the session runs in live-feed mode.
func NewSession(roomID, title string, lengthMs int, clock clockwork.Clock, bus Bus) *Session {
	return &Session{
		roomID: roomID,
		bus:    bus,
		deck:   NewDeck(clock, lengthMs),
		state: playback.Frame{
			Title:    title,
			LengthMs: lengthMs,
			Status:   playback.StatusInit,
		},
	}
}

// Deck exposes the session's transport, mainly for tests.
func (s *Session) Deck() *Deck {
	return s.deck
}

// Snapshot returns the current shared state.
func (s *Session) Snapshot() playback.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run starts the session and blocks until the context is cancelled.
func (s *Session) Run(ctx context.Context) error {
	unsubscribe, err := s.bus.SubscribeChat(s.roomID, s.HandleChat)
	if err != nil {
		return fmt.Errorf("subscribe chat: %w", err)
	}
	defer func() {
		if err := unsubscribe(); err != nil {
			log.Error().Err(err).Msg("failed to unsubscribe chat")
		}
	}()

	if s.deck.LengthMs() > 0 {
		s.setStatus(playback.StatusReady)
	} else {
		// No tape loaded; the room shows whatever is being fed live.
		s.setStatus(playback.StatusLive)
	}

	go s.deck.Run(ctx)

	st := s.Snapshot()
	log.Info().
		Str("room_id", s.roomID).
		Str("title", st.Title).
		Int("length_ms", st.LengthMs).
		Msg("cast session started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("room_id", s.roomID).Msg("cast session shutting down")
			return nil
		case update := <-s.deck.Updates():
			s.applyProgress(update)
		}
	}
}

// HandleChat scans one chat message for a slash command and runs it.
// Ordinary chat and unknown commands are ignored.
func (s *Session) HandleChat(text string) {
	args := strings.Fields(text)
	if len(args) == 0 {
		return
	}
	cmd := s.commands()[args[0]]
	if cmd == nil {
		return
	}
	log.Debug().Str("room_id", s.roomID).Str("command", args[0]).Msg("dispatching command")
	if err := cmd(args[1:]); err != nil {
		log.Error().Err(err).Str("command", args[0]).Msg("command failed")
	}
}

func (s *Session) applyProgress(update DeckUpdate) {
	s.mu.Lock()
	s.state.PositionMs = update.PositionMs
	if update.Finished {
		s.state.Status = playback.StatusFinished
	} else {
		s.state.Status = playback.StatusPlaying
	}
	s.mu.Unlock()
	s.publish()
}

func (s *Session) setStatus(status playback.Status) {
	s.mu.Lock()
	s.state.Status = status
	s.mu.Unlock()
	s.publish()
}

func (s *Session) setPosition(posMs int, status playback.Status) {
	s.mu.Lock()
	s.state.PositionMs = posMs
	s.state.Status = status
	s.mu.Unlock()
	s.publish()
}

func (s *Session) publish() {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	frame, err := json.Marshal(state)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal state frame")
		return
	}
	if err := s.bus.PublishState(s.roomID, frame); err != nil {
		log.Error().Err(err).Str("room_id", s.roomID).Msg("failed to publish state frame")
	}
}
