package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/reelroom/reelroom/internal/playback"
)

// BusConfig holds settings for the room bus connection.
type BusConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultBusConfig returns default room bus settings.
func DefaultBusConfig() BusConfig {
	return BusConfig{
		URL:           nats.DefaultURL,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// Bus connects the gateway to the room bus: it consumes state frames
// published by casters and publishes chat relayed from viewers.
type Bus struct {
	nc     *nats.Conn
	config BusConfig
}

// NewBus connects to the room bus.
func NewBus(config BusConfig) (*Bus, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("room bus disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("room bus reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("room bus error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to room bus: %w", err)
	}

	return &Bus{nc: nc, config: config}, nil
}

// Consume subscribes to state frames for every room and hands them to
// the connection manager until the context is cancelled. Frames are
// forwarded as-is; the gateway never reinterprets them.
func (b *Bus) Consume(ctx context.Context, cm *ConnectionManager) error {
	sub, err := b.nc.Subscribe(playback.StateWildcard, func(msg *nats.Msg) {
		roomID := playback.RoomFromStateSubject(msg.Subject)
		if roomID == "" {
			log.Warn().Str("subject", msg.Subject).Msg("state frame on unexpected subject")
			return
		}
		cm.BroadcastFrame(roomID, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe state frames: %w", err)
	}

	log.Info().Str("subject", playback.StateWildcard).Msg("consuming state frames")

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		log.Error().Err(err).Msg("failed to unsubscribe state frames")
	}
	return nil
}

// RelayChat publishes viewer chat text on the room's chat subject.
func (b *Bus) RelayChat(roomID string, text []byte) error {
	return b.nc.Publish(playback.ChatSubject(roomID), text)
}

// Close drains the bus connection.
func (b *Bus) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
}
