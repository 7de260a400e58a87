package caster

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/reelroom/reelroom/internal/playback"
)

// NATSBus is the room bus implementation the caster binary uses.
type NATSBus struct {
	nc *nats.Conn
}

// NewNATSBus connects the caster to the room bus.
func NewNATSBus(url string) (*NATSBus, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("room bus disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("room bus reconnected")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to room bus: %w", err)
	}
	return &NATSBus{nc: nc}, nil
}

// PublishState publishes a state frame on the room's state subject.
func (b *NATSBus) PublishState(roomID string, frame []byte) error {
	return b.nc.Publish(playback.StateSubject(roomID), frame)
}

// SubscribeChat delivers the room's chat text to handler until the
// returned unsubscribe function is called.
func (b *NATSBus) SubscribeChat(roomID string, handler func(text string)) (func() error, error) {
	sub, err := b.nc.Subscribe(playback.ChatSubject(roomID), func(msg *nats.Msg) {
		handler(string(msg.Data))
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe chat: %w", err)
	}
	return sub.Unsubscribe, nil
}

// Close drains the bus connection.
func (b *NATSBus) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
}
