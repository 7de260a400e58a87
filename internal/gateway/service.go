package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service ties the gateway together: the room bus feeding state frames
// in, the connection manager fanning them out, and the HTTP handler
// viewers connect through.
type Service struct {
	connectionManager *ConnectionManager
	handler           *StateFeedHandler
	bus               *Bus
}

// Config holds configuration for the gateway service.
type Config struct {
	Connection ConnectionConfig
	Bus        BusConfig
}

// DefaultConfig returns default gateway configuration.
func DefaultConfig() Config {
	return Config{
		Connection: DefaultConnectionConfig(),
		Bus:        DefaultBusConfig(),
	}
}

// NewService creates a gateway service connected to the room bus.
func NewService(config Config) (*Service, error) {
	bus, err := NewBus(config.Bus)
	if err != nil {
		return nil, err
	}

	cm := NewConnectionManager(config.Connection, bus)

	return &Service{
		connectionManager: cm,
		handler:           NewStateFeedHandler(cm),
		bus:               bus,
	}, nil
}

// Start runs the service until the context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting gateway service")

	go s.connectionManager.Start(ctx)

	go func() {
		if err := s.bus.Consume(ctx, s.connectionManager); err != nil {
			log.Error().Err(err).Msg("state frame consumer failed")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("gateway service shutting down")
	s.bus.Close()
	return nil
}

// RegisterRoutes registers the gateway HTTP routes.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.handler.RegisterRoutes(mux)
	log.Info().Msg("gateway routes registered")
}

// GetStats returns statistics about active viewer connections.
func (s *Service) GetStats() Stats {
	return s.connectionManager.GetStats()
}
