package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/reelroom/reelroom/internal/caster"
	"github.com/reelroom/reelroom/internal/config"
	"github.com/reelroom/reelroom/internal/playback"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	roomID := flag.String("room", "", "room to cast into")
	title := flag.String("title", "", "tape title")
	length := flag.String("length", "", "tape length as MM:SS or HH:MM:SS")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *roomID != "" {
		cfg.Room.ID = *roomID
	}
	if *title != "" {
		cfg.Room.Title = *title
	}
	if *length != "" {
		cfg.Room.TapeLength = *length
	}

	if cfg.Room.ID == "" {
		log.Fatal().Msg("a room id is required (-room or config)")
	}

	// No tape length means live-feed mode.
	lengthMs := 0
	if cfg.Room.TapeLength != "" {
		lengthMs, err = playback.ParseTimecode(cfg.Room.TapeLength)
		if err != nil {
			log.Fatal().Err(err).Str("length", cfg.Room.TapeLength).Msg("invalid tape length")
		}
	}

	bus, err := caster.NewNATSBus(cfg.Bus.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to room bus")
	}
	defer bus.Close()

	session := caster.NewSession(cfg.Room.ID, cfg.Room.Title, lengthMs, clockwork.NewRealClock(), bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	if err := session.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("cast session failed")
	}

	log.Info().Msg("cast session shutdown complete")
}
