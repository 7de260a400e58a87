package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the reelroom binaries.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Bus    BusConfig    `yaml:"bus"`
	Room   RoomConfig   `yaml:"room"`
}

// ServerConfig holds the gateway HTTP listener settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// BusConfig holds the room bus connection settings.
type BusConfig struct {
	URL string `yaml:"url"`
}

// RoomConfig identifies the room a caster serves.
type RoomConfig struct {
	ID         string `yaml:"id"`
	Title      string `yaml:"title"`
	TapeLength string `yaml:"tape_length"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Bus: BusConfig{
			URL: "nats://localhost:4222",
		},
	}
}

// Load reads a YAML config file over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Server.Addr = getEnv("REELROOM_ADDR", cfg.Server.Addr)
	cfg.Bus.URL = getEnv("NATS_URL", cfg.Bus.URL)
	cfg.Room.ID = getEnv("REELROOM_ROOM", cfg.Room.ID)
	cfg.Room.Title = getEnv("REELROOM_TITLE", cfg.Room.Title)
	cfg.Room.TapeLength = getEnv("REELROOM_TAPE_LENGTH", cfg.Room.TapeLength)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
