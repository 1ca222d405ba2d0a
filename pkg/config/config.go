// Package config loads game settings from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the tunable game settings. Every field has a playable
// default, so an empty environment yields a working game.
type Config struct {
	// Env selects the logging profile.
	Env string `env:"HARVEST_ENV" envDefault:"development"`

	// Board size.
	Width  int `env:"HARVEST_WIDTH" envDefault:"12"`
	Height int `env:"HARVEST_HEIGHT" envDefault:"12"`

	// Settlement generation.
	Houses      int     `env:"HARVEST_HOUSES" envDefault:"3"`
	TreeDensity float64 `env:"HARVEST_TREE_DENSITY" envDefault:"0.3"`

	// Goblin pressure.
	SpawnEvery int `env:"HARVEST_SPAWN_EVERY" envDefault:"4"`
	Waves      int `env:"HARVEST_WAVES" envDefault:"3"`
	WaveSize   int `env:"HARVEST_WAVE_SIZE" envDefault:"2"`

	// Seed for the run; 0 means pick one from the clock.
	Seed int64 `env:"HARVEST_SEED" envDefault:"0"`

	// Persistence paths.
	SavePath    string `env:"HARVEST_SAVE_PATH" envDefault:"harvest_saves"`
	HistoryPath string `env:"HARVEST_HISTORY_PATH" envDefault:"harvest_history.db"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("board size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Houses <= 0 {
		return fmt.Errorf("houses must be positive, got %d", c.Houses)
	}
	if c.TreeDensity < 0 || c.TreeDensity > 1 {
		return fmt.Errorf("tree density must be within [0, 1], got %v", c.TreeDensity)
	}
	if c.SpawnEvery <= 0 || c.Waves <= 0 || c.WaveSize <= 0 {
		return fmt.Errorf("spawn settings must be positive")
	}
	return nil
}
