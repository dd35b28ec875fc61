// Package config reads TILEPACK_* environment overrides for the CLI.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/piwi3910/TilePack/internal/model"
)

// Prefix is prepended to every variable name, e.g. TILEPACK_WIDTH.
const Prefix = "TILEPACK"

// Env holds the environment overrides. Zero values mean "not set".
type Env struct {
	ConfigFile string  `envconfig:"CONFIG"`
	Width      float64 `envconfig:"WIDTH"`
	Height     float64 `envconfig:"HEIGHT"`
	MaxTiles   int     `envconfig:"MAX_TILES"`
	MaxTime    float64 `envconfig:"MAX_TIME"`
	Spiral     string  `envconfig:"SPIRAL"`
	Seed       int64   `envconfig:"SEED"`
	Debug      bool    `envconfig:"DEBUG"`
	LogLevel   string  `envconfig:"LOG_LEVEL" default:"info"`
}

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(Prefix, &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &env, nil
}

// ApplyTo copies every set field onto cfg.
func (e *Env) ApplyTo(cfg *model.Config) {
	if e.Width != 0 {
		cfg.Size.X = e.Width
	}
	if e.Height != 0 {
		cfg.Size.Y = e.Height
	}
	if e.MaxTiles != 0 {
		cfg.StopConditions.Tiles = e.MaxTiles
	}
	if e.MaxTime != 0 {
		cfg.StopConditions.Time = e.MaxTime
	}
	if e.Spiral != "" {
		cfg.Spiral = e.Spiral
	}
	if e.Seed != 0 {
		cfg.Seed = e.Seed
	}
	if e.Debug {
		cfg.Debug = true
	}
}

// Level parses LogLevel ("debug", "info", "warn", "error"). Debug mode
// lowers the level to debug.
func (e *Env) Level() (slog.Level, error) {
	if e.Debug {
		return slog.LevelDebug, nil
	}
	return ParseLevel(e.LogLevel)
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
