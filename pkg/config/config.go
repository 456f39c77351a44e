// Package config loads the simulation settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a flock run.
type Config struct {
	Field  Field  `mapstructure:"field" yaml:"field"`
	Timing Timing `mapstructure:"timing" yaml:"timing"`
	Motion Motion `mapstructure:"motion" yaml:"motion"`

	StarCount int     `mapstructure:"star_count" yaml:"star_count"`
	HitBox    float64 `mapstructure:"hit_box" yaml:"hit_box"`
	Seed      uint64  `mapstructure:"seed" yaml:"seed"`
	MaxTicks  uint64  `mapstructure:"max_ticks" yaml:"max_ticks"`
	LogLevel  string  `mapstructure:"log_level" yaml:"log_level"`

	Redis Redis `mapstructure:"redis" yaml:"redis"`
	HTTP  HTTP  `mapstructure:"http" yaml:"http"`
}

// Field is the visible area. Entities leaving it stop animating.
type Field struct {
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
}

// Timing groups the clock periods.
type Timing struct {
	Tick       time.Duration `mapstructure:"tick" yaml:"tick"`
	EnemySpawn time.Duration `mapstructure:"enemy_spawn" yaml:"enemy_spawn"`
	FireSample time.Duration `mapstructure:"fire_sample" yaml:"fire_sample"`
}

// Motion groups per-tick displacements.
type Motion struct {
	EnemySpeed  float64 `mapstructure:"enemy_speed" yaml:"enemy_speed"`
	ShotSpeed   float64 `mapstructure:"shot_speed" yaml:"shot_speed"`
	StarSpeed   float64 `mapstructure:"star_speed" yaml:"star_speed"`
	EnemyStartY float64 `mapstructure:"enemy_start_y" yaml:"enemy_start_y"`
	HeroOffset  float64 `mapstructure:"hero_offset" yaml:"hero_offset"`
}

// Redis configures the optional redis scene sink. Empty Addr disables it.
type Redis struct {
	Addr   string        `mapstructure:"addr" yaml:"addr"`
	Prefix string        `mapstructure:"prefix" yaml:"prefix"`
	TTL    time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// HTTP configures the serve command.
type HTTP struct {
	Port string `mapstructure:"port" yaml:"port"`
}

// Default returns the settings of the classic game.
func Default() Config {
	return Config{
		Field: Field{Width: 800, Height: 600},
		Timing: Timing{
			Tick:       40 * time.Millisecond,
			EnemySpawn: 1500 * time.Millisecond,
			FireSample: 200 * time.Millisecond,
		},
		Motion: Motion{
			EnemySpeed:  5,
			ShotSpeed:   15,
			StarSpeed:   3,
			EnemyStartY: 30,
			HeroOffset:  30,
		},
		StarCount: 250,
		HitBox:    20,
		LogLevel:  "info",
		Redis:     Redis{Prefix: "flock:"},
		HTTP:      HTTP{Port: "8080"},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected and
// durations accept Go duration strings ("40ms").
func Parse(data []byte) (Config, error) {
	cfg := Default()

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(raw) == 0 {
		return cfg, cfg.Validate()
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Field.Width <= 0 || c.Field.Height <= 0:
		return fmt.Errorf("field must have positive size, got %vx%v", c.Field.Width, c.Field.Height)
	case c.Timing.Tick <= 0:
		return fmt.Errorf("timing.tick must be positive")
	case c.Timing.EnemySpawn <= 0:
		return fmt.Errorf("timing.enemy_spawn must be positive")
	case c.Timing.FireSample <= 0:
		return fmt.Errorf("timing.fire_sample must be positive")
	case c.StarCount < 0:
		return fmt.Errorf("star_count must not be negative")
	case c.HitBox <= 0:
		return fmt.Errorf("hit_box must be positive")
	}
	return nil
}

// Visible reports whether y lies inside the field.
func (f Field) Visible(y float64) bool {
	return y >= 0 && y <= f.Height
}
