package main

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/plus3/cobweb/react"
)

type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Stress  StressConfig  `toml:"stress"`
	React   react.Config  `toml:"react"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type StressConfig struct {
	Duration time.Duration `toml:"duration"`
	Entities int           `toml:"entities"`
	Reactors int           `toml:"reactors"`
	Depth    int           `toml:"depth"` // cascade length of mutations and pulses
	Batch    int           `toml:"batch"` // entities reset per frame
	Churn    bool          `toml:"churn"` // spawn and despawn a watched entity every frame
	Seed     uint64        `toml:"seed"`
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Stress: StressConfig{
			Duration: 10 * time.Second,
			Entities: 10000,
			Reactors: 64,
			Depth:    4,
			Batch:    32,
			Churn:    true,
			Seed:     1,
		},
		React: react.DefaultConfig(),
	}
}

// loadConfig reads path on top of the defaults. An empty path returns the
// defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Stress.Entities <= 0 {
		return fmt.Errorf("stress.entities must be positive, got %d", c.Stress.Entities)
	}
	if c.Stress.Reactors < 0 || c.Stress.Depth < 0 || c.Stress.Batch < 0 {
		return fmt.Errorf("stress counts must not be negative")
	}
	return c.React.Validate()
}

func newLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
