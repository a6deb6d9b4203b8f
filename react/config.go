package react

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	TickLast   = "last"
	TickManual = "manual"
)

// Config tunes the reaction kernel
type Config struct {
	StrictTrackers bool   `toml:"strict_trackers"` // panic when a tracker starts without a prepared entry
	QueueBuffers   int    `toml:"queue_buffers"`   // pooled deques kept per queue, 0 = unlimited
	TickPhase      string `toml:"tick_phase"`      // "last" or "manual"
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() Config {
	return Config{
		QueueBuffers: 8,
		TickPhase:    TickLast,
	}
}

// LoadConfig reads a toml file on top of the defaults
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read react config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse react config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("react config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges
func (c Config) Validate() error {
	if c.QueueBuffers < 0 {
		return fmt.Errorf("queue_buffers must not be negative, got %d", c.QueueBuffers)
	}
	switch c.TickPhase {
	case TickLast, TickManual:
	default:
		return fmt.Errorf("unknown tick_phase %q", c.TickPhase)
	}
	return nil
}
