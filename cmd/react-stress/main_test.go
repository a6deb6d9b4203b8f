package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plus3/cobweb/react"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults without a path", func(t *testing.T) {
		cfg, err := loadConfig("")
		require.NoError(t, err)
		assert.Equal(t, defaultConfig(), cfg)
	})

	t.Run("sections override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
[stress]
duration = "250ms"
entities = 16

[react]
tick_phase = "manual"
`), 0o644))

		cfg, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, cfg.Stress.Duration)
		assert.Equal(t, 16, cfg.Stress.Entities)
		assert.Equal(t, 64, cfg.Stress.Reactors)
		assert.Equal(t, react.TickManual, cfg.React.TickPhase)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("shipped config is valid", func(t *testing.T) {
		_, err := loadConfig("config.toml")
		assert.NoError(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[stress]\nentities = 0\n"), 0o644))
		_, err := loadConfig(path)
		assert.ErrorContains(t, err, "stress.entities")
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(LoggingConfig{Level: "bogus", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel), "unknown levels fall back to info")
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestRun(t *testing.T) {
	for _, phase := range []string{react.TickLast, react.TickManual} {
		t.Run(phase, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Stress.Duration = 20 * time.Millisecond
			cfg.Stress.Entities = 8
			cfg.Stress.Reactors = 6
			cfg.Stress.Depth = 2
			cfg.Stress.Batch = 4
			cfg.React.TickPhase = phase

			report, err := run(cfg, zap.NewNop())
			require.NoError(t, err)
			require.Positive(t, report.TotalUpdates)
			assert.Positive(t, report.Counters.Resets)
			assert.Positive(t, report.Counters.Cascades)
			assert.Equal(t, report.TotalUpdates*int64(cfg.Stress.Depth+1), int64(report.Counters.Pulses))
			assert.Equal(t, cfg.Stress.Depth, report.Peak.Level)
			if report.TotalUpdates >= 2 {
				assert.Positive(t, report.Counters.Despawns)
			}

			var out bytes.Buffer
			require.NoError(t, report.Generate(&out))
			assert.Contains(t, out.String(), "Reaction Kernel Stress Report")
			assert.Contains(t, out.String(), "driverSystem")
			assert.Contains(t, out.String(), "monitorSystem")
		})
	}
}
