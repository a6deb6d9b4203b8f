package react_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/cobweb/ecs"
	"github.com/plus3/cobweb/react"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "react.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		cfg, err := react.LoadConfig(writeConfig(t, `
strict_trackers = true
tick_phase = "manual"
`))
		require.NoError(t, err)
		assert.True(t, cfg.StrictTrackers)
		assert.Equal(t, react.TickManual, cfg.TickPhase)
		assert.Equal(t, react.DefaultConfig().QueueBuffers, cfg.QueueBuffers)
	})

	t.Run("invalid tick phase", func(t *testing.T) {
		_, err := react.LoadConfig(writeConfig(t, `tick_phase = "first"`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown tick_phase")
	})

	t.Run("negative buffers", func(t *testing.T) {
		_, err := react.LoadConfig(writeConfig(t, `queue_buffers = -1`))
		assert.ErrorContains(t, err, "queue_buffers")
	})

	t.Run("malformed toml", func(t *testing.T) {
		_, err := react.LoadConfig(writeConfig(t, `strict_trackers = `))
		assert.ErrorContains(t, err, "parse react config")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := react.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestInstall(t *testing.T) {
	w := ecs.NewWorld(ecs.NewComponentRegistry())
	cfg := react.DefaultConfig()
	cfg.QueueBuffers = 2

	k := react.Install(w, react.WithConfig(cfg))
	assert.Same(t, k, react.Install(w), "second install returns the existing kernel")
	assert.Same(t, k, react.KernelOf(w))
	assert.Equal(t, 2, k.Config().QueueBuffers)
	assert.Same(t, k.Despawner(), react.Despawner(w))
}

func TestInstallScheduler(t *testing.T) {
	t.Run("ticks after each frame", func(t *testing.T) {
		s := ecs.NewScheduler(ecs.NewWorld(ecs.NewComponentRegistry()))
		react.InstallScheduler(s)
		w := s.World()

		command := react.SpawnSystemCommandCleanup(w, record(&history{}, "r"))
		command.Release()
		require.True(t, w.Alive(command.ID().Entity()))

		s.Once(0.016)
		assert.False(t, w.Alive(command.ID().Entity()))
		assert.Equal(t, "react.tick", s.GetStats().Systems[0].Name)
	})

	t.Run("manual phase adds no hook", func(t *testing.T) {
		s := ecs.NewScheduler(ecs.NewWorld(ecs.NewComponentRegistry()))
		cfg := react.DefaultConfig()
		cfg.TickPhase = react.TickManual
		react.InstallScheduler(s, react.WithConfig(cfg))
		assert.Empty(t, s.GetStats().Systems)
	})
}
