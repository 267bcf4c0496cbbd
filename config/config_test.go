package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "data/archive.db", cfg.Database.Path)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "@daily", cfg.Scheduler.TotalsCron)
	assert.Equal(t, "@hourly", cfg.Scheduler.TaskCleanupCron)
	assert.Equal(t, 72*time.Hour, cfg.Scheduler.TaskRetention)
	assert.Equal(t, 30*time.Second, cfg.GRPC.HealthInterval)
	assert.Equal(t, 75, cfg.Stats.RecentLimit)
	assert.Equal(t, 50, cfg.Stats.WordPositions)
	assert.InDelta(t, 19.8, cfg.Stats.SpaceThreshold, 1e-9)
	assert.True(t, cfg.Bot.RegisterCommands)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := `
database:
  path: /tmp/from-file.db
server:
  addr: ":9000"
scheduler:
  task_retention: 24h
bot:
  developers: ["111", "222"]
stats:
  recent_limit: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("SERVER_ADDR", ":9100")
	t.Setenv("BOT_TOKEN", "secret")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-file.db", cfg.Database.Path)
	assert.Equal(t, ":9100", cfg.Server.Addr, "environment overrides the file")
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.TaskRetention)
	assert.Equal(t, []string{"111", "222"}, cfg.Bot.Developers)
	assert.Equal(t, 10, cfg.Stats.RecentLimit)
	assert.Equal(t, "secret", cfg.Bot.Token)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
