package bot

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"discord-archive/database"
	"discord-archive/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMaintenance struct {
	recomputes atomic.Int32
	expires    atomic.Int32
}

func (f *fakeMaintenance) RecomputeAllTotals(ctx context.Context) (database.RecomputeReport, error) {
	f.recomputes.Add(1)
	return database.RecomputeReport{Channels: 2, Users: 3}, nil
}

func (f *fakeMaintenance) ExpireTasks(ctx context.Context, now time.Time) (int64, error) {
	f.expires.Add(1)
	return 1, nil
}

func TestSchedulerRunsJobs(t *testing.T) {
	store := &fakeMaintenance{}
	s := NewScheduler(store, models.SchedulerConfig{
		TotalsCron:      "@every 1s",
		TaskCleanupCron: "@every 1s",
		TotalsAtStartup: true,
	})
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return store.recomputes.Load() >= 2 && store.expires.Load() >= 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&fakeMaintenance{}, models.SchedulerConfig{TotalsCron: "every other tuesday"})
	assert.Error(t, s.Start())
}

func TestSchedulerEmptySpecs(t *testing.T) {
	store := &fakeMaintenance{}
	s := NewScheduler(store, models.SchedulerConfig{})
	require.NoError(t, s.Start())
	s.Stop()
	assert.Zero(t, store.recomputes.Load())
	assert.Empty(t, s.c.Entries())
}

func TestNewBotRequiresToken(t *testing.T) {
	_, err := NewBot(models.BotConfig{})
	assert.Error(t, err)
}

func TestNewBotWithProxy(t *testing.T) {
	b, err := NewBot(models.BotConfig{Token: "abc", Proxy: "socks5://127.0.0.1:1080"})
	require.NoError(t, err)
	require.NotNil(t, b.Session.Dialer)
	assert.NotNil(t, b.Session.Dialer.NetDialContext)
	assert.Equal(t, "Bot abc", b.Session.Token)
}
