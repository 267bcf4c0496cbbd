// Package stats computes the archive's statistics views on top of the record store.
// Every view is read-only and safe for concurrent use.
package stats

import (
	"context"
	"time"

	"discord-archive/database"
	"discord-archive/models"
)

// Store is the subset of the record store the views aggregate over.
type Store interface {
	AggregateByChannel(ctx context.Context, f database.MessageFilter) ([]database.GroupAggregate, error)
	AggregateByAuthor(ctx context.Context, f database.MessageFilter) ([]database.GroupAggregate, error)
	CountByChannelAndAuthor(ctx context.Context, f database.MessageFilter) ([]database.PairCount, error)
	FilteredTotals(ctx context.Context, f database.MessageFilter) (models.Totals, error)
	CountBetween(ctx context.Context, f database.MessageFilter, start, end time.Time) (int64, error)
	DailyCounts(ctx context.Context, f database.MessageFilter) ([]models.DailyCount, error)
	MinuteCounts(ctx context.Context, f database.MessageFilter, start, end time.Time) (map[int64]int64, error)
	RecentMessages(ctx context.Context, f database.MessageFilter, limit int) ([]models.RecentMessage, error)
	ContentLength(ctx context.Context, f database.MessageFilter) (int64, float64, error)
	EachContent(ctx context.Context, f database.MessageFilter, fn func(content string) error) error
}

// Engine serves the statistics views.
type Engine struct {
	store Store
	cfg   models.StatsConfig
	now   func() time.Time
}

// NewEngine returns an Engine reading from store. Zero config values fall back to defaults.
func NewEngine(store Store, cfg models.StatsConfig) *Engine {
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 75
	}
	if cfg.WordPositions <= 0 {
		cfg.WordPositions = 50
	}
	if cfg.SpaceThreshold <= 0 {
		cfg.SpaceThreshold = 19.8
	}
	return &Engine{store: store, cfg: cfg, now: time.Now}
}

// SetClock replaces the engine's time source.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}
