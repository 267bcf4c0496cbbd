package stats

import (
	"context"
	"time"

	"discord-archive/database"
	"discord-archive/models"
	"discord-archive/utils"

	"github.com/dustin/go-humanize"
)

// Totals returns the global message summary under f.
func (e *Engine) Totals(ctx context.Context, f database.MessageFilter) (*models.MessageTotals, error) {
	now := e.now().UTC()
	totals, err := e.store.FilteredTotals(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &models.MessageTotals{Totals: totals, DailyMessages: []models.DailyCount{}}
	if totals.TotalMessages == 0 {
		return out, nil
	}

	if out.MessagesLast24Hours, err = e.store.CountBetween(ctx, f, now.Add(-24*time.Hour), now); err != nil {
		return nil, err
	}
	days, err := e.store.DailyCounts(ctx, f)
	if err != nil {
		return nil, err
	}
	out.DailyMessages = days
	out.AverageMessagesPerDay = averagePerDay(days, totals.TotalMessages)

	for i := range days {
		if out.MostActiveDay == nil || days[i].Count > out.MostActiveDay.Count {
			out.MostActiveDay = &days[i]
		}
		if out.LeastActiveDay == nil || days[i].Count < out.LeastActiveDay.Count {
			out.LeastActiveDay = &days[i]
		}
	}
	return out, nil
}

// averagePerDay ignores the first and last day, which are usually partial, once there are
// more than two days.
func averagePerDay(days []models.DailyCount, total int64) float64 {
	switch {
	case len(days) == 0:
		return 0
	case len(days) <= 2:
		return float64(total) / float64(len(days))
	}
	var sum int64
	for _, d := range days[1 : len(days)-1] {
		sum += d.Count
	}
	return float64(sum) / float64(len(days)-2)
}

// Timeline returns per-minute counts from 24 hours ago, truncated to the minute, up to the
// current minute inclusive. Empty minutes are present with a zero count.
func (e *Engine) Timeline(ctx context.Context, f database.MessageFilter) (*models.Timeline, error) {
	now := e.now().UTC()
	start := now.Add(-24 * time.Hour).Truncate(time.Minute)
	end := now.Truncate(time.Minute)

	counts, err := e.store.MinuteCounts(ctx, f, start, now)
	if err != nil {
		return nil, err
	}

	out := &models.Timeline{Start: start, End: end}
	for cur := start; !cur.After(end); cur = cur.Add(time.Minute) {
		n := counts[cur.Unix()/60]
		out.Intervals = append(out.Intervals, models.TimelineInterval{Timestamp: cur, Count: n})
		out.Total += n
	}
	return out, nil
}

// Recent returns the newest messages under f with counts recomputed from their content.
func (e *Engine) Recent(ctx context.Context, f database.MessageFilter) ([]models.RecentMessage, error) {
	now := e.now()
	msgs, err := e.store.RecentMessages(ctx, f, e.cfg.RecentLimit)
	if err != nil {
		return nil, err
	}
	for i := range msgs {
		msgs[i].WordCount = utils.CountWords(msgs[i].MessageContent)
		msgs[i].CharCount = utils.CountChars(msgs[i].MessageContent)
		msgs[i].RelativeTime = humanize.RelTime(msgs[i].Timestamp, now, "ago", "from now")
	}
	return msgs, nil
}
