package database

import (
	"context"
	"fmt"

	"discord-archive/utils"
)

const recomputeChannelSQL = `
	UPDATE channels SET
		total_messages = (SELECT COUNT(*) FROM messages WHERE channel_id = channels.id),
		total_words = (SELECT COALESCE(SUM(word_count), 0) FROM messages WHERE channel_id = channels.id),
		total_characters = (SELECT COALESCE(SUM(char_count), 0) FROM messages WHERE channel_id = channels.id)
	WHERE id = ?`

const recomputeUserSQL = `
	UPDATE users SET
		total_messages = (SELECT COUNT(*) FROM messages WHERE author_id = users.id),
		total_words = (SELECT COALESCE(SUM(word_count), 0) FROM messages WHERE author_id = users.id),
		total_characters = (SELECT COALESCE(SUM(char_count), 0) FROM messages WHERE author_id = users.id)
	WHERE id = ?`

// RecomputeReport summarises a bulk totals rebuild.
type RecomputeReport struct {
	Channels int
	Users    int
	Failed   int
}

// RecomputeChannelTotals rebuilds the stored totals of one channel from its messages.
func (d *DB) RecomputeChannelTotals(ctx context.Context, channelID string) error {
	return recompute(ctx, d.db, recomputeChannelSQL, channelID)
}

// RecomputeUserTotals rebuilds the stored totals of one user from its messages.
func (d *DB) RecomputeUserTotals(ctx context.Context, userID string) error {
	return recompute(ctx, d.db, recomputeUserSQL, userID)
}

// RecomputeAllTotals rebuilds the totals of every channel and user one entity at a time.
// Failures are logged and counted; the batch continues.
func (d *DB) RecomputeAllTotals(ctx context.Context) (RecomputeReport, error) {
	var report RecomputeReport

	channelIDs, err := d.ids(ctx, "SELECT id FROM channels ORDER BY id")
	if err != nil {
		return report, err
	}
	for _, id := range channelIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := d.RecomputeChannelTotals(ctx, id); err != nil {
			report.Failed++
			utils.Warn("Totals", "RecomputeChannel", fmt.Sprintf("channel %s: %v", id, err))
			continue
		}
		report.Channels++
	}

	userIDs, err := d.ids(ctx, "SELECT id FROM users ORDER BY id")
	if err != nil {
		return report, err
	}
	for _, id := range userIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := d.RecomputeUserTotals(ctx, id); err != nil {
			report.Failed++
			utils.Warn("Totals", "RecomputeUser", fmt.Sprintf("user %s: %v", id, err))
			continue
		}
		report.Users++
	}
	return report, nil
}

// recomputeOwners rebuilds the totals of the given channels and users, skipping duplicates.
func recomputeOwners(ctx context.Context, q queryer, channelIDs, userIDs []string) error {
	seen := make(map[string]bool)
	for _, id := range channelIDs {
		if id == "" || seen["c"+id] {
			continue
		}
		seen["c"+id] = true
		if err := recompute(ctx, q, recomputeChannelSQL, id); err != nil {
			return err
		}
	}
	for _, id := range userIDs {
		if id == "" || seen["u"+id] {
			continue
		}
		seen["u"+id] = true
		if err := recompute(ctx, q, recomputeUserSQL, id); err != nil {
			return err
		}
	}
	return nil
}

func recompute(ctx context.Context, q queryer, query, id string) error {
	if _, err := q.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to recompute totals of %s: %w", id, err)
	}
	return nil
}

func (d *DB) ids(ctx context.Context, query string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
