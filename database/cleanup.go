package database

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"discord-archive/utils"
)

// ExpireTasks deletes import tasks whose retention window ended before now.
func (d *DB) ExpireTasks(ctx context.Context, now time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx, "DELETE FROM import_tasks WHERE expires_at < ?", toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("failed to expire import tasks: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		log.Printf("Expired %d import tasks", rowsAffected)
		utils.Info("Cleanup", "ExpireTasks", fmt.Sprintf("Expired %d import tasks", rowsAffected))
	}
	return rowsAffected, nil
}

// ShiftTimestamps moves every message timestamp and edit timestamp by delta.
func (d *DB) ShiftTimestamps(ctx context.Context, delta time.Duration) (int64, error) {
	ms := delta.Milliseconds()
	res, err := d.db.ExecContext(ctx, `
		UPDATE messages SET
			timestamp = timestamp + ?,
			timestamp_edited = CASE WHEN timestamp_edited IS NULL THEN NULL ELSE timestamp_edited + ? END`,
		ms, ms)
	if err != nil {
		return 0, fmt.Errorf("failed to shift timestamps: %w", err)
	}
	return res.RowsAffected()
}

// ExportTranscript writes "[author] content" lines ordered by timestamp, skipping bots,
// empty messages and the excluded channels. It returns the number of lines written.
func (d *DB) ExportTranscript(ctx context.Context, w io.Writer, excludeChannels []string) (int, error) {
	where := MessageFilter{ExcludeBots: true, ExcludeChannels: excludeChannels}.Where().And("m.content != ''")
	rows, err := d.db.QueryContext(ctx, "SELECT u.name, m.content"+messageFrom+where.SQL()+" ORDER BY m.timestamp, m.id",
		where.Args()...)
	if err != nil {
		return 0, fmt.Errorf("failed to query transcript: %w", err)
	}
	defer rows.Close()

	bw := bufio.NewWriter(w)
	n := 0
	for rows.Next() {
		var author, content string
		if err := rows.Scan(&author, &content); err != nil {
			return n, fmt.Errorf("failed to scan transcript line: %w", err)
		}
		if _, err := fmt.Fprintf(bw, "[%s] %s\n", author, content); err != nil {
			return n, fmt.Errorf("failed to write transcript: %w", err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, err
	}
	return n, bw.Flush()
}
