package database

import (
	"context"
	"encoding/json"
	"fmt"

	"discord-archive/models"
)

// ListMessages returns the number of messages matching f and the page at offset, newest first.
func (d *DB) ListMessages(ctx context.Context, f MessageFilter, limit, offset int) (int64, []models.MessageRow, error) {
	where := f.Where()

	var count int64
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*)"+messageFrom+where.SQL(), where.Args()...).Scan(&count); err != nil {
		return 0, nil, fmt.Errorf("failed to count messages: %w", err)
	}

	query := `SELECT m.id, COALESCE(g.name, ''), c.name, u.name, m.timestamp, m.char_count, m.word_count,
		m.attachments != '[]', m.mentions != '[]', m.inline_emojis != '[]', m.inline_emojis, m.content` +
		messageFrom + where.SQL() + " ORDER BY m.timestamp DESC, m.id DESC LIMIT ? OFFSET ?"
	args := append(where.Args(), limit, offset)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	results := []models.MessageRow{}
	for rows.Next() {
		var r models.MessageRow
		var ts int64
		var emojis string
		if err := rows.Scan(&r.ID, &r.ServerName, &r.ChannelName, &r.UserName, &ts, &r.CharCount, &r.WordCount,
			&r.ContainsAttachment, &r.ContainsMention, &r.ContainsEmoji, &emojis, &r.MessageContent); err != nil {
			return 0, nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		r.Timestamp = fromMillis(ts)
		r.EmojisUsed = json.RawMessage(emojis)
		results = append(results, r)
	}
	return count, results, rows.Err()
}
