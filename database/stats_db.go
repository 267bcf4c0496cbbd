package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"discord-archive/models"
)

// GroupAggregate holds the filtered counts of one channel or author.
type GroupAggregate struct {
	ID          string
	Name        string
	Nickname    string
	IsBot       bool
	Messages    int64
	Words       int64
	Characters  int64
	Attachments int64
	Mentions    int64
	Emojis      int64
}

// PairCount is the filtered message count of one author within one channel.
type PairCount struct {
	ChannelID   string
	ChannelName string
	AuthorID    string
	AuthorName  string
	Count       int64
}

const aggregateColumns = `COUNT(m.id), COALESCE(SUM(m.word_count), 0), COALESCE(SUM(m.char_count), 0),
	COALESCE(SUM(m.attachments != '[]'), 0), COALESCE(SUM(m.mentions != '[]'), 0),
	COALESCE(SUM(m.inline_emojis != '[]'), 0)`

// AggregateByChannel returns the filtered counts of every channel with at least one match.
func (d *DB) AggregateByChannel(ctx context.Context, f MessageFilter) ([]GroupAggregate, error) {
	where := f.Where()
	query := "SELECT c.id, c.name, " + aggregateColumns + messageFrom + where.SQL() +
		" GROUP BY c.id, c.name"
	rows, err := d.db.QueryContext(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by channel: %w", err)
	}
	defer rows.Close()

	var out []GroupAggregate
	for rows.Next() {
		var a GroupAggregate
		if err := rows.Scan(&a.ID, &a.Name, &a.Messages, &a.Words, &a.Characters,
			&a.Attachments, &a.Mentions, &a.Emojis); err != nil {
			return nil, fmt.Errorf("failed to scan channel aggregate: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AggregateByAuthor returns the filtered counts of every author with at least one match.
func (d *DB) AggregateByAuthor(ctx context.Context, f MessageFilter) ([]GroupAggregate, error) {
	where := f.Where()
	query := "SELECT u.id, u.name, COALESCE(u.nickname, ''), u.is_bot, " + aggregateColumns + messageFrom +
		where.SQL() + " GROUP BY u.id, u.name, u.nickname, u.is_bot"
	rows, err := d.db.QueryContext(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by author: %w", err)
	}
	defer rows.Close()

	var out []GroupAggregate
	for rows.Next() {
		var a GroupAggregate
		if err := rows.Scan(&a.ID, &a.Name, &a.Nickname, &a.IsBot, &a.Messages, &a.Words, &a.Characters,
			&a.Attachments, &a.Mentions, &a.Emojis); err != nil {
			return nil, fmt.Errorf("failed to scan author aggregate: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountByChannelAndAuthor returns the filtered message count of every (channel, author) pair.
func (d *DB) CountByChannelAndAuthor(ctx context.Context, f MessageFilter) ([]PairCount, error) {
	where := f.Where()
	query := "SELECT c.id, c.name, u.id, u.name, COUNT(m.id)" + messageFrom + where.SQL() +
		" GROUP BY c.id, c.name, u.id, u.name"
	rows, err := d.db.QueryContext(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to count by channel and author: %w", err)
	}
	defer rows.Close()

	var out []PairCount
	for rows.Next() {
		var p PairCount
		if err := rows.Scan(&p.ChannelID, &p.ChannelName, &p.AuthorID, &p.AuthorName, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan pair count: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FilteredTotals returns the message/word/char totals of every message matching f.
func (d *DB) FilteredTotals(ctx context.Context, f MessageFilter) (models.Totals, error) {
	where := f.Where()
	var t models.Totals
	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(m.id), COALESCE(SUM(m.word_count), 0), COALESCE(SUM(m.char_count), 0)"+
			messageFrom+where.SQL(), where.Args()...).Scan(&t.TotalMessages, &t.TotalWords, &t.TotalCharacters)
	if err != nil {
		return t, fmt.Errorf("failed to compute totals: %w", err)
	}
	return t, nil
}

// CountBetween returns the number of messages matching f with a timestamp in [start, end].
func (d *DB) CountBetween(ctx context.Context, f MessageFilter, start, end time.Time) (int64, error) {
	where := f.Where().And("m.timestamp >= ? AND m.timestamp <= ?", toMillis(start), toMillis(end))
	var n int64
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(m.id)"+messageFrom+where.SQL(), where.Args()...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

// DailyCounts returns the number of matching messages per UTC calendar day, in ascending date order.
func (d *DB) DailyCounts(ctx context.Context, f MessageFilter) ([]models.DailyCount, error) {
	where := f.Where()
	query := "SELECT date(m.timestamp / 1000, 'unixepoch') AS day, COUNT(m.id)" + messageFrom +
		where.SQL() + " GROUP BY day ORDER BY day"
	rows, err := d.db.QueryContext(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages per day: %w", err)
	}
	defer rows.Close()

	days := []models.DailyCount{}
	for rows.Next() {
		var dc models.DailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily count: %w", err)
		}
		days = append(days, dc)
	}
	return days, rows.Err()
}

// MinuteCounts returns matching message counts keyed by the unix minute of their timestamp,
// restricted to [start, end].
func (d *DB) MinuteCounts(ctx context.Context, f MessageFilter, start, end time.Time) (map[int64]int64, error) {
	where := f.Where().And("m.timestamp >= ? AND m.timestamp <= ?", toMillis(start), toMillis(end))
	query := "SELECT m.timestamp / 60000 AS minute, COUNT(m.id)" + messageFrom + where.SQL() + " GROUP BY minute"
	rows, err := d.db.QueryContext(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages per minute: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var minute, n int64
		if err := rows.Scan(&minute, &n); err != nil {
			return nil, fmt.Errorf("failed to scan minute count: %w", err)
		}
		counts[minute] = n
	}
	return counts, rows.Err()
}

// RecentMessages returns the newest matching messages with author and channel joined.
// Counts and relative time are left for the caller.
func (d *DB) RecentMessages(ctx context.Context, f MessageFilter, limit int) ([]models.RecentMessage, error) {
	where := f.Where()
	query := `SELECT m.id, u.name, COALESCE(u.nickname, ''), u.id, c.name, m.timestamp, m.content,
		COALESCE(u.avatar_url, '')` + messageFrom + where.SQL() + " ORDER BY m.timestamp DESC, m.id DESC LIMIT ?"
	rows, err := d.db.QueryContext(ctx, query, append(where.Args(), limit)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent messages: %w", err)
	}
	defer rows.Close()

	out := []models.RecentMessage{}
	for rows.Next() {
		var r models.RecentMessage
		var ts int64
		if err := rows.Scan(&r.ID, &r.UserName, &r.Nickname, &r.UserID, &r.ChannelName, &ts,
			&r.MessageContent, &r.Avatar); err != nil {
			return nil, fmt.Errorf("failed to scan recent message: %w", err)
		}
		r.Timestamp = fromMillis(ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

// EachContent streams the content of every matching message with non-empty content.
func (d *DB) EachContent(ctx context.Context, f MessageFilter, fn func(content string) error) error {
	where := f.Where().And("m.content != ''")
	rows, err := d.db.QueryContext(ctx, "SELECT m.content"+messageFrom+where.SQL()+" ORDER BY m.id", where.Args()...)
	if err != nil {
		return fmt.Errorf("failed to stream message contents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var content sql.RawBytes
		if err := rows.Scan(&content); err != nil {
			return fmt.Errorf("failed to scan message content: %w", err)
		}
		if err := fn(string(content)); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ContentLength returns the number of matching messages with non-empty content and their
// mean length in characters.
func (d *DB) ContentLength(ctx context.Context, f MessageFilter) (count int64, avg float64, err error) {
	where := f.Where().And("m.content != ''")
	var mean sql.NullFloat64
	err = d.db.QueryRowContext(ctx, "SELECT COUNT(m.id), AVG(length(m.content))"+messageFrom+where.SQL(),
		where.Args()...).Scan(&count, &mean)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to measure message contents: %w", err)
	}
	return count, mean.Float64, nil
}
