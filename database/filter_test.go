package database

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"discord-archive/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayRange(t *testing.T) {
	start, end, ok := DayRange("2024-01-15", "America/Chicago")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 16, 6, 0, 0, 0, time.UTC), end)

	_, _, ok = DayRange("2024-13-45", "")
	assert.False(t, ok)
	_, _, ok = DayRange("2024-01-15", "Mars/Olympus")
	assert.False(t, ok)
	_, _, ok = DayRange("", "UTC")
	assert.False(t, ok)
}

func TestClauseIsImmutable(t *testing.T) {
	base := Clause{}.And("a = ?", 1)
	left := base.And("b = ?", 2)
	right := base.And("c = ?", 3)

	assert.Equal(t, " WHERE a = ? AND b = ?", left.SQL())
	assert.Equal(t, " WHERE a = ? AND c = ?", right.SQL())
	assert.Equal(t, []any{1, 3}, right.Args())
	assert.Empty(t, Clause{}.SQL())
}

func TestDateFilterUsesTimezone(t *testing.T) {
	db := newTestDB(t)
	seedEntities(t, db)
	ctx := context.Background()

	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	addMessage(t, db, "m1", "c1", "u1", "late night", time.Date(2024, 1, 15, 23, 30, 0, 0, chicago))

	count := func(f MessageFilter) int64 {
		n, _, err := db.ListMessages(ctx, f, 50, 0)
		require.NoError(t, err)
		return n
	}
	assert.Equal(t, int64(1), count(MessageFilter{Date: "2024-01-15", Timezone: "America/Chicago"}))
	assert.Equal(t, int64(0), count(MessageFilter{Date: "2024-01-15", Timezone: "UTC"}))
	assert.Equal(t, int64(1), count(MessageFilter{Date: "2024-01-16"}))
	// an unusable zone only disables the date filter
	assert.Equal(t, int64(0), count(MessageFilter{Date: "2024-01-15", Timezone: "Bad/Zone", User: "bob"}))
	assert.Equal(t, int64(1), count(MessageFilter{Date: "2024-01-15", Timezone: "Bad/Zone", User: "alice"}))
}

func TestListMessagesFiltersAndPages(t *testing.T) {
	db := newTestDB(t)
	seedEntities(t, db)
	ctx := context.Background()

	addMessage(t, db, "m1", "c1", "u1", "oldest", base)
	addMessage(t, db, "m2", "c1", "u2", "middle", base.Add(time.Minute))
	addMessage(t, db, "m3", "c2", "u3", "beep", base.Add(2*time.Minute))
	_, err := db.CreateMessage(ctx, models.Message{
		ID: "m4", ChannelID: "c3", AuthorID: "u1", Content: "look :wave:", Timestamp: base.Add(3 * time.Minute),
		Attachments:  json.RawMessage(`[ {"url": "a.png"} ]`),
		InlineEmojis: json.RawMessage(`["wave"]`),
		Mentions:     json.RawMessage(`[ ]`),
	})
	require.NoError(t, err)

	count, rows, err := db.ListMessages(ctx, MessageFilter{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	require.Len(t, rows, 2)
	assert.Equal(t, "m4", rows[0].ID)
	assert.Equal(t, "Guild Two", rows[0].ServerName)
	assert.True(t, rows[0].ContainsAttachment)
	assert.True(t, rows[0].ContainsEmoji)
	assert.False(t, rows[0].ContainsMention)
	assert.JSONEq(t, `["wave"]`, string(rows[0].EmojisUsed))

	_, rows, err = db.ListMessages(ctx, MessageFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m2", "m1"}, []string{rows[0].ID, rows[1].ID})

	cases := []struct {
		name   string
		filter MessageFilter
		want   int64
	}{
		{"server", MessageFilter{Server: "Guild One"}, 3},
		{"channel", MessageFilter{Channel: "general"}, 2},
		{"user", MessageFilter{User: "alice"}, 2},
		{"exclude bots", MessageFilter{ExcludeBots: true}, 3},
		{"exclude users", MessageFilter{ExcludeUsers: []string{"alice", " "}}, 2},
		{"exclude channels", MessageFilter{ExcludeChannels: []string{"general", "random"}}, 1},
		{"attachment", MessageFilter{HasAttachment: true}, 1},
		{"mention", MessageFilter{HasMention: true}, 0},
		{"combined", MessageFilter{Server: "Guild One", ExcludeBots: true, User: "bob"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, _, err := db.ListMessages(ctx, tc.filter, 50, 0)
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestImportTasksLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	task, err := db.CreateTask(ctx, "requester", "g1", "2024-01-15", "UTC", base, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, task.Status)
	assert.Equal(t, base.Add(time.Hour), task.ExpiresAt)

	task.Status = models.TaskCompleted
	task.ChannelsProcessed = 3
	task.MessagesStored = 12
	task.UpdatedAt = base.Add(time.Minute)
	require.NoError(t, db.UpdateTask(ctx, task))

	got, err := db.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, got)
	assert.True(t, got.Finished())

	later, err := db.CreateTask(ctx, "requester", "g1", "2024-01-16", "UTC", base.Add(2*time.Hour), time.Hour)
	require.NoError(t, err)
	latest, err := db.LatestTask(ctx, "requester")
	require.NoError(t, err)
	assert.Equal(t, later.ID, latest.ID)

	expired, err := db.ExpireTasks(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	_, err = db.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.LatestTask(ctx, "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportAndShift(t *testing.T) {
	db := newTestDB(t)
	seedEntities(t, db)
	ctx := context.Background()
	addMessage(t, db, "m1", "c1", "u1", "hi", base)
	addMessage(t, db, "m2", "c2", "u2", "in random", base.Add(time.Minute))
	addMessage(t, db, "m3", "c1", "u3", "bot noise", base.Add(2*time.Minute))
	addMessage(t, db, "m4", "c1", "u2", "", base.Add(3*time.Minute))
	addMessage(t, db, "m5", "c1", "u2", "hello", base.Add(4*time.Minute))

	var buf bytes.Buffer
	n, err := db.ExportTranscript(ctx, &buf, []string{"random"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "[alice] hi\n[bob] hello\n", buf.String())

	shifted, err := db.ShiftTimestamps(ctx, -time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(5), shifted)
	m, err := db.GetMessage(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, base.Add(-time.Hour).Equal(m.Timestamp))
}

func TestGuildIDFilter(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	seedEntities(t, d)
	addMessage(t, d, "m1", "c1", "u1", "one", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	addMessage(t, d, "m2", "c3", "u1", "two words", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	totals, err := d.FilteredTotals(ctx, MessageFilter{GuildID: "g2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.TotalMessages)
	assert.Equal(t, int64(2), totals.TotalWords)
}
