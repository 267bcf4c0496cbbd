package scanner

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"discord-archive/database"
	"discord-archive/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	channels    []*discordgo.Channel
	threads     []*discordgo.Channel
	messages    map[string][]*discordgo.Message
	channelsErr error
}

func (f *fakeFetcher) GuildChannels(string, ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	return f.channels, f.channelsErr
}

func (f *fakeFetcher) GuildThreadsActive(string, ...discordgo.RequestOption) (*discordgo.ThreadsList, error) {
	return &discordgo.ThreadsList{Threads: f.threads}, nil
}

func (f *fakeFetcher) ChannelMessages(channelID string, limit int, _, afterID, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	after, _ := strconv.ParseUint(afterID, 10, 64)
	var out []*discordgo.Message
	for _, m := range f.messages[channelID] {
		if id, _ := strconv.ParseUint(m.ID, 10, 64); id > after {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	ids    []string
	failOn map[string]bool
}

func (r *fakeRecorder) Record(_ context.Context, m *discordgo.Message) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn[m.ID] {
		delete(r.failOn, m.ID)
		return false, errors.New("database is locked")
	}
	r.ids = append(r.ids, m.ID)
	return true, nil
}

func message(channelID string, ts time.Time, seq int) *discordgo.Message {
	id, _ := strconv.ParseUint(Snowflake(ts), 10, 64)
	return &discordgo.Message{ID: strconv.FormatUint(id+uint64(seq), 10), ChannelID: channelID, Timestamp: ts}
}

func newTaskStore(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestParseDay(t *testing.T) {
	for _, in := range []string{"2024-01-15", "01/15/24", "1/15/24", "01/15/2024"} {
		day, err := ParseDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2024-01-15", day)
	}
	_, err := ParseDay("15.01.2024")
	assert.ErrorIs(t, err, database.ErrInvalidField)
}

func TestSnowflakeMatchesPlatformTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	got, err := discordgo.SnowflakeTimestamp(Snowflake(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))
	assert.Equal(t, "0", Snowflake(time.Unix(0, 0)))
}

func TestImportDay(t *testing.T) {
	db := newTaskStore(t)
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	f := &fakeFetcher{
		channels: []*discordgo.Channel{
			{ID: "1", Name: "general", Type: discordgo.ChannelTypeGuildText},
			{ID: "2", Name: "voice", Type: discordgo.ChannelTypeGuildVoice},
		},
		threads:  []*discordgo.Channel{{ID: "3", Name: "thread", Type: discordgo.ChannelTypeGuildPublicThread}},
		messages: map[string][]*discordgo.Message{},
	}
	f.messages["1"] = append(f.messages["1"], message("1", day.Add(-time.Minute), 0))
	for i := range 150 {
		f.messages["1"] = append(f.messages["1"], message("1", day.Add(time.Duration(i)*time.Minute), i))
	}
	f.messages["1"] = append(f.messages["1"], message("1", day.Add(24*time.Hour), 0))
	f.messages["2"] = []*discordgo.Message{message("2", day.Add(time.Hour), 0)}
	f.messages["3"] = []*discordgo.Message{message("3", day.Add(2*time.Hour), 0)}

	rec := &fakeRecorder{}
	im := NewImporter(f, rec, db, time.Hour)
	task, err := im.Start(context.Background(), "requester", "g1", "01/15/24", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", task.Date)
	assert.Equal(t, "UTC", task.Timezone)
	im.Wait()

	got, err := db.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, got.Status)
	assert.Equal(t, 2, got.ChannelsProcessed)
	assert.Equal(t, 151, got.MessagesStored)
	assert.Len(t, rec.ids, 151)
}

func TestImportFailsWithoutChannels(t *testing.T) {
	db := newTaskStore(t)
	f := &fakeFetcher{channelsErr: errors.New("missing access")}
	im := NewImporter(f, &fakeRecorder{}, db, time.Hour)

	task, err := im.Start(context.Background(), "requester", "g1", "2024-01-15", "Europe/Berlin")
	require.NoError(t, err)
	im.Wait()

	got, err := db.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskFailed, got.Status)
	assert.Contains(t, got.Error, "missing access")

	_, err = im.Start(context.Background(), "requester", "g1", "2024-01-15", "Nowhere/City")
	assert.ErrorIs(t, err, database.ErrInvalidField)
}

func TestImportContinuesPastFailedMessage(t *testing.T) {
	db := newTaskStore(t)
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	f := &fakeFetcher{
		channels: []*discordgo.Channel{{ID: "1", Name: "general", Type: discordgo.ChannelTypeGuildText}},
		messages: map[string][]*discordgo.Message{},
	}
	for i := range 120 {
		f.messages["1"] = append(f.messages["1"], message("1", day.Add(time.Duration(i)*time.Minute), i))
	}
	broken := f.messages["1"][40].ID

	rec := &fakeRecorder{failOn: map[string]bool{broken: true}}
	im := NewImporter(f, rec, db, time.Hour)
	task, err := im.Start(context.Background(), "requester", "g1", "2024-01-15", "UTC")
	require.NoError(t, err)
	im.Wait()

	got, err := db.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskPartial, got.Status)
	assert.True(t, got.Finished())
	assert.Equal(t, 119, got.MessagesStored)
	assert.Equal(t, 1, got.MessagesFailed)
	assert.Contains(t, got.Error, "1 message(s) not stored: "+broken)
	assert.Len(t, rec.ids, 119)
	assert.NotContains(t, rec.ids, broken)
	assert.Contains(t, rec.ids, f.messages["1"][119].ID)
}

func TestFailureSummary(t *testing.T) {
	ids := make([]string, 12)
	for i := range ids {
		ids[i] = strconv.Itoa(i)
	}
	got := failureSummary([]string{"7"}, ids)
	assert.Equal(t, "1 channel(s) stopped early: 7; 12 message(s) not stored: 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, ...", got)
	assert.Empty(t, failureSummary(nil, nil))
}
