package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"discord-archive/database"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	guilds   map[string]*discordgo.Guild
	channels map[string]*discordgo.Channel
	members  map[string]*discordgo.Member
}

func (f fakeSource) Guild(id string) (*discordgo.Guild, error) {
	if g, ok := f.guilds[id]; ok {
		return g, nil
	}
	return nil, errors.New("unknown guild")
}

func (f fakeSource) Channel(id string) (*discordgo.Channel, error) {
	if ch, ok := f.channels[id]; ok {
		return ch, nil
	}
	return nil, errors.New("unknown channel")
}

func (f fakeSource) Member(guildID, userID string) (*discordgo.Member, error) {
	if m, ok := f.members[userID]; ok {
		return m, nil
	}
	return nil, errors.New("unknown member")
}

var ts = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newRecorder(t *testing.T) (*Recorder, *database.DB) {
	t.Helper()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	src := fakeSource{
		guilds: map[string]*discordgo.Guild{
			"g1": {ID: "g1", Name: "Guild", Roles: []*discordgo.Role{
				{ID: "r1", Name: "Mods", Color: 0xff0000, Position: 3},
				{ID: "r2", Name: "Everyone"},
			}},
		},
		channels: map[string]*discordgo.Channel{
			"cat": {ID: "cat", GuildID: "g1", Name: "Chat", Type: discordgo.ChannelTypeGuildCategory},
			"c1":  {ID: "c1", GuildID: "g1", Name: "general", Type: discordgo.ChannelTypeGuildText, ParentID: "cat"},
		},
		members: map[string]*discordgo.Member{
			"u1": {Nick: "Ally", Roles: []string{"r1"}},
		},
	}
	return NewRecorder(db, src), db
}

func sample(id, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Timestamp: ts,
		Author:    &discordgo.User{ID: "u1", Username: "alice", Discriminator: "0001"},
		Type:      discordgo.MessageTypeDefault,
	}
}

func TestRecordStoresEntityGraph(t *testing.T) {
	r, db := newRecorder(t)
	ctx := context.Background()

	msg := sample("m1", "hi <:wave:123456789012345678> there")
	msg.Attachments = []*discordgo.MessageAttachment{{ID: "a1", URL: "https://cdn/x.png", Filename: "x.png", Size: 10}}
	msg.Mentions = []*discordgo.User{{ID: "u2", Username: "bob"}}
	msg.Reactions = []*discordgo.MessageReactions{{Count: 2, Emoji: &discordgo.Emoji{Name: "👍"}}}

	created, err := r.Record(ctx, msg)
	require.NoError(t, err)
	assert.True(t, created)

	detail, err := db.GetMessageDetail(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Chat", detail.Channel.CategoryName)
	assert.Equal(t, "Ally", detail.Author.Nickname)
	require.Len(t, detail.Author.Roles, 1)
	assert.Equal(t, "#ff0000", detail.Author.Roles[0].Color)
	assert.Equal(t, int64(3), detail.WordCount)
	assert.JSONEq(t, `[{"id":"123456789012345678","name":"wave","is_animated":false}]`, string(detail.InlineEmojis))
	assert.JSONEq(t, `{"👍":{"name":"👍","is_animated":false,"count":2}}`, string(detail.Reactions))

	created, err = r.Record(ctx, msg)
	require.NoError(t, err)
	assert.False(t, created)

	dm := sample("m2", "private")
	dm.GuildID = ""
	dm.ChannelID = "dm"
	_, err = r.Record(ctx, dm)
	assert.Error(t, err)
}

func TestUpdateDeleteAndReactions(t *testing.T) {
	r, db := newRecorder(t)
	ctx := context.Background()
	_, err := r.Record(ctx, sample("m1", "before edit"))
	require.NoError(t, err)

	edited := ts.Add(time.Minute)
	upd := sample("m1", "after the edit")
	upd.EditedTimestamp = &edited
	require.NoError(t, r.Update(ctx, upd))

	m, err := db.GetMessage(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "after the edit", m.Content)
	assert.Equal(t, int64(3), m.WordCount)
	require.NotNil(t, m.TimestampEdited)

	// an edit for a message that was never seen records it
	require.NoError(t, r.Update(ctx, sample("m9", "late arrival")))
	_, err = db.GetMessage(ctx, "m9")
	require.NoError(t, err)

	heart := &discordgo.Emoji{ID: "77", Name: "heart"}
	require.NoError(t, r.AdjustReaction(ctx, "m1", heart, 1))
	require.NoError(t, r.AdjustReaction(ctx, "m1", heart, 1))
	m, err = db.GetMessage(ctx, "m1")
	require.NoError(t, err)
	var reactions map[string]Reaction
	require.NoError(t, json.Unmarshal(m.Reactions, &reactions))
	assert.Equal(t, 2, reactions["77:heart"].Count)

	require.NoError(t, r.AdjustReaction(ctx, "m1", heart, -2))
	m, err = db.GetMessage(ctx, "m1")
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(m.Reactions))

	require.NoError(t, r.Delete(ctx, "m1"))
	require.NoError(t, r.Delete(ctx, "m1"))
	_, err = db.GetMessage(ctx, "m1")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestSyncGuild(t *testing.T) {
	r, db := newRecorder(t)
	ctx := context.Background()

	g := &discordgo.Guild{
		ID:    "g5",
		Name:  "Fresh",
		Roles: []*discordgo.Role{{ID: "r9", Name: "Helpers", Position: 1}},
		Channels: []*discordgo.Channel{
			{ID: "k1", Name: "Voice", Type: discordgo.ChannelTypeGuildCategory},
			{ID: "v1", Name: "hangout", Type: discordgo.ChannelTypeGuildVoice, ParentID: "k1"},
		},
		Threads: []*discordgo.Channel{
			{ID: "t1", Name: "a thread", Type: discordgo.ChannelTypeGuildPublicThread, ParentID: "v1"},
		},
	}
	require.NoError(t, r.SyncGuild(ctx, g))

	v, err := db.GetChannel(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "voice", v.Type)
	assert.Equal(t, "Voice", v.CategoryName)
	assert.Equal(t, "g5", v.GuildID)

	th, err := db.GetChannel(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "thread", th.Type)
	assert.Equal(t, "hangout", th.CategoryName)

	_, err = db.GetChannel(ctx, "k1")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestMessageTypeName(t *testing.T) {
	assert.Equal(t, "Reply", MessageTypeName(discordgo.MessageTypeReply))
	assert.Equal(t, "Default", MessageTypeName(discordgo.MessageTypeDefault))
	assert.Equal(t, "Type99", MessageTypeName(discordgo.MessageType(99)))
}
