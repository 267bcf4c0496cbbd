package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"discord-archive/models"
	"discord-archive/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	recorded  []string
	updated   []string
	deleted   []string
	reactions map[string]int
	guilds    []string
	channels  []string
	roles     []string
	failOn    string
}

func (f *fakeArchive) Record(ctx context.Context, m *discordgo.Message) (bool, error) {
	f.recorded = append(f.recorded, m.ID)
	return true, nil
}

func (f *fakeArchive) Update(ctx context.Context, m *discordgo.Message) error {
	f.updated = append(f.updated, m.ID)
	return nil
}

func (f *fakeArchive) Delete(ctx context.Context, id string) error {
	if id == f.failOn {
		return errors.New("boom")
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeArchive) AdjustReaction(ctx context.Context, id string, e *discordgo.Emoji, delta int) error {
	if f.reactions == nil {
		f.reactions = map[string]int{}
	}
	f.reactions[id+":"+e.Name] += delta
	return nil
}

func (f *fakeArchive) SyncGuild(ctx context.Context, g *discordgo.Guild) error {
	f.guilds = append(f.guilds, g.ID)
	return nil
}

func (f *fakeArchive) SyncChannel(ctx context.Context, ch *discordgo.Channel) error {
	f.channels = append(f.channels, ch.ID)
	return nil
}

func (f *fakeArchive) SyncRole(ctx context.Context, guildID string, r *discordgo.Role) error {
	f.roles = append(f.roles, guildID+"/"+r.ID)
	return nil
}

func newHandlers() (*Handlers, *fakeArchive) {
	a := &fakeArchive{}
	return New(a, nil, nil, nil, utils.NewAuth(models.BotConfig{})), a
}

func TestMessageEvents(t *testing.T) {
	h, a := newHandlers()

	h.MessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{ID: "m1", GuildID: "g1", Author: &discordgo.User{ID: "u1"}}})
	h.MessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{ID: "dm", Author: &discordgo.User{ID: "u1"}}})
	h.MessageUpdate(nil, &discordgo.MessageUpdate{Message: &discordgo.Message{ID: "m1", GuildID: "g1"}})
	h.MessageDelete(nil, &discordgo.MessageDelete{Message: &discordgo.Message{ID: "m1"}})

	assert.Equal(t, []string{"m1"}, a.recorded)
	assert.Equal(t, []string{"m1"}, a.updated)
	assert.Equal(t, []string{"m1"}, a.deleted)
}

func TestMessageDeleteBulkContinuesAfterFailure(t *testing.T) {
	h, a := newHandlers()
	a.failOn = "m2"
	h.MessageDeleteBulk(nil, &discordgo.MessageDeleteBulk{Messages: []string{"m1", "m2", "m3"}})
	assert.Equal(t, []string{"m1", "m3"}, a.deleted)
}

func TestReactionEvents(t *testing.T) {
	h, a := newHandlers()
	r := &discordgo.MessageReaction{MessageID: "m1", Emoji: discordgo.Emoji{Name: "👍"}}
	h.MessageReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: r})
	h.MessageReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: r})
	h.MessageReactionRemove(nil, &discordgo.MessageReactionRemove{MessageReaction: r})
	assert.Equal(t, 1, a.reactions["m1:👍"])
}

func TestEntityEvents(t *testing.T) {
	h, a := newHandlers()
	h.GuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "g1"}})
	h.GuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "g2", Unavailable: true}})
	h.ChannelCreate(nil, &discordgo.ChannelCreate{Channel: &discordgo.Channel{ID: "c1", GuildID: "g1"}})
	h.ChannelUpdate(nil, &discordgo.ChannelUpdate{Channel: &discordgo.Channel{ID: "dm"}})
	h.ThreadCreate(nil, &discordgo.ThreadCreate{Channel: &discordgo.Channel{ID: "t1", GuildID: "g1"}})
	h.GuildRoleCreate(nil, &discordgo.GuildRoleCreate{GuildRole: &discordgo.GuildRole{GuildID: "g1", Role: &discordgo.Role{ID: "r1"}}})

	assert.Equal(t, []string{"g1"}, a.guilds)
	assert.Equal(t, []string{"c1", "t1"}, a.channels)
	assert.Equal(t, []string{"g1/r1"}, a.roles)
}

func TestFormatTotals(t *testing.T) {
	out := formatTotals(&models.MessageTotals{
		Totals:                models.Totals{TotalMessages: 12345, TotalWords: 67890, TotalCharacters: 1234567},
		MessagesLast24Hours:   42,
		AverageMessagesPerDay: 1234.5,
		MostActiveDay:         &models.DailyCount{Date: "2024-03-09", Count: 2000},
	})
	assert.Contains(t, out, "**Messages:** 12,345")
	assert.Contains(t, out, "**Characters:** 1,234,567")
	assert.Contains(t, out, "**Average per day:** 1,234.50")
	assert.Contains(t, out, "**Busiest day:** 2024-03-09 (2,000)")
	assert.NotContains(t, out, "Quietest")
}

func TestFormatTask(t *testing.T) {
	out := formatTask(&models.ImportTask{
		ID: "abc", Date: "2024-03-09", Timezone: "UTC", Status: models.TaskFailed,
		ChannelsProcessed: 3, MessagesStored: 1500, MessagesFailed: 2, Error: "rate limited",
		CreatedAt: time.Now(),
	})
	assert.Contains(t, out, "Task `abc`")
	assert.Contains(t, out, "messages stored: 1,500, failed: 2")
	assert.Contains(t, out, "Error: rate limited")
}

func TestTimezoneChoices(t *testing.T) {
	all := timezoneChoices("")
	require.Len(t, all, maxChoices)
	assert.Equal(t, "UTC", all[0].Name)

	chicago := timezoneChoices("chic")
	require.Len(t, chicago, 1)
	assert.Equal(t, "America/Chicago", chicago[0].Value)

	assert.Empty(t, timezoneChoices("nowhere"))
}

func TestRequester(t *testing.T) {
	assert.Equal(t, "u1", requester(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{Member: &discordgo.Member{User: &discordgo.User{ID: "u1"}}}}))
	assert.Equal(t, "u2", requester(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: &discordgo.User{ID: "u2"}}}))
}
