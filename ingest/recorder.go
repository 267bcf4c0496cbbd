// Package ingest turns chat platform objects into archive records and writes them
// in dependency order: guild, channel, roles, author, then the message.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"discord-archive/database"
	"discord-archive/models"

	"github.com/bwmarrin/discordgo"
)

// Store is the write surface of the record store.
type Store interface {
	UpsertGuild(ctx context.Context, g models.Guild) error
	UpsertChannel(ctx context.Context, ch models.Channel) error
	UpsertRole(ctx context.Context, r models.Role) error
	UpsertUser(ctx context.Context, u models.User) error
	CreateMessage(ctx context.Context, m models.Message) (bool, error)
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	UpdateMessage(ctx context.Context, id string, patch models.MessagePatch) (*models.Message, error)
	DeleteMessage(ctx context.Context, id string) error
}

// Source resolves platform objects that events only reference by id.
type Source interface {
	Guild(guildID string) (*discordgo.Guild, error)
	Channel(channelID string) (*discordgo.Channel, error)
	Member(guildID, userID string) (*discordgo.Member, error)
}

// SessionSource resolves objects from the session state cache, falling back to the REST API.
type SessionSource struct {
	Session *discordgo.Session
}

func (s SessionSource) Guild(guildID string) (*discordgo.Guild, error) {
	if g, err := s.Session.State.Guild(guildID); err == nil {
		return g, nil
	}
	return s.Session.Guild(guildID)
}

func (s SessionSource) Channel(channelID string) (*discordgo.Channel, error) {
	if ch, err := s.Session.State.Channel(channelID); err == nil {
		return ch, nil
	}
	return s.Session.Channel(channelID)
}

func (s SessionSource) Member(guildID, userID string) (*discordgo.Member, error) {
	if m, err := s.Session.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	return s.Session.GuildMember(guildID, userID)
}

// Recorder writes platform objects into the store.
type Recorder struct {
	store  Store
	source Source
}

func NewRecorder(store Store, source Source) *Recorder {
	return &Recorder{store: store, source: source}
}

// Record stores a message together with the entities it references. Direct messages are
// ignored. created is false when the message was already archived.
func (r *Recorder) Record(ctx context.Context, m *discordgo.Message) (created bool, err error) {
	if m == nil || m.Author == nil {
		return false, nil
	}
	ch, err := r.source.Channel(m.ChannelID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve channel %s: %w", m.ChannelID, err)
	}
	guildID := m.GuildID
	if guildID == "" {
		guildID = ch.GuildID
	}
	if guildID == "" {
		return false, nil
	}

	guild, err := r.source.Guild(guildID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve guild %s: %w", guildID, err)
	}
	if err := r.store.UpsertGuild(ctx, GuildFromDiscord(guild)); err != nil {
		return false, err
	}
	if err := r.upsertChannel(ctx, ch, guildID); err != nil {
		return false, err
	}

	member := m.Member
	if member == nil || len(member.Roles) == 0 {
		if full, err := r.source.Member(guildID, m.Author.ID); err == nil {
			member = full
		}
	}
	if member != nil {
		if err := r.upsertMemberRoles(ctx, guild, member); err != nil {
			return false, err
		}
	}
	if err := r.store.UpsertUser(ctx, UserFromDiscord(m.Author, member)); err != nil {
		return false, err
	}

	msg, err := MessageFromDiscord(m, guildID)
	if err != nil {
		return false, fmt.Errorf("failed to convert message %s: %w", m.ID, err)
	}
	return r.store.CreateMessage(ctx, msg)
}

// Update applies an edit event. Unknown messages are recorded in full when the event carries an author.
func (r *Recorder) Update(ctx context.Context, m *discordgo.Message) error {
	if m == nil {
		return nil
	}
	converted, err := MessageFromDiscord(m, m.GuildID)
	if err != nil {
		return fmt.Errorf("failed to convert message %s: %w", m.ID, err)
	}

	patch := models.MessagePatch{Embeds: &converted.Embeds}
	// embed-only updates carry no edit timestamp and may omit everything else
	if m.EditedTimestamp != nil {
		patch.Content = &converted.Content
		patch.TimestampEdited = m.EditedTimestamp
		patch.IsPinned = &converted.IsPinned
		patch.Attachments = &converted.Attachments
		patch.Mentions = &converted.Mentions
		patch.InlineEmojis = &converted.InlineEmojis
	}

	_, err = r.store.UpdateMessage(ctx, m.ID, patch)
	if errors.Is(err, database.ErrNotFound) {
		_, err = r.Record(ctx, m)
	}
	return err
}

// Delete removes a message. Messages that were never archived are ignored.
func (r *Recorder) Delete(ctx context.Context, messageID string) error {
	err := r.store.DeleteMessage(ctx, messageID)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	return err
}

// AdjustReaction changes the count of one reaction by delta, dropping it at zero.
func (r *Recorder) AdjustReaction(ctx context.Context, messageID string, emoji *discordgo.Emoji, delta int) error {
	key := ReactionKey(emoji)
	if key == "" {
		return nil
	}
	m, err := r.store.GetMessage(ctx, messageID)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	reactions := make(map[string]Reaction)
	if len(m.Reactions) > 0 {
		if err := json.Unmarshal(m.Reactions, &reactions); err != nil {
			return fmt.Errorf("failed to decode reactions of %s: %w", messageID, err)
		}
	}
	entry, ok := reactions[key]
	if !ok {
		entry = Reaction{ID: emoji.ID, Name: emoji.Name, IsAnimated: emoji.Animated}
	}
	entry.Count += delta
	if entry.Count <= 0 {
		delete(reactions, key)
	} else {
		reactions[key] = entry
	}

	raw, err := json.Marshal(reactions)
	if err != nil {
		return err
	}
	encoded := json.RawMessage(raw)
	_, err = r.store.UpdateMessage(ctx, messageID, models.MessagePatch{Reactions: &encoded})
	return err
}

// SyncGuild stores a guild with all of its roles and channels.
func (r *Recorder) SyncGuild(ctx context.Context, g *discordgo.Guild) error {
	if err := r.store.UpsertGuild(ctx, GuildFromDiscord(g)); err != nil {
		return err
	}
	for _, role := range g.Roles {
		if err := r.store.UpsertRole(ctx, RoleFromDiscord(role, g.ID)); err != nil {
			return err
		}
	}

	names := make(map[string]string, len(g.Channels))
	for _, ch := range g.Channels {
		names[ch.ID] = ch.Name
	}
	for _, ch := range append(append([]*discordgo.Channel{}, g.Channels...), g.Threads...) {
		if ch.Type == discordgo.ChannelTypeGuildCategory {
			continue
		}
		if ch.GuildID == "" {
			ch.GuildID = g.ID
		}
		if err := r.store.UpsertChannel(ctx, ChannelFromDiscord(ch, names[ch.ParentID])); err != nil {
			return err
		}
	}
	return nil
}

// SyncChannel stores a single channel, resolving its category name.
func (r *Recorder) SyncChannel(ctx context.Context, ch *discordgo.Channel) error {
	if ch.GuildID == "" || ch.Type == discordgo.ChannelTypeGuildCategory {
		return nil
	}
	return r.upsertChannel(ctx, ch, ch.GuildID)
}

// SyncRole stores a single role.
func (r *Recorder) SyncRole(ctx context.Context, guildID string, role *discordgo.Role) error {
	return r.store.UpsertRole(ctx, RoleFromDiscord(role, guildID))
}

func (r *Recorder) upsertChannel(ctx context.Context, ch *discordgo.Channel, guildID string) error {
	categoryName := ""
	if ch.ParentID != "" {
		if parent, err := r.source.Channel(ch.ParentID); err == nil {
			categoryName = parent.Name
		}
	}
	converted := ChannelFromDiscord(ch, categoryName)
	converted.GuildID = guildID
	return r.store.UpsertChannel(ctx, converted)
}

func (r *Recorder) upsertMemberRoles(ctx context.Context, g *discordgo.Guild, member *discordgo.Member) error {
	for _, role := range g.Roles {
		for _, id := range member.Roles {
			if role.ID != id {
				continue
			}
			if err := r.store.UpsertRole(ctx, RoleFromDiscord(role, g.ID)); err != nil {
				return err
			}
		}
	}
	return nil
}
