package database

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"discord-archive/models"
	"discord-archive/utils"
)

const messageColumns = `id, guild_id, channel_id, author_id, type, content, timestamp,
	timestamp_edited, call_ended, is_pinned, reference_message_id, reactions, attachments,
	embeds, stickers, mentions, inline_emojis, word_count, char_count`

// CreateMessage stores m once per id. Derived counts are recomputed from the content and the
// guild is taken from the channel. created is false when the id was already stored.
// The owning channel's and author's totals are rebuilt afterwards.
func (d *DB) CreateMessage(ctx context.Context, m models.Message) (created bool, err error) {
	if m.ID == "" {
		return false, fmt.Errorf("%w: message id is required", ErrInvalidField)
	}
	row, err := newMessageRow(m)
	if err != nil {
		return false, err
	}

	err = d.withTx(ctx, func(tx *sql.Tx) error {
		guildID, err := resolveGuild(ctx, tx, m.ChannelID, m.GuildID)
		if err != nil {
			return err
		}
		row.GuildID = guildID

		res, err := tx.ExecContext(ctx, `
			INSERT INTO messages (`+messageColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING`, row.args()...)
		if err != nil {
			return fmt.Errorf("failed to insert message %s: %w", m.ID, mapError(err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		created = true
		return recomputeOwners(ctx, tx, []string{row.ChannelID}, []string{row.AuthorID})
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// GetMessage returns the stored message with the given id.
func (d *DB) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	return getMessage(ctx, d.db, id)
}

// UpdateMessage applies patch to the message and persists it. Counts are recomputed, the guild
// follows a changed channel, and totals of the previous and current owners are rebuilt.
func (d *DB) UpdateMessage(ctx context.Context, id string, patch models.MessagePatch) (*models.Message, error) {
	var updated *models.Message
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getMessage(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err := applyPatch(*current, patch)
		if err != nil {
			return err
		}
		if next.ChannelID != current.ChannelID {
			next.GuildID = ""
		}
		guildID, err := resolveGuild(ctx, tx, next.ChannelID, next.GuildID)
		if err != nil {
			return err
		}
		next.GuildID = guildID

		row, err := newMessageRow(next)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE messages SET guild_id = ?, channel_id = ?, author_id = ?, type = ?, content = ?,
				timestamp = ?, timestamp_edited = ?, call_ended = ?, is_pinned = ?,
				reference_message_id = ?, reactions = ?, attachments = ?, embeds = ?, stickers = ?,
				mentions = ?, inline_emojis = ?, word_count = ?, char_count = ?
			WHERE id = ?`, append(row.args()[1:], id)...)
		if err != nil {
			return fmt.Errorf("failed to update message %s: %w", id, mapError(err))
		}

		if err := recomputeOwners(ctx, tx,
			[]string{current.ChannelID, next.ChannelID},
			[]string{current.AuthorID, next.AuthorID}); err != nil {
			return err
		}
		updated, err = getMessage(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteMessage removes the message, clears replies pointing at it and rebuilds the totals
// of its former channel and author.
func (d *DB) DeleteMessage(ctx context.Context, id string) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		var channelID, authorID string
		err := tx.QueryRowContext(ctx,
			"SELECT channel_id, author_id FROM messages WHERE id = ?", id).Scan(&channelID, &authorID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("message %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to look up message %s: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete message %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE messages SET reference_message_id = NULL WHERE reference_message_id = ?", id); err != nil {
			return fmt.Errorf("failed to detach replies to %s: %w", id, err)
		}
		return recomputeOwners(ctx, tx, []string{channelID}, []string{authorID})
	})
}

// GetMessageDetail returns the message with its guild, channel, author roles and the
// replied-to message when that message is stored locally.
func (d *DB) GetMessageDetail(ctx context.Context, id string) (*models.MessageDetail, error) {
	m, err := d.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.MessageDetail{
		ID:              m.ID,
		Type:            m.Type,
		Content:         m.Content,
		Timestamp:       m.Timestamp,
		TimestampEdited: m.TimestampEdited,
		CallEnded:       m.CallEnded,
		IsPinned:        m.IsPinned,
		Reactions:       m.Reactions,
		Attachments:     m.Attachments,
		Embeds:          m.Embeds,
		Stickers:        m.Stickers,
		Mentions:        m.Mentions,
		InlineEmojis:    m.InlineEmojis,
		WordCount:       m.WordCount,
		CharCount:       m.CharCount,
	}

	if m.GuildID != "" {
		var g models.Guild
		var icon sql.NullString
		err := d.db.QueryRowContext(ctx, "SELECT id, name, icon_url FROM guilds WHERE id = ?", m.GuildID).
			Scan(&g.ID, &g.Name, &icon)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to get guild %s: %w", m.GuildID, err)
		}
		if err == nil {
			g.IconURL = icon.String
			detail.Guild = &g
		}
	}

	var categoryName sql.NullString
	err = d.db.QueryRowContext(ctx, "SELECT id, name, type, category_name FROM channels WHERE id = ?", m.ChannelID).
		Scan(&detail.Channel.ID, &detail.Channel.Name, &detail.Channel.Type, &categoryName)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel %s: %w", m.ChannelID, err)
	}
	detail.Channel.CategoryName = categoryName.String

	var nickname, avatar sql.NullString
	err = d.db.QueryRowContext(ctx, "SELECT id, name, discriminator, nickname, avatar_url FROM users WHERE id = ?", m.AuthorID).
		Scan(&detail.Author.ID, &detail.Author.Name, &detail.Author.Discriminator, &nickname, &avatar)
	if err != nil {
		return nil, fmt.Errorf("failed to get author %s: %w", m.AuthorID, err)
	}
	detail.Author.Nickname, detail.Author.AvatarURL = nickname.String, avatar.String
	if detail.Author.Roles, err = userRoles(ctx, d.db, m.AuthorID); err != nil {
		return nil, err
	}

	if m.ReferenceMessageID != "" {
		var ref models.ReferenceSummary
		err := d.db.QueryRowContext(ctx, `
			SELECT m.id, m.content, u.name FROM messages m JOIN users u ON u.id = m.author_id
			WHERE m.id = ?`, m.ReferenceMessageID).Scan(&ref.ID, &ref.Content, &ref.Author)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to get referenced message %s: %w", m.ReferenceMessageID, err)
		}
		if err == nil {
			detail.ReferenceMessage = &ref
		}
	}
	return detail, nil
}

// resolveGuild returns the guild owning channelID. A non-empty guildID must match it.
func resolveGuild(ctx context.Context, q queryer, channelID, guildID string) (string, error) {
	var owner string
	err := q.QueryRowContext(ctx, "SELECT guild_id FROM channels WHERE id = ?", channelID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: channel %s does not exist", ErrIntegrity, channelID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve guild of channel %s: %w", channelID, err)
	}
	if guildID != "" && guildID != owner {
		return "", fmt.Errorf("%w: message guild %s differs from channel guild %s", ErrIntegrity, guildID, owner)
	}
	return owner, nil
}

func getMessage(ctx context.Context, q queryer, id string) (*models.Message, error) {
	var (
		m                      models.Message
		guildID, reference     sql.NullString
		ts                     int64
		edited, callEnded      sql.NullInt64
		reactions, attachments string
		embeds, stickers       string
		mentions, inlineEmojis string
	)
	err := q.QueryRowContext(ctx, "SELECT "+messageColumns+" FROM messages WHERE id = ?", id).Scan(
		&m.ID, &guildID, &m.ChannelID, &m.AuthorID, &m.Type, &m.Content, &ts,
		&edited, &callEnded, &m.IsPinned, &reference, &reactions, &attachments,
		&embeds, &stickers, &mentions, &inlineEmojis, &m.WordCount, &m.CharCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	m.GuildID, m.ReferenceMessageID = guildID.String, reference.String
	m.Timestamp = fromMillis(ts)
	m.TimestampEdited, m.CallEnded = timePtr(edited), timePtr(callEnded)
	m.Reactions = json.RawMessage(reactions)
	m.Attachments = json.RawMessage(attachments)
	m.Embeds = json.RawMessage(embeds)
	m.Stickers = json.RawMessage(stickers)
	m.Mentions = json.RawMessage(mentions)
	m.InlineEmojis = json.RawMessage(inlineEmojis)
	return &m, nil
}

// messageRow is a Message in its stored representation.
type messageRow struct {
	models.Message
	reactions, attachments, embeds, stickers, mentions, inlineEmojis string
}

func newMessageRow(m models.Message) (*messageRow, error) {
	if m.ChannelID == "" || m.AuthorID == "" {
		return nil, fmt.Errorf("%w: message %s needs a channel and an author", ErrIntegrity, m.ID)
	}
	if m.Timestamp.IsZero() {
		return nil, fmt.Errorf("%w: message %s has no timestamp", ErrInvalidField, m.ID)
	}
	if m.Type == "" {
		m.Type = "Default"
	}
	m.WordCount = utils.CountWords(m.Content)
	m.CharCount = utils.CountChars(m.Content)

	r := &messageRow{Message: m}
	fields := []struct {
		name string
		raw  json.RawMessage
		open byte
		dst  *string
	}{
		{"reactions", m.Reactions, '{', &r.reactions},
		{"attachments", m.Attachments, '[', &r.attachments},
		{"embeds", m.Embeds, '[', &r.embeds},
		{"stickers", m.Stickers, '[', &r.stickers},
		{"mentions", m.Mentions, '[', &r.mentions},
		{"inline_emojis", m.InlineEmojis, '[', &r.inlineEmojis},
	}
	for _, f := range fields {
		v, err := compactJSON(f.raw, f.open)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidField, f.name, err)
		}
		*f.dst = v
	}
	return r, nil
}

func (r *messageRow) args() []any {
	return []any{
		r.ID, nullString(r.GuildID), r.ChannelID, r.AuthorID, r.Type, r.Content,
		toMillis(r.Timestamp), nullMillis(r.TimestampEdited), nullMillis(r.CallEnded), r.IsPinned,
		nullString(r.ReferenceMessageID), r.reactions, r.attachments, r.embeds, r.stickers,
		r.mentions, r.inlineEmojis, r.WordCount, r.CharCount,
	}
}

// compactJSON validates raw as a JSON object ('{') or array ('[') and compacts it so that an
// empty collection is always stored as "[]" or "{}". Missing or null values become empty.
func compactJSON(raw json.RawMessage, open byte) (string, error) {
	empty := "[]"
	if open == '{' {
		empty = "{}"
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return empty, nil
	}
	if trimmed[0] != open {
		if open == '{' {
			return "", errors.New("expected a JSON object")
		}
		return "", errors.New("expected a JSON array")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func applyPatch(m models.Message, p models.MessagePatch) (models.Message, error) {
	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.Type != nil {
		m.Type = *p.Type
	}
	if p.IsPinned != nil {
		m.IsPinned = *p.IsPinned
	}
	if p.Timestamp != nil {
		m.Timestamp = *p.Timestamp
	}
	if p.TimestampEdited != nil {
		m.TimestampEdited = p.TimestampEdited
	}
	if p.CallEnded != nil {
		m.CallEnded = p.CallEnded
	}
	if p.ChannelID != nil {
		m.ChannelID = *p.ChannelID
	}
	if p.AuthorID != nil {
		m.AuthorID = *p.AuthorID
	}
	if p.ReferenceMessageID != nil {
		m.ReferenceMessageID = *p.ReferenceMessageID
	}
	if p.Reactions != nil {
		m.Reactions = *p.Reactions
	}
	if p.Attachments != nil {
		m.Attachments = *p.Attachments
	}
	if p.Embeds != nil {
		m.Embeds = *p.Embeds
	}
	if p.Stickers != nil {
		m.Stickers = *p.Stickers
	}
	if p.Mentions != nil {
		m.Mentions = *p.Mentions
	}
	if p.InlineEmojis != nil {
		m.InlineEmojis = *p.InlineEmojis
	}
	if m.ReferenceMessageID == m.ID && m.ID != "" {
		return m, fmt.Errorf("%w: message %s cannot reply to itself", ErrInvalidField, m.ID)
	}
	return m, nil
}
