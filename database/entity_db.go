package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"discord-archive/models"
)

// UpsertGuild inserts the guild or overwrites its mutable fields.
func (d *DB) UpsertGuild(ctx context.Context, g models.Guild) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO guilds (id, name, icon_url) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, icon_url = excluded.icon_url`,
		g.ID, g.Name, nullString(g.IconURL))
	if err != nil {
		return fmt.Errorf("failed to upsert guild %s: %w", g.ID, mapError(err))
	}
	return nil
}

// UpsertChannel inserts the channel or overwrites its mutable fields. Stored totals are untouched.
func (d *DB) UpsertChannel(ctx context.Context, ch models.Channel) error {
	if ch.Type == "" {
		ch.Type = models.ChannelTypeText
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO channels (id, guild_id, name, type, category_id, category_name, topic)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			guild_id = excluded.guild_id,
			name = excluded.name,
			type = excluded.type,
			category_id = excluded.category_id,
			category_name = excluded.category_name,
			topic = excluded.topic`,
		ch.ID, ch.GuildID, ch.Name, ch.Type,
		nullString(ch.CategoryID), nullString(ch.CategoryName), nullString(ch.Topic))
	if err != nil {
		return fmt.Errorf("failed to upsert channel %s: %w", ch.ID, mapError(err))
	}
	return nil
}

// UpsertRole inserts the role or overwrites its mutable fields.
func (d *DB) UpsertRole(ctx context.Context, r models.Role) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO roles (id, guild_id, name, color, position) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			guild_id = excluded.guild_id,
			name = excluded.name,
			color = excluded.color,
			position = excluded.position`,
		r.ID, r.GuildID, r.Name, nullString(r.Color), r.Position)
	if err != nil {
		return fmt.Errorf("failed to upsert role %s: %w", r.ID, mapError(err))
	}
	return nil
}

// UpsertUser inserts the user or overwrites its mutable fields and replaces its role set.
// Role ids that are not stored yet are skipped.
func (d *DB) UpsertUser(ctx context.Context, u models.User) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, name, discriminator, nickname, avatar_url, color, is_bot)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				discriminator = excluded.discriminator,
				nickname = excluded.nickname,
				avatar_url = excluded.avatar_url,
				color = excluded.color,
				is_bot = excluded.is_bot`,
			u.ID, u.Name, u.Discriminator, nullString(u.Nickname), nullString(u.AvatarURL),
			nullString(u.Color), u.IsBot)
		if err != nil {
			return fmt.Errorf("failed to upsert user %s: %w", u.ID, mapError(err))
		}
		if u.RoleIDs == nil {
			return nil
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id = ?", u.ID); err != nil {
			return fmt.Errorf("failed to clear roles of user %s: %w", u.ID, err)
		}
		for _, roleID := range u.RoleIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO user_roles (user_id, role_id)
				SELECT ?, id FROM roles WHERE id = ?`, u.ID, roleID); err != nil {
				return fmt.Errorf("failed to link role %s to user %s: %w", roleID, u.ID, err)
			}
		}
		return nil
	})
}

// GetChannel returns a channel by id.
func (d *DB) GetChannel(ctx context.Context, id string) (*models.Channel, error) {
	var ch models.Channel
	var categoryID, categoryName, topic sql.NullString
	err := d.db.QueryRowContext(ctx, `
		SELECT id, guild_id, name, type, category_id, category_name, topic,
			total_messages, total_words, total_characters
		FROM channels WHERE id = ?`, id).Scan(
		&ch.ID, &ch.GuildID, &ch.Name, &ch.Type, &categoryID, &categoryName, &topic,
		&ch.TotalMessages, &ch.TotalWords, &ch.TotalCharacters)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("channel %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel %s: %w", id, err)
	}
	ch.CategoryID, ch.CategoryName, ch.Topic = categoryID.String, categoryName.String, topic.String
	return &ch, nil
}

// ListGuildChannels returns the channels of a guild ordered by name.
func (d *DB) ListGuildChannels(ctx context.Context, guildID string) ([]models.Channel, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, guild_id, name, type, total_messages, total_words, total_characters
		FROM channels WHERE guild_id = ? ORDER BY name, id`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels of guild %s: %w", guildID, err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(&ch.ID, &ch.GuildID, &ch.Name, &ch.Type,
			&ch.TotalMessages, &ch.TotalWords, &ch.TotalCharacters); err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// GetChannelProfile returns the first channel with the given name and its stored totals.
func (d *DB) GetChannelProfile(ctx context.Context, name string) (*models.ChannelProfile, error) {
	var p models.ChannelProfile
	var categoryName, topic, icon sql.NullString
	err := d.db.QueryRowContext(ctx, `
		SELECT c.id, c.name, c.type, c.category_name, c.topic,
			c.total_messages, c.total_words, c.total_characters, g.icon_url
		FROM channels c JOIN guilds g ON g.id = c.guild_id
		WHERE c.name = ? ORDER BY c.id LIMIT 1`, name).Scan(
		&p.ID, &p.Name, &p.Type, &categoryName, &topic,
		&p.TotalMessages, &p.TotalWords, &p.TotalCharacters, &icon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("channel %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel profile %q: %w", name, err)
	}
	p.CategoryName, p.Topic, p.GuildIconURL = categoryName.String, topic.String, icon.String
	return &p, nil
}

// GetUserProfile returns the first user with the given name, its roles and stored totals.
func (d *DB) GetUserProfile(ctx context.Context, name string) (*models.UserProfile, error) {
	var p models.UserProfile
	var nickname, avatar, color sql.NullString
	err := d.db.QueryRowContext(ctx, `
		SELECT id, name, discriminator, nickname, avatar_url, color, is_bot,
			total_messages, total_words, total_characters
		FROM users WHERE name = ? ORDER BY id LIMIT 1`, name).Scan(
		&p.ID, &p.Name, &p.Discriminator, &nickname, &avatar, &color, &p.IsBot,
		&p.TotalMessages, &p.TotalWords, &p.TotalCharacters)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile %q: %w", name, err)
	}
	p.Nickname, p.AvatarURL, p.Color = nickname.String, avatar.String, color.String

	roles, err := userRoles(ctx, d.db, p.ID)
	if err != nil {
		return nil, err
	}
	p.Roles = roles
	return &p, nil
}

// PatchUser applies the allow-listed fields to the first user with the given name.
func (d *DB) PatchUser(ctx context.Context, name string, patch models.UserPatch) (*models.UserProfile, error) {
	query := "UPDATE users SET"
	var sets []string
	var args []any
	if patch.Nickname != nil {
		sets = append(sets, " nickname = ?")
		args = append(args, nullString(*patch.Nickname))
	}
	if patch.AvatarURL != nil {
		sets = append(sets, " avatar_url = ?")
		args = append(args, nullString(*patch.AvatarURL))
	}
	if patch.Color != nil {
		sets = append(sets, " color = ?")
		args = append(args, nullString(*patch.Color))
	}
	if len(sets) == 0 {
		return d.GetUserProfile(ctx, name)
	}
	for i, s := range sets {
		if i > 0 {
			query += ","
		}
		query += s
	}
	query += " WHERE id = (SELECT id FROM users WHERE name = ? ORDER BY id LIMIT 1)"
	args = append(args, name)

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to patch user %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("user %q: %w", name, ErrNotFound)
	}
	return d.GetUserProfile(ctx, name)
}

// UserMessageSums returns live message/word/char sums over every user with the given name.
func (d *DB) UserMessageSums(ctx context.Context, name string) (*models.UserMessageSums, error) {
	sums := models.UserMessageSums{Username: name}
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(m.id), COALESCE(SUM(m.word_count), 0), COALESCE(SUM(m.char_count), 0)
		FROM messages m JOIN users u ON u.id = m.author_id
		WHERE u.name = ?`, name).Scan(&sums.TotalMessages, &sums.TotalWords, &sums.TotalCharacters)
	if err != nil {
		return nil, fmt.Errorf("failed to sum messages of %q: %w", name, err)
	}
	if sums.TotalMessages == 0 {
		return nil, fmt.Errorf("messages of user %q: %w", name, ErrNotFound)
	}
	return &sums, nil
}

// FilterOptions lists the distinct server, channel and user names, sorted.
func (d *DB) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	opts := &models.FilterOptions{}
	var err error
	if opts.Servers, err = d.distinctNames(ctx, "SELECT DISTINCT name FROM guilds ORDER BY name"); err != nil {
		return nil, err
	}
	if opts.Channels, err = d.distinctNames(ctx, "SELECT DISTINCT name FROM channels ORDER BY name"); err != nil {
		return nil, err
	}
	if opts.Users, err = d.distinctNames(ctx, "SELECT DISTINCT name FROM users ORDER BY name"); err != nil {
		return nil, err
	}
	return opts, nil
}

func (d *DB) distinctNames(ctx context.Context, query string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list filter options: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan filter option: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func userRoles(ctx context.Context, q queryer, userID string) ([]models.Role, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT r.id, r.guild_id, r.name, r.color, r.position
		FROM roles r JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ? ORDER BY r.position DESC, r.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles of user %s: %w", userID, err)
	}
	defer rows.Close()

	roles := []models.Role{}
	for rows.Next() {
		var r models.Role
		var color sql.NullString
		if err := rows.Scan(&r.ID, &r.GuildID, &r.Name, &color, &r.Position); err != nil {
			return nil, fmt.Errorf("failed to scan role row: %w", err)
		}
		r.Color = color.String
		roles = append(roles, r)
	}
	return roles, rows.Err()
}
