package database

import (
	"database/sql"
	"fmt"
)

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	Apply   func(tx *sql.Tx) error
}

// MigrationRunner applies pending migrations to a SQLite database.
type MigrationRunner struct {
	db         *sql.DB
	migrations []migration
}

// NewMigrationRunner creates a MigrationRunner with all registered migrations.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{
		db: db,
		migrations: []migration{
			{Version: 1, Name: "initial_schema", Apply: migrateV001},
			{Version: 2, Name: "import_tasks", Apply: migrateV002},
			{Version: 3, Name: "import_task_failures", Apply: migrateV003},
		},
	}
}

// Run creates the schema_migrations tracking table, then applies each
// migration that hasn't been recorded yet, in order.
func (r *MigrationRunner) Run() error {
	if _, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, m := range r.migrations {
		var count int
		if err := r.db.QueryRow(
			"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version,
		).Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		if err := r.apply(m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// apply executes a migration inside a transaction and records it.
func (r *MigrationRunner) apply(m migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.Apply(tx); err != nil {
		return err
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return tx.Commit()
}

func execAll(tx *sql.Tx, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("exec %.40q: %w", stmt, err)
		}
	}
	return nil
}

// migrateV001 creates the archive tables. Timestamps are unix milliseconds (UTC);
// list/map payloads are compact JSON text so emptiness is a plain comparison with '[]'.
func migrateV001(tx *sql.Tx) error {
	return execAll(tx, []string{
		`CREATE TABLE guilds (
			id       TEXT PRIMARY KEY,
			name     TEXT NOT NULL,
			icon_url TEXT
		)`,
		`CREATE TABLE channels (
			id               TEXT PRIMARY KEY,
			guild_id         TEXT NOT NULL REFERENCES guilds(id) ON DELETE CASCADE,
			name             TEXT NOT NULL,
			type             TEXT NOT NULL,
			category_id      TEXT,
			category_name    TEXT,
			topic            TEXT,
			total_messages   INTEGER NOT NULL DEFAULT 0,
			total_words      INTEGER NOT NULL DEFAULT 0,
			total_characters INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE roles (
			id       TEXT PRIMARY KEY,
			guild_id TEXT NOT NULL REFERENCES guilds(id) ON DELETE CASCADE,
			name     TEXT NOT NULL,
			color    TEXT,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE users (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			discriminator    TEXT NOT NULL,
			nickname         TEXT,
			avatar_url       TEXT,
			color            TEXT,
			is_bot           INTEGER NOT NULL DEFAULT 0,
			total_messages   INTEGER NOT NULL DEFAULT 0,
			total_words      INTEGER NOT NULL DEFAULT 0,
			total_characters INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE user_roles (
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role_id TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, role_id)
		)`,
		`CREATE TABLE messages (
			id                   TEXT PRIMARY KEY,
			guild_id             TEXT REFERENCES guilds(id) ON DELETE CASCADE,
			channel_id           TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
			author_id            TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type                 TEXT NOT NULL,
			content              TEXT NOT NULL DEFAULT '',
			timestamp            INTEGER NOT NULL,
			timestamp_edited     INTEGER,
			call_ended           INTEGER,
			is_pinned            INTEGER NOT NULL DEFAULT 0,
			reference_message_id TEXT,
			reactions            TEXT NOT NULL DEFAULT '{}',
			attachments          TEXT NOT NULL DEFAULT '[]',
			embeds               TEXT NOT NULL DEFAULT '[]',
			stickers             TEXT NOT NULL DEFAULT '[]',
			mentions             TEXT NOT NULL DEFAULT '[]',
			inline_emojis        TEXT NOT NULL DEFAULT '[]',
			word_count           INTEGER NOT NULL DEFAULT 0,
			char_count           INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX idx_messages_timestamp ON messages(timestamp)`,
		`CREATE INDEX idx_messages_channel_timestamp ON messages(channel_id, timestamp)`,
		`CREATE INDEX idx_messages_author_timestamp ON messages(author_id, timestamp)`,
		`CREATE INDEX idx_messages_guild ON messages(guild_id)`,
		`CREATE INDEX idx_messages_reference ON messages(reference_message_id)`,
		`CREATE INDEX idx_channels_name ON channels(name)`,
		`CREATE INDEX idx_users_name ON users(name)`,
	})
}

// migrateV002 adds persisted tracking of history imports.
func migrateV002(tx *sql.Tx) error {
	return execAll(tx, []string{
		`CREATE TABLE import_tasks (
			id                 TEXT PRIMARY KEY,
			requester_id       TEXT NOT NULL,
			guild_id           TEXT NOT NULL,
			date               TEXT NOT NULL,
			timezone           TEXT NOT NULL,
			status             TEXT NOT NULL,
			channels_processed INTEGER NOT NULL DEFAULT 0,
			messages_stored    INTEGER NOT NULL DEFAULT 0,
			error              TEXT NOT NULL DEFAULT '',
			created_at         INTEGER NOT NULL,
			updated_at         INTEGER NOT NULL,
			expires_at         INTEGER NOT NULL
		)`,
		`CREATE INDEX idx_import_tasks_requester ON import_tasks(requester_id, created_at)`,
		`CREATE INDEX idx_import_tasks_expires ON import_tasks(expires_at)`,
	})
}

// migrateV003 counts messages an import could not store.
func migrateV003(tx *sql.Tx) error {
	return execAll(tx, []string{
		`ALTER TABLE import_tasks ADD COLUMN messages_failed INTEGER NOT NULL DEFAULT 0`,
	})
}
