package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"discord-archive/models"

	"github.com/google/uuid"
)

const taskColumns = `id, requester_id, guild_id, date, timezone, status, channels_processed,
	messages_stored, messages_failed, error, created_at, updated_at, expires_at`

// CreateTask persists a new pending import task that expires retention after now.
func (d *DB) CreateTask(ctx context.Context, requesterID, guildID, date, tz string, now time.Time, retention time.Duration) (*models.ImportTask, error) {
	task := &models.ImportTask{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		GuildID:     guildID,
		Date:        date,
		Timezone:    tz,
		Status:      models.TaskPending,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
		ExpiresAt:   now.Add(retention).UTC(),
	}
	_, err := d.db.ExecContext(ctx, "INSERT INTO import_tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		task.ID, task.RequesterID, task.GuildID, task.Date, task.Timezone, task.Status,
		task.ChannelsProcessed, task.MessagesStored, task.MessagesFailed, task.Error,
		toMillis(task.CreatedAt), toMillis(task.UpdatedAt), toMillis(task.ExpiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create import task: %w", err)
	}
	return task, nil
}

// UpdateTask persists the progress fields of task.
func (d *DB) UpdateTask(ctx context.Context, task *models.ImportTask) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE import_tasks SET status = ?, channels_processed = ?, messages_stored = ?, messages_failed = ?,
			error = ?, updated_at = ?
		WHERE id = ?`,
		task.Status, task.ChannelsProcessed, task.MessagesStored, task.MessagesFailed, task.Error,
		toMillis(task.UpdatedAt), task.ID)
	if err != nil {
		return fmt.Errorf("failed to update import task %s: %w", task.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("import task %s: %w", task.ID, ErrNotFound)
	}
	return nil
}

// GetTask returns an import task by id.
func (d *DB) GetTask(ctx context.Context, id string) (*models.ImportTask, error) {
	row := d.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM import_tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import task %s: %w", id, err)
	}
	return task, nil
}

// ListTasks returns the tasks of a requester, newest first.
func (d *DB) ListTasks(ctx context.Context, requesterID string) ([]models.ImportTask, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM import_tasks WHERE requester_id = ? ORDER BY created_at DESC, id", requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list import tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.ImportTask{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// LatestTask returns the newest task of a requester.
func (d *DB) LatestTask(ctx context.Context, requesterID string) (*models.ImportTask, error) {
	tasks, err := d.ListTasks(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("import tasks of %s: %w", requesterID, ErrNotFound)
	}
	return &tasks[0], nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.ImportTask, error) {
	var t models.ImportTask
	var created, updated, expires int64
	if err := row.Scan(&t.ID, &t.RequesterID, &t.GuildID, &t.Date, &t.Timezone, &t.Status,
		&t.ChannelsProcessed, &t.MessagesStored, &t.MessagesFailed, &t.Error, &created, &updated, &expires); err != nil {
		return nil, err
	}
	t.CreatedAt, t.UpdatedAt, t.ExpiresAt = fromMillis(created), fromMillis(updated), fromMillis(expires)
	return &t, nil
}
