// Package scanner imports the message history of one calendar day from a guild.
package scanner

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"discord-archive/database"
	"discord-archive/models"
	"discord-archive/utils"

	"github.com/bwmarrin/discordgo"
)

// discordEpoch is the first millisecond representable by a snowflake.
const discordEpoch = 1420070400000

const pageSize = 100

// Fetcher is the part of the platform API used to walk history.
type Fetcher interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildThreadsActive(guildID string, options ...discordgo.RequestOption) (*discordgo.ThreadsList, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// Recorder stores fetched messages.
type Recorder interface {
	Record(ctx context.Context, m *discordgo.Message) (bool, error)
}

// TaskStore persists import progress.
type TaskStore interface {
	CreateTask(ctx context.Context, requesterID, guildID, date, tz string, now time.Time, retention time.Duration) (*models.ImportTask, error)
	UpdateTask(ctx context.Context, task *models.ImportTask) error
}

// Importer runs history imports in the background and tracks them as tasks.
type Importer struct {
	fetcher   Fetcher
	recorder  Recorder
	tasks     TaskStore
	retention time.Duration
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewImporter(fetcher Fetcher, recorder Recorder, tasks TaskStore, retention time.Duration) *Importer {
	return &Importer{fetcher: fetcher, recorder: recorder, tasks: tasks, retention: retention, now: time.Now}
}

// ParseDay accepts YYYY-MM-DD or MM/DD/YY and returns the date as YYYY-MM-DD.
func ParseDay(date string) (string, error) {
	for _, layout := range []string{"2006-01-02", "01/02/06", "1/2/06", "01/02/2006"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("%w: date %q must be YYYY-MM-DD or MM/DD/YY", database.ErrInvalidField, date)
}

// Start creates a task for the given day and imports it in the background.
func (im *Importer) Start(ctx context.Context, requesterID, guildID, date, tz string) (*models.ImportTask, error) {
	day, err := ParseDay(date)
	if err != nil {
		return nil, err
	}
	if tz == "" {
		tz = "UTC"
	}
	start, end, ok := database.DayRange(day, tz)
	if !ok {
		return nil, fmt.Errorf("%w: unknown timezone %q", database.ErrInvalidField, tz)
	}

	task, err := im.tasks.CreateTask(ctx, requesterID, guildID, day, tz, im.now(), im.retention)
	if err != nil {
		return nil, err
	}

	job := *task
	im.wg.Add(1)
	go func() {
		defer im.wg.Done()
		im.run(context.WithoutCancel(ctx), &job, start, end)
	}()
	return task, nil
}

// Wait blocks until every running import finished.
func (im *Importer) Wait() {
	im.wg.Wait()
}

func (im *Importer) run(ctx context.Context, task *models.ImportTask, start, end time.Time) {
	log.Printf("Starting import %s for guild %s on %s", task.ID, task.GuildID, task.Date)
	im.save(ctx, task, models.TaskRunning)

	channels, err := im.channels(task.GuildID)
	if err != nil {
		task.Error = err.Error()
		im.save(ctx, task, models.TaskFailed)
		utils.Error("Scanner", "Import", fmt.Sprintf("Import %s failed: %v", task.ID, err))
		return
	}

	var failedChannels, failedIDs []string
	for _, ch := range channels {
		stored, failed, err := im.importChannel(ctx, task.GuildID, ch.ID, start, end)
		task.MessagesStored += stored
		task.MessagesFailed += len(failed)
		failedIDs = append(failedIDs, failed...)
		task.ChannelsProcessed++
		if err != nil {
			failedChannels = append(failedChannels, ch.ID)
			utils.Warn("Scanner", "ImportChannel", fmt.Sprintf("Channel %s (%s): %v", ch.Name, ch.ID, err))
		}
		im.save(ctx, task, models.TaskRunning)
	}

	if len(failedChannels) > 0 || len(failedIDs) > 0 {
		task.Error = failureSummary(failedChannels, failedIDs)
		im.save(ctx, task, models.TaskPartial)
		utils.Warn("Scanner", "Import", fmt.Sprintf("Import of %s finished with errors: %s", task.Date, task.Error))
		return
	}
	im.save(ctx, task, models.TaskCompleted)
	utils.Info("Scanner", "Import", fmt.Sprintf("Import of %s finished: %d channels, %d new messages",
		task.Date, task.ChannelsProcessed, task.MessagesStored))
}

// maxListedIDs bounds how many failed message ids are kept in a task's error text.
const maxListedIDs = 10

func failureSummary(channels, messages []string) string {
	var parts []string
	if len(channels) > 0 {
		parts = append(parts, fmt.Sprintf("%d channel(s) stopped early: %s", len(channels), strings.Join(channels, ", ")))
	}
	if len(messages) > 0 {
		listed := messages
		if len(listed) > maxListedIDs {
			listed = listed[:maxListedIDs]
		}
		text := fmt.Sprintf("%d message(s) not stored: %s", len(messages), strings.Join(listed, ", "))
		if len(messages) > maxListedIDs {
			text += ", ..."
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "; ")
}

func (im *Importer) save(ctx context.Context, task *models.ImportTask, status string) {
	task.Status = status
	task.UpdatedAt = im.now().UTC()
	if err := im.tasks.UpdateTask(ctx, task); err != nil {
		log.Printf("Failed to update import task %s: %v", task.ID, err)
	}
}

// channels lists the guild's text channels and active threads.
func (im *Importer) channels(guildID string) ([]*discordgo.Channel, error) {
	all, err := im.fetcher.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get channels for guild %s: %w", guildID, err)
	}
	var out []*discordgo.Channel
	for _, ch := range all {
		if ch.Type == discordgo.ChannelTypeGuildText || ch.Type == discordgo.ChannelTypeGuildNews {
			out = append(out, ch)
		}
	}

	active, err := im.fetcher.GuildThreadsActive(guildID)
	if err != nil {
		log.Printf("Failed to get active threads for guild %s: %v", guildID, err)
		return out, nil
	}
	return append(out, active.Threads...), nil
}

// importChannel pages forward from the start of the day and records messages until the end.
// A message that cannot be recorded is logged and returned in failed; the walk goes on.
// err is set only when fetching a page fails.
func (im *Importer) importChannel(ctx context.Context, guildID, channelID string, start, end time.Time) (stored int, failed []string, err error) {
	after := Snowflake(start.Add(-time.Millisecond))
	for {
		msgs, err := im.fetcher.ChannelMessages(channelID, pageSize, "", after, "")
		if err != nil {
			return stored, failed, err
		}
		if len(msgs) == 0 {
			return stored, failed, nil
		}

		done := false
		for _, m := range msgs {
			if !m.Timestamp.Before(end) {
				done = true
				continue
			}
			if m.Timestamp.Before(start) {
				continue
			}
			if m.GuildID == "" {
				m.GuildID = guildID
			}
			created, err := im.recorder.Record(ctx, m)
			if err != nil {
				log.Printf("Failed to record message %s in channel %s: %v", m.ID, channelID, err)
				failed = append(failed, m.ID)
				continue
			}
			if created {
				stored++
			}
		}
		after = newest(msgs)
		if done || len(msgs) < pageSize {
			return stored, failed, nil
		}
	}
}

// Snowflake returns the smallest id the platform could assign at t.
func Snowflake(t time.Time) string {
	ms := t.UnixMilli() - discordEpoch
	if ms < 0 {
		ms = 0
	}
	return strconv.FormatUint(uint64(ms)<<22, 10)
}

func newest(msgs []*discordgo.Message) string {
	var best uint64
	var bestID string
	for _, m := range msgs {
		id, err := strconv.ParseUint(m.ID, 10, 64)
		if err != nil {
			continue
		}
		if id > best {
			best, bestID = id, m.ID
		}
	}
	return bestID
}
