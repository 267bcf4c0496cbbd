package models

import "time"

// Import task statuses.
const (
	TaskPending   = "pending"
	TaskRunning   = "running"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
	TaskPartial   = "partial" // finished, but some messages or channels could not be imported
)

// ImportTask tracks one history import requested by a user.
type ImportTask struct {
	ID                string    `json:"id"`
	RequesterID       string    `json:"requester_id"`
	GuildID           string    `json:"guild_id"`
	Date              string    `json:"date"`
	Timezone          string    `json:"timezone"`
	Status            string    `json:"status"`
	ChannelsProcessed int       `json:"channels_processed"`
	MessagesStored    int       `json:"messages_stored"`
	MessagesFailed    int       `json:"messages_failed"`
	Error             string    `json:"error,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// Finished reports whether the task reached a terminal status.
func (t ImportTask) Finished() bool {
	return t.Status == TaskCompleted || t.Status == TaskFailed || t.Status == TaskPartial
}
