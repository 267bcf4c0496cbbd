package models

import "time"

// ChannelStat is one row of the per-channel statistics view.
type ChannelStat struct {
	ChannelID                string  `json:"channel_id"`
	ChannelName              string  `json:"channel_name"`
	MessageCount             int64   `json:"message_count"`
	TotalWords               int64   `json:"total_words"`
	TotalCharacters          int64   `json:"total_characters"`
	Attachments              int64   `json:"attachments"`
	Mentions                 int64   `json:"mentions"`
	Emojis                   int64   `json:"emojis"`
	MostActiveUser           string  `json:"most_active_user"`
	MostActiveUserPercentage float64 `json:"most_active_user_percentage"`
}

// ChannelStats is the per-channel view plus grand totals under the same filter.
type ChannelStats struct {
	Totals
	Channels []ChannelStat `json:"channels"`
}

// UserStat is one row of the per-user statistics view.
type UserStat struct {
	UserID                      string  `json:"user_id"`
	UserName                    string  `json:"user_name"`
	Nickname                    string  `json:"nickname"`
	IsBot                       bool    `json:"is_bot"`
	MessageCount                int64   `json:"message_count"`
	TotalWords                  int64   `json:"total_words"`
	TotalCharacters             int64   `json:"total_characters"`
	Attachments                 int64   `json:"attachments"`
	Mentions                    int64   `json:"mentions"`
	Emojis                      int64   `json:"emojis"`
	MostActiveChannel           string  `json:"most_active_channel"`
	MostActiveChannelPercentage float64 `json:"most_active_channel_percentage"`
}

// UserStats is the per-user view plus grand totals under the same filter.
type UserStats struct {
	Totals
	Users []UserStat `json:"users"`
}

// DailyCount is the number of messages on one calendar day (YYYY-MM-DD).
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// MessageTotals is the global message summary.
type MessageTotals struct {
	Totals
	MessagesLast24Hours   int64        `json:"messages_last_24_hours"`
	AverageMessagesPerDay float64      `json:"average_messages_per_day"`
	MostActiveDay         *DailyCount  `json:"most_active_day"`
	LeastActiveDay        *DailyCount  `json:"least_active_day"`
	DailyMessages         []DailyCount `json:"daily_messages"`
}

// TimelineInterval is the message count of one minute bucket.
type TimelineInterval struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int64     `json:"count"`
}

// Timeline covers the trailing 24 hours at minute resolution.
type Timeline struct {
	Start     time.Time          `json:"start_time"`
	End       time.Time          `json:"end_time"`
	Total     int64              `json:"total_messages"`
	Intervals []TimelineInterval `json:"intervals"`
}

// RecentMessage is one entry of the recent messages feed.
type RecentMessage struct {
	ID             string    `json:"id"`
	UserName       string    `json:"user_name"`
	Nickname       string    `json:"nickname"`
	UserID         string    `json:"user_id"`
	ChannelName    string    `json:"channel_name"`
	Timestamp      time.Time `json:"timestamp"`
	RelativeTime   string    `json:"relative_time"`
	CharCount      int64     `json:"char_count"`
	WordCount      int64     `json:"word_count"`
	MessageContent string    `json:"message_content"`
	Avatar         string    `json:"avatar"`
}

// PositionWinner is the most frequent token at one position of the corpus.
type PositionWinner struct {
	Position int    `json:"position"`
	Value    string `json:"value"`
	Count    int64  `json:"count"`
}

// AverageMessage is the output of the positional corpus model.
type AverageMessage struct {
	MessageCount        int64            `json:"message_count"`
	AverageLength       int              `json:"average_length"`
	AverageMessageChars string           `json:"average_message_chars"`
	AverageMessageWords string           `json:"average_message_words"`
	CharPositions       []PositionWinner `json:"char_positions"`
	WordPositions       []PositionWinner `json:"word_positions"`
}

// UserMessageSums is the live total for one author name.
type UserMessageSums struct {
	Username string `json:"username"`
	Totals
}
