package models

import (
	"encoding/json"
	"time"
)

// Message represents an archived chat message.
// WordCount and CharCount are derived from Content by the store and never trusted from input.
type Message struct {
	ID                 string          `json:"id"`
	GuildID            string          `json:"guild_id,omitempty"`
	ChannelID          string          `json:"channel_id"`
	AuthorID           string          `json:"author_id"`
	Type               string          `json:"type"`
	Content            string          `json:"content"`
	Timestamp          time.Time       `json:"timestamp"`
	TimestampEdited    *time.Time      `json:"timestamp_edited,omitempty"`
	CallEnded          *time.Time      `json:"call_ended,omitempty"`
	IsPinned           bool            `json:"is_pinned"`
	ReferenceMessageID string          `json:"reference_message_id,omitempty"`
	Reactions          json.RawMessage `json:"reactions"`
	Attachments        json.RawMessage `json:"attachments"`
	Embeds             json.RawMessage `json:"embeds"`
	Stickers           json.RawMessage `json:"stickers"`
	Mentions           json.RawMessage `json:"mentions"`
	InlineEmojis       json.RawMessage `json:"inline_emojis"`
	WordCount          int64           `json:"word_count"`
	CharCount          int64           `json:"char_count"`
}

// MessagePatch lists the mutable fields of a Message. Nil fields are left untouched.
type MessagePatch struct {
	Content            *string          `json:"content,omitempty"`
	Type               *string          `json:"type,omitempty"`
	IsPinned           *bool            `json:"is_pinned,omitempty"`
	Timestamp          *time.Time       `json:"timestamp,omitempty"`
	TimestampEdited    *time.Time       `json:"timestamp_edited,omitempty"`
	CallEnded          *time.Time       `json:"call_ended,omitempty"`
	ChannelID          *string          `json:"channel_id,omitempty"`
	AuthorID           *string          `json:"author_id,omitempty"`
	ReferenceMessageID *string          `json:"reference_message_id,omitempty"`
	Reactions          *json.RawMessage `json:"reactions,omitempty"`
	Attachments        *json.RawMessage `json:"attachments,omitempty"`
	Embeds             *json.RawMessage `json:"embeds,omitempty"`
	Stickers           *json.RawMessage `json:"stickers,omitempty"`
	Mentions           *json.RawMessage `json:"mentions,omitempty"`
	InlineEmojis       *json.RawMessage `json:"inline_emojis,omitempty"`
}

// MessageRow is the flattened shape returned by the database browser.
type MessageRow struct {
	ID                 string          `json:"id"`
	ServerName         string          `json:"server_name"`
	ChannelName        string          `json:"channel_name"`
	UserName           string          `json:"user_name"`
	Timestamp          time.Time       `json:"timestamp"`
	CharCount          int64           `json:"char_count"`
	WordCount          int64           `json:"word_count"`
	ContainsAttachment bool            `json:"contains_attachment"`
	ContainsMention    bool            `json:"contains_mention"`
	ContainsEmoji      bool            `json:"contains_emoji"`
	EmojisUsed         json.RawMessage `json:"emojis_used"`
	MessageContent     string          `json:"message_content"`
}

// MessageDetail is the full entity graph of one message.
type MessageDetail struct {
	ID               string            `json:"id"`
	Guild            *Guild            `json:"guild"`
	Channel          ChannelSummary    `json:"channel"`
	Author           AuthorSummary     `json:"author"`
	Type             string            `json:"type"`
	Content          string            `json:"content"`
	Timestamp        time.Time         `json:"timestamp"`
	TimestampEdited  *time.Time        `json:"timestamp_edited"`
	CallEnded        *time.Time        `json:"call_ended"`
	IsPinned         bool              `json:"is_pinned"`
	ReferenceMessage *ReferenceSummary `json:"reference_message"`
	Reactions        json.RawMessage   `json:"reactions"`
	Attachments      json.RawMessage   `json:"attachments"`
	Embeds           json.RawMessage   `json:"embeds"`
	Stickers         json.RawMessage   `json:"stickers"`
	Mentions         json.RawMessage   `json:"mentions"`
	InlineEmojis     json.RawMessage   `json:"inline_emojis"`
	WordCount        int64             `json:"word_count"`
	CharCount        int64             `json:"char_count"`
}

type ChannelSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	CategoryName string `json:"category_name"`
}

type AuthorSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Discriminator string `json:"discriminator"`
	Nickname      string `json:"nickname"`
	AvatarURL     string `json:"avatar_url"`
	Roles         []Role `json:"roles"`
}

// ReferenceSummary describes the replied-to message when it exists locally.
type ReferenceSummary struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Author  string `json:"author"`
}
