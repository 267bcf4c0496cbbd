package ingest

import (
	"encoding/json"
	"fmt"

	"discord-archive/models"

	"github.com/bwmarrin/discordgo"
)

var messageTypeNames = map[discordgo.MessageType]string{
	discordgo.MessageTypeDefault:              "Default",
	discordgo.MessageTypeReply:                "Reply",
	discordgo.MessageTypeChannelPinnedMessage: "ChannelPinnedMessage",
	discordgo.MessageTypeGuildMemberJoin:      "GuildMemberJoin",
	discordgo.MessageTypeCall:                 "Call",
	discordgo.MessageTypeThreadCreated:        "ThreadCreated",
	discordgo.MessageTypeChatInputCommand:     "ChatInputCommand",
	discordgo.MessageTypeThreadStarterMessage: "ThreadStarterMessage",
}

// MessageTypeName returns the archive's name for a platform message type.
func MessageTypeName(t discordgo.MessageType) string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type%d", t)
}

// Reaction is the stored shape of one reaction, keyed by ReactionKey in the reactions map.
type Reaction struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	IsAnimated bool   `json:"is_animated"`
	Count      int    `json:"count"`
}

// ReactionKey is "id:name" for custom emoji and the bare name for unicode emoji.
func ReactionKey(e *discordgo.Emoji) string {
	if e == nil {
		return ""
	}
	if e.ID != "" {
		return e.ID + ":" + e.Name
	}
	return e.Name
}

type attachment struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	Size     int    `json:"file_size_bytes"`
}

type sticker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type mention struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type inlineEmoji struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsAnimated bool   `json:"is_animated"`
}

func GuildFromDiscord(g *discordgo.Guild) models.Guild {
	return models.Guild{ID: g.ID, Name: g.Name, IconURL: g.IconURL("")}
}

// ChannelKind maps platform channel types onto text, voice or thread.
func ChannelKind(ch *discordgo.Channel) string {
	switch {
	case ch.IsThread():
		return models.ChannelTypeThread
	case ch.Type == discordgo.ChannelTypeGuildVoice || ch.Type == discordgo.ChannelTypeGuildStageVoice:
		return models.ChannelTypeVoice
	default:
		return models.ChannelTypeText
	}
}

// ChannelFromDiscord converts a channel. For threads the parent is recorded as the category.
func ChannelFromDiscord(ch *discordgo.Channel, categoryName string) models.Channel {
	return models.Channel{
		ID:           ch.ID,
		GuildID:      ch.GuildID,
		Name:         ch.Name,
		Type:         ChannelKind(ch),
		CategoryID:   ch.ParentID,
		CategoryName: categoryName,
		Topic:        ch.Topic,
	}
}

func RoleFromDiscord(r *discordgo.Role, guildID string) models.Role {
	role := models.Role{ID: r.ID, GuildID: guildID, Name: r.Name, Position: r.Position}
	if r.Color != 0 {
		role.Color = fmt.Sprintf("#%06x", r.Color)
	}
	return role
}

// UserFromDiscord converts an author and, when known, its guild membership.
// RoleIDs stays nil without a member so that stored roles are kept.
func UserFromDiscord(u *discordgo.User, member *discordgo.Member) models.User {
	user := models.User{
		ID:            u.ID,
		Name:          u.Username,
		Discriminator: u.Discriminator,
		Nickname:      u.GlobalName,
		AvatarURL:     u.AvatarURL(""),
		IsBot:         u.Bot,
	}
	if user.Discriminator == "" {
		user.Discriminator = "0000"
	}
	if member != nil {
		if member.Nick != "" {
			user.Nickname = member.Nick
		}
		user.RoleIDs = append([]string{}, member.Roles...)
	}
	return user
}

// MessageFromDiscord converts a platform message into the stored record shape.
func MessageFromDiscord(m *discordgo.Message, guildID string) (models.Message, error) {
	msg := models.Message{
		ID:              m.ID,
		GuildID:         guildID,
		ChannelID:       m.ChannelID,
		Type:            MessageTypeName(m.Type),
		Content:         m.Content,
		Timestamp:       m.Timestamp,
		TimestampEdited: m.EditedTimestamp,
		IsPinned:        m.Pinned,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
	}
	if m.MessageReference != nil {
		msg.ReferenceMessageID = m.MessageReference.MessageID
	}

	var err error
	if msg.Reactions, err = encodeReactions(m.Reactions); err != nil {
		return msg, err
	}
	if msg.Attachments, err = encodeAttachments(m.Attachments); err != nil {
		return msg, err
	}
	if msg.Embeds, err = marshalList(m.Embeds); err != nil {
		return msg, err
	}
	if msg.Stickers, err = encodeStickers(m.StickerItems); err != nil {
		return msg, err
	}
	if msg.Mentions, err = encodeMentions(m.Mentions); err != nil {
		return msg, err
	}
	if msg.InlineEmojis, err = encodeInlineEmojis(m); err != nil {
		return msg, err
	}
	return msg, nil
}

func encodeReactions(reactions []*discordgo.MessageReactions) (json.RawMessage, error) {
	out := make(map[string]Reaction, len(reactions))
	for _, r := range reactions {
		if r == nil || r.Emoji == nil {
			continue
		}
		out[ReactionKey(r.Emoji)] = Reaction{ID: r.Emoji.ID, Name: r.Emoji.Name, IsAnimated: r.Emoji.Animated, Count: r.Count}
	}
	return json.Marshal(out)
}

func encodeAttachments(in []*discordgo.MessageAttachment) (json.RawMessage, error) {
	out := make([]attachment, 0, len(in))
	for _, a := range in {
		out = append(out, attachment{ID: a.ID, URL: a.URL, FileName: a.Filename, Size: a.Size})
	}
	return json.Marshal(out)
}

func encodeStickers(in []*discordgo.StickerItem) (json.RawMessage, error) {
	out := make([]sticker, 0, len(in))
	for _, s := range in {
		out = append(out, sticker{ID: s.ID, Name: s.Name})
	}
	return json.Marshal(out)
}

func encodeMentions(in []*discordgo.User) (json.RawMessage, error) {
	out := make([]mention, 0, len(in))
	for _, u := range in {
		out = append(out, mention{ID: u.ID, Name: u.Username})
	}
	return json.Marshal(out)
}

func encodeInlineEmojis(m *discordgo.Message) (json.RawMessage, error) {
	emojis := m.GetCustomEmojis()
	out := make([]inlineEmoji, 0, len(emojis))
	for _, e := range emojis {
		out = append(out, inlineEmoji{ID: e.ID, Name: e.Name, IsAnimated: e.Animated})
	}
	return json.Marshal(out)
}

func marshalList[T any](in []T) (json.RawMessage, error) {
	if in == nil {
		in = []T{}
	}
	return json.Marshal(in)
}
