package handlers

import (
	"github.com/bwmarrin/discordgo"
)

// MessageCreate records every new guild message, bots included.
func (h *Handlers) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID == "" || m.Author == nil {
		return
	}
	ctx, cancel := eventContext()
	defer cancel()
	_, err := h.archive.Record(ctx, m.Message)
	report("MessageCreate", err)
}

func (h *Handlers) MessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.GuildID == "" {
		return
	}
	ctx, cancel := eventContext()
	defer cancel()
	report("MessageUpdate", h.archive.Update(ctx, m.Message))
}

func (h *Handlers) MessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	ctx, cancel := eventContext()
	defer cancel()
	report("MessageDelete", h.archive.Delete(ctx, m.ID))
}

// MessageDeleteBulk removes each message; one failure does not stop the rest.
func (h *Handlers) MessageDeleteBulk(s *discordgo.Session, m *discordgo.MessageDeleteBulk) {
	ctx, cancel := eventContext()
	defer cancel()
	for _, id := range m.Messages {
		report("MessageDeleteBulk", h.archive.Delete(ctx, id))
	}
}

func (h *Handlers) MessageReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	ctx, cancel := eventContext()
	defer cancel()
	report("MessageReactionAdd", h.archive.AdjustReaction(ctx, r.MessageID, &r.Emoji, 1))
}

func (h *Handlers) MessageReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	ctx, cancel := eventContext()
	defer cancel()
	report("MessageReactionRemove", h.archive.AdjustReaction(ctx, r.MessageID, &r.Emoji, -1))
}

// GuildCreate syncs the guild with its channels, roles and cached members.
func (h *Handlers) GuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Unavailable {
		return
	}
	ctx, cancel := eventContext()
	defer cancel()
	report("GuildCreate", h.archive.SyncGuild(ctx, g.Guild))
}

func (h *Handlers) GuildUpdate(s *discordgo.Session, g *discordgo.GuildUpdate) {
	ctx, cancel := eventContext()
	defer cancel()
	report("GuildUpdate", h.archive.SyncGuild(ctx, g.Guild))
}

func (h *Handlers) ChannelCreate(s *discordgo.Session, c *discordgo.ChannelCreate) {
	h.syncChannel("ChannelCreate", c.Channel)
}

func (h *Handlers) ChannelUpdate(s *discordgo.Session, c *discordgo.ChannelUpdate) {
	h.syncChannel("ChannelUpdate", c.Channel)
}

func (h *Handlers) ThreadCreate(s *discordgo.Session, t *discordgo.ThreadCreate) {
	h.syncChannel("ThreadCreate", t.Channel)
}

func (h *Handlers) syncChannel(op string, ch *discordgo.Channel) {
	if ch == nil || ch.GuildID == "" {
		return
	}
	ctx, cancel := eventContext()
	defer cancel()
	report(op, h.archive.SyncChannel(ctx, ch))
}

func (h *Handlers) GuildRoleCreate(s *discordgo.Session, r *discordgo.GuildRoleCreate) {
	h.syncRole("GuildRoleCreate", r.GuildRole)
}

func (h *Handlers) GuildRoleUpdate(s *discordgo.Session, r *discordgo.GuildRoleUpdate) {
	h.syncRole("GuildRoleUpdate", r.GuildRole)
}

func (h *Handlers) syncRole(op string, r *discordgo.GuildRole) {
	if r == nil || r.Role == nil {
		return
	}
	ctx, cancel := eventContext()
	defer cancel()
	report(op, h.archive.SyncRole(ctx, r.GuildID, r.Role))
}
