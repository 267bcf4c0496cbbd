// Package handlers wires gateway events and slash commands to the archive.
package handlers

import (
	"context"
	"log"
	"time"

	"discord-archive/bot"
	"discord-archive/database"
	"discord-archive/models"
	"discord-archive/utils"

	"github.com/bwmarrin/discordgo"
)

const eventTimeout = 30 * time.Second

// Archive applies gateway events to the record store.
type Archive interface {
	Record(ctx context.Context, m *discordgo.Message) (bool, error)
	Update(ctx context.Context, m *discordgo.Message) error
	Delete(ctx context.Context, messageID string) error
	AdjustReaction(ctx context.Context, messageID string, emoji *discordgo.Emoji, delta int) error
	SyncGuild(ctx context.Context, g *discordgo.Guild) error
	SyncChannel(ctx context.Context, ch *discordgo.Channel) error
	SyncRole(ctx context.Context, guildID string, role *discordgo.Role) error
}

// Stats answers /stats.
type Stats interface {
	Totals(ctx context.Context, f database.MessageFilter) (*models.MessageTotals, error)
}

// Importer starts /archive_date imports.
type Importer interface {
	Start(ctx context.Context, requesterID, guildID, date, tz string) (*models.ImportTask, error)
}

// Tasks answers /import_status.
type Tasks interface {
	LatestTask(ctx context.Context, requesterID string) (*models.ImportTask, error)
}

// Handlers holds everything event and command handlers need.
type Handlers struct {
	archive  Archive
	stats    Stats
	importer Importer
	tasks    Tasks
	auth     *utils.Auth
}

func New(archive Archive, stats Stats, importer Importer, tasks Tasks, auth *utils.Auth) *Handlers {
	return &Handlers{archive: archive, stats: stats, importer: importer, tasks: tasks, auth: auth}
}

// Register all handlers to the bot.
func (h *Handlers) Register(b *bot.Bot) {
	s := b.Session
	s.AddHandler(h.InteractionCreate)

	s.AddHandler(h.MessageCreate)
	s.AddHandler(h.MessageUpdate)
	s.AddHandler(h.MessageDelete)
	s.AddHandler(h.MessageDeleteBulk)
	s.AddHandler(h.MessageReactionAdd)
	s.AddHandler(h.MessageReactionRemove)

	s.AddHandler(h.GuildCreate)
	s.AddHandler(h.GuildUpdate)
	s.AddHandler(h.ChannelCreate)
	s.AddHandler(h.ChannelUpdate)
	s.AddHandler(h.ThreadCreate)
	s.AddHandler(h.GuildRoleCreate)
	s.AddHandler(h.GuildRoleUpdate)

	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
}

func eventContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), eventTimeout)
}

func report(op string, err error) {
	if err != nil {
		utils.Error("Handlers", op, err.Error())
	}
}
