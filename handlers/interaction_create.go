package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

var commandPermissions = map[string]string{
	"stats":         "guest",
	"archive_date":  "admin",
	"import_status": "guest",
	"ping":          "guest",
}

// InteractionCreate handles slash command and autocomplete interactions.
func (h *Handlers) InteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.dispatch(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		h.autocomplete(s, i)
	}
}

// dispatch performs permission checks and then hands the interaction to its command.
func (h *Handlers) dispatch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	if level, ok := commandPermissions[name]; ok && !h.auth.CheckPermission(i, level) {
		respond(s, i, "🚫 You do not have permission to run this command.")
		return
	}

	switch name {
	case "stats":
		h.handleStats(s, i)
	case "archive_date":
		h.handleArchiveDate(s, i)
	case "import_status":
		h.handleImportStatus(s, i)
	case "ping":
		respond(s, i, "Pong!")
	default:
		respond(s, i, "🚫 Internal error: unknown command.")
	}
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func requester(i *discordgo.InteractionCreate) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.ID
	case i.User != nil:
		return i.User.ID
	}
	return ""
}
