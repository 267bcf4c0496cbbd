package command

import "github.com/bwmarrin/discordgo"

// StatsCommand defines the structure for the /stats command.
type StatsCommand struct{}

// Definition returns the application command definition.
func (c *StatsCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "stats",
		Description: "Show archive totals",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "exclude_bots",
				Description: "Leave bot messages out of the totals",
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Required:    false,
			},
		},
	}
}

// ArchiveDateCommand defines the structure for the /archive_date command.
type ArchiveDateCommand struct{}

// Definition returns the application command definition.
func (c *ArchiveDateCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "archive_date",
		Description: "Import every message of one day from this server",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "date",
				Description: "Day to import (MM/DD/YY)",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    true,
			},
			{
				Name:         "timezone",
				Description:  "Timezone of the day (defaults to UTC)",
				Type:         discordgo.ApplicationCommandOptionString,
				Required:     false,
				Autocomplete: true,
			},
		},
	}
}

// ImportStatusCommand defines the structure for the /import_status command.
type ImportStatusCommand struct{}

// Definition returns the application command definition.
func (c *ImportStatusCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "import_status",
		Description: "Show the progress of your latest import",
	}
}

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the application command definition.
func (c *PingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Responds with Pong!",
	}
}
