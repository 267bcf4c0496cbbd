package handlers

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// maxChoices is the platform limit on autocomplete choices.
const maxChoices = 25

var timezones = []string{
	"UTC",
	"America/New_York", "America/Chicago", "America/Denver", "America/Los_Angeles",
	"America/Anchorage", "America/Sao_Paulo", "America/Mexico_City", "America/Toronto",
	"Europe/London", "Europe/Paris", "Europe/Berlin", "Europe/Madrid", "Europe/Moscow",
	"Africa/Cairo", "Africa/Johannesburg",
	"Asia/Kolkata", "Asia/Shanghai", "Asia/Tokyo", "Asia/Seoul", "Asia/Singapore", "Asia/Dubai",
	"Australia/Sydney", "Australia/Perth", "Pacific/Auckland", "Pacific/Honolulu",
}

// autocomplete handles all autocomplete interactions.
func (h *Handlers) autocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "archive_date" {
		return
	}
	for _, opt := range data.Options {
		if opt.Name == "timezone" && opt.Focused {
			err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionApplicationCommandAutocompleteResult,
				Data: &discordgo.InteractionResponseData{
					Choices: timezoneChoices(opt.StringValue()),
				},
			})
			if err != nil {
				log.Printf("Error responding to autocomplete interaction: %v", err)
			}
		}
	}
}

func timezoneChoices(typed string) []*discordgo.ApplicationCommandOptionChoice {
	typed = strings.ToLower(typed)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)
	for _, tz := range timezones {
		if typed != "" && !strings.Contains(strings.ToLower(tz), typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: tz, Value: tz})
		if len(choices) == maxChoices {
			break
		}
	}
	return choices
}
