package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"discord-archive/database"
	"discord-archive/models"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

func (h *Handlers) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f := database.MessageFilter{GuildID: i.GuildID}
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["exclude_bots"]; ok {
		f.ExcludeBots = opt.BoolValue()
	}

	ctx, cancel := eventContext()
	defer cancel()
	totals, err := h.stats.Totals(ctx, f)
	if err != nil {
		report("Stats", err)
		respond(s, i, "Error: could not compute statistics.")
		return
	}
	respond(s, i, formatTotals(totals))
}

func formatTotals(t *models.MessageTotals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Messages:** %s\n", humanize.Comma(t.TotalMessages))
	fmt.Fprintf(&b, "**Words:** %s\n", humanize.Comma(t.TotalWords))
	fmt.Fprintf(&b, "**Characters:** %s\n", humanize.Comma(t.TotalCharacters))
	fmt.Fprintf(&b, "**Last 24 hours:** %s\n", humanize.Comma(t.MessagesLast24Hours))
	fmt.Fprintf(&b, "**Average per day:** %s", humanize.FormatFloat("#,###.##", t.AverageMessagesPerDay))
	if t.MostActiveDay != nil {
		fmt.Fprintf(&b, "\n**Busiest day:** %s (%s)", t.MostActiveDay.Date, humanize.Comma(t.MostActiveDay.Count))
	}
	if t.LeastActiveDay != nil {
		fmt.Fprintf(&b, "\n**Quietest day:** %s (%s)", t.LeastActiveDay.Date, humanize.Comma(t.LeastActiveDay.Count))
	}
	return b.String()
}

// handleArchiveDate starts a background import of one day of this guild.
func (h *Handlers) handleArchiveDate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h.importer == nil || i.GuildID == "" {
		respond(s, i, "Error: imports are only available inside a server.")
		return
	}
	opts := optionMap(i.ApplicationCommandData().Options)
	var date, tz string
	if opt, ok := opts["date"]; ok {
		date = opt.StringValue()
	}
	if opt, ok := opts["timezone"]; ok {
		tz = opt.StringValue()
	}

	task, err := h.importer.Start(context.Background(), requester(i), i.GuildID, date, tz)
	if err != nil {
		if errors.Is(err, database.ErrInvalidField) {
			respond(s, i, "Error: "+err.Error())
			return
		}
		report("ArchiveDate", err)
		respond(s, i, "Error: could not start the import.")
		return
	}
	respond(s, i, fmt.Sprintf("Import of **%s** (%s) started. Task `%s`. Use /import_status to follow it.",
		task.Date, task.Timezone, task.ID))
}

func (h *Handlers) handleImportStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := eventContext()
	defer cancel()
	task, err := h.tasks.LatestTask(ctx, requester(i))
	switch {
	case errors.Is(err, database.ErrNotFound):
		respond(s, i, "You have no import tasks.")
	case err != nil:
		report("ImportStatus", err)
		respond(s, i, "Error: could not load import status.")
	default:
		respond(s, i, formatTask(task))
	}
}

func formatTask(t *models.ImportTask) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task `%s` for **%s** (%s): **%s**\n", t.ID, t.Date, t.Timezone, t.Status)
	fmt.Fprintf(&b, "Channels processed: %s, messages stored: %s",
		humanize.Comma(int64(t.ChannelsProcessed)), humanize.Comma(int64(t.MessagesStored)))
	if t.MessagesFailed > 0 {
		fmt.Fprintf(&b, ", failed: %s", humanize.Comma(int64(t.MessagesFailed)))
	}
	if t.Error != "" {
		fmt.Fprintf(&b, "\nError: %s", t.Error)
	}
	return b.String()
}
