package stats

import (
	"context"
	"math"
	"sort"

	"discord-archive/database"
	"discord-archive/models"
)

// leader is the most active member of a group.
type leader struct {
	id, name string
	count    int64
}

// better orders candidates by count desc, then name asc, then id asc.
func (l leader) better(other leader) bool {
	if l.count != other.count {
		return l.count > other.count
	}
	if l.name != other.name {
		return l.name < other.name
	}
	return l.id < other.id
}

func share(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(whole)) / 10
}

// Channels returns the per-channel view under f. Channels without matching messages are
// omitted; totals are computed over the whole filter.
func (e *Engine) Channels(ctx context.Context, f database.MessageFilter) (*models.ChannelStats, error) {
	aggs, err := e.store.AggregateByChannel(ctx, f)
	if err != nil {
		return nil, err
	}
	pairs, err := e.store.CountByChannelAndAuthor(ctx, f)
	if err != nil {
		return nil, err
	}
	totals, err := e.store.FilteredTotals(ctx, f)
	if err != nil {
		return nil, err
	}

	leaders := make(map[string]leader)
	for _, p := range pairs {
		cand := leader{id: p.AuthorID, name: p.AuthorName, count: p.Count}
		if cur, ok := leaders[p.ChannelID]; !ok || cand.better(cur) {
			leaders[p.ChannelID] = cand
		}
	}

	sortAggregates(aggs)
	out := &models.ChannelStats{Totals: totals, Channels: make([]models.ChannelStat, 0, len(aggs))}
	for _, a := range aggs {
		if a.Messages == 0 {
			continue
		}
		top := leaders[a.ID]
		out.Channels = append(out.Channels, models.ChannelStat{
			ChannelID:                a.ID,
			ChannelName:              a.Name,
			MessageCount:             a.Messages,
			TotalWords:               a.Words,
			TotalCharacters:          a.Characters,
			Attachments:              a.Attachments,
			Mentions:                 a.Mentions,
			Emojis:                   a.Emojis,
			MostActiveUser:           top.name,
			MostActiveUserPercentage: share(top.count, a.Messages),
		})
	}
	return out, nil
}

// Users returns the per-author view under f, symmetric to Channels.
func (e *Engine) Users(ctx context.Context, f database.MessageFilter) (*models.UserStats, error) {
	aggs, err := e.store.AggregateByAuthor(ctx, f)
	if err != nil {
		return nil, err
	}
	pairs, err := e.store.CountByChannelAndAuthor(ctx, f)
	if err != nil {
		return nil, err
	}
	totals, err := e.store.FilteredTotals(ctx, f)
	if err != nil {
		return nil, err
	}

	leaders := make(map[string]leader)
	for _, p := range pairs {
		cand := leader{id: p.ChannelID, name: p.ChannelName, count: p.Count}
		if cur, ok := leaders[p.AuthorID]; !ok || cand.better(cur) {
			leaders[p.AuthorID] = cand
		}
	}

	sortAggregates(aggs)
	out := &models.UserStats{Totals: totals, Users: make([]models.UserStat, 0, len(aggs))}
	for _, a := range aggs {
		if a.Messages == 0 {
			continue
		}
		top := leaders[a.ID]
		out.Users = append(out.Users, models.UserStat{
			UserID:                      a.ID,
			UserName:                    a.Name,
			Nickname:                    a.Nickname,
			IsBot:                       a.IsBot,
			MessageCount:                a.Messages,
			TotalWords:                  a.Words,
			TotalCharacters:             a.Characters,
			Attachments:                 a.Attachments,
			Mentions:                    a.Mentions,
			Emojis:                      a.Emojis,
			MostActiveChannel:           top.name,
			MostActiveChannelPercentage: share(top.count, a.Messages),
		})
	}
	return out, nil
}

func sortAggregates(aggs []database.GroupAggregate) {
	sort.SliceStable(aggs, func(i, j int) bool {
		return leader{id: aggs[i].ID, name: aggs[i].Name, count: aggs[i].Messages}.
			better(leader{id: aggs[j].ID, name: aggs[j].Name, count: aggs[j].Messages})
	})
}
