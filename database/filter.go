package database

import (
	"slices"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without zoneinfo
)

// messageFrom joins every message to the entities the filters and views refer to.
const messageFrom = ` FROM messages m
	JOIN channels c ON c.id = m.channel_id
	JOIN users u ON u.id = m.author_id
	LEFT JOIN guilds g ON g.id = m.guild_id`

// MessageFilter is the composed predicate shared by every statistics view and the browser.
// Zero-valued fields impose no restriction.
type MessageFilter struct {
	Server          string
	GuildID         string // used by the bot, which knows ids rather than names
	Channel         string
	User            string
	Date            string // YYYY-MM-DD, local to Timezone
	Timezone        string // IANA name, UTC when empty
	ExcludeUsers    []string
	ExcludeChannels []string
	ExcludeBots     bool
	HasAttachment   bool
	HasMention      bool
	HasEmoji        bool
}

// Clause is an immutable list of AND-ed SQL conditions with their arguments.
type Clause struct {
	conds []string
	args  []any
}

// And returns a copy of c with one more condition.
func (c Clause) And(cond string, args ...any) Clause {
	return Clause{
		conds: append(slices.Clone(c.conds), cond),
		args:  append(slices.Clone(c.args), args...),
	}
}

// SQL renders the clause as a WHERE fragment, empty when there are no conditions.
func (c Clause) SQL() string {
	if len(c.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.conds, " AND ")
}

// Args returns the placeholder arguments in condition order.
func (c Clause) Args() []any {
	return slices.Clone(c.args)
}

// Where composes the filter over the aliases of messageFrom.
func (f MessageFilter) Where() Clause {
	var c Clause
	if f.Server != "" {
		c = c.And("g.name = ?", f.Server)
	}
	if f.GuildID != "" {
		c = c.And("m.guild_id = ?", f.GuildID)
	}
	if f.Channel != "" {
		c = c.And("c.name = ?", f.Channel)
	}
	if f.User != "" {
		c = c.And("u.name = ?", f.User)
	}
	if start, end, ok := DayRange(f.Date, f.Timezone); ok {
		c = c.And("m.timestamp >= ? AND m.timestamp < ?", toMillis(start), toMillis(end))
	}
	if names := nonEmpty(f.ExcludeUsers); len(names) > 0 {
		c = c.And("u.name NOT IN ("+placeholders(len(names))+")", toArgs(names)...)
	}
	if names := nonEmpty(f.ExcludeChannels); len(names) > 0 {
		c = c.And("c.name NOT IN ("+placeholders(len(names))+")", toArgs(names)...)
	}
	if f.ExcludeBots {
		c = c.And("u.is_bot = 0")
	}
	if f.HasAttachment {
		c = c.And("m.attachments != '[]'")
	}
	if f.HasMention {
		c = c.And("m.mentions != '[]'")
	}
	if f.HasEmoji {
		c = c.And("m.inline_emojis != '[]'")
	}
	return c
}

// DayRange converts a local calendar day into the half-open UTC interval [start, end).
// ok is false when the date or the zone cannot be parsed, which disables the date filter.
func DayRange(date, tz string) (start, end time.Time, ok bool) {
	if date == "" {
		return time.Time{}, time.Time{}, false
	}
	loc := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		loc = l
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return day.UTC(), day.AddDate(0, 0, 1).UTC(), true
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}

func nonEmpty(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
