package models

// Guild is a top-level chat community.
type Guild struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url"`
}

// Channel is owned by exactly one Guild. The Total* counters are maintained by the store.
type Channel struct {
	ID              string `json:"id"`
	GuildID         string `json:"guild_id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	CategoryID      string `json:"category_id"`
	CategoryName    string `json:"category_name"`
	Topic           string `json:"topic"`
	TotalMessages   int64  `json:"total_messages"`
	TotalWords      int64  `json:"total_words"`
	TotalCharacters int64  `json:"total_characters"`
}

// Channel kinds.
const (
	ChannelTypeText   = "text"
	ChannelTypeVoice  = "voice"
	ChannelTypeThread = "thread"
)

type Role struct {
	ID       string `json:"id"`
	GuildID  string `json:"guild_id,omitempty"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Position int    `json:"position"`
}

// User is a message author. RoleIDs is replaced as a whole on every upsert.
type User struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Discriminator   string   `json:"discriminator"`
	Nickname        string   `json:"nickname"`
	AvatarURL       string   `json:"avatar_url"`
	Color           string   `json:"color"`
	IsBot           bool     `json:"is_bot"`
	RoleIDs         []string `json:"role_ids,omitempty"`
	TotalMessages   int64    `json:"total_messages"`
	TotalWords      int64    `json:"total_words"`
	TotalCharacters int64    `json:"total_characters"`
}

// Totals is a message/word/character triple.
type Totals struct {
	TotalMessages   int64 `json:"total_messages"`
	TotalWords      int64 `json:"total_words"`
	TotalCharacters int64 `json:"total_characters"`
}

// ChannelProfile is the public view of a channel and its stored counters.
type ChannelProfile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	CategoryName    string `json:"category_name"`
	Topic           string `json:"topic"`
	TotalMessages   int64  `json:"total_messages"`
	TotalWords      int64  `json:"total_words"`
	TotalCharacters int64  `json:"total_characters"`
	GuildIconURL    string `json:"guild_icon_url"`
}

// UserProfile is the public view of a user, its roles and stored counters.
type UserProfile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Discriminator   string `json:"discriminator"`
	Nickname        string `json:"nickname"`
	AvatarURL       string `json:"avatar_url"`
	Color           string `json:"color"`
	IsBot           bool   `json:"is_bot"`
	TotalMessages   int64  `json:"total_messages"`
	TotalWords      int64  `json:"total_words"`
	TotalCharacters int64  `json:"total_characters"`
	Roles           []Role `json:"roles"`
}

// UserPatch lists the user fields editable through the API.
type UserPatch struct {
	Nickname  *string `json:"nickname,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Color     *string `json:"color,omitempty"`
}

// FilterOptions lists the distinct names usable as browse filters.
type FilterOptions struct {
	Servers  []string `json:"servers"`
	Channels []string `json:"channels"`
	Users    []string `json:"users"`
}
