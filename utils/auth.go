package utils

import (
	"slices"

	"discord-archive/models"

	"github.com/bwmarrin/discordgo"
)

// Auth provides authorization checks for slash commands.
type Auth struct {
	developers []string
	adminRoles []string
}

// NewAuth creates a new Auth instance from the bot configuration.
func NewAuth(cfg models.BotConfig) *Auth {
	return &Auth{developers: cfg.Developers, adminRoles: cfg.AdminRoles}
}

// IsDeveloper checks if a user is a developer.
func (a *Auth) IsDeveloper(userID string) bool {
	return slices.Contains(a.developers, userID)
}

// IsAdmin checks if a member holds one of the admin roles.
func (a *Auth) IsAdmin(member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	for _, adminRoleID := range a.adminRoles {
		if slices.Contains(member.Roles, adminRoleID) {
			return true
		}
	}
	return false
}

// CheckPermission checks if the interaction's user has the required permission level.
func (a *Auth) CheckPermission(i *discordgo.InteractionCreate, requiredLevel string) bool {
	var userID string
	switch {
	case i.Member != nil && i.Member.User != nil:
		userID = i.Member.User.ID
	case i.User != nil:
		userID = i.User.ID
	}

	switch requiredLevel {
	case "developer":
		return a.IsDeveloper(userID)
	case "admin":
		return a.IsDeveloper(userID) || a.IsAdmin(i.Member)
	case "guest":
		return true
	default:
		return false
	}
}
