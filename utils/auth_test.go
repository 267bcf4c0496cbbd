package utils

import (
	"testing"

	"discord-archive/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestCheckPermission(t *testing.T) {
	auth := NewAuth(models.BotConfig{
		Developers: []string{"dev-1"},
		AdminRoles: []string{"role-admin"},
	})

	interaction := func(userID string, roles ...string) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{User: &discordgo.User{ID: userID}, Roles: roles},
		}}
	}

	assert.True(t, auth.CheckPermission(interaction("dev-1"), "developer"))
	assert.False(t, auth.CheckPermission(interaction("someone"), "developer"))
	assert.True(t, auth.CheckPermission(interaction("someone", "role-admin"), "admin"))
	assert.True(t, auth.CheckPermission(interaction("dev-1"), "admin"))
	assert.False(t, auth.CheckPermission(interaction("someone", "role-other"), "admin"))
	assert.True(t, auth.CheckPermission(interaction("someone"), "guest"))
	assert.False(t, auth.CheckPermission(interaction("dev-1"), "unknown"))

	// direct-message interactions carry User instead of Member
	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: &discordgo.User{ID: "dev-1"}}}
	assert.True(t, auth.CheckPermission(dm, "admin"))
}
