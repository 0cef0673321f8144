package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestIsAdmin(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "R_ADMIN", Permissions: discordgo.PermissionAdministrator},
		{ID: "R_MOD", Permissions: discordgo.PermissionManageMessages},
	}
	member := func(id string, roles ...string) *discordgo.Member {
		return &discordgo.Member{User: &discordgo.User{ID: id}, Roles: roles}
	}

	assert.True(t, isAdmin("U1", member("U1"), roles, nil), "owner")
	assert.True(t, isAdmin("", member("U2", "R_ADMIN"), roles, nil), "administrator role")
	assert.False(t, isAdmin("", member("U3", "R_MOD"), roles, nil))
	assert.True(t, isAdmin("", member("U3", "R_MOD"), roles, []string{"R_MOD"}), "configured role")
	assert.False(t, isAdmin("", nil, roles, nil))

	m := member("U4")
	m.Permissions = discordgo.PermissionAdministrator
	assert.True(t, isAdmin("", m, nil, nil), "resolved interaction permissions")
}
