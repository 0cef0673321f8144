package discord

import "github.com/bwmarrin/discordgo"

func (r *Router) requireAdminOrRoles(s *discordgo.Session, ic *discordgo.InteractionCreate) bool {
	if ic.Member == nil || ic.Member.User == nil {
		ReplyEphemeral(s, ic, "🔒 Este comando sólo funciona dentro de un servidor.")
		return false
	}

	var ownerID string
	if g, _ := s.State.Guild(ic.GuildID); g != nil {
		ownerID = g.OwnerID
	}
	var roles []*discordgo.Role
	if g, _ := s.State.Guild(ic.GuildID); g != nil && len(g.Roles) > 0 {
		roles = g.Roles
	} else {
		roles, _ = s.GuildRoles(ic.GuildID)
	}

	if isAdmin(ownerID, ic.Member, roles, r.adminRoleIDs) {
		return true
	}
	ReplyEphemeral(s, ic, "🔒 No tienes permisos para esta acción.")
	return false
}

// isAdmin: owner, bit Administrator en alguno de sus roles o rol explícito del bot.
func isAdmin(ownerID string, m *discordgo.Member, roles []*discordgo.Role, adminRoleIDs []string) bool {
	if m == nil || m.User == nil {
		return false
	}
	if ownerID != "" && m.User.ID == ownerID {
		return true
	}
	// el bit ya viene resuelto en las interacciones
	if m.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	has := make(map[string]struct{}, len(m.Roles))
	for _, rid := range m.Roles {
		has[rid] = struct{}{}
	}
	for _, ro := range roles {
		if _, ok := has[ro.ID]; ok && ro.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	for _, want := range adminRoleIDs {
		if _, ok := has[want]; ok {
			return true
		}
	}
	return false
}
