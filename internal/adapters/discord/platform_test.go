package discord

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/service"
	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, domain.ChannelKindText, kindOf(discordgo.ChannelTypeGuildText))
	assert.Equal(t, domain.ChannelKindAnnouncement, kindOf(discordgo.ChannelTypeGuildNews))
	assert.Equal(t, domain.ChannelKindCategory, kindOf(discordgo.ChannelTypeGuildCategory))
	assert.Equal(t, domain.ChannelKindVoice, kindOf(discordgo.ChannelTypeGuildVoice))
	assert.Equal(t, domain.ChannelKindVoice, kindOf(discordgo.ChannelTypeGuildStageVoice))
	assert.Equal(t, domain.ChannelKindOther, kindOf(discordgo.ChannelTypeGuildForum))
}

func TestToDomainChannel(t *testing.T) {
	ch := toDomainChannel(&discordgo.Channel{
		ID:            "C1",
		GuildID:       "G1",
		Name:          "general",
		ParentID:      "P1",
		Type:          discordgo.ChannelTypeGuildText,
		LastMessageID: "1174109840998400000",
	})
	assert.Equal(t, domain.Channel{
		ID:           "C1",
		GuildID:      "G1",
		Name:         "general",
		ParentID:     "P1",
		Kind:         domain.ChannelKindText,
		LastActivity: 1700000000,
	}, ch)

	// sin último mensaje: actividad cero
	ch = toDomainChannel(&discordgo.Channel{ID: "C2", Type: discordgo.ChannelTypeGuildText})
	assert.Zero(t, ch.LastActivity)

	ch = toDomainChannel(&discordgo.Channel{ID: "C3", LastMessageID: "not-a-snowflake"})
	assert.Zero(t, ch.LastActivity)
}

func restErr(status, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: http.StatusText(status)},
		Message:  &discordgo.APIErrorMessage{Code: code},
	}
}

func TestMapRESTError(t *testing.T) {
	err := mapRESTError(restErr(http.StatusNotFound, discordgo.ErrCodeUnknownChannel))
	assert.ErrorIs(t, err, service.ErrChannelGone)

	err = mapRESTError(restErr(http.StatusNotFound, 0))
	assert.ErrorIs(t, err, service.ErrChannelGone)

	forbidden := restErr(http.StatusForbidden, discordgo.ErrCodeMissingPermissions)
	err = mapRESTError(forbidden)
	assert.NotErrorIs(t, err, service.ErrChannelGone)
	assert.Same(t, forbidden, err)

	plain := errors.New("boom")
	assert.Same(t, plain, mapRESTError(plain))
}

func TestNotificationMessage(t *testing.T) {
	msg := notificationMessage(service.Notification{GuildID: "G1", ChannelID: "C1", ExpiresAt: 1234})
	require.Len(t, msg.Embeds, 1)
	assert.Contains(t, msg.Embeds[0].Description, "<t:1234:R>")

	require.Len(t, msg.Components, 1)
	row, ok := msg.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	btn, ok := row.Components[0].(discordgo.Button)
	require.True(t, ok)
	assert.Equal(t, "chan_renew:C1", btn.CustomID)
}
