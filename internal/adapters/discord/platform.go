package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/service"
	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

// permisos mínimos para dejar la notificación (texto + embed)
const sendPerms = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks

// Platform implementa service.Platform y service.Reporter sobre discordgo.
type Platform struct {
	s *discordgo.Session
}

func NewPlatform(s *discordgo.Session) *Platform { return &Platform{s: s} }

func (p *Platform) GuildChannels(ctx context.Context, guildID string) ([]domain.Channel, error) {
	defer step("platform.guild_channels")()
	chans, err := p.s.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("guild channels %s: %w", guildID, err)
	}
	out := make([]domain.Channel, 0, len(chans))
	for _, ch := range chans {
		out = append(out, toDomainChannel(ch))
	}
	return out, nil
}

// Channel: primero State, después REST. Un 404 es ErrChannelGone.
func (p *Platform) Channel(ctx context.Context, channelID string) (domain.Channel, error) {
	if ch, err := p.s.State.Channel(channelID); err == nil && ch != nil {
		return toDomainChannel(ch), nil
	}
	ch, err := p.s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return domain.Channel{}, mapRESTError(err)
	}
	_ = p.s.State.ChannelAdd(ch)
	return toDomainChannel(ch), nil
}

func (p *Platform) CanSend(ctx context.Context, channelID string) (bool, error) {
	if p.s.State.User == nil {
		return false, errors.New("session not ready")
	}
	perms, err := p.s.UserChannelPermissions(p.s.State.User.ID, channelID, discordgo.WithContext(ctx))
	if err != nil {
		return false, mapRESTError(err)
	}
	return perms&sendPerms == sendPerms, nil
}

func (p *Platform) SendNotification(ctx context.Context, n service.Notification) (domain.SentMessage, error) {
	msg, err := p.s.ChannelMessageSendComplex(n.ChannelID, notificationMessage(n), discordgo.WithContext(ctx))
	if err != nil {
		return domain.SentMessage{}, mapRESTError(err)
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return domain.SentMessage{ID: msg.ID, Timestamp: ts}, nil
}

// ArchiveChannel mueve el canal a la categoría de archivo y le copia los
// permisos de la categoría (queda sincronizado).
func (p *Platform) ArchiveChannel(ctx context.Context, channelID, archiveCategoryID string) error {
	cat, err := p.s.State.Channel(archiveCategoryID)
	if err != nil || cat == nil {
		cat, err = p.s.Channel(archiveCategoryID, discordgo.WithContext(ctx))
		if err != nil {
			// la categoría de archivo no es el canal a archivar: no es ErrChannelGone
			return fmt.Errorf("archive category %s: %v", archiveCategoryID, err)
		}
	}
	_, err = p.s.ChannelEdit(channelID, &discordgo.ChannelEdit{
		ParentID:             cat.ID,
		PermissionOverwrites: cat.PermissionOverwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return mapRESTError(err)
	}
	return nil
}

func (p *Platform) Post(ctx context.Context, channelID, content string) error {
	_, err := p.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.Printf("[report] post %s: %v", channelID, err)
	}
	return err
}

func notificationMessage(n service.Notification) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title: "📦 Canal inactivo",
			Description: fmt.Sprintf(
				"Este canal no tiene actividad reciente y se va a archivar <t:%d:R>.\n"+
					"Si sigue en uso, escribí algo acá o tocá el botón.", n.ExpiresAt),
			Color: 0xF1C40F,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Style:    discordgo.SuccessButton,
					Label:    "Sigue activo",
					CustomID: customID(cidRenew, n.ChannelID),
					Emoji:    &discordgo.ComponentEmoji{Name: "✋"},
				},
			}},
		},
	}
}

func toDomainChannel(ch *discordgo.Channel) domain.Channel {
	out := domain.Channel{
		ID:       ch.ID,
		GuildID:  ch.GuildID,
		Name:     ch.Name,
		ParentID: ch.ParentID,
		Kind:     kindOf(ch.Type),
	}
	if ch.LastMessageID != "" {
		if ts, err := discordgo.SnowflakeTimestamp(ch.LastMessageID); err == nil {
			out.LastActivity = ts.Unix()
		}
	}
	return out
}

func kindOf(t discordgo.ChannelType) domain.ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildText:
		return domain.ChannelKindText
	case discordgo.ChannelTypeGuildNews:
		return domain.ChannelKindAnnouncement
	case discordgo.ChannelTypeGuildCategory:
		return domain.ChannelKindCategory
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return domain.ChannelKindVoice
	}
	return domain.ChannelKindOther
}

// mapRESTError traduce "Unknown Channel" / 404 a ErrChannelGone.
func mapRESTError(err error) error {
	var re *discordgo.RESTError
	if !errors.As(err, &re) {
		return err
	}
	if re.Message != nil && re.Message.Code == discordgo.ErrCodeUnknownChannel {
		return fmt.Errorf("%w: %v", service.ErrChannelGone, err)
	}
	if re.Response != nil && re.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", service.ErrChannelGone, err)
	}
	return err
}
