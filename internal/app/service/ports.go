package service

import (
	"context"
	"errors"

	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

var (
	// ErrChannelGone: el id ya no resuelve a un canal vivo.
	ErrChannelGone       = errors.New("channel no longer exists")
	ErrNotReady          = errors.New("guild state still loading")
	ErrNoArchiveCategory = errors.New("no archive category configured")
	ErrUnknownChannel    = errors.New("channel is not in the inventory")
	ErrCannotSend        = errors.New("missing permissions to send in channel")
	ErrChannelArchived   = errors.New("channel already archived")
)

// Notification es lo que se manda a cada canal en un broadcast.
type Notification struct {
	GuildID   string
	ChannelID string
	ExpiresAt int64
}

// Lo implementa internal/adapters/discord.Platform
type Platform interface {
	GuildChannels(ctx context.Context, guildID string) ([]domain.Channel, error)
	// Channel devuelve ErrChannelGone si el canal fue borrado.
	Channel(ctx context.Context, channelID string) (domain.Channel, error)
	CanSend(ctx context.Context, channelID string) (bool, error)
	SendNotification(ctx context.Context, n Notification) (domain.SentMessage, error)
	ArchiveChannel(ctx context.Context, channelID, archiveCategoryID string) error
}

// Reporter publica un texto en un canal (reportes del auto-archive).
type Reporter interface {
	Post(ctx context.Context, channelID, content string) error
}

// Lo implementa internal/infra/storage.ScanRepo
type ScanRepo interface {
	Get(ctx context.Context, guildID string) ([]domain.StoredCategory, error)
	Upsert(ctx context.Context, guildID string, cats []domain.StoredCategory) error
}

// Lo implementa internal/infra/storage.ConfigRepo
type ConfigRepo interface {
	Get(ctx context.Context, guildID string) (domain.GuildConfig, error)
	Upsert(ctx context.Context, c domain.GuildConfig) error
}
