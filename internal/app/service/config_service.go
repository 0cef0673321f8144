package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

// ConfigStore lo implementa *Engine (cache + repo).
type ConfigStore interface {
	UpdateConfig(ctx context.Context, guildID string, fn func(*domain.GuildConfig)) (domain.GuildConfig, error)
	Config(guildID string) (domain.GuildConfig, bool)
}

type ConfigService struct {
	store ConfigStore
}

func NewConfigService(s ConfigStore) *ConfigService { return &ConfigService{store: s} }

// Para updates parciales desde /config
type ConfigPatch struct {
	NotifyChannelID       *string
	AddArchiveCategory    *string
	RemoveArchiveCategory *string
	AutoArchive           *bool
}

func (s *ConfigService) Show(guildID string) (string, error) {
	c, ok := s.store.Config(guildID)
	if !ok {
		return "", ErrNotReady
	}
	return render(c), nil
}

func render(c domain.GuildConfig) string {
	cats := "—"
	if len(c.ArchiveCategoryIDs) > 0 {
		ids := make([]string, 0, len(c.ArchiveCategoryIDs))
		for _, id := range c.ArchiveCategoryIDs {
			ids = append(ids, "<#"+id+">")
		}
		cats = strings.Join(ids, ", ")
	}
	notify := "—"
	if c.NotifyChannelID != "" {
		notify = "<#" + c.NotifyChannelID + ">"
	}
	return fmt.Sprintf(
		"**Config de %s**\n• categorías de archivo: %s\n• canal de avisos: %s\n• auto-archive: **%v**",
		c.GuildID, cats, notify, c.AutoArchive,
	)
}

func (s *ConfigService) Update(ctx context.Context, guildID string, patch ConfigPatch) (string, error) {
	c, err := s.store.UpdateConfig(ctx, guildID, func(c *domain.GuildConfig) {
		if patch.NotifyChannelID != nil {
			c.NotifyChannelID = *patch.NotifyChannelID
		}
		if patch.AddArchiveCategory != nil && !c.IsArchiveCategory(*patch.AddArchiveCategory) {
			c.ArchiveCategoryIDs = append(c.ArchiveCategoryIDs, *patch.AddArchiveCategory)
		}
		if patch.RemoveArchiveCategory != nil {
			kept := c.ArchiveCategoryIDs[:0]
			for _, id := range c.ArchiveCategoryIDs {
				if id != *patch.RemoveArchiveCategory {
					kept = append(kept, id)
				}
			}
			c.ArchiveCategoryIDs = kept
		}
		if patch.AutoArchive != nil {
			c.AutoArchive = *patch.AutoArchive
		}
	})
	if err != nil {
		return "", err
	}
	return render(c), nil
}
