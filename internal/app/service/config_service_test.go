package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestConfigUpdate(t *testing.T) {
	env := newTestEnv(newFakePlatform(), domain.NewGuildScan(), domain.GuildConfig{ArchiveCategoryIDs: []string{"A1"}})
	env.configs.On("Upsert", mock.Anything, mock.MatchedBy(func(c domain.GuildConfig) bool {
		return c.GuildID == testGuild && c.AutoArchive && c.NotifyChannelID == "N1" &&
			len(c.ArchiveCategoryIDs) == 1 && c.ArchiveCategoryIDs[0] == "A2"
	})).Return(nil).Once()

	svc := NewConfigService(env.engine)
	msg, err := svc.Update(context.Background(), testGuild, ConfigPatch{
		NotifyChannelID:       ptr("N1"),
		AddArchiveCategory:    ptr("A2"),
		RemoveArchiveCategory: ptr("A1"),
		AutoArchive:           ptr(true),
	})
	require.NoError(t, err)
	assert.Contains(t, msg, "<#A2>")
	assert.Contains(t, msg, "<#N1>")

	cfg, ok := env.engine.Config(testGuild)
	require.True(t, ok)
	assert.Equal(t, []string{"A2"}, cfg.ArchiveCategoryIDs)
	env.configs.AssertExpectations(t)
}

func TestConfigUpdateStoreFailureKeepsCache(t *testing.T) {
	env := newTestEnv(newFakePlatform(), domain.NewGuildScan(), domain.GuildConfig{})
	env.configs.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("db down"))

	svc := NewConfigService(env.engine)
	_, err := svc.Update(context.Background(), testGuild, ConfigPatch{AutoArchive: ptr(true)})
	require.Error(t, err)

	cfg, _ := env.engine.Config(testGuild)
	assert.False(t, cfg.AutoArchive)
}

func TestConfigShow(t *testing.T) {
	env := newTestEnv(newFakePlatform(), domain.NewGuildScan(), domain.GuildConfig{NotifyChannelID: "N1"})
	svc := NewConfigService(env.engine)
	msg, err := svc.Show(testGuild)
	require.NoError(t, err)
	assert.Contains(t, msg, "<#N1>")

	_, err = svc.Show("other")
	assert.ErrorIs(t, err, ErrNotReady)
}
