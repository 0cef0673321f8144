package discord

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/locks"
	"github.com/jose-valero/channel-sweeper-bot/internal/app/service"
	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

type MockSweeper struct{ mock.Mock }

func (m *MockSweeper) Ready(guildID string) bool { return m.Called(guildID).Bool(0) }

func (m *MockSweeper) Load(ctx context.Context, guildID string) error {
	return m.Called(ctx, guildID).Error(0)
}

func (m *MockSweeper) Unload(guildID string) { m.Called(guildID) }

func (m *MockSweeper) IsBusy(guildID string, kind locks.Kind) bool {
	return m.Called(guildID, kind).Bool(0)
}

func (m *MockSweeper) RunScan(ctx context.Context, guildID string) (service.ScanReport, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(service.ScanReport), args.Error(1)
}

func (m *MockSweeper) RunBroadcast(ctx context.Context, guildID string) (service.BroadcastResult, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(service.BroadcastResult), args.Error(1)
}

func (m *MockSweeper) RunArchive(ctx context.Context, guildID string) (service.ArchiveReport, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(service.ArchiveReport), args.Error(1)
}

func (m *MockSweeper) Pages(guildID string, size int) []service.Page {
	args := m.Called(guildID, size)
	pages, _ := args.Get(0).([]service.Page)
	return pages
}

func (m *MockSweeper) SendOne(ctx context.Context, guildID, channelID string) (domain.ChannelRecord, error) {
	args := m.Called(ctx, guildID, channelID)
	return args.Get(0).(domain.ChannelRecord), args.Error(1)
}

func (m *MockSweeper) Forget(ctx context.Context, guildID, channelID string) error {
	return m.Called(ctx, guildID, channelID).Error(0)
}

func (m *MockSweeper) Renew(ctx context.Context, guildID, channelID string, at time.Time) (bool, error) {
	args := m.Called(ctx, guildID, channelID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockSweeper) Tracked(guildID, channelID string) bool {
	return m.Called(guildID, channelID).Bool(0)
}

var _ Sweeper = (*MockSweeper)(nil)
