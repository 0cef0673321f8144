package discord

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/locks"
	"github.com/jose-valero/channel-sweeper-bot/internal/app/service"
	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

// Sweeper es lo que el router usa del engine (service.Engine).
type Sweeper interface {
	Ready(guildID string) bool
	Load(ctx context.Context, guildID string) error
	Unload(guildID string)
	IsBusy(guildID string, kind locks.Kind) bool
	RunScan(ctx context.Context, guildID string) (service.ScanReport, error)
	RunBroadcast(ctx context.Context, guildID string) (service.BroadcastResult, error)
	RunArchive(ctx context.Context, guildID string) (service.ArchiveReport, error)
	Pages(guildID string, size int) []service.Page
	SendOne(ctx context.Context, guildID, channelID string) (domain.ChannelRecord, error)
	Forget(ctx context.Context, guildID, channelID string) error
	Renew(ctx context.Context, guildID, channelID string, at time.Time) (bool, error)
	Tracked(guildID, channelID string) bool
}

// ConfigEditor: service.ConfigService
type ConfigEditor interface {
	Show(guildID string) (string, error)
	Update(ctx context.Context, guildID string, patch service.ConfigPatch) (string, error)
}

// custom_id de botones y menús: "<prefijo>:<arg>"
const (
	cidPage   = "inv_page"
	cidPick   = "inv_pick"
	cidSend   = "chan_send"
	cidForget = "chan_forget"
	cidRenew  = "chan_renew"
)

func customID(prefix, arg string) string { return prefix + ":" + arg }

func parseCustomID(id string) (prefix, arg string) {
	prefix, arg, _ = strings.Cut(id, ":")
	return prefix, arg
}

func pageArg(arg string) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
