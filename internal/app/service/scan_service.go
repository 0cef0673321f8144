package service

import (
	"context"
	"fmt"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/locks"
	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

type ScanReport struct {
	Inventory domain.GuildScan
	// Skipped cuenta canales ignorados (tipo no trackeado o categoría de archivo).
	Skipped    int
	PersistErr error
}

// BuildScan arma un inventario nuevo a partir del listado de canales.
// Todo record sale con status=false y sin mensaje.
func BuildScan(chans []domain.Channel, archiveCategoryIDs []string) (domain.GuildScan, int) {
	excluded := make(map[string]struct{}, len(archiveCategoryIDs))
	for _, id := range archiveCategoryIDs {
		excluded[id] = struct{}{}
	}
	names := map[string]string{}
	for _, ch := range chans {
		if ch.Kind == domain.ChannelKindCategory {
			names[ch.ID] = ch.Name
		}
	}

	g := domain.NewGuildScan()
	skipped := 0
	for _, ch := range chans {
		if ch.Kind == domain.ChannelKindCategory {
			continue
		}
		if !ch.Kind.Tracked() {
			skipped++
			continue
		}
		if _, ok := excluded[ch.ParentID]; ok && ch.ParentID != "" {
			skipped++
			continue
		}

		pid, pname := ch.ParentID, names[ch.ParentID]
		switch {
		case pid == "":
			pid, pname = domain.UngroupedID, domain.UngroupedName
		case pname == "":
			pname = domain.UnknownCategoryName
		}
		g.Put(pid, pname, ch.ID, domain.ChannelRecord{
			ChannelName:      ch.Name,
			LastMsgTimestamp: ch.LastActivity,
		})
	}
	return g, skipped
}

// RunScan recorre los canales del guild y reemplaza el inventario completo.
// Si el listado falla no se cachea ni persiste nada.
func (e *Engine) RunScan(ctx context.Context, guildID string) (ScanReport, error) {
	lease, err := e.locks.Acquire(guildID, locks.Scan)
	if err != nil {
		return ScanReport{}, err
	}
	defer lease.Release()

	cfg, err := e.config(ctx, guildID)
	if err != nil {
		return ScanReport{}, err
	}

	chans, err := e.platform.GuildChannels(ctx, guildID)
	if err != nil {
		return ScanReport{}, fmt.Errorf("list channels %s: %w", guildID, err)
	}

	scan, skipped := BuildScan(chans, cfg.ArchiveCategoryIDs)
	e.inv.Set(guildID, scan)

	rep := ScanReport{Inventory: scan.Clone(), Skipped: skipped}
	rep.PersistErr = e.persist(ctx, guildID, scan)

	e.log.Info("scan ok", "guild", guildID, "channels", scan.Len(), "categories", len(scan.Categories), "skipped", skipped)
	return rep, nil
}
