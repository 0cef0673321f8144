package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/locks"
	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

type ArchiveReport struct {
	Archived    []domain.ChannelRef
	Unreachable []domain.ChannelRef
	Rejected    []domain.ChannelRef
	// Pending: notificados que todavía no vencieron.
	Pending    int
	PersistErr error
}

// OK es false si hubo algún canal que no se pudo archivar o no se pudo persistir.
func (r ArchiveReport) OK() bool {
	return len(r.Unreachable) == 0 && len(r.Rejected) == 0 && r.PersistErr == nil
}

// Err junta las fallas en un solo mensaje; nil si OK().
func (r ArchiveReport) Err() error {
	if r.OK() {
		return nil
	}
	var parts []string
	if n := len(r.Unreachable); n > 0 {
		parts = append(parts, fmt.Sprintf("%d canal(es) inaccesibles", n))
	}
	if n := len(r.Rejected); n > 0 {
		parts = append(parts, fmt.Sprintf("%d canal(es) rechazados por la plataforma", n))
	}
	if r.PersistErr != nil {
		parts = append(parts, "no se pudo guardar el inventario")
	}
	return errors.New(strings.Join(parts, "; "))
}

// Summary es el texto que se publica en el canal de notificaciones.
func (r ArchiveReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗄️ **Archivo**: %d archivados, %d pendientes", len(r.Archived), r.Pending)
	writeRefs := func(title string, refs []domain.ChannelRef) {
		if len(refs) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n**%s**", title)
		for _, ref := range refs {
			fmt.Fprintf(&b, "\n• <#%s> (%s)", ref.ChannelID, ref.Record.ChannelName)
		}
	}
	writeRefs("Archivados", r.Archived)
	writeRefs("Inaccesibles", r.Unreachable)
	writeRefs("Rechazados", r.Rejected)
	if err := r.Err(); err != nil {
		fmt.Fprintf(&b, "\n⚠️ %s", err)
	}
	return b.String()
}

type archiveOutcome int

const (
	outcomeArchived archiveOutcome = iota
	outcomeUnreachable
	outcomeRejected
)

type archiveResult struct {
	ref     domain.ChannelRef
	outcome archiveOutcome
	err     error
}

// archiveOne: sólo ErrChannelGone es inaccesible; otra falla al buscar el
// canal se reporta como rechazo para reintentar en el próximo barrido.
func (e *Engine) archiveOne(ctx context.Context, ref domain.ChannelRef, categoryID string) archiveResult {
	if _, err := e.platform.Channel(ctx, ref.ChannelID); err != nil {
		if errors.Is(err, ErrChannelGone) {
			return archiveResult{ref: ref, outcome: outcomeUnreachable, err: err}
		}
		return archiveResult{ref: ref, outcome: outcomeRejected, err: err}
	}
	if err := e.platform.ArchiveChannel(ctx, ref.ChannelID, categoryID); err != nil {
		return archiveResult{ref: ref, outcome: outcomeRejected, err: err}
	}
	return archiveResult{ref: ref, outcome: outcomeArchived}
}

// RunArchive archiva los canales notificados cuyo archiveTimestamp ya pasó.
// Los que no se alcanzan o la plataforma rechaza van al reporte; el barrido sigue.
func (e *Engine) RunArchive(ctx context.Context, guildID string) (ArchiveReport, error) {
	if !e.Ready(guildID) {
		return ArchiveReport{}, ErrNotReady
	}
	lease, err := e.locks.Acquire(guildID, locks.Archive)
	if err != nil {
		return ArchiveReport{}, err
	}
	defer lease.Release()

	cfg, err := e.config(ctx, guildID)
	if err != nil {
		return ArchiveReport{}, err
	}
	if len(cfg.ArchiveCategoryIDs) == 0 {
		return ArchiveReport{}, ErrNoArchiveCategory
	}
	target := cfg.ArchiveCategoryIDs[0]

	now := e.now().Unix()
	inv, _ := e.Inventory(guildID)

	var rep ArchiveReport
	var eligible []domain.ChannelRef
	for _, ref := range inv.Flatten() {
		switch {
		case ref.Record.Expired(now):
			eligible = append(eligible, ref)
		case ref.Record.Status && !ref.Record.Archived:
			rep.Pending++
		}
	}

	results := fanOut(ctx, e.concurrency, eligible, func(ctx context.Context, ref domain.ChannelRef) archiveResult {
		return e.archiveOne(ctx, ref, target)
	})

	done := map[string]struct{}{}
	for _, r := range results {
		switch r.outcome {
		case outcomeArchived:
			rep.Archived = append(rep.Archived, r.ref)
			done[r.ref.ChannelID] = struct{}{}
		case outcomeUnreachable:
			rep.Unreachable = append(rep.Unreachable, r.ref)
			e.log.Debug("archive: canal inaccesible", "guild", guildID, "channel", r.ref.ChannelID, "err", r.err)
		case outcomeRejected:
			rep.Rejected = append(rep.Rejected, r.ref)
			e.log.Warn("archive: rechazado", "guild", guildID, "channel", r.ref.ChannelID, "err", r.err)
		}
	}

	next, wrote := e.mutate(guildID, func(g *domain.GuildScan) bool {
		for id := range done {
			g.Update(id, func(r domain.ChannelRecord) domain.ChannelRecord {
				r.Status = false
				r.Archived = true
				return r
			})
		}
		return len(done) > 0
	})
	if wrote {
		rep.PersistErr = e.persist(ctx, guildID, next)
	}

	e.log.Info("archive ok", "guild", guildID, "archived", len(rep.Archived),
		"unreachable", len(rep.Unreachable), "rejected", len(rep.Rejected), "pending", rep.Pending)
	return rep, nil
}
