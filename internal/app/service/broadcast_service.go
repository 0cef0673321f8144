package service

import (
	"context"
	"errors"
	"sort"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/locks"
	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

type BroadcastResult struct {
	// Unfetchable: nombres de canales que ya no existen.
	Unfetchable []string
	// Unsendable: ids de canales sin permisos o con envío fallido.
	Unsendable []string
	Sent       int
	PersistErr error
}

type sendOutcome int

const (
	outcomeSent sendOutcome = iota
	outcomeUnfetchable
	outcomeUnsendable
)

type sendResult struct {
	ref     domain.ChannelRef
	outcome sendOutcome
	msg     domain.SentMessage
	sentAt  int64
	err     error
}

// notify clasifica un canal en exactamente un resultado. Sólo ErrChannelGone
// es "ya no existe"; cualquier otra falla al buscarlo cuenta como no enviable.
func (e *Engine) notify(ctx context.Context, guildID string, ref domain.ChannelRef, expiry int64) sendResult {
	res := sendResult{ref: ref}
	if _, err := e.platform.Channel(ctx, ref.ChannelID); err != nil {
		res.outcome, res.err = outcomeUnsendable, err
		if errors.Is(err, ErrChannelGone) {
			res.outcome = outcomeUnfetchable
		}
		return res
	}
	ok, err := e.platform.CanSend(ctx, ref.ChannelID)
	if err != nil || !ok {
		if err == nil {
			err = ErrCannotSend
		}
		res.outcome, res.err = outcomeUnsendable, err
		return res
	}
	now := e.now()
	msg, err := e.platform.SendNotification(ctx, Notification{GuildID: guildID, ChannelID: ref.ChannelID, ExpiresAt: now.Unix() + expiry})
	if err != nil {
		res.outcome, res.err = outcomeUnsendable, err
		return res
	}
	// timestamp del mensaje si la plataforma lo da
	if !msg.Timestamp.IsZero() {
		now = msg.Timestamp
	}
	res.outcome, res.msg, res.sentAt = outcomeSent, msg, now.Unix()
	return res
}

// RunBroadcast manda la notificación a todos los canales del inventario.
// Una falla en un canal nunca corta a los demás; los éxitos se aplican y se
// persiste una sola vez al final.
func (e *Engine) RunBroadcast(ctx context.Context, guildID string) (BroadcastResult, error) {
	if !e.Ready(guildID) {
		return BroadcastResult{}, ErrNotReady
	}
	lease, err := e.locks.Acquire(guildID, locks.Broadcast)
	if err != nil {
		return BroadcastResult{}, err
	}
	defer lease.Release()

	inv, _ := e.Inventory(guildID)
	targets := make([]domain.ChannelRef, 0, inv.Len())
	for _, ref := range inv.Flatten() {
		if ref.Record.Archived {
			continue
		}
		targets = append(targets, ref)
	}

	expiry := int64(e.expiry.Seconds())
	results := fanOut(ctx, e.concurrency, targets, func(ctx context.Context, ref domain.ChannelRef) sendResult {
		return e.notify(ctx, guildID, ref, expiry)
	})

	var out BroadcastResult
	sent := map[string]sendResult{}
	for _, r := range results {
		switch r.outcome {
		case outcomeSent:
			sent[r.ref.ChannelID] = r
		case outcomeUnfetchable:
			out.Unfetchable = append(out.Unfetchable, r.ref.Record.ChannelName)
			e.log.Debug("broadcast: canal inexistente", "guild", guildID, "channel", r.ref.ChannelID, "err", r.err)
		case outcomeUnsendable:
			out.Unsendable = append(out.Unsendable, r.ref.ChannelID)
			e.log.Debug("broadcast: no se pudo enviar", "guild", guildID, "channel", r.ref.ChannelID, "err", r.err)
		}
	}
	sort.Strings(out.Unfetchable)
	sort.Strings(out.Unsendable)
	out.Sent = len(sent)

	// merge sobre el valor actual del cache, no sobre la copia leída al inicio;
	// Notified deja intacto lo que un archive concurrente ya archivó
	next, wrote := e.mutate(guildID, func(g *domain.GuildScan) bool {
		for id, r := range sent {
			g.Update(id, func(rec domain.ChannelRecord) domain.ChannelRecord {
				return rec.Notified(r.msg.ID, r.sentAt, expiry)
			})
		}
		return len(sent) > 0
	})
	if wrote {
		out.PersistErr = e.persist(ctx, guildID, next)
	}

	e.log.Info("broadcast ok", "guild", guildID, "sent", out.Sent,
		"unfetchable", len(out.Unfetchable), "unsendable", len(out.Unsendable))
	return out, nil
}
