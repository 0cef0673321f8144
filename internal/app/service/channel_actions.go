package service

import (
	"context"
	"time"

	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

// SendOne notifica un solo canal del inventario (botón "enviar").
func (e *Engine) SendOne(ctx context.Context, guildID, channelID string) (domain.ChannelRecord, error) {
	if !e.Ready(guildID) {
		return domain.ChannelRecord{}, ErrNotReady
	}
	inv, _ := e.inv.Get(guildID)
	rec, pid, ok := inv.Find(channelID)
	if !ok {
		return domain.ChannelRecord{}, ErrUnknownChannel
	}

	if rec.Archived {
		return domain.ChannelRecord{}, ErrChannelArchived
	}

	expiry := int64(e.expiry.Seconds())
	res := e.notify(ctx, guildID, domain.ChannelRef{ParentID: pid, ChannelID: channelID, Record: rec}, expiry)
	if res.outcome != outcomeSent {
		return domain.ChannelRecord{}, res.err
	}

	var updated domain.ChannelRecord
	next, wrote := e.mutate(guildID, func(g *domain.GuildScan) bool {
		return g.Update(channelID, func(r domain.ChannelRecord) domain.ChannelRecord {
			updated = r.Notified(res.msg.ID, res.sentAt, expiry)
			return updated
		})
	})
	if !wrote {
		// lo borraron mientras enviábamos
		return domain.ChannelRecord{}, ErrUnknownChannel
	}
	return updated, e.persist(ctx, guildID, next)
}

// Forget saca el canal del inventario, en cualquier estado.
func (e *Engine) Forget(ctx context.Context, guildID, channelID string) error {
	if !e.Ready(guildID) {
		return ErrNotReady
	}
	next, wrote := e.mutate(guildID, func(g *domain.GuildScan) bool {
		return g.Remove(channelID)
	})
	if !wrote {
		return ErrUnknownChannel
	}
	return e.persist(ctx, guildID, next)
}

// Renew registra actividad en un canal notificado: vuelve a status=false
// y no se archiva en el próximo barrido. false si no había nada que renovar.
func (e *Engine) Renew(ctx context.Context, guildID, channelID string, at time.Time) (bool, error) {
	if !e.Ready(guildID) {
		return false, ErrNotReady
	}
	next, wrote := e.mutate(guildID, func(g *domain.GuildScan) bool {
		rec, _, ok := g.Find(channelID)
		if !ok || !rec.Status {
			return false
		}
		return g.Update(channelID, func(r domain.ChannelRecord) domain.ChannelRecord {
			r.Status = false
			r.MessageID = ""
			r.LastMsgTimestamp = at.Unix()
			return r
		})
	})
	if !wrote {
		return false, nil
	}
	return true, e.persist(ctx, guildID, next)
}

// Tracked indica si el canal está en el inventario del guild.
func (e *Engine) Tracked(guildID, channelID string) bool {
	inv, ok := e.inv.Get(guildID)
	if !ok {
		return false
	}
	_, _, found := inv.Find(channelID)
	return found
}
