package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.uber.org/ratelimit"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/locks"
	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

// ArchiveRunner lo implementa *Engine.
type ArchiveRunner interface {
	RunArchive(ctx context.Context, guildID string) (ArchiveReport, error)
	Config(guildID string) (domain.GuildConfig, bool)
}

// AutoArchiver es la entrada del scheduler: barre los guilds con
// auto-archive activado usando el mismo lock que el comando manual.
type AutoArchiver struct {
	engine   ArchiveRunner
	reporter Reporter
	guilds   []string
	limiter  ratelimit.Limiter
	log      *slog.Logger
}

// NewAutoArchiver: perSecond limita cuántos barridos de guild arrancan por segundo.
func NewAutoArchiver(engine ArchiveRunner, reporter Reporter, guilds []string, perSecond int, logger *slog.Logger) *AutoArchiver {
	lim := ratelimit.NewUnlimited()
	if perSecond > 0 {
		lim = ratelimit.New(perSecond)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoArchiver{engine: engine, reporter: reporter, guilds: guilds, limiter: lim, log: logger}
}

// Tick corre un barrido sobre todos los guilds. Devuelve cuántos se archivaron.
func (a *AutoArchiver) Tick(ctx context.Context) int {
	total := 0
	for _, guildID := range a.guilds {
		if ctx.Err() != nil {
			return total
		}
		cfg, ok := a.engine.Config(guildID)
		if !ok || !cfg.AutoArchive {
			continue
		}
		a.limiter.Take()

		rep, err := a.engine.RunArchive(ctx, guildID)
		switch {
		case errors.Is(err, locks.ErrBusy):
			a.log.Info("auto-archive: ya hay un archive corriendo, salto", "guild", guildID)
			continue
		case err != nil:
			a.log.Warn("auto-archive falló", "guild", guildID, "err", err)
			continue
		}
		total += len(rep.Archived)

		if cfg.NotifyChannelID == "" || (len(rep.Archived) == 0 && rep.OK()) {
			continue
		}
		if err := a.reporter.Post(ctx, cfg.NotifyChannelID, rep.Summary()); err != nil {
			a.log.Warn("auto-archive: no pude publicar el reporte", "guild", guildID, "err", err)
		}
	}
	return total
}

// Run hace Tick cada interval hasta que ctx termine.
func (a *AutoArchiver) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.Tick(ctx)
		}
	}
}
