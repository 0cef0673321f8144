package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/locks"
	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
	"github.com/jose-valero/channel-sweeper-bot/internal/infra/cache"
	"github.com/jose-valero/channel-sweeper-bot/internal/infra/storage"
)

// Engine es el motor de scan/broadcast/archive. Es dueño del inventario
// cacheado de cada guild; el store sólo guarda la copia durable.
type Engine struct {
	platform Platform
	scans    ScanRepo
	configs  ConfigRepo
	locks    *locks.Locker

	inv *cache.Keyed[string, domain.GuildScan]
	cfg *cache.Keyed[string, domain.GuildConfig]

	expiry      time.Duration
	concurrency int
	now         func() time.Time
	log         *slog.Logger
}

type EngineOptions struct {
	// Expiry se suma al momento del envío para calcular archiveTimestamp.
	Expiry time.Duration
	// Concurrency limita envíos en vuelo por broadcast/archive. 0 = sin tope.
	Concurrency int
	// CacheTTL vencimiento pasivo de las entradas. 0 = nunca.
	CacheTTL time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
}

const DefaultExpiry = 72 * time.Hour

func NewEngine(p Platform, scans ScanRepo, configs ConfigRepo, lk *locks.Locker, o EngineOptions) *Engine {
	if o.Expiry <= 0 {
		o.Expiry = DefaultExpiry
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if lk == nil {
		lk = locks.New(0)
	}
	return &Engine{
		platform:    p,
		scans:       scans,
		configs:     configs,
		locks:       lk,
		inv:         cache.New[string, domain.GuildScan](cache.WithTTL(o.CacheTTL)),
		cfg:         cache.New[string, domain.GuildConfig](cache.WithTTL(o.CacheTTL)),
		expiry:      o.Expiry,
		concurrency: o.Concurrency,
		now:         o.Now,
		log:         o.Logger,
	}
}

// Ready: inventario y config del guild ya están en cache.
// Los handlers no tocan estado del guild hasta que esto sea true.
func (e *Engine) Ready(guildID string) bool {
	return e.inv.Has(guildID) && e.cfg.Has(guildID)
}

// AllReady es la misma compuerta para un conjunto de guilds.
func (e *Engine) AllReady(guildIDs ...string) bool {
	return e.inv.HasAll(guildIDs...) && e.cfg.HasAll(guildIDs...)
}

func (e *Engine) IsBusy(guildID string, kind locks.Kind) bool {
	return e.locks.Busy(guildID, kind)
}

// Load lee config e inventario del store y los deja en cache.
// Se usa al arrancar y ante un cache miss.
func (e *Engine) Load(ctx context.Context, guildID string) error {
	cfg, err := e.configs.Get(ctx, guildID)
	if err != nil {
		return fmt.Errorf("load config %s: %w", guildID, err)
	}

	stored, err := e.scans.Get(ctx, guildID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load scan %s: %w", guildID, err)
	}

	// categorías vivas para reubicar canales huérfanos; si falla, confiamos en lo guardado
	var known map[string]string
	if chans, err := e.platform.GuildChannels(ctx, guildID); err == nil {
		known = map[string]string{}
		for _, ch := range chans {
			if ch.Kind == domain.ChannelKindCategory {
				known[ch.ID] = ch.Name
			}
		}
	} else {
		e.log.Warn("load: no pude listar canales, uso nombres guardados", "guild", guildID, "err", err)
	}

	e.cfg.Set(guildID, cfg)
	e.inv.Set(guildID, domain.FromStorageForm(stored, known))
	e.log.Info("guild cargado", "guild", guildID, "channels", e.mustLen(guildID))
	return nil
}

// Unload saca el guild del cache (el bot salió del servidor). Lo guardado
// en el store queda; un Load posterior lo vuelve a levantar.
func (e *Engine) Unload(guildID string) {
	e.inv.Delete(guildID)
	e.cfg.Delete(guildID)
	e.log.Info("guild descargado", "guild", guildID)
}

func (e *Engine) mustLen(guildID string) int {
	g, _ := e.inv.Get(guildID)
	return g.Len()
}

// Inventory devuelve una copia del inventario cacheado.
func (e *Engine) Inventory(guildID string) (domain.GuildScan, bool) {
	g, ok := e.inv.Get(guildID)
	if !ok {
		return domain.GuildScan{}, false
	}
	return g.Clone(), true
}

func (e *Engine) Config(guildID string) (domain.GuildConfig, bool) {
	return e.cfg.Get(guildID)
}

// Page es una página del inventario para las vistas paginadas.
type Page struct {
	Index int
	Total int
	Items []domain.ChannelRef
}

func (e *Engine) Pages(guildID string, size int) []Page {
	if size <= 0 {
		size = 10
	}
	g, ok := e.inv.Get(guildID)
	if !ok {
		return nil
	}
	refs := g.Flatten()
	total := (len(refs) + size - 1) / size
	if total == 0 {
		return []Page{{Index: 0, Total: 1}}
	}
	out := make([]Page, 0, total)
	for i := 0; i < total; i++ {
		end := min((i+1)*size, len(refs))
		out = append(out, Page{Index: i, Total: total, Items: refs[i*size : end]})
	}
	return out
}

// mutate aplica fn sobre una copia del inventario actual y la escribe de
// forma atómica. Devuelve el inventario resultante.
func (e *Engine) mutate(guildID string, fn func(*domain.GuildScan) bool) (domain.GuildScan, bool) {
	return e.inv.Update(guildID, func(cur domain.GuildScan, ok bool) (domain.GuildScan, bool) {
		if !ok {
			return cur, false
		}
		next := cur.Clone()
		if !fn(&next) {
			return cur, false
		}
		return next, true
	})
}

// persist escribe el inventario al store. El cache ya fue actualizado; si esto
// falla quedan divergentes hasta la próxima escritura buena.
func (e *Engine) persist(ctx context.Context, guildID string, g domain.GuildScan) error {
	if err := e.scans.Upsert(ctx, guildID, domain.ToStorageForm(g)); err != nil {
		err = fmt.Errorf("persist scan %s: %w", guildID, err)
		e.log.Error("cache y store divergen", "guild", guildID, "err", err)
		sentry.CaptureException(err)
		return err
	}
	return nil
}

// config lee de cache y cae al repo si no está.
func (e *Engine) config(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	if c, ok := e.cfg.Get(guildID); ok {
		return c, nil
	}
	c, err := e.configs.Get(ctx, guildID)
	if err != nil {
		return domain.GuildConfig{}, fmt.Errorf("config %s: %w", guildID, err)
	}
	e.cfg.Set(guildID, c)
	return c, nil
}

// UpdateConfig persiste primero y después refresca el cache.
func (e *Engine) UpdateConfig(ctx context.Context, guildID string, fn func(*domain.GuildConfig)) (domain.GuildConfig, error) {
	cur, err := e.config(ctx, guildID)
	if err != nil {
		return domain.GuildConfig{}, err
	}
	next := cur
	next.GuildID = guildID
	next.ArchiveCategoryIDs = append([]string(nil), cur.ArchiveCategoryIDs...)
	fn(&next)
	if err := e.configs.Upsert(ctx, next); err != nil {
		return domain.GuildConfig{}, fmt.Errorf("save config %s: %w", guildID, err)
	}
	e.cfg.Set(guildID, next)
	return next, nil
}
