package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	sentry "github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	discordrouter "github.com/jose-valero/channel-sweeper-bot/internal/adapters/discord"
	"github.com/jose-valero/channel-sweeper-bot/internal/app/locks"
	"github.com/jose-valero/channel-sweeper-bot/internal/app/service"
	"github.com/jose-valero/channel-sweeper-bot/internal/infra/config"
	"github.com/jose-valero/channel-sweeper-bot/internal/infra/storage"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	// Sentry (DSN vacío = deshabilitado)
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.AppEnv,
	}); err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	defer db.Close()
	if err := storage.Migrate(ctx, db); err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	log.Println("✅ DB lista y migrada")

	// Repos
	scanRepo := storage.NewScanRepo(db)
	configRepo := storage.NewConfigRepo(db)
	leaseRepo := storage.NewLeaseRepo(db)

	reportLeftovers(ctx, leaseRepo)

	// Discord session
	s, err := discordgo.New(cfg.DiscordToken)
	if err != nil {
		log.Fatal(err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	if err := s.Open(); err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	defer s.Close()
	log.Printf("✅ Conectado como %s (%s)", s.State.User.Username, s.State.User.ID)

	// Engine
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	platform := discordrouter.NewPlatform(s)
	locker := locks.New(cfg.LockLeaseTTL, locks.WithJournal(leaseRepo))
	engine := service.NewEngine(platform, scanRepo, configRepo, locker, service.EngineOptions{
		Expiry:      cfg.NotifyExpiry,
		Concurrency: cfg.BroadcastConcurrency,
		Logger:      logger,
	})
	configSvc := service.NewConfigService(engine)

	// Router: registra antes de cargar, los handlers contestan "cargando" hasta Ready
	r := discordrouter.NewRouter(s, engine, configSvc, discordrouter.RouterOptions{
		GuildIDs:     cfg.GuildIDs,
		AdminRoleIDs: cfg.AdminRoleIDs,
		PagerIdle:    cfg.PagerIdle,
		PagerTotal:   cfg.PagerTotal,
	})
	if err := r.Register(); err != nil {
		log.Fatalf("registrando comandos: %v", err)
	}
	r.Handlers()
	log.Printf("✅ comandos registrados en %d guild(s)", len(cfg.GuildIDs))

	for _, g := range cfg.GuildIDs {
		go loadGuild(ctx, engine, g)
	}

	// Auto-archivo: arranca cuando todos los guilds están en cache
	auto := service.NewAutoArchiver(engine, platform, cfg.GuildIDs, cfg.AutoArchiveRate, logger)
	go func() {
		if waitAllReady(ctx, engine, cfg.GuildIDs, 2*time.Minute) {
			log.Printf("✅ %d guild(s) listos, auto-archivo activo", len(cfg.GuildIDs))
		} else if ctx.Err() != nil {
			return
		} else {
			// los que falten se saltean en cada tick hasta que carguen
			log.Printf("⚠️ no todos los guilds cargaron, auto-archivo arranca igual")
		}
		auto.Run(ctx, cfg.AutoArchiveInterval)
	}()

	<-ctx.Done()
	log.Println("👋 apagando")
}

// loadGuild reintenta hasta que el guild quede en cache.
func loadGuild(ctx context.Context, engine *service.Engine, guildID string) {
	for attempt := 1; ; attempt++ {
		lctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := engine.Load(lctx, guildID)
		cancel()
		if err == nil {
			log.Printf("✅ guild %s cargado", guildID)
			return
		}
		log.Printf("[load] guild=%s attempt=%d: %v", guildID, attempt, err)
		if attempt == 3 {
			sentry.CaptureException(fmt.Errorf("load guild %s: %w", guildID, err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(min(attempt, 12)) * 5 * time.Second):
		}
	}
}

// waitAllReady espera hasta limit a que todos los guilds estén cargados.
func waitAllReady(ctx context.Context, engine *service.Engine, guildIDs []string, limit time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for !engine.AllReady(guildIDs...) {
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
		}
	}
	return true
}

// reportLeftovers: leases que sobrevivieron al reinicio son corridas cortadas.
func reportLeftovers(ctx context.Context, leases *storage.LeaseRepo) {
	left, err := leases.Leftovers(ctx)
	if err != nil {
		log.Printf("[locks] leftovers: %v", err)
		return
	}
	for _, l := range left {
		err := fmt.Errorf("interrupted %s run in guild %s (started %s)", l.Kind, l.GuildID, l.AcquiredAt.Format(time.RFC3339))
		log.Printf("⚠️ %v", err)
		sentry.CaptureException(err)
	}
	if len(left) > 0 {
		if _, err := leases.DeleteAll(ctx); err != nil {
			log.Printf("[locks] clearing leftovers: %v", err)
		}
	}
}
