package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL  string
	DiscordToken string
	GuildIDs     []string // guilds gestionados (y donde se registran los comandos)
	AdminRoleIDs []string

	NotifyExpiry         time.Duration // offset fijo: archiveTimestamp = envío + NotifyExpiry
	LockLeaseTTL         time.Duration
	AutoArchiveInterval  time.Duration
	AutoArchiveRate      int // guilds por segundo
	BroadcastConcurrency int // 0 = sin límite

	PagerIdle  time.Duration
	PagerTotal time.Duration

	SentryDSN string
	AppEnv    string
}

func Load() Config {
	cfg, err := load(os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func load(getenv func(string) string) (Config, error) {
	var missing []string
	get := func(k string, req bool) string {
		v := strings.TrimSpace(getenv(k))
		if v == "" && req {
			missing = append(missing, k)
		}
		return v
	}

	cfg := Config{
		DatabaseURL:  get("DATABASE_URL", true),
		DiscordToken: get("DISCORD_BOT_TOKEN", true),
		GuildIDs:     splitList(get("DISCORD_GUILD_IDS", true)),
		AdminRoleIDs: splitList(get("ADMIN_ROLE_IDS", false)),
		SentryDSN:    get("SENTRY_DSN", false),
		AppEnv:       get("APP_ENV", false),
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("faltante env %s", strings.Join(missing, ", "))
	}
	if len(cfg.GuildIDs) == 0 {
		return Config{}, fmt.Errorf("DISCORD_GUILD_IDS sin guilds")
	}
	if !strings.HasPrefix(cfg.DiscordToken, "Bot ") {
		cfg.DiscordToken = "Bot " + cfg.DiscordToken
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	var err error
	if cfg.NotifyExpiry, err = durEnv(get("NOTIFY_EXPIRY", false), 72*time.Hour); err != nil {
		return Config{}, fmt.Errorf("NOTIFY_EXPIRY: %w", err)
	}
	if cfg.LockLeaseTTL, err = durEnv(get("LOCK_LEASE_TTL", false), 30*time.Minute); err != nil {
		return Config{}, fmt.Errorf("LOCK_LEASE_TTL: %w", err)
	}
	if cfg.AutoArchiveInterval, err = durEnv(get("AUTO_ARCHIVE_INTERVAL", false), time.Hour); err != nil {
		return Config{}, fmt.Errorf("AUTO_ARCHIVE_INTERVAL: %w", err)
	}
	if cfg.PagerIdle, err = durEnv(get("PAGER_IDLE", false), 2*time.Minute); err != nil {
		return Config{}, fmt.Errorf("PAGER_IDLE: %w", err)
	}
	if cfg.PagerTotal, err = durEnv(get("PAGER_TOTAL", false), 10*time.Minute); err != nil {
		return Config{}, fmt.Errorf("PAGER_TOTAL: %w", err)
	}
	if cfg.AutoArchiveRate, err = intEnv(get("AUTO_ARCHIVE_RATE", false), 2); err != nil {
		return Config{}, fmt.Errorf("AUTO_ARCHIVE_RATE: %w", err)
	}
	if cfg.BroadcastConcurrency, err = intEnv(get("BROADCAST_CONCURRENCY", false), 0); err != nil {
		return Config{}, fmt.Errorf("BROADCAST_CONCURRENCY: %w", err)
	}
	if cfg.NotifyExpiry <= 0 {
		return Config{}, fmt.Errorf("NOTIFY_EXPIRY debe ser > 0")
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durEnv(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}

func intEnv(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negativo: %d", n)
	}
	return n, nil
}
