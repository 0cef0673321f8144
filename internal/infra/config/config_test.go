package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func base() map[string]string {
	return map[string]string{
		"DATABASE_URL":      "postgres://x",
		"DISCORD_BOT_TOKEN": "abc",
		"DISCORD_GUILD_IDS": "G1, G2,,",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(envOf(base()))
	require.NoError(t, err)

	assert.Equal(t, "Bot abc", cfg.DiscordToken)
	assert.Equal(t, []string{"G1", "G2"}, cfg.GuildIDs)
	assert.Empty(t, cfg.AdminRoleIDs)
	assert.Equal(t, 72*time.Hour, cfg.NotifyExpiry)
	assert.Equal(t, 30*time.Minute, cfg.LockLeaseTTL)
	assert.Equal(t, time.Hour, cfg.AutoArchiveInterval)
	assert.Equal(t, 2, cfg.AutoArchiveRate)
	assert.Equal(t, 0, cfg.BroadcastConcurrency)
	assert.Equal(t, 2*time.Minute, cfg.PagerIdle)
	assert.Equal(t, 10*time.Minute, cfg.PagerTotal)
	assert.Equal(t, "development", cfg.AppEnv)
}

func TestLoadOverrides(t *testing.T) {
	env := base()
	env["DISCORD_BOT_TOKEN"] = "Bot xyz"
	env["ADMIN_ROLE_IDS"] = "R1,R2"
	env["NOTIFY_EXPIRY"] = "24h"
	env["BROADCAST_CONCURRENCY"] = "8"
	env["APP_ENV"] = "production"

	cfg, err := load(envOf(env))
	require.NoError(t, err)
	assert.Equal(t, "Bot xyz", cfg.DiscordToken)
	assert.Equal(t, []string{"R1", "R2"}, cfg.AdminRoleIDs)
	assert.Equal(t, 24*time.Hour, cfg.NotifyExpiry)
	assert.Equal(t, 8, cfg.BroadcastConcurrency)
	assert.Equal(t, "production", cfg.AppEnv)
}

func TestLoadErrors(t *testing.T) {
	_, err := load(envOf(map[string]string{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "DISCORD_GUILD_IDS")

	env := base()
	env["NOTIFY_EXPIRY"] = "soon"
	_, err = load(envOf(env))
	assert.ErrorContains(t, err, "NOTIFY_EXPIRY")

	env = base()
	env["AUTO_ARCHIVE_RATE"] = "-1"
	_, err = load(envOf(env))
	assert.ErrorContains(t, err, "AUTO_ARCHIVE_RATE")

	env = base()
	env["DISCORD_GUILD_IDS"] = " , "
	_, err = load(envOf(env))
	assert.Error(t, err)
}
