package storage

import (
	"context"
	"database/sql"
	"errors"

	pq "github.com/lib/pq"

	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

type ConfigRepo struct{ db *sql.DB }

func NewConfigRepo(db *sql.DB) *ConfigRepo { return &ConfigRepo{db: db} }

// Get devuelve la config del guild; si no existe crea la fila por defecto.
func (r *ConfigRepo) Get(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	var c domain.GuildConfig
	var cats pq.StringArray
	err := r.db.QueryRowContext(ctx, `
SELECT guild_id, archive_category_ids, notify_channel_id, auto_archive, created_at, updated_at
  FROM guild_configs
 WHERE guild_id = $1
`, guildID).Scan(&c.GuildID, &cats, &c.NotifyChannelID, &c.AutoArchive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// crea default
		_, err := r.db.ExecContext(ctx, `
INSERT INTO guild_configs (guild_id) VALUES ($1)
ON CONFLICT (guild_id) DO NOTHING
`, guildID)
		if err != nil {
			return domain.GuildConfig{}, err
		}
		return r.Get(ctx, guildID)
	}
	c.ArchiveCategoryIDs = []string(cats)
	return c, err
}

func (r *ConfigRepo) Upsert(ctx context.Context, c domain.GuildConfig) error {
	cats := c.ArchiveCategoryIDs
	if cats == nil {
		cats = []string{}
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO guild_configs
  (guild_id, archive_category_ids, notify_channel_id, auto_archive, created_at, updated_at)
VALUES
  ($1, $2, $3, $4, NOW(), NOW())
ON CONFLICT (guild_id) DO UPDATE SET
  archive_category_ids = EXCLUDED.archive_category_ids,
  notify_channel_id    = EXCLUDED.notify_channel_id,
  auto_archive         = EXCLUDED.auto_archive,
  updated_at           = NOW()
`, c.GuildID, pq.Array(cats), c.NotifyChannelID, c.AutoArchive)
	return err
}
