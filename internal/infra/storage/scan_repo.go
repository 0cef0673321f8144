package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

// ScanRepo guarda el inventario de cada guild en forma plana (JSONB).
type ScanRepo struct{ db *sql.DB }

func NewScanRepo(db *sql.DB) *ScanRepo { return &ScanRepo{db: db} }

func (r *ScanRepo) Get(ctx context.Context, guildID string) ([]domain.StoredCategory, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `
SELECT categories
  FROM channel_scans
 WHERE guild_id = $1
`, guildID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var out []domain.StoredCategory
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode channel_scans %s: %w", guildID, err)
	}
	return out, nil
}

func (r *ScanRepo) Upsert(ctx context.Context, guildID string, cats []domain.StoredCategory) error {
	if cats == nil {
		cats = []domain.StoredCategory{}
	}
	raw, err := json.Marshal(cats)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO channel_scans (guild_id, categories)
VALUES ($1, $2::jsonb)
ON CONFLICT (guild_id) DO UPDATE SET
  categories = EXCLUDED.categories,
  updated_at = now()
`, guildID, string(raw))
	return err
}

// DeleteOrphans borra los scans de guilds sin config (el bot salió del servidor).
func (r *ScanRepo) DeleteOrphans(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM channel_scans s
 WHERE NOT EXISTS (SELECT 1 FROM guild_configs c WHERE c.guild_id = s.guild_id)
`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
