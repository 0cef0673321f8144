package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/locks"
)

// LeaseRepo registra los locks tomados. Una fila que sobrevive a un reinicio
// es una corrida que se cortó a la mitad.
type LeaseRepo struct{ db *sql.DB }

func NewLeaseRepo(db *sql.DB) *LeaseRepo { return &LeaseRepo{db: db} }

func (r *LeaseRepo) Record(ctx context.Context, l locks.LeaseInfo) error {
	var exp *time.Time
	if !l.ExpiresAt.IsZero() {
		exp = &l.ExpiresAt
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO lock_leases (guild_id, kind, token, acquired_at, expires_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (guild_id, kind) DO UPDATE SET
  token       = EXCLUDED.token,
  acquired_at = EXCLUDED.acquired_at,
  expires_at  = EXCLUDED.expires_at
`, l.GuildID, string(l.Kind), l.Token, l.AcquiredAt, exp)
	return err
}

// Clear borra la fila sólo si sigue siendo del mismo token.
func (r *LeaseRepo) Clear(ctx context.Context, guildID string, kind locks.Kind, token int64) error {
	_, err := r.db.ExecContext(ctx, `
DELETE FROM lock_leases
 WHERE guild_id = $1 AND kind = $2 AND token = $3
`, guildID, string(kind), token)
	return err
}

// Leftovers devuelve las filas que quedaron de un proceso anterior.
func (r *LeaseRepo) Leftovers(ctx context.Context) ([]locks.LeaseInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT guild_id, kind, token, acquired_at, expires_at
  FROM lock_leases
 ORDER BY acquired_at ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []locks.LeaseInfo
	for rows.Next() {
		var l locks.LeaseInfo
		var kind string
		var exp sql.NullTime
		if err := rows.Scan(&l.GuildID, &kind, &l.Token, &l.AcquiredAt, &exp); err != nil {
			return nil, err
		}
		l.Kind = locks.Kind(kind)
		if exp.Valid {
			l.ExpiresAt = exp.Time
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LeaseRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lock_leases`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PruneExpired borra leases vencidos hace más de grace.
func (r *LeaseRepo) PruneExpired(ctx context.Context, grace time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM lock_leases
 WHERE expires_at IS NOT NULL
   AND expires_at < now() - $1::interval
`, durToInterval(grace))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
