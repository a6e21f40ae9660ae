package timeproof

import (
	"context"
	"database/sql"
	"time"
)

// SQLRedeemStore persists redeemed token IDs in the gateway database. The
// conditional insert on the primary key makes the first redeemer win; losers
// see zero rows affected.
type SQLRedeemStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLRedeemStore(db *sql.DB) *SQLRedeemStore {
	return &SQLRedeemStore{db: db, now: time.Now}
}

func (s *SQLRedeemStore) Use(ctx context.Context, kind, value string, ttl time.Duration) (bool, error) {
	now := s.now()

	// Drop expired rows for this key first so a long-expired entry does not
	// block a fresh token that happens to reuse the value.
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM redeemed_tokens WHERE kind=$1 AND value=$2 AND expires_at <= $3`,
		kind, value, now.Unix()); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO redeemed_tokens (kind, value, expires_at) VALUES ($1,$2,$3)
		 ON CONFLICT (kind, value) DO NOTHING`,
		kind, value, now.Add(ttl).Unix())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
