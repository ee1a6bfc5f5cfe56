package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Healthcheck returns a check that pings pool.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Healthcheck pings the database and checks that the cache_entries table exists.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := Healthcheck(s.pool)(ctx); err != nil {
		return err
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT to_regclass('cache_entries') IS NOT NULL`).Scan(&exists); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	if !exists {
		return fmt.Errorf("%w: cache_entries table is missing, run Migrate", ErrHealthcheckFailed)
	}
	return nil
}
