package table

import (
	"context"
	"database/sql/driver"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore talks to the Postgres-backed data service through pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, newError("connect", "postgres", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	sql, args, err := postgresDialect.selectSQL(table, q)
	if err != nil {
		return nil, newError("select", table, err)
	}
	out, err := s.query(ctx, sql, args)
	if err != nil {
		return nil, newError("select", table, err)
	}
	if err := embed(ctx, s, out, q.Relations); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Insert(ctx context.Context, table string, rows ...Row) ([]Row, error) {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		sql, args, err := postgresDialect.insertSQL(table, r)
		if err != nil {
			return nil, newError("insert", table, err)
		}
		inserted, err := s.query(ctx, sql+" RETURNING *", args)
		if err != nil {
			return nil, newError("insert", table, err)
		}
		out = append(out, inserted...)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, table string, patch Row, filters ...Filter) ([]Row, error) {
	sql, args, err := postgresDialect.updateSQL(table, patch, filters)
	if err != nil {
		return nil, newError("update", table, err)
	}
	out, err := s.query(ctx, sql+" RETURNING *", args)
	if err != nil {
		return nil, newError("update", table, err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, table string, filters ...Filter) ([]Row, error) {
	sql, args, err := postgresDialect.deleteSQL(table, filters)
	if err != nil {
		return nil, newError("delete", table, err)
	}
	out, err := s.query(ctx, sql+" RETURNING *", args)
	if err != nil {
		return nil, newError("delete", table, err)
	}
	return out, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Exec runs raw statements; used by schema migration.
func (s *PostgresStore) Exec(ctx context.Context, sql string) error {
	_, err := s.pool.Exec(ctx, sql)
	return err
}

func (s *PostgresStore) query(ctx context.Context, sql string, args []any) ([]Row, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	out := make([]Row, len(maps))
	for i, m := range maps {
		r := make(Row, len(m))
		for k, v := range m {
			r[k] = normalize(v)
		}
		out[i] = r
	}
	return out, nil
}

// normalize turns driver-specific values (uuid arrays, numerics) into the
// plain Go values the decoders expect.
func normalize(v any) any {
	switch vv := v.(type) {
	case [16]byte:
		return uuid.UUID(vv).String()
	case []byte:
		return string(vv)
	case driver.Valuer:
		dv, err := vv.Value()
		if err != nil {
			return nil
		}
		return dv
	}
	return v
}
