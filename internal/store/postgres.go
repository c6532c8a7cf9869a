package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/euring/internal/core"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS euring_catalog (
	version_id TEXT PRIMARY KEY,
	document   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres stores catalog entries in a single jsonb table.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool using the URL and pool limits in opts.
func OpenPostgres(ctx context.Context, opts Options) (*Postgres, error) {
	if opts.DatabaseURL == "" {
		return nil, fmt.Errorf("postgres catalog requires DATABASE_URL")
	}

	poolConfig, err := pgxpool.ParseConfig(opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create catalog table: %w", err)
	}

	if u, err := url.Parse(opts.DatabaseURL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Load(ctx context.Context) ([]core.CatalogEntry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT version_id, document, updated_at FROM euring_catalog ORDER BY version_id`)
	if err != nil {
		return nil, fmt.Errorf("select catalog: %w", err)
	}
	defer rows.Close()

	var out []core.CatalogEntry
	for rows.Next() {
		var (
			id      string
			doc     []byte
			updated pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &doc, &updated); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		e, err := decodeEntry(id, doc)
		if err != nil {
			return nil, err
		}
		if updated.Valid {
			e.UpdatedAt = updated.Time.UTC()
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return out, nil
}

func (p *Postgres) Save(ctx context.Context, e core.CatalogEntry) error {
	doc, err := encodeEntry(e)
	if err != nil {
		return err
	}
	updated := pgtype.Timestamptz{Time: e.UpdatedAt, Valid: !e.UpdatedAt.IsZero()}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO euring_catalog (version_id, document, updated_at)
		VALUES ($1, $2, COALESCE($3, now()))
		ON CONFLICT (version_id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		e.Version.ID, doc, updated)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", e.Version.ID, err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
