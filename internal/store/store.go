// Package store persists the EURING catalog: version layouts plus the lookup
// overrides made at runtime. Every backend keeps one JSON document per
// version so the three drivers stay interchangeable.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonMunkholm/euring/internal/core"
)

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store is a core.CatalogStore with a lifecycle.
type Store interface {
	core.CatalogStore
	Ping(ctx context.Context) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver string

	// postgres
	DatabaseURL     string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// sqlite
	SQLitePath string
}

// Open connects to the configured backend and makes sure its schema exists.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverPostgres:
		return OpenPostgres(ctx, opts)
	case DriverSQLite:
		return OpenSQLite(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", opts.Driver)
	}
}

func encodeEntry(e core.CatalogEntry) ([]byte, error) {
	if e.Version.ID == "" {
		return nil, fmt.Errorf("catalog entry without version id")
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}
	doc, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Version.ID, err)
	}
	return doc, nil
}

func decodeEntry(id string, doc []byte) (core.CatalogEntry, error) {
	var e core.CatalogEntry
	if err := json.Unmarshal(doc, &e); err != nil {
		return core.CatalogEntry{}, fmt.Errorf("decode %s: %w", id, err)
	}
	if e.Version.ID != id {
		return core.CatalogEntry{}, fmt.Errorf("decode %s: document holds version %q", id, e.Version.ID)
	}
	return e, nil
}
