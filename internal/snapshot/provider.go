// Package snapshot persists whole-simulation snapshots. A provider keeps the
// newest few documents and hands back the latest on load.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/companion/internal/logger"
	"github.com/rcliao/companion/internal/model"
)

var log = logger.ForComponent("snapshot")

const (
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
	ProviderMySQL    = "mysql"
	ProviderFile     = "file"

	// DefaultKeep is how many snapshots SQL providers retain.
	DefaultKeep = 5
)

// Provider loads and saves snapshots.
type Provider interface {
	// Load returns the newest snapshot, or nil and no error if none exists.
	// Undecodable data yields an error wrapping ErrCorrupt.
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, snap model.Snapshot) error
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

type Options struct {
	Provider string
	// Path is the file location for sqlite and file providers.
	Path string
	// DSN is the connection string for postgres and mysql.
	DSN  string
	Keep int
}

// Stats describes what a provider holds.
type Stats struct {
	Provider    string    `json:"provider"`
	Location    string    `json:"location"`
	SizeBytes   int64     `json:"size_bytes,omitempty"`
	Snapshots   int       `json:"snapshots"`
	Keep        int       `json:"keep"`
	LatestAt    time.Time `json:"latest_at"`
	OldestAt    time.Time `json:"oldest_at"`
	LatestBytes int       `json:"latest_bytes"`
}

// Open returns the provider named in opts.
func Open(ctx context.Context, opts Options) (Provider, error) {
	if opts.Keep <= 0 {
		opts.Keep = DefaultKeep
	}
	switch opts.Provider {
	case "", ProviderSQLite:
		return OpenSQLite(ctx, opts.Path, opts.Keep)
	case ProviderPostgres:
		return openSQL(ctx, postgresDialect, opts.DSN, opts.Keep)
	case ProviderMySQL:
		return openSQL(ctx, mysqlDialect, opts.DSN, opts.Keep)
	case ProviderFile:
		return NewFileStore(opts.Path), nil
	default:
		return nil, wrap("open", fmt.Errorf("%w: %q", ErrUnsupportedProvider, opts.Provider))
	}
}

func encode(snap model.Snapshot) ([]byte, error) {
	b, err := json.Marshal(snap)
	if err != nil {
		return nil, wrap("encode", err)
	}
	return b, nil
}

func decode(op string, doc []byte) (*model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return nil, corrupt(op, err)
	}
	if snap.Entity.ID == "" {
		return nil, corrupt(op, errors.New("missing entity"))
	}
	return &snap, nil
}
