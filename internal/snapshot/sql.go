package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/companion/internal/model"
)

type dialect struct {
	name    string
	driver  string
	docType string
	// bind renders the n-th (1-based) placeholder.
	bind func(n int) string
}

var (
	sqliteDialect = dialect{
		name:    ProviderSQLite,
		driver:  "sqlite",
		docType: "TEXT",
		bind:    func(int) string { return "?" },
	}
	postgresDialect = dialect{
		name:    ProviderPostgres,
		driver:  "postgres",
		docType: "TEXT",
		bind:    func(n int) string { return fmt.Sprintf("$%d", n) },
	}
	mysqlDialect = dialect{
		name:    ProviderMySQL,
		driver:  "mysql",
		docType: "LONGTEXT",
		bind:    func(int) string { return "?" },
	}
)

// SQLStore keeps snapshots as JSON documents in a single table, newest
// first by ULID.
type SQLStore struct {
	db       *sql.DB
	dialect  dialect
	location string
	keep     int

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// OpenSQLite opens or creates a SQLite database at path.
func OpenSQLite(ctx context.Context, path string, keep int) (*SQLStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrap("open", fmt.Errorf("create db dir: %w", err))
	}
	s, err := openSQL(ctx, sqliteDialect, path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)", keep)
	if err != nil {
		return nil, err
	}
	s.location = path
	return s, nil
}

// openSQL connects with the given dialect and ensures the schema exists.
func openSQL(ctx context.Context, d dialect, dsn string, keep int) (*SQLStore, error) {
	if dsn == "" {
		return nil, wrap("open", fmt.Errorf("%w for %s", ErrMissingDSN, d.name))
	}
	if keep <= 0 {
		keep = DefaultKeep
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, wrap("open", fmt.Errorf("open db: %w", err))
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, wrap("open", fmt.Errorf("ping: %w", err))
	}

	s := &SQLStore{
		db:       db,
		dialect:  d,
		location: d.name,
		keep:     keep,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, wrap("migrate", err)
	}

	log.Debug("snapshot store opened", "provider", d.name, "keep", keep)
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS snapshots (
		id       VARCHAR(32) PRIMARY KEY,
		saved_at VARCHAR(40) NOT NULL,
		doc      %s NOT NULL
	)`, s.dialect.docType)
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *SQLStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// Save inserts snap and prunes everything beyond the newest Keep rows.
func (s *SQLStore) Save(ctx context.Context, snap model.Snapshot) error {
	doc, err := encode(snap)
	if err != nil {
		return err
	}
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	id := s.newID(savedAt)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("save", fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	insert := fmt.Sprintf(`INSERT INTO snapshots (id, saved_at, doc) VALUES (%s, %s, %s)`,
		s.dialect.bind(1), s.dialect.bind(2), s.dialect.bind(3))
	if _, err := tx.ExecContext(ctx, insert, id, savedAt.UTC().Format(time.RFC3339Nano), string(doc)); err != nil {
		return wrap("save", fmt.Errorf("insert: %w", err))
	}

	if err := s.prune(ctx, tx); err != nil {
		return wrap("save", fmt.Errorf("prune: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return wrap("save", fmt.Errorf("commit: %w", err))
	}
	return nil
}

// prune selects ids in Go; MySQL rejects LIMIT inside an IN subquery.
func (s *SQLStore) prune(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM snapshots ORDER BY id DESC`)
	if err != nil {
		return err
	}
	var stale []string
	for n := 0; rows.Next(); n++ {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		if n >= s.keep {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	del := fmt.Sprintf(`DELETE FROM snapshots WHERE id = %s`, s.dialect.bind(1))
	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, del, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) (*model.Snapshot, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("load", err)
	}
	return decode("load", []byte(doc))
}

// Stats reports row counts and timestamps. Size is only known for SQLite.
func (s *SQLStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{Provider: s.dialect.name, Location: s.location, Keep: s.keep}

	if s.dialect.name == ProviderSQLite {
		if info, err := os.Stat(s.location); err == nil {
			st.SizeBytes = info.Size()
		}
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&st.Snapshots); err != nil {
		return st, wrap("stats", err)
	}
	if st.Snapshots == 0 {
		return st, nil
	}

	var latest, oldest, doc string
	if err := s.db.QueryRowContext(ctx,
		`SELECT saved_at, doc FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&latest, &doc); err != nil {
		return st, wrap("stats", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT saved_at FROM snapshots ORDER BY id ASC LIMIT 1`).Scan(&oldest); err != nil {
		return st, wrap("stats", err)
	}
	st.LatestAt, _ = time.Parse(time.RFC3339Nano, latest)
	st.OldestAt, _ = time.Parse(time.RFC3339Nano, oldest)
	st.LatestBytes = len(doc)
	return st, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
