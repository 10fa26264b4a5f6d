package statestore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/hupe1980/restock/core"
)

// Driver names registered with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

const schema = `
CREATE TABLE IF NOT EXISTS machine_status (
	machine_id   TEXT PRIMARY KEY,
	machine_type TEXT NOT NULL,
	container    TEXT NOT NULL,
	empty        BOOLEAN NOT NULL,
	reachable    BOOLEAN NOT NULL,
	cycle_id     TEXT NOT NULL,
	updated_at   TEXT NOT NULL
)`

const upsertStatus = `
INSERT INTO machine_status (machine_id, machine_type, container, empty, reachable, cycle_id, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (machine_id) DO UPDATE SET
	machine_type = excluded.machine_type,
	container    = excluded.container,
	empty        = excluded.empty,
	reachable    = excluded.reachable,
	cycle_id     = excluded.cycle_id,
	updated_at   = excluded.updated_at`

const selectStatuses = `
SELECT machine_id, machine_type, container, empty, reachable, cycle_id, updated_at
FROM machine_status`

// SQLStore persists statuses in a SQL database.
type SQLStore struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

var _ core.StatusStore = (*SQLStore)(nil)

// DriverFor picks the database/sql driver for dsn: postgres:// and
// postgresql:// URLs use pgx, anything else is a SQLite path or URI.
func DriverFor(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// Open connects to dsn, verifies the connection and creates the schema.
func Open(ctx context.Context, dsn string) (*SQLStore, error) {
	driver := DriverFor(dsn)
	db, err := sql.Open(driver, strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One connection keeps ":memory:" databases alive and serialises
		// writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s, err := NewSQLStore(ctx, db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database and creates the schema.
func NewSQLStore(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLStore{db: db, driver: driver, now: time.Now}, nil
}

// DB returns the underlying database handle.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Save upserts one row per state in a single transaction.
func (s *SQLStore) Save(ctx context.Context, cycleID string, states []core.MachineState) error {
	if len(states) == 0 {
		return nil
	}
	now := s.now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(upsertStatus))
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, st := range states {
		if _, err := stmt.ExecContext(ctx, st.ID, st.Type, st.Container, st.Empty, st.Reachable, cycleID, now); err != nil {
			return fmt.Errorf("upsert %s: %w", st.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load returns every stored status keyed by machine id.
func (s *SQLStore) Load(ctx context.Context) (map[string]core.MachineStatus, error) {
	rows, err := s.db.QueryContext(ctx, selectStatuses)
	if err != nil {
		return nil, fmt.Errorf("query statuses: %w", err)
	}
	defer rows.Close()

	out := make(map[string]core.MachineStatus)
	for rows.Next() {
		var (
			st        core.MachineStatus
			updatedAt string
		)
		if err := rows.Scan(&st.MachineID, &st.Type, &st.Container, &st.Empty, &st.Reachable, &st.CycleID, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		if st.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at of %s: %w", st.MachineID, err)
		}
		out[st.MachineID] = st
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLStore) Close() error { return s.db.Close() }

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
