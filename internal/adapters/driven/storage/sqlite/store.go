package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/daylog/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

// timeLayout stores timestamps as fixed-width UTC text so that they sort
// lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a unified SQLite-based storage that provides access to
// the state and record store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.daylog/data/daylog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".daylog", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "daylog.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// StateStore returns a StateStore interface backed by this store.
func (s *Store) StateStore() driven.StateStore {
	return &stateStore{store: s}
}

// RecordStore returns a RecordStore interface backed by this store.
func (s *Store) RecordStore() driven.RecordStore {
	return &recordStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== State Store ====================

// stateStore implements driven.StateStore.
type stateStore struct {
	store *Store
}

var _ driven.StateStore = (*stateStore)(nil)

// Load returns the state for date.
func (s *stateStore) Load(ctx context.Context, date string) (*domain.DailyState, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT date, raw, normalized, pending_action, audit, version, updated_at
		FROM daily_states WHERE date = ?
	`, date)
	state, err := scanState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading state %s: %w", date, err)
	}
	return state, nil
}

// Save commits the state in one transaction, guarded by its version.
func (s *stateStore) Save(ctx context.Context, state *domain.DailyState) error {
	rawJSON, err := json.Marshal(state.Raw)
	if err != nil {
		return fmt.Errorf("marshalling raw entries: %w", err)
	}
	normalizedJSON, err := json.Marshal(state.Normalized)
	if err != nil {
		return fmt.Errorf("marshalling normalized: %w", err)
	}
	var pendingJSON sql.NullString
	if state.PendingAction != nil {
		b, err := json.Marshal(state.PendingAction)
		if err != nil {
			return fmt.Errorf("marshalling pending action: %w", err)
		}
		pendingJSON = sql.NullString{String: string(b), Valid: true}
	}
	audit := state.Audit
	if audit == nil {
		audit = []domain.AuditEntry{}
	}
	auditJSON, err := json.Marshal(audit)
	if err != nil {
		return fmt.Errorf("marshalling audit: %w", err)
	}
	updatedAt := formatTime(state.UpdatedAt)

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var res sql.Result
	if state.Version == 0 {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO daily_states (date, raw, normalized, pending_action, audit, version, updated_at)
			VALUES (?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT(date) DO NOTHING
		`, state.Date, string(rawJSON), string(normalizedJSON), pendingJSON, string(auditJSON), updatedAt)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE daily_states
			SET raw = ?, normalized = ?, pending_action = ?, audit = ?, version = version + 1, updated_at = ?
			WHERE date = ? AND version = ?
		`, string(rawJSON), string(normalizedJSON), pendingJSON, string(auditJSON), updatedAt,
			state.Date, state.Version)
	}
	if err != nil {
		return fmt.Errorf("saving state %s: %w", state.Date, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving state %s: %w", state.Date, err)
	}
	if affected != 1 {
		return domain.ErrConflict
	}

	for _, entry := range state.Raw {
		if entry.ID == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO raw_payloads (id, date, source, device_id, ingested_at, payload)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, entry.ID, state.Date, string(entry.Source), nullString(entry.DeviceID),
			formatTime(entry.IngestedAt), string(entry.Payload))
		if err != nil {
			return fmt.Errorf("saving raw payload %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing state %s: %w", state.Date, err)
	}
	state.Version++
	return nil
}

// ListRange returns the saved states with from <= date <= to.
func (s *stateStore) ListRange(ctx context.Context, from, to string) ([]domain.DailyState, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT date, raw, normalized, pending_action, audit, version, updated_at
		FROM daily_states WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying states: %w", err)
	}
	defer rows.Close()

	var states []domain.DailyState //nolint:prealloc // size unknown from query
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning state: %w", err)
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating states: %w", err)
	}
	return states, nil
}

// RawHistory returns every raw entry saved for date, oldest first.
func (s *stateStore) RawHistory(ctx context.Context, date string) ([]domain.RawEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source, device_id, ingested_at, payload
		FROM raw_payloads WHERE date = ?
		ORDER BY seq ASC
	`, date)
	if err != nil {
		return nil, fmt.Errorf("querying raw payloads: %w", err)
	}
	defer rows.Close()

	var entries []domain.RawEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var entry domain.RawEntry
		var source, ingestedAt, payload string
		var deviceID sql.NullString
		if err := rows.Scan(&entry.ID, &source, &deviceID, &ingestedAt, &payload); err != nil {
			return nil, fmt.Errorf("scanning raw payload: %w", err)
		}
		entry.Source = domain.SourceKind(source)
		entry.DeviceID = deviceID.String
		entry.Payload = json.RawMessage(payload)
		if entry.IngestedAt, err = parseTime(ingestedAt); err != nil {
			return nil, fmt.Errorf("parsing ingested_at: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating raw payloads: %w", err)
	}
	return entries, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanState(row rowScanner) (*domain.DailyState, error) {
	var state domain.DailyState
	var rawJSON, normalizedJSON, auditJSON, updatedAt string
	var pendingJSON sql.NullString
	if err := row.Scan(&state.Date, &rawJSON, &normalizedJSON, &pendingJSON,
		&auditJSON, &state.Version, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(rawJSON), &state.Raw); err != nil {
		return nil, fmt.Errorf("unmarshaling raw entries: %w", err)
	}
	if state.Raw == nil {
		state.Raw = make(map[domain.SourceKind]domain.RawEntry)
	}
	if err := json.Unmarshal([]byte(normalizedJSON), &state.Normalized); err != nil {
		return nil, fmt.Errorf("unmarshaling normalized: %w", err)
	}
	if pendingJSON.Valid {
		state.PendingAction = &domain.PendingAction{}
		if err := json.Unmarshal([]byte(pendingJSON.String), state.PendingAction); err != nil {
			return nil, fmt.Errorf("unmarshaling pending action: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(auditJSON), &state.Audit); err != nil {
		return nil, fmt.Errorf("unmarshaling audit: %w", err)
	}
	if len(state.Audit) == 0 {
		state.Audit = nil
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	state.UpdatedAt = t
	return &state, nil
}

// ==================== Record Store ====================

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// Add stores a record.
func (s *recordStore) Add(ctx context.Context, record domain.Record) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO records (id, date, source, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, record.ID, record.Date, record.Source, record.Text, formatTime(record.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving record: %w", err)
	}
	return nil
}

// ListByDate returns the records of date, oldest first.
func (s *recordStore) ListByDate(ctx context.Context, date string) ([]domain.Record, error) {
	return s.query(ctx, `
		SELECT id, date, source, text, created_at
		FROM records WHERE date = ?
		ORDER BY created_at ASC
	`, date)
}

// ListRecent returns up to limit records dated on or before date, newest first.
func (s *recordStore) ListRecent(ctx context.Context, date string, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	return s.query(ctx, `
		SELECT id, date, source, text, created_at
		FROM records WHERE date <= ?
		ORDER BY date DESC, created_at DESC
		LIMIT ?
	`, date, limit)
}

func (s *recordStore) query(ctx context.Context, query string, args ...any) ([]domain.Record, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.Record
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Date, &r.Source, &r.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if r.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// ==================== Helpers ====================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
