// Package sqlite persists authorization audit records in a local
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driven"
)

var _ driven.AuditStore = (*Store)(nil)

// Store is a SQLite-backed audit log.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates the audit store at the specified data directory.
// If dataDir is empty, defaults to ~/.workplace-mcp/data/audit.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".workplace-mcp", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "audit.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_records (
			id TEXT PRIMARY KEY,
			subject_id TEXT NOT NULL,
			operation TEXT NOT NULL,
			decision TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_audit_subject ON audit_records(subject_id, created_at);
	`)
	return err
}

// Append writes one audit record.
func (s *Store) Append(ctx context.Context, rec driven.AuditRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_records (id, subject_id, operation, decision, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.SubjectID, rec.Operation, rec.Decision, rec.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}
	return nil
}

// Recent returns the newest records for a subject, most recent first.
// The audit port itself is write-only; Recent exists for tests and for
// operator inspection outside the request path.
func (s *Store) Recent(ctx context.Context, subjectID string, limit int) ([]driven.AuditRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_id, operation, decision, created_at
		FROM audit_records
		WHERE subject_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit records: %w", err)
	}
	defer rows.Close()

	var records []driven.AuditRecord
	for rows.Next() {
		var rec driven.AuditRecord
		var ts string
		if err := rows.Scan(&rec.ID, &rec.SubjectID, &rec.Operation, &rec.Decision, &ts); err != nil {
			return nil, fmt.Errorf("scanning audit record: %w", err)
		}
		rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing audit timestamp: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}
