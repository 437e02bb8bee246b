// Package history persists a per-profile log of completed mutations in a
// local sqlite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tiendactl/tiendactl/internal/migrations"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// Entry is one recorded operation.
type Entry struct {
	ID        int64
	Timestamp time.Time
	Profile   string
	Entity    string
	Operation string
	RecordID  *int64
	Outcome   string
	Detail    string
	RequestID string
}

// Manager owns the operations database. It implements resource.Recorder;
// recording is best effort and never surfaces an error to the caller.
type Manager struct {
	db      *sql.DB
	profile string
}

func NewManager(dbPath string, profile string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db, profile: profile}, nil
}

// Record stores one audit entry. Errors are swallowed; a broken history
// database must not interrupt the operation that produced the entry.
func (m *Manager) Record(entry resource.AuditEntry) {
	query := `
		INSERT INTO operations (
			timestamp, profile_name, entity, operation, record_id, outcome, detail, request_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	timestampStr := time.Now().Local().Format("2006-01-02 15:04:05")

	var recordID any
	if entry.RecordID != nil {
		recordID = *entry.RecordID
	}

	_, _ = m.db.Exec(query,
		timestampStr,
		m.profile,
		entry.Entity,
		entry.Operation,
		recordID,
		entry.Outcome,
		entry.Detail,
		entry.RequestID,
	)
}

// Recent returns the newest entries for the active profile, newest first.
func (m *Manager) Recent(limit int) ([]Entry, error) {
	query := `
		SELECT id, timestamp, COALESCE(profile_name, ''), entity, operation,
		       record_id, outcome, COALESCE(detail, ''), COALESCE(request_id, '')
		FROM operations
		WHERE profile_name = ? OR (profile_name IS NULL AND ? = '')
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := m.db.Query(query, m.profile, m.profile, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var timestamp string
		var recordID sql.NullInt64

		err := rows.Scan(&e.ID, &timestamp, &e.Profile, &e.Entity, &e.Operation,
			&recordID, &e.Outcome, &e.Detail, &e.RequestID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		parsedTime, err := time.ParseInLocation("2006-01-02 15:04:05", timestamp, time.Local)
		if err != nil {
			parsedTime, err = time.Parse(time.RFC3339, timestamp)
			if err != nil {
				parsedTime = time.Now()
			}
		}
		e.Timestamp = parsedTime

		if recordID.Valid {
			id := recordID.Int64
			e.RecordID = &id
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Count returns the number of entries for the active profile.
func (m *Manager) Count() (int, error) {
	var count int
	err := m.db.QueryRow(
		"SELECT COUNT(*) FROM operations WHERE profile_name = ? OR (profile_name IS NULL AND ? = '')",
		m.profile, m.profile,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

// Clear removes all entries for the active profile.
func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM operations WHERE profile_name = ?", m.profile)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
