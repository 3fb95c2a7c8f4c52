package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/source"
)

const schema = `
CREATE TABLE IF NOT EXISTS actions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	action     TEXT NOT NULL,
	source     TEXT NOT NULL,
	details    TEXT NOT NULL DEFAULT '',
	executed   INTEGER NOT NULL DEFAULT 1,
	timestamp  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_actions_timestamp ON actions(timestamp);
CREATE INDEX IF NOT EXISTS idx_actions_action_source ON actions(action, source);
`

// SQLiteStore persists every action record to a SQLite database. It
// implements Sink, so it can be attached to a Recorder, and additionally
// supports querying recent rows for offline inspection.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

// OpenStore opens (or creates) the action store at path with WAL mode and
// a busy timeout for better concurrency.
func OpenStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open action store: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping action store: %w", err)
	}

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize action store schema: %w", err)
	}

	return &SQLiteStore{conn: conn, path: path}, nil
}

// WriteRecord inserts one action record.
func (s *SQLiteStore) WriteRecord(rec Record) error {
	executed := 0
	if rec.Executed {
		executed = 1
	}

	_, err := s.conn.Exec(
		`INSERT INTO actions (action, source, details, executed, timestamp) VALUES (?, ?, ?, ?, ?)`,
		rec.Action, string(rec.Source), rec.Details, executed, rec.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert action record: %w", err)
	}
	return nil
}

// Recent returns up to limit of the most recent persisted records in
// chronological order.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT action, source, details, executed, timestamp
		 FROM (SELECT * FROM actions ORDER BY id DESC LIMIT ?)
		 ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query action records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var src, ts string
		var executed int
		if err := rows.Scan(&rec.Action, &src, &rec.Details, &executed, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan action record: %w", err)
		}
		rec.Source = source.ID(src)
		rec.Executed = executed != 0
		if rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("failed to parse action timestamp %q: %w", ts, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

var _ Sink = (*SQLiteStore)(nil)
