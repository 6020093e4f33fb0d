package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/rutacat/rutacat/internal/level"
	"github.com/rutacat/rutacat/internal/rules"
)

// SQLite is the production LevelStore.
type SQLite struct {
	db   *sql.DB
	path string
}

// Verify SQLite implements LevelStore.
var _ LevelStore = (*SQLite)(nil)

// New opens (and migrates) the sqlite database at dbPath.
func New(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLite{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS levels (
		id TEXT PRIMARY KEY,
		level_type TEXT NOT NULL,
		date_key TEXT NOT NULL,
		difficulty_id TEXT NOT NULL,
		start_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		path_json TEXT NOT NULL,
		rule_id TEXT,
		avoid_json TEXT,
		mustpass_json TEXT,
		created_at DATETIME NOT NULL,
		UNIQUE(level_type, date_key, difficulty_id)
	);

	CREATE TABLE IF NOT EXISTS calendar (
		level_type TEXT NOT NULL,
		date_key TEXT NOT NULL,
		difficulty_id TEXT NOT NULL,
		level_id TEXT NOT NULL,
		PRIMARY KEY (level_type, date_key, difficulty_id),
		FOREIGN KEY (level_id) REFERENCES levels(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_calendar_key ON calendar(level_type, date_key DESC);

	CREATE TABLE IF NOT EXISTS run_ledger (
		run_id TEXT NOT NULL,
		level_type TEXT NOT NULL,
		date_key TEXT NOT NULL,
		difficulty_id TEXT NOT NULL,
		purpose TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		PRIMARY KEY (level_type, date_key, difficulty_id, purpose)
	);

	CREATE TABLE IF NOT EXISTS rule_history (
		level_type TEXT NOT NULL,
		position INTEGER NOT NULL,
		rule_id TEXT NOT NULL,
		PRIMARY KEY (level_type, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Ping verifies the connection.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SaveLevel stores the level and its calendar row transactionally.
func (s *SQLite) SaveLevel(ctx context.Context, cadence, key, mode string, lvl *level.Level) error {
	pathJSON, err := json.Marshal(lvl.ShortestPath)
	if err != nil {
		return fmt.Errorf("marshal path: %w", err)
	}
	avoidJSON, _ := json.Marshal(lvl.AvoidIDs)
	mustJSON, _ := json.Marshal(lvl.MustPassIDs)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO levels (id, level_type, date_key, difficulty_id, start_id, target_id,
							path_json, rule_id, avoid_json, mustpass_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, lvl.ID, cadence, key, mode, lvl.StartID, lvl.TargetID,
		string(pathJSON), nullable(lvl.RuleID), string(avoidJSON), string(mustJSON), time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert level: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO calendar (level_type, date_key, difficulty_id, level_id)
		VALUES (?, ?, ?, ?)
	`, cadence, key, mode, lvl.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert calendar row: %w", err)
	}

	return tx.Commit()
}

// GetLevel fetches one level by slot.
func (s *SQLite) GetLevel(ctx context.Context, cadence, key, mode string) (*level.Level, error) {
	var lvl level.Level
	var pathJSON, avoidJSON, mustJSON string
	var ruleID sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, start_id, target_id, path_json, rule_id, avoid_json, mustpass_json
		FROM levels WHERE level_type = ? AND date_key = ? AND difficulty_id = ?
	`, cadence, key, mode).Scan(&lvl.ID, &lvl.StartID, &lvl.TargetID, &pathJSON, &ruleID, &avoidJSON, &mustJSON)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Cadence: cadence, Key: key, Mode: mode}
	}
	if err != nil {
		return nil, fmt.Errorf("get level: %w", err)
	}

	if ruleID.Valid {
		lvl.RuleID = ruleID.String
	}
	if err := json.Unmarshal([]byte(pathJSON), &lvl.ShortestPath); err != nil {
		return nil, fmt.Errorf("unmarshal path: %w", err)
	}
	json.Unmarshal([]byte(avoidJSON), &lvl.AvoidIDs)
	json.Unmarshal([]byte(mustJSON), &lvl.MustPassIDs)
	return &lvl, nil
}

// ExistingKeys reports which keys already hold a level, in one query.
func (s *SQLite) ExistingKeys(ctx context.Context, cadence, mode string, keys []string) (map[string]bool, error) {
	out := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, 0, len(keys)+2)
	args = append(args, cadence, mode)
	for _, k := range keys {
		args = append(args, k)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date_key FROM calendar
		WHERE level_type = ? AND difficulty_id = ? AND date_key IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("existing keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out[k] = true
	}
	return out, rows.Err()
}

// ClaimRun is the insert-if-absent synchronization primitive. Exactly one
// of any set of concurrent callers for the same slot and purpose gets
// true.
func (s *SQLite) ClaimRun(ctx context.Context, cadence, key, mode, purpose string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO run_ledger (run_id, level_type, date_key, difficulty_id, purpose, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ulid.Make().String(), cadence, key, mode, purpose, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("claim run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RecentRuleIDs returns the cadence's rule history, newest first.
func (s *SQLite) RecentRuleIDs(ctx context.Context, cadence string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_id FROM rule_history
		WHERE level_type = ? ORDER BY position DESC LIMIT ?
	`, cadence, rules.HistoryCapacity)
	if err != nil {
		return nil, fmt.Errorf("rule history: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AppendRuleID records an issued rule id and trims the history to its
// capacity.
func (s *SQLite) AppendRuleID(ctx context.Context, cadence, ruleID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), 0) + 1 FROM rule_history WHERE level_type = ?
	`, cadence).Scan(&next)
	if err != nil {
		return fmt.Errorf("history position: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rule_history (level_type, position, rule_id) VALUES (?, ?, ?)
	`, cadence, next, ruleID); err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM rule_history WHERE level_type = ? AND position <= ?
	`, cadence, next-rules.HistoryCapacity); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	return tx.Commit()
}

// CountLevels counts stored levels for a cadence.
func (s *SQLite) CountLevels(ctx context.Context, cadence string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM levels WHERE level_type = ?
	`, cadence).Scan(&n)
	return n, err
}

// LatestKey returns the newest cadence key holding a level.
func (s *SQLite) LatestKey(ctx context.Context, cadence string) (string, error) {
	var key string
	err := s.db.QueryRowContext(ctx, `
		SELECT date_key FROM calendar WHERE level_type = ? ORDER BY date_key DESC LIMIT 1
	`, cadence).Scan(&key)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return key, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrConstraint
	}
	return false
}
