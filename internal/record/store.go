package record

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quillhaven/safeguard/internal/escalate"
	"github.com/quillhaven/safeguard/internal/model"
)

// ErrNotFound is returned when a record ID does not exist.
var ErrNotFound = errors.New("record: not found")

const isoFormat = "2006-01-02T15:04:05.000Z"

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id            TEXT PRIMARY KEY,
	subject_id    TEXT NOT NULL,
	source        TEXT NOT NULL,
	source_text   TEXT NOT NULL,
	tier          TEXT NOT NULL,
	category      TEXT NOT NULL,
	keywords      TEXT NOT NULL,
	context_flags TEXT NOT NULL,
	level         INTEGER NOT NULL,
	status        TEXT NOT NULL,
	action_taken  TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_status ON records(status);
CREATE INDEX IF NOT EXISTS idx_records_subject ON records(subject_id);
`

// Store persists escalation records in SQLite and enforces the lifecycle
// state machine on every status change.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) a record database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("record: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("record: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert persists a record and advances it Detected -> Logged.
func (s *Store) Insert(r *Record) error {
	if err := r.Transition(StatusLogged); err != nil {
		return err
	}

	keywords, err := json.Marshal(r.Keywords)
	if err != nil {
		return fmt.Errorf("record: marshal keywords: %w", err)
	}
	flags, err := json.Marshal(r.ContextFlags)
	if err != nil {
		return fmt.Errorf("record: marshal flags: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO records
		(id, subject_id, source, source_text, tier, category, keywords, context_flags, level, status, action_taken, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SubjectID, string(r.Source), r.SourceText, string(r.Tier), string(r.Category),
		string(keywords), string(flags), int(r.Level), string(r.Status), r.ActionTaken,
		r.CreatedAt.UTC().Format(isoFormat), r.UpdatedAt.UTC().Format(isoFormat))
	if err != nil {
		return fmt.Errorf("record: insert: %w", err)
	}
	return nil
}

// Get returns one record by ID.
func (s *Store) Get(id string) (*Record, error) {
	row := s.db.QueryRow(`SELECT id, subject_id, source, source_text, tier, category,
		keywords, context_flags, level, status, action_taken, created_at, updated_at
		FROM records WHERE id = ?`, id)
	return scanRecord(row)
}

// ListByStatus returns up to limit records in a status, newest first.
func (s *Store) ListByStatus(status Status, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`SELECT id, subject_id, source, source_text, tier, category,
		keywords, context_flags, level, status, action_taken, created_at, updated_at
		FROM records WHERE status = ? ORDER BY created_at DESC LIMIT ?`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("record: list: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// PendingReview returns records awaiting a safeguarding lead: level 3 or
// above and not yet reviewed, oldest first so the most overdue surface on
// top. Logged records count — with no notification channels configured a
// record never leaves logged, and those are exactly the deployments where
// the review queue is the only surface.
func (s *Store) PendingReview() ([]*Record, error) {
	rows, err := s.db.Query(`SELECT id, subject_id, source, source_text, tier, category,
		keywords, context_flags, level, status, action_taken, created_at, updated_at
		FROM records
		WHERE status IN (?, ?, ?) AND level >= ?
		ORDER BY created_at ASC`,
		string(StatusLogged), string(StatusNotificationSent), string(StatusNotificationSuppressed),
		int(escalate.LevelSignificant))
	if err != nil {
		return nil, fmt.Errorf("record: pending review: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// UpdateStatus applies a lifecycle transition to a stored record, recording
// the action taken. The transition is validated against the state machine
// before anything is written.
func (s *Store) UpdateStatus(id string, to Status, actionTaken string) (*Record, error) {
	r, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := r.Transition(to); err != nil {
		return nil, err
	}
	if actionTaken != "" {
		r.ActionTaken = actionTaken
	}

	_, err = s.db.Exec(`UPDATE records SET status = ?, action_taken = ?, updated_at = ? WHERE id = ?`,
		string(r.Status), r.ActionTaken, r.UpdatedAt.UTC().Format(isoFormat), r.ID)
	if err != nil {
		return nil, fmt.Errorf("record: update: %w", err)
	}
	return r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var r Record
	var source, tier, category, keywords, flags, createdAt, updatedAt string
	var level int

	err := row.Scan(&r.ID, &r.SubjectID, &source, &r.SourceText, &tier, &category,
		&keywords, &flags, &level, (*string)(&r.Status), &r.ActionTaken, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("record: scan: %w", err)
	}

	r.Source = model.Source(source)
	r.Tier = model.TriggerTier(tier)
	r.Category = model.Category(category)
	r.Level = escalate.Level(level)

	if err := json.Unmarshal([]byte(keywords), &r.Keywords); err != nil {
		return nil, fmt.Errorf("record: unmarshal keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(flags), &r.ContextFlags); err != nil {
		return nil, fmt.Errorf("record: unmarshal flags: %w", err)
	}

	if r.CreatedAt, err = time.Parse(isoFormat, createdAt); err != nil {
		return nil, fmt.Errorf("record: parse created_at: %w", err)
	}
	if r.UpdatedAt, err = time.Parse(isoFormat, updatedAt); err != nil {
		return nil, fmt.Errorf("record: parse updated_at: %w", err)
	}
	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
