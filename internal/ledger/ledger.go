// Package ledger provides an append-only history of sync outcomes.
// Recording is best-effort observability: a failed insert is logged by the
// caller and never affects the sync loop.
package ledger

import (
	"database/sql"
	"fmt"
	"time"
)

// Entry represents one recorded sync outcome
type Entry struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	Event       string    `json:"event"`
	SourceValue int       `json:"source_value"`
	TargetValue int       `json:"target_value"`
	Detail      string    `json:"detail,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Ledger provides append-only sync history recording
type Ledger struct {
	db    *sql.DB
	runID string
}

// New creates a Ledger bound to one daemon run. runID groups entries so
// restarts are distinguishable in the history.
func New(db *sql.DB, runID string) *Ledger {
	return &Ledger{db: db, runID: runID}
}

// Record appends one sync outcome to the history
func (l *Ledger) Record(event string, sourceValue, targetValue int, detail string) error {
	now := time.Now().UTC().Unix()

	_, err := l.db.Exec(`
		INSERT INTO sync_history (run_id, event, source_value, target_value, detail, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, l.runID, event, sourceValue, targetValue, detail, now)
	if err != nil {
		return fmt.Errorf("failed to record sync event: %w", err)
	}

	return nil
}

// Recent returns the most recent entries, newest first
func (l *Ledger) Recent(limit int) ([]Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, run_id, event, source_value, target_value, detail, timestamp
		FROM sync_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var detail sql.NullString
		var ts int64
		if err := rows.Scan(&e.ID, &e.RunID, &e.Event, &e.SourceValue, &e.TargetValue, &detail, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan sync history row: %w", err)
		}
		e.Detail = detail.String
		e.Timestamp = time.Unix(ts, 0).UTC()
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Cleanup removes entries older than the retention window.
// Called periodically so the history file stays bounded.
func (l *Ledger) Cleanup(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays).UTC().Unix()

	result, err := l.db.Exec(`DELETE FROM sync_history WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sync history: %w", err)
	}

	return result.RowsAffected()
}
