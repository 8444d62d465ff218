package session

import (
	"fmt"
	"time"
)

// #region provenance-entry
// ProvenanceEntry records why a session document changed: a chat turn,
// a mandate execution, a payout, a background scan.
type ProvenanceEntry struct {
	UserID      string
	TriggerType string
	Decision    string
	Reason      string
	Receipt     string
	CreatedAt   time.Time
}
// #endregion provenance-entry

// #region log-decision
// LogDecision writes a provenance entry to the session_provenance table.
func (s *Store) LogDecision(entry ProvenanceEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO session_provenance (user_id, trigger_type, decision, reason, receipt, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.UserID,
		entry.TriggerType,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.Receipt),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}
// #endregion log-decision

// #region provenance-list
// ListProvenance returns the most recent provenance entries for a user.
func (s *Store) ListProvenance(userID string, limit int) ([]ProvenanceEntry, error) {
	rows, err := s.db.Query(
		`SELECT user_id, trigger_type, decision, reason, receipt, created_at
		 FROM session_provenance WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list provenance: %w", err)
	}
	defer rows.Close()

	var entries []ProvenanceEntry
	for rows.Next() {
		var e ProvenanceEntry
		var reason, receipt, created nullString
		if err := rows.Scan(&e.UserID, &e.TriggerType, &e.Decision, &reason, &receipt, &created); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Reason = reason.value
		e.Receipt = receipt.value
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created.value)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion provenance-list

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

type nullString struct {
	value string
}

func (n *nullString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		n.value = ""
	case string:
		n.value = v
	case []byte:
		n.value = string(v)
	default:
		return fmt.Errorf("unexpected type %T", src)
	}
	return nil
}
// #endregion helpers
