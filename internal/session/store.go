package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	user_id       TEXT PRIMARY KEY,
	messages_json TEXT NOT NULL,
	context_json  TEXT,
	last_updated  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session_provenance (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id       TEXT NOT NULL,
	trigger_type  TEXT NOT NULL,
	decision      TEXT NOT NULL,
	reason        TEXT,
	receipt       TEXT,
	created_at    TEXT NOT NULL
);
`
// #endregion schema

// #region store-struct
// Store persists per-user session documents in SQLite and fans saved
// documents out to in-process subscribers.
type Store struct {
	db *sql.DB

	mu   sync.Mutex
	subs map[string]map[int]chan Document
	next int
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, subs: make(map[string]map[int]chan Document)}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. profile).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region save
// Save upserts a user's session document. Nil fields are merged: a nil
// Messages slice or Context pointer keeps whatever the row already holds,
// so a caller can update the ledger and the snapshot independently. The
// merged document, stamped with a fresh LastUpdated, is delivered to every
// subscriber of the user.
func (s *Store) Save(userID string, doc Document) (Document, error) {
	existing, found, err := s.Load(userID)
	if err != nil {
		return Document{}, err
	}
	if doc.Messages == nil && found {
		doc.Messages = existing.Messages
	}
	if doc.Context == nil && found {
		doc.Context = existing.Context
	}
	doc.LastUpdated = time.Now().UnixMilli()

	msgJSON, err := json.Marshal(doc.Messages)
	if err != nil {
		return Document{}, fmt.Errorf("marshal messages: %w", err)
	}
	var ctxPtr interface{}
	if doc.Context != nil {
		ctxJSON, err := json.Marshal(doc.Context)
		if err != nil {
			return Document{}, fmt.Errorf("marshal context: %w", err)
		}
		ctxPtr = string(ctxJSON)
	}

	_, err = s.db.Exec(
		`INSERT INTO sessions (user_id, messages_json, context_json, last_updated)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			messages_json = excluded.messages_json,
			context_json  = excluded.context_json,
			last_updated  = excluded.last_updated`,
		userID, string(msgJSON), ctxPtr, doc.LastUpdated,
	)
	if err != nil {
		return Document{}, fmt.Errorf("upsert session: %w", err)
	}

	s.notify(userID, doc)
	return doc, nil
}
// #endregion save

// #region load
// Load reads a user's session document. The second return is false when
// the user has no row yet.
func (s *Store) Load(userID string) (Document, bool, error) {
	var msgJSON string
	var ctxJSON sql.NullString
	var doc Document

	err := s.db.QueryRow(
		`SELECT messages_json, context_json, last_updated FROM sessions WHERE user_id = ?`,
		userID,
	).Scan(&msgJSON, &ctxJSON, &doc.LastUpdated)
	if err == sql.ErrNoRows {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("load session %s: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(msgJSON), &doc.Messages); err != nil {
		return Document{}, false, fmt.Errorf("unmarshal messages: %w", err)
	}
	if ctxJSON.Valid {
		if err := json.Unmarshal([]byte(ctxJSON.String), &doc.Context); err != nil {
			return Document{}, false, fmt.Errorf("unmarshal context: %w", err)
		}
	}
	return doc, true, nil
}
// #endregion load

// #region list-users
// ListUsers returns every user id with a session row.
func (s *Store) ListUsers() ([]string, error) {
	rows, err := s.db.Query(`SELECT user_id FROM sessions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
// #endregion list-users

// #region subscribe
// Subscribe registers for whole-document delivery on every save for the
// given user. The returned cancel func unregisters and closes the channel.
// Delivery is best-effort: a subscriber that falls behind misses
// intermediate documents, never blocks a save.
func (s *Store) Subscribe(userID string) (<-chan Document, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Document, 8)
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]chan Document)
	}
	id := s.next
	s.next++
	s.subs[userID][id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[userID][id]; ok {
			delete(s.subs[userID], id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *Store) notify(userID string, doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs[userID] {
		select {
		case ch <- doc:
		default:
		}
	}
}
// #endregion subscribe
