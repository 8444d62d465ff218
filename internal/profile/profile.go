// Package profile stores user profiles and their payout history.
package profile

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS user_profiles (
	user_id       TEXT PRIMARY KEY,
	display_name  TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS payout_transactions (
	tx_id         TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	amount        REAL NOT NULL,
	receipt       TEXT NOT NULL,
	status        TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (user_id) REFERENCES user_profiles(user_id)
);
`
// #endregion schema

// #region types
// Profile is a registered distribution operator.
type Profile struct {
	UserID      string
	DisplayName string
	CreatedAt   time.Time
}

// PayoutStatus is the settlement state of a payout transaction.
type PayoutStatus string

const (
	PayoutCompleted PayoutStatus = "Completed"
)

// Transaction records one equity payout. Receipt is the opaque settlement
// hash attached at creation; transactions are written Completed and never
// transition.
type Transaction struct {
	TxID      string
	UserID    string
	Amount    float64
	Receipt   string
	Status    PayoutStatus
	CreatedAt time.Time
}
// #endregion types

// #region store
// Store persists profiles and payouts on a shared database handle.
type Store struct {
	db *sql.DB
}

// NewStore runs migrations on db and returns a Store over it.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion store

// #region ensure
// Ensure creates a profile for userID if none exists and returns it.
func (s *Store) Ensure(userID, displayName string) (Profile, error) {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO user_profiles (user_id, display_name, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		userID, displayName, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Profile{}, fmt.Errorf("ensure profile: %w", err)
	}
	return s.Get(userID)
}

// Get reads one profile.
func (s *Store) Get(userID string) (Profile, error) {
	var p Profile
	var created string
	err := s.db.QueryRow(
		`SELECT user_id, display_name, created_at FROM user_profiles WHERE user_id = ?`,
		userID,
	).Scan(&p.UserID, &p.DisplayName, &created)
	if err != nil {
		return Profile{}, fmt.Errorf("get profile %s: %w", userID, err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return p, nil
}
// #endregion ensure

// #region payout
// RecordPayout writes a Completed payout transaction carrying the given
// settlement receipt.
func (s *Store) RecordPayout(userID string, amount float64, receipt string) (Transaction, error) {
	tx := Transaction{
		TxID:      uuid.New().String(),
		UserID:    userID,
		Amount:    amount,
		Receipt:   receipt,
		Status:    PayoutCompleted,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO payout_transactions (tx_id, user_id, amount, receipt, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.TxID, tx.UserID, tx.Amount, tx.Receipt, string(tx.Status),
		tx.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Transaction{}, fmt.Errorf("record payout: %w", err)
	}
	return tx, nil
}

// ListPayouts returns a user's payouts, most recent first.
func (s *Store) ListPayouts(userID string, limit int) ([]Transaction, error) {
	rows, err := s.db.Query(
		`SELECT tx_id, user_id, amount, receipt, status, created_at
		 FROM payout_transactions WHERE user_id = ?
		 ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var tx Transaction
		var status, created string
		if err := rows.Scan(&tx.TxID, &tx.UserID, &tx.Amount, &tx.Receipt, &status, &created); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		tx.Status = PayoutStatus(status)
		tx.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
// #endregion payout
