// Package receipt generates settlement receipt identifiers. These are
// opaque pseudo-random tokens formatted like ledger hashes; they are not
// derived from any content and must never be treated as a security or
// verification primitive.
package receipt

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// #region new

// New returns a fresh receipt identifier: "0x" followed by 64 hex chars.
func New() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is unrecoverable process state; fall back
		// to an obviously synthetic marker rather than panicking the turn.
		return "0x" + fmt.Sprintf("%064d", 0)
	}
	return "0x" + hex.EncodeToString(buf)
}

// #endregion new
