package session

import (
	"github.com/linkz-dao/linkz-controller/internal/interp"
	"github.com/linkz-dao/linkz-controller/internal/metrics"
)

// #region roles

// Role identifies a message author.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// #endregion roles

// #region message

// AttachmentMeta records attachment names on a persisted message. The
// binary payloads themselves are never persisted.
type AttachmentMeta struct {
	ImageName string `json:"imageName,omitempty"`
	AudioName string `json:"audioName,omitempty"`
}

// Message is one entry in the conversation ledger. Messages are appended
// once and immutable thereafter, except the mandate executed flag which
// flips exactly once.
type Message struct {
	ID          string            `json:"id"`
	Role        Role              `json:"role"`
	Text        string            `json:"text"`
	Timestamp   int64             `json:"timestamp"` // unix milliseconds
	Attachments *AttachmentMeta   `json:"attachments,omitempty"`
	Mandate     *interp.Mandate   `json:"mandate,omitempty"`
	DLTHash     string            `json:"dltHash,omitempty"`
	Briefing    *metrics.Briefing `json:"briefing,omitempty"`
}

// #endregion message

// #region document

// Document is the per-user session record: the whole ledger plus the
// whole metric snapshot. Remote delivery is wholesale — there is no
// field-level conflict resolution, deliberately.
type Document struct {
	Messages    []Message         `json:"messages"`
	Context     *metrics.Snapshot `json:"contextData,omitempty"`
	LastUpdated int64             `json:"lastUpdated"`
}

// #endregion document
