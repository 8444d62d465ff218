package metrics

import (
	"time"

	"github.com/google/uuid"
)

// #region patch-types

// MetadataPatch holds partial asset metadata. Nil fields retain the prior value.
type MetadataPatch struct {
	Title             *string
	Artist            *string
	ISRC              *string
	Label             *string
	Genre             *string
	Mood              *string
	ProductionQuality *string
}

// AccessibilityPatch holds partial accessibility state.
type AccessibilityPatch struct {
	Status          *string
	ScreenReaderAPI *string
	WCAGScore       *int
}

// RolloutPatch holds partial rollout state.
type RolloutPatch struct {
	Status     *RolloutStatus
	Percentage *int
}

// Patch is a partial Snapshot. Top-level fields shallow-merge; Metadata,
// Accessibility and Rollout deep-merge; AppendLogs append-then-truncate
// instead of replacing.
type Patch struct {
	AssetID            *string
	AssetName          *string
	SynergyScore       *float64
	DistributionStatus *Distribution
	DDEXCompliance     *Compliance
	SRMStatus          *SRMStatus
	PitchingStatus     *string
	ActiveMission      *string
	ViralStatus        *string
	ViralSignal        *ViralSignal
	Rollout            *RolloutPatch
	Accessibility      *AccessibilityPatch
	Metadata           *MetadataPatch
	AppendLogs         []LogEntry
	ProjectedEquity    *float64
	LockState          *LockState
	AuraProfile        *AuraProfile
	Briefings          []Briefing // replaces the retained list when non-nil
	ActiveNegotiation  *Negotiation
}

// LockOnly reports whether the patch touches nothing but the lock field.
// The store skips re-derivation for such patches to avoid recomputation loops.
func (p Patch) LockOnly() bool {
	if p.LockState == nil {
		return false
	}
	q := p
	q.LockState = nil
	return q.isEmpty()
}

func (p Patch) isEmpty() bool {
	return p.AssetID == nil && p.AssetName == nil && p.SynergyScore == nil &&
		p.DistributionStatus == nil && p.DDEXCompliance == nil && p.SRMStatus == nil &&
		p.PitchingStatus == nil && p.ActiveMission == nil && p.ViralStatus == nil &&
		p.ViralSignal == nil && p.Rollout == nil && p.Accessibility == nil &&
		p.Metadata == nil && len(p.AppendLogs) == 0 && p.ProjectedEquity == nil &&
		p.LockState == nil && p.AuraProfile == nil && p.Briefings == nil &&
		p.ActiveNegotiation == nil
}

// #endregion patch-types

// #region apply

// Apply merges a patch into a snapshot and returns the result. Pure: the
// input snapshot is not mutated. System logs are appended first and then
// truncated to the most recent MaxSystemLogs entries, so a batch larger
// than the ring still keeps its newest lines.
func Apply(s Snapshot, p Patch) Snapshot {
	out := s.Clone()

	if p.AssetID != nil {
		out.AssetID = *p.AssetID
	}
	if p.AssetName != nil {
		out.AssetName = *p.AssetName
	}
	if p.SynergyScore != nil {
		out.SynergyScore = *p.SynergyScore
	}
	if p.DistributionStatus != nil {
		out.DistributionStatus = *p.DistributionStatus
	}
	if p.DDEXCompliance != nil {
		out.DDEXCompliance = *p.DDEXCompliance
	}
	if p.SRMStatus != nil {
		out.SRMStatus = *p.SRMStatus
	}
	if p.PitchingStatus != nil {
		out.PitchingStatus = *p.PitchingStatus
	}
	if p.ActiveMission != nil {
		out.ActiveMission = *p.ActiveMission
	}
	if p.ViralStatus != nil {
		out.ViralStatus = *p.ViralStatus
	}
	if p.ViralSignal != nil {
		vs := *p.ViralSignal
		out.ViralSignal = &vs
	}
	if p.Rollout != nil {
		if p.Rollout.Status != nil {
			out.RolloutState.Status = *p.Rollout.Status
		}
		if p.Rollout.Percentage != nil {
			out.RolloutState.Percentage = *p.Rollout.Percentage
		}
	}
	if p.Accessibility != nil {
		if p.Accessibility.Status != nil {
			out.AccessibilityState.Status = *p.Accessibility.Status
		}
		if p.Accessibility.ScreenReaderAPI != nil {
			out.AccessibilityState.ScreenReaderAPI = *p.Accessibility.ScreenReaderAPI
		}
		if p.Accessibility.WCAGScore != nil {
			out.AccessibilityState.WCAGScore = *p.Accessibility.WCAGScore
		}
	}
	if p.Metadata != nil {
		m := &out.Metadata
		if p.Metadata.Title != nil {
			m.Title = *p.Metadata.Title
		}
		if p.Metadata.Artist != nil {
			m.Artist = *p.Metadata.Artist
		}
		if p.Metadata.ISRC != nil {
			m.ISRC = *p.Metadata.ISRC
		}
		if p.Metadata.Label != nil {
			m.Label = *p.Metadata.Label
		}
		if p.Metadata.Genre != nil {
			m.Genre = *p.Metadata.Genre
		}
		if p.Metadata.Mood != nil {
			m.Mood = *p.Metadata.Mood
		}
		if p.Metadata.ProductionQuality != nil {
			m.ProductionQuality = *p.Metadata.ProductionQuality
		}
	}
	if len(p.AppendLogs) > 0 {
		out.SystemLogs = append(out.SystemLogs, p.AppendLogs...)
		if n := len(out.SystemLogs); n > MaxSystemLogs {
			out.SystemLogs = append([]LogEntry(nil), out.SystemLogs[n-MaxSystemLogs:]...)
		}
	}
	if p.ProjectedEquity != nil {
		out.ProjectedEquity = *p.ProjectedEquity
	}
	if p.LockState != nil {
		out.LockState = *p.LockState
	}
	if p.AuraProfile != nil {
		out.AuraProfile = *p.AuraProfile
	}
	if p.Briefings != nil {
		out.Briefings = append([]Briefing(nil), p.Briefings...)
	}
	if p.ActiveNegotiation != nil {
		n := *p.ActiveNegotiation
		out.ActiveNegotiation = &n
	}

	return out
}

// #endregion apply

// #region log-helpers

// NewLog builds a log entry with a fresh id and the given timestamp.
// Callers emitting several entries in one batch pass increasing offsets
// to keep display order stable.
func NewLog(text string, typ LogType, ts int64) LogEntry {
	return LogEntry{ID: uuid.New().String(), Text: text, Type: typ, Timestamp: ts}
}

// NewLogNow builds a log entry stamped with the current time.
func NewLogNow(text string, typ LogType) LogEntry {
	return NewLog(text, typ, time.Now().UnixMilli())
}

// #endregion log-helpers

// #region pointer-helpers

// Ptr returns a pointer to v; shorthand for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// #endregion pointer-helpers
