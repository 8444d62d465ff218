package metrics

// #region enums

// Compliance is the tri-state DDEX metadata-correctness classification.
type Compliance string

const (
	ComplianceVerified Compliance = "Verified"
	CompliancePending  Compliance = "Pending"
	ComplianceFailed   Compliance = "Failed"
)

// SRMStatus is the rights-clearance classification, independent of DDEX compliance.
type SRMStatus string

const (
	SRMSecure  SRMStatus = "Secure"
	SRMPending SRMStatus = "Pending"
	SRMFlagged SRMStatus = "Flagged"
)

// Distribution is the deployment surface state.
type Distribution string

const (
	DistributionOffline    Distribution = "Offline"
	DistributionPending    Distribution = "Pending"
	DistributionLiveGlobal Distribution = "Live (Global)"
	DistributionLivePhased Distribution = "Live (Phased)"
)

// Live reports whether the distribution is in any Live variant.
func (d Distribution) Live() bool {
	return d == DistributionLiveGlobal || d == DistributionLivePhased
}

// RolloutStatus tracks the phased rollout machine.
type RolloutStatus string

const (
	RolloutIdle      RolloutStatus = "Idle"
	RolloutActive    RolloutStatus = "Active"
	RolloutHalted    RolloutStatus = "Halted"
	RolloutCompleted RolloutStatus = "Completed"
)

// LockState is the derived tri-state deployment gate. It is never set
// directly by the interpreter; see the lock package.
type LockState string

const (
	LockLocked   LockState = "LOCKED"
	LockArmed    LockState = "ARMED"
	LockDeployed LockState = "DEPLOYED"
)

// LogType classifies a system log entry.
type LogType string

const (
	LogInfo    LogType = "info"
	LogSuccess LogType = "success"
	LogWarning LogType = "warning"
	LogError   LogType = "error"
	LogAlpha   LogType = "alpha"
)

// #endregion enums

// #region records

// LogEntry is one line in the bounded system log ring.
type LogEntry struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Type      LogType `json:"type"`
	Timestamp int64   `json:"timestamp"` // unix milliseconds
}

// AssetMetadata describes the current asset. Unset fields mean "not yet known".
type AssetMetadata struct {
	Title             string `json:"title"`
	Artist            string `json:"artist"`
	ISRC              string `json:"isrc"`
	Label             string `json:"label"`
	Genre             string `json:"genre"`
	Mood              string `json:"mood,omitempty"`
	ProductionQuality string `json:"productionQuality,omitempty"`
}

// AccessibilityState tracks the screen reader API and WCAG audit outcome.
type AccessibilityState struct {
	Status          string `json:"status"` // Compliant | Non-Compliant | Pending
	ScreenReaderAPI string `json:"screenReaderApi"`
	WCAGScore       int    `json:"wcagScore"`
}

// RolloutState tracks phased distribution activation.
type RolloutState struct {
	Status     RolloutStatus `json:"status"`
	Percentage int           `json:"percentage"`
}

// AuraProfile records the manual-override distribution profile, populated
// only by the aura distribution instruction.
type AuraProfile struct {
	Active        bool   `json:"active"`
	ReleaseID     string `json:"releaseId,omitempty"`
	DDEXProfile   string `json:"ddexProfile,omitempty"`
	E2EScope      string `json:"e2eScope,omitempty"`
	BlockchainTag string `json:"blockchainTag,omitempty"`
}

// Briefing is one strategic briefing with optional synthesized audio.
type Briefing struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	AudioBase64 string `json:"audioBase64,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// Negotiation is the singleton active deal flow. Superseded negotiations
// are overwritten, not archived.
type Negotiation struct {
	Counterparty string `json:"counterparty"`
	DealType     string `json:"dealType"` // Sync | Brand | Collaboration
	CurrentOffer string `json:"currentOffer"`
	Status       string `json:"status"` // Negotiating | Signed | Rejected
}

// MarketHotspot is one geographic signal on the viral map.
type MarketHotspot struct {
	ID        string `json:"id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Label     string `json:"label"`
	Intensity string `json:"intensity"` // LOW | MEDIUM | HIGH
}

// ViralSignal carries the synthetic social-signal metrics produced by the
// opportunity scan.
type ViralSignal struct {
	ShazamVelocity float64         `json:"shazamVelocity"`
	TikTokMomentum float64         `json:"tikTokMomentum"`
	Location       string          `json:"location,omitempty"`
	Hotspots       []MarketHotspot `json:"hotspots,omitempty"`
}

// #endregion records

// #region snapshot

// Snapshot is the Metric Store's value at one instant. JSON field names
// match the persisted session document layout.
type Snapshot struct {
	AssetID            string             `json:"currentAssetId"`
	AssetName          string             `json:"assetName"`
	SynergyScore       float64            `json:"synergyScore"`
	DistributionStatus Distribution       `json:"distributionStatus"`
	DDEXCompliance     Compliance         `json:"ddexCompliance"`
	SRMStatus          SRMStatus          `json:"srmStatus"`
	PitchingStatus     string             `json:"pitchingStatus"`
	ActiveMission      string             `json:"activeMission"`
	ViralStatus        string             `json:"viralStatus"` // Stable | Rising | Spiking
	ViralSignal        *ViralSignal       `json:"viralSignal,omitempty"`
	RolloutState       RolloutState       `json:"rolloutState"`
	AccessibilityState AccessibilityState `json:"accessibilityState"`
	Metadata           AssetMetadata      `json:"metadata"`
	SystemLogs         []LogEntry         `json:"systemLogs"`
	ProjectedEquity    float64            `json:"projectedEquity"`
	LockState          LockState          `json:"lockState"`
	AuraProfile        AuraProfile        `json:"auraProfile"`
	Briefings          []Briefing         `json:"briefings"`
	ActiveNegotiation  *Negotiation       `json:"activeNegotiation,omitempty"`
}

// SentinelAssetID signals that the asset id is invalid and needs regeneration.
const SentinelAssetID = "INVALID_ID_ERROR"

// MaxSystemLogs bounds the system log ring.
const MaxSystemLogs = 20

// MaxBriefings bounds the retained briefing list.
const MaxBriefings = 5

// Clone returns a deep copy of the snapshot. Slices and pointers are
// copied so callers can mutate the result freely.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.SystemLogs != nil {
		out.SystemLogs = append([]LogEntry(nil), s.SystemLogs...)
	}
	if s.Briefings != nil {
		out.Briefings = append([]Briefing(nil), s.Briefings...)
	}
	if s.ViralSignal != nil {
		vs := *s.ViralSignal
		if s.ViralSignal.Hotspots != nil {
			vs.Hotspots = append([]MarketHotspot(nil), s.ViralSignal.Hotspots...)
		}
		out.ViralSignal = &vs
	}
	if s.ActiveNegotiation != nil {
		n := *s.ActiveNegotiation
		out.ActiveNegotiation = &n
	}
	return out
}

// #endregion snapshot
