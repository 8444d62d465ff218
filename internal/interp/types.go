package interp

import "github.com/linkz-dao/linkz-controller/internal/metrics"

// #region urgency

// Urgency grades a mandate proposal.
type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyCritical Urgency = "CRITICAL"
)

// #endregion urgency

// #region mandate

// Mandate is a proposed privileged action attached to a model message.
// It is created PROPOSED (Executed=false) and flips to executed exactly
// once, only via explicit user confirmation while the gate is not LOCKED.
type Mandate struct {
	ID         string  `json:"id"`
	ActionName string  `json:"actionName"`
	Urgency    Urgency `json:"urgency"`
	Executed   bool    `json:"executed"`
}

// #endregion mandate

// #region instructions

// Instruction is the closed set of gateway-issued tool calls. Dispatch is
// by type switch rather than string matching so the compiler enforces
// exhaustiveness across the set.
type Instruction interface {
	isInstruction()
}

// IssueMandate attaches a pending mandate to the outgoing message. It
// mutates no metrics and on its own does not make the turn
// transaction-executing.
type IssueMandate struct {
	ActionName string
	Urgency    Urgency
}

// UpdateComplianceStatus sets the DDEX compliance and, when provided,
// the SRM status.
type UpdateComplianceStatus struct {
	Status           metrics.Compliance
	SRMStatus        metrics.SRMStatus // empty means "not provided"
	ViolationSummary string
}

// RolloutAction is the legal action set for ManageRollout.
type RolloutAction string

const (
	RolloutStart  RolloutAction = "START"
	RolloutUpdate RolloutAction = "UPDATE"
	RolloutHalt   RolloutAction = "HALT"
)

// ManageRollout drives the phased distribution rollout.
type ManageRollout struct {
	Action     RolloutAction
	Percentage *int // nil defaults to 1 for START/UPDATE
}

// UpdateAssetMetadata partial-merges metadata fields. Omitted fields
// never clear existing values.
type UpdateAssetMetadata struct {
	Fields metrics.MetadataPatch
}

// RegenerateAssetID replaces the asset id with a fresh LINKZ-##### value.
type RegenerateAssetID struct {
	Reason string
}

// AccessibilityAction is the legal action set for ManageAccessibility.
type AccessibilityAction string

const (
	AccessibilityActivateAPI AccessibilityAction = "ACTIVATE_API"
	AccessibilityRunAudit    AccessibilityAction = "RUN_AUDIT"
)

// ManageAccessibility is a two-outcome machine: activation yields the
// full-pass state, an audit yields the fixed failing state. No partial
// states exist.
type ManageAccessibility struct {
	Action AccessibilityAction
}

// ExecuteAuraDistribution is the manual-override path: it force-sets
// every readiness metric to pass and the distribution to Live (Global),
// bypassing the lock gate entirely. This is an intentional escape hatch,
// not an oversight; the gate re-derives to DEPLOYED afterwards.
type ExecuteAuraDistribution struct {
	ReleaseID     string
	AssetSource   string
	DDEXProfile   string
	E2EScope      string
	MetadataAudit string
	BlockchainTag string
}

// GenerateStrategicBriefing requests an audio briefing. The synthesis
// round trip happens outside the fold; the fold only records the request.
type GenerateStrategicBriefing struct {
	Title       string
	Summary     string
	MissionName string
}

// InitiateNegotiation overwrites the singleton active negotiation.
type InitiateNegotiation struct {
	Counterparty string
	DealType     string
	CurrentOffer string
}

// RunViralOpportunityScan updates the descriptive viral-signal state.
type RunViralOpportunityScan struct {
	Location       string
	MissionName    string
	ShazamVelocity float64
	TikTokMomentum float64
}

func (IssueMandate) isInstruction()              {}
func (UpdateComplianceStatus) isInstruction()    {}
func (ManageRollout) isInstruction()             {}
func (UpdateAssetMetadata) isInstruction()       {}
func (RegenerateAssetID) isInstruction()         {}
func (ManageAccessibility) isInstruction()       {}
func (ExecuteAuraDistribution) isInstruction()   {}
func (GenerateStrategicBriefing) isInstruction() {}
func (InitiateNegotiation) isInstruction()       {}
func (RunViralOpportunityScan) isInstruction()   {}

// #endregion instructions

// #region outcome

// BriefingRequest asks the engine to run audio synthesis after the fold.
type BriefingRequest struct {
	Title   string
	Summary string
}

// Outcome is the single atomic result of folding one turn's batch:
// one patch, the pending mandate if proposed, the briefing request if
// any, and whether the batch was transaction-executing (which decides
// the settlement receipt on the outgoing message).
type Outcome struct {
	Patch               metrics.Patch
	Mandate             *Mandate
	Briefing            *BriefingRequest
	TransactionExecuted bool
}

// #endregion outcome
