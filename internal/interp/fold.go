package interp

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/linkz-dao/linkz-controller/internal/metrics"
)

// #region fold

// Fold applies one turn's instruction batch, in gateway order, against a
// working copy of the snapshot and returns a single Outcome. Nothing is
// visible mid-turn: the caller applies Outcome.Patch to the store once,
// at the end of the turn. now is the turn's base timestamp in unix
// milliseconds; log entries within the batch get small offsets from it
// to keep display order stable.
func Fold(s metrics.Snapshot, batch []Instruction, now int64) Outcome {
	f := &folder{w: s.Clone(), now: now}

	for _, ins := range batch {
		switch ins := ins.(type) {
		case IssueMandate:
			f.issueMandate(ins)
		case UpdateComplianceStatus:
			f.updateCompliance(ins)
		case ManageRollout:
			f.manageRollout(ins)
		case UpdateAssetMetadata:
			f.updateMetadata(ins)
		case RegenerateAssetID:
			f.regenerateAssetID(ins)
		case ManageAccessibility:
			f.manageAccessibility(ins)
		case ExecuteAuraDistribution:
			f.executeAura(ins)
		case GenerateStrategicBriefing:
			f.generateBriefing(ins)
		case InitiateNegotiation:
			f.initiateNegotiation(ins)
		case RunViralOpportunityScan:
			f.viralScan(ins)
		}
	}

	return f.out
}

// #endregion fold

// #region folder

type folder struct {
	w   metrics.Snapshot
	out Outcome
	now int64
	off int64
}

func (f *folder) log(text string, typ metrics.LogType) {
	f.out.Patch.AppendLogs = append(f.out.Patch.AppendLogs, metrics.NewLog(text, typ, f.now+f.off))
	f.off += 50
}

func (f *folder) setEquity(v float64) {
	f.w.ProjectedEquity = v
	f.out.Patch.ProjectedEquity = metrics.Ptr(v)
}

// #endregion folder

// #region handlers

func (f *folder) issueMandate(ins IssueMandate) {
	name := ins.ActionName
	if name == "" {
		name = "EXECUTE_PROTOCOL"
	}
	urgency := ins.Urgency
	if urgency == "" {
		urgency = UrgencyMedium
	}
	f.out.Mandate = &Mandate{
		ID:         uuid.New().String(),
		ActionName: name,
		Urgency:    urgency,
		Executed:   false,
	}
	f.log(fmt.Sprintf("Mandate Proposal: %s", name), metrics.LogWarning)
}

func (f *folder) updateCompliance(ins UpdateComplianceStatus) {
	f.w.DDEXCompliance = ins.Status
	f.out.Patch.DDEXCompliance = metrics.Ptr(ins.Status)

	srmNote := ""
	if ins.SRMStatus != "" {
		f.w.SRMStatus = ins.SRMStatus
		f.out.Patch.SRMStatus = metrics.Ptr(ins.SRMStatus)
		srmNote = fmt.Sprintf(" | SRM: %s", ins.SRMStatus)
	}

	typ := metrics.LogError
	if ins.Status == metrics.ComplianceVerified {
		typ = metrics.LogSuccess
	}
	f.log(fmt.Sprintf("Compliance Update: %s%s", ins.Status, srmNote), typ)
	f.out.TransactionExecuted = true
}

func (f *folder) manageRollout(ins ManageRollout) {
	switch ins.Action {
	case RolloutStart, RolloutUpdate:
		pct := 1
		if ins.Percentage != nil {
			pct = *ins.Percentage
		}
		f.w.RolloutState = metrics.RolloutState{Status: metrics.RolloutActive, Percentage: pct}
		f.out.Patch.Rollout = &metrics.RolloutPatch{
			Status:     metrics.Ptr(metrics.RolloutActive),
			Percentage: metrics.Ptr(pct),
		}

		dist := metrics.DistributionLivePhased
		if pct >= 100 {
			dist = metrics.DistributionLiveGlobal
		}
		f.w.DistributionStatus = dist
		f.out.Patch.DistributionStatus = metrics.Ptr(dist)

		f.setEquity(f.w.ProjectedEquity + float64(pct)*5)
		f.log(fmt.Sprintf("Rollout Velocity: %d%%", pct), metrics.LogInfo)
		f.out.TransactionExecuted = true

	case RolloutHalt:
		// Halt freezes the machine; percentage is preserved untouched.
		f.w.RolloutState.Status = metrics.RolloutHalted
		f.out.Patch.Rollout = &metrics.RolloutPatch{
			Status: metrics.Ptr(metrics.RolloutHalted),
		}
		f.log("ROLLOUT HALTED: SAFETY TRIPWIRE", metrics.LogError)
		f.out.TransactionExecuted = true

	default:
		// Unknown action: strict no-op, no log, not transaction-executing.
	}
}

func (f *folder) updateMetadata(ins UpdateAssetMetadata) {
	fields := ins.Fields
	f.w = metrics.Apply(f.w, metrics.Patch{Metadata: &fields})
	if f.out.Patch.Metadata == nil {
		f.out.Patch.Metadata = &metrics.MetadataPatch{}
	}
	mergeMetadata(f.out.Patch.Metadata, &fields)

	f.setEquity(f.w.ProjectedEquity + 150)
	f.log("Metadata Patched & Optimized", metrics.LogSuccess)
	f.out.TransactionExecuted = true
}

func (f *folder) regenerateAssetID(RegenerateAssetID) {
	id := NewAssetID()
	f.w.AssetID = id
	f.out.Patch.AssetID = metrics.Ptr(id)
	f.log(fmt.Sprintf("New Asset ID Generated: %s", id), metrics.LogInfo)
	f.out.TransactionExecuted = true
}

func (f *folder) manageAccessibility(ins ManageAccessibility) {
	switch ins.Action {
	case AccessibilityActivateAPI:
		st := metrics.AccessibilityState{Status: "Compliant", ScreenReaderAPI: "Active", WCAGScore: 100}
		f.w.AccessibilityState = st
		f.out.Patch.Accessibility = &metrics.AccessibilityPatch{
			Status:          metrics.Ptr(st.Status),
			ScreenReaderAPI: metrics.Ptr(st.ScreenReaderAPI),
			WCAGScore:       metrics.Ptr(st.WCAGScore),
		}
		f.setEquity(f.w.ProjectedEquity + 500)
		f.log("Screen Reader API: ACTIVE", metrics.LogSuccess)
		f.log("WCAG 3.0 Compliance: 100%", metrics.LogSuccess)
		f.out.TransactionExecuted = true

	case AccessibilityRunAudit:
		// Deterministic failing snapshot for remediation demos.
		st := metrics.AccessibilityState{Status: "Non-Compliant", ScreenReaderAPI: "Inactive", WCAGScore: 65}
		f.w.AccessibilityState = st
		f.out.Patch.Accessibility = &metrics.AccessibilityPatch{
			Status:          metrics.Ptr(st.Status),
			ScreenReaderAPI: metrics.Ptr(st.ScreenReaderAPI),
			WCAGScore:       metrics.Ptr(st.WCAGScore),
		}
		f.log("Accessibility Audit Failed (Score: 65)", metrics.LogError)
		f.out.TransactionExecuted = true
	}
}

func (f *folder) executeAura(ins ExecuteAuraDistribution) {
	if ins.ReleaseID != "" {
		f.w.AssetID = ins.ReleaseID
		f.out.Patch.AssetID = metrics.Ptr(ins.ReleaseID)
	}
	f.w.DistributionStatus = metrics.DistributionLiveGlobal
	f.out.Patch.DistributionStatus = metrics.Ptr(metrics.DistributionLiveGlobal)
	f.w.SynergyScore = 1.0
	f.out.Patch.SynergyScore = metrics.Ptr(1.0)
	f.w.SRMStatus = metrics.SRMSecure
	f.out.Patch.SRMStatus = metrics.Ptr(metrics.SRMSecure)
	f.w.DDEXCompliance = metrics.ComplianceVerified
	f.out.Patch.DDEXCompliance = metrics.Ptr(metrics.ComplianceVerified)
	f.w.PitchingStatus = "Active (Editorial)"
	f.out.Patch.PitchingStatus = metrics.Ptr("Active (Editorial)")

	profile := metrics.AuraProfile{
		Active:        true,
		ReleaseID:     ins.ReleaseID,
		DDEXProfile:   ins.DDEXProfile,
		E2EScope:      ins.E2EScope,
		BlockchainTag: ins.BlockchainTag,
	}
	f.w.AuraProfile = profile
	f.out.Patch.AuraProfile = &profile

	src := ins.AssetSource
	if len(src) > 25 {
		src = src[:25]
	}
	f.log("AURA-DDEX-CLI: Initializing E2E Workflow...", metrics.LogInfo)
	f.log(fmt.Sprintf("Connecting SFTP: %s...", src), metrics.LogInfo)
	f.log(fmt.Sprintf("DDEX Profile Loaded: %s", ins.DDEXProfile), metrics.LogInfo)
	f.log(fmt.Sprintf("Audit: %s [PASSED]", ins.MetadataAudit), metrics.LogSuccess)
	f.log(fmt.Sprintf("Provenance: %s [MINTED]", ins.BlockchainTag), metrics.LogSuccess)
	f.log(fmt.Sprintf("DISTRIBUTION DEPLOYED: %s", ins.E2EScope), metrics.LogSuccess)
	f.out.TransactionExecuted = true
}

func (f *folder) generateBriefing(ins GenerateStrategicBriefing) {
	title := ins.Title
	if title == "" {
		title = "Strategic Briefing"
	}
	f.out.Briefing = &BriefingRequest{Title: title, Summary: ins.Summary}
	if ins.MissionName != "" {
		f.w.ActiveMission = ins.MissionName
		f.out.Patch.ActiveMission = metrics.Ptr(ins.MissionName)
	}
	f.log(fmt.Sprintf("Compiling Strategic Briefing: %s", title), metrics.LogAlpha)
	f.out.TransactionExecuted = true
}

func (f *folder) initiateNegotiation(ins InitiateNegotiation) {
	n := metrics.Negotiation{
		Counterparty: ins.Counterparty,
		DealType:     ins.DealType,
		CurrentOffer: ins.CurrentOffer,
		Status:       "Negotiating",
	}
	// Singleton: any prior negotiation is overwritten, no history kept.
	f.w.ActiveNegotiation = &n
	f.out.Patch.ActiveNegotiation = &n
	f.log(fmt.Sprintf("Negotiation Initiated: %s (%s)", ins.Counterparty, ins.DealType), metrics.LogInfo)
	f.out.TransactionExecuted = true
}

func (f *folder) viralScan(ins RunViralOpportunityScan) {
	status := "Rising"
	if ins.ShazamVelocity > 1.2 && ins.TikTokMomentum > 50 {
		status = "Spiking"
	}
	f.w.ViralStatus = status
	f.out.Patch.ViralStatus = metrics.Ptr(status)

	mission := ins.MissionName
	if mission == "" && ins.Location != "" {
		mission = fmt.Sprintf("Operation: %s Surge", ins.Location)
	}
	if mission != "" {
		f.w.ActiveMission = mission
		f.out.Patch.ActiveMission = metrics.Ptr(mission)
	}

	signal := metrics.ViralSignal{
		ShazamVelocity: ins.ShazamVelocity,
		TikTokMomentum: ins.TikTokMomentum,
		Location:       ins.Location,
		Hotspots: []metrics.MarketHotspot{
			{ID: "h1", X: 75, Y: 65, Label: ins.Location, Intensity: "HIGH"},
			{ID: "h2", X: 48, Y: 25, Label: "London", Intensity: "MEDIUM"},
		},
	}
	f.w.ViralSignal = &signal
	f.out.Patch.ViralSignal = &signal

	f.log(fmt.Sprintf("Viral Opportunity Scan: %s [%s]", ins.Location, status), metrics.LogAlpha)
	f.out.TransactionExecuted = true
}

// #endregion handlers

// #region helpers

// NewAssetID generates a LINKZ-##### asset id with five random digits.
func NewAssetID() string {
	return fmt.Sprintf("LINKZ-%d", rand.IntN(90000)+10000)
}

func mergeMetadata(dst, src *metrics.MetadataPatch) {
	if src.Title != nil {
		dst.Title = src.Title
	}
	if src.Artist != nil {
		dst.Artist = src.Artist
	}
	if src.ISRC != nil {
		dst.ISRC = src.ISRC
	}
	if src.Label != nil {
		dst.Label = src.Label
	}
	if src.Genre != nil {
		dst.Genre = src.Genre
	}
	if src.Mood != nil {
		dst.Mood = src.Mood
	}
	if src.ProductionQuality != nil {
		dst.ProductionQuality = src.ProductionQuality
	}
}

// #endregion helpers
