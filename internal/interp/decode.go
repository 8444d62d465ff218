package interp

import "github.com/linkz-dao/linkz-controller/internal/metrics"

// #region raw-call

// RawCall is a named tool invocation as returned by the reasoning
// gateway, before it is mapped onto the closed instruction set.
type RawCall struct {
	Name string
	Args map[string]any
}

// #endregion raw-call

// #region decode

// Decode maps a raw gateway call onto an instruction. Unrecognized names
// return ok=false and are skipped silently: unknown instructions are a
// forward-compatibility case, not an error.
func Decode(c RawCall) (Instruction, bool) {
	switch c.Name {
	case "issueMandate":
		return IssueMandate{
			ActionName: str(c.Args, "actionName"),
			Urgency:    decodeUrgency(str(c.Args, "urgency")),
		}, true

	case "updateComplianceStatus":
		return UpdateComplianceStatus{
			Status:           metrics.Compliance(str(c.Args, "status")),
			SRMStatus:        metrics.SRMStatus(str(c.Args, "srmStatus")),
			ViolationSummary: str(c.Args, "violationSummary"),
		}, true

	case "manageRollout":
		ins := ManageRollout{Action: RolloutAction(str(c.Args, "action"))}
		if v, ok := num(c.Args, "percentage"); ok {
			pct := int(v)
			ins.Percentage = &pct
		}
		return ins, true

	case "updateAssetMetadata":
		return UpdateAssetMetadata{Fields: metrics.MetadataPatch{
			Title:             strPtr(c.Args, "title"),
			Artist:            strPtr(c.Args, "artist"),
			ISRC:              strPtr(c.Args, "isrc"),
			Label:             strPtr(c.Args, "label"),
			Genre:             strPtr(c.Args, "genre"),
			Mood:              strPtr(c.Args, "mood"),
			ProductionQuality: strPtr(c.Args, "productionQuality"),
		}}, true

	case "regenerateAssetId":
		return RegenerateAssetID{Reason: str(c.Args, "reason")}, true

	case "manageAccessibility":
		return ManageAccessibility{Action: AccessibilityAction(str(c.Args, "action"))}, true

	case "executeAuraDistribution":
		return ExecuteAuraDistribution{
			ReleaseID:     str(c.Args, "releaseId"),
			AssetSource:   str(c.Args, "assetSource"),
			DDEXProfile:   str(c.Args, "ddexProfile"),
			E2EScope:      str(c.Args, "e2eScope"),
			MetadataAudit: str(c.Args, "metadataAudit"),
			BlockchainTag: str(c.Args, "blockchainTag"),
		}, true

	case "generateStrategicBriefing":
		return GenerateStrategicBriefing{
			Title:       str(c.Args, "title"),
			Summary:     str(c.Args, "summary"),
			MissionName: str(c.Args, "missionName"),
		}, true

	case "initiateNegotiation":
		return InitiateNegotiation{
			Counterparty: str(c.Args, "counterparty"),
			DealType:     str(c.Args, "dealType"),
			CurrentOffer: str(c.Args, "currentOffer"),
		}, true

	case "runViralOpportunityScan":
		vel, _ := num(c.Args, "shazamVelocity")
		mom, _ := num(c.Args, "tikTokMomentum")
		return RunViralOpportunityScan{
			Location:       str(c.Args, "location"),
			MissionName:    str(c.Args, "missionName"),
			ShazamVelocity: vel,
			TikTokMomentum: mom,
		}, true
	}

	return nil, false
}

// DecodeBatch maps a batch of raw calls, preserving order and dropping
// unrecognized names.
func DecodeBatch(calls []RawCall) []Instruction {
	out := make([]Instruction, 0, len(calls))
	for _, c := range calls {
		if ins, ok := Decode(c); ok {
			out = append(out, ins)
		}
	}
	return out
}

func decodeUrgency(v string) Urgency {
	switch Urgency(v) {
	case UrgencyLow, UrgencyMedium, UrgencyCritical:
		return Urgency(v)
	}
	return UrgencyMedium
}

// #endregion decode

// #region arg-helpers

func str(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func strPtr(args map[string]any, key string) *string {
	if v, ok := args[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

// num reads a numeric argument. JSON unmarshals numbers as float64, but
// injected test args may be int.
func num(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// #endregion arg-helpers
