package metrics

import (
	"fmt"
	"regexp"
)

// #region violations

// Violation names one failed cross-field invariant.
type Violation struct {
	Field  string
	Reason string
}

var assetIDPattern = regexp.MustCompile(`^LINKZ-\d{5}$`)

// Validate checks the snapshot's cross-field invariants and returns every
// violation found. An empty result means the snapshot is well-formed.
func Validate(s Snapshot) []Violation {
	var out []Violation

	if s.AssetID != SentinelAssetID && !assetIDPattern.MatchString(s.AssetID) {
		out = append(out, Violation{
			Field:  "currentAssetId",
			Reason: fmt.Sprintf("%q matches neither LINKZ-##### nor the regeneration sentinel", s.AssetID),
		})
	}
	if s.SynergyScore < 0 || s.SynergyScore > 1 {
		out = append(out, Violation{
			Field:  "synergyScore",
			Reason: fmt.Sprintf("%.4f outside [0,1]", s.SynergyScore),
		})
	}
	if s.ProjectedEquity < 0 {
		out = append(out, Violation{
			Field:  "projectedEquity",
			Reason: fmt.Sprintf("%.2f is negative", s.ProjectedEquity),
		})
	}
	if len(s.SystemLogs) > MaxSystemLogs {
		out = append(out, Violation{
			Field:  "systemLogs",
			Reason: fmt.Sprintf("%d entries exceed ring capacity %d", len(s.SystemLogs), MaxSystemLogs),
		})
	}
	if len(s.Briefings) > MaxBriefings {
		out = append(out, Violation{
			Field:  "briefings",
			Reason: fmt.Sprintf("%d briefings exceed cap %d", len(s.Briefings), MaxBriefings),
		})
	}
	if p := s.RolloutState.Percentage; p < 0 || p > 100 {
		out = append(out, Violation{
			Field:  "rolloutState.percentage",
			Reason: fmt.Sprintf("%d outside [0,100]", p),
		})
	}
	if w := s.AccessibilityState.WCAGScore; w < 0 || w > 100 {
		out = append(out, Violation{
			Field:  "accessibilityState.wcagScore",
			Reason: fmt.Sprintf("%d outside [0,100]", w),
		})
	}

	// Phased distribution and rollout must agree: Live (Phased) is only
	// ever produced by a rollout, so it implies Active with
	// percentage > 0, or Completed. A halted rollout keeps its pre-halt
	// percentage and the distribution stays Live, so Halted with a
	// non-zero percentage also counts. Live (Global) is exempt: the aura
	// override and mandate execution both set it without touching
	// rollout.
	rolloutLive := (s.RolloutState.Status == RolloutActive && s.RolloutState.Percentage > 0) ||
		(s.RolloutState.Status == RolloutHalted && s.RolloutState.Percentage > 0) ||
		s.RolloutState.Status == RolloutCompleted
	if s.DistributionStatus == DistributionLivePhased && !rolloutLive {
		out = append(out, Violation{
			Field:  "distributionStatus",
			Reason: fmt.Sprintf("%s with rollout %s/%d%%", s.DistributionStatus, s.RolloutState.Status, s.RolloutState.Percentage),
		})
	}
	if !s.DistributionStatus.Live() && rolloutLive {
		out = append(out, Violation{
			Field:  "rolloutState",
			Reason: fmt.Sprintf("rollout %s/%d%% without a Live distribution", s.RolloutState.Status, s.RolloutState.Percentage),
		})
	}

	return out
}

// #endregion violations
