// Package lock holds the deployment gate derivation rule. The lock field
// is computed from the metric snapshot and never written directly by the
// interpreter; the store re-derives it after every non-lock commit.
package lock

import "github.com/linkz-dao/linkz-controller/internal/metrics"

// #region thresholds

// ArmingSynergyThreshold is the minimum synergy score for ARMED.
const ArmingSynergyThreshold = 0.90

// #endregion thresholds

// #region derive

// Derive computes the tri-state deployment gate from a snapshot.
//
//  1. Any Live distribution wins: DEPLOYED, regardless of every other
//     metric. Once live the gate never falls back, even if metrics regress.
//  2. Otherwise ARMED requires all four readiness checks at once.
//  3. Otherwise LOCKED.
func Derive(s metrics.Snapshot) metrics.LockState {
	if s.DistributionStatus.Live() {
		return metrics.LockDeployed
	}

	armed := s.SynergyScore >= ArmingSynergyThreshold &&
		s.DDEXCompliance == metrics.ComplianceVerified &&
		s.SRMStatus == metrics.SRMSecure &&
		s.AccessibilityState.ScreenReaderAPI == "Active"
	if armed {
		return metrics.LockArmed
	}

	return metrics.LockLocked
}

// Blocked reports whether the gate refuses privileged actions (mandate
// execution, payouts). Only LOCKED is a hard block; ARMED and DEPLOYED
// both permit execution.
func Blocked(s metrics.Snapshot) bool {
	return Derive(s) == metrics.LockLocked
}

// #endregion derive
