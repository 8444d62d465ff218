package metrics

import (
	"fmt"
	"time"
)

// #region ingest

// IngestAudio builds the patch for a newly uploaded audio asset. A new
// asset can never inherit the previous asset's clearance: compliance and
// SRM both reset to Pending regardless of their prior values. Synergy
// gets a demo nudge, capped below the arming threshold.
func IngestAudio(s Snapshot, filename string) Patch {
	synergy := s.SynergyScore + 0.1
	if synergy > 0.95 {
		synergy = 0.95
	}
	now := time.Now().UnixMilli()
	return Patch{
		AssetName:      Ptr(filename),
		SynergyScore:   Ptr(synergy),
		DDEXCompliance: Ptr(CompliancePending),
		SRMStatus:      Ptr(SRMPending),
		AppendLogs: []LogEntry{
			NewLog(fmt.Sprintf("Audio Asset Ingested: %s", filename), LogSuccess, now),
			NewLog("Triggering Deep-Scan Analysis...", LogInfo, now+50),
		},
	}
}

// #endregion ingest
