package metrics

import "time"

// #region default

// Default returns the boot snapshot for a fresh session: no asset yet,
// mid synergy, everything pending except DDEX which boots Verified, and
// the four-line boot log.
func Default() Snapshot {
	now := time.Now().UnixMilli()
	return Snapshot{
		AssetID:            SentinelAssetID,
		AssetName:          "Pending Upload...",
		SynergyScore:       0.72,
		DistributionStatus: DistributionOffline,
		DDEXCompliance:     ComplianceVerified,
		SRMStatus:          SRMPending,
		PitchingStatus:     "Idle",
		ActiveMission:      "Standby",
		ViralStatus:        "Stable",
		RolloutState:       RolloutState{Status: RolloutIdle, Percentage: 0},
		AccessibilityState: AccessibilityState{
			Status:          "Pending",
			ScreenReaderAPI: "Inactive",
			WCAGScore:       0,
		},
		Metadata: AssetMetadata{
			Title:             "Untitled Track",
			Artist:            "Unknown Artist",
			ISRC:              "Pending Generation",
			Label:             "LinkZ DAO Records",
			Genre:             "Unclassified",
			Mood:              "Pending Analysis",
			ProductionQuality: "Pending Analysis",
		},
		SystemLogs: []LogEntry{
			{ID: "boot-1", Text: "Initializing AURA Tech Kernel v3.5 Alpha...", Type: LogInfo, Timestamp: now},
			{ID: "boot-2", Text: "Connecting to Cloud Run MCP...", Type: LogInfo, Timestamp: now + 100},
			{ID: "boot-3", Text: "Synergy Radar Online", Type: LogSuccess, Timestamp: now + 200},
			{ID: "boot-4", Text: "Predictive Alpha Engine: SCANNING", Type: LogAlpha, Timestamp: now + 300},
		},
		ProjectedEquity: 1250.00,
		LockState:       LockLocked,
		AuraProfile:     AuraProfile{Active: false},
		Briefings:       []Briefing{},
	}
}

// #endregion default
