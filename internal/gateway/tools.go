package gateway

import "google.golang.org/genai"

// #region declarations

// toolDeclarations declares the closed instruction set to the model.
// Names and argument schemas must stay in sync with interp.Decode.
func toolDeclarations() []*genai.Tool {
	return []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{
		{
			Name:        "issueMandate",
			Description: "Trigger a strategic deployment mandate when synergy conditions are met.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"actionName": {
						Type:        genai.TypeString,
						Description: `The short name of the action to execute (e.g., "DEPLOY_SMART_CONTRACT", "INITIATE_PITCH").`,
					},
					"urgency": {
						Type:        genai.TypeString,
						Enum:        []string{"LOW", "MEDIUM", "CRITICAL"},
						Description: "The urgency level of this mandate.",
					},
				},
				Required: []string{"actionName", "urgency"},
			},
		},
		{
			Name:        "updateComplianceStatus",
			Description: "Updates the DDEX compliance and SRM (Strategic Rights Management) status based on asset analysis.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"status": {
						Type:        genai.TypeString,
						Enum:        []string{"Verified", "Pending", "Failed"},
						Description: "The determined compliance status of the asset.",
					},
					"srmStatus": {
						Type:        genai.TypeString,
						Enum:        []string{"Secure", "Pending", "Flagged"},
						Description: "The Strategic Rights Management status.",
					},
					"violationSummary": {
						Type:        genai.TypeString,
						Description: `A brief summary of the primary violation if Failed (e.g. "Invalid ISRC format").`,
					},
				},
				Required: []string{"status"},
			},
		},
		{
			Name:        "manageRollout",
			Description: "Manages the phased distribution rollout protocol.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"action": {
						Type:        genai.TypeString,
						Enum:        []string{"START", "UPDATE", "HALT"},
						Description: "Action to perform on the rollout.",
					},
					"percentage": {
						Type:        genai.TypeNumber,
						Description: "The target percentage for the rollout (0-100). Required for START and UPDATE.",
					},
				},
				Required: []string{"action"},
			},
		},
		{
			Name:        "updateAssetMetadata",
			Description: "Updates specific metadata fields for the current asset to ensure DDEX compliance or store analysis results.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":             {Type: genai.TypeString, Description: "The track title."},
					"artist":            {Type: genai.TypeString, Description: "The performing artist."},
					"isrc":              {Type: genai.TypeString, Description: "The International Standard Recording Code."},
					"label":             {Type: genai.TypeString, Description: "The record label."},
					"genre":             {Type: genai.TypeString, Description: "The primary genre."},
					"mood":              {Type: genai.TypeString, Description: "The mood of the track (e.g. Energetic, Melancholic)."},
					"productionQuality": {Type: genai.TypeString, Description: "Assessment of production quality (e.g. Demo, Professional, High Fidelity)."},
				},
			},
		},
		{
			Name:        "regenerateAssetId",
			Description: "Regenerates the Asset ID if the current one is invalid or upon user request.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"reason": {
						Type:        genai.TypeString,
						Description: `Reason for regeneration (e.g., "Invalid Format", "User Request").`,
					},
				},
			},
		},
		{
			Name:        "manageAccessibility",
			Description: "Manages the Accessible Screen Reader API and WCAG compliance checks.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"action": {
						Type:        genai.TypeString,
						Enum:        []string{"ACTIVATE_API", "RUN_AUDIT"},
						Description: "Activate the Screen Reader API or run a WCAG compliance audit.",
					},
				},
				Required: []string{"action"},
			},
		},
		{
			Name:        "executeAuraDistribution",
			Description: "Executes the AURA-DDEX end-to-end distribution workflow from a CLI-style command. Manual override: bypasses the readiness gate.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"releaseId":     {Type: genai.TypeString, Description: "Release identifier for the distribution."},
					"assetSource":   {Type: genai.TypeString, Description: "Source URI of the release assets (e.g. sftp://...)."},
					"ddexProfile":   {Type: genai.TypeString, Description: "DDEX ERN profile string."},
					"e2eScope":      {Type: genai.TypeString, Description: "End-to-end distribution scope (e.g. GLOBAL_TIER1)."},
					"metadataAudit": {Type: genai.TypeString, Description: "Metadata audit mode."},
					"blockchainTag": {Type: genai.TypeString, Description: "Provenance tag configuration."},
				},
			},
		},
		{
			Name:        "generateStrategicBriefing",
			Description: "Compiles a high-fidelity strategic briefing with synthesized audio narration.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":       {Type: genai.TypeString, Description: "Briefing headline."},
					"summary":     {Type: genai.TypeString, Description: "Visionary, high-stakes briefing text to narrate."},
					"missionName": {Type: genai.TypeString, Description: "Suggested Alpha Mission name."},
				},
				Required: []string{"title", "summary"},
			},
		},
		{
			Name:        "initiateNegotiation",
			Description: "Starts a simulated contract negotiation with a counterparty. Replaces any active negotiation.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"counterparty": {Type: genai.TypeString, Description: "Brand, label or festival name."},
					"dealType":     {Type: genai.TypeString, Enum: []string{"Sync", "Brand", "Collaboration"}, Description: "Type of the deal flow."},
					"currentOffer": {Type: genai.TypeString, Description: "Opening offer description."},
				},
				Required: []string{"counterparty", "dealType"},
			},
		},
		{
			Name:        "runViralOpportunityScan",
			Description: "Scans social signals for geographic breakout opportunities and updates the viral status board.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"location":       {Type: genai.TypeString, Description: "Breakout region identified by the scan."},
					"missionName":    {Type: genai.TypeString, Description: "Tactical mission name for the opportunity."},
					"shazamVelocity": {Type: genai.TypeNumber, Description: "Shazam velocity growth multiplier."},
					"tikTokMomentum": {Type: genai.TypeNumber, Description: "New UGC videos per hour."},
				},
				Required: []string{"location"},
			},
		},
	}}}
}

// #endregion declarations
