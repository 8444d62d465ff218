package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/linkz-dao/linkz-controller/internal/briefing"
	"github.com/linkz-dao/linkz-controller/internal/gateway"
	"github.com/linkz-dao/linkz-controller/internal/lock"
	"github.com/linkz-dao/linkz-controller/internal/metrics"
	"github.com/linkz-dao/linkz-controller/internal/profile"
	"github.com/linkz-dao/linkz-controller/internal/session"
)

// #region fixture

// scriptedGenerator replays canned responses in order.
type scriptedGenerator struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	calls     int
}

func (g *scriptedGenerator) GenerateContent(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	i := g.calls
	g.calls++
	if i < len(g.errs) && g.errs[i] != nil {
		return nil, g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return modelTurn("Acknowledged."), nil
}

func modelTurn(text string, calls ...*genai.FunctionCall) *genai.GenerateContentResponse {
	parts := []*genai.Part{{Text: text}}
	for _, c := range calls {
		parts = append(parts, &genai.Part{FunctionCall: c})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: parts},
		}},
	}
}

type harness struct {
	eng      *Engine
	sessions *session.Store
	gen      *scriptedGenerator
}

func newHarness(t *testing.T, gen *scriptedGenerator) *harness {
	t.Helper()
	sessions, err := session.NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	profiles, err := profile.NewStore(sessions.DB())
	if err != nil {
		t.Fatalf("profile store: %v", err)
	}

	store := metrics.NewStore(metrics.Default(), lock.Derive)
	gw := gateway.NewClientWithGenerator(gen, gateway.DefaultConfig())

	eng := New(Config{UserID: "op-1", DisplayName: "Operator"},
		store, sessions, profiles, gw, briefing.NewMockProvider(), zap.NewNop().Sugar())
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return &harness{eng: eng, sessions: sessions, gen: gen}
}

// #endregion fixture

func TestStartSeedsGreetingAndPersists(t *testing.T) {
	h := newHarness(t, &scriptedGenerator{})

	msgs := h.eng.Messages()
	if len(msgs) != 1 || msgs[0].Role != session.RoleModel {
		t.Fatalf("expected one model greeting, got %+v", msgs)
	}

	doc, found, err := h.sessions.Load("op-1")
	if err != nil || !found {
		t.Fatalf("load: %v found=%v", err, found)
	}
	if len(doc.Messages) != 1 || doc.Context == nil {
		t.Fatal("seed must persist ledger and snapshot")
	}
	if doc.Context.LockState != metrics.LockLocked {
		t.Fatalf("boot gate %s", doc.Context.LockState)
	}
}

func TestStartRestoresExistingSession(t *testing.T) {
	sessions, err := session.NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	defer sessions.Close()

	snap := metrics.Default()
	snap.ProjectedEquity = 9999
	if _, err := sessions.Save("op-1", session.Document{
		Messages: []session.Message{{ID: "m1", Role: session.RoleModel, Text: "restored"}},
		Context:  &snap,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	profiles, err := profile.NewStore(sessions.DB())
	if err != nil {
		t.Fatalf("profile store: %v", err)
	}
	store := metrics.NewStore(metrics.Default(), lock.Derive)
	eng := New(Config{UserID: "op-1", DisplayName: "Operator"},
		store, sessions, profiles,
		gateway.NewClientWithGenerator(&scriptedGenerator{}, gateway.DefaultConfig()),
		nil, zap.NewNop().Sugar())

	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := eng.Messages(); len(got) != 1 || got[0].Text != "restored" {
		t.Fatalf("ledger %+v", got)
	}
	if eng.Snapshot().ProjectedEquity != 9999 {
		t.Fatalf("snapshot not restored: %v", eng.Snapshot().ProjectedEquity)
	}
}

func TestSendTwoInstructionTurnCarriesReceipt(t *testing.T) {
	h := newHarness(t, &scriptedGenerator{responses: []*genai.GenerateContentResponse{
		modelTurn("Compliance verified and rollout started.",
			&genai.FunctionCall{Name: "updateComplianceStatus", Args: map[string]any{"status": "Verified", "srmStatus": "Secure"}},
			&genai.FunctionCall{Name: "manageRollout", Args: map[string]any{"action": "START", "percentage": float64(10)}},
		),
	}})

	msg, err := h.eng.Send(context.Background(), "verify and start at 10%", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if !strings.HasPrefix(msg.DLTHash, "0x") || len(msg.DLTHash) != 66 {
		t.Fatalf("transaction-executing turn must carry a receipt, got %q", msg.DLTHash)
	}

	snap := h.eng.Snapshot()
	if snap.DDEXCompliance != metrics.ComplianceVerified || snap.SRMStatus != metrics.SRMSecure {
		t.Fatalf("compliance %s / %s", snap.DDEXCompliance, snap.SRMStatus)
	}
	if snap.RolloutState.Percentage != 10 || snap.DistributionStatus != metrics.DistributionLivePhased {
		t.Fatalf("rollout %+v / %s", snap.RolloutState, snap.DistributionStatus)
	}
	if snap.ProjectedEquity != 1250+50 {
		t.Fatalf("equity %v", snap.ProjectedEquity)
	}
	// Live phased distribution derives DEPLOYED.
	if snap.LockState != metrics.LockDeployed {
		t.Fatalf("gate %s", snap.LockState)
	}

	// One user + one model message appended, persisted once.
	msgs := h.eng.Messages()
	if len(msgs) != 3 {
		t.Fatalf("ledger %d messages", len(msgs))
	}
	doc, _, err := h.sessions.Load("op-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Messages) != 3 {
		t.Fatalf("persisted ledger %d messages", len(doc.Messages))
	}
}

func TestSendLoneMandateHasNoReceipt(t *testing.T) {
	h := newHarness(t, &scriptedGenerator{responses: []*genai.GenerateContentResponse{
		modelTurn("Proposing the push.",
			&genai.FunctionCall{Name: "issueMandate", Args: map[string]any{"actionName": "HYPERDRIVE_PUSH", "urgency": "CRITICAL"}},
		),
	}})

	msg, err := h.eng.Send(context.Background(), "propose", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.DLTHash != "" {
		t.Fatal("a lone mandate proposal must not settle")
	}
	if msg.Mandate == nil || msg.Mandate.Executed {
		t.Fatalf("mandate %+v", msg.Mandate)
	}
}

func TestSendGatewayFailureKeepsUserMessage(t *testing.T) {
	h := newHarness(t, &scriptedGenerator{errs: []error{errors.New("unreachable")}})

	_, err := h.eng.Send(context.Background(), "hello?", nil)
	if err == nil {
		t.Fatal("expected the gateway error to surface")
	}

	msgs := h.eng.Messages()
	if len(msgs) != 3 {
		t.Fatalf("ledger %d messages", len(msgs))
	}
	if msgs[1].Role != session.RoleUser || msgs[1].Text != "hello?" {
		t.Fatalf("user message lost: %+v", msgs[1])
	}
	if msgs[2].Role != session.RoleSystem || !strings.Contains(msgs[2].Text, "SYSTEM FAULT") {
		t.Fatalf("expected system fault message, got %+v", msgs[2])
	}

	// Failure path still persists so the user message survives restart.
	doc, _, err := h.sessions.Load("op-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Messages) != 3 {
		t.Fatalf("persisted %d messages", len(doc.Messages))
	}
}

func TestSendAudioAttachmentIngestsBeforeGateway(t *testing.T) {
	h := newHarness(t, &scriptedGenerator{responses: []*genai.GenerateContentResponse{
		modelTurn("Analyzing the new asset."),
	}})

	att := gateway.Attachment{Name: "neon_skyline.wav", MIMEType: "audio/wav", Data: []byte{1}}
	if _, err := h.eng.Send(context.Background(), "here's the track", []gateway.Attachment{att}); err != nil {
		t.Fatalf("send: %v", err)
	}

	snap := h.eng.Snapshot()
	if snap.AssetName != "neon_skyline.wav" {
		t.Fatalf("asset name %q", snap.AssetName)
	}
	if snap.DDEXCompliance != metrics.CompliancePending || snap.SRMStatus != metrics.SRMPending {
		t.Fatalf("ingest must reset clearance: %s / %s", snap.DDEXCompliance, snap.SRMStatus)
	}

	msgs := h.eng.Messages()
	if msgs[1].Attachments == nil || msgs[1].Attachments.AudioName != "neon_skyline.wav" {
		t.Fatalf("attachment meta %+v", msgs[1].Attachments)
	}
}

func TestSendBriefingSynthesisAttachesAudio(t *testing.T) {
	h := newHarness(t, &scriptedGenerator{responses: []*genai.GenerateContentResponse{
		modelTurn("Compiling your briefing.",
			&genai.FunctionCall{Name: "generateStrategicBriefing", Args: map[string]any{
				"title": "Berlin Alpha", "summary": "Momentum is building.", "missionName": "Operation: Berlin Surge",
			}},
		),
	}})

	msg, err := h.eng.Send(context.Background(), "alpha", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Briefing == nil || msg.Briefing.Title != "Berlin Alpha" {
		t.Fatalf("briefing %+v", msg.Briefing)
	}
	if msg.Briefing.AudioBase64 == "" {
		t.Fatal("mock provider should attach audio")
	}

	snap := h.eng.Snapshot()
	if len(snap.Briefings) != 1 || snap.Briefings[0].ID != msg.Briefing.ID {
		t.Fatalf("briefings %+v", snap.Briefings)
	}
	if snap.ActiveMission != "Operation: Berlin Surge" {
		t.Fatalf("mission %q", snap.ActiveMission)
	}
}

// failingProvider always errors, standing in for a TTS outage.
type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }
func (failingProvider) Synthesize(context.Context, string) ([]byte, error) {
	return nil, errors.New("synthesis backend down")
}

func TestSendBriefingSynthesisFailureDropsBriefing(t *testing.T) {
	sessions, err := session.NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	defer sessions.Close()
	profiles, err := profile.NewStore(sessions.DB())
	if err != nil {
		t.Fatalf("profile store: %v", err)
	}

	gen := &scriptedGenerator{responses: []*genai.GenerateContentResponse{
		modelTurn("Compiling your briefing.",
			&genai.FunctionCall{Name: "generateStrategicBriefing", Args: map[string]any{
				"title": "Alpha", "summary": "Move now.",
			}},
		),
	}}
	eng := New(Config{UserID: "op-1", DisplayName: "Operator"},
		metrics.NewStore(metrics.Default(), lock.Derive), sessions, profiles,
		gateway.NewClientWithGenerator(gen, gateway.DefaultConfig()),
		failingProvider{}, zap.NewNop().Sugar())
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	msg, err := eng.Send(context.Background(), "alpha", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Briefing != nil {
		t.Fatalf("failed synthesis must drop the briefing, got %+v", msg.Briefing)
	}
	if msg.Text != "Compiling your briefing." {
		t.Fatalf("text reply must still ship, got %q", msg.Text)
	}
	if got := eng.Snapshot().Briefings; len(got) != 0 {
		t.Fatalf("snapshot must hold no briefing, got %+v", got)
	}
}

func TestSendDeliversReplyWhenPersistFails(t *testing.T) {
	h := newHarness(t, &scriptedGenerator{responses: []*genai.GenerateContentResponse{
		modelTurn("Directive received."),
	}})

	// A dead session store must not block the reply.
	h.sessions.Close()

	msg, err := h.eng.Send(context.Background(), "status?", nil)
	if err != nil {
		t.Fatalf("persistence failure must not surface to the caller: %v", err)
	}
	if msg.Text != "Directive received." {
		t.Fatalf("reply %q", msg.Text)
	}

	// The turn still landed in the in-memory ledger.
	msgs := h.eng.Messages()
	if len(msgs) != 3 || msgs[2].Text != "Directive received." {
		t.Fatalf("ledger %+v", msgs)
	}
}

func TestBriefingListCapsAtFive(t *testing.T) {
	gen := &scriptedGenerator{}
	for i := 0; i < 7; i++ {
		gen.responses = append(gen.responses, modelTurn("Briefing.",
			&genai.FunctionCall{Name: "generateStrategicBriefing", Args: map[string]any{
				"title": "B", "summary": "s",
			}},
		))
	}
	h := newHarness(t, gen)

	var lastID string
	for i := 0; i < 7; i++ {
		msg, err := h.eng.Send(context.Background(), "alpha", nil)
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		lastID = msg.Briefing.ID
	}

	snap := h.eng.Snapshot()
	if len(snap.Briefings) != metrics.MaxBriefings {
		t.Fatalf("expected %d briefings, got %d", metrics.MaxBriefings, len(snap.Briefings))
	}
	if snap.Briefings[0].ID != lastID {
		t.Fatal("newest briefing must be first")
	}
}

func TestExecuteMandateBlockedWhileLocked(t *testing.T) {
	h := newHarness(t, &scriptedGenerator{responses: []*genai.GenerateContentResponse{
		modelTurn("Proposing.",
			&genai.FunctionCall{Name: "issueMandate", Args: map[string]any{"actionName": "PUSH", "urgency": "LOW"}},
		),
	}})

	msg, err := h.eng.Send(context.Background(), "propose", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	_, err = h.eng.ExecuteMandate(context.Background(), msg.ID)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	// The mandate stays pending for a later retry.
	msgs := h.eng.Messages()
	if msgs[len(msgs)-1].Mandate == nil || msgs[len(msgs)-1].Mandate.Executed {
		t.Fatal("refused mandate must stay pending")
	}
}

func TestExecuteMandateFullFlow(t *testing.T) {
	h := newHarness(t, &scriptedGenerator{responses: []*genai.GenerateContentResponse{
		modelTurn("First master ingested."),
		modelTurn("Revised master ingested."),
		modelTurn("Arming.",
			&genai.FunctionCall{Name: "updateComplianceStatus", Args: map[string]any{"status": "Verified", "srmStatus": "Secure"}},
			&genai.FunctionCall{Name: "manageAccessibility", Args: map[string]any{"action": "ACTIVATE_API"}},
		),
		modelTurn("Proposing.",
			&genai.FunctionCall{Name: "issueMandate", Args: map[string]any{"actionName": "HYPERDRIVE_PUSH", "urgency": "CRITICAL"}},
		),
	}})

	// Synergy boots at 0.72; two uploads nudge it to 0.92, over the
	// arming threshold.
	att := gateway.Attachment{Name: "master.wav", MIMEType: "audio/wav", Data: []byte{1}}
	for _, text := range []string{"first master", "revised master"} {
		if _, err := h.eng.Send(context.Background(), text, []gateway.Attachment{att}); err != nil {
			t.Fatalf("ingest turn: %v", err)
		}
	}
	if _, err := h.eng.Send(context.Background(), "verify and activate", nil); err != nil {
		t.Fatalf("arm turn: %v", err)
	}
	msg, err := h.eng.Send(context.Background(), "propose the push", nil)
	if err != nil {
		t.Fatalf("propose turn: %v", err)
	}
	if h.eng.Snapshot().LockState != metrics.LockArmed {
		t.Fatalf("gate should be ARMED before execution, got %s", h.eng.Snapshot().LockState)
	}

	before := h.eng.Snapshot().ProjectedEquity
	confirm, err := h.eng.ExecuteMandate(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if confirm.Role != session.RoleSystem || confirm.DLTHash == "" {
		t.Fatalf("confirmation %+v", confirm)
	}

	snap := h.eng.Snapshot()
	if snap.SynergyScore != 1.0 {
		t.Fatalf("synergy %v", snap.SynergyScore)
	}
	if snap.DistributionStatus != metrics.DistributionLiveGlobal {
		t.Fatalf("distribution %s", snap.DistributionStatus)
	}
	if snap.PitchingStatus != "Active (Editorial)" {
		t.Fatalf("pitching %q", snap.PitchingStatus)
	}
	if snap.ProjectedEquity != before+2500 {
		t.Fatalf("equity %v", snap.ProjectedEquity)
	}
	if snap.LockState != metrics.LockDeployed {
		t.Fatalf("gate %s", snap.LockState)
	}

	// The executed flag flips exactly once.
	if _, err := h.eng.ExecuteMandate(context.Background(), msg.ID); !errors.Is(err, ErrNoMandate) {
		t.Fatalf("second execution must fail with ErrNoMandate, got %v", err)
	}
}

func TestAuraOverrideBypassesGate(t *testing.T) {
	h := newHarness(t, &scriptedGenerator{responses: []*genai.GenerateContentResponse{
		modelTurn("Overriding.",
			&genai.FunctionCall{Name: "executeAuraDistribution", Args: map[string]any{
				"releaseId": "LINKZ-70001", "assetSource": "sftp://drop", "ddexProfile": "ERN 4.3",
				"e2eScope": "Global DSP Network", "metadataAudit": "Full Schema", "blockchainTag": "0xAURA",
			}},
		),
	}})

	if h.eng.Snapshot().LockState != metrics.LockLocked {
		t.Fatal("fixture should start LOCKED")
	}

	msg, err := h.eng.Send(context.Background(), "force it out", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.DLTHash == "" {
		t.Fatal("aura override settles")
	}

	snap := h.eng.Snapshot()
	if snap.LockState != metrics.LockDeployed {
		t.Fatalf("aura bypass must end DEPLOYED, got %s", snap.LockState)
	}
	if !snap.AuraProfile.Active {
		t.Fatal("aura profile must be active")
	}
}

func TestPayoutClampsAtBalance(t *testing.T) {
	h := newHarness(t, &scriptedGenerator{})

	// Boot equity is 1250; over-asking pays out the remainder.
	tx, err := h.eng.Payout(context.Background(), 99999)
	if err != nil {
		t.Fatalf("payout: %v", err)
	}
	if tx.Amount != 1250 {
		t.Fatalf("amount %v", tx.Amount)
	}
	if h.eng.Snapshot().ProjectedEquity != 0 {
		t.Fatalf("equity %v", h.eng.Snapshot().ProjectedEquity)
	}

	if _, err := h.eng.Payout(context.Background(), 10); err == nil {
		t.Fatal("empty balance must refuse payout")
	}
}

func TestWatchReplacesStateWholesale(t *testing.T) {
	h := newHarness(t, &scriptedGenerator{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.eng.Watch(ctx)

	remote := metrics.Default()
	remote.ProjectedEquity = 777
	remote.SynergyScore = 0.95
	remote.DDEXCompliance = metrics.ComplianceVerified
	remote.SRMStatus = metrics.SRMSecure
	remote.AccessibilityState.ScreenReaderAPI = "Active"
	if _, err := h.sessions.Save("op-1", session.Document{
		Messages: []session.Message{{ID: "r1", Role: session.RoleModel, Text: "remote"}},
		Context:  &remote,
	}); err != nil {
		t.Fatalf("remote save: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		snap := h.eng.Snapshot()
		if snap.ProjectedEquity == 777 {
			// Replace re-derives: the stale LOCKED from the remote doc
			// must not survive.
			if snap.LockState != metrics.LockArmed {
				t.Fatalf("gate after remote replace %s", snap.LockState)
			}
			msgs := h.eng.Messages()
			if len(msgs) != 1 || msgs[0].Text != "remote" {
				t.Fatalf("ledger not replaced: %+v", msgs)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("remote document never delivered")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
