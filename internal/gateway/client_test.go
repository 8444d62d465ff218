package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/linkz-dao/linkz-controller/internal/metrics"
)

// #region mock

type mockGenerator struct {
	resp *genai.GenerateContentResponse
	err  error

	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
}

func (m *mockGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.gotModel = model
	m.gotContents = contents
	m.gotConfig = config
	return m.resp, m.err
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: parts},
		}},
	}
}

// #endregion mock

func TestSendBuildsSystemDataPreface(t *testing.T) {
	mock := &mockGenerator{resp: textResponse(&genai.Part{Text: "Standing by."})}
	c := NewClientWithGenerator(mock, DefaultConfig())

	snap := metrics.Default()
	_, err := c.Send(context.Background(), nil, "status report", snap, nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if mock.gotModel != "gemini-2.5-flash" {
		t.Fatalf("model %q", mock.gotModel)
	}
	last := mock.gotContents[len(mock.gotContents)-1]
	text := last.Parts[0].Text
	if !strings.HasPrefix(text, "[SYSTEM_DATA: ") {
		t.Fatalf("missing snapshot preface: %q", text[:40])
	}
	if !strings.Contains(text, `"currentAssetId"`) {
		t.Fatal("snapshot JSON must ride in the preface")
	}
	if !strings.Contains(text, "USER_QUERY: status report") {
		t.Fatalf("user text missing: %q", text)
	}
}

func TestSendSkipsSystemRolesInHistory(t *testing.T) {
	mock := &mockGenerator{resp: textResponse(&genai.Part{Text: "ok"})}
	c := NewClientWithGenerator(mock, DefaultConfig())

	history := []Turn{
		{Role: "model", Text: "online"},
		{Role: "system", Text: "MANDATE CONFIRMED"},
		{Role: "user", Text: "earlier question"},
	}
	if _, err := c.Send(context.Background(), history, "next", metrics.Default(), nil); err != nil {
		t.Fatalf("send: %v", err)
	}

	// 2 history entries survive + 1 current turn.
	if len(mock.gotContents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(mock.gotContents))
	}
	if mock.gotContents[0].Role != genai.RoleModel || mock.gotContents[1].Role != genai.RoleUser {
		t.Fatalf("roles %s / %s", mock.gotContents[0].Role, mock.gotContents[1].Role)
	}
}

func TestSendInlinesAttachments(t *testing.T) {
	mock := &mockGenerator{resp: textResponse(&genai.Part{Text: "ok"})}
	c := NewClientWithGenerator(mock, DefaultConfig())

	atts := []Attachment{{Name: "demo.wav", MIMEType: "audio/wav", Data: []byte{1, 2, 3}}}
	if _, err := c.Send(context.Background(), nil, "analyze", metrics.Default(), atts); err != nil {
		t.Fatalf("send: %v", err)
	}

	last := mock.gotContents[len(mock.gotContents)-1]
	if len(last.Parts) != 2 {
		t.Fatalf("expected text + blob, got %d parts", len(last.Parts))
	}
	blob := last.Parts[1].InlineData
	if blob == nil || blob.MIMEType != "audio/wav" || len(blob.Data) != 3 {
		t.Fatalf("blob %+v", blob)
	}
}

func TestSendDeclaresToolsAndParameters(t *testing.T) {
	mock := &mockGenerator{resp: textResponse(&genai.Part{Text: "ok"})}
	c := NewClientWithGenerator(mock, DefaultConfig())

	if _, err := c.Send(context.Background(), nil, "x", metrics.Default(), nil); err != nil {
		t.Fatalf("send: %v", err)
	}

	cfg := mock.gotConfig
	if cfg.Temperature == nil || *cfg.Temperature != 0.4 {
		t.Fatalf("temperature %+v", cfg.Temperature)
	}
	if cfg.ThinkingConfig == nil || cfg.ThinkingConfig.ThinkingBudget == nil || *cfg.ThinkingConfig.ThinkingBudget != 2048 {
		t.Fatal("thinking budget not set")
	}
	if cfg.SystemInstruction == nil || !strings.Contains(cfg.SystemInstruction.Parts[0].Text, "AURA Tech Strategic Agent") {
		t.Fatal("system charter missing")
	}
	if len(cfg.Tools) != 1 {
		t.Fatalf("tools %d", len(cfg.Tools))
	}
	decls := cfg.Tools[0].FunctionDeclarations
	if len(decls) != 10 {
		t.Fatalf("expected 10 declared instructions, got %d", len(decls))
	}
	names := make(map[string]bool, len(decls))
	for _, d := range decls {
		names[d.Name] = true
	}
	for _, want := range []string{
		"issueMandate", "updateComplianceStatus", "manageRollout",
		"updateAssetMetadata", "regenerateAssetId", "manageAccessibility",
		"executeAuraDistribution", "generateStrategicBriefing",
		"initiateNegotiation", "runViralOpportunityScan",
	} {
		if !names[want] {
			t.Fatalf("missing declaration %s", want)
		}
	}
}

func TestSendDecodesCallsInOrder(t *testing.T) {
	mock := &mockGenerator{resp: textResponse(
		&genai.Part{Text: "Executing."},
		&genai.Part{FunctionCall: &genai.FunctionCall{
			Name: "updateComplianceStatus",
			Args: map[string]any{"status": "Verified"},
		}},
		&genai.Part{FunctionCall: &genai.FunctionCall{
			Name: "manageRollout",
			Args: map[string]any{"action": "START", "percentage": float64(10)},
		}},
	)}
	c := NewClientWithGenerator(mock, DefaultConfig())

	reply, err := c.Send(context.Background(), nil, "go", metrics.Default(), nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Text != "Executing." {
		t.Fatalf("text %q", reply.Text)
	}
	if len(reply.Calls) != 2 {
		t.Fatalf("calls %d", len(reply.Calls))
	}
	if reply.Calls[0].Name != "updateComplianceStatus" || reply.Calls[1].Name != "manageRollout" {
		t.Fatalf("order lost: %s, %s", reply.Calls[0].Name, reply.Calls[1].Name)
	}
}

func TestSendPropagatesGeneratorError(t *testing.T) {
	mock := &mockGenerator{err: errors.New("quota exhausted")}
	c := NewClientWithGenerator(mock, DefaultConfig())

	_, err := c.Send(context.Background(), nil, "x", metrics.Default(), nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("error %v", err)
	}
}

func TestSendEmptyResponse(t *testing.T) {
	mock := &mockGenerator{resp: &genai.GenerateContentResponse{}}
	c := NewClientWithGenerator(mock, DefaultConfig())

	reply, err := c.Send(context.Background(), nil, "x", metrics.Default(), nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Text != "" || len(reply.Calls) != 0 {
		t.Fatalf("expected empty reply, got %+v", reply)
	}
}
