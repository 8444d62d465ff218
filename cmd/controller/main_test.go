package main

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/linkz-dao/linkz-controller/internal/briefing"
	"github.com/linkz-dao/linkz-controller/internal/engine"
	"github.com/linkz-dao/linkz-controller/internal/gateway"
	"github.com/linkz-dao/linkz-controller/internal/lock"
	"github.com/linkz-dao/linkz-controller/internal/metrics"
	"github.com/linkz-dao/linkz-controller/internal/profile"
	"github.com/linkz-dao/linkz-controller/internal/session"
)

type cannedGenerator struct{}

func (cannedGenerator) GenerateContent(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: "Acknowledged."}}},
		}},
	}, nil
}

func newTestEngine(t *testing.T) *engine.Engine {
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
	eng := engine.New(engine.Config{UserID: "op-1", DisplayName: "Operator"},
		metrics.NewStore(metrics.Default(), lock.Derive), sessions, profiles,
		gateway.NewClientWithGenerator(cannedGenerator{}, gateway.DefaultConfig()),
		briefing.NewMockProvider(), zap.NewNop().Sugar())
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return eng
}

func TestQuickActionCommandsSendCannedDirectives(t *testing.T) {
	eng := newTestEngine(t)

	for _, tc := range []struct {
		line string
		want string
	}{
		{"/aura", auraTemplate},
		{"/audit", auditTemplate},
	} {
		if !handleLine(context.Background(), eng, tc.line) {
			t.Fatalf("%s must not quit the repl", tc.line)
		}
		msgs := eng.Messages()
		// The directive lands as the second-to-last ledger entry, ahead
		// of the model reply.
		user := msgs[len(msgs)-2]
		if user.Role != session.RoleUser || user.Text != tc.want {
			t.Fatalf("%s sent %q as %s", tc.line, user.Text, user.Role)
		}
	}
}

func TestHandleLineQuit(t *testing.T) {
	eng := newTestEngine(t)
	if handleLine(context.Background(), eng, "/quit") {
		t.Fatal("quit must end the repl")
	}
	if !handleLine(context.Background(), eng, "") {
		t.Fatal("blank input must keep the repl alive")
	}
}
