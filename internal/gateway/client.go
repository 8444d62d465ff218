// Package gateway talks to the hosted reasoning collaborator. Each turn
// ships the full prior conversation, a JSON snapshot of current metrics
// prefixed to the latest user text, any inline attachments, and the
// declared instruction set; the reply is free text plus zero or more
// tool calls. No partial responses and no client-side cancellation: an
// issued call runs to completion or failure.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/linkz-dao/linkz-controller/internal/interp"
	"github.com/linkz-dao/linkz-controller/internal/metrics"
)

// #region types

// Turn is one prior conversation entry, reduced to role + text.
type Turn struct {
	Role string // "user" | "model" | "system"
	Text string
}

// Attachment is an inlined binary payload (image or audio).
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Reply is the gateway's answer for one turn.
type Reply struct {
	Text  string
	Calls []interp.RawCall
}

// Generator is the slice of the genai client the gateway uses. Injected
// in tests so no network connection is needed.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config holds gateway parameters.
type Config struct {
	Model          string
	Temperature    float32
	ThinkingBudget int32
}

// DefaultConfig returns the production model parameters.
func DefaultConfig() Config {
	return Config{
		Model:          "gemini-2.5-flash",
		Temperature:    0.4,
		ThinkingBudget: 2048,
	}
}

// #endregion types

// #region client

// Client wraps the hosted model behind the turn contract.
type Client struct {
	gen    Generator
	config Config
}

// NewClient creates a gateway client backed by the Gemini API.
func NewClient(ctx context.Context, apiKey string, config Config) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Client{gen: c.Models, config: config}, nil
}

// NewClientWithGenerator creates a Client with an injected generator.
// Used for testing without a real API connection.
func NewClientWithGenerator(gen Generator, config Config) *Client {
	return &Client{gen: gen, config: config}
}

// #endregion client

// #region send

// Send runs one turn: history + snapshot preface + current text and
// attachments in, reply text and ordered tool calls out.
func (c *Client) Send(ctx context.Context, history []Turn, text string, snapshot metrics.Snapshot, attachments []Attachment) (Reply, error) {
	contents, err := buildContents(history, text, snapshot, attachments)
	if err != nil {
		return Reply{}, err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		Temperature:       genai.Ptr(c.config.Temperature),
		Tools:             toolDeclarations(),
	}
	if c.config.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(c.config.ThinkingBudget)}
	}

	resp, err := c.gen.GenerateContent(ctx, c.config.Model, contents, cfg)
	if err != nil {
		return Reply{}, fmt.Errorf("generate: %w", err)
	}

	return decodeResponse(resp), nil
}

// #endregion send

// #region request-assembly

// buildContents assembles the request. System-role entries are local
// decoration and never leave the client; the current metric snapshot is
// serialized and prefixed to the user's text so the model always reasons
// against live state.
func buildContents(history []Turn, text string, snapshot metrics.Snapshot, attachments []Attachment) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		if t.Role == "system" {
			continue
		}
		role := genai.RoleUser
		if t.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: t.Text}},
		})
	}

	ctxJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	parts := []*genai.Part{{
		Text: fmt.Sprintf("[SYSTEM_DATA: %s]\n\nUSER_QUERY: %s", ctxJSON, text),
	}}
	for _, a := range attachments {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: a.MIMEType, Data: a.Data},
		})
	}
	contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: parts})

	return contents, nil
}

// decodeResponse flattens the first candidate into text + raw calls,
// preserving the order the model emitted them in.
func decodeResponse(resp *genai.GenerateContentResponse) Reply {
	var reply Reply
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return reply
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			reply.Text += part.Text
		}
		if part.FunctionCall != nil {
			reply.Calls = append(reply.Calls, interp.RawCall{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}
	return reply
}

// #endregion request-assembly
