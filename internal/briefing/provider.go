// Package briefing synthesizes spoken audio for strategic briefings.
// Synthesis failure is never fatal to the enclosing turn: the engine
// drops the briefing and still delivers the text reply.
package briefing

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// #region provider

// Provider turns briefing text into an audio payload.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// #endregion provider

// #region gemini

// Generator is the slice of the genai client used for speech synthesis.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiProvider synthesizes narration through the Gemini TTS models.
type GeminiProvider struct {
	gen   Generator
	model string
	voice string
}

// NewGeminiProvider creates a provider. Empty model/voice fall back to
// the flash TTS preview with the default voice.
func NewGeminiProvider(gen Generator, model, voice string) *GeminiProvider {
	if model == "" {
		model = "gemini-2.5-flash-preview-tts"
	}
	if voice == "" {
		voice = "Kore"
	}
	return &GeminiProvider{gen: gen, model: model, voice: voice}
}

// NewGeminiTTS dials the Gemini API and returns a provider with default
// model and voice.
func NewGeminiTTS(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return NewGeminiProvider(c.Models, "", ""), nil
}

// Name returns the provider identifier.
func (p *GeminiProvider) Name() string {
	return "gemini-tts"
}

// Synthesize narrates the given text and returns the raw audio bytes.
func (p *GeminiProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := p.gen.GenerateContent(ctx, p.model,
		[]*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{{Text: text}}}},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: p.voice},
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("synthesize: empty response")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, fmt.Errorf("synthesize: no audio part in response")
}

// #endregion gemini
