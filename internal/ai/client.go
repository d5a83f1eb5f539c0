// Package ai is the boundary to the Gemini generative endpoint. Failures
// never cross it: a missing key or a failed call degrades to a fixed,
// user-legible fallback text.
package ai

import (
	"context"
	"time"

	"google.golang.org/genai"

	"github.com/chatzone/internal/config"
	"github.com/chatzone/internal/logger"
	"github.com/chatzone/internal/model"
)

const (
	fallbackUnavailable = "Sorry, the AI service is currently unavailable."
	fallbackFailure     = "Sorry, I encountered an error. Please try again."
)

// Client calls the Gemini API with web-grounded search enabled.
type Client struct {
	apiKey string
	model  string
}

func New(cfg config.AIConfig) *Client {
	return &Client{apiKey: cfg.APIKey, model: cfg.Model}
}

// Enabled reports whether a credential is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// GetResponse asks Gemini for a reply to prompt. It never returns an error:
// on missing configuration or a failed call the text is one of the fixed
// fallback strings and the grounding metadata is nil. The caller decides
// whether to bound ctx; none is imposed here.
func (c *Client) GetResponse(ctx context.Context, prompt string) (string, *model.GroundingMetadata) {
	defer logger.DeferLogDuration("ai.GetResponse", time.Now())()

	if c.apiKey == "" {
		logger.Error("ai: no API key configured, AI replies disabled")
		return fallbackUnavailable, nil
	}

	// A fresh client per request so a rotated key is picked up without a
	// restart.
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Errorf("ai: create client: %v", err)
		return fallbackFailure, nil
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		logger.Errorf("ai: generate content: %v", err)
		return fallbackFailure, nil
	}

	return resp.Text(), groundingFrom(resp)
}

func groundingFrom(resp *genai.GenerateContentResponse) *model.GroundingMetadata {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	chunks := resp.Candidates[0].GroundingMetadata.GroundingChunks
	if len(chunks) == 0 {
		return nil
	}
	out := &model.GroundingMetadata{GroundingChunks: make([]model.GroundingChunk, 0, len(chunks))}
	for _, ch := range chunks {
		var web *model.GroundingWeb
		if ch.Web != nil {
			web = &model.GroundingWeb{URI: ch.Web.URI, Title: ch.Web.Title}
		}
		out.GroundingChunks = append(out.GroundingChunks, model.GroundingChunk{Web: web})
	}
	return out
}
