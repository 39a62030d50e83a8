package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ltlx4/technews/internal/config"
)

// provider is one chat-completion backend. complete sends a single
// system+user exchange and returns the raw reply text.
type provider interface {
	complete(ctx context.Context, system, user string) (string, error)
}

func newProvider(cfg *config.AIConfig, apiKey string) (provider, error) {
	if cfg == nil || apiKey == "" {
		return nil, fmt.Errorf("AI not configured")
	}

	client := &http.Client{Timeout: 30 * time.Second}

	switch cfg.Provider {
	case "claude":
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		return &claudeProvider{apiKey: apiKey, model: model, client: client, url: claudeURL}, nil
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return &openaiProvider{apiKey: apiKey, model: model, client: client, url: openaiURL}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: claude, openai)", cfg.Provider)
	}
}

// --- Claude provider ---

const claudeURL = "https://api.anthropic.com/v1/messages"

type claudeProvider struct {
	apiKey string
	model  string
	client *http.Client
	url    string
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *claudeProvider) complete(ctx context.Context, system, user string) (string, error) {
	body, _ := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: 512,
		System:    system,
		Messages:  []claudeMessage{{Role: "user", Content: user}},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("claude API %d: %s", resp.StatusCode, string(b))
	}

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Content) == 0 {
		return "", fmt.Errorf("empty claude response")
	}
	return cr.Content[0].Text, nil
}

// --- OpenAI provider ---

const openaiURL = "https://api.openai.com/v1/chat/completions"

type openaiProvider struct {
	apiKey string
	model  string
	client *http.Client
	url    string
}

type openaiRequest struct {
	Model          string               `json:"model"`
	Messages       []openaiMessage      `json:"messages"`
	ResponseFormat openaiResponseFormat `json:"response_format"`
}

type openaiResponseFormat struct {
	Type string `json:"type"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *openaiProvider) complete(ctx context.Context, system, user string) (string, error) {
	body, _ := json.Marshal(openaiRequest{
		Model: o.model,
		Messages: []openaiMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: openaiResponseFormat{Type: "json_object"},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", o.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("openai API %d: %s", resp.StatusCode, string(b))
	}

	var or openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return "", err
	}
	if len(or.Choices) == 0 {
		return "", fmt.Errorf("empty openai response")
	}
	return or.Choices[0].Message.Content, nil
}
