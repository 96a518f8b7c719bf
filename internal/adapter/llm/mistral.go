package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// MistralLLM calls the Mistral chat completions API.
type MistralLLM struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewMistralLLM creates a client against api.mistral.ai.
func NewMistralLLM(apiKeyEnv, model string, timeout time.Duration) (*MistralLLM, error) {
	return NewCompatibleLLM(apiKeyEnv, model, "https://api.mistral.ai/v1", timeout)
}

// NewCompatibleLLM creates a client against any OpenAI-compatible chat
// completions endpoint.
func NewCompatibleLLM(apiKeyEnv, model, baseURL string, timeout time.Duration) (*MistralLLM, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &MistralLLM{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Complete sends the prompt as a single user message and returns the
// normalized completion text.
func (l *MistralLLM) Complete(prompt string) (string, error) {
	reqBody := chatRequest{
		Model:    l.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", l.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	return NormalizeResponse(body), nil
}

func (l *MistralLLM) ModelName() string {
	return l.model
}

// MockLLM returns canned responses and records prompts, for tests.
type MockLLM struct {
	Response string
	Err      error
	Prompts  []string
}

func (m *MockLLM) Complete(prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockLLM) ModelName() string {
	return "mock"
}
