package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/artem13815/careerassist/pkg/llm"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Client is a minimal OpenRouter (OpenAI-compatible) chat completions client.
type Client struct {
	APIKey   string
	BaseURL  string
	AppTitle string
	Referer  string
	httpDo   *http.Client
}

func New(apiKey, baseURL, appTitle, referer string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		APIKey:   apiKey,
		BaseURL:  baseURL,
		AppTitle: appTitle,
		Referer:  referer,
		httpDo: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatCompletionsRequest struct {
	Model     string        `json:"model"`
	Messages  []llm.Message `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionsResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// Complete sends the transcript to the model and returns the first choice.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	if c.APIKey == "" {
		return "", goerr.New("openrouter api key is empty")
	}
	data, err := json.Marshal(chatCompletionsRequest{
		Model:     req.Model,
		Messages:  req.Messages,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal openrouter request")
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", goerr.Wrap(err, "failed to build openrouter request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	if c.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.Referer)
	}
	if c.AppTitle != "" {
		httpReq.Header.Set("X-Title", c.AppTitle)
	}

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return "", goerr.Wrap(err, "openrouter request failed", goerr.V("model", req.Model))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errMap map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errMap)
		return "", goerr.New("openrouter returned error status",
			goerr.V("status", resp.StatusCode), goerr.V("body", errMap))
	}
	var out chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", goerr.Wrap(err, "failed to decode openrouter response")
	}
	if len(out.Choices) == 0 {
		return "", goerr.New("no choices returned by model", goerr.V("model", req.Model))
	}
	return out.Choices[0].Message.Content, nil
}
