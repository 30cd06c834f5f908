package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Config configures the chat-completions client.
type Config struct {
	BaseURL     string // Server root, e.g. http://localhost:1234
	Model       string
	APIKey      string // LM Studio ignores it, the SDK requires one.
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // HTTP client timeout; per-call deadlines come from the context.
	HTTPClient  *http.Client  // Optional (tests)
}

// Client calls an OpenAI-compatible chat completions endpoint (LM Studio).
type Client struct {
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	client      openai.Client

	Stats *Stats
}

// NewClient builds a client for an OpenAI-compatible server. SDK retries are off.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = "local-model"
	}
	if cfg.APIKey == "" {
		cfg.APIKey = "lm-studio"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 300 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	client := openai.NewClient(
		option.WithBaseURL(apiBase(cfg.BaseURL)),
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		// Failed chunks are reported, never retried.
		option.WithMaxRetries(0),
	)

	return &Client{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  httpClient,
		client:      client,
		Stats:       NewStats(time.Hour),
	}
}

// apiBase turns a server root into the /v1/ API base the SDK expects.
func apiBase(root string) string {
	root = strings.TrimRight(strings.TrimSpace(root), "/")
	if root == "" {
		root = "http://localhost:1234"
	}
	if !strings.HasSuffix(root, "/v1") {
		root += "/v1"
	}
	return root + "/"
}

// Summarize sends one non-streaming chat completion and returns the
// generated text. Every error is a *CallError.
func (c *Client) Summarize(ctx context.Context, instructions, content string) (text string, err error) {
	if instructions == "" {
		instructions = DefaultInstructions
	}
	start := time.Now()
	defer func() {
		c.Stats.Record(time.Since(start).Milliseconds(), failureKind(err))
	}()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instructions),
			openai.UserMessage(content),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
	})
	if err != nil {
		return "", Classify(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &CallError{Kind: KindMalformed, Err: errors.New("response has no choices")}
	}

	text = cleanResponse(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &CallError{Kind: KindMalformed, Err: errors.New("response content is empty")}
	}
	return text, nil
}

// HealthCheck verifies the server is reachable by listing its models.
func (c *Client) HealthCheck(ctx context.Context) error {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", Classify(err))
	}
	if page == nil {
		return fmt.Errorf("list models: empty response")
	}
	return nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

var (
	thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeBlockRe  = regexp.MustCompile("(?s)^```(?:markdown|md)?\\s*(.*?)\\s*```$")
)

// cleanResponse drops reasoning blocks emitted by some local models and
// unwraps a reply that arrives as one fenced markdown block.
func cleanResponse(s string) string {
	s = thinkBlockRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}
