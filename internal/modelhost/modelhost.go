// Package modelhost implements the HTTP client for the local Ollama-compatible
// model host (§6): generate, a low-latency generate_simple for classification,
// and embed, with context-window sizing and per-call cancellation.
package modelhost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
	"github.com/bradylowe/paranoid-coder/internal/logging"
)

const (
	defaultMaxRetries = 2
	defaultBaseDelay  = 200 * time.Millisecond
	defaultMaxDelay   = 2 * time.Second
)

// Client talks to an Ollama-compatible HTTP endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logging.Logger
}

// New creates a Client against host (e.g. "http://localhost:11434"). timeout
// is set as the underlying http.Client's timeout, so it bounds each HTTP
// request (each retry attempt) to the host.
func New(host string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(host, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithLogger attaches a logger for retry/diagnostic messages and returns c
// for chaining.
func (c *Client) WithLogger(logger *logging.Logger) *Client {
	c.logger = logger
	return c
}

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type generateResponse struct {
	Response  string `json:"response"`
	Model     string `json:"model"`
	Done      bool   `json:"done"`
	EvalCount int    `json:"eval_count"`
}

// GenerateSimple issues a low-latency generate call for short responses
// (e.g. query classification): minimal context, no sampling temperature,
// a tight prediction cap.
func (c *Client) GenerateSimple(ctx context.Context, model, prompt string) (string, error) {
	req := generateRequest{
		Model:  model,
		Prompt: prompt,
		Options: map[string]interface{}{
			"num_ctx":     2048,
			"num_predict": 16,
			"temperature": 0,
		},
	}
	resp, err := c.generate(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Response), nil
}

// GenerateResult carries the text and the concrete model version/name the
// host reported having served the request with, for provenance tracking on
// the Summary row.
type GenerateResult struct {
	Text             string
	ModelVersion     string
	NumCtx           int
	TokensUsed       int
	GenerationTimeMs int
}

// Generate issues a full generate call with a context window sized from the
// prompt (§4.G / §6 context sizing). Returns ContextOverflow if the prompt
// plus reserved response budget would exceed the maximum window.
func (c *Client) Generate(ctx context.Context, model, prompt string, extraOptions map[string]interface{}) (GenerateResult, error) {
	numCtx, err := ContextSize(prompt)
	if err != nil {
		return GenerateResult{}, err
	}

	options := map[string]interface{}{"num_ctx": numCtx}
	for k, v := range extraOptions {
		options[k] = v
	}

	started := time.Now()
	resp, err := c.generate(ctx, generateRequest{Model: model, Prompt: prompt, Options: options})
	elapsed := time.Since(started)
	if err != nil {
		return GenerateResult{}, err
	}
	return GenerateResult{
		Text:             strings.TrimSpace(resp.Response),
		ModelVersion:     resp.Model,
		NumCtx:           numCtx,
		TokensUsed:       resp.EvalCount,
		GenerationTimeMs: int(elapsed.Milliseconds()),
	}, nil
}

func (c *Client) generate(ctx context.Context, req generateRequest) (generateResponse, error) {
	req.Stream = false
	body, err := json.Marshal(req)
	if err != nil {
		return generateResponse{}, pcerrors.Wrap(pcerrors.ModelError, "encode generate request", err)
	}

	httpResp, err := c.doWithRetry(ctx, "/api/generate", body)
	if err != nil {
		return generateResponse{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusNotFound {
		return generateResponse{}, pcerrors.New(pcerrors.ModelNotFound, fmt.Sprintf("model %q not found on host", req.Model)).
			WithRemedy(fmt.Sprintf("run `ollama pull %s`", req.Model))
	}
	if httpResp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(httpResp.Body)
		return generateResponse{}, pcerrors.New(pcerrors.ModelError, fmt.Sprintf("model host returned %d: %s", httpResp.StatusCode, string(data)))
	}

	var resp generateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return generateResponse{}, pcerrors.Wrap(pcerrors.ModelError, "decode generate response", err)
	}
	return resp, nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns one embedding per input text, batched into a single call
// (§4.F: indexer batches up to 32 texts per embed call).
func (c *Client) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Model: model, Input: texts})
	if err != nil {
		return nil, pcerrors.Wrap(pcerrors.ModelError, "encode embed request", err)
	}

	httpResp, err := c.doWithRetry(ctx, "/api/embed", body)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusNotFound {
		return nil, pcerrors.New(pcerrors.ModelNotFound, fmt.Sprintf("embedding model %q not found on host", model)).
			WithRemedy(fmt.Sprintf("run `ollama pull %s`", model))
	}
	if httpResp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(httpResp.Body)
		return nil, pcerrors.New(pcerrors.ModelError, fmt.Sprintf("model host returned %d: %s", httpResp.StatusCode, string(data)))
	}

	var resp embedResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, pcerrors.Wrap(pcerrors.ModelError, "decode embed response", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, pcerrors.New(pcerrors.ModelError, "embedding count mismatch: model host returned a different number of vectors than requested")
	}
	return resp.Embeddings, nil
}

// doWithRetry posts body to path, retrying on connection failures and 5xx
// responses with exponential backoff. 4xx responses are returned immediately
// since retrying a bad request or missing model never succeeds.
func (c *Client) doWithRetry(ctx context.Context, path string, body []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= defaultMaxRetries; attempt++ {
		if attempt > 0 {
			delay := defaultBaseDelay * time.Duration(1<<uint(attempt-1))
			if delay > defaultMaxDelay {
				delay = defaultMaxDelay
			}
			select {
			case <-ctx.Done():
				return nil, pcerrors.Wrap(pcerrors.ModelHostUnreachable, "model host request canceled", ctx.Err())
			case <-time.After(delay):
			}
			if c.logger != nil {
				c.logger.Debug("retrying model host request", map[string]interface{}{"path": path, "attempt": attempt + 1})
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, pcerrors.Wrap(pcerrors.ModelError, "build model host request", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			data, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("model host returned %d: %s", resp.StatusCode, string(data))
			continue
		}

		return resp, nil
	}

	return nil, pcerrors.Wrap(pcerrors.ModelHostUnreachable, "model host unreachable", lastErr).
		WithRemedy("check that Ollama is running and reachable at the configured ollama_host")
}
