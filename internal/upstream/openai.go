// Package upstream checks connectivity to the real provider APIs the
// sandbox emulates.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultModel = "gpt-4o-mini"

type StepResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// Result reports each step separately so callers can tell partial
// success apart from a total failure.
type Result struct {
	Auth       StepResult `json:"auth"`
	Models     StepResult `json:"models"`
	Completion StepResult `json:"completion"`
	Success    bool       `json:"success"`
}

type OpenAI struct {
	baseURL string
	client  *http.Client
}

func NewOpenAI(baseURL string, client *http.Client) *OpenAI {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &OpenAI{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

var errUnauthorized = errors.New("unauthorized")

// Test runs the auth, models and completion checks in order. A rejected
// key or an unreachable provider skips the remaining steps. The key only
// counts as accepted when the models listing answers 2xx.
func (o *OpenAI) Test(ctx context.Context, apiKey, model string) Result {
	if model == "" {
		model = DefaultModel
	}

	var res Result
	if apiKey == "" {
		res.Auth = StepResult{Message: "API key is required"}
		res.Models = skipped("authentication failed")
		res.Completion = skipped("authentication failed")
		return res
	}

	start := time.Now()
	var models modelList
	status, err := o.call(ctx, http.MethodGet, "/v1/models", apiKey, nil, &models)
	elapsed := time.Since(start).Milliseconds()

	switch {
	case errors.Is(err, errUnauthorized):
		res.Auth = StepResult{Message: "API key was rejected: " + err.Error(), StatusCode: status, DurationMs: elapsed}
		res.Models = skipped("authentication failed")
		res.Completion = skipped("authentication failed")
		return res
	case status == 0:
		res.Auth = StepResult{Message: err.Error(), DurationMs: elapsed}
		res.Models = skipped("provider unreachable")
		res.Completion = skipped("provider unreachable")
		return res
	}

	if status >= 200 && status < 300 {
		res.Auth = StepResult{Success: true, Message: "API key accepted", StatusCode: status, DurationMs: elapsed}
	} else {
		res.Auth = StepResult{
			Message:    fmt.Sprintf("indeterminate: provider answered %d", status),
			StatusCode: status,
			DurationMs: elapsed,
		}
	}
	if err != nil {
		res.Models = StepResult{Message: err.Error(), StatusCode: status, DurationMs: elapsed}
	} else {
		res.Models = StepResult{
			Success:    true,
			Message:    models.describe(model),
			StatusCode: status,
			DurationMs: elapsed,
		}
	}

	res.Completion = o.testCompletion(ctx, apiKey, model)
	res.Success = res.Auth.Success && res.Models.Success && res.Completion.Success
	return res
}

func skipped(reason string) StepResult {
	return StepResult{Message: "skipped: " + reason}
}

type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (l modelList) describe(model string) string {
	for _, m := range l.Data {
		if m.ID == model {
			return fmt.Sprintf("%d models available, %s included", len(l.Data), model)
		}
	}
	return fmt.Sprintf("%d models available, %s not listed", len(l.Data), model)
}

type completionReply struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OpenAI) testCompletion(ctx context.Context, apiKey, model string) StepResult {
	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": "Reply with the single word: ok"},
		},
		"max_tokens": 5,
	}

	start := time.Now()
	var reply completionReply
	status, err := o.call(ctx, http.MethodPost, "/v1/chat/completions", apiKey, body, &reply)
	elapsed := time.Since(start).Milliseconds()

	switch {
	case err != nil:
		return StepResult{Message: err.Error(), StatusCode: status, DurationMs: elapsed}
	case len(reply.Choices) == 0:
		return StepResult{Message: "completion returned no choices", StatusCode: status, DurationMs: elapsed}
	}
	return StepResult{
		Success:    true,
		Message:    fmt.Sprintf("completion returned %q", strings.TrimSpace(reply.Choices[0].Message.Content)),
		StatusCode: status,
		DurationMs: elapsed,
	}
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// call performs one request and decodes a 2xx body into out. The returned
// status is 0 when no response was received.
func (o *OpenAI) call(ctx context.Context, method, path, apiKey string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, o.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := resp.Status
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return resp.StatusCode, fmt.Errorf("%w: %s", errUnauthorized, msg)
		}
		return resp.StatusCode, errors.New(msg)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
