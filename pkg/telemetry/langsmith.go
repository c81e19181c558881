package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/askbox/pkg/llm"
)

// LangSmith exports runs to a LangSmith-compatible collector.
type LangSmith struct {
	endpoint   string
	apiKey     string
	project    string
	httpClient *http.Client
}

var _ Sink = (*LangSmith)(nil)

// NewLangSmith creates a sink posting to {endpoint}/runs.
func NewLangSmith(endpoint, apiKey, project string) *LangSmith {
	return &LangSmith{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		project:    project,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type langSmithRun struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	RunType     string         `json:"run_type"`
	Inputs      map[string]any `json:"inputs"`
	Outputs     map[string]any `json:"outputs,omitempty"`
	Error       string         `json:"error,omitempty"`
	StartTime   string         `json:"start_time"`
	EndTime     string         `json:"end_time"`
	SessionName string         `json:"session_name,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

func (l *LangSmith) Export(ctx context.Context, run Run) error {
	payload := langSmithRun{
		ID:      run.ID.String(),
		Name:    run.Name,
		RunType: "llm",
		Inputs: map[string]any{
			"messages": run.Conversation.Messages(),
		},
		Error:       run.Error,
		StartTime:   run.StartTime.UTC().Format(time.RFC3339Nano),
		EndTime:     run.EndTime.UTC().Format(time.RFC3339Nano),
		SessionName: l.project,
		Extra: map[string]any{
			"metadata": map[string]any{
				"ls_provider":   "google_genai",
				"ls_model_name": run.Model,
			},
		},
	}
	if run.Error == "" {
		payload.Outputs = map[string]any{
			"output": llm.Message{Role: llm.RoleAssistant, Content: run.Output},
			"usage": map[string]int{
				"prompt_tokens":     run.PromptTokens,
				"completion_tokens": run.OutputTokens,
			},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint+"/runs", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", l.apiKey)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("collector returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}
