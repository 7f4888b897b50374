package buildlinesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Buildline HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// ZoneState is a decoded zone snapshot.
type ZoneState struct {
	ZoneID    string         `json:"zone_id"`
	Name      string         `json:"name,omitempty"`
	State     map[string]any `json:"state"`
	Timestamp string         `json:"timestamp"`
}

// ExecuteResult reports one wire command execution.
type ExecuteResult struct {
	ActionID  string         `json:"action_id"`
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Result    map[string]any `json:"result,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// ActionOutcome reports one governed action run.
type ActionOutcome struct {
	ActionID  string          `json:"action_id"`
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Commands  []ExecuteResult `json:"commands,omitempty"`
	Summary   string          `json:"summary,omitempty"`
	Details   map[string]any  `json:"details,omitempty"`
}

// ValidationResult mirrors the validate endpoint response.
type ValidationResult struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// AuditEntry is one audit trail record.
type AuditEntry struct {
	ID         int64          `json:"id"`
	ActionID   string         `json:"action_id"`
	TS         string         `json:"ts"`
	ActionType string         `json:"action_type"`
	TargetZone string         `json:"target_zone,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	Role       string         `json:"role,omitempty"`
	Status     string         `json:"status"`
	Summary    string         `json:"summary,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// BuildingState returns all zone states.
func (c *Client) BuildingState(ctx context.Context) ([]ZoneState, error) {
	var resp []ZoneState
	err := c.do(ctx, http.MethodGet, "v0/building/state", nil, &resp)
	return resp, err
}

// ZoneState returns one zone's state.
func (c *Client) ZoneState(ctx context.Context, zoneID string) (ZoneState, error) {
	var resp ZoneState
	endpoint := fmt.Sprintf("v0/building/zones/%s/state", url.PathEscape(zoneID))
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// ExecuteCommand runs a wire command against one zone.
func (c *Client) ExecuteCommand(ctx context.Context, actionType, targetZone string, params map[string]any) (ExecuteResult, error) {
	body := map[string]any{
		"action_type": actionType,
		"target_zone": targetZone,
		"parameters":  params,
	}
	var resp ExecuteResult
	err := c.do(ctx, http.MethodPost, "v0/actions/execute", body, &resp)
	return resp, err
}

// Validate checks parameters without executing.
func (c *Client) Validate(ctx context.Context, actionType string, params map[string]any) (ValidationResult, error) {
	body := map[string]any{
		"action_type": actionType,
		"parameters":  params,
	}
	var resp ValidationResult
	err := c.do(ctx, http.MethodPost, "v0/actions/validate", body, &resp)
	return resp, err
}

// AdjustSetpoint runs the adjust-setpoint action.
func (c *Client) AdjustSetpoint(ctx context.Context, input map[string]any) (ActionOutcome, error) {
	var resp ActionOutcome
	err := c.do(ctx, http.MethodPost, "v0/actions/adjust-setpoint", input, &resp)
	return resp, err
}

// LoadShed runs the load-shed action.
func (c *Client) LoadShed(ctx context.Context, input map[string]any) (ActionOutcome, error) {
	var resp ActionOutcome
	err := c.do(ctx, http.MethodPost, "v0/actions/load-shed", input, &resp)
	return resp, err
}

// PreCool runs the pre-cooling action.
func (c *Client) PreCool(ctx context.Context, input map[string]any) (ActionOutcome, error) {
	var resp ActionOutcome
	err := c.do(ctx, http.MethodPost, "v0/actions/pre-cooling", input, &resp)
	return resp, err
}

// RecentAudit returns the most recent audit entries.
func (c *Client) RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	endpoint := "v0/audit/recent"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp []AuditEntry
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// Descriptors exports the full descriptor registry as raw JSON.
func (c *Client) Descriptors(ctx context.Context) (map[string]json.RawMessage, error) {
	var resp map[string]json.RawMessage
	err := c.do(ctx, http.MethodGet, "v0/descriptors", nil, &resp)
	return resp, err
}

// DevLogin mints a development JWT and stores it on the client.
func (c *Client) DevLogin(ctx context.Context, actorID, role string) error {
	body := map[string]any{"actor_id": actorID, "role": role}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "v0/auth/dev/login", body, &resp); err != nil {
		return err
	}
	c.BearerToken = resp.Token
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
