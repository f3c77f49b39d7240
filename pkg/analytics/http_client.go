package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-bizdash/components/alerts"
	"github.com/goliatone/go-bizdash/components/chat"
	"github.com/goliatone/go-bizdash/components/daterange"
	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

// HTTPConfig configures the HTTP analytics client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPClient talks to the analytics backend via REST endpoints.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ Client = (*HTTPClient)(nil)

// RemoteError is a non-2xx response. Message carries the server's message
// field when present.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("analytics: remote error %d", e.Status)
	}
	return e.Message
}

// NewHTTPClient builds a client for the live analytics API.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("analytics: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// FetchMarketing implements dashboard.DataSource.
func (c *HTTPClient) FetchMarketing(ctx context.Context, sel daterange.Selector) (dashboard.MarketingBundle, error) {
	var out dashboard.MarketingBundle
	return out, c.fetchArea(ctx, AreaMarketing, sel, &out)
}

// FetchFinance implements dashboard.DataSource.
func (c *HTTPClient) FetchFinance(ctx context.Context, sel daterange.Selector) (dashboard.FinanceBundle, error) {
	var out dashboard.FinanceBundle
	return out, c.fetchArea(ctx, AreaFinance, sel, &out)
}

// FetchSales implements dashboard.DataSource.
func (c *HTTPClient) FetchSales(ctx context.Context, sel daterange.Selector) (dashboard.SalesBundle, error) {
	var out dashboard.SalesBundle
	return out, c.fetchArea(ctx, AreaSales, sel, &out)
}

// FetchCrossAnalysis implements dashboard.DataSource.
func (c *HTTPClient) FetchCrossAnalysis(ctx context.Context, sel daterange.Selector) (dashboard.CrossAnalysisBundle, error) {
	var out dashboard.CrossAnalysisBundle
	return out, c.fetchArea(ctx, AreaCrossAnalysis, sel, &out)
}

// FetchAlerts implements alerts.Source. The endpoint may answer with a bare
// list or an object holding an alerts list.
func (c *HTTPClient) FetchAlerts(ctx context.Context, sel daterange.Selector) ([]alerts.Alert, error) {
	var raw json.RawMessage
	if err := c.fetchArea(ctx, AreaAlerts, sel, &raw); err != nil {
		return nil, err
	}
	return decodeAlerts(raw)
}

// ExecuteAction implements alerts.ActionExecutor.
func (c *HTTPClient) ExecuteAction(ctx context.Context, action alerts.Action, alertID string, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	path := "/alerts/" + url.PathEscape(alertID) + "/actions/" + url.PathEscape(string(action))
	return c.do(ctx, http.MethodPost, path, payload, nil)
}

// ChatTransport returns a chat transport bound to one conversation. It
// satisfies chat.TransportFactory.
func (c *HTTPClient) ChatTransport(viewerID string) chat.Transport {
	return &httpChatTransport{client: c, viewerID: viewerID}
}

func (c *HTTPClient) fetchArea(ctx context.Context, area Area, sel daterange.Selector, target any) error {
	if !sel.Valid() {
		sel = daterange.DefaultRange
	}
	query := url.Values{"range": []string{string(sel)}}
	if err := c.do(ctx, http.MethodGet, "/"+string(area)+"?"+query.Encode(), nil, target); err != nil {
		return fmt.Errorf("analytics: fetch %s: %w", area, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("analytics: encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("analytics: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("analytics: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return &RemoteError{Status: resp.StatusCode, Message: remoteMessage(buf.Bytes())}
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("analytics: decode response: %w", err)
	}
	return nil
}

// remoteMessage extracts the message (or error) field of an error body.
func remoteMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}

func decodeAlerts(raw json.RawMessage) ([]alerts.Alert, error) {
	var list []alerts.Alert
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Alerts []alerts.Alert `json:"alerts"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("analytics: decode alerts: %w", err)
	}
	return wrapped.Alerts, nil
}

type httpChatTransport struct {
	client   *HTTPClient
	viewerID string

	mu        sync.Mutex
	sessionID string
}

type chatSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type chatRequest struct {
	SessionID string         `json:"sessionId"`
	ViewerID  string         `json:"viewerId,omitempty"`
	Message   string         `json:"message,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

func (t *httpChatTransport) Open(ctx context.Context) (string, error) {
	var resp chatSessionResponse
	if err := t.client.do(ctx, http.MethodPost, "/chat/sessions", chatRequest{ViewerID: t.viewerID}, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", errors.New("analytics: chat session id missing")
	}
	t.mu.Lock()
	t.sessionID = resp.SessionID
	t.mu.Unlock()
	return resp.SessionID, nil
}

func (t *httpChatTransport) Send(ctx context.Context, text string) (chat.Message, error) {
	var reply chat.Message
	err := t.client.do(ctx, http.MethodPost, "/chat/messages", chatRequest{
		SessionID: t.session(),
		ViewerID:  t.viewerID,
		Message:   text,
	}, &reply)
	return reply, err
}

func (t *httpChatTransport) UpdateContext(ctx context.Context, payload map[string]any) error {
	return t.client.do(ctx, http.MethodPut, "/chat/context", chatRequest{
		SessionID: t.session(),
		ViewerID:  t.viewerID,
		Context:   payload,
	}, nil)
}

func (t *httpChatTransport) session() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}
