package analytics

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-bizdash/components/alerts"
	"github.com/goliatone/go-bizdash/components/chat"
	"github.com/goliatone/go-bizdash/components/daterange"
	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/format"
)

// MockData seeds deterministic analytics responses for tests or local demos.
type MockData struct {
	Marketing dashboard.MarketingBundle
	Finance   dashboard.FinanceBundle
	Sales     dashboard.SalesBundle
	Cross     dashboard.CrossAnalysisBundle
	Alerts    []alerts.Alert
	// ChatReply builds the assistant's answer. Nil echoes the question.
	ChatReply func(text string) chat.Message
	// Err fails every call when set.
	Err error
}

// ActionCall records one executed alert action.
type ActionCall struct {
	Action  alerts.Action
	AlertID string
	Payload map[string]any
}

// MockClient implements Client using in-memory fixtures.
type MockClient struct {
	mu      sync.RWMutex
	data    MockData
	ranges  []daterange.Selector
	actions []ActionCall
}

var _ Client = (*MockClient)(nil)

// NewMockClient builds a mock analytics client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// FetchMarketing returns the configured bundle ignoring the range.
func (c *MockClient) FetchMarketing(_ context.Context, sel daterange.Selector) (dashboard.MarketingBundle, error) {
	if err := c.record(sel); err != nil {
		return dashboard.MarketingBundle{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.data.Marketing
	out.Campaigns = append([]dashboard.Campaign(nil), out.Campaigns...)
	return out, nil
}

// FetchFinance returns the configured bundle ignoring the range.
func (c *MockClient) FetchFinance(_ context.Context, sel daterange.Selector) (dashboard.FinanceBundle, error) {
	if err := c.record(sel); err != nil {
		return dashboard.FinanceBundle{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.data.Finance
	out.PaymentMethods = append([]dashboard.PaymentMethod(nil), out.PaymentMethods...)
	return out, nil
}

// FetchSales returns the configured bundle ignoring the range.
func (c *MockClient) FetchSales(_ context.Context, sel daterange.Selector) (dashboard.SalesBundle, error) {
	if err := c.record(sel); err != nil {
		return dashboard.SalesBundle{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.data.Sales
	out.Customers = append([]dashboard.Customer(nil), out.Customers...)
	out.Products = append([]dashboard.ProductSales(nil), out.Products...)
	return out, nil
}

// FetchCrossAnalysis returns the configured bundle ignoring the range.
func (c *MockClient) FetchCrossAnalysis(_ context.Context, sel daterange.Selector) (dashboard.CrossAnalysisBundle, error) {
	if err := c.record(sel); err != nil {
		return dashboard.CrossAnalysisBundle{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.data.Cross
	out.Channels = append([]dashboard.ChannelPerformance(nil), out.Channels...)
	return out, nil
}

// FetchAlerts returns the configured alerts ignoring the range.
func (c *MockClient) FetchAlerts(_ context.Context, sel daterange.Selector) ([]alerts.Alert, error) {
	if err := c.record(sel); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]alerts.Alert(nil), c.data.Alerts...), nil
}

// ExecuteAction records the action and marks the alert's new status.
func (c *MockClient) ExecuteAction(_ context.Context, action alerts.Action, alertID string, payload map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data.Err != nil {
		return c.data.Err
	}
	c.actions = append(c.actions, ActionCall{Action: action, AlertID: alertID, Payload: payload})
	for i := range c.data.Alerts {
		if c.data.Alerts[i].ID != alertID {
			continue
		}
		c.data.Alerts[i].Status = actionStatus[action]
		return nil
	}
	return fmt.Errorf("alert %s not found", alertID)
}

var actionStatus = map[alerts.Action]string{
	alerts.ActionApply:   "applied",
	alerts.ActionIgnore:  "ignored",
	alerts.ActionReview:  "in_review",
	alerts.ActionResolve: "resolved",
}

// Actions returns the executed actions in order.
func (c *MockClient) Actions() []ActionCall {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ActionCall(nil), c.actions...)
}

// Ranges returns the selectors requested so far.
func (c *MockClient) Ranges() []daterange.Selector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]daterange.Selector(nil), c.ranges...)
}

// ChatTransport returns an in-memory transport answering with ChatReply.
func (c *MockClient) ChatTransport(viewerID string) chat.Transport {
	return &mockChatTransport{client: c, viewerID: viewerID}
}

func (c *MockClient) record(sel daterange.Selector) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ranges = append(c.ranges, sel)
	return c.data.Err
}

func (c *MockClient) failure() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Err
}

type mockChatTransport struct {
	client   *MockClient
	viewerID string
}

func (t *mockChatTransport) Open(context.Context) (string, error) {
	if err := t.client.failure(); err != nil {
		return "", err
	}
	return "mock-" + t.viewerID, nil
}

func (t *mockChatTransport) Send(_ context.Context, text string) (chat.Message, error) {
	t.client.mu.RLock()
	reply, err := t.client.data.ChatReply, t.client.data.Err
	t.client.mu.RUnlock()
	if err != nil {
		return chat.Message{}, err
	}
	if reply == nil {
		return chat.Message{Sender: chat.SenderAssistant, Text: "You asked: " + text}, nil
	}
	return reply(text), nil
}

func (t *mockChatTransport) UpdateContext(context.Context, map[string]any) error {
	return t.client.failure()
}

// DemoData returns a small, coherent data set for local demos.
func DemoData(now time.Time) MockData {
	change := 0.082
	campaigns := []dashboard.Campaign{
		{ID: "c1", Name: "Spring Search", Platform: "google", Status: "active", Spend: 4200, Impressions: 180000, Clicks: 5400, Revenue: 15800, Orders: 210},
		{ID: "c2", Name: "Retargeting", Platform: "meta", Status: "active", Spend: 1800, Impressions: 95000, Clicks: 2100, Revenue: 6100, Orders: 88},
		{ID: "c3", Name: "Brand Video", Platform: "youtube", Status: "paused", Spend: 2500, Impressions: 240000, Clicks: 1300, Revenue: 2900, Orders: 31},
	}
	sales := dashboard.SalesSummary{Revenue: 48250, Orders: 612, Customers: 402, NewCustomers: 97, Change: &change}
	finance := dashboard.FinanceSummary{
		Revenue: 48250, Expenses: 31100, Profit: 17150, Margin: 0.355,
		CashInflow: 45200, CashOutflow: 29800, NetCashFlow: 15400,
		Budget: 33000, Actual: 31100,
	}
	return MockData{
		Marketing: dashboard.MarketingBundle{
			Currency:  "USD",
			Campaigns: campaigns,
			ChannelBreakdown: []dashboard.CategoryAmount{
				{Category: "Search", Amount: 4200}, {Category: "Social", Amount: 1800}, {Category: "Video", Amount: 2500},
			},
		},
		Finance: dashboard.FinanceBundle{
			Currency: "USD",
			Summary:  finance,
			PaymentMethods: []dashboard.PaymentMethod{
				{Method: "card", Amount: 36100, Count: 455},
				{Method: "transfer", Amount: 9800, Count: 96},
				{Method: "cash", Amount: 2350, Count: 61},
			},
		},
		Sales: dashboard.SalesBundle{
			Currency: "USD",
			Summary:  sales,
			Customers: []dashboard.Customer{
				{ID: "u1", Name: "Acme Corp", Segment: "enterprise", Revenue: 8200, Orders: 14},
				{ID: "u2", Name: "Globex", Segment: "smb", Revenue: 3100, Orders: 9, NewCustomer: true},
			},
			Products: []dashboard.ProductSales{
				{Name: "Analytics Pro", Units: 120, Revenue: 21600},
				{Name: "Starter", Units: 410, Revenue: 12300},
			},
		},
		Cross: dashboard.CrossAnalysisBundle{
			Currency:  "USD",
			Campaigns: campaigns,
			Sales:     sales,
			Finance:   finance,
			Channels: []dashboard.ChannelPerformance{
				{Channel: "search", Spend: 4200, Revenue: 15800, Clicks: 5400, NewCustomers: 51},
				{Channel: "social", Spend: 1800, Revenue: 6100, Clicks: 2100, NewCustomers: 29},
			},
		},
		Alerts: []alerts.Alert{
			{ID: "a1", Title: "Brand Video ROAS below 1.5", Severity: "high", Status: "pending", Category: "marketing", CreatedAt: now.Add(-3 * time.Hour)},
			{ID: "a2", Title: "Expenses above budget in ads", Severity: "medium", Status: "In Review", Category: "finance", CreatedAt: now.Add(-26 * time.Hour)},
			{ID: "a3", Title: "Spike in refunds", Severity: "critical", Status: "pending", Category: "sales", CreatedAt: now.Add(-40 * time.Minute)},
		},
		ChatReply: func(text string) chat.Message {
			q := strings.ToLower(text)
			if strings.Contains(q, "channel") {
				return chat.Message{
					Sender: chat.SenderAssistant,
					Text:   "Search returns the most per dollar: ROAS is $\\frac{15800}{4200} \\approx 3.76$.",
					Chart: &chat.ChartAttachment{
						Type:  dashboard.ChartBar,
						Title: "Revenue by channel",
						Data:  []map[string]any{{"name": "search", "value": 15800.0}, {"name": "social", "value": 6100.0}},
					},
					Suggestions: []string{"Compare with last month", "Show spend by channel"},
				}
			}
			return chat.Message{
				Sender: chat.SenderAssistant,
				Text:   "Revenue for the period is **" + format.Currency(format.Float(sales.Revenue), "USD") + "** across 612 orders.",
				Table: &chat.TableAttachment{
					Headers: []string{"metric", "value"},
					Rows:    []any{[]any{"orders", 612}, []any{"new customers", 97}},
				},
				Suggestions: []string{"Break down by channel"},
			}
		},
	}
}
