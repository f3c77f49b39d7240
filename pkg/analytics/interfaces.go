// Package analytics ships clients for the analytics backend the dashboard
// reads from: a REST client, an in-memory mock and a Redis-backed cache.
package analytics

import (
	"github.com/goliatone/go-bizdash/components/alerts"
	"github.com/goliatone/go-bizdash/components/chat"
	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

// ChatClient opens assistant conversations.
type ChatClient interface {
	ChatTransport(viewerID string) chat.Transport
}

// Client is a convenience union for backends that serve every dashboard
// collaborator.
type Client interface {
	dashboard.DataSource
	alerts.Source
	alerts.ActionExecutor
	ChatClient
}

// Area names one dashboard data endpoint.
type Area string

const (
	AreaMarketing     Area = "marketing"
	AreaFinance       Area = "finance"
	AreaSales         Area = "sales"
	AreaCrossAnalysis Area = "cross-analysis"
	AreaAlerts        Area = "alerts"
)

