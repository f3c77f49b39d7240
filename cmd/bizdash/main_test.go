package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/daterange"
	"github.com/goliatone/go-bizdash/internal/config"
)

func TestRangeCmdJSON(t *testing.T) {
	var buf bytes.Buffer
	cmd := &rangeCmd{Selector: "today", At: "2025-03-12T15:30:00Z", TZ: "UTC", JSON: true, out: &buf}
	require.NoError(t, cmd.Run())

	var out []rangeOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "2025-03-12T00:00:00.000Z", out[0].StartDate)
	assert.Equal(t, 1, out[0].Days)
	assert.False(t, out[0].Fallback)
}

func TestRangeCmdUnknownSelectorFallsBack(t *testing.T) {
	var buf bytes.Buffer
	cmd := &rangeCmd{Selector: "fortnight", At: "2025-03-12T15:30:00Z", out: &buf}
	require.NoError(t, cmd.Run())
	assert.Contains(t, buf.String(), "unknown selector")
	assert.Contains(t, buf.String(), "last_30_days")
}

func TestFormatCmdRender(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	cases := []struct {
		cmd  formatCmd
		want string
	}{
		{formatCmd{Kind: "currency", Value: "1234.5", Currency: "USD"}, "$1,234.50"},
		{formatCmd{Kind: "percentage", Value: "0.05", Decimals: 2}, "5.00%"},
		{formatCmd{Kind: "change", Value: "-3.2", Decimals: 1}, "-3.2%"},
		{formatCmd{Kind: "number", Value: "abc", Decimals: 2}, "-"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.cmd.render(now), tc.cmd.Kind)
	}
}

func TestScaffoldCmdWritesManifestAndStub(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "widgets.yaml")
	stub := filepath.Join(dir, "providers", "refunds_provider.go")
	var buf bytes.Buffer
	cmd := &scaffoldCmd{
		Code:            "bizdash.widget.refund-rate",
		Name:            "Refund Rate",
		Description:     "Share of orders refunded.",
		Category:        "sales",
		Page:            "sales",
		ManifestPath:    manifest,
		ProviderPackage: defaultProviderPackage,
		ProviderOut:     stub,
		out:             &buf,
	}
	require.NoError(t, cmd.Run())

	doc, err := dashboard.ReadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 1)
	assert.Equal(t, "bizdash.widget.refund-rate", doc.Widgets[0].Definition.Code)
	assert.True(t, strings.HasSuffix(doc.Widgets[0].Provider.Entry, ".NewRefundRateProvider"))
	require.Len(t, doc.Layouts, 1)
	assert.Equal(t, dashboard.PageSales, doc.Layouts[0].Page)

	source, err := os.ReadFile(stub)
	require.NoError(t, err)
	assert.Contains(t, string(source), "package providers")
	assert.Contains(t, string(source), "type RefundRateProvider struct")

	err = cmd.Run()
	assert.Error(t, err, "duplicate code without --overwrite")
}

func TestScaffoldCmdRejectsBadInput(t *testing.T) {
	cmd := &scaffoldCmd{Code: "nodots", ManifestPath: filepath.Join(t.TempDir(), "m.yaml")}
	assert.Error(t, cmd.Run())

	cmd = &scaffoldCmd{Code: "a.b", Page: "inventory", ManifestPath: filepath.Join(t.TempDir(), "m.yaml")}
	assert.Error(t, cmd.Run())
}

func TestBuildWithMockData(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Locale.Range = string(daterange.Last7Days)

	a, err := build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, a.handlers.Page)

	view, err := a.handlers.Page.Query(context.Background(), dashboard.PageRequest{
		Viewer: a.viewerDefaults(dashboard.ViewerContext{UserID: "u1"}),
		Page:   "finance",
	})
	require.NoError(t, err)
	assert.Equal(t, dashboard.PageFinance, view.Page)
	assert.Equal(t, daterange.Last7Days, view.Selector, "configured default range applies to every entry point")
}
