package dashboard

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEChartsAssetsHost(t *testing.T) {
	t.Setenv(envEChartsCDN, "")
	assert.Equal(t, DefaultEChartsAssetsPath, DefaultEChartsAssetsHost())
	t.Setenv(envEChartsCDN, "https://cdn.example.com/echarts")
	assert.Equal(t, "https://cdn.example.com/echarts/", DefaultEChartsAssetsHost())
}

func TestEChartsAssetsHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "echarts.min.js"), []byte("/* echarts */"), 0o600))

	handler := EChartsAssetsHandler("/assets/echarts", dir)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/echarts/echarts.min.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echarts")
}
