package dashboard

import (
	"net/http"
	"os"
	"strings"
)

const (
	// DefaultEChartsAssetsPath is the local path used to serve ECharts assets.
	DefaultEChartsAssetsPath = "/assets/echarts/"
	// envEChartsCDN overrides the default assets host (e.g., to point at a CDN or self-hosted bucket).
	envEChartsCDN = "BIZDASH_ECHARTS_CDN"
)

// EChartsAssetsHandler serves the ECharts runtime and themes from dir under
// prefix. The runtime is not bundled; dir must hold echarts.min.js and a
// themes/ folder.
func EChartsAssetsHandler(prefix, dir string) http.Handler {
	if prefix == "" {
		prefix = DefaultEChartsAssetsPath
	}
	prefix = ensureTrailingSlash(prefix)
	return http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
}

// DefaultEChartsAssetsHost returns the default assets host, respecting BIZDASH_ECHARTS_CDN if set.
func DefaultEChartsAssetsHost() string {
	if host := strings.TrimSpace(os.Getenv(envEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return DefaultEChartsAssetsPath
}

func ensureTrailingSlash(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
