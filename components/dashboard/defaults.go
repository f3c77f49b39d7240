package dashboard

import (
	"github.com/go-echarts/go-echarts/v2/types"
)

// Widget definition codes outside the pages.
const (
	WidgetAlerts         = "bizdash.widget.alerts"
	WidgetPaymentMetrics = "bizdash.widget.payment_metrics"
	WidgetBarChart       = "bizdash.widget.bar_chart"
	WidgetLineChart      = "bizdash.widget.line_chart"
	WidgetPieChart       = "bizdash.widget.pie_chart"
)

var chartThemes = []string{
	types.ThemeWesteros,
	types.ThemeWalden,
	types.ThemeWonderland,
	types.ThemeChalk,
	types.ThemeMacarons,
	types.ThemeShine,
}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code: PageMarketing.DefinitionCode(),
		Name: "Marketing",
		NameLocalized: map[string]string{
			"es": "Marketing",
		},
		Description: "Campaign spend, reach and return",
		DescriptionLocalized: map[string]string{
			"es": "Inversión, alcance y retorno de campañas",
		},
		Category: "pages",
		Schema:   pageSchema(),
	},
	{
		Code: PageFinance.DefinitionCode(),
		Name: "Finance",
		NameLocalized: map[string]string{
			"es": "Finanzas",
		},
		Description: "Revenue, costs, cash flow and budget",
		DescriptionLocalized: map[string]string{
			"es": "Ingresos, costos, flujo de caja y presupuesto",
		},
		Category: "pages",
		Schema:   pageSchema(),
	},
	{
		Code: PageSales.DefinitionCode(),
		Name: "Sales",
		NameLocalized: map[string]string{
			"es": "Ventas",
		},
		Description: "Orders, customers and products",
		Category:    "pages",
		Schema:      pageSchema(),
	},
	{
		Code: PageCrossAnalysis.DefinitionCode(),
		Name: "Cross analysis",
		NameLocalized: map[string]string{
			"es": "Análisis cruzado",
		},
		Description: "Marketing spend against sales outcomes",
		Category:    "pages",
		Schema:      pageSchema(),
	},
	{
		Code: WidgetAlerts,
		Name: "Alerts",
		NameLocalized: map[string]string{
			"es": "Alertas",
		},
		Description: "Open business alerts and recommended actions",
		Category:    "alerts",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": 50, "default": 10},
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetPaymentMetrics,
		Name: "Payment methods",
		NameLocalized: map[string]string{
			"es": "Métodos de pago",
		},
		Description: "Collected amounts by payment method",
		Category:    "finance",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"currency": map[string]any{"type": "string", "pattern": "^[A-Za-z]{3}$"},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetBarChart,
		Name:        "Bar Chart",
		Description: "Bar chart over arbitrary rows.",
		Category:    "charts",
		Schema:      chartConfigSchema(true),
	},
	{
		Code:        WidgetLineChart,
		Name:        "Line Chart",
		Description: "Line chart over arbitrary rows.",
		Category:    "charts",
		Schema:      chartConfigSchema(false),
	},
	{
		Code:        WidgetPieChart,
		Name:        "Pie Chart",
		Description: "Pie chart over arbitrary rows.",
		Category:    "charts",
		Schema:      chartConfigSchema(false),
	},
}

func chartSeriesSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"data_key": map[string]any{"type": "string", "minLength": 1},
			"dataKey":  map[string]any{"type": "string", "minLength": 1},
			"label":    map[string]any{"type": "string"},
			"color":    map[string]any{"type": "string", "pattern": "^#[0-9A-Fa-f]{6}$"},
		},
	}
}

func chartConfigSchema(includeLayout bool) map[string]any {
	props := map[string]any{
		"title":    map[string]any{"type": "string", "default": "Chart"},
		"subtitle": map[string]any{"type": "string"},
		"rows": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"type": "object"},
		},
		"series":   map[string]any{"type": "array", "items": chartSeriesSchema()},
		"axis_key": map[string]any{"type": "string", "default": DefaultAxisKey},
		"height":   map[string]any{"type": "string"},
		"theme":    map[string]any{"type": "string", "enum": chartThemes},
		"dynamic":  map[string]any{"type": "boolean", "default": false},
		"refresh_endpoint": map[string]any{
			"type": "string",
		},
	}
	if includeLayout {
		props["layout"] = map[string]any{
			"type":    "string",
			"enum":    []string{string(LayoutVertical), string(LayoutHorizontal)},
			"default": string(LayoutVertical),
		}
	}
	return map[string]any{
		"type":       "object",
		"required":   []string{"rows"},
		"properties": props,
	}
}

// DefaultWidgetDefinitions returns copies of built-in page and widget definitions.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}
