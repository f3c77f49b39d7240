package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeManifest(t *testing.T) {
	const payload = `
version: "1"
name: regional-pack
widgets:
  - definition:
      code: regional.widget.stores
      name: Store ranking
      description: Revenue per store.
      category: sales
      schema:
        type: object
        properties:
          limit:
            type: integer
    provider:
      name: Store Provider
      summary: Calls the store ranking API.
      entry: github.com/example/regional.Provider
      package: github.com/example/regional
      docs_url: https://example.com/widgets/stores
      capabilities: ["html","json"]
layouts:
  - page: sales
    widgets:
      - id: sales-stores
        definition_id: regional.widget.stores
        configuration:
          limit: 3
`
	doc, err := DecodeManifest(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 1)

	widget := doc.Widgets[0]
	assert.Equal(t, "regional.widget.stores", widget.Definition.Code)
	assert.Equal(t, "Store ranking", widget.Definition.Name)
	assert.Equal(t, "Store Provider", widget.Provider.Name)
	assert.Equal(t, "github.com/example/regional.Provider", widget.Provider.Entry)

	require.Len(t, doc.Layouts, 1)
	assert.Equal(t, PageSales, doc.Layouts[0].Page)
	require.Len(t, doc.Layouts[0].Widgets, 1)
	assert.Equal(t, "regional.widget.stores", doc.Layouts[0].Widgets[0].DefinitionID)
	assert.Equal(t, 3, doc.Layouts[0].Widgets[0].Configuration["limit"])
}

func TestDecodeManifestRejectsUnknownFields(t *testing.T) {
	const payload = `
widgets:
  - definition:
      code: a.widget
      name: A
      colour: red
`
	_, err := DecodeManifest(strings.NewReader(payload))
	require.Error(t, err)
}

func TestRegistryLoadManifestDocument(t *testing.T) {
	doc := &WidgetManifestDocument{
		Version: manifestVersionV1,
		Widgets: []ManifestWidget{
			{
				Definition: WidgetDefinition{
					Code: "acme.widget.inventory",
					Name: "Inventory",
				},
				Provider: ManifestProvider{
					Name:    "Inventory Provider",
					Summary: "Fetches inventory counts",
					Entry:   "github.com/acme/widgets.NewInventoryProvider",
				},
			},
		},
		Layouts: []PageLayout{
			{Page: PageSales, Widgets: []WidgetInstance{{ID: "inv", DefinitionID: "acme.widget.inventory"}}},
		},
	}
	reg := NewRegistry()

	err := reg.LoadManifestDocument(doc)
	require.NoError(t, err)

	def, ok := reg.Definition("acme.widget.inventory")
	require.True(t, ok)
	assert.Equal(t, "Inventory", def.Name)

	meta, ok := reg.ProviderMetadata("acme.widget.inventory")
	require.True(t, ok)
	assert.Equal(t, "Inventory Provider", meta.Name)

	layout, ok := reg.Layout(PageSales)
	require.True(t, ok)
	require.Len(t, layout.Widgets, 1)
	assert.Equal(t, "inv", layout.Widgets[0].ID)
}

func TestRegistryLoadManifestRejectsUnknownLayoutWidget(t *testing.T) {
	reg := NewRegistry()
	err := reg.LoadManifestDocument(&WidgetManifestDocument{
		Version: manifestVersionV1,
		Layouts: []PageLayout{{Page: PageFinance, Widgets: []WidgetInstance{{DefinitionID: "missing.widget"}}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown widget")
}

func TestManifestDuplicateCodes(t *testing.T) {
	const payload = `
widgets:
  - definition:
      code: dup.widget
      name: First
  - definition:
      code: dup.widget
      name: Second
`
	_, err := DecodeManifest(strings.NewReader(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicates widget code")
}

func TestManifestRejectsUnknownPage(t *testing.T) {
	const payload = `
layouts:
  - page: inventory
`
	_, err := DecodeManifest(strings.NewReader(payload))
	require.ErrorIs(t, err, ErrUnknownPage)
}

func TestDocsManifestsAreValid(t *testing.T) {
	dir := filepath.Join("..", "..", "docs", "manifests")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	codes := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := ReadManifest(path)
		require.NoErrorf(t, err, "manifest %s should parse", path)
		for _, widget := range doc.Widgets {
			if prev, exists := codes[widget.Definition.Code]; exists {
				t.Fatalf("widget code %s defined in both %s and %s", widget.Definition.Code, prev, path)
			}
			codes[widget.Definition.Code] = path
		}
		require.NoError(t, NewRegistry().LoadManifestDocument(doc))
	}
}

func TestShippedManifestLoads(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, RegisterDefinitions(registry))
	doc, err := registry.LoadManifestFile(filepath.Join("..", "..", "docs", "manifests", "bizdash.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "bizdash-defaults", doc.Name)

	_, ok := registry.Definition("bizdash.widget.top_products")
	assert.True(t, ok)
	layout, ok := registry.Layout(PageSales)
	require.True(t, ok)
	require.NotEmpty(t, layout.Widgets)
	assert.Equal(t, "sales-top-products", layout.Widgets[0].ID)
}
