package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-bizdash/components/dashboard"
)

const defaultProviderPackage = "github.com/goliatone/go-bizdash/components/dashboard/providers"

type scaffoldCmd struct {
	Code            string   `required:"" help:"Fully-qualified widget code (e.g. bizdash.widget.refunds)."`
	Name            string   `required:"" help:"Display name for the widget."`
	Description     string   `required:"" help:"One-line description used in manifests."`
	Category        string   `default:"custom" help:"Widget category (marketing, finance, sales...)."`
	Page            string   `help:"Append the widget to this page's layout (marketing, finance, sales, cross-analysis)."`
	ManifestPath    string   `required:"" type:"path" help:"Path to the widget manifest YAML file to update."`
	SchemaPath      string   `type:"path" help:"Optional path to a JSON schema file for the widget configuration."`
	Tag             []string `help:"Optional tags to include in the manifest (use multiple --tag flags)."`
	Maintainer      []string `help:"Maintainers to record in the manifest."`
	Capabilities    []string `help:"Provider capability labels (html,json,sse,...)."`
	DocsURL         string   `help:"Link to provider documentation."`
	ProviderPackage string   `default:"github.com/goliatone/go-bizdash/components/dashboard/providers" help:"Go package where the provider factory lives."`
	ProviderEntry   string   `help:"Factory identifier recorded in the manifest (defaults to New<Widget>Provider)."`
	ProviderOut     string   `help:"File path for the generated provider stub (defaults to components/dashboard/providers/<code>_provider.go)."`
	Overwrite       bool     `help:"Overwrite existing provider stub / manifest entry if present."`
	SkipProvider    bool     `name:"skip-provider" help:"Skip provider stub generation."`

	out io.Writer
}

func (cmd *scaffoldCmd) Run() error {
	out := cmd.out
	if out == nil {
		out = os.Stdout
	}
	if err := cmd.validate(); err != nil {
		return err
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("scaffold: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	if !cmd.Overwrite {
		for _, widget := range doc.Widgets {
			if widget.Definition.Code == cmd.Code {
				return fmt.Errorf("scaffold: manifest already defines widget %s (use --overwrite to replace)", cmd.Code)
			}
		}
	}
	schema, err := cmd.loadSchema()
	if err != nil {
		return err
	}

	providerType := deriveBaseName(cmd.Code) + "Provider"
	providerEntry := cmd.ProviderEntry
	if providerEntry == "" {
		providerEntry = fmt.Sprintf("%s.New%s", cmd.ProviderPackage, providerType)
	}
	entry := dashboard.ManifestWidget{
		Definition: dashboard.WidgetDefinition{
			Code:        cmd.Code,
			Name:        cmd.Name,
			Description: cmd.Description,
			Category:    cmd.Category,
			Schema:      schema,
		},
		Provider: dashboard.ManifestProvider{
			Name:         cmd.Name + " Provider",
			Summary:      cmd.Description,
			Entry:        providerEntry,
			Package:      cmd.ProviderPackage,
			DocsURL:      cmd.DocsURL,
			Capabilities: cmd.Capabilities,
		},
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}
	upsertWidget(doc, entry)
	if cmd.Page != "" {
		if err := placeOnPage(doc, dashboard.PageCode(cmd.Page), cmd.Code); err != nil {
			return err
		}
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}

	if cmd.SkipProvider {
		fmt.Fprintf(out, "Added %s to %s (provider entry recorded as %s)\n", cmd.Code, manifestPath, providerEntry)
		return nil
	}
	providerPath := cmd.ProviderOut
	if providerPath == "" {
		providerPath = filepath.Join("components", "dashboard", "providers", sanitizeFileName(cmd.Code)+"_provider.go")
	}
	if err := writeProviderStub(providerPath, providerType, cmd.Code, cmd.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added %s to %s and generated %s\n", cmd.Code, manifestPath, providerPath)
	return nil
}

func (cmd *scaffoldCmd) validate() error {
	if !strings.Contains(cmd.Code, ".") {
		return fmt.Errorf("scaffold: widget code %s must contain at least one '.' segment", cmd.Code)
	}
	if cmd.Page != "" {
		if _, err := dashboard.ParsePage(cmd.Page); err != nil {
			return fmt.Errorf("scaffold: %w", err)
		}
	}
	return nil
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("scaffold: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("scaffold: parse schema JSON: %w", err)
	}
	return schema, nil
}

func upsertWidget(doc *dashboard.WidgetManifestDocument, entry dashboard.ManifestWidget) {
	replaced := false
	for idx := range doc.Widgets {
		if doc.Widgets[idx].Definition.Code == entry.Definition.Code {
			doc.Widgets[idx] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Widgets = append(doc.Widgets, entry)
	}
	sort.Slice(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Definition.Code < doc.Widgets[j].Definition.Code
	})
}

// placeOnPage appends a widget instance to page's layout, creating the
// layout entry when the manifest has none.
func placeOnPage(doc *dashboard.WidgetManifestDocument, page dashboard.PageCode, code string) error {
	page, err := dashboard.ParsePage(string(page))
	if err != nil {
		return err
	}
	instanceID := sanitizeFileName(code)
	instance := dashboard.WidgetInstance{ID: instanceID, DefinitionID: code}
	for idx := range doc.Layouts {
		if doc.Layouts[idx].Page != page {
			continue
		}
		for _, existing := range doc.Layouts[idx].Widgets {
			if existing.ID == instanceID {
				return nil
			}
		}
		doc.Layouts[idx].Widgets = append(doc.Layouts[idx].Widgets, instance)
		return nil
	}
	doc.Layouts = append(doc.Layouts, dashboard.PageLayout{Page: page, Widgets: []dashboard.WidgetInstance{instance}})
	return nil
}

func loadOrInitManifest(path string) (*dashboard.WidgetManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.WidgetManifestDocument{
				Version: dashboard.ManifestVersion,
				Widgets: []dashboard.ManifestWidget{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("scaffold: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("scaffold: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("scaffold: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("scaffold: write manifest: %w", err)
	}
	return encoder.Close()
}

func writeProviderStub(path, providerType, code string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("scaffold: provider stub %s already exists (use --overwrite or --provider-out)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("scaffold: mkdir provider dir: %w", err)
	}
	pkg := strcase.ToSnake(filepath.Base(filepath.Dir(path)))
	if pkg == "" || pkg == "." {
		pkg = "providers"
	}
	content := fmt.Sprintf(`package %[1]s

import (
	"context"

	"github.com/goliatone/go-bizdash/components/dashboard"
)

// %[2]s fetches data for %[3]s widgets.
type %[2]s struct {
	source dashboard.DataSource
}

// New%[2]s wires the provider into the dashboard registry.
func New%[2]s(source dashboard.DataSource) dashboard.Provider {
	return &%[2]s{source: source}
}

// Fetch loads the widget payload for the viewer's range.
func (p *%[2]s) Fetch(ctx context.Context, meta dashboard.WidgetContext) (dashboard.WidgetData, error) {
	return dashboard.WidgetData{
		"range": meta.Range.Label(),
	}, nil
}
`, pkg, providerType, code)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("scaffold: write provider stub: %w", err)
	}
	return nil
}

func deriveBaseName(code string) string {
	parts := strings.Split(code, ".")
	slug := strings.TrimSpace(parts[len(parts)-1])
	if slug == "" {
		slug = code
	}
	return strcase.ToPascal(slug)
}

func sanitizeFileName(code string) string {
	return strcase.ToSnake(strings.NewReplacer(".", "_", "/", "_").Replace(code))
}
