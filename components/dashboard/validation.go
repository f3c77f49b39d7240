package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidConfiguration wraps every schema violation.
var ErrInvalidConfiguration = errors.New("dashboard: invalid configuration")

// ConfigViolation is one failed schema rule. Field is the dotted path into
// the configuration ("" for the object itself).
type ConfigViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ConfigError reports every violation found for one page or widget
// configuration. It matches ErrInvalidConfiguration with errors.Is.
type ConfigError struct {
	Code       string
	Violations []ConfigViolation
	cause      error
}

func (e *ConfigError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field == "" {
			parts = append(parts, v.Message)
			continue
		}
		parts = append(parts, v.Field+": "+v.Message)
	}
	return fmt.Sprintf("%s for %s: %s", ErrInvalidConfiguration, e.Code, strings.Join(parts, "; "))
}

// Unwrap exposes the sentinel and the schema error.
func (e *ConfigError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrInvalidConfiguration}
	}
	return []error{ErrInvalidConfiguration, e.cause}
}

// Fields lists the distinct offending fields in order.
func (e *ConfigError) Fields() []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range e.Violations {
		if v.Field == "" || seen[v.Field] {
			continue
		}
		seen[v.Field] = true
		out = append(out, v.Field)
	}
	return out
}

func newConfigError(code string, err error) *ConfigError {
	out := &ConfigError{Code: code, cause: err}
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		collectViolations(verr, &out.Violations)
		sort.SliceStable(out.Violations, func(i, j int) bool {
			return out.Violations[i].Field < out.Violations[j].Field
		})
	}
	if len(out.Violations) == 0 {
		out.Violations = []ConfigViolation{{Message: err.Error()}}
	}
	return out
}

// collectViolations keeps the leaf causes; parents only summarise them.
func collectViolations(verr *jsonschema.ValidationError, out *[]ConfigViolation) {
	if len(verr.Causes) == 0 {
		*out = append(*out, ConfigViolation{
			Field:   pointerToField(verr.InstanceLocation),
			Message: verr.Message,
		})
		return
	}
	for _, cause := range verr.Causes {
		collectViolations(cause, out)
	}
}

func pointerToField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	segments := strings.Split(ptr, "/")
	for i, seg := range segments {
		seg = strings.ReplaceAll(seg, "~1", "/")
		segments[i] = strings.ReplaceAll(seg, "~0", "~")
	}
	return strings.Join(segments, ".")
}

// ConfigValidator validates widget configuration payloads against their schema.
type ConfigValidator interface {
	Validate(def WidgetDefinition, config map[string]any) error
}

// JSONSchemaValidator compiles page and widget schemas once per code and
// validates configuration maps. Failures are returned as *ConfigError.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures the provided configuration satisfies the widget schema.
func (v *JSONSchemaValidator) Validate(def WidgetDefinition, config map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	var payload map[string]any
	if config == nil {
		payload = map[string]any{}
	} else {
		data, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("dashboard: marshal config for %s: %w", def.Code, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("dashboard: normalize config for %s: %w", def.Code, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return newConfigError(def.Code, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(def WidgetDefinition) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[def.Code]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", def.Code, err)
	}
	compiler := jsonschema.NewCompiler()
	name := def.Code + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", def.Code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", def.Code, err)
	}
	v.mu.Lock()
	v.compiled[def.Code] = compiled
	v.mu.Unlock()
	return compiled, nil
}

