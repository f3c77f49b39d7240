package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-bizdash/components/daterange"
)

// ViewerPreferences are per-viewer defaults applied when a request leaves
// them unset.
type ViewerPreferences struct {
	Range         daterange.Selector    `json:"range,omitempty"`
	Currency      string                `json:"currency,omitempty"`
	Locale        string                `json:"locale,omitempty"`
	WidgetOrder   map[PageCode][]string `json:"widget_order,omitempty"`
	HiddenWidgets map[string]bool       `json:"hidden_widgets,omitempty"`
}

// PreferenceStore persists viewer preferences.
type PreferenceStore interface {
	Preferences(ctx context.Context, viewer ViewerContext) (ViewerPreferences, error)
	SavePreferences(ctx context.Context, viewer ViewerContext, prefs ViewerPreferences) error
}

// InMemoryPreferenceStore provides a concurrency-safe default store.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]ViewerPreferences
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{
		data: make(map[string]ViewerPreferences),
	}
}

// Preferences returns stored preferences or defaults.
func (s *InMemoryPreferenceStore) Preferences(_ context.Context, viewer ViewerContext) (ViewerPreferences, error) {
	prefs := ViewerPreferences{}
	if viewer.UserID != "" {
		s.mu.RLock()
		if stored, ok := s.data[viewer.UserID]; ok {
			prefs = stored
		}
		s.mu.RUnlock()
	}
	if prefs.Locale == "" {
		prefs.Locale = viewer.Locale
	}
	normalizePreferences(&prefs)
	return prefs, nil
}

// SavePreferences persists preferences for a viewer. Unknown range
// selectors are rejected.
func (s *InMemoryPreferenceStore) SavePreferences(_ context.Context, viewer ViewerContext, prefs ViewerPreferences) error {
	if viewer.UserID == "" {
		return fmt.Errorf("dashboard: preference store requires viewer user id")
	}
	if prefs.Range != "" && !prefs.Range.Valid() {
		return fmt.Errorf("dashboard: unknown range %q", prefs.Range)
	}
	normalizePreferences(&prefs)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[viewer.UserID] = prefs
	return nil
}

func normalizePreferences(prefs *ViewerPreferences) {
	prefs.Currency = strings.ToUpper(strings.TrimSpace(prefs.Currency))
	if prefs.WidgetOrder == nil {
		prefs.WidgetOrder = map[PageCode][]string{}
	}
	if prefs.HiddenWidgets == nil {
		prefs.HiddenWidgets = map[string]bool{}
	}
}
