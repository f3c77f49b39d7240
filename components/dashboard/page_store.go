package dashboard

import (
	"errors"
	"sync"
)

// ErrStaleResponse is returned when a page load finishes after a newer load
// for the same key has started.
var ErrStaleResponse = errors.New("dashboard: stale page response")

// PageStore keeps the latest committed view per key (viewer and page) and
// hands out request generations. A load takes a generation with Begin and
// may only Commit while that generation is still the newest.
type PageStore struct {
	mu      sync.Mutex
	entries map[string]*pageEntry
}

type pageEntry struct {
	latest    uint64
	committed uint64
	view      PageView
	ok        bool
}

// NewPageStore builds an empty store.
func NewPageStore() *PageStore {
	return &PageStore{entries: make(map[string]*pageEntry)}
}

// PageKey identifies a viewer's page.
func PageKey(viewerID string, page PageCode) string {
	if viewerID == "" {
		viewerID = "anonymous"
	}
	return viewerID + "::" + string(page)
}

// Begin starts a load for key and returns its generation. Any earlier
// generation for key becomes stale.
func (s *PageStore) Begin(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entry(key)
	entry.latest++
	return entry.latest
}

// Commit stores view when gen is still the newest generation for key and
// reports whether it did.
func (s *PageStore) Commit(key string, gen uint64, view PageView) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entry(key)
	if gen != entry.latest || gen <= entry.committed {
		return false
	}
	entry.committed = gen
	entry.view = view
	entry.ok = true
	return true
}

// Current returns the last committed view for key.
func (s *PageStore) Current(key string) (PageView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || !entry.ok {
		return PageView{}, false
	}
	return entry.view, true
}

// Generation returns the newest generation handed out for key.
func (s *PageStore) Generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[key]; ok {
		return entry.latest
	}
	return 0
}

func (s *PageStore) entry(key string) *pageEntry {
	entry, ok := s.entries[key]
	if !ok {
		entry = &pageEntry{}
		s.entries[key] = entry
	}
	return entry
}
