package turnclient

import "sync"

// Store holds the conversation timeline shared between the stream consumer
// and the rendering side. All methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	items   []Item
	loading bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Items returns a copy of the timeline.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// SetItems replaces the whole timeline.
func (s *Store) SetItems(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

// AppendItem adds one item to the end of the timeline.
func (s *Store) AppendItem(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
}

// Loading reports whether an assistant response is pending.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SetLoading flips the pending-response flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// Reset clears the timeline. The loading flag is left as-is; callers that
// abort a pending turn clear it explicitly.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}
