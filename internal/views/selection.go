package views

import (
	"slices"
	"strings"
	"sync"
)

// MaxSelection is the most products that can be compared at once
const MaxSelection = 3

// SelectionSet is an ordered set of distinct SKUs holding at most
// MaxSelection members. Removing the last member is allowed.
type SelectionSet struct {
	mu    sync.Mutex
	items []string
}

// NewSelectionSet creates a set from skus, keeping the first MaxSelection
// distinct non-blank values
func NewSelectionSet(skus ...string) *SelectionSet {
	s := &SelectionSet{items: []string{}}
	for _, sku := range skus {
		s.Add(sku)
	}
	return s
}

// Add appends sku. A blank sku, a duplicate or an add at capacity is a
// no-op; the return value reports whether the set changed.
func (s *SelectionSet) Add(sku string) bool {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) >= MaxSelection || slices.Contains(s.items, sku) {
		return false
	}
	s.items = append(s.items, sku)
	return true
}

// Remove deletes sku if present
func (s *SelectionSet) Remove(sku string) bool {
	sku = strings.TrimSpace(sku)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.items, sku)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// Toggle removes sku if present, otherwise adds it
func (s *SelectionSet) Toggle(sku string) bool {
	if s.Contains(sku) {
		return s.Remove(sku)
	}
	return s.Add(sku)
}

// Reset empties the set
func (s *SelectionSet) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = []string{}
}

// Replace swaps the membership for skus, applying the same rules as Add
func (s *SelectionSet) Replace(skus []string) {
	next := NewSelectionSet(skus...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = next.items
}

// Items returns a copy of the members in insertion order
func (s *SelectionSet) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *SelectionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *SelectionSet) Contains(sku string) bool {
	sku = strings.TrimSpace(sku)

	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.items, sku)
}
