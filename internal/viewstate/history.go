package viewstate

import (
	"net/url"
	"sync"
)

// History is an in-memory address bar: a stack of query strings with a cursor.
type History struct {
	mu           sync.Mutex
	entries      []url.Values
	index        int
	replacements int
}

// NewHistory starts a history at the given query.
func NewHistory(initial url.Values) *History {
	if initial == nil {
		initial = url.Values{}
	}
	return &History{entries: []url.Values{cloneValues(initial)}}
}

// Current returns a copy of the active entry.
func (h *History) Current() url.Values {
	h.mu.Lock()
	defer h.mu.Unlock()
	return cloneValues(h.entries[h.index])
}

// Push discards any forward entries and appends values as the new active entry.
func (h *History) Push(values url.Values) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], cloneValues(values))
	h.index = len(h.entries) - 1
}

// Replace overwrites the active entry in place.
func (h *History) Replace(values url.Values) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = cloneValues(values)
	h.replacements++
}

// Back moves the cursor to the previous entry; it reports false at the first entry.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return false
	}
	h.index--
	return true
}

// Len is the number of entries, including forward entries left by Back.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Replacements counts Replace calls since creation.
func (h *History) Replacements() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.replacements
}
