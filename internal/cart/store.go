package cart

import (
	"math"
	"sync"

	"github.com/yassinehussein4-cyber/storefront/internal/catalog"
)

// Line is one product held in the cart with a snapshot of its listing at add time.
type Line struct {
	ProductID     string  `json:"product_id"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"image_url,omitempty"`
	CategoryTitle string  `json:"category_title,omitempty"`
	Qty           int     `json:"qty"`
}

// Store holds at most one line per product, each with a quantity of at least one.
type Store struct {
	mu     sync.Mutex
	lines  []Line
	subs   map[int]func([]Line)
	nextID int
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{subs: map[int]func([]Line){}}
}

// Add appends product with qty, or raises the quantity of its existing line. qty below one is
// treated as one.
func (s *Store) Add(product catalog.Product, qty int) {
	if qty < 1 {
		qty = 1
	}
	s.mutate(func() bool {
		if i := s.indexOf(product.ID); i >= 0 {
			s.lines[i].Qty += qty
			return true
		}
		s.lines = append(s.lines, Line{
			ProductID:     product.ID,
			Title:         product.Title,
			Price:         product.Price,
			ImageURL:      product.ImageURL,
			CategoryTitle: product.CategoryTitle,
			Qty:           qty,
		})
		return true
	})
}

func (s *Store) Increment(productID string) {
	s.mutate(func() bool {
		i := s.indexOf(productID)
		if i < 0 {
			return false
		}
		s.lines[i].Qty++
		return true
	})
}

// Decrement lowers the quantity by one but never below one; use Remove to drop the line.
func (s *Store) Decrement(productID string) {
	s.mutate(func() bool {
		i := s.indexOf(productID)
		if i < 0 || s.lines[i].Qty <= 1 {
			return false
		}
		s.lines[i].Qty--
		return true
	})
}

// SetQuantity stores max(1, floor(qty)); NaN and infinities store 1.
func (s *Store) SetQuantity(productID string, qty float64) {
	next := ClampQuantity(qty)
	s.mutate(func() bool {
		i := s.indexOf(productID)
		if i < 0 || s.lines[i].Qty == next {
			return false
		}
		s.lines[i].Qty = next
		return true
	})
}

func (s *Store) Remove(productID string) {
	s.mutate(func() bool {
		i := s.indexOf(productID)
		if i < 0 {
			return false
		}
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		return true
	})
}

func (s *Store) Clear() {
	s.mutate(func() bool {
		if len(s.lines) == 0 {
			return false
		}
		s.lines = nil
		return true
	})
}

// Lines returns a copy of the cart in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLines()
}

// Line returns the line for productID.
func (s *Store) Line(productID string) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(productID); i >= 0 {
		return s.lines[i], true
	}
	return Line{}, false
}

// Count is the total number of units across lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.lines {
		total += l.Qty
	}
	return total
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

// Subscribe registers fn to receive the lines after every change and returns an unsubscribe func.
func (s *Store) Subscribe(fn func([]Line)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// ClampQuantity converts arbitrary numeric input into a valid line quantity.
func ClampQuantity(qty float64) int {
	if math.IsNaN(qty) || math.IsInf(qty, 0) {
		return 1
	}
	floored := math.Floor(qty)
	if floored < 1 {
		return 1
	}
	if floored > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(floored)
}

// mutate runs change under the lock and, when it reports a change, notifies subscribers in
// registration order with a copy of the lines.
func (s *Store) mutate(change func() bool) {
	s.mu.Lock()
	if !change() {
		s.mu.Unlock()
		return
	}
	snapshot := s.copyLines()
	subs := make([]func([]Line), 0, len(s.subs))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (s *Store) indexOf(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) copyLines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}
