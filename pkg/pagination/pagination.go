package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 12
	// MaxLimit caps how many entries any catalog page can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services. Page is zero-based.
type Params struct {
	Page  int
	Limit int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Normalize clamps page to zero or above and applies NormalizeLimit.
func (p Params) Normalize() Params {
	if p.Page < 0 {
		p.Page = 0
	}
	p.Limit = NormalizeLimit(p.Limit)
	return p
}

// Offset returns page × limit, the number of entries to skip.
func (p Params) Offset() int {
	n := p.Normalize()
	return n.Page * n.Limit
}

// Bounds returns the [start, end) slice window of this page over total entries. Pages past the
// end yield an empty window at total.
func (p Params) Bounds(total int) (int, int) {
	if total <= 0 {
		return 0, 0
	}
	n := p.Normalize()
	start := min(n.Page*n.Limit, total)
	return start, min(start+n.Limit, total)
}

// PageCount returns ceil(total / limit).
func PageCount(total, limit int) int {
	if total <= 0 {
		return 0
	}
	limit = NormalizeLimit(limit)
	return (total + limit - 1) / limit
}
