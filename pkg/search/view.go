package search

import (
	"sync"

	"github.com/dan-solli/watchlist/pkg/store"
)

// View holds the loaded collection and the active criteria, and recomputes
// the projection whenever either changes.
// It is safe for concurrent use.
type View struct {
	mu       sync.RWMutex
	movies   []*store.Movie
	criteria Criteria
	items    []*store.Movie
}

// NewView creates an empty view with default criteria.
func NewView() *View {
	return &View{
		criteria: DefaultCriteria(),
		items:    []*store.Movie{},
	}
}

// SetMovies replaces the full collection, typically after a reload.
// The view keeps its own copies.
func (v *View) SetMovies(movies []*store.Movie) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.movies = cloneMovies(movies)
	v.recompute()
}

// SetSearchText sets the title search text.
func (v *View) SetSearchText(text string) {
	v.update(func(c *Criteria) { c.SearchText = text })
}

// SetWatchedFilter sets the watched-state filter.
func (v *View) SetWatchedFilter(f WatchedFilter) {
	v.update(func(c *Criteria) { c.Watched = f })
}

// SetSortKey sets the sort key.
func (v *View) SetSortKey(k SortKey) {
	v.update(func(c *Criteria) { c.SortKey = k })
}

// SetSortDirection sets the sort direction.
func (v *View) SetSortDirection(d SortDirection) {
	v.update(func(c *Criteria) { c.Direction = d })
}

// Criteria returns the active criteria.
func (v *View) Criteria() Criteria {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.criteria
}

// Movies returns copies of the full collection.
func (v *View) Movies() []*store.Movie {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneMovies(v.movies)
}

// Items returns copies of the current projection.
// Changing a returned movie does not affect the view.
func (v *View) Items() []*store.Movie {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneMovies(v.items)
}

func (v *View) update(fn func(c *Criteria)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(&v.criteria)
	ApplyDefaults(&v.criteria)
	v.recompute()
}

func cloneMovies(movies []*store.Movie) []*store.Movie {
	out := make([]*store.Movie, len(movies))
	for i, m := range movies {
		out[i] = m.Clone()
	}
	return out
}

// recompute must be called with mu held.
func (v *View) recompute() {
	v.items = Apply(v.movies, v.criteria)
}
