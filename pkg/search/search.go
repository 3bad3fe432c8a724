// Package search derives the displayed watchlist from the full movie collection.
package search

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/dan-solli/watchlist/pkg/store"
)

// WatchedFilter restricts the projection by watched state.
type WatchedFilter string

const (
	// FilterAll keeps every movie.
	FilterAll WatchedFilter = "all"

	// FilterWatched keeps only watched movies.
	FilterWatched WatchedFilter = "watched"

	// FilterUnwatched keeps only unwatched movies.
	FilterUnwatched WatchedFilter = "unwatched"
)

// SortKey selects the field the projection is ordered by.
type SortKey string

const (
	// SortByCreatedAt orders by insertion time.
	SortByCreatedAt SortKey = "created_at"

	// SortByYear orders by release year. Absent years compare as 0.
	SortByYear SortKey = "year"
)

// SortDirection selects ascending or descending order.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Criteria holds the four independent inputs of the projection.
type Criteria struct {
	SearchText string        // Case-insensitive title substring; blank means no filter
	Watched    WatchedFilter // Default: all
	SortKey    SortKey       // Default: created_at
	Direction  SortDirection // Default: desc
}

// DefaultCriteria returns the criteria used before the user changes anything.
func DefaultCriteria() Criteria {
	c := Criteria{}
	ApplyDefaults(&c)
	return c
}

// ApplyDefaults sets default values for unspecified criteria.
func ApplyDefaults(c *Criteria) {
	if c.Watched == "" {
		c.Watched = FilterAll
	}
	if c.SortKey == "" {
		c.SortKey = SortByCreatedAt
	}
	if c.Direction == "" {
		c.Direction = Descending
	}
}

// ParseWatchedFilter converts user input into a WatchedFilter.
func ParseWatchedFilter(s string) (WatchedFilter, error) {
	switch f := WatchedFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterWatched, FilterUnwatched:
		return f, nil
	}
	return "", fmt.Errorf("invalid watched filter %q: must be all, watched or unwatched", s)
}

// ParseSortKey converts user input into a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByCreatedAt, SortByYear:
		return k, nil
	}
	return "", fmt.Errorf("invalid sort key %q: must be created_at or year", s)
}

// ParseSortDirection converts user input into a SortDirection.
func ParseSortDirection(s string) (SortDirection, error) {
	switch d := SortDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case Ascending, Descending:
		return d, nil
	}
	return "", fmt.Errorf("invalid sort direction %q: must be asc or desc", s)
}

// Apply returns the movies matching c in display order.
// Steps run in a fixed order: watched filter, title search, stable sort.
// The input slice is not modified; the returned slice shares the movie pointers.
func Apply(movies []*store.Movie, c Criteria) []*store.Movie {
	ApplyDefaults(&c)

	// Step 1: Filter by watched state
	results := make([]*store.Movie, 0, len(movies))
	for _, m := range movies {
		switch c.Watched {
		case FilterWatched:
			if !m.Watched {
				continue
			}
		case FilterUnwatched:
			if m.Watched {
				continue
			}
		}
		results = append(results, m)
	}

	// Step 2: Filter by case-folded title substring
	fold := cases.Fold()
	if needle := fold.String(strings.TrimSpace(c.SearchText)); needle != "" {
		matched := results[:0]
		for _, m := range results {
			if strings.Contains(fold.String(m.Title), needle) {
				matched = append(matched, m)
			}
		}
		results = matched
	}

	// Step 3: Stable sort by key
	sort.SliceStable(results, func(i, j int) bool {
		a, b := sortValue(results[i], c.SortKey), sortValue(results[j], c.SortKey)
		if c.Direction == Ascending {
			return a < b
		}
		return a > b
	})

	return results
}

// sortValue returns the comparison value of m for key; absent values are 0.
func sortValue(m *store.Movie, key SortKey) int64 {
	if key == SortByYear {
		if m.Year == nil {
			return 0
		}
		return int64(*m.Year)
	}
	return m.CreatedAt
}
