package watchlist

import (
	"github.com/dan-solli/watchlist/pkg/search"
	"github.com/dan-solli/watchlist/pkg/store"
)

// Type re-exports for caller convenience

// Movie is re-exported from store package
type Movie = store.Movie

// Criteria is re-exported from search package
type Criteria = search.Criteria

// WatchedFilter is re-exported from search package
type WatchedFilter = search.WatchedFilter

// SortKey is re-exported from search package
type SortKey = search.SortKey

// SortDirection is re-exported from search package
type SortDirection = search.SortDirection

// Projection constants re-exported from search package
const (
	FilterAll       = search.FilterAll
	FilterWatched   = search.FilterWatched
	FilterUnwatched = search.FilterUnwatched
	SortByCreatedAt = search.SortByCreatedAt
	SortByYear      = search.SortByYear
	Ascending       = search.Ascending
	Descending      = search.Descending
)
