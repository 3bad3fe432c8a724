// Package store provides storage implementations for the movie watchlist.
package store

import (
	"context"
	"errors"
	"time"
)

// Movie represents a single watchlist entry.
type Movie struct {
	ID        int64  // Store-assigned identifier, never reused
	Title     string // Non-empty title
	Year      *int   // Release year (nil when absent)
	Watched   bool   // Whether the user has seen the film
	Rating    *int   // 1-5 rating (nil when not rated)
	CreatedAt int64  // Insertion time in epoch milliseconds
}

// CreatedTime returns CreatedAt as a time.Time.
func (m *Movie) CreatedTime() time.Time {
	return time.UnixMilli(m.CreatedAt)
}

// Clone returns a deep copy of the movie.
func (m *Movie) Clone() *Movie {
	c := *m
	c.Year = cloneInt(m.Year)
	c.Rating = cloneInt(m.Rating)
	return &c
}

// MovieInput carries the user-editable fields of a movie.
// The store does not validate it; callers run validation first.
type MovieInput struct {
	Title  string
	Year   *int
	Rating *int
}

// Order selects the ordering used by ListAll.
type Order struct {
	Column string // created_at, year, title or id
	Desc   bool
}

// DefaultOrder lists newest entries first.
var DefaultOrder = Order{Column: "created_at", Desc: true}

// MovieStore defines the interface for watchlist persistence.
// Every mutation is atomic per row: a failed write leaves no partial state.
type MovieStore interface {
	// Initialize creates the movies table if needed and seeds it when empty.
	// Safe to call on every start.
	Initialize(ctx context.Context) error

	// ListAll returns every movie in the given order. It does not filter.
	ListAll(ctx context.Context, order Order) ([]*Movie, error)

	// Get returns a single movie or ErrMovieNotFound.
	Get(ctx context.Context, id int64) (*Movie, error)

	// Insert stores a new unwatched movie and returns it with its assigned ID
	// and creation time.
	Insert(ctx context.Context, in MovieInput) (*Movie, error)

	// Update overwrites title, year and rating.
	// Returns ErrMovieNotFound if no row has the given ID.
	Update(ctx context.Context, id int64, in MovieInput) error

	// SetWatched sets the watched flag.
	// Returns ErrMovieNotFound if no row has the given ID.
	SetWatched(ctx context.Context, id int64, watched bool) error

	// Delete removes a movie.
	// Returns ErrMovieNotFound if no row has the given ID.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of stored movies.
	Count(ctx context.Context) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}

// ErrMovieNotFound indicates that no movie exists for the given ID.
var ErrMovieNotFound = errors.New("movie not found")

// ErrStorageUnavailable indicates the table could not be created or seeded.
var ErrStorageUnavailable = errors.New("storage unavailable")

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// orderColumns is the safelist of sortable columns.
var orderColumns = map[string]bool{
	"created_at": true,
	"year":       true,
	"title":      true,
	"id":         true,
}

// normalize returns o with an unknown column replaced by the default.
func (o Order) normalize() Order {
	if !orderColumns[o.Column] {
		return DefaultOrder
	}
	return o
}
