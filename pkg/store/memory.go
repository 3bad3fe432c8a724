package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryMovieStore is an in-memory implementation of MovieStore.
// It uses a map to store movies and provides thread-safe access via RWMutex.
// Note: This implementation does not persist movies across restarts.
type MemoryMovieStore struct {
	movies map[int64]*Movie
	nextID int64
	now    func() time.Time
	mu     sync.RWMutex
}

// Compile-time interface check
var _ MovieStore = (*MemoryMovieStore)(nil)

// NewMemoryMovieStore creates a new in-memory movie store.
func NewMemoryMovieStore() *MemoryMovieStore {
	return &MemoryMovieStore{
		movies: make(map[int64]*Movie),
		nextID: 1,
		now:    time.Now,
	}
}

// Initialize seeds the store when it is empty.
func (m *MemoryMovieStore) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.movies) > 0 {
		return nil
	}

	base := m.now().UnixMilli()
	for i, s := range seedMovies {
		id := m.nextID
		m.nextID++
		m.movies[id] = &Movie{
			ID:        id,
			Title:     s.Title,
			Year:      IntPtr(s.Year),
			Watched:   s.Watched,
			Rating:    IntPtr(s.Rating),
			CreatedAt: base + int64(i),
		}
	}
	return nil
}

// ListAll returns copies of all movies in the given order, ties broken by id.
func (m *MemoryMovieStore) ListAll(ctx context.Context, order Order) ([]*Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order = order.normalize()
	movies := make([]*Movie, 0, len(m.movies))
	for _, movie := range m.movies {
		movies = append(movies, movie.Clone())
	}

	sort.Slice(movies, func(i, j int) bool {
		c := compareColumn(movies[i], movies[j], order.Column)
		if c == 0 {
			c = compareInt64(movies[i].ID, movies[j].ID)
		}
		if order.Desc {
			return c > 0
		}
		return c < 0
	})

	return movies, nil
}

// Get returns a copy of the movie with the given ID.
func (m *MemoryMovieStore) Get(ctx context.Context, id int64) (*Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	movie, ok := m.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	return movie.Clone(), nil
}

// Insert adds a new unwatched movie.
func (m *MemoryMovieStore) Insert(ctx context.Context, in MovieInput) (*Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	createdAt := m.now().UnixMilli()
	for _, existing := range m.movies {
		if existing.CreatedAt >= createdAt {
			createdAt = existing.CreatedAt + 1
		}
	}

	movie := &Movie{
		ID:        m.nextID,
		Title:     in.Title,
		Year:      cloneInt(in.Year),
		Rating:    cloneInt(in.Rating),
		CreatedAt: createdAt,
	}
	m.nextID++
	m.movies[movie.ID] = movie

	return movie.Clone(), nil
}

// Update overwrites title, year and rating of an existing movie.
func (m *MemoryMovieStore) Update(ctx context.Context, id int64, in MovieInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	movie, ok := m.movies[id]
	if !ok {
		return ErrMovieNotFound
	}
	movie.Title = in.Title
	movie.Year = cloneInt(in.Year)
	movie.Rating = cloneInt(in.Rating)
	return nil
}

// SetWatched sets the watched flag of an existing movie.
func (m *MemoryMovieStore) SetWatched(ctx context.Context, id int64, watched bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	movie, ok := m.movies[id]
	if !ok {
		return ErrMovieNotFound
	}
	movie.Watched = watched
	return nil
}

// Delete removes a movie. IDs are never handed out again.
func (m *MemoryMovieStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.movies[id]; !ok {
		return ErrMovieNotFound
	}
	delete(m.movies, id)
	return nil
}

// Count returns the number of stored movies.
func (m *MemoryMovieStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.movies)), nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryMovieStore) Close() error {
	return nil
}

// compareColumn orders two movies by a safelisted column the way SQLite does:
// NULL sorts before any value.
func compareColumn(a, b *Movie, column string) int {
	switch column {
	case "year":
		return compareNullable(a.Year, b.Year)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "id":
		return compareInt64(a.ID, b.ID)
	default:
		return compareInt64(a.CreatedAt, b.CreatedAt)
	}
}

func compareNullable(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return compareInt64(int64(*a), int64(*b))
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
