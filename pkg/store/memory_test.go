package store

import (
	"context"
	"sync"
	"testing"
	"time"
)

// TestMemoryMovieStore_ReturnsCopies verifies callers cannot mutate stored movies.
func TestMemoryMovieStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryMovieStore()
	ctx := context.Background()

	movie, err := store.Insert(ctx, MovieInput{Title: "Original", Year: IntPtr(2000)})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	movie.Title = "Mutated"
	*movie.Year = 1

	got, err := store.Get(ctx, movie.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Original" || *got.Year != 2000 {
		t.Errorf("Stored movie was mutated: %+v", got)
	}
}

// TestMemoryMovieStore_CreatedAtNeverGoesBackwards mirrors the SQLite clamp.
func TestMemoryMovieStore_CreatedAtNeverGoesBackwards(t *testing.T) {
	store := NewMemoryMovieStore()
	ctx := context.Background()

	fixed := time.UnixMilli(1_000)
	store.now = func() time.Time { return fixed }

	first, err := store.Insert(ctx, MovieInput{Title: "A"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	second, err := store.Insert(ctx, MovieInput{Title: "B"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if second.CreatedAt <= first.CreatedAt {
		t.Errorf("CreatedAt not increasing: %d then %d", first.CreatedAt, second.CreatedAt)
	}
}

// TestMemoryMovieStore_ConcurrentAccess exercises the mutex under the race detector.
func TestMemoryMovieStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryMovieStore()
	ctx := context.Background()
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := store.Insert(ctx, MovieInput{Title: "Concurrent"})
			if err != nil {
				t.Errorf("Insert failed: %v", err)
				return
			}
			if err := store.SetWatched(ctx, m.ID, true); err != nil {
				t.Errorf("SetWatched failed: %v", err)
			}
			if _, err := store.ListAll(ctx, DefaultOrder); err != nil {
				t.Errorf("ListAll failed: %v", err)
			}
		}()
	}
	wg.Wait()

	count, _ := store.Count(ctx)
	if count != 13 {
		t.Errorf("Count: got %d, want 13", count)
	}
}
