package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DefaultDriver is the database/sql driver name registered by modernc.org/sqlite.
const DefaultDriver = "sqlite"

// CGODriver is the driver name registered by mattn/go-sqlite3 in cgo builds.
const CGODriver = "sqlite3"

const schema = `
	CREATE TABLE IF NOT EXISTS movies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		year INTEGER,
		watched INTEGER DEFAULT 0,
		rating INTEGER,
		created_at INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_movies_created_at ON movies(created_at);
`

const movieColumns = "id, title, year, watched, rating, created_at"

// SQLiteMovieStore implements MovieStore using SQLite as the backend.
type SQLiteMovieStore struct {
	db  *sql.DB
	now func() time.Time
}

// Compile-time interface check
var _ MovieStore = (*SQLiteMovieStore)(nil)

// NewSQLiteMovieStore opens a SQLite-backed movie store with the default driver.
// The dbPath can be a file path or ":memory:" for an in-memory database.
// The schema is not created until Initialize is called.
func NewSQLiteMovieStore(dbPath string) (*SQLiteMovieStore, error) {
	return OpenSQLiteMovieStore(DefaultDriver, dbPath)
}

// OpenSQLiteMovieStore opens a movie store using the named database/sql driver.
// The pool is limited to one connection: the watchlist is a single-writer store,
// and ":memory:" databases are private to their connection.
func OpenSQLiteMovieStore(driver, dbPath string) (*SQLiteMovieStore, error) {
	if driver == "" {
		driver = DefaultDriver
	}

	db, err := sql.Open(driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrStorageUnavailable, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrStorageUnavailable, err)
	}

	return &SQLiteMovieStore{db: db, now: time.Now}, nil
}

// DB returns the underlying database connection.
func (s *SQLiteMovieStore) DB() *sql.DB {
	return s.db
}

// Initialize creates the movies table if it doesn't exist and seeds it when empty.
func (s *SQLiteMovieStore) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: failed to create schema: %w", ErrStorageUnavailable, err)
	}

	if err := s.seed(ctx); err != nil {
		return fmt.Errorf("%w: failed to seed movies: %w", ErrStorageUnavailable, err)
	}

	return nil
}

// seed inserts the example rows when the table is empty.
func (s *SQLiteMovieStore) seed(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&count); err != nil {
		return fmt.Errorf("failed to count movies: %w", err)
	}
	if count > 0 {
		return nil
	}

	base := s.now().UnixMilli()
	for i, m := range seedMovies {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO movies (title, year, watched, rating, created_at) VALUES (?, ?, ?, ?, ?)",
			m.Title, m.Year, boolToInt(m.Watched), m.Rating, base+int64(i),
		)
		if err != nil {
			return fmt.Errorf("failed to insert seed movie %q: %w", m.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListAll returns every movie ordered by the given column, ties broken by id.
func (s *SQLiteMovieStore) ListAll(ctx context.Context, order Order) ([]*Movie, error) {
	order = order.normalize()
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM movies ORDER BY %s %s, id %s", movieColumns, order.Column, dir, dir)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	movies := make([]*Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movies: %w", err)
	}

	return movies, nil
}

// Get retrieves a movie by its ID.
func (s *SQLiteMovieStore) Get(ctx context.Context, id int64) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id)

	movie, err := scanMovie(row)
	if err == sql.ErrNoRows {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}

	return movie, nil
}

// Insert adds a new unwatched movie.
// created_at never goes below the newest stored row, so insertion order
// stays the default sort order even if the wall clock steps back.
func (s *SQLiteMovieStore) Insert(ctx context.Context, in MovieInput) (*Movie, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var newest sql.NullInt64
	if err := tx.QueryRowContext(ctx, "SELECT MAX(created_at) FROM movies").Scan(&newest); err != nil {
		return nil, fmt.Errorf("failed to read newest movie: %w", err)
	}

	createdAt := s.now().UnixMilli()
	if newest.Valid && createdAt <= newest.Int64 {
		createdAt = newest.Int64 + 1
	}

	result, err := tx.ExecContext(ctx,
		"INSERT INTO movies (title, year, watched, rating, created_at) VALUES (?, ?, 0, ?, ?)",
		in.Title, nullInt(in.Year), nullInt(in.Rating), createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert movie: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &Movie{
		ID:        id,
		Title:     in.Title,
		Year:      cloneInt(in.Year),
		Watched:   false,
		Rating:    cloneInt(in.Rating),
		CreatedAt: createdAt,
	}, nil
}

// Update overwrites title, year and rating of an existing movie.
func (s *SQLiteMovieStore) Update(ctx context.Context, id int64, in MovieInput) error {
	return s.execOne(ctx, "update movie",
		"UPDATE movies SET title = ?, year = ?, rating = ? WHERE id = ?",
		in.Title, nullInt(in.Year), nullInt(in.Rating), id,
	)
}

// SetWatched sets the watched flag of an existing movie.
func (s *SQLiteMovieStore) SetWatched(ctx context.Context, id int64, watched bool) error {
	return s.execOne(ctx, "set watched",
		"UPDATE movies SET watched = ? WHERE id = ?",
		boolToInt(watched), id,
	)
}

// Delete removes a movie.
func (s *SQLiteMovieStore) Delete(ctx context.Context, id int64) error {
	return s.execOne(ctx, "delete movie", "DELETE FROM movies WHERE id = ?", id)
}

// execOne runs a single-row statement in a transaction and reports
// ErrMovieNotFound when it matched nothing.
func (s *SQLiteMovieStore) execOne(ctx context.Context, op, query string, args ...interface{}) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrMovieNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Count returns the total number of movies.
func (s *SQLiteMovieStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return count, nil
}

// Close releases database resources.
func (s *SQLiteMovieStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMovie(row rowScanner) (*Movie, error) {
	var movie Movie
	var year, rating, createdAt sql.NullInt64
	var watched int64

	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&year,
		&watched,
		&rating,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan movie: %w", err)
	}

	if year.Valid {
		movie.Year = IntPtr(int(year.Int64))
	}
	if rating.Valid {
		movie.Rating = IntPtr(int(rating.Int64))
	}
	movie.Watched = watched != 0
	movie.CreatedAt = createdAt.Int64

	return &movie, nil
}

func nullInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
