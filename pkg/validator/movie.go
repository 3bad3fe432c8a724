package validator

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dan-solli/watchlist/pkg/store"
)

// Field-level conditions reported by ValidateMovieInput.
var (
	ErrTitleRequired    = errors.New("title required")
	ErrYearOutOfRange   = errors.New("year out of range")
	ErrRatingOutOfRange = errors.New("rating out of range")
)

const (
	MinYear   = 1900
	MinRating = 1
	MaxRating = 5
)

// ValidateMovieInput parses raw form values into a store.MovieInput.
// The title is trimmed and required. Year and rating are optional: blank input
// means absent, anything else must be an integer in [MinYear, currentYear]
// and [MinRating, MaxRating] respectively.
func ValidateMovieInput(title, year, rating string, currentYear int) (store.MovieInput, error) {
	v := New()
	in := store.MovieInput{Title: strings.TrimSpace(title)}

	v.Check(in.Title != "", "title", ErrTitleRequired)

	if y, ok := parseOptional(year); ok {
		in.Year = y
		v.Check(y == nil || (*y >= MinYear && *y <= currentYear), "year", ErrYearOutOfRange)
	} else {
		v.AddError("year", ErrYearOutOfRange)
	}

	if r, ok := parseOptional(rating); ok {
		in.Rating = r
		v.Check(r == nil || (*r >= MinRating && *r <= MaxRating), "rating", ErrRatingOutOfRange)
	} else {
		v.AddError("rating", ErrRatingOutOfRange)
	}

	if err := v.Err(); err != nil {
		return store.MovieInput{}, err
	}
	return in, nil
}

// parseOptional returns (nil, true) for blank input, the parsed value for an
// integer, and ok=false for anything else.
func parseOptional(s string) (*int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return &n, true
}
