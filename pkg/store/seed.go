package store

// seedMovies are inserted once, when the movies table is first found empty.
// Their created_at values are assigned in slice order, one millisecond apart.
var seedMovies = []struct {
	Title   string
	Year    int
	Watched bool
	Rating  int
}{
	{Title: "Inception", Year: 2010, Watched: false, Rating: 5},
	{Title: "Interstellar", Year: 2014, Watched: true, Rating: 5},
	{Title: "The Social Network", Year: 2010, Watched: false, Rating: 4},
}

// SeedCount is the number of rows Initialize inserts into an empty store.
var SeedCount = len(seedMovies)
