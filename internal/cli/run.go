package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dan-solli/watchlist/pkg/search"
	"github.com/dan-solli/watchlist/pkg/validator"
	"github.com/dan-solli/watchlist/pkg/watchlist"
)

// ErrImportUnavailable is returned by the import command, which has no
// backing data source.
var ErrImportUnavailable = errors.New("import from API is not available")

// env carries the process streams and the opened watchlist to a command.
type env struct {
	w      *watchlist.Watchlist
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = []command{
	{"list", "show the watchlist (-search, -filter, -sort, -dir)", runList},
	{"add", "add a movie (-title, -year, -rating)", runAdd},
	{"edit", "edit a movie (-id, -title, -year, -rating)", runEdit},
	{"toggle", "flip the watched flag (-id)", runToggle},
	{"watched", "set the watched flag (-id, -value)", runWatched},
	{"delete", "delete a movie after confirmation (-id, -yes)", runDelete},
	{"import", "import movies from an external API (not available)", nil},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// Run opens and initializes the watchlist, then executes cfg.Command.
func Run(ctx context.Context, cfg Config, in io.Reader, out, errOut io.Writer) error {
	if out == nil || errOut == nil {
		return errors.New("output is required")
	}

	cmd, ok := lookup(cfg.Command)
	if !ok {
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
	if cmd.run == nil {
		return ErrImportUnavailable
	}

	logger, err := newLogger(cfg.Watchlist.LogLevel, errOut)
	if err != nil {
		return err
	}

	w, err := watchlist.New(cfg.Watchlist)
	if err != nil {
		return err
	}
	defer w.Close()
	w.WithLogger(logger)

	if err := w.Initialize(ctx); err != nil {
		return err
	}

	if in == nil {
		in = strings.NewReader("")
	}
	e := &env{w: w, in: bufio.NewReader(in), out: out, errOut: errOut}

	runErr := cmd.run(ctx, e, cfg.Args)
	if err := w.WriteMetrics(); err != nil {
		logger.Warn("metrics write failed", "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("%s: %w", cmd.name, runErr)
	}
	return nil
}

func newFlagSet(name string, e *env) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.errOut)
	return fs
}

func runList(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("list", e)
	text := fs.String("search", "", "case-insensitive title substring")
	filter := fs.String("filter", string(search.FilterAll), "all, watched or unwatched")
	sortKey := fs.String("sort", string(search.SortByCreatedAt), "created_at or year")
	dir := fs.String("dir", string(search.Descending), "asc or desc")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := search.ParseWatchedFilter(*filter)
	if err != nil {
		return err
	}
	k, err := search.ParseSortKey(*sortKey)
	if err != nil {
		return err
	}
	d, err := search.ParseSortDirection(*dir)
	if err != nil {
		return err
	}

	e.w.SetSearchText(*text)
	e.w.SetWatchedFilter(f)
	e.w.SetSortKey(k)
	e.w.SetSortDirection(d)

	printMovies(e.out, e.w)
	return nil
}

func runAdd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("add", e)
	title := fs.String("title", "", "movie title (required)")
	year := fs.String("year", "", "release year")
	rating := fs.String("rating", "", "rating from 1 to 5")
	if err := fs.Parse(args); err != nil {
		return err
	}

	movie, err := e.w.Add(ctx, *title, *year, *rating)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Added #%d %s\n", movie.ID, movie.Title)
	return nil
}

// runEdit overwrites the fields given on the command line and keeps the rest.
// An explicit empty -year or -rating clears that field.
func runEdit(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("edit", e)
	id := fs.Int64("id", 0, "movie id (required)")
	title := fs.String("title", "", "movie title")
	year := fs.String("year", "", "release year")
	rating := fs.String("rating", "", "rating from 1 to 5")
	if err := fs.Parse(args); err != nil {
		return err
	}

	current, err := findMovie(e.w, *id)
	if err != nil {
		return err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["title"] {
		*title = current.Title
	}
	if !set["year"] {
		*year = formatOptional(current.Year)
	}
	if !set["rating"] {
		*rating = formatOptional(current.Rating)
	}

	if err := e.w.Edit(ctx, *id, *title, *year, *rating); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Updated #%d\n", *id)
	return nil
}

func runToggle(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("toggle", e)
	id := fs.Int64("id", 0, "movie id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	watched, err := e.w.ToggleWatched(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Marked #%d %s\n", *id, watchedLabel(watched))
	return nil
}

func runWatched(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("watched", e)
	id := fs.Int64("id", 0, "movie id (required)")
	value := fs.Bool("value", true, "watched state")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := e.w.SetWatched(ctx, *id, *value); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Marked #%d %s\n", *id, watchedLabel(*value))
	return nil
}

func runDelete(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("delete", e)
	id := fs.Int64("id", 0, "movie id (required)")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	movie, err := findMovie(e.w, *id)
	if err != nil {
		return err
	}

	if !*yes {
		fmt.Fprintf(e.out, "Delete %q? [y/N] ", movie.Title)
		answer, err := e.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if !validator.In(strings.ToLower(strings.TrimSpace(answer)), "y", "yes") {
			fmt.Fprintln(e.out, "Cancelled.")
			return nil
		}
	}

	if err := e.w.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Deleted #%d %s\n", movie.ID, movie.Title)
	return nil
}

func findMovie(w *watchlist.Watchlist, id int64) (*watchlist.Movie, error) {
	for _, m := range w.Movies() {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("movie %d: %w", id, watchlist.ErrMovieNotFound)
}

func printMovies(out io.Writer, w *watchlist.Watchlist) {
	items := w.Items()
	if len(items) == 0 {
		if len(w.Movies()) == 0 {
			fmt.Fprintln(out, "Your watchlist is empty. Add a movie with: watchlist add -title <title>")
		} else {
			fmt.Fprintln(out, "No movies match the current search and filter.")
		}
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tRATING\tWATCHED")
	for _, m := range items {
		rating := "-"
		if m.Rating != nil {
			rating = strings.Repeat("*", *m.Rating)
		}
		watched := "no"
		if m.Watched {
			watched = "yes"
		}
		year := formatOptional(m.Year)
		if year == "" {
			year = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.Title, year, rating, watched)
	}
	tw.Flush()
}

func formatOptional(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func watchedLabel(watched bool) string {
	if watched {
		return "watched"
	}
	return "unwatched"
}
