// Package watchlist is the entry point for the movie watchlist: it validates
// form input, applies mutations to the store, reloads the collection after
// every change and keeps the filtered/sorted projection current.
package watchlist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dan-solli/watchlist/pkg/metrics"
	"github.com/dan-solli/watchlist/pkg/search"
	"github.com/dan-solli/watchlist/pkg/store"
	"github.com/dan-solli/watchlist/pkg/trace"
	"github.com/dan-solli/watchlist/pkg/validator"
)

// Config holds configuration for the watchlist.
type Config struct {
	// Path of the SQLite database file, or ":memory:"
	DBPath string `env:"WATCHLIST_DB_PATH" envDefault:"watchlist.db"`

	// database/sql driver: "sqlite" (pure Go) or "sqlite3" (cgo builds)
	DBDriver string `env:"WATCHLIST_DB_DRIVER" envDefault:"sqlite"`

	// slog level name: debug, info, warn, error
	LogLevel string `env:"WATCHLIST_LOG_LEVEL" envDefault:"info"`

	// JSON Lines trace file; empty disables tracing
	TracePath string `env:"WATCHLIST_TRACE_PATH"`

	// Prometheus textfile written by WriteMetrics; empty disables metrics
	MetricsFile string `env:"WATCHLIST_METRICS_FILE"`
}

// Watchlist is the main entry point for the watchlist.
// Operations are serialized: each mutation and its reload complete before
// the next operation starts.
type Watchlist struct {
	config           Config
	store            store.MovieStore
	view             *search.View
	metricsCollector metrics.Collector
	traceExporter    trace.Exporter
	logger           *slog.Logger
	now              func() time.Time
	mu               sync.Mutex
}

// New opens the SQLite store named by cfg and creates a Watchlist over it.
// Call Initialize before use.
func New(cfg Config) (*Watchlist, error) {
	s, err := store.OpenSQLiteMovieStore(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	w, err := NewWithStore(cfg, s)
	if err != nil {
		s.Close()
		return nil, err
	}
	return w, nil
}

// NewWithStore creates a Watchlist over an existing store.
// The Watchlist takes ownership of s and closes it on Close.
func NewWithStore(cfg Config, s store.MovieStore) (*Watchlist, error) {
	exporter, err := trace.NewFileExporter(cfg.TracePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	var collector metrics.Collector = metrics.NewNoopCollector()
	if cfg.MetricsFile != "" {
		collector = metrics.NewCollector()
	}

	return &Watchlist{
		config:           cfg,
		store:            s,
		view:             search.NewView(),
		metricsCollector: collector,
		traceExporter:    exporter,
		logger:           slog.New(slog.DiscardHandler),
		now:              time.Now,
	}, nil
}

// WithLogger sets the structured logger and returns w for chaining.
// A nil logger disables logging.
func (w *Watchlist) WithLogger(logger *slog.Logger) *Watchlist {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w.logger = logger

	w.logger.Info("watchlist configured",
		"db_driver", w.config.DBDriver,
		"db_path", w.config.DBPath,
		"tracing", w.config.TracePath != "",
		"metrics", w.config.MetricsFile != "",
	)
	return w
}

// WithMetrics replaces the metrics collector and returns w for chaining.
func (w *Watchlist) WithMetrics(collector metrics.Collector) *Watchlist {
	if collector == nil {
		collector = metrics.NewNoopCollector()
	}
	w.metricsCollector = collector
	return w
}

// WithTraceExporter replaces the trace exporter and returns w for chaining.
// The previous exporter is closed.
func (w *Watchlist) WithTraceExporter(exporter trace.Exporter) *Watchlist {
	if exporter == nil {
		exporter = trace.NewNoopExporter()
	}
	if w.traceExporter != nil {
		w.traceExporter.Close()
	}
	w.traceExporter = exporter
	return w
}

// Metrics returns the configured collector.
func (w *Watchlist) Metrics() metrics.Collector {
	return w.metricsCollector
}

// WriteMetrics writes the Prometheus collector to the configured textfile.
// It does nothing when metrics are disabled.
func (w *Watchlist) WriteMetrics() error {
	collector, ok := w.metricsCollector.(*metrics.MetricsCollector)
	if !ok || w.config.MetricsFile == "" {
		return nil
	}
	return collector.WriteTextfile(w.config.MetricsFile)
}

// Initialize creates and seeds the store if needed, then loads the collection.
// A failure here means no data can be shown; it wraps ErrStorageUnavailable.
func (w *Watchlist) Initialize(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	op := w.startOperation("initialize")
	err := w.runStage(ctx, op, "initialize", func() (map[string]int64, error) {
		return nil, w.store.Initialize(ctx)
	})
	if err == nil {
		if reloadErr := w.reload(ctx, op); reloadErr != nil {
			err = fmt.Errorf("%w: %w", store.ErrStorageUnavailable, reloadErr)
		}
	}
	return w.finishOperation(ctx, op, err)
}

// Reload re-reads the full collection and recomputes the projection.
func (w *Watchlist) Reload(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	op := w.startOperation("reload")
	return w.finishOperation(ctx, op, w.reload(ctx, op))
}

// Add validates the raw form values and inserts a new unwatched movie.
// Blank year or rating means absent. Nothing is written on validation failure.
func (w *Watchlist) Add(ctx context.Context, title, year, rating string) (*Movie, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	op := w.startOperation("add")

	in, err := w.validate(ctx, op, title, year, rating)
	if err != nil {
		return nil, w.finishOperation(ctx, op, err)
	}

	var movie *Movie
	err = w.runStage(ctx, op, "write", func() (map[string]int64, error) {
		var err error
		movie, err = w.store.Insert(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to add movie: %w", err)
		}
		op.ids["movieId"] = movie.ID
		return nil, nil
	})
	if err == nil {
		err = w.reload(ctx, op)
	}
	if err != nil {
		return nil, w.finishOperation(ctx, op, err)
	}
	return movie, w.finishOperation(ctx, op, nil)
}

// Edit validates the raw form values and overwrites title, year and rating.
func (w *Watchlist) Edit(ctx context.Context, id int64, title, year, rating string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	op := w.startOperation("edit")
	op.ids["movieId"] = id

	in, err := w.validate(ctx, op, title, year, rating)
	if err != nil {
		return w.finishOperation(ctx, op, err)
	}

	err = w.runStage(ctx, op, "write", func() (map[string]int64, error) {
		if err := w.store.Update(ctx, id, in); err != nil {
			return nil, fmt.Errorf("failed to edit movie %d: %w", id, err)
		}
		return nil, nil
	})
	if err == nil {
		err = w.reload(ctx, op)
	}
	return w.finishOperation(ctx, op, err)
}

// Delete removes a movie. Confirmation is the caller's responsibility.
func (w *Watchlist) Delete(ctx context.Context, id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	op := w.startOperation("delete")
	op.ids["movieId"] = id

	err := w.runStage(ctx, op, "write", func() (map[string]int64, error) {
		if err := w.store.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to delete movie %d: %w", id, err)
		}
		return nil, nil
	})
	if err == nil {
		err = w.reload(ctx, op)
	}
	return w.finishOperation(ctx, op, err)
}

// SetWatched sets the watched flag of a movie.
func (w *Watchlist) SetWatched(ctx context.Context, id int64, watched bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	op := w.startOperation("set_watched")
	op.ids["movieId"] = id

	err := w.setWatched(ctx, op, id, watched)
	if err == nil {
		err = w.reload(ctx, op)
	}
	return w.finishOperation(ctx, op, err)
}

// ToggleWatched flips the watched flag of a movie and returns the new value.
func (w *Watchlist) ToggleWatched(ctx context.Context, id int64) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	op := w.startOperation("toggle_watched")
	op.ids["movieId"] = id

	var current *Movie
	err := w.runStage(ctx, op, "read", func() (map[string]int64, error) {
		var err error
		current, err = w.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read movie %d: %w", id, err)
		}
		return nil, nil
	})
	if err != nil {
		return false, w.finishOperation(ctx, op, err)
	}

	watched := !current.Watched
	err = w.setWatched(ctx, op, id, watched)
	if err == nil {
		err = w.reload(ctx, op)
	}
	if err != nil {
		return false, w.finishOperation(ctx, op, err)
	}
	return watched, w.finishOperation(ctx, op, nil)
}

// Movies returns copies of the full collection as of the last reload.
func (w *Watchlist) Movies() []*Movie {
	return w.view.Movies()
}

// Items returns copies of the current projection.
func (w *Watchlist) Items() []*Movie {
	return w.view.Items()
}

// Criteria returns the active search, filter and sort criteria.
func (w *Watchlist) Criteria() Criteria {
	return w.view.Criteria()
}

// SetSearchText sets the title search text.
func (w *Watchlist) SetSearchText(text string) {
	w.view.SetSearchText(text)
}

// SetWatchedFilter sets the watched-state filter.
func (w *Watchlist) SetWatchedFilter(f WatchedFilter) {
	w.view.SetWatchedFilter(f)
}

// SetSortKey sets the sort key.
func (w *Watchlist) SetSortKey(k SortKey) {
	w.view.SetSortKey(k)
}

// SetSortDirection sets the sort direction.
func (w *Watchlist) SetSortDirection(d SortDirection) {
	w.view.SetSortDirection(d)
}

// Close releases the store and the trace exporter.
func (w *Watchlist) Close() error {
	traceErr := w.traceExporter.Close()
	if err := w.store.Close(); err != nil {
		return err
	}
	return traceErr
}

func (w *Watchlist) validate(ctx context.Context, op *operation, title, year, rating string) (store.MovieInput, error) {
	var in store.MovieInput
	err := w.runStage(ctx, op, "validate", func() (map[string]int64, error) {
		var err error
		in, err = validator.ValidateMovieInput(title, year, rating, w.now().Year())
		return nil, err
	})
	return in, err
}

func (w *Watchlist) setWatched(ctx context.Context, op *operation, id int64, watched bool) error {
	return w.runStage(ctx, op, "write", func() (map[string]int64, error) {
		if err := w.store.SetWatched(ctx, id, watched); err != nil {
			return nil, fmt.Errorf("failed to set watched on movie %d: %w", id, err)
		}
		return nil, nil
	})
}

// reload must be called with mu held.
func (w *Watchlist) reload(ctx context.Context, op *operation) error {
	return w.runStage(ctx, op, "reload", func() (map[string]int64, error) {
		movies, err := w.store.ListAll(ctx, store.DefaultOrder)
		if err != nil {
			return nil, fmt.Errorf("failed to reload movies: %w", err)
		}
		w.view.SetMovies(movies)

		var watched int64
		for _, m := range movies {
			if m.Watched {
				watched++
			}
		}
		w.metricsCollector.SetStorageCount(ctx, "movies", int64(len(movies)))
		w.metricsCollector.SetStorageCount(ctx, "watched", watched)

		return map[string]int64{"movies": int64(len(movies)), "watched": watched}, nil
	})
}

// operation tracks one public call for metrics, tracing and logging.
type operation struct {
	name  string
	id    string
	start time.Time
	trace *OperationTrace
	ids   map[string]interface{}
}

func (w *Watchlist) startOperation(name string) *operation {
	return &operation{
		name:  name,
		id:    uuid.New().String(),
		start: time.Now(),
		trace: newTrace(),
		ids:   make(map[string]interface{}),
	}
}

// runStage times fn as a named span of op.
func (w *Watchlist) runStage(ctx context.Context, op *operation, stage string, fn func() (map[string]int64, error)) error {
	timer := newSpanTimer(stage, op.trace)
	counters, err := fn()
	span := timer.finish(err, counters)
	w.metricsCollector.RecordStage(ctx, op.name, stage, span.DurationMs)
	return err
}

// finishOperation records metrics, exports the trace and logs the outcome.
// It returns err unchanged.
func (w *Watchlist) finishOperation(ctx context.Context, op *operation, err error) error {
	durationMs := time.Since(op.start).Milliseconds()

	status := "success"
	errType := ""
	if err != nil {
		status = "error"
		errType = ClassifyError(err)
		w.metricsCollector.RecordError(ctx, op.name, errType)
	}
	w.metricsCollector.RecordOperation(ctx, op.name, status, durationMs)

	record := &trace.TraceRecord{
		Timestamp:   op.start,
		OperationID: op.id,
		Operation:   op.name,
		DurationMs:  durationMs,
		Status:      status,
		ErrorType:   errType,
		Spans:       make([]trace.SpanRecord, 0, len(op.trace.Spans)),
	}
	if len(op.ids) > 0 {
		record.IDs = op.ids
	}
	for _, s := range op.trace.Spans {
		sr := trace.SpanRecord{
			Name:       s.Name,
			DurationMs: s.DurationMs,
			OK:         s.OK,
			Counters:   s.Counters,
		}
		if !s.OK {
			sr.ErrorType = errType
		}
		record.Spans = append(record.Spans, sr)
	}
	if exportErr := w.traceExporter.Export(ctx, record); exportErr != nil {
		w.logger.Warn("trace export failed",
			"operation", op.name,
			"operation_id", op.id,
			"error", exportErr,
		)
	}

	if err != nil {
		w.logger.Warn("operation failed",
			"operation", op.name,
			"operation_id", op.id,
			"error_type", errType,
			"duration_ms", durationMs,
			"error", err,
		)
		return err
	}

	w.logger.Debug("operation complete",
		"operation", op.name,
		"operation_id", op.id,
		"duration_ms", durationMs,
	)
	return nil
}
