package watchlist

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/dan-solli/watchlist/pkg/store"
)

// captureHandler is a slog.Handler that captures log records for test assertions
type captureHandler struct {
	records []slog.Record
	mu      sync.Mutex
}

func newCaptureHandler() *captureHandler {
	return &captureHandler{
		records: make([]slog.Record, 0),
	}
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *captureHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *captureHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *captureHandler) getRecords() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]slog.Record, len(h.records))
	copy(result, h.records)
	return result
}

func (h *captureHandler) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = h.records[:0]
}

func recordAttrs(r slog.Record) map[string]slog.Value {
	attrs := make(map[string]slog.Value)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value
		return true
	})
	return attrs
}

// TestWithLogger_NilSafe verifies operations work without a logger
func TestWithLogger_NilSafe(t *testing.T) {
	w, err := NewWithStore(Config{}, store.NewMemoryMovieStore())
	if err != nil {
		t.Fatalf("NewWithStore failed: %v", err)
	}
	defer w.Close()

	w.WithLogger(nil)

	ctx := context.Background()
	if err := w.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	_, _ = w.Add(ctx, "", "", "")
	_ = w.Delete(ctx, 999)
}

// TestWithLogger_Injection verifies WithLogger returns same instance
func TestWithLogger_Injection(t *testing.T) {
	w, err := NewWithStore(Config{}, store.NewMemoryMovieStore())
	if err != nil {
		t.Fatalf("NewWithStore failed: %v", err)
	}
	defer w.Close()

	returned := w.WithLogger(slog.New(newCaptureHandler()))
	if returned != w {
		t.Errorf("WithLogger() should return same instance for method chaining")
	}
}

// TestWithLogger_ConfigLogged verifies the configuration is logged when a logger is set
func TestWithLogger_ConfigLogged(t *testing.T) {
	handler := newCaptureHandler()

	w, err := NewWithStore(Config{DBDriver: "sqlite", DBPath: "movies.db"}, store.NewMemoryMovieStore())
	if err != nil {
		t.Fatalf("NewWithStore failed: %v", err)
	}
	defer w.Close()

	w.WithLogger(slog.New(handler))

	records := handler.getRecords()
	if len(records) != 1 {
		t.Fatalf("expected 1 config log record, got %d", len(records))
	}
	attrs := recordAttrs(records[0])
	if got := attrs["db_driver"].String(); got != "sqlite" {
		t.Errorf("db_driver = %q, want sqlite", got)
	}
	if got := attrs["tracing"].Bool(); got {
		t.Errorf("tracing should be reported disabled")
	}
}

// TestLogging_OperationFailure verifies failures are logged with their classification
func TestLogging_OperationFailure(t *testing.T) {
	handler := newCaptureHandler()

	w, err := NewWithStore(Config{}, store.NewMemoryMovieStore())
	if err != nil {
		t.Fatalf("NewWithStore failed: %v", err)
	}
	defer w.Close()
	w.WithLogger(slog.New(handler))

	ctx := context.Background()
	if err := w.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	handler.reset()
	if err := w.Delete(ctx, 999); err == nil {
		t.Fatal("expected delete of absent id to fail")
	}

	var found bool
	for _, r := range handler.getRecords() {
		if r.Level != slog.LevelWarn || r.Message != "operation failed" {
			continue
		}
		attrs := recordAttrs(r)
		if attrs["operation"].String() == "delete" && attrs["error_type"].String() == ErrTypeNotFound {
			found = true
		}
		if attrs["operation_id"].String() == "" {
			t.Errorf("operation failure log is missing operation_id")
		}
	}
	if !found {
		t.Errorf("expected a warn record for the failed delete")
	}
}

// TestLogging_SuccessAtDebug verifies successful operations log at debug level
func TestLogging_SuccessAtDebug(t *testing.T) {
	handler := newCaptureHandler()

	w, err := NewWithStore(Config{}, store.NewMemoryMovieStore())
	if err != nil {
		t.Fatalf("NewWithStore failed: %v", err)
	}
	defer w.Close()
	w.WithLogger(slog.New(handler))
	handler.reset()

	if err := w.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	records := handler.getRecords()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Level != slog.LevelDebug {
		t.Errorf("level = %v, want debug", records[0].Level)
	}
	if got := recordAttrs(records[0])["operation"].String(); got != "initialize" {
		t.Errorf("operation = %q, want initialize", got)
	}
}
