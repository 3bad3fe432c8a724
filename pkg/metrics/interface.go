// Package metrics counts watchlist operations, their stage timings, failures
// and the size of the stored collection.
package metrics

import "context"

// Collector receives one call per finished watchlist operation and stage.
// The watchlist uses the Prometheus collector when a metrics textfile is
// configured and NoopCollector otherwise.
type Collector interface {
	// RecordOperation counts a finished operation ("add", "edit", ...) with
	// status "success" or "error" and observes its total duration.
	RecordOperation(ctx context.Context, operation string, status string, durationMs int64)

	// RecordStage observes one stage of an operation: validate, read, write or reload.
	RecordStage(ctx context.Context, operation string, stage string, durationMs int64)

	// RecordError counts a failed operation by classified error type.
	RecordError(ctx context.Context, operation string, errorType string)

	// SetStorageCount reports the number of stored movies ("movies") or
	// watched movies ("watched") after a reload.
	SetStorageCount(ctx context.Context, storageType string, count int64)
}
