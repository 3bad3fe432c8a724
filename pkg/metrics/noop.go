package metrics

import "context"

// NoopCollector discards everything. It is the default when no metrics
// textfile is configured.
type NoopCollector struct{}

var _ Collector = (*NoopCollector)(nil)

// NewNoopCollector returns a collector that records nothing.
func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

func (*NoopCollector) RecordOperation(context.Context, string, string, int64) {}

func (*NoopCollector) RecordStage(context.Context, string, string, int64) {}

func (*NoopCollector) RecordError(context.Context, string, string) {}

func (*NoopCollector) SetStorageCount(context.Context, string, int64) {}
