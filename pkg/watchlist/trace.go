package watchlist

import "time"

// OperationTrace captures per-stage timing for one watchlist operation.
type OperationTrace struct {
	// Spans contains timing data for each stage of the operation
	Spans []Span `json:"spans"`

	// TotalDurationMs is the sum of span durations in milliseconds
	TotalDurationMs int64 `json:"totalDurationMs"`
}

// Span represents a single timed stage within an operation.
// Stage names are stable:
//   - "initialize": Schema creation and seeding
//   - "validate": Form validation
//   - "read": Reading the current row (toggle)
//   - "write": The single-row mutation
//   - "reload": Full re-fetch of the collection
type Span struct {
	Name       string           `json:"name"`
	DurationMs int64            `json:"durationMs"`
	OK         bool             `json:"ok"`
	Error      string           `json:"error,omitempty"`
	Counters   map[string]int64 `json:"counters,omitempty"`
}

// newTrace creates a new OperationTrace with empty spans
func newTrace() *OperationTrace {
	return &OperationTrace{
		Spans: make([]Span, 0),
	}
}

// addSpan appends a completed span to the trace
func (t *OperationTrace) addSpan(span Span) {
	t.Spans = append(t.Spans, span)
	t.TotalDurationMs += span.DurationMs
}

// spanTimer measures one span and records it on finish.
type spanTimer struct {
	name  string
	start time.Time
	trace *OperationTrace
}

func newSpanTimer(name string, trace *OperationTrace) *spanTimer {
	return &spanTimer{
		name:  name,
		start: time.Now(),
		trace: trace,
	}
}

// finish completes the span, records it to the trace and returns it.
func (st *spanTimer) finish(err error, counters map[string]int64) Span {
	span := Span{
		Name:       st.name,
		DurationMs: time.Since(st.start).Milliseconds(),
		OK:         err == nil,
		Counters:   counters,
	}
	if err != nil {
		span.Error = err.Error()
	}
	if st.trace != nil {
		st.trace.addSpan(span)
	}
	return span
}
