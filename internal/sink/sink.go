// Package sink persists result tables to output destinations. Every
// sink performs a full replace: the destination's visible content after
// a write is exactly the given table plus the freshness marker — no
// stale rows from an earlier, larger result set survive.
package sink

import (
	"context"

	"tw-screener/internal/retry"
)

// Table is a rendered result set: one header row plus data rows, all
// cells already formatted as strings (NaN renders as "").
type Table struct {
	Header []string
	Rows   [][]string
}

// Sink writes a table to a named destination. Implementations must be
// idempotent — two writes of identical rows leave the same end state —
// and must classify failures via retry.Transient so the caller can tell
// rate limiting from bad credentials.
type Sink interface {
	ReplaceTable(ctx context.Context, destinationID string, table Table, freshnessMarker string) error
}

// retrying wraps a sink with the bounded retry policy. Permanent
// failures still propagate on the first attempt.
type retrying struct {
	inner  Sink
	policy retry.Policy
}

// WithRetry returns s wrapped with the given retry policy.
func WithRetry(s Sink, policy retry.Policy) Sink {
	return &retrying{inner: s, policy: policy}
}

func (r *retrying) ReplaceTable(ctx context.Context, destinationID string, table Table, freshnessMarker string) error {
	return r.policy.Do(ctx, "replace "+destinationID, func() error {
		return r.inner.ReplaceTable(ctx, destinationID, table, freshnessMarker)
	})
}
