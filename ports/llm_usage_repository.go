package ports

import (
	"context"
	"time"

	"datasense/domain/usage"
)

// LLMUsageRepository defines the interface for LLM usage data operations
type LLMUsageRepository interface {
	// Record usage for an LLM call
	RecordUsage(ctx context.Context, record *usage.Record) error

	// Summary aggregates usage recorded at or after since
	Summary(ctx context.Context, since time.Time) (*usage.Summary, error)
}
