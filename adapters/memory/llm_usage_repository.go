package memory

import (
	"context"
	"sync"
	"time"

	"datasense/domain/usage"
	apperrors "datasense/internal/errors"
)

// LLMUsageRepository keeps usage records in process memory
type LLMUsageRepository struct {
	mu      sync.Mutex
	records []usage.Record
}

// NewLLMUsageRepository creates an empty in-memory usage repository
func NewLLMUsageRepository() *LLMUsageRepository {
	return &LLMUsageRepository{}
}

func (r *LLMUsageRepository) RecordUsage(ctx context.Context, record *usage.Record) error {
	if record == nil {
		return apperrors.InvalidInput("usage record is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *record)
	return nil
}

func (r *LLMUsageRepository) Summary(ctx context.Context, since time.Time) (*usage.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return usage.Summarize(r.records, since), nil
}
