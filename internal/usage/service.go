package usage

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"datasense/domain/usage"
	"datasense/ports"
)

// Service handles LLM usage tracking and persistence
type Service struct {
	repo      ports.LLMUsageRepository
	wg        sync.WaitGroup
	baseDelay time.Duration
	now       func() time.Time
}

// NewService creates a new usage service
func NewService(repo ports.LLMUsageRepository) *Service {
	return &Service{repo: repo, baseDelay: 100 * time.Millisecond, now: time.Now}
}

// RecordUsage asynchronously records LLM usage for an operation. Tracking problems are
// logged and never reach the caller.
func (s *Service) RecordUsage(ctx context.Context, operation string, data *ports.UsageData) {
	// Validate usage data
	if data == nil {
		log.Printf("[UsageService] ERROR: nil usage data provided")
		return
	}
	if data.PromptTokens < 0 || data.CompletionTokens < 0 || data.TotalTokens < 0 {
		log.Printf("[UsageService] ERROR: invalid token counts: %+v", data)
		return
	}

	total := data.TotalTokens
	if total == 0 {
		total = data.PromptTokens + data.CompletionTokens
	}
	record := &usage.Record{
		ID:               uuid.New(),
		Provider:         data.Provider,
		Model:            data.Model,
		Operation:        operation,
		PromptTokens:     data.PromptTokens,
		CompletionTokens: data.CompletionTokens,
		TotalTokens:      total,
		CreatedAt:        s.now().UTC(),
	}

	// Async persistence to avoid blocking LLM calls
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.persistWithRetry(record); err != nil {
			log.Printf("[UsageService] ERROR: failed to persist usage after retries: %v", err)
		}
	}()
}

// persistWithRetry attempts to persist usage with linear backoff
func (s *Service) persistWithRetry(record *usage.Record) error {
	const maxRetries = 3

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = s.repo.RecordUsage(context.Background(), record); err == nil {
			return nil
		}
		if attempt < maxRetries-1 {
			time.Sleep(time.Duration(attempt+1) * s.baseDelay)
		}
	}
	return err
}

// Flush waits for pending writes
func (s *Service) Flush() {
	s.wg.Wait()
}

// Summary returns usage aggregated since the given time
func (s *Service) Summary(ctx context.Context, since time.Time) (*usage.Summary, error) {
	return s.repo.Summary(ctx, since)
}
