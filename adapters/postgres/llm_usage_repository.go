package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"datasense/domain/usage"
	apperrors "datasense/internal/errors"
	"datasense/ports"
)

// llmUsageRepository implements LLMUsageRepository for PostgreSQL
type llmUsageRepository struct {
	db *sqlx.DB
}

// NewLLMUsageRepository creates a new PostgreSQL LLM usage repository
func NewLLMUsageRepository(db *sqlx.DB) ports.LLMUsageRepository {
	return &llmUsageRepository{db: db}
}

// RecordUsage records LLM usage for an API call
func (r *llmUsageRepository) RecordUsage(ctx context.Context, record *usage.Record) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO llm_usage (
			id, provider, model, operation,
			prompt_tokens, completion_tokens, total_tokens, created_at
		) VALUES (
			:id, :provider, :model, :operation,
			:prompt_tokens, :completion_tokens, :total_tokens, :created_at
		)
	`, record)
	if err != nil {
		return apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to record LLM usage")
	}
	return nil
}

// Summary returns usage aggregated by provider and model since the given time
func (r *llmUsageRepository) Summary(ctx context.Context, since time.Time) (*usage.Summary, error) {
	summary := &usage.Summary{Since: since, ByModel: []usage.ModelUsage{}}

	err := r.db.SelectContext(ctx, &summary.ByModel, `
		SELECT provider, model,
			COUNT(*) AS request_count,
			COALESCE(SUM(prompt_tokens), 0) AS prompt_tokens,
			COALESCE(SUM(completion_tokens), 0) AS completion_tokens,
			COALESCE(SUM(total_tokens), 0) AS total_tokens
		FROM llm_usage
		WHERE created_at >= $1
		GROUP BY provider, model
		ORDER BY total_tokens DESC
	`, since)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to summarize LLM usage")
	}

	for _, m := range summary.ByModel {
		summary.RequestCount += m.RequestCount
		summary.TotalTokens += m.TotalTokens
	}
	return summary, nil
}
