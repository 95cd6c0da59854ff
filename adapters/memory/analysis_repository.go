package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"datasense/domain/analysis"
	"datasense/domain/core"
	apperrors "datasense/internal/errors"
)

// AnalysisRepository keeps analyses in process memory. It is used when no database is
// configured and in tests.
type AnalysisRepository struct {
	mu       sync.RWMutex
	analyses map[core.AnalysisID]*analysis.Analysis
}

// NewAnalysisRepository creates an empty in-memory repository
func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{analyses: make(map[core.AnalysisID]*analysis.Analysis)}
}

// Save stores a shallow copy of the analysis
func (r *AnalysisRepository) Save(ctx context.Context, a *analysis.Analysis) error {
	if a == nil || a.ID.String() == "" {
		return apperrors.InvalidInput("analysis must have an ID")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.analyses[a.ID] = &cp
	return nil
}

func (r *AnalysisRepository) Get(ctx context.Context, id core.AnalysisID) (*analysis.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyses[id]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("analysis %s", id))
	}
	cp := *a
	return &cp, nil
}

// List returns summaries newest first
func (r *AnalysisRepository) List(ctx context.Context, limit int) ([]analysis.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]analysis.Summary, 0, len(r.analyses))
	for _, a := range r.analyses {
		out = append(out, analysis.Summary{
			ID:        a.ID,
			DatasetID: a.DatasetID,
			Name:      a.Name,
			RowCount:  a.Profile.RowCount,
			CreatedAt: a.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AnalysisRepository) Delete(ctx context.Context, id core.AnalysisID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.analyses[id]; !ok {
		return apperrors.NotFound(fmt.Sprintf("analysis %s", id))
	}
	delete(r.analyses, id)
	return nil
}
