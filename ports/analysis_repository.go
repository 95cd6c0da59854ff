package ports

import (
	"context"

	"datasense/domain/analysis"
	"datasense/domain/core"
)

// AnalysisRepository persists completed analyses
type AnalysisRepository interface {
	Save(ctx context.Context, a *analysis.Analysis) error
	// Get returns the analysis with its rows, or a NOT_FOUND error
	Get(ctx context.Context, id core.AnalysisID) (*analysis.Analysis, error)
	List(ctx context.Context, limit int) ([]analysis.Summary, error)
	Delete(ctx context.Context, id core.AnalysisID) error
}
