package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"datasense/domain/analysis"
	"datasense/domain/core"
	"datasense/domain/dataset"
	apperrors "datasense/internal/errors"
	"datasense/ports"

	"github.com/jmoiron/sqlx"
)

// analysisRepository implements the AnalysisRepository interface on the datasets and
// analyses tables
type analysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *sqlx.DB) ports.AnalysisRepository {
	return &analysisRepository{db: db}
}

// analysisRow is the joined datasets/analyses row
type analysisRow struct {
	ID              string    `db:"id"`
	DatasetID       string    `db:"dataset_id"`
	Name            string    `db:"name"`
	Fingerprint     string    `db:"fingerprint"`
	TotalRows       int       `db:"total_rows"`
	Truncated       bool      `db:"truncated"`
	Profile         []byte    `db:"profile"`
	Rows            []byte    `db:"rows"`
	Recommendations []byte    `db:"recommendations"`
	Correlations    []byte    `db:"correlations"`
	Document        []byte    `db:"document"`
	Narrative       string    `db:"narrative"`
	CreatedAt       time.Time `db:"created_at"`
}

// Save inserts the dataset and its analysis in one transaction
func (r *analysisRepository) Save(ctx context.Context, a *analysis.Analysis) error {
	profileJSON, err := json.Marshal(a.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	rowsJSON, err := json.Marshal(a.Rows)
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	recsJSON, err := json.Marshal(a.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	corrJSON, err := json.Marshal(a.Correlations)
	if err != nil {
		return fmt.Errorf("failed to marshal correlations: %w", err)
	}
	var docJSON sql.NullString
	if a.Document != nil {
		raw, err := json.Marshal(a.Document)
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		docJSON = sql.NullString{String: string(raw), Valid: true}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO datasets (
		id, name, fingerprint, row_count, total_rows, truncated, profile, rows, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.DatasetID.String(), a.Name, a.Fingerprint.String(), a.Profile.RowCount, a.TotalRows, a.Truncated,
		string(profileJSON), string(rowsJSON), a.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to create dataset")
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO analyses (
		id, dataset_id, recommendations, correlations, document, narrative, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID.String(), a.DatasetID.String(), string(recsJSON), string(corrJSON), docJSON, a.Narrative, a.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to create analysis")
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to commit analysis")
	}
	return nil
}

// Get retrieves an analysis with its dataset rows
func (r *analysisRepository) Get(ctx context.Context, id core.AnalysisID) (*analysis.Analysis, error) {
	query := `SELECT
		a.id, a.dataset_id, d.name, d.fingerprint, d.total_rows, d.truncated, d.profile, d.rows,
		a.recommendations, a.correlations, a.document, a.narrative, a.created_at
	FROM analyses a JOIN datasets d ON d.id = a.dataset_id
	WHERE a.id = $1`

	var row analysisRow
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound(fmt.Sprintf("analysis %s", id))
		}
		return nil, apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to get analysis")
	}
	return row.toAnalysis()
}

func (row analysisRow) toAnalysis() (*analysis.Analysis, error) {
	a := &analysis.Analysis{
		ID:          core.AnalysisID(row.ID),
		DatasetID:   core.DatasetID(row.DatasetID),
		Name:        row.Name,
		Fingerprint: core.Hash(row.Fingerprint),
		TotalRows:   row.TotalRows,
		Truncated:   row.Truncated,
		Narrative:   row.Narrative,
		CreatedAt:   row.CreatedAt,
	}
	if err := json.Unmarshal(row.Profile, &a.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	var rows []dataset.RawRow
	if err := json.Unmarshal(row.Rows, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}
	a.Rows = rows
	if err := json.Unmarshal(row.Recommendations, &a.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
	}
	if err := json.Unmarshal(row.Correlations, &a.Correlations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal correlations: %w", err)
	}
	if len(row.Document) > 0 {
		if err := json.Unmarshal(row.Document, &a.Document); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}
	}
	return a, nil
}

// List returns the most recent analyses, newest first
func (r *analysisRepository) List(ctx context.Context, limit int) ([]analysis.Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT a.id, a.dataset_id, d.name, d.row_count, a.created_at
	FROM analyses a JOIN datasets d ON d.id = a.dataset_id
	ORDER BY a.created_at DESC
	LIMIT $1`

	summaries := []analysis.Summary{}
	if err := r.db.SelectContext(ctx, &summaries, query, limit); err != nil {
		return nil, apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to list analyses")
	}
	return summaries, nil
}

// Delete removes an analysis and the dataset it was computed from
func (r *analysisRepository) Delete(ctx context.Context, id core.AnalysisID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM datasets WHERE id = (SELECT dataset_id FROM analyses WHERE id = $1)`, id.String())
	if err != nil {
		return apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to delete analysis")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound(fmt.Sprintf("analysis %s", id))
	}
	return nil
}
