package analysis

import (
	"time"

	"datasense/domain/chart"
	"datasense/domain/core"
	"datasense/domain/correlation"
	"datasense/domain/dataset"
	"datasense/domain/document"
)

// Analysis is one completed upload analysis as persisted and served by the API.
type Analysis struct {
	ID              core.AnalysisID        `json:"id" db:"id"`
	DatasetID       core.DatasetID         `json:"datasetId" db:"dataset_id"`
	Name            string                 `json:"name" db:"name"`
	Fingerprint     core.Hash              `json:"fingerprint" db:"fingerprint"`
	Profile         dataset.Profile        `json:"profile"`
	Rows            []dataset.RawRow       `json:"-"`
	TotalRows       int                    `json:"totalRows" db:"total_rows"`
	Truncated       bool                   `json:"truncated" db:"truncated"`
	Recommendations []chart.Recommendation `json:"recommendations"`
	Correlations    correlation.Result     `json:"correlations"`
	Document        *document.Document     `json:"document,omitempty"`
	Narrative       string                 `json:"narrative,omitempty" db:"narrative"`
	CreatedAt       time.Time              `json:"createdAt" db:"created_at"`
}

// Dataset rebuilds the typed dataset the analysis was computed from. Rows are only present
// on analyses loaded with rows.
func (a *Analysis) Dataset() *dataset.Dataset {
	ds := dataset.New(a.Name, a.Rows, a.Profile.Columns, a.Profile.Types, a.Profile.Stats)
	ds.ID = a.DatasetID
	return ds
}

// Summary is the listing view of an analysis
type Summary struct {
	ID        core.AnalysisID `json:"id" db:"id"`
	DatasetID core.DatasetID  `json:"datasetId" db:"dataset_id"`
	Name      string          `json:"name" db:"name"`
	RowCount  int             `json:"rowCount" db:"row_count"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}
