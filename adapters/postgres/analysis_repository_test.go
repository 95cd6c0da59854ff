package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasense/domain/analysis"
	"datasense/domain/chart"
	"datasense/domain/core"
	"datasense/domain/dataset"
	"datasense/domain/document"
	apperrors "datasense/internal/errors"
	"datasense/internal/migration"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Skipping live test: TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewRunner().Run(context.Background(), db))
	return db
}

func TestAnalysisRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewAnalysisRepository(db)
	ctx := context.Background()

	a := &analysis.Analysis{
		ID:          core.NewAnalysisID(),
		DatasetID:   core.NewDatasetID(),
		Name:        "orders.csv",
		Fingerprint: core.NewHash([]byte("orders")),
		Profile: dataset.Profile{
			Columns:  []string{"units"},
			Types:    map[string]dataset.ColumnType{"units": dataset.TypeInteger},
			RowCount: 1,
		},
		Rows:            []dataset.RawRow{{"units": dataset.NewInt(4)}},
		TotalRows:       1,
		Recommendations: []chart.Recommendation{{Priority: 2, Config: chart.Config{Type: chart.TypeHistogram, XAxis: "units"}}},
		Document:        &document.Document{Content: "memo", Source: document.SourceHeuristic},
		CreatedAt:       time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, repo.Save(ctx, a))
	t.Cleanup(func() { _ = repo.Delete(ctx, a.ID) })

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Name, got.Name)
	assert.Equal(t, a.Profile.Columns, got.Profile.Columns)
	require.Len(t, got.Rows, 1)
	units, ok := got.Rows[0]["units"].Int()
	require.True(t, ok)
	assert.Equal(t, int64(4), units)
	assert.Equal(t, "memo", got.Document.Content)

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	_, err = repo.Get(ctx, core.NewAnalysisID())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}
