package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasense/adapters/memory"
	"datasense/domain/analysis"
	"datasense/domain/core"
	"datasense/domain/dataset"
)

func writeExport(t *testing.T, dir, name string) core.AnalysisID {
	t.Helper()
	a := &analysis.Analysis{
		ID:        core.NewAnalysisID(),
		DatasetID: core.NewDatasetID(),
		Name:      name,
		Rows:      []dataset.RawRow{{"n": dataset.NewInt(1)}},
		CreatedAt: time.Now().UTC(),
	}
	f, err := os.Create(filepath.Join(dir, name+".json"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, analysis.WriteExport(f, a))
	return a.ID
}

func TestImportFiles(t *testing.T) {
	dir := t.TempDir()
	id := writeExport(t, dir, "orders")
	writeExport(t, dir, "survey")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	files, err := findExportFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	repo := memory.NewAnalysisRepository()
	migrated, skipped := importFiles(context.Background(), repo, files)
	assert.Equal(t, 2, migrated)
	assert.Equal(t, 1, skipped)

	stored, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, stored.Rows, 1)

	migrated, skipped = importFiles(context.Background(), repo, files)
	assert.Equal(t, 0, migrated)
	assert.Equal(t, 3, skipped)
}
