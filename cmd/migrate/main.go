package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"datasense/adapters/postgres"
	"datasense/domain/analysis"
	"datasense/internal/container"
	apperrors "datasense/internal/errors"
	"datasense/ports"
)

func main() {
	_ = godotenv.Load()

	var databaseURL, importDir string
	cmd := &cobra.Command{
		Use:   "datasense-migrate",
		Short: "Create the DataSense schema and optionally import exported analyses",
		Long: `Create the DataSense schema and optionally import exported analyses.

Example: datasense-migrate --database-url postgres://localhost/datasense --import ./exports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			return run(cmd.Context(), databaseURL, importDir)
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	cmd.Flags().StringVar(&importDir, "import", "", "Directory of analysis exports (*.json) to load")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL, importDir string) error {
	db, err := container.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Printf("Schema is up to date")

	if importDir == "" {
		return nil
	}

	files, err := findExportFiles(importDir)
	if err != nil {
		return fmt.Errorf("failed to find export files: %w", err)
	}
	log.Printf("Found %d export files to import", len(files))

	migrated, skipped := importFiles(ctx, postgres.NewAnalysisRepository(db), files)
	log.Printf("Import complete: %d imported, %d skipped", migrated, skipped)
	return nil
}

// importFiles loads each export. Files that fail to parse and analyses already stored are skipped.
func importFiles(ctx context.Context, repo ports.AnalysisRepository, files []string) (migrated, skipped int) {
	for _, file := range files {
		a, err := loadExport(file)
		if err != nil {
			log.Printf("Failed to load analysis from %s: %v", file, err)
			skipped++
			continue
		}

		if _, err := repo.Get(ctx, a.ID); err == nil {
			log.Printf("Analysis %s already stored, skipping %s", a.ID, filepath.Base(file))
			skipped++
			continue
		} else if apperrors.GetCode(err) != apperrors.CodeNotFound {
			log.Printf("Failed to look up analysis %s: %v", a.ID, err)
			skipped++
			continue
		}

		if err := repo.Save(ctx, a); err != nil {
			log.Printf("Failed to save analysis %s: %v", a.ID, err)
			skipped++
			continue
		}
		migrated++
		log.Printf("Imported analysis %s from %s", a.ID, filepath.Base(file))
	}
	return migrated, skipped
}

func findExportFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func loadExport(path string) (*analysis.Analysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return analysis.ReadExport(f)
}
