package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"datasense/app"
	"datasense/domain/analysis"
	"datasense/domain/dataset"
	"datasense/internal/config"
	"datasense/internal/container"
	"datasense/internal/correlation"
	"datasense/internal/testkit"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "datasense-cli",
		Short:         "DataSense CLI for profiling files, recommending charts and finding correlations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newRecommendCmd(),
		newPreviewCmd(),
		newGenerateCmd(),
	)
	return rootCmd
}

// newService wires an analysis service over the in-memory store. Provider settings come
// from the environment like the server.
func newService(ctx context.Context) (*app.AnalysisService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Database.URL = ""

	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.Service, nil
}

// analyzeFile runs the pipeline for a file on disk and an optional document
func analyzeFile(ctx context.Context, path, sheet, documentPath string) (*analysis.Analysis, error) {
	svc, err := newService(ctx)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var documentText string
	if documentPath != "" {
		body, err := os.ReadFile(documentPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}
		documentText = string(body)
	}

	return svc.Analyze(ctx, app.AnalyzeRequest{
		FileName:     filepath.Base(path),
		File:         f,
		Sheet:        sheet,
		DocumentText: documentText,
	})
}

func newAnalyzeCmd() *cobra.Command {
	var sheet, documentPath, exportPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Profile a CSV/XLSX file and report correlations",
		Long: `Profile a CSV or XLSX file: infer column types, compute statistics, recommend charts
and detect correlations. A text or markdown document adds thematic and sentiment correlations.

Example: datasense-cli analyze orders.csv --document feedback.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := analyzeFile(cmd.Context(), args[0], sheet, documentPath)
			if err != nil {
				return err
			}

			if exportPath != "" {
				if err := writeExportFile(exportPath, a); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, a)
			}
			printAnalysis(out, a)
			if exportPath != "" {
				fmt.Fprintf(out, "\n💾 Export saved to: %s\n", exportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Excel sheet to read (default: first sheet)")
	cmd.Flags().StringVar(&documentPath, "document", "", "Text or markdown document to correlate against")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write an export file that datasense-migrate can import")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")
	return cmd
}

func newRecommendCmd() *cobra.Command {
	var sheet string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "recommend [file]",
		Short: "List ranked chart recommendations for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := analyzeFile(cmd.Context(), args[0], sheet, "")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, a.Recommendations)
			}
			for i, rec := range a.Recommendations {
				fmt.Fprintf(out, "%d. [%s] %s (priority %d, confidence %.2f)\n",
					i, rec.Config.Type, rec.Config.Title, rec.Priority, rec.Config.Confidence)
				fmt.Fprintf(out, "   x: %s  y: %s  aggregation: %s\n",
					rec.Config.XAxis, strings.Join(rec.Config.YAxis, ", "), rec.Config.Aggregation)
				fmt.Fprintf(out, "   %s\n", rec.Reasoning)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Excel sheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print recommendations as JSON")
	return cmd
}

func newPreviewCmd() *cobra.Command {
	var sheet, outPath string
	var index int

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Render one recommended chart as a standalone HTML page",
		Long: `Render one recommended chart as a standalone HTML page.

Example: datasense-cli preview orders.csv --index 0 --out revenue.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newService(ctx)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			a, err := svc.Analyze(ctx, app.AnalyzeRequest{FileName: filepath.Base(args[0]), File: f, Sheet: sheet})
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := svc.Preview(ctx, a.ID, index, &buf); err != nil {
				return err
			}
			if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "📊 %s written to %s\n", a.Recommendations[index].Config.Title, outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Excel sheet to read (default: first sheet)")
	cmd.Flags().IntVar(&index, "index", 0, "Recommendation index")
	cmd.Flags().StringVar(&outPath, "out", "chart.html", "Output HTML file")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var rows int
	var seed int64
	var outPath, documentPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic orders CSV for demos and smoke tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultOrdersConfig()
			cfg.Rows = rows
			cfg.Seed = seed
			body := testkit.NewOrdersGenerator(cfg).CSV()

			if documentPath != "" {
				if err := os.WriteFile(documentPath, []byte(testkit.FeedbackDocument), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", documentPath, err)
				}
			}
			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(outPath, body, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %d orders written to %s\n", rows, outPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 120, "Number of orders")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().StringVar(&outPath, "out", "", "Output CSV file (default: stdout)")
	cmd.Flags().StringVar(&documentPath, "document", "", "Also write the sample feedback document here")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeExportFile(path string, a *analysis.Analysis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return analysis.WriteExport(f, a)
}

func printAnalysis(out io.Writer, a *analysis.Analysis) {
	fmt.Fprintf(out, "\n📊 ANALYSIS: %s\n", a.Name)
	fmt.Fprintf(out, "ID: %s\n", a.ID)
	fmt.Fprintf(out, "Rows: %d", a.Profile.RowCount)
	if a.Truncated {
		fmt.Fprintf(out, " (capped, %d in file)", a.TotalRows)
	}
	fmt.Fprintf(out, "\n\n🧾 COLUMNS:\n")
	for _, name := range a.Profile.Columns {
		st := a.Profile.Stats[name]
		fmt.Fprintf(out, "• %s: %s (count %d, nulls %d%s)\n", name, a.Profile.Types[name], st.Count, st.NullCount, statDetail(st))
	}

	fmt.Fprintf(out, "\n📈 RECOMMENDED CHARTS:\n")
	for i, rec := range a.Recommendations {
		fmt.Fprintf(out, "%d. [%s] %s\n", i, rec.Config.Type, rec.Config.Title)
	}

	fmt.Fprintf(out, "\n%s", correlation.Summary(a.Correlations, a.Document))
	if a.Narrative != "" {
		fmt.Fprintf(out, "\n📝 NARRATIVE:\n%s\n", a.Narrative)
	}
}

func statDetail(st dataset.ColumnStatistics) string {
	switch {
	case st.Numeric != nil:
		return fmt.Sprintf(", mean %.2f, range %.2f..%.2f", st.Numeric.Mean, st.Numeric.Min, st.Numeric.Max)
	case st.Date != nil:
		return fmt.Sprintf(", %s..%s", st.Date.Earliest.Format("2006-01-02"), st.Date.Latest.Format("2006-01-02"))
	case st.Boolean != nil:
		return fmt.Sprintf(", %.1f%% true", st.Boolean.TruePercentage)
	case st.String != nil:
		top := make([]string, 0, 3)
		values := append([]dataset.TopValue(nil), st.String.TopValues...)
		sort.SliceStable(values, func(i, j int) bool { return values[i].Count > values[j].Count })
		for i, v := range values {
			if i == 3 {
				break
			}
			top = append(top, v.Value)
		}
		return fmt.Sprintf(", %d unique, top: %s", st.String.UniqueCount, strings.Join(top, ", "))
	}
	return ""
}
