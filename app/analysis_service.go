package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"datasense/adapters/excel"
	"datasense/domain/analysis"
	model "datasense/domain/chart"
	corr "datasense/domain/correlation"
	"datasense/domain/core"
	"datasense/domain/dataset"
	"datasense/domain/document"
	"datasense/internal"
	"datasense/internal/chart"
	"datasense/internal/correlation"
	apperrors "datasense/internal/errors"
	"datasense/internal/metrics"
	"datasense/internal/schema"
	"datasense/internal/statistics"
	"datasense/ports"
)

// ServiceOptions configures the analysis pipeline
type ServiceOptions struct {
	Reader      excel.ReaderConfig
	Correlation correlation.Options
}

// AnalysisService runs the upload pipeline: parse, infer, coerce, profile, recommend and
// correlate, then persists the result
type AnalysisService struct {
	repo        ports.AnalysisRepository
	analyzer    ports.DocumentAnalyzer
	narrator    ports.Narrator
	reader      excel.ReaderConfig
	engine      *correlation.Engine
	recommender *chart.Recommender
	logger      *internal.Logger
	now         func() time.Time
}

// AnalyzeRequest is one upload. DocumentText is optional.
type AnalyzeRequest struct {
	FileName     string
	File         io.Reader
	Sheet        string
	DocumentText string
}

// NewAnalysisService creates an analysis service. analyzer and narrator may be nil, which
// disables document analysis and narratives respectively.
func NewAnalysisService(repo ports.AnalysisRepository, analyzer ports.DocumentAnalyzer, narrator ports.Narrator, opts ServiceOptions) *AnalysisService {
	if opts.Reader.MaxRows == 0 && opts.Reader.MaxFileBytes == 0 {
		opts.Reader = excel.DefaultReaderConfig()
	}
	return &AnalysisService{
		repo:        repo,
		analyzer:    analyzer,
		narrator:    narrator,
		reader:      opts.Reader,
		engine:      correlation.NewEngine(opts.Correlation),
		recommender: chart.NewRecommender(),
		logger:      internal.DefaultLogger.With("AnalysisService"),
		now:         time.Now,
	}
}

// profiled is the tabular half of an analysis
type profiled struct {
	data    *excel.ParsedData
	dataset *dataset.Dataset
	hash    core.Hash
}

// Analyze runs the full pipeline for one upload and stores the result. The document, when
// present, is analyzed concurrently with parsing and profiling.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*analysis.Analysis, error) {
	startTime := time.Now()
	a, err := s.analyze(ctx, req)
	if err != nil {
		metrics.ObserveAnalysis(time.Since(startTime), metrics.OutcomeError, 0)
		return nil, err
	}
	metrics.ObserveAnalysis(time.Since(startTime), metrics.OutcomeSuccess, a.Profile.RowCount)
	s.logger.Info("analyzed %s: %d rows, %d columns, %d charts, %d correlations in %.2fms",
		a.Name, a.Profile.RowCount, len(a.Profile.Columns), len(a.Recommendations),
		len(a.Correlations.Correlations), float64(time.Since(startTime).Nanoseconds())/1e6)
	return a, nil
}

func (s *AnalysisService) analyze(ctx context.Context, req AnalyzeRequest) (*analysis.Analysis, error) {
	readerConfig := s.reader
	readerConfig.Sheet = req.Sheet
	reader, err := excel.NewDataReader(req.FileName, readerConfig)
	if err != nil {
		return nil, err
	}

	var (
		table *profiled
		doc   *document.Document
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		table, err = s.profile(filepath.Base(req.FileName), req.File, reader)
		return err
	})
	if s.analyzer != nil && strings.TrimSpace(req.DocumentText) != "" {
		g.Go(func() error {
			d, err := s.analyzer.AnalyzeDocument(gctx, req.DocumentText)
			if err != nil {
				if gctx.Err() == nil {
					s.logger.Warn("document analysis failed, continuing without document: %v", err)
				}
				return nil
			}
			doc = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := table.dataset
	columns := chart.AnalyzeColumns(ds.ColumnNames, ds.ColumnTypes, ds.ColumnStats)
	result := s.engine.Analyze(ds, doc)

	a := &analysis.Analysis{
		ID:              core.NewAnalysisID(),
		DatasetID:       ds.ID,
		Name:            ds.Name,
		Fingerprint:     table.hash,
		Profile:         ds.Profile(),
		Rows:            ds.Rows,
		TotalRows:       table.data.TotalRows,
		Truncated:       table.data.Truncated,
		Recommendations: s.recommender.Recommend(columns, ds.Name, ds.RowCount),
		Correlations:    result,
		Document:        doc,
		CreatedAt:       s.now().UTC(),
	}
	a.Narrative = s.narrate(ctx, result, doc)

	if err := s.repo.Save(ctx, a); err != nil {
		return nil, apperrors.Wrap(err, "failed to save analysis")
	}
	return a, nil
}

// profile parses the upload and builds the typed, profiled dataset
func (s *AnalysisService) profile(name string, file io.Reader, reader *excel.DataReader) (*profiled, error) {
	if file == nil {
		return nil, apperrors.InvalidInput("file is required")
	}
	limit := s.reader.MaxFileBytes
	src := file
	if limit > 0 {
		src = io.LimitReader(file, limit+1)
	}
	body, err := io.ReadAll(src)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read upload")
	}
	if limit > 0 && int64(len(body)) > limit {
		return nil, apperrors.FileTooLarge(int64(len(body)), limit)
	}

	data, err := reader.Read(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	types := schema.InferTypes(data.Rows, data.Columns)
	rows := schema.CoerceRows(data.Rows, data.Columns, types)
	stats := statistics.ComputeStats(rows, data.Columns, types)

	return &profiled{
		data:    data,
		dataset: dataset.New(name, rows, data.Columns, types, stats),
		hash:    core.Fingerprint(body, data.Columns),
	}, nil
}

// narrate asks the narrator for prose. Failures leave the narrative empty.
func (s *AnalysisService) narrate(ctx context.Context, result corr.Result, doc *document.Document) string {
	if s.narrator == nil || (len(result.Correlations) == 0 && len(result.Insights) == 0) {
		return ""
	}
	text, err := s.narrator.Narrate(ctx, correlation.Summary(result, doc))
	if err != nil {
		s.logger.Warn("narrative generation failed: %v", err)
		return ""
	}
	return text
}

// Get loads a stored analysis. Rows are re-coerced to their column types since the store
// keeps cells in their JSON form.
func (s *AnalysisService) Get(ctx context.Context, id core.AnalysisID) (*analysis.Analysis, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Rows = schema.CoerceRows(a.Rows, a.Profile.Columns, a.Profile.Types)
	return a, nil
}

// List returns recent analyses, newest first
func (s *AnalysisService) List(ctx context.Context, limit int) ([]analysis.Summary, error) {
	return s.repo.List(ctx, limit)
}

// Delete removes a stored analysis
func (s *AnalysisService) Delete(ctx context.Context, id core.AnalysisID) error {
	return s.repo.Delete(ctx, id)
}

// Recommendations returns the ranked charts of a stored analysis
func (s *AnalysisService) Recommendations(ctx context.Context, id core.AnalysisID) ([]model.Recommendation, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.Recommendations, nil
}

// ValidateChart checks a chart config against the columns of a stored analysis
func (s *AnalysisService) ValidateChart(ctx context.Context, id core.AnalysisID, cfg model.Config) (model.ValidationResult, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.ValidationResult{}, err
	}
	return chart.Validate(cfg, a.Profile.Columns), nil
}

// Preview renders recommendation index of a stored analysis as HTML
func (s *AnalysisService) Preview(ctx context.Context, id core.AnalysisID, index int, w io.Writer) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(a.Recommendations) {
		return apperrors.NotFound(fmt.Sprintf("chart %d", index))
	}
	rec := a.Recommendations[index]
	if res := chart.Validate(rec.Config, a.Profile.Columns); !res.Valid {
		return apperrors.ValidationError(fmt.Sprintf("%s: %s", res.Errors[0].Field, res.Errors[0].Message))
	}
	return chart.RenderPreview(w, rec, a.Dataset())
}
