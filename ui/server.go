package ui

import (
	"context"
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"datasense/app"
	"datasense/domain/analysis"
	model "datasense/domain/chart"
	"datasense/domain/core"
	"datasense/domain/usage"
)

// AnalysisAPI is the service surface the HTTP layer needs
type AnalysisAPI interface {
	Analyze(ctx context.Context, req app.AnalyzeRequest) (*analysis.Analysis, error)
	Get(ctx context.Context, id core.AnalysisID) (*analysis.Analysis, error)
	List(ctx context.Context, limit int) ([]analysis.Summary, error)
	Delete(ctx context.Context, id core.AnalysisID) error
	Recommendations(ctx context.Context, id core.AnalysisID) ([]model.Recommendation, error)
	ValidateChart(ctx context.Context, id core.AnalysisID, cfg model.Config) (model.ValidationResult, error)
	Preview(ctx context.Context, id core.AnalysisID, index int, w io.Writer) error
}

// UsageAPI reports LLM token usage
type UsageAPI interface {
	Summary(ctx context.Context, since time.Time) (*usage.Summary, error)
}

// Config holds HTTP server settings
type Config struct {
	Port             string
	GinMode          string
	MaxUploadBytes   int64 // Tabular file limit; the request may carry a document on top
	MaxDocumentBytes int64
}

// Server represents the web server for the DataSense API and upload pages
type Server struct {
	router    *gin.Engine
	service   AnalysisAPI
	usage     UsageAPI
	templates *template.Template
	config    Config
}

// NewServer creates a new web server instance. usage may be nil, which leaves /api/usage
// unregistered.
func NewServer(service AnalysisAPI, usage UsageAPI, config Config) (*Server, error) {
	if config.GinMode != "" {
		gin.SetMode(config.GinMode)
	}
	if config.MaxDocumentBytes <= 0 {
		config.MaxDocumentBytes = 1 << 20
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		service:   service,
		usage:     usage,
		templates: templates,
		config:    config,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	// Pages
	s.router.GET("/", s.handleIndex)
	s.router.GET("/analyses/:id", s.handleAnalysisPage)

	// API endpoints
	api := s.router.Group("/api")
	api.GET("/datasets", s.handleListAnalyses)
	api.POST("/datasets", s.handleUpload)
	api.GET("/datasets/:id", s.handleGetAnalysis)
	api.DELETE("/datasets/:id", s.handleDeleteAnalysis)
	api.GET("/datasets/:id/charts", s.handleRecommendations)
	api.GET("/datasets/:id/charts/:index/preview", s.handlePreview)
	api.GET("/datasets/:id/summary", s.handleSummary)
	api.POST("/charts/validate", s.handleValidateChart)
	if s.usage != nil {
		api.GET("/usage", s.handleUsage)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] DataSense listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Printf("[Server] shutting down")
	return srv.Shutdown(shutdownCtx)
}
