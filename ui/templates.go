package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"datasense/internal/correlation"
)

//go:embed templates/*.html
var templateFiles embed.FS

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"upper": strings.ToUpper,
	}
	t, err := template.New("").Funcs(funcMap).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return t, nil
}

// renderTemplate executes a template with the given data
func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	// First render to a buffer to catch any errors before writing to response
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// handleIndex renders the upload form and recent analyses
func (s *Server) handleIndex(c *gin.Context) {
	list, err := s.service.List(c.Request.Context(), 20)
	if err != nil {
		respondError(c, err)
		return
	}
	s.renderTemplate(c, "index.html", gin.H{
		"Title":    "DataSense",
		"Analyses": list,
	})
}

// handleAnalysisPage renders one analysis with its charts and correlation brief
func (s *Server) handleAnalysisPage(c *gin.Context) {
	id, ok := analysisID(c)
	if !ok {
		return
	}
	a, err := s.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	s.renderTemplate(c, "analysis.html", gin.H{
		"Title":    a.Name + " - DataSense",
		"Analysis": a,
		"Summary":  template.HTML(correlation.SummaryHTML(a.Correlations, a.Document)),
	})
}
