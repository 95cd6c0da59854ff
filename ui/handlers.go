package ui

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"datasense/app"
	model "datasense/domain/chart"
	"datasense/domain/core"
	"datasense/internal/correlation"
	apperrors "datasense/internal/errors"
)

// multipartOverhead is headroom for form fields and part headers
const multipartOverhead = 64 << 10

// respondError writes the JSON error envelope with the status mapped from the error code
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    apperrors.GetCode(err),
			"message": err.Error(),
		},
	})
}

func analysisID(c *gin.Context) (core.AnalysisID, bool) {
	id, err := core.ParseAnalysisID(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.InvalidInput(err.Error()))
		return "", false
	}
	return id, true
}

// handleUpload accepts a multipart upload: "file" is required, a "document" file or a
// "document_text" field is optional, "sheet" selects an Excel sheet
func (s *Server) handleUpload(c *gin.Context) {
	if s.config.MaxUploadBytes > 0 {
		limit := s.config.MaxUploadBytes + s.config.MaxDocumentBytes + multipartOverhead
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondError(c, apperrors.New(apperrors.CodeFileTooLarge,
				fmt.Sprintf("upload exceeds the %d byte limit", s.config.MaxUploadBytes)))
			return
		}
		respondError(c, apperrors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	documentText, err := s.documentText(c)
	if err != nil {
		respondError(c, err)
		return
	}

	a, err := s.service.Analyze(c.Request.Context(), app.AnalyzeRequest{
		FileName:     header.Filename,
		File:         file,
		Sheet:        c.PostForm("sheet"),
		DocumentText: documentText,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// documentText reads the optional document part. Only plain text and markdown are accepted.
func (s *Server) documentText(c *gin.Context) (string, error) {
	doc, header, err := c.Request.FormFile("document")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return c.PostForm("document_text"), nil
		}
		return "", apperrors.InvalidInput("invalid document part: " + err.Error())
	}
	defer doc.Close()

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".txt", ".md", ".markdown", "":
	default:
		return "", apperrors.UnsupportedFormat(filepath.Ext(header.Filename))
	}

	body, err := io.ReadAll(io.LimitReader(doc, s.config.MaxDocumentBytes+1))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to read document")
	}
	if int64(len(body)) > s.config.MaxDocumentBytes {
		return "", apperrors.FileTooLarge(int64(len(body)), s.config.MaxDocumentBytes)
	}
	return string(body), nil
}

func (s *Server) handleListAnalyses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := s.service.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": list})
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	id, ok := analysisID(c)
	if !ok {
		return
	}
	a, err := s.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleDeleteAnalysis(c *gin.Context) {
	id, ok := analysisID(c)
	if !ok {
		return
	}
	if err := s.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRecommendations(c *gin.Context) {
	id, ok := analysisID(c)
	if !ok {
		return
	}
	recs, err := s.service.Recommendations(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// handlePreview renders one recommendation as a standalone go-echarts page
func (s *Server) handlePreview(c *gin.Context) {
	id, ok := analysisID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, apperrors.InvalidInput(fmt.Sprintf("chart index %q is not a number", c.Param("index"))))
		return
	}

	var buf bytes.Buffer
	if err := s.service.Preview(c.Request.Context(), id, index, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// handleSummary returns the correlation brief as markdown and HTML
func (s *Server) handleSummary(c *gin.Context) {
	id, ok := analysisID(c)
	if !ok {
		return
	}
	a, err := s.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"markdown":  correlation.Summary(a.Correlations, a.Document),
		"html":      correlation.SummaryHTML(a.Correlations, a.Document),
		"narrative": a.Narrative,
	})
}

type validateRequest struct {
	DatasetID string       `json:"datasetId" binding:"required"`
	Config    model.Config `json:"config"`
}

func (s *Server) handleValidateChart(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	id, err := core.ParseAnalysisID(req.DatasetID)
	if err != nil {
		respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	res, err := s.service.ValidateChart(c.Request.Context(), id, req.Config)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleUsage reports LLM token usage. since is a duration back from now (default 24h) or
// an RFC 3339 timestamp.
func (s *Server) handleUsage(c *gin.Context) {
	raw := c.DefaultQuery("since", "24h")
	var since time.Time
	if d, err := time.ParseDuration(raw); err == nil {
		since = time.Now().Add(-d)
	} else if t, err := time.Parse(time.RFC3339, raw); err == nil {
		since = t
	} else {
		respondError(c, apperrors.InvalidInput(fmt.Sprintf("since %q is neither a duration nor an RFC 3339 time", raw)))
		return
	}

	summary, err := s.usage.Summary(c.Request.Context(), since.UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
