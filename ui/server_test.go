package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasense/adapters/excel"
	"datasense/adapters/llm/heuristic"
	"datasense/adapters/memory"
	"datasense/app"
	"datasense/domain/core"
	"datasense/domain/usage"
	"datasense/internal/testkit"
)

type uploadPart struct {
	field, filename string
	body            []byte
}

func multipartBody(t *testing.T, parts []uploadPart, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := w.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write(p.body)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := app.NewAnalysisService(memory.NewAnalysisRepository(), heuristic.NewAnalyzer(), nil, app.ServiceOptions{
		Reader: excel.DefaultReaderConfig(),
	})
	s, err := NewServer(svc, nil, Config{GinMode: gin.TestMode, MaxUploadBytes: 1 << 20, MaxDocumentBytes: 4 << 10})
	require.NoError(t, err)
	return s
}

func do(s *Server, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

type uploadResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Profile         json.RawMessage   `json:"profile"`
	Recommendations []json.RawMessage `json:"recommendations"`
	Document        *struct {
		Source string `json:"source"`
	} `json:"document"`
}

func upload(t *testing.T, s *Server) uploadResponse {
	t.Helper()
	body, ct := multipartBody(t,
		[]uploadPart{
			{"file", "orders.csv", testkit.OrdersCSV(40)},
			{"document", "feedback.md", []byte(testkit.FeedbackDocument)},
		}, nil)
	rec := do(s, http.MethodPost, "/api/datasets", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func TestUploadAndFetch(t *testing.T) {
	s := newTestServer(t)
	got := upload(t, s)

	assert.Equal(t, "orders.csv", got.Name)
	assert.NotEmpty(t, got.Recommendations)
	require.NotNil(t, got.Document)
	assert.Equal(t, "heuristic", got.Document.Source)

	rec := do(s, http.MethodGet, "/api/datasets/"+got.ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"rows"`)

	rec = do(s, http.MethodGet, "/api/datasets/"+got.ID+"/charts", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "recommendations")

	rec = do(s, http.MethodGet, "/api/datasets/"+got.ID+"/charts/0/preview", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = do(s, http.MethodGet, "/api/datasets/"+got.ID+"/summary", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Correlations")

	rec = do(s, http.MethodGet, "/api/datasets", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), got.ID)

	rec = do(s, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "orders.csv")

	rec = do(s, http.MethodGet, "/analyses/"+got.ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Recommended charts")

	rec = do(s, http.MethodDelete, "/api/datasets/"+got.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(s, http.MethodGet, "/api/datasets/"+got.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		parts  []uploadPart
		fields map[string]string
		status int
		code   string
	}{
		{"missing file", nil, map[string]string{"sheet": "x"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"legacy excel", []uploadPart{{"file", "old.xls", []byte("x")}}, nil, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
		{"header only", []uploadPart{{"file", "a.csv", []byte("a,b\n")}}, nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"pdf document", []uploadPart{{"file", "a.csv", []byte("a\n1\n")}, {"document", "memo.pdf", []byte("%PDF")}}, nil, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
		{"document too large", []uploadPart{{"file", "a.csv", []byte("a\n1\n")}, {"document", "memo.txt", bytes.Repeat([]byte("x"), 5<<10)}}, nil, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.parts, tt.fields)
			rec := do(s, http.MethodPost, "/api/datasets", body, ct)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var env struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestUploadBodyLimit(t *testing.T) {
	svc := app.NewAnalysisService(memory.NewAnalysisRepository(), nil, nil, app.ServiceOptions{})
	s, err := NewServer(svc, nil, Config{GinMode: gin.TestMode, MaxUploadBytes: 1 << 10, MaxDocumentBytes: 1 << 10})
	require.NoError(t, err)

	body, ct := multipartBody(t, []uploadPart{{"file", "big.csv", bytes.Repeat([]byte("1\n"), 100<<10)}}, nil)
	rec := do(s, http.MethodPost, "/api/datasets", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestValidateChartEndpoint(t *testing.T) {
	s := newTestServer(t)
	got := upload(t, s)

	payload := `{"datasetId": "` + got.ID + `", "config": {"type": "bar", "xAxis": "nope", "yAxis": ["revenue"]}}`
	rec := do(s, http.MethodPost, "/api/charts/validate", bytes.NewBufferString(payload), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Valid  bool `json:"valid"`
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "xAxis", res.Errors[0].Field)

	rec = do(s, http.MethodPost, "/api/charts/validate", bytes.NewBufferString(`{"config": {}}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBadIDsAndIndexes(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/api/datasets/not-a-uuid", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/datasets/"+core.NewAnalysisID().String(), nil, "").Code)

	got := upload(t, s)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/api/datasets/"+got.ID+"/charts/x/preview", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/datasets/"+got.ID+"/charts/99/preview", nil, "").Code)
}

func TestUsageEndpoint(t *testing.T) {
	repo := memory.NewLLMUsageRepository()
	require.NoError(t, repo.RecordUsage(context.Background(), &usage.Record{
		Provider: "openai", Model: "gpt-4.1-mini", TotalTokens: 42, CreatedAt: time.Now().UTC(),
	}))
	svc := app.NewAnalysisService(memory.NewAnalysisRepository(), nil, nil, app.ServiceOptions{})
	s, err := NewServer(svc, repo, Config{GinMode: gin.TestMode})
	require.NoError(t, err)

	rec := do(s, http.MethodGet, "/api/usage?since=1h", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum usage.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 42, sum.TotalTokens)
	require.Len(t, sum.ByModel, 1)

	rec = do(s, http.MethodGet, "/api/usage?since=2000-01-01T00:00:00Z", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodGet, "/api/usage?since=yesterday", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// without a usage source the route is absent
	assert.Equal(t, http.StatusNotFound, do(newTestServer(t), http.MethodGet, "/api/usage", nil, "").Code)
}

func TestOpsApp(t *testing.T) {
	ops := NewOpsApp("0", map[string]HealthCheck{
		"store": func(ctx context.Context) error { return nil },
	})
	rec := httptest.NewRecorder()
	ops.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store":"ok"`)

	rec = httptest.NewRecorder()
	ops.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	failing := NewOpsApp("0", map[string]HealthCheck{
		"db": func(ctx context.Context) error { return errors.New("connection refused") },
	})
	rec = httptest.NewRecorder()
	failing.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "connection refused"))
}
