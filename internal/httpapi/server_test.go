package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlens/mcp-form-analyzer/internal/config"
	"github.com/formlens/mcp-form-analyzer/internal/forms"
	"github.com/formlens/mcp-form-analyzer/internal/pdf"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	tempDir := t.TempDir()
	formService, err := pdf.NewService(1024*1024, tempDir, nil)
	require.NoError(t, err)

	cfg := &config.Config{
		Mode:         "server",
		Host:         "127.0.0.1",
		Port:         0,
		PDFDirectory: tempDir,
		ServerName:   "test-form-server",
		Version:      "1.0.0-test",
		LogLevel:     "info",
		MaxFileSize:  1024 * 1024,
	}

	return NewServer(cfg, formService), tempDir
}

// multipartBody builds a multipart request body with one file part plus
// optional plain fields
func multipartBody(t *testing.T, filename string, contents []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(contents)
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test-form-server", body["service"])
	assert.Equal(t, "1.0.0-test", body["version"])
}

func TestInfoEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/info", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var info pdf.FormServiceInfoResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, "test-form-server", info.ServerName)
	assert.Equal(t, "1.0.0-test", info.Version)
	assert.Equal(t, int64(1024*1024), info.MaxFileSize)
	assert.Len(t, info.AvailableTools, 9)
	assert.Contains(t, info.SupportedSegmentTypes, "FormField")
	assert.NotEmpty(t, info.UsageGuidance)
}

func TestAnalyzeRequiresMultipart(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewBufferString("not multipart"))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body["error"], "multipart")
}

func TestAnalyzeMissingFileField(t *testing.T) {
	server, _ := newTestServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("granularity", "line"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body["error"], "file")
}

func TestAnalyzeInvalidPDF(t *testing.T) {
	server, _ := newTestServer(t)

	body, contentType := multipartBody(t, "claim_form.pdf", []byte("this is not a real PDF"), nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	// Analysis failures still answer 200; the result carries the outcome
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis forms.FormAnalysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&analysis))
	assert.False(t, analysis.Success)
	assert.NotEmpty(t, analysis.Error)
	assert.Equal(t, "claim_form.pdf", analysis.Filename)
	assert.NotNil(t, analysis.Segments)
	assert.Empty(t, analysis.Segments)
	assert.NotNil(t, analysis.Fields)
	assert.Empty(t, analysis.Fields)
}

func TestAnalyzeInvalidGranularity(t *testing.T) {
	server, _ := newTestServer(t)

	body, contentType := multipartBody(t, "form.pdf", []byte("%PDF-1.4 junk"),
		map[string]string{"granularity": "word"})
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var analysis forms.FormAnalysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&analysis))
	assert.False(t, analysis.Success)
	assert.Contains(t, analysis.Error, "invalid granularity")
}

func TestAnalyzeCleansUpUploads(t *testing.T) {
	server, tempDir := newTestServer(t)

	body, contentType := multipartBody(t, "form.pdf", []byte("junk"), nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	leftovers, err := filepath.Glob(filepath.Join(tempDir, ".upload-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "upload temp files should be removed after the request")
}

func TestRunCanceledContext(t *testing.T) {
	server, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := server.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunGracefulShutdown(t *testing.T) {
	server, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx)
	}()

	// Give the listener a moment to start before stopping it
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down after context cancellation")
	}
}
