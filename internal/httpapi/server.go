// Package httpapi exposes the form analysis service as a JSON HTTP API.
// It backs the server mode of the main binary; stdio MCP remains the
// primary transport.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/formlens/mcp-form-analyzer/internal/config"
	"github.com/formlens/mcp-form-analyzer/internal/pdf"
)

const (
	// shutdownTimeout bounds how long in-flight requests may run once the
	// server is asked to stop
	shutdownTimeout = 10 * time.Second
	// readHeaderTimeout guards against clients that stall mid-header
	readHeaderTimeout = 10 * time.Second
	// multipartMemoryLimit is how much of an upload stays in memory before
	// spilling to disk
	multipartMemoryLimit = 10 << 20
	// maxMultipartOverhead allows for multipart framing on top of the
	// configured file size limit
	maxMultipartOverhead = 1 << 20
	// uploadPattern names transient uploads. They land inside the configured
	// PDF directory so path containment holds for the analysis that follows,
	// and each is removed when its request finishes.
	uploadPattern = ".upload-*.pdf"
)

// Server serves the form analysis HTTP API
type Server struct {
	config      *config.Config
	formService *pdf.Service
	router      chi.Router
}

// NewServer creates an HTTP API server around the shared form service
func NewServer(cfg *config.Config, formService *pdf.Service) *Server {
	s := &Server{
		config:      cfg,
		formService: formService,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/v1/info", s.handleInfo)
	r.Post("/v1/analyze", s.handleAnalyze)

	return r
}

// Handler returns the routing handler, primarily for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	log.Printf("HTTP API listening on %s", s.config.Address())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.config.ServerName,
		"version": s.config.Version,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	result, err := s.formService.FormServiceInfo(pdf.FormServiceInfoRequest{},
		s.config.ServerName, s.config.Version, s.config.PDFDirectory)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAnalyze accepts a multipart PDF upload and returns the full
// analysis. Analysis failures still answer HTTP 200; the success and
// error fields of the result carry the outcome. Only malformed requests
// produce 4xx.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxFileSize+maxMultipartOverhead)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart request: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	granularity := r.FormValue("granularity")

	tempFile, err := os.CreateTemp(s.config.PDFDirectory, uploadPattern)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store upload: %v", err))
		return
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if _, err := io.Copy(tempFile, file); err != nil {
		tempFile.Close()
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store upload: %v", err))
		return
	}
	if err := tempFile.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store upload: %v", err))
		return
	}

	analysis := s.formService.FormAnalyzeFile(r.Context(), pdf.FormAnalyzeFileRequest{
		Path:        tempPath,
		Granularity: granularity,
		NoCache:     true,
	})

	// Report the client's filename, not the server-side temp name
	if header.Filename != "" {
		analysis.Filename = filepath.Base(header.Filename)
	}

	writeJSON(w, http.StatusOK, analysis)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
