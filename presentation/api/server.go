// Package api exposes the generator over HTTP with a chi router.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ai_testgen/application/generator"
	"ai_testgen/domain/entities"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes bounds request bodies; snapshots of large pages stay well below it
const maxBodyBytes = 10 << 20

// Error codes returned in the error envelope
const (
	CodeInvalidSnapshot = "invalid_snapshot"
	CodeSessionNotFound = "session_not_found"
	CodeBadRequest      = "bad_request"
	CodeInternal        = "internal"
)

type Server struct {
	svc       *generator.Service
	logger    *logrus.Logger
	batchSize int
	router    chi.Router
}

// NewServer - creates the HTTP API. batchSize is used when a request names none.
func NewServer(svc *generator.Service, logger *logrus.Logger, batchSize int) *Server {
	s := &Server{
		svc:       svc,
		logger:    logger,
		batchSize: batchSize,
	}
	s.router = s.routes()
	return s
}

// Handler - the root http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/export", s.handleExportCases)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/export", s.handleExportSession)
			r.Post("/run", s.handleRunSession)
		})
	})
	return r
}

// requestLogger logs one line per request through logrus
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}

type analyzeRequest struct {
	URL       string                 `json:"url"`
	Snapshot  *entities.PageSnapshot `json:"snapshot"`
	Mode      string                 `json:"mode"`
	SessionID string                 `json:"sessionId"`
	BatchSize int                    `json:"batchSize"`
	UseAI     bool                   `json:"useAI"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}

	mode, err := generator.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	if req.BatchSize < 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("batchSize must not be negative"))
		return
	}
	if req.BatchSize == 0 {
		req.BatchSize = s.batchSize
	}

	resp, err := s.svc.Analyze(r.Context(), generator.Request{
		URL:       req.URL,
		Snapshot:  req.Snapshot,
		Mode:      mode,
		SessionID: req.SessionID,
		BatchSize: req.BatchSize,
		UseAI:     req.UseAI,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "session": state})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request) {
	format := entities.ParseFormat(r.URL.Query().Get("format"))
	doc, err := s.svc.Export(r.Context(), chi.URLParam(r, "id"), format)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeDocument(w, *doc)
}

type exportRequest struct {
	Format    string              `json:"format"`
	URL       string              `json:"url"`
	Title     string              `json:"title"`
	Platform  entities.Platform   `json:"platform"`
	TestCases []entities.TestCase `json:"testCases"`
}

func (s *Server) handleExportCases(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}

	meta := entities.ExportMeta{URL: req.URL, Title: req.Title, Platform: req.Platform}
	writeDocument(w, s.svc.ExportCases(meta, req.TestCases, entities.ParseFormat(req.Format)))
}

func (s *Server) handleRunSession(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "report": report})
}

// fail maps domain errors to status codes
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrInvalidSnapshot):
		writeError(w, http.StatusBadRequest, CodeInvalidSnapshot, err)
	case errors.Is(err, entities.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, CodeSessionNotFound, err)
	default:
		s.logger.WithError(err).Error("Request failed")
		writeError(w, http.StatusInternalServerError, CodeInternal, err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode string, err error) {
	writeJSON(w, code, map[string]any{
		"success": false,
		"error":   err.Error(),
		"code":    errCode,
	})
}

func writeDocument(w http.ResponseWriter, doc entities.ExportDocument) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc.Body))
}
