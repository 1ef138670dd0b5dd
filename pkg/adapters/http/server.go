package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/intake"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/validation"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed openapi.yaml
var rawSpec []byte

const (
	defaultMaxUploadBytes = 1 << 20
	defaultListLimit      = 100
	maxListLimit          = 1000
)

// Processor runs the validation pipeline. *validation.Validator implements it.
type Processor interface {
	Process(ctx context.Context, u validation.Upload) (domain.Report, error)
}

// ProcessResponse is the JSON body of POST /process-files/.
// Exactly one field is set.
type ProcessResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Server holds the HTTP handlers.
type Server struct {
	Validator      Processor
	Store          ports.ResultStore
	Metrics        http.Handler
	StaticDir      string
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithStaticDir serves dir under /static/.
func WithStaticDir(dir string) Option {
	return func(s *Server) {
		s.StaticDir = dir
	}
}

// WithMaxUploadBytes caps the request body of an upload.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.MaxUploadBytes = n
		}
	}
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = l
	}
}

// NewHandler creates the HTTP handler for the validation service.
func NewHandler(v Processor, store ports.ResultStore, opts ...Option) http.Handler {
	server := &Server{
		Validator:      v,
		Store:          store,
		MaxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Logger == nil {
		server.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(server.logRequests)

	r.Get("/", server.GetIndex)
	r.Post("/process-files", server.ProcessFiles)
	r.Post("/process-files/", server.ProcessFiles)
	r.Get("/results", server.ListResults)
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	if server.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.Metrics)
	}
	if server.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(server.StaticDir)))
		r.Handle("/static/*", fs)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// GetIndex serves the upload page.
func (s *Server) GetIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, indexHTML)
}

// ProcessFiles handles POST /process-files/?file_type=csv|txt with a multipart report_file.
// Validation verdicts, including failures, are answered with 200.
func (s *Server) ProcessFiles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.Logger.Warn("ProcessFiles: Upload too large", "limit", s.MaxUploadBytes)
			writeJSON(w, http.StatusRequestEntityTooLarge, ProcessResponse{
				Error: fmt.Sprintf("Upload exceeds %d bytes. %s", s.MaxUploadBytes, domain.FailMark),
			})
			return
		}
		s.Logger.Warn("ProcessFiles: Invalid multipart body", "error", err)
		writeJSON(w, http.StatusBadRequest, ProcessResponse{Error: "Invalid multipart body. " + domain.FailMark})
		return
	}
	defer r.MultipartForm.RemoveAll()

	fileType := r.URL.Query().Get("file_type")
	if fileType == "" {
		fileType = r.FormValue("file_type")
	}
	if fileType == "" {
		writeJSON(w, http.StatusBadRequest, ProcessResponse{Error: "file_type is required. " + domain.FailMark})
		return
	}

	file, header, err := r.FormFile("report_file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ProcessResponse{Error: "report_file is required. " + domain.FailMark})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.Logger.Error("ProcessFiles: Read failed", "error", err)
		writeJSON(w, http.StatusOK, ProcessResponse{Error: unexpected(err)})
		return
	}

	report, err := s.Validator.Process(r.Context(), validation.Upload{
		FileName: header.Filename,
		FileType: domain.FileType(fileType),
		Data:     data,
	})
	writeJSON(w, http.StatusOK, respond(report, err))
}

// respond maps a pipeline result to the upload page's JSON contract.
func respond(report domain.Report, err error) ProcessResponse {
	if err != nil {
		var perr *domain.ParseError
		if errors.As(err, &perr) || errors.Is(err, domain.ErrUnsupportedFileType) {
			return ProcessResponse{Error: err.Error() + " " + domain.FailMark}
		}
		return ProcessResponse{Error: unexpected(err)}
	}
	if report.Accepted {
		return ProcessResponse{Message: report.HTML()}
	}
	return ProcessResponse{Error: report.HTML()}
}

func unexpected(err error) string {
	return "An unexpected error occurred: " + err.Error() + " " + domain.FailMark
}

// ListResults handles GET /results?file_name=&limit=.
func (s *Server) ListResults(w http.ResponseWriter, r *http.Request) {
	filter := domain.Filter{
		FileName: r.URL.Query().Get("file_name"),
		Limit:    defaultListLimit,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			http.Error(w, fmt.Sprintf("limit must be between 1 and %d", maxListLimit), http.StatusBadRequest)
			return
		}
		filter.Limit = n
	}

	recs, err := s.Store.List(r.Context(), filter)
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("ListResults failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": recs})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := LoadSpec(r.Context()); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "intake-http",
		"version":     strings.TrimSpace(intake.Version),
		"api_version": apiVersion,
	})
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return doc, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
