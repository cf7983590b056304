package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/meridian-oss/sphindex/internal/domain"
	domdoc "github.com/meridian-oss/sphindex/internal/domain/document"
	"github.com/meridian-oss/sphindex/internal/domain/search/mode"
	"github.com/meridian-oss/sphindex/internal/domain/search/query"
	"github.com/meridian-oss/sphindex/internal/logger"
	"github.com/meridian-oss/sphindex/internal/metrics"
	documentuc "github.com/meridian-oss/sphindex/internal/usecase/document"
	healthuc "github.com/meridian-oss/sphindex/internal/usecase/health"
	searchuc "github.com/meridian-oss/sphindex/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes the reconciliation layer over HTTP.
type Server struct {
	documents       *documentuc.Service
	search          *searchuc.Service
	health          *healthuc.Service
	logger          *zap.Logger
	defaultPageSize int
	errorHandlers   []errorHandler
}

// NewServer creates an HTTP API server. defaultPageSize is the page size
// applied when a search request omits one (0 = built-in default).
func NewServer(
	documents *documentuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	log *zap.Logger,
	defaultPageSize int,
) *Server {
	s := &Server{
		documents:       documents,
		search:          search,
		health:          health,
		logger:          log,
		defaultPageSize: defaultPageSize,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrClassNotRegistered, http.StatusNotFound, "class_not_registered"),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, "document_not_found"),
		sentinelHandler(domain.ErrSpaceExhausted, http.StatusInsufficientStorage, "space_exhausted"),
		sentinelHandler(domain.ErrDaemonUnavailable, http.StatusBadGateway, "daemon_unavailable"),
	}
	return s
}

// Router assembles the chi router with logging and metrics middleware.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.RequestID)
	r.Use(jsonRecoverer(s.logger))
	r.Use(metrics.Middleware())
	r.Use(s.wideEventMiddleware())

	r.Get("/healthz", s.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/search", s.SearchAll)
	r.Route("/classes/{class}", func(r chi.Router) {
		r.Post("/search", s.SearchClass)
		r.Post("/documents", s.SaveDocument)
		r.Get("/documents/{id}", s.GetDocument)
		r.Delete("/documents/{id}", s.DeleteDocument)
	})

	return r
}

// wideEventMiddleware emits a canonical log line per request, propagates
// X-Request-ID, and stores a per-request logger in the context.
func (s *Server) wideEventMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := s.logger.With(zap.String("request_id", requestID))
			ctx := logger.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a
// plain text stacktrace.
func jsonRecoverer(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SearchAll handles POST /search (store-wide, cross-class).
func (s *Server) SearchAll(w http.ResponseWriter, r *http.Request) {
	s.handleSearch(w, r, "")
}

// SearchClass handles POST /classes/{class}/search.
func (s *Server) SearchClass(w http.ResponseWriter, r *http.Request) {
	s.handleSearch(w, r, chi.URLParam(r, "class"))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, classTag string) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	q, err := query.New(req.Query, query.Options{
		MatchMode:  mode.MatchMode(req.MatchMode),
		Limit:      req.Limit,
		MaxMatches: req.MaxMatches,
		SortBy:     req.SortBy,
		With:       req.With,
		Raw:        req.Raw,
		Select:     req.Select,
		Page:            req.Page,
		PageSize:        req.PageSize,
		DefaultPageSize: s.defaultPageSize,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	if q.Raw() {
		ids, total, err := s.search.SearchIdentifiers(r.Context(), classTag, &q)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rawSearchResponse{TotalFound: total, Identifiers: ids})
		return
	}

	results, err := s.search.Search(r.Context(), classTag, &q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponseFrom(&results))
}

// SaveDocument handles POST /classes/{class}/documents.
// A document without an identifier gets one assigned.
func (s *Server) SaveDocument(w http.ResponseWriter, r *http.Request) {
	class := chi.URLParam(r, "class")

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	doc, err := domdoc.New(class, req.Fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	if req.Identifier != 0 {
		doc = doc.WithIdentifier(req.Identifier)
	}

	saved, err := s.documents.Save(r.Context(), doc)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentFrom(&saved))
}

// GetDocument handles GET /classes/{class}/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	class := chi.URLParam(r, "class")
	id, ok := parseIdentifier(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	doc, err := s.documents.Get(r.Context(), class, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentFrom(&doc))
}

// DeleteDocument handles DELETE /classes/{class}/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	class := chi.URLParam(r, "class")
	id, ok := parseIdentifier(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := s.documents.Delete(r.Context(), class, id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	status := s.health.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, healthResponse{Store: status.StoreOK, Daemon: status.DaemonOK})
}

func parseIdentifier(w http.ResponseWriter, raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid document identifier: "+raw)
		return 0, false
	}
	return id, true
}

// handleDomainError walks the handler chain, falling back to 500.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
