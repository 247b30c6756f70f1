package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shotsearch/internal/domain"
	domusage "github.com/kailas-cloud/shotsearch/internal/domain/usage"
	logpkg "github.com/kailas-cloud/shotsearch/internal/logger"
	healthuc "github.com/kailas-cloud/shotsearch/internal/usecase/health"
	shotuc "github.com/kailas-cloud/shotsearch/internal/usecase/screenshot"
	searchuc "github.com/kailas-cloud/shotsearch/internal/usecase/search"
	uploaduc "github.com/kailas-cloud/shotsearch/internal/usecase/upload"
	usageuc "github.com/kailas-cloud/shotsearch/internal/usecase/usage"
)

// Recent search listing bounds.
const (
	defaultSearchLogLimit = 20
	maxSearchLogLimit     = 100
)

// multipartMemory is the part of an upload kept in memory; the rest spills to temp files.
const multipartMemory = 32 << 20

// multipartOverhead is allowed on top of the file bytes for headers and boundaries.
const multipartOverhead = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	search        *searchuc.Service
	uploads       *uploaduc.Service
	screenshots   *shotuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	uploads *uploaduc.Service,
	screenshots *shotuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:      search,
		uploads:     uploads,
		screenshots: screenshots,
		usage:       usage,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrScreenshotNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrFileNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest),
		sentinelHandler(domain.ErrInvalidLimit, http.StatusBadRequest),
		sentinelHandler(domain.ErrInvalidUpload, http.StatusBadRequest),
		sentinelHandler(domain.ErrBatchTooLarge, http.StatusBadRequest),
		sentinelHandler(domain.ErrUnsupportedMedia, http.StatusUnsupportedMediaType),
		sentinelHandler(domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge),
		sentinelHandler(domain.ErrVisionQuotaExceeded, http.StatusPaymentRequired),
		sentinelHandler(domain.ErrVisionProviderError, http.StatusBadGateway),
	}
	return s
}

// Search handles GET /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request, params SearchParams) {
	start := time.Now()
	// An empty q counts as missing; only a blank one is "empty".
	if params.Q == nil || *params.Q == "" {
		writeSearchError(w, http.StatusBadRequest, `Query parameter "q" is required`, "", 0)
		return
	}
	query := strings.TrimSpace(*params.Q)

	resp, err := s.search.Search(r.Context(), *params.Q, params.Limit)
	if err != nil {
		limits := s.search.Limits()
		switch {
		case errors.Is(err, domain.ErrInvalidQuery) && query == "":
			writeSearchError(w, http.StatusBadRequest, "Query cannot be empty", query, 0)
		case errors.Is(err, domain.ErrInvalidQuery):
			writeSearchError(w, http.StatusBadRequest,
				fmt.Sprintf("Query too long (maximum %d characters)", limits.MaxQueryLength), query, 0)
		case errors.Is(err, domain.ErrInvalidLimit):
			writeSearchError(w, http.StatusBadRequest, limitMessage(limits.MaxLimit), query, 0)
		default:
			s.log(r).Error("Search failed", zap.Error(err))
			writeSearchError(w, http.StatusInternalServerError, "Internal server error", query,
				time.Since(start).Milliseconds())
		}
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Results:      resultsToAPI(resp.Results),
		Query:        resp.Query,
		TotalFound:   len(resp.Results),
		ResponseTime: resp.ResponseTimeMs,
	})
}

// Upload handles POST /api/upload with multipart field "files".
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	limits := s.uploads.Limits()
	r.Body = http.MaxBytesReader(w, r.Body, int64(limits.MaxFiles)*(limits.MaxFileSize+multipartOverhead))

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, UploadResponse{Errors: []string{"Upload too large"}})
			return
		}
		writeJSON(w, http.StatusBadRequest, UploadResponse{Errors: []string{"No files provided"}})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files, err := readFiles(r.MultipartForm.File["files"], limits.MaxFileSize)
	if err != nil {
		s.log(r).Error("Failed to read upload", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, UploadResponse{Errors: []string{"Server error during upload"}})
		return
	}

	ctx, usage := domain.NewContextWithVisionUsage(r.Context())
	summary, err := s.uploads.Upload(ctx, files)
	switch {
	case errors.Is(err, domain.ErrInvalidUpload):
		writeJSON(w, http.StatusBadRequest, UploadResponse{Errors: []string{"No files provided"}})
		return
	case errors.Is(err, domain.ErrBatchTooLarge):
		msg := fmt.Sprintf("Too many files. Maximum %d files per batch.", limits.MaxFiles)
		writeJSON(w, http.StatusBadRequest, UploadResponse{Errors: []string{msg}})
		return
	case err != nil:
		s.log(r).Error("Upload failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, UploadResponse{Errors: []string{"Server error during upload"}})
		return
	}

	setVisionHeaders(w, usage)
	writeJSON(w, http.StatusOK, UploadResponse{
		Success:        summary.Success(),
		UploadedCount:  summary.UploadedCount(),
		TotalFiles:     summary.TotalFiles(),
		Errors:         summary.Errors(),
		ProcessedFiles: screenshotsToAPI(summary.Screenshots()),
		BatchInfo: &BatchInfo{
			Processed: summary.UploadedCount(),
			Failed:    summary.FailedCount(),
			Total:     summary.TotalFiles(),
		},
	})
}

// ListScreenshots handles GET /api/screenshots.
func (s *Server) ListScreenshots(w http.ResponseWriter, r *http.Request) {
	shots, err := s.screenshots.List(r.Context())
	if err != nil {
		s.log(r).Error("Failed to list screenshots", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ScreenshotListResponse{
			Error:       "Failed to fetch screenshots",
			Screenshots: []Screenshot{},
		})
		return
	}
	writeJSON(w, http.StatusOK, ScreenshotListResponse{Screenshots: screenshotsToAPI(shots), Total: len(shots)})
}

// GetScreenshot handles GET /api/screenshots/{id}.
func (s *Server) GetScreenshot(w http.ResponseWriter, r *http.Request, id string) {
	shot, err := s.screenshots.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, screenshotToAPI(&shot))
}

// DeleteScreenshot handles DELETE /api/screenshots/{id}.
func (s *Server) DeleteScreenshot(w http.ResponseWriter, r *http.Request, id string) {
	err := s.screenshots.Delete(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrScreenshotNotFound):
		writeJSON(w, http.StatusNotFound, DeleteResponse{Message: "Screenshot not found"})
	case err != nil:
		s.log(r).Error("Failed to delete screenshot", zap.String("id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, DeleteResponse{Message: "Failed to delete screenshot"})
	default:
		writeJSON(w, http.StatusOK, DeleteResponse{Success: true, Message: "Screenshot deleted successfully"})
	}
}

// PreviewScreenshot handles GET /api/screenshots/{id}/preview.
func (s *Server) PreviewScreenshot(w http.ResponseWriter, r *http.Request, id string, params PreviewParams) {
	var query string
	if params.Q != nil {
		query = *params.Q
	}
	p, err := s.screenshots.Preview(r.Context(), id, query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, previewToAPI(&p))
}

// GetFile handles GET /api/files/{id}.
func (s *Server) GetFile(w http.ResponseWriter, r *http.Request, id string) {
	b, err := s.screenshots.File(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", b.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(b.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Data)
}

// GetStats handles GET /api/stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.screenshots.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	byStatus := make(map[string]int64, len(st.ByStatus))
	for k, v := range st.ByStatus {
		byStatus[string(k)] = v
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		TotalScreenshots:  st.TotalScreenshots,
		StorageUsed:       st.StorageUsed,
		ByStatus:          byStatus,
		TotalSearches:     st.TotalSearches,
		AvgResponseTimeMs: st.AvgResponseTimeMs,
	})
}

// ListSearches handles GET /api/searches.
func (s *Server) ListSearches(w http.ResponseWriter, r *http.Request, params ListSearchesParams) {
	limit := defaultSearchLogLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	if limit < 1 || limit > maxSearchLogLimit {
		writeError(w, http.StatusBadRequest, limitMessage(maxSearchLogLimit))
		return
	}

	entries, err := s.screenshots.Recent(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchLogResponse{Searches: searchLogToAPI(entries), Total: len(entries)})
}

// GetUsage handles GET /api/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request, params GetUsageParams) {
	var raw string
	if params.Period != nil {
		raw = *params.Period
	}
	period, ok := domusage.ParsePeriod(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "Period must be day or month")
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	resp := UsageResponse{
		Period:        string(report.Period()),
		Provider:      report.Provider(),
		PeriodStartAt: time.UnixMilli(report.PeriodStart()).UTC(),
		PeriodEndAt:   time.UnixMilli(report.PeriodEnd()).UTC(),
		Usage: UsageMetrics{
			VisionRequests: report.Metrics().VisionRequests(),
			Tokens:         report.Metrics().Tokens(),
		},
		Budget: BudgetStatus{
			TokensLimit:     report.Budget().TokensLimit(),
			TokensRemaining: report.Budget().TokensRemaining(),
			IsExhausted:     report.Budget().IsExhausted(),
		},
	}
	if !report.Budget().IsUnlimited() && report.Budget().ResetsAt() > 0 {
		resetsAt := time.UnixMilli(report.Budget().ResetsAt()).UTC()
		resp.Budget.ResetsAt = &resetsAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ParamErrorHandler answers requests whose parameters failed to bind.
// Search keeps its own error body.
func (s *Server) ParamErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	var pe *InvalidParamFormatError
	name := "request"
	if errors.As(err, &pe) {
		name = pe.ParamName
	}

	if strings.HasSuffix(r.URL.Path, "/api/search") {
		q := r.URL.Query()
		if q.Get("q") == "" {
			writeSearchError(w, http.StatusBadRequest, `Query parameter "q" is required`, "", 0)
			return
		}
		msg := "Invalid parameter " + name
		if name == "limit" {
			msg = limitMessage(s.search.Limits().MaxLimit)
		}
		writeSearchError(w, http.StatusBadRequest, msg, strings.TrimSpace(q.Get("q")), 0)
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid parameter "+name)
}

func readFiles(headers []*multipart.FileHeader, maxFileSize int64) ([]uploaduc.File, error) {
	files := make([]uploaduc.File, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh, maxFileSize)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		files = append(files, uploaduc.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

// readPart reads at most maxFileSize+1 bytes so oversized files are
// rejected by size without buffering them whole.
func readPart(fh *multipart.FileHeader, maxFileSize int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(io.LimitReader(f, maxFileSize+1))
}

func limitMessage(maxLimit int) string {
	return fmt.Sprintf("Limit must be a number between 1 and %d", maxLimit)
}

func setVisionHeaders(w http.ResponseWriter, usage *domain.VisionUsage) {
	if usage.Calls() > 0 {
		w.Header().Set("X-Vision-Tokens", strconv.Itoa(usage.TotalTokens()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeSearchError(w http.ResponseWriter, status int, message, query string, responseTime int64) {
	writeJSON(w, status, SearchResponse{
		Error:        message,
		Results:      []SearchResult{},
		Query:        query,
		ResponseTime: responseTime,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrScreenshotNotFound,
		domain.ErrFileNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidQuery,
		domain.ErrInvalidLimit,
		domain.ErrInvalidUpload,
		domain.ErrBatchTooLarge,
		domain.ErrUnsupportedMedia,
		domain.ErrFileTooLarge,
		domain.ErrVisionQuotaExceeded,
		domain.ErrVisionProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

func (s *Server) log(r *http.Request) *zap.Logger {
	return logpkg.FromContextOr(r.Context(), s.logger)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.log(r)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
