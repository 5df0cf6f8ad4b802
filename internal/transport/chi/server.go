package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/edgardesk/edgardesk/internal/domain"
	companyuc "github.com/edgardesk/edgardesk/internal/usecase/company"
	healthuc "github.com/edgardesk/edgardesk/internal/usecase/health"
	usageuc "github.com/edgardesk/edgardesk/internal/usecase/usage"
)

// Consumer interfaces over the use case services (ISP).
type (
	filingService interface {
		Text(ctx context.Context, cik, accession string) (domain.Document, error)
	}
	analysisService interface {
		Analyze(ctx context.Context, cik, accession string) (domain.Analysis, error)
	}
	companyService interface {
		Get(ctx context.Context, cik string, page, limit int, formType string) (companyuc.Profile, error)
	}
	searchService interface {
		Search(ctx context.Context, query string) ([]domain.Company, error)
	}
	usageService interface {
		GetReport(ctx context.Context, period usageuc.Period) usageuc.Report
	}
	healthService interface {
		Check(ctx context.Context) healthuc.Report
	}
	proxyFetcher interface {
		Fetch(ctx context.Context, url string) (body []byte, contentType string, err error)
	}
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes the HTTP API onto the use case services.
type Server struct {
	filings       filingService
	analysis      analysisService
	companies     companyService
	search        searchService
	usage         usageService
	health        healthService
	proxy         proxyFetcher
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	filings filingService,
	analysis analysisService,
	companies companyService,
	search searchService,
	usage usageService,
	health healthService,
	proxy proxyFetcher,
	logger *zap.Logger,
) *Server {
	s := &Server{
		filings:   filings,
		analysis:  analysis,
		companies: companies,
		search:    search,
		usage:     usage,
		health:    health,
		proxy:     proxy,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrCompanyNotFound, http.StatusNotFound, codeCompanyNotFound),
		sentinelHandler(domain.ErrFilingNotFound, http.StatusNotFound, codeFilingNotFound),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrAnalysisQuotaExceeded, http.StatusPaymentRequired, codeAnalysisQuotaExceeded),
		sentinelHandler(domain.ErrAnalysisProviderError, http.StatusBadGateway, codeAnalysisProviderError),
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusBadGateway, codeEdgarUnavailable),
	}
	return s
}

// Routes mounts all API routes onto r.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1/filings/{cik}/{accession}", func(r chi.Router) {
		r.Get("/text", s.GetFilingText)
		r.Get("/analyze", s.AnalyzeFiling)
	})
	// Pre-v1 analysis route kept for existing clients.
	r.Get("/api/analysis/{cik}/{accession}", s.AnalyzeFiling)

	r.Get("/api/companies/search", s.SearchCompanies)
	r.Get("/api/companies/{cik}", s.GetCompany)

	r.Get("/api/v1/usage", s.GetUsage)
	r.Get("/proxy", s.Proxy)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// GetFilingText handles GET /api/v1/filings/{cik}/{accession}/text.
func (s *Server) GetFilingText(w http.ResponseWriter, r *http.Request) {
	cik := chi.URLParam(r, "cik")
	accession := chi.URLParam(r, "accession")

	doc, err := s.filings.Text(r.Context(), cik, accession)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentToDTO(&doc))
}

// AnalyzeFiling handles GET /api/v1/filings/{cik}/{accession}/analyze and the
// pre-v1 GET /api/analysis/{cik}/{accession} alias.
func (s *Server) AnalyzeFiling(w http.ResponseWriter, r *http.Request) {
	cik := chi.URLParam(r, "cik")
	accession := chi.URLParam(r, "accession")

	analysis, err := s.analysis.Analyze(r.Context(), cik, accession)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysisToDTO(&analysis))
}

// SearchCompanies handles GET /api/companies/search.
func (s *Server) SearchCompanies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	companies, err := s.search.Search(r.Context(), query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchToDTO(companies))
}

// GetCompany handles GET /api/companies/{cik}.
func (s *Server) GetCompany(w http.ResponseWriter, r *http.Request) {
	cik := chi.URLParam(r, "cik")

	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	formType := r.URL.Query().Get("filing_type")

	profile, err := s.companies.Get(r.Context(), cik, page, limit, formType)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileToDTO(&profile))
}

// GetUsage handles GET /api/v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period := usageuc.PeriodMonth
	switch r.URL.Query().Get("period") {
	case "", "month":
	case "day":
		period = usageuc.PeriodDay
	default:
		writeError(w, http.StatusBadRequest, codeValidationFailed, `period must be "day" or "month"`)
		return
	}

	writeJSON(w, http.StatusOK, usageToDTO(s.usage.GetReport(r.Context(), period)))
}

// Proxy handles GET /proxy. It passes one EDGAR URL through with the
// configured SEC User-Agent, for clients that cannot set one themselves.
func (s *Server) Proxy(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "url query parameter is required")
		return
	}

	body, contentType, err := s.proxy.Fetch(r.Context(), rawURL)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthToDTO(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrCompanyNotFound,
		domain.ErrFilingNotFound,
		domain.ErrInvalidArgument,
		domain.ErrRateLimited,
		domain.ErrAnalysisQuotaExceeded,
		domain.ErrAnalysisProviderError,
		domain.ErrUpstreamUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
