package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/edgardesk/edgardesk/internal/domain"
	"github.com/edgardesk/edgardesk/internal/metrics"
)

const (
	defaultDataBaseURL    = "https://data.sec.gov"
	defaultArchiveBaseURL = "https://www.sec.gov"

	// maxDocumentBytes caps a single document read. The largest EDGAR
	// primary documents are tens of megabytes.
	maxDocumentBytes = 64 << 20
)

// Client talks to SEC EDGAR with the fair-use rate limit and User-Agent
// the SEC requires from automated clients.
type Client struct {
	http           *http.Client
	limiter        *rate.Limiter
	userAgent      string
	dataBaseURL    string
	archiveBaseURL string
	logger         *zap.Logger
}

// Config holds EDGAR client settings.
type Config struct {
	UserAgent         string
	RequestsPerSecond float64
	Timeout           time.Duration
	// DataBaseURL and ArchiveBaseURL override the SEC hosts (tests).
	DataBaseURL    string
	ArchiveBaseURL string
	Logger         *zap.Logger
}

// NewClient creates an EDGAR client.
func NewClient(cfg *Config) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 8
	}
	dataBase := cfg.DataBaseURL
	if dataBase == "" {
		dataBase = defaultDataBaseURL
	}
	archiveBase := cfg.ArchiveBaseURL
	if archiveBase == "" {
		archiveBase = defaultArchiveBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		http:           &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(rate.Limit(rps), 1),
		userAgent:      cfg.UserAgent,
		dataBaseURL:    strings.TrimSuffix(dataBase, "/"),
		archiveBaseURL: strings.TrimSuffix(archiveBase, "/"),
		logger:         cfg.Logger,
	}
}

// Submissions fetches the submissions feed for a company and returns the
// company identity plus its recent filings, newest first.
func (c *Client) Submissions(ctx context.Context, cik string) (domain.Company, []domain.Filing, error) {
	u := fmt.Sprintf("%s/submissions/CIK%s.json", c.dataBaseURL, domain.PadCIK(cik))

	body, _, err := c.get(ctx, u, "submissions")
	if err != nil {
		if errors.Is(err, errNotFound) {
			return domain.Company{}, nil, domain.ErrCompanyNotFound
		}
		return domain.Company{}, nil, err
	}

	var resp submissionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Company{}, nil, fmt.Errorf("decode submissions for cik %s: %w", cik, err)
	}

	company := resp.toCompany(cik)
	filings := resp.toFilings(cik, c.archiveBaseURL)
	return company, filings, nil
}

// CompanyTickers fetches the full SEC ticker-to-CIK mapping (~10k entries).
func (c *Client) CompanyTickers(ctx context.Context) ([]domain.Company, error) {
	u := c.archiveBaseURL + "/files/company_tickers.json"

	body, _, err := c.get(ctx, u, "tickers")
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("company_tickers.json missing: %w", domain.ErrUpstreamUnavailable)
		}
		return nil, err
	}

	var entries map[string]tickerEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode company tickers: %w", err)
	}

	companies := make([]domain.Company, 0, len(entries))
	for _, e := range entries {
		if e.CIK == 0 {
			continue
		}
		companies = append(companies, e.toCompany())
	}
	return companies, nil
}

// FetchDocument fetches a filing document from the EDGAR archive.
func (c *Client) FetchDocument(ctx context.Context, rawURL string) ([]byte, error) {
	body, _, err := c.get(ctx, rawURL, "document")
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, domain.ErrFilingNotFound
		}
		return nil, err
	}
	return body, nil
}

// Fetch retrieves an arbitrary SEC-hosted URL and returns body + content type.
// Non-SEC hosts are rejected so the proxy endpoint cannot be turned into an
// open relay.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("url %q: %w", rawURL, domain.ErrInvalidArgument)
	}
	if parsed.Scheme != "https" || !isSECHost(parsed.Host) {
		return nil, "", fmt.Errorf("url %q: host not allowed: %w", rawURL, domain.ErrInvalidArgument)
	}

	body, contentType, err := c.get(ctx, rawURL, "proxy")
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, "", domain.ErrFilingNotFound
		}
		return nil, "", err
	}
	return body, contentType, nil
}

// HealthCheck probes EDGAR availability with a HEAD request to the archive host.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.archiveBaseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("edgar HEAD: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("edgar status %d", resp.StatusCode)
	}
	return nil
}

// errNotFound is an internal marker for 404 responses. Callers map it to the
// domain sentinel that fits their resource.
var errNotFound = errors.New("edgar: not found")

// get performs a rate-limited GET with the required User-Agent.
func (c *Client) get(ctx context.Context, rawURL, endpoint string) ([]byte, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.EdgarRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, "", fmt.Errorf("edgar GET %s: %w: %w", rawURL, domain.ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.EdgarRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.EdgarRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to read
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", errNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		// The SEC responds 403 to clients that exceed the fair-use rate.
		c.logger.Warn("EDGAR throttled request",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
		)
		return nil, "", fmt.Errorf("edgar status %d: %w", resp.StatusCode, domain.ErrRateLimited)
	default:
		return nil, "", fmt.Errorf("edgar status %d for %s: %w", resp.StatusCode, rawURL, domain.ErrUpstreamUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body %s: %w", rawURL, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func isSECHost(host string) bool {
	host = strings.ToLower(host)
	return host == "www.sec.gov" || host == "sec.gov" || host == "data.sec.gov" ||
		strings.HasSuffix(host, ".sec.gov")
}
