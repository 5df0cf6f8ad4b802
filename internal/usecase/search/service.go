package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/edgardesk/edgardesk/internal/domain"
)

const defaultMaxResults = 10

// Service handles company search.
type Service struct {
	repo       Repository
	maxResults int
	logger     *zap.Logger
}

// New creates a search service. maxResults <= 0 uses the default cap.
func New(repo Repository, maxResults int, logger *zap.Logger) *Service {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Service{
		repo:       repo,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Search resolves a free-form query against companies. Tiers run in order of
// match quality: exact-ish ticker prefix, then name word prefix, then ranked
// full text. The first tier that produces matches wins; later tiers are not
// consulted. Results are deduplicated by CIK and capped at the configured
// limit.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Company, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidArgument)
	}

	type tier struct {
		name string
		run  func(context.Context, string, int) ([]domain.Company, error)
		q    string
	}
	tiers := []tier{
		{"ticker_prefix", s.repo.SearchByTickerPrefix, strings.ToUpper(query)},
		{"name_prefix", s.repo.SearchByNamePrefix, query},
		{"full_text", s.repo.SearchByText, query},
	}

	for _, t := range tiers {
		matches, err := t.run(ctx, t.q, s.maxResults)
		if err != nil {
			return nil, fmt.Errorf("%s search %q: %w", t.name, query, err)
		}
		if len(matches) == 0 {
			continue
		}

		results := dedupeByCIK(matches, s.maxResults)
		s.logger.Debug("Company search",
			zap.String("query", query),
			zap.String("tier", t.name),
			zap.Int("results", len(results)),
		)
		return results, nil
	}

	s.logger.Debug("Company search",
		zap.String("query", query),
		zap.Int("results", 0),
	)
	return []domain.Company{}, nil
}

func dedupeByCIK(matches []domain.Company, limit int) []domain.Company {
	seen := make(map[string]struct{}, len(matches))
	results := make([]domain.Company, 0, len(matches))
	for _, c := range matches {
		if _, ok := seen[c.CIK]; ok {
			continue
		}
		seen[c.CIK] = struct{}{}
		results = append(results, c)
		if len(results) >= limit {
			break
		}
	}
	return results
}
