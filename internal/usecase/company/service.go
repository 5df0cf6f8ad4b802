package company

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/edgardesk/edgardesk/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Profile is one company with a filtered, paginated slice of its filings.
type Profile struct {
	Company      domain.Company
	Filings      []domain.Filing
	FilingTypes  []string // all distinct form types on record, sorted
	Page         int
	Limit        int
	TotalFilings int
	TotalPages   int
}

// Service handles company profile reads.
type Service struct {
	companies Repository
	filings   FilingRepository
	edgar     Edgar
	logger    *zap.Logger
}

// New creates a company service.
func New(companies Repository, filings FilingRepository, edgar Edgar, logger *zap.Logger) *Service {
	return &Service{
		companies: companies,
		filings:   filings,
		edgar:     edgar,
		logger:    logger,
	}
}

// Get returns a company profile, refreshing from EDGAR when nothing is
// stored yet. formType filters the filings list; empty means all forms.
func (s *Service) Get(ctx context.Context, rawCIK string, page, limit int, formType string) (Profile, error) {
	cik, err := domain.NormalizeCIK(rawCIK)
	if err != nil {
		return Profile{}, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	company, filings, err := s.load(ctx, cik)
	if err != nil {
		return Profile{}, err
	}

	// Newest first, accession number as a tiebreak for same-day filings.
	// The stored path already comes back ordered by filing timestamp, but
	// the EDGAR refresh path hands back submissions order, so normalize here.
	sort.Slice(filings, func(i, j int) bool {
		if !filings[i].FilingDate.Equal(filings[j].FilingDate) {
			return filings[i].FilingDate.After(filings[j].FilingDate)
		}
		return filings[i].AccessionNumber > filings[j].AccessionNumber
	})

	types := distinctFormTypes(filings)

	if formType != "" {
		filtered := filings[:0:0]
		for _, f := range filings {
			if f.FormType == formType {
				filtered = append(filtered, f)
			}
		}
		filings = filtered
	}

	total := len(filings)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return Profile{
		Company:      company,
		Filings:      filings[start:end],
		FilingTypes:  types,
		Page:         page,
		Limit:        limit,
		TotalFilings: total,
		TotalPages:   totalPages,
	}, nil
}

// load reads the stored profile, falling back to an EDGAR refresh when the
// company is unknown or has no filings on record.
func (s *Service) load(ctx context.Context, cik string) (domain.Company, []domain.Filing, error) {
	company, err := s.companies.GetByCIK(ctx, cik)
	if err == nil {
		filings, err := s.filings.ListByCIK(ctx, cik)
		if err != nil {
			return domain.Company{}, nil, fmt.Errorf("list filings for cik %s: %w", cik, err)
		}
		if len(filings) > 0 {
			return company, filings, nil
		}
	} else if !errors.Is(err, domain.ErrCompanyNotFound) {
		return domain.Company{}, nil, fmt.Errorf("get company %s: %w", cik, err)
	}

	company, filings, err := s.edgar.Submissions(ctx, cik)
	if err != nil {
		return domain.Company{}, nil, fmt.Errorf("fetch submissions for cik %s: %w", cik, err)
	}

	if err := s.companies.Upsert(ctx, &company); err != nil {
		return domain.Company{}, nil, fmt.Errorf("persist company %s: %w", cik, err)
	}
	if err := s.filings.UpsertMany(ctx, filings); err != nil {
		return domain.Company{}, nil, fmt.Errorf("persist %d filings for cik %s: %w", len(filings), cik, err)
	}

	s.logger.Info("Refreshed company from EDGAR",
		zap.String("cik", cik),
		zap.Int("filings", len(filings)),
	)
	return company, filings, nil
}

func distinctFormTypes(filings []domain.Filing) []string {
	seen := make(map[string]struct{}, len(filings))
	types := make([]string, 0, 8)
	for _, f := range filings {
		if _, ok := seen[f.FormType]; ok {
			continue
		}
		seen[f.FormType] = struct{}{}
		types = append(types, f.FormType)
	}
	sort.Strings(types)
	return types
}
