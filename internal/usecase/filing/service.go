package filing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/edgardesk/edgardesk/internal/domain"
)

// Service resolves filings and turns their documents into section-split text.
type Service struct {
	repo      Repository
	companies CompanyWriter
	edgar     Edgar
	fetcher   Fetcher
	logger    *zap.Logger
}

// New creates a filing service.
func New(repo Repository, companies CompanyWriter, edgar Edgar, fetcher Fetcher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		companies: companies,
		edgar:     edgar,
		fetcher:   fetcher,
		logger:    logger,
	}
}

// Resolve returns filing metadata, refreshing from EDGAR when not stored yet.
func (s *Service) Resolve(ctx context.Context, rawCIK, rawAccession string) (domain.Filing, error) {
	cik, err := domain.NormalizeCIK(rawCIK)
	if err != nil {
		return domain.Filing{}, err
	}
	accession, err := domain.NormalizeAccession(rawAccession)
	if err != nil {
		return domain.Filing{}, err
	}

	f, err := s.repo.Get(ctx, cik, accession)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, domain.ErrFilingNotFound) {
		return domain.Filing{}, fmt.Errorf("get filing: %w", err)
	}

	if err := s.refresh(ctx, cik); err != nil {
		return domain.Filing{}, err
	}

	f, err = s.repo.Get(ctx, cik, accession)
	if err != nil {
		if errors.Is(err, domain.ErrFilingNotFound) {
			return domain.Filing{}, domain.ErrFilingNotFound
		}
		return domain.Filing{}, fmt.Errorf("get filing after refresh: %w", err)
	}
	return f, nil
}

// Text returns the filing document as section-split plain text.
func (s *Service) Text(ctx context.Context, rawCIK, rawAccession string) (domain.Document, error) {
	f, err := s.Resolve(ctx, rawCIK, rawAccession)
	if err != nil {
		return domain.Document{}, err
	}

	data, err := s.fetcher.FetchDocument(ctx, f.URL)
	if err != nil {
		return domain.Document{}, fmt.Errorf("fetch document %s: %w", f.AccessionNumber, err)
	}

	sections := parseDocument(data)
	if len(sections) == 0 {
		s.logger.Warn("Document produced no text",
			zap.String("cik", f.CIK),
			zap.String("accession", f.AccessionNumber),
		)
	}

	return domain.Document{
		CIK:             f.CIK,
		AccessionNumber: f.AccessionNumber,
		FormType:        f.FormType,
		FilingDate:      f.FilingDate,
		Sections:        sections,
	}, nil
}

// refresh pulls the submissions feed and persists company + filings.
func (s *Service) refresh(ctx context.Context, cik string) error {
	company, filings, err := s.edgar.Submissions(ctx, cik)
	if err != nil {
		return fmt.Errorf("fetch submissions for cik %s: %w", cik, err)
	}

	if err := s.companies.Upsert(ctx, &company); err != nil {
		return fmt.Errorf("persist company %s: %w", cik, err)
	}
	if err := s.repo.UpsertMany(ctx, filings); err != nil {
		return fmt.Errorf("persist %d filings for cik %s: %w", len(filings), cik, err)
	}

	s.logger.Info("Refreshed filings from EDGAR",
		zap.String("cik", cik),
		zap.Int("filings", len(filings)),
	)
	return nil
}
