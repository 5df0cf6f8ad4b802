package company

import (
	"context"

	"github.com/edgardesk/edgardesk/internal/domain"
)

// Repository provides stored company lookups.
type Repository interface {
	GetByCIK(ctx context.Context, cik string) (domain.Company, error)
	Upsert(ctx context.Context, c *domain.Company) error
}

// FilingRepository provides stored filings for a company.
type FilingRepository interface {
	ListByCIK(ctx context.Context, cik string) ([]domain.Filing, error)
	UpsertMany(ctx context.Context, filings []domain.Filing) error
}

// Edgar fetches company submissions from EDGAR.
type Edgar interface {
	Submissions(ctx context.Context, cik string) (domain.Company, []domain.Filing, error)
}
