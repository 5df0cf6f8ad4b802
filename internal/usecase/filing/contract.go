package filing

import (
	"context"

	"github.com/edgardesk/edgardesk/internal/domain"
)

// Repository defines the storage contract for filings.
type Repository interface {
	Get(ctx context.Context, cik, accession string) (domain.Filing, error)
	UpsertMany(ctx context.Context, filings []domain.Filing) error
}

// CompanyWriter persists company identities discovered during a refresh.
type CompanyWriter interface {
	Upsert(ctx context.Context, c *domain.Company) error
}

// Edgar fetches the submissions feed for a company.
type Edgar interface {
	Submissions(ctx context.Context, cik string) (domain.Company, []domain.Filing, error)
}

// Fetcher retrieves a filing document (usually through the document cache).
type Fetcher interface {
	FetchDocument(ctx context.Context, url string) ([]byte, error)
}
