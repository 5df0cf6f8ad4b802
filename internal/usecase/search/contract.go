package search

import (
	"context"

	"github.com/edgardesk/edgardesk/internal/domain"
)

// Repository provides the tiered company search primitives.
type Repository interface {
	SearchByTickerPrefix(ctx context.Context, q string, limit int) ([]domain.Company, error)
	SearchByNamePrefix(ctx context.Context, q string, limit int) ([]domain.Company, error)
	SearchByText(ctx context.Context, q string, limit int) ([]domain.Company, error)
}
