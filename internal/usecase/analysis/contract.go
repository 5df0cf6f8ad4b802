package analysis

import (
	"context"

	"github.com/edgardesk/edgardesk/internal/domain"
)

// DocumentSource produces the parsed, section-split document for a filing.
type DocumentSource interface {
	Text(ctx context.Context, cik, accession string) (domain.Document, error)
}
