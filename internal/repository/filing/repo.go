package filing

import (
	"context"
	"errors"
	"fmt"

	"github.com/edgardesk/edgardesk/internal/db"
	"github.com/edgardesk/edgardesk/internal/db/redis"
	"github.com/edgardesk/edgardesk/internal/domain"
)

// maxFilingsPerCompany bounds a ListByCIK fetch. EDGAR submissions JSON
// carries at most ~1000 recent filings per company.
const maxFilingsPerCompany = 10000

// store is the consumer interface for filings (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchSorted(ctx context.Context, index, query, sortBy string, desc bool, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements filing storage over hashes + an FT index.
type Repo struct {
	store store
}

// New creates a filing repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the filing index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName())
	if err != nil {
		return fmt.Errorf("check index %s: %w", indexName(), err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(indexName()).
		Prefix(keyPrefix()).
		Tag("cik").
		Tag("form_type").
		Tag("base_form").
		SortableNumeric("filing_ts").
		Build()
	if err != nil {
		return fmt.Errorf("build index %s: %w", indexName(), err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", indexName(), err)
	}
	return nil
}

// UpsertMany writes a batch of filings in one pipelined round trip.
func (r *Repo) UpsertMany(ctx context.Context, filings []domain.Filing) error {
	if len(filings) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, 0, len(filings))
	for i := range filings {
		f := &filings[i]
		items = append(items, db.HashSetItem{
			Key:    filingKey(f.CIK, f.AccessionNumber),
			Fields: buildHashFields(f),
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset multi %d filings: %w", len(items), err)
	}
	return nil
}

// Get returns one filing by CIK and accession number.
func (r *Repo) Get(ctx context.Context, cik, accession string) (domain.Filing, error) {
	key := filingKey(cik, accession)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domain.Filing{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(fields) == 0 {
		return domain.Filing{}, domain.ErrFilingNotFound
	}
	return parseHashFields(fields), nil
}

// ListByCIK returns all stored filings for a company, newest first by
// filing timestamp. Callers page.
func (r *Repo) ListByCIK(ctx context.Context, cik string) ([]domain.Filing, error) {
	query := fmt.Sprintf("@cik:{%s}", redis.EscapeTag(cik))
	result, err := r.store.SearchSorted(ctx, indexName(), query, "filing_ts", true, 0, maxFilingsPerCompany, filingFields)
	if err != nil {
		return nil, fmt.Errorf("list filings for cik %s: %w", cik, err)
	}
	if result == nil || len(result.Entries) == 0 {
		return nil, nil
	}
	filings := make([]domain.Filing, 0, len(result.Entries))
	for _, entry := range result.Entries {
		filings = append(filings, parseHashFields(entry.Fields))
	}
	return filings, nil
}

// CountByCIK returns the number of stored filings for a company.
func (r *Repo) CountByCIK(ctx context.Context, cik string) (int, error) {
	query := fmt.Sprintf("@cik:{%s}", redis.EscapeTag(cik))
	n, err := r.store.SearchCount(ctx, indexName(), query)
	if err != nil {
		return 0, fmt.Errorf("count filings for cik %s: %w", cik, err)
	}
	return n, nil
}

var filingFields = []string{
	"cik", "accession", "form_type", "base_form", "is_amendment",
	"amended_accession", "filing_date", "primary_document", "url",
}

func keyPrefix() string {
	return domain.KeyPrefix + "filing:"
}

func filingKey(cik, accession string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix(), cik, accession)
}

func indexName() string {
	return domain.KeyPrefix + "filing:idx"
}
