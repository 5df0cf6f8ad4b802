package company

import (
	"context"
	"errors"
	"fmt"

	"github.com/edgardesk/edgardesk/internal/db"
	"github.com/edgardesk/edgardesk/internal/db/redis"
	"github.com/edgardesk/edgardesk/internal/domain"
)

// store is the consumer interface for companies (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements company storage and search over hashes + an FT index.
type Repo struct {
	store store
}

// New creates a company repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the company search index if it does not exist yet.
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
		Text("name").
		Tag("ticker").
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

// Upsert creates or updates a company record.
func (r *Repo) Upsert(ctx context.Context, c *domain.Company) error {
	if err := r.store.HSet(ctx, companyKey(c.CIK), buildHashFields(c)); err != nil {
		return fmt.Errorf("hset %s: %w", companyKey(c.CIK), err)
	}
	return nil
}

// UpsertMany writes a batch of companies in one pipelined round trip.
func (r *Repo) UpsertMany(ctx context.Context, companies []domain.Company) error {
	if len(companies) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, 0, len(companies))
	for i := range companies {
		c := &companies[i]
		items = append(items, db.HashSetItem{
			Key:    companyKey(c.CIK),
			Fields: buildHashFields(c),
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset multi %d companies: %w", len(items), err)
	}
	return nil
}

// GetByCIK returns a company by its normalized CIK.
func (r *Repo) GetByCIK(ctx context.Context, cik string) (domain.Company, error) {
	fields, err := r.store.HGetAll(ctx, companyKey(cik))
	if err != nil {
		return domain.Company{}, fmt.Errorf("hgetall %s: %w", companyKey(cik), err)
	}
	if len(fields) == 0 {
		return domain.Company{}, domain.ErrCompanyNotFound
	}
	return parseHashFields(fields), nil
}

// Count returns the number of indexed companies.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("search count: %w", err)
	}
	return n, nil
}

// SearchByTickerPrefix matches companies whose ticker starts with q.
func (r *Repo) SearchByTickerPrefix(ctx context.Context, q string, limit int) ([]domain.Company, error) {
	query := fmt.Sprintf("@ticker:{%s*}", redis.EscapeTag(q))
	result, err := r.store.SearchList(ctx, indexName(), query, 0, limit, companyFields)
	if err != nil {
		return nil, fmt.Errorf("ticker prefix search: %w", err)
	}
	return parseEntries(result), nil
}

// SearchByNamePrefix matches companies whose name has a word starting with q.
func (r *Repo) SearchByNamePrefix(ctx context.Context, q string, limit int) ([]domain.Company, error) {
	query := fmt.Sprintf("@name:(%s*)", redis.EscapeQuery(q))
	result, err := r.store.SearchList(ctx, indexName(), query, 0, limit, companyFields)
	if err != nil {
		return nil, fmt.Errorf("name prefix search: %w", err)
	}
	return parseEntries(result), nil
}

// SearchByText runs a ranked full-text search over company names.
func (r *Repo) SearchByText(ctx context.Context, q string, limit int) ([]domain.Company, error) {
	result, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    indexName(),
		Query:        fmt.Sprintf("@name:(%s)", redis.EscapeQuery(q)),
		TopK:         limit,
		ReturnFields: companyFields,
	})
	if err != nil {
		return nil, fmt.Errorf("full text search: %w", err)
	}
	return parseEntries(result), nil
}

var companyFields = []string{"cik", "name", "ticker", "exchange"}

func keyPrefix() string {
	return domain.KeyPrefix + "company:"
}

func companyKey(cik string) string {
	return keyPrefix() + cik
}

func indexName() string {
	return domain.KeyPrefix + "company:idx"
}

func parseEntries(result *db.SearchResult) []domain.Company {
	if result == nil || len(result.Entries) == 0 {
		return nil
	}
	companies := make([]domain.Company, 0, len(result.Entries))
	for _, entry := range result.Entries {
		companies = append(companies, parseHashFields(entry.Fields))
	}
	return companies
}
