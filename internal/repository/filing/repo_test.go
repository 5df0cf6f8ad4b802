package filing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edgardesk/edgardesk/internal/db"
	"github.com/edgardesk/edgardesk/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn   func(ctx context.Context, key string) (map[string]string, error)
	createIdxFn func(ctx context.Context, def *db.IndexDefinition) error
	idxExistsFn func(ctx context.Context, name string) (bool, error)
	searchSrtFn func(
		ctx context.Context, index, query, sortBy string, desc bool, offset, limit int, fields []string,
	) (*db.SearchResult, error)
	searchCntFn func(ctx context.Context, index, query string) (int, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIdxFn != nil {
		return m.createIdxFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.idxExistsFn != nil {
		return m.idxExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SearchSorted(
	ctx context.Context, index, query, sortBy string, desc bool, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if m.searchSrtFn != nil {
		return m.searchSrtFn(ctx, index, query, sortBy, desc, offset, limit, fields)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index, query string) (int, error) {
	if m.searchCntFn != nil {
		return m.searchCntFn(ctx, index, query)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testFiling(t *testing.T) domain.Filing {
	t.Helper()
	return domain.Filing{
		CIK:             "320193",
		AccessionNumber: "0000320193-24-000123",
		FormType:        "10-K",
		BaseForm:        "10-K",
		FilingDate:      time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		PrimaryDocument: "aapl-20240928.htm",
		URL:             "https://www.sec.gov/Archives/edgar/data/320193/000032019324000123/aapl-20240928.htm",
	}
}

// --- UpsertMany ---

func TestUpsertMany_KeyAndFields(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	var got []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}

	if err := repo.UpsertMany(ctx, []domain.Filing{testFiling(t)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].Key != "edgardesk:filing:320193:0000320193-24-000123" {
		t.Errorf("unexpected key: %s", got[0].Key)
	}
	if got[0].Fields["form_type"] != "10-K" {
		t.Errorf("unexpected form_type: %s", got[0].Fields["form_type"])
	}
	if got[0].Fields["filing_date"] != "2024-11-01" {
		t.Errorf("unexpected filing_date: %s", got[0].Fields["filing_date"])
	}
	if got[0].Fields["is_amendment"] != "0" {
		t.Errorf("unexpected is_amendment: %s", got[0].Fields["is_amendment"])
	}
}

func TestUpsertMany_AmendmentFields(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}

	f := testFiling(t)
	f.FormType = "10-K/A"
	f.IsAmendment = true
	f.AmendedAccession = "0000320193-24-000001"

	if err := repo.UpsertMany(context.Background(), []domain.Filing{f}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Fields["is_amendment"] != "1" {
		t.Errorf("expected is_amendment=1, got %s", got[0].Fields["is_amendment"])
	}
	if got[0].Fields["amended_accession"] != "0000320193-24-000001" {
		t.Errorf("unexpected amended_accession: %s", got[0].Fields["amended_accession"])
	}
}

// --- Get ---

func TestGet_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "edgardesk:filing:320193:0000320193-24-000123" {
			t.Errorf("unexpected key: %s", key)
		}
		return buildHashFields(&domain.Filing{
			CIK:             "320193",
			AccessionNumber: "0000320193-24-000123",
			FormType:        "10-K",
			BaseForm:        "10-K",
			FilingDate:      time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		}), nil
	}

	f, err := repo.Get(ctx, "320193", "0000320193-24-000123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.FormType != "10-K" {
		t.Errorf("unexpected form type: %s", f.FormType)
	}
	if !f.FilingDate.Equal(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected filing date: %v", f.FilingDate)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	_, err := repo.Get(context.Background(), "320193", "0000320193-24-999999")
	if !errors.Is(err, domain.ErrFilingNotFound) {
		t.Fatalf("expected ErrFilingNotFound, got: %v", err)
	}
}

// --- ListByCIK ---

func TestListByCIK_Query(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchSrtFn = func(
		_ context.Context, index, query, sortBy string, desc bool, offset, limit int, _ []string,
	) (*db.SearchResult, error) {
		if index != "edgardesk:filing:idx" {
			t.Errorf("unexpected index: %s", index)
		}
		if query != "@cik:{320193}" {
			t.Errorf("unexpected query: %s", query)
		}
		if sortBy != "filing_ts" || !desc {
			t.Errorf("expected newest-first sort on filing_ts, got sortBy=%s desc=%v", sortBy, desc)
		}
		if offset != 0 || limit != maxFilingsPerCompany {
			t.Errorf("unexpected window: offset=%d limit=%d", offset, limit)
		}
		f := testFiling(t)
		return &db.SearchResult{
			Total:   1,
			Entries: []db.SearchEntry{{Key: "edgardesk:filing:320193:0000320193-24-000123", Fields: buildHashFields(&f)}},
		}, nil
	}

	filings, err := repo.ListByCIK(context.Background(), "320193")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filings) != 1 || filings[0].AccessionNumber != "0000320193-24-000123" {
		t.Fatalf("unexpected result: %+v", filings)
	}
}

func TestListByCIK_Empty(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchSrtFn = func(
		_ context.Context, _, _, _ string, _ bool, _, _ int, _ []string,
	) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 0}, nil
	}

	filings, err := repo.ListByCIK(context.Background(), "999999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filings != nil {
		t.Fatalf("expected nil, got: %+v", filings)
	}
}

func TestCountByCIK(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchCntFn = func(_ context.Context, _, query string) (int, error) {
		if query != "@cik:{320193}" {
			t.Errorf("unexpected query: %s", query)
		}
		return 42, nil
	}

	n, err := repo.CountByCIK(context.Background(), "320193")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Fatalf("expected 42, got %d", n)
	}
}
