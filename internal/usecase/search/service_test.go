package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/edgardesk/edgardesk/internal/domain"
)

type mockRepo struct {
	tickerFn func(ctx context.Context, q string, limit int) ([]domain.Company, error)
	nameFn   func(ctx context.Context, q string, limit int) ([]domain.Company, error)
	textFn   func(ctx context.Context, q string, limit int) ([]domain.Company, error)
}

func (m *mockRepo) SearchByTickerPrefix(ctx context.Context, q string, limit int) ([]domain.Company, error) {
	if m.tickerFn != nil {
		return m.tickerFn(ctx, q, limit)
	}
	return nil, nil
}

func (m *mockRepo) SearchByNamePrefix(ctx context.Context, q string, limit int) ([]domain.Company, error) {
	if m.nameFn != nil {
		return m.nameFn(ctx, q, limit)
	}
	return nil, nil
}

func (m *mockRepo) SearchByText(ctx context.Context, q string, limit int) ([]domain.Company, error) {
	if m.textFn != nil {
		return m.textFn(ctx, q, limit)
	}
	return nil, nil
}

func company(cik, name, ticker string) domain.Company {
	return domain.Company{CIK: cik, Name: name, Ticker: ticker}
}

func TestSearch_TickerHitSkipsLaterTiers(t *testing.T) {
	repo := &mockRepo{
		tickerFn: func(_ context.Context, q string, _ int) ([]domain.Company, error) {
			if q != "AAPL" {
				t.Errorf("ticker tier should see the uppercased query, got %q", q)
			}
			return []domain.Company{company("320193", "Apple Inc.", "AAPL")}, nil
		},
		nameFn: func(_ context.Context, _ string, _ int) ([]domain.Company, error) {
			t.Error("name tier should not run when the ticker tier matched")
			return []domain.Company{company("1018724", "Amazon.com Inc.", "AMZN")}, nil
		},
		textFn: func(_ context.Context, _ string, _ int) ([]domain.Company, error) {
			t.Error("text tier should not run when the ticker tier matched")
			return nil, nil
		},
	}
	svc := New(repo, 10, zap.NewNop())

	results, err := svc.Search(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected the ticker tier alone, got %d results", len(results))
	}
	if results[0].Ticker != "AAPL" {
		t.Errorf("expected the ticker match, got %+v", results[0])
	}
}

func TestSearch_FallsThroughToNameTier(t *testing.T) {
	repo := &mockRepo{
		nameFn: func(_ context.Context, q string, _ int) ([]domain.Company, error) {
			if q != "Apple" {
				t.Errorf("name tier should see the raw query, got %q", q)
			}
			return []domain.Company{company("320193", "Apple Inc.", "AAPL")}, nil
		},
		textFn: func(_ context.Context, _ string, _ int) ([]domain.Company, error) {
			t.Error("text tier should not run when the name tier matched")
			return nil, nil
		},
	}
	svc := New(repo, 10, zap.NewNop())

	results, err := svc.Search(context.Background(), "Apple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].CIK != "320193" {
		t.Fatalf("expected the name tier match, got %+v", results)
	}
}

func TestSearch_FallsThroughToTextTier(t *testing.T) {
	repo := &mockRepo{
		textFn: func(_ context.Context, _ string, _ int) ([]domain.Company, error) {
			return []domain.Company{company("789019", "Microsoft Corp", "MSFT")}, nil
		},
	}
	svc := New(repo, 10, zap.NewNop())

	results, err := svc.Search(context.Background(), "software maker")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].CIK != "789019" {
		t.Fatalf("expected the text tier match, got %+v", results)
	}
}

func TestSearch_DeduplicatesByCIK(t *testing.T) {
	repo := &mockRepo{
		tickerFn: func(_ context.Context, _ string, _ int) ([]domain.Company, error) {
			return []domain.Company{
				company("320193", "Apple Inc.", "AAPL"),
				company("320193", "Apple Inc.", "AAPL"),
			}, nil
		},
	}
	svc := New(repo, 10, zap.NewNop())

	results, err := svc.Search(context.Background(), "apple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected a single deduplicated result, got %d", len(results))
	}
}

func TestSearch_CapsResults(t *testing.T) {
	repo := &mockRepo{
		tickerFn: func(_ context.Context, _ string, limit int) ([]domain.Company, error) {
			out := make([]domain.Company, limit+2)
			for i := range out {
				out[i] = company(fmt.Sprintf("%d", 1000+i), fmt.Sprintf("Company %d", i), "")
			}
			return out, nil
		},
	}
	svc := New(repo, 3, zap.NewNop())

	results, err := svc.Search(context.Background(), "co")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 capped results, got %d", len(results))
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := New(&mockRepo{}, 10, zap.NewNop())

	for _, q := range []string{"", "   ", "\t"} {
		if _, err := svc.Search(context.Background(), q); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("query %q: expected ErrInvalidArgument, got %v", q, err)
		}
	}
}

func TestSearch_NoMatches(t *testing.T) {
	svc := New(&mockRepo{}, 10, zap.NewNop())

	results, err := svc.Search(context.Background(), "zzzz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestSearch_RepoError(t *testing.T) {
	repo := &mockRepo{
		nameFn: func(_ context.Context, _ string, _ int) ([]domain.Company, error) {
			return nil, errors.New("index missing")
		},
	}
	svc := New(repo, 10, zap.NewNop())

	if _, err := svc.Search(context.Background(), "apple"); err == nil {
		t.Fatal("expected an error from the failing tier")
	}
}

func TestNew_DefaultLimit(t *testing.T) {
	svc := New(&mockRepo{}, 0, zap.NewNop())
	if svc.maxResults != defaultMaxResults {
		t.Errorf("expected default cap %d, got %d", defaultMaxResults, svc.maxResults)
	}
}
