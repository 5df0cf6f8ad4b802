package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/edgardesk/edgardesk/internal/domain"
	"github.com/edgardesk/edgardesk/internal/metrics"
)

// Service runs chat-completion analysis over filing documents.
type Service struct {
	docs        DocumentSource
	analyzer    domain.Analyzer
	budget      *BudgetTracker
	limiter     *rate.Limiter
	chunker     *chunker
	concurrency int
	model       string
	provider    string
	logger      *zap.Logger
}

// Config holds analysis pipeline settings.
type Config struct {
	TokensPerMinute int
	MaxChunkTokens  int
	Concurrency     int
	Model           string
	Provider        string
}

// New creates an analysis service. budget may be nil (no budget enforcement).
func New(docs DocumentSource, analyzer domain.Analyzer, budget *BudgetTracker, cfg *Config, logger *zap.Logger) *Service {
	tpm := cfg.TokensPerMinute
	if tpm <= 0 {
		tpm = 6000
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Service{
		docs:     docs,
		analyzer: analyzer,
		budget:   budget,
		// Burst of a full minute's allowance so one large chunk never starves.
		limiter:     rate.NewLimiter(rate.Limit(float64(tpm)/60.0), tpm),
		chunker:     newChunker(cfg.MaxChunkTokens),
		concurrency: concurrency,
		model:       cfg.Model,
		provider:    cfg.Provider,
		logger:      logger,
	}
}

// Analyze produces a per-group analysis of one filing.
func (s *Service) Analyze(ctx context.Context, cik, accession string) (domain.Analysis, error) {
	if s.budget != nil {
		if err := s.budget.Check(ctx); err != nil {
			return domain.Analysis{}, err
		}
	}

	doc, err := s.docs.Text(ctx, cik, accession)
	if err != nil {
		return domain.Analysis{}, err
	}

	groups := buildGroups(&doc)
	if len(groups) == 0 {
		return domain.Analysis{}, fmt.Errorf("filing %s has no analyzable text: %w",
			doc.AccessionNumber, domain.ErrFilingNotFound)
	}

	base, _ := domain.BaseFormOf(doc.FormType)

	result := domain.Analysis{
		CIK:             doc.CIK,
		AccessionNumber: doc.AccessionNumber,
		FormType:        doc.FormType,
		Model:           s.model,
	}

	for _, g := range groups {
		prompt := s.promptFor(base, g.name)
		analyses, tokens, err := s.analyzeGroup(ctx, prompt, g.text)
		if err != nil {
			return domain.Analysis{}, fmt.Errorf("analyze group %s: %w", g.name, err)
		}
		result.Groups = append(result.Groups, domain.GroupAnalysis{
			Name:     g.name,
			Analyses: analyses,
		})
		result.TotalTokens += tokens
	}

	s.recordBudget(int64(result.TotalTokens))

	s.logger.Info("Filing analyzed",
		zap.String("cik", doc.CIK),
		zap.String("accession", doc.AccessionNumber),
		zap.String("form_type", doc.FormType),
		zap.Int("groups", len(result.Groups)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

func (s *Service) promptFor(baseForm, group string) string {
	if group == fullDocumentGroup {
		return systemPrompt(baseForm)
	}
	return groupPrompt(baseForm, group)
}

// analyzeGroup splits text into chunks and analyzes them with bounded
// parallelism, preserving chunk order in the output.
func (s *Service) analyzeGroup(ctx context.Context, prompt, text string) ([]string, int, error) {
	chunks := s.chunker.split(text)
	if len(chunks) == 0 {
		return nil, 0, nil
	}

	analyses := make([]string, len(chunks))
	tokens := make([]int, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	promptTokens := estimateTokens(prompt)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			if err := s.limiter.WaitN(gctx, promptTokens+estimateTokens(chunk)); err != nil {
				return fmt.Errorf("token limiter: %w", err)
			}

			completion, err := s.analyzer.Complete(gctx, prompt, chunk)
			if err != nil {
				return err
			}

			analyses[i] = completion.Text
			tokens[i] = completion.TotalTokens
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	total := 0
	for _, t := range tokens {
		total += t
	}
	return analyses, total, nil
}

func (s *Service) recordBudget(tokens int64) {
	if s.budget == nil {
		return
	}
	s.budget.Record(tokens)

	if remaining := s.budget.RemainingDaily(); remaining >= 0 {
		metrics.AnalysisBudgetTokensRemaining.WithLabelValues(s.provider, "daily").Set(float64(remaining))
	}
	if remaining := s.budget.RemainingMonthly(); remaining >= 0 {
		metrics.AnalysisBudgetTokensRemaining.WithLabelValues(s.provider, "monthly").Set(float64(remaining))
	}
}
