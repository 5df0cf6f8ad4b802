package usage

import (
	"context"
	"time"
)

// Period enumerates usage report windows.
type Period string

const (
	// PeriodDay reports the current UTC day.
	PeriodDay Period = "day"
	// PeriodMonth reports the current UTC month.
	PeriodMonth Period = "month"
)

// Report summarizes analysis token consumption for one period.
type Report struct {
	Period          Period
	PeriodStart     int64 // unix millis
	PeriodEnd       int64
	TokensLimit     int64 // 0 = unlimited
	TokensUsed      int64
	TokensRemaining int64 // -1 = unlimited
	Exhausted       bool
}

// Service handles usage reporting.
type Service struct {
	br BudgetReader
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period Period) Report {
	now := time.Now().UTC()

	r := Report{Period: period, TokensRemaining: -1}

	switch period {
	case PeriodDay:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		r.PeriodStart = dayStart.UnixMilli()
		r.PeriodEnd = dayStart.Add(24 * time.Hour).UnixMilli()
		if s.br != nil {
			r.TokensLimit = s.br.DailyLimit()
			r.TokensUsed = s.br.DailyUsed()
			r.TokensRemaining = s.br.RemainingDaily()
		}
	default:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		r.PeriodStart = monthStart.UnixMilli()
		r.PeriodEnd = monthStart.AddDate(0, 1, 0).UnixMilli()
		if s.br != nil {
			r.TokensLimit = s.br.MonthlyLimit()
			r.TokensUsed = s.br.MonthlyUsed()
			r.TokensRemaining = s.br.RemainingMonthly()
		}
	}

	r.Exhausted = r.TokensLimit > 0 && r.TokensRemaining <= 0
	return r
}
