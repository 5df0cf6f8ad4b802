package domain

import "errors"

var (
	// ErrCompanyNotFound signals an unknown CIK.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrFilingNotFound signals a missing filing for a known company.
	ErrFilingNotFound = errors.New("filing not found")
	// ErrInvalidArgument signals a malformed CIK, accession number, or query.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrRateLimited signals that the upstream throttled us.
	ErrRateLimited = errors.New("rate limited")
	// ErrAnalysisQuotaExceeded signals an exhausted analysis token budget.
	ErrAnalysisQuotaExceeded = errors.New("analysis quota exceeded")
	// ErrAnalysisProviderError signals a model provider failure.
	ErrAnalysisProviderError = errors.New("analysis provider error")
	// ErrUpstreamUnavailable signals an EDGAR fetch failure.
	ErrUpstreamUnavailable = errors.New("edgar upstream unavailable")
)
