package chi

import (
	"time"

	"github.com/oapi-codegen/runtime/types"

	"github.com/edgardesk/edgardesk/internal/domain"
	companyuc "github.com/edgardesk/edgardesk/internal/usecase/company"
	healthuc "github.com/edgardesk/edgardesk/internal/usecase/health"
	usageuc "github.com/edgardesk/edgardesk/internal/usecase/usage"
)

// errorCode is the machine-readable error discriminator in error payloads.
type errorCode string

const (
	codeBadRequest            errorCode = "bad_request"
	codeValidationFailed      errorCode = "validation_failed"
	codeUnauthorized          errorCode = "unauthorized"
	codeCompanyNotFound       errorCode = "company_not_found"
	codeFilingNotFound        errorCode = "filing_not_found"
	codeRateLimited           errorCode = "rate_limited"
	codeAnalysisQuotaExceeded errorCode = "analysis_quota_exceeded"
	codeAnalysisProviderError errorCode = "analysis_provider_error"
	codeEdgarUnavailable      errorCode = "edgar_unavailable"
	codeInternalError         errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type companyResponse struct {
	CIK      string `json:"cik"`
	Name     string `json:"name"`
	Ticker   string `json:"ticker,omitempty"`
	Exchange string `json:"exchange,omitempty"`
}

type filingResponse struct {
	AccessionNumber  string     `json:"accession_number"`
	FormType         string     `json:"form_type"`
	BaseForm         string     `json:"base_form"`
	IsAmendment      bool       `json:"is_amendment"`
	AmendedAccession string     `json:"amended_accession,omitempty"`
	FilingDate       types.Date `json:"filing_date"`
	PrimaryDocument  string     `json:"primary_document,omitempty"`
	URL              string     `json:"url"`
}

type sectionResponse struct {
	Title string `json:"title"`
	Item  string `json:"item,omitempty"`
	Text  string `json:"text"`
}

type documentResponse struct {
	CIK             string            `json:"cik"`
	AccessionNumber string            `json:"accession_number"`
	FormType        string            `json:"form_type"`
	FilingDate      *types.Date       `json:"filing_date,omitempty"`
	Sections        []sectionResponse `json:"sections"`
}

type groupAnalysisResponse struct {
	Name     string   `json:"name"`
	Analyses []string `json:"analyses"`
}

type analysisResponse struct {
	CIK             string                  `json:"cik"`
	AccessionNumber string                  `json:"accession_number"`
	FormType        string                  `json:"form_type"`
	Model           string                  `json:"model"`
	Groups          []groupAnalysisResponse `json:"groups"`
	TotalTokens     int                     `json:"total_tokens"`
}

type companyProfileResponse struct {
	Company      companyResponse  `json:"company"`
	Filings      []filingResponse `json:"filings"`
	FilingTypes  []string         `json:"filing_types"`
	Page         int              `json:"page"`
	Limit        int              `json:"limit"`
	TotalFilings int              `json:"total_filings"`
	TotalPages   int              `json:"total_pages"`
}

type searchResponse struct {
	Items []companyResponse `json:"items"`
	Total int               `json:"total"`
}

type usageResponse struct {
	Period        string       `json:"period"`
	PeriodStartAt time.Time    `json:"period_start_at"`
	PeriodEndAt   time.Time    `json:"period_end_at"`
	Budget        budgetStatus `json:"budget"`
}

type budgetStatus struct {
	TokensLimit     int64     `json:"tokens_limit"`
	TokensUsed      int64     `json:"tokens_used"`
	TokensRemaining int64     `json:"tokens_remaining"`
	IsExhausted     bool      `json:"is_exhausted"`
	ResetsAt        time.Time `json:"resets_at"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func companyToDTO(c *domain.Company) companyResponse {
	return companyResponse{
		CIK:      c.CIK,
		Name:     c.Name,
		Ticker:   c.Ticker,
		Exchange: c.Exchange,
	}
}

func filingToDTO(f *domain.Filing) filingResponse {
	return filingResponse{
		AccessionNumber:  f.AccessionNumber,
		FormType:         f.FormType,
		BaseForm:         f.BaseForm,
		IsAmendment:      f.IsAmendment,
		AmendedAccession: f.AmendedAccession,
		FilingDate:       types.Date{Time: f.FilingDate},
		PrimaryDocument:  f.PrimaryDocument,
		URL:              f.URL,
	}
}

func documentToDTO(d *domain.Document) documentResponse {
	sections := make([]sectionResponse, len(d.Sections))
	for i, sec := range d.Sections {
		sections[i] = sectionResponse{Title: sec.Title, Item: sec.Item, Text: sec.Text}
	}

	resp := documentResponse{
		CIK:             d.CIK,
		AccessionNumber: d.AccessionNumber,
		FormType:        d.FormType,
		Sections:        sections,
	}
	if !d.FilingDate.IsZero() {
		resp.FilingDate = &types.Date{Time: d.FilingDate}
	}
	return resp
}

func analysisToDTO(a *domain.Analysis) analysisResponse {
	groups := make([]groupAnalysisResponse, len(a.Groups))
	for i, g := range a.Groups {
		groups[i] = groupAnalysisResponse{Name: g.Name, Analyses: g.Analyses}
	}
	return analysisResponse{
		CIK:             a.CIK,
		AccessionNumber: a.AccessionNumber,
		FormType:        a.FormType,
		Model:           a.Model,
		Groups:          groups,
		TotalTokens:     a.TotalTokens,
	}
}

func profileToDTO(p *companyuc.Profile) companyProfileResponse {
	filings := make([]filingResponse, len(p.Filings))
	for i := range p.Filings {
		filings[i] = filingToDTO(&p.Filings[i])
	}
	formTypes := p.FilingTypes
	if formTypes == nil {
		formTypes = []string{}
	}
	return companyProfileResponse{
		Company:      companyToDTO(&p.Company),
		Filings:      filings,
		FilingTypes:  formTypes,
		Page:         p.Page,
		Limit:        p.Limit,
		TotalFilings: p.TotalFilings,
		TotalPages:   p.TotalPages,
	}
}

func searchToDTO(companies []domain.Company) searchResponse {
	items := make([]companyResponse, len(companies))
	for i := range companies {
		items[i] = companyToDTO(&companies[i])
	}
	return searchResponse{Items: items, Total: len(items)}
}

func usageToDTO(r usageuc.Report) usageResponse {
	return usageResponse{
		Period:        string(r.Period),
		PeriodStartAt: time.UnixMilli(r.PeriodStart).UTC(),
		PeriodEndAt:   time.UnixMilli(r.PeriodEnd).UTC(),
		Budget: budgetStatus{
			TokensLimit:     r.TokensLimit,
			TokensUsed:      r.TokensUsed,
			TokensRemaining: r.TokensRemaining,
			IsExhausted:     r.Exhausted,
			ResetsAt:        time.UnixMilli(r.PeriodEnd).UTC(),
		},
	}
}

func healthToDTO(report healthuc.Report) healthResponse {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return healthResponse{Status: string(report.Status), Checks: checks}
}
