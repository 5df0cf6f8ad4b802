package filing

import (
	"strconv"
	"time"

	"github.com/edgardesk/edgardesk/internal/domain"
)

const dateLayout = "2006-01-02"

// buildHashFields converts a domain Filing into a flat map[string]string for HSET.
// filing_ts duplicates filing_date as unix seconds for NUMERIC sorting.
func buildHashFields(f *domain.Filing) map[string]string {
	m := map[string]string{
		"cik":              f.CIK,
		"accession":        f.AccessionNumber,
		"form_type":        f.FormType,
		"base_form":        f.BaseForm,
		"is_amendment":     "0",
		"filing_date":      f.FilingDate.Format(dateLayout),
		"filing_ts":        strconv.FormatInt(f.FilingDate.Unix(), 10),
		"primary_document": f.PrimaryDocument,
		"url":              f.URL,
	}
	if f.IsAmendment {
		m["is_amendment"] = "1"
	}
	if f.AmendedAccession != "" {
		m["amended_accession"] = f.AmendedAccession
	}
	return m
}

// parseHashFields converts a flat hash map back into a domain Filing.
func parseHashFields(m map[string]string) domain.Filing {
	date, _ := time.Parse(dateLayout, m["filing_date"])
	return domain.Filing{
		CIK:              m["cik"],
		AccessionNumber:  m["accession"],
		FormType:         m["form_type"],
		BaseForm:         m["base_form"],
		IsAmendment:      m["is_amendment"] == "1",
		AmendedAccession: m["amended_accession"],
		FilingDate:       date,
		PrimaryDocument:  m["primary_document"],
		URL:              m["url"],
	}
}
