package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// KeyPrefix namespaces all database keys.
const KeyPrefix = "edgardesk:"

var (
	cikPattern       = regexp.MustCompile(`^[0-9]{1,10}$`)
	accessionPattern = regexp.MustCompile(`^[0-9]{10}-[0-9]{2}-[0-9]{6}$`)
)

// Company is an SEC filer identified by its Central Index Key.
type Company struct {
	CIK      string
	Name     string
	Ticker   string
	Exchange string
}

// Filing is a single EDGAR submission belonging to one company.
type Filing struct {
	CIK              string
	AccessionNumber  string
	FormType         string
	BaseForm         string
	IsAmendment      bool
	AmendedAccession string
	FilingDate       time.Time
	PrimaryDocument  string
	URL              string
}

// NormalizeCIK validates a CIK-like string and strips leading zeros.
func NormalizeCIK(cik string) (string, error) {
	cik = strings.TrimSpace(cik)
	if !cikPattern.MatchString(cik) {
		return "", fmt.Errorf("cik %q: %w", cik, ErrInvalidArgument)
	}
	trimmed := strings.TrimLeft(cik, "0")
	if trimmed == "" {
		return "", fmt.Errorf("cik %q: %w", cik, ErrInvalidArgument)
	}
	return trimmed, nil
}

// PadCIK left-pads a CIK to the 10 digits EDGAR URLs expect.
func PadCIK(cik string) string {
	if len(cik) >= 10 {
		return cik
	}
	return strings.Repeat("0", 10-len(cik)) + cik
}

// NormalizeAccession validates an accession number, accepting both the dashed
// form (0000320193-24-000123) and the bare 18-digit form used in archive paths.
func NormalizeAccession(acc string) (string, error) {
	acc = strings.TrimSpace(acc)
	if bare := strings.ReplaceAll(acc, "-", ""); len(bare) == 18 {
		acc = bare[:10] + "-" + bare[10:12] + "-" + bare[12:]
	}
	if !accessionPattern.MatchString(acc) {
		return "", fmt.Errorf("accession %q: %w", acc, ErrInvalidArgument)
	}
	return acc, nil
}

// BaseFormOf strips the amendment suffix from a form type: "10-K/A" -> "10-K".
func BaseFormOf(formType string) (base string, amendment bool) {
	if strings.HasSuffix(formType, "/A") {
		return strings.TrimSuffix(formType, "/A"), true
	}
	return formType, false
}
