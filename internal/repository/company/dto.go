package company

import "github.com/edgardesk/edgardesk/internal/domain"

// buildHashFields converts a domain Company into a flat map[string]string for HSET.
func buildHashFields(c *domain.Company) map[string]string {
	return map[string]string{
		"cik":      c.CIK,
		"name":     c.Name,
		"ticker":   c.Ticker,
		"exchange": c.Exchange,
	}
}

// parseHashFields converts a flat hash map back into a domain Company.
func parseHashFields(m map[string]string) domain.Company {
	return domain.Company{
		CIK:      m["cik"],
		Name:     m["name"],
		Ticker:   m["ticker"],
		Exchange: m["exchange"],
	}
}
