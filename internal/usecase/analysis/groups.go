package analysis

import (
	"strings"

	"github.com/edgardesk/edgardesk/internal/domain"
)

// sectionGroup names a set of item labels analyzed together under one prompt.
type sectionGroup struct {
	name  string
	items []string
}

// fullDocumentGroup is used for forms without a structured grouping.
const fullDocumentGroup = "full_document"

// Item 1A appears both in business_overview and risk_factors on purpose: the
// overview group reads it for context, the risk group analyzes it in depth.
var tenKGroups = []sectionGroup{
	{name: "business_overview", items: []string{"1", "1A", "1B", "1C"}},
	{name: "financial_metrics", items: []string{"6", "7", "7A"}},
	{name: "risk_factors", items: []string{"1A"}},
	{name: "management_discussion", items: []string{"7"}},
}

var tenQGroups = []sectionGroup{
	{name: "financial_statements", items: []string{"1", "2"}},
	{name: "management_discussion", items: []string{"2"}},
}

// groupedText is one group's name with its concatenated section text.
type groupedText struct {
	name string
	text string
}

// buildGroups maps a parsed document onto the form's section groups. Forms
// without a grouping (8-K, PX14A6N, anything else) produce a single
// full-document group. Empty groups are dropped.
func buildGroups(doc *domain.Document) []groupedText {
	base, _ := domain.BaseFormOf(doc.FormType)

	var groups []sectionGroup
	switch base {
	case "10-K":
		groups = tenKGroups
	case "10-Q":
		groups = tenQGroups
	default:
		text := doc.FullText()
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []groupedText{{name: fullDocumentGroup, text: text}}
	}

	byItem := make(map[string][]string, len(doc.Sections))
	for _, s := range doc.Sections {
		if s.Item == "" {
			continue
		}
		byItem[s.Item] = append(byItem[s.Item], s.Text)
	}

	var out []groupedText
	for _, g := range groups {
		var parts []string
		for _, item := range g.items {
			parts = append(parts, byItem[item]...)
		}
		text := strings.TrimSpace(strings.Join(parts, " "))
		if text == "" {
			continue
		}
		out = append(out, groupedText{name: g.name, text: text})
	}

	// Structured form with no recognizable items: fall back to full text.
	if len(out) == 0 {
		text := strings.TrimSpace(doc.FullText())
		if text == "" {
			return nil
		}
		return []groupedText{{name: fullDocumentGroup, text: text}}
	}
	return out
}
